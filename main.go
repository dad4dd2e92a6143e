package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"

	"github.com/CptPie/pkgsolve/dimacs"
	"github.com/CptPie/pkgsolve/logger"
	"github.com/CptPie/pkgsolve/scenario"
	"github.com/CptPie/pkgsolve/solve"
	"github.com/CptPie/pkgsolve/utils"
)

var Args struct {
	Scenario  string `arg:"--scenario,-s,required" help:"Path to a scenario JSON file describing the universe and requests"`
	LogLevel  string `arg:"--log-level,-l" default:"none" help:"Log level: 'none', 'steps', or 'full' (default: none)"`
	DimacsOut string `arg:"--dimacs-out,-d" help:"Write the built problem to this path in DIMACS CNF format"`
	UseGini   bool   `arg:"--use-gini,-g" help:"Solve via the embedded gini SAT engine instead of the internal DPLL search"`
}

func main() {
	arg.MustParse(&Args)
	logger.SetLevel(logger.ParseLevel(Args.LogLevel))

	if err := run(); err != nil {
		logger.Error("%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	startTime := time.Now()

	f, err := os.Open(Args.Scenario)
	if err != nil {
		return errors.Wrap(err, "opening scenario file")
	}
	defer f.Close()

	spec, err := scenario.Load(f)
	if err != nil {
		return errors.Wrap(err, "loading scenario")
	}

	universe := scenario.NewUniverse(spec)
	requests := scenario.NewRequests(spec)

	logger.Info("Building problem from %d unique-ids\n", len(universe.Chains()))
	problem, err := solve.BuildProblem(universe, requests)
	if err != nil {
		return errors.Wrap(err, "building problem")
	}
	logger.Step("built %d variables, %d clauses\n", len(problem.Variables), problem.RulesCount)

	if Args.DimacsOut != "" {
		out, err := os.Create(Args.DimacsOut)
		if err != nil {
			return errors.Wrap(err, "creating dimacs output file")
		}
		defer out.Close()
		if err := dimacs.Export(problem, out); err != nil {
			return errors.Wrap(err, "exporting dimacs")
		}
		logger.Info("Wrote DIMACS CNF to %s\n", Args.DimacsOut)
	}

	if Args.UseGini {
		logger.Step("solving via embedded gini engine\n")
		if err := dimacs.SolveWithGini(problem); err != nil {
			return errors.Wrap(err, "gini solve")
		}
	} else {
		stats, err := solve.Solve(problem, requests.JobType())
		if err != nil {
			return errors.Wrap(err, "solve")
		}
		logger.Step("solved with %d guesses, %d backtracks\n", stats.Guesses, stats.Backtracks)
	}

	jobs, err := solve.ToJobs(problem, requests.JobType())
	if err != nil {
		return errors.Wrap(err, "emitting jobs")
	}

	if len(jobs) == 0 {
		fmt.Println("no jobs: state unchanged")
	}
	for _, job := range jobs {
		fmt.Println(job.String())
	}
	logger.Detail("full job plan:\n%s\n", utils.JSONString(jobs))

	logger.Info("Time elapsed: %v\n", time.Since(startTime))
	return nil
}
