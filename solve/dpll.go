package solve

import (
	"github.com/CptPie/pkgsolve/model"
)

// Stats carries the supplemented diagnostics counters spec.md doesn't name
// but a DPLL search naturally produces: how many decisions were made and how
// many of them required a backtrack.
type Stats struct {
	Guesses    int
	Backtracks int
}

// decisionFrame is one entry of the DPLL decision stack: a pivot variable,
// which polarity it was first tried with, whether the flip has been tried
// yet, and the implication graph recorded while this frame's guess was in
// effect (so it can be undone cleanly on conflict or backtrack).
type decisionFrame struct {
	pivot       *model.Variable
	pivotIndex  int
	triedFirst  bool
	triedSecond bool
	firstGuess  bool
	graph       []*model.Variable
}

// undo reverts every variable recorded in graph: clears Resolved and
// decrements NResolved on every clause that variable participates in.
// Restoring NResolved exactly is required — clearing Resolved alone would
// leave the propagation counters permanently out of sync with reality.
func undo(graph []*model.Variable) {
	for _, v := range graph {
		v.Resolved = false
		for _, c := range v.Rules {
			c.NResolved--
		}
	}
}

// initialGuess implements spec.md §4.4.1's table: for ordinary job types an
// already-installed unit defaults to staying installed and a remote
// candidate defaults to not being installed; for an upgrade request an
// installed unit with no sibling candidates defaults to staying (nothing to
// upgrade to), while an installed unit WITH sibling candidates, or any
// remote candidate, defaults to being replaced/installed.
func initialGuess(jobType model.JobType, v *model.Variable) bool {
	if jobType == model.JobTypeUpgrade {
		if v.Unit.Installed {
			return v.Prev == nil && v.Next == nil
		}
		return true
	}
	return v.Unit.Installed
}

// Solve runs the DPLL search of spec.md §4.4 over problem: pure-clause
// seeding, top-level unit propagation, then a chronological-backtracking
// decision loop — one frame per unresolved variable encountered in table
// order, at most one flip per frame. Grounded on pkg_solve_sat_problem.
//
// Root-UNSAT is detected by the decision stack going empty, not by the
// original's elt->prev->next == NULL check on a sentinel node — the
// REDESIGN FLAG fix spec.md §8 calls for.
func Solve(problem *model.Problem, jobType model.JobType) (Stats, error) {
	var stats Stats

	propagatePure(problem)
	if ok, err := propagateUnits(problem, nil, true); !ok {
		return stats, err
	}

	var stack []*decisionFrame
	i := 0

	for i < len(problem.Variables) {
		v := problem.Variables[i]
		if v.Resolved {
			i++
			continue
		}

		var fr *decisionFrame
		if n := len(stack); n > 0 && stack[n-1].pivot == v {
			fr = stack[n-1]
		} else {
			fr = &decisionFrame{pivot: v, pivotIndex: i}
			stack = append(stack, fr)
		}

		var guess bool
		if !fr.triedFirst {
			guess = initialGuess(jobType, v)
			fr.firstGuess = guess
			fr.triedFirst = true
		} else {
			guess = !fr.firstGuess
			fr.triedSecond = true
		}

		v.ToInstall = guess
		v.Resolved = true
		markResolved(v)
		fr.graph = []*model.Variable{v}
		stats.Guesses++

		ok, err := propagateUnits(problem, &fr.graph, false)
		if err != nil {
			return stats, err
		}
		if ok {
			i++
			continue
		}

		undo(fr.graph)

		if !fr.triedSecond {
			// Retry this same frame next iteration with the other polarity.
			continue
		}

		// Both polarities of this frame are exhausted: pop it and retreat
		// to the previous frame, flipping it in turn. Earlier frames whose
		// flip has already been tried are exhausted too and are popped
		// (and undone) on the way.
		stack = stack[:len(stack)-1]
		stats.Backtracks++
		for len(stack) > 0 && stack[len(stack)-1].triedSecond {
			undo(stack[len(stack)-1].graph)
			stack = stack[:len(stack)-1]
			stats.Backtracks++
		}

		if len(stack) == 0 {
			return stats, model.ErrUnsatisfiable
		}

		prev := stack[len(stack)-1]
		undo(prev.graph)
		i = prev.pivotIndex
	}

	return stats, nil
}
