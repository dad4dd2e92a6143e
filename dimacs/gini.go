package dimacs

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/CptPie/pkgsolve/model"
)

// SolveWithGini builds the same CNF the internal DPLL search would operate
// on and hands it to an embedded github.com/go-air/gini solver instead of
// running the internal engine — an in-process stand-in for the DIMACS
// Bridge's external-process path (spec.md §4.5), useful for
// cross-checking the hand-rolled DPLL search against an independent SAT
// engine.
//
// Every Variable gets one fresh gini literal, in Variable-table order, so
// ordinals line up exactly the way Export assigns them. Clauses are added
// in problem.Clauses order (newest-built first, the reverse of the order
// Export writes them); literal polarity is translated via z.Lit's Not().
func SolveWithGini(problem *model.Problem) error {
	g := gini.New()

	lits := make([]z.Lit, len(problem.Variables))
	index := make(map[*model.Variable]int, len(problem.Variables))
	for i, v := range problem.Variables {
		lits[i] = g.Lit()
		index[v] = i
	}

	for _, c := range problem.Clauses {
		for _, lit := range c.Literals {
			m := lits[index[lit.Var]]
			if lit.Inverted {
				m = m.Not()
			}
			g.Add(m)
		}
		g.Add(0)
	}

	switch g.Solve() {
	case 1:
		for i, v := range problem.Variables {
			v.ToInstall = g.Value(lits[i])
			v.Resolved = true
		}
		return nil
	case -1:
		return model.ErrDimacsUnsat
	default:
		return errors.New("gini solve was cancelled")
	}
}
