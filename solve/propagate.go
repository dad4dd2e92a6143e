package solve

import "github.com/CptPie/pkgsolve/model"

// markResolved increments NResolved on every clause mentioning v, mirroring
// pkg_solve_update_var_resolved.
func markResolved(v *model.Variable) {
	for _, c := range v.Rules {
		c.NResolved++
	}
}

// propagatePure seeds independent variables with their current installed
// state and forces any already-unary, unresolved rule — the pure-clause
// seed phase of spec.md §4.3, grounded on pkg_solve_propagate_pure.
func propagatePure(problem *model.Problem) {
	for _, v := range problem.Variables {
		if v.Independent() {
			v.ToInstall = v.Unit.Installed
			v.Resolved = true
			continue
		}
		for _, r := range v.Rules {
			if r.NItems() == 1 && r.NResolved == 0 {
				lit := r.Literals[0]
				lit.Var.ToInstall = !lit.Inverted
				lit.Var.Resolved = true
				markResolved(lit.Var)
			}
		}
	}
}

// propagateUnits repeats the two-sweep scan of spec.md §4.3 until a pass
// makes no progress. graph, when non-nil, receives every variable resolved
// during this call in assignment order (used by the caller to undo a
// decision level). topLevel controls whether a conflict is reported as a
// hard, human-readable error or simply signalled back to the DPLL search
// via a false return.
//
// Detection order matters: every rule of a variable is checked for a
// full-resolution conflict before any rule of that variable is checked for
// a unit, matching original_source's two LL_FOREACH sweeps inside
// check_again — discovering a conflict while hunting for a unit would
// mis-propagate.
func propagateUnits(problem *model.Problem, graph *[]*model.Variable, topLevel bool) (bool, error) {
	for {
		progressed := 0

		for _, v := range problem.Variables {
		checkAgain:
			for _, r := range v.Rules {
				if r.NResolved == r.NItems() && !r.Satisfied() {
					if topLevel {
						return false, model.NewConflictError(r)
					}
					return false, nil
				}
			}

			for _, r := range v.Rules {
				if r.NResolved != r.NItems()-1 {
					continue
				}
				if r.Satisfied() {
					continue
				}
				for _, lit := range r.Literals {
					if lit.Var.Resolved {
						continue
					}
					lit.Var.ToInstall = !lit.Inverted
					lit.Var.Resolved = true
					markResolved(lit.Var)
					if graph != nil {
						*graph = append(*graph, lit.Var)
					}
					progressed++
					goto checkAgain
				}
			}
		}

		if progressed == 0 {
			break
		}
	}

	return true, nil
}
