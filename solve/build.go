package solve

import (
	"github.com/CptPie/pkgsolve/logger"
	"github.com/CptPie/pkgsolve/model"
)

// attachRule prepends clause to v's rule list. Rules are prepended (not
// appended) because propagation's conflict-before-unit sweep must visit
// the newest-attached clause first, matching original_source's
// LL_PREPEND(tvar->rules, head); a slice grown by prepend gives the same
// visit order as the upstream linked list.
func attachRule(v *model.Variable, c *model.Clause) {
	v.Rules = append([]*model.Clause{c}, v.Rules...)
}

func addClause(problem *model.Problem, c *model.Clause) {
	problem.Clauses = append([]*model.Clause{c}, problem.Clauses...)
	problem.RulesCount++
}

// BuildProblem runs the Clause Builder (spec.md §4.2) over every chain in
// the universe: dependency disjunctions, explicit conflict binaries,
// shlib-provide disjunctions, request unaries, and chain-mutex binaries.
func BuildProblem(universe UniverseProvider, requests RequestSource) (*model.Problem, error) {
	problem, err := NewVariableTable(universe)
	if err != nil {
		return nil, err
	}

	for _, chain := range universe.Chains() {
		if len(chain) == 0 {
			continue
		}
		head := problem.ByUniqueID[chain[0].UniqueID]
		if err := processChain(problem, universe, requests, head); err != nil {
			return nil, err
		}
	}

	return problem, nil
}

func processChain(problem *model.Problem, universe UniverseProvider, requests RequestSource, head *model.Variable) error {
	chainHasMutex := false

	for cur := head; cur != nil; cur = cur.Next {
		if err := addDependencyClauses(problem, cur); err != nil {
			return err
		}
		addConflictClauses(problem, cur)

		if !cur.Unit.Installed {
			addShlibClauses(problem, universe, cur)
		}

		if requests.IsInstallRequested(cur.Unit) {
			addUnaryClause(problem, cur, false)
		}
		if requests.IsDeleteRequested(cur.Unit) {
			addUnaryClause(problem, cur, true)
		}

		// Chain mutex is registered once per chain, from the head, the
		// first time we see a variable with a Next pointer — mirrors
		// original_source's chain_added guard in
		// pkg_solve_process_universe_variable.
		if !chainHasMutex && cur.Next != nil {
			addChainMutexClauses(problem, cur)
			chainHasMutex = true
		}
	}

	return nil
}

// addDependencyClauses emits (!V | D1 | D2 | ...) for each dependency V
// declares, where D1..Dk is the full chain for that dependency's
// unique-id. A dependency whose unique-id isn't in the universe is
// skipped silently (spec.md §4.2(a), §7 "Dangling dependency reference").
func addDependencyClauses(problem *model.Problem, v *model.Variable) error {
	for _, depUID := range v.Unit.Dependencies {
		depHead, ok := problem.ByUniqueID[depUID]
		if !ok {
			logger.Step("dependency %s of %s not found in universe, skipping\n", depUID, v.UniqueID)
			continue
		}

		clause := &model.Clause{}
		clause.Literals = append(clause.Literals, model.Literal{Var: v, Inverted: true})
		for d := depHead; d != nil; d = d.Next {
			clause.Literals = append(clause.Literals, model.Literal{Var: d, Inverted: false})
		}

		addClause(problem, clause)
		attachRule(v, clause)
		for d := depHead; d != nil; d = d.Next {
			attachRule(d, clause)
		}
	}
	return nil
}

// addConflictClauses emits a binary (!V | !Ci) for every conflict partner
// Ci that survives the remote/local filtering of spec.md §4.2(b).
func addConflictClauses(problem *model.Problem, v *model.Variable) {
	for _, conflict := range v.Unit.Conflicts {
		confHead, ok := problem.ByUniqueID[conflict.UniqueID]
		if !ok {
			logger.Step("conflict target %s of %s not found in universe, skipping\n", conflict.UniqueID, v.UniqueID)
			continue
		}

		for c := confHead; c != nil; c = c.Next {
			if !conflictApplies(conflict.Kind, v, c) {
				continue
			}

			clause := &model.Clause{Literals: []model.Literal{
				{Var: v, Inverted: true},
				{Var: c, Inverted: true},
			}}
			addClause(problem, clause)
			attachRule(v, clause)
			attachRule(c, clause)
		}
	}
}

func conflictApplies(kind model.ConflictKind, v, c *model.Variable) bool {
	switch kind {
	case model.ConflictRemoteRemote:
		return !v.Unit.Installed && !c.Unit.Installed
	case model.ConflictRemoteLocal:
		if v.Unit.Installed {
			return !c.Unit.Installed
		}
		return c.Unit.Installed
	default:
		return false
	}
}

// addShlibClauses emits (!V | P1 | P2 | ...) for each shared library V
// requires, where P* is every chain-expanded provider. A shlib with no
// providers at all is discarded (spec.md §4.2(c), §7 "Missing shlib
// provider").
//
// original_source attaches this clause only to V, leaving providers
// unregistered in their own rule lists — its own pkg_solve_handle_provide
// comment calls that path "terribly broken ... ignore till provides/requires
// are really fixed." Left as-is, a provider with no other constraint is
// "independent" (nrules == 0), gets pure-clause-seeded to not-installed
// before the disjunction ever runs, and the requirement can never actually
// force a provider on — silently violating the "every clause has a
// satisfied literal" invariant. This implementation attaches the clause to
// every participating provider too, so nresolved stays accurate and the
// disjunction can do its job. Providers are still never forced OFF by a
// requirer — they only ever appear as a positive (non-inverted) literal
// here — so the documented intent of the asymmetry ("provides do not
// constrain providers" in the negative direction) is preserved even though
// the literal non-attachment is not.
func addShlibClauses(problem *model.Problem, universe UniverseProvider, v *model.Variable) {
	for _, shlib := range v.Unit.RequiredShlibs {
		providers := universe.Providers(shlib)
		if len(providers) == 0 {
			logger.Step("no provider found for required shlib %q of %s\n", shlib, v.UniqueID)
			continue
		}

		clause := &model.Clause{}
		clause.Literals = append(clause.Literals, model.Literal{Var: v, Inverted: true})

		seen := make(map[string]bool)
		for _, provider := range providers {
			providerHead, ok := problem.ByUniqueID[provider.UniqueID]
			if !ok || seen[providerHead.UniqueID] {
				continue
			}
			seen[providerHead.UniqueID] = true
			for p := providerHead; p != nil; p = p.Next {
				clause.Literals = append(clause.Literals, model.Literal{Var: p, Inverted: false})
			}
		}

		if clause.NItems() <= 1 {
			// Only the !V literal survived: every nominal provider was
			// absent from the universe. Tolerated, per spec.md §4.2(c).
			continue
		}

		addClause(problem, clause)
		attachRule(v, clause)
		for _, lit := range clause.Literals[1:] {
			attachRule(lit.Var, clause)
		}
	}
}

// addUnaryClause emits (V) for an install request or (!V) for a delete
// request, registered only in V's own rule list.
func addUnaryClause(problem *model.Problem, v *model.Variable, inverted bool) {
	clause := &model.Clause{Literals: []model.Literal{{Var: v, Inverted: inverted}}}
	addClause(problem, clause)
	attachRule(v, clause)
}

// addChainMutexClauses emits (!a | !b) for every pair of members of head's
// chain, enforcing "at most one candidate per unique-id installed".
func addChainMutexClauses(problem *model.Problem, head *model.Variable) {
	for first := head; first != nil; first = first.Next {
		for other := first.Next; other != nil; other = other.Next {
			clause := &model.Clause{Literals: []model.Literal{
				{Var: first, Inverted: true},
				{Var: other, Inverted: true},
			}}
			addClause(problem, clause)
			attachRule(first, clause)
			attachRule(other, clause)
		}
	}
}
