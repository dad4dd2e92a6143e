// Package solve implements the CNF encoding and DPLL search described by
// the dependency-solver core: it turns a universe of candidate package
// units plus install/delete requests into clauses, solves them, and folds
// the resulting assignment back into a job plan.
package solve

import (
	"github.com/pkg/errors"

	"github.com/CptPie/pkgsolve/model"
)

// UniverseProvider supplies the set of candidate units considered for one
// solve, grouped by unique-id into chains, plus the Provides index used by
// shared-library requirement clauses. It is the external collaborator
// spec.md §1 calls the Universe Provider; building the real-world universe
// (fetching metadata, filesystem/shlib introspection) is explicitly out of
// scope here — only this read interface is.
type UniverseProvider interface {
	// Chains returns, in the order the universe should be walked, one
	// entry per unique-id: the ordered list of candidate units sharing
	// that id (chain order == insertion order).
	Chains() [][]*model.Unit
	// Providers returns every unit (from any chain) that declares it
	// provides the named shared library, in universe order.
	Providers(shlib string) []*model.Unit
}

// RequestSource supplies the install/delete requests driving one solve,
// plus the job type that parameterizes the initial-guess heuristic
// (spec.md §4.4.1).
type RequestSource interface {
	JobType() model.JobType
	IsInstallRequested(u *model.Unit) bool
	IsDeleteRequested(u *model.Unit) bool
}

// NewVariableTable allocates one Variable per candidate Unit in universe
// order and links same-unique-id Variables into a chain, registering the
// first Variable of each chain in the unique-id index. Grounded on
// pkg_solve_add_variable / pkg_solve_jobs_to_sat's universe walk.
func NewVariableTable(universe UniverseProvider) (*model.Problem, error) {
	chains := universe.Chains()

	n := 0
	for _, chain := range chains {
		n += len(chain)
	}

	problem := &model.Problem{
		Variables:  make([]*model.Variable, 0, n),
		ByUniqueID: make(map[string]*model.Variable, len(chains)),
	}

	for _, chain := range chains {
		if len(chain) == 0 {
			continue
		}
		var head, prev *model.Variable
		for _, unit := range chain {
			v := &model.Variable{
				Unit:     unit,
				UniqueID: unit.UniqueID,
				Digest:   unit.Digest,
				Priority: unit.Priority,
			}
			problem.Variables = append(problem.Variables, v)
			if head == nil {
				head = v
			} else {
				prev.Next = v
				v.Prev = prev
			}
			prev = v
		}
		if existing, ok := problem.ByUniqueID[head.UniqueID]; ok {
			return nil, errors.Errorf("duplicate chain head for unique-id %q (already have digest %s)", head.UniqueID, existing.Digest)
		}
		problem.ByUniqueID[head.UniqueID] = head
	}

	return problem, nil
}
