package solve_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CptPie/pkgsolve/model"
	"github.com/CptPie/pkgsolve/solve"
)

// jobSummary projects a JobRecord down to comparable fields, since Items
// holds *Unit pointers that differ across independently-built universes
// even when the underlying plan is identical.
type jobSummary struct {
	Kind  model.JobKind
	IDs   [2]string
	Diges [2]string
}

func summarize(jobs []model.JobRecord) []jobSummary {
	out := make([]jobSummary, len(jobs))
	for i, j := range jobs {
		var s jobSummary
		s.Kind = j.Kind
		for k, item := range j.Items {
			if item == nil {
				continue
			}
			s.IDs[k] = item.UniqueID
			s.Diges[k] = item.Digest
		}
		out[i] = s
	}
	return out
}

// testUniverse and testRequests are minimal solve.UniverseProvider /
// solve.RequestSource implementations, built directly from literal units —
// mirroring the teacher's TestVariable pattern of hand-built fixtures
// rather than routing every test through a file format.
type testUniverse struct {
	chains    [][]*model.Unit
	providers map[string][]*model.Unit
}

func (u *testUniverse) Chains() [][]*model.Unit { return u.chains }
func (u *testUniverse) Providers(shlib string) []*model.Unit {
	if u.providers == nil {
		return nil
	}
	return u.providers[shlib]
}

type testRequests struct {
	jobType model.JobType
	install map[string]bool
	del     map[string]bool
}

func newRequests(jobType model.JobType) *testRequests {
	return &testRequests{jobType: jobType, install: map[string]bool{}, del: map[string]bool{}}
}

func (r *testRequests) JobType() model.JobType                      { return r.jobType }
func (r *testRequests) IsInstallRequested(u *model.Unit) bool        { return r.install[u.UniqueID] }
func (r *testRequests) IsDeleteRequested(u *model.Unit) bool         { return r.del[u.UniqueID] }

// S1 — Independent local package: no requests, stays installed, no jobs.
func TestScenarioIndependentLocal(t *testing.T) {
	a := &model.Unit{UniqueID: "A", Digest: "1", Installed: true}
	universe := &testUniverse{chains: [][]*model.Unit{{a}}}
	requests := newRequests(model.JobTypeInstall)

	problem, err := solve.BuildProblem(universe, requests)
	require.NoError(t, err)

	_, err = solve.Solve(problem, requests.JobType())
	require.NoError(t, err)

	jobs, err := solve.ToJobs(problem, requests.JobType())
	require.NoError(t, err)
	assert.Empty(t, jobs)

	v := problem.ChainHead("A")
	require.True(t, v.Resolved)
	assert.True(t, v.ToInstall)
}

// S2 — Simple install: a requested remote unit is installed.
func TestScenarioSimpleInstall(t *testing.T) {
	a := &model.Unit{UniqueID: "A", Digest: "1", Installed: false}
	universe := &testUniverse{chains: [][]*model.Unit{{a}}}
	requests := newRequests(model.JobTypeInstall)
	requests.install["A"] = true

	problem, err := solve.BuildProblem(universe, requests)
	require.NoError(t, err)
	_, err = solve.Solve(problem, requests.JobType())
	require.NoError(t, err)

	jobs, err := solve.ToJobs(problem, requests.JobType())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, model.JobInstall, jobs[0].Kind)
	assert.Equal(t, "A", jobs[0].Items[0].UniqueID)
}

// S3 — Upgrade with chain mutex: installed A-1 replaced by remote A-2.
func TestScenarioUpgradeChainMutex(t *testing.T) {
	a1 := &model.Unit{UniqueID: "A", Digest: "1", Installed: true}
	a2 := &model.Unit{UniqueID: "A", Digest: "2", Installed: false}
	universe := &testUniverse{chains: [][]*model.Unit{{a1, a2}}}
	requests := newRequests(model.JobTypeUpgrade)

	problem, err := solve.BuildProblem(universe, requests)
	require.NoError(t, err)
	_, err = solve.Solve(problem, requests.JobType())
	require.NoError(t, err)

	jobs, err := solve.ToJobs(problem, requests.JobType())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, model.JobUpgrade, jobs[0].Kind)
	assert.Equal(t, "2", jobs[0].Items[0].Digest)
	assert.Equal(t, "1", jobs[0].Items[1].Digest)
}

// S4 — Dependency: installing A pulls in its remote dependency B.
func TestScenarioDependency(t *testing.T) {
	a := &model.Unit{UniqueID: "A", Digest: "1", Installed: false, Dependencies: []string{"B"}}
	b := &model.Unit{UniqueID: "B", Digest: "1", Installed: false}
	universe := &testUniverse{chains: [][]*model.Unit{{a}, {b}}}
	requests := newRequests(model.JobTypeInstall)
	requests.install["A"] = true

	problem, err := solve.BuildProblem(universe, requests)
	require.NoError(t, err)
	_, err = solve.Solve(problem, requests.JobType())
	require.NoError(t, err)

	jobs, err := solve.ToJobs(problem, requests.JobType())
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	names := map[string]bool{}
	for _, j := range jobs {
		assert.Equal(t, model.JobInstall, j.Kind)
		names[j.Items[0].UniqueID] = true
	}
	assert.True(t, names["A"])
	assert.True(t, names["B"])
}

// S5 — Conflict forces UNSAT: A depends on both B and C, which conflict.
func TestScenarioConflictUnsat(t *testing.T) {
	a := &model.Unit{UniqueID: "A", Digest: "1", Installed: false, Dependencies: []string{"B", "C"}}
	b := &model.Unit{UniqueID: "B", Digest: "1", Installed: false, Conflicts: []model.Conflict{
		{UniqueID: "C", Kind: model.ConflictRemoteRemote},
	}}
	c := &model.Unit{UniqueID: "C", Digest: "1", Installed: false}
	universe := &testUniverse{chains: [][]*model.Unit{{a}, {b}, {c}}}
	requests := newRequests(model.JobTypeInstall)
	requests.install["A"] = true

	problem, err := solve.BuildProblem(universe, requests)
	require.NoError(t, err)

	_, err = solve.Solve(problem, requests.JobType())
	require.Error(t, err)

	var conflictErr *model.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Contains(t, err.Error(), "B")
	assert.Contains(t, err.Error(), "C")
}

// S6 — Alternate provider: A requires libz, satisfied by either P or Q.
func TestScenarioAlternateProvider(t *testing.T) {
	a := &model.Unit{UniqueID: "A", Digest: "1", Installed: false, RequiredShlibs: []string{"libz"}}
	p := &model.Unit{UniqueID: "P", Digest: "1", Installed: false}
	q := &model.Unit{UniqueID: "Q", Digest: "1", Installed: false}
	universe := &testUniverse{
		chains:    [][]*model.Unit{{a}, {p}, {q}},
		providers: map[string][]*model.Unit{"libz": {p, q}},
	}
	requests := newRequests(model.JobTypeInstall)
	requests.install["A"] = true

	problem, err := solve.BuildProblem(universe, requests)
	require.NoError(t, err)
	_, err = solve.Solve(problem, requests.JobType())
	require.NoError(t, err)

	jobs, err := solve.ToJobs(problem, requests.JobType())
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	names := map[string]bool{}
	for _, j := range jobs {
		names[j.Items[0].UniqueID] = true
	}
	assert.True(t, names["A"])
	assert.True(t, names["P"] || names["Q"])
}

// Universal invariant: every clause has at least one satisfied literal
// after a successful solve.
func TestInvariantAllClausesSatisfied(t *testing.T) {
	a1 := &model.Unit{UniqueID: "A", Digest: "1", Installed: true}
	a2 := &model.Unit{UniqueID: "A", Digest: "2", Installed: false}
	universe := &testUniverse{chains: [][]*model.Unit{{a1, a2}}}
	requests := newRequests(model.JobTypeUpgrade)

	problem, err := solve.BuildProblem(universe, requests)
	require.NoError(t, err)
	_, err = solve.Solve(problem, requests.JobType())
	require.NoError(t, err)

	for _, c := range problem.Clauses {
		assert.True(t, c.Satisfied(), "clause %s is not satisfied", c.DebugString())
	}
}

// Universal invariant: chain mutex — at most one candidate per unique-id
// ends up wanting to be installed-and-not-already-installed.
func TestInvariantChainMutex(t *testing.T) {
	a1 := &model.Unit{UniqueID: "A", Digest: "1", Installed: true}
	a2 := &model.Unit{UniqueID: "A", Digest: "2", Installed: false}
	a3 := &model.Unit{UniqueID: "A", Digest: "3", Installed: false}
	universe := &testUniverse{chains: [][]*model.Unit{{a1, a2, a3}}}
	requests := newRequests(model.JobTypeUpgrade)

	problem, err := solve.BuildProblem(universe, requests)
	require.NoError(t, err)
	_, err = solve.Solve(problem, requests.JobType())
	require.NoError(t, err)

	installing := 0
	for v := problem.ChainHead("A"); v != nil; v = v.Next {
		if v.ToInstall && !v.Unit.Installed {
			installing++
		}
	}
	assert.LessOrEqual(t, installing, 1)
}

// Idempotence: rebuilding and resolving the same universe twice yields the
// same job plan.
func TestIdempotence(t *testing.T) {
	build := func() ([]model.JobRecord, error) {
		a := &model.Unit{UniqueID: "A", Digest: "1", Installed: false, Dependencies: []string{"B"}}
		b := &model.Unit{UniqueID: "B", Digest: "1", Installed: false}
		universe := &testUniverse{chains: [][]*model.Unit{{a}, {b}}}
		requests := newRequests(model.JobTypeInstall)
		requests.install["A"] = true

		problem, err := solve.BuildProblem(universe, requests)
		if err != nil {
			return nil, err
		}
		if _, err := solve.Solve(problem, requests.JobType()); err != nil {
			return nil, err
		}
		return solve.ToJobs(problem, requests.JobType())
	}

	first, err := build()
	require.NoError(t, err)
	second, err := build()
	require.NoError(t, err)

	if diff := cmp.Diff(summarize(first), summarize(second)); diff != "" {
		t.Errorf("job plan not idempotent (-first +second):\n%s", diff)
	}
}
