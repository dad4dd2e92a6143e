package solve

import "github.com/CptPie/pkgsolve/model"

// ToJobs folds a solved Problem into a job plan, one pass per unique-id
// chain (spec.md §4.6). Every variable must be resolved; an unresolved
// variable anywhere fails the whole call. A chain with more than one
// install candidate violates the chain-mutex invariant — it is reported
// via model.NewInternalError and skipped, but the overall call still
// fails, matching spec.md §7's "internal invariant violation" policy.
func ToJobs(problem *model.Problem, jobType model.JobType) ([]model.JobRecord, error) {
	for _, v := range problem.Variables {
		if !v.Resolved {
			return nil, model.ErrUnresolvedVariable
		}
	}

	var jobs []model.JobRecord
	var firstErr error

	// Walk chains in Variable-table order rather than ranging over
	// ByUniqueID directly — map iteration order is unspecified in Go, and
	// spec.md §5 requires the job plan to be deterministic for a fixed
	// Variable ordering.
	for _, head := range problem.Variables {
		if head.Prev != nil {
			continue
		}
		uid := head.UniqueID

		var addCandidates, delCandidates []*model.Variable
		for v := head; v != nil; v = v.Next {
			switch {
			case v.ToInstall && !v.Unit.Installed:
				addCandidates = append(addCandidates, v)
			case !v.ToInstall && v.Unit.Installed:
				delCandidates = append(delCandidates, v)
			}
		}

		if len(addCandidates) > 1 {
			if firstErr == nil {
				firstErr = model.NewInternalError(uid, "more than one install candidate resolved true in the same chain")
			}
			continue
		}

		jobs = append(jobs, chainJobs(jobType, addCandidates, delCandidates)...)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return jobs, nil
}

func chainJobs(jobType model.JobType, addCandidates, delCandidates []*model.Variable) []model.JobRecord {
	var jobs []model.JobRecord

	switch {
	case len(addCandidates) == 1 && len(delCandidates) == 0:
		kind := model.JobInstall
		if jobType == model.JobTypeFetch {
			kind = model.JobFetch
		}
		jobs = append(jobs, model.JobRecord{Kind: kind, Items: [2]*model.Unit{addCandidates[0].Unit}})

	case len(addCandidates) == 1 && len(delCandidates) >= 1:
		jobs = append(jobs, model.JobRecord{
			Kind:  model.JobUpgrade,
			Items: [2]*model.Unit{addCandidates[0].Unit, delCandidates[0].Unit},
		})
		for _, del := range delCandidates[1:] {
			jobs = append(jobs, model.JobRecord{Kind: model.JobDelete, Items: [2]*model.Unit{del.Unit}})
		}

	case len(addCandidates) == 0 && len(delCandidates) >= 1:
		for _, del := range delCandidates {
			jobs = append(jobs, model.JobRecord{Kind: model.JobDelete, Items: [2]*model.Unit{del.Unit}})
		}
	}

	return jobs
}
