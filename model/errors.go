package model

import (
	"strings"

	"github.com/pkg/errors"
)

// ConflictError reports a top-level UNSAT clause: every literal in the
// clause is unsatisfiable under the current (fully or partially resolved)
// assignment. Rendered the way pkg_solve_propagate_units builds its
// err_msg sbuf: one "NAME(local, want keep/remove)" or "NAME(remote, want
// install/ignore)" fragment per participant.
type ConflictError struct {
	Clause *Clause
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	b.WriteString("cannot resolve conflict between ")
	for _, lit := range e.Clause.Literals {
		v := lit.Var
		if v.Unit.Installed {
			want := "remove"
			if v.ToInstall {
				want = "keep"
			}
			b.WriteString(v.Unit.UniqueID)
			b.WriteString("(local, want ")
			b.WriteString(want)
			b.WriteString("), ")
		} else {
			want := "ignore"
			if v.ToInstall {
				want = "install"
			}
			b.WriteString(v.Unit.UniqueID)
			b.WriteString("(remote, want ")
			b.WriteString(want)
			b.WriteString("), ")
		}
	}
	b.WriteString("please resolve it manually")
	return b.String()
}

// NewConflictError wraps a conflicting clause as an error.
func NewConflictError(c *Clause) error {
	return &ConflictError{Clause: c}
}

// InternalError reports a violated solver invariant (e.g. more than one
// install candidate in a chain, or an unresolved variable reaching the Job
// Emitter). The affected chain is skipped by the caller; the overall call
// still fails.
type InternalError struct {
	UniqueID string
	Reason   string
}

func (e *InternalError) Error() string {
	return "internal solver error: " + e.UniqueID + ": " + e.Reason
}

// NewInternalError builds an InternalError wrapped with a stack trace via
// pkg/errors, so callers further up the chain can still errors.Cause() it.
func NewInternalError(uid, reason string) error {
	return errors.WithStack(&InternalError{UniqueID: uid, Reason: reason})
}

// ErrUnsatisfiable is returned by the search loop when propagation,
// pure-clause seeding and backtracking all fail to make progress and no
// frame remains to retreat to.
var ErrUnsatisfiable = errors.New("problem is unsatisfiable")

// ErrUnresolvedVariable is returned by ToJobs when a variable reached the
// Job Emitter without ever being resolved.
var ErrUnresolvedVariable = errors.New("cannot emit jobs: unresolved variable")

// ErrDimacsParse is returned when the DIMACS assignment reader never sees
// a terminating 0 token.
var ErrDimacsParse = errors.New("cannot parse sat solver output")

// ErrDimacsUnsat is returned when the external solver's output explicitly
// reports UNSAT — a REDESIGN FLAG fix over the original implementation,
// which fell through to ErrDimacsParse with a misleading message.
var ErrDimacsUnsat = errors.New("external sat solver reported unsatisfiable")
