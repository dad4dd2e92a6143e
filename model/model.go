// Package model holds the data types shared by the solve and dimacs
// packages: the package-manager universe's candidate units, the boolean
// variables and clauses built from them, and the job records a solved
// problem folds down to.
package model

import "fmt"

// ConflictKind distinguishes the two conflict shapes a Unit may declare.
type ConflictKind int

const (
	// ConflictRemoteLocal fires between a remote candidate and an
	// installed one (either direction).
	ConflictRemoteLocal ConflictKind = iota
	// ConflictRemoteRemote fires only between two remote candidates.
	ConflictRemoteRemote
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictRemoteLocal:
		return "remote-local"
	case ConflictRemoteRemote:
		return "remote-remote"
	default:
		return "unknown"
	}
}

// Conflict names another unique-id this unit cannot coexist with.
type Conflict struct {
	UniqueID string
	Kind     ConflictKind
}

// Unit is a candidate package, opaque to the solver beyond these fields.
type Unit struct {
	UniqueID       string
	Digest         string
	Installed      bool
	Priority       int
	Dependencies   []string
	Conflicts      []Conflict
	RequiredShlibs []string
}

func (u *Unit) origin() string {
	if u.Installed {
		return "local"
	}
	return "remote"
}

// Variable is the boolean variable attached to one candidate Unit.
type Variable struct {
	Unit      *Unit
	UniqueID  string
	Digest    string
	// Priority is copied from Unit.Priority at Variable Table build time.
	// The core solver never reads it for decision-making; it is surfaced
	// read-only for diagnostics and DIMACS variable-ordering comments.
	Priority  int
	ToInstall bool
	Resolved  bool
	Rules     []*Clause

	// Prev/Next link Variables sharing the same UniqueID into a chain,
	// insertion order, as required by spec.md §4.1.
	Prev, Next *Variable
}

// NRules reports how many clauses mention this variable.
func (v *Variable) NRules() int { return len(v.Rules) }

// Independent reports whether this variable has no constraining clauses
// at all (and therefore keeps its installed/not-installed state as-is).
func (v *Variable) Independent() bool { return len(v.Rules) == 0 }

func (v *Variable) String() string {
	state := "?"
	if v.Resolved {
		if v.ToInstall {
			state = "+"
		} else {
			state = "-"
		}
	}
	return fmt.Sprintf("%s-%s(%s)", v.UniqueID, v.Digest, state)
}

// Literal is a Variable together with a polarity. Satisfied iff
// (Var.ToInstall XOR Inverted) == true.
type Literal struct {
	Var      *Variable
	Inverted bool
}

// Satisfied reports whether this literal holds under the variable's
// current (tentative or final) assignment.
func (l Literal) Satisfied() bool {
	return l.Var.ToInstall != l.Inverted
}

func (l Literal) String() string {
	if l.Inverted {
		return "!" + l.Var.UniqueID
	}
	return l.Var.UniqueID
}

// Clause is a disjunction of Literals.
type Clause struct {
	Literals  []Literal
	NResolved int
}

// NItems is the clause's arity.
func (c *Clause) NItems() int { return len(c.Literals) }

// Satisfied reports whether any literal currently holds.
func (c *Clause) Satisfied() bool {
	for _, l := range c.Literals {
		if l.Satisfied() {
			return true
		}
	}
	return false
}

// DebugString renders a clause the way pkg_debug_print_rule does:
// every member shows its name and origin, and resolved members also show
// their chosen polarity.
func (c *Clause) DebugString() string {
	s := "("
	for i, l := range c.Literals {
		if i > 0 {
			s += " | "
		}
		neg := ""
		if l.Inverted {
			neg = "!"
		}
		if l.Var.Resolved {
			sign := '-'
			if l.Var.ToInstall {
				sign = '+'
			}
			s += fmt.Sprintf("%s%s(%s)(%c)", neg, l.Var.UniqueID, l.Var.Unit.origin(), sign)
		} else {
			s += fmt.Sprintf("%s%s(%s)", neg, l.Var.UniqueID, l.Var.Unit.origin())
		}
	}
	return s + ")"
}

func (c *Clause) String() string { return c.DebugString() }

// Problem owns the Variable Table, the unique-id chain-head index, and the
// clause list for one solve.
type Problem struct {
	Variables   []*Variable
	ByUniqueID  map[string]*Variable // unique-id -> chain head
	Clauses     []*Clause
	RulesCount  int
}

// ChainHead returns the first variable registered for uid, or nil.
func (p *Problem) ChainHead(uid string) *Variable {
	return p.ByUniqueID[uid]
}

// JobKind enumerates the plan actions the Job Emitter can produce.
type JobKind int

const (
	JobInstall JobKind = iota
	JobFetch
	JobUpgrade
	JobDelete
)

func (k JobKind) String() string {
	switch k {
	case JobInstall:
		return "install"
	case JobFetch:
		return "fetch"
	case JobUpgrade:
		return "upgrade"
	case JobDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// JobRecord is one entry of the resolved plan. For JobUpgrade, Items[0] is
// the replacement and Items[1] the superseded unit; for all other kinds
// only Items[0] is meaningful.
type JobRecord struct {
	Kind  JobKind
	Items [2]*Unit
}

func (j JobRecord) String() string {
	switch j.Kind {
	case JobUpgrade:
		return fmt.Sprintf("upgrade %s -> %s", j.Items[1].UniqueID, j.Items[0].Digest)
	default:
		return fmt.Sprintf("%s %s-%s", j.Kind, j.Items[0].UniqueID, j.Items[0].Digest)
	}
}

// JobType parameterizes the initial-guess heuristic (spec.md §4.4.1).
type JobType int

const (
	JobTypeInstall JobType = iota
	JobTypeDelete
	JobTypeFetch
	JobTypeAutoremove
	JobTypeUpgrade
)
