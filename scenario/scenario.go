// Package scenario loads an in-memory universe and request set from JSON,
// standing in for the repository-backed Universe Provider and Request
// Source spec.md §1 places out of scope. It exists so the solve package
// can be driven end to end without any real package-repository I/O —
// exactly the boundary spec.md draws around "building the universe of
// candidates" and "repository I/O".
package scenario

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/blang/semver/v4"

	"github.com/CptPie/pkgsolve/model"
)

// UnitSpec is the JSON shape of one candidate package.
type UnitSpec struct {
	UniqueID       string         `json:"unique_id"`
	Digest         string         `json:"digest"`
	Installed      bool           `json:"installed"`
	Priority       int            `json:"priority,omitempty"`
	Dependencies   []string       `json:"dependencies,omitempty"`
	Conflicts      []ConflictSpec `json:"conflicts,omitempty"`
	RequiredShlibs []string       `json:"required_shlibs,omitempty"`
	Provides       []string       `json:"provides,omitempty"`
}

// ConflictSpec is the JSON shape of one declared conflict.
type ConflictSpec struct {
	UniqueID string `json:"unique_id"`
	Kind     string `json:"kind"` // "remote-local" or "remote-remote"
}

// RequestSpec is the JSON shape of one install/delete request.
type RequestSpec struct {
	UniqueID string `json:"unique_id"`
	Action   string `json:"action"` // "install" or "delete"
}

// Scenario is the JSON document Load reads: a flat list of units (grouped
// into chains by UniqueID in file order) plus the requests and job type
// driving one solve.
type Scenario struct {
	JobType  string        `json:"job_type"`
	Units    []UnitSpec    `json:"units"`
	Requests []RequestSpec `json:"requests"`
}

// Load decodes a Scenario document from r and validates it: every
// dependency, conflict, and provides-requirement target unique-id need not
// exist (the solver tolerates that at build time), but digests that look
// like semver must actually parse, since a malformed digest is almost
// always an authoring mistake in one of these documents rather than a
// legitimate opaque identifier.
func Load(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}

	for _, u := range s.Units {
		if u.UniqueID == "" {
			return nil, fmt.Errorf("unit with empty unique_id")
		}
		if looksLikeSemver(u.Digest) {
			if _, err := semver.Parse(u.Digest); err != nil {
				return nil, fmt.Errorf("unit %s: digest %q looks like a version but does not parse: %w", u.UniqueID, u.Digest, err)
			}
		}
	}

	return &s, nil
}

func looksLikeSemver(digest string) bool {
	if digest == "" || digest[0] < '0' || digest[0] > '9' {
		return false
	}
	dots := 0
	for _, r := range digest {
		if r == '.' {
			dots++
		}
	}
	return dots == 2
}

// Universe implements solve.UniverseProvider over a Scenario's flat unit
// list, grouping by UniqueID in first-seen order and indexing Provides.
type Universe struct {
	chains    [][]*model.Unit
	providers map[string][]*model.Unit
}

// NewUniverse builds a Universe from scenario units, converting each
// UnitSpec into a model.Unit and preserving file order both within and
// across chains.
func NewUniverse(spec *Scenario) *Universe {
	order := make([]string, 0)
	byID := make(map[string][]*model.Unit)
	providers := make(map[string][]*model.Unit)

	for _, us := range spec.Units {
		unit := &model.Unit{
			UniqueID:       us.UniqueID,
			Digest:         us.Digest,
			Installed:      us.Installed,
			Priority:       us.Priority,
			Dependencies:   append([]string(nil), us.Dependencies...),
			RequiredShlibs: append([]string(nil), us.RequiredShlibs...),
		}
		for _, cs := range us.Conflicts {
			kind := model.ConflictRemoteLocal
			if cs.Kind == "remote-remote" {
				kind = model.ConflictRemoteRemote
			}
			unit.Conflicts = append(unit.Conflicts, model.Conflict{UniqueID: cs.UniqueID, Kind: kind})
		}

		if _, seen := byID[us.UniqueID]; !seen {
			order = append(order, us.UniqueID)
		}
		byID[us.UniqueID] = append(byID[us.UniqueID], unit)

		for _, shlib := range us.Provides {
			providers[shlib] = append(providers[shlib], unit)
		}
	}

	chains := make([][]*model.Unit, 0, len(order))
	for _, uid := range order {
		chains = append(chains, byID[uid])
	}

	return &Universe{chains: chains, providers: providers}
}

// Chains implements solve.UniverseProvider.
func (u *Universe) Chains() [][]*model.Unit { return u.chains }

// Providers implements solve.UniverseProvider.
func (u *Universe) Providers(shlib string) []*model.Unit { return u.providers[shlib] }

// Requests implements solve.RequestSource over a Scenario's flat request
// list plus its declared job type.
type Requests struct {
	jobType  model.JobType
	install  map[string]bool
	deleteOf map[string]bool
}

// NewRequests builds a Requests from scenario requests, keyed by the
// unique-id named in each request (not by Unit identity, matching how a
// caller names a package independent of which candidate digest wins).
func NewRequests(spec *Scenario) *Requests {
	r := &Requests{
		jobType:  parseJobType(spec.JobType),
		install:  make(map[string]bool),
		deleteOf: make(map[string]bool),
	}
	for _, req := range spec.Requests {
		switch req.Action {
		case "install":
			r.install[req.UniqueID] = true
		case "delete":
			r.deleteOf[req.UniqueID] = true
		}
	}
	return r
}

func parseJobType(s string) model.JobType {
	switch s {
	case "delete":
		return model.JobTypeDelete
	case "fetch":
		return model.JobTypeFetch
	case "autoremove":
		return model.JobTypeAutoremove
	case "upgrade":
		return model.JobTypeUpgrade
	default:
		return model.JobTypeInstall
	}
}

// JobType implements solve.RequestSource.
func (r *Requests) JobType() model.JobType { return r.jobType }

// IsInstallRequested implements solve.RequestSource.
func (r *Requests) IsInstallRequested(u *model.Unit) bool { return r.install[u.UniqueID] }

// IsDeleteRequested implements solve.RequestSource.
func (r *Requests) IsDeleteRequested(u *model.Unit) bool { return r.deleteOf[u.UniqueID] }
