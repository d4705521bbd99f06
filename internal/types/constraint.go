package types

import "strings"

type Constraint struct {
	Op      ConstraintOp
	Version string
}

// Requirement is one parsed dependency declaration from a manifest.
type Requirement struct {
	Name        string
	Extras      []string
	Constraints []Constraint
	Marker      string
	DirectURL   string
	Raw         string
}

// Exact reports whether the requirement pins a single concrete version.
func (r Requirement) Exact() bool {
	if r.DirectURL != "" || len(r.Constraints) != 1 {
		return false
	}
	constraint := r.Constraints[0]
	if constraint.Version == "" || strings.Contains(constraint.Version, "*") {
		return false
	}
	switch constraint.Op {
	case ConstraintOpEq, ConstraintOpEq2, ConstraintOpArbitrary:
		return true
	default:
		return false
	}
}
