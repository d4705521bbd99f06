package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"uvbump/internal/types"
)

// pipOpTokens is the ordered list of PEP 440 operators tried while
// parsing a clause. Longer tokens must precede shorter ones to avoid false
// matches (e.g. "===" before "==", ">=" before ">").
var pipOpTokens = []types.ConstraintOp{
	types.ConstraintOpArbitrary,
	types.ConstraintOpEq2,
	types.ConstraintOpNe,
	types.ConstraintOpCompat,
	types.ConstraintOpGte,
	types.ConstraintOpLte,
	types.ConstraintOpGt,
	types.ConstraintOpLt,
}

var npmOpTokens = []types.ConstraintOp{
	types.ConstraintOpGte,
	types.ConstraintOpLte,
	types.ConstraintOpCaret,
	types.ConstraintOpTilde,
	types.ConstraintOpGt,
	types.ConstraintOpLt,
	types.ConstraintOpEq,
}

var npmNonRegistryPrefixes = []string{
	"git+", "git:", "github:", "gitlab:", "bitbucket:",
	"file:", "link:", "workspace:", "portal:",
	"http:", "https:", "npm:",
}

var pipRequirementPattern = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:\[([^\]]*)\])?\s*(.*)$`)

// ParsePipRequirement splits a PEP 508 requirement string such as
// `requests[socks]>=2.0,<3; python_version < "3.12"` into its parts.
func ParsePipRequirement(raw string) (types.Requirement, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.Requirement{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty requirement")
	}
	req := types.Requirement{Raw: trimmed}
	body := trimmed
	if idx := strings.Index(body, ";"); idx >= 0 {
		req.Marker = strings.TrimSpace(body[idx+1:])
		body = strings.TrimSpace(body[:idx])
	}
	match := pipRequirementPattern.FindStringSubmatch(body)
	if match == nil {
		return types.Requirement{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid requirement: %s", trimmed))
	}
	req.Name = match[1]
	for _, extra := range strings.Split(match[2], ",") {
		if extra = strings.TrimSpace(extra); extra != "" {
			req.Extras = append(req.Extras, extra)
		}
	}
	rest := strings.TrimSpace(match[3])
	if strings.HasPrefix(rest, "@") {
		req.DirectURL = strings.TrimSpace(strings.TrimPrefix(rest, "@"))
		return req, nil
	}
	rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(rest, "("), ")"))
	if rest == "" {
		return req, nil
	}
	for _, clause := range strings.Split(rest, ",") {
		constraint, err := parseClause(clause, pipOpTokens)
		if err != nil {
			return types.Requirement{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid requirement: %s", trimmed)).
				WithCause(err)
		}
		req.Constraints = append(req.Constraints, constraint)
	}
	return req, nil
}

// ParseNpmSpec interprets a package.json version spec. Bare versions and
// "=" prefixed versions become equality constraints; a single leading
// operator becomes that constraint; anything more involved (hyphen ranges,
// "||" alternatives, x-ranges, tags) is kept verbatim with ConstraintOpNone.
func ParseNpmSpec(name string, spec string) (types.Requirement, error) {
	trimmed := strings.TrimSpace(spec)
	req := types.Requirement{Name: strings.TrimSpace(name), Raw: trimmed}
	if req.Name == "" {
		return types.Requirement{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty package name")
	}
	for _, prefix := range npmNonRegistryPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			req.DirectURL = trimmed
			return req, nil
		}
	}
	if trimmed == "" || trimmed == "*" || trimmed == "latest" {
		return req, nil
	}
	if strings.ContainsAny(trimmed, " |") {
		req.Constraints = []types.Constraint{{Op: types.ConstraintOpNone, Version: trimmed}}
		return req, nil
	}
	if _, err := semver.StrictNewVersion(strings.TrimPrefix(trimmed, "v")); err == nil {
		req.Constraints = []types.Constraint{{Op: types.ConstraintOpEq, Version: strings.TrimPrefix(trimmed, "v")}}
		return req, nil
	}
	constraint, err := parseClause(trimmed, npmOpTokens)
	if err != nil {
		req.Constraints = []types.Constraint{{Op: types.ConstraintOpNone, Version: trimmed}}
		return req, nil
	}
	if constraint.Op == types.ConstraintOpEq {
		if _, err := semver.StrictNewVersion(constraint.Version); err != nil {
			constraint.Op = types.ConstraintOpNone
			constraint.Version = trimmed
		}
	}
	req.Constraints = []types.Constraint{constraint}
	return req, nil
}

// ProjectVersion returns the version a requirement pins. Exact pins always
// qualify. Under InexactPinPolicyBound the version of the first bound is
// used instead, which mirrors tools that treat ">=1.2" as "project is on
// 1.2". The bool is false when the requirement contributes no pin.
func ProjectVersion(req types.Requirement, policy types.InexactPinPolicy) (string, bool) {
	if req.Exact() {
		return req.Constraints[0].Version, true
	}
	if policy != types.InexactPinPolicyBound || req.DirectURL != "" || len(req.Constraints) == 0 {
		return "", false
	}
	first := req.Constraints[0]
	switch first.Op {
	case types.ConstraintOpNe:
		return "", false
	case types.ConstraintOpNone:
		return boundFromRange(first.Version)
	}
	version := strings.TrimSuffix(first.Version, ".*")
	if version == "" || strings.Contains(version, "*") {
		return "", false
	}
	return version, true
}

// parseClause reads a single "<op><version>" clause.
func parseClause(raw string, ops []types.ConstraintOp) (types.Constraint, error) {
	clause := strings.TrimSpace(raw)
	for _, op := range ops {
		if strings.HasPrefix(clause, string(op)) {
			version := strings.TrimSpace(strings.TrimPrefix(clause, string(op)))
			if version == "" {
				return types.Constraint{}, fmt.Errorf("missing version in clause %q", clause)
			}
			return types.Constraint{Op: op, Version: version}, nil
		}
	}
	return types.Constraint{}, fmt.Errorf("unknown operator in clause %q", clause)
}

// boundFromRange extracts the first concrete version from a compound npm
// range such as "^1.2.3 || ^2.0.0" or "1.2.3 - 1.4.0".
func boundFromRange(value string) (string, bool) {
	alternative := strings.TrimSpace(strings.Split(value, "||")[0])
	fields := strings.Fields(alternative)
	if len(fields) == 0 {
		return "", false
	}
	token := fields[0]
	for _, op := range npmOpTokens {
		token = strings.TrimPrefix(token, string(op))
	}
	token = strings.TrimPrefix(token, "v")
	if _, err := semver.StrictNewVersion(token); err != nil {
		return "", false
	}
	return token, true
}
