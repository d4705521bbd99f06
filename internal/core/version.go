package core

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"uvbump/internal/types"
)

// versionCache memoizes parsed version objects so that equality checks
// and newest-version selection parse each string once. For uv projects it
// holds PEP 440 versions; for npm projects semantic versions.
type versionCache struct {
	kind types.ProjectKind
	pep  map[string]pep440.Version
	sem  map[string]*semver.Version
	bad  map[string]struct{}
}

// newVersionCache creates an empty cache for the given project kind.
func newVersionCache(kind types.ProjectKind) *versionCache {
	return &versionCache{
		kind: kind,
		pep:  map[string]pep440.Version{},
		sem:  map[string]*semver.Version{},
		bad:  map[string]struct{}{},
	}
}

// pepVersion returns a parsed PEP 440 version, caching the result.
func (c *versionCache) pepVersion(value string) (pep440.Version, bool) {
	if parsed, ok := c.pep[value]; ok {
		return parsed, true
	}
	if _, ok := c.bad[value]; ok {
		return pep440.Version{}, false
	}
	parsed, err := pep440.Parse(value)
	if err != nil {
		c.bad[value] = struct{}{}
		return pep440.Version{}, false
	}
	c.pep[value] = parsed
	return parsed, true
}

// semVersion returns a parsed semantic version, caching the result.
func (c *versionCache) semVersion(value string) (*semver.Version, bool) {
	if parsed, ok := c.sem[value]; ok {
		return parsed, true
	}
	if _, ok := c.bad[value]; ok {
		return nil, false
	}
	parsed, err := semver.NewVersion(value)
	if err != nil {
		c.bad[value] = struct{}{}
		return nil, false
	}
	c.sem[value] = parsed
	return parsed, true
}

// valid reports whether value parses under the cache's ordering rules.
func (c *versionCache) valid(value string) bool {
	switch c.kind {
	case types.ProjectKindNpm:
		_, ok := c.semVersion(value)
		return ok
	default:
		_, ok := c.pepVersion(value)
		return ok
	}
}

// compare returns -1, 0, or 1 comparing two version strings. The bool is
// false when either side does not parse, in which case no ordering exists.
func (c *versionCache) compare(a string, b string) (int, bool) {
	switch c.kind {
	case types.ProjectKindNpm:
		v1, ok := c.semVersion(a)
		if !ok {
			return 0, false
		}
		v2, ok := c.semVersion(b)
		if !ok {
			return 0, false
		}
		return v1.Compare(v2), true
	default:
		v1, ok := c.pepVersion(a)
		if !ok {
			return 0, false
		}
		v2, ok := c.pepVersion(b)
		if !ok {
			return 0, false
		}
		return v1.Compare(v2), true
	}
}

// equal compares two versions by ordering rules when both parse and by
// plain string equality otherwise. malformed is true when the fallback
// was used.
func (c *versionCache) equal(a string, b string) (same bool, malformed bool) {
	if cmp, ok := c.compare(a, b); ok {
		return cmp == 0, false
	}
	return strings.TrimSpace(a) == strings.TrimSpace(b), true
}

// preRelease reports whether a parsed version is a pre-release.
func (c *versionCache) preRelease(value string) bool {
	switch c.kind {
	case types.ProjectKindNpm:
		parsed, ok := c.semVersion(value)
		return ok && parsed.Prerelease() != ""
	default:
		parsed, ok := c.pepVersion(value)
		return ok && parsed.IsPreRelease()
	}
}

// newest selects the highest version. Unparsable entries are ignored and
// pre-releases only count when includePre is set or when nothing else is
// available. Returns "" when no entry parses.
func (c *versionCache) newest(versions []string, includePre bool) string {
	var best, bestPre string
	for _, version := range versions {
		version = strings.TrimSpace(version)
		if !c.valid(version) {
			continue
		}
		if !includePre && c.preRelease(version) {
			if bestPre == "" || c.greater(version, bestPre) {
				bestPre = version
			}
			continue
		}
		if best == "" || c.greater(version, best) {
			best = version
		}
	}
	if best == "" {
		return bestPre
	}
	return best
}

func (c *versionCache) greater(a string, b string) bool {
	cmp, ok := c.compare(a, b)
	return ok && cmp > 0
}

// NewestVersion returns the highest version in versions according to the
// ordering rules of kind.
func NewestVersion(kind types.ProjectKind, versions []string, includePre bool) string {
	return newVersionCache(kind).newest(versions, includePre)
}

// SortVersions orders versions ascending. Unparsable entries sort after
// parsable ones, by string.
func SortVersions(kind types.ProjectKind, versions []string) []string {
	cache := newVersionCache(kind)
	out := append([]string(nil), versions...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		validA, validB := cache.valid(a), cache.valid(b)
		switch {
		case validA && validB:
			cmp, _ := cache.compare(a, b)
			return cmp < 0
		case validA != validB:
			return validA
		default:
			return a < b
		}
	})
	return out
}
