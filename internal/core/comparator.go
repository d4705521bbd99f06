package core

import (
	"context"
	"sort"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"uvbump/internal/types"
)

const (
	ActionUpdate = "Update package version"
	ActionBump   = "Bump package version in project specification"
)

// NewestLookup yields the newest published version of a package keyed by
// normalized name. The bool is false when the version is unavailable.
type NewestLookup interface {
	Newest(name string) (string, bool)
}

// NewestMap is a NewestLookup over prefetched results. Empty values count
// as unavailable.
type NewestMap map[string]string

func (m NewestMap) Newest(name string) (string, bool) {
	version, ok := m[name]
	return version, ok && version != ""
}

type NewestFunc func(name string) (string, bool)

func (f NewestFunc) Newest(name string) (string, bool) {
	return f(name)
}

type VersionComparator struct {
	kind types.ProjectKind
}

func NewVersionComparator(kind types.ProjectKind) VersionComparator {
	return VersionComparator{kind: kind}
}

// Compare joins pins, installed versions and the newest lookup into the
// two report buckets. Packages without a pin are skipped and the lookup is
// only consulted for pinned packages. Both buckets are ordered by display
// name, case-insensitively.
func (c VersionComparator) Compare(ctx context.Context, pins types.Pins, installed types.Installed, lookup NewestLookup) types.Comparison {
	cache := newVersionCache(c.kind)
	var result types.Comparison
	for _, key := range joinKeys(pins, installed) {
		pin, ok := pins[key]
		if !ok {
			continue
		}
		assert.NotEmpty(ctx, pin.Name, "pinned package must have a name")
		row := types.ComparisonRow{
			Name:      pin.Name,
			Installed: installed[key].Version,
			Pinned:    pin.Version,
		}
		if lookup != nil {
			if newest, ok := lookup.Newest(key); ok {
				row.Newest = newest
			}
		}

		outOfDate := false
		if row.Newest != "" {
			same, malformed := cache.equal(row.Pinned, row.Newest)
			row.Malformed = row.Malformed || malformed
			outOfDate = !same
		}
		canBeBumped := false
		if row.Installed != "" {
			same, malformed := cache.equal(row.Installed, row.Pinned)
			row.Malformed = row.Malformed || malformed
			canBeBumped = !same
		}
		if row.Malformed {
			log.Warn().
				Str("package", row.Name).
				Str("pinned", row.Pinned).
				Str("installed", row.Installed).
				Str("newest", row.Newest).
				Msg("unparsable version, compared as plain strings")
		}

		if outOfDate {
			update := row
			update.Action = ActionUpdate
			result.OutOfDate = append(result.OutOfDate, update)
		}
		if canBeBumped {
			bump := row
			bump.Action = ActionBump
			result.CanBeBumped = append(result.CanBeBumped, bump)
		}
	}
	sortRows(result.OutOfDate)
	sortRows(result.CanBeBumped)
	return result
}

// joinKeys returns the union of both key sets in a fixed order.
func joinKeys(pins types.Pins, installed types.Installed) []string {
	seen := make(map[string]struct{}, len(pins)+len(installed))
	keys := make([]string, 0, len(pins)+len(installed))
	for key := range pins {
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	for key := range installed {
		if _, ok := seen[key]; ok {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortRows(rows []types.ComparisonRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		left, right := strings.ToLower(rows[i].Name), strings.ToLower(rows[j].Name)
		if left != right {
			return left < right
		}
		return rows[i].Name < rows[j].Name
	})
}
