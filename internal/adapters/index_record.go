package adapters

import (
	"strings"

	"uvbump/internal/core"
	"uvbump/internal/types"
)

const (
	DefaultPypiIndex   = "https://pypi.org"
	DefaultNpmRegistry = "https://registry.npmjs.org"
)

// newIndexRecord orders versions for display and picks the newest one,
// falling back to the index's own "latest" marker when nothing parses.
func newIndexRecord(kind types.ProjectKind, name string, versions []string, fallback string, includePre bool) types.IndexRecord {
	sorted := core.SortVersions(kind, uniqueStrings(versions))
	newest := core.NewestVersion(kind, sorted, includePre)
	if newest == "" {
		newest = strings.TrimSpace(fallback)
	}
	return types.IndexRecord{Name: name, Newest: newest, Versions: sorted}
}

func indexBase(value string, fallback string) string {
	base := strings.TrimRight(strings.TrimSpace(value), "/")
	if base == "" {
		return fallback
	}
	return base
}
