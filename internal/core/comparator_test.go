package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uvbump/internal/types"
)

func names(rows []types.ComparisonRow) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Name)
	}
	return out
}

func TestCompareOutOfDateAndBumpable(t *testing.T) {
	pins := types.Pins{"requests": {Name: "requests", Version: "2.31.0"}}
	installed := types.Installed{"requests": {Name: "requests", Version: "2.32.3"}}
	lookup := NewestMap{"requests": "2.32.3"}

	result := NewVersionComparator(types.ProjectKindUv).Compare(t.Context(), pins, installed, lookup)

	want := types.Comparison{
		OutOfDate: []types.ComparisonRow{{
			Name: "requests", Installed: "2.32.3", Pinned: "2.31.0", Newest: "2.32.3", Action: ActionUpdate,
		}},
		CanBeBumped: []types.ComparisonRow{{
			Name: "requests", Installed: "2.32.3", Pinned: "2.31.0", Newest: "2.32.3", Action: ActionBump,
		}},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("unexpected comparison (-want +got):\n%s", diff)
	}
}

func TestCompareUpToDateInNeitherBucket(t *testing.T) {
	pins := types.Pins{"flask": {Name: "flask", Version: "3.0.0"}}
	installed := types.Installed{"flask": {Name: "flask", Version: "3.0.0"}}
	lookup := NewestMap{"flask": "3.0.0"}

	result := NewVersionComparator(types.ProjectKindUv).Compare(t.Context(), pins, installed, lookup)
	assert.Empty(t, result.OutOfDate)
	assert.Empty(t, result.CanBeBumped)
}

func TestCompareEquivalentVersionsAreEqual(t *testing.T) {
	pins := types.Pins{"flask": {Name: "flask", Version: "3.0"}}
	installed := types.Installed{"flask": {Name: "flask", Version: "3.0.0"}}
	lookup := NewestMap{"flask": "3.0.0"}

	result := NewVersionComparator(types.ProjectKindUv).Compare(t.Context(), pins, installed, lookup)
	assert.Empty(t, result.OutOfDate)
	assert.Empty(t, result.CanBeBumped)
}

func TestCompareNewestUnavailable(t *testing.T) {
	pins := types.Pins{"obscurepkg": {Name: "obscurepkg", Version: "1.0.0"}}
	installed := types.Installed{"obscurepkg": {Name: "obscurepkg", Version: "1.1.0"}}

	result := NewVersionComparator(types.ProjectKindUv).Compare(t.Context(), pins, installed, NewestMap{})
	assert.Empty(t, result.OutOfDate)
	require.Len(t, result.CanBeBumped, 1)
	assert.Equal(t, "", result.CanBeBumped[0].Newest)
	assert.Equal(t, ActionBump, result.CanBeBumped[0].Action)
}

func TestCompareSkipsUnpinnedPackages(t *testing.T) {
	pins := types.Pins{"requests": {Name: "requests", Version: "2.31.0"}}
	installed := types.Installed{
		"requests": {Name: "requests", Version: "2.31.0"},
		"idna":     {Name: "idna", Version: "3.6"},
	}
	var queried []string
	lookup := NewestFunc(func(name string) (string, bool) {
		queried = append(queried, name)
		return "9.9.9", true
	})

	result := NewVersionComparator(types.ProjectKindUv).Compare(t.Context(), pins, installed, lookup)
	assert.Equal(t, []string{"requests"}, queried, "lookup must only run for pinned packages")
	assert.Equal(t, []string{"requests"}, names(result.OutOfDate))
	assert.Empty(t, result.CanBeBumped)
}

func TestCompareNotInstalledStillOutOfDate(t *testing.T) {
	pins := types.Pins{"httpx": {Name: "httpx", Version: "0.26.0"}}
	lookup := NewestMap{"httpx": "0.27.0"}

	result := NewVersionComparator(types.ProjectKindUv).Compare(t.Context(), pins, types.Installed{}, lookup)
	require.Len(t, result.OutOfDate, 1)
	assert.Equal(t, "", result.OutOfDate[0].Installed)
	assert.Empty(t, result.CanBeBumped)
}

func TestCompareSortsCaseInsensitively(t *testing.T) {
	pins := types.Pins{
		"zope-interface": {Name: "zope.interface", Version: "1.0"},
		"django":         {Name: "Django", Version: "4.0"},
		"attrs":          {Name: "attrs", Version: "22.0"},
		"babel":          {Name: "Babel", Version: "2.0"},
	}
	lookup := NewestMap{
		"zope-interface": "2.0",
		"django":         "5.0",
		"attrs":          "23.0",
		"babel":          "2.14",
	}
	comparator := NewVersionComparator(types.ProjectKindUv)

	first := comparator.Compare(t.Context(), pins, types.Installed{}, lookup)
	assert.Equal(t, []string{"attrs", "Babel", "Django", "zope.interface"}, names(first.OutOfDate))

	for i := 0; i < 5; i++ {
		again := comparator.Compare(t.Context(), pins, types.Installed{}, lookup)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("comparison not stable (-first +again):\n%s", diff)
		}
	}
}

func TestCompareMalformedVersionFallsBackToStringEquality(t *testing.T) {
	pins := types.Pins{
		"custom": {Name: "custom", Version: "build-2024!!"},
		"other":  {Name: "other", Version: "release candidate"},
	}
	installed := types.Installed{
		"custom": {Name: "custom", Version: "build-2024!!"},
		"other":  {Name: "other", Version: "1.0"},
	}
	lookup := NewestMap{"custom": "build-2024!!", "other": "1.0"}

	result := NewVersionComparator(types.ProjectKindUv).Compare(t.Context(), pins, installed, lookup)
	require.Len(t, result.OutOfDate, 1)
	assert.Equal(t, "other", result.OutOfDate[0].Name)
	assert.True(t, result.OutOfDate[0].Malformed)
	require.Len(t, result.CanBeBumped, 1)
	assert.Equal(t, "other", result.CanBeBumped[0].Name)
}

func TestCompareNpmKind(t *testing.T) {
	pins := types.Pins{"react": {Name: "react", Version: "18.2.0"}}
	installed := types.Installed{"react": {Name: "react", Version: "18.2.0"}}
	lookup := NewestMap{"react": "18.10.0"}

	result := NewVersionComparator(types.ProjectKindNpm).Compare(t.Context(), pins, installed, lookup)
	assert.Equal(t, []string{"react"}, names(result.OutOfDate))
	assert.Empty(t, result.CanBeBumped)
}

func TestNewestMapEmptyIsUnavailable(t *testing.T) {
	lookup := NewestMap{"a": "", "b": "1.0"}
	_, ok := lookup.Newest("a")
	assert.False(t, ok)
	_, ok = lookup.Newest("missing")
	assert.False(t, ok)
	version, ok := lookup.Newest("b")
	assert.True(t, ok)
	assert.Equal(t, "1.0", version)
}
