package core

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uvbump/internal/types"
)

func TestRenderTableAlignsColumns(t *testing.T) {
	renderer := NewTableRenderer()
	out := renderer.Render(t.Context(), []string{"A", "BB", "C"}, [][]string{
		{"xxx", "y", "z"},
		{"q", "wwwww", "last"},
	})
	want := strings.Join([]string{
		"A    BB     C",
		"xxx  y      z",
		"q    wwwww  last",
		"",
	}, "\n")
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("unexpected table (-want +got):\n%s", diff)
	}
}

func TestRenderTableHeaderOnly(t *testing.T) {
	out := NewTableRenderer().Render(t.Context(), ReportHeaders, nil)
	assert.Equal(t, "Package Name  Installed Version  Project Version  Newest Version  Suggested Action\n", out)
}

func TestRenderTableWidthsMatchLongestCell(t *testing.T) {
	rows := TableRows([]types.ComparisonRow{
		{Name: "a-very-long-package-name-indeed", Installed: "1.0", Pinned: "1.0", Newest: "2.0", Action: ActionUpdate},
		{Name: "b", Pinned: "0.1", Action: ActionUpdate},
	})
	out := NewTableRenderer().Render(t.Context(), ReportHeaders, rows)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)

	nameWidth := utf8.RuneCountInString("a-very-long-package-name-indeed")
	for _, line := range lines {
		assert.Equal(t, ColumnSeparator, line[nameWidth:nameWidth+len(ColumnSeparator)], line)
		assert.False(t, strings.HasSuffix(line, " "), "trailing whitespace in %q", line)
	}
	assert.Contains(t, lines[2], PlaceholderAbsent)
	assert.Contains(t, lines[2], PlaceholderNewest)
	assert.True(t, strings.HasPrefix(lines[1], "a-very-long-package-name-indeed  1.0 "))
}

func TestRenderTableIdempotent(t *testing.T) {
	rows := [][]string{{"requests", "2.32.3", "2.31.0", "2.32.3", ActionUpdate}}
	renderer := NewTableRenderer()
	first := renderer.Render(t.Context(), ReportHeaders, rows)
	second := renderer.Render(t.Context(), ReportHeaders, rows)
	assert.Equal(t, first, second)
}

func TestRenderTableDoesNotTruncate(t *testing.T) {
	long := strings.Repeat("x", 120)
	out := NewTableRenderer().Render(t.Context(), ReportHeaders, [][]string{{long, "1", "1", "1", ActionBump}})
	assert.Contains(t, out, long)
	assert.Contains(t, out, ActionBump)
}

func TestRenderTableRejectsRaggedRows(t *testing.T) {
	assert.Panics(t, func() {
		NewTableRenderer().Render(t.Context(), ReportHeaders, [][]string{{"only", "two"}})
	})
}

func TestTableRowsPlaceholders(t *testing.T) {
	rows := TableRows([]types.ComparisonRow{{Name: "obscurepkg", Pinned: "1.0.0", Action: ActionBump}})
	want := [][]string{{"obscurepkg", PlaceholderAbsent, "1.0.0", PlaceholderNewest, ActionBump}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}
