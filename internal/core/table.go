package core

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	assert "github.com/ZanzyTHEbar/assert-lib"

	"uvbump/internal/types"
)

const (
	ColumnSeparator   = "  "
	PlaceholderNewest = "unavailable"
	PlaceholderAbsent = "-"
)

var ReportHeaders = []string{
	"Package Name",
	"Installed Version",
	"Project Version",
	"Newest Version",
	"Suggested Action",
}

type TableRenderer struct {
	Separator string
}

func NewTableRenderer() TableRenderer {
	return TableRenderer{Separator: ColumnSeparator}
}

// Render lays rows out under headers with every column left-aligned and
// padded to its widest cell. The last column is left unpadded so lines
// carry no trailing whitespace. Rows whose arity differs from headers are
// a programming error and panic.
func (r TableRenderer) Render(ctx context.Context, headers []string, rows [][]string) string {
	assert.NotEmpty(ctx, strings.Join(headers, ""), "table headers must be set")
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for n, row := range rows {
		if len(row) != len(headers) {
			panic(fmt.Sprintf("table row %d has %d cells, want %d", n, len(row), len(headers)))
		}
		for i, cell := range row {
			if width := utf8.RuneCountInString(cell); width > widths[i] {
				widths[i] = width
			}
		}
	}

	var sb strings.Builder
	writeLine := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString(r.Separator)
			}
			sb.WriteString(cell)
			if i < len(cells)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
			}
		}
		sb.WriteString("\n")
	}
	writeLine(headers)
	for _, row := range rows {
		writeLine(row)
	}
	return sb.String()
}

// TableRows converts comparison rows to ReportHeaders ordered cells,
// filling absent values with placeholders.
func TableRows(rows []types.ComparisonRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			row.Name,
			orPlaceholder(row.Installed, PlaceholderAbsent),
			orPlaceholder(row.Pinned, PlaceholderAbsent),
			orPlaceholder(row.Newest, PlaceholderNewest),
			row.Action,
		})
	}
	return out
}

func orPlaceholder(value string, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
