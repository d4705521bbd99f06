package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"uvbump/internal/core"
	"uvbump/internal/ports"
	"uvbump/internal/types"
)

const (
	OutOfDateLabel   = "Packages out of date:"
	CanBeBumpedLabel = "Packages can be bumped:"
)

// TextReportWriter prints both buckets as aligned tables. Empty buckets
// still print their header row.
type TextReportWriter struct {
	Renderer core.TableRenderer
}

func NewTextReportWriter() TextReportWriter {
	return TextReportWriter{Renderer: core.NewTableRenderer()}
}

func (w TextReportWriter) WriteReport(ctx context.Context, out io.Writer, comparison types.Comparison) error {
	var b strings.Builder
	b.WriteString(OutOfDateLabel + "\n")
	b.WriteString(w.Renderer.Render(ctx, core.ReportHeaders, core.TableRows(comparison.OutOfDate)))
	b.WriteString("\n")
	b.WriteString(CanBeBumpedLabel + "\n")
	b.WriteString(w.Renderer.Render(ctx, core.ReportHeaders, core.TableRows(comparison.CanBeBumped)))
	return writeReportBytes(out, []byte(b.String()))
}

type JSONReportWriter struct{}

func (JSONReportWriter) WriteReport(_ context.Context, out io.Writer, comparison types.Comparison) error {
	data, err := json.MarshalIndent(reportDocument(comparison), "", "  ")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode report").
			WithCause(err)
	}
	return writeReportBytes(out, append(data, '\n'))
}

type YAMLReportWriter struct{}

func (YAMLReportWriter) WriteReport(_ context.Context, out io.Writer, comparison types.Comparison) error {
	data, err := yaml.Marshal(reportDocument(comparison))
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode report").
			WithCause(err)
	}
	return writeReportBytes(out, data)
}

// NewReportWriter returns the writer for format.
func NewReportWriter(format types.OutputFormat) (ports.ReportWriterPort, error) {
	switch format {
	case "", types.OutputFormatText:
		return NewTextReportWriter(), nil
	case types.OutputFormatJSON:
		return JSONReportWriter{}, nil
	case types.OutputFormatYAML:
		return YAMLReportWriter{}, nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported output format: %s", format))
	}
}

func reportDocument(comparison types.Comparison) types.ReportDocument {
	return types.ReportDocument{
		OutOfDate:   reportRows(comparison.OutOfDate),
		CanBeBumped: reportRows(comparison.CanBeBumped),
	}
}

// reportRows uses the same placeholders as the text tables so every
// format carries identical values.
func reportRows(rows []types.ComparisonRow) []types.ReportRow {
	out := make([]types.ReportRow, 0, len(rows))
	for _, cells := range core.TableRows(rows) {
		out = append(out, types.ReportRow{
			Name:             cells[0],
			InstalledVersion: cells[1],
			ProjectVersion:   cells[2],
			NewestVersion:    cells[3],
			SuggestedAction:  cells[4],
		})
	}
	return out
}

func writeReportBytes(out io.Writer, data []byte) error {
	if _, err := out.Write(data); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write report").
			WithCause(err)
	}
	return nil
}

var (
	_ ports.ReportWriterPort = TextReportWriter{}
	_ ports.ReportWriterPort = JSONReportWriter{}
	_ ports.ReportWriterPort = YAMLReportWriter{}
)
