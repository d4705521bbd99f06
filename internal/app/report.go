package app

import (
	"bytes"
	"context"
	"io"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"uvbump/internal/core"
)

// Report reads pins, installed versions and newest versions, classifies
// them and writes the report to out. The report is rendered in full
// before anything is written, so a failed run leaves out untouched.
func (s Service) Report(ctx context.Context, req ReportRequest, out io.Writer) (ReportResult, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return ReportResult{}, err
	}
	resolved, err := s.portsFor(req)
	if err != nil {
		return ReportResult{}, err
	}
	log.Debug().
		Str("root", req.Root).
		Str("kind", string(req.Kind)).
		Str("index_backend", string(req.IndexBackend)).
		Int("workers", req.Workers).
		Msg("starting report")

	pins, err := resolved.manifest.ReadPins(req.Root, req.InexactPins)
	if err != nil {
		return ReportResult{}, err
	}
	log.Debug().Int("pins", len(pins)).Msg("read project pins")

	installed, err := resolved.environment.Installed(ctx, req.Root)
	if err != nil {
		return ReportResult{}, err
	}

	newest, unavailable, err := prefetchNewest(ctx, resolved.index, pins, req.Workers)
	if err != nil {
		return ReportResult{}, err
	}

	comparison := core.NewVersionComparator(req.Kind).Compare(ctx, pins, installed, newest)

	var buf bytes.Buffer
	if err := resolved.writer.WriteReport(ctx, &buf, comparison); err != nil {
		return ReportResult{}, err
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return ReportResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write report").
			WithCause(err)
	}
	log.Info().
		Int("out_of_date", len(comparison.OutOfDate)).
		Int("can_be_bumped", len(comparison.CanBeBumped)).
		Int("unavailable", len(unavailable)).
		Msg("report complete")
	return ReportResult{Comparison: comparison, Unavailable: unavailable}, nil
}
