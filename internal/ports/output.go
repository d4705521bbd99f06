package ports

import (
	"context"
	"io"

	"uvbump/internal/types"
)

type ReportWriterPort interface {
	WriteReport(ctx context.Context, w io.Writer, comparison types.Comparison) error
}
