package app

import (
	"time"

	"uvbump/internal/types"
)

const (
	DefaultTimeout = 20 * time.Second
	DefaultWorkers = 4
)

type ReportRequest struct {
	Root         string
	Kind         types.ProjectKind
	Timeout      time.Duration
	Index        string
	IndexBackend types.IndexBackend
	IndexUser    string
	IndexToken   string
	Workers      int
	Pre          bool
	InexactPins  types.InexactPinPolicy
	Format       types.OutputFormat
}

type ReportResult struct {
	Comparison types.Comparison
	// Unavailable lists pinned packages whose newest version could not be
	// determined, by display name.
	Unavailable []string
}
