package ports

import "context"

// CommandPort runs an external program in dir and returns its stdout.
// A non-zero exit is reported as an error together with whatever was
// written to stdout.
type CommandPort interface {
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}
