package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"uvbump/internal/ports"
	"uvbump/internal/shared"
)

// ExecCommandAdapter runs programs from PATH. Every call gets its own
// deadline when Timeout is positive.
type ExecCommandAdapter struct {
	Timeout time.Duration
}

func NewExecCommandAdapter(timeout time.Duration) ExecCommandAdapter {
	return ExecCommandAdapter{Timeout: timeout}
}

func (a ExecCommandAdapter) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "NO_COLOR=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return output, fmt.Errorf("%s timed out after %s: %w", commandLine(name, args), a.Timeout, ctx.Err())
		}
		return output, fmt.Errorf("%s: %w", commandLine(name, args), shared.CommandError(stderr.Bytes(), err))
	}
	return output, nil
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

var _ ports.CommandPort = ExecCommandAdapter{}
