package adapters

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"uvbump/internal/ports"
	"uvbump/internal/shared"
	"uvbump/internal/types"
)

var uvExportArgs = []string{
	"export",
	"--locked",
	"--all-packages",
	"--all-groups",
	"--all-extras",
	"--format", "requirements-txt",
	"--no-hashes",
}

// UvExportAdapter reads installed versions from the project's lock file
// through `uv export`.
type UvExportAdapter struct {
	Runner ports.CommandPort
}

func NewUvExportAdapter(runner ports.CommandPort) UvExportAdapter {
	return UvExportAdapter{Runner: runner}
}

func (a UvExportAdapter) Installed(ctx context.Context, root string) (types.Installed, error) {
	output, err := a.Runner.Run(ctx, root, "uv", uvExportArgs...)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("uv export failed in %s", root)).
			WithCause(err)
	}
	installed, err := parseUvExport(output)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("unexpected uv export output").
			WithCause(err)
	}
	log.Debug().Int("packages", len(installed)).Msg("read installed versions from uv export")
	return installed, nil
}

// parseUvExport reads requirements.txt style output where every package
// line is name==version, optionally followed by a marker.
func parseUvExport(output []byte) (types.Installed, error) {
	installed := types.Installed{}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	seen := false
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seen = true
		line = strings.TrimSpace(strings.TrimSuffix(line, "\\"))
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, ".") || strings.HasPrefix(line, "/") {
			continue
		}
		if marker := strings.Index(line, ";"); marker >= 0 {
			line = strings.TrimSpace(line[:marker])
		}
		if strings.Contains(line, " @ ") {
			log.Debug().Str("requirement", line).Msg("skipping direct reference in uv export")
			continue
		}
		name, version, ok := strings.Cut(line, "==")
		name = strings.TrimSpace(name)
		version = strings.TrimSpace(version)
		if !ok || name == "" || version == "" {
			return nil, fmt.Errorf("line %d: expected name==version, got %q", lineNumber, line)
		}
		installed[shared.NormalizePipName(name)] = types.InstalledRecord{Name: name, Version: version}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if seen && len(installed) == 0 {
		log.Warn().Msg("uv export listed no registry packages")
	}
	return installed, nil
}

var _ ports.EnvironmentPort = UvExportAdapter{}
