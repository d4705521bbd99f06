package adapters

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"uvbump/internal/ports"
	"uvbump/internal/types"
)

const pipAvailableVersionsPrefix = "Available versions:"

var pipIndexHeaderPattern = regexp.MustCompile(`^\S+\s+\(([^)]+)\)\s*$`)

// PipCommandIndexAdapter asks pip, run through uvx, for the versions of a
// package. It honours pip's own configuration when Index is empty.
type PipCommandIndexAdapter struct {
	Runner     ports.CommandPort
	Dir        string
	Index      string
	IncludePre bool
}

func NewPipCommandIndexAdapter(runner ports.CommandPort, dir string, index string, includePre bool) PipCommandIndexAdapter {
	return PipCommandIndexAdapter{Runner: runner, Dir: dir, Index: strings.TrimSpace(index), IncludePre: includePre}
}

func (a PipCommandIndexAdapter) Lookup(ctx context.Context, name string) (types.IndexRecord, error) {
	args := []string{"pip", "index", "versions", name}
	if a.Index != "" {
		args = append(args, "--index-url", normalizePipSimpleIndex(a.Index))
	}
	if a.IncludePre {
		args = append(args, "--pre")
	}
	output, err := a.Runner.Run(ctx, a.Dir, "uvx", args...)
	if err != nil {
		if strings.Contains(err.Error(), "No matching distribution") {
			return types.IndexRecord{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("package not found in index").
				WithCause(err)
		}
		return types.IndexRecord{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("pip index versions failed").
			WithCause(err)
	}
	versions, latest, err := parsePipIndexVersions(output)
	if err != nil {
		return types.IndexRecord{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("unexpected pip index output for %s", name)).
			WithCause(err)
	}
	return newIndexRecord(types.ProjectKindUv, name, versions, latest, a.IncludePre), nil
}

// parsePipIndexVersions reads the output of `pip index versions`:
//
//	requests (2.32.3)
//	Available versions: 2.32.3, 2.32.2, 2.31.0
func parsePipIndexVersions(output []byte) ([]string, string, error) {
	var latest string
	var versions []string
	found := false
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if match := pipIndexHeaderPattern.FindStringSubmatch(line); latest == "" && len(match) == 2 {
			latest = strings.TrimSpace(match[1])
			continue
		}
		rest, ok := strings.CutPrefix(line, pipAvailableVersionsPrefix)
		if !ok {
			continue
		}
		found = true
		for _, version := range strings.Split(rest, ",") {
			if version = strings.TrimSpace(version); version != "" {
				versions = append(versions, version)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", fmt.Errorf("missing %q line", pipAvailableVersionsPrefix)
	}
	return versions, latest, nil
}

var _ ports.IndexPort = PipCommandIndexAdapter{}
