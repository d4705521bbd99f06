package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"uvbump/internal/ports"
	"uvbump/internal/types"
)

// NpmCommandIndexAdapter asks the npm CLI for the versions of a package,
// so registry configuration and credentials come from .npmrc.
type NpmCommandIndexAdapter struct {
	Runner     ports.CommandPort
	Dir        string
	Registry   string
	IncludePre bool
}

func NewNpmCommandIndexAdapter(runner ports.CommandPort, dir string, registry string, includePre bool) NpmCommandIndexAdapter {
	return NpmCommandIndexAdapter{Runner: runner, Dir: dir, Registry: strings.TrimSpace(registry), IncludePre: includePre}
}

func (a NpmCommandIndexAdapter) Lookup(ctx context.Context, name string) (types.IndexRecord, error) {
	args := []string{"view", name, "versions", "version", "--json"}
	if a.Registry != "" {
		args = append(args, "--registry", a.Registry)
	}
	output, err := a.Runner.Run(ctx, a.Dir, "npm", args...)
	if err != nil {
		if strings.Contains(err.Error(), "E404") {
			return types.IndexRecord{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("package not found in registry").
				WithCause(err)
		}
		return types.IndexRecord{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("npm view failed").
			WithCause(err)
	}
	versions, latest, err := parseNpmView(output)
	if err != nil {
		return types.IndexRecord{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("unexpected npm view output for %s", name)).
			WithCause(err)
	}
	return newIndexRecord(types.ProjectKindNpm, name, versions, latest, a.IncludePre), nil
}

// parseNpmView accepts `npm view --json` output for the versions and
// version fields. A package with a single release prints versions as a
// string rather than a list.
func parseNpmView(output []byte) ([]string, string, error) {
	var doc struct {
		Versions json.RawMessage `json:"versions"`
		Version  string          `json:"version"`
	}
	if err := json.Unmarshal(output, &doc); err != nil {
		return nil, "", err
	}
	var versions []string
	if len(doc.Versions) > 0 {
		if err := json.Unmarshal(doc.Versions, &versions); err != nil {
			var single string
			if err := json.Unmarshal(doc.Versions, &single); err != nil {
				return nil, "", fmt.Errorf("versions field: %w", err)
			}
			versions = []string{single}
		}
	}
	if len(versions) == 0 && doc.Version == "" {
		return nil, "", fmt.Errorf("no versions reported")
	}
	return versions, doc.Version, nil
}

var _ ports.IndexPort = NpmCommandIndexAdapter{}
