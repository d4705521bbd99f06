package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"uvbump/internal/ports"
	"uvbump/internal/shared"
	"uvbump/internal/types"
)

type pypiProject struct {
	Info struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"info"`
	Releases map[string][]pypiFile `json:"releases"`
}

type pypiFile struct {
	Filename string `json:"filename"`
	Yanked   bool   `json:"yanked"`
}

// PypiJSONIndexAdapter queries the PyPI JSON API (/pypi/<name>/json).
type PypiJSONIndexAdapter struct {
	Base       string
	IncludePre bool
	HTTP       HTTPConfig
}

func NewPypiJSONIndexAdapter(base string, includePre bool, cfg HTTPConfig) PypiJSONIndexAdapter {
	return PypiJSONIndexAdapter{Base: normalizePypiJSONBase(base), IncludePre: includePre, HTTP: cfg}
}

func (a PypiJSONIndexAdapter) Lookup(ctx context.Context, name string) (types.IndexRecord, error) {
	base := normalizePypiJSONBase(a.Base)
	normalized := shared.NormalizePipName(name)
	endpoint := fmt.Sprintf("%s/pypi/%s/json", base, url.PathEscape(normalized))
	body, err := fetchIndexDocument(ctx, endpoint, "application/json", normalizeHTTPConfig(a.HTTP))
	if err != nil {
		return types.IndexRecord{}, err
	}
	var project pypiProject
	if err := json.Unmarshal(body, &project); err != nil {
		return types.IndexRecord{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to decode index response for %s", name)).
			WithCause(err)
	}
	return newIndexRecord(types.ProjectKindUv, name, availableReleases(project.Releases), project.Info.Version, a.IncludePre), nil
}

// availableReleases drops releases without files and releases whose files
// are all yanked.
func availableReleases(releases map[string][]pypiFile) []string {
	var versions []string
	for version, files := range releases {
		if len(files) == 0 {
			continue
		}
		yanked := true
		for _, file := range files {
			if !file.Yanked {
				yanked = false
				break
			}
		}
		if yanked {
			continue
		}
		versions = append(versions, version)
	}
	return versions
}

// normalizePypiJSONBase accepts index URLs in their simple or JSON API
// forms and returns the host root.
func normalizePypiJSONBase(value string) string {
	base := indexBase(value, DefaultPypiIndex)
	for _, suffix := range []string{"/simple", "/pypi"} {
		base = strings.TrimSuffix(base, suffix)
	}
	return base
}

var _ ports.IndexPort = PypiJSONIndexAdapter{}
