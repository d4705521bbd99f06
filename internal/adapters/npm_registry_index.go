package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"uvbump/internal/ports"
	"uvbump/internal/types"
)

const npmAbbreviatedMetadata = "application/vnd.npm.install-v1+json"

type npmPackument struct {
	Name     string                     `json:"name"`
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]json.RawMessage `json:"versions"`
}

// NpmRegistryIndexAdapter reads abbreviated package metadata from an npm
// registry.
type NpmRegistryIndexAdapter struct {
	Base       string
	IncludePre bool
	HTTP       HTTPConfig
}

func NewNpmRegistryIndexAdapter(base string, includePre bool, cfg HTTPConfig) NpmRegistryIndexAdapter {
	return NpmRegistryIndexAdapter{Base: indexBase(base, DefaultNpmRegistry), IncludePre: includePre, HTTP: cfg}
}

func (a NpmRegistryIndexAdapter) Lookup(ctx context.Context, name string) (types.IndexRecord, error) {
	endpoint := indexBase(a.Base, DefaultNpmRegistry) + "/" + url.PathEscape(name)
	body, err := fetchIndexDocument(ctx, endpoint, npmAbbreviatedMetadata, normalizeHTTPConfig(a.HTTP))
	if err != nil {
		return types.IndexRecord{}, err
	}
	var doc npmPackument
	if err := json.Unmarshal(body, &doc); err != nil {
		return types.IndexRecord{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to decode registry response for %s", name)).
			WithCause(err)
	}
	versions := make([]string, 0, len(doc.Versions))
	for version := range doc.Versions {
		versions = append(versions, version)
	}
	return newIndexRecord(types.ProjectKindNpm, name, versions, doc.DistTags["latest"], a.IncludePre), nil
}

var _ ports.IndexPort = NpmRegistryIndexAdapter{}
