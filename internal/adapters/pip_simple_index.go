package adapters

import (
	"context"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"

	"uvbump/internal/ports"
	"uvbump/internal/shared"
	"uvbump/internal/types"
)

var (
	simpleAnchorPattern = regexp.MustCompile(`(?is)<a\s([^>]*)>`)
	simpleHrefPattern   = regexp.MustCompile(`(?i)href=["']([^"']+)["']`)
	simpleYankedPattern = regexp.MustCompile(`(?i)\sdata-yanked(\s|=|$)`)
	wheelFilePattern    = regexp.MustCompile(`^(.+?)-([0-9][^-]*)(?:-[^-]+)?-[^-]+-[^-]+-[^-]+\.whl$`)
	sdistFilePattern    = regexp.MustCompile(`^(.+?)-([0-9][^-]*)\.(?:tar\.gz|zip|tar\.bz2|tar\.xz|tgz)$`)
)

// PipSimpleIndexAdapter reads PEP 503 simple index pages.
type PipSimpleIndexAdapter struct {
	Base       string
	IncludePre bool
	HTTP       HTTPConfig
}

func NewPipSimpleIndexAdapter(base string, includePre bool, cfg HTTPConfig) PipSimpleIndexAdapter {
	return PipSimpleIndexAdapter{Base: base, IncludePre: includePre, HTTP: cfg}
}

func (a PipSimpleIndexAdapter) Lookup(ctx context.Context, name string) (types.IndexRecord, error) {
	simpleBase := normalizePipSimpleIndex(indexBase(a.Base, DefaultPypiIndex))
	endpoint := simpleBase + url.PathEscape(shared.NormalizePipName(name)) + "/"
	body, err := fetchIndexDocument(ctx, endpoint, "text/html", normalizeHTTPConfig(a.HTTP))
	if err != nil {
		return types.IndexRecord{}, err
	}
	return newIndexRecord(types.ProjectKindUv, name, parsePipVersionsFromSimple(string(body)), "", a.IncludePre), nil
}

func normalizePipSimpleIndex(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if strings.HasSuffix(trimmed, "/simple") {
		return trimmed + "/"
	}
	return trimmed + "/simple/"
}

// parsePipVersionsFromSimple collects the versions of every distribution
// file linked from a project page. Yanked files are skipped.
func parsePipVersionsFromSimple(content string) []string {
	seen := map[string]struct{}{}
	var versions []string
	for _, anchor := range simpleAnchorPattern.FindAllStringSubmatch(content, -1) {
		attrs := " " + anchor[1]
		if simpleYankedPattern.MatchString(attrs) {
			continue
		}
		href := simpleHrefPattern.FindStringSubmatch(attrs)
		if len(href) != 2 {
			continue
		}
		raw := strings.Split(href[1], "#")[0]
		raw = strings.Split(raw, "?")[0]
		version := parsePipVersionFromFilename(filepath.Base(raw))
		if version == "" {
			continue
		}
		if _, err := pep440.Parse(version); err != nil {
			continue
		}
		if _, ok := seen[version]; ok {
			continue
		}
		seen[version] = struct{}{}
		versions = append(versions, version)
	}
	return versions
}

func parsePipVersionFromFilename(filename string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return ""
	}
	if match := wheelFilePattern.FindStringSubmatch(filename); len(match) == 3 {
		return match[2]
	}
	if match := sdistFilePattern.FindStringSubmatch(filename); len(match) == 3 {
		return match[2]
	}
	return ""
}

var _ ports.IndexPort = PipSimpleIndexAdapter{}
