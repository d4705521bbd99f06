// Package shared provides common utility functions used across multiple
// packages in the uvbump codebase.
package shared

import (
	"fmt"
	"regexp"
	"strings"
)

var pipSeparatorRun = regexp.MustCompile(`[-_.]+`)

// NormalizePipName lowercases a Python package name and folds runs of
// underscores, dots and hyphens into a single hyphen, following PEP 503
// normalization.
func NormalizePipName(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	return pipSeparatorRun.ReplaceAllString(lower, "-")
}

// NormalizeNpmName lowercases an npm package name. Scope separators are
// significant and kept as is.
func NormalizeNpmName(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// CommandError prefixes err with the trimmed output of the failed command,
// usually its stderr. Blank output returns err unchanged.
func CommandError(output []byte, err error) error {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return err
	}
	return fmt.Errorf("%s: %w", trimmed, err)
}
