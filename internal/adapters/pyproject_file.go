package adapters

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"uvbump/internal/core"
	"uvbump/internal/ports"
	"uvbump/internal/shared"
	"uvbump/internal/types"
)

const pyprojectFileName = "pyproject.toml"

type pyprojectFile struct {
	Project struct {
		Name                 string           `toml:"name"`
		Dependencies         []any            `toml:"dependencies"`
		OptionalDependencies map[string][]any `toml:"optional-dependencies"`
		DependencyGroups     map[string][]any `toml:"dependency-groups"`
	} `toml:"project"`
	DependencyGroups map[string][]any `toml:"dependency-groups"`
	Tool             struct {
		Uv struct {
			Workspace struct {
				Members []string `toml:"members"`
				Exclude []string `toml:"exclude"`
			} `toml:"workspace"`
		} `toml:"uv"`
	} `toml:"tool"`
}

// PyprojectFileAdapter reads pins from a uv project's pyproject.toml and
// from the manifests of its workspace members.
type PyprojectFileAdapter struct{}

func NewPyprojectFileAdapter() PyprojectFileAdapter {
	return PyprojectFileAdapter{}
}

func (a PyprojectFileAdapter) ReadPins(root string, policy types.InexactPinPolicy) (types.Pins, error) {
	listings, err := a.DependencyListings(root)
	if err != nil {
		return nil, err
	}
	pins := types.Pins{}
	for _, listing := range listings {
		req, err := core.ParsePipRequirement(listing)
		if err != nil {
			log.Warn().Err(err).Str("requirement", listing).Msg("skipping unparsable requirement")
			continue
		}
		version, ok := core.ProjectVersion(req, policy)
		if !ok {
			log.Debug().Str("requirement", listing).Msg("requirement has no exact pin, excluded from comparison")
			continue
		}
		addPin(pins, shared.NormalizePipName(req.Name), types.PinRecord{Name: req.Name, Version: version})
	}
	return pins, nil
}

// DependencyListings returns the raw requirement strings of the root
// manifest followed by those of each workspace member, without duplicates.
func (a PyprojectFileAdapter) DependencyListings(root string) ([]string, error) {
	path := filepath.Join(root, pyprojectFileName)
	data, err := a.load(path)
	if err != nil {
		return nil, err
	}
	listings := collectDependencyListings(data)

	members, err := workspaceMembers(root, data.Tool.Uv.Workspace.Members, data.Tool.Uv.Workspace.Exclude)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		memberPath := filepath.Join(member, pyprojectFileName)
		if _, err := os.Stat(memberPath); err != nil {
			log.Debug().Str("member", member).Msg("workspace member has no pyproject.toml")
			continue
		}
		memberData, err := a.load(memberPath)
		if err != nil {
			return nil, err
		}
		listings = append(listings, collectDependencyListings(memberData)...)
	}
	return uniqueStrings(listings), nil
}

func (a PyprojectFileAdapter) load(path string) (pyprojectFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return pyprojectFile{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("pyproject.toml not found at: %s", path)).
				WithCause(err)
		}
		return pyprojectFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to read %s", path)).
			WithCause(err)
	}
	var data pyprojectFile
	if err := toml.Unmarshal(raw, &data); err != nil {
		return pyprojectFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse %s", path)).
			WithCause(err)
	}
	return data, nil
}

func collectDependencyListings(data pyprojectFile) []string {
	listings := stringEntries(data.Project.Dependencies)
	for _, group := range sortedKeys(data.Project.OptionalDependencies) {
		listings = append(listings, stringEntries(data.Project.OptionalDependencies[group])...)
	}
	for _, group := range sortedKeys(data.Project.DependencyGroups) {
		listings = append(listings, stringEntries(data.Project.DependencyGroups[group])...)
	}
	for _, group := range sortedKeys(data.DependencyGroups) {
		listings = append(listings, stringEntries(data.DependencyGroups[group])...)
	}
	return listings
}

// stringEntries keeps the requirement strings of a dependency list and
// drops tables such as {include-group = "test"}.
func stringEntries(values []any) []string {
	var out []string
	for _, value := range values {
		if listing, ok := value.(string); ok {
			out = append(out, listing)
		}
	}
	return out
}

func workspaceMembers(root string, patterns []string, excludes []string) ([]string, error) {
	excluded := map[string]struct{}{}
	for _, pattern := range excludes {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid workspace exclude pattern: %s", pattern)).
				WithCause(err)
		}
		for _, match := range matches {
			excluded[filepath.Clean(match)] = struct{}{}
		}
	}
	var members []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid workspace member pattern: %s", pattern)).
				WithCause(err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			match = filepath.Clean(match)
			if _, skip := excluded[match]; skip {
				continue
			}
			if info, err := os.Stat(match); err != nil || !info.IsDir() {
				continue
			}
			members = append(members, match)
		}
	}
	return uniqueStrings(members), nil
}

// addPin records a pin unless the package is already pinned; conflicting
// pins keep the first declaration.
func addPin(pins types.Pins, key string, pin types.PinRecord) {
	if existing, ok := pins[key]; ok {
		if existing.Version != pin.Version {
			log.Warn().
				Str("package", pin.Name).
				Str("kept", existing.Version).
				Str("ignored", pin.Version).
				Msg("package pinned more than once, keeping first pin")
		}
		return
	}
	pins[key] = pin
}

func sortedKeys[V any](input map[string]V) []string {
	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func uniqueStrings(values []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

var _ ports.ManifestPort = PyprojectFileAdapter{}
