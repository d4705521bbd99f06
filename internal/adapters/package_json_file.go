package adapters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"uvbump/internal/core"
	"uvbump/internal/ports"
	"uvbump/internal/shared"
	"uvbump/internal/types"
)

const packageJSONFileName = "package.json"

type packageJSONFile struct {
	Name                 string            `json:"name"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// sections lists dependency maps in precedence order.
func (f packageJSONFile) sections() []map[string]string {
	return []map[string]string{f.Dependencies, f.DevDependencies, f.PeerDependencies, f.OptionalDependencies}
}

type PackageJSONFileAdapter struct{}

func NewPackageJSONFileAdapter() PackageJSONFileAdapter {
	return PackageJSONFileAdapter{}
}

func (a PackageJSONFileAdapter) ReadPins(root string, policy types.InexactPinPolicy) (types.Pins, error) {
	path := filepath.Join(root, packageJSONFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("package.json not found at: %s", path)).
				WithCause(err)
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to read %s", path)).
			WithCause(err)
	}
	var data packageJSONFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse %s", path)).
			WithCause(err)
	}

	pins := types.Pins{}
	for _, section := range data.sections() {
		for _, name := range sortedKeys(section) {
			req, err := core.ParseNpmSpec(name, section[name])
			if err != nil {
				log.Warn().Err(err).Str("package", name).Msg("skipping invalid dependency entry")
				continue
			}
			if req.DirectURL != "" {
				log.Info().Str("package", name).Str("spec", req.DirectURL).Msg("dependency is not installed from the registry, skipping")
				continue
			}
			version, ok := core.ProjectVersion(req, policy)
			if !ok {
				log.Debug().Str("package", name).Str("spec", req.Raw).Msg("dependency has no exact pin, excluded from comparison")
				continue
			}
			addPin(pins, shared.NormalizeNpmName(name), types.PinRecord{Name: name, Version: version})
		}
	}
	return pins, nil
}

var _ ports.ManifestPort = PackageJSONFileAdapter{}
