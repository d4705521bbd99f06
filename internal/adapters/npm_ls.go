package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"uvbump/internal/ports"
	"uvbump/internal/shared"
	"uvbump/internal/types"
)

type npmListing struct {
	Name         string                       `json:"name"`
	Dependencies map[string]npmListingPackage `json:"dependencies"`
}

type npmListingPackage struct {
	Version string `json:"version"`
	Missing bool   `json:"missing"`
}

// NpmLsAdapter reads the top-level installed tree from `npm ls`.
type NpmLsAdapter struct {
	Runner ports.CommandPort
}

func NewNpmLsAdapter(runner ports.CommandPort) NpmLsAdapter {
	return NpmLsAdapter{Runner: runner}
}

func (a NpmLsAdapter) Installed(ctx context.Context, root string) (types.Installed, error) {
	output, runErr := a.Runner.Run(ctx, root, "npm", "ls", "--depth=0", "--json")
	var listing npmListing
	if err := json.Unmarshal(output, &listing); err != nil {
		if runErr != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("npm ls failed in %s", root)).
				WithCause(runErr)
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("unexpected npm ls output").
			WithCause(err)
	}
	if runErr != nil {
		if ctx.Err() != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("npm ls failed in %s", root)).
				WithCause(runErr)
		}
		log.Warn().Err(runErr).Msg("npm ls reported problems, using the listed tree")
	}

	installed := types.Installed{}
	for name, pkg := range listing.Dependencies {
		if pkg.Missing || pkg.Version == "" {
			continue
		}
		installed[shared.NormalizeNpmName(name)] = types.InstalledRecord{Name: name, Version: pkg.Version}
	}
	return installed, nil
}

var _ ports.EnvironmentPort = NpmLsAdapter{}
