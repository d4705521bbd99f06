package ports

import (
	"context"

	"uvbump/internal/types"
)

type EnvironmentPort interface {
	Installed(ctx context.Context, root string) (types.Installed, error)
}
