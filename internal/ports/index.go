package ports

import (
	"context"

	"uvbump/internal/types"
)

// IndexPort looks up the published versions of a single package. A
// NotFound error means the index does not know the package.
type IndexPort interface {
	Lookup(ctx context.Context, name string) (types.IndexRecord, error)
}
