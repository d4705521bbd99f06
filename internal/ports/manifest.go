package ports

import "uvbump/internal/types"

type ManifestPort interface {
	ReadPins(root string, policy types.InexactPinPolicy) (types.Pins, error)
}
