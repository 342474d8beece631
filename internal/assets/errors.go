package assets

import "errors"

var (
	// ErrInvalidAsset reports geometry that cannot be loaded or has no extent.
	ErrInvalidAsset = errors.New("invalid asset")
	// ErrEmptyCatalog is returned when sampling a catalog with no assets.
	ErrEmptyCatalog = errors.New("asset catalog is empty")
	// ErrDegenerateWeights is returned when no weight is positive, or a
	// weight is negative or NaN.
	ErrDegenerateWeights = errors.New("degenerate asset weights")
)
