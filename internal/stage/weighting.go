package stage

import (
	"github.com/jolfss/stagebuilder/internal/assets"
	"github.com/jolfss/stagebuilder/internal/config"
)

// BoundingBoxWeighting buckets assets by footprint area into small
// (<= SmallMaxArea), medium (<= MediumMaxArea) and large. Large assets
// always weigh 1.
type BoundingBoxWeighting struct {
	SmallMaxArea  float64
	MediumMaxArea float64
	Small         float64
	Medium        float64
}

func DefaultWeighting() BoundingBoxWeighting {
	return BoundingBoxWeighting{SmallMaxArea: 3, MediumMaxArea: 70, Small: 3, Medium: 3}
}

func WeightingFromConfig(cfg config.WeightingConfig) BoundingBoxWeighting {
	return BoundingBoxWeighting{
		SmallMaxArea:  cfg.SmallMaxArea,
		MediumMaxArea: cfg.MediumMaxArea,
		Small:         cfg.SmallWeight,
		Medium:        cfg.MediumWeight,
	}
}

func (w BoundingBoxWeighting) Weight(asset *assets.Asset) float64 {
	switch {
	case asset.Area <= w.SmallMaxArea:
		return w.Small
	case asset.Area <= w.MediumMaxArea:
		return w.Medium
	default:
		return 1
	}
}
