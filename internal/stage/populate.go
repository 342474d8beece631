package stage

import (
	"context"
	"fmt"
	"math"

	"github.com/jolfss/stagebuilder/internal/assets"
	"github.com/jolfss/stagebuilder/internal/scene"
	"github.com/jolfss/stagebuilder/internal/terrain"
)

// restingSamples is how many height samples are averaged under a footprint.
const restingSamples = 16

// populate draws assets until the accumulated footprint exceeds the target
// area. Rejected candidates still count toward the total, which bounds the
// number of iterations by the target area regardless of the rejection rate.
func (b *Builder) populate(ctx context.Context, doc *scene.Document, opts BuildOptions, report *Report) error {
	xdim, ydim := b.cfg.XDim, b.cfg.YDim
	rng := b.cfg.Rand
	target := xdim * ydim * opts.Density
	report.TargetArea = target
	if math.IsInf(target, 0) {
		return fmt.Errorf("target area %v is not finite (density %v)", target, opts.Density)
	}
	if !(target > 0) {
		return nil
	}

	nextLog := 10
	for report.TotalArea <= target {
		if err := ctx.Err(); err != nil {
			return err
		}

		asset, err := b.cfg.Catalog.Sample(rng, b.cfg.Weighting.Weight)
		if err != nil {
			return err
		}
		if !(asset.Area > 0) || math.IsInf(asset.Area, 0) {
			return fmt.Errorf("%w: %s has footprint %v", assets.ErrInvalidAsset, asset.Path, asset.Area)
		}
		radius := math.Sqrt(asset.Area)
		x := (rng.Float64() - 0.5) * xdim
		y := (rng.Float64() - 0.5) * ydim

		report.Iterations++
		report.TotalArea += asset.Area

		if !b.cfg.Terrain.RegionTagsAt(x, y).Has(terrain.TagSpawnAssets) {
			report.Rejected++
		} else {
			z := b.restingHeight(x, y, radius)
			yaw := rng.Float64() * 360
			at := assets.Placement{
				X:   x + opts.GlobalOffset[0],
				Y:   y + opts.GlobalOffset[1],
				Z:   z + opts.GlobalOffset[2],
				Yaw: yaw,
			}
			if _, err := b.cfg.Catalog.Instantiate(doc, asset, at); err != nil {
				return err
			}
			report.Placed++
			report.PerAsset[asset.Path]++
		}

		if progress := int(math.Min(report.TotalArea/target, 1) * 100); progress >= nextLog {
			b.cfg.Logger.Printf("stage build progress: %d%% of target area (%d placed)", progress, report.Placed)
			nextLog = (progress/10 + 1) * 10
		}
	}
	return nil
}

// restingHeight averages the terrain height at random offsets within radius
// of (x, y).
func (b *Builder) restingHeight(x, y, radius float64) float64 {
	rng := b.cfg.Rand
	sum := 0.0
	for i := 0; i < restingSamples; i++ {
		dx := (2*rng.Float64() - 1) * radius
		dy := (2*rng.Float64() - 1) * radius
		sum += b.cfg.Terrain.HeightAt(x+dx, y+dy)
	}
	return sum / restingSamples
}
