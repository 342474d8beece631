package terrain

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"

	"github.com/jolfss/stagebuilder/internal/config"
	"github.com/jolfss/stagebuilder/internal/scene"
)

const (
	roadWobbleFrequency = 0.08
	roadWobbleAmplitude = 0.6
	roadWobbleOctaves   = 2
	roadBedFlatten      = 0.25
	roadOffsetSpread    = 0.8
)

type road struct {
	dirX, dirY float64 // along the road
	offset     float64 // signed distance of the centre line from the origin
	halfWidth  float64
	wobbleSeed int64
}

// signedDistance is the distance from the wobbling centre line.
func (r road) signedDistance(x, y float64) float64 {
	along := x*r.dirX + y*r.dirY
	across := -x*r.dirY + y*r.dirX - r.offset
	wobble := roadWobble(along, r.wobbleSeed) * r.halfWidth * 2
	return across - wobble
}

// roadWobble is the sideways drift of a road, in road widths, at a point along it.
func roadWobble(along float64, seed int64) float64 {
	return fractalValueNoise(along, 0, seed, roadWobbleOctaves, roadWobbleFrequency, 0.5, 2) * roadWobbleAmplitude
}

// ForestedRoads is rolling simplex terrain cut by straight, wobbling roads,
// with a flat spawn clearing at the origin and a raised rim along the edges.
type ForestedRoads struct {
	cfg        config.TerrainConfig
	xdim, ydim float64
	elevation  opensimplex.Noise
	roads      []road
	mesh       MeshOptions
}

// NewForestedRoads lays out roads for an xdim by ydim stage. Identical
// configuration yields identical terrain.
func NewForestedRoads(cfg config.TerrainConfig, xdim, ydim float64, applier scene.Applier) (*ForestedRoads, error) {
	if xdim <= 0 || ydim <= 0 {
		return nil, fmt.Errorf("forested roads terrain: dimensions must be positive, got %gx%g", xdim, ydim)
	}
	if cfg.RoadMinWidth < 0 || cfg.RoadMaxWidth < cfg.RoadMinWidth {
		return nil, fmt.Errorf("forested roads terrain: invalid road widths [%g, %g]", cfg.RoadMinWidth, cfg.RoadMaxWidth)
	}
	if cfg.Octaves <= 0 {
		cfg.Octaves = 1
	}
	if cfg.Lacunarity <= 0 {
		cfg.Lacunarity = 2
	}

	t := &ForestedRoads{
		cfg:       cfg,
		xdim:      xdim,
		ydim:      ydim,
		elevation: opensimplex.New(cfg.Seed),
		mesh:      MeshOptions{Unit: cfg.Unit, Workers: cfg.Workers, Applier: applier},
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	spread := math.Min(xdim, ydim) / 2 * roadOffsetSpread
	for i := 0; i < cfg.RoadCount; i++ {
		angle := rng.Float64() * math.Pi
		width := cfg.RoadMinWidth + rng.Float64()*(cfg.RoadMaxWidth-cfg.RoadMinWidth)
		t.roads = append(t.roads, road{
			dirX:       math.Cos(angle),
			dirY:       math.Sin(angle),
			offset:     (rng.Float64()*2 - 1) * spread,
			halfWidth:  width / 2,
			wobbleSeed: cfg.Seed + int64(i)*7919,
		})
	}
	return t, nil
}

func (t *ForestedRoads) HeightAt(x, y float64) float64 {
	base := t.cfg.BaseHeight
	h := base + t.cfg.Amplitude*t.fbm(x, y)

	if influence := t.roadInfluence(x, y); influence > 0 {
		bed := base + (h-base)*roadBedFlatten
		h = lerp(h, bed, influence)
	}

	if r := t.cfg.SpawnRadius; r > 0 {
		dist := math.Hypot(x, y)
		h = lerp(base, h, smooth(clamp((dist-r)/r, 0, 1)))
	}

	if edge := t.edgeDistance(x, y); edge < t.cfg.BorderThreshold {
		h += t.cfg.BorderHeight * smooth(clamp(1-edge/t.cfg.BorderThreshold, 0, 1))
	}
	return h
}

func (t *ForestedRoads) RegionTagsAt(x, y float64) Tags {
	tags := NewTags()
	onRoad := false
	for _, r := range t.roads {
		if math.Abs(r.signedDistance(x, y)) <= r.halfWidth {
			onRoad = true
			break
		}
	}
	if onRoad {
		tags[TagRoad] = struct{}{}
	}
	inClearing := math.Hypot(x, y) <= t.cfg.SpawnRadius
	if inClearing {
		tags[TagSpawnClearing] = struct{}{}
	}
	if t.edgeDistance(x, y) < t.cfg.BorderThreshold {
		tags[TagBorder] = struct{}{}
	}
	if !onRoad && !inClearing {
		tags[TagSpawnAssets] = struct{}{}
	}
	return tags
}

func (t *ForestedRoads) MeshTerrain(ctx context.Context, doc *scene.Document, xdim, ydim float64, offset scene.Vec3) error {
	return meshHeightField(ctx, doc, t.HeightAt, xdim, ydim, offset, t.mesh)
}

// fbm layers simplex octaves; the result is in [-1, 1].
func (t *ForestedRoads) fbm(x, y float64) float64 {
	amplitude := 1.0
	frequency := t.cfg.Frequency
	sum, norm := 0.0, 0.0
	for i := 0; i < t.cfg.Octaves; i++ {
		sum += t.elevation.Eval2(x*frequency, y*frequency) * amplitude
		norm += amplitude
		amplitude *= t.cfg.Persistence
		frequency *= t.cfg.Lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// roadInfluence is 1 on a road and fades to 0 one road width beyond its edge.
func (t *ForestedRoads) roadInfluence(x, y float64) float64 {
	influence := 0.0
	for _, r := range t.roads {
		if r.halfWidth <= 0 {
			continue
		}
		d := math.Abs(r.signedDistance(x, y))
		v := 1 - smooth(clamp((d-r.halfWidth)/(2*r.halfWidth), 0, 1))
		influence = math.Max(influence, v)
	}
	return influence
}

func (t *ForestedRoads) edgeDistance(x, y float64) float64 {
	return math.Min(t.xdim/2-math.Abs(x), t.ydim/2-math.Abs(y))
}
