package stage

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/jolfss/stagebuilder/internal/assets"
	"github.com/jolfss/stagebuilder/internal/scene"
	"github.com/jolfss/stagebuilder/internal/terrain"
)

// Phase is the state of a build.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseMeshing
	PhasePopulating
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMeshing:
		return "meshing"
	case PhasePopulating:
		return "populating"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Catalog is the part of assets.Catalog a build needs.
type Catalog interface {
	Sample(rng *rand.Rand, weight func(*assets.Asset) float64) (*assets.Asset, error)
	Instantiate(doc *scene.Document, asset *assets.Asset, at assets.Placement) (scene.Handle, error)
}

type Config struct {
	XDim, YDim float64
	Terrain    terrain.Oracle
	Catalog    Catalog
	// Rand is the only source of randomness. Nil seeds from the clock.
	Rand   *rand.Rand
	Logger *log.Logger
	// Weighting defaults to DefaultWeighting when left zero.
	Weighting BoundingBoxWeighting
}

type BuildOptions struct {
	GlobalOffset scene.Vec3
	SpawnAssets  bool
	// Density is the target ratio of placed footprint area to terrain area.
	Density float64
}

// Report summarises one build.
type Report struct {
	Phase      Phase
	Iterations int
	Placed     int
	Rejected   int
	TotalArea  float64
	TargetArea float64
	PerAsset   map[string]int
}

// Builder meshes a terrain into a document and scatters catalog assets over it.
type Builder struct {
	cfg Config

	// rng is not safe for concurrent use.
	mu sync.Mutex
}

func New(cfg Config) (*Builder, error) {
	if !(cfg.XDim > 0) || !(cfg.YDim > 0) || math.IsInf(cfg.XDim, 0) || math.IsInf(cfg.YDim, 0) {
		return nil, fmt.Errorf("stage dimensions must be positive and finite, got %gx%g", cfg.XDim, cfg.YDim)
	}
	if cfg.Terrain == nil {
		return nil, fmt.Errorf("terrain is required")
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("asset catalog is required")
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Weighting == (BoundingBoxWeighting{}) {
		cfg.Weighting = DefaultWeighting()
	}
	return &Builder{cfg: cfg}, nil
}

// BuildStage meshes the terrain once and, when opts.SpawnAssets is set,
// populates it. Any error aborts the build; the report reflects the work
// done up to that point.
func (b *Builder) BuildStage(ctx context.Context, doc *scene.Document, opts BuildOptions) (Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	report := Report{PerAsset: make(map[string]int)}
	if doc == nil {
		return report, fmt.Errorf("%w: document is nil", scene.ErrDocumentWrite)
	}

	report.Phase = PhaseMeshing
	b.cfg.Logger.Printf("stage build progress: meshing terrain %gx%g", b.cfg.XDim, b.cfg.YDim)
	if err := b.cfg.Terrain.MeshTerrain(ctx, doc, b.cfg.XDim, b.cfg.YDim, opts.GlobalOffset); err != nil {
		return report, fmt.Errorf("mesh terrain: %w", err)
	}

	if opts.SpawnAssets {
		report.Phase = PhasePopulating
		b.cfg.Logger.Printf("stage build progress: spawning assets at density %g", opts.Density)
		if err := b.populate(ctx, doc, opts, &report); err != nil {
			return report, fmt.Errorf("populate stage: %w", err)
		}
	}

	report.Phase = PhaseDone
	b.cfg.Logger.Printf("stage build progress: done (%d placed, %d rejected, area %.2f/%.2f)",
		report.Placed, report.Rejected, report.TotalArea, report.TargetArea)
	return report, nil
}

// Save writes the document to path. The extension only picks an encoding.
func Save(doc *scene.Document, path string) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", scene.ErrDocumentWrite)
	}
	return doc.Save(path)
}
