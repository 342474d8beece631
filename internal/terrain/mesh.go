package terrain

import (
	"context"
	"fmt"
	"log"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jolfss/stagebuilder/internal/scene"
)

const (
	// TerrainPath is where meshed terrain lands in the document.
	TerrainPath = "/World/Terrain"

	maxMeshPoints = 1 << 24
)

// MeshOptions controls how a height function is turned into triangles.
type MeshOptions struct {
	Unit    float64       // grid spacing in stage units
	Workers int           // 0 picks from GOMAXPROCS
	Path    string        // defaults to TerrainPath
	Applier scene.Applier // run on the terrain prim once created
}

// meshHeightField samples height over [-xdim/2, xdim/2] x [-ydim/2, ydim/2]
// and writes the resulting grid mesh into doc, translated by offset.
func meshHeightField(ctx context.Context, doc *scene.Document, height func(x, y float64) float64, xdim, ydim float64, offset scene.Vec3, opts MeshOptions) error {
	if doc == nil {
		return fmt.Errorf("mesh terrain: document is nil")
	}
	if xdim <= 0 || ydim <= 0 {
		return fmt.Errorf("mesh terrain: dimensions must be positive, got %gx%g", xdim, ydim)
	}
	unit := opts.Unit
	if unit <= 0 {
		unit = 1
	}
	path := opts.Path
	if path == "" {
		path = TerrainPath
	}

	columns := int(math.Ceil(xdim/unit)) + 1
	rows := int(math.Ceil(ydim/unit)) + 1
	if columns*rows > maxMeshPoints {
		return fmt.Errorf("mesh terrain: %dx%d grid exceeds %d points; raise the unit", columns, rows, maxMeshPoints)
	}

	log.Printf("terrain mesh %s progress: 0%%", path)

	points := make([]scene.Vec3, columns*rows)
	progress := newMeshProgress(path, rows)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(opts.Workers, rows))
	for row := 0; row < rows; row++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			y := -ydim/2 + math.Min(float64(row)*unit, ydim)
			for col := 0; col < columns; col++ {
				x := -xdim/2 + math.Min(float64(col)*unit, xdim)
				z := height(x, y)
				if math.IsNaN(z) || math.IsInf(z, 0) {
					return fmt.Errorf("mesh terrain: height at (%g, %g) is not finite", x, y)
				}
				points[row*columns+col] = scene.Vec3{x, y, z}
			}
			progress.rowDone()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	indices := make([]int, 0, (columns-1)*(rows-1)*6)
	for row := 0; row+1 < rows; row++ {
		for col := 0; col+1 < columns; col++ {
			i0 := row*columns + col
			i1 := i0 + 1
			i2 := i0 + columns
			i3 := i2 + 1
			indices = append(indices, i0, i1, i2, i1, i3, i2)
		}
	}

	mesh := scene.Mesh{Points: points, Indices: indices, Columns: columns, Rows: rows}
	handle, err := doc.CreateMesh(path, mesh, offset)
	if err != nil {
		return fmt.Errorf("create terrain mesh: %w", err)
	}
	if opts.Applier != nil {
		if err := opts.Applier(handle); err != nil {
			return fmt.Errorf("apply terrain %s: %w", path, err)
		}
	}

	log.Printf("terrain mesh %s: %d points, %d triangles", path, len(points), len(indices)/3)
	return nil
}

type meshProgress struct {
	path  string
	total int

	mu       sync.Mutex
	done     int
	nextLog  int
	complete bool
}

func newMeshProgress(path string, total int) *meshProgress {
	return &meshProgress{path: path, total: total, nextLog: 10}
}

func (p *meshProgress) rowDone() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	progress := p.done * 100 / p.total
	if progress < p.nextLog || p.complete {
		return
	}
	log.Printf("terrain mesh %s progress: %d%%", p.path, progress)
	if progress >= 100 {
		p.complete = true
		return
	}
	p.nextLog = ((progress / 10) + 1) * 10
}

func workerCount(configured, rows int) int {
	if rows <= 0 {
		return 1
	}
	if configured > 0 {
		return min(configured, rows)
	}
	workers := runtime.GOMAXPROCS(0) * 2
	if workers <= 0 {
		workers = 1
	}
	return min(workers, rows)
}
