package terrain

import (
	"context"

	"github.com/jolfss/stagebuilder/internal/scene"
)

// Flat is a level plane on which every coordinate permits asset spawning.
type Flat struct {
	height float64
	mesh   MeshOptions
}

func NewFlat(height float64, mesh MeshOptions) *Flat {
	return &Flat{height: height, mesh: mesh}
}

func (f *Flat) HeightAt(x, y float64) float64 {
	return f.height
}

func (f *Flat) RegionTagsAt(x, y float64) Tags {
	return NewTags(TagSpawnAssets)
}

func (f *Flat) MeshTerrain(ctx context.Context, doc *scene.Document, xdim, ydim float64, offset scene.Vec3) error {
	return meshHeightField(ctx, doc, f.HeightAt, xdim, ydim, offset, f.mesh)
}
