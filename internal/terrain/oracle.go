package terrain

import (
	"context"
	"sort"

	"github.com/jolfss/stagebuilder/internal/scene"
)

// Region tags attached to terrain coordinates.
const (
	TagSpawnAssets   = "spawn_assets"
	TagRoad          = "road"
	TagBorder        = "border"
	TagSpawnClearing = "spawn_clearing"
)

// Oracle answers height and region queries for a 2D coordinate and can mesh
// itself into a document. HeightAt and RegionTagsAt must be pure: repeated
// calls with the same input return the same result.
type Oracle interface {
	HeightAt(x, y float64) float64
	RegionTagsAt(x, y float64) Tags
	MeshTerrain(ctx context.Context, doc *scene.Document, xdim, ydim float64, offset scene.Vec3) error
}

// Tags is a set of region tags.
type Tags map[string]struct{}

func NewTags(tags ...string) Tags {
	set := make(Tags, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

func (t Tags) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

// Sorted returns the tags in lexical order.
func (t Tags) Sorted() []string {
	out := make([]string, 0, len(t))
	for tag := range t {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
