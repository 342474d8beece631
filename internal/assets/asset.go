package assets

import (
	"math"

	"github.com/jolfss/stagebuilder/internal/scene"
)

// BoundingBox2D is the footprint of an asset on the ground plane.
type BoundingBox2D struct {
	Min [2]float64 `json:"min" yaml:"min"`
	Max [2]float64 `json:"max" yaml:"max"`
}

func (b BoundingBox2D) Width() float64 {
	return b.Max[0] - b.Min[0]
}

func (b BoundingBox2D) Depth() float64 {
	return b.Max[1] - b.Min[1]
}

func (b BoundingBox2D) Area() float64 {
	return b.Width() * b.Depth()
}

func (b BoundingBox2D) valid() bool {
	w, d := b.Width(), b.Depth()
	return w > 0 && d > 0 && !math.IsInf(w*d, 0) && !math.IsNaN(w*d)
}

// Asset is a placeable definition. Many instances may be spawned from one
// Asset; the instances belong to the document.
type Asset struct {
	Path   string
	Area   float64 // footprint area at Scale
	Scale  float64
	Bounds BoundingBox2D
	// OnPlace runs once on every new instance. Nil is a no-op.
	OnPlace scene.Applier
}

// Placement is where an instance goes. Yaw is in degrees about the vertical axis.
type Placement struct {
	X, Y, Z float64
	Yaw     float64
}
