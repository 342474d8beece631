package scene

import (
	"fmt"
	"strconv"
)

// Applier customises a freshly created prim, e.g. tagging physics or colour.
type Applier func(Handle) error

const (
	AttrDisplayColor    = "primvars:displayColor"
	AttrCollision       = "physics:collisionEnabled"
	AttrRaycastVisible  = "physics:raycastVisible"
	AttrRigidBody       = "physics:rigidBodyEnabled"
	AttrMaterial        = "physics:material"
	AttrStaticFriction  = "physics:staticFriction"
	AttrDynamicFriction = "physics:dynamicFriction"
	AttrRestitution     = "physics:restitution"
)

// PhysicsMaterial describes the contact properties bound to a prim.
type PhysicsMaterial struct {
	Name            string  `json:"name" yaml:"name"`
	StaticFriction  float64 `json:"staticFriction" yaml:"static_friction"`
	DynamicFriction float64 `json:"dynamicFriction" yaml:"dynamic_friction"`
	Restitution     float64 `json:"restitution" yaml:"restitution"`
	Static          bool    `json:"static" yaml:"static"`
}

// DefaultGroundMaterial enables collisions and raycast visibility. Objects
// bound to it do not move.
var DefaultGroundMaterial = PhysicsMaterial{
	Name:            "default_ground",
	StaticFriction:  0.8,
	DynamicFriction: 0.6,
	Restitution:     0,
	Static:          true,
}

// Chain runs appliers in order, stopping at the first error. Nil entries are skipped.
func Chain(appliers ...Applier) Applier {
	return func(h Handle) error {
		for _, apply := range appliers {
			if apply == nil {
				continue
			}
			if err := apply(h); err != nil {
				return err
			}
		}
		return nil
	}
}

// Color sets the display colour from components in [0, 1].
func Color(r, g, b float64) Applier {
	value := fmt.Sprintf("(%s, %s, %s)", formatFloat(clamp(r, 0, 1)), formatFloat(clamp(g, 0, 1)), formatFloat(clamp(b, 0, 1)))
	return func(h Handle) error {
		return h.SetAttribute(AttrDisplayColor, value)
	}
}

// ColorHex parses "#rrggbb" into a Color applier.
func ColorHex(hex string) (Applier, error) {
	col, ok := parseHexColor(hex)
	if !ok {
		return nil, fmt.Errorf("invalid colour %q", hex)
	}
	return Color(float64(col.R)/255, float64(col.G)/255, float64(col.B)/255), nil
}

func ApplyPhysicsMaterial(material PhysicsMaterial) Applier {
	return func(h Handle) error {
		attrs := []struct{ key, value string }{
			{AttrCollision, "true"},
			{AttrRaycastVisible, "true"},
			{AttrRigidBody, strconv.FormatBool(!material.Static)},
			{AttrMaterial, material.Name},
			{AttrStaticFriction, formatFloat(material.StaticFriction)},
			{AttrDynamicFriction, formatFloat(material.DynamicFriction)},
			{AttrRestitution, formatFloat(material.Restitution)},
		}
		for _, attr := range attrs {
			if err := h.SetAttribute(attr.key, attr.value); err != nil {
				return err
			}
		}
		return nil
	}
}

func DefaultGroundPhysics() Applier {
	return ApplyPhysicsMaterial(DefaultGroundMaterial)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
