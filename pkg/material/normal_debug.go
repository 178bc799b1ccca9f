package material

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// NormalDebug ends the path and paints the hit normal mapped to [0, 1]
type NormalDebug struct{}

// NewNormalDebug creates a normal visualisation material
func NewNormalDebug() *NormalDebug {
	return &NormalDebug{}
}

func (n *NormalDebug) Type() Type      { return TypeNormalDebug }
func (n *NormalDebug) Validate() error { return nil }
func (n *NormalDebug) sealed()         {}

func (n *NormalDebug) shade(hit geometry.HitRecord) ScatterResult {
	return ScatterResult{
		Radiance: NormalColor(hit.Normal),
		Terminal: true,
	}
}

// NormalColor maps each normal component from [-1, 1] to [0, 1]
func NormalColor(normal core.Vec3) core.Vec3 {
	return normal.AddScalar(1).Multiply(0.5)
}
