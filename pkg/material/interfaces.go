package material

import (
	"errors"
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Type is the tag stored in the flat material buffer
type Type uint32

const (
	TypeLambertian  Type = 0
	TypeMetal       Type = 1
	TypeDielectric  Type = 2
	TypeNormalDebug Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeLambertian:
		return "lambertian"
	case TypeMetal:
		return "metal"
	case TypeDielectric:
		return "dielectric"
	case TypeNormalDebug:
		return "normal_debug"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// ParseType maps a material name to its tag
func ParseType(name string) (Type, error) {
	for _, t := range []Type{TypeLambertian, TypeMetal, TypeDielectric, TypeNormalDebug} {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
}

// ErrUnknownMaterial marks a material reference or tag that is not one of
// the four supported variants.
var ErrUnknownMaterial = errors.New("unknown material")

// SentinelColor is painted for paths that hit an unknown material, so a
// broken scene is visible instead of silently shaded.
var SentinelColor = core.NewVec3(1, 0, 1)

// Material is the closed set of surface behaviours. Only the types in this
// package implement it.
type Material interface {
	// Type returns the buffer tag of the material
	Type() Type
	// Validate reports parameters outside their legal range
	Validate() error

	sealed()
}

// ScatterResult is the outcome of shading one hit. A terminal result ends
// the path with Radiance; otherwise the path continues along Scattered with
// its throughput multiplied by Attenuation.
type ScatterResult struct {
	Scattered   core.Ray
	Attenuation core.Vec3
	Radiance    core.Vec3
	Terminal    bool
}
