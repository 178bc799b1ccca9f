package material

import (
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Record is the flat tagged form of a material, as laid out in the
// material buffer. Fields a variant does not use are zero.
type Record struct {
	Type         Type
	Albedo       core.Vec3
	Fuzz         float32
	RefractIndex float32
}

// Encode flattens a material into a record
func Encode(m Material) (Record, error) {
	switch m := m.(type) {
	case *Lambertian:
		return Record{Type: TypeLambertian, Albedo: m.Albedo}, nil
	case *Metal:
		return Record{Type: TypeMetal, Albedo: m.Albedo, Fuzz: m.Fuzz}, nil
	case *Dielectric:
		return Record{Type: TypeDielectric, RefractIndex: m.RefractIndex}, nil
	case *NormalDebug:
		return Record{Type: TypeNormalDebug}, nil
	default:
		return Record{}, fmt.Errorf("%w: %T", ErrUnknownMaterial, m)
	}
}

// Decode rebuilds a material from its record. Unknown tags and out of range
// parameters are rejected rather than mapped to a default.
func Decode(r Record) (Material, error) {
	var m Material
	switch r.Type {
	case TypeLambertian:
		m = &Lambertian{Albedo: r.Albedo}
	case TypeMetal:
		m = &Metal{Albedo: r.Albedo, Fuzz: r.Fuzz}
	case TypeDielectric:
		m = &Dielectric{RefractIndex: r.RefractIndex}
	case TypeNormalDebug:
		m = &NormalDebug{}
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownMaterial, uint32(r.Type))
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s material: %w", r.Type, err)
	}
	return m, nil
}

// Equal reports whether two materials have identical parameters
func Equal(a, b Material) bool {
	ra, errA := Encode(a)
	rb, errB := Encode(b)
	return errA == nil && errB == nil && ra == rb
}
