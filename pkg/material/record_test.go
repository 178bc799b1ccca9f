package material

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

func TestEncode_Tags(t *testing.T) {
	tests := []struct {
		material Material
		expected Type
	}{
		{NewLambertian(core.NewVec3(0.1, 0.2, 0.5)), TypeLambertian},
		{NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3), TypeMetal},
		{NewDielectric(1.5), TypeDielectric},
		{NewNormalDebug(), TypeNormalDebug},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			record, err := Encode(tt.material)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if record.Type != tt.expected {
				t.Errorf("Expected tag %d, got %d", tt.expected, record.Type)
			}
			decoded, err := Decode(record)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !Equal(decoded, tt.material) {
				t.Errorf("Decoded %+v differs from %+v", decoded, tt.material)
			}
		})
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		unknown bool
	}{
		{"unknown tag", Record{Type: 4}, true},
		{"albedo above one", Record{Type: TypeLambertian, Albedo: core.NewVec3(1.2, 0, 0)}, false},
		{"negative albedo", Record{Type: TypeMetal, Albedo: core.NewVec3(0, -0.1, 0)}, false},
		{"fuzz above one", Record{Type: TypeMetal, Albedo: core.NewVec3(0.5, 0.5, 0.5), Fuzz: 2}, false},
		{"nan fuzz", Record{Type: TypeMetal, Fuzz: math32.NaN()}, false},
		{"zero index", Record{Type: TypeDielectric}, false},
		{"negative index", Record{Type: TypeDielectric, RefractIndex: -1.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode(tt.record)
			if err == nil {
				t.Fatalf("Expected error, got %+v", m)
			}
			if errors.Is(err, ErrUnknownMaterial) != tt.unknown {
				t.Errorf("Unexpected error kind: %v", err)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	b := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	c := NewMetal(core.NewVec3(0.5, 0.5, 0.5), 0)

	if !Equal(a, b) {
		t.Error("Materials with identical parameters should be equal")
	}
	if Equal(a, c) {
		t.Error("Different material types should not be equal")
	}
	if Equal(a, nil) {
		t.Error("Nil material should never be equal")
	}
}
