package scene

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

func TestBuffers_EncodeDecode(t *testing.T) {
	s := NewMaterialsScene()

	spheresBuf, materialsBuf, err := EncodeBuffers(s)
	if err != nil {
		t.Fatalf("EncodeBuffers: %v", err)
	}

	if got := binary.LittleEndian.Uint32(spheresBuf); int(got) != len(s.Spheres) {
		t.Errorf("Sphere length prefix %d, expected %d", got, len(s.Spheres))
	}
	if len(spheresBuf) != 4+len(s.Spheres)*20 {
		t.Errorf("Unexpected sphere buffer size %d", len(spheresBuf))
	}
	if len(materialsBuf) != 4+len(s.Materials)*24 {
		t.Errorf("Unexpected material buffer size %d", len(materialsBuf))
	}

	spheres, materials, err := DecodeBuffers(spheresBuf, materialsBuf)
	if err != nil {
		t.Fatalf("DecodeBuffers: %v", err)
	}
	for i := range s.Spheres {
		if spheres[i] != s.Spheres[i] {
			t.Errorf("Sphere %d: expected %+v, got %+v", i, s.Spheres[i], spheres[i])
		}
	}
	for i := range s.Materials {
		if !material.Equal(materials[i], s.Materials[i]) {
			t.Errorf("Material %d: expected %+v, got %+v", i, s.Materials[i], materials[i])
		}
	}
}

func TestBuffers_MaterialTags(t *testing.T) {
	s := NewMaterialsScene()
	_, materialsBuf, err := EncodeBuffers(s)
	if err != nil {
		t.Fatalf("EncodeBuffers: %v", err)
	}

	for i, m := range s.Materials {
		tag := binary.LittleEndian.Uint32(materialsBuf[4+i*24:])
		if material.Type(tag) != m.Type() {
			t.Errorf("Material %d: expected tag %d, got %d", i, m.Type(), tag)
		}
	}
}

func TestDecodeBuffers_Rejects(t *testing.T) {
	spheresBuf, materialsBuf, err := EncodeBuffers(NewDefaultScene())
	if err != nil {
		t.Fatalf("EncodeBuffers: %v", err)
	}

	unknownTag := append([]byte(nil), materialsBuf...)
	binary.LittleEndian.PutUint32(unknownTag[4:], 9)

	tests := []struct {
		name      string
		spheres   []byte
		materials []byte
		expected  error
	}{
		{"empty sphere buffer", nil, materialsBuf, ErrTruncatedBuffer},
		{"short sphere buffer", spheresBuf[:len(spheresBuf)-1], materialsBuf, ErrTruncatedBuffer},
		{"short material buffer", spheresBuf, materialsBuf[:10], ErrTruncatedBuffer},
		{"unknown material tag", spheresBuf, unknownTag, material.ErrUnknownMaterial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeBuffers(tt.spheres, tt.materials)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}
