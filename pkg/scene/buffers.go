package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// Record sizes in the flat buffers. Every field is 4 bytes, little-endian.
const (
	lengthPrefixSize   = 4
	sphereRecordSize   = 20 // material id, center xyz, radius
	materialRecordSize = 24 // tag, albedo rgb, fuzz, refract index
)

// ErrTruncatedBuffer is returned when a buffer is shorter than its length prefix claims
var ErrTruncatedBuffer = errors.New("truncated buffer")

// EncodeBuffers lays the scene out as the two storage buffers the kernel
// reads: a u32 count followed by flat sphere records, and the same for
// materials.
func EncodeBuffers(s *Scene) (spheres, materials []byte, err error) {
	spheres = make([]byte, lengthPrefixSize+len(s.Spheres)*sphereRecordSize)
	binary.LittleEndian.PutUint32(spheres, uint32(len(s.Spheres)))
	for i, sphere := range s.Spheres {
		off := lengthPrefixSize + i*sphereRecordSize
		binary.LittleEndian.PutUint32(spheres[off:], sphere.MaterialID)
		putVec3(spheres[off+4:], sphere.Center)
		putFloat32(spheres[off+16:], sphere.Radius)
	}

	materials = make([]byte, lengthPrefixSize+len(s.Materials)*materialRecordSize)
	binary.LittleEndian.PutUint32(materials, uint32(len(s.Materials)))
	for i, m := range s.Materials {
		record, err := material.Encode(m)
		if err != nil {
			return nil, nil, fmt.Errorf("material %d: %w", i, err)
		}
		off := lengthPrefixSize + i*materialRecordSize
		binary.LittleEndian.PutUint32(materials[off:], uint32(record.Type))
		putVec3(materials[off+4:], record.Albedo)
		putFloat32(materials[off+16:], record.Fuzz)
		putFloat32(materials[off+20:], record.RefractIndex)
	}

	return spheres, materials, nil
}

// DecodeBuffers parses buffers written by EncodeBuffers. Unknown material
// tags and truncated data are errors. The result is not validated.
func DecodeBuffers(spheresBuf, materialsBuf []byte) ([]geometry.Sphere, []material.Material, error) {
	sphereCount, err := recordCount(spheresBuf, sphereRecordSize)
	if err != nil {
		return nil, nil, fmt.Errorf("sphere buffer: %w", err)
	}
	materialCount, err := recordCount(materialsBuf, materialRecordSize)
	if err != nil {
		return nil, nil, fmt.Errorf("material buffer: %w", err)
	}

	spheres := make([]geometry.Sphere, sphereCount)
	for i := range spheres {
		off := lengthPrefixSize + i*sphereRecordSize
		spheres[i] = geometry.NewSphere(
			getVec3(spheresBuf[off+4:]),
			getFloat32(spheresBuf[off+16:]),
			binary.LittleEndian.Uint32(spheresBuf[off:]),
		)
	}

	materials := make([]material.Material, materialCount)
	for i := range materials {
		off := lengthPrefixSize + i*materialRecordSize
		record := material.Record{
			Type:         material.Type(binary.LittleEndian.Uint32(materialsBuf[off:])),
			Albedo:       getVec3(materialsBuf[off+4:]),
			Fuzz:         getFloat32(materialsBuf[off+16:]),
			RefractIndex: getFloat32(materialsBuf[off+20:]),
		}
		m, err := material.Decode(record)
		if err != nil {
			return nil, nil, fmt.Errorf("material %d: %w", i, err)
		}
		materials[i] = m
	}

	return spheres, materials, nil
}

func recordCount(buf []byte, recordSize int) (int, error) {
	if len(buf) < lengthPrefixSize {
		return 0, fmt.Errorf("%w: missing length prefix", ErrTruncatedBuffer)
	}
	count := int(binary.LittleEndian.Uint32(buf))
	if want := lengthPrefixSize + count*recordSize; len(buf) < want {
		return 0, fmt.Errorf("%w: %d records need %d bytes, have %d", ErrTruncatedBuffer, count, want, len(buf))
	}
	return count, nil
}

func putFloat32(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}

func getFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func putVec3(b []byte, v core.Vec3) {
	putFloat32(b, v.X)
	putFloat32(b[4:], v.Y)
	putFloat32(b[8:], v.Z)
}

func getVec3(b []byte) core.Vec3 {
	return core.NewVec3(getFloat32(b), getFloat32(b[4:]), getFloat32(b[8:]))
}
