package loaders

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

func TestCompileScene_RoundTrip(t *testing.T) {
	original := scene.NewMaterialsScene()

	var buf bytes.Buffer
	if err := CompileScene(&buf, original); err != nil {
		t.Fatalf("CompileScene failed: %v", err)
	}

	loaded, err := ReadCompiledScene(&buf)
	if err != nil {
		t.Fatalf("ReadCompiledScene failed: %v", err)
	}

	if loaded.Camera != original.Camera {
		t.Errorf("Camera changed: %+v vs %+v", loaded.Camera, original.Camera)
	}
	if loaded.MaxBounces != original.MaxBounces {
		t.Errorf("Expected %d max bounces, got %d", original.MaxBounces, loaded.MaxBounces)
	}
	if len(loaded.Spheres) != len(original.Spheres) {
		t.Fatalf("Expected %d spheres, got %d", len(original.Spheres), len(loaded.Spheres))
	}
	for i := range original.Spheres {
		if loaded.Spheres[i] != original.Spheres[i] {
			t.Errorf("Sphere %d: expected %+v, got %+v", i, original.Spheres[i], loaded.Spheres[i])
		}
	}
	for i := range original.Materials {
		if !material.Equal(loaded.Materials[i], original.Materials[i]) {
			t.Errorf("Material %d changed", i)
		}
	}
}

func TestCompileScene_RejectsInvalidScene(t *testing.T) {
	s := scene.NewDefaultScene()
	s.Spheres[0].MaterialID = 99

	var buf bytes.Buffer
	err := CompileScene(&buf, s)
	if !errors.Is(err, scene.ErrInvalidScene) {
		t.Errorf("Expected ErrInvalidScene, got %v", err)
	}
}

func TestReadCompiledScene_Errors(t *testing.T) {
	compress := func(data []byte) []byte {
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatalf("zstd.NewWriter: %v", err)
		}
		enc.Write(data)
		enc.Close()
		return buf.Bytes()
	}

	var valid bytes.Buffer
	if err := CompileScene(&valid, scene.NewDefaultScene()); err != nil {
		t.Fatalf("CompileScene failed: %v", err)
	}
	raw, err := zstd.NewReader(bytes.NewReader(valid.Bytes()))
	if err != nil {
		t.Fatalf("zstd.NewReader: %v", err)
	}
	plain, err := raw.DecodeAll(valid.Bytes(), nil)
	raw.Close()
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}

	badMagic := append([]byte("XXXX"), plain[4:]...)
	truncated := plain[:len(plain)-5]

	// SpheresLen sits after the magic, version, pose and four camera words
	withSpheresLen := func(n uint32) []byte {
		data := append([]byte(nil), plain...)
		binary.LittleEndian.PutUint32(data[60:], n)
		return data
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"not zstd", []byte("plain text"), nil},
		{"short header", compress([]byte("SPHR")), ErrNotCompiledScene},
		{"bad magic", compress(badMagic), ErrNotCompiledScene},
		{"truncated buffers", compress(truncated), nil},
		{"oversized sphere buffer", compress(withSpheresLen(0xFFFFFFFF)), ErrNotCompiledScene},
		{"sphere buffer past end of stream", compress(withSpheresLen(MaxCompiledBufferBytes)), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCompiledScene(bytes.NewReader(tt.data))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveAndLoadCompiledScene(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid"+scene.CompiledExt)

	if err := SaveCompiledScene(path, scene.NewSphereGridScene()); err != nil {
		t.Fatalf("SaveCompiledScene failed: %v", err)
	}
	loaded, err := LoadCompiledScene(path)
	if err != nil {
		t.Fatalf("LoadCompiledScene failed: %v", err)
	}
	if len(loaded.Spheres) != 101 {
		t.Errorf("Expected 101 spheres, got %d", len(loaded.Spheres))
	}

	if err := SaveCompiledScene(filepath.Join(dir, "grid.json"), scene.NewSphereGridScene()); err == nil {
		t.Error("Expected extension error")
	}
}

func TestLoadScene(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "two-spheres.json"), []byte(twoSpheresJSON), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := SaveCompiledScene(filepath.Join(dir, "default"+scene.CompiledExt), scene.NewDefaultScene()); err != nil {
		t.Fatalf("SaveCompiledScene: %v", err)
	}

	tests := []struct {
		id      string
		spheres int
	}{
		{"default", 2},
		{"json:two-spheres", 4},
		{"compiled:default", 2},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, err := LoadScene(tt.id, dir)
			if err != nil {
				t.Fatalf("LoadScene(%q) failed: %v", tt.id, err)
			}
			if len(s.Spheres) != tt.spheres {
				t.Errorf("Expected %d spheres, got %d", tt.spheres, len(s.Spheres))
			}
		})
	}

	if _, err := LoadScene("json:missing", dir); err == nil {
		t.Error("Expected error for unknown scene id")
	}
}

func TestCompiledScene_PreservesCameraPose(t *testing.T) {
	s := scene.NewDefaultScene()
	s.Camera.LookFrom = core.NewVec3(1, 2, 3)
	s.Camera.Width = 64
	s.Camera.Height = 48

	var buf bytes.Buffer
	if err := CompileScene(&buf, s); err != nil {
		t.Fatalf("CompileScene failed: %v", err)
	}
	loaded, err := ReadCompiledScene(&buf)
	if err != nil {
		t.Fatalf("ReadCompiledScene failed: %v", err)
	}
	if loaded.Camera != s.Camera {
		t.Errorf("Expected camera %+v, got %+v", s.Camera, loaded.Camera)
	}
}
