package geometry

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

func testCameraConfig() CameraConfig {
	return CameraConfig{
		LookFrom:   core.NewVec3(0, 0, 0),
		LookAt:     core.NewVec3(0, 0, -1),
		VUp:        core.NewVec3(0, 1, 0),
		Width:      5,
		Height:     3,
		NumSamples: 4,
	}
}

func TestNewCamera_CentralPixelLooksAtTarget(t *testing.T) {
	camera, err := NewCamera(testCameraConfig())
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}

	ray := camera.GetRay(2, 1, nil)
	direction := ray.Direction
	expected := core.NewVec3(0, 0, -1)
	if direction.Subtract(expected).Length() > 1e-5 {
		t.Errorf("Central ray direction expected %v, got %v", expected, direction)
	}
	if !ray.Origin.Equals(camera.LookFrom) {
		t.Errorf("Ray origin expected %v, got %v", camera.LookFrom, ray.Origin)
	}
}

func TestNewCamera_Basis(t *testing.T) {
	camera, err := NewCamera(testCameraConfig())
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}

	if math32.Abs(camera.DeltaU.Dot(camera.DeltaV)) > 1e-6 {
		t.Errorf("DeltaU %v and DeltaV %v should be orthogonal", camera.DeltaU, camera.DeltaV)
	}

	// Viewport is 2 units tall at focal length 1 and keeps the aspect ratio
	if math32.Abs(camera.DeltaV.Length()*3-2) > 1e-5 {
		t.Errorf("Expected viewport height 2, got %f", camera.DeltaV.Length()*3)
	}
	if math32.Abs(camera.DeltaU.Length()*5-2*5.0/3.0) > 1e-5 {
		t.Errorf("Expected viewport width %f, got %f", 2*5.0/3.0, camera.DeltaU.Length()*5)
	}

	// x grows to the right, y grows downwards
	if camera.DeltaU.X <= 0 {
		t.Errorf("DeltaU should point along +x, got %v", camera.DeltaU)
	}
	if camera.DeltaV.Y >= 0 {
		t.Errorf("DeltaV should point along -y, got %v", camera.DeltaV)
	}

	corner := camera.PixelTarget(-0.5, -0.5)
	expectedCorner := core.NewVec3(-5.0/3.0, 1, -1)
	if corner.Subtract(expectedCorner).Length() > 1e-5 {
		t.Errorf("Top left viewport corner expected %v, got %v", expectedCorner, corner)
	}
}

func TestCamera_GetRay_JitterStaysInPixel(t *testing.T) {
	camera, err := NewCamera(testCameraConfig())
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	center := camera.PixelTarget(3, 2)
	halfU := camera.DeltaU.Length() / 2
	halfV := camera.DeltaV.Length() / 2
	uAxis := camera.DeltaU.Normalize()
	vAxis := camera.DeltaV.Normalize()

	varied := false
	for i := 0; i < 500; i++ {
		ray := camera.GetRay(3, 2, sampler)
		offset := ray.Origin.Add(ray.Direction).Subtract(center)
		if math32.Abs(offset.Dot(uAxis)) > halfU+1e-6 || math32.Abs(offset.Dot(vAxis)) > halfV+1e-6 {
			t.Fatalf("Jittered target %v left the pixel footprint", offset)
		}
		if offset.Length() > 1e-6 {
			varied = true
		}
	}
	if !varied {
		t.Error("Expected jitter to move the ray target")
	}
}

func TestNewCamera_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*CameraConfig)
		degenerate bool
	}{
		{"zero width", func(c *CameraConfig) { c.Width = 0 }, false},
		{"negative height", func(c *CameraConfig) { c.Height = -1 }, false},
		{"zero samples", func(c *CameraConfig) { c.NumSamples = 0 }, false},
		{"look-from equals look-at", func(c *CameraConfig) { c.LookAt = c.LookFrom }, true},
		{"up parallel to view", func(c *CameraConfig) { c.VUp = core.NewVec3(0, 0, 1) }, true},
		{"nan pose", func(c *CameraConfig) { c.LookFrom = core.NewVec3(math32.NaN(), 0, 0) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testCameraConfig()
			tt.mutate(&config)
			camera, err := NewCamera(config)
			if err == nil {
				t.Fatalf("Expected error, got camera %+v", camera)
			}
			if tt.degenerate && !errors.Is(err, ErrDegenerateCamera) {
				t.Errorf("Expected ErrDegenerateCamera, got %v", err)
			}
		})
	}
}

func TestCamera_Translated(t *testing.T) {
	camera, err := NewCamera(testCameraConfig())
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}

	moved, err := camera.Translated(core.NewVec3(0, 0, 1))
	if err != nil {
		t.Fatalf("Translated: %v", err)
	}
	if !moved.LookFrom.Equals(core.NewVec3(0, 0, 1)) {
		t.Errorf("Expected look-from (0,0,1), got %v", moved.LookFrom)
	}
	if !moved.LookAt.Equals(camera.LookAt) {
		t.Errorf("Look-at should not move, got %v", moved.LookAt)
	}
	if camera.LookFrom.Length() != 0 {
		t.Error("Original camera must not be mutated")
	}

	// Viewport scales with the new focal length of 2
	if math32.Abs(moved.DeltaV.Length()*3-4) > 1e-5 {
		t.Errorf("Expected viewport height 4, got %f", moved.DeltaV.Length()*3)
	}

	if _, err := camera.Translated(core.NewVec3(0, 0, -1)); err == nil {
		t.Error("Moving onto the look-at point should fail")
	}
}

func TestCamera_Resized(t *testing.T) {
	camera, err := NewCamera(testCameraConfig())
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}
	resized, err := camera.Resized(9, 9)
	if err != nil {
		t.Fatalf("Resized: %v", err)
	}
	if resized.Width != 9 || resized.Height != 9 {
		t.Errorf("Expected 9x9, got %dx%d", resized.Width, resized.Height)
	}
	if resized.NumSamples != camera.NumSamples {
		t.Errorf("Sample count should carry over, got %d", resized.NumSamples)
	}
}
