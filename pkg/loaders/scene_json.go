package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// SceneFile is the JSON description of a sphere scene. Spheres reference
// materials by name; identical materials share one buffer slot.
type SceneFile struct {
	Camera     *CameraFile             `json:"camera,omitempty"`
	MaxBounces int                     `json:"maxBounces,omitempty"`
	Materials  map[string]MaterialFile `json:"materials"`
	Spheres    []SphereFile            `json:"spheres"`
}

// CameraFile holds the camera fields. Omitted fields fall back to the
// default camera.
type CameraFile struct {
	LookFrom *[3]float32 `json:"lookFrom,omitempty"`
	LookAt   *[3]float32 `json:"lookAt,omitempty"`
	VUp      *[3]float32 `json:"vUp,omitempty"`
	Width    int         `json:"width,omitempty"`
	Height   int         `json:"height,omitempty"`
	Samples  int         `json:"samples,omitempty"`
}

// MaterialFile is one named material
type MaterialFile struct {
	Type         string     `json:"type"`
	Albedo       [3]float32 `json:"albedo,omitempty"`
	Fuzz         float32    `json:"fuzz,omitempty"`
	RefractIndex float32    `json:"refractIndex,omitempty"`
}

// SphereFile is one sphere
type SphereFile struct {
	Center   [3]float32 `json:"center"`
	Radius   float32    `json:"radius"`
	Material string     `json:"material"`
}

// LoadSceneJSON reads and builds a scene from a JSON file
func LoadSceneJSON(filename string) (*scene.Scene, error) {
	if err := validateFilePath(filename, scene.JSONExt); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	s, err := ParseSceneJSON(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}
	return s, nil
}

// ParseSceneJSON decodes a scene description and validates the result
func ParseSceneJSON(reader io.Reader) (*scene.Scene, error) {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()

	var file SceneFile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse scene JSON: %w", err)
	}
	return file.Build()
}

// Build converts the file description into a validated scene
func (f *SceneFile) Build() (*scene.Scene, error) {
	maxBounces := f.MaxBounces
	if maxBounces == 0 {
		maxBounces = scene.DefaultMaxBounces
	}
	s := scene.New(f.Camera.config(), maxBounces)

	materials := make(map[string]material.Material, len(f.Materials))
	for _, name := range sortedKeys(f.Materials) {
		m, err := f.Materials[name].build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = m
	}

	for i, sphere := range f.Spheres {
		m, ok := materials[sphere.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: %w: %q", i, material.ErrUnknownMaterial, sphere.Material)
		}
		s.AddSphere(vec3(sphere.Center), sphere.Radius, m)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *CameraFile) config() geometry.CameraConfig {
	config := scene.DefaultCamera()
	if c == nil {
		return config
	}
	if c.LookFrom != nil {
		config.LookFrom = vec3(*c.LookFrom)
	}
	if c.LookAt != nil {
		config.LookAt = vec3(*c.LookAt)
	}
	if c.VUp != nil {
		config.VUp = vec3(*c.VUp)
	}
	if c.Width != 0 {
		config.Width = c.Width
	}
	if c.Height != 0 {
		config.Height = c.Height
	}
	if c.Samples != 0 {
		config.NumSamples = c.Samples
	}
	return config
}

// build goes through the buffer record so the same range checks apply to
// JSON and compiled scenes
func (m MaterialFile) build() (material.Material, error) {
	t, err := material.ParseType(strings.ToLower(m.Type))
	if err != nil {
		return nil, err
	}
	return material.Decode(material.Record{
		Type:         t,
		Albedo:       vec3(m.Albedo),
		Fuzz:         m.Fuzz,
		RefractIndex: m.RefractIndex,
	})
}

// SceneFileFrom describes an existing scene, naming materials by type and
// buffer slot
func SceneFileFrom(s *scene.Scene) (*SceneFile, error) {
	camera := s.Camera
	file := &SceneFile{
		Camera: &CameraFile{
			LookFrom: array(camera.LookFrom),
			LookAt:   array(camera.LookAt),
			VUp:      array(camera.VUp),
			Width:    camera.Width,
			Height:   camera.Height,
			Samples:  camera.NumSamples,
		},
		MaxBounces: s.MaxBounces,
		Materials:  make(map[string]MaterialFile, len(s.Materials)),
		Spheres:    make([]SphereFile, 0, len(s.Spheres)),
	}

	names := make([]string, len(s.Materials))
	for i, m := range s.Materials {
		record, err := material.Encode(m)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		names[i] = fmt.Sprintf("%s-%d", record.Type, i)
		file.Materials[names[i]] = MaterialFile{
			Type:         record.Type.String(),
			Albedo:       *array(record.Albedo),
			Fuzz:         record.Fuzz,
			RefractIndex: record.RefractIndex,
		}
	}

	for i, sphere := range s.Spheres {
		if int(sphere.MaterialID) >= len(names) {
			return nil, fmt.Errorf("sphere %d: material index %d out of range", i, sphere.MaterialID)
		}
		file.Spheres = append(file.Spheres, SphereFile{
			Center:   *array(sphere.Center),
			Radius:   sphere.Radius,
			Material: names[sphere.MaterialID],
		})
	}

	return file, nil
}

func sortedKeys(m map[string]MaterialFile) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func vec3(a [3]float32) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}

func array(v core.Vec3) *[3]float32 {
	return &[3]float32{v.X, v.Y, v.Z}
}

// validateFilePath rejects empty, traversing and wrongly typed scene paths
func validateFilePath(filename, ext string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return fmt.Errorf("invalid file path: directory traversal not allowed")
		}
	}

	if !strings.HasSuffix(strings.ToLower(cleanPath), ext) {
		return fmt.Errorf("invalid file type: only %s files are allowed", ext)
	}

	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	return nil
}
