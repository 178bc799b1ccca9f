package server

import (
	"fmt"
	"net/http"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	SphereIndex  int                    `json:"sphereIndex"`
	MaterialID   uint32                 `json:"materialId"`
	MaterialType string                 `json:"materialType"`
	Point        [3]float32             `json:"point"`
	Normal       [3]float32             `json:"normal"`
	Distance     float32                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

// extractMaterialInfo describes a material for the inspector panel
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vec3Array(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return m.Type().String(), properties

	case *material.Metal:
		properties["albedo"] = vec3Array(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return m.Type().String(), properties

	case *material.Dielectric:
		properties["refractIndex"] = m.RefractIndex
		properties["color"] = "#ffffff"
		return m.Type().String(), properties

	case *material.NormalDebug:
		return m.Type().String(), properties

	default:
		properties["color"] = hexColor(material.SentinelColor)
		return "unknown", properties
	}
}

// InspectResult is the first sphere hit by an inspection ray
type InspectResult struct {
	Hit         bool
	HitRecord   geometry.HitRecord
	SphereIndex int
}

// inspectPixel casts the unjittered ray through pixel coordinate (u, v)
func inspectPixel(sc *scene.Scene, u, v float32) (InspectResult, error) {
	camera, err := sc.NewCamera()
	if err != nil {
		return InspectResult{}, err
	}

	world := sc.World()
	ray := camera.RayThrough(u, v)
	hit, isHit := world.Intersect(ray, geometry.TMin, geometry.TMax)
	if !isHit {
		return InspectResult{SphereIndex: -1}, nil
	}

	// Intersect does not report which sphere was hit, so find the one with
	// the same distance
	for i, sphere := range world.Spheres {
		if sphereHit, ok := sphere.Hit(ray, geometry.TMin, geometry.TMax); ok && sphereHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, SphereIndex: i}, nil
		}
	}
	return InspectResult{Hit: true, HitRecord: hit, SphereIndex: -1}, nil
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	req, err := s.parseRenderRequest(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	u, err := parseFloatParam(values, "x")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	v, err := parseFloatParam(values, "y")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	sc, err := s.loadScene(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if u < -0.5 || u >= float32(sc.Camera.Width)-0.5 || v < -0.5 || v >= float32(sc.Camera.Height)-0.5 {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	result, err := inspectPixel(sc, u, v)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false, SphereIndex: -1})
		return
	}

	hit := result.HitRecord
	var mat material.Material
	if int(hit.MaterialID) < len(sc.Materials) {
		mat = sc.Materials[hit.MaterialID]
	}
	materialType, materialProps := extractMaterialInfo(mat)

	properties := map[string]interface{}{"material": materialProps}
	if result.SphereIndex >= 0 {
		sphere := sc.Spheres[result.SphereIndex]
		properties["geometry"] = map[string]interface{}{
			"center": vec3Array(sphere.Center),
			"radius": sphere.Radius,
		}
	}

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		SphereIndex:  result.SphereIndex,
		MaterialID:   hit.MaterialID,
		MaterialType: materialType,
		Point:        vec3Array(hit.Point),
		Normal:       vec3Array(hit.Normal),
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Properties:   properties,
	})
}

func vec3Array(v core.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}
