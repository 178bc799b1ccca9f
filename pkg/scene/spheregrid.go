package scene

import (
	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float32) core.Vec3 {
	hRad := h * math32.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math32.Cos(hRad)
	b := c * math32.Sin(hRad)

	// OKLAB to LMS
	lp := l + 0.3963377774*a + 0.2158037573*b
	mp := l - 0.1055613458*a - 0.0638541728*b
	sp := l - 0.0894841775*a - 1.2914855480*b

	lp = lp * lp * lp
	mp = mp * mp * mp
	sp = sp * sp * sp

	// LMS to linear RGB
	return core.NewVec3(
		+4.0767416621*lp-3.3077115913*mp+0.2309699292*sp,
		-1.2684380046*lp+2.6097574011*mp-0.3413193965*sp,
		-0.0041960863*lp-0.7034186147*mp+1.7076147010*sp,
	).Clamp(0, 1)
}

// NewSphereGridScene creates a grid of metal spheres whose hue varies along
// x and chroma along z.
func NewSphereGridScene() *Scene {
	camera := DefaultCamera()
	camera.LookFrom = core.NewVec3(4.5, 6, 18)
	camera.LookAt = core.NewVec3(4.5, 0.8, 4.5)
	camera.NumSamples = 32
	s := New(camera, 40)

	s.AddSphere(core.NewVec3(4.5, -1000, 4.5), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	const gridSize = 10
	const targetArea float32 = 9.0
	spacing := targetArea / float32(gridSize-1)
	sphereRadius := spacing * 0.35

	// OKLCH parameters for color variation
	const baseLightness, minChroma, maxChroma float32 = 0.65, 0.05, 0.25

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float32(i)*spacing - targetArea/2.0 + 4.5
			z := float32(j)*spacing - targetArea/2.0 + 4.5

			hue := float32(i) / float32(gridSize-1) * 360.0
			chroma := minChroma + float32(j)/float32(gridSize-1)*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math32.Sin(float32(i+j)*0.5)

			fuzz := 0.05 + 0.1*float32((i+j)%3)/2.0
			s.AddSphere(core.NewVec3(x, sphereRadius, z), sphereRadius,
				material.NewMetal(oklchToRGB(lightness, chroma, hue), fuzz))
		}
	}

	return s
}
