package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Present divides the accumulated radiance by the sample count and converts
// it to 8-bit sRGB-ish output with gamma 2.
func Present(acc *Accumulator) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, acc.Width(), acc.Height()))
	for y := 0; y < acc.Height(); y++ {
		for x := 0; x < acc.Width(); x++ {
			img.SetRGBA(x, y, vec3ToColor(acc.Resolve(x, y)))
		}
	}
	return img
}

// vec3ToColor converts a Vec3 color to RGBA with proper clamping and gamma correction
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.GammaCorrect(2.0)
	colorVec = colorVec.Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}
