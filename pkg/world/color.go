package world

import (
	"image/color"

	"github.com/taigrr/ortho/pkg/math3d"
)

// Color is a linear RGB color with components in [0, 1].
type Color struct {
	R, G, B float32
}

// RGB creates a Color from 0-255 components.
func RGB(r, g, b uint8) Color {
	return Color{float32(r) / 255, float32(g) / 255, float32(b) / 255}
}

// FromStd converts any image/color value, dropping alpha.
func FromStd(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return Color{float32(r) / 0xffff, float32(g) / 0xffff, float32(b) / 0xffff}
}

// WithAlpha returns the color as an RGBA vector.
func (c Color) WithAlpha(a float32) math3d.Vec4 {
	return math3d.V4(c.R, c.G, c.B, a)
}
