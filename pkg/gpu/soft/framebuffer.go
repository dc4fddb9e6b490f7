package soft

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// Framebuffer is a color plus depth render target held in memory.
type Framebuffer struct {
	w, h   int
	Pixels []color.RGBA // Row-major pixel data
	depth  []float32
}

// NewFramebuffer creates a framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Width returns the width in pixels.
func (fb *Framebuffer) Width() uint32 { return uint32(fb.w) }

// Height returns the height in pixels.
func (fb *Framebuffer) Height() uint32 { return uint32(fb.h) }

// Resize reallocates both planes. Contents are discarded.
func (fb *Framebuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	fb.w, fb.h = width, height
	fb.Pixels = make([]color.RGBA, width*height)
	fb.depth = make([]float32, width*height)
}

// Clear fills the color plane with c.
func (fb *Framebuffer) Clear(c color.RGBA) {
	n := len(fb.Pixels)
	if n == 0 {
		return
	}
	fb.Pixels[0] = c
	for i := 1; i < n; i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// ClearDepth fills the depth plane with d.
func (fb *Framebuffer) ClearDepth(d float32) {
	n := len(fb.depth)
	if n == 0 {
		return
	}
	fb.depth[0] = d
	for i := 1; i < n; i *= 2 {
		copy(fb.depth[i:], fb.depth[:i])
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.w || y < 0 || y >= fb.h {
		return
	}
	fb.Pixels[y*fb.w+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.w || y < 0 || y >= fb.h {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.w+x]
}

// Depth returns the depth at (x, y), or 1 out of bounds.
func (fb *Framebuffer) Depth(x, y int) float32 {
	if x < 0 || x >= fb.w || y < 0 || y >= fb.h {
		return 1
	}
	return fb.depth[y*fb.w+x]
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.w, fb.h))
	for y := 0; y < fb.h; y++ {
		for x := 0; x < fb.w; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.w+x])
		}
	}
	return img
}

// SavePNG saves the color plane as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, fb.ToImage())
}
