// Package viewport holds the 2D camera and the mapping between world space
// and screen pixels.
package viewport

import (
	"github.com/chewxy/math32"
	"github.com/taigrr/ortho/pkg/math3d"
)

// MinZoom is the smallest zoom factor a camera will accept.
const MinZoom = 1e-4

// Camera is the pan/zoom state of a viewport. The effective world units per
// screen pixel is Zoom*BaseZoom, which is always positive.
type Camera struct {
	Position math3d.Vec2
	Zoom     float32
	BaseZoom float32
	Locked   bool

	// Default is where Reset returns to.
	Default math3d.Vec2

	saved    math3d.Vec2
	hasSaved bool
}

// NewCamera creates an unlocked camera at the origin with zoom 1.
// Non-positive or non-finite base zoom falls back to 1.
func NewCamera(baseZoom float32) Camera {
	if !(baseZoom > 0) || math32.IsInf(baseZoom, 0) {
		baseZoom = 1
	}
	return Camera{Zoom: 1, BaseZoom: baseZoom}
}

// Scale returns world units per screen pixel.
func (c Camera) Scale() float32 {
	s := c.Zoom * c.BaseZoom
	if !(s > 0) {
		return MinZoom
	}
	return s
}

// SetZoom sets the zoom factor, flooring it at MinZoom.
func (c *Camera) SetZoom(z float32) {
	if !(z >= MinZoom) || math32.IsInf(z, 0) {
		z = MinZoom
	}
	c.Zoom = z
}

// AddZoom offsets the zoom factor by d, flooring it at MinZoom.
func (c *Camera) AddZoom(d float32) {
	c.SetZoom(c.Zoom + d)
}

// Pan moves the camera by d world units.
func (c *Camera) Pan(d math3d.Vec2) {
	c.Position = c.Position.Add(d)
}

// MoveTo centres the camera on p.
func (c *Camera) MoveTo(p math3d.Vec2) {
	c.Position = p
}

// Reset returns to the default position at zoom 1.
func (c *Camera) Reset() {
	c.Position = c.Default
	c.Zoom = 1
}

// SaveLocation remembers the current position.
func (c *Camera) SaveLocation() {
	c.saved = c.Position
	c.hasSaved = true
}

// LoadLocation moves back to the saved position. It reports false when
// nothing has been saved.
func (c *Camera) LoadLocation() bool {
	if !c.hasSaved {
		return false
	}
	c.Position = c.saved
	return true
}

// ToggleLock flips the lock and returns the new state.
func (c *Camera) ToggleLock() bool {
	c.Locked = !c.Locked
	return c.Locked
}

// Fit centres the camera on the rectangle [lo, hi] and zooms so that it
// fills the viewport along its tighter axis. A zero-area rectangle only
// recentres. A zero viewport falls back to zoom 1.
func (c *Camera) Fit(lo, hi math3d.Vec2, vp Size) {
	c.Position = lo.Add(hi).Scale(0.5)

	d := hi.Sub(lo)
	if d.X <= 0 && d.Y <= 0 {
		return
	}
	if vp.Width == 0 || vp.Height == 0 {
		c.Zoom = 1
		return
	}
	s := math32.Max(d.X/float32(vp.Width), d.Y/float32(vp.Height))
	c.SetZoom(s / c.BaseZoom)
}
