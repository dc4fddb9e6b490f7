package viewport

import "github.com/taigrr/ortho/pkg/math3d"

// Size is the viewport size in pixels. Either side may be zero while the
// host is still laying out.
type Size struct {
	Width, Height uint32
}

// Transform maps between world and screen space for one camera and
// viewport. It is a value snapshot and never changes the camera.
type Transform struct {
	center math3d.Vec2
	scale  float32
	w, h   float32
}

// NewTransform snapshots the camera and viewport.
func NewTransform(c Camera, vp Size) Transform {
	return Transform{
		center: c.Position,
		scale:  c.Scale(),
		w:      float32(vp.Width),
		h:      float32(vp.Height),
	}
}

// WorldToScreen maps a world point to pixels, origin top-left.
func (t Transform) WorldToScreen(p math3d.Vec2) math3d.Vec2 {
	return math3d.V2(
		(p.X-t.center.X)/t.scale+t.w/2,
		(p.Y-t.center.Y)/t.scale+t.h/2,
	)
}

// ScreenToWorld maps a pixel position to world space.
func (t Transform) ScreenToWorld(p math3d.Vec2) math3d.Vec2 {
	return math3d.V2(
		(p.X-t.w/2)*t.scale+t.center.X,
		(p.Y-t.h/2)*t.scale+t.center.Y,
	)
}

// WorldToScreenSize maps a world length to a pixel length.
func (t Transform) WorldToScreenSize(s math3d.Vec2) math3d.Vec2 {
	return t.WorldToScreen(s).Sub(t.WorldToScreen(math3d.Vec2{}))
}

// Scale returns world units per pixel.
func (t Transform) Scale() float32 {
	return t.scale
}

// Center returns the camera position.
func (t Transform) Center() math3d.Vec2 {
	return t.center
}

// Extent returns the viewport size scaled to world units. Grid and axes
// reach this far either side of the camera, twice what is on screen.
func (t Transform) Extent() math3d.Vec2 {
	return math3d.V2(t.w*t.scale, t.h*t.scale)
}

// Bounds is an orthographic projection volume in world units.
type Bounds struct {
	Left, Right, Bottom, Top float32
}

// Projection returns the visible world rectangle. Bottom is the larger Y
// so world Y grows down the screen, matching WorldToScreen.
func (t Transform) Projection() Bounds {
	hw, hh := t.w/2*t.scale, t.h/2*t.scale
	return Bounds{
		Left:   t.center.X - hw,
		Right:  t.center.X + hw,
		Bottom: t.center.Y + hh,
		Top:    t.center.Y - hh,
	}
}

// ViewMatrix returns the orthographic view-projection for the visible
// rectangle. Layer 1 maps to depth 0 and layer 0 to depth 1, so shapes
// with a higher layer pass a LessEqual depth test over lower ones.
func (t Transform) ViewMatrix() math3d.Mat4 {
	b := t.Projection()
	return math3d.Orthographic(b.Left, b.Right, b.Bottom, b.Top, 1, 0)
}
