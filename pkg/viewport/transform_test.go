package viewport

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/taigrr/ortho/pkg/math3d"
)

func TestRoundTrip(t *testing.T) {
	cams := []struct {
		pos  math3d.Vec2
		zoom float32
		base float32
	}{
		{math3d.V2(0, 0), 1, 1},
		{math3d.V2(120, -45), 0.01, 1},
		{math3d.V2(-3e3, 7e2), 42, 0.5},
		{math3d.V2(1, 1), MinZoom, 2},
	}
	points := []math3d.Vec2{{X: 0, Y: 0}, {X: 10, Y: -10}, {X: -250.5, Y: 99.25}, {X: 1e3, Y: 1e3}}

	for _, cc := range cams {
		c := NewCamera(cc.base)
		c.Position = cc.pos
		c.SetZoom(cc.zoom)
		tr := NewTransform(c, Size{800, 600})
		for _, p := range points {
			got := tr.ScreenToWorld(tr.WorldToScreen(p))
			// float32 error grows with the magnitudes involved
			tol := 1e-5 * (1 + math32.Abs(p.X) + math32.Abs(p.Y) + math32.Abs(cc.pos.X) + math32.Abs(cc.pos.Y)) * math32.Max(1, c.Scale())
			if math32.Abs(got.X-p.X) > tol || math32.Abs(got.Y-p.Y) > tol {
				t.Errorf("cam %+v: round trip %v -> %v", cc, p, got)
			}
		}
	}
}

func TestWorldToScreen(t *testing.T) {
	c := NewCamera(1)
	c.Position = math3d.V2(10, 20)
	c.SetZoom(2)
	tr := NewTransform(c, Size{100, 50})

	tests := []struct {
		world, screen math3d.Vec2
	}{
		{math3d.V2(10, 20), math3d.V2(50, 25)},
		{math3d.V2(30, 20), math3d.V2(60, 25)},
		{math3d.V2(10, 0), math3d.V2(50, 15)},
	}
	for _, tt := range tests {
		if got := tr.WorldToScreen(tt.world); got != tt.screen {
			t.Errorf("WorldToScreen(%v) = %v, want %v", tt.world, got, tt.screen)
		}
		if got := tr.ScreenToWorld(tt.screen); got != tt.world {
			t.Errorf("ScreenToWorld(%v) = %v, want %v", tt.screen, got, tt.world)
		}
	}
}

func TestWorldToScreenSize(t *testing.T) {
	c := NewCamera(0.5)
	c.Position = math3d.V2(999, -999)
	c.SetZoom(4)
	tr := NewTransform(c, Size{1024, 768})
	if got := tr.WorldToScreenSize(math3d.V2(10, 0)); !approx(got.X, 5) || got.Y != 0 {
		t.Errorf("got %v, want (5, 0)", got)
	}
}

func TestZeroViewportDoesNotPanic(t *testing.T) {
	tr := NewTransform(NewCamera(1), Size{})
	_ = tr.WorldToScreen(math3d.V2(1, 1))
	_ = tr.ScreenToWorld(math3d.V2(1, 1))
	_ = tr.ViewMatrix()
	if e := tr.Extent(); e != (math3d.Vec2{}) {
		t.Errorf("Extent = %v, want zero", e)
	}
}

func TestViewMatrixMatchesScreenMapping(t *testing.T) {
	c := NewCamera(1)
	c.Position = math3d.V2(-7, 3)
	c.SetZoom(0.5)
	vp := Size{200, 100}
	tr := NewTransform(c, vp)
	m := tr.ViewMatrix()

	for _, p := range []math3d.Vec2{{X: -7, Y: 3}, {X: 0, Y: 0}, {X: 20, Y: -10}} {
		ndc := m.MulVec3(p.Vec3(0.5))
		sx := (ndc.X + 1) / 2 * float32(vp.Width)
		sy := (1 - ndc.Y) / 2 * float32(vp.Height)
		want := tr.WorldToScreen(p)
		if !approx(sx, want.X) || !approx(sy, want.Y) {
			t.Errorf("%v: ndc maps to (%v, %v), want %v", p, sx, sy, want)
		}
		if !approx(ndc.Z, 0.5) {
			t.Errorf("depth %v, want 0.5", ndc.Z)
		}
	}
}

func TestViewMatrixLayerOrder(t *testing.T) {
	m := NewTransform(NewCamera(1), Size{10, 10}).ViewMatrix()
	back := m.MulVec3(math3d.V3(0, 0, 0)).Z
	front := m.MulVec3(math3d.V3(0, 0, 0.9)).Z
	if !(front < back) {
		t.Errorf("front depth %v not less than back depth %v", front, back)
	}
	if !approx(back, 1) {
		t.Errorf("layer 0 depth = %v, want 1", back)
	}
}
