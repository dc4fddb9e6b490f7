package render

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/taigrr/ortho/pkg/math3d"
)

func box(minX, minY, maxX, maxY, z float32) AABB {
	return AABB{Min: math3d.V3(minX, minY, z), Max: math3d.V3(maxX, maxY, z)}
}

func TestFrustumIntersectAABB(t *testing.T) {
	// x in -10..10, y in -5..5, layers z 0..1
	f := NewFrustum(math3d.Orthographic(-10, 10, -5, 5, 1, 0))

	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"inside", box(-1, -1, 1, 1, 0.5), true},
		{"covers view", box(-100, -100, 100, 100, 0.5), true},
		{"straddles left edge", box(-12, 0, -9, 1, 0.5), true},
		{"touches right edge", box(10, 0, 12, 1, 0.5), true},
		{"left of view", box(-30, -1, -11, 1, 0.5), false},
		{"above view", box(-1, 6, 1, 8, 0.5), false},
		{"below view", box(-1, -8, 1, -6, 0.5), false},
		{"back layer", box(-1, -1, 1, 1, 0), true},
		{"front layer", box(-1, -1, 1, 1, 1), true},
		{"behind back layer", box(-1, -1, 1, 1, -0.5), false},
		{"in front of front layer", box(-1, -1, 1, 1, 1.5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IntersectAABB(tt.box); got != tt.want {
				t.Errorf("IntersectAABB(%v) = %v, want %v", tt.box, got, tt.want)
			}
		})
	}
}

func TestFrustumFollowsModelRotation(t *testing.T) {
	view := math3d.Orthographic(-10, 10, -5, 5, 1, 0)
	b := box(7, -1, 9, 1, 0.5) // right of centre, inside

	if !NewFrustum(view).IntersectAABB(b) {
		t.Fatal("box should be visible unrotated")
	}
	// a quarter turn carries it above the 5-unit half height
	rotated := view.Mul(math3d.RotateZ(math32.Pi / 2))
	if NewFrustum(rotated).IntersectAABB(b) {
		t.Error("box should be culled after rotation")
	}
}

func TestPlaneNormalize(t *testing.T) {
	p := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	p.Normalize()
	if d := p.DistanceToPoint(math3d.V3(0, 0, 0)); d != 2 {
		t.Errorf("distance to origin = %v, want 2", d)
	}

	zero := Plane{D: 1}
	zero.Normalize()
	if zero.D != 1 {
		t.Error("zero normal should be left alone")
	}
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	f := NewFrustum(math3d.Orthographic(-10, 10, -5, 5, 1, 0))
	bb := box(-1, -1, 1, 1, 0.5)

	for b.Loop() {
		_ = f.IntersectAABB(bb)
	}
}
