package world

import (
	"github.com/chewxy/math32"
	"github.com/taigrr/ortho/pkg/math3d"
)

// Bounds is an axis-aligned world rectangle.
type Bounds struct {
	Min, Max math3d.Vec2
}

// Size returns the width and height of the rectangle.
func (b Bounds) Size() math3d.Vec2 {
	return b.Max.Sub(b.Min)
}

// Center returns the centroid of the rectangle.
func (b Bounds) Center() math3d.Vec2 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Extents returns the bounding box over every finite point of every polygon
// and line in the scene. ok is false when there is nothing to bound.
func (s Scene) Extents() (b Bounds, ok bool) {
	b = Bounds{
		Min: math3d.V2(math32.MaxFloat32, math32.MaxFloat32),
		Max: math3d.V2(-math32.MaxFloat32, -math32.MaxFloat32),
	}
	add := func(pts []math3d.Vec2) {
		for _, p := range pts {
			if !p.IsFinite() {
				continue
			}
			b.Min = b.Min.Min(p)
			b.Max = b.Max.Max(p)
			ok = true
		}
	}
	for _, p := range s.Polygons {
		add(p.Points)
	}
	for _, l := range s.Lines {
		add(l.Points)
	}
	if !ok {
		return Bounds{}, false
	}
	return b, true
}
