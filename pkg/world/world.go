// Package world defines the shapes a viewport displays and the display
// toggles that control how they are drawn.
package world

import (
	"errors"
	"fmt"

	"github.com/taigrr/ortho/pkg/math3d"
)

// ErrTooFewPoints is returned by Validate for shapes that cannot be drawn.
var ErrTooFewPoints = errors.New("world: too few points")

// ErrNonFinite is returned by Validate when a point is NaN or infinite.
var ErrNonFinite = errors.New("world: non-finite point")

// Polygon is a closed outline in world space. The last point may repeat the
// first.
type Polygon struct {
	Points []math3d.Vec2
	Color  Color
	Alpha  float32
	// Filled asks for a solid interior when filled polygons are enabled.
	Filled bool
}

// Line is an open path in world space.
type Line struct {
	Points []math3d.Vec2
	Color  Color
	Alpha  float32
}

// Validate reports whether p has at least three finite points.
func (p Polygon) Validate() error {
	return validate(p.Points, 3)
}

// Validate reports whether l has at least two finite points.
func (l Line) Validate() error {
	return validate(l.Points, 2)
}

func validate(pts []math3d.Vec2, minPoints int) error {
	if len(pts) < minPoints {
		return fmt.Errorf("%w: have %d, need %d", ErrTooFewPoints, len(pts), minPoints)
	}
	for i, p := range pts {
		if !p.IsFinite() {
			return fmt.Errorf("%w: point %d", ErrNonFinite, i)
		}
	}
	return nil
}

// Scene is the ordered shape data owned by the caller. Later shapes stack
// above earlier ones.
type Scene struct {
	Polygons []Polygon
	Lines    []Line
}

// Empty reports whether the scene has no shapes at all.
func (s Scene) Empty() bool {
	return len(s.Polygons) == 0 && len(s.Lines) == 0
}
