package tessellate

import (
	"fmt"

	"github.com/taigrr/ortho/pkg/math3d"
	"github.com/taigrr/ortho/pkg/world"
)

// Layer returns the stacking layer of shape i out of n: the fraction i/n
// scaled into [ShapeLayer, 1), so every shape sits in front of the grid and
// axes and later shapes sit in front of earlier ones.
func Layer(i, n int) float32 {
	if n <= 0 {
		return ShapeLayer
	}
	return ShapeLayer + (1-ShapeLayer)*float32(i)/float32(n)
}

// Lines builds one segment per consecutive point pair of every line, so a
// line of L points contributes 2(L-1) vertices.
func Lines(lines []world.Line) (*Mesh, error) {
	for i, l := range lines {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedShape, i, err)
		}
	}

	var b builder
	for i, l := range lines {
		z := Layer(i, len(lines))
		b.begin()
		outline(&b, l.Points, z, l.Color.WithAlpha(l.Alpha))
		b.end()
	}
	return b.mesh(), nil
}

// Polygons builds the polygon drawable. A polygon marked Filled is drawn
// solid when s.FilledPolygons is set: only its first three points form the
// triangle unless s.Triangulate asks for the whole outline to be filled.
// Every other polygon is drawn as its outline.
func Polygons(polys []world.Polygon, s world.Settings) (*Mesh, error) {
	for i, p := range polys {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: polygon %d: %w", ErrMalformedShape, i, err)
		}
	}

	var b builder
	for i, p := range polys {
		z := Layer(i, len(polys))
		col := p.Color.WithAlpha(p.Alpha)
		b.begin()
		switch {
		case !s.FilledPolygons || !p.Filled:
			outline(&b, p.Points, z, col)
		case s.Triangulate:
			fill(&b, p.Points, z, col)
		default:
			triangle(&b, p.Points[:3], z, col)
		}
		b.end()
	}
	return b.mesh(), nil
}

func outline(b *builder, pts []math3d.Vec2, z float32, col math3d.Vec4) {
	for i := range len(pts) - 1 {
		b.segment(pts[i].Vec3(z), pts[i+1].Vec3(z), col)
	}
}

func triangle(b *builder, pts []math3d.Vec2, z float32, col math3d.Vec4) {
	i := uint32(len(b.verts))
	for _, p := range pts {
		b.verts = append(b.verts, Vertex{p.Vec3(z), col})
	}
	b.tris = append(b.tris, i, i+1, i+2)
}

// fill ear-clips the polygon. Outlines that cannot be clipped fall back to
// the first-three-points triangle.
func fill(b *builder, pts []math3d.Vec2, z float32, col math3d.Vec4) {
	ring := openRing(pts)
	tris, err := Triangulate(ring)
	if err != nil {
		triangle(b, pts[:3], z, col)
		return
	}
	base := uint32(len(b.verts))
	for _, p := range ring {
		b.verts = append(b.verts, Vertex{p.Vec3(z), col})
	}
	for _, t := range tris {
		b.tris = append(b.tris, base+t)
	}
}

// openRing drops a closing point that repeats the first.
func openRing(pts []math3d.Vec2) []math3d.Vec2 {
	if n := len(pts); n > 3 && pts[0] == pts[n-1] {
		return pts[:n-1]
	}
	return pts
}
