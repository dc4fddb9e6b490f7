// Package tessellate turns the camera, the display settings and the world
// shape lists into flat vertex and index arrays ready for upload.
//
// Every function returns a fresh Mesh. On malformed input it returns an
// error and no mesh so the caller can keep drawing the previous one.
package tessellate

import (
	"errors"

	"github.com/taigrr/ortho/pkg/math3d"
)

var (
	// ErrMalformedShape is returned when a polygon or line cannot be drawn.
	ErrMalformedShape = errors.New("tessellate: malformed shape")
	// ErrDegenerate is returned for unusable camera or grid parameters.
	ErrDegenerate = errors.New("tessellate: degenerate parameters")
)

// Fixed layers for the background drawables. Shapes stack from ShapeLayer
// up to 1, above the grid and axes.
const (
	GridLayer  float32 = 0
	AxesLayer  float32 = 0.001
	ShapeLayer float32 = 0.002
)

// Vertex is a position with its stacking layer in Z and an RGBA color.
type Vertex struct {
	Position math3d.Vec3
	Color    math3d.Vec4
}

// Run is the vertex range one shape occupies.
type Run struct {
	First, Count uint32
}

// Mesh is one drawable's geometry. Indices hold LineIndices line-list
// indices followed by TriangleIndices triangle-list indices.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Runs     []Run

	LineIndices     uint32
	TriangleIndices uint32
}

// Empty reports whether there is nothing to draw.
func (m *Mesh) Empty() bool {
	return m == nil || len(m.Indices) == 0
}

// builder accumulates vertices while keeping line and triangle indices
// apart so the mesh can be drawn with one call per topology.
type builder struct {
	verts []Vertex
	lines []uint32
	tris  []uint32
	runs  []Run
	first uint32
}

func (b *builder) begin() {
	b.first = uint32(len(b.verts))
}

func (b *builder) end() {
	b.runs = append(b.runs, Run{First: b.first, Count: uint32(len(b.verts)) - b.first})
}

func (b *builder) segment(p0, p1 math3d.Vec3, c math3d.Vec4) {
	i := uint32(len(b.verts))
	b.verts = append(b.verts, Vertex{p0, c}, Vertex{p1, c})
	b.lines = append(b.lines, i, i+1)
}

func (b *builder) mesh() *Mesh {
	idx := make([]uint32, 0, len(b.lines)+len(b.tris))
	idx = append(idx, b.lines...)
	idx = append(idx, b.tris...)
	return &Mesh{
		Vertices:        b.verts,
		Indices:         idx,
		Runs:            b.runs,
		LineIndices:     uint32(len(b.lines)),
		TriangleIndices: uint32(len(b.tris)),
	}
}
