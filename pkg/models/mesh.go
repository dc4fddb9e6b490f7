// Package models imports 3D model files and flattens them onto a plane as
// viewport scenes: triangles become filled polygons and line primitives
// become lines.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taigrr/ortho/pkg/math3d"
	"github.com/taigrr/ortho/pkg/world"
	"golang.org/x/image/colornames"
)

// ErrUnknownPlane is returned by ParsePlane.
var ErrUnknownPlane = errors.New("models: unknown plane")

// DefaultColor is used for faces and edges without a material.
var DefaultColor = world.FromStd(colornames.Silver)

// Plane selects which two model axes map to the world X and Y.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneZY
)

// ParsePlane parses "xy", "xz" or "zy".
func ParsePlane(s string) (Plane, error) {
	switch strings.ToLower(s) {
	case "xy", "":
		return PlaneXY, nil
	case "xz":
		return PlaneXZ, nil
	case "zy":
		return PlaneZY, nil
	}
	return PlaneXY, fmt.Errorf("%w: %q", ErrUnknownPlane, s)
}

func (p Plane) project(v math3d.Vec3) math3d.Vec2 {
	switch p {
	case PlaneXZ:
		return math3d.V2(v.X, v.Z)
	case PlaneZY:
		return math3d.V2(v.Z, v.Y)
	default:
		return v.XY()
	}
}

// Model is imported geometry with its materials.
type Model struct {
	Name      string
	Vertices  []math3d.Vec3
	Faces     []Face
	Edges     []Edge
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is a triangle with a material reference.
type Face struct {
	V        [3]int // Indices into Model.Vertices
	Material int    // Index into Model.Materials (-1 for no material)
}

// Edge is a line segment with a material reference.
type Edge struct {
	V        [2]int
	Material int
}

// Material is the flat color of a glTF material.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
}

// Color returns the material color and alpha in world form.
func (m Material) Color() (world.Color, float32) {
	return world.Color{
		R: float32(m.BaseColor[0]),
		G: float32(m.BaseColor[1]),
		B: float32(m.BaseColor[2]),
	}, float32(m.BaseColor[3])
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Model) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0]
	m.BoundsMax = m.Vertices[0]

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v)
		m.BoundsMax = m.BoundsMax.Max(v)
	}
}

// Center returns the center of the bounding box.
func (m *Model) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Model) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Model) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Model) VertexCount() int {
	return len(m.Vertices)
}

// Transform applies a transformation matrix to all vertices.
func (m *Model) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i] = mat.MulVec3(m.Vertices[i])
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the model.
func (m *Model) Clone() *Model {
	clone := &Model{
		Name:      m.Name,
		Vertices:  make([]math3d.Vec3, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Edges:     make([]Edge, len(m.Edges)),
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	copy(clone.Edges, m.Edges)
	copy(clone.Materials, m.Materials)
	return clone
}

// GetMaterial returns the material at index i.
// Returns nil if index is out of bounds or -1.
func (m *Model) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// MaterialCount returns the number of materials.
func (m *Model) MaterialCount() int {
	return len(m.Materials)
}

func (m *Model) color(material int) (world.Color, float32) {
	if mat := m.GetMaterial(material); mat != nil {
		return mat.Color()
	}
	return DefaultColor, 1
}

// Scene flattens the model onto plane. Every face becomes a filled
// triangle polygon and every edge a two-point line, in file order.
func (m *Model) Scene(plane Plane) world.Scene {
	s := world.Scene{
		Polygons: make([]world.Polygon, 0, len(m.Faces)),
		Lines:    make([]world.Line, 0, len(m.Edges)),
	}
	for _, f := range m.Faces {
		col, alpha := m.color(f.Material)
		s.Polygons = append(s.Polygons, world.Polygon{
			Points: []math3d.Vec2{
				plane.project(m.Vertices[f.V[0]]),
				plane.project(m.Vertices[f.V[1]]),
				plane.project(m.Vertices[f.V[2]]),
			},
			Color:  col,
			Alpha:  alpha,
			Filled: true,
		})
	}
	for _, e := range m.Edges {
		col, alpha := m.color(e.Material)
		s.Lines = append(s.Lines, world.Line{
			Points: []math3d.Vec2{
				plane.project(m.Vertices[e.V[0]]),
				plane.project(m.Vertices[e.V[1]]),
			},
			Color: col,
			Alpha: alpha,
		})
	}
	return s
}
