package render

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/taigrr/ortho/pkg/gpu"
	"github.com/taigrr/ortho/pkg/logging"
	"github.com/taigrr/ortho/pkg/tessellate"
)

// Kind identifies one of the fixed drawables. Kinds draw in declaration
// order.
type Kind int

const (
	Grid Kind = iota
	Axes
	Lines
	Polygons

	numKinds
)

func (k Kind) String() string {
	switch k {
	case Grid:
		return "grid"
	case Axes:
		return "axes"
	case Lines:
		return "lines"
	case Polygons:
		return "polygons"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// slot holds the GPU buffers a drawable is currently drawn from and the
// mesh waiting to replace them.
type slot struct {
	kind   Kind
	vb, ib gpu.Buffer
	lines  uint32
	tris   uint32
	bounds AABB

	pending *tessellate.Mesh
	staged  bool
}

func (s *slot) stage(m *tessellate.Mesh) {
	s.pending = m
	s.staged = true
}

// release destroys the current buffers. Safe to call on an empty slot.
func (s *slot) release() {
	if s.vb != nil {
		s.vb.Destroy()
		s.vb = nil
	}
	if s.ib != nil {
		s.ib.Destroy()
		s.ib = nil
	}
	s.lines, s.tris = 0, 0
}

// swap replaces the current buffers with the staged mesh. The old buffers
// are destroyed first and the new ones sized exactly to the mesh.
func (s *slot) swap(dev gpu.Device) error {
	if !s.staged {
		return nil
	}
	m := s.pending
	s.pending, s.staged = nil, false
	s.release()
	if m.Empty() {
		return nil
	}

	vdata, idata := encodeMesh(m)
	vb, err := createFilled(dev, s.kind.String()+" vertices", gputypes.BufferUsageVertex, vdata)
	if err != nil {
		return err
	}
	ib, err := createFilled(dev, s.kind.String()+" indices", gputypes.BufferUsageIndex, idata)
	if err != nil {
		vb.Destroy()
		return err
	}
	s.vb, s.ib = vb, ib
	s.lines, s.tris = m.LineIndices, m.TriangleIndices
	s.bounds = vertexBounds(m.Vertices)

	logging.Logger().Debug("drawable uploaded",
		"kind", s.kind.String(),
		"vertices", len(m.Vertices),
		"line_indices", m.LineIndices,
		"triangle_indices", m.TriangleIndices)
	return nil
}

func vertexBounds(vs []tessellate.Vertex) AABB {
	b := AABB{Min: vs[0].Position, Max: vs[0].Position}
	for _, v := range vs[1:] {
		b.Min = b.Min.Min(v.Position)
		b.Max = b.Max.Max(v.Position)
	}
	return b
}

func createFilled(dev gpu.Device, label string, usage gputypes.BufferUsage, data []byte) (gpu.Buffer, error) {
	b, err := dev.CreateBuffer(gputypes.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := dev.UpdateBuffer(b, 0, data); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	return b, nil
}

// encodeMesh packs vertices in gpu.PositionColorLayout and indices as
// little-endian uint32.
func encodeMesh(m *tessellate.Mesh) (vdata, idata []byte) {
	vdata = make([]byte, len(m.Vertices)*gpu.PositionColorStride)
	off := 0
	for _, v := range m.Vertices {
		off += gpu.PutFloat32s(vdata[off:],
			v.Position.X, v.Position.Y, v.Position.Z,
			v.Color.X, v.Color.Y, v.Color.Z, v.Color.W)
	}

	idata = make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(idata[i*4:], idx)
	}
	return vdata, idata
}
