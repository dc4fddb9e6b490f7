package models

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/ortho/pkg/math3d"
)

// buildDoc packs positions followed by uint16 indices into one buffer.
// A nil indices slice leaves the primitive unindexed.
func buildDoc(positions []math3d.Vec3, indices []uint16, mode gltf.PrimitiveMode) *gltf.Document {
	var data []byte
	for _, p := range positions {
		for _, f := range []float32{p.X, p.Y, p.Z} {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
		}
	}
	posLen := len(data)
	for _, ix := range indices {
		data = binary.LittleEndian.AppendUint16(data, ix)
	}

	doc := &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: posLen},
		},
		Accessors: []*gltf.Accessor{{
			BufferView:    gltf.Index(0),
			ComponentType: gltf.ComponentFloat,
			Type:          gltf.AccessorVec3,
			Count:         len(positions),
		}},
		Materials: []*gltf.Material{{
			Name: "blue",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{0, 0, 1, 0.25},
			},
		}},
	}
	prim := &gltf.Primitive{
		Attributes: map[string]int{gltf.POSITION: 0},
		Material:   gltf.Index(0),
		Mode:       mode,
	}
	if indices != nil {
		doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
			Buffer: 0, ByteOffset: posLen, ByteLength: len(data) - posLen,
		})
		doc.Accessors = append(doc.Accessors, &gltf.Accessor{
			BufferView:    gltf.Index(1),
			ComponentType: gltf.ComponentUshort,
			Type:          gltf.AccessorScalar,
			Count:         len(indices),
		})
		prim.Indices = gltf.Index(1)
	}
	doc.Meshes = []*gltf.Mesh{{Name: "mesh", Primitives: []*gltf.Primitive{prim}}}
	return doc
}

var quad = []math3d.Vec3{
	math3d.V3(0, 0, 0),
	math3d.V3(1, 0, 0),
	math3d.V3(1, 1, 0),
	math3d.V3(0, 1, 0),
}

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
	if _, err := LoadScene("/nonexistent/path.glb", PlaneXY); err == nil {
		t.Error("Expected error from LoadScene for nonexistent file")
	}
}

func TestFromDocumentIndexedTriangles(t *testing.T) {
	m, err := FromDocument(buildDoc(quad, []uint16{0, 1, 2, 0, 2, 3}, gltf.PrimitiveTriangles), "quad")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}

	if m.Name != "quad" || m.VertexCount() != 4 || m.TriangleCount() != 2 {
		t.Fatalf("got %s with %d vertices, %d triangles", m.Name, m.VertexCount(), m.TriangleCount())
	}
	if m.Faces[1].V != [3]int{0, 2, 3} {
		t.Errorf("face 1 = %v", m.Faces[1].V)
	}
	if m.Faces[0].Material != 0 {
		t.Errorf("face material = %d", m.Faces[0].Material)
	}
	if m.BoundsMax != math3d.V3(1, 1, 0) {
		t.Errorf("BoundsMax = %v", m.BoundsMax)
	}
	if got := m.Materials[0].BaseColor; got != [4]float64{0, 0, 1, 0.25} {
		t.Errorf("base color = %v", got)
	}
}

func TestFromDocumentTopologies(t *testing.T) {
	tests := []struct {
		name  string
		mode  gltf.PrimitiveMode
		faces int
		edges int
	}{
		{"triangles", gltf.PrimitiveTriangles, 1, 0},
		{"strip", gltf.PrimitiveTriangleStrip, 2, 0},
		{"fan", gltf.PrimitiveTriangleFan, 2, 0},
		{"lines", gltf.PrimitiveLines, 0, 2},
		{"line strip", gltf.PrimitiveLineStrip, 0, 3},
		{"line loop", gltf.PrimitiveLineLoop, 0, 4},
		{"points", gltf.PrimitivePoints, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := FromDocument(buildDoc(quad, nil, tt.mode), "quad")
			if err != nil {
				t.Fatalf("FromDocument: %v", err)
			}
			if len(m.Faces) != tt.faces || len(m.Edges) != tt.edges {
				t.Errorf("got %d faces, %d edges; want %d, %d", len(m.Faces), len(m.Edges), tt.faces, tt.edges)
			}
		})
	}
}

func TestFromDocumentLineLoopCloses(t *testing.T) {
	m, err := FromDocument(buildDoc(quad, nil, gltf.PrimitiveLineLoop), "loop")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if last := m.Edges[len(m.Edges)-1].V; last != [2]int{3, 0} {
		t.Errorf("closing edge = %v", last)
	}

	s := m.Scene(PlaneXY)
	if s.Lines[0].Color.B != 1 || s.Lines[0].Alpha != 0.25 {
		t.Errorf("line color = %v alpha %v", s.Lines[0].Color, s.Lines[0].Alpha)
	}
}

func TestFromDocumentMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*gltf.Document)
	}{
		{"index out of range", func(d *gltf.Document) {
			d.Buffers[0].Data[len(d.Buffers[0].Data)-2] = 9
		}},
		{"count overruns view", func(d *gltf.Document) {
			d.Accessors[0].Count = 40
		}},
		{"view overruns buffer", func(d *gltf.Document) {
			d.BufferViews[0].ByteOffset = 100
		}},
		{"no buffer view", func(d *gltf.Document) {
			d.Accessors[0].BufferView = nil
		}},
		{"dangling accessor", func(d *gltf.Document) {
			d.Meshes[0].Primitives[0].Indices = gltf.Index(7)
		}},
		{"wrong position type", func(d *gltf.Document) {
			d.Accessors[0].Type = gltf.AccessorVec2
		}},
		{"empty buffer", func(d *gltf.Document) {
			d.Buffers[0].Data = nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := buildDoc(quad, []uint16{0, 1, 2}, gltf.PrimitiveTriangles)
			tt.mutate(doc)
			_, err := FromDocument(doc, "bad")
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestFromDocumentSkipsPrimitiveWithoutPositions(t *testing.T) {
	doc := buildDoc(quad, nil, gltf.PrimitiveTriangles)
	doc.Meshes[0].Primitives[0].Attributes = map[string]int{}
	m, err := FromDocument(doc, "empty")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if m.VertexCount() != 0 || !m.Scene(PlaneXY).Empty() {
		t.Error("expected an empty model")
	}
}
