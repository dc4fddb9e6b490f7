package tessellate

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/taigrr/ortho/pkg/math3d"
	"github.com/taigrr/ortho/pkg/world"
)

func pts(xy ...float32) []math3d.Vec2 {
	out := make([]math3d.Vec2, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, math3d.V2(xy[i], xy[i+1]))
	}
	return out
}

func TestLinesVertexCount(t *testing.T) {
	lines := []world.Line{
		{Points: pts(0, 0, 1, 1)},
		{Points: pts(0, 0, 1, 1, 2, 0)},
		{Points: pts(0, 0, 1, 1, 2, 0, 3, 3), Alpha: 0.5},
	}
	m, err := Lines(lines)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 12 {
		t.Errorf("got %d vertices, want 12", len(m.Vertices))
	}
	wantRuns := []Run{{0, 2}, {2, 4}, {6, 6}}
	for i, r := range m.Runs {
		if r != wantRuns[i] {
			t.Errorf("run %d = %v, want %v", i, r, wantRuns[i])
		}
		for _, v := range m.Vertices[r.First : r.First+r.Count] {
			if v.Position.Z != Layer(i, 3) {
				t.Errorf("line %d vertex at layer %v, want %v", i, v.Position.Z, Layer(i, 3))
			}
		}
	}
	if m.Vertices[6].Color.W != 0.5 {
		t.Errorf("alpha not carried: %v", m.Vertices[6].Color)
	}
	if m.LineIndices != 12 || m.TriangleIndices != 0 {
		t.Errorf("split = %d/%d, want 12/0", m.LineIndices, m.TriangleIndices)
	}
}

func TestLinesSegmentPairs(t *testing.T) {
	m, err := Lines([]world.Line{{Points: pts(0, 0, 1, 0, 1, 1)}})
	if err != nil {
		t.Fatal(err)
	}
	want := pts(0, 0, 1, 0, 1, 0, 1, 1)
	for i, v := range m.Vertices {
		if v.Position.XY() != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, v.Position.XY(), want[i])
		}
	}
}

func TestLinesEmptyAndMalformed(t *testing.T) {
	m, err := Lines(nil)
	if err != nil || !m.Empty() {
		t.Errorf("empty list: got %v, %v", m, err)
	}

	m, err = Lines([]world.Line{{Points: pts(0, 0, 1, 1)}, {Points: pts(5, 5)}})
	if !errors.Is(err, ErrMalformedShape) || !errors.Is(err, world.ErrTooFewPoints) {
		t.Errorf("got %v, want ErrMalformedShape wrapping ErrTooFewPoints", err)
	}
	if m != nil {
		t.Errorf("malformed input returned a mesh")
	}

	_, err = Lines([]world.Line{{Points: []math3d.Vec2{{X: 0, Y: 0}, {X: math32.Inf(-1), Y: 1}}}})
	if !errors.Is(err, ErrMalformedShape) {
		t.Errorf("non-finite point: got %v", err)
	}
}

func TestPolygons(t *testing.T) {
	square := world.Polygon{Points: pts(0, 0, 4, 0, 4, 4, 0, 4, 0, 0), Filled: true, Alpha: 1}
	tri := world.Polygon{Points: pts(10, 10, 12, 10, 11, 12, 10, 10), Alpha: 1}

	tests := []struct {
		name      string
		configure func(*world.Settings)
		wantVerts int
		wantLines uint32
		wantTris  uint32
	}{
		{"filled first three", func(*world.Settings) {}, 3 + 6, 6, 3},
		{"fill disabled", func(s *world.Settings) { s.FilledPolygons = false }, 8 + 6, 14, 0},
		{"triangulated", func(s *world.Settings) { s.Triangulate = true }, 4 + 6, 6, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := world.DefaultSettings()
			tt.configure(&s)
			m, err := Polygons([]world.Polygon{square, tri}, s)
			if err != nil {
				t.Fatal(err)
			}
			if len(m.Vertices) != tt.wantVerts {
				t.Errorf("vertices = %d, want %d", len(m.Vertices), tt.wantVerts)
			}
			if m.LineIndices != tt.wantLines || m.TriangleIndices != tt.wantTris {
				t.Errorf("split = %d/%d, want %d/%d", m.LineIndices, m.TriangleIndices, tt.wantLines, tt.wantTris)
			}
			if int(m.LineIndices+m.TriangleIndices) != len(m.Indices) {
				t.Errorf("split does not cover %d indices", len(m.Indices))
			}
			for _, idx := range m.Indices {
				if int(idx) >= len(m.Vertices) {
					t.Fatalf("index %d out of range", idx)
				}
			}
			if m.Runs[1].First != m.Runs[0].Count {
				t.Errorf("second run starts at %d, want %d", m.Runs[1].First, m.Runs[0].Count)
			}
			for _, v := range m.Vertices[m.Runs[1].First:] {
				if v.Position.Z != Layer(1, 2) {
					t.Fatalf("second polygon at layer %v, want %v", v.Position.Z, Layer(1, 2))
				}
			}
		})
	}
}

func TestPolygonsFilledUsesFirstThreePoints(t *testing.T) {
	p := world.Polygon{Points: pts(0, 0, 4, 0, 4, 4, 0, 4), Filled: true}
	m, err := Polygons([]world.Polygon{p}, world.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	want := pts(0, 0, 4, 0, 4, 4)
	for i, v := range m.Vertices {
		if v.Position.XY() != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, v.Position.XY(), want[i])
		}
	}
}

func TestPolygonsMalformed(t *testing.T) {
	_, err := Polygons([]world.Polygon{{Points: pts(0, 0, 1, 1)}}, world.DefaultSettings())
	if !errors.Is(err, ErrMalformedShape) {
		t.Errorf("got %v, want ErrMalformedShape", err)
	}
}

func TestLayer(t *testing.T) {
	if Layer(0, 0) != ShapeLayer || Layer(0, 4) != ShapeLayer {
		t.Error("first shape should sit on ShapeLayer")
	}
	if got, want := Layer(3, 4), ShapeLayer+(1-ShapeLayer)*0.75; got != want {
		t.Errorf("Layer(3, 4) = %v, want %v", got, want)
	}
}

func TestLayersStackAboveGridAndAxes(t *testing.T) {
	if !(GridLayer < AxesLayer) {
		t.Fatalf("grid layer %v not below axes layer %v", GridLayer, AxesLayer)
	}
	for _, n := range []int{1, 2, 3, 10, 1000} {
		prev := AxesLayer
		for i := range n {
			z := Layer(i, n)
			if !(z > prev) {
				t.Fatalf("Layer(%d, %d) = %v, not above %v", i, n, z, prev)
			}
			if !(z < 1) {
				t.Fatalf("Layer(%d, %d) = %v, outside the depth range", i, n, z)
			}
			prev = z
		}
	}
}
