package tessellate

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/taigrr/ortho/pkg/math3d"
	"github.com/taigrr/ortho/pkg/viewport"
	"github.com/taigrr/ortho/pkg/world"
)

func view(pos math3d.Vec2, zoom float32, w, h uint32) viewport.Transform {
	c := viewport.NewCamera(1)
	c.Position = pos
	c.SetZoom(zoom)
	return viewport.NewTransform(c, viewport.Size{Width: w, Height: h})
}

func fixedGrid(spacing float32) world.Settings {
	s := world.DefaultSettings()
	s.DynamicGrid = false
	s.GridSpacing = spacing
	return s
}

func isMajor(s world.Settings, v Vertex) bool {
	return v.Color == s.MajorGridColor.WithAlpha(1)
}

func TestGridCadence(t *testing.T) {
	s := fixedGrid(10)
	m, err := Grid(view(math3d.V2(0, 0), 1, 300, 300), s)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Runs) != 4 {
		t.Fatalf("got %d runs, want 4", len(m.Runs))
	}
	// -X, +X, -Y, +Y: the origin line belongs to the positive runs
	wantCount := []uint32{58, 60, 58, 60}
	for r, run := range m.Runs {
		if run.Count != wantCount[r] {
			t.Errorf("run %d: %d vertices, want %d", r, run.Count, wantCount[r])
		}
		for k := uint32(0); k < run.Count; k += 2 {
			v := m.Vertices[run.First+k]
			pos := v.Position.X
			if r >= 2 {
				pos = v.Position.Y
			}
			n := int(math32.Abs(pos)/10 + 0.5)
			want := n > 0 && n%10 == 0
			if got := isMajor(s, v); got != want {
				t.Errorf("run %d step %d: major = %v, want %v", r, n, got, want)
			}
		}
	}
}

func TestGridOriginLineOnce(t *testing.T) {
	m, err := Grid(view(math3d.V2(0, 0), 1, 100, 100), fixedGrid(10))
	if err != nil {
		t.Fatal(err)
	}
	var vertical, horizontal int
	for k := 0; k < len(m.Vertices); k += 2 {
		a, b := m.Vertices[k].Position, m.Vertices[k+1].Position
		if a.X == 0 && b.X == 0 {
			vertical++
		}
		if a.Y == 0 && b.Y == 0 {
			horizontal++
		}
	}
	if vertical != 1 || horizontal != 1 {
		t.Errorf("origin lines: %d vertical, %d horizontal; want 1 each", vertical, horizontal)
	}
}

func TestGridCadenceAnchoredAtOrigin(t *testing.T) {
	s := fixedGrid(10)
	m, err := Grid(view(math3d.V2(1000, -730), 1, 100, 100), s)
	if err != nil {
		t.Fatal(err)
	}
	if m.Empty() {
		t.Fatal("grid is empty")
	}
	majors := 0
	for _, run := range m.Runs[:2] {
		for k := uint32(0); k < run.Count; k += 2 {
			v := m.Vertices[run.First+k]
			onHundred := math32.Mod(v.Position.X, 100) == 0
			if isMajor(s, v) != onHundred {
				t.Errorf("x=%v major=%v", v.Position.X, isMajor(s, v))
			}
			if isMajor(s, v) {
				majors++
			}
			if v.Position.X <= 900 || v.Position.X >= 1100 {
				t.Errorf("x=%v outside grid extent", v.Position.X)
			}
		}
	}
	if majors != 1 {
		t.Errorf("got %d major vertical lines, want 1", majors)
	}
}

func TestGridGeometry(t *testing.T) {
	s := fixedGrid(10)
	m, err := Grid(view(math3d.V2(5, 5), 1, 40, 20), s)
	if err != nil {
		t.Fatal(err)
	}
	for i, idx := range m.Indices {
		if idx != uint32(i) {
			t.Fatalf("index %d = %d, want sequential", i, idx)
		}
	}
	if m.LineIndices != uint32(len(m.Indices)) || m.TriangleIndices != 0 {
		t.Errorf("line/triangle split = %d/%d", m.LineIndices, m.TriangleIndices)
	}
	// vertical lines span camera y +- viewport height * scale
	v0, v1 := m.Vertices[0], m.Vertices[1]
	if v0.Position.Y != 25 || v1.Position.Y != -15 {
		t.Errorf("vertical span %v..%v, want 25..-15", v0.Position.Y, v1.Position.Y)
	}
	for _, v := range m.Vertices {
		if v.Position.Z != GridLayer {
			t.Fatalf("grid vertex at layer %v", v.Position.Z)
		}
	}
}

func TestGridTooDense(t *testing.T) {
	m, err := Grid(view(math3d.V2(0, 0), 1, 100, 100), fixedGrid(1))
	if err != nil {
		t.Fatal(err)
	}
	if !m.Empty() {
		t.Errorf("got %d indices, want empty grid", len(m.Indices))
	}
}

func TestGridDynamicSpacing(t *testing.T) {
	for _, zoom := range []float32{0.001, 0.01, 1, 3.7, 250} {
		s := world.DefaultSettings()
		s.GridSpacing = 10
		tr := view(math3d.V2(0, 0), zoom, 200, 200)
		m, err := Grid(tr, s)
		if err != nil {
			t.Fatal(err)
		}
		// the +X run starts at the origin: compare its first two lines
		run := m.Runs[1]
		if run.Count < 4 {
			t.Fatalf("zoom %v: +X run has %d vertices", zoom, run.Count)
		}
		d := m.Vertices[run.First+2].Position.X - m.Vertices[run.First].Position.X
		px := tr.WorldToScreenSize(math3d.V2(d, 0)).X
		// snapping up from below the floor can overshoot the ceiling by one decade
		if px < MinGridPixels*0.99 || px > MaxGridPixels*10 {
			t.Errorf("zoom %v: spacing %v px outside [%d, %d]", zoom, px, MinGridPixels, MaxGridPixels*10)
		}
	}
}

func TestGridHidden(t *testing.T) {
	s := world.DefaultSettings()
	s.ShowGrid = false
	m, err := Grid(view(math3d.V2(0, 0), 1, 100, 100), s)
	if err != nil || !m.Empty() {
		t.Errorf("got %v, %v; want empty mesh", m, err)
	}
}

func TestGridDegenerate(t *testing.T) {
	for _, sp := range []float32{0, -1, math32.NaN(), math32.Inf(1)} {
		_, err := Grid(view(math3d.V2(0, 0), 1, 100, 100), fixedGrid(sp))
		if !errors.Is(err, ErrDegenerate) {
			t.Errorf("spacing %v: got %v, want ErrDegenerate", sp, err)
		}
	}
}

func TestGridZeroViewport(t *testing.T) {
	m, err := Grid(view(math3d.V2(0, 0), 1, 0, 0), fixedGrid(10))
	if err != nil {
		t.Fatal(err)
	}
	if !m.Empty() {
		t.Errorf("zero viewport produced %d indices", len(m.Indices))
	}
}

func TestAxes(t *testing.T) {
	s := world.DefaultSettings()
	m, err := Axes(view(math3d.V2(2, 3), 1, 10, 20), s)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 4 || len(m.Indices) != 4 {
		t.Fatalf("got %d vertices %d indices, want 4/4", len(m.Vertices), len(m.Indices))
	}
	want := []math3d.Vec3{
		{X: 0, Y: 23, Z: AxesLayer}, {X: 0, Y: -17, Z: AxesLayer},
		{X: 12, Y: 0, Z: AxesLayer}, {X: -8, Y: 0, Z: AxesLayer},
	}
	for i, v := range m.Vertices {
		if v.Position != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, v.Position, want[i])
		}
		if v.Color != s.AxisColor.WithAlpha(1) {
			t.Errorf("vertex %d color %v", i, v.Color)
		}
	}

	s.ShowAxes = false
	m, err = Axes(view(math3d.V2(2, 3), 1, 10, 20), s)
	if err != nil || !m.Empty() {
		t.Errorf("hidden axes: got %v, %v", m, err)
	}
}

func BenchmarkGrid(b *testing.B) {
	s := world.DefaultSettings()
	tr := view(math3d.V2(123, -45), 0.37, 1920, 1080)
	for b.Loop() {
		_, _ = Grid(tr, s)
	}
}
