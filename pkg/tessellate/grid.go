package tessellate

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/taigrr/ortho/pkg/math3d"
	"github.com/taigrr/ortho/pkg/viewport"
	"github.com/taigrr/ortho/pkg/world"
)

// Screen-space spacing limits for grid lines, in pixels.
const (
	MaxGridPixels = 12
	MinGridPixels = 4
)

// MajorEvery is the number of steps between major grid lines.
const MajorEvery = 10

const (
	maxSnaps     = 64
	maxGridSteps = 1 << 16
	// past this many steps from the origin float32 positions collapse
	maxGridOrigin = 1 << 24
)

// Grid builds the background grid for the current view. Lines are walked
// outward from the world origin in four runs (-X, +X, -Y, +Y) and only
// those within the grid extent are emitted. The line through the origin is
// step 0 and belongs to the positive runs only. Step n of a run is major
// when n is a positive multiple of MajorEvery, so the major lines fall at
// every MajorEvery*spacing world units and the origin line stays minor. A
// grid too dense to show yields an empty mesh.
func Grid(t viewport.Transform, s world.Settings) (*Mesh, error) {
	if !s.ShowGrid {
		return &Mesh{}, nil
	}
	spacing := s.GridSpacing
	if !(spacing > 0) || math32.IsInf(spacing, 0) {
		return nil, fmt.Errorf("%w: grid spacing %v", ErrDegenerate, spacing)
	}
	if sc := t.Scale(); !(sc > 0) || math32.IsInf(sc, 0) {
		return nil, fmt.Errorf("%w: scale %v", ErrDegenerate, sc)
	}

	px := func(sp float32) float32 {
		return t.WorldToScreenSize(math3d.V2(sp, 0)).X
	}
	if s.DynamicGrid {
		for i := 0; i < maxSnaps && px(spacing) > MaxGridPixels; i++ {
			spacing /= 10
		}
		for i := 0; i < maxSnaps && px(spacing) < MinGridPixels; i++ {
			spacing *= 10
		}
	}
	if !(px(spacing) >= MinGridPixels) {
		return &Mesh{}, nil
	}

	minor := s.MinorGridColor.WithAlpha(1)
	major := s.MajorGridColor.WithAlpha(1)
	color := func(isMajor bool) math3d.Vec4 {
		if isMajor {
			return major
		}
		return minor
	}

	c, ext := t.Center(), t.Extent()
	var b builder

	vertical := func(x float32, isMajor bool) {
		b.segment(
			math3d.V3(x, c.Y+ext.Y, GridLayer),
			math3d.V3(x, c.Y-ext.Y, GridLayer),
			color(isMajor))
	}
	horizontal := func(y float32, isMajor bool) {
		b.segment(
			math3d.V3(c.X+ext.X, y, GridLayer),
			math3d.V3(c.X-ext.X, y, GridLayer),
			color(isMajor))
	}

	for _, r := range []struct {
		dir    float32
		lo, hi float32
		emit   func(float32, bool)
	}{
		{-1, c.X - ext.X, c.X + ext.X, vertical},
		{+1, c.X - ext.X, c.X + ext.X, vertical},
		{-1, c.Y - ext.Y, c.Y + ext.Y, horizontal},
		{+1, c.Y - ext.Y, c.Y + ext.Y, horizontal},
	} {
		b.begin()
		walk(r.dir, r.lo, r.hi, spacing, r.emit)
		b.end()
	}
	return b.mesh(), nil
}

// walk calls emit for every step whose position dir*n*spacing lies
// strictly inside (lo, hi). Positive runs start at n = 0, negative runs at
// n = 1.
func walk(dir, lo, hi, spacing float32, emit func(pos float32, major bool)) {
	var n0, first float32
	if dir > 0 {
		n0 = math32.Floor(lo / spacing)
	} else {
		n0 = math32.Floor(-hi / spacing)
		first = 1
	}
	if n0 < first {
		n0 = first
	}
	if n0 > maxGridOrigin {
		return
	}
	for n := int64(n0); n < int64(n0)+maxGridSteps; n++ {
		pos := dir * float32(n) * spacing
		if (dir > 0 && pos >= hi) || (dir < 0 && pos <= lo) {
			return
		}
		if pos <= lo || pos >= hi {
			continue
		}
		emit(pos, n > 0 && n%MajorEvery == 0)
	}
}

// Axes builds the two axis lines through the world origin, spanning the
// grid extent.
func Axes(t viewport.Transform, s world.Settings) (*Mesh, error) {
	if !s.ShowAxes {
		return &Mesh{}, nil
	}
	c, ext := t.Center(), t.Extent()
	col := s.AxisColor.WithAlpha(1)

	var b builder
	b.begin()
	b.segment(math3d.V3(0, c.Y+ext.Y, AxesLayer), math3d.V3(0, c.Y-ext.Y, AxesLayer), col)
	b.end()
	b.begin()
	b.segment(math3d.V3(c.X+ext.X, 0, AxesLayer), math3d.V3(c.X-ext.X, 0, AxesLayer), col)
	b.end()
	return b.mesh(), nil
}
