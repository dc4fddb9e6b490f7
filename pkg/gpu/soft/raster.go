package soft

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/taigrr/ortho/pkg/math3d"
)

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y  float32 // Screen coordinates, origin top-left
	Z     float32 // Depth in [0, 1]
	Color math3d.Vec4
}

func (v screenVertex) finite() bool {
	return math3d.V2(v.X, v.Y).IsFinite() && !math32.IsNaN(v.Z) && !math32.IsInf(v.Z, 0)
}

func lerpVertex(a, b screenVertex, t float32) screenVertex {
	return screenVertex{
		X:     a.X + (b.X-a.X)*t,
		Y:     a.Y + (b.Y-a.Y)*t,
		Z:     a.Z + (b.Z-a.Z)*t,
		Color: a.Color.Lerp(b.Color, t),
	}
}

// rasterState is the per-pipeline state the fragment stage needs.
type rasterState struct {
	compare    gputypes.CompareFunction
	depthWrite bool
	blend      gputypes.BlendState
	cull       gputypes.CullMode
	frontFace  gputypes.FrontFace
}

// shade runs the depth test and blends one fragment into the target.
func (fb *Framebuffer) shade(x, y int, z float32, c math3d.Vec4, st *rasterState) {
	if x < 0 || x >= fb.w || y < 0 || y >= fb.h || z < 0 || z > 1 {
		return
	}
	idx := y*fb.w + x
	if !depthPasses(st.compare, z, fb.depth[idx]) {
		return
	}
	if st.depthWrite {
		fb.depth[idx] = z
	}
	fb.Pixels[idx] = blend(st.blend, c, fb.Pixels[idx])
}

// clipSegment clips a to b against the framebuffer and the depth range
// using Liang-Barsky. It works in float64 because zoomed-in segments can
// have endpoints far outside the target.
func (fb *Framebuffer) clipSegment(a, b screenVertex) (screenVertex, screenVertex, bool) {
	ax, ay, az := float64(a.X), float64(a.Y), float64(a.Z)
	dx, dy, dz := float64(b.X)-ax, float64(b.Y)-ay, float64(b.Z)-az
	w, h := float64(fb.w), float64(fb.h)

	t0, t1 := 0.0, 1.0
	for _, e := range [...]struct{ p, q float64 }{
		{-dx, ax}, {dx, w - ax},
		{-dy, ay}, {dy, h - ay},
		{-dz, az}, {dz, 1 - az},
	} {
		if e.p == 0 {
			if e.q < 0 {
				return a, b, false
			}
			continue
		}
		r := e.q / e.p
		if e.p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = min(t1, r)
		}
	}
	at := func(t float64) screenVertex {
		return screenVertex{
			X:     float32(ax + dx*t),
			Y:     float32(ay + dy*t),
			Z:     float32(az + dz*t),
			Color: a.Color.Lerp(b.Color, float32(t)),
		}
	}
	return at(t0), at(t1), true
}

// drawLine draws a segment using Bresenham's algorithm, interpolating depth
// and color along it.
func (fb *Framebuffer) drawLine(a, b screenVertex, st *rasterState) {
	if !a.finite() || !b.finite() {
		return
	}
	a, b, ok := fb.clipSegment(a, b)
	if !ok {
		return
	}
	x0, y0 := int(math32.Floor(a.X)), int(math32.Floor(a.Y))
	x1, y1 := int(math32.Floor(b.X)), int(math32.Floor(b.Y))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	steps := max(dx, -dy)
	err := dx + dy

	for i := 0; ; i++ {
		t := float32(0)
		if steps > 0 {
			t = float32(i) / float32(steps)
		}
		v := lerpVertex(a, b, t)
		fb.shade(x0, y0, v.Z, v.Color, st)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// edgeCoeffs returns A, B, C for edge(x, y) = A*x + B*y + C.
func edgeCoeffs(x0, y0, x1, y1 float32) (A, B, C float32) {
	A = y0 - y1
	B = x1 - x0
	C = x0*y1 - x1*y0
	return
}

// drawTriangle rasterizes with incrementally stepped edge functions.
func (fb *Framebuffer) drawTriangle(sv [3]screenVertex, st *rasterState) {
	for _, v := range sv {
		if !v.finite() {
			return
		}
	}

	// screen y points down, so a positive screen area is clockwise in NDC
	area2 := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if area2 == 0 {
		return
	}
	front := (area2 > 0) == (st.frontFace == gputypes.FrontFaceCW)
	if (st.cull == gputypes.CullModeBack && !front) || (st.cull == gputypes.CullModeFront && front) {
		return
	}

	minX := int(math32.Max(0, math32.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math32.Min(float32(fb.w-1), math32.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math32.Max(0, math32.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math32.Min(float32(fb.h-1), math32.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	invArea := 1 / area2
	// interpolation must not leave the vertex depth range
	zLo, zHi := min(sv[0].Z, sv[1].Z, sv[2].Z), max(sv[0].Z, sv[1].Z, sv[2].Z)

	px := float32(minX) + 0.5
	py := float32(minY) + 0.5
	w0Row := A0*px + B0*py + C0
	w1Row := A1*px + B1*py + C1
	w2Row := A2*px + B2*py + C2

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		for x := minX; x <= maxX; x++ {
			bc0, bc1, bc2 := w0*invArea, w1*invArea, w2*invArea
			if bc0 >= 0 && bc1 >= 0 && bc2 >= 0 {
				z := min(max(bc0*sv[0].Z+bc1*sv[1].Z+bc2*sv[2].Z, zLo), zHi)
				c := math3d.V4(
					bc0*sv[0].Color.X+bc1*sv[1].Color.X+bc2*sv[2].Color.X,
					bc0*sv[0].Color.Y+bc1*sv[1].Color.Y+bc2*sv[2].Color.Y,
					bc0*sv[0].Color.Z+bc1*sv[1].Color.Z+bc2*sv[2].Color.Z,
					bc0*sv[0].Color.W+bc1*sv[1].Color.W+bc2*sv[2].Color.W,
				)
				fb.shade(x, y, z, c, st)
			}
			w0 += A0
			w1 += A1
			w2 += A2
		}
		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
