package tessellate

import (
	"fmt"

	"github.com/taigrr/ortho/pkg/math3d"
)

// Triangulate ear-clips a simple polygon given as an open ring and returns
// triangle indices into ring, three per triangle. Collinear points are
// skipped, so there are at most n-2 triangles. Zero-area and
// self-intersecting rings fail with ErrDegenerate.
func Triangulate(ring []math3d.Vec2) ([]uint32, error) {
	n := len(ring)
	if n < 3 {
		return nil, fmt.Errorf("%w: %d points", ErrMalformedShape, n)
	}

	area := signedArea(ring)
	if area == 0 {
		return nil, fmt.Errorf("%w: zero area", ErrDegenerate)
	}
	orient := float32(1)
	if area < 0 {
		orient = -1
	}

	remaining := make([]uint32, n)
	for i := range remaining {
		remaining[i] = uint32(i)
	}
	out := make([]uint32, 0, 3*(n-2))

	for len(remaining) > 3 {
		clipped := false
		for i := range remaining {
			m := len(remaining)
			ia, ib, ic := remaining[(i+m-1)%m], remaining[i], remaining[(i+1)%m]
			if !isEar(ring, remaining, ia, ib, ic, orient) {
				continue
			}
			out = append(out, ia, ib, ic)
			remaining = append(remaining[:i], remaining[i+1:]...)
			clipped = true
			break
		}
		if !clipped && !dropCollinear(ring, &remaining) {
			return nil, fmt.Errorf("%w: no ear in %d remaining points", ErrDegenerate, len(remaining))
		}
	}
	if signedArea([]math3d.Vec2{ring[remaining[0]], ring[remaining[1]], ring[remaining[2]]}) == 0 {
		return out, nil
	}
	return append(out, remaining...), nil
}

func dropCollinear(ring []math3d.Vec2, remaining *[]uint32) bool {
	r := *remaining
	m := len(r)
	for i := range r {
		a, b, c := ring[r[(i+m-1)%m]], ring[r[i]], ring[r[(i+1)%m]]
		if b.Sub(a).Cross(c.Sub(b)) == 0 {
			*remaining = append(r[:i], r[i+1:]...)
			return true
		}
	}
	return false
}

func isEar(ring []math3d.Vec2, remaining []uint32, ia, ib, ic uint32, orient float32) bool {
	a, b, c := ring[ia], ring[ib], ring[ic]
	if b.Sub(a).Cross(c.Sub(b))*orient <= 0 {
		return false
	}
	for _, j := range remaining {
		if j == ia || j == ib || j == ic {
			continue
		}
		if inTriangle(ring[j], a, b, c, orient) {
			return false
		}
	}
	return true
}

func inTriangle(p, a, b, c math3d.Vec2, orient float32) bool {
	return b.Sub(a).Cross(p.Sub(a))*orient >= 0 &&
		c.Sub(b).Cross(p.Sub(b))*orient >= 0 &&
		a.Sub(c).Cross(p.Sub(c))*orient >= 0
}

func signedArea(ring []math3d.Vec2) float32 {
	var sum float32
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		sum += p.Cross(q)
	}
	return sum / 2
}
