package tessellate

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/taigrr/ortho/pkg/math3d"
)

func trianglesArea(ring []math3d.Vec2, idx []uint32) float32 {
	var sum float32
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := ring[idx[i]], ring[idx[i+1]], ring[idx[i+2]]
		sum += math32.Abs(b.Sub(a).Cross(c.Sub(a))) / 2
	}
	return sum
}

func TestTriangulate(t *testing.T) {
	tests := []struct {
		name     string
		ring     []math3d.Vec2
		wantTris int
		wantArea float32
	}{
		{"triangle", pts(0, 0, 1, 0, 0, 1), 1, 0.5},
		{"square ccw", pts(0, 0, 2, 0, 2, 2, 0, 2), 2, 4},
		{"square cw", pts(0, 0, 0, 2, 2, 2, 2, 0), 2, 4},
		{"concave L", pts(0, 0, 2, 0, 2, 1, 1, 1, 1, 2, 0, 2), 4, 3},
		{"collinear midpoint", pts(0, 0, 1, 0, 2, 0, 2, 2, 0, 2), 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := Triangulate(tt.ring)
			if err != nil {
				t.Fatal(err)
			}
			if got := len(idx) / 3; got > tt.wantTris {
				t.Errorf("got %d triangles, want at most %d", got, tt.wantTris)
			}
			if got := trianglesArea(tt.ring, idx); math32.Abs(got-tt.wantArea) > 1e-5 {
				t.Errorf("area = %v, want %v", got, tt.wantArea)
			}
		})
	}
}

func TestTriangulateDegenerate(t *testing.T) {
	if _, err := Triangulate(pts(0, 0, 1, 1, 2, 2)); !errors.Is(err, ErrDegenerate) {
		t.Errorf("collinear ring: got %v", err)
	}
	if _, err := Triangulate(pts(0, 0, 1, 1)); !errors.Is(err, ErrMalformedShape) {
		t.Errorf("two points: got %v", err)
	}
}

func BenchmarkTriangulate(b *testing.B) {
	ring := make([]math3d.Vec2, 64)
	for i := range ring {
		a := float32(i) / float32(len(ring)) * 2 * math32.Pi
		r := float32(10)
		if i%2 == 1 {
			r = 5
		}
		ring[i] = math3d.V2(r*math32.Cos(a), r*math32.Sin(a))
	}
	for b.Loop() {
		_, _ = Triangulate(ring)
	}
}
