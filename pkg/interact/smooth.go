package interact

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const settleEpsilon = 1e-3

// WheelSmoother spreads wheel deltas over several frames with a critically
// damped spring. Feed raw deltas to Add and apply Step once per frame.
type WheelSmoother struct {
	spring harmonica.Spring
	target float64
	pos    float64
	vel    float64
}

// NewWheelSmoother creates a smoother for a frame loop running at fps.
func NewWheelSmoother(fps int) *WheelSmoother {
	return &WheelSmoother{
		// Frequency 8.0 = quick, damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
	}
}

// Add queues a raw wheel delta.
func (s *WheelSmoother) Add(delta float32) {
	s.target += float64(delta)
}

// Pending reports whether queued delta remains to be applied.
func (s *WheelSmoother) Pending() bool {
	return s.target != s.pos || s.vel != 0
}

// Step advances one frame and returns the share of the queued delta to
// apply now. The shares sum to the queued total.
func (s *WheelSmoother) Step() float32 {
	if !s.Pending() {
		return 0
	}
	prev := s.pos
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, s.target)
	if math.Abs(s.target-s.pos) < settleEpsilon && math.Abs(s.vel) < settleEpsilon {
		d := s.target - prev
		s.target, s.pos, s.vel = 0, 0, 0
		return float32(d)
	}
	return float32(s.pos - prev)
}
