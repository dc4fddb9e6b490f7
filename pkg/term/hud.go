package term

import (
	"fmt"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/ortho/pkg/math3d"
	"golang.org/x/image/colornames"
)

var (
	hudStyle   = uv.Style{Fg: colornames.White, Bg: colornames.Black}
	fpsStyle   = uv.Style{Fg: colornames.Lime, Bg: colornames.Black}
	countStyle = uv.Style{Fg: colornames.Cyan, Bg: colornames.Black}
	lockStyle  = uv.Style{Fg: colornames.Yellow, Bg: colornames.Black}
)

// Status is the viewport state shown on the HUD.
type Status struct {
	Backend  string
	Position math3d.Vec2
	Zoom     float32
	Locked   bool
}

// HUD is an overlay with the scene name, frame rate and camera state.
type HUD struct {
	Visible bool

	name      string
	shapes    int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	now       func() time.Time
}

// NewHUD creates a hidden HUD.
func NewHUD(name string, shapes int) *HUD {
	h := &HUD{name: name, shapes: shapes, now: time.Now}
	h.fpsTime = h.now()
	return h
}

// SetScene updates the scene name and shape count.
func (h *HUD) SetScene(name string, shapes int) {
	h.name = name
	h.shapes = shapes
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := h.now().Sub(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = h.now()
	}
}

// FPS returns the last measured frame rate.
func (h *HUD) FPS() float64 { return h.fps }

// Draw paints the HUD rows over area. The lock indicator is shown even
// when the HUD is hidden.
func (h *HUD) Draw(scr Canvas, area uv.Rectangle, st Status) {
	top, bottom := area.Min.Y, area.Max.Y-1
	if bottom < top {
		return
	}
	width := area.Max.X - area.Min.X

	if st.Locked {
		msg := " LOCKED - press f to unlock "
		col := max(area.Min.X+(width-len(msg))/2, area.Min.X)
		Text(scr, col, bottom, area.Max.X, msg, lockStyle)
	}
	if !h.Visible {
		return
	}

	// Top left: FPS
	Text(scr, area.Min.X, top, area.Max.X, fmt.Sprintf(" %.0f FPS ", h.fps), fpsStyle)

	// Top middle: scene name
	title := " " + h.name + " "
	Text(scr, max(area.Min.X+(width-len(title))/2, area.Min.X), top, area.Max.X, title, hudStyle)

	// Top right: shape count
	count := fmt.Sprintf(" %d shapes ", h.shapes)
	Text(scr, max(area.Max.X-len(count), area.Min.X), top, area.Max.X, count, countStyle)

	if !st.Locked {
		pos := fmt.Sprintf(" x %.2f  y %.2f  zoom %.3g ", st.Position.X, st.Position.Y, st.Zoom)
		Text(scr, area.Min.X, bottom, area.Max.X, pos, hudStyle)
		backend := " " + st.Backend + " "
		Text(scr, max(area.Max.X-len(backend), area.Min.X), bottom, area.Max.X, backend, countStyle)
	}
}
