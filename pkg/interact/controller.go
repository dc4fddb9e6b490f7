package interact

import (
	"github.com/taigrr/ortho/pkg/logging"
	"github.com/taigrr/ortho/pkg/math3d"
	"github.com/taigrr/ortho/pkg/viewport"
	"github.com/taigrr/ortho/pkg/world"
)

const (
	// DefaultZoomStep is the zoom step in percent per wheel notch or key
	// press.
	DefaultZoomStep = 10
	// DragDivisor scales pixel drag distance down to world units.
	DragDivisor = 100
	// PanStep is the key pan distance in units of the zoom factor.
	PanStep = 10
)

// Controller is the input state machine of one viewport. It mutates the
// camera it was created with and never touches the GPU.
type Controller struct {
	cam *viewport.Camera

	// ZoomStep is the zoom change in percent per unit of wheel delta.
	ZoomStep float32
	Keymap   Keymap
	// Size is the current viewport size, used by fit.
	Size viewport.Size
	// Extents supplies the world bounds for fit. Nil or not ok resets.
	Extents func() (world.Bounds, bool)

	dragging bool
	origin   math3d.Vec2
}

// NewController creates a controller for cam with the default keymap.
func NewController(cam *viewport.Camera) *Controller {
	return &Controller{
		cam:      cam,
		ZoomStep: DefaultZoomStep,
		Keymap:   DefaultKeymap(),
	}
}

// Camera returns the controlled camera.
func (c *Controller) Camera() *viewport.Camera { return c.cam }

// Dragging reports whether a primary-button drag is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// Dispatch applies one event and reports what changed.
func (c *Controller) Dispatch(ev Event) Flags {
	switch ev.Kind {
	case PointerDown:
		return c.pointerDown(ev)
	case PointerMove:
		return c.pointerMove(ev)
	case PointerUp:
		return c.pointerUp(ev)
	case Wheel:
		if c.cam.Locked || ev.Delta == 0 {
			return 0
		}
		c.zoom(ev.Delta)
		return FlagCamera
	case KeyPress:
		return c.key(ev.Key)
	}
	return 0
}

func (c *Controller) pointerDown(ev Event) Flags {
	if ev.Button != ButtonPrimary || c.dragging || c.cam.Locked {
		return 0
	}
	c.dragging = true
	c.origin = math3d.V2(ev.X, ev.Y)
	return 0
}

// pointerMove pans by the distance from the press point, not from the
// previous move, so a held drag keeps accelerating the camera. A move
// without the primary button held ends the drag, covering hosts that lose
// the release.
func (c *Controller) pointerMove(ev Event) Flags {
	if !c.dragging || c.cam.Locked {
		return 0
	}
	if ev.Button != ButtonPrimary {
		c.dragging = false
		return 0
	}
	d := math3d.V2(ev.X, ev.Y).Sub(c.origin)
	if d.X == 0 && d.Y == 0 {
		return 0
	}
	c.cam.Pan(math3d.V2(-d.X/DragDivisor, d.Y/DragDivisor))
	return FlagCamera
}

func (c *Controller) pointerUp(ev Event) Flags {
	switch ev.Button {
	case ButtonPrimary, ButtonNone:
		c.dragging = false
	case ButtonSecondary:
		return FlagContextMenu
	}
	return 0
}

func (c *Controller) zoom(delta float32) {
	c.cam.AddZoom(c.ZoomStep * 0.01 * delta)
}

func (c *Controller) key(key string) Flags {
	return c.Do(c.Keymap.Lookup(key))
}

// Do performs action as if its key had been pressed. While locked only
// ActionLock has an effect.
func (c *Controller) Do(action Action) Flags {
	if action == ActionNone {
		return 0
	}
	if c.cam.Locked && action != ActionLock {
		return 0
	}

	step := PanStep * c.cam.Zoom
	switch action {
	case ActionLock:
		locked := c.cam.ToggleLock()
		if locked {
			c.dragging = false
		}
		logging.Logger().Debug("viewport lock toggled", "locked", locked)
	case ActionReset:
		c.cam.Reset()
	case ActionPanLeft:
		c.cam.Pan(math3d.V2(-step, 0))
	case ActionPanRight:
		c.cam.Pan(math3d.V2(step, 0))
	case ActionPanUp:
		c.cam.Pan(math3d.V2(0, step))
	case ActionPanDown:
		c.cam.Pan(math3d.V2(0, -step))
	case ActionZoomOut:
		c.zoom(1)
	case ActionZoomIn:
		c.zoom(-1)
	case ActionFit:
		c.fit()
	case ActionSaveLocation:
		c.cam.SaveLocation()
		return 0
	case ActionLoadLocation:
		if !c.cam.LoadLocation() {
			return 0
		}
	}
	return FlagCamera
}

func (c *Controller) fit() {
	if c.Extents == nil {
		c.cam.Reset()
		return
	}
	b, ok := c.Extents()
	if !ok {
		c.cam.Reset()
		return
	}
	c.cam.Fit(b.Min, b.Max, c.Size)
}
