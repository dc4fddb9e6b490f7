// Package engine owns one interactive viewport: its camera, display
// settings, scene, input controller and renderer. The host feeds it
// resizes, input events, scene changes and timer ticks, all from a single
// goroutine.
package engine

import (
	"image/color"

	"github.com/taigrr/ortho/pkg/gpu"
	"github.com/taigrr/ortho/pkg/interact"
	"github.com/taigrr/ortho/pkg/logging"
	"github.com/taigrr/ortho/pkg/math3d"
	"github.com/taigrr/ortho/pkg/render"
	"github.com/taigrr/ortho/pkg/tessellate"
	"github.com/taigrr/ortho/pkg/viewport"
	"github.com/taigrr/ortho/pkg/world"
)

// dirty marks drawables whose geometry must be rebuilt.
type dirty uint8

const (
	dirtyCamera dirty = 1 << iota
	dirtyWorld

	dirtyAll = dirtyCamera | dirtyWorld
)

// Engine is a viewport. It is not safe for concurrent use.
type Engine struct {
	cam      viewport.Camera
	size     viewport.Size
	settings world.Settings
	scene    world.Scene

	ctrl     *interact.Controller
	renderer *render.Renderer

	dirty dirty
}

// Option configures an Engine.
type Option func(*Engine)

// WithBaseZoom sets the world units per pixel at zoom 1.
func WithBaseZoom(base float32) Option {
	return func(e *Engine) {
		def := e.cam.Default
		e.cam = viewport.NewCamera(base)
		e.cam.Default = def
		e.cam.Position = def
	}
}

// WithDefaultPosition sets where the camera starts and where reset returns.
func WithDefaultPosition(p math3d.Vec2) Option {
	return func(e *Engine) {
		e.cam.Default = p
		e.cam.Position = p
	}
}

// WithSettings sets the initial display settings.
func WithSettings(s world.Settings) Option {
	return func(e *Engine) { e.settings = s }
}

// WithScene sets the initial scene.
func WithScene(s world.Scene) Option {
	return func(e *Engine) { e.scene = s }
}

// WithKeymap replaces the default key bindings.
func WithKeymap(km interact.Keymap) Option {
	return func(e *Engine) { e.ctrl.Keymap = km }
}

// WithZoomStep sets the zoom step in percent.
func WithZoomStep(step float32) Option {
	return func(e *Engine) { e.ctrl.ZoomStep = step }
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// New creates an engine. It draws nothing until Init.
func New(opts ...Option) *Engine {
	e := &Engine{
		cam:      viewport.NewCamera(1),
		settings: world.DefaultSettings(),
		renderer: render.New(),
		dirty:    dirtyAll,
	}
	e.ctrl = interact.NewController(&e.cam)
	for _, opt := range opts {
		opt(e)
	}
	e.ctrl.Extents = func() (world.Bounds, bool) { return e.scene.Extents() }
	return e
}

// Init creates GPU resources on dev and draws the first frame. Errors are
// fatal and wrap render.ErrSetup.
func (e *Engine) Init(dev gpu.Device) error {
	if err := e.renderer.Init(dev); err != nil {
		return err
	}
	if fb := dev.SwapchainFramebuffer(); fb != nil && e.size == (viewport.Size{}) {
		e.setSize(fb.Width(), fb.Height())
	}
	e.dirty = dirtyAll
	e.update()
	return nil
}

// Ready reports whether Init has completed.
func (e *Engine) Ready() bool { return e.renderer.Ready() }

// Description names the GPU backend.
func (e *Engine) Description() string { return e.renderer.Description() }

// CameraPosition returns the world point at the centre of the view.
func (e *Engine) CameraPosition() math3d.Vec2 { return e.cam.Position }

// ZoomFactor returns the camera zoom factor.
func (e *Engine) ZoomFactor() float32 { return e.cam.Zoom }

// Locked reports whether the viewport ignores navigation input.
func (e *Engine) Locked() bool { return e.cam.Locked }

// Settings returns the display settings.
func (e *Engine) Settings() world.Settings { return e.settings }

// Scene returns the displayed scene.
func (e *Engine) Scene() world.Scene { return e.scene }

// Size returns the viewport size in pixels.
func (e *Engine) Size() viewport.Size { return e.size }

// Transform returns the current world/screen mapping.
func (e *Engine) Transform() viewport.Transform {
	return viewport.NewTransform(e.cam, e.size)
}

// Stats returns counters for the last drawn frame.
func (e *Engine) Stats() render.Stats { return e.renderer.Stats() }

// Resize sets the viewport size and redraws.
func (e *Engine) Resize(width, height uint32) {
	if e.size.Width == width && e.size.Height == height {
		return
	}
	e.setSize(width, height)
	e.dirty |= dirtyCamera
	e.update()
}

func (e *Engine) setSize(width, height uint32) {
	e.size = viewport.Size{Width: width, Height: height}
	e.ctrl.Size = e.size
}

// HandleEvent applies one input event, redrawing at once when the camera
// moved. The returned flags tell the host about requests such as the
// context menu.
func (e *Engine) HandleEvent(ev interact.Event) interact.Flags {
	f := e.ctrl.Dispatch(ev)
	if f.Has(interact.FlagCamera) {
		e.dirty |= dirtyCamera
		e.update()
	}
	return f
}

// Do performs a navigation action directly, as a context menu entry would.
func (e *Engine) Do(action interact.Action) interact.Flags {
	f := e.ctrl.Do(action)
	if f.Has(interact.FlagCamera) {
		e.dirty |= dirtyCamera
		e.update()
	}
	return f
}

// SetScene replaces the shape lists and redraws.
func (e *Engine) SetScene(s world.Scene) {
	e.scene = s
	e.dirty |= dirtyWorld
	e.update()
}

// SetSettings replaces the display settings and rebuilds every drawable.
func (e *Engine) SetSettings(s world.Settings) {
	e.settings = s
	e.dirty = dirtyAll
	e.update()
}

// SetBackground changes the clear color and redraws.
func (e *Engine) SetBackground(c color.Color) {
	e.renderer.SetClearColor(c)
	e.draw()
}

// SetKeymap replaces the key bindings.
func (e *Engine) SetKeymap(km interact.Keymap) { e.ctrl.Keymap = km }

// SetZoomStep sets the zoom step in percent.
func (e *Engine) SetZoomStep(step float32) { e.ctrl.ZoomStep = step }

// Tick draws one frame. Called by the host's frame timer.
func (e *Engine) Tick() {
	if e.dirty != 0 {
		e.rebuild()
	}
	e.draw()
}

// Close releases GPU resources.
func (e *Engine) Close() {
	e.renderer.Close()
}

func (e *Engine) update() {
	e.rebuild()
	e.draw()
}

// rebuild retessellates the stale drawables. A drawable that fails to
// tessellate keeps its previous geometry.
func (e *Engine) rebuild() {
	if !e.renderer.Ready() {
		return
	}
	log := logging.Logger()
	t := e.Transform()

	stage := func(kind render.Kind, m *tessellate.Mesh, err error) {
		if err != nil {
			log.Warn("keeping previous geometry", "drawable", kind.String(), "error", err)
			return
		}
		e.renderer.Stage(kind, m)
	}
	if e.dirty&dirtyCamera != 0 {
		m, err := tessellate.Grid(t, e.settings)
		stage(render.Grid, m, err)
		m, err = tessellate.Axes(t, e.settings)
		stage(render.Axes, m, err)
	}
	if e.dirty&dirtyWorld != 0 {
		m, err := tessellate.Lines(e.scene.Lines)
		stage(render.Lines, m, err)
		m, err = tessellate.Polygons(e.scene.Polygons, e.settings)
		stage(render.Polygons, m, err)
	}
	e.dirty = 0

	if err := e.renderer.Upload(); err != nil {
		log.Warn("upload failed", "error", err)
	}
}

func (e *Engine) draw() {
	if !e.renderer.Ready() || e.size.Width == 0 || e.size.Height == 0 {
		return
	}
	if err := e.renderer.Draw(e.Transform().ViewMatrix()); err != nil {
		logging.Logger().Warn("frame dropped", "error", err)
	}
}
