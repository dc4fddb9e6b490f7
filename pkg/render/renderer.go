// Package render owns the GPU resources of the viewport and records the
// per-frame command sequence: uniforms, clear, then grid, axes, lines and
// polygons in that order.
package render

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/gogpu/gputypes"
	"github.com/taigrr/ortho/pkg/gpu"
	"github.com/taigrr/ortho/pkg/logging"
	"github.com/taigrr/ortho/pkg/math3d"
	"github.com/taigrr/ortho/pkg/tessellate"
	"golang.org/x/image/colornames"
)

// ErrSetup wraps any device failure during Init.
var ErrSetup = errors.New("render: device setup failed")

// Stats describes the last drawn frame.
type Stats struct {
	Frames       uint64
	DrawCalls    int
	IndicesDrawn int
	// Culled counts drawables skipped because they lie outside the view.
	Culled int
}

// Renderer draws the four viewport drawables through a gpu.Device.
//
// A Renderer starts uninitialized; Draw does nothing until Init succeeds.
// It is not safe for concurrent use.
type Renderer struct {
	dev   gpu.Device
	ready bool

	viewBuf, modelBuf gpu.Buffer
	viewSet, modelSet gpu.ResourceSet
	gridPipe          gpu.Pipeline
	linePipe          gpu.Pipeline
	fillPipe          gpu.Pipeline
	cl                gpu.CommandList

	slots [numKinds]slot

	model math3d.Mat4
	spin  float32
	clear gputypes.Color

	stats Stats
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClearColor sets the color each frame is cleared to. The default is
// pink so an empty frame is easy to tell apart from a broken one.
func WithClearColor(c color.Color) Option {
	return func(r *Renderer) { r.clear = toGPUColor(c) }
}

// WithSpin sets the angle in radians the model matrix is rotated by each
// frame.
func WithSpin(radians float32) Option {
	return func(r *Renderer) { r.spin = radians }
}

// New creates an uninitialized renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		model: math3d.Identity(),
		clear: toGPUColor(colornames.Pink),
	}
	for i := range r.slots {
		r.slots[i].kind = Kind(i)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ready reports whether Init has completed.
func (r *Renderer) Ready() bool { return r.ready }

// Description names the backend, or "" before Init.
func (r *Renderer) Description() string {
	if r.dev == nil {
		return ""
	}
	return r.dev.BackendName()
}

// Stats returns counters for the last drawn frame.
func (r *Renderer) Stats() Stats { return r.stats }

// SetClearColor changes the clear color from the next frame on.
func (r *Renderer) SetClearColor(c color.Color) { r.clear = toGPUColor(c) }

// Init creates the uniforms, pipelines and command list on dev. Any
// failure releases what was created and is returned wrapped in ErrSetup.
func (r *Renderer) Init(dev gpu.Device) error {
	if r.ready {
		r.Close()
	}
	r.dev = dev
	if err := r.createResources(); err != nil {
		r.Close()
		r.dev = nil
		return fmt.Errorf("%w: %w", ErrSetup, err)
	}
	r.ready = true
	logging.Logger().Info("renderer ready", "backend", dev.BackendName())
	return nil
}

func (r *Renderer) createResources() error {
	var err error
	uniform := func(label string) (gpu.Buffer, gpu.ResourceSet, error) {
		b, err := r.dev.CreateBuffer(gputypes.BufferDescriptor{
			Label: label,
			Size:  gpu.MatrixSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create %s buffer: %w", label, err)
		}
		rs, err := r.dev.CreateResourceSet(gpu.ResourceSetDescriptor{
			Label:    label,
			Uniforms: []gpu.Buffer{b},
		})
		if err != nil {
			b.Destroy()
			return nil, nil, fmt.Errorf("create %s set: %w", label, err)
		}
		return b, rs, nil
	}
	if r.viewBuf, r.viewSet, err = uniform("view"); err != nil {
		return err
	}
	if r.modelBuf, r.modelSet, err = uniform("model"); err != nil {
		return err
	}

	if r.gridPipe, err = r.pipeline("grid", gputypes.PrimitiveTopologyLineList); err != nil {
		return err
	}
	if r.linePipe, err = r.pipeline("lines", gputypes.PrimitiveTopologyLineList); err != nil {
		return err
	}
	if r.fillPipe, err = r.pipeline("fill", gputypes.PrimitiveTopologyTriangleList); err != nil {
		return err
	}

	if r.cl, err = r.dev.CreateCommandList(); err != nil {
		return fmt.Errorf("create command list: %w", err)
	}
	return nil
}

func (r *Renderer) pipeline(label string, topo gputypes.PrimitiveTopology) (gpu.Pipeline, error) {
	p, err := r.dev.CreatePipeline(gpu.PipelineDescriptor{
		Label:  label,
		Vertex: gpu.PositionColorLayout,
		Primitive: gputypes.PrimitiveState{
			Topology:  topo,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		DepthStencil: gputypes.DepthStencilState{
			Format:            gputypes.TextureFormatDepth32Float,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLessEqual,
		},
		Blend:         gputypes.BlendStateAlpha(),
		ResourceSlots: 2,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", label, err)
	}
	return p, nil
}

// Stage queues m to replace the kind's geometry at the next Upload. A nil
// or empty mesh clears the drawable.
func (r *Renderer) Stage(kind Kind, m *tessellate.Mesh) {
	if kind < 0 || kind >= numKinds {
		return
	}
	r.slots[kind].stage(m)
}

// Upload swaps every staged mesh into GPU buffers. Slots that fail are
// left empty; the first error is returned after all slots are tried.
func (r *Renderer) Upload() error {
	if !r.ready {
		return nil
	}
	var first error
	for i := range r.slots {
		if err := r.slots[i].swap(r.dev); err != nil && first == nil {
			first = fmt.Errorf("upload %s: %w", r.slots[i].kind, err)
		}
	}
	return first
}

// Draw records and submits one frame using view as the projection, then
// presents it. It is a no-op before Init.
func (r *Renderer) Draw(view math3d.Mat4) error {
	if !r.ready {
		return nil
	}
	cl := r.cl
	cl.Begin()

	r.model = r.model.Mul(math3d.RotateZ(r.spin))
	cl.UpdateBuffer(r.modelBuf, 0, matrixBytes(r.model))
	cl.UpdateBuffer(r.viewBuf, 0, matrixBytes(view))

	cl.SetFramebuffer(r.dev.SwapchainFramebuffer())
	cl.ClearColorTarget(0, r.clear)
	cl.ClearDepthStencil(1)

	frustum := NewFrustum(view.Mul(r.model))
	var frame Stats
	for i := range r.slots {
		s := &r.slots[i]
		if s.vb == nil || s.ib == nil {
			continue
		}
		if !frustum.IntersectAABB(s.bounds) {
			frame.Culled++
			continue
		}
		cl.SetVertexBuffer(0, s.vb)
		cl.SetIndexBuffer(s.ib, gputypes.IndexFormatUint32)
		if s.lines > 0 {
			r.bind(cl, r.linePipeFor(s.kind))
			cl.DrawIndexed(s.lines, 1, 0, 0, 0)
			frame.DrawCalls++
			frame.IndicesDrawn += int(s.lines)
		}
		if s.tris > 0 {
			r.bind(cl, r.fillPipe)
			cl.DrawIndexed(s.tris, 1, s.lines, 0, 0)
			frame.DrawCalls++
			frame.IndicesDrawn += int(s.tris)
		}
	}
	cl.End()

	if err := r.dev.SubmitCommands(cl); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	if err := r.dev.SwapBuffers(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	frame.Frames = r.stats.Frames + 1
	r.stats = frame
	return nil
}

func (r *Renderer) bind(cl gpu.CommandList, p gpu.Pipeline) {
	cl.SetPipeline(p)
	cl.SetResourceSet(0, r.viewSet)
	cl.SetResourceSet(1, r.modelSet)
}

func (r *Renderer) linePipeFor(k Kind) gpu.Pipeline {
	if k == Grid || k == Axes {
		return r.gridPipe
	}
	return r.linePipe
}

// Close releases every GPU resource. The renderer returns to the
// uninitialized state and may be initialized again.
func (r *Renderer) Close() {
	for i := range r.slots {
		r.slots[i].release()
		r.slots[i].pending, r.slots[i].staged = nil, false
	}
	for _, res := range []gpu.Resource{
		r.cl, r.fillPipe, r.linePipe, r.gridPipe,
		r.modelSet, r.viewSet, r.modelBuf, r.viewBuf,
	} {
		if res != nil {
			res.Destroy()
		}
	}
	r.cl, r.fillPipe, r.linePipe, r.gridPipe = nil, nil, nil, nil
	r.modelSet, r.viewSet, r.modelBuf, r.viewBuf = nil, nil, nil, nil
	r.model = math3d.Identity()
	r.ready = false
}

func matrixBytes(m math3d.Mat4) []byte {
	b := make([]byte, gpu.MatrixSize)
	gpu.PutFloat32s(b, m[:]...)
	return b
}

func toGPUColor(c color.Color) gputypes.Color {
	r, g, b, a := c.RGBA()
	return gputypes.Color{
		R: float64(r) / 0xffff,
		G: float64(g) / 0xffff,
		B: float64(b) / 0xffff,
		A: float64(a) / 0xffff,
	}
}
