// Package soft is a CPU implementation of the gpu device contract. It
// rasterizes line and triangle lists with a depth buffer into an in-memory
// framebuffer and keeps allocation statistics so resource lifecycles can be
// checked.
package soft

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/taigrr/ortho/pkg/gpu"
)

// Stats counts device activity since creation.
type Stats struct {
	BuffersCreated   int
	BuffersDestroyed int
	DoubleFrees      int
	StaleUses        int
	Submits          int
	DrawCalls        int
	Presents         int
}

// LiveBuffers returns buffers created and not yet destroyed.
func (s Stats) LiveBuffers() int {
	return s.BuffersCreated - s.BuffersDestroyed
}

// Device is a software gpu.Device.
type Device struct {
	fb      *Framebuffer
	present func(*Framebuffer)
	stats   Stats
}

// Option configures a Device.
type Option func(*Device)

// WithPresent sets the callback SwapBuffers hands the finished frame to.
func WithPresent(fn func(*Framebuffer)) Option {
	return func(d *Device) { d.present = fn }
}

// New creates a device whose swapchain is width x height pixels.
func New(width, height int, opts ...Option) *Device {
	d := &Device{fb: NewFramebuffer(width, height)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BackendName describes the device.
func (d *Device) BackendName() string { return "software" }

// Stats returns a snapshot of the device counters.
func (d *Device) Stats() Stats { return d.stats }

// Framebuffer returns the swapchain target.
func (d *Device) Framebuffer() *Framebuffer { return d.fb }

// SwapchainFramebuffer returns the swapchain target.
func (d *Device) SwapchainFramebuffer() gpu.Framebuffer { return d.fb }

// Resize reallocates the swapchain.
func (d *Device) Resize(width, height int) {
	d.fb.Resize(width, height)
}

// SwapBuffers presents the current frame.
func (d *Device) SwapBuffers() error {
	d.stats.Presents++
	if d.present != nil {
		d.present(d.fb)
	}
	return nil
}

type buffer struct {
	dev       *Device
	data      []byte
	usage     gputypes.BufferUsage
	label     string
	destroyed bool
}

func (b *buffer) Size() uint64                { return uint64(len(b.data)) }
func (b *buffer) Usage() gputypes.BufferUsage { return b.usage }

func (b *buffer) Destroy() {
	if b.destroyed {
		b.dev.stats.DoubleFrees++
		return
	}
	b.destroyed = true
	b.data = nil
	b.dev.stats.BuffersDestroyed++
}

// CreateBuffer allocates a zeroed buffer.
func (d *Device) CreateBuffer(desc gputypes.BufferDescriptor) (gpu.Buffer, error) {
	if desc.Usage == gputypes.BufferUsageNone || desc.Usage.ContainsUnknownBits() {
		return nil, fmt.Errorf("create buffer %q: %w: %#x", desc.Label, gpu.ErrUsage, uint64(desc.Usage))
	}
	d.stats.BuffersCreated++
	return &buffer{dev: d, data: make([]byte, desc.Size), usage: desc.Usage, label: desc.Label}, nil
}

// UpdateBuffer writes data at offset immediately.
func (d *Device) UpdateBuffer(b gpu.Buffer, offset uint64, data []byte) error {
	buf, err := d.buffer(b)
	if err != nil {
		return fmt.Errorf("update buffer: %w", err)
	}
	if offset+uint64(len(data)) > uint64(len(buf.data)) {
		return fmt.Errorf("update buffer %q: %w: %d+%d > %d", buf.label, gpu.ErrOutOfRange, offset, len(data), len(buf.data))
	}
	copy(buf.data[offset:], data)
	return nil
}

// buffer resolves b to a live buffer of this device.
func (d *Device) buffer(b gpu.Buffer) (*buffer, error) {
	buf, ok := b.(*buffer)
	if !ok || buf.dev != d {
		return nil, gpu.ErrForeign
	}
	if buf.destroyed {
		d.stats.StaleUses++
		return nil, fmt.Errorf("buffer %q: %w", buf.label, gpu.ErrDestroyed)
	}
	return buf, nil
}

type pipeline struct {
	desc      gpu.PipelineDescriptor
	state     rasterState
	destroyed bool
}

func (p *pipeline) Topology() gputypes.PrimitiveTopology { return p.desc.Primitive.Topology }
func (p *pipeline) Destroy()                             { p.destroyed = true }

// CreatePipeline validates the vertex layout and captures the fixed state.
func (d *Device) CreatePipeline(desc gpu.PipelineDescriptor) (gpu.Pipeline, error) {
	if desc.Vertex.ArrayStride == 0 {
		return nil, fmt.Errorf("create pipeline %q: zero vertex stride", desc.Label)
	}
	for _, a := range desc.Vertex.Attributes {
		if a.Offset+a.Format.Size() > desc.Vertex.ArrayStride {
			return nil, fmt.Errorf("create pipeline %q: attribute %d overruns stride", desc.Label, a.ShaderLocation)
		}
	}
	return &pipeline{
		desc: desc,
		state: rasterState{
			compare:    desc.DepthStencil.DepthCompare,
			depthWrite: desc.DepthStencil.DepthWriteEnabled,
			blend:      desc.Blend,
			cull:       desc.Primitive.CullMode,
			frontFace:  desc.Primitive.FrontFace,
		},
	}, nil
}

type resourceSet struct {
	uniforms  []gpu.Buffer
	destroyed bool
}

func (r *resourceSet) Destroy() { r.destroyed = true }

// CreateResourceSet groups uniform buffers.
func (d *Device) CreateResourceSet(desc gpu.ResourceSetDescriptor) (gpu.ResourceSet, error) {
	for i, u := range desc.Uniforms {
		buf, err := d.buffer(u)
		if err != nil {
			return nil, fmt.Errorf("create resource set %q: binding %d: %w", desc.Label, i, err)
		}
		if !buf.usage.Contains(gputypes.BufferUsageUniform) {
			return nil, fmt.Errorf("create resource set %q: binding %d: %w", desc.Label, i, gpu.ErrUsage)
		}
	}
	return &resourceSet{uniforms: desc.Uniforms}, nil
}

// CreateCommandList creates an empty command list.
func (d *Device) CreateCommandList() (gpu.CommandList, error) {
	return &commandList{dev: d}, nil
}

// SubmitCommands executes a finished command list in order and stops at
// the first failing command.
func (d *Device) SubmitCommands(cl gpu.CommandList) error {
	c, ok := cl.(*commandList)
	if !ok || c.dev != d {
		return fmt.Errorf("submit: %w", gpu.ErrForeign)
	}
	if c.destroyed {
		return fmt.Errorf("submit: %w", gpu.ErrDestroyed)
	}
	if c.recording || c.err != nil {
		return fmt.Errorf("submit: %w", gpu.ErrNotRecording)
	}
	d.stats.Submits++
	st := &execState{dev: d}
	for i, cmd := range c.cmds {
		if err := cmd(st); err != nil {
			return fmt.Errorf("submit: command %d: %w", i, err)
		}
	}
	return nil
}
