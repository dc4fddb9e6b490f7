// Package gpu is the device contract the frame renderer draws through.
// Enumerations come from gputypes so a WebGPU-style backend can implement
// it directly; pkg/gpu/soft is the CPU reference implementation.
package gpu

import (
	"errors"

	"github.com/gogpu/gputypes"
)

var (
	// ErrDestroyed is returned when a destroyed resource is used.
	ErrDestroyed = errors.New("gpu: resource destroyed")
	// ErrOutOfRange is returned for writes or draws past a buffer's end.
	ErrOutOfRange = errors.New("gpu: out of range")
	// ErrUsage is returned when a buffer is bound for a usage it lacks.
	ErrUsage = errors.New("gpu: invalid buffer usage")
	// ErrNotRecording is returned when a command list is submitted while
	// still open or recorded into before Begin.
	ErrNotRecording = errors.New("gpu: command list not recording")
	// ErrForeign is returned for resources created by another device.
	ErrForeign = errors.New("gpu: resource from another device")
)

// Resource is anything a device allocates.
type Resource interface {
	Destroy()
}

// Buffer is a block of device memory.
type Buffer interface {
	Resource
	Size() uint64
	Usage() gputypes.BufferUsage
}

// Pipeline is fixed pipeline state: vertex layout, topology, depth and
// blending.
type Pipeline interface {
	Resource
	Topology() gputypes.PrimitiveTopology
}

// ResourceSet binds uniform buffers to a pipeline slot.
type ResourceSet interface {
	Resource
}

// Framebuffer is a color plus depth render target.
type Framebuffer interface {
	Width() uint32
	Height() uint32
}

// PipelineDescriptor describes a pipeline to create.
type PipelineDescriptor struct {
	Label        string
	Vertex       gputypes.VertexBufferLayout
	Primitive    gputypes.PrimitiveState
	DepthStencil gputypes.DepthStencilState
	Blend        gputypes.BlendState
	// ResourceSlots is the number of resource sets the pipeline reads.
	ResourceSlots int
}

// ResourceSetDescriptor lists the uniform buffers of a resource set in
// binding order.
type ResourceSetDescriptor struct {
	Label    string
	Uniforms []Buffer
}

// CommandList records commands between Begin and End. Nothing executes
// until the list is submitted; errors surface from SubmitCommands.
type CommandList interface {
	Resource
	Begin()
	UpdateBuffer(b Buffer, offset uint64, data []byte)
	SetFramebuffer(fb Framebuffer)
	ClearColorTarget(index uint32, c gputypes.Color)
	ClearDepthStencil(depth float32)
	SetPipeline(p Pipeline)
	SetVertexBuffer(slot uint32, b Buffer)
	SetIndexBuffer(b Buffer, format gputypes.IndexFormat)
	SetResourceSet(slot uint32, rs ResourceSet)
	DrawIndexed(indexCount, instanceCount, indexStart uint32, vertexOffset int32, instanceStart uint32)
	End()
}

// Device creates resources and runs command lists against its swapchain.
type Device interface {
	BackendName() string
	CreateBuffer(desc gputypes.BufferDescriptor) (Buffer, error)
	CreatePipeline(desc PipelineDescriptor) (Pipeline, error)
	CreateResourceSet(desc ResourceSetDescriptor) (ResourceSet, error)
	CreateCommandList() (CommandList, error)
	UpdateBuffer(b Buffer, offset uint64, data []byte) error
	SwapchainFramebuffer() Framebuffer
	SubmitCommands(cl CommandList) error
	SwapBuffers() error
}
