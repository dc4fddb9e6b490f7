package soft

import (
	"fmt"
	"image/color"

	"github.com/gogpu/gputypes"
	"github.com/taigrr/ortho/pkg/gpu"
	"github.com/taigrr/ortho/pkg/math3d"
)

type command func(*execState) error

type commandList struct {
	dev       *Device
	cmds      []command
	recording bool
	destroyed bool
	err       error
}

func (c *commandList) Destroy() {
	c.destroyed = true
	c.cmds = nil
}

func (c *commandList) add(cmd command) {
	if !c.recording {
		c.err = gpu.ErrNotRecording
		return
	}
	c.cmds = append(c.cmds, cmd)
}

func (c *commandList) Begin() {
	c.cmds = c.cmds[:0]
	c.err = nil
	c.recording = true
}

func (c *commandList) End() {
	c.recording = false
}

func (c *commandList) UpdateBuffer(b gpu.Buffer, offset uint64, data []byte) {
	payload := append([]byte(nil), data...)
	c.add(func(st *execState) error {
		return st.dev.UpdateBuffer(b, offset, payload)
	})
}

func (c *commandList) SetFramebuffer(fb gpu.Framebuffer) {
	c.add(func(st *execState) error {
		f, ok := fb.(*Framebuffer)
		if !ok {
			return fmt.Errorf("set framebuffer: %w", gpu.ErrForeign)
		}
		st.fb = f
		return nil
	})
}

func (c *commandList) ClearColorTarget(_ uint32, col gputypes.Color) {
	c.add(func(st *execState) error {
		if st.fb == nil {
			return fmt.Errorf("clear color: no framebuffer set")
		}
		st.fb.Clear(toRGBA(math3d.V4(float32(col.R), float32(col.G), float32(col.B), float32(col.A))))
		return nil
	})
}

func (c *commandList) ClearDepthStencil(depth float32) {
	c.add(func(st *execState) error {
		if st.fb == nil {
			return fmt.Errorf("clear depth: no framebuffer set")
		}
		st.fb.ClearDepth(depth)
		return nil
	})
}

func (c *commandList) SetPipeline(p gpu.Pipeline) {
	c.add(func(st *execState) error {
		pl, ok := p.(*pipeline)
		if !ok {
			return fmt.Errorf("set pipeline: %w", gpu.ErrForeign)
		}
		if pl.destroyed {
			return fmt.Errorf("set pipeline %q: %w", pl.desc.Label, gpu.ErrDestroyed)
		}
		st.pipe = pl
		return nil
	})
}

func (c *commandList) SetVertexBuffer(_ uint32, b gpu.Buffer) {
	c.add(func(st *execState) error {
		buf, err := st.dev.buffer(b)
		if err != nil {
			return fmt.Errorf("set vertex buffer: %w", err)
		}
		if !buf.usage.Contains(gputypes.BufferUsageVertex) {
			return fmt.Errorf("set vertex buffer %q: %w", buf.label, gpu.ErrUsage)
		}
		st.vb = buf
		return nil
	})
}

func (c *commandList) SetIndexBuffer(b gpu.Buffer, format gputypes.IndexFormat) {
	c.add(func(st *execState) error {
		buf, err := st.dev.buffer(b)
		if err != nil {
			return fmt.Errorf("set index buffer: %w", err)
		}
		if !buf.usage.Contains(gputypes.BufferUsageIndex) {
			return fmt.Errorf("set index buffer %q: %w", buf.label, gpu.ErrUsage)
		}
		if format.Size() == 0 {
			return fmt.Errorf("set index buffer %q: index format %v", buf.label, format)
		}
		st.ib, st.format = buf, format
		return nil
	})
}

func (c *commandList) SetResourceSet(slot uint32, rs gpu.ResourceSet) {
	c.add(func(st *execState) error {
		set, ok := rs.(*resourceSet)
		if !ok {
			return fmt.Errorf("set resource set %d: %w", slot, gpu.ErrForeign)
		}
		if set.destroyed {
			return fmt.Errorf("set resource set %d: %w", slot, gpu.ErrDestroyed)
		}
		if slot >= uint32(len(st.sets)) {
			return fmt.Errorf("set resource set %d: %w", slot, gpu.ErrOutOfRange)
		}
		st.sets[slot] = set
		return nil
	})
}

func (c *commandList) DrawIndexed(indexCount, instanceCount, indexStart uint32, vertexOffset int32, _ uint32) {
	c.add(func(st *execState) error {
		if instanceCount == 0 || indexCount == 0 {
			return nil
		}
		return st.draw(indexCount, indexStart, vertexOffset)
	})
}

const maxResourceSets = 4

// execState is the bound state while a command list runs.
type execState struct {
	dev    *Device
	fb     *Framebuffer
	pipe   *pipeline
	vb, ib *buffer
	format gputypes.IndexFormat
	sets   [maxResourceSets]*resourceSet
}

// transform multiplies the first uniform matrix of every bound resource
// set in slot order, so slot 0 holds the view and slot 1 the model.
func (st *execState) transform() (math3d.Mat4, error) {
	m := math3d.Identity()
	for slot, set := range st.sets[:min(st.pipe.desc.ResourceSlots, maxResourceSets)] {
		if set == nil || len(set.uniforms) == 0 {
			return m, fmt.Errorf("draw: resource set %d not bound", slot)
		}
		buf, err := st.dev.buffer(set.uniforms[0])
		if err != nil {
			return m, fmt.Errorf("draw: resource set %d: %w", slot, err)
		}
		if len(buf.data) < gpu.MatrixSize {
			return m, fmt.Errorf("draw: resource set %d: %w", slot, gpu.ErrOutOfRange)
		}
		var u math3d.Mat4
		for i := range u {
			u[i] = gpu.Float32At(buf.data, i*4)
		}
		m = m.Mul(u)
	}
	return m, nil
}

func (st *execState) draw(indexCount, indexStart uint32, vertexOffset int32) error {
	if st.fb == nil || st.pipe == nil || st.vb == nil || st.ib == nil {
		return fmt.Errorf("draw: incomplete state")
	}
	// buffers may have been destroyed since they were bound
	for _, b := range []*buffer{st.vb, st.ib} {
		if _, err := st.dev.buffer(b); err != nil {
			return fmt.Errorf("draw: %w", err)
		}
	}
	end := uint64(indexStart) + uint64(indexCount)
	if end*uint64(st.format.Size()) > uint64(len(st.ib.data)) {
		return fmt.Errorf("draw: %w: indices %d..%d", gpu.ErrOutOfRange, indexStart, end)
	}
	m, err := st.transform()
	if err != nil {
		return err
	}
	st.dev.stats.DrawCalls++

	layout := st.pipe.desc.Vertex
	nverts := uint64(len(st.vb.data)) / layout.ArrayStride
	fetch := func(i uint32) (screenVertex, error) {
		idx := int64(gpu.IndexAt(st.ib.data, st.format, i)) + int64(vertexOffset)
		if idx < 0 || uint64(idx) >= nverts {
			return screenVertex{}, fmt.Errorf("draw: %w: vertex %d of %d", gpu.ErrOutOfRange, idx, nverts)
		}
		pos, col := decodeVertex(st.vb.data[uint64(idx)*layout.ArrayStride:], layout)
		ndc := m.MulVec4(math3d.V4FromV3(pos, 1)).PerspectiveDivide()
		return screenVertex{
			X:     (ndc.X + 1) * 0.5 * float32(st.fb.w),
			Y:     (1 - ndc.Y) * 0.5 * float32(st.fb.h),
			Z:     ndc.Z,
			Color: col,
		}, nil
	}

	rs := &st.pipe.state
	switch topo := st.pipe.desc.Primitive.Topology; topo {
	case gputypes.PrimitiveTopologyLineList, gputypes.PrimitiveTopologyLineStrip:
		step := uint32(2)
		if topo == gputypes.PrimitiveTopologyLineStrip {
			step = 1
		}
		for i := indexStart; i+1 < uint32(end); i += step {
			a, err := fetch(i)
			if err != nil {
				return err
			}
			b, err := fetch(i + 1)
			if err != nil {
				return err
			}
			st.fb.drawLine(a, b, rs)
		}
	case gputypes.PrimitiveTopologyTriangleList, gputypes.PrimitiveTopologyTriangleStrip:
		step := uint32(3)
		if topo == gputypes.PrimitiveTopologyTriangleStrip {
			step = 1
		}
		for i := indexStart; i+2 < uint32(end); i += step {
			var tri [3]screenVertex
			for k := range tri {
				if tri[k], err = fetch(i + uint32(k)); err != nil {
					return err
				}
			}
			st.fb.drawTriangle(tri, rs)
		}
	case gputypes.PrimitiveTopologyPointList:
		for i := indexStart; i < uint32(end); i++ {
			v, err := fetch(i)
			if err != nil {
				return err
			}
			st.fb.shade(int(v.X), int(v.Y), v.Z, v.Color, rs)
		}
	default:
		return fmt.Errorf("draw: unsupported topology %v", topo)
	}
	return nil
}

// decodeVertex reads the position (location 0) and color (location 1)
// attributes. A missing color decodes as opaque white.
func decodeVertex(src []byte, layout gputypes.VertexBufferLayout) (math3d.Vec3, math3d.Vec4) {
	pos := math3d.Vec3{}
	col := math3d.V4(1, 1, 1, 1)
	for _, a := range layout.Attributes {
		f := func(k int) float32 { return gpu.Float32At(src, int(a.Offset)+k*4) }
		switch a.ShaderLocation {
		case 0:
			switch a.Format {
			case gputypes.VertexFormatFloat32x2:
				pos = math3d.V3(f(0), f(1), 0)
			case gputypes.VertexFormatFloat32x3, gputypes.VertexFormatFloat32x4:
				pos = math3d.V3(f(0), f(1), f(2))
			}
		case 1:
			switch a.Format {
			case gputypes.VertexFormatFloat32x3:
				col = math3d.V4(f(0), f(1), f(2), 1)
			case gputypes.VertexFormatFloat32x4:
				col = math3d.V4(f(0), f(1), f(2), f(3))
			case gputypes.VertexFormatUnorm8x4:
				c := color.RGBA{src[a.Offset], src[a.Offset+1], src[a.Offset+2], src[a.Offset+3]}
				col = toVec4(c)
			}
		}
	}
	return pos, col
}
