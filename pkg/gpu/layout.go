package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// PositionColorLayout is the vertex layout every viewport pipeline uses:
// a float32x3 position at location 0 followed by a float32x4 RGBA color at
// location 1.
var PositionColorLayout = gputypes.VertexBufferLayout{
	ArrayStride: PositionColorStride,
	StepMode:    gputypes.VertexStepModeVertex,
	Attributes: []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: gputypes.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 1},
	},
}

// PositionColorStride is the byte size of one position/color vertex.
const PositionColorStride = 28

// MatrixSize is the byte size of a 4x4 float32 uniform.
const MatrixSize = 64

// PutFloat32s writes fs little-endian into dst and returns the bytes
// written.
func PutFloat32s(dst []byte, fs ...float32) int {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
	return len(fs) * 4
}

// Float32At reads the little-endian float32 at offset.
func Float32At(src []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(src[offset:]))
}

// IndexAt reads index i from an index buffer of the given format.
func IndexAt(src []byte, format gputypes.IndexFormat, i uint32) uint32 {
	switch format {
	case gputypes.IndexFormatUint16:
		return uint32(binary.LittleEndian.Uint16(src[i*2:]))
	default:
		return binary.LittleEndian.Uint32(src[i*4:])
	}
}
