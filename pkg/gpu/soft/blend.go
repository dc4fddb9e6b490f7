package soft

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/taigrr/ortho/pkg/math3d"
)

func depthPasses(f gputypes.CompareFunction, z, dst float32) bool {
	switch f {
	case gputypes.CompareFunctionNever:
		return false
	case gputypes.CompareFunctionLess:
		return z < dst
	case gputypes.CompareFunctionEqual:
		return z == dst
	case gputypes.CompareFunctionLessEqual:
		return z <= dst
	case gputypes.CompareFunctionGreater:
		return z > dst
	case gputypes.CompareFunctionNotEqual:
		return z != dst
	case gputypes.CompareFunctionGreaterEqual:
		return z >= dst
	default:
		return true
	}
}

func toVec4(c color.RGBA) math3d.Vec4 {
	return math3d.V4(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255)
}

func toRGBA(v math3d.Vec4) color.RGBA {
	q := func(f float32) uint8 {
		return uint8(math32.Round(math32.Max(0, math32.Min(1, f)) * 255))
	}
	return color.RGBA{q(v.X), q(v.Y), q(v.Z), q(v.W)}
}

func factor(f gputypes.BlendFactor, src, dst math3d.Vec4, channel func(math3d.Vec4) float32) float32 {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorSrc:
		return channel(src)
	case gputypes.BlendFactorOneMinusSrc:
		return 1 - channel(src)
	case gputypes.BlendFactorSrcAlpha:
		return src.W
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 1 - src.W
	case gputypes.BlendFactorDst:
		return channel(dst)
	case gputypes.BlendFactorOneMinusDst:
		return 1 - channel(dst)
	case gputypes.BlendFactorDstAlpha:
		return dst.W
	case gputypes.BlendFactorOneMinusDstAlpha:
		return 1 - dst.W
	case gputypes.BlendFactorSrcAlphaSaturated:
		return math32.Min(src.W, 1-dst.W)
	default:
		return 1
	}
}

func combine(bc gputypes.BlendComponent, src, dst math3d.Vec4, channel func(math3d.Vec4) float32) float32 {
	s := channel(src) * factor(bc.SrcFactor, src, dst, channel)
	d := channel(dst) * factor(bc.DstFactor, src, dst, channel)
	switch bc.Operation {
	case gputypes.BlendOperationSubtract:
		return s - d
	case gputypes.BlendOperationReverseSubtract:
		return d - s
	case gputypes.BlendOperationMin:
		return math32.Min(channel(src), channel(dst))
	case gputypes.BlendOperationMax:
		return math32.Max(channel(src), channel(dst))
	default:
		return s + d
	}
}

var (
	chR = func(v math3d.Vec4) float32 { return v.X }
	chG = func(v math3d.Vec4) float32 { return v.Y }
	chB = func(v math3d.Vec4) float32 { return v.Z }
	chA = func(v math3d.Vec4) float32 { return v.W }
)

func blend(b gputypes.BlendState, src math3d.Vec4, dst color.RGBA) color.RGBA {
	d := toVec4(dst)
	return toRGBA(math3d.V4(
		combine(b.Color, src, d, chR),
		combine(b.Color, src, d, chG),
		combine(b.Color, src, d, chB),
		combine(b.Alpha, src, d, chA),
	))
}
