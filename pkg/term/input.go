package term

import (
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/ortho/pkg/interact"
)

// Translate converts a terminal event to a viewport event. Cell
// coordinates become framebuffer pixels, two rows per cell. Wheel up is a
// positive delta. ok is false for events the viewport does not consume.
func Translate(ev uv.Event) (out interact.Event, ok bool) {
	switch ev := ev.(type) {
	case uv.MouseClickEvent:
		return pointer(interact.PointerDown, ev.X, ev.Y, ev.Button), true
	case uv.MouseReleaseEvent:
		return pointer(interact.PointerUp, ev.X, ev.Y, ev.Button), true
	case uv.MouseMotionEvent:
		return pointer(interact.PointerMove, ev.X, ev.Y, ev.Button), true
	case uv.MouseWheelEvent:
		e := pointer(interact.Wheel, ev.X, ev.Y, uv.MouseNone)
		switch ev.Button {
		case uv.MouseWheelUp:
			e.Delta = 1
		case uv.MouseWheelDown:
			e.Delta = -1
		default:
			return interact.Event{}, false
		}
		return e, true
	case uv.KeyPressEvent:
		return interact.Event{Kind: interact.KeyPress, Key: ev.String()}, true
	}
	return interact.Event{}, false
}

func pointer(kind interact.Kind, x, y int, b uv.MouseButton) interact.Event {
	return interact.Event{
		Kind:   kind,
		Button: button(b),
		X:      float32(x),
		Y:      float32(y * 2),
	}
}

func button(b uv.MouseButton) interact.Button {
	switch b {
	case uv.MouseLeft:
		return interact.ButtonPrimary
	case uv.MouseRight:
		return interact.ButtonSecondary
	case uv.MouseMiddle:
		return interact.ButtonMiddle
	}
	return interact.ButtonNone
}
