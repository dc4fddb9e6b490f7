// Package interact translates pointer, wheel and key events into camera
// changes. The host decodes its native input into Events and hands them to
// a Controller one at a time; the returned Flags say what must be redrawn.
package interact

import "fmt"

// Kind is the type of an input event.
type Kind uint8

const (
	PointerDown Kind = iota + 1
	PointerMove
	PointerUp
	Wheel
	KeyPress
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "pointer-down"
	case PointerMove:
		return "pointer-move"
	case PointerUp:
		return "pointer-up"
	case Wheel:
		return "wheel"
	case KeyPress:
		return "key"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Button identifies a pointer button.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonSecondary
	ButtonMiddle
)

// Event is one decoded input event. X and Y are pixel positions with the
// origin at the top left. Delta is the wheel movement, positive away from
// the user. Key is a key identifier such as "a" or "?".
type Event struct {
	Kind   Kind
	Button Button
	X, Y   float32
	Delta  float32
	Key    string
}

// Flags report what an event changed.
type Flags uint8

const (
	// FlagCamera means the camera moved and the grid and axes are stale.
	FlagCamera Flags = 1 << iota
	// FlagWorld means the shape lists changed.
	FlagWorld
	// FlagContextMenu asks the host to show its context menu.
	FlagContextMenu
)

// Has reports whether all bits of o are set.
func (f Flags) Has(o Flags) bool { return f&o == o }
