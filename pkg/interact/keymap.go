package interact

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned when an action name cannot be parsed.
var ErrUnknownAction = errors.New("interact: unknown action")

// Action is something a key can be bound to.
type Action uint8

const (
	ActionNone Action = iota
	ActionPanLeft
	ActionPanRight
	ActionPanUp
	ActionPanDown
	ActionZoomIn
	ActionZoomOut
	ActionReset
	ActionFit
	ActionLock
	ActionSaveLocation
	ActionLoadLocation
)

var actionNames = [...]string{
	ActionNone:         "none",
	ActionPanLeft:      "pan-left",
	ActionPanRight:     "pan-right",
	ActionPanUp:        "pan-up",
	ActionPanDown:      "pan-down",
	ActionZoomIn:       "zoom-in",
	ActionZoomOut:      "zoom-out",
	ActionReset:        "reset",
	ActionFit:          "fit",
	ActionLock:         "lock",
	ActionSaveLocation: "save-location",
	ActionLoadLocation: "load-location",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// ParseAction looks up an action by the name String returns.
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a, n := range actionNames {
		if n == name {
			return Action(a), nil
		}
	}
	return ActionNone, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// Keymap binds key identifiers to actions.
type Keymap map[string]Action

// DefaultKeymap returns the stock bindings.
func DefaultKeymap() Keymap {
	return Keymap{
		"a": ActionPanLeft,
		"d": ActionPanRight,
		"w": ActionPanUp,
		"s": ActionPanDown,
		"m": ActionZoomIn,
		"n": ActionZoomOut,
		"r": ActionReset,
		"x": ActionFit,
		"f": ActionLock,
		"k": ActionSaveLocation,
		"l": ActionLoadLocation,
	}
}

// Lookup returns the action bound to key. Single letters match either
// case.
func (km Keymap) Lookup(key string) Action {
	if a, ok := km[key]; ok {
		return a
	}
	return km[strings.ToLower(key)]
}

// Bind rebinds key to the named action. Binding "none" removes the key.
func (km Keymap) Bind(key, action string) error {
	a, err := ParseAction(action)
	if err != nil {
		return err
	}
	if a == ActionNone {
		delete(km, key)
		return nil
	}
	km[key] = a
	return nil
}
