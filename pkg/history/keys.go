package history

import (
	"fmt"
	"strings"
)

// Action is what a key press maps to
type Action int

const (
	ActionNone Action = iota
	ActionUndo
	ActionRedo
)

func (a Action) String() string {
	switch a {
	case ActionUndo:
		return "undo"
	case ActionRedo:
		return "redo"
	}
	return "none"
}

// Key is a key press with its modifiers. Meta is the Cmd key on macOS.
type Key struct {
	Code  string
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool
}

// Mod reports whether the platform command modifier (Ctrl or Cmd) is held
func (k Key) Mod() bool {
	return k.Ctrl || k.Meta
}

func (k Key) String() string {
	var parts []string
	if k.Ctrl {
		parts = append(parts, "ctrl")
	}
	if k.Meta {
		parts = append(parts, "cmd")
	}
	if k.Alt {
		parts = append(parts, "alt")
	}
	if k.Shift {
		parts = append(parts, "shift")
	}
	return strings.Join(append(parts, k.Code), "+")
}

// ParseKey parses strings such as "ctrl+z", "cmd+shift+z" or "Meta+Y"
func ParseKey(s string) (Key, error) {
	var k Key
	fields := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if i == len(fields)-1 {
			if f == "" {
				return Key{}, fmt.Errorf("invalid key %q: missing key", s)
			}
			k.Code = f
			break
		}
		switch f {
		case "ctrl", "control":
			k.Ctrl = true
		case "cmd", "meta", "command", "super":
			k.Meta = true
		case "shift":
			k.Shift = true
		case "alt", "option", "opt":
			k.Alt = true
		default:
			return Key{}, fmt.Errorf("invalid key %q: unknown modifier %q", s, f)
		}
	}
	return k, nil
}

// Binding maps a modifier+key chord to an action. Ctrl and Cmd are
// interchangeable.
type Binding struct {
	Code   string
	Shift  bool
	Action Action
}

// Bindings is an ordered list of chords
type Bindings []Binding

// DefaultBindings: Ctrl/Cmd+Z undoes, Ctrl/Cmd+Y and Ctrl/Cmd+Shift+Z redo
func DefaultBindings() Bindings {
	return Bindings{
		{Code: "z", Action: ActionUndo},
		{Code: "z", Shift: true, Action: ActionRedo},
		{Code: "y", Action: ActionRedo},
	}
}

// Resolve returns the action for k. Nothing fires while focus is in a
// text input, where the input keeps its own undo.
func (b Bindings) Resolve(k Key, inTextInput bool) Action {
	if inTextInput || !k.Mod() || k.Alt {
		return ActionNone
	}
	for _, binding := range b {
		if binding.Code == k.Code && binding.Shift == k.Shift {
			return binding.Action
		}
	}
	return ActionNone
}
