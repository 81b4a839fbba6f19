package input

// Event type names used on the listener registry
const (
	TypeKeyDown   = "keydown"
	TypeMouseDown = "mousedown"
)

// Target is the kind of element that had focus when a key was pressed
type Target int

const (
	TargetSurface Target = iota
	TargetTextInput
	TargetTextArea
)

// IsTextEntry reports whether keys typed at this target belong to the user's text
func (t Target) IsTextEntry() bool {
	return t == TargetTextInput || t == TargetTextArea
}

// KeyEvent is one key press on its way through the registry.  Key uses bubbletea's key names ("left", " ", "f").
type KeyEvent struct {
	Key    string
	Target Target

	defaultPrevented bool
}

func (e *KeyEvent) Type() string { return TypeKeyDown }

// PreventDefault marks the key as consumed so the model does not apply its own binding
func (e *KeyEvent) PreventDefault() {
	e.defaultPrevented = true
}

func (e *KeyEvent) DefaultPrevented() bool {
	return e.defaultPrevented
}

// PointerEvent is a mouse press in terminal cell coordinates
type PointerEvent struct {
	X, Y int
}

func (e PointerEvent) Type() string { return TypeMouseDown }
