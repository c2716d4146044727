package event

import (
	"fmt"
	"strings"
)

// WindowID identifies the window an input event targets.
type WindowID int64

// WindowNone addresses no particular window. The router delivers such
// events to the broadcast receiver when one is registered.
const WindowNone WindowID = 0

// Kind discriminates the concrete Input types.
type Kind uint8

const (
	// KindNone represents no event.
	KindNone Kind = iota

	// KindKey is a key press.
	KindKey

	// KindMouse is a mouse button press, release, or motion.
	KindMouse

	// KindWheel is a scroll wheel movement.
	KindWheel

	// KindResize is a window geometry change.
	KindResize

	// KindFocus is a window focus change.
	KindFocus

	// KindPaste is a bracketed paste block.
	KindPaste
)

var kindNames = map[Kind]string{
	KindNone:   "None",
	KindKey:    "Key",
	KindMouse:  "Mouse",
	KindWheel:  "Wheel",
	KindResize: "Resize",
	KindFocus:  "Focus",
	KindPaste:  "Paste",
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Input is implemented by every payload the capture layer produces.
type Input interface {
	// Kind identifies the concrete event type.
	Kind() Kind

	// Window identifies the window the event targets, or WindowNone.
	Window() WindowID
}

// KeyEvent is a single key press.
type KeyEvent struct {
	// Target is the window the press was captured for.
	Target WindowID

	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// Kind returns KindKey.
func (e KeyEvent) Kind() Kind { return KindKey }

// Window returns the target window.
func (e KeyEvent) Window() WindowID { return e.Target }

// IsRune returns true if this is a character key event.
func (e KeyEvent) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// String returns a canonical representation like "Ctrl+S" or "a".
func (e KeyEvent) String() string {
	var parts []string
	if mods := e.Modifiers.String(); mods != "" {
		parts = append(parts, mods)
	}
	if e.IsRune() {
		if e.Rune == ' ' {
			parts = append(parts, "Space")
		} else {
			parts = append(parts, string(e.Rune))
		}
	} else {
		parts = append(parts, e.Key.String())
	}
	return strings.Join(parts, "+")
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	// ButtonNone indicates motion without a button.
	ButtonNone MouseButton = iota

	// ButtonLeft is the primary button.
	ButtonLeft

	// ButtonMiddle is the middle button.
	ButtonMiddle

	// ButtonRight is the secondary button.
	ButtonRight
)

// MouseEvent is a mouse button press, release, or motion.
type MouseEvent struct {
	// Target is the window the event was captured for.
	Target WindowID

	// Button is the button involved, or ButtonNone for motion.
	Button MouseButton

	// X and Y are the pointer coordinates in window cells.
	X, Y int

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// Kind returns KindMouse.
func (e MouseEvent) Kind() Kind { return KindMouse }

// Window returns the target window.
func (e MouseEvent) Window() WindowID { return e.Target }

// WheelEvent is a scroll wheel movement.
type WheelEvent struct {
	// Target is the window the event was captured for.
	Target WindowID

	// DeltaX and DeltaY are the scroll distances; positive DeltaY
	// scrolls up.
	DeltaX, DeltaY int

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// Kind returns KindWheel.
func (e WheelEvent) Kind() Kind { return KindWheel }

// Window returns the target window.
func (e WheelEvent) Window() WindowID { return e.Target }

// ResizeEvent is a window geometry change.
type ResizeEvent struct {
	// Target is the window that changed size.
	Target WindowID

	// Width and Height are the new dimensions in cells.
	Width, Height int
}

// Kind returns KindResize.
func (e ResizeEvent) Kind() Kind { return KindResize }

// Window returns the target window.
func (e ResizeEvent) Window() WindowID { return e.Target }

// FocusEvent is a window focus change.
type FocusEvent struct {
	// Target is the window whose focus changed.
	Target WindowID

	// Gained is true when focus was acquired, false when lost.
	Gained bool
}

// Kind returns KindFocus.
func (e FocusEvent) Kind() Kind { return KindFocus }

// Window returns the target window.
func (e FocusEvent) Window() WindowID { return e.Target }

// PasteEvent is a bracketed paste block.
type PasteEvent struct {
	// Target is the window the paste was captured for.
	Target WindowID

	// Text is the pasted content.
	Text string
}

// Kind returns KindPaste.
func (e PasteEvent) Kind() Kind { return KindPaste }

// Window returns the target window.
func (e PasteEvent) Window() WindowID { return e.Target }

// Describe returns a short diagnostic string for any input.
func Describe(in Input) string {
	switch ev := in.(type) {
	case KeyEvent:
		return fmt.Sprintf("key %s window=%d", ev, ev.Target)
	case MouseEvent:
		return fmt.Sprintf("mouse button=%d (%d,%d) window=%d", ev.Button, ev.X, ev.Y, ev.Target)
	case WheelEvent:
		return fmt.Sprintf("wheel (%d,%d) window=%d", ev.DeltaX, ev.DeltaY, ev.Target)
	case ResizeEvent:
		return fmt.Sprintf("resize %dx%d window=%d", ev.Width, ev.Height, ev.Target)
	case FocusEvent:
		return fmt.Sprintf("focus gained=%t window=%d", ev.Gained, ev.Target)
	case PasteEvent:
		return fmt.Sprintf("paste %d bytes window=%d", len(ev.Text), ev.Target)
	default:
		return fmt.Sprintf("%s window=%d", in.Kind(), in.Window())
	}
}
