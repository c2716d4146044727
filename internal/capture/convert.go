package capture

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stormdrain/internal/event"
)

// convertKeyEvent maps a terminal key press onto the input taxonomy.
func convertKeyEvent(e *tcell.EventKey, target event.WindowID) event.Input {
	k, r, mods := convertKey(e.Key(), e.Rune(), convertModifiers(e.Modifiers()))
	return event.KeyEvent{Target: target, Key: k, Rune: r, Modifiers: mods}
}

// convertKey maps a tcell key code. Control letters fold back to their
// letter rune with ModCtrl set; KeyCtrlH, KeyCtrlI, and KeyCtrlM share
// codes with Backspace, Tab, and Enter and stay those keys.
func convertKey(k tcell.Key, r rune, mods event.Modifier) (event.Key, rune, event.Modifier) {
	switch k {
	case tcell.KeyRune:
		return event.KeyRune, r, mods
	case tcell.KeyEscape:
		return event.KeyEscape, 0, mods
	case tcell.KeyEnter:
		return event.KeyEnter, 0, mods
	case tcell.KeyTab:
		return event.KeyTab, 0, mods
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return event.KeyBackspace, 0, mods
	case tcell.KeyDelete:
		return event.KeyDelete, 0, mods
	case tcell.KeyInsert:
		return event.KeyInsert, 0, mods
	case tcell.KeyHome:
		return event.KeyHome, 0, mods
	case tcell.KeyEnd:
		return event.KeyEnd, 0, mods
	case tcell.KeyPgUp:
		return event.KeyPageUp, 0, mods
	case tcell.KeyPgDn:
		return event.KeyPageDown, 0, mods
	case tcell.KeyUp:
		return event.KeyUp, 0, mods
	case tcell.KeyDown:
		return event.KeyDown, 0, mods
	case tcell.KeyLeft:
		return event.KeyLeft, 0, mods
	case tcell.KeyRight:
		return event.KeyRight, 0, mods
	case tcell.KeyF1:
		return event.KeyF1, 0, mods
	case tcell.KeyF2:
		return event.KeyF2, 0, mods
	case tcell.KeyF3:
		return event.KeyF3, 0, mods
	case tcell.KeyF4:
		return event.KeyF4, 0, mods
	case tcell.KeyF5:
		return event.KeyF5, 0, mods
	case tcell.KeyF6:
		return event.KeyF6, 0, mods
	case tcell.KeyF7:
		return event.KeyF7, 0, mods
	case tcell.KeyF8:
		return event.KeyF8, 0, mods
	case tcell.KeyF9:
		return event.KeyF9, 0, mods
	case tcell.KeyF10:
		return event.KeyF10, 0, mods
	case tcell.KeyF11:
		return event.KeyF11, 0, mods
	case tcell.KeyF12:
		return event.KeyF12, 0, mods
	case tcell.KeyCtrlSpace:
		return event.KeyRune, ' ', mods.With(event.ModCtrl)
	}

	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return event.KeyRune, rune('a' + k - tcell.KeyCtrlA), mods.With(event.ModCtrl)
	}
	return event.KeyNone, 0, mods
}

// convertModifiers maps the tcell modifier mask.
func convertModifiers(m tcell.ModMask) event.Modifier {
	var mods event.Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(event.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(event.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(event.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(event.ModMeta)
	}
	return mods
}

// convertMouseEvent maps clicks and motion to a MouseEvent and wheel
// bits to a WheelEvent. Positive DeltaY scrolls up.
func convertMouseEvent(e *tcell.EventMouse, target event.WindowID) event.Input {
	mods := convertModifiers(e.Modifiers())
	buttons := e.Buttons()

	if buttons&(tcell.WheelUp|tcell.WheelDown|tcell.WheelLeft|tcell.WheelRight) != 0 {
		var dx, dy int
		if buttons&tcell.WheelUp != 0 {
			dy++
		}
		if buttons&tcell.WheelDown != 0 {
			dy--
		}
		if buttons&tcell.WheelLeft != 0 {
			dx--
		}
		if buttons&tcell.WheelRight != 0 {
			dx++
		}
		return event.WheelEvent{Target: target, DeltaX: dx, DeltaY: dy, Modifiers: mods}
	}

	x, y := e.Position()
	return event.MouseEvent{
		Target:    target,
		Button:    convertButton(buttons),
		X:         x,
		Y:         y,
		Modifiers: mods,
	}
}

// convertButton picks the primary pressed button.
func convertButton(b tcell.ButtonMask) event.MouseButton {
	switch {
	case b&tcell.ButtonPrimary != 0:
		return event.ButtonLeft
	case b&tcell.ButtonSecondary != 0:
		return event.ButtonRight
	case b&tcell.ButtonMiddle != 0:
		return event.ButtonMiddle
	default:
		return event.ButtonNone
	}
}
