package capture

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stormdrain/internal/event"
)

func TestConvertKeyEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want event.KeyEvent
	}{
		{
			name: "plain rune",
			ev:   tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone),
			want: event.KeyEvent{Key: event.KeyRune, Rune: 'x'},
		},
		{
			name: "rune with alt",
			ev:   tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModAlt),
			want: event.KeyEvent{Key: event.KeyRune, Rune: 'x', Modifiers: event.ModAlt},
		},
		{
			name: "ctrl letter folds to rune",
			ev:   tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
			want: event.KeyEvent{Key: event.KeyRune, Rune: 'c', Modifiers: event.ModCtrl},
		},
		{
			name: "ctrl modifier synthesized",
			ev:   tcell.NewEventKey(tcell.KeyCtrlQ, 0, tcell.ModNone),
			want: event.KeyEvent{Key: event.KeyRune, Rune: 'q', Modifiers: event.ModCtrl},
		},
		{
			name: "ctrl-h stays backspace",
			ev:   tcell.NewEventKey(tcell.KeyCtrlH, 0, tcell.ModNone),
			want: event.KeyEvent{Key: event.KeyBackspace},
		},
		{
			name: "ctrl-space",
			ev:   tcell.NewEventKey(tcell.KeyCtrlSpace, 0, tcell.ModNone),
			want: event.KeyEvent{Key: event.KeyRune, Rune: ' ', Modifiers: event.ModCtrl},
		},
		{
			name: "escape",
			ev:   tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
			want: event.KeyEvent{Key: event.KeyEscape},
		},
		{
			name: "function key",
			ev:   tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone),
			want: event.KeyEvent{Key: event.KeyF5},
		},
		{
			name: "shifted arrow",
			ev:   tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModShift),
			want: event.KeyEvent{Key: event.KeyUp, Modifiers: event.ModShift},
		},
		{
			name: "unmapped key",
			ev:   tcell.NewEventKey(tcell.KeyF64, 0, tcell.ModNone),
			want: event.KeyEvent{Key: event.KeyNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertKeyEvent(tt.ev, event.WindowNone)
			ke, ok := got.(event.KeyEvent)
			if !ok {
				t.Fatalf("converted to %T, want KeyEvent", got)
			}
			if ke != tt.want {
				t.Errorf("got %+v, want %+v", ke, tt.want)
			}
		})
	}
}

func TestConvertMouseEvent(t *testing.T) {
	const target = event.WindowID(3)

	t.Run("click", func(t *testing.T) {
		got := convertMouseEvent(tcell.NewEventMouse(10, 5, tcell.ButtonPrimary, tcell.ModNone), target)
		me, ok := got.(event.MouseEvent)
		if !ok {
			t.Fatalf("converted to %T, want MouseEvent", got)
		}
		want := event.MouseEvent{Target: target, Button: event.ButtonLeft, X: 10, Y: 5}
		if me != want {
			t.Errorf("got %+v, want %+v", me, want)
		}
	})

	t.Run("secondary button", func(t *testing.T) {
		got := convertMouseEvent(tcell.NewEventMouse(0, 0, tcell.ButtonSecondary, tcell.ModNone), target)
		me := got.(event.MouseEvent)
		if me.Button != event.ButtonRight {
			t.Errorf("Button = %d, want ButtonRight", me.Button)
		}
	})

	t.Run("motion", func(t *testing.T) {
		got := convertMouseEvent(tcell.NewEventMouse(7, 2, tcell.ButtonNone, tcell.ModNone), target)
		me := got.(event.MouseEvent)
		want := event.MouseEvent{Target: target, Button: event.ButtonNone, X: 7, Y: 2}
		if me != want {
			t.Errorf("got %+v, want %+v", me, want)
		}
	})

	t.Run("wheel up", func(t *testing.T) {
		got := convertMouseEvent(tcell.NewEventMouse(0, 0, tcell.WheelUp, tcell.ModNone), target)
		we, ok := got.(event.WheelEvent)
		if !ok {
			t.Fatalf("converted to %T, want WheelEvent", got)
		}
		if we.DeltaY != 1 || we.DeltaX != 0 {
			t.Errorf("delta = (%d,%d), want (0,1)", we.DeltaX, we.DeltaY)
		}
	})

	t.Run("wheel down with shift", func(t *testing.T) {
		got := convertMouseEvent(tcell.NewEventMouse(0, 0, tcell.WheelDown, tcell.ModShift), target)
		we := got.(event.WheelEvent)
		if we.DeltaY != -1 || !we.Modifiers.Has(event.ModShift) {
			t.Errorf("got %+v, want DeltaY=-1 with shift", we)
		}
	})

	t.Run("horizontal wheel", func(t *testing.T) {
		got := convertMouseEvent(tcell.NewEventMouse(0, 0, tcell.WheelRight, tcell.ModNone), target)
		we := got.(event.WheelEvent)
		if we.DeltaX != 1 || we.DeltaY != 0 {
			t.Errorf("delta = (%d,%d), want (1,0)", we.DeltaX, we.DeltaY)
		}
	})
}

func TestConvertModifiers(t *testing.T) {
	tests := []struct {
		name string
		in   tcell.ModMask
		want event.Modifier
	}{
		{"none", tcell.ModNone, event.ModNone},
		{"shift", tcell.ModShift, event.ModShift},
		{"ctrl+alt", tcell.ModCtrl | tcell.ModAlt, event.ModCtrl | event.ModAlt},
		{"all", tcell.ModShift | tcell.ModCtrl | tcell.ModAlt | tcell.ModMeta,
			event.ModShift | event.ModCtrl | event.ModAlt | event.ModMeta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertModifiers(tt.in); got != tt.want {
				t.Errorf("convertModifiers(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
