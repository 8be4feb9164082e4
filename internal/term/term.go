// Package term implements interpreter.TerminalHost on top of
// github.com/nsf/termbox-go, the capability-injected terminal wrapper
// spec.md names as an out-of-scope external collaborator (spec.md 1, 6).
//
// Grounded on other_examples/jawr-mos6502's use of termbox-go for a CPU
// emulator's interactive terminal front-end (raw mode, cursor control,
// polled single-key input) — the closest domain match in the retrieved
// pack to "terminal wrapper for a small VM".
package term

import (
	"time"

	"github.com/nsf/termbox-go"
)

// Named key codes, matching spec.md 4.3's fixed high numbers for keys that
// have no single-codepoint representation.
const (
	KeyEsc       = 10000
	KeyBackTab   = 10001
	KeyBackspace = 10002
	KeyDelete    = 10003
	KeyDown      = 10004
	KeyEnd       = 10005
	KeyEnter     = 10006
	KeyInsert    = 10007
	KeyLeft      = 10008
	KeyPageDown  = 10009
	KeyPageUp    = 10010
	KeyRight     = 10011
	KeyTab       = 10012
	KeyUp        = 10013
)

// Terminal wraps termbox-go's global terminal state behind the
// interpreter.TerminalHost interface. Only one Terminal should be active
// at a time (termbox itself is a single global terminal handle); that
// matches the single interpreter instance per process this toolchain
// runs.
type Terminal struct {
	events chan termbox.Event
	x, y   int
}

// New constructs a Terminal. Raw mode (and the event pump goroutine) only
// starts once EnableRawMode is called, so constructing a Terminal is safe
// even in a headless test run that never touches it.
func New() *Terminal {
	return &Terminal{events: make(chan termbox.Event, 16)}
}

func (t *Terminal) EnableRawMode() error {
	if err := termbox.Init(); err != nil {
		return err
	}
	go t.pump()
	return nil
}

func (t *Terminal) DisableRawMode() error {
	termbox.Interrupt()
	termbox.Close()
	return nil
}

// pump is the one auxiliary goroutine this repo's core domain logic
// relies on: termbox.PollEvent blocks with no built-in timeout, so a
// background pump forwards events to a channel that Poll can select on
// with a deadline. This echoes, narrowly and only here (outside
// internal/interpreter), the teacher's device-bus goroutine idiom.
func (t *Terminal) pump() {
	for {
		ev := termbox.PollEvent()
		if ev.Type == termbox.EventInterrupt {
			return
		}
		t.events <- ev
	}
}

func (t *Terminal) ClearAll() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	termbox.Flush()
}

// ClearPurge additionally resets the cursor to the origin, modeling the
// "purge" variant as a harder reset than a plain clear.
func (t *Terminal) ClearPurge() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	t.x, t.y = 0, 0
	termbox.SetCursor(0, 0)
	termbox.Flush()
}

func (t *Terminal) ShowCursor() {
	termbox.SetCursor(t.x, t.y)
	termbox.Flush()
}

func (t *Terminal) HideCursor() {
	termbox.HideCursor()
	termbox.Flush()
}

func (t *Terminal) MoveCursor(x, y int) {
	t.x, t.y = x, y
	termbox.SetCursor(x, y)
	termbox.Flush()
}

// Poll waits up to ms milliseconds for a key event, returning key code 0
// if none arrives in time.
func (t *Terminal) Poll(ms int) (int, error) {
	select {
	case ev := <-t.events:
		if ev.Type != termbox.EventKey {
			return 0, nil
		}
		return translateKey(ev), nil
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return 0, nil
	}
}

func translateKey(ev termbox.Event) int {
	if ev.Ch != 0 {
		return int(ev.Ch)
	}
	switch ev.Key {
	case termbox.KeyEsc:
		return KeyEsc
	case termbox.KeyBacktab:
		return KeyBackTab
	case termbox.KeyBackspace, termbox.KeyBackspace2:
		return KeyBackspace
	case termbox.KeyDelete:
		return KeyDelete
	case termbox.KeyArrowDown:
		return KeyDown
	case termbox.KeyEnd:
		return KeyEnd
	case termbox.KeyEnter:
		return KeyEnter
	case termbox.KeyInsert:
		return KeyInsert
	case termbox.KeyArrowLeft:
		return KeyLeft
	case termbox.KeyPgdn:
		return KeyPageDown
	case termbox.KeyPgup:
		return KeyPageUp
	case termbox.KeyArrowRight:
		return KeyRight
	case termbox.KeyTab:
		return KeyTab
	case termbox.KeyArrowUp:
		return KeyUp
	default:
		return 0
	}
}
