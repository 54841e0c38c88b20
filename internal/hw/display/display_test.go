package display

import (
	"bytes"
	"testing"
)

func TestConsole_CursorAndText(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.SetCursor(0, 4)
	c.Printf("Roll: %d deg", -10)

	want := "\x1b[5;1HRoll: -10 deg"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestConsole_Clear(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Clear()
	if buf.String() != "\x1b[2J\x1b[H" {
		t.Errorf("Clear wrote %q", buf.String())
	}
}

func TestDiscard_ImplementsSurface(t *testing.T) {
	var s Surface = Discard{}
	s.SetCursor(1, 1)
	s.Printf("ignored %d", 1)
	s.Clear()
}
