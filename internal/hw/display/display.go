package display

import (
	"fmt"
	"io"
	"sync"
)

// Surface is a text display addressed by cursor position.
// Writes never fail from the caller's point of view.
type Surface interface {
	SetCursor(x, y int16)
	Printf(format string, args ...interface{})
	Clear()
}

// Console renders on an ANSI terminal. Coordinates are character cells.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole returns a console surface writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) SetCursor(x, y int16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "\x1b[%d;%dH", y+1, x+1)
}

func (c *Console) Printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, args...)
}

func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.w, "\x1b[2J\x1b[H")
}

// Discard is a surface that drops everything.
type Discard struct{}

func (Discard) SetCursor(x, y int16)                      {}
func (Discard) Printf(format string, args ...interface{}) {}
func (Discard) Clear()                                    {}
