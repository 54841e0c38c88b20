package display

import (
	"fmt"

	"github.com/cjeanneret/OrniPad/internal/debug"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hd44780i2c"
)

// HD44780 is a character LCD behind a PCF8574 I2C backpack.
// Text past the end of a line is cut.
type HD44780 struct {
	dev     hd44780i2c.Device
	columns uint8
	rows    uint8
	x       uint8
}

// NewHD44780 configures the LCD at addr on bus.
func NewHD44780(bus drivers.I2C, addr, columns, rows uint8) (*HD44780, error) {
	debug.Info("Initializing HD44780 LCD at 0x%02x (%dx%d)", addr, columns, rows)
	dev := hd44780i2c.New(bus, addr)
	if err := dev.Configure(hd44780i2c.Config{
		Width:  columns,
		Height: rows,
	}); err != nil {
		return nil, fmt.Errorf("configure hd44780: %w", err)
	}
	dev.ClearDisplay()
	return &HD44780{dev: dev, columns: columns, rows: rows}, nil
}

func (h *HD44780) SetCursor(x, y int16) {
	if x < 0 || y < 0 || x >= int16(h.columns) || y >= int16(h.rows) {
		return
	}
	h.x = uint8(x)
	h.dev.SetCursor(uint8(x), uint8(y))
}

func (h *HD44780) Printf(format string, args ...interface{}) {
	text := []byte(fmt.Sprintf(format, args...))
	if room := int(h.columns) - int(h.x); len(text) > room {
		text = text[:max(room, 0)]
	}
	h.dev.Print(text)
	h.x += uint8(len(text))
}

func (h *HD44780) Clear() {
	h.dev.ClearDisplay()
	h.x = 0
}
