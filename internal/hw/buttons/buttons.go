package buttons

import (
	"github.com/cjeanneret/OrniPad/internal/debug"
	"github.com/cjeanneret/OrniPad/internal/hw/gpio"
	"github.com/cjeanneret/OrniPad/internal/telemetry"
)

// Pins holds the BCM pin numbers of the three frequency buttons.
type Pins struct {
	A, B, C int
}

// Panel reads the A/B/C push buttons. Buttons pull the line to
// ground when pressed (active LOW, internal pull-ups).
type Panel struct {
	gpio gpio.Driver
	pins Pins
}

// NewPanel configures the button pins as pull-up inputs.
func NewPanel(g gpio.Driver, pins Pins) (*Panel, error) {
	for _, pin := range []int{pins.A, pins.B, pins.C} {
		if err := g.SetupPin(pin, gpio.InputPullUp); err != nil {
			return nil, err
		}
	}
	return &Panel{gpio: g, pins: pins}, nil
}

// Read samples all three buttons. A pin that cannot be read counts as
// released.
func (p *Panel) Read() telemetry.ButtonState {
	return telemetry.ButtonState{
		A: p.pressed(p.pins.A),
		B: p.pressed(p.pins.B),
		C: p.pressed(p.pins.C),
	}
}

func (p *Panel) pressed(pin int) bool {
	lvl, err := p.gpio.ReadPin(pin)
	if err != nil {
		debug.Trace("button pin %d read failed: %v", pin, err)
		return false
	}
	return lvl == gpio.Low
}
