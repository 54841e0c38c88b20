// Package joyface drives the I2C joystick face: a two-axis stick with a
// push button and four RGB LEDs around it.
package joyface

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand/v2"
	"time"

	"github.com/cjeanneret/OrniPad/internal/debug"
	"github.com/cjeanneret/OrniPad/internal/telemetry"
	"tinygo.org/x/drivers"
)

// DefaultAddr is the factory I2C address of the joystick face.
const DefaultAddr = 0x5E

// FrameSize is the length of a joystick report:
// [y_lo, y_hi, x_lo, x_hi, buttons].
const FrameSize = 5

// NumLEDs is the number of RGB LEDs on the face.
const NumLEDs = 4

// ErrNoFrame means the poll returned no usable report.
var ErrNoFrame = errors.New("joyface: no frame available")

// Device is a joystick face on an I2C bus.
type Device struct {
	bus  drivers.I2C
	addr uint16
	buf  [FrameSize]byte
}

// New returns a joystick face at addr on bus.
func New(bus drivers.I2C, addr uint16) *Device {
	if addr == 0 {
		addr = DefaultAddr
	}
	return &Device{bus: bus, addr: addr}
}

// Decode converts a report into a raw sample.
func Decode(frame [FrameSize]byte) telemetry.RawSample {
	return telemetry.RawSample{
		Y:       uint16(frame[1])<<8 | uint16(frame[0]),
		X:       uint16(frame[3])<<8 | uint16(frame[2]),
		Buttons: frame[4],
	}
}

// ReadSample requests one report. It blocks for the bus transaction
// and returns ErrNoFrame when the face does not answer.
func (d *Device) ReadSample() (telemetry.RawSample, error) {
	if err := d.bus.Tx(d.addr, nil, d.buf[:]); err != nil {
		debug.Trace("joystick poll missed: %v", err)
		return telemetry.RawSample{}, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}
	return Decode(d.buf), nil
}

// SetLED sets LED index (0-3) to c. Alpha is ignored.
func (d *Device) SetLED(index int, c color.RGBA) error {
	if index < 0 || index >= NumLEDs {
		return fmt.Errorf("joyface: led index %d out of range", index)
	}
	return d.bus.Tx(d.addr, []byte{byte(index), c.R, c.G, c.B}, nil)
}

// LEDsOff turns every LED off.
func (d *Device) LEDsOff() error {
	var errs []error
	for i := 0; i < NumLEDs; i++ {
		errs = append(errs, d.SetLED(i, color.RGBA{}))
	}
	return errors.Join(errs...)
}

// Sweep plays the boot animation: 256 steps cycling over the LEDs with
// random colors fading to black, one step every delay, then all off.
// LED errors are ignored so a missing face never blocks startup.
func (d *Device) Sweep(rng *rand.Rand, delay time.Duration) {
	debug.Verbose("Joystick LED sweep (%d steps)", 256)
	fade := func(i int) uint8 {
		return uint8(rng.IntN(256) * (256 - i) / 256)
	}
	for i := 0; i < 256; i++ {
		_ = d.SetLED(i%NumLEDs, color.RGBA{R: fade(i), G: fade(i), B: fade(i)})
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	_ = d.LEDsOff()
}
