// Package bus provides I2C bus access for the joystick face and the
// character display, either through Linux i2c-dev or an in-memory mock.
package bus

import (
	"github.com/cjeanneret/OrniPad/internal/debug"
	"tinygo.org/x/drivers"
)

// Bus is an I2C bus that can be released.
type Bus interface {
	drivers.I2C
	Close() error
}

// Open returns the bus for device. If mock is true, responder serves
// every transaction instead of the kernel device (it may be nil).
func Open(device string, mock bool, responder Responder) (Bus, error) {
	if mock {
		debug.Info("Using MOCK I2C bus (development mode)")
		return NewMock(responder), nil
	}
	d, err := OpenDevice(device)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// readRegister and writeRegister implement the register helpers of
// drivers.I2C on top of Tx.
func readRegister(b drivers.I2C, addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{reg}, buf)
}

func writeRegister(b drivers.I2C, addr uint8, reg uint8, buf []byte) error {
	w := make([]byte, 1+len(buf))
	w[0] = reg
	copy(w[1:], buf)
	return b.Tx(uint16(addr), w, nil)
}
