//go:build !linux

package bus

import (
	"errors"
	"fmt"
)

// Device is unavailable outside Linux; use the mock bus.
type Device struct{}

// OpenDevice always fails on this platform.
func OpenDevice(path string) (*Device, error) {
	return nil, fmt.Errorf("open %s: %w", path, errors.ErrUnsupported)
}

func (d *Device) Tx(addr uint16, w, r []byte) error { return errors.ErrUnsupported }

func (d *Device) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return errors.ErrUnsupported
}

func (d *Device) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return errors.ErrUnsupported
}

func (d *Device) Close() error { return nil }
