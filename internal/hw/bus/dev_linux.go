//go:build linux

package bus

import (
	"fmt"
	"sync"

	"github.com/cjeanneret/OrniPad/internal/debug"
	"golang.org/x/sys/unix"
)

// i2cSlave is the i2c-dev ioctl selecting the target address.
const i2cSlave = 0x0703

// Device is an I2C bus backed by a Linux /dev/i2c-N character device.
type Device struct {
	mu   sync.Mutex
	path string
	fd   int
	addr int // address currently selected, -1 = none
}

// OpenDevice opens a Linux i2c-dev bus such as /dev/i2c-1.
func OpenDevice(path string) (*Device, error) {
	debug.Info("Opening I2C bus %s", path)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w (is i2c enabled?)", path, err)
	}
	return &Device{path: path, fd: fd, addr: -1}, nil
}

// Tx writes w then reads len(r) bytes from the device at addr.
// A short read is reported as an error.
func (d *Device) Tx(addr uint16, w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fd < 0 {
		return fmt.Errorf("i2c %s: closed", d.path)
	}
	if int(addr) != d.addr {
		if err := unix.IoctlSetInt(d.fd, i2cSlave, int(addr)); err != nil {
			return fmt.Errorf("i2c select 0x%02x: %w", addr, err)
		}
		d.addr = int(addr)
	}
	if len(w) > 0 {
		debug.Bus("write", addr, w)
		if _, err := unix.Write(d.fd, w); err != nil {
			return fmt.Errorf("i2c write 0x%02x: %w", addr, err)
		}
	}
	if len(r) > 0 {
		n, err := unix.Read(d.fd, r)
		if err != nil {
			return fmt.Errorf("i2c read 0x%02x: %w", addr, err)
		}
		if n != len(r) {
			return fmt.Errorf("i2c read 0x%02x: got %d of %d bytes", addr, n, len(r))
		}
		debug.Bus("read", addr, r)
	}
	return nil
}

func (d *Device) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return readRegister(d, addr, reg, buf)
}

func (d *Device) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return writeRegister(d, addr, reg, buf)
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return nil
	}
	debug.Trace("I2C Close (%s)", d.path)
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
