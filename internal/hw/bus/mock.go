package bus

import (
	"errors"
	"sync"

	"github.com/cjeanneret/OrniPad/internal/debug"
)

// ErrNoDevice is returned by the mock when nothing answers at an address.
var ErrNoDevice = errors.New("i2c: no device at address")

// Responder serves one mock transaction: it receives the written bytes
// and fills r. A nil Responder answers nothing.
type Responder func(addr uint16, w, r []byte) error

// Transfer is one recorded transaction.
type Transfer struct {
	Addr uint16
	W    []byte
	R    int // bytes requested
}

// Mock is an in-memory bus that records every transfer.
type Mock struct {
	mu        sync.Mutex
	respond   Responder
	transfers []Transfer
	closed    bool
}

// NewMock creates a mock bus served by respond.
func NewMock(respond Responder) *Mock {
	return &Mock{respond: respond}
}

// Tx records the transfer and forwards it to the responder.
func (m *Mock) Tx(addr uint16, w, r []byte) error {
	m.mu.Lock()
	m.transfers = append(m.transfers, Transfer{Addr: addr, W: append([]byte(nil), w...), R: len(r)})
	respond, closed := m.respond, m.closed
	m.mu.Unlock()

	if closed {
		return errors.New("i2c: bus closed")
	}
	if len(w) > 0 {
		debug.Bus("write", addr, w)
	}
	if respond == nil {
		return ErrNoDevice
	}
	if err := respond(addr, w, r); err != nil {
		return err
	}
	if len(r) > 0 {
		debug.Bus("read", addr, r)
	}
	return nil
}

func (m *Mock) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return readRegister(m, addr, reg, buf)
}

func (m *Mock) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return writeRegister(m, addr, reg, buf)
}

// SetResponder replaces the transaction handler.
func (m *Mock) SetResponder(respond Responder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respond = respond
}

// Transfers returns a copy of the recorded transactions.
func (m *Mock) Transfers() []Transfer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Transfer(nil), m.transfers...)
}

// Reset forgets the recorded transactions.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	debug.Trace("I2C Close (mock)")
	return nil
}
