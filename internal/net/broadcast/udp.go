// Package broadcast sends the control values to the remote robot.
package broadcast

import (
	"fmt"
	"net"

	"github.com/cjeanneret/OrniPad/internal/debug"
	"github.com/cjeanneret/OrniPad/internal/telemetry"
)

// Sender delivers one telemetry frame. Implementations never retry.
type Sender interface {
	Send(f telemetry.Frame) error
	Close() error
}

// UDPSender writes each frame as a single datagram to a fixed peer.
type UDPSender struct {
	dest string
	conn net.Conn
}

// NewUDPSender opens a datagram socket towards dest ("host:port").
// No packet is sent until the first Send.
func NewUDPSender(dest string) (*UDPSender, error) {
	conn, err := net.Dial("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("udp socket to %s: %w", dest, err)
	}
	return &UDPSender{dest: dest, conn: conn}, nil
}

// Dest returns the peer address.
func (s *UDPSender) Dest() string {
	return s.dest
}

// Send writes f as one datagram.
func (s *UDPSender) Send(f telemetry.Frame) error {
	debug.Frame(s.dest, f[:])
	if _, err := s.conn.Write(f[:]); err != nil {
		return fmt.Errorf("udp send to %s: %w", s.dest, err)
	}
	return nil
}

// Close releases the socket.
func (s *UDPSender) Close() error {
	return s.conn.Close()
}
