package joyface

import (
	"encoding/binary"
	"math"
	"sync"
	"time"
)

// Simulator answers joystick reports on a mock bus so the controller
// can run without hardware. The stick traces a slow circle around the
// calibration center.
type Simulator struct {
	mu      sync.Mutex
	start   time.Time
	now     func() time.Time
	CenterX float64
	CenterY float64
	Radius  float64
	Period  time.Duration
	LEDs    [NumLEDs][3]byte
}

// NewSimulator returns a simulator centered on the default calibration.
func NewSimulator() *Simulator {
	return &Simulator{
		start:   time.Now(),
		now:     time.Now,
		CenterX: 545,
		CenterY: 495,
		Radius:  240,
		Period:  8 * time.Second,
	}
}

// Respond implements bus.Responder for the joystick address.
func (s *Simulator) Respond(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(w) == 4 && int(w[0]) < NumLEDs {
		copy(s.LEDs[w[0]][:], w[1:])
	}
	if len(r) == 0 {
		return nil
	}

	phase := 2 * math.Pi * float64(s.now().Sub(s.start)) / float64(s.Period)
	x := uint16(s.CenterX + s.Radius*math.Cos(phase))
	y := uint16(s.CenterY + s.Radius*math.Sin(phase))

	var frame [FrameSize]byte
	binary.LittleEndian.PutUint16(frame[0:2], y)
	binary.LittleEndian.PutUint16(frame[2:4], x)
	copy(r, frame[:])
	return nil
}
