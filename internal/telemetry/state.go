// Package telemetry holds the shared control state published by the
// polling loop and read by the periodic consumers, and the wire frame
// built from it.
package telemetry

import "sync/atomic"

// RawSample is one decoded joystick frame.
type RawSample struct {
	X       uint16
	Y       uint16
	Buttons uint8 // joystick face button byte
}

// ButtonState is the sampled state of the three frequency buttons.
type ButtonState struct {
	A bool // reset
	B bool // decrement
	C bool // increment
}

// ControlState is the derived actuation intent.
type ControlState struct {
	Roll      int8
	Pitch     int8
	Frequency uint8
}

// Snapshot is a field-by-field copy of the shared state.
// Fields are read independently: a snapshot may combine a fresh roll
// with a stale pitch, but never a half-written field.
type Snapshot struct {
	Sample  RawSample
	Buttons ButtonState
	Control ControlState
}

// State is the single-writer, multi-reader telemetry block.
// Only the polling loop calls the Store methods; any goroutine may
// call Snapshot. The zero value is ready to use.
type State struct {
	x       atomic.Uint32
	y       atomic.Uint32
	face    atomic.Uint32
	btnA    atomic.Bool
	btnB    atomic.Bool
	btnC    atomic.Bool
	roll    atomic.Int32
	pitch   atomic.Int32
	freq    atomic.Uint32
	samples atomic.Uint64 // successful polls, for diagnostics
}

// NewState returns a zeroed state.
func NewState() *State {
	return &State{}
}

// StoreSample publishes a freshly decoded frame.
func (s *State) StoreSample(r RawSample) {
	s.x.Store(uint32(r.X))
	s.y.Store(uint32(r.Y))
	s.face.Store(uint32(r.Buttons))
	s.samples.Add(1)
}

// StoreButtons publishes the sampled frequency buttons.
func (s *State) StoreButtons(b ButtonState) {
	s.btnA.Store(b.A)
	s.btnB.Store(b.B)
	s.btnC.Store(b.C)
}

// StoreAttitude publishes roll and pitch.
func (s *State) StoreAttitude(roll, pitch int8) {
	s.roll.Store(int32(roll))
	s.pitch.Store(int32(pitch))
}

// StoreFrequency publishes the flap frequency.
func (s *State) StoreFrequency(f uint8) {
	s.freq.Store(uint32(f))
}

// Sample returns the latest raw sample.
func (s *State) Sample() RawSample {
	return RawSample{
		X:       uint16(s.x.Load()),
		Y:       uint16(s.y.Load()),
		Buttons: uint8(s.face.Load()),
	}
}

// Control returns the latest derived control values.
func (s *State) Control() ControlState {
	return ControlState{
		Roll:      int8(s.roll.Load()),
		Pitch:     int8(s.pitch.Load()),
		Frequency: uint8(s.freq.Load()),
	}
}

// Frequency returns the current flap frequency.
func (s *State) Frequency() uint8 {
	return uint8(s.freq.Load())
}

// Samples returns how many frames have been published.
func (s *State) Samples() uint64 {
	return s.samples.Load()
}

// Snapshot reads every field once. No lock is taken.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Sample: s.Sample(),
		Buttons: ButtonState{
			A: s.btnA.Load(),
			B: s.btnB.Load(),
			C: s.btnC.Load(),
		},
		Control: s.Control(),
	}
}
