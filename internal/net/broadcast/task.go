package broadcast

import (
	"errors"
	"sync/atomic"

	"github.com/cjeanneret/OrniPad/internal/debug"
	"github.com/cjeanneret/OrniPad/internal/telemetry"
)

// Stats counts frames handed to the senders.
type Stats struct {
	Sent   uint64
	Failed uint64
}

// Task turns the shared control values into frames on every tick.
type Task struct {
	state   *telemetry.State
	senders []Sender

	sent   atomic.Uint64
	failed atomic.Uint64
}

// NewTask creates a broadcast task. The first sender is the primary
// link; the others are mirrors.
func NewTask(state *telemetry.State, senders ...Sender) *Task {
	return &Task{state: state, senders: senders}
}

// Tick encodes the current values once and hands the frame to every
// sender. A failed send is counted and dropped.
func (t *Task) Tick() {
	f := telemetry.EncodeFrame(t.state.Control())
	for _, s := range t.senders {
		if err := s.Send(f); err != nil {
			t.failed.Add(1)
			debug.Trace("send failed: %v", err)
			continue
		}
		t.sent.Add(1)
	}
}

// Stats returns the counters so far.
func (t *Task) Stats() Stats {
	return Stats{Sent: t.sent.Load(), Failed: t.failed.Load()}
}

// Close closes every sender.
func (t *Task) Close() error {
	var errs []error
	for _, s := range t.senders {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
