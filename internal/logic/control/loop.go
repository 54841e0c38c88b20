package control

import (
	"context"
	"runtime"
	"time"

	"github.com/cjeanneret/OrniPad/internal/config"
	"github.com/cjeanneret/OrniPad/internal/debug"
	"github.com/cjeanneret/OrniPad/internal/logic/mapping"
	"github.com/cjeanneret/OrniPad/internal/sched"
	"github.com/cjeanneret/OrniPad/internal/telemetry"
)

// SampleReader is the joystick side of the bus.
type SampleReader interface {
	// ReadSample blocks for one bus transaction. Any error means no
	// frame this iteration.
	ReadSample() (telemetry.RawSample, error)
}

// ButtonReader samples the frequency buttons.
type ButtonReader interface {
	Read() telemetry.ButtonState
}

// Debounce selects how button presses are turned into actions.
type Debounce int

const (
	// Settle acts whenever a button is held and then waits SettleDelay
	// before the next sample. A long press repeats once per delay.
	Settle Debounce = iota
	// Edge acts only when a button goes from released to pressed.
	Edge
)

// Config holds the loop parameters.
type Config struct {
	Attitude    mapping.Attitude
	Step        uint8         // frequency step
	MaxFreq     uint8         // frequency ceiling
	Debounce    Debounce      // button debounce mode
	PollDelay   time.Duration // pause after each iteration
	SettleDelay time.Duration // pause after a button action (Settle mode)
}

// ConfigFrom builds the loop parameters from the application config.
func ConfigFrom(c *config.Config) Config {
	debounce := Settle
	if c.Buttons.Debounce == config.DebounceEdge {
		debounce = Edge
	}
	return Config{
		Attitude:    mapping.NewAttitude(c.Calibration),
		Step:        uint8(c.Calibration.FrequencyStep),
		MaxFreq:     uint8(c.Calibration.FrequencyMax),
		Debounce:    debounce,
		PollDelay:   c.PollDelay(),
		SettleDelay: c.SettleDelay(),
	}
}

// Loop is the polling side of the pipeline: it reads the joystick,
// maps it to roll/pitch, runs the frequency counter and publishes the
// results. It is the only writer of the shared state.
type Loop struct {
	joy     SampleReader
	buttons ButtonReader
	state   *telemetry.State
	cfg     Config
	freq    *mapping.Frequency
	prev    telemetry.ButtonState
}

// NewLoop creates a polling loop publishing into state.
func NewLoop(joy SampleReader, buttons ButtonReader, state *telemetry.State, cfg Config) *Loop {
	return &Loop{
		joy:     joy,
		buttons: buttons,
		state:   state,
		cfg:     cfg,
		freq:    mapping.NewFrequency(cfg.Step, cfg.MaxFreq),
	}
}

// Poll reads one joystick frame and publishes the sample and the
// mapped attitude. A missed frame leaves the state untouched.
// It reports whether a frame was read.
func (l *Loop) Poll() bool {
	s, err := l.joy.ReadSample()
	if err != nil {
		return false
	}
	debug.Sample(s.X, s.Y, s.Buttons)
	l.state.StoreSample(s)
	l.state.StoreAttitude(l.cfg.Attitude.Map(s.X, s.Y))
	return true
}

// Buttons samples the frequency buttons, applies at most one action
// and publishes the result. It returns the action taken.
func (l *Loop) Buttons() mapping.Action {
	b := l.buttons.Read()
	l.state.StoreButtons(b)

	var action mapping.Action
	switch l.cfg.Debounce {
	case Edge:
		action = mapping.ActionFor(b.A && !l.prev.A, b.B && !l.prev.B, b.C && !l.prev.C)
	default:
		action = mapping.ActionFor(b.A, b.B, b.C)
	}
	l.prev = b

	if action == mapping.None {
		return action
	}
	if l.freq.Apply(action) {
		debug.Button(action.String(), l.freq.Value())
	}
	l.state.StoreFrequency(l.freq.Value())
	return action
}

// Step runs one iteration and returns how long to wait before the next.
func (l *Loop) Step() time.Duration {
	l.Poll()
	wait := l.cfg.PollDelay
	if l.Buttons() != mapping.None && l.cfg.Debounce == Settle {
		wait += l.cfg.SettleDelay
	}
	return wait
}

// Run polls until ctx is done. The goroutine is pinned to its own OS
// thread so bus transactions are not interleaved with display or
// network work.
func (l *Loop) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	debug.Verbose("Polling loop started (delay %v, settle %v)", l.cfg.PollDelay, l.cfg.SettleDelay)
	for {
		if !sched.Sleep(ctx, l.Step()) {
			break
		}
	}
	debug.Verbose("Polling loop stopped after %d samples", l.state.Samples())
}
