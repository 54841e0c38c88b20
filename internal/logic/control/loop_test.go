package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cjeanneret/OrniPad/internal/config"
	"github.com/cjeanneret/OrniPad/internal/logic/mapping"
	"github.com/cjeanneret/OrniPad/internal/telemetry"
)

// scriptedJoystick returns queued samples; an empty queue misses.
type scriptedJoystick struct {
	samples []telemetry.RawSample
	reads   int
}

func (j *scriptedJoystick) ReadSample() (telemetry.RawSample, error) {
	j.reads++
	if len(j.samples) == 0 {
		return telemetry.RawSample{}, errors.New("no frame")
	}
	s := j.samples[0]
	j.samples = j.samples[1:]
	return s, nil
}

// scriptedButtons returns queued button states, then all released.
type scriptedButtons struct {
	states []telemetry.ButtonState
}

func (b *scriptedButtons) Read() telemetry.ButtonState {
	if len(b.states) == 0 {
		return telemetry.ButtonState{}
	}
	s := b.states[0]
	b.states = b.states[1:]
	return s
}

func testConfig(debounce Debounce) Config {
	return Config{
		Attitude: mapping.NewAttitude(config.CalibrationConfig{
			XMin: 280, XMax: 810, YMin: 250, YMax: 740,
			AngleLimit: 45, Policy: config.PolicyClamp,
		}),
		Step:        5,
		MaxFreq:     50,
		Debounce:    debounce,
		PollDelay:   50 * time.Millisecond,
		SettleDelay: 100 * time.Millisecond,
	}
}

var (
	pressA = telemetry.ButtonState{A: true}
	pressB = telemetry.ButtonState{B: true}
	pressC = telemetry.ButtonState{C: true}
	idle   = telemetry.ButtonState{}
)

func TestPoll_MapsAndPublishes(t *testing.T) {
	cases := []struct {
		name        string
		sample      telemetry.RawSample
		roll, pitch int8
	}{
		{"center", telemetry.RawSample{X: 545, Y: 495}, 0, 0},
		{"low", telemetry.RawSample{X: 280, Y: 250}, -45, 45},
		{"high", telemetry.RawSample{X: 810, Y: 740}, 45, -45},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := telemetry.NewState()
			joy := &scriptedJoystick{samples: []telemetry.RawSample{tc.sample}}
			l := NewLoop(joy, &scriptedButtons{}, state, testConfig(Settle))

			if !l.Poll() {
				t.Fatal("Poll should read a frame")
			}
			snap := state.Snapshot()
			if snap.Sample != tc.sample {
				t.Errorf("sample = %+v, want %+v", snap.Sample, tc.sample)
			}
			if snap.Control.Roll != tc.roll || snap.Control.Pitch != tc.pitch {
				t.Errorf("roll/pitch = %d/%d, want %d/%d", snap.Control.Roll, snap.Control.Pitch, tc.roll, tc.pitch)
			}
		})
	}
}

func TestPoll_MissedFramesKeepLastValue(t *testing.T) {
	state := telemetry.NewState()
	joy := &scriptedJoystick{samples: []telemetry.RawSample{{X: 810, Y: 250, Buttons: 1}}}
	l := NewLoop(joy, &scriptedButtons{}, state, testConfig(Settle))

	l.Poll()
	before := state.Snapshot()

	for i := 0; i < 10; i++ {
		if l.Poll() {
			t.Fatalf("poll %d should miss", i)
		}
	}
	if after := state.Snapshot(); after != before {
		t.Errorf("state changed on missed polls: %+v -> %+v", before, after)
	}
	if state.Samples() != 1 {
		t.Errorf("Samples = %d, want 1", state.Samples())
	}
	if joy.reads != 11 {
		t.Errorf("reads = %d, want 11", joy.reads)
	}
}

func TestButtons_SettleMode(t *testing.T) {
	state := telemetry.NewState()
	btn := &scriptedButtons{states: []telemetry.ButtonState{
		pressC, pressC, pressC, // held: repeats every sample
		pressB,
		pressA,
		pressB, // at 0: no-op
	}}
	l := NewLoop(&scriptedJoystick{}, btn, state, testConfig(Settle))

	want := []uint8{5, 10, 15, 10, 0, 0}
	for i, w := range want {
		l.Buttons()
		if got := state.Frequency(); got != w {
			t.Errorf("step %d: frequency = %d, want %d", i, got, w)
		}
	}
}

func TestButtons_EdgeMode(t *testing.T) {
	state := telemetry.NewState()
	btn := &scriptedButtons{states: []telemetry.ButtonState{
		pressC, pressC, pressC, // one long press
		idle,
		pressC,
		idle,
		pressB, pressB,
	}}
	l := NewLoop(&scriptedJoystick{}, btn, state, testConfig(Edge))

	want := []uint8{5, 5, 5, 5, 10, 10, 5, 5}
	for i, w := range want {
		l.Buttons()
		if got := state.Frequency(); got != w {
			t.Errorf("step %d: frequency = %d, want %d", i, got, w)
		}
	}
}

func TestButtons_CeilingAndPriority(t *testing.T) {
	state := telemetry.NewState()
	var states []telemetry.ButtonState
	for i := 0; i < 15; i++ {
		states = append(states, pressC)
	}
	states = append(states, telemetry.ButtonState{A: true, C: true})
	l := NewLoop(&scriptedJoystick{}, &scriptedButtons{states: states}, state, testConfig(Settle))

	for i := 0; i < 15; i++ {
		l.Buttons()
	}
	if state.Frequency() != 50 {
		t.Fatalf("frequency = %d, want 50 (ceiling)", state.Frequency())
	}
	if a := l.Buttons(); a != mapping.Reset {
		t.Errorf("A+C should reset, got %v", a)
	}
	if state.Frequency() != 0 {
		t.Errorf("frequency = %d, want 0", state.Frequency())
	}
	if snap := state.Snapshot(); !snap.Buttons.A || !snap.Buttons.C {
		t.Errorf("button flags not published: %+v", snap.Buttons)
	}
}

func TestStep_SettleDelayAfterAction(t *testing.T) {
	cfg := testConfig(Settle)
	l := NewLoop(&scriptedJoystick{}, &scriptedButtons{states: []telemetry.ButtonState{pressB, idle}}, telemetry.NewState(), cfg)

	if got := l.Step(); got != cfg.PollDelay+cfg.SettleDelay {
		t.Errorf("wait after action = %v, want %v", got, cfg.PollDelay+cfg.SettleDelay)
	}
	if got := l.Step(); got != cfg.PollDelay {
		t.Errorf("wait when idle = %v, want %v", got, cfg.PollDelay)
	}
}

func TestStep_EdgeModeNoSettle(t *testing.T) {
	cfg := testConfig(Edge)
	l := NewLoop(&scriptedJoystick{}, &scriptedButtons{states: []telemetry.ButtonState{pressC}}, telemetry.NewState(), cfg)
	if got := l.Step(); got != cfg.PollDelay {
		t.Errorf("edge mode wait = %v, want %v", got, cfg.PollDelay)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig(Settle)
	cfg.PollDelay = time.Millisecond
	state := telemetry.NewState()
	joy := &scriptedJoystick{samples: []telemetry.RawSample{{X: 545, Y: 495}}}
	l := NewLoop(joy, &scriptedButtons{}, state, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	if state.Samples() != 1 {
		t.Errorf("Samples = %d, want 1", state.Samples())
	}
}

func TestConfigFrom(t *testing.T) {
	c := &config.Config{
		Buttons:     config.ButtonsConfig{Debounce: config.DebounceEdge},
		Calibration: config.CalibrationConfig{XMin: 280, XMax: 810, YMin: 250, YMax: 740, AngleLimit: 45, FrequencyStep: 5, FrequencyMax: 50},
		Timing:      config.TimingConfig{PollDelayMs: 50, SettleDelayMs: 100},
	}
	got := ConfigFrom(c)
	if got.Debounce != Edge || got.Step != 5 || got.MaxFreq != 50 {
		t.Errorf("ConfigFrom = %+v", got)
	}
	if got.PollDelay != 50*time.Millisecond || got.SettleDelay != 100*time.Millisecond {
		t.Errorf("delays = %v/%v", got.PollDelay, got.SettleDelay)
	}
	if roll, pitch := got.Attitude.Map(280, 250); roll != -45 || pitch != 45 {
		t.Errorf("attitude map = %d/%d", roll, pitch)
	}
}
