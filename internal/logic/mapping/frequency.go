package mapping

// Action is a frequency button command.
type Action int

const (
	None      Action = iota
	Reset            // button A
	Decrement        // button B
	Increment        // button C
)

func (a Action) String() string {
	switch a {
	case Reset:
		return "A (reset)"
	case Decrement:
		return "B (-)"
	case Increment:
		return "C (+)"
	default:
		return "none"
	}
}

// ActionFor picks the command for a button sample.
// Buttons are mutually exclusive: A wins over B, B over C.
func ActionFor(a, b, c bool) Action {
	switch {
	case a:
		return Reset
	case b:
		return Decrement
	case c:
		return Increment
	default:
		return None
	}
}

// Frequency is a saturating step counter.
// Its value is always a multiple of step within [0, max].
type Frequency struct {
	value uint8
	step  uint8
	max   uint8
}

// NewFrequency creates a counter at 0. A ceiling that is not a
// multiple of step is rounded down.
func NewFrequency(step, ceiling uint8) *Frequency {
	if step == 0 {
		step = 1
	}
	return &Frequency{step: step, max: ceiling - ceiling%step}
}

// Value returns the current frequency.
func (f *Frequency) Value() uint8 {
	return f.value
}

// Apply executes a command and reports whether the value changed.
func (f *Frequency) Apply(a Action) bool {
	prev := f.value
	switch a {
	case Reset:
		f.value = 0
	case Decrement:
		if f.value >= f.step {
			f.value -= f.step
		}
	case Increment:
		if f.value < f.max {
			f.value += f.step
		}
	}
	return f.value != prev
}
