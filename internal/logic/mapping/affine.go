package mapping

import (
	"math"

	"github.com/cjeanneret/OrniPad/internal/config"
	"golang.org/x/exp/constraints"
)

// AffineMap maps v from [inLo, inHi] onto [outLo, outHi] with integer
// truncating division: outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo).
// Values outside the input range are extrapolated linearly.
// inLo must differ from inHi.
func AffineMap[T constraints.Signed](v, inLo, inHi, outLo, outHi T) T {
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Axis calibrates one raw joystick axis onto an angle range.
// OutLo may be greater than OutHi for an inverted axis.
type Axis struct {
	InLo, InHi   int
	OutLo, OutHi int
	Clamp        bool // saturate outside [InLo, InHi]; otherwise extrapolate
}

// Map converts a raw reading to an angle.
// With Clamp unset the extrapolated value is truncated to int8, so a
// reading far outside the calibration may wrap around and flip sign.
func (a Axis) Map(raw uint16) int8 {
	v := AffineMap(int(raw), a.InLo, a.InHi, a.OutLo, a.OutHi)
	if !a.Clamp {
		return int8(v)
	}
	lo, hi := min(a.OutLo, a.OutHi), max(a.OutLo, a.OutHi)
	return int8(Clamp(v, max(lo, math.MinInt8), min(hi, math.MaxInt8)))
}

// Attitude holds the roll (x) and pitch (y) calibrations.
type Attitude struct {
	Roll  Axis
	Pitch Axis
}

// NewAttitude builds the axis calibrations from the configuration.
// Pitch is inverted: pushing the stick forward (low y) pitches up.
func NewAttitude(cal config.CalibrationConfig) Attitude {
	clamp := cal.Policy != config.PolicyPassthrough
	return Attitude{
		Roll: Axis{
			InLo: cal.XMin, InHi: cal.XMax,
			OutLo: -cal.AngleLimit, OutHi: cal.AngleLimit,
			Clamp: clamp,
		},
		Pitch: Axis{
			InLo: cal.YMin, InHi: cal.YMax,
			OutLo: cal.AngleLimit, OutHi: -cal.AngleLimit,
			Clamp: clamp,
		},
	}
}

// Map returns roll and pitch for a raw x/y pair.
func (a Attitude) Map(x, y uint16) (roll, pitch int8) {
	return a.Roll.Map(x), a.Pitch.Map(y)
}
