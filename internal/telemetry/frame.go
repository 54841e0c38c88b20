package telemetry

import "fmt"

// FrameSize is the length of a telemetry datagram payload.
const FrameSize = 3

// Frame is the wire form of a ControlState:
// [frequency, roll as uint8, pitch as uint8].
type Frame [FrameSize]byte

// EncodeFrame serializes the control values.
func EncodeFrame(c ControlState) Frame {
	return Frame{c.Frequency, uint8(c.Roll), uint8(c.Pitch)}
}

// DecodeFrame rebuilds the control values from a received payload,
// reinterpreting roll and pitch as two's complement.
func DecodeFrame(p []byte) (ControlState, error) {
	if len(p) != FrameSize {
		return ControlState{}, fmt.Errorf("telemetry frame: want %d bytes, got %d", FrameSize, len(p))
	}
	return ControlState{
		Frequency: p[0],
		Roll:      int8(p[1]),
		Pitch:     int8(p[2]),
	}, nil
}
