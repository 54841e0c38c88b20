package web

import (
	"github.com/cjeanneret/OrniPad/internal/telemetry"
)

// TelemetryView is the JSON form of a telemetry snapshot.
type TelemetryView struct {
	X         uint16  `json:"x"`
	Y         uint16  `json:"y"`
	Face      uint8   `json:"face_buttons"`
	A         bool    `json:"a"`
	B         bool    `json:"b"`
	C         bool    `json:"c"`
	Roll      int8    `json:"roll"`
	Pitch     int8    `json:"pitch"`
	Frequency uint8   `json:"frequency"`
	Hz        float64 `json:"frequency_hz"`
	Samples   uint64  `json:"samples"`
}

// SnapshotSource is read by the monitor; it never writes back.
type SnapshotSource interface {
	Snapshot() telemetry.Snapshot
	Samples() uint64
}

// ViewOf builds the JSON view of the current state.
func ViewOf(src SnapshotSource) TelemetryView {
	s := src.Snapshot()
	return TelemetryView{
		X:         s.Sample.X,
		Y:         s.Sample.Y,
		Face:      s.Sample.Buttons,
		A:         s.Buttons.A,
		B:         s.Buttons.B,
		C:         s.Buttons.C,
		Roll:      s.Control.Roll,
		Pitch:     s.Control.Pitch,
		Frequency: s.Control.Frequency,
		Hz:        float64(s.Control.Frequency) / 10,
		Samples:   src.Samples(),
	}
}

// MonitorTask pushes the current state to monitor clients on every tick.
type MonitorTask struct {
	src         SnapshotSource
	broadcaster *StatusBroadcaster
	last        TelemetryView
	published   bool
}

// NewMonitorTask creates a monitor publisher.
func NewMonitorTask(src SnapshotSource, b *StatusBroadcaster) *MonitorTask {
	return &MonitorTask{src: src, broadcaster: b}
}

// Tick publishes the state when someone is listening and it changed
// since the last publish. The sample counter alone does not count as a change.
func (m *MonitorTask) Tick() {
	if m.broadcaster.Clients() == 0 {
		m.published = false
		return
	}
	v := ViewOf(m.src)
	cmp := v
	cmp.Samples = m.last.Samples
	if m.published && cmp == m.last {
		return
	}
	m.last = v
	m.published = true
	m.broadcaster.BroadcastTelemetry(v)
}
