package render

import (
	"github.com/cjeanneret/OrniPad/internal/hw/display"
	"github.com/cjeanneret/OrniPad/internal/telemetry"
)

// Title is drawn once at startup.
const Title = "OrnibiBot Controller"

// Point is a cursor position on a surface.
type Point struct {
	X, Y int16
}

// Layout places each line on the surface. Formats end with padding so a
// shorter value overwrites the previous text.
type Layout struct {
	Title     *Point // nil = no title line
	Joystick  Point
	Frequency Point
	Roll      Point
	Pitch     Point

	JoystickFormat  string
	FrequencyFormat string
	RollFormat      string
	PitchFormat     string
}

// ConsoleLayout suits a terminal.
func ConsoleLayout() Layout {
	return Layout{
		Title:           &Point{X: 2, Y: 0},
		Joystick:        Point{X: 0, Y: 2},
		Frequency:       Point{X: 0, Y: 4},
		Roll:            Point{X: 0, Y: 5},
		Pitch:           Point{X: 0, Y: 6},
		JoystickFormat:  "Joystick: x:%d y:%d btn:%d    ",
		FrequencyFormat: "Frequency: %.1f   ",
		RollFormat:      "Roll: %d deg    ",
		PitchFormat:     "Pitch: %d deg    ",
	}
}

// CharLCDLayout suits a 20x4 character LCD: one value per line, no title.
func CharLCDLayout() Layout {
	return Layout{
		Joystick:        Point{X: 0, Y: 0},
		Frequency:       Point{X: 0, Y: 1},
		Roll:            Point{X: 0, Y: 2},
		Pitch:           Point{X: 0, Y: 3},
		JoystickFormat:  "x%-4d y%-4d b%-3d   ",
		FrequencyFormat: "Frequency: %.1f   ",
		RollFormat:      "Roll: %d deg    ",
		PitchFormat:     "Pitch: %d deg    ",
	}
}

// Renderer draws telemetry snapshots on a surface. It is the only user
// of the surface once started.
type Renderer struct {
	surface display.Surface
	layout  Layout
}

// NewRenderer creates a renderer.
func NewRenderer(s display.Surface, layout Layout) *Renderer {
	return &Renderer{surface: s, layout: layout}
}

// DrawTitle clears the surface and writes the title line.
func (r *Renderer) DrawTitle() {
	r.surface.Clear()
	if t := r.layout.Title; t != nil {
		r.surface.SetCursor(t.X, t.Y)
		r.surface.Printf("%s", Title)
	}
}

// Render overwrites every value line. Frequency is shown in tenths.
func (r *Renderer) Render(s telemetry.Snapshot) {
	l := r.layout
	r.surface.SetCursor(l.Joystick.X, l.Joystick.Y)
	r.surface.Printf(l.JoystickFormat, s.Sample.X, s.Sample.Y, s.Sample.Buttons)

	r.surface.SetCursor(l.Frequency.X, l.Frequency.Y)
	r.surface.Printf(l.FrequencyFormat, float64(s.Control.Frequency)*0.1)

	r.surface.SetCursor(l.Roll.X, l.Roll.Y)
	r.surface.Printf(l.RollFormat, s.Control.Roll)

	r.surface.SetCursor(l.Pitch.X, l.Pitch.Y)
	r.surface.Printf(l.PitchFormat, s.Control.Pitch)
}

// Tick renders the current state; it is the body of the display task.
func (r *Renderer) Tick(state *telemetry.State) func() {
	return func() {
		r.Render(state.Snapshot())
	}
}
