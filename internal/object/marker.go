package object

import (
	"github.com/tomz197/ballcatch/internal/draw"
)

// HandMarker shows where the game sees the player's reference point.
// X and Y are playfield coordinates (the camera x already mirrored), so
// the marker is drawn under the same transform as the balls.
type HandMarker struct {
	X, Y    float64
	Size    float64 // Half-length of the crosshair arms
	Visible bool
}

// NewHandMarker creates a hidden marker.
func NewHandMarker(size float64) *HandMarker {
	return &HandMarker{Size: size}
}

// MoveTo places the marker and makes it visible.
func (m *HandMarker) MoveTo(x, y float64) {
	m.X = x
	m.Y = y
	m.Visible = true
}

// Hide removes the marker until the next MoveTo.
func (m *HandMarker) Hide() {
	m.Visible = false
}

// Draw renders a crosshair with a dot in the middle.
func (m *HandMarker) Draw(ctx DrawContext) {
	if !m.Visible {
		return
	}
	ctx.Surface.DrawLine(draw.Point{X: m.X - m.Size, Y: m.Y}, draw.Point{X: m.X + m.Size, Y: m.Y}, draw.ColorCyan)
	ctx.Surface.DrawLine(draw.Point{X: m.X, Y: m.Y - m.Size}, draw.Point{X: m.X, Y: m.Y + m.Size}, draw.ColorCyan)
	ctx.Surface.FillCircle(m.X, m.Y, m.Size/4, draw.ColorCyan)
}
