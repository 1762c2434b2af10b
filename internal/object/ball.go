// Package object holds the entities that live on the playfield.
package object

import (
	"github.com/tomz197/ballcatch/internal/draw"
	"github.com/tomz197/ballcatch/internal/physics"
)

// Kind decides a ball's colour and score.
type Kind int

const (
	Benign  Kind = iota // Green, +1
	Penalty             // Red, -5
)

func (k Kind) String() string {
	if k == Penalty {
		return "penalty"
	}
	return "benign"
}

// Color returns the ball colour for kind k.
func (k Kind) Color() draw.Color {
	if k == Penalty {
		return draw.ColorRed
	}
	return draw.ColorGreen
}

// Ball is a falling target. Only Y changes after spawning.
type Ball struct {
	ID     uint64
	X, Y   float64
	Radius float64
	Speed  float64 // Pixels per tick
	Kind   Kind
}

var _ Object = (*Ball)(nil)

// Update moves the ball down by one tick. Balls that fall below the
// playfield are removed.
func (b *Ball) Update(ctx UpdateContext) bool {
	b.Y += b.Speed
	return b.Y > ctx.Playfield.Height
}

// Draw renders the ball as a filled disc.
func (b *Ball) Draw(ctx DrawContext) {
	ctx.Surface.FillCircle(b.X, b.Y, b.Radius, b.Kind.Color())
}

// Touches reports whether the point (x, y) catches the ball, allowing the
// given tolerance beyond its radius.
func (b *Ball) Touches(x, y, tolerance float64) bool {
	return physics.WithinReach(x, y, b.X, b.Y, b.Radius, tolerance)
}
