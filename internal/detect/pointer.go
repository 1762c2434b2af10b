package detect

import (
	"context"
	"sync"

	"github.com/tomz197/ballcatch/internal/capture"
)

// palmHalfSpan is the distance from the palm centre to the wrist and to the
// index knuckle of the synthetic hand.
const palmHalfSpan = 30.0

// Pointer is a keyboard-driven virtual hand. It reports the same keypoints
// a camera detector would, so the game treats it like a real hand.
//
// Positions are camera coordinates. The playfield is drawn mirrored, so a
// pointer moved right by the keys also shows up further right on screen.
type Pointer struct {
	mu            sync.Mutex
	width, height float64
	camX, camY    float64
	hidden        bool
}

var _ Detector = (*Pointer)(nil)

// NewPointer creates a pointer centred on a field of the given size.
func NewPointer(width, height float64) *Pointer {
	return &Pointer{
		width:  width,
		height: height,
		camX:   width / 2,
		camY:   height / 2,
	}
}

// Move shifts the pointer by (dx, dy), clamped to the field.
func (p *Pointer) Move(dx, dy float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.camX = clamp(p.camX+dx, 0, p.width)
	p.camY = clamp(p.camY+dy, 0, p.height)
}

// SetPosition places the pointer at (x, y).
func (p *Pointer) SetPosition(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.camX = clamp(x, 0, p.width)
	p.camY = clamp(y, 0, p.height)
}

// Position returns the pointer position.
func (p *Pointer) Position() (x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.camX, p.camY
}

// SetHidden makes the pointer report no hand, as if it left the frame.
func (p *Pointer) SetHidden(hidden bool) {
	p.mu.Lock()
	p.hidden = hidden
	p.mu.Unlock()
}

// EstimateHands returns a single hand centred on the pointer. The frame is
// not inspected.
func (p *Pointer) EstimateHands(ctx context.Context, _ capture.Frame) ([]Hand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	x, y, hidden := p.camX, p.camY, p.hidden
	p.mu.Unlock()

	if hidden {
		return nil, nil
	}
	return []Hand{{
		Keypoints: []Keypoint{
			{Name: Wrist, X: x, Y: y + palmHalfSpan, Score: 1},
			{Name: IndexFingerMCP, X: x, Y: y - palmHalfSpan, Score: 1},
			{Name: IndexFingerTip, X: x, Y: y, Score: 1},
		},
	}}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
