// Package draw renders the playfield to a terminal using half-block
// characters and ANSI colours.
package draw

import "strconv"

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Color is a palette index. ColorNone marks an empty pixel.
type Color uint8

const (
	ColorNone Color = iota
	ColorGreen
	ColorRed
	ColorCyan
	ColorYellow
	ColorWhite
)

// ANSI escape sequences used for text overlays.
const (
	ColorReset      = "\033[0m"
	ColorBrightCyan = "\033[96m"
)

// ansiCodes holds the SGR colour number offset (30 + n for foreground,
// 40 + n for background).
var ansiCodes = [...]int{
	ColorNone:   9, // default
	ColorGreen:  2,
	ColorRed:    1,
	ColorCyan:   6,
	ColorYellow: 3,
	ColorWhite:  7,
}

// sgr builds the escape sequence selecting fg on bg.
func sgr(fg, bg Color) string {
	return "\033[" + strconv.Itoa(30+ansiCodes[fg]) + ";" + strconv.Itoa(40+ansiCodes[bg]) + "m"
}

// Transform is a horizontal affine transform applied to logical x
// coordinates before drawing: x' = ScaleX*x + TranslateX.
type Transform struct {
	ScaleX     float64
	TranslateX float64
}

// Identity returns the transform that leaves coordinates untouched.
func Identity() Transform {
	return Transform{ScaleX: 1}
}

// Mirror returns the transform that flips a field of the given width
// horizontally (scale -1, then shift back into view).
func Mirror(width float64) Transform {
	return Transform{ScaleX: -1, TranslateX: width}
}

// Apply maps a logical x coordinate through the transform.
func (t Transform) Apply(x float64) float64 {
	return t.ScaleX*x + t.TranslateX
}

// Surface is an immediate-mode drawing target in logical coordinates.
type Surface interface {
	Clear()
	SetTransform(t Transform)
	FillCircle(x, y, radius float64, c Color)
	Plot(x, y float64, c Color)
	DrawLine(p1, p2 Point, c Color)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
