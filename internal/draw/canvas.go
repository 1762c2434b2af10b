package draw

import (
	"io"
	"math"
	"strings"
)

// cell is the pair of sub-pixels shown by one terminal character.
type cell struct {
	top, bottom Color
}

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Supports scaling from logical coordinates to actual terminal pixels.
type Canvas struct {
	termWidth      int     // Actual terminal columns
	termHeight     int     // Actual terminal rows
	subPixelHeight int     // termHeight * 2
	pixels         []Color // Flat slice: [y * termWidth + x]

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	transform Transform // Applied to logical x before scaling

	// Offset for centering the render area when terminal is larger than max resolution.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	// Diff rendering: cells emitted last frame, and cells overwritten by text.
	prev      []cell
	dirty     []bool
	forceFull bool

	renderBuf strings.Builder
}

// Ensure Canvas satisfies Surface.
var _ Surface = (*Canvas)(nil)

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by game objects.
// termWidth/Height are the actual terminal dimensions.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		transform:     Identity(),
	}
	c.allocate(termWidth, termHeight)
	return c
}

func (c *Canvas) allocate(termWidth, termHeight int) {
	if termWidth < 0 {
		termWidth = 0
	}
	if termHeight < 0 {
		termHeight = 0
	}
	c.termWidth = termWidth
	c.termHeight = termHeight
	c.subPixelHeight = termHeight * 2
	c.pixels = make([]Color, c.subPixelHeight*termWidth)
	c.prev = make([]cell, termWidth*termHeight)
	c.dirty = make([]bool, termWidth*termHeight)
	c.forceFull = true
	if c.logicalWidth > 0 {
		c.scaleX = float64(termWidth) / c.logicalWidth
	}
	if c.logicalHeight > 0 {
		c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
	}
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.allocate(termWidth, termHeight)
	}
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.forceFull = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// SetTransform sets the horizontal transform used by subsequent drawing calls.
func (c *Canvas) SetTransform(t Transform) {
	c.transform = t
}

// ForceRedraw makes the next Render emit every cell.
func (c *Canvas) ForceRedraw() {
	c.forceFull = true
}

// MarkTextDirty marks n cells starting at the 1-based (col, row) as
// overwritten by text so the next Render repaints them.
func (c *Canvas) MarkTextDirty(col, row, n int) {
	if row < 1 || row > c.termHeight {
		return
	}
	for x := col - 1; x < col-1+n; x++ {
		if x >= 0 && x < c.termWidth {
			c.dirty[(row-1)*c.termWidth+x] = true
		}
	}
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, col Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = col
	}
}

// Pixel returns the colour at actual pixel coordinates, or ColorNone when
// out of range.
func (c *Canvas) Pixel(x, y int) Color {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		return c.pixels[y*c.termWidth+x]
	}
	return ColorNone
}

// toPixel maps logical coordinates through the transform and scale.
func (c *Canvas) toPixel(x, y float64) (int, int) {
	return int(math.Round(c.transform.Apply(x) * c.scaleX)), int(math.Round(y * c.scaleY))
}

// Plot sets a single pixel at logical coordinates.
func (c *Canvas) Plot(x, y float64, col Color) {
	px, py := c.toPixel(x, y)
	c.setPixel(px, py, col)
}

// FillCircle fills a disc given in logical coordinates. Pixels are tested
// at their centres in logical space, so the disc stays round even when the
// horizontal and vertical scales differ.
func (c *Canvas) FillCircle(x, y, radius float64, col Color) {
	if c.scaleX <= 0 || c.scaleY <= 0 {
		return
	}
	cx := c.transform.Apply(x)
	cy := y
	r2 := radius * radius

	minX := int(math.Floor((cx - radius) * c.scaleX))
	maxX := int(math.Ceil((cx + radius) * c.scaleX))
	minY := int(math.Floor((cy - radius) * c.scaleY))
	maxY := int(math.Ceil((cy + radius) * c.scaleY))

	for py := minY; py <= maxY; py++ {
		ly := (float64(py) + 0.5) / c.scaleY
		dy := ly - cy
		for px := minX; px <= maxX; px++ {
			lx := (float64(px) + 0.5) / c.scaleX
			dx := lx - cx
			if dx*dx+dy*dy <= r2 {
				c.setPixel(px, py, col)
			}
		}
	}

	// Small discs on a coarse terminal still get their centre pixel.
	c.setPixel(int(cx*c.scaleX), int(cy*c.scaleY), col)
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get transformed and scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 Point, col Color) {
	x1, y1 := c.toPixel(p1.X, p1.Y)
	x2, y2 := c.toPixel(p2.X, p2.Y)

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1, col)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// Render outputs the canvas to the writer using coloured half-block
// characters. Only cells that changed since the previous Render, or that
// were marked dirty by text overlays, are written.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	lastSGR := ""
	var num [20]byte

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := (row*2 + 1) * c.termWidth

		for col := 0; col < c.termWidth; col++ {
			idx := row*c.termWidth + col
			cur := cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]}
			if !c.forceFull && !c.dirty[idx] && cur == c.prev[idx] {
				continue
			}
			c.prev[idx] = cur
			c.dirty[idx] = false

			var ch rune
			fg, bg := cur.top, ColorNone
			switch {
			case cur.top == ColorNone && cur.bottom == ColorNone:
				ch = ' '
			case cur.top == cur.bottom:
				ch = BlockFull
			case cur.bottom == ColorNone:
				ch = BlockUpperHalf
			case cur.top == ColorNone:
				ch = BlockLowerHalf
				fg = cur.bottom
			default:
				ch = BlockUpperHalf
				bg = cur.bottom
			}

			appendCursor(&c.renderBuf, &num, row+1+c.offsetRow, col+1+c.offsetCol)

			if code := sgr(fg, bg); code != lastSGR {
				c.renderBuf.WriteString(code)
				lastSGR = code
			}
			c.renderBuf.WriteRune(ch)
		}
	}
	if lastSGR != "" {
		c.renderBuf.WriteString(ColorReset)
	}
	c.forceFull = false

	_ = writeChunks(w, c.renderBuf.String())
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	line := strings.Repeat("─", c.termWidth)

	var num [20]byte
	move := func(row, col int) {
		appendCursor(&buf, &num, row, col)
	}

	if hasV {
		if hasH {
			move(top, left)
			buf.WriteString("┌" + line + "┐")
			move(bottom, left)
			buf.WriteString("└" + line + "┘")
		} else {
			move(top, c.offsetCol+1)
			buf.WriteString(line)
			move(bottom, c.offsetCol+1)
			buf.WriteString(line)
		}
	}

	if hasH {
		startRow, endRow := top+1, bottom
		if !hasV {
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			move(row, left)
			buf.WriteString("│")
			move(row, right)
			buf.WriteString("│")
		}
	}

	io.WriteString(w, buf.String())
}

// LogicalWidth returns the logical width (target resolution).
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height (target resolution).
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to 1-based terminal position (col, row).
// The current transform is applied, so overlays line up with drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(x, y)
	return px + 1, py/2 + 1
}
