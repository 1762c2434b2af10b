package draw

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// maxChunkSize caps a single write so frames stay below a typical MTU when
// the terminal is at the far end of an SSH connection.
const maxChunkSize = 1400

// appendCursor appends a cursor position sequence for the 1-based row and
// col. num is scratch space so no allocation happens per cell.
func appendCursor(b *strings.Builder, num *[20]byte, row, col int) {
	b.WriteString(termenv.CSI)
	b.Write(strconv.AppendInt(num[:0], int64(row), 10))
	b.WriteByte(';')
	b.Write(strconv.AppendInt(num[:0], int64(col), 10))
	b.WriteByte('H')
}

// writeChunks writes data to w in pieces of at most maxChunkSize bytes.
func writeChunks(w io.Writer, data string) error {
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := io.WriteString(w, data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// ChunkWriter collects the text overlays of one frame (HUD, menus, panels)
// and sends them in a single buffered flush. Coordinates passed to it are
// canvas coordinates; the centering offset is added on output.
type ChunkWriter struct {
	frame  strings.Builder
	out    *bufio.Writer
	num    [20]byte
	offCol int
	offRow int
}

var _ io.Writer = (*ChunkWriter)(nil)

// NewChunkWriter returns a ChunkWriter flushing to w with the given
// centering offset.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	cw := &ChunkWriter{out: bufio.NewWriterSize(w, 8192)}
	cw.SetOffset(offsetCol, offsetRow)
	return cw
}

// SetOffset changes the centering offset, usually after a resize.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol, cw.offRow = offsetCol, offsetRow
}

// MoveCursor queues a jump to the 1-based canvas cell (col, row).
func (cw *ChunkWriter) MoveCursor(col, row int) {
	appendCursor(&cw.frame, &cw.num, row+cw.offRow, col+cw.offCol)
}

func (cw *ChunkWriter) Write(p []byte) (int, error) {
	return cw.frame.Write(p)
}

// WriteString queues s at the current cursor position.
func (cw *ChunkWriter) WriteString(s string) {
	cw.frame.WriteString(s)
}

// WriteAt queues s starting at the 1-based canvas cell (col, row).
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.MoveCursor(col, row)
	cw.frame.WriteString(s)
}

// WriteBlock queues a multi-line block, such as a rendered lipgloss panel,
// with its top-left corner at (col, row). It returns the number of lines.
func (cw *ChunkWriter) WriteBlock(col, row int, block string) int {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		cw.WriteAt(col, row+i, line)
	}
	return len(lines)
}

// Len reports how many bytes are queued.
func (cw *ChunkWriter) Len() int {
	return cw.frame.Len()
}

// Flush sends the queued frame and empties the queue.
func (cw *ChunkWriter) Flush() error {
	data := cw.frame.String()
	cw.frame.Reset()
	if err := writeChunks(cw.out, data); err != nil {
		return err
	}
	return cw.out.Flush()
}

// TermSizeFunc reports the terminal size in cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc asks the terminal behind os.Stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// ClearScreen erases the display and homes the cursor.
func ClearScreen(w io.Writer) {
	_, _ = io.WriteString(w, termenv.CSI+"H"+termenv.CSI+"2J")
}

// HideCursor makes the cursor invisible.
func HideCursor(w io.Writer) {
	_, _ = io.WriteString(w, termenv.CSI+termenv.HideCursorSeq)
}

// ShowCursor makes the cursor visible again.
func ShowCursor(w io.Writer) {
	_, _ = io.WriteString(w, termenv.CSI+termenv.ShowCursorSeq)
}
