package draw

import (
	"bufio"
	"io"
	"os"

	"golang.org/x/term"
)

// ChunkWriter collects one frame of terminal output (canvas cells, HUD text)
// and sends it on Flush in bounded chunks, which keeps SSH sessions smooth.
// Positions passed to WriteAt and Text are 1-based canvas coordinates; the
// centering offset is added here.
type ChunkWriter struct {
	frame  []byte
	out    *bufio.Writer
	offCol int
	offRow int
}

// NewChunkWriter creates a ChunkWriter sending to w with the given offset.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		frame:  make([]byte, 0, 16*maxChunkSize),
		out:    bufio.NewWriterSize(w, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset updates the centering offset after a resize.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol, cw.offRow = offsetCol, offsetRow
}

// Write appends raw bytes. Canvas.Render writes through this.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	cw.frame = append(cw.frame, p...)
	return len(p), nil
}

// WriteString appends s unchanged.
func (cw *ChunkWriter) WriteString(s string) {
	cw.frame = append(cw.frame, s...)
}

// Clear queues a full screen clear.
func (cw *ChunkWriter) Clear() {
	cw.WriteString(seqClear)
}

// WriteAt places s at col, row in the current style.
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.frame = appendCursor(cw.frame, col+cw.offCol, row+cw.offRow)
	cw.frame = append(cw.frame, s...)
}

// Text places s at col, row in style st and resets the style afterwards.
func (cw *ChunkWriter) Text(col, row int, st Style, s string) {
	cw.frame = appendCursor(cw.frame, col+cw.offCol, row+cw.offRow)
	cw.frame = appendSGR(cw.frame, st.Fg, ColorNone, st.Bold)
	cw.frame = append(cw.frame, s...)
	cw.frame = append(cw.frame, seqReset...)
}

// Flush sends the frame and starts a new one.
func (cw *ChunkWriter) Flush() error {
	err := writeChunked(cw.out, cw.frame)
	cw.frame = cw.frame[:0]
	if err != nil {
		return err
	}
	return cw.out.Flush()
}

var _ io.Writer = (*ChunkWriter)(nil)

// TermSizeFunc reports the terminal dimensions.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc queries the controlling terminal on stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// FixedTermSize returns a TermSizeFunc that always reports width x height.
func FixedTermSize(width, height int) TermSizeFunc {
	return func() (int, int, error) {
		return width, height, nil
	}
}

// ClearScreen clears the terminal and homes the cursor.
func ClearScreen(w io.Writer) {
	io.WriteString(w, seqClear)
}

func HideCursor(w io.Writer) {
	io.WriteString(w, seqHideCursor)
}

func ShowCursor(w io.Writer) {
	io.WriteString(w, seqShowCursor)
}
