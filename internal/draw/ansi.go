package draw

import (
	"io"
	"strconv"
)

const (
	seqReset      = "\033[0m"
	seqClear      = "\033[H\033[2J"
	seqHideCursor = "\033[?25l"
	seqShowCursor = "\033[?25h"
)

// maxChunkSize is the maximum bytes to write at once for smooth network flow.
const maxChunkSize = 1400

// Style is a text pen for overlays: a foreground color and weight.
type Style struct {
	Fg   Color
	Bold bool
}

// appendCursor appends a cursor position sequence; col and row are 1-based.
func appendCursor(b []byte, col, row int) []byte {
	b = append(b, "\033["...)
	b = strconv.AppendInt(b, int64(row), 10)
	b = append(b, ';')
	b = strconv.AppendInt(b, int64(col), 10)
	return append(b, 'H')
}

// appendSGR appends a full style reset followed by the given attributes.
// ColorNone leaves the terminal default in place.
func appendSGR(b []byte, fg, bg Color, bold bool) []byte {
	b = append(b, "\033[0"...)
	if bold {
		b = append(b, ";1"...)
	}
	if fg != ColorNone {
		b = append(b, ';')
		b = strconv.AppendInt(b, int64(colorCodes[fg]), 10)
	}
	if bg != ColorNone {
		b = append(b, ';')
		b = strconv.AppendInt(b, int64(colorCodes[bg]+10), 10)
	}
	return append(b, 'm')
}

// writeChunked writes data in pieces of at most maxChunkSize bytes.
func writeChunked(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
