// Package draw renders to ANSI terminals: a half-block pixel canvas, a
// chunked text writer and a perspective camera for the 3D field.
package draw

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockLight     = '░'
	BlockMedium    = '▒'
	BlockDark      = '▓'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Shades from lightest to darkest, for gauges.
var Shades = []rune{' ', BlockLight, BlockMedium, BlockDark, BlockFull}

// ShadeLevel returns a shade character for a value between 0.0 (empty) and 1.0 (solid).
func ShadeLevel(intensity float64) rune {
	if intensity <= 0 {
		return Shades[0]
	}
	if intensity >= 1 {
		return Shades[len(Shades)-1]
	}
	return Shades[int(intensity*float64(len(Shades)-1))]
}

// Color is a canvas pen color.
type Color uint8

const (
	ColorNone Color = iota
	ColorWhite
	ColorGray
	ColorCyan
	ColorMagenta
	ColorYellow
	ColorRed
	ColorBlue
)

// SGR parameters per color; background is foreground + 10.
var colorCodes = [...]int{
	ColorNone:    0,
	ColorWhite:   97,
	ColorGray:    90,
	ColorCyan:    96,
	ColorMagenta: 95,
	ColorYellow:  93,
	ColorRed:     91,
	ColorBlue:    94,
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
