package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tomz197/crystals/internal/physics"
)

func TestRenderWritesOnlyChanges(t *testing.T) {
	c := NewScaledCanvas(10, 5, 10, 10)
	c.SetColor(ColorCyan)
	c.SetFloat(2, 2)

	var out bytes.Buffer
	c.Render(&out)
	if !strings.ContainsRune(out.String(), BlockUpperHalf) {
		t.Fatalf("first render missing pixel: %q", out.String())
	}
	if !strings.Contains(out.String(), "\033[0;96m") {
		t.Fatalf("first render missing color: %q", out.String())
	}

	out.Reset()
	c.Render(&out)
	if out.Len() != 0 {
		t.Fatalf("unchanged frame wrote %q", out.String())
	}

	c.Clear()
	out.Reset()
	c.Render(&out)
	if !strings.Contains(out.String(), " ") {
		t.Fatalf("cleared pixel should be erased, got %q", out.String())
	}
}

func TestForceRedraw(t *testing.T) {
	c := NewScaledCanvas(4, 2, 4, 4)
	var out bytes.Buffer
	c.Render(&out)

	c.ForceRedraw()
	out.Reset()
	c.Render(&out)
	if got := strings.Count(out.String(), " "); got != 8 {
		t.Fatalf("forced redraw wrote %d cells, want 8", got)
	}
}

func TestMarkTextDirty(t *testing.T) {
	c := NewScaledCanvas(10, 3, 10, 6)
	var out bytes.Buffer
	c.Render(&out)

	c.MarkTextDirty(3, 2, 4)
	out.Reset()
	c.Render(&out)
	if got := strings.Count(out.String(), " "); got != 4 {
		t.Fatalf("repainted %d cells, want 4", got)
	}
}

func TestCellCombinesSubPixels(t *testing.T) {
	c := NewScaledCanvas(1, 1, 1, 2)

	c.SetColor(ColorRed)
	c.setPixel(0, 0)
	c.SetColor(ColorBlue)
	c.setPixel(0, 1)

	got := c.cellAt(0, 0)
	want := cell{ch: BlockUpperHalf, fg: ColorRed, bg: ColorBlue}
	if got != want {
		t.Fatalf("cell = %+v, want %+v", got, want)
	}
}

func TestFillCircle(t *testing.T) {
	c := NewScaledCanvas(20, 10, 20, 20)
	c.FillCircle(Point{X: 10, Y: 10}, 3)

	if c.pixels[10*20+10] == ColorNone {
		t.Fatal("center should be filled")
	}
	if c.pixels[10*20+14] != ColorNone {
		t.Fatal("pixel outside the radius should be empty")
	}
}

func TestCameraProject(t *testing.T) {
	cam := NewCamera(120, 80)

	center, _, ok := cam.Project(physics.Vec3{})
	if !ok || center != (Point{X: 60, Y: 40}) {
		t.Fatalf("origin projected to %v, %v", center, ok)
	}

	_, near, _ := cam.Project(physics.Vec3{Z: 10})
	_, far, _ := cam.Project(physics.Vec3{Z: -100})
	if near <= far {
		t.Fatalf("near scale %f should exceed far scale %f", near, far)
	}

	right, _, _ := cam.Project(physics.Vec3{X: 5, Y: 5})
	if right.X <= 60 || right.Y >= 40 {
		t.Fatalf("up-right point projected to %v", right)
	}

	if _, _, ok := cam.Project(physics.Vec3{Z: 40}); ok {
		t.Fatal("point behind the camera should not project")
	}
}

func TestChunkWriterOffset(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 2, 3)
	cw.WriteAt(1, 1, "hi")
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "\033[4;3Hhi"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestChunkWriterText(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 0, 0)
	cw.Text(2, 1, Style{Fg: ColorMagenta, Bold: true}, "x2")
	cw.Text(1, 2, Style{}, "y")
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	want := "\033[1;2H\033[0;1;95mx2\033[0m" + "\033[2;1H\033[0my\033[0m"
	if got := out.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// sizeRecorder records the size of every write.
type sizeRecorder struct {
	bytes.Buffer
	sizes []int
}

func (r *sizeRecorder) Write(p []byte) (int, error) {
	r.sizes = append(r.sizes, len(p))
	return r.Buffer.Write(p)
}

func TestRenderWritesInChunks(t *testing.T) {
	c := NewScaledCanvas(120, 40, 120, 80)
	c.SetColor(ColorCyan)
	for x := range 120 {
		for y := range 80 {
			c.SetFloat(float64(x), float64(y))
		}
	}

	var out sizeRecorder
	c.Render(&out)
	if len(out.sizes) < 2 {
		t.Fatalf("frame of %d bytes written in %d piece(s)", out.Len(), len(out.sizes))
	}
	for _, n := range out.sizes {
		if n > maxChunkSize {
			t.Fatalf("write of %d bytes exceeds %d", n, maxChunkSize)
		}
	}
	if !strings.HasSuffix(out.String(), seqReset) {
		t.Fatal("frame should end with a style reset")
	}
}
