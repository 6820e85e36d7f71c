package gamewindow

import (
	"errors"
	"testing"
)

func countInk(w *Window, colour uint8) int {
	n := 0
	width, height := w.Size()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if w.pixelAt(x, y) == colour {
				n++
			}
		}
	}
	return n
}

func TestWriteTextNeedsSession(t *testing.T) {
	w := New()
	t.Cleanup(w.Close)
	if err := w.CreateCanvas(64, 32, testColours); err != nil {
		t.Fatalf("CreateCanvas: %v", err)
	}
	if err := w.WriteText(32, 16, 12, 0, 0, 1, false, "hi"); !errors.Is(err, ErrNotDrawing) {
		t.Errorf("WriteText without session = %v, want ErrNotDrawing", err)
	}
}

func TestWriteTextPlotsInk(t *testing.T) {
	w := newTestWindow(t, 64, 32)
	if err := w.WriteText(32, 16, 12, 0, 0, 1, false, "Hi"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if n := countInk(w, 1); n == 0 {
		t.Error("no pixels plotted")
	}
}

func TestWriteTextEmptyIsNoop(t *testing.T) {
	w := newTestWindow(t, 64, 32)
	if err := w.WriteText(32, 16, 12, 0, 0, 1, false, ""); err != nil {
		t.Fatalf("WriteText(empty): %v", err)
	}
	if err := w.WriteText(32, 16, 0, 0, 0, 1, false, "hi"); err != nil {
		t.Fatalf("WriteText(size 0): %v", err)
	}
	if n := countInk(w, 1); n != 0 {
		t.Errorf("%d pixels plotted by no-op calls", n)
	}
}

func TestBlendChannel(t *testing.T) {
	cases := []struct {
		fg, bg uint8
		a      uint32
		want   uint8
	}{
		{255, 0, 0xffff, 255},
		{255, 0, 0, 0},
		{255, 0, 0x8000, 127},
		{0, 200, 0x8000, 99},
		{100, 100, 0x6000, 100},
	}
	for _, c := range cases {
		if got := blendChannel(c.fg, c.bg, c.a); got != c.want {
			t.Errorf("blendChannel(%d, %d, %#x) = %d, want %d", c.fg, c.bg, c.a, got, c.want)
		}
	}
}

func TestWriteTextRestoresColour(t *testing.T) {
	w := newTestWindow(t, 64, 32)
	if err := w.SetColour(2); err != nil {
		t.Fatalf("SetColour: %v", err)
	}
	// Edge blending switches the session colour per pixel; the ink
	// colour must be back in force afterwards.
	if err := w.WriteText(32, 16, 12, 0, 0, 1, false, "Og"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if got := w.sess.Colour(); got != 1 {
		t.Errorf("session colour = %d after WriteText, want 1", got)
	}
}

func TestWriteTextAlignments(t *testing.T) {
	// Every alignment combination, in both font styles, renders without
	// error and stays on the canvas.
	for _, halign := range []int{-1, 0, 1} {
		for _, valign := range []int{0, 1} {
			for _, mono := range []bool{false, true} {
				w := newTestWindow(t, 64, 32)
				err := w.WriteText(32, 16, 10, halign, valign, 2, mono, "abc")
				if err != nil {
					t.Fatalf("WriteText(h=%d v=%d mono=%v): %v", halign, valign, mono, err)
				}
				if n := countInk(w, 2); n == 0 {
					t.Errorf("h=%d v=%d mono=%v plotted nothing", halign, valign, mono)
				}
			}
		}
	}
}
