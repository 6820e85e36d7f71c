package blitter

import (
	"errors"
	"testing"

	"github.com/gopuzzles/desktop/engine/canvas"
)

// newSource builds an 8x8 canvas with a recognisable pattern: colour 7
// everywhere, colour 3 in the pixel block cols/rows 2..5.
func newSource(t *testing.T) *canvas.Canvas {
	t.Helper()
	c := canvas.New()
	if err := c.ConfigureArea(8, 8, false); err != nil {
		t.Fatalf("ConfigureArea: %v", err)
	}
	if err := c.ConfigureSaveArea(); err != nil {
		t.Fatalf("ConfigureSaveArea: %v", err)
	}
	t.Cleanup(c.Close)

	sess, err := c.StartRedirection()
	if err != nil {
		t.Fatalf("StartRedirection: %v", err)
	}
	if err := sess.SetColour(7); err != nil {
		t.Fatalf("SetColour: %v", err)
	}
	if err := sess.FillRect(0, 0, 14, 14); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	if err := sess.SetColour(3); err != nil {
		t.Fatalf("SetColour: %v", err)
	}
	if err := sess.FillRect(4, 4, 10, 10); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	if err := c.StopRedirection(); err != nil {
		t.Fatalf("StopRedirection: %v", err)
	}
	return c
}

// readPixels snapshots a canvas through a throwaway session.
func readPixels(t *testing.T, c *canvas.Canvas) [8][8]uint8 {
	t.Helper()
	sess, err := c.StartRedirection()
	if err != nil {
		t.Fatalf("StartRedirection: %v", err)
	}
	var out [8][8]uint8
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			out[y][x] = sess.PixelAt(x, y)
		}
	}
	if err := c.StopRedirection(); err != nil {
		t.Fatalf("StopRedirection: %v", err)
	}
	return out
}

func TestNewBlitterBadSize(t *testing.T) {
	s := NewSet()
	defer s.Close()
	if _, err := s.NewBlitter(0, 5); err == nil {
		t.Error("NewBlitter(0, 5) succeeded")
	}
	if _, err := s.NewBlitter(4, -1); err == nil {
		t.Error("NewBlitter(4, -1) succeeded")
	}
}

func TestDeleteForeignBlitter(t *testing.T) {
	s1, s2 := NewSet(), NewSet()
	defer s1.Close()
	defer s2.Close()

	b, err := s1.NewBlitter(4, 4)
	if err != nil {
		t.Fatalf("NewBlitter: %v", err)
	}
	if err := s2.Delete(b); !errors.Is(err, ErrNotMember) {
		t.Errorf("Delete from wrong set = %v, want ErrNotMember", err)
	}
	if err := s1.Delete(b); err != nil {
		t.Errorf("Delete from owning set = %v", err)
	}
	if err := s1.Delete(b); !errors.Is(err, ErrNotMember) {
		t.Errorf("double Delete = %v, want ErrNotMember", err)
	}
}

func TestPaintBeforeStore(t *testing.T) {
	s := NewSet()
	defer s.Close()

	b, err := s.NewBlitter(4, 4)
	if err != nil {
		t.Fatalf("NewBlitter: %v", err)
	}
	dst := newSource(t)
	if err := b.PaintToCanvas(dst, FromSaved, FromSaved); !errors.Is(err, ErrNotCapture) {
		t.Errorf("PaintToCanvas before store = %v, want ErrNotCapture", err)
	}
	// Explicit coordinates paint whatever the buffer holds, captured or
	// not.
	if err := b.PaintToCanvas(dst, 0, 14); err != nil {
		t.Errorf("PaintToCanvas with coordinates = %v", err)
	}
}

func TestStorePaintRoundTrip(t *testing.T) {
	s := NewSet()
	defer s.Close()

	b, err := s.NewBlitter(4, 4)
	if err != nil {
		t.Fatalf("NewBlitter: %v", err)
	}
	if w, h := b.Size(); w != 4 || h != 4 {
		t.Fatalf("Size = %dx%d, want 4x4", w, h)
	}

	src := newSource(t)

	// Capture the colour-3 block: top-left pixel (2, 2) in units.
	if err := b.StoreFromCanvas(src, 4, 10); err != nil {
		t.Fatalf("StoreFromCanvas: %v", err)
	}

	// Scribble over the block, then restore it at the saved position.
	sess, err := src.StartRedirection()
	if err != nil {
		t.Fatalf("StartRedirection: %v", err)
	}
	if err := sess.SetColour(1); err != nil {
		t.Fatalf("SetColour: %v", err)
	}
	if err := sess.FillRect(0, 0, 14, 14); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	if err := src.StopRedirection(); err != nil {
		t.Fatalf("StopRedirection: %v", err)
	}

	if err := b.PaintToCanvas(src, FromSaved, FromSaved); err != nil {
		t.Fatalf("PaintToCanvas: %v", err)
	}

	pix := readPixels(t, src)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := uint8(1)
			if x >= 2 && x <= 5 && y >= 2 && y <= 5 {
				want = 3
			}
			if pix[y][x] != want {
				t.Errorf("pixel (%d,%d) = %d, want %d", x, y, pix[y][x], want)
			}
		}
	}
}

func TestPaintMixedSentinel(t *testing.T) {
	s := NewSet()
	defer s.Close()

	b, err := s.NewBlitter(4, 4)
	if err != nil {
		t.Fatalf("NewBlitter: %v", err)
	}
	src := newSource(t)
	if err := b.StoreFromCanvas(src, 4, 10); err != nil {
		t.Fatalf("StoreFromCanvas: %v", err)
	}

	scribble := func() {
		sess, err := src.StartRedirection()
		if err != nil {
			t.Fatalf("StartRedirection: %v", err)
		}
		if err := sess.SetColour(1); err != nil {
			t.Fatalf("SetColour: %v", err)
		}
		if err := sess.FillRect(0, 0, 14, 14); err != nil {
			t.Fatalf("FillRect: %v", err)
		}
		if err := src.StopRedirection(); err != nil {
			t.Fatalf("StopRedirection: %v", err)
		}
	}

	// Each coordinate substitutes independently: a sentinel on one axis
	// takes that axis from the captured position, the other is used as
	// given.
	checkBlock := func(name string, x0, y0 int) {
		t.Helper()
		pix := readPixels(t, src)
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				want := uint8(1)
				if x >= x0 && x < x0+4 && y >= y0 && y < y0+4 {
					want = 3
				}
				if pix[y][x] != want {
					t.Errorf("%s: pixel (%d,%d) = %d, want %d", name, x, y, pix[y][x], want)
				}
			}
		}
	}

	scribble()
	if err := b.PaintToCanvas(src, FromSaved, 10); err != nil {
		t.Fatalf("PaintToCanvas(FromSaved, y): %v", err)
	}
	checkBlock("saved x", 2, 2)

	scribble()
	if err := b.PaintToCanvas(src, 0, FromSaved); err != nil {
		t.Fatalf("PaintToCanvas(x, FromSaved): %v", err)
	}
	checkBlock("saved y", 0, 2)
}

func TestPaintMixedSentinelBeforeStore(t *testing.T) {
	s := NewSet()
	defer s.Close()

	b, err := s.NewBlitter(4, 4)
	if err != nil {
		t.Fatalf("NewBlitter: %v", err)
	}
	dst := newSource(t)
	if err := b.PaintToCanvas(dst, FromSaved, 10); !errors.Is(err, ErrNotCapture) {
		t.Errorf("PaintToCanvas(FromSaved, y) before store = %v, want ErrNotCapture", err)
	}
	if err := b.PaintToCanvas(dst, 0, FromSaved); !errors.Is(err, ErrNotCapture) {
		t.Errorf("PaintToCanvas(x, FromSaved) before store = %v, want ErrNotCapture", err)
	}
}

func TestPaintElsewhere(t *testing.T) {
	s := NewSet()
	defer s.Close()

	b, err := s.NewBlitter(4, 4)
	if err != nil {
		t.Fatalf("NewBlitter: %v", err)
	}
	src := newSource(t)
	if err := b.StoreFromCanvas(src, 4, 10); err != nil {
		t.Fatalf("StoreFromCanvas: %v", err)
	}

	// Paint the block with its top-left at pixel (0, 0).
	if err := b.PaintToCanvas(src, 0, 14); err != nil {
		t.Fatalf("PaintToCanvas: %v", err)
	}

	pix := readPixels(t, src)
	if pix[0][0] != 3 || pix[3][3] != 3 {
		t.Errorf("painted block missing at origin: %d %d", pix[0][0], pix[3][3])
	}
	if pix[0][4] != 7 {
		t.Errorf("pixel right of painted block = %d, want 7", pix[0][4])
	}
}

func TestCloseInvalidates(t *testing.T) {
	s := NewSet()
	b, err := s.NewBlitter(4, 4)
	if err != nil {
		t.Fatalf("NewBlitter: %v", err)
	}
	s.Close()

	src := newSource(t)
	if err := b.StoreFromCanvas(src, 0, 14); !errors.Is(err, ErrNotMember) {
		t.Errorf("StoreFromCanvas after Close = %v, want ErrNotMember", err)
	}
	if err := b.PaintToCanvas(src, 0, 14); !errors.Is(err, ErrNotMember) {
		t.Errorf("PaintToCanvas after Close = %v, want ErrNotMember", err)
	}
}
