package canvas

import (
	"errors"
	"testing"
)

// startSession builds an 8x8 canvas with an active drawing session.
func startSession(t *testing.T) (*Canvas, *Session) {
	t.Helper()
	c := newDrawableCanvas(t, 8, 8)
	sess, err := c.StartRedirection()
	if err != nil {
		t.Fatalf("StartRedirection: %v", err)
	}
	return c, sess
}

// ux and uy map a pixel coordinate into drawing units on an 8-high
// canvas.
func ux(px int) int { return PixelSize * px }
func uy(py int) int { return PixelSize * (8 - (py + 1)) }

func TestUnitPixelTransformInverse(t *testing.T) {
	_, sess := startSession(t)
	for py := 0; py < 8; py++ {
		for px := 0; px < 8; px++ {
			if got := sess.px(ux(px)); got != px {
				t.Fatalf("px(ux(%d)) = %d", px, got)
			}
			if got := sess.py(uy(py)); got != py {
				t.Fatalf("py(uy(%d)) = %d", py, got)
			}
		}
	}
}

func TestPrimitivesRequireActiveSession(t *testing.T) {
	c, sess := startSession(t)
	if err := c.StopRedirection(); err != nil {
		t.Fatalf("StopRedirection: %v", err)
	}

	checks := map[string]error{
		"SetColour":  sess.SetColour(1),
		"Plot":       sess.Plot(0, 0),
		"FillRect":   sess.FillRect(0, 0, 2, 2),
		"DrawLine":   sess.DrawLine(0, 0, 2, 2),
		"FillCircle": sess.FillCircle(4, 4, 2),
		"DrawCircle": sess.DrawCircle(4, 4, 2),
		"SetClip":    sess.SetClip(0, 0, 2, 2),
		"ClearClip":  sess.ClearClip(),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrSessionClosed) {
			t.Errorf("%s on dead session = %v, want ErrSessionClosed", name, err)
		}
	}
}

func TestFillRect(t *testing.T) {
	_, sess := startSession(t)
	if err := sess.SetColour(5); err != nil {
		t.Fatalf("SetColour: %v", err)
	}
	// Corners given in either order fill the same inclusive region.
	if err := sess.FillRect(ux(5), uy(5), ux(2), uy(2)); err != nil {
		t.Fatalf("FillRect: %v", err)
	}

	for py := 0; py < 8; py++ {
		for px := 0; px < 8; px++ {
			want := uint8(0)
			if px >= 2 && px <= 5 && py >= 2 && py <= 5 {
				want = 5
			}
			if got := sess.PixelAt(px, py); got != want {
				t.Errorf("pixel (%d,%d) = %d, want %d", px, py, got, want)
			}
		}
	}
}

func TestDrawLineDiagonal(t *testing.T) {
	_, sess := startSession(t)
	if err := sess.SetColour(9); err != nil {
		t.Fatalf("SetColour: %v", err)
	}
	if err := sess.DrawLine(ux(0), uy(0), ux(7), uy(7)); err != nil {
		t.Fatalf("DrawLine: %v", err)
	}

	for i := 0; i < 8; i++ {
		if got := sess.PixelAt(i, i); got != 9 {
			t.Errorf("diagonal pixel (%d,%d) = %d, want 9", i, i, got)
		}
	}
	if got := sess.PixelAt(0, 7); got != 0 {
		t.Errorf("off-diagonal pixel painted: %d", got)
	}
}

func TestCircle(t *testing.T) {
	_, sess := startSession(t)
	if err := sess.SetColour(4); err != nil {
		t.Fatalf("SetColour: %v", err)
	}
	if err := sess.FillCircle(ux(4), uy(4), PixelSize*2); err != nil {
		t.Fatalf("FillCircle: %v", err)
	}

	for _, p := range [][2]int{{4, 4}, {2, 4}, {6, 4}, {4, 2}, {4, 6}} {
		if got := sess.PixelAt(p[0], p[1]); got != 4 {
			t.Errorf("pixel (%d,%d) = %d, want inside circle", p[0], p[1], got)
		}
	}
	for _, p := range [][2]int{{0, 0}, {7, 7}, {7, 0}} {
		if got := sess.PixelAt(p[0], p[1]); got != 0 {
			t.Errorf("pixel (%d,%d) = %d, want outside circle", p[0], p[1], got)
		}
	}

	if err := sess.SetColour(6); err != nil {
		t.Fatalf("SetColour: %v", err)
	}
	if err := sess.DrawCircle(ux(4), uy(4), PixelSize*3); err != nil {
		t.Fatalf("DrawCircle: %v", err)
	}
	for _, p := range [][2]int{{1, 4}, {7, 4}, {4, 1}, {4, 7}} {
		if got := sess.PixelAt(p[0], p[1]); got != 6 {
			t.Errorf("outline pixel (%d,%d) = %d, want 6", p[0], p[1], got)
		}
	}
	// The filled interior keeps its colour.
	if got := sess.PixelAt(4, 4); got != 4 {
		t.Errorf("centre = %d, want 4", got)
	}
}

func TestClip(t *testing.T) {
	_, sess := startSession(t)
	if err := sess.SetColour(2); err != nil {
		t.Fatalf("SetColour: %v", err)
	}

	// Clip corners arrive in top-left, bottom-right order and are
	// normalised internally.
	if err := sess.SetClip(ux(2), uy(2), ux(5), uy(5)); err != nil {
		t.Fatalf("SetClip: %v", err)
	}
	if err := sess.FillRect(ux(0), uy(0), ux(7), uy(7)); err != nil {
		t.Fatalf("FillRect: %v", err)
	}

	for py := 0; py < 8; py++ {
		for px := 0; px < 8; px++ {
			want := uint8(0)
			if px >= 2 && px <= 5 && py >= 2 && py <= 5 {
				want = 2
			}
			if got := sess.PixelAt(px, py); got != want {
				t.Errorf("pixel (%d,%d) = %d, want %d", px, py, got, want)
			}
		}
	}

	// After clearing the clip, the full canvas is writable again.
	if err := sess.ClearClip(); err != nil {
		t.Fatalf("ClearClip: %v", err)
	}
	if err := sess.SetColour(3); err != nil {
		t.Fatalf("SetColour: %v", err)
	}
	if err := sess.FillRect(ux(0), uy(0), ux(7), uy(7)); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	if got := sess.PixelAt(0, 0); got != 3 {
		t.Errorf("pixel (0,0) = %d after unclip, want 3", got)
	}
}

func TestClipClearedByStop(t *testing.T) {
	c, sess := startSession(t)
	if err := sess.SetClip(ux(2), uy(2), ux(5), uy(5)); err != nil {
		t.Fatalf("SetClip: %v", err)
	}
	if err := c.StopRedirection(); err != nil {
		t.Fatalf("StopRedirection: %v", err)
	}

	sess2, err := c.StartRedirection()
	if err != nil {
		t.Fatalf("StartRedirection: %v", err)
	}
	if err := sess2.SetColour(1); err != nil {
		t.Fatalf("SetColour: %v", err)
	}
	if err := sess2.FillRect(ux(0), uy(0), ux(7), uy(7)); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	if got := sess2.PixelAt(0, 0); got != 1 {
		t.Errorf("pixel (0,0) = %d, stale clip survived the session", got)
	}
}

func TestSpanClampsToCanvas(t *testing.T) {
	_, sess := startSession(t)
	if err := sess.SetColour(8); err != nil {
		t.Fatalf("SetColour: %v", err)
	}

	// Out-of-range spans are clamped or discarded, never wrap.
	sess.Span(-1, 0, 7)
	sess.Span(8, 0, 7)
	sess.Span(0, -5, 20)

	for px := 0; px < 8; px++ {
		if got := sess.PixelAt(px, 0); got != 8 {
			t.Errorf("pixel (%d,0) = %d, want 8", px, got)
		}
		for py := 1; py < 8; py++ {
			if got := sess.PixelAt(px, py); got != 0 {
				t.Errorf("pixel (%d,%d) = %d, want 0", px, py, got)
			}
		}
	}
}
