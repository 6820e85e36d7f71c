package canvas

import (
	"errors"
	"log/slog"
)

// ErrSessionClosed is returned when a primitive is issued outside an
// active drawing session.
var ErrSessionClosed = errors.New("canvas: drawing session not active")

// Session is the target of an active redirection: while it is live, all
// drawing primitives land in the owning canvas's pixel buffer. A session
// carries the current plotting colour and the graphics clip region.
//
// Coordinates are drawing units (PixelSize units per pixel), with the
// origin at the bottom-left of the canvas and y increasing upwards. One
// unit point addresses one whole pixel.
type Session struct {
	canvas   *Canvas
	colour   uint8
	released bool

	hasClip        bool
	clipX0, clipY0 int // pixel space, inclusive
	clipX1, clipY1 int
}

func (s *Session) ok() bool {
	return s != nil && !s.released && s.canvas != nil && s.canvas.redirectionActive
}

// SetColour selects the palette index used by subsequent primitives.
func (s *Session) SetColour(colour int) error {
	if !s.ok() {
		return ErrSessionClosed
	}
	if colour < 0 || colour >= MaxPaletteEntries {
		return ErrBadColourCount
	}
	s.colour = uint8(colour)
	return nil
}

// Colour returns the current plotting colour.
func (s *Session) Colour() int {
	if s == nil {
		return 0
	}
	return int(s.colour)
}

// unit-to-pixel mapping: a unit coordinate addresses the pixel whose
// bottom-left corner it is.
func (s *Session) px(u int) int { return u / PixelSize }
func (s *Session) py(v int) int { return s.canvas.height - 1 - v/PixelSize }

// SizePixels reports the target size for span-based rasterisation.
func (s *Session) SizePixels() (int, int) {
	if s == nil || s.canvas == nil {
		return 0, 0
	}
	return s.canvas.width, s.canvas.height
}

// Span fills pixels [x0, x1] on the given row with the current colour,
// honouring the clip region. Rows count downwards from the top of the
// canvas. Out-of-range pixels are discarded.
func (s *Session) Span(row, x0, x1 int) {
	if !s.ok() {
		return
	}

	c := s.canvas
	if row < 0 || row >= c.height {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 >= c.width {
		x1 = c.width - 1
	}
	if s.hasClip {
		if row < s.clipY0 || row > s.clipY1 {
			return
		}
		if x0 < s.clipX0 {
			x0 = s.clipX0
		}
		if x1 > s.clipX1 {
			x1 = s.clipX1
		}
	}
	if x0 > x1 {
		return
	}

	pix := c.pixels()
	base := c.pixelAt(x0, row)
	for i := 0; i <= x1-x0; i++ {
		pix[base+i] = s.colour
	}
}

// SetPixel plots a single pixel, in pixel coordinates, with clipping.
func (s *Session) SetPixel(px, py int) {
	s.Span(py, px, px)
}

// PixelAt reads back a pixel, in pixel coordinates; out-of-range reads
// return zero.
func (s *Session) PixelAt(px, py int) uint8 {
	if !s.ok() {
		return 0
	}
	c := s.canvas
	if px < 0 || px >= c.width || py < 0 || py >= c.height {
		return 0
	}
	return c.pixels()[c.pixelAt(px, py)]
}

// Plot sets the single pixel addressed by the unit coordinates.
func (s *Session) Plot(x, y int) error {
	if !s.ok() {
		return ErrSessionClosed
	}
	s.SetPixel(s.px(x), s.py(y))
	return nil
}

// FillRect fills the axis-aligned rectangle between two unit corners,
// inclusive of both corner pixels.
func (s *Session) FillRect(x0, y0, x1, y1 int) error {
	if !s.ok() {
		return ErrSessionClosed
	}

	px0, px1 := order(s.px(x0), s.px(x1))
	py0, py1 := order(s.py(y0), s.py(y1))
	for row := py0; row <= py1; row++ {
		s.Span(row, px0, px1)
	}
	return nil
}

// DrawLine plots a single-pixel line between two unit points, inclusive
// of both endpoints.
func (s *Session) DrawLine(x0, y0, x1, y1 int) error {
	if !s.ok() {
		return ErrSessionClosed
	}

	// Bresenham over the pixel grid.
	ax, ay := s.px(x0), s.py(y0)
	bx, by := s.px(x1), s.py(y1)

	dx := abs(bx - ax)
	dy := -abs(by - ay)
	sx, sy := 1, 1
	if ax > bx {
		sx = -1
	}
	if ay > by {
		sy = -1
	}
	e := dx + dy

	for {
		s.SetPixel(ax, ay)
		if ax == bx && ay == by {
			break
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			ax += sx
		}
		if e2 <= dx {
			e += dx
			ay += sy
		}
	}
	return nil
}

// FillCircle fills a circle given its centre and radius in units.
func (s *Session) FillCircle(cx, cy, r int) error {
	if !s.ok() {
		return ErrSessionClosed
	}

	pcx, pcy := s.px(cx), s.py(cy)
	pr := r / PixelSize
	for dy := -pr; dy <= pr; dy++ {
		w := isqrt(pr*pr - dy*dy)
		s.Span(pcy+dy, pcx-w, pcx+w)
	}
	return nil
}

// DrawCircle plots a single-pixel circle outline given its centre and
// radius in units.
func (s *Session) DrawCircle(cx, cy, r int) error {
	if !s.ok() {
		return ErrSessionClosed
	}

	pcx, pcy := s.px(cx), s.py(cy)
	pr := r / PixelSize
	if pr <= 0 {
		s.SetPixel(pcx, pcy)
		return nil
	}

	// Midpoint circle.
	x, y := pr, 0
	e := 1 - pr
	for x >= y {
		s.SetPixel(pcx+x, pcy+y)
		s.SetPixel(pcx+y, pcy+x)
		s.SetPixel(pcx-y, pcy+x)
		s.SetPixel(pcx-x, pcy+y)
		s.SetPixel(pcx-x, pcy-y)
		s.SetPixel(pcx-y, pcy-x)
		s.SetPixel(pcx+y, pcy-x)
		s.SetPixel(pcx+x, pcy-y)
		y++
		if e < 0 {
			e += 2*y + 1
		} else {
			x--
			e += 2*(y-x) + 1
		}
	}
	return nil
}

// SetClip restricts subsequent primitives to the rectangle between two
// unit corners. The corners may arrive in either vertical order; they are
// normalised into the buffer's native top/bottom ordering here.
func (s *Session) SetClip(x0, y0, x1, y1 int) error {
	if !s.ok() {
		return ErrSessionClosed
	}

	s.clipX0, s.clipX1 = order(s.px(x0), s.px(x1))
	s.clipY0, s.clipY1 = order(s.py(y0), s.py(y1))
	s.hasClip = true

	slog.Debug("clip set", "x0", s.clipX0, "y0", s.clipY0, "x1", s.clipX1, "y1", s.clipY1)

	return nil
}

// ClearClip removes the clip region.
func (s *Session) ClearClip() error {
	if !s.ok() {
		return ErrSessionClosed
	}
	s.clearClip()
	return nil
}

func (s *Session) clearClip() {
	s.hasClip = false
}

func order(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func isqrt(v int) int {
	if v <= 0 {
		return 0
	}
	r := v
	for r*r > v {
		r = (r + v/r) / 2
	}
	for (r+1)*(r+1) <= v {
		r++
	}
	return r
}
