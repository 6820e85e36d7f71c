// Package blitter provides off-screen snapshot buffers backed by
// palette-less canvas sprites. A blitter stores a rectangle of pixels
// from one canvas and paints it back later, at the captured position or
// elsewhere.
package blitter

import (
	"errors"
	"log/slog"

	"github.com/gopuzzles/desktop/engine/canvas"
)

// FromSaved paints a blitter back at the coordinates it was captured
// from.
const FromSaved = -1

var (
	ErrNotMember  = errors.New("blitter: not a member of this set")
	ErrNotCapture = errors.New("blitter: nothing captured yet")
)

// Blitter is one snapshot buffer. Create with Set.NewBlitter and release
// with Set.Delete.
type Blitter struct {
	canvas *canvas.Canvas
	width  int
	height int

	// Capture position, valid once saved is set.
	saved bool
	x, y  int
}

// Set owns a group of blitters so they can be released together when
// the game instance goes away.
type Set struct {
	members []*Blitter
}

func NewSet() *Set {
	return &Set{}
}

// Close releases every remaining member. Blitters still held by the
// caller are invalid afterwards.
func (s *Set) Close() {
	for _, b := range s.members {
		b.canvas.Close()
		b.canvas = nil
	}
	s.members = nil
}

// NewBlitter allocates a snapshot buffer of w by h pixels. The backing
// sprite carries no palette of its own; pixel values are copied raw and
// keep whatever palette the canvases involved use.
func (s *Set) NewBlitter(w, h int) (*Blitter, error) {
	c := canvas.New()
	if err := c.ConfigureArea(w, h, false); err != nil {
		return nil, err
	}
	b := &Blitter{canvas: c, width: w, height: h}
	s.members = append(s.members, b)
	slog.Debug("blitter allocated", "width", w, "height", h)
	return b, nil
}

// Delete releases a blitter and removes it from the set.
func (s *Set) Delete(b *Blitter) error {
	for i, m := range s.members {
		if m == b {
			s.members = append(s.members[:i], s.members[i+1:]...)
			b.canvas.Close()
			b.canvas = nil
			return nil
		}
	}
	return ErrNotMember
}

// Size returns the blitter's dimensions in pixels.
func (b *Blitter) Size() (w, h int) {
	return b.width, b.height
}

// StoreFromCanvas captures the rectangle of src whose top-left corner is
// at (x, y), in src drawing units, remembering the position for a later
// paint at FromSaved.
func (b *Blitter) StoreFromCanvas(src *canvas.Canvas, x, y int) error {
	if b.canvas == nil {
		return ErrNotMember
	}
	if err := b.canvas.CaptureFrom(src, x, y); err != nil {
		return err
	}
	b.saved = true
	b.x, b.y = x, y
	return nil
}

// PaintToCanvas paints the stored pixels onto dst with their top-left
// corner at (x, y), in dst drawing units. Each coordinate may
// independently be FromSaved, substituting that axis of the captured
// position.
func (b *Blitter) PaintToCanvas(dst *canvas.Canvas, x, y int) error {
	if b.canvas == nil {
		return ErrNotMember
	}
	if x == FromSaved || y == FromSaved {
		if !b.saved {
			return ErrNotCapture
		}
		if x == FromSaved {
			x = b.x
		}
		if y == FromSaved {
			y = b.y
		}
	}
	return b.canvas.PaintTo(dst, x, y)
}
