// Package gamedraw draws game shapes: it accumulates move/line paths in a
// fixed-size buffer and strokes or fills them onto a pixel target. The
// path format mirrors the classic draw-path layout: tagged elements of up
// to three words, coordinates held as 8-bit fixed point.
package gamedraw

import "log/slog"

// BufferLength is the capacity of the path buffer, in words. It bounds
// the most complex shape the game engine is expected to draw; overflow is
// a soft failure, never fatal.
const BufferLength = 256

// Path element tags.
const (
	tagEnd   = 0
	tagMove  = 2
	tagClose = 5
	tagLine  = 8
)

// Coordinates are stored shifted left by this amount.
const coordShift = 8

// PathBuilder accumulates one path at a time. The zero value is ready for
// use after StartPath.
type PathBuilder struct {
	buf    [BufferLength]int32
	length int
	valid  bool
}

// StartPath resets the buffer ready for a new path.
func (p *PathBuilder) StartPath() {
	p.length = 0
	p.valid = true
}

// AddMove appends a move to (x, y), in drawing units.
func (p *PathBuilder) AddMove(x, y int) bool {
	e := p.newElement(3)
	if e < 0 {
		return false
	}
	p.buf[e] = tagMove
	p.buf[e+1] = int32(x << coordShift)
	p.buf[e+2] = int32(y << coordShift)
	return true
}

// AddLine appends a line to (x, y), in drawing units.
func (p *PathBuilder) AddLine(x, y int) bool {
	e := p.newElement(3)
	if e < 0 {
		return false
	}
	p.buf[e] = tagLine
	p.buf[e+1] = int32(x << coordShift)
	p.buf[e+2] = int32(y << coordShift)
	return true
}

// CloseSubpath appends a close marker for the current subpath.
func (p *PathBuilder) CloseSubpath() bool {
	e := p.newElement(1)
	if e < 0 {
		return false
	}
	p.buf[e] = tagClose
	return true
}

// EndPath appends the path terminator. It must be called before the path
// is stroked or filled.
func (p *PathBuilder) EndPath() bool {
	e := p.newElement(2)
	if e < 0 {
		return false
	}
	p.buf[e] = tagEnd
	p.buf[e+1] = 0
	return true
}

// newElement claims space for an element of the given size in words,
// returning its index or -1. Overflow marks the whole path invalid so
// that later stroke and fill requests are skipped.
func (p *PathBuilder) newElement(words int) int {
	if p.length+words > BufferLength {
		p.valid = false
		return -1
	}
	e := p.length
	p.length += words
	return e
}

// PlotPath strokes the accumulated path with mitred joins and square
// caps at the given width in drawing units. A path invalidated by
// overflow is logged and skipped.
func (p *PathBuilder) PlotPath(t Target, width int) {
	if !p.valid {
		slog.Debug("invalid path dropped")
		return
	}
	strokePath(t, p.subpaths(), width)
}

// FillPath fills the accumulated path using non-zero winding. A path
// invalidated by overflow is logged and skipped.
func (p *PathBuilder) FillPath(t Target) {
	if !p.valid {
		slog.Debug("invalid path dropped")
		return
	}
	fillPath(t, p.subpaths())
}

// Box builds and strokes a rectangle outline between two unit corners.
func (p *PathBuilder) Box(t Target, x0, y0, x1, y1, width int) {
	p.StartPath()

	if !p.AddMove(x0, y0) ||
		!p.AddLine(x1, y0) ||
		!p.AddLine(x1, y1) ||
		!p.AddLine(x0, y1) ||
		!p.AddLine(x0, y0) ||
		!p.CloseSubpath() ||
		!p.EndPath() {
		return
	}

	p.PlotPath(t, width)
}

// Line builds and strokes a single segment.
func (p *PathBuilder) Line(t Target, x0, y0, x1, y1, width int) {
	p.StartPath()

	if !p.AddMove(x0, y0) || !p.AddLine(x1, y1) || !p.EndPath() {
		return
	}

	p.PlotPath(t, width)
}

// subpath is a decoded run of points, in fixed-point drawing units.
type subpath struct {
	xs, ys []int32
	closed bool
}

// subpaths decodes the element buffer into point runs.
func (p *PathBuilder) subpaths() []subpath {
	var out []subpath
	var cur *subpath

	for i := 0; i < p.length; {
		switch p.buf[i] {
		case tagMove:
			out = append(out, subpath{})
			cur = &out[len(out)-1]
			cur.xs = append(cur.xs, p.buf[i+1])
			cur.ys = append(cur.ys, p.buf[i+2])
			i += 3
		case tagLine:
			if cur != nil {
				cur.xs = append(cur.xs, p.buf[i+1])
				cur.ys = append(cur.ys, p.buf[i+2])
			}
			i += 3
		case tagClose:
			if cur != nil {
				cur.closed = true
			}
			cur = nil
			i++
		case tagEnd:
			return out
		default:
			return out
		}
	}
	return out
}
