package gamedraw

import "testing"

// gridTarget records spans on a pixel grid, clamping like a real canvas.
type gridTarget struct {
	w, h  int
	pix   [][]bool
	spans int
}

func newGridTarget(w, h int) *gridTarget {
	g := &gridTarget{w: w, h: h, pix: make([][]bool, h)}
	for i := range g.pix {
		g.pix[i] = make([]bool, w)
	}
	return g
}

func (g *gridTarget) SizePixels() (int, int) { return g.w, g.h }

func (g *gridTarget) Span(row, x0, x1 int) {
	g.spans++
	if row < 0 || row >= g.h {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 >= g.w {
		x1 = g.w - 1
	}
	for x := x0; x <= x1; x++ {
		g.pix[row][x] = true
	}
}

func (g *gridTarget) check(t *testing.T, want func(x, y int) bool) {
	t.Helper()
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			if g.pix[y][x] != want(x, y) {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, g.pix[y][x], want(x, y))
			}
		}
	}
}

// square builds a closed axis-aligned subpath between two unit corners.
func square(p *PathBuilder, x0, y0, x1, y1 int) {
	p.AddMove(x0, y0)
	p.AddLine(x1, y0)
	p.AddLine(x1, y1)
	p.AddLine(x0, y1)
	p.CloseSubpath()
}

func TestFillSquare(t *testing.T) {
	var p PathBuilder
	p.StartPath()
	// Corners on the centres of pixels (2,2) and (5,5): the fill covers
	// the pixels whose centres fall strictly inside, cols and rows 2..4.
	square(&p, 4, 10, 10, 4)
	p.EndPath()

	g := newGridTarget(8, 8)
	p.FillPath(g)
	g.check(t, func(x, y int) bool {
		return x >= 2 && x <= 4 && y >= 2 && y <= 4
	})
}

func TestFillNonZeroWinding(t *testing.T) {
	var p PathBuilder
	p.StartPath()
	// Nested squares traced in the same direction: non-zero winding
	// fills the inner region instead of cutting a hole.
	square(&p, 2, 12, 12, 2)
	square(&p, 6, 8, 8, 6)
	p.EndPath()

	g := newGridTarget(8, 8)
	p.FillPath(g)
	g.check(t, func(x, y int) bool {
		return x >= 1 && x <= 5 && y >= 1 && y <= 5
	})
}

func TestFillClampsToTarget(t *testing.T) {
	var p PathBuilder
	p.StartPath()
	square(&p, -8, 30, 30, -8)
	p.EndPath()

	g := newGridTarget(8, 8)
	p.FillPath(g)
	g.check(t, func(x, y int) bool { return true })
}

func TestStrokeHorizontalLine(t *testing.T) {
	var p PathBuilder
	p.StartPath()
	// Width 2 units is one pixel; square caps extend half a pixel past
	// each endpoint, pulling in one extra column per side.
	p.AddMove(4, 10)
	p.AddLine(10, 10)
	p.EndPath()

	g := newGridTarget(8, 8)
	p.PlotPath(g, 2)
	g.check(t, func(x, y int) bool {
		return y == 2 && x >= 2 && x <= 5
	})
}

func TestStrokeZeroWidth(t *testing.T) {
	var p PathBuilder
	p.StartPath()
	p.AddMove(4, 10)
	p.AddLine(10, 10)
	p.EndPath()

	// Zero width still produces the thinnest visible stroke.
	g := newGridTarget(8, 8)
	p.PlotPath(g, 0)
	g.check(t, func(x, y int) bool {
		return y == 2 && x >= 2 && x <= 5
	})
}

func TestStrokeLonePoint(t *testing.T) {
	var p PathBuilder
	p.StartPath()
	p.AddMove(4, 10)
	p.EndPath()

	g := newGridTarget(8, 8)
	p.PlotPath(g, 2)
	g.check(t, func(x, y int) bool { return x == 2 && y == 2 })
}

func TestStrokeClosedSquareLeavesInterior(t *testing.T) {
	var p PathBuilder
	p.StartPath()
	square(&p, 2, 12, 12, 2)
	p.EndPath()

	g := newGridTarget(8, 8)
	p.PlotPath(g, 2)

	for _, c := range [][2]int{{1, 1}, {6, 1}, {1, 6}, {6, 6}, {3, 1}, {1, 3}} {
		if !g.pix[c[1]][c[0]] {
			t.Errorf("outline pixel (%d,%d) not stroked", c[0], c[1])
		}
	}
	for _, c := range [][2]int{{3, 3}, {4, 4}, {0, 0}, {7, 7}} {
		if g.pix[c[1]][c[0]] {
			t.Errorf("pixel (%d,%d) painted outside the outline", c[0], c[1])
		}
	}
}
