package gamedraw

import (
	"math"
	"sort"

	"github.com/gopuzzles/desktop/engine/canvas"
)

// Target receives the pixel spans produced by the rasteriser. Rows count
// downwards from the top of the target; spans are inclusive of both ends.
// Clipping is the target's responsibility.
type Target interface {
	SizePixels() (w, h int)
	Span(row, x0, x1 int)
}

type point struct {
	x, y float64
}

// toPixels converts a decoded subpath from fixed-point drawing units to
// continuous pixel coordinates with y increasing downwards. A unit point
// lands on the centre of the pixel it addresses.
func toPixels(sp subpath, height int) []point {
	pts := make([]point, 0, len(sp.xs))
	for i := range sp.xs {
		ux := float64(sp.xs[i]) / (1 << coordShift)
		uy := float64(sp.ys[i]) / (1 << coordShift)
		px := ux/canvas.PixelSize + 0.5
		py := float64(height) - 0.5 - uy/canvas.PixelSize
		pts = append(pts, point{px, py})
	}
	return pts
}

// edge is a polygon edge oriented downwards, carrying its original
// winding direction.
type edge struct {
	x0, y0  float64
	x1, y1  float64
	dxdy    float64
	winding int
}

func addEdge(edges []edge, a, b point) []edge {
	if a.y == b.y {
		return edges
	}
	w := 1
	if a.y > b.y {
		a, b = b, a
		w = -1
	}
	return append(edges, edge{
		x0: a.x, y0: a.y,
		x1: b.x, y1: b.y,
		dxdy:    (b.x - a.x) / (b.y - a.y),
		winding: w,
	})
}

func polygonEdges(edges []edge, pts []point) []edge {
	if len(pts) < 2 {
		return edges
	}
	for i := 1; i < len(pts); i++ {
		edges = addEdge(edges, pts[i-1], pts[i])
	}
	// Implicit closing segment.
	edges = addEdge(edges, pts[len(pts)-1], pts[0])
	return edges
}

type crossing struct {
	x       float64
	winding int
}

// fillEdges scans the edge list and emits non-zero winding spans.
func fillEdges(t Target, edges []edge) {
	if len(edges) == 0 {
		return
	}

	_, h := t.SizePixels()

	minY, maxY := edges[0].y0, edges[0].y1
	for _, e := range edges[1:] {
		minY = math.Min(minY, e.y0)
		maxY = math.Max(maxY, e.y1)
	}

	row0 := int(math.Ceil(minY - 0.5))
	row1 := int(math.Floor(maxY - 0.5))
	if row0 < 0 {
		row0 = 0
	}
	if row1 >= h {
		row1 = h - 1
	}

	var xs []crossing
	for row := row0; row <= row1; row++ {
		y := float64(row) + 0.5
		xs = xs[:0]
		for _, e := range edges {
			if y < e.y0 || y >= e.y1 {
				continue
			}
			xs = append(xs, crossing{e.x0 + (y-e.y0)*e.dxdy, e.winding})
		}
		if len(xs) < 2 {
			continue
		}
		sort.Slice(xs, func(i, j int) bool { return xs[i].x < xs[j].x })

		acc := 0
		var start float64
		for _, c := range xs {
			was := acc
			acc += c.winding
			if was == 0 && acc != 0 {
				start = c.x
			} else if was != 0 && acc == 0 {
				emitSpan(t, row, start, c.x)
			}
		}
	}
}

// emitSpan fills the pixels whose centres lie within [x0, x1).
func emitSpan(t Target, row int, x0, x1 float64) {
	p0 := int(math.Ceil(x0 - 0.5))
	p1 := int(math.Ceil(x1-0.5)) - 1
	if p0 <= p1 {
		t.Span(row, p0, p1)
	}
}

// fillPath rasterises the decoded subpaths as one non-zero winding fill.
func fillPath(t Target, sps []subpath) {
	_, h := t.SizePixels()
	if h <= 0 {
		return
	}

	var edges []edge
	for _, sp := range sps {
		edges = polygonEdges(edges, toPixels(sp, h))
	}
	fillEdges(t, edges)
}

// strokePath expands each subpath into a filled outline with mitred
// joins and square caps, then fills all outlines together. The width is
// given in drawing units; zero means the thinnest visible stroke.
func strokePath(t Target, sps []subpath, width int) {
	_, h := t.SizePixels()
	if h <= 0 {
		return
	}

	half := float64(width) / (2 * canvas.PixelSize)
	if half < 0.5 {
		half = 0.5
	}

	var edges []edge
	for _, sp := range sps {
		pts := dedupPoints(toPixels(sp, h))
		switch {
		case len(pts) == 0:
			continue
		case len(pts) == 1:
			// A lone point strokes as a square dot.
			p := pts[0]
			dot := []point{
				{p.x - half, p.y - half},
				{p.x + half, p.y - half},
				{p.x + half, p.y + half},
				{p.x - half, p.y + half},
			}
			edges = polygonEdges(edges, dot)
		case sp.closed:
			edges = polygonEdges(edges, offsetRing(pts, half))
			edges = polygonEdges(edges, reversed(offsetRing(pts, -half)))
		default:
			edges = polygonEdges(edges, openOutline(pts, half))
		}
	}
	fillEdges(t, edges)
}

func dedupPoints(pts []point) []point {
	out := pts[:0]
	for _, p := range pts {
		if len(out) > 0 {
			q := out[len(out)-1]
			if math.Abs(p.x-q.x) < 1e-9 && math.Abs(p.y-q.y) < 1e-9 {
				continue
			}
		}
		out = append(out, p)
	}
	// A closing point that repeats the start contributes nothing.
	if len(out) > 1 {
		a, b := out[0], out[len(out)-1]
		if math.Abs(a.x-b.x) < 1e-9 && math.Abs(a.y-b.y) < 1e-9 {
			out = out[:len(out)-1]
		}
	}
	return out
}

func reversed(pts []point) []point {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
	return pts
}

// normalAt returns the unit normal of the segment from a to b.
func normalAt(a, b point) point {
	dx, dy := b.x-a.x, b.y-a.y
	l := math.Hypot(dx, dy)
	if l < 1e-12 {
		return point{0, 0}
	}
	return point{-dy / l, dx / l}
}

// joinPoints produces the mitred join at vertex p between the segments
// with normals n0 and n1, offset by half. Degenerate (near-reversal)
// joins fall back to a bevel.
func joinPoints(p point, n0, n1 point, half float64) []point {
	mx, my := n0.x+n1.x, n0.y+n1.y
	ml := math.Hypot(mx, my)
	if ml < 1e-6 {
		return []point{
			{p.x + n0.x*half, p.y + n0.y*half},
			{p.x + n1.x*half, p.y + n1.y*half},
		}
	}
	mx, my = mx/ml, my/ml
	dot := mx*n0.x + my*n0.y
	if dot < 1e-6 {
		return []point{
			{p.x + n0.x*half, p.y + n0.y*half},
			{p.x + n1.x*half, p.y + n1.y*half},
		}
	}
	scale := half / dot
	return []point{{p.x + mx*scale, p.y + my*scale}}
}

// offsetRing offsets a closed polyline by half along its normals,
// producing one ring of the stroke outline. A negative half gives the
// inner ring.
func offsetRing(pts []point, half float64) []point {
	n := len(pts)
	out := make([]point, 0, n*2)
	for i := 0; i < n; i++ {
		prev := pts[(i+n-1)%n]
		cur := pts[i]
		next := pts[(i+1)%n]
		n0 := normalAt(prev, cur)
		n1 := normalAt(cur, next)
		if half < 0 {
			n0.x, n0.y = -n0.x, -n0.y
			n1.x, n1.y = -n1.x, -n1.y
			out = append(out, joinPoints(cur, n1, n0, -half)...)
		} else {
			out = append(out, joinPoints(cur, n0, n1, half)...)
		}
	}
	return out
}

// openOutline builds the stroke outline of an open polyline: the forward
// side, a square cap, the reverse side, and the starting cap.
func openOutline(pts []point, half float64) []point {
	n := len(pts)
	out := make([]point, 0, n*4+4)

	// Forward side.
	first := normalAt(pts[0], pts[1])
	out = append(out, point{pts[0].x + first.x*half, pts[0].y + first.y*half})
	for i := 1; i < n-1; i++ {
		n0 := normalAt(pts[i-1], pts[i])
		n1 := normalAt(pts[i], pts[i+1])
		out = append(out, joinPoints(pts[i], n0, n1, half)...)
	}
	last := normalAt(pts[n-2], pts[n-1])
	out = append(out, point{pts[n-1].x + last.x*half, pts[n-1].y + last.y*half})

	// Square cap at the end: extend along the segment direction.
	dx, dy := capExtension(pts[n-2], pts[n-1], half)
	out = append(out,
		point{pts[n-1].x + last.x*half + dx, pts[n-1].y + last.y*half + dy},
		point{pts[n-1].x - last.x*half + dx, pts[n-1].y - last.y*half + dy})

	// Reverse side.
	out = append(out, point{pts[n-1].x - last.x*half, pts[n-1].y - last.y*half})
	for i := n - 2; i > 0; i-- {
		n0 := normalAt(pts[i], pts[i+1])
		n1 := normalAt(pts[i-1], pts[i])
		n0.x, n0.y = -n0.x, -n0.y
		n1.x, n1.y = -n1.x, -n1.y
		out = append(out, joinPoints(pts[i], n0, n1, half)...)
	}
	out = append(out, point{pts[0].x - first.x*half, pts[0].y - first.y*half})

	// Square cap at the start.
	dx, dy = capExtension(pts[1], pts[0], half)
	out = append(out,
		point{pts[0].x - first.x*half + dx, pts[0].y - first.y*half + dy},
		point{pts[0].x + first.x*half + dx, pts[0].y + first.y*half + dy})

	return out
}

// capExtension returns the outward extension vector for a square cap on
// the segment from a to b.
func capExtension(a, b point, half float64) (float64, float64) {
	dx, dy := b.x-a.x, b.y-a.y
	l := math.Hypot(dx, dy)
	if l < 1e-12 {
		return 0, 0
	}
	return dx / l * half, dy / l * half
}
