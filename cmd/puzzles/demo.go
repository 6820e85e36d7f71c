package main

import (
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/gopuzzles/desktop/engine/blitter"
	"github.com/gopuzzles/desktop/engine/canvas"
	"github.com/gopuzzles/desktop/engine/frontend"
)

// demoGame is a small lights-out puzzle that exercises the whole
// drawing API: rects, lines, polygons, circles, text in both faces,
// clipping, blitter drag overlays, the status bar and the animation
// timer.
type demoGame struct {
	api *frontend.DrawingAPI
	fe  *frontend.Frontend

	gridSize int
	tile     int
	border   int
	caption  int // caption band height above the grid

	lit        [][]bool
	curX, curY int
	moves      int
	solved     bool

	flashAccum float64
	flashOn    bool

	marker   *blitter.Blitter
	dragging bool

	rng *rand.Rand
}

// Palette indices for the demo's colour list.
const (
	colBackground = iota
	colTile
	colGrid
	colLit
	colCursor
	colAccent
	colText
	colCount
)

func newDemoGame() *demoGame {
	seed := frontend.RandomSeed()
	var pad [8]byte
	copy(pad[:], seed)
	return &demoGame{
		gridSize: 5,
		tile:     48,
		border:   24,
		caption:  40,
		rng:      rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(pad[:])))),
	}
}

func (g *demoGame) bind(fe *frontend.Frontend) { g.fe = fe }

func (g *demoGame) Attach(api *frontend.DrawingAPI) { g.api = api }

func (g *demoGame) NewGame() {
	g.lit = make([][]bool, g.gridSize)
	for i := range g.lit {
		g.lit[i] = make([]bool, g.gridSize)
	}
	// Scramble with random moves so every board is solvable.
	for i := 0; i < 20; i++ {
		g.toggle(g.rng.Intn(g.gridSize), g.rng.Intn(g.gridSize))
	}
	g.curX, g.curY = g.gridSize/2, g.gridSize/2
	g.moves = 0
	g.solved = false
	g.flashOn = false
}

func (g *demoGame) NegotiateSize(maxW, maxH int) (int, int) {
	avail := maxW
	if maxH < avail {
		avail = maxH
	}
	g.tile = (avail - 2*g.border - g.caption) / g.gridSize
	if g.tile > 48 {
		g.tile = 48
	}
	if g.tile < 8 {
		g.tile = 8
	}
	side := 2*g.border + g.gridSize*g.tile
	return side, side + g.caption
}

func (g *demoGame) Colours() []canvas.GameColour {
	bg := frontend.DefaultColour()
	return []canvas.GameColour{
		colBackground: bg,
		colTile:       {1.0, 1.0, 1.0},
		colGrid:       {0.4, 0.4, 0.4},
		colLit:        {1.0, 0.8, 0.0},
		colCursor:     {0.8, 0.1, 0.1},
		colAccent:     {0.1, 0.3, 0.8},
		colText:       {0.1, 0.1, 0.1},
	}
}

func (g *demoGame) WantsStatusBar() bool { return true }

func (g *demoGame) size() (int, int) {
	side := 2*g.border + g.gridSize*g.tile
	return side, side + g.caption
}

func (g *demoGame) tileOrigin(tx, ty int) (int, int) {
	return g.border + tx*g.tile, g.caption + g.border + ty*g.tile
}

func (g *demoGame) tileAt(x, y int) (int, int, bool) {
	x -= g.border
	y -= g.caption + g.border
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	tx, ty := x/g.tile, y/g.tile
	if tx >= g.gridSize || ty >= g.gridSize {
		return 0, 0, false
	}
	return tx, ty, true
}

func (g *demoGame) toggle(tx, ty int) {
	flip := func(x, y int) {
		if x >= 0 && x < g.gridSize && y >= 0 && y < g.gridSize {
			g.lit[y][x] = !g.lit[y][x]
		}
	}
	flip(tx, ty)
	flip(tx-1, ty)
	flip(tx+1, ty)
	flip(tx, ty-1)
	flip(tx, ty+1)
}

func (g *demoGame) allOut() bool {
	for _, row := range g.lit {
		for _, on := range row {
			if on {
				return false
			}
		}
	}
	return true
}

func (g *demoGame) Redraw() {
	w, h := g.size()
	api := g.api

	api.StartDraw()
	api.DrawRect(0, 0, w, h, colBackground)

	api.DrawText(w/2, g.caption/2, frontend.FontVariable, 24,
		frontend.AlignHCentre|frontend.AlignVCentre, colText, "LIGHTS OUT")

	for ty := 0; ty < g.gridSize; ty++ {
		for tx := 0; tx < g.gridSize; tx++ {
			g.drawTile(tx, ty)
		}
	}

	// Frame around the grid.
	x0, y0 := g.tileOrigin(0, 0)
	side := g.gridSize * g.tile
	api.DrawPolygon([]int{
		x0 - 1, y0 - 1,
		x0 + side, y0 - 1,
		x0 + side, y0 + side,
		x0 - 1, y0 + side,
	}, frontend.NoColour, colGrid)

	if g.solved {
		g.drawBanner()
	}

	api.DrawUpdate(0, 0, w, h)
	api.EndDraw()

	api.StatusBar(fmt.Sprintf("Moves: %d", g.moves))
}

func (g *demoGame) drawTile(tx, ty int) {
	api := g.api
	x, y := g.tileOrigin(tx, ty)

	api.DrawRect(x, y, g.tile, g.tile, colTile)
	api.DrawLine(x, y, x+g.tile-1, y, colGrid)
	api.DrawLine(x, y, x, y+g.tile-1, colGrid)
	api.DrawLine(x+g.tile-1, y, x+g.tile-1, y+g.tile-1, colGrid)
	api.DrawLine(x, y+g.tile-1, x+g.tile-1, y+g.tile-1, colGrid)

	if g.lit[ty][tx] {
		api.DrawCircle(x+g.tile/2, y+g.tile/2, g.tile/2-4, colLit, colGrid)
	}

	if tx == g.curX && ty == g.curY {
		m := 4
		api.DrawPolygon([]int{
			x + g.tile/2, y + m,
			x + g.tile - m, y + g.tile/2,
			x + g.tile/2, y + g.tile - m,
			x + m, y + g.tile/2,
		}, frontend.NoColour, colCursor)
	}
}

// drawBanner paints the win banner with diagonal stripes, clipped to
// the banner rectangle.
func (g *demoGame) drawBanner() {
	api := g.api
	w, h := g.size()
	bx, by := g.border, h/2-20
	bw, bh := w-2*g.border, 40

	api.DrawRect(bx, by, bw, bh, colAccent)

	api.Clip(bx, by, bw, bh)
	if g.flashOn {
		for x := -bh; x < bw; x += 8 {
			api.DrawLine(bx+x, by+bh-1, bx+x+bh, by, colTile)
		}
	}
	api.Unclip()

	api.DrawText(w/2, by+bh/2, frontend.FontFixed, 18,
		frontend.AlignHCentre|frontend.AlignVCentre, colTile, "SOLVED")
}

func (g *demoGame) redrawBanner() {
	w, h := g.size()
	api := g.api

	api.StartDraw()
	g.drawBanner()
	api.DrawUpdate(g.border, h/2-20, w-2*g.border, 40)
	api.EndDraw()
}

func (g *demoGame) ProcessKey(x, y, button int) bool {
	switch {
	case button == frontend.LeftButton:
		tx, ty, ok := g.tileAt(x, y)
		if !ok || g.solved {
			return true
		}
		g.toggle(tx, ty)
		g.curX, g.curY = tx, ty
		g.moves++
		g.checkSolved()
		g.Redraw()
		return true

	case button == frontend.RightButton:
		g.startDrag(x, y)
		return true
	case button == frontend.RightDrag:
		g.moveDrag(x, y)
		return true
	case button == frontend.RightRelease:
		g.endDrag()
		return true

	case button == frontend.CursorUp:
		return g.moveCursor(0, -1)
	case button == frontend.CursorDown:
		return g.moveCursor(0, 1)
	case button == frontend.CursorLeft:
		return g.moveCursor(-1, 0)
	case button == frontend.CursorRight:
		return g.moveCursor(1, 0)
	case button == frontend.CursorSelect:
		if g.solved {
			return true
		}
		g.toggle(g.curX, g.curY)
		g.moves++
		g.checkSolved()
		g.Redraw()
		return true

	case button == 'n':
		g.NewGame()
		g.Redraw()
		return true
	}
	return false
}

func (g *demoGame) moveCursor(dx, dy int) bool {
	nx, ny := g.curX+dx, g.curY+dy
	if nx < 0 || nx >= g.gridSize || ny < 0 || ny >= g.gridSize {
		return true
	}
	g.curX, g.curY = nx, ny
	g.Redraw()
	return true
}

func (g *demoGame) checkSolved() {
	if g.allOut() && !g.solved {
		g.solved = true
		g.flashOn = true
		if g.fe != nil {
			g.fe.ActivateTimer()
		}
	}
}

// Drag overlay: a marker circle floats under the pointer, restoring
// the pixels beneath it from a blitter snapshot on every move.
const markerSize = 24

func (g *demoGame) startDrag(x, y int) {
	api := g.api
	if g.marker == nil {
		g.marker = api.BlitterNew(markerSize, markerSize)
		if g.marker == nil {
			return
		}
	}
	g.dragging = true

	api.StartDraw()
	api.BlitterSave(g.marker, x-markerSize/2, y-markerSize/2)
	api.DrawCircle(x, y, markerSize/2-2, colAccent, colGrid)
	api.EndDraw()
	g.dragUpdate(x, y)
}

func (g *demoGame) moveDrag(x, y int) {
	if !g.dragging {
		return
	}
	api := g.api
	api.StartDraw()
	api.BlitterLoad(g.marker, blitter.FromSaved, blitter.FromSaved)
	api.BlitterSave(g.marker, x-markerSize/2, y-markerSize/2)
	api.DrawCircle(x, y, markerSize/2-2, colAccent, colGrid)
	api.EndDraw()
	w, h := g.size()
	api.DrawUpdate(0, 0, w, h)
}

func (g *demoGame) endDrag() {
	if !g.dragging {
		return
	}
	g.dragging = false
	api := g.api
	api.StartDraw()
	api.BlitterLoad(g.marker, blitter.FromSaved, blitter.FromSaved)
	api.EndDraw()
	api.BlitterFree(g.marker)
	g.marker = nil
	w, h := g.size()
	api.DrawUpdate(0, 0, w, h)
}

func (g *demoGame) dragUpdate(x, y int) {
	g.api.DrawUpdate(x-markerSize/2-1, y-markerSize/2-1, markerSize+2, markerSize+2)
}

func (g *demoGame) Timer(elapsed float64) {
	g.flashAccum += elapsed
	if g.flashAccum < 0.5 {
		return
	}
	g.flashAccum = 0
	g.flashOn = !g.flashOn
	g.redrawBanner()
}
