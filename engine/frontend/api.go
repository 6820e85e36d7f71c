package frontend

import (
	"github.com/gopuzzles/desktop/engine/blitter"
)

// NoColour omits the fill or outline component of a shape.
const NoColour = -1

// Text alignment flags, combined with bitwise or. The vertical flag
// switches from baseline placement to centring on the reference point.
const (
	AlignVNormal = 0x000
	AlignVCentre = 0x100
	AlignHLeft   = 0x000
	AlignHCentre = 0x001
	AlignHRight  = 0x002
)

// Font types for DrawText.
const (
	FontVariable = iota
	FontFixed
)

// DrawingAPI is the callback table handed to the game engine. All
// coordinates are model-space pixels; colours are indices into the
// game's colour list, or NoColour to omit a component. The engine must
// bracket primitive calls between StartDraw and EndDraw.
type DrawingAPI struct {
	DrawText    func(x, y, fonttype, fontsize, align, colour int, text string)
	DrawRect    func(x, y, w, h, colour int)
	DrawLine    func(x1, y1, x2, y2, colour int)
	DrawPolygon func(coords []int, fill, outline int)
	DrawCircle  func(cx, cy, radius, fill, outline int)
	DrawUpdate  func(x, y, w, h int)
	Clip        func(x, y, w, h int)
	Unclip      func()
	StartDraw   func()
	EndDraw     func()
	StatusBar   func(text string)
	BlitterNew  func(w, h int) *blitter.Blitter
	BlitterFree func(b *blitter.Blitter)
	BlitterSave func(b *blitter.Blitter, x, y int)
	BlitterLoad func(b *blitter.Blitter, x, y int)
}
