// Package canvas implements the off-screen drawing surface used by game
// windows and blitters: a 256-colour indexed pixel buffer kept in the
// classic sprite-area format (area header, sprite header, optional palette,
// word-padded rows), together with the redirection machinery that points
// drawing operations at the buffer.
package canvas

import (
	"encoding/binary"
	"errors"
	"log/slog"
	"os"
)

const (
	// PixelSize is the number of drawing units per canvas pixel. All
	// session and blitter coordinates are expressed in these units.
	PixelSize = 2

	// MaxPaletteEntries is the fixed palette capacity of the sprite format.
	MaxPaletteEntries = 256

	areaHeaderSize   = 16
	spriteHeaderSize = 44

	// Each palette entry holds two colour words (on and off).
	paletteSize = MaxPaletteEntries * 4 * 2

	// 256-colour mode, one byte per pixel.
	spriteMode = 21

	spriteName = "canvas"

	// Size of the redirection save-state blob. The first word is zeroed
	// whenever the blob is (re)configured, which resets any stale context.
	saveAreaSize = 32
)

var (
	ErrNoCanvas           = errors.New("canvas: no instance")
	ErrBadDimensions      = errors.New("canvas: zero or negative dimensions")
	ErrNoSprite           = errors.New("canvas: no sprite configured")
	ErrNoSaveArea         = errors.New("canvas: no save area configured")
	ErrNoPalette          = errors.New("canvas: sprite has no palette")
	ErrPaletteExists      = errors.New("canvas: sprite already has a palette")
	ErrSpriteNotAlone     = errors.New("canvas: sprite is not alone in the area")
	ErrNoPaletteSpace     = errors.New("canvas: no free space for a palette")
	ErrBadColourCount     = errors.New("canvas: colour count out of range")
	ErrPaletteIncomplete  = errors.New("canvas: palette not fully defined")
	ErrRedirectionActive  = errors.New("canvas: redirection already active")
	ErrRedirectionStopped = errors.New("canvas: redirection not active")
)

// Colour is an 8-bit RGB triple as stored in the sprite palette.
type Colour struct {
	R, G, B uint8
}

// GameColour is a colour supplied by the game engine: three channels in
// the range [0, 1].
type GameColour [3]float64

// Quantise converts a game colour to its 8-bit palette form.
func (g GameColour) Quantise() Colour {
	return Colour{quantiseChannel(g[0]), quantiseChannel(g[1]), quantiseChannel(g[2])}
}

func quantiseChannel(c float64) uint8 {
	v := int(c*255 + 0.5)
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return uint8(v)
}

// spriteView caches the byte offsets into the sprite area, computed once
// when the area is configured instead of being re-derived at each call.
type spriteView struct {
	sprite    int // offset of the sprite header within the area
	image     int // offset of the pixel data from the sprite header
	palette   int // offset of the palette from the sprite header, 0 if none
	rowStride int // bytes per pixel row, word aligned
}

// Canvas owns one sprite area holding a single 256-colour sprite, plus the
// save-state blob used while drawing is redirected into the sprite.
type Canvas struct {
	width  int
	height int

	area []byte
	view spriteView

	saveArea []byte

	redirectionActive bool
	sess              *Session
}

// New creates an empty canvas. The pixel buffer is not allocated until
// ConfigureArea is called.
func New() *Canvas {
	return &Canvas{}
}

// Close releases the pixel buffer and save area.
func (c *Canvas) Close() {
	if c == nil {
		return
	}
	c.area = nil
	c.saveArea = nil
	c.view = spriteView{}
	c.width, c.height = 0, 0
	c.redirectionActive = false
	c.sess = nil
}

// rowStrideFor returns the byte length of one pixel row. Rows are padded
// to a word boundary, with extra slack so blitter copies that start at an
// unaligned address stay inside the row.
func rowStrideFor(width int) int {
	return (width + 6) &^ 3
}

// ConfigureArea allocates or resizes the sprite area for the given pixel
// dimensions, creating the single sprite within it and, if requested,
// splicing in a 256-entry palette by adjusting the stored header offsets.
func (c *Canvas) ConfigureArea(width, height int, includePalette bool) error {
	if c == nil {
		return ErrNoCanvas
	}

	c.width, c.height = 0, 0
	c.view = spriteView{}

	// A stale save area must not carry context across a reconfigure.
	if c.saveArea != nil {
		binary.LittleEndian.PutUint32(c.saveArea, 0)
	}

	areaSize := areaHeaderSize + spriteHeaderSize
	stride := 0
	if width > 0 && height > 0 {
		stride = rowStrideFor(width)
		areaSize = areaHeaderSize + spriteHeaderSize + stride*height
	}
	if includePalette {
		areaSize += paletteSize
	}

	c.area = make([]byte, areaSize)
	binary.LittleEndian.PutUint32(c.area[0:], uint32(areaSize))
	binary.LittleEndian.PutUint32(c.area[4:], 0)
	binary.LittleEndian.PutUint32(c.area[8:], areaHeaderSize)
	binary.LittleEndian.PutUint32(c.area[12:], areaHeaderSize)

	if width <= 0 || height <= 0 {
		return ErrBadDimensions
	}

	// Create the sprite header directly after the area header.
	spriteSize := spriteHeaderSize + stride*height
	hdr := c.area[areaHeaderSize:]
	binary.LittleEndian.PutUint32(hdr[0:], uint32(spriteSize))
	copy(hdr[4:16], spriteName)
	binary.LittleEndian.PutUint32(hdr[16:], uint32(stride/4-1))
	binary.LittleEndian.PutUint32(hdr[20:], uint32(height-1))
	binary.LittleEndian.PutUint32(hdr[24:], 0)
	binary.LittleEndian.PutUint32(hdr[28:], uint32(((width-1)%4)*8+7))
	binary.LittleEndian.PutUint32(hdr[32:], spriteHeaderSize)
	binary.LittleEndian.PutUint32(hdr[36:], spriteHeaderSize)
	binary.LittleEndian.PutUint32(hdr[40:], spriteMode)

	binary.LittleEndian.PutUint32(c.area[4:], 1)
	binary.LittleEndian.PutUint32(c.area[12:], uint32(areaHeaderSize+spriteSize))

	c.width, c.height = width, height
	c.view = spriteView{
		sprite:    areaHeaderSize,
		image:     spriteHeaderSize,
		palette:   0,
		rowStride: stride,
	}

	if includePalette {
		if err := c.insertPalette(); err != nil {
			return err
		}
	}

	slog.Debug("canvas configured", "width", width, "height", height,
		"palette", includePalette, "bytes", areaSize)

	return nil
}

// insertPalette splices a 256-entry palette into the sprite by hand,
// moving the stored image and mask offsets past the palette block. The
// sprite must be freshly created: the pixel data is not shifted.
func (c *Canvas) insertPalette() error {
	if !c.spriteExists() {
		return ErrNoSprite
	}
	if c.view.palette != 0 {
		return ErrPaletteExists
	}

	areaSizeV := binary.LittleEndian.Uint32(c.area[0:])
	first := binary.LittleEndian.Uint32(c.area[8:])
	used := binary.LittleEndian.Uint32(c.area[12:])
	hdr := c.area[c.view.sprite:]
	spriteSize := binary.LittleEndian.Uint32(hdr[0:])

	if used != first+spriteSize {
		return ErrSpriteNotAlone
	}
	if areaSizeV-used < paletteSize {
		return ErrNoPaletteSpace
	}

	binary.LittleEndian.PutUint32(c.area[12:], used+paletteSize)
	binary.LittleEndian.PutUint32(hdr[0:], spriteSize+paletteSize)
	image := binary.LittleEndian.Uint32(hdr[32:])
	mask := binary.LittleEndian.Uint32(hdr[36:])
	binary.LittleEndian.PutUint32(hdr[32:], image+paletteSize)
	binary.LittleEndian.PutUint32(hdr[36:], mask+paletteSize)

	c.view.palette = spriteHeaderSize
	c.view.image = spriteHeaderSize + paletteSize

	return nil
}

// ConfigureSaveArea sizes the redirection save-state blob to match the
// current sprite, resetting any stored context.
func (c *Canvas) ConfigureSaveArea() error {
	if c == nil {
		return ErrNoCanvas
	}
	if !c.spriteExists() {
		return ErrNoSprite
	}

	if c.saveArea == nil {
		c.saveArea = make([]byte, saveAreaSize)
	}
	binary.LittleEndian.PutUint32(c.saveArea, 0)

	return nil
}

func (c *Canvas) spriteExists() bool {
	if c == nil || c.area == nil {
		return false
	}
	first := binary.LittleEndian.Uint32(c.area[8:])
	used := binary.LittleEndian.Uint32(c.area[12:])
	return first != used
}

func (c *Canvas) hasPalette() bool {
	return c.spriteExists() && c.view.palette != 0
}

// Size returns the canvas dimensions in pixels. An unconfigured canvas
// reports zeros.
func (c *Canvas) Size() (int, int) {
	if c == nil {
		return 0, 0
	}
	return c.width, c.height
}

// pixels returns the pixel data slice for the current sprite.
func (c *Canvas) pixels() []byte {
	start := c.view.sprite + c.view.image
	return c.area[start : start+c.view.rowStride*c.height]
}

func (c *Canvas) pixelAt(px, py int) int {
	return py*c.view.rowStride + px
}

// StartRedirection begins a drawing session targeting this canvas and
// returns the session handle through which primitives are issued. The
// session remains valid until StopRedirection.
func (c *Canvas) StartRedirection() (*Session, error) {
	if c == nil {
		return nil, ErrNoCanvas
	}
	if !c.spriteExists() {
		return nil, ErrNoSprite
	}
	if c.saveArea == nil {
		return nil, ErrNoSaveArea
	}
	if c.redirectionActive {
		return nil, ErrRedirectionActive
	}

	binary.LittleEndian.PutUint32(c.saveArea, 1)
	c.sess = &Session{canvas: c}
	c.redirectionActive = true

	slog.Debug("canvas redirection active")

	return c.sess, nil
}

// StopRedirection ends the active drawing session, clearing any clip
// region that is still in force.
func (c *Canvas) StopRedirection() error {
	if c == nil {
		return ErrNoCanvas
	}
	if !c.spriteExists() {
		return ErrNoSprite
	}
	if c.saveArea == nil {
		return ErrNoSaveArea
	}
	if !c.redirectionActive {
		return ErrRedirectionStopped
	}

	c.sess.clearClip()
	c.sess.released = true
	c.sess = nil
	c.redirectionActive = false
	binary.LittleEndian.PutUint32(c.saveArea, 0)

	slog.Debug("canvas redirection inactive")

	return nil
}

// IsRedirectionActive reports whether a drawing session is in progress.
func (c *Canvas) IsRedirectionActive() bool {
	return c != nil && c.spriteExists() && c.saveArea != nil && c.redirectionActive
}

// Factors is the pixel scaling applied when the canvas is painted to the
// screen: each canvas pixel covers XMul/XDiv by YMul/YDiv screen pixels.
type Factors struct {
	XMul, YMul int
	XDiv, YDiv int
}

// TransTable maps palette indices to screen colours for a repaint.
type TransTable [MaxPaletteEntries][4]uint8

// PrepareRedraw computes the scaling factors and colour translation table
// needed to paint the canvas, once per repaint cycle.
func (c *Canvas) PrepareRedraw() (Factors, *TransTable, error) {
	if c == nil {
		return Factors{}, nil, ErrNoCanvas
	}
	if !c.spriteExists() {
		return Factors{}, nil, ErrNoSprite
	}

	table := new(TransTable)
	for i := 0; i < MaxPaletteEntries; i++ {
		col := c.PaletteEntry(i)
		table[i] = [4]uint8{col.R, col.G, col.B, 0xff}
	}

	return Factors{XMul: PixelSize, YMul: PixelSize, XDiv: 1, YDiv: 1}, table, nil
}

// RedrawSprite paints the canvas into an RGBA frame at the given top-left
// pixel position using the supplied tables. Errors during a repaint must
// never escape, so invalid state is quietly ignored.
func (c *Canvas) RedrawSprite(frame []byte, frameW, frameH, x, y int, factors Factors, table *TransTable) {
	if c == nil || !c.spriteExists() || frame == nil || table == nil {
		return
	}
	if factors.XDiv <= 0 || factors.YDiv <= 0 {
		return
	}

	pix := c.pixels()
	for py := 0; py < c.height; py++ {
		row := pix[c.pixelAt(0, py):]
		oy0 := y + py*factors.YMul/factors.YDiv
		oy1 := y + (py+1)*factors.YMul/factors.YDiv
		for px := 0; px < c.width; px++ {
			col := table[row[px]]
			ox0 := x + px*factors.XMul/factors.XDiv
			ox1 := x + (px+1)*factors.XMul/factors.XDiv
			for oy := oy0; oy < oy1; oy++ {
				if oy < 0 || oy >= frameH {
					continue
				}
				for ox := ox0; ox < ox1; ox++ {
					if ox < 0 || ox >= frameW {
						continue
					}
					o := (oy*frameW + ox) * 4
					frame[o] = col[0]
					frame[o+1] = col[1]
					frame[o+2] = col[2]
					frame[o+3] = col[3]
				}
			}
		}
	}
}

// CaptureFrom copies a region of src into this canvas. The coordinates
// give the top-left corner of the region in src drawing units, matching
// the blitter's frame of reference: the bottom edge sits at
// y - PixelSize*(height-1).
func (c *Canvas) CaptureFrom(src *Canvas, x, y int) error {
	if c == nil || src == nil {
		return ErrNoCanvas
	}
	if !c.spriteExists() || !src.spriteExists() {
		return ErrNoSprite
	}

	c.copyRows(src, x, y, true)
	return nil
}

// PaintTo copies this canvas into a region of dst, the inverse of
// CaptureFrom. Coordinates are the top-left corner in dst drawing units.
func (c *Canvas) PaintTo(dst *Canvas, x, y int) error {
	if c == nil || dst == nil {
		return ErrNoCanvas
	}
	if !c.spriteExists() || !dst.spriteExists() {
		return ErrNoSprite
	}

	c.copyRows(dst, x, y, false)
	return nil
}

// copyRows moves pixels between this canvas and a peer. The peer region
// starts at the pixel addressed by the unit coordinates (x, y) and spans
// this canvas's size; out-of-range rows and columns are skipped.
func (c *Canvas) copyRows(peer *Canvas, x, y int, capture bool) {
	peerCol := x / PixelSize
	peerRow := peer.height - 1 - y/PixelSize

	own := c.pixels()
	other := peer.pixels()

	for row := 0; row < c.height; row++ {
		pr := peerRow + row
		if pr < 0 || pr >= peer.height {
			continue
		}
		for col := 0; col < c.width; col++ {
			pc := peerCol + col
			if pc < 0 || pc >= peer.width {
				continue
			}
			if capture {
				own[c.pixelAt(col, row)] = other[peer.pixelAt(pc, pr)]
			} else {
				other[peer.pixelAt(pc, pr)] = own[c.pixelAt(col, row)]
			}
		}
	}
}

// SaveToFile writes the raw sprite area to a file as a debugging aid.
// A canvas with no sprite is silently ignored.
func (c *Canvas) SaveToFile(path string) {
	if c == nil || path == "" || !c.spriteExists() {
		return
	}

	err := os.WriteFile(path, c.area, 0o644)
	if err != nil {
		slog.Debug("canvas save failed", "path", path, "err", err)
		return
	}
	slog.Debug("canvas saved", "path", path, "bytes", len(c.area))
}
