package canvas

import (
	"encoding/binary"
	"log/slog"
)

// The maximum relative error, in percent, between a generated gradient
// colour and an existing palette entry before the new colour is dropped
// as a near-duplicate.
const maxPaletteError = 5

// Number of intermediate colours generated between each pair of game
// colours.
const gradientLength = 5

var (
	colourBlack = Colour{0, 0, 0}
	colourWhite = Colour{255, 255, 255}
)

// SetGameColours programs the sprite palette from the colours requested by
// the game, then synthesises anti-aliasing gradients between them and
// fills the remainder with white, so that all 256 entries are defined.
func (c *Canvas) SetGameColours(colours []GameColour) error {
	if c == nil {
		return ErrNoCanvas
	}
	if !c.spriteExists() {
		return ErrNoSprite
	}
	if !c.hasPalette() {
		return ErrNoPalette
	}
	if len(colours) >= MaxPaletteEntries {
		return ErrBadColourCount
	}

	entries := c.setPaletteGameColours(0, colours)

	// Intermediate shades for anti-aliased plotting: a black-to-white
	// ramp, then a short gradient between every pair of game colours.
	entries = c.buildPaletteGradient(entries, colourBlack, colourWhite, 10)

	for start := 0; start < len(colours)-1; start++ {
		for end := start + 1; end < len(colours); end++ {
			entries = c.buildPaletteGradient(entries,
				c.paletteColour(start), c.paletteColour(end), gradientLength)
		}
	}

	entries = c.fillUnusedPalette(entries)

	slog.Debug("palette programmed", "game", len(colours), "entries", entries)

	if entries != MaxPaletteEntries {
		return ErrPaletteIncomplete
	}
	return nil
}

// PaletteEntry returns palette colour i, or black if the request is not
// valid.
func (c *Canvas) PaletteEntry(i int) Colour {
	if c == nil || !c.spriteExists() || !c.hasPalette() {
		return colourBlack
	}
	if i < 0 || i >= MaxPaletteEntries {
		return colourBlack
	}
	return c.paletteColour(i)
}

// NearestEntry returns the index of the palette entry closest to the
// given colour, used when anti-aliased sources are plotted onto the
// indexed canvas. Without a palette, index 0 is returned.
func (c *Canvas) NearestEntry(col Colour) int {
	if c == nil || !c.spriteExists() || !c.hasPalette() {
		return 0
	}

	best, bestDist := 0, 1<<30
	for i := 0; i < MaxPaletteEntries; i++ {
		e := c.paletteColour(i)
		dr := int(e.R) - int(col.R)
		dg := int(e.G) - int(col.G)
		db := int(e.B) - int(col.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return best
}

// setPaletteGameColours copies the game colours into the palette verbatim
// and returns the updated entry count.
func (c *Canvas) setPaletteGameColours(entries int, colours []GameColour) int {
	if entries >= MaxPaletteEntries {
		return entries
	}
	if len(colours) >= MaxPaletteEntries-entries {
		return entries
	}

	for _, col := range colours {
		c.setPaletteEntry(entries, col.Quantise())
		entries++
	}
	return entries
}

// buildPaletteGradient appends a gradient of points intermediate colours
// running from start to end, excluding both endpoints. Colours close
// enough to an existing entry are skipped, and a gradient that cannot fit
// in the remaining space is dropped whole.
func (c *Canvas) buildPaletteGradient(entries int, start, end Colour, points int) int {
	if entries >= MaxPaletteEntries {
		return entries
	}
	if points < 1 || points >= MaxPaletteEntries-entries {
		return entries
	}

	for step := 1; step <= points; step++ {
		col := Colour{
			R: gradientChannel(start.R, end.R, step, points),
			G: gradientChannel(start.G, end.G, step, points),
			B: gradientChannel(start.B, end.B, step, points),
		}

		include := true
		for search := 0; search < entries; search++ {
			e := c.paletteColour(search)
			if channelError(col.R, e.R) < maxPaletteError &&
				channelError(col.G, e.G) < maxPaletteError &&
				channelError(col.B, e.B) < maxPaletteError {
				include = false
				break
			}
		}

		if include {
			c.setPaletteEntry(entries, col)
			entries++
		}
	}

	return entries
}

func gradientChannel(start, end uint8, step, points int) uint8 {
	return uint8(((int(end)-int(start))*step/points + int(start)) & 0xff)
}

// channelError is the relative difference between a candidate channel and
// an existing one, in percent of the candidate. A zero candidate channel
// matches only a zero existing channel; anything else counts as a full
// mismatch, since the relative measure is undefined at zero.
func channelError(candidate, existing uint8) int {
	d := int(candidate) - int(existing)
	if d < 0 {
		d = -d
	}
	if candidate == 0 {
		if existing == 0 {
			return 0
		}
		return 100
	}
	return 100 * d / int(candidate)
}

// fillUnusedPalette pads the remaining entries with white so that the
// whole palette is defined.
func (c *Canvas) fillUnusedPalette(entries int) int {
	for ; entries < MaxPaletteEntries; entries++ {
		c.setPaletteEntry(entries, colourWhite)
	}
	return entries
}

// Palette entries are two colour words, on and off; this engine keeps
// them identical. A colour word holds the channels as 0xBBGGRR00.
func (c *Canvas) setPaletteEntry(entry int, col Colour) {
	if entry < 0 || entry >= MaxPaletteEntries {
		return
	}
	word := uint32(col.R)<<8 | uint32(col.G)<<16 | uint32(col.B)<<24
	off := c.view.sprite + c.view.palette + entry*8
	binary.LittleEndian.PutUint32(c.area[off:], word)
	binary.LittleEndian.PutUint32(c.area[off+4:], word)
}

func (c *Canvas) paletteColour(entry int) Colour {
	off := c.view.sprite + c.view.palette + entry*8
	word := binary.LittleEndian.Uint32(c.area[off:])
	return Colour{
		R: uint8(word >> 8),
		G: uint8(word >> 16),
		B: uint8(word >> 24),
	}
}
