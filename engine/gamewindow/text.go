package gamewindow

import (
	"fmt"
	"log/slog"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gopuzzles/desktop/engine/canvas"
)

type faceKey struct {
	mono bool
	size int
}

// faceCache lazily parses the two bundled typefaces and keeps one
// sized face per (typeface, size) pair used by the game.
type faceCache struct {
	regular *opentype.Font
	mono    *opentype.Font
	faces   map[faceKey]font.Face
}

func (fc *faceCache) face(mono bool, size int) (font.Face, error) {
	key := faceKey{mono: mono, size: size}
	if f, ok := fc.faces[key]; ok {
		return f, nil
	}

	var err error
	if fc.regular == nil {
		fc.regular, err = opentype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
		fc.mono, err = opentype.Parse(gomono.TTF)
		if err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
	}

	ft := fc.regular
	if mono {
		ft = fc.mono
	}
	f, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: float64(size), DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}

	if fc.faces == nil {
		fc.faces = make(map[faceKey]font.Face)
	}
	fc.faces[key] = f
	return f, nil
}

func (fc *faceCache) close() {
	for _, f := range fc.faces {
		_ = f.Close()
	}
	fc.faces = nil
}

// WriteText draws a string with its reference point at the model
// coordinate (x, y). The size is the requested glyph height in pixels;
// mono selects the fixed-width face. Horizontal alignment is right,
// centre or left of the point for halign <0, 0 or >0; vertical
// alignment centres the string's own ink box on the point when valign
// is 0 and otherwise treats the point as the baseline. Centring uses
// the measured box per string, so mixed-height runs at the same y can
// sit a pixel or two apart.
func (w *Window) WriteText(x, y, size, halign, valign, colour int, mono bool, text string) error {
	if _, err := w.session(); err != nil {
		return err
	}
	if text == "" || size <= 0 {
		return nil
	}

	if err := w.SetColour(colour); err != nil {
		return err
	}

	face, err := w.faces.face(mono, size)
	if err != nil {
		return err
	}

	bounds, _ := font.BoundString(face, text)
	width := bounds.Max.X - bounds.Min.X

	ux, uy := w.toUnits(x, y)
	px := ux / canvas.PixelSize
	py := w.height - 1 - uy/canvas.PixelSize

	dot := fixed.Point26_6{X: fixed.I(px), Y: fixed.I(py)}
	switch {
	case halign < 0:
		dot.X -= width
	case halign == 0:
		dot.X -= width / 2
	}
	if valign == 0 {
		dot.Y -= (bounds.Min.Y + bounds.Max.Y) / 2
	}

	slog.Debug("draw text", "x", px, "y", py, "size", size, "mono", mono, "text", text)

	return w.drawString(face, dot, text)
}

// Coverage bands for glyph plotting: above solidAlpha the ink colour is
// plotted as-is, below edgeAlpha the pixel is skipped, and between the
// two the ink is blended with the pixel underneath and snapped to the
// nearest palette entry, which is what the synthesised gradient entries
// are there for.
const (
	solidAlpha = 0xc000
	edgeAlpha  = 0x4000
)

// drawString rasterises the glyphs through the session so the current
// colour and clip apply.
func (w *Window) drawString(face font.Face, dot fixed.Point26_6, text string) error {
	sess := w.sess
	ink := sess.Colour()
	inkCol := w.canvas.PaletteEntry(ink)

	prev := rune(-1)
	for _, r := range text {
		if prev >= 0 {
			dot.X += face.Kern(prev, r)
		}
		dr, mask, maskp, advance, ok := face.Glyph(dot, r)
		if !ok {
			prev = r
			continue
		}
		for yy := dr.Min.Y; yy < dr.Max.Y; yy++ {
			for xx := dr.Min.X; xx < dr.Max.X; xx++ {
				_, _, _, a := mask.At(maskp.X+xx-dr.Min.X, maskp.Y+yy-dr.Min.Y).RGBA()
				switch {
				case a >= solidAlpha:
					if err := sess.SetColour(ink); err != nil {
						return err
					}
				case a >= edgeAlpha:
					under := w.canvas.PaletteEntry(int(sess.PixelAt(xx, yy)))
					mixed := canvas.Colour{
						R: blendChannel(inkCol.R, under.R, a),
						G: blendChannel(inkCol.G, under.G, a),
						B: blendChannel(inkCol.B, under.B, a),
					}
					if err := sess.SetColour(w.canvas.NearestEntry(mixed)); err != nil {
						return err
					}
				default:
					continue
				}
				sess.SetPixel(xx, yy)
			}
		}
		dot.X += advance
		prev = r
	}
	return sess.SetColour(ink)
}

// blendChannel mixes a foreground and background channel by a 16-bit
// alpha.
func blendChannel(fg, bg uint8, a uint32) uint8 {
	return uint8((uint32(fg)*a + uint32(bg)*(0xffff-a)) / 0xffff)
}
