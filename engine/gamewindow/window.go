// Package gamewindow translates the puzzle engine's drawing calls into
// canvas operations. The engine works in model space: integer pixel
// coordinates with the origin at the top-left and y increasing
// downwards. Every coordinate is mapped into the canvas's drawing-unit
// frame before being issued.
package gamewindow

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gopuzzles/desktop/engine/blitter"
	"github.com/gopuzzles/desktop/engine/canvas"
	"github.com/gopuzzles/desktop/engine/gamedraw"
)

// outlineWidth is the stroke width, in drawing units, used for polygon
// outlines.
const outlineWidth = 2

var (
	ErrNoWindow   = errors.New("gamewindow: window not created")
	ErrNotDrawing = errors.New("gamewindow: no drawing session active")
)

// Window owns the off-screen canvas for one game instance and carries
// the state shared by the drawing callbacks: the active session, the
// path builder, pending damage, the status text and the animation
// timer.
type Window struct {
	canvas   *canvas.Canvas
	blitters *blitter.Set
	faces    faceCache

	width, height int
	numColours    int

	sess *canvas.Session
	path gamedraw.PathBuilder

	hasDamage    bool
	damX0, damY0 int
	damX1, damY1 int
	status       string
	timerRunning bool
	timerLast    time.Time

	// OnInvalidate, if set, is called with the damaged model-space
	// rectangle (inclusive corners) whenever the engine requests a
	// repaint. OnStatusText is called when the status bar text changes.
	OnInvalidate func(x0, y0, x1, y1 int)
	OnStatusText func(text string)
}

func New() *Window {
	return &Window{
		canvas:   canvas.New(),
		blitters: blitter.NewSet(),
	}
}

// Close releases the canvas and every blitter the window still owns.
func (w *Window) Close() {
	if w == nil {
		return
	}
	w.blitters.Close()
	w.canvas.Close()
	w.faces.close()
	w.sess = nil
}

// Canvas exposes the backing canvas for the repaint path.
func (w *Window) Canvas() *canvas.Canvas {
	return w.canvas
}

// Size returns the canvas dimensions in model pixels.
func (w *Window) Size() (int, int) {
	return w.width, w.height
}

// CreateCanvas builds, or rebuilds, the off-screen canvas at the given
// pixel size and programs its palette from the game's colour list. A
// call with the current size is a no-op, so the engine can renegotiate
// without cost.
func (w *Window) CreateCanvas(width, height int, colours []canvas.GameColour) error {
	if w == nil {
		return ErrNoWindow
	}
	if w.width == width && w.height == height {
		return nil
	}

	w.width, w.height = 0, 0

	if err := w.canvas.ConfigureArea(width, height, true); err != nil {
		return fmt.Errorf("gamewindow: configure canvas: %w", err)
	}
	if err := w.canvas.SetGameColours(colours); err != nil {
		return fmt.Errorf("gamewindow: programme palette: %w", err)
	}
	if err := w.canvas.ConfigureSaveArea(); err != nil {
		return fmt.Errorf("gamewindow: configure save area: %w", err)
	}

	w.width, w.height = width, height
	w.numColours = len(colours)
	w.addDamage(0, 0, width-1, height-1)

	slog.Debug("canvas created", "width", width, "height", height, "colours", len(colours))

	return nil
}

// toUnits maps a model coordinate into drawing units; the y-flip
// converts from top-left row-down into the canvas's bottom-left y-up
// frame.
func (w *Window) toUnits(x, y int) (int, int) {
	return canvas.PixelSize * x, canvas.PixelSize * (w.height - (y + 1))
}

// StartDraw begins a drawing session on the canvas. Every primitive
// call below requires one.
func (w *Window) StartDraw() error {
	if w == nil {
		return ErrNoWindow
	}
	sess, err := w.canvas.StartRedirection()
	if err != nil {
		return fmt.Errorf("gamewindow: start draw: %w", err)
	}
	w.sess = sess
	return nil
}

// EndDraw finishes the session, clearing any clip region left in force.
func (w *Window) EndDraw() error {
	if w == nil {
		return ErrNoWindow
	}
	w.sess = nil
	if err := w.canvas.StopRedirection(); err != nil {
		return fmt.Errorf("gamewindow: end draw: %w", err)
	}
	return nil
}

func (w *Window) session() (*canvas.Session, error) {
	if w == nil {
		return nil, ErrNoWindow
	}
	if w.sess == nil || !w.canvas.IsRedirectionActive() {
		return nil, ErrNotDrawing
	}
	return w.sess, nil
}

// SetColour selects the plotting colour by game palette index. An index
// outside the game's colour list is accepted and leaves the current
// colour unchanged, which lets callers pass the "no colour" sentinel
// straight through.
func (w *Window) SetColour(colour int) error {
	sess, err := w.session()
	if err != nil {
		return err
	}
	if colour < 0 || colour >= w.numColours {
		return nil
	}
	if err := sess.SetColour(colour); err != nil {
		return err
	}
	slog.Debug("select colour", "colour", colour)
	return nil
}

// DrawRect fills the rectangle with top-left corner (x, y) spanning
// width by height model pixels.
func (w *Window) DrawRect(x, y, width, height, colour int) error {
	sess, err := w.session()
	if err != nil {
		return err
	}
	if err := w.SetColour(colour); err != nil {
		return err
	}
	ux0, uy0 := w.toUnits(x, y)
	ux1, uy1 := w.toUnits(x+width-1, y+height-1)
	return sess.FillRect(ux0, uy0, ux1, uy1)
}

// DrawLine draws a single-pixel line between two model points,
// inclusive of both endpoints.
func (w *Window) DrawLine(x1, y1, x2, y2, colour int) error {
	sess, err := w.session()
	if err != nil {
		return err
	}
	if err := w.SetColour(colour); err != nil {
		return err
	}
	ux0, uy0 := w.toUnits(x1, y1)
	ux1, uy1 := w.toUnits(x2, y2)
	return sess.DrawLine(ux0, uy0, ux1, uy1)
}

// DrawPolygon draws a closed polygon from interleaved x,y model
// coordinates. A fill or outline colour of -1 omits that component.
func (w *Window) DrawPolygon(coords []int, fill, outline int) error {
	sess, err := w.session()
	if err != nil {
		return err
	}
	n := len(coords) / 2
	if n == 0 {
		return nil
	}

	if err := w.SetColour(outline); err != nil {
		return err
	}

	w.path.StartPath()
	ux, uy := w.toUnits(coords[0], coords[1])
	w.path.AddMove(ux, uy)
	for i := 1; i < n; i++ {
		ux, uy = w.toUnits(coords[2*i], coords[2*i+1])
		w.path.AddLine(ux, uy)
	}
	w.path.CloseSubpath()
	w.path.EndPath()

	if fill != -1 {
		if err := w.SetColour(fill); err != nil {
			return err
		}
		w.path.FillPath(sess)
	}
	if outline != -1 {
		if err := w.SetColour(outline); err != nil {
			return err
		}
		w.path.PlotPath(sess, outlineWidth)
	}
	return nil
}

// DrawCircle draws a circle centred on a model point. The outline is
// always plotted; when the outline colour is -1 it lands in whatever
// colour is current, which for a filled circle is the fill colour.
func (w *Window) DrawCircle(cx, cy, radius, fill, outline int) error {
	sess, err := w.session()
	if err != nil {
		return err
	}

	ucx, ucy := w.toUnits(cx, cy)
	ur := canvas.PixelSize * radius

	if fill != -1 {
		if err := w.SetColour(fill); err != nil {
			return err
		}
		if err := sess.FillCircle(ucx, ucy, ur); err != nil {
			return err
		}
	}

	if err := w.SetColour(outline); err != nil {
		return err
	}
	return sess.DrawCircle(ucx, ucy, ur)
}

// SetClip restricts drawing to the model rectangle with top-left corner
// (x, y) spanning width by height pixels.
func (w *Window) SetClip(x, y, width, height int) error {
	sess, err := w.session()
	if err != nil {
		return err
	}
	ux0, uy0 := w.toUnits(x, y)
	ux1, uy1 := w.toUnits(x+width-1, y+height-1)
	return sess.SetClip(ux0, uy0, ux1, uy1)
}

// ClearClip removes the clip region.
func (w *Window) ClearClip() error {
	sess, err := w.session()
	if err != nil {
		return err
	}
	return sess.ClearClip()
}

// ForceRedraw merges the model rectangle (inclusive corners) into the
// pending damage region and notifies the host.
func (w *Window) ForceRedraw(x0, y0, x1, y1 int) {
	if w == nil {
		return
	}
	w.addDamage(x0, y0, x1, y1)
	if w.OnInvalidate != nil {
		w.OnInvalidate(x0, y0, x1, y1)
	}
}

func (w *Window) addDamage(x0, y0, x1, y1 int) {
	if !w.hasDamage {
		w.damX0, w.damY0, w.damX1, w.damY1 = x0, y0, x1, y1
		w.hasDamage = true
		return
	}
	if x0 < w.damX0 {
		w.damX0 = x0
	}
	if y0 < w.damY0 {
		w.damY0 = y0
	}
	if x1 > w.damX1 {
		w.damX1 = x1
	}
	if y1 > w.damY1 {
		w.damY1 = y1
	}
}

// Damage returns the pending damage rectangle, if any. ResetDamage
// clears it once the host has repainted.
func (w *Window) Damage() (x0, y0, x1, y1 int, ok bool) {
	if w == nil || !w.hasDamage {
		return 0, 0, 0, 0, false
	}
	return w.damX0, w.damY0, w.damX1, w.damY1, true
}

func (w *Window) ResetDamage() {
	if w != nil {
		w.hasDamage = false
	}
}

// SetStatusText updates the status bar contents.
func (w *Window) SetStatusText(text string) {
	if w == nil {
		return
	}
	w.status = text
	if w.OnStatusText != nil {
		w.OnStatusText(text)
	}
}

func (w *Window) StatusText() string {
	if w == nil {
		return ""
	}
	return w.status
}

// StartTimer begins periodic animation callbacks; TickTimer reports the
// elapsed time since the previous tick.
func (w *Window) StartTimer() {
	if w == nil || w.timerRunning {
		return
	}
	w.timerRunning = true
	w.timerLast = time.Now()
}

func (w *Window) StopTimer() {
	if w != nil {
		w.timerRunning = false
	}
}

func (w *Window) TimerActive() bool {
	return w != nil && w.timerRunning
}

// TickTimer advances the timer to now and returns the elapsed interval
// in seconds. It reports false while the timer is stopped.
func (w *Window) TickTimer(now time.Time) (float64, bool) {
	if w == nil || !w.timerRunning {
		return 0, false
	}
	elapsed := now.Sub(w.timerLast).Seconds()
	w.timerLast = now
	return elapsed, true
}

// NewBlitter allocates a snapshot buffer of the given model-pixel size.
func (w *Window) NewBlitter(width, height int) (*blitter.Blitter, error) {
	if w == nil {
		return nil, ErrNoWindow
	}
	return w.blitters.NewBlitter(width, height)
}

// FreeBlitter releases a blitter allocated by NewBlitter.
func (w *Window) FreeBlitter(b *blitter.Blitter) error {
	if w == nil {
		return ErrNoWindow
	}
	return w.blitters.Delete(b)
}

// SaveBlitter captures canvas content into the blitter, with (x, y) the
// model coordinate of the region's top-left pixel.
func (w *Window) SaveBlitter(b *blitter.Blitter, x, y int) error {
	if w == nil {
		return ErrNoWindow
	}
	ux, uy := w.toUnits(x, y)
	return b.StoreFromCanvas(w.canvas, ux, uy)
}

// LoadBlitter paints the blitter's content back onto the canvas at the
// given model position. Either coordinate may be the blitter package's
// FromSaved sentinel, which passes through untransformed so that axis
// comes from the captured position.
func (w *Window) LoadBlitter(b *blitter.Blitter, x, y int) error {
	if w == nil {
		return ErrNoWindow
	}
	ux, uy := w.toUnits(x, y)
	if x == blitter.FromSaved {
		ux = blitter.FromSaved
	}
	if y == blitter.FromSaved {
		uy = blitter.FromSaved
	}
	return b.PaintToCanvas(w.canvas, ux, uy)
}

// Redraw paints the canvas into an RGBA frame with its top-left pixel
// at (x, y). Repaint errors are swallowed: a partially drawn frame is
// better than a dead repaint loop.
func (w *Window) Redraw(frame []byte, frameW, frameH, x, y int) {
	if w == nil {
		return
	}
	factors, table, err := w.canvas.PrepareRedraw()
	if err != nil {
		slog.Debug("redraw skipped", "err", err)
		return
	}
	w.canvas.RedrawSprite(frame, frameW, frameH, x, y, factors, table)
}
