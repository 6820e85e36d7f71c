// Package frontend binds a game engine instance to a game window,
// handing the engine its drawing-callback table and supplying the
// services it expects from the host: timers, a random seed, fatal error
// reporting and the default background colour.
package frontend

import (
	"encoding/binary"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/gopuzzles/desktop/engine/blitter"
	"github.com/gopuzzles/desktop/engine/canvas"
	"github.com/gopuzzles/desktop/engine/gamewindow"
)

// Midend is the game engine seen from the frontend: it owns the puzzle
// state and issues drawing calls through the DrawingAPI it is given.
type Midend interface {
	// Attach hands the engine its drawing-callback table. Called once,
	// before NewGame.
	Attach(api *DrawingAPI)
	NewGame()
	// NegotiateSize proposes the largest acceptable canvas and returns
	// the size the game settles on, in model pixels.
	NegotiateSize(maxW, maxH int) (w, h int)
	Colours() []canvas.GameColour
	WantsStatusBar() bool
	Redraw()
	// ProcessKey receives key and mouse events; the coordinates are
	// model-space pixels for mouse buttons and ignored for keys.
	ProcessKey(x, y, button int) bool
	Timer(elapsed float64)
}

// Frontend links one Midend to one Window.
type Frontend struct {
	me     Midend
	window *gamewindow.Window
}

var instances []*Frontend

// Instances returns the live frontends, oldest first.
func Instances() []*Frontend {
	return instances
}

// New creates a game instance: it builds the window, attaches the
// drawing table, starts a game, negotiates the canvas size within the
// given bounds, programs the palette, and asks the engine for a first
// redraw.
func New(me Midend, maxW, maxH int) (*Frontend, error) {
	fe := &Frontend{
		me:     me,
		window: gamewindow.New(),
	}

	me.Attach(fe.api())
	me.NewGame()

	w, h := me.NegotiateSize(maxW, maxH)
	slog.Debug("canvas size agreed", "width", w, "height", h)

	if err := fe.window.CreateCanvas(w, h, me.Colours()); err != nil {
		fe.window.Close()
		return nil, fmt.Errorf("frontend: %w", err)
	}

	me.Redraw()

	instances = append(instances, fe)
	return fe, nil
}

// Close tears the instance down and removes it from the live list.
func (fe *Frontend) Close() {
	if fe == nil {
		return
	}
	for i, other := range instances {
		if other == fe {
			instances = append(instances[:i], instances[i+1:]...)
			break
		}
	}
	fe.window.Close()
}

func (fe *Frontend) Window() *gamewindow.Window {
	return fe.window
}

func (fe *Frontend) WantsStatusBar() bool {
	return fe.me.WantsStatusBar()
}

// HandleKey forwards a key or mouse event to the engine and reports
// whether it was consumed.
func (fe *Frontend) HandleKey(x, y, button int) bool {
	slog.Debug("key event", "x", x, "y", y, "button", button)
	return fe.me.ProcessKey(x, y, button)
}

// ActivateTimer and DeactivateTimer are called by the engine to start
// and stop animation callbacks.
func (fe *Frontend) ActivateTimer() {
	fe.window.StartTimer()
}

func (fe *Frontend) DeactivateTimer() {
	fe.window.StopTimer()
}

// Tick drives the animation timer: if it is running, the engine is
// called with the seconds elapsed since the previous tick.
func (fe *Frontend) Tick(now time.Time) {
	if elapsed, ok := fe.window.TickTimer(now); ok {
		fe.me.Timer(elapsed)
	}
}

// api builds the drawing-callback table bound to this instance's
// window. The callbacks return nothing, so failures are logged and
// swallowed here.
func (fe *Frontend) api() *DrawingAPI {
	w := fe.window
	report := func(op string, err error) {
		if err != nil {
			slog.Debug("drawing call failed", "op", op, "err", err)
		}
	}

	return &DrawingAPI{
		DrawText: func(x, y, fonttype, fontsize, align, colour int, text string) {
			halign := 1
			switch align & (AlignHCentre | AlignHRight) {
			case AlignHCentre:
				halign = 0
			case AlignHRight:
				halign = -1
			}
			valign := 1
			if align&AlignVCentre != 0 {
				valign = 0
			}
			mono := fonttype == FontFixed
			report("text", w.WriteText(x, y, fontsize, halign, valign, colour, mono, text))
		},
		DrawRect: func(x, y, width, height, colour int) {
			report("rect", w.DrawRect(x, y, width, height, colour))
		},
		DrawLine: func(x1, y1, x2, y2, colour int) {
			report("line", w.DrawLine(x1, y1, x2, y2, colour))
		},
		DrawPolygon: func(coords []int, fill, outline int) {
			report("polygon", w.DrawPolygon(coords, fill, outline))
		},
		DrawCircle: func(cx, cy, radius, fill, outline int) {
			report("circle", w.DrawCircle(cx, cy, radius, fill, outline))
		},
		DrawUpdate: func(x, y, width, height int) {
			w.ForceRedraw(x, y, x+width-1, y+height-1)
		},
		Clip: func(x, y, width, height int) {
			report("clip", w.SetClip(x, y, width, height))
		},
		Unclip: func() {
			report("unclip", w.ClearClip())
		},
		StartDraw: func() {
			report("start draw", w.StartDraw())
		},
		EndDraw: func() {
			report("end draw", w.EndDraw())
		},
		StatusBar: func(text string) {
			w.SetStatusText(text)
		},
		BlitterNew: func(width, height int) *blitter.Blitter {
			b, err := w.NewBlitter(width, height)
			report("blitter new", err)
			return b
		},
		BlitterFree: func(b *blitter.Blitter) {
			report("blitter free", w.FreeBlitter(b))
		},
		BlitterSave: func(b *blitter.Blitter, x, y int) {
			report("blitter save", w.SaveBlitter(b, x, y))
		},
		BlitterLoad: func(b *blitter.Blitter, x, y int) {
			report("blitter load", w.LoadBlitter(b, x, y))
		},
	}
}

// RandomSeed returns a five byte clock value for seeding the engine's
// game generation, a centisecond count in little-endian order.
func RandomSeed() []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(time.Now().UnixMilli()/10))
	return buf[:5]
}

// DefaultColour is the preferred background colour, a light grey.
func DefaultColour() canvas.GameColour {
	return canvas.GameColour{0.87, 0.87, 0.87}
}

// Fatal reports an unrecoverable engine error and exits. Overridable
// for tests.
var Fatal = func(format string, v ...any) {
	log.Fatalf(format, v...)
}
