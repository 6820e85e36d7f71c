package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gopuzzles/desktop/engine/canvas"
	"github.com/gopuzzles/desktop/engine/config"
	"github.com/gopuzzles/desktop/engine/core"
	"github.com/gopuzzles/desktop/engine/frontend"
	glbackend "github.com/gopuzzles/desktop/engine/gfx/gl"
	"github.com/gopuzzles/desktop/engine/platform"
)

type App struct {
	cfg  *config.Resolved
	fe   *frontend.Frontend
	demo *demoGame

	frame          []byte
	frameW, frameH int

	winW, winH int
	input      *core.Input
	dragButton int // active mouse-down code, or 0
}

func (a *App) OnStart(e *core.Engine) {
	demo := newDemoGame()
	// The frame doubles the model size, so the canvas may use at most
	// half the window in each direction.
	fe, err := frontend.New(demo, a.winW/canvas.PixelSize, a.winH/canvas.PixelSize)
	if err != nil {
		log.Fatal(err)
	}
	a.fe = fe
	a.demo = demo
	demo.bind(fe)

	win := fe.Window()
	w, h := win.Size()
	a.frameW, a.frameH = canvas.PixelSize*w, canvas.PixelSize*h
	a.frame = make([]byte, a.frameW*a.frameH*4)

	if fe.WantsStatusBar() {
		title := a.cfg.Title
		win.OnStatusText = func(text string) {
			if text == "" {
				e.Window.SetTitle(title)
				return
			}
			e.Window.SetTitle(title + " - " + text)
		}
	}

	if a.cfg.SpriteDumpPath != "" {
		win.Canvas().SaveToFile(a.cfg.SpriteDumpPath)
	}
}

func (a *App) OnUpdate(e *core.Engine, dt float64) {
	a.fe.Tick(time.Now())
}

func (a *App) OnRender(e *core.Engine) {
	win := a.fe.Window()
	if _, _, _, _, ok := win.Damage(); ok {
		win.Redraw(a.frame, a.frameW, a.frameH, 0, 0)
		win.ResetDamage()
	}
	e.Renderer.Present(a.frame, a.frameW, a.frameH)
}

// toModel maps a window coordinate onto the canvas, accounting for the
// letterboxing the presenter applies.
func (a *App) toModel(wx, wy float64) (int, int, bool) {
	if a.winW <= 0 || a.winH <= 0 || a.frameW <= 0 || a.frameH <= 0 {
		return 0, 0, false
	}

	sx, sy := 1.0, 1.0
	frameAspect := float64(a.frameW) / float64(a.frameH)
	winAspect := float64(a.winW) / float64(a.winH)
	if winAspect > frameAspect {
		sx = frameAspect / winAspect
	} else {
		sy = winAspect / frameAspect
	}

	qx := (2*wx/float64(a.winW) - 1) / sx
	qy := (2*wy/float64(a.winH) - 1) / sy
	if qx < -1 || qx > 1 || qy < -1 || qy > 1 {
		return 0, 0, false
	}

	fx := (qx + 1) / 2 * float64(a.frameW)
	fy := (qy + 1) / 2 * float64(a.frameH)
	return int(fx) / canvas.PixelSize, int(fy) / canvas.PixelSize, true
}

func (a *App) OnEvent(e *core.Engine, ev core.Event) {
	a.input.Handle(ev)

	switch ev := ev.(type) {
	case core.EventResize:
		a.winW, a.winH = ev.W, ev.H

	case core.EventMouseMove:
		// A release can go missing when the cursor leaves the window;
		// only report drags while the button is genuinely held.
		if a.dragButton != 0 && !a.input.IsButtonDown(core.MouseButton(a.dragButton-frontend.LeftButton)) {
			a.dragButton = 0
		}
		if a.dragButton != 0 {
			if x, y, ok := a.toModel(ev.X, ev.Y); ok {
				a.fe.HandleKey(x, y, a.dragButton+frontend.LeftDrag-frontend.LeftButton)
			}
		}

	case core.EventMouseButton:
		x, y, ok := a.toModel(ev.X, ev.Y)
		if !ok {
			return
		}
		button := frontend.LeftButton + int(ev.Button)
		if ev.Down {
			a.dragButton = button
			a.fe.HandleKey(x, y, button)
		} else {
			a.dragButton = 0
			a.fe.HandleKey(x, y, button+frontend.LeftRelease-frontend.LeftButton)
		}

	case core.EventKey:
		if !ev.Down {
			return
		}
		switch ev.Key {
		case core.KeyUp:
			a.fe.HandleKey(0, 0, frontend.CursorUp)
		case core.KeyDown:
			a.fe.HandleKey(0, 0, frontend.CursorDown)
		case core.KeyLeft:
			a.fe.HandleKey(0, 0, frontend.CursorLeft)
		case core.KeyRight:
			a.fe.HandleKey(0, 0, frontend.CursorRight)
		case core.KeyEnter, core.KeySpace:
			a.fe.HandleKey(0, 0, frontend.CursorSelect)
		case core.KeyChar:
			a.fe.HandleKey(0, 0, int(ev.Rune))
		}
	}
}

func (a *App) OnShutdown(e *core.Engine) {
	a.fe.Close()
}

func main() {
	dir, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	cfg, err := config.Resolve(dir)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.DebugLogging {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	runCfg := core.Config{
		Title:      cfg.Title,
		Width:      cfg.Width,
		Height:     cfg.Height,
		VSync:      cfg.VSync,
		ClearColor: [4]float32{0.15, 0.15, 0.15, 1},
	}
	app := &App{cfg: cfg, winW: cfg.Width, winH: cfg.Height, input: core.NewInput()}

	newWindow := func(cfg core.Config) (core.Window, error) {
		return platform.NewGLFWWindow(cfg, nil)
	}
	newRenderer := func(win core.Window, cfg core.Config) (core.Renderer, error) {
		return glbackend.NewRendererGL(win, cfg)
	}

	if err := core.Run(app, runCfg, newWindow, newRenderer); err != nil {
		log.Fatal(err)
	}
}
