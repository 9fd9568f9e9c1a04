// Package app implements the windowed demo: the main loop that drives a
// scene and draws it with OpenGL.
package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/textensions/internal/assets"
	"github.com/Faultbox/textensions/internal/config"
	"github.com/Faultbox/textensions/internal/engine/audio"
	"github.com/Faultbox/textensions/internal/engine/debug"
	"github.com/Faultbox/textensions/internal/engine/glyph"
	"github.com/Faultbox/textensions/internal/engine/input"
	"github.com/Faultbox/textensions/internal/engine/window"
	"github.com/Faultbox/textensions/internal/logger"
	"github.com/Faultbox/textensions/internal/scene"
	"github.com/Faultbox/textensions/pkg/textmesh"
)

var background = textmesh.Color32{R: 18, G: 18, B: 24, A: 255}

// App is the windowed demo instance.
type App struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *glyph.Renderer
	input    *input.Input
	audio    *audio.Manager
	assets   *assets.Manager
	shots    *debug.Screenshots
	scene    *scene.Scene

	revealKey sdl.Scancode
	capture   bool
	log       *zap.Logger
}

// New opens the window and builds the scene described by cfg.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		config: cfg,
		assets: assets.NewManager(),
		shots:  debug.NewScreenshots(filepath.Join(config.ConfigDir(), "screenshots"), "textensions"),
		log:    logger.Named("app"),
	}
	a.assets.AddDir(config.ConfigDir())
	a.log.Info("initializing",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	var err error
	a.revealKey, err = input.ParseKey(cfg.Reveal.Key)
	if err != nil {
		return nil, fmt.Errorf("reveal key: %w", err)
	}

	// Window first: it creates the OpenGL context.
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	pw, ph := a.window.DrawableSize()
	a.renderer, err = glyph.New(pw, ph)
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()
	a.audio = a.initAudio()

	// Lay the text out in framebuffer pixels so high-DPI screens stay sharp.
	w, _ := a.window.Size()
	ratio := float64(pw) / float64(max(w, 1))
	face, err := a.assets.Face(cfg.Text.FontFile, cfg.Text.FontSize*ratio)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load font: %w", err)
	}

	opts := scene.Options{}
	if a.audio != nil {
		opts.OnReveal = a.audio.RevealHook()
	}
	a.scene, err = scene.New(cfg, face, opts)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create scene: %w", err)
	}

	a.log.Info("initialized successfully")
	return a, nil
}

// initAudio starts the click player. Audio is optional: failures are logged
// and the demo runs silent.
func (a *App) initAudio() *audio.Manager {
	if !a.config.Audio.Enabled {
		return nil
	}

	m := audio.New()
	m.SetMasterVolume(a.config.Audio.Volume)
	m.SetMuted(a.config.Audio.Muted)
	if a.config.Audio.ClickHz > 0 {
		m.SetClickHz(a.config.Audio.ClickHz)
	}
	if path := a.config.Audio.ClickFile; path != "" {
		data, err := a.assets.Load(path)
		if err == nil {
			err = m.SetClickSample(data)
		}
		if err != nil {
			a.log.Warn("click sample not loaded, using the synthesized click",
				zap.String("path", path), zap.Error(err))
		}
	}
	if err := m.Init(); err != nil {
		a.log.Warn("audio disabled", zap.Error(err))
		return nil
	}
	return m
}

// Run starts the main loop.
func (a *App) Run() error {
	a.running = true

	var minFrame time.Duration
	if a.config.Window.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(a.config.Window.FPSLimit)
	}

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting main loop",
		zap.String("reveal_key", a.config.Reveal.Key),
		zap.Int("fps_limit", a.config.Window.FPSLimit),
	)

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()

		a.scene.Update(dt)
		a.render()
		if a.capture {
			// Read back before the swap leaves the back buffer undefined.
			a.screenshot()
			a.capture = false
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if minFrame > 0 {
			if spent := time.Since(now); spent < minFrame {
				time.Sleep(minFrame - spent)
			}
		}
	}

	return nil
}

func (a *App) handleEvents() {
	if _, _, ok := a.input.Resized(); ok {
		w, h := a.window.DrawableSize()
		a.renderer.Resize(w, h, w, h)
	}

	switch {
	case a.input.IsKeyPressed(sdl.SCANCODE_ESCAPE):
		a.running = false
	case a.input.IsKeyPressed(a.revealKey):
		a.log.Debug("restarting reveal")
		a.scene.Restart()
	case a.input.IsKeyPressed(sdl.SCANCODE_F5):
		a.scene.Effects().LogApplied()
	case a.input.IsKeyPressed(sdl.SCANCODE_F12):
		a.capture = true
	case a.input.IsKeyPressed(sdl.SCANCODE_M):
		if a.audio != nil {
			a.audio.SetMuted(!a.audio.IsMuted())
			a.log.Info("audio", zap.Bool("muted", a.audio.IsMuted()))
		}
	}
}

func (a *App) render() {
	a.renderer.Clear(background)
	w, h := a.renderer.Size()
	a.renderer.Draw(a.scene.Label(), a.scene.Offset(float32(w), float32(h)))
}

// screenshot saves the frame drawn into the back buffer.
func (a *App) screenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	name, err := a.shots.SaveBottomUp(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", name))
}

// Close releases every resource in reverse creation order.
func (a *App) Close() {
	a.log.Info("closing")

	if a.audio != nil {
		a.audio.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
	a.assets.Close()
}
