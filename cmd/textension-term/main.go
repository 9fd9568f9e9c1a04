// Package main previews the Textensions pipeline in a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"github.com/Faultbox/textensions/internal/assets"
	"github.com/Faultbox/textensions/internal/config"
	"github.com/Faultbox/textensions/internal/engine/audio"
	"github.com/Faultbox/textensions/internal/logger"
	"github.com/Faultbox/textensions/internal/scene"
	"github.com/Faultbox/textensions/internal/term"
)

// tick is the update interval, about 60 frames per second.
const tick = 16 * time.Millisecond

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// The screen owns stdout: log to the file only.
	var fileCfg logger.FileConfig
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, false); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if config.SaveRequested() {
		path, err := cfg.Save()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Save error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Config saved to %s\n", path)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	revealKey, err := term.ParseKey(cfg.Reveal.Key)
	if err != nil {
		return fmt.Errorf("reveal key: %w", err)
	}

	opts := scene.Options{}
	if cfg.Audio.Enabled {
		m := audio.New()
		m.SetMasterVolume(cfg.Audio.Volume)
		m.SetMuted(cfg.Audio.Muted)
		if cfg.Audio.ClickHz > 0 {
			m.SetClickHz(cfg.Audio.ClickHz)
		}
		if cfg.Audio.ClickFile != "" {
			store := assets.NewManager()
			store.AddDir(config.ConfigDir())
			data, err := store.Load(cfg.Audio.ClickFile)
			if err == nil {
				err = m.SetClickSample(data)
			}
			if err != nil {
				logger.Warn("click sample not loaded", zap.String("path", cfg.Audio.ClickFile), zap.Error(err))
			}
		}
		if err := m.Init(); err != nil {
			logger.Warn("audio disabled", zap.Error(err))
		} else {
			defer m.Close()
			opts.OnReveal = m.RevealHook()
		}
	}

	// One mesh unit per pixel of a 7x13 cell keeps the layout on the grid.
	face := basicfont.Face7x13
	s, err := scene.New(cfg, face, opts)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := term.NewPreview(screen, s, face, revealKey)
	if err := p.Run(ctx, tick); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
