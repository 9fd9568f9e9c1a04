// Package config handles demo configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Faultbox/textensions/internal/effect"
	"github.com/Faultbox/textensions/internal/reveal"
	"github.com/Faultbox/textensions/pkg/curve"
	"github.com/Faultbox/textensions/pkg/textmesh"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Text    TextConfig          `yaml:"text"`
	Reveal  RevealConfig        `yaml:"reveal"`
	Effects []effect.Definition `yaml:"effects"`
	Window  WindowConfig        `yaml:"window"`
	Audio   AudioConfig         `yaml:"audio"`
	Logging LoggingConfig       `yaml:"logging"`
}

// TextConfig holds the animated label settings.
type TextConfig struct {
	Content          string  `yaml:"content"`
	FontFile         string  `yaml:"font_file"` // TTF or OTF, Go Regular when empty
	FontSize         float64 `yaml:"font_size"` // Pixels
	Color            string  `yaml:"color"`     // #RRGGBB or #RRGGBBAA
	HideOnInitialize bool    `yaml:"hide_on_initialize"`
}

// RevealConfig holds the typewriter settings.
type RevealConfig struct {
	Strategy       string  `yaml:"strategy"`        // render, color, random-color
	CharacterDelay float64 `yaml:"character_delay"` // Seconds between two reveals
	Seed           uint64  `yaml:"seed"`            // random-color order
	Key            string  `yaml:"key"`             // Restarts the reveal
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"`
}

// AudioConfig holds the typewriter click settings.
type AudioConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Volume    float64 `yaml:"volume"`     // 0..1
	ClickHz   float64 `yaml:"click_hz"`   // Click tone frequency
	ClickFile string  `yaml:"click_file"` // Optional WAV replacing the tone
	Muted     bool    `yaml:"muted"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Text: TextConfig{
			Content:          "Hello, Textensions!",
			FontSize:         48,
			Color:            "#FFFFFFFF",
			HideOnInitialize: true,
		},
		Reveal: RevealConfig{
			Strategy:       reveal.StrategyColor,
			CharacterDelay: 0.05,
			Key:            "F1",
		},
		Effects: []effect.Definition{
			{
				Title: "Pop",
				Kind:  effect.KindScale,
				Style: effect.All,
				Curve: curve.New(curve.Linear, curve.WrapClamp,
					curve.Keyframe{Time: 0, Value: 0},
					curve.Keyframe{Time: 0.15, Value: 1.25},
					curve.Keyframe{Time: 0.3, Value: 1}),
			},
			{
				Title: "Hop",
				Kind:  effect.KindTranslate,
				Style: effect.AllEven,
				Axes:  effect.Axes{Y: true},
				Curve: curve.New(curve.Smooth, curve.WrapClamp,
					curve.Keyframe{Time: 0, Value: 0},
					curve.Keyframe{Time: 0.2, Value: 8},
					curve.Keyframe{Time: 0.4, Value: 0}),
			},
		},
		Window: WindowConfig{
			Title:  "Textensions",
			Width:  960,
			Height: 320,
			VSync:  true,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.4,
			ClickHz: 1800,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Strategies lists the accepted reveal strategy names.
var Strategies = []string{reveal.StrategyRender, reveal.StrategyColor, reveal.StrategyRandomColor}

// normalize fixes values that have an obvious meaning when out of range.
func (c *Config) normalize() {
	c.Reveal.CharacterDelay = max(c.Reveal.CharacterDelay, 0)
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Text.FontSize <= 0 {
		return fmt.Errorf("%w: text.font_size must be positive, got %v", ErrInvalid, c.Text.FontSize)
	}
	if _, err := textmesh.ParseHex(c.Text.Color); err != nil {
		return fmt.Errorf("%w: text.color: %v", ErrInvalid, err)
	}
	if !slices.Contains(Strategies, c.Reveal.Strategy) {
		return fmt.Errorf("%w: reveal.strategy %q, want one of %v", ErrInvalid, c.Reveal.Strategy, Strategies)
	}
	for i, d := range c.Effects {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: effects[%d]: %v", ErrInvalid, i, err)
		}
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio.volume must be within [0, 1], got %v", ErrInvalid, c.Audio.Volume)
	}
	return nil
}

// TextColor returns the parsed text color, white when unparsable.
func (c *Config) TextColor() textmesh.Color32 {
	col, err := textmesh.ParseHex(c.Text.Color)
	if err != nil {
		return textmesh.White
	}
	return col
}
