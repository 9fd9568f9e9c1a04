package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagText     = flag.String("text", "", "Text to reveal")
	flagDelay    = flag.Float64("delay", -1, "Seconds between two reveals (negative keeps the configured delay)")
	flagStrategy = flag.String("strategy", "", "Reveal strategy: render, color, random-color")
	flagHide     = flag.Bool("hide", false, "Hide the text on initialize and reveal it")
	flagWidth    = flag.Int("width", 0, "Window width")
	flagHeight   = flag.Int("height", 0, "Window height")
	flagMute     = flag.Bool("mute", false, "Disable the typewriter click")
	flagSave     = flag.Bool("save", false, "Write the effective config to the config directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save was given.
func SaveRequested() bool {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagText != "" {
		cfg.Text.Content = *flagText
	}
	if *flagDelay >= 0 {
		cfg.Reveal.CharacterDelay = *flagDelay
	}
	if *flagStrategy != "" {
		cfg.Reveal.Strategy = *flagStrategy
	}
	if *flagHide {
		cfg.Text.HideOnInitialize = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagMute {
		cfg.Audio.Muted = true
	}
}
