// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Trace    TraceConfig    `toml:"trace"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Digit           *int     `toml:"digit"`
	FocusWeak       *bool    `toml:"focus-weak"`
	WeakTop         *int     `toml:"weak-top"`
	WeakFactor      *float64 `toml:"weak-factor"`
	WeakWindow      *int     `toml:"weak-window"`
	FeedbackDelayMs *int     `toml:"feedback-delay-ms"`
	Templates       *string  `toml:"templates"`
	LogLevel        *string  `toml:"log-level"`
}

// TraceConfig maps tracing tolerances.
type TraceConfig struct {
	CanvasSize     *float64 `toml:"canvas-size"`
	StartTolerance *float64 `toml:"start-tolerance"`
	EndTolerance   *float64 `toml:"end-tolerance"`
	PathTolerance  *float64 `toml:"path-tolerance"`
	MinAccuracy    *float64 `toml:"min-accuracy"`
	MinPoints      *int     `toml:"min-points"`
	GuideRadius    *float64 `toml:"guide-radius"`
	PulseEvery     *int     `toml:"pulse-every"`
	Stars          *int     `toml:"stars"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
