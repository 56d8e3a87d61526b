// Package config provides preferences loading and XDG path helpers.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/flickread/flick/internal/playback"
)

const (
	defaultWPM         = 300
	defaultBurstLength = 40
	defaultFocusColor  = "#FF0000"
	defaultWordColor   = "#FFFFFF"
	defaultStatusColor = "#888888"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Playback PlaybackConfig `toml:"playback"`
	Colors   ColorsConfig   `toml:"colors"`
}

// PlaybackConfig maps pacing settings. FlipIntervalMs wins over WPM when
// both are set.
type PlaybackConfig struct {
	WPM            *int `toml:"wpm"`
	FlipIntervalMs *int `toml:"flip-interval-ms"`
	BurstLength    *int `toml:"burst-length"`
}

// ColorsConfig maps presentation colors (hex strings).
type ColorsConfig struct {
	Focus  *string `toml:"focus"`
	Word   *string `toml:"word"`
	Status *string `toml:"status"`
}

// Settings are the resolved, immutable inputs for one reading session.
type Settings struct {
	FlipInterval time.Duration
	BurstLength  int
	FocusColor   string
	WordColor    string
	StatusColor  string
}

// Load reads a TOML config from the given path. A missing file is not an
// error; it just yields defaults.
func Load(path string) (FileConfig, error) {
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Settings resolves the file config against defaults.
func (c FileConfig) Settings() Settings {
	s := Settings{
		FlipInterval: playback.IntervalForWPM(defaultWPM),
		BurstLength:  defaultBurstLength,
		FocusColor:   defaultFocusColor,
		WordColor:    defaultWordColor,
		StatusColor:  defaultStatusColor,
	}
	if c.Playback.WPM != nil && *c.Playback.WPM > 0 {
		s.FlipInterval = playback.IntervalForWPM(*c.Playback.WPM)
	}
	if c.Playback.FlipIntervalMs != nil && *c.Playback.FlipIntervalMs > 0 {
		s.FlipInterval = time.Duration(*c.Playback.FlipIntervalMs) * time.Millisecond
	}
	if c.Playback.BurstLength != nil && *c.Playback.BurstLength > 0 {
		s.BurstLength = *c.Playback.BurstLength
	}
	if c.Colors.Focus != nil {
		s.FocusColor = *c.Colors.Focus
	}
	if c.Colors.Word != nil {
		s.WordColor = *c.Colors.Word
	}
	if c.Colors.Status != nil {
		s.StatusColor = *c.Colors.Status
	}
	return s
}
