// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Typing  TypingConfig  `toml:"typing"`
	Focus   FocusConfig   `toml:"focus"`
	Control ControlConfig `toml:"control"`
	Log     LogConfig     `toml:"log"`
}

// TypingConfig maps pacing-related settings.
type TypingConfig struct {
	WPM             *float64 `toml:"wpm"`
	Countdown       *int     `toml:"countdown"`
	ResumeCountdown *int     `toml:"resume-countdown"`
	Duration        *string  `toml:"duration"`
	Mistakes        *bool    `toml:"mistakes"`
}

// FocusConfig maps focus watcher settings.
type FocusConfig struct {
	Poll *string `toml:"poll"`
}

// ControlConfig maps the HTTP control API settings.
type ControlConfig struct {
	Addr *string `toml:"addr"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	Path  *string `toml:"path"`
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
