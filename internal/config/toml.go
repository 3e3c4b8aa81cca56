// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Track    TrackConfig    `toml:"track"`
	Classify ClassifyConfig `toml:"classify"`
}

// TrackConfig maps tracking-session settings.
type TrackConfig struct {
	FlushInterval *int64  `toml:"flush-interval"`
	AutoRollover  *bool   `toml:"auto-rollover"`
	DB            *string `toml:"db"`
	MetricsAddr   *string `toml:"metrics-addr"`
	LogLevel      *string `toml:"log-level"`
	LogFormat     *string `toml:"log-format"`
}

// ClassifyConfig maps script-range settings. Ranges use the syntax
// understood by classify.ParseRanges, e.g. "U+4E00-U+9FFF" or "A-Z,a-z".
type ClassifyConfig struct {
	ScriptA *string `toml:"script-a"`
	ScriptB *string `toml:"script-b"`
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
