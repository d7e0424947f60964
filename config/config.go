// Package config loads the app configuration from an optional YAML file
// and applies defaults for anything left unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultBaseURL = "https://nativo-backend.onrender.com"

type Config struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	DataDir        string        `yaml:"data_dir"`
	AudioFormat    string        `yaml:"audio_format"` // "wav" or "flac"
	DevMode        bool          `yaml:"dev_mode"`     // bypass local quota pre-checks
}

func Default() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		RequestTimeout: 30 * time.Second,
		AudioFormat:    "flac",
	}
}

// Load reads path (when non-empty) and merges it over the defaults.
// A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return withDataDir(cfg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return withDataDir(cfg)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	switch cfg.AudioFormat {
	case "":
		cfg.AudioFormat = "flac"
	case "wav", "flac":
	default:
		return cfg, fmt.Errorf("unknown audio_format %q (use wav or flac)", cfg.AudioFormat)
	}
	return withDataDir(cfg)
}

func withDataDir(cfg Config) (Config, error) {
	if cfg.DataDir != "" {
		return cfg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, err
	}
	xdgData := os.Getenv("XDG_DATA_HOME")
	if xdgData == "" {
		xdgData = filepath.Join(home, ".local", "share")
	}
	cfg.DataDir = filepath.Join(xdgData, "nativo")
	return cfg, nil
}
