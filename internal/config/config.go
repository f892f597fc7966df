// Package config resolves the CLI's settings: defaults, an optional YAML
// config file in the user config directory, and INDM_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds everything the CLI reads from configuration.
type Settings struct {
	Download DownloadSettings `mapstructure:"download" yaml:"download"`
}

type DownloadSettings struct {
	Connections int    `mapstructure:"connections" yaml:"connections"`
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	StateDir    string `mapstructure:"state_dir" yaml:"state_dir"`
}

// Dir returns the indm config directory (created lazily by EnsureDirs).
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "indm")
}

// EnsureDirs creates the config directory if missing.
func EnsureDirs() error {
	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return nil
}

// HistoryPath returns the location of the download history database.
func HistoryPath() string {
	return filepath.Join(Dir(), "history.db")
}

// LockPath returns the location of the single-instance lock file.
func LockPath() string {
	return filepath.Join(Dir(), "indm.lock")
}

// Load reads settings from <config dir>/config.yaml if present, applying
// defaults and INDM_* environment overrides. A missing file is not an error.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Dir())

	v.SetEnvPrefix("INDM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("download.connections", 8)
	v.SetDefault("download.output_dir", ".")
	v.SetDefault("download.state_dir", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if s.Download.Connections < 1 {
		s.Download.Connections = 8
	}
	return &s, nil
}
