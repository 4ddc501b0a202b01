// Package config provides YAML-based application configuration loading for
// the lightbot tools.
package config

import "github.com/vovakirdan/lightbot-arena/internal/lightbot/validate"

// AppConfig contains all configuration for the lightbot CLI and server.
type AppConfig struct {
	Log     LogConfig       `yaml:"log"`
	Storage StorageConfig   `yaml:"storage"`
	Levels  LevelsConfig    `yaml:"levels"`
	Limits  validate.Limits `yaml:"limits"`
	Verify  VerifyConfig    `yaml:"verify"`
	Replay  ReplayConfig    `yaml:"replay"`
	Server  ServerConfig    `yaml:"server"`
}

// LogConfig defines logging parameters.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// StorageConfig defines the verdict cache location.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LevelsConfig defines where extra levels are read from.
type LevelsConfig struct {
	Dir string `yaml:"dir"` // empty: built-in campaign only
}

// VerifyConfig defines batch verification parameters.
type VerifyConfig struct {
	Workers int  `yaml:"workers"`
	Strict  bool `yaml:"strict"`
}

// ReplayConfig defines replay viewer parameters.
type ReplayConfig struct {
	TickMS   int  `yaml:"tick_ms"`
	Autoplay bool `yaml:"autoplay"`
}

// ServerConfig defines SSH server parameters.
type ServerConfig struct {
	Address        string `yaml:"address"`
	HostKeyPath    string `yaml:"host_key_path"`
	IdleTimeoutMin int    `yaml:"idle_timeout_min"`
}
