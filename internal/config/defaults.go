package config

import (
	_ "embed"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/validate"
)

//go:embed defaults/lightbot.yaml
var defaultYAML []byte

// DefaultConfig returns the default configuration.
// Kept in sync with defaults/lightbot.yaml.
func DefaultConfig() AppConfig {
	return AppConfig{
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    "~/.lightbot/cache.db",
		},
		Limits: validate.DefaultLimits(),
		Verify: VerifyConfig{
			Workers: 4,
		},
		Replay: ReplayConfig{
			TickMS: 250,
		},
		Server: ServerConfig{
			Address:        ":23235",
			HostKeyPath:    "~/.lightbot/ssh_host_ed25519",
			IdleTimeoutMin: 30,
		},
	}
}
