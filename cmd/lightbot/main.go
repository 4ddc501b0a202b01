// lightbot verifies, checks and replays Lightbot robot programs.
//
// Usage:
//
//	lightbot verify <file>...     - Verify submissions (level + programs)
//	lightbot levels               - List available levels
//	lightbot check                - Run every level's reference solution
//	lightbot replay <level|file>  - Step through a run in the terminal
//	lightbot menu                 - Pick a level and watch its solution
//	lightbot serve                - Start SSH server for remote replays
//	lightbot cache <command>      - Inspect the verdict cache
//
// Global flags:
//
//	--config <path>     - Config file (default: search order, then embedded)
//	--db <path>         - Verdict cache database (default: ~/.lightbot/cache.db)
//	--log-level <level> - debug, info, warn or error
//	--dir <path>        - Extra level directory
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/lightbot-arena/internal/config"
)

var (
	// Global flags
	flagConfigPath string
	flagDBPath     string
	flagLogLevel   string
	flagLevelsDir  string
)

var (
	appCfg config.AppConfig
	logger *log.Logger
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lightbot",
	Short: "Lightbot - verify and replay robot programs",
	Long: `Lightbot runs small robot programs on height-mapped grid levels and
decides whether they light every goal tile.

Available commands:
  verify   - Verify submission files
  levels   - List built-in and custom levels
  check    - Run every level's reference solution
  replay   - Step through a run in the terminal
  menu     - Interactive level picker
  serve    - Start SSH server for remote replays
  cache    - Inspect the verdict cache

Examples:
  lightbot verify submission.yaml
  lightbot levels --dir ./levels
  lightbot replay 05
  lightbot serve --ssh :2222
  lightbot cache stats`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to verdict cache database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLevelsDir, "dir", "", "Directory with extra level files")

	// Add subcommands
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cacheCmd)
}

// setup loads configuration and builds the logger before any command runs.
// Precedence: flags -> LIGHTBOT_* environment -> config file -> defaults.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}
	config.ApplyEnv(&cfg)

	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagLevelsDir != "" {
		cfg.Levels.Dir = flagLevelsDir
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "lightbot",
	})
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	logger.SetLevel(level)

	appCfg = cfg
	logger.Debug("configuration loaded",
		"command", cmd.Name(),
		"db", cfg.Storage.Path,
		"levels", cfg.Levels.Dir,
	)
	return nil
}
