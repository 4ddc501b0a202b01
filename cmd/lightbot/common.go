package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lightbot-arena/internal/config"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels/formats"
	"github.com/vovakirdan/lightbot-arena/internal/storage"
)

// openStore opens the verdict cache. It returns nil when the cache is
// disabled or cannot be opened; commands then run without it.
func openStore() *storage.Store {
	if !appCfg.Storage.Enabled {
		return nil
	}
	store, err := storage.Open(appCfg.Storage.Path)
	if err != nil {
		logger.Warn("could not open verdict cache", "path", appCfg.Storage.Path, "error", err)
		return nil
	}
	return store
}

// loadCatalog returns the built-in campaign merged with the configured level directory.
func loadCatalog() ([]levels.Level, error) {
	return levels.Catalog(config.ExpandHome(appCfg.Levels.Dir), logger)
}

// resolveLevel finds a level by catalog ID or reads it from a file path.
func resolveLevel(ref string) (levels.Level, error) {
	if isLevelFile(ref) {
		return levels.ReadFile(ref)
	}

	catalog, err := loadCatalog()
	if err != nil {
		return levels.Level{}, err
	}
	for _, lvl := range catalog {
		if lvl.ID == ref {
			return lvl, nil
		}
	}
	return levels.Level{}, fmt.Errorf("unknown level %q (run 'lightbot levels' to list them)", ref)
}

func isLevelFile(ref string) bool {
	ext := strings.ToLower(filepath.Ext(ref))
	for _, e := range formats.FormatExtensions() {
		if ext == e {
			if _, err := os.Stat(ref); err == nil {
				return true
			}
		}
	}
	return false
}

// osExit is swapped out by tests.
var osExit = os.Exit

// withExitCode adapts a command body that returns a process status. The
// status is applied only after the body returns, so its deferred cleanup
// (closing the cache, stopping signal handling) always runs.
func withExitCode(run func(cmd *cobra.Command, args []string) int) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		if code := run(cmd, args); code != 0 {
			osExit(code)
		}
	}
}

// failf prints an error to stderr and returns exit status 1.
func failf(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return 1
}

// exitf prints an error to stderr and exits with status 1. Only for
// commands with nothing deferred.
func exitf(format string, args ...any) {
	osExit(failf(format, args...))
}
