package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/lightbot-arena/internal/platform/tui"
)

var flagMenuTheme string

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive level picker",
	Long: `Opens the level picker. Selecting a level replays its reference
solution; Tab opens the verdict cache.

Controls:
  Up/Down    - Navigate
  Enter      - Replay
  Tab        - Verdict cache
  Esc/B      - Back
  Q          - Quit`,
	Run: withExitCode(runMenu),
}

func init() {
	menuCmd.Flags().StringVar(&flagMenuTheme, "theme", "default", "Board theme: default, mono")
}

func runMenu(cmd *cobra.Command, args []string) int {
	catalog, err := loadCatalog()
	if err != nil {
		return failf("loading levels: %v", err)
	}

	// Get terminal size for the first frame
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	err = tui.RunSession(tui.SessionConfig{
		Catalog:  catalog,
		Store:    store,
		Theme:    tui.ThemeByName(flagMenuTheme),
		Tick:     time.Duration(appCfg.Replay.TickMS) * time.Millisecond,
		Autoplay: appCfg.Replay.Autoplay,
		Width:    width,
		Height:   height,
		Username: os.Getenv("USER"),
	})
	if err != nil {
		return failf("running menu: %v", err)
	}
	return 0
}
