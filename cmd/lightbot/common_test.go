package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/lightbot-arena/internal/config"
)

func setupCommandTest(t *testing.T) *cobra.Command {
	t.Helper()

	prevCfg, prevLogger, prevExit := appCfg, logger, osExit
	t.Cleanup(func() {
		appCfg, logger, osExit = prevCfg, prevLogger, prevExit
	})

	appCfg = config.DefaultConfig()
	appCfg.Storage.Enabled = false
	appCfg.Levels.Dir = ""
	logger = log.New(io.Discard)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestWithExitCodeRunsDeferredCleanupFirst(t *testing.T) {
	cmd := setupCommandTest(t)

	var calls []string
	osExit = func(code int) { calls = append(calls, "exit") }

	run := withExitCode(func(*cobra.Command, []string) int {
		defer func() { calls = append(calls, "cleanup") }()
		return 1
	})
	run(cmd, nil)

	want := []string{"cleanup", "exit"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestWithExitCodeZeroDoesNotExit(t *testing.T) {
	cmd := setupCommandTest(t)

	exited := false
	osExit = func(int) { exited = true }

	withExitCode(func(*cobra.Command, []string) int { return 0 })(cmd, nil)
	if exited {
		t.Error("exit called for status 0")
	}
}

func TestRunVerifyReturnsStatus(t *testing.T) {
	cmd := setupCommandTest(t)
	flagVerifyNoCache = true
	t.Cleanup(func() { flagVerifyNoCache = false })

	dir := t.TempDir()
	pass := filepath.Join(dir, "pass.yaml")
	doc := `
level:
  gridSize: 3
  heights: [[0,0,0],[0,0,0],[0,0,0]]
  start: {x: 0, y: 0, dir: 1}
  goals: [{x: 2, y: 0}]
programs:
  main: [F, F, L]
`
	if err := os.WriteFile(pass, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	if code := runVerify(cmd, []string{pass}); code != 0 {
		t.Errorf("passing submission: status %d, want 0", code)
	}
	if code := runVerify(cmd, []string{filepath.Join(dir, "missing.yaml")}); code != 1 {
		t.Errorf("missing file: status %d, want 1", code)
	}
}

func TestOpenStoreExpandsHome(t *testing.T) {
	setupCommandTest(t)

	home := t.TempDir()
	t.Setenv("HOME", home)
	appCfg.Storage.Enabled = true
	appCfg.Storage.Path = "~/.lightbot/cache.db"

	store := openStore()
	if store == nil {
		t.Fatal("openStore returned nil")
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(home, ".lightbot", "cache.db")); err != nil {
		t.Errorf("expected database under HOME: %v", err)
	}
}
