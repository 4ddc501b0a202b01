package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lightbot-arena/internal/config"
	"github.com/vovakirdan/lightbot-arena/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagServeTheme  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lightbot SSH server",
	Long: `Start an SSH server where each connection gets a level picker and
the replay viewer. All sessions share the server's verdict cache.

Host key handling:
  - If --host-key (or server.host_key_path) is set, uses that key file
  - Otherwise, auto-generates a key at ~/.lightbot/ssh_host_ed25519

Examples:
  lightbot serve                           # Listen on :23235
  lightbot serve --ssh :2222               # Listen on port 2222
  lightbot serve --host-key ./my_host_key  # Use specific host key
  lightbot serve --dir ./levels            # Serve extra levels

Users can connect with:
  ssh localhost -p 23235`,
	Run: withExitCode(runServe),
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes (0 = config value)")
	serveCmd.Flags().StringVar(&flagServeTheme, "theme", "default", "Board theme: default, mono")
}

func runServe(_ *cobra.Command, _ []string) int {
	cfg := tui.DefaultSSHServerConfig()
	if appCfg.Server.Address != "" {
		cfg.Address = appCfg.Server.Address
	}
	cfg.HostKeyPath = config.ExpandHome(appCfg.Server.HostKeyPath)
	if appCfg.Server.IdleTimeoutMin > 0 {
		cfg.IdleTimeout = time.Duration(appCfg.Server.IdleTimeoutMin) * time.Minute
	}
	if appCfg.Replay.TickMS > 0 {
		cfg.Tick = time.Duration(appCfg.Replay.TickMS) * time.Millisecond
	}
	cfg.Theme = flagServeTheme

	if flagSSHAddr != "" {
		cfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	}

	catalog, err := loadCatalog()
	if err != nil {
		return failf("loading levels: %v", err)
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	server, err := tui.NewSSHServer(cfg, catalog, store, logger.WithPrefix("lightbot-ssh"))
	if err != nil {
		return failf("creating server: %v", err)
	}

	fmt.Printf("Starting lightbot SSH server on %s\n", cfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		return 1
	}
	return 0
}
