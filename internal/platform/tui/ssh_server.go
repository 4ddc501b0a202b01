package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/verify"
	"github.com/vovakirdan/lightbot-arena/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23235").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.lightbot/ssh_host_ed25519.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Tick is the autoplay interval of replays.
	Tick time.Duration

	// Theme names the board theme for every session.
	Theme string
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23235",
		IdleTimeout: 30 * time.Minute,
		Tick:        250 * time.Millisecond,
	}
}

// SSHServer wraps a Wish SSH server that hosts level replays.
type SSHServer struct {
	config  SSHServerConfig
	server  *ssh.Server
	catalog []levels.Level
	store   *storage.Store // Optional, owned by the caller
	logger  *log.Logger
}

// NewSSHServer creates a new SSH server over a level catalog.
// store may be nil, in which case sessions run without the verdict cache.
func NewSSHServer(cfg SSHServerConfig, catalog []levels.Level, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "lightbot-ssh",
		})
	}

	srv := &SSHServer{
		config:  cfg,
		catalog: catalog,
		store:   store,
		logger:  logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".lightbot", "ssh_host_ed25519")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	model := NewSessionModel(SessionConfig{
		Catalog:  s.catalog,
		Store:    s.store,
		Theme:    ThemeByName(s.config.Theme),
		Tick:     s.config.Tick,
		Width:    pty.Window.Width,
		Height:   pty.Window.Height,
		Username: sshSession.User(),
	})
	s.logger.Debug("session model created", "user", sshSession.User(), "session", model.SessionID())

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		start := time.Now()
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "levels", len(s.catalog))

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionConfig configures one interactive session.
type SessionConfig struct {
	Catalog  []levels.Level
	Store    *storage.Store // Optional
	Theme    BoardTheme
	Tick     time.Duration
	Autoplay bool
	Width    int
	Height   int
	Username string
}

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenReplay
	screenVerdicts
)

// SessionModel manages the full session flow: picker -> replay -> picker.
// This is the top-level model used for SSH sessions and the local browser.
type SessionModel struct {
	cfg       SessionConfig
	sessionID string
	screen    sessionScreen
	menu      MenuModel
	replay    *ReplayModel
	verdicts  *VerdictsModel
	quitting  bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(cfg SessionConfig) SessionModel {
	return SessionModel{
		cfg:       cfg,
		sessionID: fmt.Sprintf("%s-%s", cfg.Username, uuid.NewString()),
		menu:      NewMenuModel(cfg.Catalog, cfg.Theme, cfg.Width, cfg.Height),
	}
}

// SessionID returns the unique session identifier.
func (m SessionModel) SessionID() string {
	return m.sessionID
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.cfg.Width = wsm.Width
		m.cfg.Height = wsm.Height
	}

	switch m.screen {
	case screenReplay:
		return m.updateReplay(msg)
	case screenVerdicts:
		return m.updateVerdicts(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in the picker.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsVerdicts() {
		verdicts := NewVerdictsModel(m.lister(), m.cfg.Width, m.cfg.Height)
		m.verdicts = &verdicts
		m.screen = screenVerdicts
		return m, m.verdicts.Init()
	}

	// The picker quits on select; the session swallows that and starts the replay.
	if selected := m.menu.Selected(); selected != nil {
		replay := NewReplayModel(ReplayConfig{
			Level:    &selected.Level,
			Programs: *selected.Solution,
			Theme:    m.cfg.Theme,
			Tick:     m.cfg.Tick,
			Autoplay: m.cfg.Autoplay,
			Cache:    m.cache(),
			Embedded: true,
		})
		replay.width, replay.height = m.cfg.Width, m.cfg.Height
		m.replay = &replay
		m.screen = screenReplay
		return m, m.replay.Init()
	}

	return m, cmd
}

// updateReplay handles updates when a replay is running.
func (m SessionModel) updateReplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.replay.Update(msg)
	if replayModel, ok := newModel.(ReplayModel); ok {
		m.replay = &replayModel
	}

	if m.replay.BackToMenu() {
		return m.backToMenu()
	}

	if m.replay.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// updateVerdicts handles updates when browsing the cache.
func (m SessionModel) updateVerdicts(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.verdicts.Update(msg)
	if verdictsModel, ok := newModel.(VerdictsModel); ok {
		m.verdicts = &verdictsModel
	}

	if m.verdicts.IsGoingBack() {
		return m.backToMenu()
	}

	if m.verdicts.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	cursor := m.menu.cursor
	m.replay = nil
	m.verdicts = nil
	m.screen = screenMenu
	m.menu = NewMenuModel(m.cfg.Catalog, m.cfg.Theme, m.cfg.Width, m.cfg.Height)
	m.menu.cursor = cursor
	return m, m.menu.Init()
}

// cache returns the store as a verdict cache, or a nil interface without one.
func (m SessionModel) cache() verify.Cache {
	if m.cfg.Store == nil {
		return nil
	}
	return m.cfg.Store
}

func (m SessionModel) lister() VerdictLister {
	if m.cfg.Store == nil {
		return nil
	}
	return m.cfg.Store
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenReplay:
		return m.replay.View()
	case screenVerdicts:
		return m.verdicts.View()
	default:
		return m.menu.View()
	}
}

// RunSession runs the picker -> replay flow in the local terminal.
func RunSession(cfg SessionConfig) error {
	p := tea.NewProgram(
		NewSessionModel(cfg),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
