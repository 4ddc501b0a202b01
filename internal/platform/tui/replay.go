package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/core"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels/formats"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/validate"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/verify"
)

const (
	minTick     = 25 * time.Millisecond
	maxTick     = 2 * time.Second
	eventLogLen = 6
)

// ReplayConfig configures a replay session.
type ReplayConfig struct {
	Level    *formats.Level
	Programs core.Programs
	Theme    BoardTheme
	Tick     time.Duration
	Autoplay bool
	Cache    verify.Cache // Optional, receives the verdict once the run ends

	// Embedded replays return to the caller on back instead of quitting.
	Embedded bool
}

// ReplayModel is the Bubble Tea model that steps a simulation on screen.
type ReplayModel struct {
	cfg          ReplayConfig
	world        *core.World
	sim          *core.Simulation
	keys         ReplayKeyMap
	help         help.Model
	events       []string
	playing      bool
	gen          int
	width        int
	height       int
	quitting     bool
	backToMenu   bool
	verdictSaved bool // Whether the verdict has been cached for the current run
	status       string
}

// NewReplayModel creates a replay model positioned before the first step.
func NewReplayModel(cfg ReplayConfig) ReplayModel {
	if cfg.Tick <= 0 {
		cfg.Tick = 250 * time.Millisecond
	}
	world := cfg.Level.ToWorld()
	return ReplayModel{
		cfg:     cfg,
		world:   world,
		sim:     core.NewSimulation(world, cfg.Programs),
		keys:    DefaultReplayKeyMap(),
		help:    help.New(),
		playing: cfg.Autoplay,
	}
}

// Init starts the tick loop when autoplay is on.
func (m ReplayModel) Init() tea.Cmd {
	if m.playing {
		return tickCmd(m.cfg.Tick, m.gen)
	}
	return nil
}

// Update handles messages and updates the model state.
func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(msg)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m ReplayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if m.cfg.Embedded {
			m.backToMenu = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Step):
		m.playing = false
		m.gen++
		m.step()

	case key.Matches(msg, m.keys.Play):
		if m.sim.State().Terminal() {
			return m, nil
		}
		m.playing = !m.playing
		m.gen++
		if m.playing {
			return m, tickCmd(m.cfg.Tick, m.gen)
		}

	case key.Matches(msg, m.keys.Finish):
		m.playing = false
		m.gen++
		for !m.sim.State().Terminal() {
			m.step()
		}

	case key.Matches(msg, m.keys.Restart):
		m.restart()

	case key.Matches(msg, m.keys.Faster):
		m.cfg.Tick = clampTick(m.cfg.Tick / 2)
		m.status = fmt.Sprintf("tick %s", m.cfg.Tick)

	case key.Matches(msg, m.keys.Slower):
		m.cfg.Tick = clampTick(m.cfg.Tick * 2)
		m.status = fmt.Sprintf("tick %s", m.cfg.Tick)

	case msg.String() == "ctrl+s":
		m.status = m.saveSnapshot()
	}

	return m, nil
}

// handleTick advances one step while playing.
func (m ReplayModel) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	if !m.playing || msg.Gen != m.gen {
		return m, nil
	}
	m.step()
	if m.sim.State().Terminal() {
		m.playing = false
		return m, nil
	}
	return m, tickCmd(m.cfg.Tick, m.gen)
}

// step runs one interpreter iteration and records it.
func (m *ReplayModel) step() {
	if m.sim.State().Terminal() {
		return
	}
	ev := m.sim.Step()
	m.events = append(m.events, DescribeEvent(ev))
	if len(m.events) > eventLogLen {
		m.events = m.events[len(m.events)-eventLogLen:]
	}
	if ev.State.Terminal() {
		m.saveVerdict()
	}
}

// saveVerdict stores the finished run in the cache, once per run.
func (m *ReplayModel) saveVerdict() {
	if m.verdictSaved || m.cfg.Cache == nil {
		return
	}
	res := m.sim.Result()
	//nolint:errcheck // Best-effort save, the replay continues regardless
	m.cfg.Cache.Store(context.Background(), verify.Entry{
		Fingerprint: verify.Fingerprint(m.cfg.Level, m.cfg.Programs),
		LevelID:     m.cfg.Level.ID,
		Verdict:     res.Verdict,
		Steps:       res.Steps,
	})
	m.verdictSaved = true
}

func (m *ReplayModel) restart() {
	m.sim = core.NewSimulation(m.world, m.cfg.Programs)
	m.events = nil
	m.playing = false
	m.gen++
	m.verdictSaved = false
	m.status = ""
}

// saveSnapshot writes the unstyled board to ~/.lightbot/snapshots.
func (m ReplayModel) saveSnapshot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "snapshot failed: " + err.Error()
	}
	dir := filepath.Join(home, ".lightbot", "snapshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "snapshot failed: " + err.Error()
	}

	var sb strings.Builder
	for _, row := range BoardCells(m.sim, m.cfg.Theme) {
		for _, cell := range row {
			sb.WriteString(cell.Text)
		}
		sb.WriteRune('\n')
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_step%d.txt", m.cfg.Level.ID, timestamp, m.sim.Steps()))
	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return "snapshot failed: " + err.Error()
	}
	return "saved " + path
}

// View renders the current state to a string for display.
func (m ReplayModel) View() string {
	if m.quitting {
		return ""
	}
	t := m.cfg.Theme

	title := m.cfg.Level.Name
	if title == "" {
		title = m.cfg.Level.ID
	}
	sep := t.HUDSeparator.Render(" | ")
	header := t.HUDTitle.Render(title) + sep +
		t.HUDValue.Render(fmt.Sprintf("step %d/%d", m.sim.Steps(), m.sim.Budget())) + sep +
		t.HUDValue.Render(fmt.Sprintf("lit %d/%d", len(m.sim.Lit()), m.world.GoalCount()))
	if depth := len(m.sim.Stack()); depth > 1 {
		header += sep + t.HUDValue.Render(fmt.Sprintf("depth %d", depth))
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		RenderBoard(m.sim, t),
		"    ",
		RenderPrograms(m.sim, t),
	))
	sb.WriteString("\n\n")
	sb.WriteString(m.statusLine())
	sb.WriteRune('\n')
	for _, line := range m.events {
		sb.WriteString(t.HUDControls.Render(line))
		sb.WriteRune('\n')
	}
	if m.status != "" {
		sb.WriteString(t.HUDControls.Render(m.status))
		sb.WriteRune('\n')
	}
	sb.WriteRune('\n')
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

// statusLine describes the run state or the verdict.
func (m ReplayModel) statusLine() string {
	t := m.cfg.Theme
	state := m.sim.State()
	if v, ok := state.Verdict(); ok {
		if v.Success {
			return t.Success.Render("SUCCESS")
		}
		return t.Failure.Render(fmt.Sprintf("%s: %s", v.Reason, validate.FailureMessage(v.Reason)))
	}
	if m.playing {
		return t.HUDValue.Render(fmt.Sprintf("playing (%s)", m.cfg.Tick))
	}
	return t.HUDValue.Render("paused")
}

// Result returns the simulation result so far.
func (m ReplayModel) Result() core.Result {
	return m.sim.Result()
}

// Finished reports whether the run reached a terminal state.
func (m ReplayModel) Finished() bool {
	return m.sim.State().Terminal()
}

// IsQuitting returns true if user requested to quit entirely.
func (m ReplayModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to the picker.
func (m ReplayModel) BackToMenu() bool {
	return m.backToMenu
}

func clampTick(d time.Duration) time.Duration {
	if d < minTick {
		return minTick
	}
	if d > maxTick {
		return maxTick
	}
	return d
}

// RunReplay starts the Bubble Tea program with a replay model.
func RunReplay(cfg ReplayConfig) (core.Result, error) {
	p := tea.NewProgram(
		NewReplayModel(cfg),
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if err != nil {
		return core.Result{}, err
	}
	if rm, ok := final.(ReplayModel); ok {
		return rm.Result(), nil
	}
	return core.Result{}, nil
}
