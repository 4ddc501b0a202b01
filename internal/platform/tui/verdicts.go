package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/core"
	"github.com/vovakirdan/lightbot-arena/internal/storage"
)

// Verdict browser layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show the filter sidebar
	sidebarWidth       = 24  // Width of filter sidebar
	maxVerdicts        = 200 // Max cache rows to load
)

// VerdictLister is the part of the store the browser reads from.
type VerdictLister interface {
	RecentVerdicts(limit int) ([]storage.VerdictEntry, error)
}

// verdictFilters are the tabs of the browser. The empty reason shows all rows.
var verdictFilters = []struct {
	Title  string
	Reason core.Reason
}{
	{"All", ""},
	{"Success", core.ReasonSuccess},
	{"Goals not lit", core.ReasonGoalsNotLit},
	{"Time limit", core.ReasonTimeLimitExceeded},
	{"No goals", core.ReasonNoGoals},
}

// VerdictKeyMap defines the key bindings for the verdict browser.
type VerdictKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextFilter key.Binding
	PrevFilter key.Binding
	Reload     key.Binding
	Back       key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k VerdictKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextFilter, k.PrevFilter, k.Reload, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k VerdictKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextFilter, k.PrevFilter},
		{k.Reload, k.Back, k.Quit},
	}
}

// DefaultVerdictKeyMap returns default key bindings.
func DefaultVerdictKeyMap() VerdictKeyMap {
	return VerdictKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextFilter: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next filter"),
		),
		PrevFilter: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev filter"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// VerdictsModel is the Bubble Tea model for browsing the verdict cache.
type VerdictsModel struct {
	source      VerdictLister // Optional, an empty view is shown without it
	all         []storage.VerdictEntry
	rows        []storage.VerdictEntry
	filter      int
	loadErr     error
	table       table.Model
	help        help.Model
	keys        VerdictKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewVerdictsModel creates a new verdict browser.
func NewVerdictsModel(source VerdictLister, width, height int) VerdictsModel {
	m := VerdictsModel{
		source:      source,
		keys:        DefaultVerdictKeyMap(),
		help:        help.New(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	m.load()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *VerdictsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Level", Width: 8},
		{Title: "Reason", Width: 20},
		{Title: "Steps", Width: 6},
		{Title: "Hits", Width: 5},
		{Title: "Fingerprint", Width: 14},
		{Title: "Date", Width: 12},
	}

	height := m.height - 8 // Leave room for header, help, and margins
	if height < 3 {
		height = 3
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load reads the newest cache rows from the source.
func (m *VerdictsModel) load() {
	m.all, m.loadErr = nil, nil
	if m.source != nil {
		m.all, m.loadErr = m.source.RecentVerdicts(maxVerdicts)
	}
	m.applyFilter()
}

// applyFilter narrows the loaded rows to the active filter.
func (m *VerdictsModel) applyFilter() {
	reason := verdictFilters[m.filter].Reason
	m.rows = nil
	for _, e := range m.all {
		if reason == "" || core.Reason(e.Reason) == reason {
			m.rows = append(m.rows, e)
		}
	}

	rows := make([]table.Row, len(m.rows))
	for i, e := range m.rows {
		fp := e.Fingerprint
		if len(fp) > 12 {
			fp = fp[:12]
		}
		rows[i] = table.Row{
			e.LevelID,
			e.Reason,
			fmt.Sprintf("%d", e.Steps),
			fmt.Sprintf("%d", e.Hits),
			fp,
			e.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the verdict browser.
func (m VerdictsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the verdict browser.
func (m VerdictsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextFilter):
			m.filter = (m.filter + 1) % len(verdictFilters)
			m.applyFilter()
			return m, nil

		case key.Matches(msg, m.keys.PrevFilter):
			m.filter--
			if m.filter < 0 {
				m.filter = len(verdictFilters) - 1
			}
			m.applyFilter()
			return m, nil

		case key.Matches(msg, m.keys.Reload):
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.applyFilter()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the verdict browser.
func (m VerdictsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := fmt.Sprintf("VERDICT CACHE - %s (%d)", verdictFilters[m.filter].Title, len(m.rows))
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderWideLayout renders the browser with a filter sidebar.
func (m VerdictsModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Filter\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, f := range verdictFilters {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.filter {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + f.Title))
		sidebar.WriteString("\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()),
		"  ",
		tableStyle.Render(m.renderTableContent()),
	)
}

// renderNarrowLayout renders the browser with filter tabs above the table.
func (m VerdictsModel) renderNarrowLayout() string {
	var b strings.Builder

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(verdictFilters))
	for i, f := range verdictFilters {
		if i == m.filter {
			tabs[i] = activeTabStyle.Render(f.Title)
		} else {
			tabs[i] = tabStyle.Render(" " + f.Title + " ")
		}
	}

	tabLine := strings.Join(tabs, " ")
	if lipgloss.Width(tabLine) > m.width-4 {
		tabLine = fmt.Sprintf("< %s >", verdictFilters[m.filter].Title)
	}
	b.WriteString(centerText(tabLine, m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	b.WriteString(centerText(tableStyle.Render(m.renderTableContent()), m.width))

	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m VerdictsModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	if m.loadErr != nil {
		return emptyStyle.Render("Could not read the cache:\n" + m.loadErr.Error())
	}
	if len(m.rows) == 0 {
		return emptyStyle.Render("No verdicts cached yet.\nVerify or replay a level to fill the cache.")
	}
	return m.table.View()
}

// Rows returns the entries shown under the active filter.
func (m VerdictsModel) Rows() []storage.VerdictEntry {
	return m.rows
}

// IsGoingBack returns true if user wants to go back to the picker.
func (m VerdictsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m VerdictsModel) IsQuitting() bool {
	return m.quitting
}

// RunVerdicts runs the verdict browser.
// Returns true if user wants to go back, false if quitting.
func RunVerdicts(source VerdictLister, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(
		NewVerdictsModel(source, width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(VerdictsModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
