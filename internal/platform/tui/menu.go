package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels"
)

// MenuModel is the Bubble Tea model for the level picker.
type MenuModel struct {
	items        []levels.Level
	cursor       int
	width        int
	height       int
	theme        BoardTheme
	keyMapper    *KeyMapper
	quitting     bool
	selected     *levels.Level // Set when user selects a level
	openVerdicts bool          // True if user pressed Tab for the verdict cache
	notice       string
}

// NewMenuModel creates a new level picker over the given catalog.
func NewMenuModel(items []levels.Level, theme BoardTheme, width, height int) MenuModel {
	return MenuModel{
		items:     items,
		width:     width,
		height:    height,
		theme:     theme,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keyMapper.MapKeyToMenuAction(msg)

	switch action {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
		m.notice = ""

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		m.notice = ""

	case MenuActionSelect:
		if len(m.items) == 0 {
			return m, nil
		}
		selected := m.items[m.cursor]
		if selected.Solution == nil {
			m.notice = fmt.Sprintf("level %s has no reference solution", selected.ID)
			return m, nil
		}
		m.selected = &selected
		return m, tea.Quit // Exit menu to start the replay

	case MenuActionVerdicts:
		m.openVerdicts = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}
	t := m.theme

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(t.MenuTitle.Render("  L I G H T B O T  "), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a level to replay its solution", m.width))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(centerText(t.MenuDescription.Render("No levels found"), m.width))
		b.WriteString("\n")
	}

	for i, item := range m.items {
		cursor := "  "
		style := t.MenuItemNormal
		if i == m.cursor {
			cursor = "> "
			style = t.MenuItemActive
		}

		name := item.Name
		if name == "" {
			name = item.ID
		}
		line := fmt.Sprintf("%s%-4s %-24s %dx%d  %d goals", cursor, item.ID, name, item.Size, item.Size, len(item.Goals))
		if item.Solution == nil {
			line += "  (no solution)"
		}
		b.WriteString(centerText(style.Render(line), m.width))
		b.WriteString("\n")
	}

	if len(m.items) > 0 {
		if desc := m.items[m.cursor].Description; desc != "" {
			b.WriteString("\n")
			b.WriteString(centerText(t.MenuDescription.Render(desc), m.width))
			b.WriteString("\n")
		}
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(centerText(t.Failure.Render(m.notice), m.width))
		b.WriteString("\n")
	}

	// Footer with controls
	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Replay  |  Tab: Verdicts  |  Q: Quit"
	b.WriteString(centerText(t.HUDControls.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected level, or nil if none selected.
func (m MenuModel) Selected() *levels.Level {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsVerdicts returns true if user requested the verdict cache view.
func (m MenuModel) WantsVerdicts() bool {
	return m.openVerdicts
}

// centerText centers text within given width.
// Width is measured in printable cells so styled text centers correctly.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	Level        *levels.Level
	WantsVerdict bool
	Quit         bool
}

// RunMenu runs the level picker and returns the selection result.
func RunMenu(items []levels.Level, theme BoardTheme) (MenuResult, error) {
	p := tea.NewProgram(
		NewMenuModel(items, theme, 80, 24),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Quit: true}, nil
	}

	switch {
	case m.WantsVerdicts():
		return MenuResult{WantsVerdict: true}, nil
	case m.Selected() != nil:
		return MenuResult{Level: m.Selected()}, nil
	default:
		return MenuResult{Quit: true}, nil
	}
}
