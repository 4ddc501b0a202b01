package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ReplayKeyMap defines the key bindings for the replay viewer.
type ReplayKeyMap struct {
	Step    key.Binding
	Play    key.Binding
	Finish  key.Binding
	Restart key.Binding
	Faster  key.Binding
	Slower  key.Binding
	Help    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ReplayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Step, k.Play, k.Finish, k.Restart, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ReplayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Step, k.Play, k.Finish, k.Restart},
		{k.Faster, k.Slower},
		{k.Help, k.Back, k.Quit},
	}
}

// DefaultReplayKeyMap returns default key bindings.
func DefaultReplayKeyMap() ReplayKeyMap {
	return ReplayKeyMap{
		Step: key.NewBinding(
			key.WithKeys(" ", "n", "right", "l"),
			key.WithHelp("space/n", "step"),
		),
		Play: key.NewBinding(
			key.WithKeys("p", "enter"),
			key.WithHelp("p", "play/pause"),
		),
		Finish: key.NewBinding(
			key.WithKeys("e", "end"),
			key.WithHelp("e", "run to end"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r", "home"),
			key.WithHelp("r", "restart"),
		),
		Faster: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "slower"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
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

// KeyMapper translates Bubble Tea key messages to menu actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionVerdicts
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab", "v":
		return MenuActionVerdicts
	}

	return MenuActionNone
}
