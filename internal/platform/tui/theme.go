package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BoardTheme contains all configurable visual styles for the board and screens.
type BoardTheme struct {
	// Tile styles
	Tile      lipgloss.Style
	HighTile  lipgloss.Style // height >= 2
	NoTile    lipgloss.Style
	Goal      lipgloss.Style
	GoalLit   lipgloss.Style
	Ice       lipgloss.Style
	Teleport  lipgloss.Style
	Elevator  lipgloss.Style
	Robot     lipgloss.Style
	RobotDone lipgloss.Style // robot after a successful run

	// Program panel styles
	ProgramLabel lipgloss.Style
	Slot         lipgloss.Style
	SlotEmpty    lipgloss.Style
	SlotNext     lipgloss.Style

	// HUD styles
	HUDTitle     lipgloss.Style
	HUDValue     lipgloss.Style
	HUDSeparator lipgloss.Style
	HUDControls  lipgloss.Style

	// Verdict styles
	Success lipgloss.Style
	Failure lipgloss.Style

	// Level picker styles
	MenuTitle       lipgloss.Style
	MenuItemNormal  lipgloss.Style
	MenuItemActive  lipgloss.Style
	MenuDescription lipgloss.Style
}

// DefaultBoardTheme returns the default visual theme.
func DefaultBoardTheme() BoardTheme {
	return BoardTheme{
		Tile:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		HighTile:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true),
		NoTile:    lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
		Goal:      lipgloss.NewStyle().Foreground(lipgloss.Color("33")), // Blue
		GoalLit:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Ice:       lipgloss.NewStyle().Foreground(lipgloss.Color("159")), // Pale cyan
		Teleport:  lipgloss.NewStyle().Foreground(lipgloss.Color("135")), // Purple
		Elevator:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")), // Orange
		Robot:     lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		RobotDone: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),

		ProgramLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		Slot:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		SlotEmpty:    lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		SlotNext:     lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),

		HUDTitle:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		HUDValue:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		HUDSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		HUDControls:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		MenuTitle:       lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		MenuItemNormal:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		MenuItemActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		MenuDescription: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// MonochromeBoardTheme returns a grayscale theme that relies on glyphs alone.
func MonochromeBoardTheme() BoardTheme {
	theme := DefaultBoardTheme()
	theme.Goal = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	theme.GoalLit = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	theme.Ice = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	theme.Teleport = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	theme.Elevator = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	theme.Robot = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	theme.RobotDone = theme.Robot
	theme.Success = lipgloss.NewStyle().Bold(true)
	theme.Failure = lipgloss.NewStyle().Bold(true).Underline(true)
	return theme
}

// ThemeByName returns a named theme. Unknown names get the default theme.
func ThemeByName(name string) BoardTheme {
	switch strings.ToLower(name) {
	case "mono", "monochrome":
		return MonochromeBoardTheme()
	default:
		return DefaultBoardTheme()
	}
}
