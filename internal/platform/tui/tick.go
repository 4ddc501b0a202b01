// Package tui provides the Bubble Tea integration for lightbot: the replay
// viewer, level picker, cache browser and the SSH server that hosts them.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to advance an autoplaying replay by one step.
type TickMsg struct {
	Time time.Time
	Gen  int // replay generation; stale ticks are dropped
}

// tickCmd returns a Bubble Tea command that sends one tick after interval.
func tickCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Gen: gen}
	})
}
