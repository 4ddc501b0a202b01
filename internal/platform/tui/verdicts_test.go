package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/lightbot-arena/internal/storage"
)

type fakeLister struct {
	entries []storage.VerdictEntry
	err     error
	calls   int
}

func (f *fakeLister) RecentVerdicts(limit int) ([]storage.VerdictEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.entries) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func sampleVerdicts() []storage.VerdictEntry {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return []storage.VerdictEntry{
		{Fingerprint: "aaaaaaaaaaaaaaaa", LevelID: "01", Success: true, Reason: "SUCCESS", Steps: 4, CreatedAt: now},
		{Fingerprint: "bbbb", LevelID: "02", Reason: "GOALS_NOT_LIT", Steps: 7, CreatedAt: now},
		{Fingerprint: "cccc", LevelID: "02", Reason: "GOALS_NOT_LIT", Steps: 3, CreatedAt: now},
		{Fingerprint: "dddd", LevelID: "08", Reason: "TIME_LIMIT_EXCEEDED", Steps: 5000, CreatedAt: now},
	}
}

func updateVerdicts(t *testing.T, m VerdictsModel, msg tea.Msg) (VerdictsModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	vm, ok := next.(VerdictsModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return vm, cmd
}

func TestVerdictsFilters(t *testing.T) {
	src := &fakeLister{entries: sampleVerdicts()}
	m := NewVerdictsModel(src, 120, 40)

	if len(m.Rows()) != 4 {
		t.Fatalf("Expected all 4 rows, got %d", len(m.Rows()))
	}

	m, _ = updateVerdicts(t, m, keyMsg("tab"))
	if len(m.Rows()) != 1 || m.Rows()[0].LevelID != "01" {
		t.Errorf("Expected only the success row, got %+v", m.Rows())
	}

	m, _ = updateVerdicts(t, m, keyMsg("l"))
	if len(m.Rows()) != 2 {
		t.Errorf("Expected 2 GOALS_NOT_LIT rows, got %d", len(m.Rows()))
	}

	// Wrap around backwards from "All" to "No goals".
	m, _ = updateVerdicts(t, m, keyMsg("h"))
	m, _ = updateVerdicts(t, m, keyMsg("h"))
	m, _ = updateVerdicts(t, m, keyMsg("h"))
	if verdictFilters[m.filter].Title != "No goals" || len(m.Rows()) != 0 {
		t.Errorf("Expected empty \"No goals\" filter, got %s with %d rows", verdictFilters[m.filter].Title, len(m.Rows()))
	}
	if !containsPlain(m.View(), "No verdicts cached yet") {
		t.Error("Expected empty message")
	}
}

func TestVerdictsReloadAndError(t *testing.T) {
	src := &fakeLister{err: errors.New("disk gone")}
	m := NewVerdictsModel(src, 60, 20)
	if !containsPlain(m.View(), "disk gone") {
		t.Error("Expected load error in view")
	}

	src.err = nil
	src.entries = sampleVerdicts()
	m, _ = updateVerdicts(t, m, keyMsg("r"))
	if src.calls != 2 || len(m.Rows()) != 4 {
		t.Errorf("Expected reload to pick up 4 rows, got %d after %d calls", len(m.Rows()), src.calls)
	}
	if !containsPlain(m.View(), "VERDICT CACHE - All (4)") {
		t.Error("Expected title with row count")
	}
}

func TestVerdictsWithoutSource(t *testing.T) {
	m := NewVerdictsModel(nil, 80, 24)
	if len(m.Rows()) != 0 {
		t.Error("Expected no rows")
	}

	m, cmd := updateVerdicts(t, m, keyMsg("esc"))
	if !m.IsGoingBack() || cmd == nil {
		t.Error("Expected back")
	}
	if m.View() != "" {
		t.Error("Expected empty view after leaving")
	}
}

func TestVerdictsResize(t *testing.T) {
	m := NewVerdictsModel(&fakeLister{entries: sampleVerdicts()}, 60, 20)
	if m.showSidebar {
		t.Error("Expected narrow layout")
	}
	m, _ = updateVerdicts(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	if !m.showSidebar || len(m.Rows()) != 4 {
		t.Error("Expected wide layout with rows kept")
	}
	if !containsPlain(m.View(), "Filter") {
		t.Error("Expected filter sidebar")
	}
}
