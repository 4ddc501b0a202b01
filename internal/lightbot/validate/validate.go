// Package validate checks level and program documents before they reach the
// engine. The engine itself assumes shape-checked input.
package validate

import (
	"fmt"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/core"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels/formats"
)

// Validation codes.
const (
	CodeInvalidGrid      = "INVALID_GRID"
	CodeGridMismatch     = "GRID_MISMATCH"
	CodeNegativeHeight   = "NEGATIVE_HEIGHT"
	CodeStartOutOfBounds = "START_OUT_OF_BOUNDS"
	CodeInvalidDirection = "INVALID_DIRECTION"
	CodeOutOfBounds      = "OUT_OF_BOUNDS"
	CodeProgramTooLong   = "PROGRAM_TOO_LONG"
	CodeMalformedEntry   = "MALFORMED_ENTRY"
)

// ValidationError contains details about validation failure.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func fail(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Limits caps the slot count of each program. Zero means unlimited.
type Limits struct {
	Main int `yaml:"main"`
	Sub1 int `yaml:"m1"`
	Sub2 int `yaml:"m2"`
}

// DefaultLimits returns the authoring limits of the stock game.
func DefaultLimits() Limits {
	return Limits{Main: 12, Sub1: 8, Sub2: 8}
}

// For returns the limit for one program.
func (l Limits) For(id core.ProgramID) int {
	switch id {
	case core.ProgramMain:
		return l.Main
	case core.ProgramSub1:
		return l.Sub1
	case core.ProgramSub2:
		return l.Sub2
	}
	return 0
}

// Options controls submission validation.
type Options struct {
	Limits Limits
	// Strict rejects documents that had malformed teleport, elevator or
	// program entries dropped during parsing.
	Strict bool
}

// Level checks grid shape, start pose and coordinate bounds.
// Checks:
//   - gridSize is positive and heights are N×N
//   - no negative heights
//   - start is on the grid with a valid direction
//   - goals and ice tiles are on the grid
//   - in strict mode, no parse issues and no off-grid teleport/elevator entries
func Level(l *formats.Level, strict bool) error {
	if err := validateGrid(l); err != nil {
		return err
	}
	if err := validateStart(l); err != nil {
		return err
	}
	if err := validateCoords(l); err != nil {
		return err
	}
	if strict {
		return validateStrict(l)
	}
	return nil
}

// validateGrid checks the declared size against the height matrix.
func validateGrid(l *formats.Level) error {
	if l.Size <= 0 || len(l.Heights) == 0 {
		return fail(CodeInvalidGrid, "gridSize must be positive and heights present")
	}
	if len(l.Heights) != l.Size {
		return fail(CodeGridMismatch, "heights has %d rows, gridSize is %d", len(l.Heights), l.Size)
	}
	for y, row := range l.Heights {
		if len(row) != l.Size {
			return fail(CodeGridMismatch, "row %d has %d columns, gridSize is %d", y, len(row), l.Size)
		}
		for x, h := range row {
			if h < 0 {
				return fail(CodeNegativeHeight, "height at %d,%d is %d", x, y, h)
			}
		}
	}
	return nil
}

func validateStart(l *formats.Level) error {
	s := l.Start
	if !inBounds(l.Size, core.C(s.X, s.Y)) {
		return fail(CodeStartOutOfBounds, "start %d,%d is outside the %dx%d grid", s.X, s.Y, l.Size, l.Size)
	}
	if s.Dir < 0 || s.Dir > int(core.DirWest) {
		return fail(CodeInvalidDirection, "start dir %d is not 0-3", s.Dir)
	}
	return nil
}

func validateCoords(l *formats.Level) error {
	for _, g := range l.Goals {
		if !inBounds(l.Size, g) {
			return fail(CodeOutOfBounds, "goal %v is outside the grid", g)
		}
	}
	for _, c := range l.Ice {
		if !inBounds(l.Size, c) {
			return fail(CodeOutOfBounds, "ice tile %v is outside the grid", c)
		}
	}
	return nil
}

func validateStrict(l *formats.Level) error {
	if len(l.Issues) > 0 {
		return fail(CodeMalformedEntry, "%s", l.Issues[0])
	}
	for from, to := range l.Teleports {
		if !inBounds(l.Size, from) || !inBounds(l.Size, to) {
			return fail(CodeMalformedEntry, "teleport %v -> %v leaves the grid", from, to)
		}
	}
	for at := range l.Elevators {
		if !inBounds(l.Size, at) {
			return fail(CodeMalformedEntry, "elevator %v is outside the grid", at)
		}
	}
	return nil
}

// Programs checks program lengths against the limits.
func Programs(p core.Programs, lim Limits) error {
	for _, id := range core.ProgramIDs() {
		limit := lim.For(id)
		if limit > 0 && p.Len(id) > limit {
			return fail(CodeProgramTooLong, "%s has %d slots, limit is %d", id, p.Len(id), limit)
		}
	}
	return nil
}

// Submission validates a parsed submission: level, then programs, then
// (in strict mode) any program-level parse issues.
func Submission(sub *formats.Submission, opts Options) error {
	if err := Level(&sub.Level, opts.Strict); err != nil {
		return err
	}
	if err := Programs(sub.Programs, opts.Limits); err != nil {
		return err
	}
	if opts.Strict && len(sub.Issues) > 0 {
		return fail(CodeMalformedEntry, "%s", sub.Issues[0])
	}
	return nil
}

// FailureMessage returns the player-facing message for a verdict reason.
// SUCCESS has no message.
func FailureMessage(r core.Reason) string {
	switch r {
	case core.ReasonNoGoals:
		return "Add at least one goal"
	case core.ReasonGoalsNotLit:
		return "Not all goals were lit"
	case core.ReasonTimeLimitExceeded:
		return "Infinite loop detected"
	}
	return ""
}

func inBounds(n int, c core.Coord) bool {
	return c.X >= 0 && c.X < n && c.Y >= 0 && c.Y < n
}
