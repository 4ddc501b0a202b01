package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/core"
)

// facingGlyphs maps a facing to the robot glyph.
var facingGlyphs = [...]rune{
	core.DirNorth: '^',
	core.DirEast:  '>',
	core.DirSouth: 'v',
	core.DirWest:  '<',
}

// Cell is one rendered tile before styling. Text is always three runes wide.
type Cell struct {
	Text  string
	Style lipgloss.Style
}

// BoardCells computes the tile glyphs for the current simulation state.
//
// Each tile is three runes: a feature bracket on each side and the height in
// the middle. The robot replaces the height with its facing arrow.
//
//	[0]  goal        ~0~  ice
//	(0)  teleport    |0|  elevator
func BoardCells(sim *core.Simulation, theme BoardTheme) [][]Cell {
	w := sim.World()
	n := w.Size()
	robot := sim.Robot()
	done := sim.State() == core.StateSucceeded

	rows := make([][]Cell, n)
	for y := 0; y < n; y++ {
		rows[y] = make([]Cell, n)
		for x := 0; x < n; x++ {
			c := core.C(x, y)
			h, ok := w.Height(c)
			if !ok {
				rows[y][x] = Cell{Text: " . ", Style: theme.NoTile}
				continue
			}

			mid := heightRune(h)
			left, right := ' ', ' '
			style := theme.Tile
			if h >= 2 {
				style = theme.HighTile
			}

			_, isElevator := w.ElevatorVector(c)
			_, isTeleport := w.TeleportDestination(c)
			switch {
			case w.IsGoal(c):
				left, right = '[', ']'
				style = theme.Goal
				if sim.IsLit(c) {
					left, right = '{', '}'
					style = theme.GoalLit
				}
			case isTeleport:
				left, right = '(', ')'
				style = theme.Teleport
			case isElevator:
				left, right = '|', '|'
				style = theme.Elevator
			case w.IsIce(c):
				left, right = '~', '~'
				style = theme.Ice
			}

			if c == robot.Pos {
				if int(robot.Facing) < len(facingGlyphs) {
					mid = facingGlyphs[robot.Facing]
				}
				style = theme.Robot
				if done {
					style = theme.RobotDone
				}
			}

			rows[y][x] = Cell{Text: string([]rune{left, mid, right}), Style: style}
		}
	}
	return rows
}

func heightRune(h int) rune {
	if h >= 0 && h <= 9 {
		return rune('0' + h)
	}
	return '+'
}

// RenderBoard renders the grid as styled text, one line per row.
func RenderBoard(sim *core.Simulation, theme BoardTheme) string {
	var sb strings.Builder
	for y, row := range BoardCells(sim, theme) {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for _, cell := range row {
			sb.WriteString(cell.Style.Render(cell.Text))
		}
	}
	return sb.String()
}

// RenderPrograms renders the three programs with the next slot of the active
// frame highlighted.
func RenderPrograms(sim *core.Simulation, theme BoardTheme) string {
	next := core.Frame{Program: core.ProgramMain, IP: -1}
	if stack := sim.Stack(); len(stack) > 0 && !sim.State().Terminal() {
		next = stack[len(stack)-1]
	}

	progs := sim.Programs()
	var sb strings.Builder
	for i, id := range core.ProgramIDs() {
		if i > 0 {
			sb.WriteRune('\n')
		}
		sb.WriteString(theme.ProgramLabel.Render(fmt.Sprintf("%-4s ", id)))

		seq := progs.Get(id)
		if len(seq) == 0 {
			sb.WriteString(theme.SlotEmpty.Render("-"))
			continue
		}
		for ip, op := range seq {
			text := fmt.Sprintf("%-2s", op.Token())
			style := theme.Slot
			if op == core.OpEmpty {
				text = ". "
				style = theme.SlotEmpty
			}
			if id == next.Program && ip == next.IP {
				style = theme.SlotNext
			}
			sb.WriteString(style.Render(text))
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}

// DescribeEvent returns a one-line summary of an interpreter step.
func DescribeEvent(ev core.Event) string {
	var what string
	switch ev.Kind {
	case core.StepReturn:
		what = fmt.Sprintf("return from %s", ev.Frame.Program)
	case core.StepEmpty:
		what = fmt.Sprintf("%s[%d] empty", ev.Frame.Program, ev.Frame.IP)
	default:
		what = fmt.Sprintf("%s[%d] %s", ev.Frame.Program, ev.Frame.IP, ev.Op)
		switch {
		case ev.Moved && ev.Landing != nil && len(ev.Landing.Steps) > 0:
			var path []string
			for _, ls := range ev.Landing.Steps {
				path = append(path, fmt.Sprintf("%s %v", ls.Effect, ls.To))
			}
			what += fmt.Sprintf(" -> %v via %s", ev.After.Pos, strings.Join(path, ", "))
		case ev.Moved:
			what += fmt.Sprintf(" -> %v", ev.After.Pos)
		case ev.Op == core.OpForward || ev.Op == core.OpJump:
			what += " (blocked)"
		case ev.Toggled && ev.Lit:
			what += " (lit)"
		case ev.Toggled:
			what += " (unlit)"
		case ev.Op == core.OpLight:
			what += " (not a goal)"
		case ev.Op == core.OpCallSub1 || ev.Op == core.OpCallSub2:
			if !ev.Called {
				what += " (empty subroutine)"
			}
		}
	}
	return fmt.Sprintf("#%d %s", ev.Step, what)
}
