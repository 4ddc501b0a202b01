// Package core provides the execution and physics engine for the Lightbot
// puzzle game. This package is UI-agnostic and deterministic: the same level
// and programs always produce the same verdict.
package core

import "strings"

// Dir represents the robot's facing.
// The numeric values match level documents: 0=N, 1=E, 2=S, 3=W.
type Dir uint8

const (
	DirNorth Dir = iota
	DirEast
	DirSouth
	DirWest
)

// String returns the string representation of a direction.
func (d Dir) String() string {
	switch d {
	case DirNorth:
		return "North"
	case DirEast:
		return "East"
	case DirSouth:
		return "South"
	case DirWest:
		return "West"
	default:
		return "Unknown"
	}
}

// Valid reports whether d is one of the four cardinal directions.
func (d Dir) Valid() bool {
	return d <= DirWest
}

// Delta returns the movement vector for one step in this direction.
// North decreases Y, South increases Y.
func (d Dir) Delta() Vec {
	switch d {
	case DirNorth:
		return V(0, -1)
	case DirEast:
		return V(1, 0)
	case DirSouth:
		return V(0, 1)
	case DirWest:
		return V(-1, 0)
	default:
		return V(0, 0)
	}
}

// Left returns the direction after a counter-clockwise quarter turn.
func (d Dir) Left() Dir {
	return (d + 3) % 4
}

// Right returns the direction after a clockwise quarter turn.
func (d Dir) Right() Dir {
	return (d + 1) % 4
}

// Pose is the robot's position and facing.
type Pose struct {
	Pos    Coord
	Facing Dir
}

// Opcode is a single program instruction. OpEmpty is an unfilled slot.
type Opcode uint8

const (
	OpEmpty Opcode = iota
	OpForward
	OpJump
	OpTurnLeft
	OpTurnRight
	OpLight
	OpCallSub1
	OpCallSub2
)

var opcodeTokens = [...]string{
	OpEmpty:     "",
	OpForward:   "F",
	OpJump:      "J",
	OpTurnLeft:  "TL",
	OpTurnRight: "TR",
	OpLight:     "L",
	OpCallSub1:  "M1",
	OpCallSub2:  "M2",
}

var opcodeNames = [...]string{
	OpEmpty:     "Empty",
	OpForward:   "Forward",
	OpJump:      "Jump",
	OpTurnLeft:  "TurnLeft",
	OpTurnRight: "TurnRight",
	OpLight:     "Light",
	OpCallSub1:  "CallSub1",
	OpCallSub2:  "CallSub2",
}

// String returns the long name of the opcode.
func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "Unknown"
}

// Token returns the short wire token ("F", "TL", ...). OpEmpty has an empty token.
func (op Opcode) Token() string {
	if int(op) < len(opcodeTokens) {
		return opcodeTokens[op]
	}
	return ""
}

// ParseOpcode parses either a wire token or a long name, case-insensitively.
// The empty string parses as OpEmpty.
func ParseOpcode(s string) (Opcode, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return OpEmpty, true
	}
	for i := range opcodeTokens {
		op := Opcode(i)
		if op == OpEmpty {
			continue
		}
		if strings.EqualFold(s, opcodeTokens[i]) || strings.EqualFold(s, opcodeNames[i]) {
			return op, true
		}
	}
	return OpEmpty, false
}
