package core

// MoveKind selects which height rule applies to a move.
type MoveKind uint8

const (
	MoveForward MoveKind = iota
	MoveJump
)

// String returns the string representation of a move kind.
func (k MoveKind) String() string {
	if k == MoveJump {
		return "Jump"
	}
	return "Forward"
}

// CanMove applies the height rules for a move from height h0 to h1.
//
//   - Forward: only onto a tile of equal height.
//   - Jump: never onto equal height, at most one unit up, any distance down.
func CanMove(kind MoveKind, h0, h1 int) bool {
	switch kind {
	case MoveForward:
		return h1 == h0
	case MoveJump:
		if h1 == h0 {
			return false
		}
		return h1 <= h0+1
	}
	return false
}

// TryMove checks whether the robot at pose can take a move one tile in its
// facing direction. It returns the destination and the movement vector.
// A missing source or destination tile fails the move.
func (w *World) TryMove(pose Pose, kind MoveKind) (Coord, Vec, bool) {
	delta := pose.Facing.Delta()
	dest := pose.Pos.Add(delta)

	h0, ok := w.Height(pose.Pos)
	if !ok {
		return pose.Pos, Vec{}, false
	}
	h1, ok := w.Height(dest)
	if !ok {
		return pose.Pos, Vec{}, false
	}
	if !CanMove(kind, h0, h1) {
		return pose.Pos, Vec{}, false
	}
	return dest, delta, true
}
