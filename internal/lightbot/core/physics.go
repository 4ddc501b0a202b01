package core

// Effect identifies which tile effect moved the robot during landing.
type Effect uint8

const (
	EffectTeleport Effect = iota + 1
	EffectElevator
	EffectIce
)

// String returns the string representation of an effect.
func (e Effect) String() string {
	switch e {
	case EffectTeleport:
		return "teleport"
	case EffectElevator:
		return "elevator"
	case EffectIce:
		return "ice"
	default:
		return "none"
	}
}

// LandingStep records one effect application.
type LandingStep struct {
	Effect   Effect
	From     Coord
	To       Coord
	Momentum Vec // momentum after the effect
}

// Landing is the outcome of one physics resolution pass.
type Landing struct {
	Pos      Coord
	Momentum Vec
	Steps    []LandingStep
	// LoopBroken is set when a repeated (tile, facing, momentum) state on an
	// active tile stopped resolution early.
	LoopBroken bool
	// Exhausted is set when the 4·N² safety limit ran out.
	Exhausted bool
}

type landingState struct {
	pos      Coord
	facing   Dir
	momentum Vec
}

// SafetyLimit returns the maximum number of resolution iterations for this world.
func (w *World) SafetyLimit() int {
	return w.size * w.size * 4
}

// Resolve applies teleport, elevator and ice effects to a robot standing at
// pos until nothing applies. Priority per iteration is strict:
//
//  1. Teleport: move unconditionally, momentum becomes zero, loop history resets.
//  2. Elevator: move along its vector if the target is not higher; momentum
//     becomes the elevator vector.
//  3. Ice: with non-zero momentum, slide if the target is not higher;
//     otherwise momentum becomes zero and the robot stays.
//
// facing only participates in loop detection; sliding follows momentum.
func (w *World) Resolve(pos Coord, facing Dir, momentum Vec) Landing {
	land := Landing{Pos: pos, Momentum: momentum}
	visited := make(map[landingState]struct{})

	for safety := w.SafetyLimit(); ; safety-- {
		if safety <= 0 {
			land.Exhausted = true
			return land
		}

		cur := land.Pos
		key := landingState{pos: cur, facing: facing, momentum: land.Momentum}
		_, hasElevator := w.ElevatorVector(cur)
		if w.IsIce(cur) || hasElevator {
			if _, seen := visited[key]; seen {
				land.LoopBroken = true
				return land
			}
		}
		visited[key] = struct{}{}

		if dest, ok := w.TeleportDestination(cur); ok {
			land.Pos = dest
			land.Momentum = Vec{}
			clear(visited)
			land.Steps = append(land.Steps, LandingStep{Effect: EffectTeleport, From: cur, To: dest})
			continue
		}

		if vec, ok := w.ElevatorVector(cur); ok {
			next := cur.Add(vec)
			if w.notHigher(cur, next) {
				land.Pos = next
				land.Momentum = vec
				land.Steps = append(land.Steps, LandingStep{Effect: EffectElevator, From: cur, To: next, Momentum: vec})
				continue
			}
		}

		if w.IsIce(cur) && !land.Momentum.IsZero() {
			next := cur.Add(land.Momentum)
			if w.notHigher(cur, next) {
				land.Pos = next
				land.Steps = append(land.Steps, LandingStep{Effect: EffectIce, From: cur, To: next, Momentum: land.Momentum})
				continue
			}
			// Wall or rise: the slide dies where it is.
			land.Momentum = Vec{}
		}

		return land
	}
}

// notHigher reports whether next is a tile no higher than cur.
func (w *World) notHigher(cur, next Coord) bool {
	h1, ok := w.Height(next)
	if !ok {
		return false
	}
	h0, ok := w.Height(cur)
	if !ok {
		return false
	}
	return h1 <= h0
}
