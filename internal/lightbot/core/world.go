package core

import "sort"

// Elevator describes an elevator tile as it appears in a level document.
// Exactly one of the three forms is normally set; Vector resolves them.
type Elevator struct {
	Dir  string // "left", "right", "up" or "down"
	DX   *int   // explicit vector, used only when both DX and DY are set
	DY   *int
	Type string // legacy axis tag: "row" (+x) or "col" (+y)
}

// Vector normalizes the elevator to a single movement vector.
//
// A non-empty Dir decides alone: an unknown name yields no vector.
// An explicit (0,0) also yields no vector.
func (e Elevator) Vector() (Vec, bool) {
	if e.Dir != "" {
		switch e.Dir {
		case "left":
			return V(-1, 0), true
		case "right":
			return V(1, 0), true
		case "up":
			return V(0, -1), true
		case "down":
			return V(0, 1), true
		}
		return Vec{}, false
	}

	if e.DX != nil && e.DY != nil {
		v := V(*e.DX, *e.DY)
		if v.IsZero() {
			return Vec{}, false
		}
		return v, true
	}

	switch e.Type {
	case "row":
		return V(1, 0), true
	case "col":
		return V(0, 1), true
	}
	return Vec{}, false
}

// LevelSpec is the structured level descriptor the engine is built from.
// Loaders normalize document keys into Coords before producing it.
type LevelSpec struct {
	Size      int
	Heights   [][]int // heights[y][x]
	Start     Pose
	Goals     []Coord
	Ice       []Coord
	Teleports map[Coord]Coord
	Elevators map[Coord]Elevator
}

// World is an immutable view of a level.
// Every lookup is bounds-checked; out-of-bounds reads report "no tile".
type World struct {
	size      int
	heights   []int
	present   []bool
	start     Pose
	goals     map[Coord]struct{}
	goalList  []Coord
	ice       map[Coord]struct{}
	teleports map[Coord]Coord
	elevators map[Coord]Vec
}

// NewWorld builds a World from a level descriptor. Ragged or short height rows
// leave the missing tiles absent. Elevators are normalized once here; entries
// with no resolvable vector are dropped.
func NewWorld(spec LevelSpec) *World {
	size := spec.Size
	if size < 0 {
		size = 0
	}

	w := &World{
		size:      size,
		heights:   make([]int, size*size),
		present:   make([]bool, size*size),
		start:     spec.Start,
		goals:     make(map[Coord]struct{}, len(spec.Goals)),
		ice:       make(map[Coord]struct{}, len(spec.Ice)),
		teleports: make(map[Coord]Coord, len(spec.Teleports)),
		elevators: make(map[Coord]Vec, len(spec.Elevators)),
	}

	for y := 0; y < size && y < len(spec.Heights); y++ {
		row := spec.Heights[y]
		for x := 0; x < size && x < len(row); x++ {
			w.heights[y*size+x] = row[x]
			w.present[y*size+x] = true
		}
	}

	for _, g := range spec.Goals {
		if _, dup := w.goals[g]; dup {
			continue
		}
		w.goals[g] = struct{}{}
		w.goalList = append(w.goalList, g)
	}
	sort.Slice(w.goalList, func(i, j int) bool {
		return w.goalList[i].Less(w.goalList[j])
	})

	for _, c := range spec.Ice {
		w.ice[c] = struct{}{}
	}
	for from, to := range spec.Teleports {
		w.teleports[from] = to
	}
	for at, e := range spec.Elevators {
		if v, ok := e.Vector(); ok {
			w.elevators[at] = v
		}
	}

	return w
}

// Size returns the declared grid dimension N.
func (w *World) Size() int {
	return w.size
}

// Start returns the robot's declared start pose.
func (w *World) Start() Pose {
	return w.start
}

// InBounds returns true if the coordinate is within the N×N grid.
func (w *World) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < w.size && c.Y >= 0 && c.Y < w.size
}

// Height returns the tile height, or false if there is no tile at c.
func (w *World) Height(c Coord) (int, bool) {
	if !w.InBounds(c) {
		return 0, false
	}
	i := c.Y*w.size + c.X
	if !w.present[i] {
		return 0, false
	}
	return w.heights[i], true
}

// IsGoal reports whether c is a goal tile.
func (w *World) IsGoal(c Coord) bool {
	_, ok := w.goals[c]
	return ok
}

// Goals returns the unique goal tiles ordered by row then column.
func (w *World) Goals() []Coord {
	out := make([]Coord, len(w.goalList))
	copy(out, w.goalList)
	return out
}

// GoalCount returns the number of unique goal tiles.
func (w *World) GoalCount() int {
	return len(w.goalList)
}

// IsIce reports whether c is an ice tile.
func (w *World) IsIce(c Coord) bool {
	_, ok := w.ice[c]
	return ok
}

// TeleportDestination returns where a teleport at c leads.
// Destinations outside the grid are inert.
func (w *World) TeleportDestination(c Coord) (Coord, bool) {
	dest, ok := w.teleports[c]
	if !ok || !w.InBounds(dest) {
		return Coord{}, false
	}
	return dest, true
}

// ElevatorVector returns the normalized vector of an elevator at c.
func (w *World) ElevatorVector(c Coord) (Vec, bool) {
	v, ok := w.elevators[c]
	return v, ok
}
