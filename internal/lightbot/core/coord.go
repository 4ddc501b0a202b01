package core

import "fmt"

// Coord represents a tile on the grid.
// X increases to the right, Y increases downward (row-major, heights[y][x]).
type Coord struct {
	X int
	Y int
}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns the "x,y" form used by level documents.
func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// Add returns a new Coord offset by v.
func (c Coord) Add(v Vec) Coord {
	return Coord{X: c.X + v.DX, Y: c.Y + v.DY}
}

// Less orders coordinates by row then column.
func (c Coord) Less(other Coord) bool {
	if c.Y != other.Y {
		return c.Y < other.Y
	}
	return c.X < other.X
}

// Vec is a movement vector. Momentum is carried as a Vec.
type Vec struct {
	DX int
	DY int
}

// V is a convenience constructor for Vec.
func V(dx, dy int) Vec {
	return Vec{DX: dx, DY: dy}
}

// IsZero reports whether the vector has no magnitude.
func (v Vec) IsZero() bool {
	return v.DX == 0 && v.DY == 0
}

// String returns the string representation of a vector.
func (v Vec) String() string {
	return fmt.Sprintf("(%d,%d)", v.DX, v.DY)
}
