package world

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Pos represents x,y grid coordinates
type Pos struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Unit steps. Y grows downwards.
var (
	Up    = Pos{X: 0, Y: -1}
	Down  = Pos{X: 0, Y: 1}
	Left  = Pos{X: -1, Y: 0}
	Right = Pos{X: 1, Y: 0}
)

// Cardinals lists the four unit steps in right, down, left, up order.
var Cardinals = [4]Pos{Right, Down, Left, Up}

// Add returns p translated by d
func (p Pos) Add(d Pos) Pos {
	return Pos{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(a, b Pos) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// ParseDirection maps up/down/left/right (any case, optionally quoted) to a
// unit step.
func ParseDirection(s string) (Pos, bool) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	switch strings.ToLower(s) {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return Pos{}, false
}

// DirectionName is the inverse of ParseDirection for unit steps.
func DirectionName(d Pos) string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return d.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// sortPositions orders positions row-major
func sortPositions(ps []Pos) {
	slices.SortFunc(ps, func(a, b Pos) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
}
