package world

import (
	"github.com/zyedidia/generic/mapset"
)

// Grid is the authoritative spatial state of a level
type Grid struct {
	Width           int
	Height          int
	Enemies         []*Enemy
	FogOfWar        bool
	IncomePerSquare int

	known     mapset.Set[Pos]
	visited   mapset.Set[Pos]
	blockers  mapset.Set[Pos]
	doors     mapset.Set[Pos]
	openDoors mapset.Set[Pos]
	removed   mapset.Set[Pos]
}

// NewGrid creates an empty, fully fogged grid
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:           width,
		Height:          height,
		FogOfWar:        true,
		IncomePerSquare: 1,
		known:           mapset.New[Pos](),
		visited:         mapset.New[Pos](),
		blockers:        mapset.New[Pos](),
		doors:           mapset.New[Pos](),
		openDoors:       mapset.New[Pos](),
		removed:         mapset.New[Pos](),
	}
}

// InBounds reports whether p lies inside [0,Width)x[0,Height)
func (g *Grid) InBounds(p Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.Width && p.Y < g.Height
}

// Reveal marks p as known. It returns false, and changes nothing, when p is
// out of bounds or already known.
func (g *Grid) Reveal(p Pos) bool {
	if !g.InBounds(p) || g.known.Has(p) {
		return false
	}
	g.known.Put(p)
	return true
}

// RevealAdjacent reveals center and its four orthogonal neighbours and
// returns how many tiles were newly revealed.
func (g *Grid) RevealAdjacent(center Pos) int {
	count := 0
	if g.Reveal(center) {
		count++
	}
	for _, d := range Cardinals {
		if g.Reveal(center.Add(d)) {
			count++
		}
	}
	return count
}

// IsKnown reports whether p has been revealed
func (g *Grid) IsKnown(p Pos) bool {
	return g.known.Has(p)
}

// KnownCount returns the number of revealed tiles
func (g *Grid) KnownCount() int {
	return g.known.Size()
}

// AddBlocker places a static blocker. Out-of-bounds positions are ignored.
func (g *Grid) AddBlocker(p Pos) {
	if g.InBounds(p) {
		g.blockers.Put(p)
	}
}

// IsBlocker reports whether p holds a static blocker
func (g *Grid) IsBlocker(p Pos) bool {
	return g.blockers.Has(p)
}

// BlockerCount returns the number of static blockers
func (g *Grid) BlockerCount() int {
	return g.blockers.Size()
}

// AddDoor places a closed door. Out-of-bounds positions are ignored.
func (g *Grid) AddDoor(p Pos) {
	if g.InBounds(p) {
		g.doors.Put(p)
	}
}

// IsDoor reports whether p holds a door, open or closed
func (g *Grid) IsDoor(p Pos) bool {
	return g.doors.Has(p)
}

// IsDoorOpen reports whether p holds an open door
func (g *Grid) IsDoorOpen(p Pos) bool {
	return g.openDoors.Has(p)
}

// OpenDoor opens the door at p. It returns false if p is not a door.
func (g *Grid) OpenDoor(p Pos) bool {
	if !g.doors.Has(p) {
		return false
	}
	g.openDoors.Put(p)
	return true
}

// CloseDoor closes the door at p. It returns false if p is not a door.
func (g *Grid) CloseDoor(p Pos) bool {
	if !g.doors.Has(p) {
		return false
	}
	g.openDoors.Remove(p)
	return true
}

// SetRemoved toggles temporary removal of whatever blocks p. A removed tile
// is passable until it is restored.
func (g *Grid) SetRemoved(p Pos, removed bool) {
	if removed {
		g.removed.Put(p)
		return
	}
	g.removed.Remove(p)
}

// IsRemoved reports whether p is temporarily cleared
func (g *Grid) IsRemoved(p Pos) bool {
	return g.removed.Has(p)
}

// IsBlocked reports whether p is a static blocker or a closed door
func (g *Grid) IsBlocked(p Pos) bool {
	if g.removed.Has(p) {
		return false
	}
	if g.blockers.Has(p) {
		return true
	}
	return g.doors.Has(p) && !g.openDoors.Has(p)
}

// Visit records that the robot has stood on p
func (g *Grid) Visit(p Pos) {
	if g.InBounds(p) {
		g.visited.Put(p)
	}
}

// IsVisited reports whether the robot has stood on p
func (g *Grid) IsVisited(p Pos) bool {
	return g.visited.Has(p)
}

// PassableCount returns the number of in-bounds tiles that are not static
// blockers.
func (g *Grid) PassableCount() int {
	return g.Width*g.Height - g.blockers.Size()
}

// AllPassableKnown reports whether every non-blocker tile has been revealed
func (g *Grid) AllPassableKnown() bool {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := Pos{X: x, Y: y}
			if !g.blockers.Has(p) && !g.known.Has(p) {
				return false
			}
		}
	}
	return true
}

// EnemyAt returns the index of the enemy standing on p, or -1
func (g *Grid) EnemyAt(p Pos) int {
	for i, e := range g.Enemies {
		if e.Pos == p {
			return i
		}
	}
	return -1
}

// CheckEnemyCollision reports whether any enemy stands on robot
func (g *Grid) CheckEnemyCollision(robot Pos) bool {
	return g.EnemyAt(robot) >= 0
}

// Walkable reports whether an enemy other than self may step onto p
func (g *Grid) Walkable(p Pos, self int) bool {
	if !g.InBounds(p) || g.IsBlocked(p) {
		return false
	}
	occupant := g.EnemyAt(p)
	return occupant < 0 || occupant == self
}

// MoveEnemies advances every enemy that is not stunned by one tick, in list
// order. It returns the number of enemies that changed tile.
func (g *Grid) MoveEnemies(env Env, stunned map[int]int) int {
	moved := 0
	for i, e := range g.Enemies {
		if _, ok := stunned[i]; ok {
			continue
		}
		env.Grid = g
		env.Self = i
		if next, ok := e.Strategy.Next(e, env); ok && next != e.Pos {
			e.Pos = next
			moved++
		}
	}
	return moved
}

// Snapshot returns a read-only view suitable for rendering or JSON.
func (g *Grid) Snapshot() GridSnapshot {
	snap := GridSnapshot{
		Width:    g.Width,
		Height:   g.Height,
		FogOfWar: g.FogOfWar,
		Known:    sortedPositions(g.known),
		Visited:  sortedPositions(g.visited),
		Blockers: sortedPositions(g.blockers),
		Doors:    sortedPositions(g.doors),
		Open:     sortedPositions(g.openDoors),
		Removed:  sortedPositions(g.removed),
		Enemies:  make([]EnemySnapshot, 0, len(g.Enemies)),
	}
	for i, e := range g.Enemies {
		snap.Enemies = append(snap.Enemies, e.snapshot(i))
	}
	return snap
}

// GridSnapshot is the JSON form of a Grid
type GridSnapshot struct {
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	FogOfWar bool            `json:"fog_of_war"`
	Known    []Pos           `json:"known"`
	Visited  []Pos           `json:"visited"`
	Blockers []Pos           `json:"blockers"`
	Doors    []Pos           `json:"doors"`
	Open     []Pos           `json:"open_doors"`
	Removed  []Pos           `json:"removed,omitempty"`
	Enemies  []EnemySnapshot `json:"enemies"`
}

func sortedPositions(s mapset.Set[Pos]) []Pos {
	out := make([]Pos, 0, s.Size())
	s.Each(func(p Pos) {
		out = append(out, p)
	})
	sortPositions(out)
	return out
}
