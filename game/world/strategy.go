package world

import (
	"math/rand/v2"
)

// StrategyKind names a built-in movement behaviour
type StrategyKind int

const (
	KindBounce StrategyKind = iota
	KindRandom
	KindDiagonal
	KindCircular
	KindSpiral
	KindChase
	KindGuard
)

var kindNames = map[StrategyKind]string{
	KindBounce:   "bounce",
	KindRandom:   "random",
	KindDiagonal: "diagonal",
	KindCircular: "circular",
	KindSpiral:   "spiral",
	KindChase:    "chase",
	KindGuard:    "guard",
}

func (k StrategyKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// GuardRadius is the Manhattan leash of a guard around its spawn point
const GuardRadius = 3

// RandomAttempts bounds how many directions a random walker tries per tick
const RandomAttempts = 10

// Env is everything a strategy may read during one tick. Grid and Self are
// filled in by Grid.MoveEnemies.
type Env struct {
	Grid   *Grid
	Self   int
	Player Pos
	Rand   *rand.Rand
}

func (env Env) free(p Pos) bool {
	return env.Grid.Walkable(p, env.Self)
}

// Strategy decides an enemy's next tile. Next returns false when the enemy
// stays put this tick. Implementations mutate only their own scratch fields
// and the enemy passed in as self.
type Strategy interface {
	Kind() StrategyKind
	Next(self *Enemy, env Env) (Pos, bool)
}

// NewStrategy returns a fresh strategy of the given kind with zeroed scratch
// state.
func NewStrategy(kind StrategyKind) Strategy {
	switch kind {
	case KindRandom:
		return &RandomWalk{}
	case KindDiagonal:
		return &Diagonal{}
	case KindCircular:
		return &Circular{}
	case KindSpiral:
		return NewSpiral()
	case KindChase:
		return &Chase{}
	case KindGuard:
		return &Guard{}
	default:
		return &Bounce{}
	}
}

// Bounce patrols along the enemy's axis and reverses when blocked.
type Bounce struct{}

func (*Bounce) Kind() StrategyKind { return KindBounce }

func (*Bounce) Next(self *Enemy, env Env) (Pos, bool) {
	return bounce(self, env, self.Axis.step)
}

// Diagonal patrols along the main diagonal and reverses when blocked.
type Diagonal struct{}

func (*Diagonal) Kind() StrategyKind { return KindDiagonal }

func (*Diagonal) Next(self *Enemy, env Env) (Pos, bool) {
	return bounce(self, env, func(positive bool) Pos {
		if positive {
			return Pos{X: 1, Y: 1}
		}
		return Pos{X: -1, Y: -1}
	})
}

// bounce tries one step, and on failure flips MovingPositive and tries the
// opposite step once.
func bounce(self *Enemy, env Env, step func(positive bool) Pos) (Pos, bool) {
	next := self.Pos.Add(step(self.MovingPositive))
	if env.free(next) {
		return next, true
	}
	self.MovingPositive = !self.MovingPositive
	next = self.Pos.Add(step(self.MovingPositive))
	if env.free(next) {
		return next, true
	}
	return self.Pos, false
}

// RandomWalk picks random cardinal steps until one is free.
type RandomWalk struct{}

func (*RandomWalk) Kind() StrategyKind { return KindRandom }

var randomDirections = [4]Pos{Down, Up, Right, Left}

func (*RandomWalk) Next(self *Enemy, env Env) (Pos, bool) {
	if env.Rand == nil {
		return self.Pos, false
	}
	for attempt := 0; attempt < RandomAttempts; attempt++ {
		next := self.Pos.Add(randomDirections[env.Rand.IntN(len(randomDirections))])
		if env.free(next) {
			return next, true
		}
	}
	return self.Pos, false
}

// Circular keeps heading one way and turns clockwise when blocked.
type Circular struct {
	DirectionIndex int `json:"direction_index"`
}

func (*Circular) Kind() StrategyKind { return KindCircular }

func (c *Circular) Next(self *Enemy, env Env) (Pos, bool) {
	next := self.Pos.Add(Cardinals[c.DirectionIndex%4])
	if env.free(next) {
		return next, true
	}
	c.DirectionIndex = (c.DirectionIndex + 1) % 4
	next = self.Pos.Add(Cardinals[c.DirectionIndex])
	if env.free(next) {
		return next, true
	}
	return self.Pos, false
}

// Spiral traces an outward square spiral with leg lengths 1,1,2,2,3,3...
type Spiral struct {
	DirectionIndex   int `json:"direction_index"`
	StepsInDirection int `json:"steps_in_direction"`
	CurrentStep      int `json:"current_step"`
}

// NewSpiral returns a spiral at the start of its first leg
func NewSpiral() *Spiral {
	return &Spiral{StepsInDirection: 1}
}

func (*Spiral) Kind() StrategyKind { return KindSpiral }

func (s *Spiral) Next(self *Enemy, env Env) (Pos, bool) {
	if s.StepsInDirection < 1 {
		s.StepsInDirection = 1
	}
	next := self.Pos.Add(Cardinals[s.DirectionIndex%4])
	if !env.free(next) {
		return self.Pos, false
	}
	s.CurrentStep++
	if s.CurrentStep >= s.StepsInDirection {
		s.DirectionIndex = (s.DirectionIndex + 1) % 4
		// legs grow after every second turn
		if s.DirectionIndex%2 == 0 {
			s.StepsInDirection++
		}
		s.CurrentStep = 0
	}
	return next, true
}

// Chase steps toward the player, falling back to axis-aligned and then any
// cardinal step.
type Chase struct {
	IsChasing bool `json:"is_chasing"`
}

func (*Chase) Kind() StrategyKind { return KindChase }

func (c *Chase) Next(self *Enemy, env Env) (Pos, bool) {
	dx := sign(env.Player.X - self.Pos.X)
	dy := sign(env.Player.Y - self.Pos.Y)
	candidates := []Pos{
		{X: dx, Y: dy},
		{X: dx, Y: 0},
		{X: 0, Y: dy},
		Right, Left, Down, Up,
	}
	for i, d := range candidates {
		if d.X == 0 && d.Y == 0 {
			continue
		}
		next := self.Pos.Add(d)
		if env.free(next) {
			// Only the direct step counts as chasing.
			c.IsChasing = i == 0
			return next, true
		}
	}
	c.IsChasing = false
	return self.Pos, false
}

// Guard patrols within GuardRadius of the tile it stood on at its first
// tick.
type Guard struct {
	Center         *Pos `json:"center,omitempty"`
	DirectionIndex int  `json:"direction_index"`
}

func (*Guard) Kind() StrategyKind { return KindGuard }

func (g *Guard) Next(self *Enemy, env Env) (Pos, bool) {
	if g.Center == nil {
		center := self.Pos
		g.Center = &center
	}
	next := self.Pos.Add(Cardinals[g.DirectionIndex%4])
	if ManhattanDistance(next, *g.Center) <= GuardRadius && env.free(next) {
		return next, true
	}
	g.DirectionIndex = (g.DirectionIndex + 1) % 4
	return self.Pos, false
}
