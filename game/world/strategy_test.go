package world

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openEnv(g *Grid, self int) Env {
	return Env{Grid: g, Self: self, Rand: rand.New(rand.NewPCG(7, 7))}
}

func TestSpiralLegLengths(t *testing.T) {
	g := NewGrid(41, 41)
	e := NewEnemy(Pos{X: 20, Y: 20}, Horizontal, true, "spiral", NewSpiral())
	g.Enemies = []*Enemy{e}
	env := openEnv(g, 0)

	var legs []int
	var lastDir Pos
	run := 0
	for i := 0; i < 30; i++ {
		next, ok := e.Strategy.Next(e, env)
		require.True(t, ok, "open board never blocks the spiral")
		dir := Pos{X: next.X - e.Pos.X, Y: next.Y - e.Pos.Y}
		e.Pos = next
		if i > 0 && dir != lastDir {
			legs = append(legs, run)
			run = 0
		}
		lastDir = dir
		run++
	}

	require.GreaterOrEqual(t, len(legs), 8)
	assert.Equal(t, []int{1, 1, 2, 2, 3, 3, 4, 4}, legs[:8])
}

func TestSpiralStaysWhenBlocked(t *testing.T) {
	g := NewGrid(5, 5)
	g.AddBlocker(Pos{X: 3, Y: 2})
	e := NewEnemy(Pos{X: 2, Y: 2}, Horizontal, true, "", NewSpiral())
	g.Enemies = []*Enemy{e}

	_, ok := e.Strategy.Next(e, openEnv(g, 0))

	assert.False(t, ok)
	s := e.Strategy.(*Spiral)
	assert.Equal(t, Spiral{DirectionIndex: 0, StepsInDirection: 1, CurrentStep: 0}, *s)
}

func TestBounceReverses(t *testing.T) {
	g := NewGrid(4, 1)
	e := NewEnemy(Pos{X: 2, Y: 0}, Horizontal, true, "", &Bounce{})
	g.Enemies = []*Enemy{e}
	env := openEnv(g, 0)

	var path []int
	for i := 0; i < 5; i++ {
		next, ok := e.Strategy.Next(e, env)
		require.True(t, ok)
		e.Pos = next
		path = append(path, next.X)
	}

	assert.Equal(t, []int{3, 2, 1, 0, 1}, path)
}

func TestBounceStaysWhenBoxedIn(t *testing.T) {
	g := NewGrid(3, 1)
	g.AddBlocker(Pos{X: 0, Y: 0})
	g.AddDoor(Pos{X: 2, Y: 0})
	e := NewEnemy(Pos{X: 1, Y: 0}, Horizontal, true, "", &Bounce{})
	g.Enemies = []*Enemy{e}

	_, ok := e.Strategy.Next(e, openEnv(g, 0))

	assert.False(t, ok)
	assert.False(t, e.MovingPositive, "direction flips even when the retry fails")
}

func TestGuardLeash(t *testing.T) {
	g := NewGrid(20, 20)
	e := NewEnemy(Pos{X: 10, Y: 10}, Horizontal, true, "guard", &Guard{})
	g.Enemies = []*Enemy{e}
	env := openEnv(g, 0)

	for i := 0; i < 100; i++ {
		if next, ok := e.Strategy.Next(e, env); ok {
			e.Pos = next
		}
		assert.LessOrEqual(t, ManhattanDistance(e.Pos, Pos{X: 10, Y: 10}), GuardRadius)
	}
	guard := e.Strategy.(*Guard)
	require.NotNil(t, guard.Center)
	assert.Equal(t, Pos{X: 10, Y: 10}, *guard.Center)
}

func TestChaseApproachesPlayer(t *testing.T) {
	g := NewGrid(10, 10)
	e := NewEnemy(Pos{X: 8, Y: 8}, Horizontal, true, "chase", &Chase{})
	g.Enemies = []*Enemy{e}
	env := openEnv(g, 0)
	env.Player = Pos{X: 1, Y: 8}

	before := ManhattanDistance(e.Pos, env.Player)
	next, ok := e.Strategy.Next(e, env)

	require.True(t, ok)
	assert.Less(t, ManhattanDistance(next, env.Player), before)
	assert.True(t, e.Strategy.(*Chase).IsChasing)
}

func TestChaseFallsBackAroundWall(t *testing.T) {
	g := NewGrid(5, 5)
	g.AddBlocker(Pos{X: 1, Y: 2})
	e := NewEnemy(Pos{X: 2, Y: 2}, Horizontal, true, "chase", &Chase{})
	g.Enemies = []*Enemy{e}
	env := openEnv(g, 0)
	env.Player = Pos{X: 0, Y: 2}

	next, ok := e.Strategy.Next(e, env)

	require.True(t, ok)
	assert.Equal(t, Pos{X: 3, Y: 2}, next, "first free cardinal in fallback order is right")
	assert.False(t, e.Strategy.(*Chase).IsChasing, "a fallback step is not a chase")
}

func TestCircularTurnsWhenBlocked(t *testing.T) {
	g := NewGrid(3, 3)
	e := NewEnemy(Pos{X: 2, Y: 0}, Horizontal, true, "circular", &Circular{})
	g.Enemies = []*Enemy{e}

	next, ok := e.Strategy.Next(e, openEnv(g, 0))

	require.True(t, ok)
	assert.Equal(t, Pos{X: 2, Y: 1}, next)
	assert.Equal(t, 1, e.Strategy.(*Circular).DirectionIndex)
}

// Every strategy must only ever propose in-bounds, unblocked, unoccupied
// tiles, no matter how crowded the board is.
func TestStrategiesNeverProposeIllegalTiles(t *testing.T) {
	kinds := []StrategyKind{KindBounce, KindRandom, KindDiagonal, KindCircular, KindSpiral, KindChase, KindGuard}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			g := NewGrid(7, 6)
			for _, p := range []Pos{{X: 3, Y: 0}, {X: 3, Y: 1}, {X: 1, Y: 4}, {X: 5, Y: 3}} {
				g.AddBlocker(p)
			}
			g.AddDoor(Pos{X: 3, Y: 3})
			starts := []Pos{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 2}, {X: 4, Y: 4}, {X: 6, Y: 5}}
			for i, p := range starts {
				g.Enemies = append(g.Enemies, NewEnemy(p, Axis(i%2), i%3 == 0, kind.String(), NewStrategy(kind)))
			}
			rng := rand.New(rand.NewPCG(42, 1))

			for tick := 0; tick < 150; tick++ {
				for i, e := range g.Enemies {
					env := Env{Grid: g, Self: i, Player: Pos{X: 6, Y: 0}, Rand: rng}
					next, ok := e.Strategy.Next(e, env)
					if !ok {
						continue
					}
					require.True(t, g.InBounds(next), "tick %d enemy %d out of bounds: %v", tick, i, next)
					require.False(t, g.IsBlocked(next), "tick %d enemy %d onto blocked %v", tick, i, next)
					occupant := g.EnemyAt(next)
					require.True(t, occupant < 0 || occupant == i, "tick %d enemy %d onto enemy %d", tick, i, occupant)
					e.Pos = next
				}
			}
		})
	}
}

type mapLoader map[string]string

func (m mapLoader) ReadResource(name string) (string, error) {
	if s, ok := m[name]; ok {
		return s, nil
	}
	return "", errors.New("not found")
}

func TestDetectPattern(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    StrategyKind
		wantErr bool
	}{
		{"spiral", "// MOVEMENT_PATTERN: spiral\nfn main() {}", KindSpiral, false},
		{"chase later line", "// header\n  // MOVEMENT_PATTERN: chase\n", KindChase, false},
		{"vertical", "// MOVEMENT_PATTERN: vertical", KindBounce, false},
		{"missing", "fn main() {}", KindBounce, true},
		{"unknown", "// MOVEMENT_PATTERN: teleport", KindBounce, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := DetectPattern(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewPatternRegistry(mapLoader{
		"patterns/guard.pattern":    "// MOVEMENT_PATTERN: guard",
		"patterns/vertical.pattern": "// MOVEMENT_PATTERN: vertical",
	})

	s, axis := reg.Resolve("file:patterns/guard.pattern", 2)
	assert.Equal(t, KindGuard, s.Kind())
	assert.Nil(t, axis)
	b, ok := reg.custom["custom_2"]
	require.True(t, ok)
	assert.Equal(t, KindGuard, b.kind)

	s, axis = reg.Resolve("file:patterns/vertical.pattern", 0)
	assert.Equal(t, KindBounce, s.Kind())
	require.NotNil(t, axis)
	assert.Equal(t, Vertical, *axis)

	s, _ = reg.Resolve("file:patterns/missing.pattern", 5)
	assert.Equal(t, KindBounce, s.Kind())
	_, ok = reg.custom["custom_5"]
	assert.False(t, ok, "failed loads leave no registry entry")

	s, _ = reg.Resolve("Spiral", 1)
	assert.Equal(t, KindSpiral, s.Kind())
	assert.Equal(t, 1, s.(*Spiral).StepsInDirection)

	s, _ = reg.Resolve("moonwalk", 1)
	assert.Equal(t, KindBounce, s.Kind())
}

func TestResolveGivesEachEnemyOwnScratch(t *testing.T) {
	reg := NewPatternRegistry(nil)
	a, _ := reg.Resolve("circular", 0)
	b, _ := reg.Resolve("circular", 1)

	a.(*Circular).DirectionIndex = 3
	assert.Equal(t, 0, b.(*Circular).DirectionIndex)
}
