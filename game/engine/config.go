package engine

import (
	"math/rand/v2"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/robogrid/game/level"
	"github.com/wricardo/robogrid/game/world"
)

// Procedural hazard tuning
const (
	obstacleDivisor      = 8
	mixedObstacleDivisor = 12
	generatedEnemies     = 3
	enemyEdgeMargin      = 2
	enemyStartClearance  = 3
	placementAttempts    = 100
)

// BuildGrid derives a fresh Grid from spec. Enemy strategies are resolved
// through registry, and procedural hazards draw from rng, so the same seed
// produces the same board.
func BuildGrid(spec *level.Spec, rng *rand.Rand, registry *world.PatternRegistry) *world.Grid {
	grid := world.NewGrid(spec.Width, spec.Height)
	grid.FogOfWar = spec.FogOfWar
	grid.IncomePerSquare = spec.IncomePerSquare

	used := mapset.New[world.Pos]()
	used.Put(spec.Start)
	for _, b := range spec.Blockers {
		grid.AddBlocker(b)
		used.Put(b)
	}
	for _, d := range spec.Doors {
		grid.AddDoor(d)
		used.Put(d)
	}
	for _, it := range spec.Items {
		if it.Pos != nil {
			used.Put(*it.Pos)
		}
	}
	for i, es := range spec.Enemies {
		strategy, axis := registry.Resolve(es.Pattern, i)
		a := es.Axis
		if axis != nil {
			a = *axis
		}
		grid.Enemies = append(grid.Enemies, world.NewEnemy(es.Pos, a, es.MovingPositive, es.Pattern, strategy))
		used.Put(es.Pos)
	}

	area := spec.Width * spec.Height
	switch spec.HazardMode() {
	case level.HazardsObstacles:
		scatterObstacles(grid, rng, used, area/obstacleDivisor)
	case level.HazardsObstaclesEnemies:
		scatterObstacles(grid, rng, used, area/mixedObstacleDivisor)
		if len(grid.Enemies) == 0 {
			spawnEnemies(grid, rng, used, spec.Start, generatedEnemies)
		}
	}
	return grid
}

func scatterObstacles(grid *world.Grid, rng *rand.Rand, used mapset.Set[world.Pos], n int) {
	for placed := 0; placed < n; placed++ {
		for attempt := 0; attempt < placementAttempts; attempt++ {
			p := world.Pos{X: rng.IntN(grid.Width), Y: rng.IntN(grid.Height)}
			if used.Has(p) {
				continue
			}
			grid.AddBlocker(p)
			used.Put(p)
			break
		}
	}
}

func spawnEnemies(grid *world.Grid, rng *rand.Rand, used mapset.Set[world.Pos], start world.Pos, n int) {
	spanX := grid.Width - 2*enemyEdgeMargin
	spanY := grid.Height - 2*enemyEdgeMargin
	if spanX <= 0 || spanY <= 0 {
		return
	}
	for i := 0; i < n; i++ {
		for attempt := 0; attempt < placementAttempts; attempt++ {
			p := world.Pos{
				X: enemyEdgeMargin + rng.IntN(spanX),
				Y: enemyEdgeMargin + rng.IntN(spanY),
			}
			if used.Has(p) || world.ManhattanDistance(p, start) <= enemyStartClearance {
				continue
			}
			axis := world.Horizontal
			if rng.IntN(2) == 1 {
				axis = world.Vertical
			}
			grid.Enemies = append(grid.Enemies, world.NewEnemy(p, axis, rng.IntN(2) == 0, "", nil))
			used.Put(p)
			break
		}
	}
}
