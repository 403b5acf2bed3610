package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/robogrid/game/level"
	"github.com/wricardo/robogrid/game/world"
	"github.com/wricardo/robogrid/logging"
)

// ErrNoLevels is returned when a game is created without levels
var ErrNoLevels = errors.New("no levels to play")

// pcgStream is the fixed second PCG word; the seed supplies the first.
const pcgStream = 0x9E3779B97F4A7C15

// Game is one player's run through a level pack. It is not safe for
// concurrent use; callers serialise access.
type Game struct {
	levels    []*level.Spec
	resources world.ResourceLoader
	registry  *world.PatternRegistry
	seed      uint64
	rng       *rand.Rand

	levelIndex int
	grid       *world.Grid
	robot      *Robot
	items      *ItemManager
	rule       CompletionRule

	credits           int
	levelStartCredits int
	turns             int
	discovered        int
	finished          bool
	outputs           []string
	errors            []string
	panicked          bool
	lastResult        string
	timeSlowMillis    int

	stunned      map[int]int
	removed      map[world.Pos]int
	enemyPaused  bool
	levelLoads   int
	collisions   int
	completedIDs []string
}

// NewGame starts a game on the first level. All randomness derives from
// seed.
func NewGame(levels []*level.Spec, seed uint64, resources world.ResourceLoader) (*Game, error) {
	if len(levels) == 0 {
		return nil, ErrNoLevels
	}
	g := &Game{
		levels:    levels,
		resources: resources,
		registry:  world.NewPatternRegistry(resources),
		seed:      seed,
		rng:       rand.New(rand.NewPCG(seed, pcgStream)),
		robot:     NewRobot(levels[0].Start),
	}
	if err := g.LoadLevel(0); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadLevel replaces the current level with a freshly built copy of level
// idx. Credits, upgrades and inventory carry over.
func (g *Game) LoadLevel(idx int) error {
	if idx < 0 || idx >= len(g.levels) {
		return fmt.Errorf("%w: index %d", level.ErrLevelNotFound, idx)
	}
	spec := g.levels[idx]

	g.registry.Reset()
	g.levelIndex = idx
	g.grid = BuildGrid(spec, g.rng, g.registry)
	g.robot.Pos = spec.Start
	g.grid.Visit(spec.Start)
	if spec.FogOfWar {
		g.grid.RevealAdjacent(spec.Start)
	} else {
		g.revealAll()
	}
	g.items = loadItems(spec, g.resources, g.robot)

	rule, err := ParseCompletionRule(spec.CompletionFlag)
	if err != nil {
		logging.Log.WithFields(logrus.Fields{
			"level": spec.ID,
			"flag":  spec.CompletionFlag,
		}).WithError(err).Warn("level can never complete")
	}
	g.rule = rule

	g.levelStartCredits = g.credits
	g.turns = 0
	g.discovered = 0
	g.finished = false
	g.outputs = nil
	g.errors = nil
	g.panicked = false
	g.stunned = make(map[int]int)
	g.removed = make(map[world.Pos]int)
	g.enemyPaused = false
	g.levelLoads++
	return nil
}

// Reset reloads the current level as if it had just been entered
func (g *Game) Reset() {
	g.credits = g.levelStartCredits
	// Index is always valid here.
	_ = g.LoadLevel(g.levelIndex)
}

func (g *Game) revealAll() {
	for y := 0; y < g.grid.Height; y++ {
		for x := 0; x < g.grid.Width; x++ {
			g.grid.Reveal(world.Pos{X: x, Y: y})
		}
	}
}

// Seed returns the seed the game was created with
func (g *Game) Seed() uint64 {
	return g.seed
}

// LevelIndex returns the 0-based index of the current level
func (g *Game) LevelIndex() int {
	return g.levelIndex
}

// LevelCount returns the number of levels in the pack
func (g *Game) LevelCount() int {
	return len(g.levels)
}

// Level returns the spec of the current level
func (g *Game) Level() *level.Spec {
	return g.levels[g.levelIndex]
}

// Grid returns the current level's grid
func (g *Game) Grid() *world.Grid {
	return g.grid
}

// Robot returns the robot
func (g *Game) Robot() *Robot {
	return g.robot
}

// Items returns the current level's items
func (g *Game) Items() *ItemManager {
	return g.items
}

// Credits returns the credit balance
func (g *Game) Credits() int {
	return g.credits
}

// Turns returns the number of moves made on the current level
func (g *Game) Turns() int {
	return g.turns
}

// Finished reports whether the current level is complete
func (g *Game) Finished() bool {
	return g.finished
}

// Collisions returns how many enemy collisions reset a level
func (g *Game) Collisions() int {
	return g.collisions
}

// CompletedLevels returns the IDs of levels finished so far, in order
func (g *Game) CompletedLevels() []string {
	return append([]string(nil), g.completedIDs...)
}

// EnemiesActive reports whether enemies tick on the current level
func (g *Game) EnemiesActive() bool {
	return g.levelIndex >= EnemyLevelIndex
}

// Snapshot returns a copy of the observable game state
func (g *Game) Snapshot() *Snapshot {
	spec := g.Level()
	snap := &Snapshot{
		Level: LevelView{
			Index:          g.levelIndex,
			Number:         g.levelIndex + 1,
			Total:          len(g.levels),
			ID:             spec.ID,
			Name:           spec.Name,
			Message:        spec.Message,
			Hint:           spec.HintMessage,
			StartingCode:   spec.StartingCode,
			CompletionFlag: spec.CompletionFlag,
			CompletionHint: g.rule.Hint(),
			Instructions:   spec.CompletionMessage,
		},
		Grid: g.grid.Snapshot(),
		Robot: RobotView{
			Pos:          g.robot.Pos,
			Upgrades:     g.robot.Upgrades,
			Inventory:    g.robot.Inventory(),
			AutoGrab:     g.robot.AutoGrab,
			GrabberRange: g.robot.GrabberRange(),
			ScannerRange: g.robot.ScannerRange(),
		},
		Items:          make([]ItemView, 0, g.items.Total()),
		Credits:        g.credits,
		Turns:          g.turns,
		MaxTurns:       spec.MaxTurns,
		Discovered:     g.discovered,
		Finished:       g.finished,
		Outputs:        append([]string{}, g.outputs...),
		Errors:         append([]string{}, g.errors...),
		Panicked:       g.panicked,
		EnemiesActive:  g.EnemiesActive(),
		LastResult:     g.lastResult,
		TimeSlowMillis: g.timeSlowMillis,
	}
	for _, it := range g.items.All() {
		snap.Items = append(snap.Items, ItemView{Name: it.Name, Pos: it.Pos, Collected: it.Collected})
	}
	for _, k := range g.AvailableFunctions() {
		snap.Available = append(snap.Available, k.String())
	}
	if g.finished {
		snap.Level.NextLevelHint = spec.NextLevelHint
	}
	snap.Stunned, snap.Removed = g.effectViews()
	return snap
}
