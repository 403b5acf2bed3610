// Package world provides the spatial model for the robot puzzle game.
//
// The world package implements:
//   - Grid bounds, fog-of-war reveal and visit tracking
//   - Static blockers and togglable doors
//   - Enemies and their movement strategies
//   - The pattern registry that binds "file:" patterns to built-in strategies
//
// Core Types:
//
// Grid owns every tile set and the ordered enemy list. Enemy carries a
// resolved Strategy, a closed set of variants (Bounce, RandomWalk, Diagonal,
// Circular, Spiral, Chase, Guard) that each keep their own scratch state.
//
// Usage:
//
//	grid := world.NewGrid(16, 10)
//	grid.AddBlocker(world.Pos{X: 4, Y: 4})
//	grid.RevealAdjacent(world.Pos{X: 1, Y: 1})
//
//	rng := rand.New(rand.NewPCG(1, 1))
//	grid.MoveEnemies(world.Env{Player: robotPos, Rand: rng}, stunned)
//
// Enemy Movement:
//
// Enemies move one at a time in list order. A strategy never returns a tile
// that is out of bounds, blocked, or held by another enemy, so two enemies
// never share a tile after a tick. The list order is also the enemy identity
// used by stun tracking and custom pattern lookup, so it is never reshuffled
// while a level is live.
package world
