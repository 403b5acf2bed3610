package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/robogrid/game/engine"
	"github.com/wricardo/robogrid/game/world"
)

// Explorer plays a level one move at a time, always heading for the nearest
// unknown tile, and records the moves as a script.
type Explorer struct {
	game     *engine.Game
	maxMoves int
	moves    []string
}

// ExploreResult summarises an exploration run
type ExploreResult struct {
	Script    string
	Moves     int
	Completed bool
	Collided  bool
	// Stuck is set when no unknown tile is reachable over known ground
	Stuck bool
}

// NewExplorer creates an explorer for the game's current level
func NewExplorer(game *engine.Game, maxMoves int) *Explorer {
	return &Explorer{game: game, maxMoves: maxMoves}
}

// Run explores until the level completes, the robot is caught, nothing is
// left to reach or the move budget runs out.
func (e *Explorer) Run() ExploreResult {
	var result ExploreResult
	for len(e.moves) < e.maxMoves {
		if e.game.Finished() {
			result.Completed = true
			break
		}
		dir, ok := e.nextMove()
		if !ok {
			result.Stuck = true
			break
		}

		line := fmt.Sprintf("move(%s);", world.DirectionName(dir))
		e.moves = append(e.moves, line)
		run := e.game.Run(line)
		if run.Completed {
			result.Completed = true
			break
		}
		if run.Collision {
			result.Collided = true
			break
		}
	}

	result.Moves = len(e.moves)
	result.Script = strings.Join(e.moves, "\n")
	if result.Script != "" {
		result.Script += "\n"
	}
	return result
}

// nextMove returns the first step of a shortest path from the robot to the
// nearest unknown tile. Paths run over known, open, enemy-free tiles; the
// final step may enter the unknown tile itself.
func (e *Explorer) nextMove() (world.Pos, bool) {
	grid := e.game.Grid()
	start := e.game.Robot().Pos

	type node struct {
		pos   world.Pos
		first world.Pos
	}

	visited := map[world.Pos]bool{start: true}
	queue := []node{}
	for _, d := range world.Cardinals {
		queue = append(queue, node{pos: start.Add(d), first: d})
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		p := current.pos
		if visited[p] || !grid.InBounds(p) || grid.EnemyAt(p) >= 0 {
			continue
		}
		visited[p] = true

		if !grid.IsKnown(p) {
			return current.first, true
		}
		if grid.IsBlocked(p) {
			continue
		}
		for _, d := range world.Cardinals {
			next := p.Add(d)
			if !visited[next] {
				queue = append(queue, node{pos: next, first: current.first})
			}
		}
	}
	return world.Pos{}, false
}

func printExplore(out io.Writer, game *engine.Game, result ExploreResult) {
	fmt.Fprint(out, result.Script)
	fmt.Fprintln(out)

	renderBoard(out, game.Snapshot())
	fmt.Fprintln(out)

	switch {
	case result.Completed:
		fmt.Fprintln(out, ColorGood.Sprintf("Level complete after %d moves", result.Moves))
	case result.Collided:
		fmt.Fprintln(out, ColorDenied.Sprintf("Caught by an enemy after %d moves", result.Moves))
	case result.Stuck:
		fmt.Fprintf(out, "Nothing left to reach after %d moves; goal: %s\n", result.Moves, game.Snapshot().Level.CompletionHint)
	default:
		fmt.Fprintf(out, "Move budget of %d spent\n", result.Moves)
	}
}
