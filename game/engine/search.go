package engine

import (
	"fmt"

	"github.com/wricardo/robogrid/game/world"
)

// searchAll homes the robot to the top-left corner and sweeps the board
// row by row. Enemies do not move during the sweep, but stepping onto one
// still collides.
func (g *Game) searchAll() Outcome {
	if g.finished {
		return Outcome{Message: MsgLevelComplete}
	}
	g.enemyPaused = true
	defer func() { g.enemyPaused = false }()

	before := g.discovered
	moves := 0
	for _, dir := range []world.Pos{world.Up, world.Left} {
		for moves < HomeMoveCap && g.grid.InBounds(g.robot.Pos.Add(dir)) {
			out := g.advance(dir)
			moves++
			if out.Collision {
				return out
			}
			if !out.Moved {
				return Outcome{Message: MsgSearchHomeBlock, Halt: true}
			}
		}
	}

	found := func() int { return g.discovered - before }
	dir := world.Right
	for moves = 0; moves < LawnmowerCap; moves++ {
		step := dir
		if next := g.robot.Pos.Add(dir); !g.grid.InBounds(next) || g.grid.IsBlocked(next) {
			if !g.grid.InBounds(next) && !g.grid.InBounds(g.robot.Pos.Add(world.Down)) {
				return Outcome{Message: fmt.Sprintf(fmtSearchComplete, found())}
			}
			// Blocked or at the edge: drop a row and turn around.
			step = world.Down
			dir = world.Pos{X: -dir.X}
		}
		out := g.advance(step)
		if out.Collision {
			return out
		}
		if !out.Moved {
			return Outcome{Message: fmt.Sprintf(fmtSearchBlocked, found()), Halt: true}
		}
	}
	return Outcome{Message: fmt.Sprintf(fmtSearchIncomplete, found())}
}
