package engine

import (
	"fmt"
	"maps"
	"slices"

	"github.com/wricardo/robogrid/game/world"
)

// laserDirection fires from the robot until the beam hits an enemy, a
// blocked tile or the edge of the grid.
func (g *Game) laserDirection(dir world.Pos) Outcome {
	p := g.robot.Pos
	for {
		p = p.Add(dir)
		if !g.grid.InBounds(p) {
			return Outcome{Message: MsgLaserEdge, turn: true}
		}
		if out, hit := g.laserHit(p); hit {
			return out
		}
	}
}

// laserTile fires at a single tile
func (g *Game) laserTile(target world.Pos) Outcome {
	if !g.grid.InBounds(target) {
		return Outcome{Message: MsgLaserOutside, turn: true}
	}
	if out, hit := g.laserHit(target); hit {
		return out
	}
	return Outcome{Message: MsgLaserMiss, turn: true}
}

func (g *Game) laserHit(p world.Pos) (Outcome, bool) {
	if idx := g.grid.EnemyAt(p); idx >= 0 {
		g.stunned[idx] = StunTurns
		return Outcome{Message: fmt.Sprintf(fmtLaserEnemy, p.X, p.Y, StunTurns), turn: true}, true
	}
	if g.grid.IsBlocked(p) {
		g.removed[p] = RemovalTurns
		g.grid.SetRemoved(p, true)
		return Outcome{Message: fmt.Sprintf(fmtLaserObstacle, p.X, p.Y, RemovalTurns), turn: true}, true
	}
	return Outcome{}, false
}

// UpdateEffects counts down stuns and obstacle removals by one command and
// restores anything that has expired.
func (g *Game) UpdateEffects() {
	for idx, turns := range g.stunned {
		if turns <= 1 {
			delete(g.stunned, idx)
			continue
		}
		g.stunned[idx] = turns - 1
	}
	for p, turns := range g.removed {
		if turns <= 1 {
			delete(g.removed, p)
			g.grid.SetRemoved(p, false)
			continue
		}
		g.removed[p] = turns - 1
	}
}

func (g *Game) effectViews() ([]EffectView, []EffectView) {
	var stunned, removed []EffectView
	for _, idx := range slices.Sorted(maps.Keys(g.stunned)) {
		ev := EffectView{Enemy: idx, Turns: g.stunned[idx]}
		if idx < len(g.grid.Enemies) {
			ev.Pos = g.grid.Enemies[idx].Pos
		}
		stunned = append(stunned, ev)
	}
	for p, turns := range g.removed {
		removed = append(removed, EffectView{Pos: p, Turns: turns})
	}
	slices.SortFunc(removed, func(a, b EffectView) int {
		if a.Pos.Y != b.Pos.Y {
			return a.Pos.Y - b.Pos.Y
		}
		return a.Pos.X - b.Pos.X
	})
	return stunned, removed
}
