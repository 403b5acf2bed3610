package engine

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/robogrid/game/world"
)

// Board glyphs used by Rows
const (
	GlyphRobot        = 'R'
	GlyphEnemy        = 'E'
	GlyphStunnedEnemy = 'e'
	GlyphBlocker      = '#'
	GlyphRemoved      = 'x'
	GlyphDoor         = 'D'
	GlyphOpenDoor     = '/'
	GlyphItem         = '*'
	GlyphUnknown      = '?'
	GlyphKnown        = '.'
)

// Rows renders the board as one string per row, top row first. Hidden
// tiles show as '?' unless fog of war is off.
func (s *Snapshot) Rows() []string {
	g := s.Grid
	known := toSet(g.Known)
	blockers := toSet(g.Blockers)
	doors := toSet(g.Doors)
	open := toSet(g.Open)
	removed := toSet(g.Removed)
	items := mapset.New[world.Pos]()
	for _, it := range s.Items {
		if !it.Collected {
			items.Put(it.Pos)
		}
	}
	enemies := make(map[world.Pos]rune, len(g.Enemies))
	stunned := mapset.New[int]()
	for _, ev := range s.Stunned {
		stunned.Put(ev.Enemy)
	}
	for _, e := range g.Enemies {
		if stunned.Has(e.Index) {
			enemies[e.Pos] = GlyphStunnedEnemy
		} else {
			enemies[e.Pos] = GlyphEnemy
		}
	}

	rows := make([]string, 0, g.Height)
	for y := 0; y < g.Height; y++ {
		row := make([]rune, 0, g.Width)
		for x := 0; x < g.Width; x++ {
			p := world.Pos{X: x, Y: y}
			visible := !g.FogOfWar || known.Has(p)
			var c rune
			switch {
			case p == s.Robot.Pos:
				c = GlyphRobot
			case enemies[p] != 0:
				c = enemies[p]
			case !visible:
				c = GlyphUnknown
			case removed.Has(p):
				c = GlyphRemoved
			case blockers.Has(p):
				c = GlyphBlocker
			case open.Has(p):
				c = GlyphOpenDoor
			case doors.Has(p):
				c = GlyphDoor
			case items.Has(p):
				c = GlyphItem
			default:
				c = GlyphKnown
			}
			row = append(row, c)
		}
		rows = append(rows, string(row))
	}
	return rows
}

func toSet(ps []world.Pos) mapset.Set[world.Pos] {
	s := mapset.New[world.Pos]()
	for _, p := range ps {
		s.Put(p)
	}
	return s
}
