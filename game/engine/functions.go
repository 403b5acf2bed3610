package engine

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/robogrid/game/script"
)

// availableSet computes which functions the robot may call right now
func (g *Game) availableSet() mapset.Set[script.Kind] {
	set := mapset.New[script.Kind]()
	for _, k := range script.Kinds() {
		switch k {
		case script.Scan:
			if !g.robot.HasItem(ScannerItem) {
				continue
			}
		case script.LaserDirection, script.LaserTile:
			if g.levelIndex < EnemyLevelIndex && g.robot.Upgrades.AttackRange <= 0 {
				continue
			}
		}
		set.Put(k)
	}
	return set
}

// IsAvailable reports whether k may be called now
func (g *Game) IsAvailable(k script.Kind) bool {
	return g.availableSet().Has(k)
}

// AvailableFunctions lists the callable functions in declaration order
func (g *Game) AvailableFunctions() []script.Kind {
	set := g.availableSet()
	var out []script.Kind
	for _, k := range script.Kinds() {
		if set.Has(k) {
			out = append(out, k)
		}
	}
	return out
}
