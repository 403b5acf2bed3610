package level

import (
	"fmt"

	"github.com/wricardo/robogrid/game/world"
)

// Validation limits
const (
	MinGridSize = 2
	MaxGridSize = 64
	MaxEnemies  = 32
	MaxItems    = 64
)

// ValidateSpec checks a level for structural correctness
func ValidateSpec(spec *Spec) error {
	if spec.Name == "" {
		return fmt.Errorf("level validation: name is required")
	}
	if spec.Width < MinGridSize || spec.Width > MaxGridSize {
		return fmt.Errorf("level validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, spec.Width)
	}
	if spec.Height < MinGridSize || spec.Height > MaxGridSize {
		return fmt.Errorf("level validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, spec.Height)
	}
	if !inBounds(spec, spec.Start) {
		return fmt.Errorf("level validation: start %v is outside the %dx%d grid", spec.Start, spec.Width, spec.Height)
	}

	blocked := make(map[world.Pos]bool, len(spec.Blockers))
	for _, b := range spec.Blockers {
		if !inBounds(spec, b) {
			return fmt.Errorf("level validation: blocker %v is outside the grid", b)
		}
		blocked[b] = true
	}
	if blocked[spec.Start] {
		return fmt.Errorf("level validation: start %v is a blocker", spec.Start)
	}

	for _, d := range spec.Doors {
		if !inBounds(spec, d) {
			return fmt.Errorf("level validation: door %v is outside the grid", d)
		}
	}

	if len(spec.Enemies) > MaxEnemies {
		return fmt.Errorf("level validation: at most %d enemies allowed, got %d", MaxEnemies, len(spec.Enemies))
	}
	for i, e := range spec.Enemies {
		if !inBounds(spec, e.Pos) {
			return fmt.Errorf("level validation: enemy %d at %v is outside the grid", i+1, e.Pos)
		}
		if blocked[e.Pos] {
			return fmt.Errorf("level validation: enemy %d starts on a blocker at %v", i+1, e.Pos)
		}
	}

	if len(spec.Items) > MaxItems {
		return fmt.Errorf("level validation: at most %d items allowed, got %d", MaxItems, len(spec.Items))
	}
	for _, item := range spec.Items {
		if item.Name == "" {
			return fmt.Errorf("level validation: every item needs a name")
		}
		if item.Pos != nil && !inBounds(spec, *item.Pos) {
			return fmt.Errorf("level validation: item %q at %v is outside the grid", item.Name, *item.Pos)
		}
	}

	if spec.MaxTurns < 0 {
		return fmt.Errorf("level validation: max_turns cannot be negative")
	}
	if spec.IncomePerSquare < 0 {
		return fmt.Errorf("level validation: income_per_square cannot be negative")
	}
	switch spec.Hazards {
	case "", HazardsAuto, HazardsNone, HazardsObstacles, HazardsObstaclesEnemies:
	default:
		return fmt.Errorf("level validation: unknown hazards mode %q", spec.Hazards)
	}

	return nil
}

// Reachable returns the tiles reachable from the start over non-blocker
// tiles. Doors count as passable because the robot can open them.
func Reachable(spec *Spec) map[world.Pos]bool {
	blocked := make(map[world.Pos]bool, len(spec.Blockers))
	for _, b := range spec.Blockers {
		blocked[b] = true
	}

	seen := map[world.Pos]bool{spec.Start: true}
	queue := []world.Pos{spec.Start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, d := range world.Cardinals {
			next := current.Add(d)
			if !inBounds(spec, next) || blocked[next] || seen[next] {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return seen
}

func inBounds(spec *Spec, p world.Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < spec.Width && p.Y < spec.Height
}
