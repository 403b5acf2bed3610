package world

import (
	"fmt"
	"strings"
)

// Axis is the built-in patrol direction of an enemy
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseAxis accepts "horizontal" or "vertical" in any case
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown axis %q", s)
}

// step returns the unit vector along the axis in the given sense
func (a Axis) step(positive bool) Pos {
	d := 1
	if !positive {
		d = -1
	}
	if a == Vertical {
		return Pos{X: 0, Y: d}
	}
	return Pos{X: d, Y: 0}
}

// Enemy is a patrolling hazard. It is owned by a Grid.
type Enemy struct {
	Pos            Pos
	Axis           Axis
	MovingPositive bool
	// Pattern is the movement tag as configured, e.g. "chase" or
	// "file:patterns/spiral.pattern".
	Pattern  string
	Strategy Strategy
}

// NewEnemy creates an enemy bound to strategy. A nil strategy means the
// built-in bounce along axis.
func NewEnemy(pos Pos, axis Axis, movingPositive bool, pattern string, strategy Strategy) *Enemy {
	if strategy == nil {
		strategy = &Bounce{}
	}
	return &Enemy{
		Pos:            pos,
		Axis:           axis,
		MovingPositive: movingPositive,
		Pattern:        pattern,
		Strategy:       strategy,
	}
}

// EnemySnapshot is the JSON form of an Enemy
type EnemySnapshot struct {
	Index    int    `json:"index"`
	Pos      Pos    `json:"pos"`
	Axis     string `json:"axis"`
	Pattern  string `json:"pattern,omitempty"`
	Strategy string `json:"strategy"`
	Chasing  bool   `json:"chasing,omitempty"`
}

func (e *Enemy) snapshot(index int) EnemySnapshot {
	snap := EnemySnapshot{
		Index:    index,
		Pos:      e.Pos,
		Axis:     e.Axis.String(),
		Pattern:  e.Pattern,
		Strategy: e.Strategy.Kind().String(),
	}
	if c, ok := e.Strategy.(*Chase); ok {
		snap.Chasing = c.IsChasing
	}
	return snap
}
