package level

import (
	"strings"

	"github.com/wricardo/robogrid/game/world"
)

// Hazards selects procedural hazard generation for a level
type Hazards string

const (
	// HazardsAuto keeps the legacy trigger: a name containing "Level 3" or
	// "Level 4" with no explicit blockers.
	HazardsAuto             Hazards = "auto"
	HazardsNone             Hazards = "none"
	HazardsObstacles        Hazards = "obstacles"
	HazardsObstaclesEnemies Hazards = "obstacles+enemies"
)

// Name fragments that switch on procedural hazards under HazardsAuto
const (
	obstacleTrigger = "Level 3"
	enemyTrigger    = "Level 4"
)

// EnemySpec describes one configured enemy
type EnemySpec struct {
	Pos            world.Pos  `json:"pos"`
	Axis           world.Axis `json:"axis"`
	MovingPositive bool       `json:"moving_positive"`
	Pattern        string     `json:"pattern,omitempty"`
}

// ItemSpec describes one configured item. Pos is nil for items without a
// fixed location; those are not placed on the grid.
type ItemSpec struct {
	Name         string            `json:"name"`
	Pos          *world.Pos        `json:"pos,omitempty"`
	File         string            `json:"file,omitempty"`
	Capabilities map[string]string `json:"capabilities,omitempty"`
}

// Spec is an immutable level description. A fresh Grid and Robot are derived
// from it every time the level is (re)loaded.
type Spec struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Width           int         `json:"width"`
	Height          int         `json:"height"`
	Start           world.Pos   `json:"start"`
	Blockers        []world.Pos `json:"blockers,omitempty"`
	Doors           []world.Pos `json:"doors,omitempty"`
	Enemies         []EnemySpec `json:"enemies,omitempty"`
	Items           []ItemSpec  `json:"items,omitempty"`
	FogOfWar        bool        `json:"fog_of_war"`
	MaxTurns        int         `json:"max_turns"`
	IncomePerSquare int         `json:"income_per_square"`
	CompletionFlag  string      `json:"completion_flag,omitempty"`
	Hazards         Hazards     `json:"hazards,omitempty"`

	Message             string `json:"message,omitempty"`
	HintMessage         string `json:"hint_message,omitempty"`
	StartingCode        string `json:"starting_code,omitempty"`
	CompletionCondition string `json:"completion_condition,omitempty"`
	AchievementMessage  string `json:"achievement_message,omitempty"`
	NextLevelHint       string `json:"next_level_hint,omitempty"`
	CompletionMessage   string `json:"completion_message,omitempty"`
}

// ScannerAt returns the position of the item named "scanner", if any
func (s *Spec) ScannerAt() *world.Pos {
	for _, item := range s.Items {
		if strings.EqualFold(item.Name, "scanner") && item.Pos != nil {
			p := *item.Pos
			return &p
		}
	}
	return nil
}

// HazardMode resolves HazardsAuto against the level name and blockers.
func (s *Spec) HazardMode() Hazards {
	switch s.Hazards {
	case HazardsNone, HazardsObstacles, HazardsObstaclesEnemies:
		return s.Hazards
	}
	if len(s.Blockers) > 0 {
		return HazardsNone
	}
	switch {
	case strings.Contains(s.Name, obstacleTrigger):
		return HazardsObstacles
	case strings.Contains(s.Name, enemyTrigger):
		return HazardsObstaclesEnemies
	}
	return HazardsNone
}
