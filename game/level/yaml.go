package level

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/robogrid/game/world"
)

// File mirrors the YAML schema of a level file
type File struct {
	Name                string      `yaml:"name"`
	GridSize            string      `yaml:"grid_size"`
	Obstacles           *int        `yaml:"obstacles,omitempty"`
	Blockers            [][2]int    `yaml:"blockers,omitempty"`
	Doors               [][2]int    `yaml:"doors,omitempty"`
	Enemies             []EnemyFile `yaml:"enemies,omitempty"`
	Items               []ItemFile  `yaml:"items,omitempty"`
	IncomePerSquare     *int        `yaml:"income_per_square,omitempty"`
	StartPosition       *[2]int     `yaml:"start_position,omitempty"`
	MaxTurns            *int        `yaml:"max_turns,omitempty"`
	FogOfWar            *bool       `yaml:"fog_of_war,omitempty"`
	Hazards             string      `yaml:"hazards,omitempty"`
	Message             string      `yaml:"message,omitempty"`
	HintMessage         string      `yaml:"hint_message,omitempty"`
	StartingCode        string      `yaml:"starting_code,omitempty"`
	CompletionCondition string      `yaml:"completion_condition,omitempty"`
	CompletionFlag      string      `yaml:"completion_flag,omitempty"`
	AchievementMessage  string      `yaml:"achievement_message,omitempty"`
	NextLevelHint       string      `yaml:"next_level_hint,omitempty"`
	CompletionMessage   string      `yaml:"completion_message,omitempty"`
}

// EnemyFile is one enemy entry in a level file
type EnemyFile struct {
	StartLocation   [2]int `yaml:"start_location"`
	MovementPattern string `yaml:"movement_pattern"`
	MovingPositive  *bool  `yaml:"moving_positive,omitempty"`
}

// ItemFile is one item entry in a level file
type ItemFile struct {
	Name          string            `yaml:"name"`
	ItemFile      string            `yaml:"item_file,omitempty"`
	SpawnRandomly *bool             `yaml:"spawn_randomly,omitempty"`
	Location      *[2]int           `yaml:"location,omitempty"`
	Capabilities  map[string]string `yaml:"capabilities,omitempty"`
}

// ParseFile decodes YAML level content
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse level: %w", err)
	}
	return &f, nil
}

// ReadFile loads and decodes a YAML level file from disk
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}
	return ParseFile(data)
}

// ParseGridSize parses the "WxH" notation
func ParseGridSize(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("grid size must be in format 'WxH' (e.g., '16x10'), got %q", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid grid width %q: %w", parts[0], err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid grid height %q: %w", parts[1], err)
	}
	return w, h, nil
}

// ToSpec converts a level file into a Spec. Random obstacles and randomly
// spawned items draw from rng, so the same rng state yields the same Spec.
func (f *File) ToSpec(id string, rng *rand.Rand) (*Spec, error) {
	width, height, err := ParseGridSize(f.GridSize)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got %dx%d", width, height)
	}

	start := world.Pos{X: 1, Y: 1}
	if f.StartPosition != nil {
		start = toPos(*f.StartPosition)
	}

	spec := &Spec{
		ID:                  id,
		Name:                f.Name,
		Width:               width,
		Height:              height,
		Start:               start,
		FogOfWar:            true,
		IncomePerSquare:     1,
		CompletionFlag:      strings.TrimSpace(f.CompletionFlag),
		Hazards:             Hazards(strings.ToLower(strings.TrimSpace(f.Hazards))),
		Message:             f.Message,
		HintMessage:         f.HintMessage,
		StartingCode:        f.StartingCode,
		CompletionCondition: f.CompletionCondition,
		AchievementMessage:  f.AchievementMessage,
		NextLevelHint:       f.NextLevelHint,
		CompletionMessage:   f.CompletionMessage,
	}
	if spec.Hazards == "" {
		spec.Hazards = HazardsAuto
	}
	if f.FogOfWar != nil {
		spec.FogOfWar = *f.FogOfWar
	}
	if f.MaxTurns != nil {
		spec.MaxTurns = *f.MaxTurns
	}
	if f.IncomePerSquare != nil {
		spec.IncomePerSquare = *f.IncomePerSquare
	}

	used := map[world.Pos]bool{}
	for _, b := range f.Blockers {
		p := toPos(b)
		if !used[p] {
			used[p] = true
			spec.Blockers = append(spec.Blockers, p)
		}
	}
	if f.Obstacles != nil {
		count := min(*f.Obstacles, width*height-1-len(spec.Blockers))
		for i := 0; i < count; i++ {
			for {
				p := world.Pos{X: rng.IntN(width), Y: rng.IntN(height)}
				if p != start && !used[p] {
					used[p] = true
					spec.Blockers = append(spec.Blockers, p)
					break
				}
			}
		}
	}

	for _, d := range f.Doors {
		spec.Doors = append(spec.Doors, toPos(d))
	}

	for _, e := range f.Enemies {
		pattern := strings.TrimSpace(e.MovementPattern)
		axis := world.Horizontal
		if strings.EqualFold(pattern, "vertical") {
			axis = world.Vertical
		}
		positive := true
		if e.MovingPositive != nil {
			positive = *e.MovingPositive
		}
		spec.Enemies = append(spec.Enemies, EnemySpec{
			Pos:            toPos(e.StartLocation),
			Axis:           axis,
			MovingPositive: positive,
			Pattern:        pattern,
		})
	}

	for _, it := range f.Items {
		item := ItemSpec{
			Name:         it.Name,
			File:         it.ItemFile,
			Capabilities: it.Capabilities,
		}
		switch {
		case it.SpawnRandomly != nil && *it.SpawnRandomly:
			if width*height > 1 {
				for {
					p := world.Pos{X: rng.IntN(width), Y: rng.IntN(height)}
					if p != start {
						item.Pos = &p
						break
					}
				}
			}
		case it.Location != nil:
			p := toPos(*it.Location)
			item.Pos = &p
		}
		spec.Items = append(spec.Items, item)
	}

	return spec, nil
}

func toPos(xy [2]int) world.Pos {
	return world.Pos{X: xy[0], Y: xy[1]}
}
