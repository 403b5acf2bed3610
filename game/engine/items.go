package engine

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/robogrid/game/level"
	"github.com/wricardo/robogrid/game/world"
	"github.com/wricardo/robogrid/logging"
)

const capabilityPrefix = "// CAPABILITY:"

// Capability keys understood in item files and inline YAML
const (
	CapScannerRange     = "scanner_range"
	CapGrabberBoost     = "grabber_boost"
	CapCreditsValue     = "credits_value"
	CapTimeSlowDuration = "time_slow_duration"
	CapAttackRange      = "attack_range"
)

// Capabilities describe what an item does when collected
type Capabilities struct {
	ScannerRange     int      `json:"scanner_range,omitempty"`
	GrabberBoost     int      `json:"grabber_boost,omitempty"`
	CreditsValue     int      `json:"credits_value"`
	TimeSlowDuration int      `json:"time_slow_duration,omitempty"`
	AttackRange      int      `json:"attack_range,omitempty"`
	SpecialFunctions []string `json:"special_functions,omitempty"`
}

// Item is a collectible placed on the grid
type Item struct {
	Name         string
	Pos          world.Pos
	Capabilities Capabilities
	Collected    bool
}

// ParseCapabilities reads "// CAPABILITY: key = value" lines and
// "fn name" declarations from an item file. Unknown keys are ignored.
func ParseCapabilities(content string) Capabilities {
	caps := Capabilities{CreditsValue: 1}
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if rest, ok := strings.CutPrefix(line, capabilityPrefix); ok {
			key, value, found := strings.Cut(rest, "=")
			if found {
				caps.set(strings.TrimSpace(key), strings.TrimSpace(value))
			}
			continue
		}
		if name, ok := functionName(line); ok {
			caps.SpecialFunctions = append(caps.SpecialFunctions, name)
		}
	}
	return caps
}

// Apply overrides fields from a key/value map
func (c *Capabilities) Apply(values map[string]string) {
	for k, v := range values {
		c.set(k, v)
	}
}

func (c *Capabilities) set(key, value string) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return
	}
	switch key {
	case CapScannerRange:
		c.ScannerRange = n
	case CapGrabberBoost:
		c.GrabberBoost = n
	case CapCreditsValue:
		c.CreditsValue = n
	case CapTimeSlowDuration:
		c.TimeSlowDuration = n
	case CapAttackRange:
		c.AttackRange = n
	}
}

func functionName(line string) (string, bool) {
	line = strings.TrimPrefix(line, "pub ")
	rest, ok := strings.CutPrefix(line, "fn ")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if i := strings.IndexAny(rest, "(< {"); i >= 0 {
		rest = rest[:i]
	}
	return rest, rest != ""
}

// ItemManager holds the items of the current level
type ItemManager struct {
	items []*Item
}

// NewItemManager returns an empty manager
func NewItemManager() *ItemManager {
	return &ItemManager{}
}

// Add places an item
func (m *ItemManager) Add(item *Item) {
	m.items = append(m.items, item)
}

// All returns every item, collected or not
func (m *ItemManager) All() []*Item {
	return m.items
}

// Active returns the uncollected items
func (m *ItemManager) Active() []*Item {
	var active []*Item
	for _, it := range m.items {
		if !it.Collected {
			active = append(active, it)
		}
	}
	return active
}

// ActiveCount returns the number of uncollected items
func (m *ItemManager) ActiveCount() int {
	n := 0
	for _, it := range m.items {
		if !it.Collected {
			n++
		}
	}
	return n
}

// Total returns the number of items placed at load
func (m *ItemManager) Total() int {
	return len(m.items)
}

// loadItems builds the level's items. The scanner is left out once the robot
// already owns one.
func loadItems(spec *level.Spec, loader world.ResourceLoader, robot *Robot) *ItemManager {
	m := NewItemManager()
	for _, is := range spec.Items {
		if is.Pos == nil {
			continue
		}
		if is.Name == ScannerItem && robot.HasItem(ScannerItem) {
			continue
		}
		caps := Capabilities{CreditsValue: 1}
		if is.File != "" && loader != nil {
			content, err := loader.ReadResource(is.File)
			if err != nil {
				logging.Log.WithFields(logrus.Fields{
					"item": is.Name,
					"file": is.File,
				}).WithError(err).Warn("item file not loaded, using defaults")
			} else {
				caps = ParseCapabilities(content)
			}
		}
		caps.Apply(is.Capabilities)
		if is.Name == ScannerItem && caps.ScannerRange == 0 {
			caps.ScannerRange = 1
		}
		m.Add(&Item{Name: is.Name, Pos: *is.Pos, Capabilities: caps})
	}
	return m
}
