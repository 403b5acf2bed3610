package engine

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/robogrid/game/world"
)

// ScannerItem is the inventory name that unlocks scan()
const ScannerItem = "scanner"

// Upgrades are the robot's permanent improvements
type Upgrades struct {
	GrabberLevel      int  `json:"grabber_level"`
	ScannerLevel      int  `json:"scanner_level"`
	AttackRange       int  `json:"attack_range"`
	TimeSlowAvailable bool `json:"time_slow_available"`
}

// Robot is the player-controlled entity. Its upgrades and inventory survive
// level changes; its position does not.
type Robot struct {
	Pos       world.Pos
	Upgrades  Upgrades
	AutoGrab  bool
	inventory mapset.Set[string]
}

// NewRobot creates a robot with a level 1 grabber and empty inventory
func NewRobot(pos world.Pos) *Robot {
	return &Robot{
		Pos:       pos,
		Upgrades:  Upgrades{GrabberLevel: 1},
		inventory: mapset.New[string](),
	}
}

// GrabberRange is the Manhattan reach of grab()
func (r *Robot) GrabberRange() int {
	return max(r.Upgrades.GrabberLevel, 0)
}

// ScannerRange is how far scan() reveals
func (r *Robot) ScannerRange() int {
	return BaseScanRange + max(r.Upgrades.ScannerLevel-1, 0)
}

// SetScannerLevel raises the scanner level and records the scanner in the
// inventory.
func (r *Robot) SetScannerLevel(level int) {
	r.Upgrades.ScannerLevel = max(r.Upgrades.ScannerLevel, level)
	r.inventory.Put(ScannerItem)
}

// AddItem records a collected item name
func (r *Robot) AddItem(name string) {
	r.inventory.Put(name)
}

// HasItem reports whether name is in the inventory
func (r *Robot) HasItem(name string) bool {
	return r.inventory.Has(name)
}

// InventorySize returns the number of distinct collected item names
func (r *Robot) InventorySize() int {
	return r.inventory.Size()
}

// Inventory returns the collected item names in sorted order
func (r *Robot) Inventory() []string {
	names := make([]string, 0, r.inventory.Size())
	r.inventory.Each(func(name string) {
		names = append(names, name)
	})
	sort.Strings(names)
	return names
}

// InGrabRange reports whether p is within grabber reach
func (r *Robot) InGrabRange(p world.Pos) bool {
	return world.ManhattanDistance(r.Pos, p) <= r.GrabberRange()
}
