package engine

import (
	"github.com/wricardo/robogrid/game/world"
)

// Gameplay constants
const (
	// EnemyLevelIndex is the first 0-based level where enemies tick and
	// collisions reset the level.
	EnemyLevelIndex = 3
	StunTurns       = 5
	RemovalTurns    = 2
	HomeMoveCap     = 100
	LawnmowerCap    = 200
	BaseScanRange   = 2
	MaxScriptLines  = 500
)

// Status messages
const (
	MsgNotAvailable     = "Function not available"
	MsgMoveExecuted     = "Move executed"
	MsgMoveBlocked      = "Move blocked"
	MsgUnknownObject    = "Unknown Object Blocking Function"
	MsgLevelComplete    = "Level already complete."
	MsgHalted           = "EXECUTION HALTED! Rewrite your program to avoid obstacles."
	MsgCollision        = "ENEMY COLLISION! Level reset and randomized."
	MsgDefaultAchieve   = "Level completed!"
	MsgGrabbedBoth      = "Grabbed items and unknown tiles for credits!"
	MsgGrabbedItems     = "Grabbed items!"
	MsgGrabbedTiles     = "Grabbed unknown tiles for credits."
	MsgNothingToGrab    = "Nothing to grab."
	MsgScanComplete     = "Scan complete."
	MsgScanNothing      = "Scan found nothing."
	MsgAutoGrabOn       = "Auto-grab enabled - will grab items when moving onto squares with items"
	MsgAutoGrabOff      = "Auto-grab disabled"
	MsgLaserEdge        = "Laser fired but hit the edge of the grid."
	MsgLaserOutside     = "Target coordinates are outside the grid."
	MsgLaserMiss        = "Laser fired but hit nothing at target location."
	MsgDoorAlreadyOpen  = "Door is already open."
	MsgDoorOpened       = "Door opened successfully!"
	MsgDoorAlreadyShut  = "Door is already closed."
	MsgDoorClosed       = "Door closed successfully!"
	MsgNotOnDoor        = "Robot must be standing on a door to open/close it."
	MsgLastLevel        = "Already at the last level!"
	MsgSearchHomeBlock  = "Search blocked by obstacle - cannot reach starting position"
	MsgPanicked         = "Robot panicked!"
	fmtLaserEnemy       = "Laser hit enemy at (%d, %d)! Enemy stunned for %d turns."
	fmtLaserObstacle    = "Laser hit obstacle at (%d, %d)! Obstacle destroyed for %d turns."
	fmtSkipped          = "Skipped to level %d!"
	fmtJumped           = "Jumped to level %d!"
	fmtInvalidLevel     = "Invalid level number %d. Valid range: 1-%d"
	fmtSearchBlocked    = "Lawnmower search blocked by obstacle! Discovered %d squares."
	fmtSearchIncomplete = "Lawnmower search incomplete - too many moves! Discovered %d squares."
	fmtSearchComplete   = "Lawnmower search complete! Discovered %d squares."
	fmtPrinted          = "Printed: %s"
	fmtErrorPrinted     = "Error printed: %s"
)

// Outcome is the result of executing one command
type Outcome struct {
	Message string `json:"message"`
	// Halt stops the rest of the submitted script
	Halt bool `json:"halt,omitempty"`
	// Unavailable is set when the function is locked
	Unavailable bool `json:"unavailable,omitempty"`
	// Moved is set when the robot changed tile
	Moved bool `json:"moved,omitempty"`
	// AutoGrab holds the message of an implicit grab after a move
	AutoGrab string `json:"auto_grab,omitempty"`
	// Collision is set when an enemy caught the robot and the level reloaded
	Collision bool `json:"collision,omitempty"`
	// Reloaded is set when the command replaced the current level
	Reloaded bool `json:"reloaded,omitempty"`
	// Completed is set when this command finished the level
	Completed bool `json:"completed,omitempty"`
	// Achievement is the level's achievement text when Completed
	Achievement string `json:"achievement,omitempty"`
	// NextLevelHint previews the following level when Completed
	NextLevelHint string `json:"next_level_hint,omitempty"`
	// EnemiesMoved counts enemies that changed tile during the tick
	EnemiesMoved int `json:"enemies_moved,omitempty"`

	// turn marks actions after which enemies tick
	turn bool
}

// LevelView describes the current level in a Snapshot
type LevelView struct {
	Index          int    `json:"index"`
	Number         int    `json:"number"`
	Total          int    `json:"total"`
	ID             string `json:"id"`
	Name           string `json:"name"`
	Message        string `json:"message,omitempty"`
	Hint           string `json:"hint,omitempty"`
	StartingCode   string `json:"starting_code,omitempty"`
	CompletionFlag string `json:"completion_flag,omitempty"`
	CompletionHint string `json:"completion_hint"`
	// Instructions explain how to finish the level
	Instructions string `json:"completion_message,omitempty"`
	// NextLevelHint is only set once the level is finished
	NextLevelHint string `json:"next_level_hint,omitempty"`
}

// RobotView describes the robot in a Snapshot
type RobotView struct {
	Pos          world.Pos `json:"pos"`
	Upgrades     Upgrades  `json:"upgrades"`
	Inventory    []string  `json:"inventory"`
	AutoGrab     bool      `json:"auto_grab"`
	GrabberRange int       `json:"grabber_range"`
	ScannerRange int       `json:"scanner_range"`
}

// ItemView describes an item in a Snapshot
type ItemView struct {
	Name      string    `json:"name"`
	Pos       world.Pos `json:"pos"`
	Collected bool      `json:"collected"`
}

// EffectView is a timed effect in a Snapshot
type EffectView struct {
	Enemy int       `json:"enemy,omitempty"`
	Pos   world.Pos `json:"pos"`
	Turns int       `json:"turns"`
}

// Snapshot is a read-only copy of the game for rendering and JSON
type Snapshot struct {
	Level          LevelView          `json:"level"`
	Grid           world.GridSnapshot `json:"grid"`
	Robot          RobotView          `json:"robot"`
	Items          []ItemView         `json:"items"`
	Credits        int                `json:"credits"`
	Turns          int                `json:"turns"`
	MaxTurns       int                `json:"max_turns"`
	Discovered     int                `json:"discovered_this_level"`
	Finished       bool               `json:"finished"`
	Outputs        []string           `json:"println_outputs"`
	Errors         []string           `json:"error_outputs"`
	Panicked       bool               `json:"panic_occurred"`
	Stunned        []EffectView       `json:"stunned_enemies,omitempty"`
	Removed        []EffectView       `json:"removed_obstacles,omitempty"`
	EnemiesActive  bool               `json:"enemies_active"`
	Available      []string           `json:"available_functions"`
	LastResult     string             `json:"execution_result"`
	TimeSlowMillis int                `json:"time_slow_ms,omitempty"`
}
