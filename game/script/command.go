package script

import (
	"fmt"
	"strconv"

	"github.com/wricardo/robogrid/game/world"
)

// Kind identifies a robot function
type Kind int

const (
	Move Kind = iota
	Grab
	Scan
	SearchAll
	SetAutoGrab
	LaserDirection
	LaserTile
	OpenDoor
	SkipLevel
	GotoLevel
	Println
	Eprintln
	Panic
)

var kindNames = [...]string{
	Move:           "move",
	Grab:           "grab",
	Scan:           "scan",
	SearchAll:      "search_all",
	SetAutoGrab:    "set_auto_grab",
	LaserDirection: "laser_direction",
	LaserTile:      "laser_tile",
	OpenDoor:       "open_door",
	SkipLevel:      "skip_level",
	GotoLevel:      "goto_level",
	Println:        "println",
	Eprintln:       "eprintln",
	Panic:          "panic",
}

// Kinds lists every function in declaration order
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Command is one parsed robot function call. Only the fields relevant to
// Kind are set.
type Command struct {
	Kind Kind `json:"kind"`
	// Dir is a unit step for Move, Scan and LaserDirection
	Dir world.Pos `json:"dir,omitempty"`
	// Target is the tile for LaserTile
	Target world.Pos `json:"target,omitempty"`
	// Flag is the argument of SetAutoGrab and OpenDoor
	Flag bool `json:"flag,omitempty"`
	// Level is the 1-based argument of GotoLevel
	Level int `json:"level,omitempty"`
	// Text is the message of Println, Eprintln and Panic
	Text string `json:"text,omitempty"`
	// Line is the 1-based source line, 0 for synthesized commands
	Line int `json:"line,omitempty"`
}

// MoveCommand builds a synthesized Move
func MoveCommand(dir world.Pos) Command {
	return Command{Kind: Move, Dir: dir}
}

// String renders the command as canonical call text
func (c Command) String() string {
	switch c.Kind {
	case Move, Scan, LaserDirection:
		return fmt.Sprintf("%s(%s)", c.Kind, world.DirectionName(c.Dir))
	case LaserTile:
		return fmt.Sprintf("%s(%d, %d)", c.Kind, c.Target.X, c.Target.Y)
	case SetAutoGrab, OpenDoor:
		return fmt.Sprintf("%s(%t)", c.Kind, c.Flag)
	case GotoLevel:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Level)
	case Println, Eprintln, Panic:
		return fmt.Sprintf("%s!(%s)", c.Kind, strconv.Quote(c.Text))
	}
	return c.Kind.String() + "()"
}
