package engine

import (
	"fmt"

	"github.com/wricardo/robogrid/game/world"
)

// move steps the robot one tile. Blocked and out-of-bounds targets halt the
// script; a blocked target still reveals the robot's neighbourhood.
func (g *Game) move(dir world.Pos) Outcome {
	if g.finished {
		return Outcome{Message: MsgLevelComplete}
	}
	from := g.robot.Pos
	next := from.Add(dir)
	if !g.grid.InBounds(next) {
		return Outcome{Message: MsgMoveBlocked, Halt: true}
	}
	if g.grid.IsBlocked(next) {
		g.revealAround(from)
		return Outcome{Message: MsgUnknownObject, Halt: true}
	}
	g.robot.Pos = next
	g.grid.Visit(next)
	g.revealAround(next)
	return Outcome{Message: MsgMoveExecuted, Moved: true, turn: true}
}

// revealAround reveals p and its neighbours, counting new tiles as
// discovered.
func (g *Game) revealAround(p world.Pos) {
	g.discovered += g.grid.RevealAdjacent(p)
}

// grab collects every active item and reveals every tile within grabber
// range. Each newly revealed tile pays the level's income. Upgrades picked
// up by this grab apply from the next one.
func (g *Game) grab() Outcome {
	reach := g.robot.GrabberRange()
	inReach := func(p world.Pos) bool {
		return world.ManhattanDistance(g.robot.Pos, p) <= reach
	}
	collected := 0
	for _, it := range g.items.Active() {
		if inReach(it.Pos) {
			it.Collected = true
			g.applyItem(it)
			collected++
		}
	}

	revealed := 0
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			p := g.robot.Pos.Add(world.Pos{X: dx, Y: dy})
			if inReach(p) && g.grid.Reveal(p) {
				revealed++
			}
		}
	}
	g.discovered += revealed
	g.credits += revealed * g.grid.IncomePerSquare

	out := Outcome{turn: true}
	switch {
	case collected > 0 && revealed > 0:
		out.Message = MsgGrabbedBoth
	case collected > 0:
		out.Message = MsgGrabbedItems
	case revealed > 0:
		out.Message = MsgGrabbedTiles
	default:
		out.Message = MsgNothingToGrab
	}
	return out
}

func (g *Game) applyItem(it *Item) {
	caps := it.Capabilities
	g.robot.AddItem(it.Name)
	if it.Name == ScannerItem || caps.ScannerRange > 0 {
		g.robot.SetScannerLevel(max(caps.ScannerRange, 1))
	}
	if caps.GrabberBoost > 0 {
		g.robot.Upgrades.GrabberLevel += caps.GrabberBoost
	}
	if caps.AttackRange > 0 {
		g.robot.Upgrades.AttackRange = max(g.robot.Upgrades.AttackRange, caps.AttackRange)
	}
	if caps.TimeSlowDuration > 0 {
		g.robot.Upgrades.TimeSlowAvailable = true
		g.timeSlowMillis = caps.TimeSlowDuration
	}
	g.credits += caps.CreditsValue
}

// unknownInGrabRange reports whether an implicit grab would reveal anything
func (g *Game) unknownInGrabRange() bool {
	reach := g.robot.GrabberRange()
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			p := g.robot.Pos.Add(world.Pos{X: dx, Y: dy})
			if g.grid.InBounds(p) && g.robot.InGrabRange(p) && !g.grid.IsKnown(p) {
				return true
			}
		}
	}
	return false
}

// scan reveals tiles in a straight line up to the scanner range. The first
// blocked tile on the line halts like a blocked move; tiles before it stay
// revealed.
func (g *Game) scan(dir world.Pos) Outcome {
	revealed := 0
	p := g.robot.Pos
	for i := 0; i < g.robot.ScannerRange(); i++ {
		p = p.Add(dir)
		if !g.grid.InBounds(p) {
			break
		}
		if g.grid.IsBlocked(p) {
			g.discovered += revealed
			return Outcome{Message: MsgUnknownObject, Halt: true}
		}
		if g.grid.Reveal(p) {
			revealed++
		}
	}
	g.discovered += revealed
	if revealed == 0 {
		return Outcome{Message: MsgScanNothing, turn: true}
	}
	return Outcome{Message: MsgScanComplete, turn: true}
}

func (g *Game) setAutoGrab(on bool) Outcome {
	g.robot.AutoGrab = on
	if on {
		return Outcome{Message: MsgAutoGrabOn}
	}
	return Outcome{Message: MsgAutoGrabOff}
}

// door opens or closes the door under the robot
func (g *Game) door(open bool) Outcome {
	p := g.robot.Pos
	if !g.grid.IsDoor(p) {
		return Outcome{Message: MsgNotOnDoor, turn: true}
	}
	isOpen := g.grid.IsDoorOpen(p)
	switch {
	case open && isOpen:
		return Outcome{Message: MsgDoorAlreadyOpen, turn: true}
	case open:
		g.grid.OpenDoor(p)
		return Outcome{Message: MsgDoorOpened, turn: true}
	case !isOpen:
		return Outcome{Message: MsgDoorAlreadyShut, turn: true}
	}
	g.grid.CloseDoor(p)
	return Outcome{Message: MsgDoorClosed, turn: true}
}

func (g *Game) skipLevel() Outcome {
	if g.levelIndex+1 >= len(g.levels) {
		return Outcome{Message: MsgLastLevel}
	}
	_ = g.LoadLevel(g.levelIndex + 1)
	return Outcome{Message: fmt.Sprintf(fmtSkipped, g.levelIndex+1), Reloaded: true}
}

// gotoLevel jumps to a 1-based level number
func (g *Game) gotoLevel(n int) Outcome {
	if n < 1 || n > len(g.levels) {
		return Outcome{Message: fmt.Sprintf(fmtInvalidLevel, n, len(g.levels))}
	}
	_ = g.LoadLevel(n - 1)
	return Outcome{Message: fmt.Sprintf(fmtJumped, n), Reloaded: true}
}

func (g *Game) printLine(text string) Outcome {
	g.outputs = append(g.outputs, text)
	return Outcome{Message: fmt.Sprintf(fmtPrinted, text)}
}

func (g *Game) printError(text string) Outcome {
	g.errors = append(g.errors, text)
	return Outcome{Message: fmt.Sprintf(fmtErrorPrinted, text)}
}

func (g *Game) raisePanic(text string) Outcome {
	g.panicked = true
	if text == "" {
		return Outcome{Message: MsgPanicked}
	}
	return Outcome{Message: MsgPanicked + " " + text}
}
