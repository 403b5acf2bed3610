package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"

	"github.com/wricardo/robogrid/game/engine"
	"github.com/wricardo/robogrid/game/level"
	"github.com/wricardo/robogrid/game/world"
)

// Board colours
var (
	ColorRobot   = color.Style{color.FgGreen, color.BgBlack, color.OpBold}
	ColorEnemy   = color.Style{color.FgRed, color.OpBold}
	ColorStunned = color.Style{color.FgYellow}
	ColorBlocker = color.Style{color.FgGray, color.OpBold}
	ColorDoor    = color.Style{color.FgMagenta}
	ColorItem    = color.Style{color.FgCyan, color.OpBold}
	ColorKnown   = color.Style{color.FgBlue}
	ColorUnknown = color.Style{color.FgGray}
	ColorDenied  = color.Style{color.FgRed, color.OpBold}
	ColorGood    = color.Style{color.FgGreen, color.OpBold}
)

var glyphStyles = map[rune]color.Style{
	engine.GlyphRobot:        ColorRobot,
	engine.GlyphEnemy:        ColorEnemy,
	engine.GlyphStunnedEnemy: ColorStunned,
	engine.GlyphBlocker:      ColorBlocker,
	engine.GlyphRemoved:      ColorBlocker,
	engine.GlyphDoor:         ColorDoor,
	engine.GlyphOpenDoor:     ColorDoor,
	engine.GlyphItem:         ColorItem,
	engine.GlyphKnown:        ColorKnown,
	engine.GlyphUnknown:      ColorUnknown,
}

// newGameAt starts a game on the 1-based level number of pack
func newGameAt(pack []*level.Spec, resources world.ResourceLoader, number int, seed uint64) (*engine.Game, error) {
	game, err := engine.NewGame(pack, seed, resources)
	if err != nil {
		return nil, err
	}
	if number != 1 {
		if err := game.LoadLevel(number - 1); err != nil {
			return nil, err
		}
	}
	return game, nil
}

// playScript runs src offline on the 1-based level number of pack
func playScript(pack []*level.Spec, resources world.ResourceLoader, number int, src string, seed uint64) (*engine.Game, engine.RunResult, error) {
	game, err := newGameAt(pack, resources, number, seed)
	if err != nil {
		return nil, engine.RunResult{}, err
	}
	return game, game.Run(src), nil
}

// renderBoard writes the board one row per line, coloured by glyph
func renderBoard(out io.Writer, snap *engine.Snapshot) {
	for _, row := range snap.Rows() {
		var b strings.Builder
		for _, c := range row {
			if style, ok := glyphStyles[c]; ok {
				b.WriteString(style.Sprint(string(c)))
			} else {
				b.WriteRune(c)
			}
		}
		fmt.Fprintln(out, b.String())
	}
}

// printRun reports each executed command and the final board
func printRun(out io.Writer, game *engine.Game, run engine.RunResult) {
	snap := game.Snapshot()
	lv := snap.Level
	fmt.Fprintf(out, "Level %d/%d: %s (seed %d)\n\n", lv.Number, lv.Total, lv.Name, game.Seed())

	for _, step := range run.Steps {
		msg := step.Outcome.Message
		switch {
		case step.Outcome.Halt, step.Outcome.Collision, step.Outcome.Unavailable:
			msg = ColorDenied.Sprint(msg)
		case step.Outcome.Completed:
			msg = ColorGood.Sprint(msg)
		}
		fmt.Fprintf(out, "%3d. %-24s %s\n", step.Index, step.Call, msg)
	}
	if run.NoCommand {
		fmt.Fprintln(out, ColorDenied.Sprint(run.Message))
	}

	fmt.Fprintln(out)
	renderBoard(out, snap)
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Robot (%d,%d)  Credits %d  Turns %d  Discovered %d\n",
		snap.Robot.Pos.X, snap.Robot.Pos.Y, snap.Credits, snap.Turns, snap.Discovered)
	for _, line := range snap.Outputs {
		fmt.Fprintf(out, "stdout: %s\n", line)
	}
	for _, line := range snap.Errors {
		fmt.Fprintf(out, "stderr: %s\n", line)
	}

	if game.Finished() || run.Completed {
		fmt.Fprintln(out, ColorGood.Sprint("Level complete!"))
		if lv.NextLevelHint != "" {
			fmt.Fprintln(out, lv.NextLevelHint)
		}
	} else {
		fmt.Fprintf(out, "Goal: %s\n", lv.CompletionHint)
	}
}

// printLevels lists the pack
func printLevels(out io.Writer, infos []*level.Info) {
	for _, info := range infos {
		goal := info.CompletionFlag
		if goal == "" {
			goal = "explore"
		}
		fmt.Fprintf(out, "%2d. %-28s %2dx%-2d enemies:%d items:%d goal:%s\n",
			info.Number, info.Name, info.Width, info.Height, info.Enemies, info.Items, goal)
	}
}
