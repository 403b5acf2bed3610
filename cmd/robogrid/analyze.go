package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/wricardo/robogrid/game/engine"
	"github.com/wricardo/robogrid/game/level"
	"github.com/wricardo/robogrid/game/world"
)

// LevelAnalysis holds quick heuristics about one level
type LevelAnalysis struct {
	Name        string
	Width       int
	Height      int
	Blockers    int
	// Built counts blockers on a grid built from the pack seed, procedural
	// obstacles included
	Built       int
	Density     float64
	Reachable   int
	Unreachable []world.Pos
	Patterns    map[string]int
	Placed      int
	Unplaced    int
	RuleKind    string
	RuleHint    string
	Hazards     level.Hazards
	MaxTurns    int
}

// analyzeLevel summarises density, reachable area, enemy patterns and the
// completion rule of spec.
func analyzeLevel(spec *level.Spec, resources world.ResourceLoader) LevelAnalysis {
	tiles := spec.Width * spec.Height
	a := LevelAnalysis{
		Name:     spec.Name,
		Width:    spec.Width,
		Height:   spec.Height,
		Blockers: len(spec.Blockers),
		Patterns: make(map[string]int),
		Hazards:  spec.HazardMode(),
		MaxTurns: spec.MaxTurns,
	}
	if tiles > 0 {
		a.Density = float64(len(spec.Blockers)) / float64(tiles)
	}

	rng := rand.New(rand.NewPCG(level.PackSeed, level.PackSeed))
	a.Built = engine.BuildGrid(spec, rng, world.NewPatternRegistry(resources)).BlockerCount()

	reachable := level.Reachable(spec)
	a.Reachable = len(reachable)

	blocked := make(map[world.Pos]bool, len(spec.Blockers))
	for _, b := range spec.Blockers {
		blocked[b] = true
	}
	for y := 0; y < spec.Height; y++ {
		for x := 0; x < spec.Width; x++ {
			p := world.Pos{X: x, Y: y}
			if !blocked[p] && !reachable[p] {
				a.Unreachable = append(a.Unreachable, p)
			}
		}
	}

	for _, e := range spec.Enemies {
		a.Patterns[e.Pattern]++
	}
	for _, item := range spec.Items {
		if item.Pos != nil {
			a.Placed++
		} else {
			a.Unplaced++
		}
	}

	rule, err := engine.ParseCompletionRule(spec.CompletionFlag)
	a.RuleKind = ruleKind(rule)
	a.RuleHint = rule.Hint()
	if err != nil {
		a.RuleHint = err.Error()
	}
	return a
}

func ruleKind(rule engine.CompletionRule) string {
	switch rule.(type) {
	case engine.Fallback:
		return "fallback"
	case engine.PrintlnRule:
		return "println"
	case engine.EprintlnRule:
		return "eprintln"
	case engine.ItemsCollectedRule:
		return "items_collected"
	case engine.MovesMadeRule:
		return "moves_made"
	case engine.PanicRule:
		return "panic"
	case engine.ExprRule:
		return "expr"
	default:
		return "never"
	}
}

func printAnalysis(out io.Writer, a LevelAnalysis) {
	fmt.Fprintf(out, "Name: %s\n", a.Name)
	fmt.Fprintf(out, "Grid Size: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(out, "Blockers: %d (density %.1f%%)\n", a.Blockers, a.Density*100)
	fmt.Fprintf(out, "Hazards: %s\n", a.Hazards)
	if a.Built != a.Blockers {
		fmt.Fprintf(out, "Blockers once built: %d (procedural, varies by seed)\n", a.Built)
	}
	if a.MaxTurns > 0 {
		fmt.Fprintf(out, "Max Turns: %d\n", a.MaxTurns)
	}
	fmt.Fprintf(out, "Items: %d placed, %d unplaced\n", a.Placed, a.Unplaced)

	if len(a.Patterns) > 0 {
		names := make([]string, 0, len(a.Patterns))
		for name := range a.Patterns {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s x%d", name, a.Patterns[name]))
		}
		fmt.Fprintf(out, "Enemy Patterns: %s\n", strings.Join(parts, ", "))
	}

	fmt.Fprintf(out, "Completion: %s (%s)\n", a.RuleKind, a.RuleHint)
	if a.RuleKind == "never" {
		fmt.Fprintf(out, "⚠️  CRITICAL: this level can never be completed\n")
	}

	fmt.Fprintf(out, "Reachable Tiles: %d\n", a.Reachable)
	if len(a.Unreachable) == 0 {
		fmt.Fprintf(out, "✅ Every open tile is reachable from the start\n")
		return
	}

	fmt.Fprintf(out, "⚠️  WARNING: %d open tiles are unreachable from the start!\n", len(a.Unreachable))
	if a.RuleKind == "fallback" {
		fmt.Fprintf(out, "   The explore goal still needs these revealed from a neighbouring tile\n")
	}
	for i, p := range a.Unreachable {
		if i == 5 {
			fmt.Fprintf(out, "   ... and %d more\n", len(a.Unreachable)-5)
			break
		}
		fmt.Fprintf(out, "   Unreachable: (%d, %d)\n", p.X, p.Y)
	}
}

// analyzePack prints an analysis of every level in specs
func analyzePack(out io.Writer, specs []*level.Spec, resources world.ResourceLoader) {
	for i, spec := range specs {
		fmt.Fprintf(out, "\n=== Analyzing %d. %s ===\n", i+1, spec.ID)
		printAnalysis(out, analyzeLevel(spec, resources))
	}
}
