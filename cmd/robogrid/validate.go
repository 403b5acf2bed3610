package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/robogrid/game/engine"
	"github.com/wricardo/robogrid/game/level"
	"github.com/wricardo/robogrid/game/world"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// levelFiles lists the YAML level files in dir, alphabetically
func levelFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// validateLevelFile loads and validates a single level file. It checks the
// grid size format, bounds of every coordinate, the start tile, reachability
// of fixed items, the completion flag and every movement pattern.
func validateLevelFile(filePath string, resources world.ResourceLoader) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	file, err := level.ReadFile(filePath)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	if _, _, err := level.ParseGridSize(file.GridSize); err != nil {
		result.fail("%v", err)
		return result
	}

	id := strings.TrimSuffix(strings.TrimSuffix(result.File, ".yaml"), ".yml")
	rng := rand.New(rand.NewPCG(level.PackSeed, level.PackSeed))
	spec, err := file.ToSpec(id, rng)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	if err := level.ValidateSpec(spec); err != nil {
		result.fail("%v", err)
		return result
	}

	if _, err := engine.ParseCompletionRule(spec.CompletionFlag); err != nil {
		result.fail("Completion flag: %v", err)
	}

	for i, e := range spec.Enemies {
		if err := validatePattern(e.Pattern, resources); err != nil {
			result.fail("Enemy %d: %v", i+1, err)
		}
	}

	reachability := validateReachability(spec)
	if !reachability.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, reachability.Errors...)

	if result.Valid {
		rule, _ := engine.ParseCompletionRule(spec.CompletionFlag)
		result.info("Name: %s", spec.Name)
		result.info("Grid: %dx%d", spec.Width, spec.Height)
		result.info("Start: (%d,%d)", spec.Start.X, spec.Start.Y)
		result.info("Blockers: %d, Doors: %d", len(spec.Blockers), len(spec.Doors))
		result.info("Enemies: %d, Items: %d", len(spec.Enemies), len(spec.Items))
		result.info("Goal: %s", rule.Hint())
	}

	return result
}

// validatePattern checks that a movement tag resolves to a strategy
func validatePattern(tag string, resources world.ResourceLoader) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return errors.New("movement pattern is empty")
	}
	path, isFile := strings.CutPrefix(tag, world.FilePatternPrefix)
	if !isFile {
		if !world.IsBuiltinPattern(tag) {
			return fmt.Errorf("unknown movement pattern %q", tag)
		}
		return nil
	}
	content, err := resources.ReadResource(strings.TrimSpace(path))
	if err != nil {
		return err
	}
	if _, _, err := world.DetectPattern(content); err != nil {
		return fmt.Errorf("pattern %s: %w", path, err)
	}
	return nil
}

// validateReachability ensures every fixed item can be reached from the
// start with 4-directional moves over non-blocker tiles.
func validateReachability(spec *level.Spec) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	reachable := level.Reachable(spec)

	placed := 0
	for _, item := range spec.Items {
		if item.Pos == nil {
			continue
		}
		placed++
		if !reachable[*item.Pos] {
			result.fail("Unreachable: item %q at (%d,%d)", item.Name, item.Pos.X, item.Pos.Y)
		}
	}

	if result.Valid {
		result.info("Connectivity: %d/%d tiles reachable, all %d placed items reachable",
			len(reachable), spec.Width*spec.Height, placed)
	}
	return result
}

// validateDir validates every level file in dir and prints a report. It
// returns an error when any file is invalid.
func validateDir(dir string, out io.Writer) error {
	files, err := levelFiles(dir)
	if err != nil {
		return fmt.Errorf("failed to list level files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no level files found in %s", dir)
	}

	resources := level.NewResources(dir)
	allValid := true
	for _, file := range files {
		result := validateLevelFile(file, resources)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(out, "  "+info)
			}
			continue
		}

		allValid = false
		fmt.Fprintln(out, "❌ INVALID")
		for _, msg := range result.Errors {
			if !strings.HasPrefix(msg, "✓") {
				fmt.Fprintln(out, "  ❌ "+msg)
			}
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		fmt.Fprintln(out, "❌ Some levels have errors")
		return errors.New("validation failed")
	}
	fmt.Fprintln(out, "✅ All levels are valid!")
	return nil
}
