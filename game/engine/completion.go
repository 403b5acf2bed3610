package engine

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ErrInvalidRule is returned for completion flags that cannot be parsed
var ErrInvalidRule = errors.New("invalid completion rule")

// RuleEnv is what completion rules are evaluated against
type RuleEnv struct {
	Outputs     []string
	Errors      []string
	Panicked    bool
	Inventory   int
	Turns       int
	MaxTurns    int
	Credits     int
	Discovered  int
	Known       int
	TotalItems  int
	ActiveItems int
	AllKnown    bool
	Level       int
}

// CompletionRule decides whether a level is finished
type CompletionRule interface {
	Satisfied(env RuleEnv) bool
	Hint() string
}

// Fallback applies when a level has no completion flag: every placed item
// collected, every passable tile known, or the turn limit reached.
type Fallback struct{}

func (Fallback) Satisfied(env RuleEnv) bool {
	if env.TotalItems > 0 && env.ActiveItems == 0 {
		return true
	}
	if env.AllKnown {
		return true
	}
	return env.MaxTurns > 0 && env.Turns >= env.MaxTurns
}

func (Fallback) Hint() string {
	return "Collect every item or explore the whole grid"
}

// PrintlnRule requires a println! output, exactly Text unless Any is set
type PrintlnRule struct {
	Text string
	Any  bool
}

func (r PrintlnRule) Satisfied(env RuleEnv) bool {
	return matchOutput(env.Outputs, r.Text, r.Any)
}

func (r PrintlnRule) Hint() string {
	if r.Any {
		return "Print any message with println!"
	}
	return fmt.Sprintf("Print exactly %q with println!", r.Text)
}

// EprintlnRule requires an eprintln! output, exactly Text unless Any is set
type EprintlnRule struct {
	Text string
	Any  bool
}

func (r EprintlnRule) Satisfied(env RuleEnv) bool {
	return matchOutput(env.Errors, r.Text, r.Any)
}

func (r EprintlnRule) Hint() string {
	if r.Any {
		return "Print any error with eprintln!"
	}
	return fmt.Sprintf("Print exactly %q with eprintln!", r.Text)
}

// ItemsCollectedRule requires N distinct items in the inventory
type ItemsCollectedRule struct {
	N int
}

func (r ItemsCollectedRule) Satisfied(env RuleEnv) bool {
	return env.Inventory >= r.N
}

func (r ItemsCollectedRule) Hint() string {
	return fmt.Sprintf("Collect %d item(s)", r.N)
}

// MovesMadeRule requires N turns this level
type MovesMadeRule struct {
	N int
}

func (r MovesMadeRule) Satisfied(env RuleEnv) bool {
	return env.Turns >= r.N
}

func (r MovesMadeRule) Hint() string {
	return fmt.Sprintf("Make %d moves", r.N)
}

// PanicRule requires a panic! call
type PanicRule struct{}

func (PanicRule) Satisfied(env RuleEnv) bool {
	return env.Panicked
}

func (PanicRule) Hint() string {
	return "Make the robot panic!"
}

// ExprRule evaluates a boolean expr-lang expression over the game counters
type ExprRule struct {
	Source  string
	program *vm.Program
}

func (r ExprRule) Satisfied(env RuleEnv) bool {
	if r.program == nil {
		return false
	}
	out, err := expr.Run(r.program, exprEnv(env))
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

func (r ExprRule) Hint() string {
	return "Reach: " + r.Source
}

// NeverRule is used for unrecognised flags
type NeverRule struct {
	Flag string
}

func (NeverRule) Satisfied(RuleEnv) bool {
	return false
}

func (r NeverRule) Hint() string {
	return "Unknown completion condition: " + r.Flag
}

// ParseCompletionRule turns a level's completion flag into a rule. An empty
// flag yields Fallback. Kinds are case-sensitive. A flag that cannot be
// parsed yields NeverRule together with an error wrapping ErrInvalidRule.
func ParseCompletionRule(flag string) (CompletionRule, error) {
	if strings.TrimSpace(flag) == "" {
		return Fallback{}, nil
	}
	invalid := func(reason string) (CompletionRule, error) {
		return NeverRule{Flag: flag}, fmt.Errorf("%w %q: %s", ErrInvalidRule, flag, reason)
	}

	kind, value, hasValue := strings.Cut(flag, ":")
	if !hasValue {
		switch kind {
		case "println":
			return PrintlnRule{Any: true}, nil
		case "eprintln", "error":
			return EprintlnRule{Any: true}, nil
		case "items_collected":
			return ItemsCollectedRule{N: 1}, nil
		case "panic":
			return PanicRule{}, nil
		}
		return invalid("unknown kind")
	}

	switch kind {
	case "println", "println_exact":
		return PrintlnRule{Text: value}, nil
	case "eprintln", "error_exact":
		return EprintlnRule{Text: value}, nil
	case "items_collected":
		n, err := countArgument(value)
		if err != nil {
			return invalid(err.Error())
		}
		return ItemsCollectedRule{N: n}, nil
	case "moves_made":
		n, err := countArgument(value)
		if err != nil {
			return invalid(err.Error())
		}
		return MovesMadeRule{N: n}, nil
	case "expr":
		program, err := expr.Compile(value, expr.Env(exprEnv(RuleEnv{})), expr.AsBool())
		if err != nil {
			return invalid(err.Error())
		}
		return ExprRule{Source: value, program: program}, nil
	}
	return invalid("unknown kind")
}

func countArgument(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}

func matchOutput(lines []string, text string, anyLine bool) bool {
	if anyLine {
		return len(lines) > 0
	}
	return slices.Contains(lines, text)
}

func exprEnv(env RuleEnv) map[string]any {
	return map[string]any{
		"turns":      env.Turns,
		"max_turns":  env.MaxTurns,
		"credits":    env.Credits,
		"items":      env.Inventory,
		"outputs":    len(env.Outputs),
		"errors":     len(env.Errors),
		"panicked":   env.Panicked,
		"discovered": env.Discovered,
		"known":      env.Known,
		"level":      env.Level,
	}
}
