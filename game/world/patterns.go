package world

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/robogrid/logging"
)

// PatternSentinel marks the line of a pattern resource that names the
// built-in behaviour it binds to.
const PatternSentinel = "// MOVEMENT_PATTERN:"

// FilePatternPrefix marks a movement tag that points at a pattern resource
const FilePatternPrefix = "file:"

var ErrNoPatternSentinel = errors.New("no movement pattern sentinel found")

// ResourceLoader reads named text resources such as pattern files
type ResourceLoader interface {
	ReadResource(name string) (string, error)
}

var builtinTags = map[string]StrategyKind{
	"horizontal": KindBounce,
	"vertical":   KindBounce,
	"random":     KindRandom,
	"diagonal":   KindDiagonal,
	"circular":   KindCircular,
	"spiral":     KindSpiral,
	"chase":      KindChase,
	"guard":      KindGuard,
}

// IsBuiltinPattern reports whether tag names a built-in movement pattern
func IsBuiltinPattern(tag string) bool {
	_, ok := builtinTags[strings.ToLower(strings.TrimSpace(tag))]
	return ok
}

// binding is what a pattern resource resolved to
type binding struct {
	kind StrategyKind
	axis *Axis
}

// PatternRegistry binds "file:" movement tags to built-in strategies. Entries
// are keyed by CustomKey of the owning enemy's index.
type PatternRegistry struct {
	loader ResourceLoader
	custom map[string]binding
}

// NewPatternRegistry creates a registry reading resources through loader.
// A nil loader makes every file pattern fall back to the enemy's axis.
func NewPatternRegistry(loader ResourceLoader) *PatternRegistry {
	return &PatternRegistry{
		loader: loader,
		custom: make(map[string]binding),
	}
}

// CustomKey is the registry key of the enemy at index
func CustomKey(index int) string {
	return fmt.Sprintf("custom_%d", index)
}

// DetectPattern scans content for the sentinel line and returns the bound
// kind. horizontal and vertical also report the axis they imply.
func DetectPattern(content string) (StrategyKind, *Axis, error) {
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		rest, ok := strings.CutPrefix(line, PatternSentinel)
		if !ok {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(rest))
		kind, known := builtinTags[name]
		if !known {
			return KindBounce, nil, fmt.Errorf("unknown movement pattern %q", name)
		}
		switch name {
		case "horizontal":
			axis := Horizontal
			return kind, &axis, nil
		case "vertical":
			axis := Vertical
			return kind, &axis, nil
		}
		return kind, nil, nil
	}
	return KindBounce, nil, ErrNoPatternSentinel
}

// Load reads the resource at path and registers its binding under key.
func (r *PatternRegistry) Load(key, path string) error {
	if r.loader == nil {
		return fmt.Errorf("no resource loader for pattern %s", path)
	}
	content, err := r.loader.ReadResource(path)
	if err != nil {
		return fmt.Errorf("failed to read pattern %s: %w", path, err)
	}
	kind, axis, err := DetectPattern(content)
	if err != nil {
		return fmt.Errorf("pattern %s: %w", path, err)
	}
	r.custom[key] = binding{kind: kind, axis: axis}
	return nil
}

// Reset forgets every registered file pattern
func (r *PatternRegistry) Reset() {
	r.custom = make(map[string]binding)
}

// Resolve turns a movement tag into a strategy for the enemy at index. It
// may also return an axis override when a pattern resource names one.
// Unknown tags and unreadable resources fall back to Bounce.
func (r *PatternRegistry) Resolve(tag string, index int) (Strategy, *Axis) {
	tag = strings.TrimSpace(tag)
	if path, ok := strings.CutPrefix(tag, FilePatternPrefix); ok {
		key := CustomKey(index)
		if _, loaded := r.custom[key]; !loaded {
			if err := r.Load(key, strings.TrimSpace(path)); err != nil {
				logging.Log.WithFields(logrus.Fields{
					"pattern": tag,
					"enemy":   index,
				}).WithError(err).Warn("custom movement pattern unavailable, using built-in patrol")
				return &Bounce{}, nil
			}
		}
		b := r.custom[key]
		return NewStrategy(b.kind), b.axis
	}

	lower := strings.ToLower(tag)
	kind, ok := builtinTags[lower]
	if !ok {
		return &Bounce{}, nil
	}
	switch lower {
	case "horizontal":
		axis := Horizontal
		return NewStrategy(kind), &axis
	case "vertical":
		axis := Vertical
		return NewStrategy(kind), &axis
	}
	return NewStrategy(kind), nil
}
