package script

import (
	"strconv"
	"strings"

	"github.com/wricardo/robogrid/game/world"
)

// NoCommandsMessage is reported when a script yields no commands
const NoCommandsMessage = "No valid function calls found"

type callName struct {
	name string
	kind Kind
}

// Accepted spellings. Longer names sharing a prefix come first so that the
// earliest match on a line is also the most specific one.
var callNames = []callName{
	{"skip_this_level_because_i_say_so", SkipLevel},
	{"goto_this_level_because_i_say_so", GotoLevel},
	{"laser_direction", LaserDirection},
	{"set_auto_grab", SetAutoGrab},
	{"search_all", SearchAll},
	{"laser_tile", LaserTile},
	{"skip_level", SkipLevel},
	{"goto_level", GotoLevel},
	{"open_door", OpenDoor},
	{"eprintln", Eprintln},
	{"println", Println},
	{"panic", Panic},
	{"move", Move},
	{"grab", Grab},
	{"scan", Scan},
}

// Parse extracts robot commands from free-form script text. Each non-blank,
// non-comment line contributes at most one command: the earliest recognised
// call on that line. Unrecognised text and calls with unusable arguments
// yield nothing.
func Parse(src string) []Command {
	var cmds []Command
	for i, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if cmd, ok := parseLine(line); ok {
			cmd.Line = i + 1
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func parseLine(line string) (Command, bool) {
	bestAt := -1
	var best callName
	var bestArgs string
	for _, cn := range callNames {
		at, args, ok := findCall(line, cn.name)
		if !ok {
			continue
		}
		if bestAt < 0 || at < bestAt {
			bestAt, best, bestArgs = at, cn, args
		}
	}
	if bestAt < 0 {
		return Command{}, false
	}
	return buildCommand(best.kind, bestArgs)
}

// findCall locates the first occurrence of name( or name!( on a word
// boundary and returns its offset and raw argument text.
func findCall(line, name string) (int, string, bool) {
	from := 0
	for from < len(line) {
		idx := strings.Index(line[from:], name)
		if idx < 0 {
			return 0, "", false
		}
		at := from + idx
		from = at + len(name)
		if at > 0 && isIdent(line[at-1]) {
			continue
		}
		rest := line[from:]
		rest = strings.TrimPrefix(rest, "!")
		rest = strings.TrimLeft(rest, " \t")
		if !strings.HasPrefix(rest, "(") {
			continue
		}
		args, ok := argumentText(rest[1:])
		if !ok {
			continue
		}
		return at, args, true
	}
	return 0, "", false
}

// argumentText returns everything up to the first ')' outside a string
// literal. Nested parentheses are not supported.
func argumentText(s string) (string, bool) {
	var quote byte
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case quote != 0 && c == '\\':
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ')':
			return strings.TrimSpace(s[:i]), true
		}
	}
	return "", false
}

func buildCommand(kind Kind, args string) (Command, bool) {
	cmd := Command{Kind: kind}
	switch kind {
	case Move, Scan, LaserDirection:
		dir, ok := world.ParseDirection(args)
		if !ok {
			return Command{}, false
		}
		cmd.Dir = dir
	case LaserTile:
		parts := strings.Split(args, ",")
		if len(parts) != 2 {
			return Command{}, false
		}
		x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
		y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errX != nil || errY != nil {
			return Command{}, false
		}
		cmd.Target = world.Pos{X: x, Y: y}
	case SetAutoGrab, OpenDoor:
		flag, ok := parseBool(args)
		if !ok {
			return Command{}, false
		}
		cmd.Flag = flag
	case GotoLevel:
		n, err := strconv.Atoi(strings.TrimSpace(args))
		if err != nil {
			return Command{}, false
		}
		cmd.Level = n
	case Println, Eprintln, Panic:
		cmd.Text = stringArgument(args)
	case Grab, SearchAll, SkipLevel:
		if args != "" {
			return Command{}, false
		}
	}
	return cmd, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// stringArgument returns the first string literal in args, or args itself
// when there is none.
func stringArgument(args string) string {
	start := strings.IndexByte(args, '"')
	if start < 0 {
		return args
	}
	for end := start + 1; end < len(args); end++ {
		switch args[end] {
		case '\\':
			end++
		case '"':
			if s, err := strconv.Unquote(args[start : end+1]); err == nil {
				return s
			}
			return args[start+1 : end]
		}
	}
	return args[start+1:]
}

func isIdent(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
