package service

import (
	"time"

	"github.com/wricardo/robogrid/game/engine"
	"github.com/wricardo/robogrid/game/world"
)

// Stop reason codes reported on RunResult
const (
	StopBlocked     = "blocked"
	StopCollision   = "collision"
	StopParseMiss   = "parse_miss"
	StopUnavailable = "unavailable"
)

// Event types reported on RunResult
const (
	EventRun         = "run"
	EventHalt        = "halt"
	EventCollision   = "collision"
	EventComplete    = "level_complete"
	EventLevelChange = "level_change"
	EventReset       = "reset"
)

// CreateOptions configures a new session
type CreateOptions struct {
	// Seed fixes the session's random source; nil picks one
	Seed *uint64 `json:"seed,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	Seed           uint64           `json:"seed"`
	Runs           int              `json:"runs"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	State          *engine.Snapshot `json:"state"`
}

// RunResult contains the result of running a script
type RunResult struct {
	RunID     string `json:"run_id"`
	SessionID string `json:"session_id"`

	// Summary is the per-command messages joined with "; "
	Summary        string     `json:"summary"`
	Results        []StepInfo `json:"results"`
	Parsed         int        `json:"parsed"`
	Executed       int        `json:"executed"`
	Halted         bool       `json:"halted"`
	StoppedOnStep  int        `json:"stopped_on_step,omitempty"`
	StopReasonCode string     `json:"stop_reason_code,omitempty"` // blocked|collision|parse_miss|unavailable
	Completed      bool       `json:"completed"`
	Achievement    string     `json:"achievement,omitempty"`
	NextLevelHint  string     `json:"next_level_hint,omitempty"`

	LevelBefore  int `json:"level_before"`
	LevelAfter   int `json:"level_after"`
	CreditsDelta int `json:"credits_delta"`

	Events []GameEvent       `json:"events"`
	State  *engine.Snapshot `json:"state"`
}

// StepInfo is a compact record for each executed command
type StepInfo struct {
	Idx         int       `json:"idx"`
	Call        string    `json:"call"`
	Line        int       `json:"line,omitempty"`
	Message     string    `json:"message"`
	From        world.Pos `json:"from"`
	To          world.Pos `json:"to"`
	Moved       bool      `json:"moved,omitempty"`
	AutoGrab    string    `json:"auto_grab,omitempty"`
	Halt        bool      `json:"halt,omitempty"`
	Unavailable bool      `json:"unavailable,omitempty"`
	Collision   bool      `json:"collision,omitempty"`
	Completed   bool      `json:"completed,omitempty"`
}

// GameEvent represents an event that occurred during a run
type GameEvent struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Position  world.Pos `json:"position"`
}

// HistoryOptions configures run history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains a page of the session's replay log
type HistoryResponse struct {
	Runs        []ScriptRecord `json:"runs"`
	TotalRuns   int            `json:"total_runs"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}
