package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/robogrid/game/engine"
	"github.com/wricardo/robogrid/game/level"
)

var (
	// ErrSessionNotFound is returned when no session has the given ID
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidScript is returned for scripts the service refuses to run
	ErrInvalidScript = errors.New("invalid script")
	// ErrInvalidLevel is returned for out-of-range level numbers
	ErrInvalidLevel = errors.New("invalid level number")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	RunScript(ctx context.Context, sessionID, script string) (*RunResult, error)
	ResetLevel(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GotoLevel(ctx context.Context, sessionID string, number int) (*RunResult, error)

	// Game State
	GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	AvailableFunctions(ctx context.Context, sessionID string) ([]string, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Levels
	ListLevels(ctx context.Context) ([]*level.Info, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, seed uint64) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelSource provides the level pack sessions are played on
type LevelSource interface {
	Pack() []*level.Spec
	List() []*level.Info
	Resources() *level.Resources
}

// RecordKind identifies an entry in a session's replay log
type RecordKind string

const (
	RecordRun   RecordKind = "run"
	RecordReset RecordKind = "reset"
)

// ScriptRecord is one state-changing request against a session. Replaying
// the records in order on a game built from the same seed reproduces the
// session exactly.
type ScriptRecord struct {
	RunID   string     `json:"run_id"`
	Kind    RecordKind `json:"kind"`
	Source  string     `json:"source,omitempty"`
	Level   int        `json:"level"`
	Summary string     `json:"summary"`
	At      time.Time  `json:"at"`
}

// Session represents an active game session
type Session struct {
	ID             string
	Seed           uint64
	Game           *engine.Game
	Records        []ScriptRecord
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu sync.Mutex
}

// Lock serialises access to the session's game
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the session
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// Apply executes rec against the session's game and appends it to the log.
// The caller holds the session lock.
func (s *Session) Apply(rec ScriptRecord) engine.RunResult {
	rec.Level = s.Game.LevelIndex() + 1
	var res engine.RunResult
	switch rec.Kind {
	case RecordReset:
		s.Game.Reset()
		res.Message = "Level reset"
	default:
		res = s.Game.Run(rec.Source)
	}
	rec.Summary = res.Message
	s.Records = append(s.Records, rec)
	return res
}
