package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/robogrid/game/engine"
	"github.com/wricardo/robogrid/game/level"
	"github.com/wricardo/robogrid/logging"
)

// MaxScriptBytes bounds the size of a submitted script
const MaxScriptBytes = 64 * 1024

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelSource
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelSource) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seed := rand.Uint64()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	sess, err := s.sessions.Create("", seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logging.Log.WithFields(logrus.Fields{
		"session": sess.ID,
		"seed":    seed,
	}).Info("session created")

	return s.info(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}
	s.touch(sessionID)

	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// RunScript parses and executes a script against the session's current level
func (s *gameServiceImpl) RunScript(ctx context.Context, sessionID, script string) (*RunResult, error) {
	if len(script) > MaxScriptBytes {
		return nil, fmt.Errorf("%w: script exceeds %d bytes", ErrInvalidScript, MaxScriptBytes)
	}
	if lines := strings.Count(script, "\n") + 1; lines > engine.MaxScriptLines {
		return nil, fmt.Errorf("%w: script has %d lines, limit is %d", ErrInvalidScript, lines, engine.MaxScriptLines)
	}
	return s.apply(ctx, sessionID, ScriptRecord{Kind: RecordRun, Source: script})
}

// GotoLevel jumps to a 1-based level number
func (s *gameServiceImpl) GotoLevel(ctx context.Context, sessionID string, number int) (*RunResult, error) {
	if total := len(s.levels.Pack()); number < 1 || number > total {
		return nil, fmt.Errorf("%w: %d, valid range 1-%d", ErrInvalidLevel, number, total)
	}
	return s.apply(ctx, sessionID, ScriptRecord{Kind: RecordRun, Source: fmt.Sprintf("goto_level(%d);", number)})
}

// ResetLevel reloads the session's current level
func (s *gameServiceImpl) ResetLevel(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	res, err := s.apply(ctx, sessionID, ScriptRecord{Kind: RecordReset})
	if err != nil {
		return nil, err
	}
	return res.State, nil
}

func (s *gameServiceImpl) apply(ctx context.Context, sessionID string, rec ScriptRecord) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}

	sess.Lock()
	rec.RunID = uuid.NewString()
	rec.At = time.Now()
	levelBefore := sess.Game.LevelIndex() + 1
	creditsBefore := sess.Game.Credits()
	run := sess.Apply(rec)
	result := buildRunResult(sess, rec, run)
	result.LevelBefore = levelBefore
	result.CreditsDelta = sess.Game.Credits() - creditsBefore
	sess.Unlock()

	s.touch(sessionID)
	if err := s.sessions.Save(sessionID); err != nil {
		logging.Log.WithFields(logrus.Fields{
			"session": sessionID,
		}).WithError(err).Warn("failed to persist session")
	}

	logging.Log.WithFields(logrus.Fields{
		"session":   sessionID,
		"run":       rec.RunID,
		"kind":      rec.Kind,
		"executed":  result.Executed,
		"stop":      result.StopReasonCode,
		"completed": result.Completed,
		"level":     result.LevelAfter,
	}).Info("script applied")

	return result, nil
}

func buildRunResult(sess *Session, rec ScriptRecord, run engine.RunResult) *RunResult {
	game := sess.Game
	result := &RunResult{
		RunID:     rec.RunID,
		SessionID: sess.ID,
		Summary:   run.Message,
		Results:   make([]StepInfo, 0, len(run.Steps)),
		Parsed:    run.Parsed,
		Executed:  len(run.Steps),
		Halted:    run.Halted,
		Completed: run.Completed,
		Events:    []GameEvent{},
	}
	event := func(kind, msg string) {
		result.Events = append(result.Events, GameEvent{
			ID:        uuid.NewString(),
			RunID:     rec.RunID,
			Type:      kind,
			Message:   msg,
			Timestamp: rec.At,
			Position:  game.Robot().Pos,
		})
	}

	unavailable := false
	for _, st := range run.Steps {
		out := st.Outcome
		result.Results = append(result.Results, StepInfo{
			Idx:         st.Index,
			Call:        st.Call,
			Line:        st.Command.Line,
			Message:     out.Message,
			From:        st.From,
			To:          st.To,
			Moved:       out.Moved,
			AutoGrab:    out.AutoGrab,
			Halt:        out.Halt,
			Unavailable: out.Unavailable,
			Collision:   out.Collision,
			Completed:   out.Completed,
		})
		if out.Unavailable {
			unavailable = true
		}
		if out.Completed {
			result.Achievement = out.Achievement
			result.NextLevelHint = out.NextLevelHint
			event(EventComplete, out.Achievement)
		}
		if out.Reloaded {
			event(EventLevelChange, out.Message)
		}
	}

	switch {
	case rec.Kind == RecordReset:
		event(EventReset, run.Message)
	case run.NoCommand:
		result.StopReasonCode = StopParseMiss
	case run.Collision:
		result.StopReasonCode = StopCollision
		result.StoppedOnStep = len(run.Steps)
		event(EventCollision, engine.MsgCollision)
	case run.Halted:
		result.StopReasonCode = StopBlocked
		result.StoppedOnStep = run.HaltedAt
		event(EventHalt, run.Message)
	case unavailable:
		result.StopReasonCode = StopUnavailable
	}
	if rec.Kind == RecordRun {
		event(EventRun, run.Message)
	}

	result.LevelAfter = game.LevelIndex() + 1
	result.State = game.Snapshot()
	return result
}

// GetState returns a snapshot of the session's game
func (s *gameServiceImpl) GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}
	sess.Lock()
	defer sess.Unlock()
	return sess.Game.Snapshot(), nil
}

// AvailableFunctions lists what the robot may call on its current level
func (s *gameServiceImpl) AvailableFunctions(ctx context.Context, sessionID string) ([]string, error) {
	snap, err := s.GetState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return snap.Available, nil
}

// GetHistory returns a page of the session's replay log
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}

	sess.Lock()
	history := append([]ScriptRecord(nil), sess.Records...)
	sess.Unlock()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	runs := []ScriptRecord{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			runs = append(runs, history[i])
		}
	} else if start < total {
		runs = history[start:end]
	}

	return &HistoryResponse{
		Runs:        runs,
		TotalRuns:   total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListLevels describes the level pack
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*level.Info, error) {
	return s.levels.List(), nil
}

func (s *gameServiceImpl) touch(sessionID string) {
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		logging.Log.WithField("session", sessionID).WithError(err).Debug("last access not updated")
	}
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	sess.Lock()
	defer sess.Unlock()
	return &SessionInfo{
		ID:             sess.ID,
		Seed:           sess.Seed,
		Runs:           len(sess.Records),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Game.Snapshot(),
	}
}
