// Package session provides session management for the robot grid game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Session ID generation
//   - Replay-based file persistence
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session manager used by the service layer. Sessions are
// service.Session values: a seeded engine.Game plus the log of scripts and
// resets applied to it.
//
// Session Identifiers:
//
// Generated IDs are the first eight hex characters of a random UUID. Callers
// may pick their own ID from letters, digits, '-' and '_'. Lookups ignore
// case.
//
// Persistence:
//
// FilePersistence writes one JSON file per session holding the seed and the
// replay log. Loading builds a fresh game from the seed and applies the log
// in order, which reproduces the original state as long as the level pack is
// unchanged.
//
// Usage:
//
//	levels, _ := level.NewManager("")
//	store, _ := session.NewFilePersistence("sessions", levels)
//	manager := session.NewManagerWithPersistence(levels, store)
//
//	sess, err := manager.Create("", seed)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Cleanup:
//
// CleanupExpiredSessions evicts idle sessions from memory. Persisted copies
// stay on disk and are reloaded by the next Get.
package session
