// Package service provides the business logic layer for the robot grid game.
//
// The service package implements:
//   - Multi-session game management
//   - Script execution with per-command diagnostics
//   - Level navigation and reset
//   - Replay log tracking and paging
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// LevelSource provides the level pack and the item and pattern resources.
//
// Architecture:
//
// The service layer sits between the transports (HTTP/WebSocket/MCP/CLI) and
// the game engine. Each session owns its own engine.Game, created from a
// seed, and a log of ScriptRecords. Replaying the log on a fresh game with the
// same seed reproduces the session, which is how sessions are persisted.
//
// Usage:
//
//	levels, _ := level.NewManager("")
//	sessionMgr := session.NewManager(levels, nil)
//	gameService := service.NewGameService(sessionMgr, levels)
//
//	info, err := gameService.CreateSession(ctx, service.CreateOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := gameService.RunScript(ctx, info.ID, "move(right);\ngrab();")
//
// Run results:
//
// RunResult reports each executed command as a StepInfo, a stop reason code
// (blocked, collision, parse_miss or unavailable), the level before and after
// the run, the credit delta and a list of GameEvents suitable for broadcasting.
package service
