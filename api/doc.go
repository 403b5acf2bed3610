// Package api provides HTTP REST API handlers for the robot grid game.
//
// The api package implements:
//   - Session management endpoints
//   - Script execution, reset and level navigation
//   - Replay history paging
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session, body {"seed": 42} optional
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=n)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/run - Run a script, body {"script": "move(right);"}
//   - POST /api/sessions/{id}/reset - Reload the current level
//   - POST /api/sessions/{id}/level - Jump to a level, body {"level": 3}
//   - GET /api/sessions/{id}/functions - Functions callable right now
//   - GET /api/sessions/{id}/history - Replay log (?page=1&limit=20&order=desc)
//
// Levels:
//   - GET /api/levels - Describe the level pack
//
// WebSocket:
//   - GET /ws?session={id} - Receive state_update and run_result pushes
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes. Unknown
// sessions map to 404; oversized scripts and out-of-range levels map to 400.
//
//	{
//	  "error": "session \"abc\": session not found",
//	  "code": 404
//	}
//
// Run responses:
//
// POST /run returns the service RunResult: per-command results with the
// robot's position before and after each, stop_reason_code
// (blocked|collision|parse_miss|unavailable), stopped_on_step, level_before,
// level_after, credits_delta, events and the resulting state.
package api
