// Package mcp exposes the robot grid game to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and the JSON response is rendered as plain text for the agent.
//
// MCP Tools:
//   - create_session: Start a session, optionally from a fixed seed
//   - list_sessions, get_session: Inspect sessions
//   - get_state: Board rendering plus robot, credits and level goal
//   - run_script: Run a script on the current level
//   - reset_level: Reload the current level
//   - goto_level: Jump to a level by number
//   - available_functions: Functions callable right now
//   - run_history: Paged replay log of a session
//   - list_levels: Describe the level pack
//   - game_instructions: Rules and function reference
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
//
// Errors from the API, including unknown sessions and out-of-range levels,
// come back as tool results with IsError set rather than as protocol errors.
package mcp
