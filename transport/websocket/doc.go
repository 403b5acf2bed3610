// Package websocket provides WebSocket transport for the robot grid game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State broadcasting after every script run or reset
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Registration, removal and broadcasts are all
// serialised through the hub's Run loop; each client has a read goroutine
// and a write goroutine.
//
// Message Protocol:
//
// Outgoing messages are JSON, one per frame:
//
//	{"session_id": "3f2a9c1e", "event": "state_update", "state": {...}}
//	{"session_id": "3f2a9c1e", "event": "run_result", "data": {...}}
//
// Clients do not send commands over the socket; scripts go through the REST
// API or MCP and the resulting state is pushed here.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Slow clients whose send buffer fills are disconnected rather than allowed
// to stall the hub.
package websocket
