// Package websocket pushes game snapshots to viewers of a session.
//
// A central Hub tracks connected clients per session. Each connection gets a
// read pump that only keeps it alive and a write pump that delivers one JSON
// Message per frame:
//
//	{"session_id": "1a2b3c4d", "event": "state_update", "snapshot": {...}, "data": [...events]}
//
// Clients pick a session with the ?session= query parameter. Session IDs are
// matched case-insensitively. Input never travels over the socket; ticks go
// through the REST API and the server broadcasts the resulting snapshot.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	hub.ServeWS(w, r, sessionID)
//	hub.BroadcastToSession(sessionID, snapshot, events)
//
// The client map is guarded by a mutex so broadcasts from request handlers
// can run alongside the hub loop. Clients that fall behind are dropped.
package websocket
