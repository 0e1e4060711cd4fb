// Package api provides the HTTP REST API for the maze puzzle game.
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions                  create a session {config_id?, seed?}
//   - GET    /api/sessions                  list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified          snapshots of several sessions (?sessionIds=a,b or ?configName=x)
//   - GET    /api/sessions/{id}             session info with snapshot and level pack
//   - DELETE /api/sessions/{id}             delete a session
//
// Game Operations:
//   - GET  /api/sessions/{id}/state         current snapshot (?format=text for an ASCII board)
//   - POST /api/sessions/{id}/tick          one tick {held: ["left"], pressed: "up", reset?}
//   - POST /api/sessions/{id}/bulk-tick     many ticks {inputs: [...]} or {input: {...}, count: N}
//   - POST /api/sessions/{id}/reset         restart from the first level
//   - POST /api/sessions/{id}/restart       rebuild the current level
//
// Configuration:
//   - GET  /api/configs                     list level packs
//   - GET  /api/configs/{name}              fetch a level pack
//   - POST /api/configs                     save a level pack {id?, name, levels, ...}
//
// Other:
//   - GET /ws?session={id}                  WebSocket snapshot feed
//   - GET /health                           liveness
//   - GET /metrics                          prometheus metrics
//
// Errors are returned as JSON {"error": "..."} with 400 for bad input, 404 for
// unknown sessions or packs and 500 otherwise. Every tick request logs a
// compact [TICK] or [BULK] line and feeds the tick metrics.
package api
