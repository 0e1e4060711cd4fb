// Package mcp exposes the maze puzzle game to AI agents over the Model
// Context Protocol.
//
// The client is thin: every tool proxies to the REST API (see package api)
// and renders the JSON response as text an agent can read.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: ASCII board with threat level and nearest targets
//   - tick: advance one tick with held keys and an optional pressed key
//   - bulk_tick: advance many ticks, stopping early when the game ends
//   - reset_game, restart_level: start over or rebuild the current level
//   - describe_tile: every actor on a tile, since the board shows one
//   - list_configs, game_instructions: level packs and rules
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
