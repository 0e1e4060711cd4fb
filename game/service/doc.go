// Package service provides the business logic layer for the maze puzzle game.
//
// The service package implements:
//   - Multi-session game management
//   - Level pack loading through a ConfigManager
//   - Tick processing, including bulk ticks with stop reasons
//   - Session lifecycle management
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages level pack loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, providing session isolation and configuration management.
// Each session owns its own engine instance, and every call that advances or
// resets an engine holds the service lock, so an engine never sees two ticks
// at once.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	// Create a new session with a fixed filler seed
//	sessionInfo, err := gameService.CreateSession(ctx, "classic", 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Hold right for one tick
//	result, err := gameService.Tick(ctx, sessionInfo.ID,
//		engine.Input{Held: engine.HeldKeys(engine.Right)}, false)
package service
