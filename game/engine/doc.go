// Package engine provides the core simulation for the maze puzzle game.
//
// The engine package implements the game mechanics including:
//   - Tile-grid stages built from text layouts plus random filler
//   - Player movement in smooth (held keys) or precise (one key) mode
//   - Box pushing, with chained boxes and monster squishing
//   - Ghost and squishy monster behaviors
//   - Door gating and level progression
//
// Core Types:
//
// Every entity on a stage is an Actor whose Kind decides its capabilities.
// Actors live in a Registry, an insertion-ordered arena whose slots are never
// reused, and a World wraps the registry with the level counters (monsters
// left, key collected). Actors only see or change each other through the
// World. GameEngine owns the current World and the level state machine.
//
// Positions are kept in sub-tile units (SubTiles per tile) so the ghost's
// fractional chase stays exact while tile lookups stay integral.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultGameConfig(), 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Hold right for one tick
//	result := gameEngine.Tick(engine.Input{Held: engine.HeldKeys(engine.Right)})
//	fmt.Println(result.Snapshot.Status)
//
// Game Rules:
//
// Each tick every live actor acts once in registration order. Stepping on a
// door checks the level goal: stars collected, all monsters squished, or all
// monsters squished plus the key. A met goal advances to the next level or
// wins the game; an unmet one pushes the player back a tile. Any monster that
// reaches the player ends the game.
package engine
