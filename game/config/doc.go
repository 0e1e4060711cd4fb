// Package config loads level packs for the maze puzzle game.
//
// A level pack is a JSON or YAML file in the configs directory. Each pack
// names its levels in order; every level carries a layout (inline or via a
// map_file resolved relative to the pack), a legend mapping tokens to actor
// kinds, a door goal, filler settings and the messages shown to the player.
//
// The pack ID is the file name without its extension. When no classic pack is
// on disk the engine's built-in three-level pack is served under that ID.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pack, err := manager.LoadConfig("classic")
//	packs, err := manager.ListConfigs()
//
// Loaded packs are validated and cached; RefreshCache drops the cache.
package config
