// Command analyze prints quick, human-readable statistics about the level
// packs in a config directory (default "configs") plus the built-in pack:
// stage size, actor counts, free tiles, filler and whether the door can be
// reached from the player through non-wall tiles.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/wricardo/maze-puzzle-game/game/config"
	"github.com/wricardo/maze-puzzle-game/game/engine"
	"github.com/wricardo/maze-puzzle-game/validate"
)

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := run(os.Stdout, dir); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, dir string) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}
	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}
	for _, info := range infos {
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(w, "\n=== %s ===\nError loading pack: %v\n", info.ConfigID, err)
			continue
		}
		analyzePack(w, info.ConfigID, cfg)
	}
	return nil
}

func analyzePack(w io.Writer, id string, cfg *engine.GameConfig) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", id)
	fmt.Fprintf(w, "Name: %s\n", cfg.Name)
	fmt.Fprintf(w, "Levels: %d\n", len(cfg.Levels))

	for i := range cfg.Levels {
		level := &cfg.Levels[i]
		fmt.Fprintf(w, "\n-- Level %d: %s --\n", i+1, level.Name)

		stats, err := validate.Analyze(level)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}

		fmt.Fprintf(w, "Stage: %d x %d\n", stats.Width, stats.Height)
		fmt.Fprintf(w, "Goal: %s", level.Goal)
		if level.Goal == engine.GoalStars {
			fmt.Fprintf(w, " (%d)", level.GoalStars)
		}
		fmt.Fprintln(w)

		kinds := make([]string, 0, len(stats.Counts))
		for kind := range stats.Counts {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(w, "  %-20s %d\n", kind, stats.Counts[engine.Kind(kind)])
		}

		fmt.Fprintf(w, "Free tiles: %d\n", stats.FreeTiles)
		if level.Filler.Count > 0 {
			fmt.Fprintf(w, "Filler: %d %s (%d free tiles left)\n",
				level.Filler.Count, level.Filler.Kind, stats.FreeTiles-level.Filler.Count)
		}
		if stats.DoorReachable {
			fmt.Fprintln(w, "Door: reachable")
		} else {
			fmt.Fprintln(w, "WARNING: door is not reachable from the player")
		}
	}
}
