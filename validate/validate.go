// Package validate checks level pack files beyond what the loader enforces.
// The loader rejects structurally broken packs; this package also catches
// packs that load but cannot be finished:
//   - the door is walled off from the player
//   - a stars goal asks for more stars than the level holds
//   - monsters must be squished but there are no boxes
//   - a key goal has no key
//   - the filler does not fit on the free tiles
package validate

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/maze-puzzle-game/game/config"
	"github.com/wricardo/maze-puzzle-game/game/engine"
)

// Result captures the outcome of validating a single pack.
type Result struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// LevelStats summarizes the static layout of one level.
type LevelStats struct {
	Width         int
	Height        int
	Counts        map[engine.Kind]int
	FreeTiles     int
	DoorReachable bool
}

// Analyze computes layout statistics for a level. Filler actors are not
// counted; they are placed when the level is built.
func Analyze(level *engine.LevelConfig) (LevelStats, error) {
	tiles, err := engine.ParseLayout(level.Layout)
	if err != nil {
		return LevelStats{}, err
	}
	stats := LevelStats{
		Height: len(tiles),
		Width:  len(tiles[0]),
		Counts: make(map[engine.Kind]int),
	}
	for _, row := range tiles {
		for _, token := range row {
			kind, ok := level.Legend[token]
			if !ok {
				stats.FreeTiles++
				continue
			}
			stats.Counts[kind]++
		}
	}
	stats.DoorReachable, err = engine.DoorReachable(level)
	if err != nil {
		return LevelStats{}, err
	}
	return stats, nil
}

// Monsters counts the monsters of every kind in the layout.
func (s LevelStats) Monsters() int {
	n := 0
	for kind, c := range s.Counts {
		if kind.IsMonster() {
			n += c
		}
	}
	return n
}

// File loads and validates one pack file.
func File(path string) Result {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return Result{File: filepath.Base(path), Errors: []string{err.Error()}}
	}
	return Pack(filepath.Base(path), cfg)
}

// Pack validates an already loaded pack. Every level is built once with a
// fixed seed to prove its filler fits.
func Pack(name string, cfg *engine.GameConfig) Result {
	result := Result{File: name, Valid: true}
	if err := engine.ValidateGameConfig(cfg); err != nil {
		result.fail("%v", err)
		return result
	}
	rng := rand.New(rand.NewPCG(1, 1))

	for i := range cfg.Levels {
		level := &cfg.Levels[i]
		label := fmt.Sprintf("level %d (%s)", i+1, level.Name)

		stats, err := Analyze(level)
		if err != nil {
			result.fail("%s: %v", label, err)
			continue
		}
		if !stats.DoorReachable {
			result.fail("%s: door is not reachable from the player", label)
		}

		filler := func(kind engine.Kind) int {
			if level.Filler.Kind == kind {
				return level.Filler.Count
			}
			return 0
		}
		switch level.Goal {
		case engine.GoalStars:
			if stars := stats.Counts[engine.KindStar] + filler(engine.KindStar); stars < level.GoalStars {
				result.fail("%s: goal needs %d stars but only %d exist", label, level.GoalStars, stars)
			}
		case engine.GoalMonstersAndKey:
			if stats.Counts[engine.KindKey]+filler(engine.KindKey) == 0 {
				result.fail("%s: goal needs a key but the level has none", label)
			}
			fallthrough
		case engine.GoalMonsters:
			if stats.Counts[engine.KindGhost] > 0 {
				result.fail("%s: ghosts cannot be squished", label)
			}
			if level.Movement == engine.MovePrecise {
				result.fail("%s: boxes cannot be pushed with precise movement", label)
			}
			if monsters := stats.Monsters(); monsters > 0 && stats.Counts[engine.KindBox]+filler(engine.KindBox) == 0 {
				result.fail("%s: %d monsters but no boxes to squish them with", label, monsters)
			}
		}

		if _, err := engine.BuildWorld(level, i, rng); err != nil {
			result.fail("%s: %v", label, err)
			continue
		}

		result.Info = append(result.Info, fmt.Sprintf("✓ %s: %dx%d, goal %s, %d free tiles, %d %s filler",
			label, stats.Width, stats.Height, level.Goal, stats.FreeTiles, level.Filler.Count, level.Filler.Kind))
	}

	if result.Valid {
		result.Info = append([]string{
			fmt.Sprintf("✓ Name: %s", cfg.Name),
			fmt.Sprintf("✓ Levels: %d", len(cfg.Levels)),
		}, result.Info...)
	}
	return result
}

// Dir validates every pack file in dir, sorted by name.
func Dir(dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && config.IsConfigFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	for _, name := range names {
		results = append(results, File(filepath.Join(dir, name)))
	}
	return results, nil
}

// Report prints a concise report and returns whether every result is valid.
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}
		allValid = false
		fmt.Fprintln(w, "❌ INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  ✗ "+err)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintf(w, "✅ All %d level packs are valid!\n", len(results))
	} else {
		fmt.Fprintln(w, "❌ Some level packs have errors")
	}
	return allValid
}
