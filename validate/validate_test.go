package validate

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/maze-puzzle-game/game/engine"
)

func testPack(level engine.LevelConfig) *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Test Pack",
		Description: "Test pack",
		Messages:    engine.GameMessages{Won: "Won!", Lost: "Lost!"},
		Levels:      []engine.LevelConfig{level},
	}
}

func testLevel(goal engine.GoalType, layout ...string) engine.LevelConfig {
	legend := engine.StandardLegend(engine.KindSquishy)
	legend["B"] = engine.KindBox
	legend["S"] = engine.KindStar
	return engine.LevelConfig{
		Name:         "test",
		Layout:       layout,
		Legend:       legend,
		Goal:         goal,
		Movement:     engine.MoveSmooth,
		MonsterDelay: engine.DefaultMonsterDelay,
		GhostStep:    engine.DefaultGhostStep,
		Messages:     engine.LevelMessages{Objective: "Go", Rejected: "No"},
	}
}

func writePack(t *testing.T, dir, name string, cfg *engine.GameConfig) string {
	t.Helper()
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Failed to marshal pack: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write pack: %v", err)
	}
	return path
}

func TestAnalyze(t *testing.T) {
	level := testLevel(engine.GoalMonsters,
		"X X X X X X",
		"X P . B M X",
		"X . X . D X",
		"X X X X X X",
	)

	stats, err := Analyze(&level)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if stats.Width != 6 || stats.Height != 4 {
		t.Errorf("Expected 6x4, got %dx%d", stats.Width, stats.Height)
	}
	if stats.Counts[engine.KindWall] != 17 {
		t.Errorf("Expected 17 walls, got %d", stats.Counts[engine.KindWall])
	}
	if stats.FreeTiles != 3 {
		t.Errorf("Expected 3 free tiles, got %d", stats.FreeTiles)
	}
	if stats.Monsters() != 1 {
		t.Errorf("Expected 1 monster, got %d", stats.Monsters())
	}
	if !stats.DoorReachable {
		t.Error("Expected door to be reachable")
	}
}

func TestPack(t *testing.T) {
	tests := []struct {
		name      string
		level     engine.LevelConfig
		valid     bool
		wantError string
	}{
		{
			name: "finishable monsters level",
			level: testLevel(engine.GoalMonsters,
				"X X X X X X",
				"X P . B M X",
				"X . . . D X",
				"X X X X X X",
			),
			valid: true,
		},
		{
			name: "walled off door",
			level: testLevel(engine.GoalMonsters,
				"X X X X X",
				"X P X D X",
				"X X X X X",
			),
			wantError: "door is not reachable",
		},
		{
			name: "not enough stars",
			level: func() engine.LevelConfig {
				l := testLevel(engine.GoalStars,
					"X X X X X X",
					"X P S . D X",
					"X X X X X X",
				)
				l.GoalStars = 3
				l.Filler = engine.FillerConfig{Kind: engine.KindBox, Count: 1}
				return l
			}(),
			wantError: "goal needs 3 stars but only 1 exist",
		},
		{
			name: "monsters without boxes",
			level: testLevel(engine.GoalMonsters,
				"X X X X X X",
				"X P . M D X",
				"X X X X X X",
			),
			wantError: "no boxes",
		},
		{
			name: "key goal without key",
			level: testLevel(engine.GoalMonstersAndKey,
				"X X X X X",
				"X P . D X",
				"X X X X X",
			),
			wantError: "needs a key",
		},
		{
			name: "ghost on a squish level",
			level: testLevel(engine.GoalMonsters,
				"X X X X X X",
				"X P B C D X",
				"X X X X X X",
			),
			wantError: "ghosts cannot be squished",
		},
		{
			name: "precise squish level",
			level: func() engine.LevelConfig {
				l := testLevel(engine.GoalMonsters,
					"X X X X X X",
					"X P . B M X",
					"X . . . D X",
					"X X X X X X",
				)
				l.Movement = engine.MovePrecise
				return l
			}(),
			wantError: "precise movement",
		},
		{
			name: "filler does not fit",
			level: func() engine.LevelConfig {
				l := testLevel(engine.GoalMonsters,
					"X X X X X",
					"X P . D X",
					"X X X X X",
				)
				l.Filler = engine.FillerConfig{Kind: engine.KindBox, Count: 3}
				return l
			}(),
			wantError: "not enough free tiles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Pack("test.json", testPack(tt.level))
			if result.Valid != tt.valid {
				t.Fatalf("Expected valid=%v, got errors %v", tt.valid, result.Errors)
			}
			if tt.wantError == "" {
				if len(result.Info) == 0 || !strings.Contains(result.Info[0], "Test Pack") {
					t.Errorf("Expected info lines, got %v", result.Info)
				}
				return
			}
			joined := strings.Join(result.Errors, "\n")
			if !strings.Contains(joined, tt.wantError) {
				t.Errorf("Expected error containing %q, got %v", tt.wantError, result.Errors)
			}
		})
	}
}

func TestPack_BuiltIn(t *testing.T) {
	result := Pack("classic", engine.DefaultGameConfig())
	if !result.Valid {
		t.Fatalf("Expected built-in pack to be valid, got %v", result.Errors)
	}
	if len(result.Info) != 5 {
		t.Errorf("Expected name, level count and 3 level lines, got %v", result.Info)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := writePack(t, dir, "ok.json", testPack(testLevel(engine.GoalMonsters,
			"X X X X X",
			"X P . D X",
			"X X X X X",
		)))
		result := File(path)
		if !result.Valid || result.File != "ok.json" {
			t.Errorf("Expected ok.json to be valid, got %+v", result)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		os.WriteFile(path, []byte("{not json"), 0644)
		result := File(path)
		if result.Valid || len(result.Errors) == 0 {
			t.Error("Expected malformed pack to be invalid")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		result := File(filepath.Join(dir, "nope.json"))
		if result.Valid {
			t.Error("Expected missing file to be invalid")
		}
	})
}

func TestDirAndReport(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "b_good.json", testPack(testLevel(engine.GoalMonsters,
		"X X X X X",
		"X P . D X",
		"X X X X X",
	)))
	writePack(t, dir, "a_walled.json", testPack(testLevel(engine.GoalMonsters,
		"X X X X X",
		"X P X D X",
		"X X X X X",
	)))
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)

	results, err := Dir(dir)
	if err != nil {
		t.Fatalf("Dir failed: %v", err)
	}
	if len(results) != 2 || results[0].File != "a_walled.json" || results[1].File != "b_good.json" {
		t.Fatalf("Expected two sorted results, got %+v", results)
	}

	var out bytes.Buffer
	if Report(&out, results) {
		t.Error("Expected report to flag the walled pack")
	}
	for _, want := range []string{"❌ INVALID", "✅ VALID", "door is not reachable", "Some level packs have errors"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in report:\n%s", want, out.String())
		}
	}

	out.Reset()
	if !Report(&out, results[1:]) || !strings.Contains(out.String(), "All 1 level packs are valid") {
		t.Errorf("Expected all-valid report, got:\n%s", out.String())
	}

	if _, err := Dir(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestShippedPacks(t *testing.T) {
	results, err := Dir(filepath.Join("..", "configs"))
	if err != nil {
		t.Fatalf("Dir failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected at least one shipped pack")
	}
	for _, result := range results {
		if !result.Valid {
			t.Errorf("%s is invalid: %v", result.File, result.Errors)
		}
	}
}
