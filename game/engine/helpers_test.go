package engine

import (
	"math/rand/v2"
	"testing"
)

var testLegend = map[string]Kind{
	"P": KindPlayer,
	"X": KindWall,
	"D": KindDoor,
	"B": KindBox,
	"S": KindStar,
	"K": KindKey,
	"G": KindGhost,
	"M": KindSquishy,
	"H": KindSquishyHorizontal,
	"V": KindSquishyVertical,
}

func testLevel(layout ...string) LevelConfig {
	return LevelConfig{
		Name:         "test",
		Layout:       layout,
		Legend:       testLegend,
		Goal:         GoalMonsters,
		Movement:     MoveSmooth,
		GhostStep:    DefaultGhostStep,
		MonsterDelay: 1,
		Messages: LevelMessages{
			Objective: "Reach the door",
			Rejected:  "Not yet",
		},
	}
}

func testGameConfig(levels ...LevelConfig) *GameConfig {
	return &GameConfig{
		Name:        "test",
		Description: "Test pack",
		Levels:      levels,
		Messages: GameMessages{
			Won:  "You won",
			Lost: "You lost",
		},
	}
}

func buildTestWorld(t *testing.T, level LevelConfig) *World {
	t.Helper()
	w, err := BuildWorld(&level, 0, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("BuildWorld failed: %v", err)
	}
	return w
}

func newTestEngine(t *testing.T, levels ...LevelConfig) *GameEngine {
	t.Helper()
	e, err := NewEngine(testGameConfig(levels...), 1)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func hold(dirs ...Direction) Input {
	return Input{Held: HeldKeys(dirs...)}
}

func findKind(w *World, k Kind) *Actor {
	for _, a := range w.reg.Live() {
		if a.Kind == k {
			return a
		}
	}
	return nil
}

func hasEvent(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}
