package service

import (
	"fmt"
	"time"

	"github.com/wricardo/maze-puzzle-game/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Seed           uint64             `json:"seed"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Snapshot       *engine.Snapshot   `json:"snapshot"`
	GameConfig     *engine.GameConfig `json:"game_config,omitempty"`
}

// TickInput is the wire form of one tick's input. Held lists the direction
// keys down for the whole tick; Pressed is a single key-down event.
type TickInput struct {
	Held    []string `json:"held,omitempty"`
	Pressed string   `json:"pressed,omitempty"`
}

// ToEngine converts the wire input to the engine's input state.
func (in TickInput) ToEngine() (engine.Input, error) {
	var out engine.Input
	for _, name := range in.Held {
		d, err := engine.ParseDirection(name)
		if err != nil {
			return engine.Input{}, fmt.Errorf("held key: %w", err)
		}
		out.Held = out.Held.With(d)
	}
	d, err := engine.ParseDirection(in.Pressed)
	if err != nil {
		return engine.Input{}, fmt.Errorf("pressed key: %w", err)
	}
	out.Pressed = d
	return out, nil
}

// TickResult contains the result of a single tick
type TickResult struct {
	Snapshot *engine.Snapshot `json:"snapshot"`
	Message  string           `json:"message,omitempty"`
	Events   []GameEvent      `json:"events,omitempty"`
}

// BulkTickResult contains the result of multiple ticks
type BulkTickResult struct {
	// Summary
	TicksExecuted  int              `json:"ticks_executed"`
	RequestedTicks int              `json:"requested_ticks"`
	Snapshot       *engine.Snapshot `json:"snapshot"`
	Events         []GameEvent      `json:"events"`
	StoppedReason  string           `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string           `json:"stop_reason_code,omitempty"` // Machine-friendly code: won|game_over
	StoppedOnTick  int              `json:"stopped_on_tick,omitempty"`  // 1-based index of the tick that ended the game
	Truncated      bool             `json:"truncated,omitempty"`
	Limit          int              `json:"limit,omitempty"`

	// Start/end snapshot
	StartLevel   int `json:"start_level"`
	EndLevel     int `json:"end_level"`
	StarsDelta   int `json:"stars_delta"`
	MonstersLeft int `json:"monsters_left"`

	// Final status aids
	GameOver bool   `json:"game_over"`
	Message  string `json:"message,omitempty"`
	Threat   string `json:"threat,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // engine event types plus "reset" and "restart"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
	Level     int             `json:"level"`
	Tick      int             `json:"tick"`
}

// ConfigInfo provides information about a level pack
type ConfigInfo struct {
	Filename    string   `json:"filename"`
	ConfigID    string   `json:"config_id"` // The identifier to use for session creation
	Name        string   `json:"name"`      // Display name
	Description string   `json:"description"`
	Levels      int      `json:"levels"`
	LevelNames  []string `json:"level_names"`
	BuiltIn     bool     `json:"built_in,omitempty"`
}
