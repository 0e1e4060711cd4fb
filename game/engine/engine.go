package engine

import (
	"fmt"
	"math/rand/v2"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Simulation
	Tick(in Input) *TickResult
	Snapshot() *Snapshot
	Reset() error
	Restart() error

	// Game state
	Status() Status
	IsOver() bool
	Level() int
	TickCount() int
	World() *World

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error
}

// GameEngine implements the Engine interface. It is single-threaded: callers
// must not run overlapping ticks.
type GameEngine struct {
	config  *GameConfig
	seed    uint64
	rng     *rand.Rand
	world   *World
	level   int
	status  Status
	tick    int
	message string
}

// NewEngine creates a new game engine with the provided level pack. The seed
// drives filler placement so a given seed always lays out the same stage.
func NewEngine(config *GameConfig, seed uint64) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	for i := range config.Levels {
		if len(config.Levels[i].Layout) == 0 {
			return nil, fmt.Errorf("level %d: map_file %q has not been resolved", i, config.Levels[i].MapFile)
		}
	}

	e := &GameEngine{
		config: config,
		seed:   seed,
	}
	if err := e.Reset(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a new game engine running the built-in pack
func NewEngineWithDefaults(seed uint64) *GameEngine {
	e, err := NewEngine(DefaultGameConfig(), seed)
	if err != nil {
		panic(fmt.Sprintf("built-in level pack is invalid: %v", err))
	}
	return e
}

// Tick advances the simulation by one step: every live actor moves in
// registration order, then the level state machine runs. Actors removed
// earlier in the tick are skipped. Once the game is won or lost Tick only
// reports the final snapshot.
func (e *GameEngine) Tick(in Input) *TickResult {
	if e.status.Terminal() {
		return &TickResult{Snapshot: e.Snapshot()}
	}
	e.tick++
	e.message = ""

	events := e.world.advance(in)
	events = append(events, e.evaluate()...)
	return &TickResult{Snapshot: e.Snapshot(), Events: events}
}

// Snapshot returns the presentation state without advancing the simulation
func (e *GameEngine) Snapshot() *Snapshot {
	w := e.world
	level := e.currentLevel()
	width, height := w.Size()

	s := &Snapshot{
		Level:        e.level,
		LevelName:    level.Name,
		LevelCount:   len(e.config.Levels),
		Status:       e.status,
		GoalMessage:  objective(level),
		Message:      e.message,
		Width:        width,
		Height:       height,
		Tick:         e.tick,
		GoalStars:    level.GoalStars,
		MonsterCount: w.MonsterCount(),
		KeyCollected: w.KeyCollected(),
		Actors:       make([]RenderItem, 0, w.reg.Len()),
	}
	if p := w.Player(); p != nil {
		pos := p.Tile()
		s.Player = &pos
		s.PlayerAlive = true
		s.StarsCollected = p.StarCount()
	} else {
		// The dead player's actor is still registered; report its stars.
		for _, a := range w.reg.Live() {
			if a.Kind == KindPlayer {
				s.StarsCollected = a.StarCount()
				break
			}
		}
	}
	for _, a := range w.reg.Live() {
		x, y := a.Location()
		s.Actors = append(s.Actors, RenderItem{ID: a.ID, Kind: a.Kind, X: x, Y: y})
	}
	return s
}

// Reset restarts the game from the first level with the original seed
func (e *GameEngine) Reset() error {
	e.rng = rand.New(rand.NewPCG(e.seed, e.seed^0x9e3779b97f4a7c15))
	e.level = 0
	e.tick = 0
	e.status = StatusRunning
	e.message = ""
	return e.loadLevel()
}

// Restart rebuilds the current level, keeping the level index. It also
// revives a lost game on the level where it was lost.
func (e *GameEngine) Restart() error {
	if e.status == StatusWon {
		return nil
	}
	e.status = StatusRunning
	e.message = ""
	return e.loadLevel()
}

// Status returns the overall game status
func (e *GameEngine) Status() Status {
	return e.status
}

// IsOver reports whether the game has been won or lost
func (e *GameEngine) IsOver() bool {
	return e.status.Terminal()
}

// Level returns the current level index
func (e *GameEngine) Level() int {
	return e.level
}

// TickCount returns the number of ticks simulated since the last reset
func (e *GameEngine) TickCount() int {
	return e.tick
}

// World returns the current level's simulation context
func (e *GameEngine) World() *World {
	return e.world
}

// Seed returns the seed used for filler placement
func (e *GameEngine) Seed() uint64 {
	return e.seed
}

// GetConfig returns the current level pack
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new level pack and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}
	prev := e.config
	e.config = config
	if err := e.Reset(); err != nil {
		e.config = prev
		return err
	}
	return nil
}

// BulkTick runs the inputs in sequence, stopping early once the game ends
func (e *GameEngine) BulkTick(inputs []Input) []*TickResult {
	results := make([]*TickResult, 0, len(inputs))
	for _, in := range inputs {
		if e.IsOver() {
			break
		}
		results = append(results, e.Tick(in))
	}
	return results
}
