package engine

import (
	"fmt"
	"strings"
)

// goalMet evaluates the level's door predicate.
func goalMet(level *LevelConfig, w *World, player *Actor) bool {
	switch level.Goal {
	case GoalStars:
		return player.StarCount() >= level.GoalStars
	case GoalMonsters:
		return w.MonsterCount() == 0
	case GoalMonstersAndKey:
		return w.MonsterCount() == 0 && w.KeyCollected()
	}
	return false
}

// objective renders the level's goal message.
func objective(level *LevelConfig) string {
	if strings.Contains(level.Messages.Objective, "%d") {
		return fmt.Sprintf(level.Messages.Objective, level.GoalStars)
	}
	return level.Messages.Objective
}

// evaluate runs the level state machine once all actors have moved.
func (e *GameEngine) evaluate() []Event {
	w := e.world
	player := w.Player()
	if player == nil {
		e.status = StatusGameOver
		e.message = e.config.Messages.Lost
		return nil
	}

	tile := player.Tile()
	if !player.Aligned() || !w.reg.KindAt(tile, KindDoor) {
		return nil
	}

	level := e.currentLevel()
	if !goalMet(level, w, player) {
		// Entry is refused with a single nudge back along x.
		player.moveBy(-1, 0)
		e.message = level.Messages.Rejected
		return []Event{{Type: EventDoorRejected, Message: e.message, Position: tile, Level: e.level}}
	}

	if e.level == len(e.config.Levels)-1 {
		e.status = StatusWon
		e.message = e.config.Messages.Won
		return []Event{{Type: EventWon, Message: e.message, Position: tile, Level: e.level}}
	}

	e.level++
	if err := e.loadLevel(); err != nil {
		e.status = StatusGameOver
		e.message = fmt.Sprintf("failed to load level %d: %v", e.level, err)
		return []Event{{Type: EventPlayerDied, Message: e.message, Position: tile, Level: e.level}}
	}
	return []Event{{
		Type:     EventLevelAdvanced,
		Message:  e.config.Levels[e.level].Name,
		Position: tile,
		Level:    e.level,
	}}
}

// loadLevel discards the registry and rebuilds it for the current level.
func (e *GameEngine) loadLevel() error {
	w, err := BuildWorld(e.currentLevel(), e.level, e.rng)
	if err != nil {
		return err
	}
	e.world = w
	return nil
}

func (e *GameEngine) currentLevel() *LevelConfig {
	return &e.config.Levels[e.level]
}
