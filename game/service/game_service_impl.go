package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wricardo/maze-puzzle-game/game/engine"
)

// ErrConfigNotFound is returned when a session asks for a pack that does not exist
var ErrConfigNotFound = errors.New("configuration not found")

// gameServiceImpl implements the GameService interface. A single mutex
// serializes ticks so no engine ever sees overlapping calls.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session. A zero seed picks a random one.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, seed uint64) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	configID := configName
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.configs.DefaultID()
	}

	// Let the session manager generate the ID
	session, err := s.sessions.Create("", configID, config, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(session, true), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sessionInfo(session, true), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess, false))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Tick advances a session by one simulation step
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string, input engine.Input, reset bool) (*TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		if err := sess.Engine.Reset(); err != nil {
			return nil, fmt.Errorf("failed to reset game: %w", err)
		}
		events = append(events, resetEvent(sess.Engine))
	}

	res := sess.Engine.Tick(input)
	events = append(events, convertEvents(res.Events, res.Snapshot.Tick)...)

	return &TickResult{
		Snapshot: res.Snapshot,
		Message:  res.Snapshot.Message,
		Events:   events,
	}, nil
}

// BulkTick runs several ticks in sequence, stopping once the game ends
func (s *gameServiceImpl) BulkTick(ctx context.Context, sessionID string, inputs []engine.Input, reset bool) (*BulkTickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkTickResult{
		RequestedTicks: len(inputs),
		Events:         make([]GameEvent, 0),
	}

	if reset {
		if err := sess.Engine.Reset(); err != nil {
			return nil, fmt.Errorf("failed to reset game: %w", err)
		}
		result.Events = append(result.Events, resetEvent(sess.Engine))
	}
	result.StartLevel = sess.Engine.Level()

	// Limit ticks to prevent abuse
	if len(inputs) > engine.MaxBulkTicks {
		result.Truncated = true
		result.Limit = engine.MaxBulkTicks
		inputs = inputs[:engine.MaxBulkTicks]
	}

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sess.Engine.IsOver() {
			result.StoppedReason = "game already over"
			result.StopReasonCode = string(sess.Engine.Status())
			break
		}

		res := sess.Engine.Tick(in)
		result.TicksExecuted++
		for _, ev := range res.Events {
			if ev.Type == engine.EventStarCollected {
				result.StarsDelta++
			}
		}
		result.Events = append(result.Events, convertEvents(res.Events, res.Snapshot.Tick)...)

		if res.Snapshot.Status.Terminal() {
			result.StopReasonCode = string(res.Snapshot.Status)
			result.StoppedOnTick = i + 1
			result.StoppedReason = fmt.Sprintf("tick %d ended the game: %s", i+1, res.Snapshot.Message)
			break
		}
	}

	snap := sess.Engine.Snapshot()
	result.Snapshot = snap
	result.EndLevel = snap.Level
	result.MonstersLeft = snap.MonsterCount
	result.GameOver = snap.Status.Terminal()
	result.Message = snap.Message
	result.Threat = engine.AnalyzeThreat(snap)
	return result, nil
}

// Reset restarts a session's game from the first level
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.Engine.Reset(); err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}
	return sess.Engine.Snapshot(), nil
}

// RestartLevel rebuilds the session's current level
func (s *gameServiceImpl) RestartLevel(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.Engine.Restart(); err != nil {
		return nil, fmt.Errorf("failed to restart level: %w", err)
	}
	return sess.Engine.Snapshot(), nil
}

// GetSnapshot returns the current presentation state of a session
func (s *gameServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return sess.Engine.Snapshot(), nil
}

// ListConfigs returns all available level packs
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level pack
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a level pack
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func sessionInfo(sess *Session, withConfig bool) *SessionInfo {
	info := &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		Seed:           sess.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Snapshot:       sess.Engine.Snapshot(),
	}
	if withConfig {
		info.GameConfig = sess.Config
	}
	return info
}

func resetEvent(e *engine.GameEngine) GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to the first level",
		Timestamp: time.Now(),
		Level:     e.Level(),
	}
}

// convertEvents stamps engine events for the API
func convertEvents(events []engine.Event, tick int) []GameEvent {
	now := time.Now()
	out := make([]GameEvent, 0, len(events))
	for _, ev := range events {
		msg := ev.Message
		if msg == "" {
			msg = describeEvent(ev.Type)
		}
		out = append(out, GameEvent{
			Type:      string(ev.Type),
			Message:   msg,
			Timestamp: now,
			Position:  ev.Position,
			Level:     ev.Level,
			Tick:      tick,
		})
	}
	return out
}

func describeEvent(t engine.EventType) string {
	switch t {
	case engine.EventStarCollected:
		return "Star collected"
	case engine.EventKeyCollected:
		return "Key collected"
	case engine.EventBoxPushed:
		return "Box pushed"
	case engine.EventMonsterSquished:
		return "Monster squished"
	case engine.EventPlayerDied:
		return "Player caught by a monster"
	}
	return string(t)
}
