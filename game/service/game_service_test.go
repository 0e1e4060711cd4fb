package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wricardo/maze-puzzle-game/game/engine"
	"github.com/wricardo/maze-puzzle-game/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id, configID string, config *engine.GameConfig, seed uint64) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config, seed)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		ConfigID:       configID,
		Seed:           seed,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id, configID string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, configID, config, 1)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
	saved   map[string]*engine.GameConfig
}

func corridorConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "corridor",
		Description: "A corridor with a door at the end",
		Messages:    engine.GameMessages{Won: "Won!", Lost: "Lost!"},
		Levels: []engine.LevelConfig{{
			Name: "corridor",
			Layout: []string{
				"X X X X X X",
				"X P . . D X",
				"X X X X X X",
			},
			Legend:   engine.StandardLegend(engine.KindSquishy),
			Goal:     engine.GoalMonsters,
			Movement: engine.MoveSmooth,
			Messages: engine.LevelMessages{Objective: "Walk right", Rejected: "Nope"},
		}},
	}
}

func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"corridor": corridorConfig(),
			"classic":  engine.DefaultGameConfig(),
		},
		saved: make(map[string]*engine.GameConfig),
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Levels:      len(config.Levels),
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["classic"]
}

func (m *MockConfigManager) DefaultID() string {
	return "classic"
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	m.saved[name] = config
	return nil
}

func newTestService() (service.GameService, *MockSessionManager, *MockConfigManager) {
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	return service.NewGameService(sessions, configs), sessions, configs
}

func right() engine.Input {
	return engine.Input{Held: engine.HeldKeys(engine.Right)}
}

// Test cases
func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	tests := []struct {
		name       string
		configName string
		wantID     string
		wantErr    bool
	}{
		{
			name:       "create with default config",
			configName: "",
			wantID:     "classic",
		},
		{
			name:       "create with specific config",
			configName: "corridor",
			wantID:     "corridor",
		},
		{
			name:       "create with invalid config",
			configName: "nonexistent",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName, 7)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, service.ErrConfigNotFound) {
					t.Errorf("Expected ErrConfigNotFound, got %v", err)
				}
				return
			}
			if session == nil || session.Snapshot == nil {
				t.Fatal("CreateSession() returned nil session")
			}
			if session.ConfigName != tt.wantID {
				t.Errorf("Expected config id %q, got %q", tt.wantID, session.ConfigName)
			}
			if session.Seed != 7 {
				t.Errorf("Expected seed 7, got %d", session.Seed)
			}
		})
	}
}

func TestGameService_Tick(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	info, err := svc.CreateSession(ctx, "corridor", 1)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	result, err := svc.Tick(ctx, info.ID, right(), false)
	if err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if got := *result.Snapshot.Player; got != (engine.Position{X: 2, Y: 1}) {
		t.Errorf("Expected player at (2,1), got %+v", got)
	}
	if result.Snapshot.Tick != 1 {
		t.Errorf("Expected tick 1, got %d", result.Snapshot.Tick)
	}

	result, err = svc.Tick(ctx, info.ID, engine.Input{}, true)
	if err != nil {
		t.Fatalf("Tick with reset failed: %v", err)
	}
	if len(result.Events) == 0 || result.Events[0].Type != "reset" {
		t.Errorf("Expected reset event first, got %+v", result.Events)
	}
	if got := *result.Snapshot.Player; got != (engine.Position{X: 1, Y: 1}) {
		t.Errorf("Expected player back at start, got %+v", got)
	}

	if _, err := svc.Tick(ctx, "missing", right(), false); err == nil {
		t.Error("Expected error for unknown session")
	}
}

func TestGameService_BulkTick(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	info, err := svc.CreateSession(ctx, "corridor", 1)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	inputs := []engine.Input{right(), right(), right(), right(), right()}
	result, err := svc.BulkTick(ctx, info.ID, inputs, false)
	if err != nil {
		t.Fatalf("BulkTick failed: %v", err)
	}

	if result.TicksExecuted != 3 {
		t.Errorf("Expected 3 ticks before the door, got %d", result.TicksExecuted)
	}
	if result.RequestedTicks != 5 {
		t.Errorf("Expected 5 requested ticks, got %d", result.RequestedTicks)
	}
	if result.StopReasonCode != string(engine.StatusWon) || result.StoppedOnTick != 3 {
		t.Errorf("Expected stop on tick 3 with won, got %q on %d", result.StopReasonCode, result.StoppedOnTick)
	}
	if !result.GameOver {
		t.Error("Expected game to be over")
	}
	if result.Message != "Won!" {
		t.Errorf("Expected won message, got %q", result.Message)
	}

	// A finished game does not tick any further.
	result, err = svc.BulkTick(ctx, info.ID, inputs, false)
	if err != nil {
		t.Fatalf("BulkTick failed: %v", err)
	}
	if result.TicksExecuted != 0 {
		t.Errorf("Expected no ticks after the game ended, got %d", result.TicksExecuted)
	}
}

func TestGameService_BulkTickTruncates(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	info, err := svc.CreateSession(ctx, "corridor", 1)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	inputs := make([]engine.Input, engine.MaxBulkTicks+10)
	result, err := svc.BulkTick(ctx, info.ID, inputs, false)
	if err != nil {
		t.Fatalf("BulkTick failed: %v", err)
	}
	if !result.Truncated || result.Limit != engine.MaxBulkTicks {
		t.Errorf("Expected truncation at %d, got truncated=%v limit=%d", engine.MaxBulkTicks, result.Truncated, result.Limit)
	}
	if result.TicksExecuted != engine.MaxBulkTicks {
		t.Errorf("Expected %d ticks, got %d", engine.MaxBulkTicks, result.TicksExecuted)
	}
}

func TestGameService_BulkTickCancelled(t *testing.T) {
	svc, _, _ := newTestService()

	info, err := svc.CreateSession(context.Background(), "corridor", 1)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.BulkTick(ctx, info.ID, []engine.Input{right()}, false); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateSession(ctx, "corridor", uint64(i+1)); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Errorf("Expected 3 sessions, got %d", len(sessions))
	}
	for _, s := range sessions {
		if s.GameConfig != nil {
			t.Error("Expected list entries to omit the full config")
		}
	}
}

func TestGameService_DeleteSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	info, err := svc.CreateSession(ctx, "corridor", 1)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, info.ID); err == nil {
		t.Error("Expected deleted session to be gone")
	}
}

func TestGameService_ResetAndRestart(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	info, err := svc.CreateSession(ctx, "corridor", 1)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	svc.Tick(ctx, info.ID, right(), false)

	snap, err := svc.RestartLevel(ctx, info.ID)
	if err != nil {
		t.Fatalf("RestartLevel failed: %v", err)
	}
	if got := *snap.Player; got != (engine.Position{X: 1, Y: 1}) {
		t.Errorf("Expected player back at start, got %+v", got)
	}

	svc.Tick(ctx, info.ID, right(), false)
	snap, err = svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if snap.Tick != 0 || snap.Level != 0 {
		t.Errorf("Expected fresh game, got tick %d level %d", snap.Tick, snap.Level)
	}

	current, err := svc.GetSnapshot(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if current.Tick != 0 {
		t.Errorf("Expected snapshot tick 0, got %d", current.Tick)
	}
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc, _, configs := newTestService()

	list, err := svc.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(list))
	}

	if err := svc.SaveConfig(ctx, "bad", &engine.GameConfig{}); err == nil {
		t.Error("Expected invalid config to be rejected")
	}
	if err := svc.SaveConfig(ctx, "copy", corridorConfig()); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if _, ok := configs.saved["copy"]; !ok {
		t.Error("Expected config to be saved")
	}

	cfg, err := svc.LoadConfig(ctx, "classic")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(cfg.Levels) != 3 {
		t.Errorf("Expected 3 levels, got %d", len(cfg.Levels))
	}
}

func TestTickInputToEngine(t *testing.T) {
	in := service.TickInput{Held: []string{"left", "W"}, Pressed: "d"}
	got, err := in.ToEngine()
	if err != nil {
		t.Fatalf("ToEngine failed: %v", err)
	}
	if !got.Held.Has(engine.Left) || !got.Held.Has(engine.Up) || got.Held.Has(engine.Right) {
		t.Errorf("Unexpected held keys: %v", got.Held)
	}
	if got.Pressed != engine.Right {
		t.Errorf("Expected pressed right, got %v", got.Pressed)
	}

	if _, err := (service.TickInput{Held: []string{"sideways"}}).ToEngine(); !errors.Is(err, engine.ErrUnknownDirection) {
		t.Errorf("Expected ErrUnknownDirection, got %v", err)
	}
}
