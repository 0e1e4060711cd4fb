package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/maze-puzzle-game/game/engine"
	"github.com/wricardo/maze-puzzle-game/game/session"
	"github.com/wricardo/maze-puzzle-game/transport/mcp"
)

func corridorPack(name string) *engine.GameConfig {
	return &engine.GameConfig{
		Name:        name,
		Description: "One straight corridor",
		Messages:    engine.GameMessages{Won: "Won!", Lost: "Lost!"},
		Levels: []engine.LevelConfig{{
			Name:     "corridor",
			Layout:   []string{"X X X X X", "X P . D X", "X X X X X"},
			Legend:   engine.StandardLegend(engine.KindSquishy),
			Goal:     engine.GoalMonsters,
			Movement: engine.MoveSmooth,
			Messages: engine.LevelMessages{Objective: "Walk right", Rejected: "Nope"},
		}},
	}
}

func writePack(t *testing.T, dir, file string, cfg *engine.GameConfig) {
	t.Helper()
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func testApp(out *bytes.Buffer) *cli.Command {
	app := newApp()
	app.Writer = out
	app.ErrWriter = out
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}
	return app
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Maze Puzzle Game" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	for _, name := range []string{"serve", "mcp", "play", "validate", "version"} {
		if app.Command(name) == nil {
			t.Errorf("Expected %s command", name)
		}
	}
	if app.Action == nil {
		t.Error("Expected the root command to serve by default")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	if err := testApp(&out).Run(context.Background(), []string{"maze", "version"}); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "Maze Puzzle Game v"+Version) {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "corridor.json", corridorPack("corridor"))

	var out bytes.Buffer
	err := testApp(&out).Run(context.Background(), []string{"maze", "--config-dir", dir, "validate"})
	if err != nil {
		t.Fatalf("Expected valid packs, got %v\n%s", err, out.String())
	}
	for _, want := range []string{"classic (built-in)", "corridor.json", "All 2 level packs are valid"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in output:\n%s", want, out.String())
		}
	}

	broken := filepath.Join(dir, "broken.json")
	os.WriteFile(broken, []byte("{"), 0644)

	out.Reset()
	err = testApp(&out).Run(context.Background(), []string{"maze", "validate", broken})
	if err == nil {
		t.Error("Expected an error for an invalid pack")
	}
	if !strings.Contains(out.String(), "❌ INVALID") {
		t.Errorf("Expected invalid report, got:\n%s", out.String())
	}
}

func TestLoadPack(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "corridor.json", corridorPack("corridor"))
	missing := filepath.Join(dir, "missing")

	tests := []struct {
		name     string
		dir      string
		id       string
		wantName string
		wantErr  bool
	}{
		{"default from directory", dir, "", "classic", false},
		{"pack from directory", dir, "corridor", "corridor", false},
		{"unknown pack", dir, "nope", "", true},
		{"built-in without directory", missing, "", "classic", false},
		{"named built-in without directory", missing, "classic", "classic", false},
		{"other pack without directory", missing, "corridor", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pack, err := loadPack(tt.dir, tt.id)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if pack.Name != tt.wantName {
				t.Errorf("Expected pack %s, got %s", tt.wantName, pack.Name)
			}
		})
	}
}

func TestInitializeServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService, err := initializeServices(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	info, err := gameService.CreateSession(ctx, "", 1)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.ConfigName != "classic" {
		t.Errorf("Expected built-in pack, got %s", info.ConfigName)
	}

	if _, err := initializeServices(ctx, "/non/existent/path"); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestSessionCleanupRoutine(t *testing.T) {
	manager := session.NewManager()
	if _, err := manager.Create("", "classic", engine.DefaultGameConfig(), 1); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, manager, time.Millisecond, 0)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for manager.Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if manager.Count() != 0 {
		t.Error("Expected expired session to be removed")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Expected cleanup routine to stop on cancel")
	}
}

func TestMCPHTTPHandler(t *testing.T) {
	handler := mcpHTTPHandler(mcp.NewClient("http://localhost:0"))

	t.Run("rejects GET", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rr.Code)
		}
	})

	t.Run("initialize", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Maze Puzzle Game") {
			t.Errorf("Expected server info in response, got %s", rr.Body.String())
		}
	})
}
