package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/maze-puzzle-game/game/engine"
	"github.com/wricardo/maze-puzzle-game/game/service"
)

var directionEnum = []string{"left", "right", "up", "down"}

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Maze Puzzle Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Maze Puzzle Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Guide the player (P) through three levels. Each level ends at the door (D), which only
opens once the level goal is met: collect stars, squish every monster with a box, or
squish every monster and pick up the key.

The simulation advances in ticks. Each tick you choose which direction keys are held
(smooth movement) and optionally one pressed key (precise movement, for packs that enable it).

AVAILABLE TOOLS:
- create_session: Create a new game session
- list_sessions / get_session: Inspect sessions
- game_state: ASCII board plus threat and nearest-target hints
- tick: Advance one tick with the given keys - requires intent explanation
- bulk_tick: Advance many ticks at once - requires intent explanation
- reset_game: Restart from the first level
- restart_level: Rebuild the current level
- describe_tile: List the actors on one tile
- list_configs: List level packs
- game_instructions: Full rules

NOTE: The 'intent' parameter on tick/bulk_tick serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func inputProperties() map[string]interface{} {
	return map[string]interface{}{
		"held": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string", "enum": directionEnum},
			"description": "Direction keys held down for the tick (smooth movement)",
		},
		"pressed": map[string]interface{}{
			"type":        "string",
			"enum":        directionEnum,
			"description": "Key pressed this tick (precise movement, one tile per press)",
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional level pack and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Level pack to use (optional, see list_configs)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for filler placement (optional, same seed gives the same layout)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board as ASCII with status, threat and nearest targets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	tickProps := inputProperties()
	tickProps["session_id"] = sessionIDProperty()
	tickProps["intent"] = map[string]interface{}{
		"type":        "string",
		"description": "Brief explanation of the intent behind this tick (serves as a rubber duck to help explain your reasoning)",
	}
	tickProps["reset"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Reset to the first level before ticking",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance the simulation by one tick",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: tickProps,
			Required:   []string{"session_id"},
		},
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_tick",
		Description: "Advance the simulation by many ticks. Give either inputs (one per tick) or held/pressed with count to repeat them. Stops early when the game ends.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"inputs": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type":       "object",
						"properties": inputProperties(),
					},
					"description": "Per-tick inputs",
				},
				"held":    inputProperties()["held"],
				"pressed": inputProperties()["pressed"],
				"count": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Number of ticks to repeat held/pressed (max %d)", engine.MaxBulkTicks),
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of ticks (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset to the first level before ticking",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleBulkTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to the first level",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_level",
		Description: "Rebuild the current level (also revives a lost game on that level)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available level packs",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "List every actor standing on a tile. Useful when the ASCII board shows only the first actor of a shared tile.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the tile (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the tile (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeTile)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool call arguments, tolerating a missing map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func stringSlice(v interface{}) []string {
	raw, _ := v.([]interface{})
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func tickInput(args map[string]interface{}) service.TickInput {
	pressed, _ := args["pressed"].(string)
	return service.TickInput{Held: stringSlice(args["held"]), Pressed: pressed}
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]interface{}{}
	if configID != "" {
		body["config_id"] = configID
	}
	if seed, ok := args["seed"].(float64); ok && seed > 0 {
		body["seed"] = uint64(seed)
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nSeed: %d\n\n%s",
		session.ID, session.ConfigName, session.Seed, formatSnapshot(session.Snapshot))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status, level := "unknown", 0
		if s.Snapshot != nil {
			status, level = string(s.Snapshot.Status), s.Snapshot.Level+1
		}
		fmt.Fprintf(&result, "- %s (Config: %s, Level: %d, Status: %s, Created: %s)\n",
			s.ID, s.ConfigName, level, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	reset, _ := args["reset"].(bool)
	// Intent parameter serves as rubber duck debugging - we don't need to process it further

	in := tickInput(args)
	if _, err := in.ToEngine(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"held":    in.Held,
		"pressed": in.Pressed,
		"reset":   reset,
	}

	var result service.TickResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/tick", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTickResult(&result)), nil
}

func (c *Client) handleBulkTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	reset, _ := args["reset"].(bool)

	body := map[string]interface{}{"reset": reset}
	if raw, ok := args["inputs"].([]interface{}); ok && len(raw) > 0 {
		inputs := make([]service.TickInput, 0, len(raw))
		for _, item := range raw {
			m, _ := item.(map[string]interface{})
			inputs = append(inputs, tickInput(m))
		}
		body["inputs"] = inputs
	} else {
		count, _ := args["count"].(float64)
		if count < 1 {
			return mcp.NewToolResultError("either inputs or a positive count is required"), nil
		}
		body["input"] = tickInput(args)
		body["count"] = int(count)
	}

	var result service.BulkTickResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/bulk-tick", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkTickResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.snapshotAction(ctx, request, "reset")
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.snapshotAction(ctx, request, "restart")
}

func (c *Client) snapshotAction(ctx context.Context, request mcp.CallToolRequest, action string) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message  string           `json:"message"`
		Snapshot *engine.Snapshot `json:"snapshot"`
	}

	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/%s", sessionID, action), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatSnapshot(response.Snapshot))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Level Packs:\n\n")
	for _, cfg := range configs {
		builtin := ""
		if cfg.BuiltIn {
			builtin = " (built-in)"
		}
		fmt.Fprintf(&result, "• %s%s [config_id: %s]\n  %s\n  Levels (%d): %s\n\n",
			cfg.Name, builtin, cfg.ConfigID, cfg.Description, cfg.Levels, strings.Join(cfg.LevelNames, ", "))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Maze Puzzle Game - Complete Instructions

GAME OBJECTIVE:
Reach the door (D) on every level. The door only opens when the level goal is met;
walking into a closed door bumps you back one tile. Finishing the last level wins.

LEVELS (classic pack):
1. Ghost chase: collect enough stars (*) while a ghost (G) chases you.
2. Squish the monsters: push boxes (B) onto every monster (M) to squish it.
3. Squish and key: squish every monster and pick up the key (K).

GRID LEGEND:
P = player    # = wall        D = door      * = star      K = key
B = box       G = ghost       M = squishy monster
H = horizontal monster        V = vertical monster          . = empty

INPUT MODEL:
• Each tick reads the held keys and at most one pressed key.
• Smooth levels: every held key moves you one tile per tick, in the order left, right, up, down.
  Holding two perpendicular keys moves diagonally only if both steps are free.
• Precise levels: only the pressed key moves you, one tile per press. Walls do not stop you here.
• Walking into a box pushes it (and any box behind it). A box cannot enter a wall, and a box
  moving onto a monster squishes it.

MONSTERS:
• The ghost moves toward you a fraction of a tile every tick, first along x then along y.
• Squishy monsters move every fifth tick and bounce off walls, boxes, doors and each other.
• Touching any monster ends the game.

AI AGENTS - STRATEGIES:
• Call game_state first; read the board row by row and note the threat line.
• Use bulk_tick with held + count to walk straight corridors.
• Plan box pushes from the far side: stand opposite the direction you want the box to travel.
• Use restart_level after a loss to retry the same level, reset_game to start over.

Good luck!`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	xf, okX := args["x"].(float64)
	yf, okY := args["y"].(float64)
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}
	x, y := int(xf), int(yf)

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if x < 0 || x >= snap.Width || y < 0 || y >= snap.Height {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Stage is %dx%d (x 0-%d, y 0-%d)",
			x, y, snap.Width, snap.Height, snap.Width-1, snap.Height-1)), nil
	}

	return mcp.NewToolResultText(describeTile(&snap, x, y)), nil
}

// describeTile lists the actors whose rounded location is the tile
func describeTile(snap *engine.Snapshot, x, y int) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Tile (%d, %d):\n", x, y)

	found := 0
	for _, item := range snap.Actors {
		if item.Tile() != (engine.Position{X: x, Y: y}) {
			continue
		}
		found++
		fmt.Fprintf(&result, "- %c %s at (%.3g, %.3g): %s\n", item.Kind.Glyph(), item.Kind, item.X, item.Y, kindDescription(item.Kind))
	}
	if found == 0 {
		result.WriteString("- empty floor, free to walk\n")
	}
	return result.String()
}

func kindDescription(k engine.Kind) string {
	switch k {
	case engine.KindPlayer:
		return "you"
	case engine.KindWall:
		return "blocks the player on smooth levels and all monsters and boxes"
	case engine.KindDoor:
		return "level exit, opens when the goal is met"
	case engine.KindStar:
		return "collect by walking over it"
	case engine.KindKey:
		return "collect by walking over it, needed on key levels"
	case engine.KindBox:
		return "pushable, squishes monsters it is pushed onto"
	case engine.KindGhost:
		return "chases you through walls, deadly"
	case engine.KindSquishy:
		return "wanders and bounces, deadly, can be squished"
	case engine.KindSquishyHorizontal:
		return "patrols left and right, deadly, can be squished"
	case engine.KindSquishyVertical:
		return "patrols up and down, deadly, can be squished"
	}
	return "unknown"
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nSeed: %d\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, session.Seed,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(session.Snapshot))
}

func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Level %d/%d: %s | Tick: %d | Status: %s\n",
		snap.Level+1, snap.LevelCount, snap.LevelName, snap.Tick, snap.Status)
	if snap.Player != nil {
		fmt.Fprintf(&result, "Player: (%d,%d) | ", snap.Player.X, snap.Player.Y)
	}
	fmt.Fprintf(&result, "Stars: %d", snap.StarsCollected)
	if snap.GoalStars > 0 {
		fmt.Fprintf(&result, "/%d", snap.GoalStars)
	}
	fmt.Fprintf(&result, " | Monsters: %d | Key: %v\n", snap.MonsterCount, snap.KeyCollected)

	if snap.GoalMessage != "" {
		result.WriteString(snap.GoalMessage + "\n")
	}
	if snap.Message != "" {
		result.WriteString(">> " + snap.Message + "\n")
	}

	switch snap.Status {
	case engine.StatusWon:
		result.WriteString("🎉 VICTORY!\n")
	case engine.StatusGameOver:
		result.WriteString("💀 GAME OVER\n")
	}

	result.WriteString("Threat: " + engine.AnalyzeThreat(snap) + "\n")
	result.WriteString(formatTargets(snap))

	result.WriteString("\nBoard:\n")
	result.WriteString("   ")
	for x := 0; x < snap.Width; x++ {
		result.WriteString(fmt.Sprintf("%d", x%10))
	}
	result.WriteString("\n")
	for y, row := range engine.RenderText(snap) {
		fmt.Fprintf(&result, "%2d %s\n", y, row)
	}

	return result.String()
}

// formatTargets reports the nearest door, star, key and monster
func formatTargets(snap *engine.Snapshot) string {
	targets := []struct {
		label string
		match func(engine.Kind) bool
	}{
		{"door", engine.IsKind(engine.KindDoor)},
		{"star", engine.IsKind(engine.KindStar)},
		{"key", engine.IsKind(engine.KindKey)},
		{"box", engine.IsKind(engine.KindBox)},
		{"monster", engine.Kind.IsMonster},
	}

	var result strings.Builder
	for _, t := range targets {
		pos, dist, ok := engine.FindNearest(snap, t.match)
		if !ok {
			continue
		}
		fmt.Fprintf(&result, "Nearest %s: (%d,%d) distance %d\n", t.label, pos.X, pos.Y, dist)
	}
	return result.String()
}

func formatEvents(events []service.GameEvent) string {
	if len(events) == 0 {
		return ""
	}
	var result strings.Builder
	result.WriteString("Events:\n")
	for _, ev := range events {
		fmt.Fprintf(&result, "- [tick %d] %s: %s\n", ev.Tick, ev.Type, ev.Message)
	}
	return result.String()
}

func formatTickResult(result *service.TickResult) string {
	var out strings.Builder
	out.WriteString(formatEvents(result.Events))
	if out.Len() > 0 {
		out.WriteString("\n")
	}
	out.WriteString(formatSnapshot(result.Snapshot))
	return out.String()
}

func formatBulkTickResult(sessionID string, result *service.BulkTickResult) string {
	var out strings.Builder

	fmt.Fprintf(&out, "Session %s: executed %d/%d ticks\n", sessionID, result.TicksExecuted, result.RequestedTicks)
	if result.Truncated {
		fmt.Fprintf(&out, "Request truncated to %d ticks\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&out, "Stopped: %s", result.StoppedReason)
		if result.StopReasonCode != "" {
			fmt.Fprintf(&out, " [%s]", result.StopReasonCode)
		}
		out.WriteString("\n")
	}
	fmt.Fprintf(&out, "Level: %d -> %d | Stars +%d | Monsters left: %d\n\n",
		result.StartLevel+1, result.EndLevel+1, result.StarsDelta, result.MonstersLeft)

	out.WriteString(formatEvents(result.Events))
	out.WriteString("\n")
	out.WriteString(formatSnapshot(result.Snapshot))
	return out.String()
}
