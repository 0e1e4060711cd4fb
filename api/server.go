package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/maze-puzzle-game/game/config"
	"github.com/wricardo/maze-puzzle-game/game/engine"
	"github.com/wricardo/maze-puzzle-game/game/service"
	"github.com/wricardo/maze-puzzle-game/game/session"
	"github.com/wricardo/maze-puzzle-game/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	limiter *IPRateLimiter
}

// NewServer creates a new API server. The hub may be nil when no viewers
// are served.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	if hub != nil {
		hub.SetObserver(UpdateWSConnections)
	}
	s.setupRoutes()
	return s
}

// EnableRateLimit limits API requests per client IP. Stop the returned
// limiter on shutdown.
func (s *Server) EnableRateLimit(cfg RateLimitConfig) *IPRateLimiter {
	s.limiter = NewIPRateLimiter(cfg)
	s.router.Use(s.limiter.Middleware)
	return s.limiter
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(metricsMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	// Multi-session view (must be before {id} pattern)
	api.HandleFunc("/sessions/unified", s.handleUnifiedSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/sessions/{id}/tick", s.handleTick).Methods("POST")
	api.HandleFunc("/sessions/{id}/bulk-tick", s.handleBulkTick).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", MetricsHandler()).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, engine.ErrUnknownDirection):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
		Seed       uint64 `json:"seed,omitempty"`
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	info, err := s.service.CreateSession(r.Context(), configID, req.Seed)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}
	s.refreshSessionGauge(r)

	log.Printf("[SESSION] created id=%s config=%s seed=%d", info.ID, info.ConfigName, info.Seed)
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	limit := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.refreshSessionGauge(r)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	snap, err := s.service.GetSnapshot(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, strings.Join(engine.RenderText(snap), "\n"))
		fmt.Fprintf(w, "%s\n%s\n", snap.GoalMessage, snap.Message)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// tickRequest is the body of POST /tick
type tickRequest struct {
	service.TickInput
	Reset bool `json:"reset,omitempty"`
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req tickRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	in, err := req.ToEngine()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	result, err := s.service.Tick(r.Context(), sessionID, in, req.Reset)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}
	RecordTicks(1, time.Since(start))
	for _, ev := range result.Events {
		RecordOutcome(ev.Type)
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, result.Snapshot, result.Events)
	}

	// Compact server log for observability
	snap := result.Snapshot
	log.Printf("[TICK] session=%s tick=%d level=%d held=%v pressed=%s status=%s stars=%d monsters=%d events=%d",
		sessionID, snap.Tick, snap.Level, req.Held, in.Pressed, snap.Status, snap.StarsCollected, snap.MonsterCount, len(result.Events))

	respondJSON(w, http.StatusOK, result)
}

// bulkTickRequest is the body of POST /bulk-tick. Either Inputs lists each
// tick, or Input is repeated Count times.
type bulkTickRequest struct {
	Inputs []service.TickInput `json:"inputs,omitempty"`
	Input  *service.TickInput  `json:"input,omitempty"`
	Count  int                 `json:"count,omitempty"`
	Reset  bool                `json:"reset,omitempty"`
}

func (r bulkTickRequest) engineInputs() ([]engine.Input, error) {
	wire := r.Inputs
	if len(wire) == 0 && r.Count > 0 {
		count := r.Count
		// One past the limit so the service reports truncation
		if count > engine.MaxBulkTicks+1 {
			count = engine.MaxBulkTicks + 1
		}
		one := service.TickInput{}
		if r.Input != nil {
			one = *r.Input
		}
		wire = make([]service.TickInput, count)
		for i := range wire {
			wire[i] = one
		}
	}

	inputs := make([]engine.Input, 0, len(wire))
	for i, w := range wire {
		in, err := w.ToEngine()
		if err != nil {
			return nil, fmt.Errorf("tick %d: %w", i+1, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func (s *Server) handleBulkTick(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req bulkTickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inputs, err := req.engineInputs()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	result, err := s.service.BulkTick(r.Context(), sessionID, inputs, req.Reset)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}
	RecordTicks(result.TicksExecuted, time.Since(start))
	for _, ev := range result.Events {
		RecordOutcome(ev.Type)
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, result.Snapshot, result.Events)
	}

	stop := result.StopReasonCode
	if stop == "" {
		stop = "none"
	}
	log.Printf("[BULK] session=%s exec=%d/%d stop=%s level=%d->%d stars+%d monsters=%d threat=%q",
		sessionID, result.TicksExecuted, result.RequestedTicks, stop, result.StartLevel, result.EndLevel,
		result.StarsDelta, result.MonstersLeft, result.Threat)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	snap, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, snap, nil)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Game reset successfully",
		"snapshot": snap,
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	snap, err := s.service.RestartLevel(r.Context(), sessionID)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, snap, nil)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  fmt.Sprintf("Level %d restarted", snap.Level+1),
		"snapshot": snap,
	})
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := mux.Vars(r)["name"]

	cfg, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id,omitempty"`
		engine.GameConfig
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}
	id := req.ID
	if id == "" {
		id = req.Name
	}

	if err := s.service.SaveConfig(r.Context(), id, &req.GameConfig); err != nil {
		respondError(w, errorStatus(err), fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": id,
	})
}

// Unified Sessions Handler

func (s *Server) handleUnifiedSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var sessions []*service.SessionInfo

	if sessionIDs := query.Get("sessionIds"); sessionIDs != "" {
		for _, id := range strings.Split(sessionIDs, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if info, err := s.service.GetSession(r.Context(), id); err == nil {
				sessions = append(sessions, info)
			}
		}
	} else {
		all, err := s.service.ListSessions(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		configName := query.Get("configName")
		for _, info := range all {
			if configName == "" || info.ConfigName == configName {
				sessions = append(sessions, info)
			}
		}
	}

	entries := make([]map[string]interface{}, 0, len(sessions))
	for _, info := range sessions {
		entry := map[string]interface{}{
			"session_id":    info.ID,
			"config_name":   info.ConfigName,
			"snapshot":      info.Snapshot,
			"created_at":    info.CreatedAt,
			"last_accessed": info.LastAccessedAt,
		}
		if info.Snapshot != nil {
			entry["threat"] = engine.AnalyzeThreat(info.Snapshot)
		}
		entries = append(entries, entry)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(entries),
		"sessions": entries,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "WebSocket viewers are disabled", http.StatusServiceUnavailable)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) refreshSessionGauge(r *http.Request) {
	if sessions, err := s.service.ListSessions(r.Context()); err == nil {
		UpdateActiveSessions(len(sessions))
	}
}
