// Command maze starts the Maze Puzzle Game.
//
// Subcommands:
//   - serve (default): HTTP server exposing the REST API, WebSocket feed,
//     Prometheus metrics and an /mcp HTTP endpoint, optionally tunneled
//     through ngrok
//   - mcp: MCP stdio server backed by an external or internal HTTP API
//   - play: play a level pack in the terminal
//   - validate: check the level packs in the config directory
//   - version: print version information
//
// Every flag also reads an environment variable, and a .env file in the
// working directory is loaded first.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/maze-puzzle-game/api"
	"github.com/wricardo/maze-puzzle-game/frontend/terminal"
	"github.com/wricardo/maze-puzzle-game/game/config"
	"github.com/wricardo/maze-puzzle-game/game/engine"
	"github.com/wricardo/maze-puzzle-game/game/service"
	"github.com/wricardo/maze-puzzle-game/game/session"
	"github.com/wricardo/maze-puzzle-game/transport/mcp"
	"github.com/wricardo/maze-puzzle-game/transport/websocket"
	"github.com/wricardo/maze-puzzle-game/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Maze Puzzle Game"
)

const (
	sessionMaxAge       = 24 * time.Hour
	sessionCleanupEvery = time.Hour
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "maze",
		Usage:   "tile-grid maze puzzle game",
		Version: Version,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing level packs",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
		}, serveFlags()...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runServe,
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			playCommand(),
			validateCommand(),
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

// serveFlags configure the HTTP server. They sit on the root command, which
// serves by default, and subcommands inherit them.
func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "HTTP server port",
			Sources: cli.EnvVars("PORT"),
		},
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "HTTP server host",
			Sources: cli.EnvVars("HOST"),
		},
		&cli.Float64Flag{
			Name:    "rate-limit",
			Value:   api.DefaultRateLimitConfig.RequestsPerSecond,
			Usage:   "requests per second allowed per client IP (0 disables)",
			Sources: cli.EnvVars("RATE_LIMIT_RPS"),
		},
		&cli.IntFlag{
			Name:    "rate-burst",
			Value:   api.DefaultRateLimitConfig.Burst,
			Usage:   "request burst allowed per client IP",
			Sources: cli.EnvVars("RATE_LIMIT_BURST"),
		},
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "enable ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "custom ngrok domain (optional)",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server", "http"},
		Usage:   "run the HTTP server with REST API, WebSocket, metrics and MCP endpoint",
		Action:  runServe,
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server, starting an internal HTTP API if none is reachable",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Value:   "http://localhost:8080",
				Usage:   "external API to reuse when it is running",
				Sources: cli.EnvVars("MAZE_API_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gameService, err := initializeServices(ctx, cmd.String("config-dir"))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			return runStdioMCP(ctx, gameService, cmd.String("api-url"))
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play a level pack in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "pack",
				Usage:   "level pack to play (default: the built-in pack)",
				Sources: cli.EnvVars("MAZE_PACK"),
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "seed for filler placement (0 picks one)",
			},
			&cli.Float64Flag{
				Name:  "tps",
				Value: terminal.DefaultTicksPerSecond,
				Usage: "ticks per second",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pack, err := loadPack(cmd.String("config-dir"), cmd.String("pack"))
			if err != nil {
				return err
			}
			seed := uint64(cmd.Int("seed"))
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			eng, err := engine.NewEngine(pack, seed)
			if err != nil {
				return err
			}
			// The terminal owns stdout and stderr while playing.
			log.SetOutput(io.Discard)
			return terminal.Play(ctx, eng, cmd.Float64("tps"))
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check every level pack in the config directory",
		ArgsUsage: "[pack files...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var results []validate.Result
			if cmd.Args().Len() > 0 {
				for _, path := range cmd.Args().Slice() {
					results = append(results, validate.File(path))
				}
			} else {
				var err error
				results, err = validate.Dir(cmd.String("config-dir"))
				if err != nil {
					return err
				}
				results = append([]validate.Result{validate.Pack(config.BuiltinID+" (built-in)", engine.DefaultGameConfig())}, results...)
			}
			if !validate.Report(cmd.Root().Writer, results) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// loadPack resolves a pack by ID from the config directory. Without a
// directory only the built-in pack is available.
func loadPack(dir, id string) (*engine.GameConfig, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if id == "" || id == config.BuiltinID {
			return engine.DefaultGameConfig(), nil
		}
		return nil, fmt.Errorf("config directory does not exist: %s", dir)
	}
	manager, err := config.NewManager(dir)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(id)
}

// runServe starts the HTTP server with REST API, WebSocket hub, metrics and an
// /mcp proxy endpoint. If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Starting %s v%s", AppName, Version)

	gameService, err := initializeServices(ctx, cmd.String("config-dir"))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	apiServer := api.NewServer(gameService, hub)
	if rps := cmd.Float64("rate-limit"); rps > 0 {
		cfg := api.DefaultRateLimitConfig
		cfg.RequestsPerSecond = rps
		cfg.Burst = int(cmd.Int("rate-burst"))
		limiter := apiServer.EnableRateLimit(cfg)
		defer limiter.Stop()
		log.Printf("Rate limit: %.1f req/s per IP, burst %d", cfg.RequestsPerSecond, cfg.Burst)
	}

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHTTPHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("Metrics: http://%s/metrics", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter)
		}()
	}

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// mcpHTTPHandler serves single MCP JSON-RPC messages over POST.
func mcpHTTPHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runNgrok serves handler through an ngrok tunnel until ctx is cancelled.
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// initializeServices wires the session and config managers into the game
// service and starts the stale session cleanup loop.
func initializeServices(ctx context.Context, configDir string) (service.GameService, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	gameService := service.NewGameService(sessionManager, configManager)

	go sessionCleanupRoutine(ctx, sessionManager, sessionCleanupEvery, sessionMaxAge)

	return gameService, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within maxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every, maxAge time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
			api.UpdateActiveSessions(manager.Count())
		}
	}
}

// runStdioMCP runs an MCP stdio server. It reuses the API at externalURL when
// one answers; otherwise it starts an internal HTTP API on a random loopback
// port and targets that.
func runStdioMCP(ctx context.Context, gameService service.GameService, externalURL string) error {
	baseURL := externalURL
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		// No WebSocket clients exist in stdio mode.
		httpServer := &http.Server{Handler: api.NewServer(gameService, nil)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
