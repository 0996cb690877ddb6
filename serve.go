package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/pelletmaze/api"
	"github.com/wricardo/mcp-training/pelletmaze/game/config"
	"github.com/wricardo/mcp-training/pelletmaze/game/service"
	"github.com/wricardo/mcp-training/pelletmaze/game/session"
	"github.com/wricardo/mcp-training/pelletmaze/logger"
	"github.com/wricardo/mcp-training/pelletmaze/metrics"
	"github.com/wricardo/mcp-training/pelletmaze/settings"
	"github.com/wricardo/mcp-training/pelletmaze/telemetry"
	"github.com/wricardo/mcp-training/pelletmaze/transport/mcp"
	"github.com/wricardo/mcp-training/pelletmaze/transport/websocket"
)

const metricsNamespace = "pelletmaze"

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "expose the server through an ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runServe,
	}
}

// services is the wired game stack shared by every subcommand
type services struct {
	game     service.GameService
	sessions *session.Manager
	configs  *config.Manager
	metrics  *metrics.Metrics
}

// serviceOptions toggles the ambient concerns of initializeServices
type serviceOptions struct {
	// registerer receives the collectors. Nil disables metrics.
	registerer prometheus.Registerer
	tracing    bool
}

// initializeServices wires the session and config managers into the game
// service.
func initializeServices(s *settings.Settings, opts serviceOptions) (*services, error) {
	configManager, err := config.NewManager(s.Game.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if s.Game.DefaultLevel != "" {
		if err := configManager.SetDefault(s.Game.DefaultLevel); err != nil {
			return nil, fmt.Errorf("default level %q: %w", s.Game.DefaultLevel, err)
		}
	}

	out := &services{
		sessions: session.NewManager(),
		configs:  configManager,
	}

	var svcOpts []service.Option
	if opts.registerer != nil {
		out.metrics = metrics.NewMetrics(metricsNamespace, opts.registerer)
		svcOpts = append(svcOpts, service.WithMetrics(out.metrics))
	}
	if opts.tracing {
		svcOpts = append(svcOpts, service.WithTracer(telemetry.Tracer("service")))
	}

	out.game = service.NewGameService(out.sessions, configManager, svcOpts...)
	return out, nil
}

// runServe starts the HTTP server with REST API, WebSocket hub and an /mcp
// proxy endpoint. If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(ctx, Version)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				logger.Log.Warnw("Telemetry shutdown failed", "error", err)
			}
		}()
	}

	opts := serviceOptions{tracing: s.Telemetry.Enabled}
	if s.Metrics.Enabled {
		opts.registerer = prometheus.DefaultRegisterer
	}
	svcs, err := initializeServices(s, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	go svcs.sessions.RunCleanup(ctx, s.Sessions.TTL, s.Sessions.CleanupInterval, svcs.metrics.SetActiveSessions)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go reloadLevels(ctx, hup, svcs.configs)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	var apiOpts []api.Option
	if svcs.metrics != nil {
		apiOpts = append(apiOpts, api.WithMetricsHandler(svcs.metrics.Handler()))
	}
	apiServer := api.NewServer(svcs.game, hub, apiOpts...)

	addr := s.Addr()
	mainRouter := newRouter(apiServer, mcp.NewClient(localURL(s), Version))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Log.Infow("Starting server",
		"app", AppName,
		"version", Version,
		"addr", addr,
		"config_dir", s.Game.ConfigDir,
		"default_level", s.Game.DefaultLevel,
		"metrics", s.Metrics.Enabled,
		"telemetry", s.Telemetry.Enabled,
	)

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Log.Infof("REST API: http://%s/api", addr)
		logger.Log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		logger.Log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, mainRouter, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"))
		}()
	}

	<-ctx.Done()
	logger.Log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Log.Info("Server stopped")

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	default:
		return nil
	}
}

// reloadLevels drops the level cache each time reload fires, so edited level
// files apply to new sessions and restarts without a server restart.
func reloadLevels(ctx context.Context, reload <-chan os.Signal, configs *config.Manager) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-reload:
			if err := configs.RefreshCache(); err != nil {
				logger.Log.Warnw("Level reload failed", "error", err)
				continue
			}
			logger.Log.Infow("Levels reloaded", "default_level", configs.GetDefault().Name)
		}
	}
}

// newRouter mounts the API at the root and the MCP client at /mcp
func newRouter(apiServer http.Handler, mcpClient http.Handler) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.Handle("/mcp", mcpClient)
	return mainRouter
}

// localURL is the address the /mcp proxy uses to reach this server's API
func localURL(s *settings.Settings) string {
	host := s.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, s.Server.Port)
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, handler http.Handler, authToken, domain string) {
	if authToken == "" {
		logger.Log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Log.Infow("Using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Log.Errorw("Failed to start ngrok tunnel", "error", err)
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Log.Warnw("Failed to close ngrok tunnel", "error", err)
		}
	}()

	ngrokURL := tun.URL()
	logger.Log.Infow("Ngrok tunnel established",
		"url", ngrokURL,
		"api", ngrokURL+"/api",
		"websocket", ngrokURL+"/ws?session=<session_id>",
		"mcp", ngrokURL+"/mcp",
	)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Log.Errorw("Ngrok server error", "error", err)
	}
	logger.Log.Info("Ngrok tunnel closed")
}
