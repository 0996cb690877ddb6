package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/pelletmaze/api"
	"github.com/wricardo/mcp-training/pelletmaze/logger"
	"github.com/wricardo/mcp-training/pelletmaze/transport/mcp"
)

const externalURL = "http://localhost:8080"

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server backed by the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api-url",
				Value: externalURL,
				Usage: "API server to reuse when it is reachable",
			},
		},
		Action: runStdioMCP,
	}
}

// runStdioMCP runs an MCP stdio server. It reuses the API at --api-url when
// it answers; otherwise it starts an internal HTTP API bound to a random
// loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("api-url")
	logger.Log.Infow("Checking for external API server", "url", baseURL)

	if !apiAvailable(ctx, baseURL) {
		logger.Log.Info("No external API server found, starting internal HTTP server")

		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		svcs, err := initializeServices(s, serviceOptions{})
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}

		internalURL, shutdown, err := startInternalAPI(api.NewServer(svcs.game, nil))
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = internalURL
	}

	mcpClient := mcp.NewClient(baseURL, Version)
	logger.Log.Infow("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable probes the health endpoint of an API server
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// startInternalAPI serves handler on a random loopback port and returns its
// base URL
func startInternalAPI(handler http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	httpServer := &http.Server{Handler: handler}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Log.Errorw("Internal HTTP server error", "error", err)
		}
	}()

	addr := listener.Addr().String()
	logger.Log.Infow("Internal HTTP server started", "addr", addr)

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctx)
	}
	return "http://" + addr, shutdown, nil
}
