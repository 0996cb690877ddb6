// Command pelletmaze runs the Pellet Maze game server.
//
// Subcommands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket
//     spectators, Prometheus metrics and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server, reusing a server on localhost:8080 or
//     spinning up an internal HTTP API when none is available
//  3. "validate" checks level files
//  4. "simulate" lets the built-in bot play rounds in-process
//
// Settings come from pelletmaze.yaml, PELLETMAZE_* environment variables and
// flags, in increasing order of precedence. A .env file is loaded first.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/pelletmaze/logger"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Pellet Maze Server"
)

func main() {
	// Load .env before flags read their environment sources (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	cmd := newApp()
	err := cmd.Run(context.Background(), os.Args)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Global flags are inherited by every
// subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:           "pelletmaze",
		Usage:          AppName,
		Version:        Version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "settings-dir",
				Value: ".",
				Usage: "directory searched for pelletmaze.yaml",
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory containing level files",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, logger.Init(cmd.Bool("debug"))
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			validateCommand(),
			simulateCommand(),
		},
	}
}
