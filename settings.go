package main

import (
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/pelletmaze/logger"
	"github.com/wricardo/mcp-training/pelletmaze/settings"
)

// loadSettings reads the settings file and environment, then applies any
// flag the user set explicitly.
func loadSettings(cmd *cli.Command) (*settings.Settings, error) {
	s, err := settings.Load(cmd.String("settings-dir"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		s.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Server.Port = cmd.Int("port")
	}
	if cmd.IsSet("config-dir") {
		s.Game.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("debug") {
		s.Server.Debug = cmd.Bool("debug")
	} else if s.Server.Debug {
		if err := logger.Init(true); err != nil {
			return nil, err
		}
	}
	return s, nil
}
