// Package settings loads server settings from an optional pelletmaze.yaml
// and PELLETMAZE_* environment variables.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Settings struct {
	Server    ServerSettings    `mapstructure:"server"`
	Game      GameSettings      `mapstructure:"game"`
	Sessions  SessionSettings   `mapstructure:"sessions"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
	Metrics   MetricsSettings   `mapstructure:"metrics"`
}

type ServerSettings struct {
	Host  string `mapstructure:"host"`
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`
}

type GameSettings struct {
	ConfigDir    string `mapstructure:"config_dir"`
	DefaultLevel string `mapstructure:"default_level"`
}

type SessionSettings struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type TelemetrySettings struct {
	Enabled bool `mapstructure:"enabled"`
}

type MetricsSettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// Addr returns host:port for the HTTP listener.
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("game.config_dir", "configs")
	v.SetDefault("game.default_level", "classic")
	v.SetDefault("sessions.ttl", 24*time.Hour)
	v.SetDefault("sessions.cleanup_interval", 10*time.Minute)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("metrics.enabled", true)
}

// Load reads pelletmaze.yaml from the given directories (first match wins)
// and overlays PELLETMAZE_* environment variables, e.g.
// PELLETMAZE_SERVER_PORT=9000. A missing file is not an error.
func Load(paths ...string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("pelletmaze")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("PELLETMAZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &s, nil
}
