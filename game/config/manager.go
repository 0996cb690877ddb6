package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
	"github.com/wricardo/mcp-training/pelletmaze/game/service"
	"github.com/wricardo/mcp-training/pelletmaze/logger"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// Manager serves the built-in levels plus JSON level files from a directory.
// A file shadows the built-in level of the same name.
type Manager struct {
	configDir     string
	builtins      map[string]*engine.LevelConfig
	defaultName   string
	defaultConfig *engine.LevelConfig
	configs       map[string]*engine.LevelConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager. An empty configDir serves
// the built-in levels only.
func NewManager(configDir string) (*Manager, error) {
	if configDir != "" {
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("config directory does not exist: %s", configDir)
		}
	}

	m := &Manager{
		configDir: configDir,
		builtins:    engine.BuiltinLevels(),
		defaultName: engine.LevelClassic,
		configs:     make(map[string]*engine.LevelConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.LevelConfig, error) {
	name = strings.TrimSuffix(name, ".json")
	if err := validName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	config, err := m.loadFile(name)
	if errors.Is(err, ErrConfigNotFound) {
		builtin, ok := m.builtins[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		config, err = builtin, nil
	}
	if err != nil {
		return nil, err
	}

	m.configs[name] = config
	return config, nil
}

func (m *Manager) loadFile(name string) (*engine.LevelConfig, error) {
	if m.configDir == "" {
		return nil, ErrConfigNotFound
	}
	configPath := filepath.Join(m.configDir, name+".json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, ErrConfigNotFound
	}

	config, err := engine.LoadLevelConfig(configPath)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidLevel) ||
			errors.Is(err, engine.ErrInvalidLayout) ||
			errors.Is(err, engine.ErrInvalidDimensions) ||
			errors.Is(err, engine.ErrInvalidGhostRange) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config, nil
}

// ListConfigs returns information about all available configurations,
// sorted by config ID
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	byID := make(map[string]*service.ConfigInfo)

	for name := range m.builtins {
		config, err := m.LoadConfig(name)
		if err != nil {
			continue
		}
		info := configInfo(name, config)
		info.Builtin = true
		byID[name] = info
	}

	if m.configDir != "" {
		entries, err := os.ReadDir(m.configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read config directory: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}

			name := strings.TrimSuffix(entry.Name(), ".json")
			config, err := m.LoadConfig(name)
			if err != nil {
				// Skip invalid configs
				logger.Log.Warnw("skipping level file", "file", entry.Name(), "error", err)
				continue
			}

			info := configInfo(name, config)
			info.Filename = entry.Name()
			byID[name] = info
		}
	}

	configs := make([]*service.ConfigInfo, 0, len(byID))
	for _, info := range byID {
		configs = append(configs, info)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })

	return configs, nil
}

func configInfo(id string, config *engine.LevelConfig) *service.ConfigInfo {
	info := &service.ConfigInfo{
		ConfigID:    id, // This is the identifier to use for session creation
		Name:        config.Name,
		Description: config.Description,
		Width:       config.Width,
		Height:      config.Height,
		Static:      config.IsStatic(),
	}
	if info.Static {
		info.Height = len(config.Layout)
		info.Width = len(config.Layout[0])
	}
	return info
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.LevelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = strings.TrimSuffix(name, ".json")
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached levels so files are read again. The default
// level is reloaded under the name it was set with.
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.LevelConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig loads the default level (classic unless SetDefault picked
// another). A broken file falls back to the built-in classic level.
func (m *Manager) loadDefaultConfig() error {
	m.mu.RLock()
	name := m.defaultName
	m.mu.RUnlock()

	config, err := m.LoadConfig(name)
	if err != nil {
		logger.Log.Warnw("default level unusable, falling back to built-in classic", "level", name, "error", err)
		config = m.builtins[engine.LevelClassic]
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig validates a level and writes it to the config directory
func (m *Manager) SaveConfig(name string, config *engine.LevelConfig) error {
	name = strings.TrimSuffix(name, ".json")
	if err := validName(name); err != nil {
		return err
	}
	if m.configDir == "" {
		return fmt.Errorf("no config directory to save %s into", name)
	}
	if config != nil && config.Name == "" {
		config.Name = name
	}

	if err := engine.ValidateLevelConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	configPath := filepath.Join(m.configDir, name+".json")

	// Marshal config to JSON with indentation
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return nil
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: invalid config name %q", ErrInvalidConfig, name)
	}
	return nil
}
