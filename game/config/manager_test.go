package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	return dir
}

func createValidConfig() *engine.LevelConfig {
	return &engine.LevelConfig{
		Name:        "Test Level",
		Description: "Test level",
		Layout: []string{
			"#######",
			"#S***O#",
			"#*###*#",
			"#**G**#",
			"#######",
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.LevelConfig) {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		writeConfigFile(t, dir, "maze", createValidConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager == nil {
			t.Error("Expected manager to be non-nil")
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("built-ins only", func(t *testing.T) {
		manager, err := NewManager("")
		if err != nil {
			t.Fatalf("NewManager(\"\") error = %v", err)
		}
		defaultConfig := manager.GetDefault()
		if defaultConfig == nil || defaultConfig.Name != engine.LevelClassic {
			t.Errorf("Expected classic default, got %+v", defaultConfig)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	maze := createValidConfig()
	maze.Name = "Maze"
	maze.Lives = 5
	writeConfigFile(t, dir, "maze", maze)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("maze")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Maze" {
			t.Errorf("Expected config name 'Maze', got '%s'", config.Name)
		}
		if config.Lives != 5 {
			t.Errorf("Expected 5 lives, got %d", config.Lives)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("maze.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Maze" {
			t.Errorf("Expected config name 'Maze', got '%s'", config.Name)
		}
	})

	t.Run("load built-in", func(t *testing.T) {
		for _, name := range []string{engine.LevelClassic, engine.LevelRandom, engine.LevelSmall} {
			config, err := manager.LoadConfig(name)
			if err != nil {
				t.Fatalf("Failed to load built-in %s: %v", name, err)
			}
			if config.Name != name {
				t.Errorf("Expected %s, got %s", name, config.Name)
			}
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("maze")
		config2, err := manager.LoadConfig("maze")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		// Should be the same pointer (cached)
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("reject path traversal", func(t *testing.T) {
		_, err := manager.LoadConfig("../etc/passwd")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		invalidData := []byte(`{"name": "tiny", "width": 2, "height": 2}`)
		if err := os.WriteFile(filepath.Join(dir, "invalid.json"), invalidData, 0644); err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load unreachable pellets", func(t *testing.T) {
		config := createValidConfig()
		config.Layout = []string{
			"#####",
			"#S#*#",
			"#####",
		}
		writeConfigFile(t, dir, "walled", config)

		_, err := manager.LoadConfig("walled")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		malformedData := []byte(`{"name": "Malformed", invalid json}`)
		if err := os.WriteFile(filepath.Join(dir, "malformed.json"), malformedData, 0644); err != nil {
			t.Fatalf("Failed to write malformed config: %v", err)
		}

		_, err := manager.LoadConfig("malformed")
		if err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_GetDefault(t *testing.T) {
	t.Run("built-in classic", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		config := manager.GetDefault()
		if config == nil || !config.IsStatic() || len(config.Layout) != len(engine.ClassicLayout) {
			t.Errorf("Expected the classic layout as default, got %+v", config)
		}
	})

	t.Run("classic.json overrides", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		override := createValidConfig()
		override.Name = "My Classic"
		writeConfigFile(t, dir, "classic", override)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "My Classic" {
			t.Errorf("Expected default 'My Classic', got '%s'", got)
		}
	})

	t.Run("set default", func(t *testing.T) {
		manager, err := NewManager("")
		if err != nil {
			t.Fatal(err)
		}
		if err := manager.SetDefault(engine.LevelSmall); err != nil {
			t.Fatalf("SetDefault() error = %v", err)
		}
		if got := manager.GetDefault().Name; got != engine.LevelSmall {
			t.Errorf("Expected small default, got %s", got)
		}
		if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	for _, name := range []string{"beta", "alpha", "small"} {
		config := createValidConfig()
		config.Name = name
		writeConfigFile(t, dir, name, config)
	}

	// Non-JSON and invalid files are skipped
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}

	wantIDs := []string{"alpha", "beta", "classic", "random", "small"}
	if len(configList) != len(wantIDs) {
		t.Fatalf("Expected %d configs, got %d", len(wantIDs), len(configList))
	}
	for i, id := range wantIDs {
		if configList[i].ConfigID != id {
			t.Errorf("configs[%d] = %s, want %s", i, configList[i].ConfigID, id)
		}
	}

	byID := make(map[string]bool)
	for _, info := range configList {
		byID[info.ConfigID] = info.Builtin
	}
	if !byID["classic"] || !byID["random"] {
		t.Error("Expected classic and random to be flagged built-in")
	}
	if byID["small"] {
		t.Error("Expected small.json to shadow the built-in")
	}

	for _, info := range configList {
		if info.ConfigID == "classic" && (info.Width != 28 || info.Height != 29 || !info.Static) {
			t.Errorf("Unexpected classic info %+v", info)
		}
		if info.ConfigID == "random" && (info.Width != 15 || info.Height != 11 || info.Static) {
			t.Errorf("Unexpected random info %+v", info)
		}
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("valid level", func(t *testing.T) {
		config := &engine.LevelConfig{Width: 9, Height: 9, MinGhosts: 2, MaxGhosts: 3}
		if err := manager.SaveConfig("arena", config); err != nil {
			t.Fatalf("SaveConfig() error = %v", err)
		}
		if config.Name != "arena" {
			t.Errorf("Expected name to default to the config name, got %q", config.Name)
		}
		if _, err := os.Stat(filepath.Join(dir, "arena.json")); err != nil {
			t.Errorf("Expected arena.json on disk: %v", err)
		}

		manager.ReloadConfig("arena")
		loaded, err := manager.LoadConfig("arena")
		if err != nil {
			t.Fatalf("Failed to load saved config: %v", err)
		}
		if loaded.Width != 9 || loaded.MaxGhosts != 3 {
			t.Errorf("Unexpected saved level %+v", loaded)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := manager.SaveConfig("bad", &engine.LevelConfig{Width: 100, Height: 5})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "bad.json")); !os.IsNotExist(err) {
			t.Error("Expected invalid level not to be written")
		}
	})

	t.Run("no directory", func(t *testing.T) {
		builtinOnly, _ := NewManager("")
		if err := builtinOnly.SaveConfig("arena", createValidConfig()); err == nil {
			t.Error("Expected error saving without a config directory")
		}
	})
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	config := createValidConfig()
	config.Name = "Changeable"
	config.Lives = 2
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.Lives != 2 {
		t.Errorf("Expected initial lives 2, got %d", loaded.Lives)
	}

	config.Lives = 4
	writeConfigFile(t, dir, "changeable", config)

	if err := manager.ReloadConfig("changeable"); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.Lives != 4 {
		t.Errorf("Expected reloaded lives 4, got %d", reloaded.Lives)
	}

	// RefreshCache drops everything
	if err := manager.RefreshCache(); err != nil {
		t.Fatal(err)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected only the default cached after refresh, got %d", manager.Count())
	}
}

func TestManager_RefreshCacheKeepsDefault(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	config := createValidConfig()
	config.Name = "Arena"
	config.Lives = 2
	writeConfigFile(t, dir, "arena", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if err := manager.SetDefault("arena"); err != nil {
		t.Fatalf("SetDefault() error = %v", err)
	}

	config.Lives = 5
	writeConfigFile(t, dir, "arena", config)
	if got := manager.GetDefault().Lives; got != 2 {
		t.Errorf("Expected cached default with 2 lives, got %d", got)
	}

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}
	def := manager.GetDefault()
	if def.Name != "Arena" || def.Lives != 5 {
		t.Errorf("Expected refreshed Arena default with 5 lives, got %s with %d", def.Name, def.Lives)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = "Config" + string(rune('0'+i))
		writeConfigFile(t, dir, "config"+string(rune('0'+i)), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			configName := "config" + string(rune('0'+((id%5)+1)))
			if _, err := manager.LoadConfig(configName); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	// classic plus five files
	if manager.Count() != 6 {
		t.Errorf("Expected 6 configs in cache, got %d", manager.Count())
	}
}

func TestManager_ShippedLevels(t *testing.T) {
	manager, err := NewManager(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("Failed to open shipped configs: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatal(err)
	}
	for _, info := range configs {
		level, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			t.Errorf("Shipped level %s failed to load: %v", info.ConfigID, err)
			continue
		}
		if _, err := engine.NewGameEngineFromLevel(level); err != nil {
			t.Errorf("Shipped level %s failed to start: %v", info.ConfigID, err)
		}
	}
}

// Test-only helpers

func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	// Remove from cache to force reload
	delete(m.configs, name)
	m.mu.Unlock()

	_, err := m.LoadConfig(name)
	return err
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
