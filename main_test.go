package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/pelletmaze/api"
	"github.com/wricardo/mcp-training/pelletmaze/game/config"
	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
	"github.com/wricardo/mcp-training/pelletmaze/settings"
	"github.com/wricardo/mcp-training/pelletmaze/transport/mcp"
)

func testSettings(configDir string) *settings.Settings {
	return &settings.Settings{
		Server: settings.ServerSettings{Host: "localhost", Port: 8080},
		Game:   settings.GameSettings{ConfigDir: configDir, DefaultLevel: engine.LevelClassic},
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Pellet Maze Server" {
		t.Errorf("Expected app name %q, got %q", "Pellet Maze Server", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	svcs, err := initializeServices(testSettings("configs"), serviceOptions{})
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if svcs.game == nil || svcs.sessions == nil || svcs.configs == nil {
		t.Fatal("Expected all services to be initialized")
	}
	if svcs.metrics != nil {
		t.Error("Metrics should be off without a registerer")
	}
	if got := svcs.configs.GetDefault().Name; got != engine.LevelClassic {
		t.Errorf("Default level = %q, want %q", got, engine.LevelClassic)
	}
}

func TestInitializeServices_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	svcs, err := initializeServices(testSettings(""), serviceOptions{registerer: reg})
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if svcs.metrics == nil {
		t.Fatal("Expected metrics to be wired")
	}

	if _, err := svcs.game.CreateSession(context.Background(), ""); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == metricsNamespace+"_active_sessions" {
			found = true
			if got := f.GetMetric()[0].GetGauge().GetValue(); got != 1 {
				t.Errorf("active_sessions = %v, want 1", got)
			}
		}
	}
	if !found {
		t.Error("Expected the active_sessions gauge to be registered")
	}
}

func TestInitializeServices_Errors(t *testing.T) {
	tests := []struct {
		name     string
		settings *settings.Settings
	}{
		{"missing config dir", testSettings("/non/existent/path")},
		{"unknown default level", func() *settings.Settings {
			s := testSettings("")
			s.Game.DefaultLevel = "nope"
			return s
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := initializeServices(tt.settings, serviceOptions{}); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestReloadLevels(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.json", `{"name":"tiny","lives":2,"layout":["#####","#S*G#","#####"]}`)

	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	if level, err := configs.LoadConfig("tiny"); err != nil || level.Lives != 2 {
		t.Fatalf("LoadConfig() = %+v, %v", level, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	reload := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		reloadLevels(ctx, reload, configs)
		close(done)
	}()

	writeFile(t, dir, "tiny.json", `{"name":"tiny","lives":4,"layout":["#####","#S*G#","#####"]}`)
	reload <- syscall.SIGHUP

	deadline := time.Now().Add(time.Second)
	for {
		level, err := configs.LoadConfig("tiny")
		if err == nil && level.Lives == 4 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for reload, last = %+v, %v", level, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reloadLevels did not return after cancel")
	}
}

func TestLocalURL(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, "http://localhost:8080"},
		{"0.0.0.0", 9000, "http://localhost:9000"},
		{"127.0.0.1", 8081, "http://127.0.0.1:8081"},
		{"game.local", 80, "http://game.local:80"},
	}

	for _, tt := range tests {
		s := testSettings("")
		s.Server.Host, s.Server.Port = tt.host, tt.port
		if got := localURL(s); got != tt.want {
			t.Errorf("localURL(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestNewRouter(t *testing.T) {
	svcs, err := initializeServices(testSettings(""), serviceOptions{})
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	var baseURL string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		newRouter(api.NewServer(svcs.game, nil), mcp.NewClient(baseURL, Version)).ServeHTTP(w, r)
	}))
	defer ts.Close()
	baseURL = ts.URL

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", resp.StatusCode)
	}

	body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_configs","arguments":{}}}`)
	resp, err = http.Post(ts.URL+"/mcp", "application/json", body)
	if err != nil {
		t.Fatalf("POST /mcp error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /mcp = %d, want 200", resp.StatusCode)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(buf.String(), engine.LevelSmall) {
		t.Errorf("Expected list_configs to mention %q, got %s", engine.LevelSmall, buf.String())
	}
}

func TestAPIAvailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	if !apiAvailable(context.Background(), ts.URL) {
		t.Error("Expected running server to be available")
	}
	ts.Close()

	if apiAvailable(context.Background(), ts.URL) {
		t.Error("Expected closed server to be unavailable")
	}
}

func TestStartInternalAPI(t *testing.T) {
	svcs, err := initializeServices(testSettings(""), serviceOptions{})
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	baseURL, shutdown, err := startInternalAPI(api.NewServer(svcs.game, nil))
	if err != nil {
		t.Fatalf("startInternalAPI() error = %v", err)
	}
	defer shutdown()

	if !strings.HasPrefix(baseURL, "http://127.0.0.1:") {
		t.Errorf("Unexpected base URL %q", baseURL)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !apiAvailable(context.Background(), baseURL) {
		if time.Now().After(deadline) {
			t.Fatal("Internal API never became available")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

const validLayout = `{
	"name": "tiny",
	"layout": [
		"#####",
		"#S**#",
		"#*G*#",
		"#####"
	]
}`

func TestValidateLevelFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		content   string
		wantValid bool
		wantText  string
	}{
		{"static layout", validLayout, true, "Grid: 5x4"},
		{"random level", `{"name":"rnd","width":9,"height":7,"max_ghosts":2,"min_ghosts":1}`, true, "(random)"},
		{"unreachable pellet", `{"name":"walled","layout":["#####","#S#*#","#####"]}`, false, "unreachable"},
		{"malformed json", `{"name":`, false, "failed to parse"},
		{"too small", `{"name":"tiny","width":2,"height":2}`, false, "width"},
		{"bad character", `{"name":"bad","layout":["###","#X#","###"]}`, false, "unknown character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".json", tt.content)
			result := validateLevelFile(path)

			if result.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			lines := result.Errors
			if result.Valid {
				lines = result.Info
			}
			if !strings.Contains(strings.Join(lines, "\n"), tt.wantText) {
				t.Errorf("Expected %q in %v", tt.wantText, lines)
			}
		})
	}
}

func TestLevelFiles(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.json", validLayout)
	a := writeFile(t, dir, "a.json", validLayout)
	writeFile(t, dir, "notes.txt", "ignored")
	single := writeFile(t, t.TempDir(), "single.json", validLayout)

	files, err := levelFiles([]string{dir, single})
	if err != nil {
		t.Fatalf("levelFiles() error = %v", err)
	}
	want := []string{a, b, single}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Errorf("levelFiles() = %v, want %v", files, want)
	}

	if _, err := levelFiles([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Error("Expected an error for a missing path")
	}
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(context.Background(), append([]string{"pelletmaze"}, args...))
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", validLayout)

	out, err := runApp(t, "validate", dir)
	if err != nil {
		t.Fatalf("validate error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "✓ good.json") || !strings.Contains(out, "1/1 level files valid") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	writeFile(t, dir, "bad.json", `{"name":"bad","layout":["###","#X#","###"]}`)
	out, err = runApp(t, "validate", dir)
	if err == nil {
		t.Error("Expected an error when a level is invalid")
	}
	if !strings.Contains(out, "✗ bad.json") {
		t.Errorf("Expected bad.json to be reported, got:\n%s", out)
	}
}

func TestValidateCommand_ShippedLevels(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	out, err := runApp(t, "validate", "configs")
	if err != nil {
		t.Fatalf("Shipped levels should validate: %v\n%s", err, out)
	}
}

func TestLoadSettings_FlagsOverride(t *testing.T) {
	var got *settings.Settings
	app := newApp()
	app.Commands = append(app.Commands, &cli.Command{
		Name: "probe",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var err error
			got, err = loadSettings(cmd)
			return err
		},
	})

	args := []string{"pelletmaze", "--settings-dir", t.TempDir(), "--port", "9123", "--config-dir", "levels", "probe"}
	if err := app.Run(context.Background(), args); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got.Server.Port != 9123 {
		t.Errorf("Port = %d, want 9123", got.Server.Port)
	}
	if got.Game.ConfigDir != "levels" {
		t.Errorf("ConfigDir = %q, want %q", got.Game.ConfigDir, "levels")
	}
	if got.Game.DefaultLevel != engine.LevelClassic {
		t.Errorf("DefaultLevel = %q, want the settings default", got.Game.DefaultLevel)
	}
}

func TestSimulate(t *testing.T) {
	svcs, err := initializeServices(testSettings(""), serviceOptions{})
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	summary, err := simulate(context.Background(), svcs, engine.LevelSmall, 3, 300)
	if err != nil {
		t.Fatalf("simulate() error = %v", err)
	}

	if summary.Games != 3 || len(summary.Outcomes) != 3 {
		t.Fatalf("Expected 3 games, got %+v", summary)
	}
	total := 0
	for _, n := range summary.Results {
		total += n
	}
	if total != 3 {
		t.Errorf("Results %v do not add up to 3", summary.Results)
	}
	if svcs.sessions.Count() != 0 {
		t.Errorf("Simulated sessions should be deleted, %d left", svcs.sessions.Count())
	}

	if _, err := simulate(context.Background(), svcs, "nope", 1, 10); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}
