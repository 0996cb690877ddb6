package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
)

func TestAnalyzeLevel(t *testing.T) {
	level := &engine.LevelConfig{
		Name: "corridor",
		Layout: []string{
			"#########",
			"#S****G.#",
			"#*#######",
			"#########",
		},
	}

	a, err := analyzeLevel(level, 1)
	if err != nil {
		t.Fatalf("analyzeLevel() error = %v", err)
	}

	if a.Name != "corridor" {
		t.Errorf("Name = %q, want corridor", a.Name)
	}
	if a.Stats.Pellets != 5 {
		t.Errorf("Pellets = %d, want 5", a.Stats.Pellets)
	}
	if a.GhostDistance != 5 {
		t.Errorf("GhostDistance = %d, want 5", a.GhostDistance)
	}
	if a.FarthestPellet != 4 {
		t.Errorf("FarthestPellet = %d, want 4", a.FarthestPellet)
	}
	if a.NearestPellet != 1 {
		t.Errorf("NearestPellet = %d, want 1", a.NearestPellet)
	}
	// (7,1) at the east end and (1,2) below the spawn
	if a.DeadEnds != 2 {
		t.Errorf("DeadEnds = %d, want 2", a.DeadEnds)
	}
}

func TestAnalyzeLevel_Random(t *testing.T) {
	level := engine.BuiltinLevels()[engine.LevelSmall]

	a, err := analyzeLevel(level, 7)
	if err != nil {
		t.Fatalf("analyzeLevel() error = %v", err)
	}
	if a.Stats.Width != level.Width || a.Stats.Height != level.Height {
		t.Errorf("size = %dx%d, want %dx%d", a.Stats.Width, a.Stats.Height, level.Width, level.Height)
	}
	if len(a.Stats.Unreachable) != 0 {
		t.Errorf("Generated level has unreachable pellets: %v", a.Stats.Unreachable)
	}
}

func TestPrintAnalysis(t *testing.T) {
	tests := []struct {
		name     string
		analysis *Analysis
		want     []string
	}{
		{
			name: "healthy level",
			analysis: &Analysis{
				Stats:          &engine.LevelStats{Width: 5, Height: 5, Pellets: 3, PowerPellets: 1, Ghosts: 1},
				GhostDistance:  6,
				FarthestPellet: 4,
				NearestPellet:  2,
			},
			want: []string{"Grid Size: 5 x 5", "80 points total", "Nearest Pellet: 2 cells", "Nearest Ghost: 6 moves", "✅ All pellets are reachable"},
		},
		{
			name: "ghost at the door",
			analysis: &Analysis{
				Stats:         &engine.LevelStats{Ghosts: 1},
				GhostDistance: 1,
			},
			want: []string{"WARNING: a ghost starts 1 moves"},
		},
		{
			name: "no reachable ghost",
			analysis: &Analysis{
				Stats:         &engine.LevelStats{},
				GhostDistance: -1,
			},
			want: []string{"No ghost can reach the spawn"},
		},
		{
			name: "unreachable pellets",
			analysis: &Analysis{
				Stats: &engine.LevelStats{Unreachable: []engine.Position{
					{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}, {X: 5, Y: 1}, {X: 6, Y: 1}, {X: 7, Y: 1},
				}},
			},
			want: []string{"CRITICAL: 7 pellets", "Unreachable: (5,1)", "... and 2 more"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printAnalysis(&buf, tt.analysis)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("Expected %q in output:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	good := `{"name":"tiny","layout":["#####","#S*G#","#####"]}`
	if err := os.WriteFile(filepath.Join(dir, "tiny.json"), []byte(good), 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name":`), 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}

	var buf bytes.Buffer
	if err := run(&buf, []string{dir}, true, 1); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"=== Analyzing tiny ===",
		"=== broken.json ===",
		"=== Analyzing " + engine.LevelClassic + " ===",
		"=== Analyzing " + engine.LevelSmall + " ===",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}
