package bot

import (
	"reflect"
	"testing"

	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
)

func corridor(player engine.Position, ghosts ...engine.Position) *engine.GameState {
	state := &engine.GameState{
		Rows: []string{
			"#######",
			"#*...*#",
			"#######",
		},
		Width:  7,
		Height: 3,
		Player: engine.Player{Position: player, Lives: 3},
		Lives:  3,
	}
	for i, g := range ghosts {
		state.Ghosts = append(state.Ghosts, engine.Ghost{ID: i, Position: g})
	}
	return state
}

func TestGreedyStrategy_NextMoves(t *testing.T) {
	tests := []struct {
		name  string
		state *engine.GameState
		max   int
		want  []engine.Direction
	}{
		{
			name:  "walks to the only pellet",
			state: corridor(engine.Position{X: 4, Y: 1}, engine.Position{X: 1, Y: 1}),
			max:   10,
			want:  []engine.Direction{engine.Right},
		},
		{
			name:  "avoids the pellet guarded by a ghost",
			state: corridor(engine.Position{X: 3, Y: 1}, engine.Position{X: 1, Y: 1}),
			max:   10,
			want:  []engine.Direction{engine.Right},
		},
		{
			name: "commits to the full path when no ghosts",
			state: &engine.GameState{
				Rows:   []string{"#####", "#..*#", "#####"},
				Player: engine.Player{Position: engine.Position{X: 1, Y: 1}},
			},
			max:  10,
			want: []engine.Direction{engine.Right, engine.Right},
		},
		{
			name: "clips to max",
			state: &engine.GameState{
				Rows:   []string{"#####", "#..*#", "#####"},
				Player: engine.Player{Position: engine.Position{X: 1, Y: 1}},
			},
			max:  1,
			want: []engine.Direction{engine.Right},
		},
		{
			name: "flees when no pellet is safe",
			state: &engine.GameState{
				Rows:   []string{"#####", "#...#", "#####"},
				Player: engine.Player{Position: engine.Position{X: 2, Y: 1}},
				Ghosts: []engine.Ghost{{ID: 0, Position: engine.Position{X: 1, Y: 1}}},
			},
			max:  10,
			want: []engine.Direction{engine.Right},
		},
		{
			name:  "round over",
			state: &engine.GameState{Rows: []string{"###", "#.#", "###"}, Victory: true},
			max:   10,
			want:  nil,
		},
		{
			name:  "nil state",
			state: nil,
			max:   10,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewGreedyStrategy().NextMoves(tt.state, tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NextMoves() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGreedyStrategy_Budget(t *testing.T) {
	s := NewGreedyStrategy()
	tests := []struct {
		ghostDist int
		max       int
		want      int
	}{
		{-1, 50, 50},
		{1, 50, 1},
		{4, 50, 1},
		{5, 50, 1},
		{10, 50, 3},
		{40, 5, 5},
	}
	for _, tt := range tests {
		if got := s.budget(tt.ghostDist, tt.max); got != tt.want {
			t.Errorf("budget(%d, %d) = %d, want %d", tt.ghostDist, tt.max, got, tt.want)
		}
	}
}

func TestGreedyStrategy_FleeKeepsHeading(t *testing.T) {
	// Left and Right are equally far from the ghost below the player
	m, err := engine.MapFromRows([]string{
		"#######",
		"#.....#",
		"###.###",
		"#######",
	})
	if err != nil {
		t.Fatalf("MapFromRows() error = %v", err)
	}
	player := engine.Position{X: 3, Y: 1}
	ghosts := []engine.Ghost{{Position: engine.Position{X: 3, Y: 2}}}

	for _, last := range []engine.Direction{engine.Left, engine.Right} {
		t.Run(string(last), func(t *testing.T) {
			s := NewGreedyStrategy()
			s.last = last
			got, ok := s.flee(m, player, ghosts)
			if !ok {
				t.Fatal("Expected a flee move")
			}
			if got != last {
				t.Errorf("flee() = %s, want %s (not %s)", got, last, last.Opposite())
			}
		})
	}
}

func TestAvoidGhosts(t *testing.T) {
	m, err := engine.MapFromRows([]string{
		"#####",
		"#...#",
		"#...#",
		"#####",
	})
	if err != nil {
		t.Fatalf("MapFromRows() error = %v", err)
	}
	player := engine.Position{X: 1, Y: 1}
	safe := avoidGhosts(m, player, []engine.Ghost{{Position: engine.Position{X: 2, Y: 1}}})

	for _, p := range []engine.Position{{X: 2, Y: 1}, {X: 3, Y: 1}, {X: 2, Y: 2}} {
		if safe.IsWalkable(p) {
			t.Errorf("Expected %s to be blocked", p)
		}
	}
	if !safe.IsWalkable(player) {
		t.Error("Player cell must stay open")
	}
	if !m.IsWalkable(engine.Position{X: 2, Y: 1}) {
		t.Error("Original map must not be modified")
	}
}
