package engine

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestMovePlayer_DirectionMapping(t *testing.T) {
	tests := []struct {
		direction Direction
		want      Position
	}{
		{Up, Position{X: 2, Y: 1}},
		{Down, Position{X: 2, Y: 3}},
		{Left, Position{X: 1, Y: 2}},
		{Right, Position{X: 3, Y: 2}},
	}

	for _, tt := range tests {
		t.Run(string(tt.direction), func(t *testing.T) {
			e := newTestEngine(t, nil,
				"#####",
				"#...#",
				"#.S.#",
				"#...#",
				"#####",
			)
			if !e.MovePlayer(tt.direction) {
				t.Fatalf("Expected move %s to succeed", tt.direction)
			}
			if e.Player().Position != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, e.Player().Position)
			}
		})
	}
}

func TestMovePlayer_WallIsNoOp(t *testing.T) {
	e := newTestEngine(t, nil,
		"#####",
		"##*##",
		"#*S*#",
		"##*##",
		"#####",
	)
	// Surround the player with walls so every direction is blocked
	for _, d := range Directions {
		dx, dy, _ := d.Offset()
		p := e.Player().Position.Add(dx, dy)
		e.Map().Tiles[p.Y][p.X] = Wall
	}
	e.pelletsRemaining = e.Map().CountPellets()

	before := e.Map().Rows()
	for i := 0; i < 5; i++ {
		for _, d := range Directions {
			if e.MovePlayer(d) {
				t.Fatalf("Expected move %s into a wall to be rejected", d)
			}
		}
	}

	if e.Player().Position != (Position{X: 2, Y: 2}) {
		t.Errorf("Expected position unchanged, got %s", e.Player().Position)
	}
	if e.Player().Score != 0 {
		t.Errorf("Expected score unchanged, got %d", e.Player().Score)
	}
	if !reflect.DeepEqual(before, e.Map().Rows()) {
		t.Error("Expected map unchanged after bumping walls")
	}
}

func TestMovePlayer_WallAdjacentEverywhere(t *testing.T) {
	e, err := NewGameEngine(8, 6, WithRand(rand.New(rand.NewSource(11))))
	if err != nil {
		t.Fatal(err)
	}
	e.ghosts = nil

	m := e.Map()
	for y := 1; y < m.Height-1; y++ {
		for x := 1; x < m.Width-1; x++ {
			for _, d := range Directions {
				dx, dy, _ := d.Offset()
				from := Position{X: x, Y: y}
				if m.IsWalkable(from.Add(dx, dy)) {
					continue
				}
				e.player.Position = from
				score := e.Player().Score
				if e.MovePlayer(d) {
					t.Fatalf("Move %s from %s into a wall succeeded", d, from)
				}
				if e.Player().Position != from || e.Player().Score != score {
					t.Fatalf("Blocked move %s from %s mutated the player", d, from)
				}
			}
		}
	}
}

func TestMovePlayer_OutOfBounds(t *testing.T) {
	e := newTestEngine(t, nil,
		"###",
		"S*#",
		"###",
	)

	if e.MovePlayer(Left) {
		t.Error("Expected move off the grid to be rejected")
	}
	if e.Player().Position != (Position{X: 0, Y: 1}) {
		t.Errorf("Expected player to stay on the edge, got %s", e.Player().Position)
	}
}

func TestMovePlayer_InvalidDirection(t *testing.T) {
	e := newTestEngine(t, nil,
		"#####",
		"#S**#",
		"#####",
	)

	if e.MovePlayer(Direction("diagonal")) {
		t.Error("Expected unknown direction to be a no-op")
	}
	if e.Player().Position != e.PlayerSpawn() {
		t.Error("Expected player to stay put")
	}
}

func TestMovePlayer_EatPellet(t *testing.T) {
	tests := []struct {
		name      string
		row       string
		wantScore int
		wantPower bool
	}{
		{"pellet", "#S*.#", PelletScore, false},
		{"power pellet", "#SO.#", PowerPelletScore, true},
		{"empty path", "#S.*#", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, nil, "#####", tt.row, "#####")
			pellets := e.PelletsRemaining()
			target := Position{X: 2, Y: 1}
			wasPellet := e.Map().TileAt(target).IsPellet()

			if !e.MovePlayer(Right) {
				t.Fatal("Expected move to succeed")
			}

			if e.Player().Score != tt.wantScore {
				t.Errorf("Expected score %d, got %d", tt.wantScore, e.Player().Score)
			}
			if e.Map().TileAt(target) != Path {
				t.Errorf("Expected target tile to be path, got %s", e.Map().TileAt(target))
			}
			wantPellets := pellets
			if wasPellet {
				wantPellets--
			}
			if e.PelletsRemaining() != wantPellets {
				t.Errorf("Expected %d pellets remaining, got %d", wantPellets, e.PelletsRemaining())
			}
			if e.IsPoweredUp() != tt.wantPower {
				t.Errorf("Expected powered up %v, got %v", tt.wantPower, e.IsPoweredUp())
			}
		})
	}
}

func TestMovePlayer_PelletEatenOnlyOnce(t *testing.T) {
	e := newTestEngine(t, nil,
		"#####",
		"#S*.#",
		"#####",
	)

	e.MovePlayer(Right)
	e.MovePlayer(Left)
	e.MovePlayer(Right)

	if e.Player().Score != PelletScore {
		t.Errorf("Expected score %d after revisiting, got %d", PelletScore, e.Player().Score)
	}
	if e.PelletsRemaining() != 0 {
		t.Errorf("Expected 0 pellets remaining, got %d", e.PelletsRemaining())
	}
}

func TestMoveGhostEntity_SharesWallCheck(t *testing.T) {
	e := newTestEngine(t, nil,
		"#####",
		"#S.G#",
		"#####",
	)
	g := e.Ghosts()[0]

	for _, d := range []Direction{Up, Down, Right} {
		if e.moveGhostEntity(g, d) {
			t.Errorf("Expected ghost move %s to be blocked", d)
		}
	}
	if !e.moveGhostEntity(g, Left) {
		t.Fatal("Expected ghost move left to succeed")
	}
	if g.Position != (Position{X: 2, Y: 1}) {
		t.Errorf("Expected ghost at (2,1), got %s", g.Position)
	}
}

func TestMoveGhosts_MayShareCells(t *testing.T) {
	// Two ghosts in a sealed two-cell corridor, the player walled off.
	gm := &GeneratedMap{
		Tiles: [][]TileType{
			{Wall, Wall, Wall, Wall, Wall, Wall},
			{Wall, Path, Wall, Path, Path, Wall},
			{Wall, Wall, Wall, Wall, Wall, Wall},
		},
		PlayerSpawn: Position{X: 1, Y: 1},
		Ghosts:      []Position{{X: 3, Y: 1}, {X: 4, Y: 1}},
	}
	e, err := NewGameEngineFromMap(gm, WithRand(rand.New(rand.NewSource(5))))
	if err != nil {
		t.Fatal(err)
	}

	shared := false
	for i := 0; i < 500 && !shared; i++ {
		e.MoveGhosts()
		ghosts := e.Ghosts()
		if len(ghosts) != 2 {
			t.Fatalf("Expected 2 ghosts, got %d", len(ghosts))
		}
		shared = ghosts[0].Position == ghosts[1].Position
	}
	if !shared {
		t.Fatal("Expected the ghosts to share a cell at some point")
	}

	ghosts := e.Ghosts()
	if ghosts[0].ID != 0 || ghosts[1].ID != 1 {
		t.Errorf("Expected ghost IDs 0 and 1, got %d and %d", ghosts[0].ID, ghosts[1].ID)
	}
	p := ghosts[0].Position
	if p != (Position{X: 3, Y: 1}) && p != (Position{X: 4, Y: 1}) {
		t.Errorf("Expected shared cell inside the corridor, got %s", p)
	}
	if e.LivesRemaining() != DefaultLives {
		t.Errorf("Expected no deaths, got %d lives", e.LivesRemaining())
	}
}

func TestKillPlayer_RespawnOntoGhostDoesNotKillAgain(t *testing.T) {
	gm := &GeneratedMap{
		Tiles: [][]TileType{
			{Wall, Wall, Wall, Wall, Wall, Wall},
			{Wall, Path, Path, Path, Path, Wall},
			{Wall, Wall, Wall, Wall, Wall, Wall},
		},
		PlayerSpawn: Position{X: 1, Y: 1},
		Ghosts:      []Position{{X: 4, Y: 1}, {X: 3, Y: 1}},
	}
	e, err := NewGameEngineFromMap(gm, WithRand(rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatal(err)
	}

	if !e.MovePlayer(Right) {
		t.Fatal("Expected move right to succeed")
	}
	// Park a ghost on the vacated spawn cell.
	e.Ghosts()[0].Position = gm.PlayerSpawn

	var res TurnResult
	e.movePlayerEntity(Right, &res)
	if !res.Died {
		t.Fatal("Expected walking into the ghost at (3,1) to kill the player")
	}
	if e.LivesRemaining() != DefaultLives-1 {
		t.Errorf("Expected exactly one life lost, got %d lives", e.LivesRemaining())
	}
	if e.Player().Position != gm.PlayerSpawn {
		t.Errorf("Expected respawn at %s, got %s", gm.PlayerSpawn, e.Player().Position)
	}
	if e.Player().Position != e.Ghosts()[0].Position {
		t.Error("Expected player to share the spawn cell with the parked ghost")
	}
}
