package engine

import (
	"errors"
	"fmt"
	"strings"
)

// TileType represents the content of a single grid cell
type TileType string

const (
	Wall        TileType = "wall"
	Path        TileType = "path"
	Pellet      TileType = "pellet"
	PowerPellet TileType = "power_pellet"
)

// Scoring and validation constants
const (
	PelletScore      = 10
	PowerPelletScore = 50
	DefaultLives     = 3

	MinMapSize       = 3
	MaxMapSize       = 64
	DefaultMinGhosts = 1
	DefaultMaxGhosts = 4
	MaxGhosts        = 16
	MaxBulkMoves     = 50
)

var (
	ErrInvalidDimensions = errors.New("invalid map dimensions")
	ErrInvalidGhostRange = errors.New("invalid ghost range")
	ErrInvalidLayout     = errors.New("invalid layout")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrInvalidLevel      = errors.New("invalid level")
)

// Rune returns the layout character for the tile.
func (t TileType) Rune() rune {
	switch t {
	case Wall:
		return '#'
	case Pellet:
		return '*'
	case PowerPellet:
		return 'O'
	default:
		return '.'
	}
}

// TileFromRune is the inverse of Rune for rendered rows. Any character
// other than '#', '*' and 'O' reads as Path.
func TileFromRune(r rune) TileType {
	switch r {
	case '#':
		return Wall
	case '*':
		return Pellet
	case 'O':
		return PowerPellet
	default:
		return Path
	}
}

// IsPellet reports whether the tile can be eaten for score.
func (t TileType) IsPellet() bool {
	return t == Pellet || t == PowerPellet
}

// Position represents x,y grid coordinates, origin top-left
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position shifted by dx, dy.
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is the movement vocabulary shared by the player and ghosts
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every direction in a stable order.
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection converts user input into a Direction (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Up, Down, Left, Right:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Offset returns the unit step for the direction. ok is false for unknown values.
func (d Direction) Offset() (dx, dy int, ok bool) {
	switch d {
	case Up:
		return 0, -1, true
	case Down:
		return 0, 1, true
	case Left:
		return -1, 0, true
	case Right:
		return 1, 0, true
	}
	return 0, 0, false
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return d
}

// Player is the pellet-eating entity controlled by the caller
type Player struct {
	Position
	Score int `json:"score"`
	// Lives mirrors the engine's authoritative counter.
	Lives int `json:"lives"`
}

// Ghost is a randomly wandering enemy. ID is stable for the round.
type Ghost struct {
	ID int `json:"id"`
	Position
}

// GeneratedMap is produced by the Generator (or a layout) and consumed once
// by the engine constructor
type GeneratedMap struct {
	Tiles       [][]TileType
	PlayerSpawn Position
	Ghosts      []Position
	Width       int
	Height      int
}

// GameState is a JSON-friendly snapshot of a round
type GameState struct {
	Rows             []string `json:"rows"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	Player           Player   `json:"player"`
	Ghosts           []Ghost  `json:"ghosts"`
	PlayerSpawn      Position `json:"player_spawn"`
	Score            int      `json:"score"`
	Lives            int      `json:"lives"`
	PelletsRemaining int      `json:"pellets_remaining"`
	PoweredUp        bool     `json:"powered_up"`
	GameOver         bool     `json:"game_over"`
	Victory          bool     `json:"victory"`
	Turns            int      `json:"turns"`
	LevelName        string   `json:"level_name,omitempty"`

	// Computed helper views (not required for core game logic)
	PossibleMoves     []Direction `json:"possible_moves,omitempty"`
	LocalView3x3      []string    `json:"local_view_3x3,omitempty"`
	GhostRisk         string      `json:"ghost_risk,omitempty"`
	NearestPelletPath []Direction `json:"nearest_pellet_path,omitempty"`
}

// TurnResult summarises what happened during a Step
type TurnResult struct {
	Direction      Direction `json:"direction"`
	From           Position  `json:"from"`
	To             Position  `json:"to"`
	Moved          bool      `json:"moved"`
	ScoreDelta     int       `json:"score_delta"`
	PelletsEaten   int       `json:"pellets_eaten"`
	AtePowerPellet bool      `json:"ate_power_pellet,omitempty"`
	Died           bool      `json:"died,omitempty"`
	GameOver       bool      `json:"game_over,omitempty"`
	Victory        bool      `json:"victory,omitempty"`
}
