package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Mutators
	MovePlayer(dir Direction) bool
	MoveGhosts()
	Step(dir Direction) TurnResult

	// Queries
	Map() *Map
	Player() *Player
	Ghosts() []*Ghost
	PlayerSpawn() Position
	PelletsRemaining() int
	LivesRemaining() int
	IsGameOver() bool
	IsVictory() bool
	IsPoweredUp() bool
	ConsumePlayerDeath() bool

	// Snapshot
	State() *GameState
}

var _ Engine = (*GameEngine)(nil)

// GameEngine owns one round. It is not safe for concurrent use.
type GameEngine struct {
	grid   *Map
	player *Player
	ghosts []*Ghost
	spawn  Position

	pelletsRemaining int
	lives            int
	playerDied       bool
	poweredUp        bool
	turns            int
	levelName        string

	rng *rand.Rand
}

type engineOptions struct {
	rng       *rand.Rand
	generator *Generator
	lives     int
	score     int
	levelName string
}

// Option configures a GameEngine at construction
type Option func(*engineOptions)

// WithRand sets the random source used for ghost movement and, unless
// WithGenerator is also given, for map generation.
func WithRand(rng *rand.Rand) Option {
	return func(o *engineOptions) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// WithGenerator sets the generator NewGameEngine builds the map with.
func WithGenerator(g *Generator) Option {
	return func(o *engineOptions) {
		o.generator = g
	}
}

// WithLives overrides the starting life count.
func WithLives(lives int) Option {
	return func(o *engineOptions) {
		if lives > 0 {
			o.lives = lives
		}
	}
}

// WithStartingScore carries a score into the round ("next round, keep score").
func WithStartingScore(score int) Option {
	return func(o *engineOptions) {
		if score > 0 {
			o.score = score
		}
	}
}

// WithLevelName labels the round in snapshots.
func WithLevelName(name string) Option {
	return func(o *engineOptions) {
		o.levelName = name
	}
}

func buildOptions(opts []Option) *engineOptions {
	o := &engineOptions{lives: DefaultLives}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// NewGameEngine generates a random width x height maze and starts a round on it.
func NewGameEngine(width, height int, opts ...Option) (*GameEngine, error) {
	o := buildOptions(opts)
	gen := o.generator
	if gen == nil {
		gen = NewGenerator(WithGeneratorRand(o.rng))
	}
	gm, err := gen.Generate(width, height)
	if err != nil {
		return nil, err
	}
	return newGameEngine(gm, o)
}

// NewGameEngineFromMap starts a round on an already generated or parsed map.
func NewGameEngineFromMap(gm *GeneratedMap, opts ...Option) (*GameEngine, error) {
	return newGameEngine(gm, buildOptions(opts))
}

func newGameEngine(gm *GeneratedMap, o *engineOptions) (*GameEngine, error) {
	if gm == nil {
		return nil, fmt.Errorf("%w: nil map", ErrInvalidLayout)
	}
	grid, err := NewMap(gm.Tiles)
	if err != nil {
		return nil, err
	}
	if grid.Width < MinMapSize || grid.Height < MinMapSize {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, grid.Width, grid.Height)
	}
	if !grid.IsWalkable(gm.PlayerSpawn) {
		return nil, fmt.Errorf("%w: player spawn %s is not walkable", ErrInvalidLayout, gm.PlayerSpawn)
	}

	// Spawns must be pairwise distinct.
	seen := map[Position]bool{gm.PlayerSpawn: true}
	ghosts := make([]*Ghost, 0, len(gm.Ghosts))
	for i, p := range gm.Ghosts {
		if !grid.IsWalkable(p) {
			return nil, fmt.Errorf("%w: ghost spawn %s is not walkable", ErrInvalidLayout, p)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: ghost spawn %s overlaps another spawn", ErrInvalidLayout, p)
		}
		seen[p] = true
		ghosts = append(ghosts, &Ghost{ID: i, Position: p})
	}

	player := &Player{
		Position: gm.PlayerSpawn,
		Score:    o.score,
		Lives:    o.lives,
	}

	return &GameEngine{
		grid:             grid,
		player:           player,
		ghosts:           ghosts,
		spawn:            gm.PlayerSpawn,
		pelletsRemaining: grid.CountPellets(),
		lives:            o.lives,
		levelName:        o.levelName,
		rng:              o.rng,
	}, nil
}

// MovePlayer attempts to move the player one cell. A blocked move is a
// silent no-op and returns false.
func (e *GameEngine) MovePlayer(dir Direction) bool {
	var res TurnResult
	e.movePlayerEntity(dir, &res)
	return res.Moved
}

// MoveGhosts moves every ghost one cell in a random direction.
func (e *GameEngine) MoveGhosts() {
	e.moveGhosts()
}

func (e *GameEngine) moveGhosts() bool {
	died := false
	for _, g := range e.ghosts {
		dir := Directions[e.rng.Intn(len(Directions))]
		e.moveGhostEntity(g, dir)
		if g.Position == e.player.Position {
			e.killPlayer()
			died = true
		}
	}
	return died
}

// Step plays one turn: the player move, then one ghost pass.
func (e *GameEngine) Step(dir Direction) TurnResult {
	var res TurnResult
	e.movePlayerEntity(dir, &res)
	if e.moveGhosts() {
		res.Died = true
	}
	e.turns++
	res.GameOver = e.IsGameOver()
	res.Victory = e.IsVictory()
	return res
}

// Map returns the live grid
func (e *GameEngine) Map() *Map {
	return e.grid
}

// Player returns the live player
func (e *GameEngine) Player() *Player {
	return e.player
}

// Ghosts returns the ghosts in a stable order for the round
func (e *GameEngine) Ghosts() []*Ghost {
	return e.ghosts
}

// PlayerSpawn returns the respawn position fixed at round start
func (e *GameEngine) PlayerSpawn() Position {
	return e.spawn
}

func (e *GameEngine) PelletsRemaining() int {
	return e.pelletsRemaining
}

func (e *GameEngine) LivesRemaining() int {
	return e.lives
}

// IsGameOver reports whether the player is out of lives
func (e *GameEngine) IsGameOver() bool {
	return e.lives <= 0
}

// IsVictory reports whether every pellet has been eaten
func (e *GameEngine) IsVictory() bool {
	return e.pelletsRemaining == 0
}

// IsPoweredUp reports whether a power pellet has been eaten this round.
// Nothing reads the flag yet; ghosts behave the same either way.
func (e *GameEngine) IsPoweredUp() bool {
	return e.poweredUp
}

// ConsumePlayerDeath returns true once per death, then false until the next one.
func (e *GameEngine) ConsumePlayerDeath() bool {
	died := e.playerDied
	e.playerDied = false
	return died
}

// Turns returns the number of turns played through Step
func (e *GameEngine) Turns() int {
	return e.turns
}

// State returns a JSON-friendly snapshot of the round, including decision aids
func (e *GameEngine) State() *GameState {
	ghosts := make([]Ghost, len(e.ghosts))
	for i, g := range e.ghosts {
		ghosts[i] = *g
	}
	var nearest []Direction
	if path, ok := FindPathToNearestPellet(e.grid, e.player.Position); ok {
		nearest = PathDirections(e.player.Position, path)
	}
	return &GameState{
		Rows:              e.grid.Rows(),
		Width:             e.grid.Width,
		Height:            e.grid.Height,
		Player:            *e.player,
		Ghosts:            ghosts,
		PlayerSpawn:       e.spawn,
		Score:             e.player.Score,
		Lives:             e.lives,
		PelletsRemaining:  e.pelletsRemaining,
		PoweredUp:         e.poweredUp,
		GameOver:          e.IsGameOver(),
		Victory:           e.IsVictory(),
		Turns:             e.turns,
		LevelName:         e.levelName,
		PossibleMoves:     PossibleMoves(e.grid, e.player.Position),
		LocalView3x3:      e.localView(),
		GhostRisk:         AnalyzeGhostRisk(e.player.Position, e.ghosts, e.lives),
		NearestPelletPath: nearest,
	}
}

// localView renders the 3x3 neighbourhood of the player. P marks the player,
// G a ghost, and out-of-bounds cells read as walls.
func (e *GameEngine) localView() []string {
	ghostAt := make(map[Position]bool, len(e.ghosts))
	for _, g := range e.ghosts {
		ghostAt[g.Position] = true
	}
	view := make([]string, 0, 3)
	for dy := -1; dy <= 1; dy++ {
		row := make([]rune, 0, 3)
		for dx := -1; dx <= 1; dx++ {
			p := e.player.Position.Add(dx, dy)
			switch {
			case dx == 0 && dy == 0:
				row = append(row, 'P')
			case ghostAt[p]:
				row = append(row, 'G')
			default:
				row = append(row, e.grid.TileAt(p).Rune())
			}
		}
		view = append(view, string(row))
	}
	return view
}
