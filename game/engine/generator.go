package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// Generator builds random mazes: border walls, pellets everywhere inside,
// one player spawn and a random number of ghost spawns.
type Generator struct {
	rng          *rand.Rand
	minGhosts    int
	maxGhosts    int
	powerPellets int
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithGeneratorRand sets the random source, for reproducible mazes.
func WithGeneratorRand(rng *rand.Rand) GeneratorOption {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithSeed seeds the generator's random source.
func WithSeed(seed int64) GeneratorOption {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithGhostRange sets the inclusive range the ghost count is drawn from.
func WithGhostRange(min, max int) GeneratorOption {
	return func(g *Generator) {
		g.minGhosts = min
		g.maxGhosts = max
	}
}

// WithPowerPellets turns n random interior pellets into power pellets.
func WithPowerPellets(n int) GeneratorOption {
	return func(g *Generator) {
		g.powerPellets = n
	}
}

// NewGenerator creates a generator with the default ghost range [1, 4].
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		minGhosts: DefaultMinGhosts,
		maxGhosts: DefaultMaxGhosts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a width x height maze. Row 0, row height-1, column 0 and
// column width-1 are walls; every other cell is a pellet except the player
// spawn and the ghost spawns, which are plain paths.
func (g *Generator) Generate(width, height int) (*GeneratedMap, error) {
	if width < MinMapSize || height < MinMapSize || width > MaxMapSize || height > MaxMapSize {
		return nil, fmt.Errorf("%w: %dx%d (each side must be between %d and %d)",
			ErrInvalidDimensions, width, height, MinMapSize, MaxMapSize)
	}
	if g.minGhosts < 0 || g.maxGhosts < g.minGhosts || g.maxGhosts > MaxGhosts {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidGhostRange, g.minGhosts, g.maxGhosts)
	}

	tiles := make([][]TileType, height)
	free := make([]Position, 0, (width-2)*(height-2))
	for y := 0; y < height; y++ {
		tiles[y] = make([]TileType, width)
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				tiles[y][x] = Wall
				continue
			}
			tiles[y][x] = Path
			free = append(free, Position{X: x, Y: y})
		}
	}

	// Fisher-Yates; spawns are then taken from the front without replacement.
	g.rng.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})

	playerSpawn := free[0]
	free = free[1:]

	ghostCount := g.minGhosts
	if g.maxGhosts > g.minGhosts {
		ghostCount += g.rng.Intn(g.maxGhosts - g.minGhosts + 1)
	}
	if ghostCount > len(free) {
		ghostCount = len(free)
	}
	ghosts := append([]Position(nil), free[:ghostCount]...)
	free = free[ghostCount:]

	for _, p := range free {
		tiles[p.Y][p.X] = Pellet
	}
	for i := 0; i < g.powerPellets && i < len(free); i++ {
		p := free[i]
		tiles[p.Y][p.X] = PowerPellet
	}

	return &GeneratedMap{
		Tiles:       tiles,
		PlayerSpawn: playerSpawn,
		Ghosts:      ghosts,
		Width:       width,
		Height:      height,
	}, nil
}

// ClassicLayout is the fixed level 1 maze.
//
//	#  wall          *  pellet        O  power pellet
//	.  path          -  ghost gate    (space) ghost house
//	S  player spawn  G  ghost spawn
var ClassicLayout = []string{
	"############################",
	"#************##************#",
	"#*####*#####*##*#####*####*#",
	"#O####*#####*##*#####*####O#",
	"#*####*#####*##*#####*####*#",
	"#**************************#",
	"#*####*##*########*##*####*#",
	"#******##****##****##******#",
	"######*#####*##*#####*######",
	"######*#####*##*#####*######",
	"######*##..........##*######",
	"######*##.###--###.##*######",
	"######*##.#      #.##*######",
	"......*...#      #...*......",
	"######*##.#      #.##*######",
	"######*##.###--###.##*######",
	"######*##..........##*######",
	"######*#####*##*#####*######",
	"######*#####*##*#####*######",
	"#******##****##****##******#",
	"#*####*##*########*##*####*#",
	"#**************************#",
	"#*####*#####*##*#####*####*#",
	"#O**##****************##**O#",
	"###*##*##*########*##*##*###",
	"#******##****##****##******#",
	"#*##########*##*##########*#",
	"#**************************#",
	"############################",
}

// maxHouseGhosts caps ghosts placed on ghost-house cells when a layout has no G markers.
const maxHouseGhosts = 4

// ParseLayout builds a GeneratedMap from layout rows. Without an S marker the
// player spawns on the last '.' in reading order; without G markers ghosts
// take the first four ghost-house cells.
func ParseLayout(rows []string) (*GeneratedMap, error) {
	if len(rows) < MinMapSize || len(rows) > MaxMapSize {
		return nil, fmt.Errorf("%w: layout has %d rows", ErrInvalidDimensions, len(rows))
	}
	width := len(rows[0])
	if width < MinMapSize || width > MaxMapSize {
		return nil, fmt.Errorf("%w: layout has %d columns", ErrInvalidDimensions, width)
	}

	tiles := make([][]TileType, len(rows))
	var (
		spawn      Position
		haveSpawn  bool
		lastPath   Position
		havePath   bool
		marked     []Position
		houseCells []Position
	)

	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidLayout, y, len(row), width)
		}
		tiles[y] = make([]TileType, width)
		for x := 0; x < width; x++ {
			p := Position{X: x, Y: y}
			switch row[x] {
			case '#':
				tiles[y][x] = Wall
			case '*':
				tiles[y][x] = Pellet
			case 'O':
				tiles[y][x] = PowerPellet
			case '.':
				tiles[y][x] = Path
				lastPath, havePath = p, true
			case '-':
				tiles[y][x] = Path
			case ' ':
				tiles[y][x] = Path
				houseCells = append(houseCells, p)
			case 'S':
				if haveSpawn {
					return nil, fmt.Errorf("%w: more than one player spawn", ErrInvalidLayout)
				}
				tiles[y][x] = Path
				spawn, haveSpawn = p, true
			case 'G':
				tiles[y][x] = Path
				marked = append(marked, p)
			default:
				return nil, fmt.Errorf("%w: unknown character %q at (%d,%d)", ErrInvalidLayout, row[x], x, y)
			}
		}
	}

	if !haveSpawn {
		if !havePath {
			return nil, fmt.Errorf("%w: no player spawn (S or .)", ErrInvalidLayout)
		}
		spawn = lastPath
	}

	ghosts := marked
	if len(ghosts) == 0 {
		for _, p := range houseCells {
			if len(ghosts) == maxHouseGhosts {
				break
			}
			ghosts = append(ghosts, p)
		}
	}
	for _, p := range ghosts {
		if p == spawn {
			return nil, fmt.Errorf("%w: ghost spawn overlaps player spawn at %s", ErrInvalidLayout, p)
		}
	}

	return &GeneratedMap{
		Tiles:       tiles,
		PlayerSpawn: spawn,
		Ghosts:      ghosts,
		Width:       width,
		Height:      len(rows),
	}, nil
}
