package engine

import "strings"

// Map is the round's tile grid. Its shape never changes; pellets turn into
// Path as they are eaten.
type Map struct {
	Tiles  [][]TileType `json:"tiles"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
}

// NewMap copies tiles into a new Map. Rows must all have the same length.
func NewMap(tiles [][]TileType) (*Map, error) {
	if len(tiles) == 0 || len(tiles[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	width := len(tiles[0])
	grid := make([][]TileType, len(tiles))
	for y, row := range tiles {
		if len(row) != width {
			return nil, ErrInvalidLayout
		}
		grid[y] = append([]TileType(nil), row...)
	}
	return &Map{Tiles: grid, Width: width, Height: len(grid)}, nil
}

// MapFromRows rebuilds a Map from rendered rows, such as GameState.Rows
func MapFromRows(rows []string) (*Map, error) {
	tiles := make([][]TileType, len(rows))
	for y, row := range rows {
		for _, r := range row {
			tiles[y] = append(tiles[y], TileFromRune(r))
		}
	}
	return NewMap(tiles)
}

// InBounds reports whether p lies on the grid.
func (m *Map) InBounds(p Position) bool {
	return p.X >= 0 && p.X < m.Width && p.Y >= 0 && p.Y < m.Height
}

// TileAt returns the tile at p. Out of bounds reads as Wall.
func (m *Map) TileAt(p Position) TileType {
	if !m.InBounds(p) {
		return Wall
	}
	return m.Tiles[p.Y][p.X]
}

// IsWalkable reports whether an entity may stand on p.
func (m *Map) IsWalkable(p Position) bool {
	return m.InBounds(p) && m.Tiles[p.Y][p.X] != Wall
}

// eat turns a pellet at p into Path and returns what was there.
func (m *Map) eat(p Position) TileType {
	t := m.TileAt(p)
	if t.IsPellet() {
		m.Tiles[p.Y][p.X] = Path
	}
	return t
}

// CountPellets counts Pellet and PowerPellet tiles.
func (m *Map) CountPellets() int {
	return CountTiles(m.Tiles, Pellet) + CountTiles(m.Tiles, PowerPellet)
}

// Rows renders the grid as layout strings.
func (m *Map) Rows() []string {
	rows := make([]string, m.Height)
	for y, row := range m.Tiles {
		var b strings.Builder
		b.Grow(len(row))
		for _, t := range row {
			b.WriteRune(t.Rune())
		}
		rows[y] = b.String()
	}
	return rows
}

func (m *Map) String() string {
	return strings.Join(m.Rows(), "\n")
}
