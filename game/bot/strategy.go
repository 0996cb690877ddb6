package bot

import (
	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
	"github.com/wricardo/mcp-training/pelletmaze/logger"
)

// Strategy plans the next moves from a snapshot of the round
type Strategy interface {
	NextMoves(state *engine.GameState, maxMoves int) []engine.Direction
}

// GreedyStrategy walks to the nearest pellet while keeping clear of ghosts.
// Cells next to a ghost are treated as walls when planning. If no safe path
// exists it steps to the neighbour furthest from the nearest ghost.
type GreedyStrategy struct {
	// SafeDistance is how close a ghost may get before the plan shrinks to a
	// single move.
	SafeDistance int

	visited map[engine.Position]int
	last    engine.Direction
}

// NewGreedyStrategy creates a strategy with the default safety margin
func NewGreedyStrategy() *GreedyStrategy {
	return &GreedyStrategy{
		SafeDistance: 4,
		visited:      make(map[engine.Position]int),
	}
}

// NextMoves returns up to maxMoves moves. Nil means the round is over or the
// player cannot move at all.
func (s *GreedyStrategy) NextMoves(state *engine.GameState, maxMoves int) []engine.Direction {
	if state == nil || state.GameOver || state.Victory || maxMoves <= 0 {
		return nil
	}
	m, err := engine.MapFromRows(state.Rows)
	if err != nil {
		logger.Log.Warnw("Unreadable maze", "error", err)
		return nil
	}
	player := state.Player.Position
	s.visited[player]++

	ghostDist := nearestGhostDistance(player, state.Ghosts)

	if path, ok := engine.FindPathToNearestPellet(avoidGhosts(m, player, state.Ghosts), player); ok {
		dirs := clip(engine.PathDirections(player, path), s.budget(ghostDist, maxMoves))
		if len(dirs) > 0 {
			s.last = dirs[len(dirs)-1]
		}
		return dirs
	}

	// Boxed in by ghosts: run
	if d, ok := s.flee(m, player, state.Ghosts); ok {
		s.last = d
		return []engine.Direction{d}
	}
	return nil
}

// budget caps how far ahead to commit given the nearest ghost distance.
// Ghosts move one cell per turn, so a ghost d cells away can close d/2
// cells of gap before the plan is rechecked.
func (s *GreedyStrategy) budget(ghostDist, maxMoves int) int {
	if ghostDist < 0 {
		return maxMoves
	}
	if ghostDist <= s.SafeDistance {
		return 1
	}
	n := (ghostDist - s.SafeDistance) / 2
	if n < 1 {
		n = 1
	}
	if n > maxMoves {
		n = maxMoves
	}
	return n
}

// flee picks the walkable neighbour that maximises the distance to the
// nearest ghost. Ties go to cells visited less often, then to moves that do
// not undo the previous one.
func (s *GreedyStrategy) flee(m *engine.Map, player engine.Position, ghosts []engine.Ghost) (engine.Direction, bool) {
	var (
		best      engine.Direction
		bestDist  = -1
		bestVisit int
		bestBack  bool
	)
	back := s.last.Opposite()
	for _, d := range engine.PossibleMoves(m, player) {
		dx, dy, _ := d.Offset()
		next := player.Add(dx, dy)
		dist := nearestGhostDistance(next, ghosts)
		if dist < 0 {
			dist = m.Width + m.Height
		}
		visits := s.visited[next]
		reverses := d == back
		if dist > bestDist ||
			(dist == bestDist && visits < bestVisit) ||
			(dist == bestDist && visits == bestVisit && bestBack && !reverses) {
			best, bestDist, bestVisit, bestBack = d, dist, visits, reverses
		}
	}
	return best, bestDist >= 0
}

// avoidGhosts returns a copy of m with every ghost cell and its neighbours
// walled off. The player's own cell stays open.
func avoidGhosts(m *engine.Map, player engine.Position, ghosts []engine.Ghost) *engine.Map {
	tiles := make([][]engine.TileType, m.Height)
	for y := range m.Tiles {
		tiles[y] = append([]engine.TileType(nil), m.Tiles[y]...)
	}
	block := func(p engine.Position) {
		if p != player && m.InBounds(p) {
			tiles[p.Y][p.X] = engine.Wall
		}
	}
	for _, g := range ghosts {
		block(g.Position)
		for _, d := range engine.Directions {
			dx, dy, _ := d.Offset()
			block(g.Position.Add(dx, dy))
		}
	}
	safe, err := engine.NewMap(tiles)
	if err != nil {
		return m
	}
	return safe
}

// nearestGhostDistance is -1 when there are no ghosts
func nearestGhostDistance(pos engine.Position, ghosts []engine.Ghost) int {
	best := -1
	for _, g := range ghosts {
		if d := engine.ManhattanDistance(pos, g.Position); best == -1 || d < best {
			best = d
		}
	}
	return best
}

func clip(dirs []engine.Direction, n int) []engine.Direction {
	if len(dirs) > n {
		return dirs[:n]
	}
	return dirs
}
