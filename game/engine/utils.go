package engine

// CountTiles counts the cells of a specific type in the grid
func CountTiles(grid [][]TileType, tile TileType) int {
	count := 0
	for _, row := range grid {
		for _, t := range row {
			if t == tile {
				count++
			}
		}
	}
	return count
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// NearestGhost finds the ghost closest to pos and returns it with its Manhattan distance
func NearestGhost(pos Position, ghosts []*Ghost) (*Ghost, int, bool) {
	minDistance := -1
	var nearest *Ghost
	for _, g := range ghosts {
		distance := ManhattanDistance(pos, g.Position)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearest = g
		}
	}
	return nearest, minDistance, nearest != nil
}

// FindNearestPellet finds the closest pellet by Manhattan distance (walls ignored)
func FindNearestPellet(m *Map, from Position) (Position, int, bool) {
	minDistance := -1
	var nearestPos Position
	found := false

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Tiles[y][x].IsPellet() {
				continue
			}
			pos := Position{X: x, Y: y}
			distance := ManhattanDistance(from, pos)
			if minDistance == -1 || distance < minDistance {
				minDistance = distance
				nearestPos = pos
				found = true
			}
		}
	}

	return nearestPos, minDistance, found
}

// AnalyzeGhostRisk assesses how close the nearest ghost is to the player
func AnalyzeGhostRisk(player Position, ghosts []*Ghost, lives int) string {
	if lives <= 0 {
		return "CRITICAL: No lives left!"
	}

	_, distance, found := NearestGhost(player, ghosts)
	if !found {
		return "SAFE: No ghosts on the board"
	}

	switch {
	case distance <= 1:
		return "DANGER: Ghost adjacent, it can reach you this turn!"
	case distance == 2:
		return "CAUTION: Ghost two cells away"
	case lives == 1 && distance <= 4:
		return "LOW: Last life and a ghost is nearby"
	}
	return "SAFE: Ghosts are far away"
}

// LevelStats summarises a built map
type LevelStats struct {
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Walkable     int      `json:"walkable"`
	Pellets      int      `json:"pellets"`
	PowerPellets int      `json:"power_pellets"`
	Ghosts       int      `json:"ghosts"`
	Spawn        Position `json:"spawn"`
	// Unreachable lists pellets the player cannot reach from the spawn
	Unreachable []Position `json:"unreachable,omitempty"`
}

// AnalyzeMap counts tiles and checks pellet reachability for a built map
func AnalyzeMap(gm *GeneratedMap) (*LevelStats, error) {
	m, err := NewMap(gm.Tiles)
	if err != nil {
		return nil, err
	}
	stats := &LevelStats{
		Width:        m.Width,
		Height:       m.Height,
		Pellets:      CountTiles(m.Tiles, Pellet),
		PowerPellets: CountTiles(m.Tiles, PowerPellet),
		Ghosts:       len(gm.Ghosts),
		Spawn:        gm.PlayerSpawn,
		Unreachable:  UnreachablePellets(m, gm.PlayerSpawn),
	}
	stats.Walkable = m.Width*m.Height - CountTiles(m.Tiles, Wall)
	return stats, nil
}
