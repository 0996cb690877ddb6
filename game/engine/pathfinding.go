package engine

// PossibleMoves lists the directions that lead to a walkable cell from p
func PossibleMoves(m *Map, p Position) []Direction {
	moves := make([]Direction, 0, len(Directions))
	for _, d := range Directions {
		dx, dy, _ := d.Offset()
		if m.IsWalkable(p.Add(dx, dy)) {
			moves = append(moves, d)
		}
	}
	return moves
}

// bfs walks the walkable cells from start in breadth-first order until stop
// returns true for a visited cell. It returns that cell and the parent links.
func bfs(m *Map, start Position, stop func(Position) bool) (Position, map[Position]Position, bool) {
	parent := map[Position]Position{start: start}
	queue := []Position{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if stop != nil && stop(cur) {
			return cur, parent, true
		}
		for _, d := range Directions {
			dx, dy, _ := d.Offset()
			next := cur.Add(dx, dy)
			if _, seen := parent[next]; seen || !m.IsWalkable(next) {
				continue
			}
			parent[next] = cur
			queue = append(queue, next)
		}
	}
	return Position{}, parent, false
}

func walkBack(parent map[Position]Position, start, end Position) []Position {
	var path []Position
	for p := end; p != start; p = parent[p] {
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FindPath returns the shortest walkable path from one cell to another,
// excluding from and including to. ok is false when to is unreachable.
func FindPath(m *Map, from, to Position) ([]Position, bool) {
	if !m.IsWalkable(from) || !m.IsWalkable(to) {
		return nil, false
	}
	end, parent, ok := bfs(m, from, func(p Position) bool { return p == to })
	if !ok {
		return nil, false
	}
	return walkBack(parent, from, end), true
}

// FindPathToNearestPellet returns the shortest path to the closest pellet or
// power pellet by walking distance.
func FindPathToNearestPellet(m *Map, from Position) ([]Position, bool) {
	if !m.IsWalkable(from) {
		return nil, false
	}
	end, parent, ok := bfs(m, from, func(p Position) bool {
		return p != from && m.TileAt(p).IsPellet()
	})
	if !ok {
		return nil, false
	}
	return walkBack(parent, from, end), true
}

// Reachable returns every walkable cell connected to from
func Reachable(m *Map, from Position) map[Position]bool {
	seen := make(map[Position]bool)
	if !m.IsWalkable(from) {
		return seen
	}
	_, parent, _ := bfs(m, from, nil)
	for p := range parent {
		seen[p] = true
	}
	return seen
}

// UnreachablePellets lists pellets that cannot be reached from from
func UnreachablePellets(m *Map, from Position) []Position {
	reach := Reachable(m, from)
	var out []Position
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			p := Position{X: x, Y: y}
			if m.Tiles[y][x].IsPellet() && !reach[p] {
				out = append(out, p)
			}
		}
	}
	return out
}

// PathDirections converts a path into the moves that walk it from start
func PathDirections(start Position, path []Position) []Direction {
	dirs := make([]Direction, 0, len(path))
	cur := start
	for _, next := range path {
		for _, d := range Directions {
			dx, dy, _ := d.Offset()
			if cur.Add(dx, dy) == next {
				dirs = append(dirs, d)
				break
			}
		}
		cur = next
	}
	return dirs
}
