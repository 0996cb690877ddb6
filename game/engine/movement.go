package engine

// nextCell returns the cell one step from p in dir, or false when that cell
// is off the grid or a wall. Player and ghost moves share this check.
func (e *GameEngine) nextCell(p Position, dir Direction) (Position, bool) {
	dx, dy, ok := dir.Offset()
	if !ok {
		return p, false
	}
	target := p.Add(dx, dy)
	if !e.grid.IsWalkable(target) {
		return p, false
	}
	return target, true
}

// movePlayerEntity moves the player and eats whatever pellet is at the target.
// It reports the move outcome in res.
func (e *GameEngine) movePlayerEntity(dir Direction, res *TurnResult) {
	res.Direction = dir
	res.From = e.player.Position
	res.To = e.player.Position

	target, ok := e.nextCell(e.player.Position, dir)
	if !ok {
		return
	}
	e.player.Position = target
	res.Moved = true
	res.To = target

	switch e.grid.eat(target) {
	case Pellet:
		e.award(PelletScore)
		res.ScoreDelta += PelletScore
		res.PelletsEaten++
	case PowerPellet:
		e.award(PowerPelletScore)
		e.poweredUp = true
		res.ScoreDelta += PowerPelletScore
		res.PelletsEaten++
		res.AtePowerPellet = true
	}

	if e.resolveCollision() {
		res.Died = true
	}
}

// moveGhostEntity moves one ghost. Ghosts never eat.
func (e *GameEngine) moveGhostEntity(g *Ghost, dir Direction) bool {
	target, ok := e.nextCell(g.Position, dir)
	if !ok {
		return false
	}
	g.Position = target
	return true
}

func (e *GameEngine) award(points int) {
	e.player.Score += points
	e.pelletsRemaining--
}

// resolveCollision applies a death if any ghost shares the player's cell.
func (e *GameEngine) resolveCollision() bool {
	for _, g := range e.ghosts {
		if g.Position == e.player.Position {
			e.killPlayer()
			return true
		}
	}
	return false
}

// killPlayer costs one life (floored at 0), raises the death flag and sends
// the player back to spawn. Eaten pellets stay eaten.
func (e *GameEngine) killPlayer() {
	if e.lives > 0 {
		e.lives--
	}
	e.player.Lives = e.lives
	e.playerDied = true
	e.player.Position = e.spawn
}
