// Package engine provides the core game logic for the pellet maze game.
//
// The engine package implements the game mechanics including:
//   - Maze generation (random border-wall mazes and static layout presets)
//   - Grid-based movement with wall and bounds checks
//   - Pellet and power pellet consumption and scoring
//   - Player/ghost collision, life loss and respawn
//   - Win (all pellets eaten) and loss (no lives left) detection
//
// Core Types:
//
// GameEngine owns one round: the Map, the Player, the Ghosts, the player
// spawn, and the pellet and life counters. Generator produces a GeneratedMap
// that the engine consumes once at construction. LevelConfig describes a
// level (dimensions, ghost range, optional static layout) and is what the
// config and session packages hand to the engine.
//
// Usage:
//
//	eng, err := engine.NewGameEngine(15, 11)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// One turn: the player moves, then every ghost moves.
//	eng.MovePlayer(engine.Right)
//	eng.MoveGhosts()
//
//	if eng.ConsumePlayerDeath() {
//		// play a sound, flash the screen...
//	}
//	if eng.IsGameOver() || eng.IsVictory() {
//		// stop issuing moves
//	}
//
// Game Rules:
//
// Moving onto a pellet awards 10 points, a power pellet awards 50. Bumping
// into a wall or the grid edge is a silent no-op. When a ghost and the
// player share a cell the player loses a life and returns to the spawn;
// eaten pellets stay eaten. The engine is not safe for concurrent use: one
// caller issues moves one at a time.
package engine
