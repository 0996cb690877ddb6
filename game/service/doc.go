// Package service provides the business logic layer for the pellet maze game.
//
// The service package implements:
//   - Multi-session game management
//   - Turn processing: one player move followed by one ghost pass
//   - Bulk turns that stop at the first blocked move, death or end of round
//   - Round restarts, optionally carrying the score into the next round
//   - Turn history tracking
//
// GameService is the main interface. SessionManager and ConfigManager are
// implemented by the session and config packages.
//
// Every session owns one round at a time, and each round owns one engine.
// All engine access happens under the session lock so that collision
// detection and pellet consumption stay atomic per turn.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		return err
//	}
//	result, err := gameService.Move(ctx, info.ID, engine.Left)
package service
