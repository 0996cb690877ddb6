// Package session provides in-memory session management for the pellet maze game.
//
// Manager implements service.SessionManager. It stores sessions under short
// random IDs (four hex characters from crypto/rand) and looks them up case
// insensitively. Each session starts on round 1 of its level; later rounds
// are created by the service layer on restart.
//
// The manager only guards its own map. Turns against one session are
// serialized by the session's own lock, so different sessions can be played
// in parallel.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", "classic", level)
//	if err != nil {
//		return err
//	}
//
//	go manager.RunCleanup(ctx, 24*time.Hour, 10*time.Minute, nil)
//
// Sessions are not persisted; they disappear on restart or after the
// configured idle TTL.
package session
