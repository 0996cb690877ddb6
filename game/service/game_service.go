package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrRoundOver       = errors.New("round is over, restart to play again")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID string, direction engine.Direction) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []engine.Direction) (*BulkMoveResult, error)
	Restart(ctx context.Context, sessionID string, keepScore bool) (*SessionInfo, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.LevelConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.LevelConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configName string, level *engine.LevelConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Count() int
}

// ConfigManager handles level configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.LevelConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.LevelConfig
	SaveConfig(name string, config *engine.LevelConfig) error
}

// Session represents an active game session. Round and History are only
// touched while holding the session lock: one turn is in flight at a time.
type Session struct {
	ID         string
	ConfigName string
	Level      *engine.LevelConfig
	CreatedAt  time.Time

	Round   *Round
	History []TurnRecord

	mu             sync.Mutex
	accessMu       sync.Mutex
	lastAccessedAt time.Time
}

// NewSession wraps a first round into a session
func NewSession(id, configName string, level *engine.LevelConfig, round *Round) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		ConfigName:     configName,
		Level:          level,
		CreatedAt:      now,
		Round:          round,
		lastAccessedAt: now,
	}
}

// Lock acquires the session's single-writer lock
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's single-writer lock
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch records an access
func (s *Session) Touch() {
	s.accessMu.Lock()
	s.lastAccessedAt = time.Now()
	s.accessMu.Unlock()
}

// SetLastAccessed overrides the access time
func (s *Session) SetLastAccessed(t time.Time) {
	s.accessMu.Lock()
	s.lastAccessedAt = t
	s.accessMu.Unlock()
}

// LastAccessed returns the last access time
func (s *Session) LastAccessed() time.Time {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.lastAccessedAt
}

// Round is one playthrough on a fresh engine
type Round struct {
	ID        string
	Number    int
	Engine    *engine.GameEngine
	StartedAt time.Time

	finished bool
}

// NewRound starts round number on the level, optionally carrying a score
// over from the previous round.
func NewRound(level *engine.LevelConfig, number, carriedScore int) (*Round, error) {
	var opts []engine.Option
	if carriedScore > 0 {
		opts = append(opts, engine.WithStartingScore(carriedScore))
	}
	eng, err := engine.NewGameEngineFromLevel(level, opts...)
	if err != nil {
		return nil, err
	}
	return &Round{
		ID:        uuid.NewString(),
		Number:    number,
		Engine:    eng,
		StartedAt: time.Now(),
	}, nil
}

// Outcome returns "victory" or "game_over" once the round has ended, or ""
// while it is still being played. Eating the last pellet wins even if the
// same turn costs the last life.
func (r *Round) Outcome() string {
	switch {
	case r.Engine.IsVictory():
		return EventVictory
	case r.Engine.IsGameOver():
		return EventGameOver
	}
	return ""
}
