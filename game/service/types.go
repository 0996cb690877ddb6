package service

import (
	"time"

	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	RoundID        string              `json:"round_id"`
	RoundNumber    int                 `json:"round_number"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	Level          *engine.LevelConfig `json:"level,omitempty"`
}

// MoveResult contains the result of a single turn
type MoveResult struct {
	// Success is true when the player actually changed cells
	Success     bool               `json:"success"`
	Turn        *engine.TurnResult `json:"turn,omitempty"`
	GameState   *engine.GameState  `json:"game_state"`
	Message     string             `json:"message"`
	Events      []GameEvent        `json:"events,omitempty"`
	AttemptedTo *AttemptInfo       `json:"attempted_to,omitempty"`
	RoundOver   bool               `json:"round_over,omitempty"`
}

// BulkMoveResult contains the result of multiple turns
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked_wall|blocked_boundary|died|game_over|victory|round_over
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos   engine.Position `json:"start_pos"`
	EndPos     engine.Position `json:"end_pos"`
	StartLives int             `json:"start_lives"`
	EndLives   int             `json:"end_lives"`
	ScoreDelta int             `json:"score_delta"`

	// Per-turn compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Failure diagnostics
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	GameOver      bool               `json:"game_over"`
	Victory       bool               `json:"victory"`
	Message       string             `json:"message,omitempty"`
	PossibleMoves []engine.Direction `json:"possible_moves,omitempty"`
	LocalView3x3  []string           `json:"local_view_3x3,omitempty"`
	GhostRisk     string             `json:"ghost_risk,omitempty"`
}

// StepInfo is a compact record for each executed turn in the bulk call
type StepInfo struct {
	Idx        int              `json:"idx"`
	Dir        engine.Direction `json:"dir"`
	From       engine.Position  `json:"from"`
	To         engine.Position  `json:"to"`
	ScoreDelta int              `json:"score_delta"`
	LivesAfter int              `json:"lives_after"`
	Pellet     bool             `json:"pellet,omitempty"`
	Power      bool             `json:"power,omitempty"`
	Died       bool             `json:"died,omitempty"`
	Victory    bool             `json:"victory,omitempty"`
}

// AttemptInfo details the blocked target cell
type AttemptInfo struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	TileChar string `json:"tile_char"`
	TileType string `json:"tile_type"`
}

// Event types
const (
	EventMove         = "move"
	EventBlocked      = "blocked"
	EventPellet       = "pellet"
	EventPowerPellet  = "power_pellet"
	EventDeath        = "death"
	EventVictory      = "victory"
	EventGameOver     = "game_over"
	EventRoundStarted = "round_started"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
}

// TurnRecord is one entry of a session's turn history. History spans rounds.
type TurnRecord struct {
	Number           int              `json:"number"`
	Round            int              `json:"round"`
	Direction        engine.Direction `json:"direction"`
	From             engine.Position  `json:"from"`
	To               engine.Position  `json:"to"`
	Moved            bool             `json:"moved"`
	ScoreDelta       int              `json:"score_delta"`
	Score            int              `json:"score"`
	Lives            int              `json:"lives"`
	PelletsRemaining int              `json:"pellets_remaining"`
	Died             bool             `json:"died,omitempty"`
	Timestamp        int64            `json:"timestamp"`
}

// HistoryOptions configures turn history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated turn history
type HistoryResponse struct {
	Turns       []TurnRecord `json:"turns"`
	TotalTurns  int          `json:"total_turns"`
	Page        int          `json:"page"`
	PageSize    int          `json:"page_size"`
	TotalPages  int          `json:"total_pages"`
	HasNext     bool         `json:"has_next"`
	HasPrevious bool         `json:"has_previous"`
}

// ConfigInfo provides information about a level configuration
type ConfigInfo struct {
	Filename    string `json:"filename,omitempty"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Static      bool   `json:"static"`
	Builtin     bool   `json:"builtin"`
}
