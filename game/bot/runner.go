package bot

import (
	"context"
	"fmt"

	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
	"github.com/wricardo/mcp-training/pelletmaze/game/service"
	"github.com/wricardo/mcp-training/pelletmaze/logger"
)

// Outcome summarises one played round
type Outcome struct {
	SessionID        string `json:"session_id"`
	Level            string `json:"level"`
	Victory          bool   `json:"victory"`
	GameOver         bool   `json:"game_over"`
	Score            int    `json:"score"`
	Lives            int    `json:"lives"`
	Turns            int    `json:"turns"`
	PelletsRemaining int    `json:"pellets_remaining"`
	// Stuck is set when the strategy ran out of moves before the round ended
	Stuck bool `json:"stuck,omitempty"`
}

// Result is a short label for the outcome
func (o *Outcome) Result() string {
	switch {
	case o.Victory:
		return "victory"
	case o.GameOver:
		return "game_over"
	case o.Stuck:
		return "stuck"
	}
	return "turn_limit"
}

// Player drives a session through the game service with a Strategy
type Player struct {
	svc      service.GameService
	strategy Strategy
	maxTurns int
}

// NewPlayer creates a player that gives up after maxTurns turns
func NewPlayer(svc service.GameService, strategy Strategy, maxTurns int) *Player {
	return &Player{svc: svc, strategy: strategy, maxTurns: maxTurns}
}

// Play plays the current round of sessionID until it ends, the strategy has
// nothing to offer, maxTurns is reached or ctx is cancelled.
func (p *Player) Play(ctx context.Context, sessionID string) (*Outcome, error) {
	state, err := p.svc.GetGameState(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}

	outcome := &Outcome{SessionID: sessionID, Level: state.LevelName}
	turns := 0
	for !state.GameOver && !state.Victory && turns < p.maxTurns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		budget := engine.MaxBulkMoves
		if left := p.maxTurns - turns; left < budget {
			budget = left
		}
		moves := p.strategy.NextMoves(state, budget)
		if len(moves) == 0 {
			logger.Log.Debugw("Strategy has no moves", "session_id", sessionID, "position", state.Player.Position.String())
			outcome.Stuck = true
			break
		}

		result, err := p.svc.BulkMove(ctx, sessionID, moves)
		if err != nil {
			return nil, fmt.Errorf("bulk move: %w", err)
		}
		turns += result.MovesExecuted
		state = result.GameState
		if result.MovesExecuted == 0 {
			outcome.Stuck = true
			break
		}
		logger.Log.Debugw("Bulk move",
			"session_id", sessionID,
			"executed", result.MovesExecuted,
			"score", state.Score,
			"lives", state.Lives,
			"pellets_remaining", state.PelletsRemaining,
		)
	}

	outcome.Victory = state.Victory
	outcome.GameOver = state.GameOver
	outcome.Score = state.Score
	outcome.Lives = state.Lives
	outcome.Turns = state.Turns
	outcome.PelletsRemaining = state.PelletsRemaining
	return outcome, nil
}
