package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
	"github.com/wricardo/mcp-training/pelletmaze/logger"
	"github.com/wricardo/mcp-training/pelletmaze/metrics"
	"github.com/wricardo/mcp-training/pelletmaze/telemetry"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithMetrics records turns, deaths and round outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *gameServiceImpl) {
		s.metrics = m
	}
}

// WithTracer wraps session creation, turns and restarts in spans
func WithTracer(t trace.Tracer) Option {
	return func(s *gameServiceImpl) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		tracer:   telemetry.NoopTracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given level name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(levelName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == levelName {
				return cfg.ConfigID
			}
		}
	}
	if levelName == "" {
		return "default"
	}
	return levelName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	_, span := s.tracer.Start(ctx, "service.CreateSession")
	defer span.End()

	var level *engine.LevelConfig
	var err error
	if configName != "" {
		level, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		level = s.configs.GetDefault()
		configName = s.getConfigID(level.Name)
	}

	sess, err := s.sessions.Create("", configName, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.metrics.SetActiveSessions(s.sessions.Count())

	sess.Lock()
	defer sess.Unlock()

	eng := sess.Round.Engine
	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("level", configName),
		attribute.Int("map.width", eng.Map().Width),
		attribute.Int("map.height", eng.Map().Height),
		attribute.Int("map.ghosts", len(eng.Ghosts())),
		attribute.Int("map.pellets", eng.PelletsRemaining()),
	)
	logger.Log.Infow("session created",
		"session", sess.ID,
		"config", configName,
		"round", sess.Round.ID,
		"width", eng.Map().Width,
		"height", eng.Map().Height,
		"ghosts", len(eng.Ghosts()),
	)

	return s.sessionInfo(sess), nil
}

// sessionInfo builds the API view of a session. Caller holds the session lock.
func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigName,
		RoundID:        sess.Round.ID,
		RoundNumber:    sess.Round.Number,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		GameState:      snapshot(sess.Round.Engine),
		Level:          sess.Level,
	}
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.Lock()
	defer sess.Unlock()
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		sess.Lock()
		result = append(result, s.sessionInfo(sess))
		sess.Unlock()
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.metrics.SetActiveSessions(s.sessions.Count())
	logger.Log.Infow("session deleted", "session", sessionID)
	return nil
}

// lockSession fetches a session, marks it accessed and takes its lock
func (s *gameServiceImpl) lockSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	sess.Lock()
	return sess, nil
}

func validDirection(d engine.Direction) error {
	if _, _, ok := d.Offset(); !ok {
		return fmt.Errorf("%w: %q", engine.ErrInvalidDirection, d)
	}
	return nil
}

// Move plays a single turn for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, direction engine.Direction) (*MoveResult, error) {
	if err := validDirection(direction); err != nil {
		return nil, err
	}

	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	eng := sess.Round.Engine
	if outcome := sess.Round.Outcome(); outcome != "" {
		return &MoveResult{
			Success:   false,
			GameState: snapshot(eng),
			Message:   fmt.Sprintf("%s (%s)", ErrRoundOver.Error(), outcome),
			RoundOver: true,
		}, nil
	}

	turn, events := s.playTurn(ctx, sess, direction)

	result := &MoveResult{
		Success:   turn.Moved,
		Turn:      &turn,
		GameState: snapshot(eng),
		Message:   turnMessage(turn, eng),
		Events:    events,
		RoundOver: turn.GameOver || turn.Victory,
	}
	if !turn.Moved {
		result.AttemptedTo = attemptedCell(eng.Map(), turn.From, direction)
	}

	return result, nil
}

// BulkMove plays turns in sequence, stopping at the first blocked move,
// death or end of round
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []engine.Direction) (*BulkMoveResult, error) {
	for _, m := range moves {
		if err := validDirection(m); err != nil {
			return nil, err
		}
	}

	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	eng := sess.Round.Engine
	startScore := eng.Player().Score

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
		StartPos:       eng.Player().Position,
		StartLives:     eng.LivesRemaining(),
	}

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if outcome := sess.Round.Outcome(); outcome != "" {
			result.Success = false
			result.StoppedReason = ErrRoundOver.Error()
			result.StopReasonCode = "round_over"
			result.StoppedOnMove = i + 1
			break
		}

		turn, events := s.playTurn(ctx, sess, move)
		result.MovesExecuted++
		result.Events = append(result.Events, events...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:        i + 1,
			Dir:        move,
			From:       turn.From,
			To:         turn.To,
			ScoreDelta: turn.ScoreDelta,
			LivesAfter: eng.LivesRemaining(),
			Pellet:     turn.PelletsEaten > 0 && !turn.AtePowerPellet,
			Power:      turn.AtePowerPellet,
			Died:       turn.Died,
			Victory:    turn.Victory,
		})

		stop := ""
		switch {
		case turn.Victory:
			stop = EventVictory
		case turn.GameOver:
			stop = EventGameOver
		case !turn.Moved:
			result.Success = false
			result.AttemptedTo = attemptedCell(eng.Map(), turn.From, move)
			stop = "blocked_" + result.AttemptedTo.TileType
		case turn.Died:
			stop = "died"
		}
		if stop != "" {
			result.StopReasonCode = stop
			result.StoppedReason = fmt.Sprintf("move %d (%s): %s", i+1, move, strings.ReplaceAll(stop, "_", " "))
			result.StoppedOnMove = i + 1
			break
		}
	}

	state := snapshot(eng)
	result.GameState = state
	result.EndPos = state.Player.Position
	result.EndLives = state.Lives
	result.ScoreDelta = state.Score - startScore
	result.GameOver = state.GameOver
	result.Victory = state.Victory
	result.Message = fmt.Sprintf("Played %d/%d moves. Score %d, lives %d, pellets left %d",
		result.MovesExecuted, result.RequestedMoves, state.Score, state.Lives, state.PelletsRemaining)

	// Decision aids
	result.PossibleMoves = state.PossibleMoves
	result.LocalView3x3 = state.LocalView3x3
	result.GhostRisk = state.GhostRisk

	return result, nil
}

// playTurn runs one engine turn and does the bookkeeping: death signal,
// history, events, metrics and tracing. Caller holds the session lock.
func (s *gameServiceImpl) playTurn(ctx context.Context, sess *Session, dir engine.Direction) (engine.TurnResult, []GameEvent) {
	_, span := s.tracer.Start(ctx, "service.turn")
	defer span.End()

	start := time.Now()
	eng := sess.Round.Engine
	livesBefore := eng.LivesRemaining()
	turn := eng.Step(dir)
	died := eng.ConsumePlayerDeath()
	elapsed := time.Since(start)
	livesLost := livesBefore - eng.LivesRemaining()

	player := eng.Player()
	sess.History = append(sess.History, TurnRecord{
		Number:           len(sess.History) + 1,
		Round:            sess.Round.Number,
		Direction:        dir,
		From:             turn.From,
		To:               player.Position,
		Moved:            turn.Moved,
		ScoreDelta:       turn.ScoreDelta,
		Score:            player.Score,
		Lives:            eng.LivesRemaining(),
		PelletsRemaining: eng.PelletsRemaining(),
		Died:             died,
		Timestamp:        time.Now().Unix(),
	})

	power := 0
	if turn.AtePowerPellet {
		power = 1
	}
	s.metrics.ObserveTurn(elapsed, turn.PelletsEaten-power, power, livesLost)

	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.Int("round.turn", eng.Turns()),
		attribute.String("direction", string(dir)),
		attribute.Bool("moved", turn.Moved),
		attribute.Int("score_delta", turn.ScoreDelta),
		attribute.Bool("died", died),
		attribute.Int("lives_lost", livesLost),
	)

	if outcome := sess.Round.Outcome(); outcome != "" && !sess.Round.finished {
		sess.Round.finished = true
		s.metrics.RoundFinished(outcome)
		logger.Log.Infow("round finished",
			"session", sess.ID,
			"round", sess.Round.Number,
			"outcome", outcome,
			"score", player.Score,
		)
	}

	logger.Log.Debugw("turn",
		"session", sess.ID,
		"turn", eng.Turns(),
		"dir", dir,
		"from", turn.From.String(),
		"to", turn.To.String(),
		"score", player.Score,
		"lives", eng.LivesRemaining(),
		"died", died,
	)

	return turn, turnEvents(turn, eng, died)
}

// Restart replaces the session's round with a fresh engine. keepScore carries
// the current score into the new round ("next round").
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string, keepScore bool) (*SessionInfo, error) {
	_, span := s.tracer.Start(ctx, "service.Restart")
	defer span.End()

	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	carried := 0
	if keepScore {
		carried = sess.Round.Engine.Player().Score
	}
	round, err := NewRound(sess.Level, sess.Round.Number+1, carried)
	if err != nil {
		return nil, fmt.Errorf("failed to start round: %w", err)
	}
	sess.Round = round

	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.Int("round", round.Number),
		attribute.Bool("keep_score", keepScore),
	)
	logger.Log.Infow("round started",
		"session", sess.ID,
		"round", round.Number,
		"round_id", round.ID,
		"carried_score", carried,
	)

	return s.sessionInfo(sess), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	return snapshot(sess.Round.Engine), nil
}

// GetTurnHistory returns paginated turn history
func (s *gameServiceImpl) GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	history := append([]TurnRecord(nil), sess.History...)
	sess.Unlock()

	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var turns []TurnRecord
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			turns = append(turns, history[i])
		}
	} else if start < total {
		turns = history[start:end]
	}
	if turns == nil {
		turns = []TurnRecord{}
	}

	return &HistoryResponse{
		Turns:       turns,
		TotalTurns:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available level configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.LevelConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a level configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.LevelConfig) error {
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return err
	}
	logger.Log.Infow("level saved", "config", configName)
	return nil
}

// snapshot returns the engine state with the ghost risk reduced to a code
func snapshot(eng *engine.GameEngine) *engine.GameState {
	state := eng.State()
	state.GhostRisk = riskCode(state.GhostRisk)
	return state
}

func newEvent(typ, msg string, pos *engine.Position) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   msg,
		Timestamp: time.Now(),
		Position:  pos,
	}
}

// turnEvents generates events from a turn
func turnEvents(turn engine.TurnResult, eng *engine.GameEngine, died bool) []GameEvent {
	to := turn.To
	if !turn.Moved {
		events := []GameEvent{newEvent(EventBlocked,
			fmt.Sprintf("Can't move %s from %s", turn.Direction, turn.From), &to)}
		return append(events, outcomeEvents(turn, eng, died)...)
	}

	events := []GameEvent{newEvent(EventMove,
		fmt.Sprintf("Moved %s to %s", turn.Direction, to), &to)}

	switch {
	case turn.AtePowerPellet:
		events = append(events, newEvent(EventPowerPellet,
			fmt.Sprintf("Power pellet! +%d (score %d)", engine.PowerPelletScore, eng.Player().Score), &to))
	case turn.PelletsEaten > 0:
		events = append(events, newEvent(EventPellet,
			fmt.Sprintf("Pellet +%d (score %d)", engine.PelletScore, eng.Player().Score), &to))
	}

	return append(events, outcomeEvents(turn, eng, died)...)
}

func outcomeEvents(turn engine.TurnResult, eng *engine.GameEngine, died bool) []GameEvent {
	var events []GameEvent
	if died {
		spawn := eng.PlayerSpawn()
		events = append(events, newEvent(EventDeath,
			fmt.Sprintf("Caught by a ghost! %d lives left, back to %s", eng.LivesRemaining(), spawn), &spawn))
	}
	switch {
	case turn.Victory:
		events = append(events, newEvent(EventVictory,
			fmt.Sprintf("Victory! Every pellet eaten. Final score %d", eng.Player().Score), nil))
	case turn.GameOver:
		events = append(events, newEvent(EventGameOver,
			fmt.Sprintf("Game over! Final score %d", eng.Player().Score), nil))
	}
	return events
}

func turnMessage(turn engine.TurnResult, eng *engine.GameEngine) string {
	score := eng.Player().Score
	switch {
	case turn.Victory:
		return fmt.Sprintf("Victory! Final score %d", score)
	case turn.GameOver:
		return fmt.Sprintf("Game over! Final score %d", score)
	case turn.Died:
		return fmt.Sprintf("Caught by a ghost! %d lives left", eng.LivesRemaining())
	case !turn.Moved:
		return fmt.Sprintf("Can't move %s: blocked", turn.Direction)
	case turn.ScoreDelta > 0:
		return fmt.Sprintf("+%d! Score %d, %d pellets left", turn.ScoreDelta, score, eng.PelletsRemaining())
	}
	return fmt.Sprintf("Moved %s. Score %d, %d pellets left", turn.Direction, score, eng.PelletsRemaining())
}

// attemptedCell describes the target of a blocked move
func attemptedCell(m *engine.Map, from engine.Position, dir engine.Direction) *AttemptInfo {
	dx, dy, _ := dir.Offset()
	target := from.Add(dx, dy)
	info := &AttemptInfo{X: target.X, Y: target.Y, TileChar: "#", TileType: "boundary"}
	if m.InBounds(target) {
		tile := m.TileAt(target)
		info.TileChar = string(tile.Rune())
		info.TileType = string(tile)
	}
	return info
}

func riskCode(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "critical"):
		return "CRITICAL"
	case strings.Contains(t, "danger"):
		return "DANGER"
	case strings.Contains(t, "caution"):
		return "CAUTION"
	case strings.Contains(t, "low"):
		return "LOW"
	case strings.Contains(t, "safe"):
		return "SAFE"
	default:
		return "UNKNOWN"
	}
}
