package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
	"github.com/wricardo/mcp-training/pelletmaze/game/service"
)

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nRound: %d\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, session.RoundNumber,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// renderGrid overlays the player and ghosts on the tile rows
func renderGrid(state *engine.GameState) []string {
	grid := make([][]rune, len(state.Rows))
	for y, row := range state.Rows {
		grid[y] = []rune(row)
	}
	put := func(p engine.Position, r rune) {
		if p.Y >= 0 && p.Y < len(grid) && p.X >= 0 && p.X < len(grid[p.Y]) {
			grid[p.Y][p.X] = r
		}
	}
	for _, g := range state.Ghosts {
		put(g.Position, 'G')
	}
	put(state.Player.Position, 'P')

	rows := make([]string, len(grid))
	for y, row := range grid {
		rows[y] = string(row)
	}
	return rows
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Position: %s | Score: %d | Lives: %d | Pellets left: %d | Turns: %d\n",
		state.Player.Position, state.Score, state.Lives, state.PelletsRemaining, state.Turns)
	if state.PoweredUp {
		b.WriteString("Powered up\n")
	}
	b.WriteString("\n")

	// Decision aids
	if state.GhostRisk != "" {
		fmt.Fprintf(&b, "Ghost risk: %s\n", state.GhostRisk)
	}
	if len(state.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "Possible moves: %s\n", joinDirections(state.PossibleMoves))
	}
	if len(state.NearestPelletPath) > 0 {
		fmt.Fprintf(&b, "Nearest pellet: %s (%d moves)\n", joinDirections(state.NearestPelletPath), len(state.NearestPelletPath))
	}
	if len(state.LocalView3x3) == 3 {
		b.WriteString("Local 3x3:\n")
		for _, row := range state.LocalView3x3 {
			b.WriteString(row + "\n")
		}
	}
	b.WriteString("\n")

	for _, row := range renderGrid(state) {
		b.WriteString(row + "\n")
	}

	switch {
	case state.Victory:
		b.WriteString("\nVICTORY! Every pellet eaten.")
	case state.GameOver:
		b.WriteString("\nGAME OVER")
	}

	return b.String()
}

func joinDirections(dirs []engine.Direction) string {
	parts := make([]string, len(dirs))
	for i, d := range dirs {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}

	if t := result.Turn; t != nil {
		fmt.Fprintf(&b, "Turn: %s %s→%s score%+d\n", t.Direction, t.From, t.To, t.ScoreDelta)
	}
	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "Blocked by %s at (%d,%d) '%s'\n", a.TileType, a.X, a.Y, a.TileChar)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", result.Message)
	}
	for _, ev := range result.Events {
		if ev.Type == service.EventMove || ev.Type == service.EventBlocked {
			continue
		}
		fmt.Fprintf(&b, "Event: %s - %s\n", ev.Type, ev.Message)
	}
	if result.RoundOver {
		b.WriteString("The round is over. Use restart_round to play again.\n")
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session %s: executed %d/%d moves", sessionID, result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")

	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s [%s]\n", result.StoppedOnMove, result.StoppedReason, result.StopReasonCode)
	}
	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "Blocked by %s at (%d,%d) '%s'\n", a.TileType, a.X, a.Y, a.TileChar)
	}

	fmt.Fprintf(&b, "Start %s → End %s | Lives %d → %d | Score %+d\n",
		result.StartPos, result.EndPos, result.StartLives, result.EndLives, result.ScoreDelta)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			fmt.Fprintf(&b, "  %d. %s %s→%s score%+d lives=%d%s\n",
				s.Idx, s.Dir, s.From, s.To, s.ScoreDelta, s.LivesAfter, stepFlags(s))
		}
	}

	if result.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", result.Message)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func stepFlags(s service.StepInfo) string {
	var flags []string
	if s.Pellet {
		flags = append(flags, "pellet")
	}
	if s.Power {
		flags = append(flags, "power")
	}
	if s.Died {
		flags = append(flags, "DIED")
	}
	if s.Victory {
		flags = append(flags, "VICTORY")
	}
	if len(flags) == 0 {
		return ""
	}
	return " [" + strings.Join(flags, ",") + "]"
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turn History (Page %d/%d, Total: %d turns)\n\n",
		history.Page, history.TotalPages, history.TotalTurns)

	for _, t := range history.Turns {
		status := "✓"
		if !t.Moved {
			status = "✗"
		}
		died := ""
		if t.Died {
			died = " DIED"
		}
		fmt.Fprintf(&b, "#%d (round %d) %s %s→%s %s score=%d lives=%d pellets=%d%s\n",
			t.Number, t.Round, t.Direction, t.From, t.To, status, t.Score, t.Lives, t.PelletsRemaining, died)
	}

	if history.HasNext {
		b.WriteString("\nMore turns on the next page.")
	}
	return b.String()
}

func describeCell(state *engine.GameState, pos engine.Position) string {
	char := []rune(state.Rows[pos.Y])[pos.X]
	tile := engine.TileFromRune(char)

	var description string
	switch tile {
	case engine.Wall:
		description = "Wall - IMPASSABLE"
	case engine.Pellet:
		description = fmt.Sprintf("Pellet - worth %d points", engine.PelletScore)
	case engine.PowerPellet:
		description = fmt.Sprintf("Power pellet - worth %d points", engine.PowerPelletScore)
	default:
		description = "Empty path - walkable"
	}

	var occupants []string
	if state.Player.Position == pos {
		occupants = append(occupants, "you (P)")
	}
	for _, g := range state.Ghosts {
		if g.Position == pos {
			occupants = append(occupants, fmt.Sprintf("ghost #%d (G)", g.ID))
		}
	}
	if state.PlayerSpawn == pos {
		description += ", your spawn point"
	}
	occupied := "nobody"
	if len(occupants) > 0 {
		occupied = strings.Join(occupants, ", ")
	}

	return fmt.Sprintf(`Cell at position (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Character: %c
Type: %s
Passable: %v
Occupied by: %s
Distance from you: %d
Description: %s`,
		pos.X, pos.Y,
		char,
		tile,
		tile != engine.Wall,
		occupied,
		engine.ManhattanDistance(state.Player.Position, pos),
		description)
}
