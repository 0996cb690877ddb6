package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/pelletmaze/game/bot"
	"github.com/wricardo/mcp-training/pelletmaze/logger"
)

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "let the built-in bot play rounds and report the outcomes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "level",
				Usage: "level to play (defaults to the configured default level)",
			},
			&cli.IntFlag{
				Name:  "games",
				Value: 10,
				Usage: "number of rounds to play",
			},
			&cli.IntFlag{
				Name:  "max-turns",
				Value: 2000,
				Usage: "turns per round before giving up",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print outcomes as JSON",
			},
		},
		Action: runSimulate,
	}
}

// SimulationSummary aggregates the outcomes of a simulate run
type SimulationSummary struct {
	Level    string         `json:"level"`
	Games    int            `json:"games"`
	Results  map[string]int `json:"results"`
	AvgScore float64        `json:"avg_score"`
	AvgTurns float64        `json:"avg_turns"`
	Outcomes []*bot.Outcome `json:"outcomes"`
}

func runSimulate(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	svcs, err := initializeServices(s, serviceOptions{})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	level := cmd.String("level")
	if level == "" {
		level = s.Game.DefaultLevel
	}

	summary, err := simulate(ctx, svcs, level, cmd.Int("games"), cmd.Int("max-turns"))
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if cmd.Bool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	for i, o := range summary.Outcomes {
		fmt.Fprintf(w, "#%d %-10s score=%d turns=%d lives=%d pellets_left=%d\n",
			i+1, o.Result(), o.Score, o.Turns, o.Lives, o.PelletsRemaining)
	}
	fmt.Fprintf(w, "\n%s: %d games, %d victories, avg score %.1f, avg turns %.1f\n",
		summary.Level, summary.Games, summary.Results["victory"], summary.AvgScore, summary.AvgTurns)
	return nil
}

// simulate plays games rounds of level with a fresh session each
func simulate(ctx context.Context, svcs *services, level string, games, maxTurns int) (*SimulationSummary, error) {
	summary := &SimulationSummary{
		Level:   level,
		Results: make(map[string]int),
	}

	var totalScore, totalTurns int
	for i := 0; i < games; i++ {
		info, err := svcs.game.CreateSession(ctx, level)
		if err != nil {
			return nil, err
		}

		outcome, err := bot.NewPlayer(svcs.game, bot.NewGreedyStrategy(), maxTurns).Play(ctx, info.ID)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}
		if err := svcs.game.DeleteSession(ctx, info.ID); err != nil {
			logger.Log.Warnw("Failed to delete simulated session", "session_id", info.ID, "error", err)
		}

		logger.Log.Infow("Game finished",
			"game", i+1,
			"result", outcome.Result(),
			"score", outcome.Score,
			"turns", outcome.Turns,
		)

		summary.Outcomes = append(summary.Outcomes, outcome)
		summary.Results[outcome.Result()]++
		totalScore += outcome.Score
		totalTurns += outcome.Turns
	}

	summary.Games = len(summary.Outcomes)
	if summary.Games > 0 {
		summary.AvgScore = float64(totalScore) / float64(summary.Games)
		summary.AvgTurns = float64(totalTurns) / float64(summary.Games)
	}
	return summary, nil
}
