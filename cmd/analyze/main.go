// Command analyze prints quick, human-readable heuristics about level files
// and the built-in levels. It summarizes dimensions, pellet and ghost
// counts, dead ends, how close the nearest ghost starts to the player and
// highlights pellets that cannot be reached from the spawn.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
)

// maxListed caps how many unreachable pellets are printed per level
const maxListed = 5

// Analysis is the heuristic summary of one built level
type Analysis struct {
	Name  string
	Stats *engine.LevelStats
	// DeadEnds counts walkable cells with a single walkable neighbour
	DeadEnds int
	// GhostDistance is the walking distance from the spawn to the closest
	// ghost, -1 when no ghost can reach the player
	GhostDistance int
	// FarthestPellet is the longest shortest-path from the spawn to a pellet
	FarthestPellet int
	// NearestPellet is the straight-line (Manhattan) distance from the spawn
	// to the closest pellet, -1 when the level has none
	NearestPellet int
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "print heuristics about level files",
		ArgsUsage: "[dir|file.json ...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "builtin",
				Usage: "also analyze the built-in levels",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Value: 1,
				Usage: "seed for random levels without a pinned seed",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				paths = []string{"configs"}
			}
			return run(cmd.Writer, paths, cmd.Bool("builtin"), cmd.Int64("seed"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, paths []string, builtin bool, seed int64) error {
	var levels []*engine.LevelConfig

	if builtin {
		names := make([]string, 0)
		all := engine.BuiltinLevels()
		for name := range all {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			levels = append(levels, all[name])
		}
	}

	for _, p := range paths {
		files := []string{p}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			files, _ = filepath.Glob(filepath.Join(p, "*.json"))
			sort.Strings(files)
		}
		for _, f := range files {
			level, err := engine.LoadLevelConfig(f)
			if err != nil {
				fmt.Fprintf(w, "\n=== %s ===\nError: %v\n", filepath.Base(f), err)
				continue
			}
			levels = append(levels, level)
		}
	}

	for _, level := range levels {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", level.Name)
		a, err := analyzeLevel(level, seed)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		printAnalysis(w, a)
	}
	return nil
}

// analyzeLevel builds the level and computes its heuristics
func analyzeLevel(level *engine.LevelConfig, seed int64) (*Analysis, error) {
	if level.Seed != nil {
		seed = *level.Seed
	}
	gm, err := level.BuildMap(rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	stats, err := engine.AnalyzeMap(gm)
	if err != nil {
		return nil, err
	}
	m, err := engine.NewMap(gm.Tiles)
	if err != nil {
		return nil, err
	}

	a := &Analysis{Name: level.Name, Stats: stats, GhostDistance: -1, NearestPellet: -1}
	if _, d, ok := engine.FindNearestPellet(m, gm.PlayerSpawn); ok {
		a.NearestPellet = d
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			p := engine.Position{X: x, Y: y}
			if !m.IsWalkable(p) {
				continue
			}
			if len(engine.PossibleMoves(m, p)) == 1 {
				a.DeadEnds++
			}
			if m.TileAt(p).IsPellet() {
				if path, ok := engine.FindPath(m, gm.PlayerSpawn, p); ok && len(path) > a.FarthestPellet {
					a.FarthestPellet = len(path)
				}
			}
		}
	}

	for _, g := range gm.Ghosts {
		path, ok := engine.FindPath(m, gm.PlayerSpawn, g)
		if ok && (a.GhostDistance == -1 || len(path) < a.GhostDistance) {
			a.GhostDistance = len(path)
		}
	}
	return a, nil
}

func printAnalysis(w io.Writer, a *Analysis) {
	s := a.Stats
	fmt.Fprintf(w, "Grid Size: %d x %d\n", s.Width, s.Height)
	fmt.Fprintf(w, "Walkable Cells: %d\n", s.Walkable)
	fmt.Fprintf(w, "Pellets: %d (+%d power pellets, %d points total)\n",
		s.Pellets, s.PowerPellets, s.Pellets*engine.PelletScore+s.PowerPellets*engine.PowerPelletScore)
	fmt.Fprintf(w, "Ghosts: %d\n", s.Ghosts)
	fmt.Fprintf(w, "Spawn: %s\n", s.Spawn)
	fmt.Fprintf(w, "Dead Ends: %d\n", a.DeadEnds)
	if a.NearestPellet > 0 {
		fmt.Fprintf(w, "Nearest Pellet: %d cells away\n", a.NearestPellet)
	}
	fmt.Fprintf(w, "Farthest Pellet: %d moves\n", a.FarthestPellet)

	switch {
	case a.GhostDistance == -1:
		fmt.Fprintf(w, "✅ No ghost can reach the spawn\n")
	case a.GhostDistance <= 2:
		fmt.Fprintf(w, "⚠️  WARNING: a ghost starts %d moves from the spawn\n", a.GhostDistance)
	default:
		fmt.Fprintf(w, "Nearest Ghost: %d moves from the spawn\n", a.GhostDistance)
	}

	if len(s.Unreachable) > 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: %d pellets are unreachable from the spawn!\n", len(s.Unreachable))
		for i, p := range s.Unreachable {
			if i == maxListed {
				fmt.Fprintf(w, "   ... and %d more\n", len(s.Unreachable)-maxListed)
				break
			}
			fmt.Fprintf(w, "   Unreachable: %s\n", p)
		}
	} else {
		fmt.Fprintf(w, "✅ All pellets are reachable from the spawn\n")
	}
}
