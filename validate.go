package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/pelletmaze/game/engine"
)

// generatorAttempts is how many seeds a random level is generated with
const generatorAttempts = 5

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate level files",
		ArgsUsage: "[file.json|dir ...]",
		Description: "Checks every level file given, or every *.json file in the config " +
			"directory when none is. Static layouts must have all pellets reachable from " +
			"the spawn; random levels must generate.",
		Action: runValidate,
	}
}

// ValidationResult captures the outcome of validating a single file.
// Errors holds the problems found; Info holds a summary of a valid level.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		paths = []string{s.Game.ConfigDir}
	}

	files, err := levelFiles(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no level files found")
	}

	w := cmd.Root().Writer
	invalid := 0
	for _, f := range files {
		result := validateLevelFile(f)
		if result.Valid {
			fmt.Fprintf(w, "✓ %s\n", result.File)
			for _, line := range result.Info {
				fmt.Fprintf(w, "    %s\n", line)
			}
			continue
		}
		invalid++
		fmt.Fprintf(w, "✗ %s\n", result.File)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}

	fmt.Fprintf(w, "\n%d/%d level files valid\n", len(files)-invalid, len(files))
	if invalid > 0 {
		return fmt.Errorf("%d invalid level file(s)", invalid)
	}
	return nil
}

// levelFiles expands directories into their *.json files
func levelFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return files, nil
}

// validateLevelFile loads and validates a single level file, then builds it
// to report its shape.
func validateLevelFile(path string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
	}

	level, err := engine.LoadLevelConfig(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	var stats *engine.LevelStats
	attempts := 1
	if !level.IsStatic() && level.Seed == nil {
		attempts = generatorAttempts
	}
	for i := 0; i < attempts; i++ {
		seed := int64(i + 1)
		if level.Seed != nil {
			seed = *level.Seed
		}
		gm, err := level.BuildMap(rand.New(rand.NewSource(seed)))
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("build with seed %d: %v", seed, err))
			return result
		}
		s, err := engine.AnalyzeMap(gm)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
			return result
		}
		if len(s.Unreachable) > 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("seed %d: %d pellet(s) unreachable from spawn %s, first at %s",
				seed, len(s.Unreachable), s.Spawn, s.Unreachable[0]))
			return result
		}
		stats = s
	}

	kind := "static"
	if !level.IsStatic() {
		kind = "random"
	}
	lives := level.Lives
	if lives == 0 {
		lives = engine.DefaultLives
	}
	result.Info = append(result.Info,
		fmt.Sprintf("Name: %s (%s)", level.Name, kind),
		fmt.Sprintf("Grid: %dx%d", stats.Width, stats.Height),
		fmt.Sprintf("Pellets: %d, power pellets: %d", stats.Pellets, stats.PowerPellets),
		fmt.Sprintf("Ghosts: %d", stats.Ghosts),
		fmt.Sprintf("Lives: %d", lives),
	)
	return result
}
