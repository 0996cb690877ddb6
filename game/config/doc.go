// Package config provides level configuration management for the pellet maze game.
//
// Levels come from two places: the built-in presets (classic, random and
// small) and JSON files in the configs directory. A file named after a
// built-in level replaces it.
//
// A level is either a random maze:
//
//	{
//	  "name": "arena",
//	  "width": 21,
//	  "height": 15,
//	  "min_ghosts": 2,
//	  "max_ghosts": 4,
//	  "power_pellets": 4
//	}
//
// or a static layout using the legend
// '#' wall, '*' pellet, 'O' power pellet, '.' path, '-' ghost-house gate,
// ' ' ghost-house floor, 'S' player spawn and 'G' ghost spawn.
//
// Every level is validated before use. Static layouts must be rectangular,
// contain at least one pellet, and have every pellet reachable from the spawn.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		return err
//	}
//	level, err := manager.LoadConfig("classic")
package config
