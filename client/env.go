package client

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variable names used to hand bots their settings, so a
// launcher can start bot processes without building command lines.
const (
	// EnvServer specifies the WebSocket URL for the match server
	EnvServer = "BOARDFORBOTS_SERVER"

	// EnvName provides the name the bot joins under
	EnvName = "BOARDFORBOTS_NAME"

	// EnvGame specifies the game the bot expects to play
	EnvGame = "BOARDFORBOTS_GAME"

	// EnvSeed provides a random seed for deterministic play
	EnvSeed = "BOARDFORBOTS_SEED"
)

// EnvConfig holds bot settings parsed from environment variables
type EnvConfig struct {
	// ServerURL is the WebSocket URL for connecting to the server
	ServerURL string

	// Name is the name the bot joins under
	Name string

	// Game is the game the bot expects to play (empty accepts any)
	Game string

	// Seed is the random seed for deterministic behavior (0 means not set)
	Seed int64
}

// FromEnv parses bot configuration from environment variables.
// Returns an error if required variables are missing or invalid.
func FromEnv() (*EnvConfig, error) {
	cfg := &EnvConfig{}

	cfg.ServerURL = os.Getenv(EnvServer)
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("%s environment variable is required", EnvServer)
	}

	cfg.Name = os.Getenv(EnvName)
	cfg.Game = os.Getenv(EnvGame)

	if seedStr := os.Getenv(EnvSeed); seedStr != "" {
		seed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", EnvSeed, err)
		}
		cfg.Seed = seed
	}

	return cfg, nil
}

// SetEnv appends an environment variable to env in the form a launcher
// passes to exec.
func SetEnv(env []string, key, value string) []string {
	return append(env, fmt.Sprintf("%s=%s", key, value))
}
