// Package config loads tournament configuration from HCL files. A config
// describes the server to run or connect to, the match to play, and the
// agents that play it.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/boardforbots/agent"
	"github.com/lox/boardforbots/nn"
)

// Config represents the complete tournament configuration
type Config struct {
	Server *ServerBlock `hcl:"server,block"`
	Match  *MatchBlock  `hcl:"match,block"`
	Agents []AgentBlock `hcl:"agent,block"`
}

// ServerBlock contains match server settings
type ServerBlock struct {
	Address            string `hcl:"address,optional"`
	Port               int    `hcl:"port,optional"`
	MoveTimeoutSeconds int    `hcl:"move_timeout_seconds,optional"`
	LogLevel           string `hcl:"log_level,optional"`
}

// MatchBlock contains match settings
type MatchBlock struct {
	Game        string `hcl:"game,optional"`
	Games       int    `hcl:"games,optional"`
	MaxMoves    int    `hcl:"max_moves,optional"`
	MoveDelayMs int    `hcl:"move_delay_ms,optional"`
	Results     string `hcl:"results,optional"`
}

// AgentBlock configures one named agent
type AgentBlock struct {
	Name         string `hcl:"name,label"`
	Strategy     string `hcl:"strategy"`
	Seed         int64  `hcl:"seed,optional"`
	TopK         int    `hcl:"top_k,optional"`
	Rollouts     int    `hcl:"rollouts,optional"`
	MaxDepth     int    `hcl:"max_depth,optional"`
	Workers      int    `hcl:"workers,optional"`
	Checkpoint   string `hcl:"checkpoint,optional"`
	HiddenLayers []int  `hcl:"hidden_layers,optional"`
	Activation   string `hcl:"activation,optional"`
}

// MoveDelay returns the configured inter-move pause.
func (m *MatchBlock) MoveDelay() time.Duration {
	return time.Duration(m.MoveDelayMs) * time.Millisecond
}

// MoveTimeout returns the configured per-move budget for remote bots.
func (s *ServerBlock) MoveTimeout() time.Duration {
	return time.Duration(s.MoveTimeoutSeconds) * time.Second
}

// ListenAddress returns the full listen address.
func (s *ServerBlock) ListenAddress() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// DefaultConfig returns the configuration used when no file is present: a
// local tic-tac-toe match between a Monte Carlo agent and a random one.
func DefaultConfig() *Config {
	return &Config{
		Server: &ServerBlock{
			Address:            "localhost",
			Port:               8080,
			MoveTimeoutSeconds: 30,
			LogLevel:           "info",
		},
		Match: &MatchBlock{
			Game:     "tictactoe",
			Games:    20,
			MaxMoves: 1000,
		},
		Agents: []AgentBlock{
			{
				Name:         "montecarlo",
				Strategy:     "montecarlo",
				TopK:         agent.DefaultTopK,
				Rollouts:     agent.DefaultRollouts,
				HiddenLayers: []int{64, 32},
				Activation:   "tanh",
			},
			{
				Name:     "random",
				Strategy: "random",
			},
		},
	}
}

// Load loads configuration from an HCL file. A missing file yields the
// default configuration.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()

	if config.Server == nil {
		config.Server = defaults.Server
	}
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.MoveTimeoutSeconds == 0 {
		config.Server.MoveTimeoutSeconds = defaults.Server.MoveTimeoutSeconds
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}

	if config.Match == nil {
		config.Match = defaults.Match
	}
	if config.Match.Game == "" {
		config.Match.Game = defaults.Match.Game
	}
	if config.Match.Games == 0 {
		config.Match.Games = defaults.Match.Games
	}
	if config.Match.MaxMoves == 0 {
		config.Match.MaxMoves = defaults.Match.MaxMoves
	}

	if len(config.Agents) == 0 {
		config.Agents = defaults.Agents
	}
	for i := range config.Agents {
		ApplyAgentDefaults(&config.Agents[i])
	}

	return &config, nil
}

// ApplyAgentDefaults fills the unset search and network settings of a Monte
// Carlo agent block. The agent constructor rejects unset search settings, so
// blocks assembled outside Load need this before use.
func ApplyAgentDefaults(a *AgentBlock) {
	if a.Strategy != "montecarlo" {
		return
	}
	if a.TopK == 0 {
		a.TopK = agent.DefaultTopK
	}
	if a.Rollouts == 0 {
		a.Rollouts = agent.DefaultRollouts
	}
	if len(a.HiddenLayers) == 0 && a.Checkpoint == "" {
		a.HiddenLayers = []int{64, 32}
	}
	if a.Activation == "" && a.Checkpoint == "" {
		a.Activation = "tanh"
	}
}

// validStrategies are the agent strategies the command line can assemble.
var validStrategies = map[string]bool{
	"montecarlo": true,
	"greedy":     true,
	"random":     true,
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.MoveTimeoutSeconds < 0 {
		return fmt.Errorf("move timeout must not be negative")
	}

	if c.Match.Games <= 0 {
		return fmt.Errorf("match must have at least one game")
	}
	if c.Match.MaxMoves <= 0 {
		return fmt.Errorf("max moves must be positive")
	}
	if c.Match.MoveDelayMs < 0 {
		return fmt.Errorf("move delay must not be negative")
	}

	seen := make(map[string]bool)
	for _, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("agents need a name")
		}
		if seen[a.Name] {
			return fmt.Errorf("agent %s: name used twice", a.Name)
		}
		seen[a.Name] = true

		if !validStrategies[a.Strategy] {
			return fmt.Errorf("agent %s: invalid strategy %s", a.Name, a.Strategy)
		}
		if a.TopK < 0 || a.Rollouts < 0 || a.MaxDepth < 0 || a.Workers < 0 {
			return fmt.Errorf("agent %s: search settings must not be negative", a.Name)
		}
		for _, width := range a.HiddenLayers {
			if width <= 0 {
				return fmt.Errorf("agent %s: hidden layer width %d", a.Name, width)
			}
		}
		if a.Activation != "" {
			if _, err := nn.ActivationByName(a.Activation); err != nil {
				return fmt.Errorf("agent %s: %w", a.Name, err)
			}
		}
	}

	return nil
}

// AgentByName returns the agent block with the given name.
func (c *Config) AgentByName(name string) *AgentBlock {
	for i := range c.Agents {
		if c.Agents[i].Name == name {
			return &c.Agents[i]
		}
	}
	return nil
}
