// Package application wires the domain core to its configuration: parsing,
// defaulting and validating the yaml game setup consumed by sessions and
// the server binary.
package application

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete game setup loaded from yaml. It selects the
// voting model, the snapshot storage backend, and the live-game options.
type Config struct {
	// Version is the configuration schema version, semantic-versioned to
	// keep older setups from silently misparsing.
	Version string `yaml:"version" validate:"required,semver"`

	// Game configures the live game session.
	Game GameConfig `yaml:"game"`

	// Scoring configures how crowd votes become a board.
	Scoring ScoringConfig `yaml:"scoring"`

	// Storage configures snapshot persistence.
	Storage StorageConfig `yaml:"storage"`
}

// GameConfig holds live-session options.
type GameConfig struct {
	// TeamNames are the two initial team names, left then right.
	TeamNames []string `yaml:"team_names" validate:"len=2,dive,required"`

	// StrikeAutoAdvance flips the active team on a third strike in
	// addition to raising the round-steal flag.
	StrikeAutoAdvance bool `yaml:"strike_auto_advance"`
}

// ScoringConfig selects the voting model and guess-matching behavior.
type ScoringConfig struct {
	// Model selects which vote evidence feeds the board: "ballots" for
	// per-voter ballot records, "inline" for the legacy per-answer
	// upvote/downvote arrays.
	Model string `yaml:"model" validate:"required,oneof=ballots inline"`

	// BoardSize caps the number of answers kept on the board.
	BoardSize int `yaml:"board_size" validate:"min=1,max=8"`

	// Match configures fuzzy matching of typed guesses to board answers.
	Match MatchConfig `yaml:"match"`
}

// MatchConfig configures the guess matcher.
type MatchConfig struct {
	// Algorithm selects the fuzzy matching algorithm.
	// Currently only "levenshtein" is supported.
	Algorithm string `yaml:"algorithm" validate:"required,oneof=levenshtein"`

	// Threshold is the minimum similarity in [0, 1] for a guess to count
	// as a reveal.
	Threshold float64 `yaml:"threshold" validate:"min=0,max=1"`

	// CaseSensitive disables Unicode case folding before comparison.
	CaseSensitive bool `yaml:"case_sensitive"`
}

// StorageConfig selects and parameterizes the snapshot store.
type StorageConfig struct {
	// Backend selects the store: "memory" for per-process session
	// semantics, "sqlite" for durable single-host storage, "redis" when
	// several display processes share one snapshot.
	Backend string `yaml:"backend" validate:"required,oneof=memory sqlite redis"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path" validate:"required_if=Backend sqlite"`

	// RedisAddr is the host:port for the redis backend.
	RedisAddr string `yaml:"redis_addr" validate:"required_if=Backend redis,omitempty,hostname_port"`

	// SnapshotKey is the storage key the session persists under.
	SnapshotKey string `yaml:"snapshot_key" validate:"required"`
}

// DefaultConfig returns the setup used when no yaml file is supplied:
// ballot scoring, an eight-slot board, in-memory snapshots.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Game: GameConfig{
			TeamNames: []string{"Team A", "Team B"},
		},
		Scoring: ScoringConfig{
			Model:     "ballots",
			BoardSize: 8,
			Match: MatchConfig{
				Algorithm: "levenshtein",
				Threshold: 0.7,
			},
		},
		Storage: StorageConfig{
			Backend:     "memory",
			SnapshotKey: "gamestate",
		},
	}
}

// Load reads, defaults and validates a yaml config.
func Load(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads, defaults and validates a yaml config file.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags and the
// cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if len(c.Game.TeamNames) == 2 && c.Game.TeamNames[0] == c.Game.TeamNames[1] {
		return fmt.Errorf("configuration validation failed: team names must differ, both are %q", c.Game.TeamNames[0])
	}
	return nil
}
