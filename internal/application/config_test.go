package application

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate(), "the built-in defaults must be valid.")
	assert.Equal(t, "ballots", cfg.Scoring.Model)
	assert.Equal(t, 8, cfg.Scoring.BoardSize)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, []string{"Team A", "Team B"}, cfg.Game.TeamNames)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		assert  func(t *testing.T, cfg *Config)
	}{
		{
			name: "full override",
			yaml: `
version: "1.2.0"
game:
  team_names: ["Schmidts", "Smiths"]
  strike_auto_advance: true
scoring:
  model: inline
  board_size: 5
  match:
    algorithm: levenshtein
    threshold: 0.8
    case_sensitive: true
storage:
  backend: sqlite
  sqlite_path: /var/lib/feud/snapshots.db
  snapshot_key: gamestate
`,
			assert: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "inline", cfg.Scoring.Model)
				assert.Equal(t, 5, cfg.Scoring.BoardSize)
				assert.True(t, cfg.Game.StrikeAutoAdvance)
				assert.Equal(t, "sqlite", cfg.Storage.Backend)
				assert.InDelta(t, 0.8, cfg.Scoring.Match.Threshold, 1e-9)
			},
		},
		{
			name: "partial yaml keeps defaults",
			yaml: `
version: "1.0.0"
game:
  team_names: ["Reds", "Blues"]
`,
			assert: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"Reds", "Blues"}, cfg.Game.TeamNames)
				assert.Equal(t, "ballots", cfg.Scoring.Model, "untouched sections stay at their defaults.")
				assert.Equal(t, "memory", cfg.Storage.Backend)
			},
		},
		{
			name: "rejects an unknown voting model",
			yaml: `
version: "1.0.0"
scoring:
  model: plurality
`,
			wantErr: "validation failed",
		},
		{
			name: "rejects a board size past eight",
			yaml: `
version: "1.0.0"
scoring:
  model: ballots
  board_size: 12
`,
			wantErr: "validation failed",
		},
		{
			name: "sqlite backend requires a path",
			yaml: `
version: "1.0.0"
storage:
  backend: sqlite
  snapshot_key: gamestate
`,
			wantErr: "validation failed",
		},
		{
			name: "redis backend requires a well-formed address",
			yaml: `
version: "1.0.0"
storage:
  backend: redis
  redis_addr: "not an address"
  snapshot_key: gamestate
`,
			wantErr: "validation failed",
		},
		{
			name: "rejects identical team names",
			yaml: `
version: "1.0.0"
game:
  team_names: ["Twins", "Twins"]
`,
			wantErr: "team names must differ",
		},
		{
			name: "rejects a non-semver version",
			yaml: `
version: "latest"
`,
			wantErr: "validation failed",
		},
		{
			name: "rejects unknown fields",
			yaml: `
version: "1.0.0"
scorring:
  model: ballots
`,
			wantErr: "failed to decode config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(strings.NewReader(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.assert(t, cfg)
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile("/nonexistent/feud.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open config")
}
