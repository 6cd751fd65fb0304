package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdfeud/go-feud/internal/domain"
)

func newMatcher(t *testing.T, threshold float64, caseSensitive bool) *FuzzyMatcher {
	t.Helper()
	m, err := NewFuzzyMatcher(Config{
		Algorithm:     "levenshtein",
		Threshold:     threshold,
		CaseSensitive: caseSensitive,
	})
	require.NoError(t, err)
	return m
}

func TestNewFuzzyMatcher_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid config",
			config: Config{Algorithm: "levenshtein", Threshold: 0.7},
		},
		{
			name:    "unknown algorithm",
			config:  Config{Algorithm: "soundex", Threshold: 0.7},
			wantErr: true,
		},
		{
			name:    "threshold above one",
			config:  Config{Algorithm: "levenshtein", Threshold: 1.5},
			wantErr: true,
		},
		{
			name:    "missing algorithm",
			config:  Config{Threshold: 0.7},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewFuzzyMatcher(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "configuration validation failed")
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, m)
		})
	}
}

func TestFuzzyMatcher_Match(t *testing.T) {
	answers := []domain.GameAnswer{
		{ID: "a", Text: "refrigerator", Points: 40},
		{ID: "b", Text: "microwave", Points: 30},
		{ID: "c", Text: "toaster", Points: 20},
	}

	tests := []struct {
		name      string
		guess     string
		threshold float64
		answers   []domain.GameAnswer
		wantID    string
		wantOK    bool
	}{
		{
			name:      "exact guess matches",
			guess:     "microwave",
			threshold: 0.7,
			answers:   answers,
			wantID:    "b",
			wantOK:    true,
		},
		{
			name:      "near miss within threshold",
			guess:     "microwaev",
			threshold: 0.7,
			answers:   answers,
			wantID:    "b",
			wantOK:    true,
		},
		{
			name:      "unrelated guess matches nothing",
			guess:     "zebra",
			threshold: 0.7,
			answers:   answers,
			wantOK:    false,
		},
		{
			name:      "empty board matches nothing",
			guess:     "microwave",
			threshold: 0.7,
			answers:   nil,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMatcher(t, tt.threshold, false)

			got, score, ok := m.Match(tt.guess, tt.answers)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, got.ID)
				assert.GreaterOrEqual(t, score, tt.threshold)
			} else {
				assert.Empty(t, got.ID, "a miss must not leak a candidate.")
			}
		})
	}
}

func TestFuzzyMatcher_CaseFolding(t *testing.T) {
	answers := []domain.GameAnswer{{ID: "a", Text: "Straße"}}

	folding := newMatcher(t, 0.99, false)
	_, score, ok := folding.Match("STRASSE", answers)
	assert.True(t, ok, "case folding equates ß with ss.")
	assert.InDelta(t, 1.0, score, 1e-9)

	strict := newMatcher(t, 0.99, true)
	_, _, ok = strict.Match("STRASSE", answers)
	assert.False(t, ok, "case-sensitive matching keeps the raw runes.")
}

func TestFuzzyMatcher_SkipsRevealedAnswers(t *testing.T) {
	answers := []domain.GameAnswer{
		{ID: "a", Text: "toaster", IsGuessed: true},
		{ID: "b", Text: "toast rack"},
	}

	m := newMatcher(t, 0.5, false)
	got, _, ok := m.Match("toaster", answers)

	require.True(t, ok)
	assert.Equal(t, "b", got.ID, "a revealed answer is never matched again.")
}

func TestFuzzyMatcher_TiesKeepBoardOrder(t *testing.T) {
	answers := []domain.GameAnswer{
		{ID: "first", Text: "cat"},
		{ID: "second", Text: "cat"},
	}

	m := newMatcher(t, 0.9, false)
	got, _, ok := m.Match("cat", answers)

	require.True(t, ok)
	assert.Equal(t, "first", got.ID, "on a tie the higher-ranked answer wins.")
}
