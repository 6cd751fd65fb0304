// Package match resolves moderator-typed contestant guesses to answers on
// the game board using deterministic fuzzy string matching.
package match

import (
	"fmt"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"

	"github.com/crowdfeud/go-feud/internal/domain"
	"github.com/crowdfeud/go-feud/internal/ports"
)

var (
	_ ports.GuessMatcher = (*FuzzyMatcher)(nil)

	// foldCaser is a package-level Unicode case folder for performance.
	// This avoids creating a new caser for each comparison.
	foldCaser = cases.Fold()

	validate = validator.New()
)

// Config defines the parameters for a FuzzyMatcher. All fields are
// validated during construction.
type Config struct {
	// Algorithm selects the fuzzy matching algorithm.
	// Currently only "levenshtein" is supported.
	Algorithm string `validate:"required,oneof=levenshtein"`

	// Threshold is the minimum similarity score (0.0-1.0) for a match.
	// Guesses scoring below it match nothing.
	Threshold float64 `validate:"min=0.0,max=1.0"`

	// CaseSensitive disables Unicode case folding before comparison.
	CaseSensitive bool
}

// FuzzyMatcher resolves guesses against board answers by normalized
// Levenshtein similarity: 1 - distance/maxLen, so identical strings score
// 1.0 and entirely different strings score 0.0. Revealed answers are never
// matched again.
//
// The matcher is stateless and safe for concurrent use.
type FuzzyMatcher struct {
	config Config
}

// NewFuzzyMatcher creates a FuzzyMatcher with the given configuration.
// Returns an error if configuration validation fails.
func NewFuzzyMatcher(config Config) (*FuzzyMatcher, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &FuzzyMatcher{config: config}, nil
}

// Match returns the unrevealed board answer most similar to the guess and
// its similarity. The boolean reports whether the best candidate met the
// threshold. Ties keep board order, so the higher-ranked answer wins.
func (m *FuzzyMatcher) Match(guess string, answers []domain.GameAnswer) (domain.GameAnswer, float64, bool) {
	prepared := m.prepare(guess)

	var (
		best      domain.GameAnswer
		bestScore float64
		found     bool
	)
	for _, a := range answers {
		if a.IsGuessed {
			continue
		}
		score := similarity(prepared, m.prepare(a.Text))
		if !found || score > bestScore {
			best = a
			bestScore = score
			found = true
		}
	}
	if !found || bestScore < m.config.Threshold {
		return domain.GameAnswer{}, bestScore, false
	}
	return best, bestScore, true
}

func (m *FuzzyMatcher) prepare(s string) string {
	if m.config.CaseSensitive {
		return s
	}
	return foldCaser.String(s)
}

// similarity converts edit distance to a [0, 1] score over rune length.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}
