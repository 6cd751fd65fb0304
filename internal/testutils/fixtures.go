// Package testutils provides test data generators for the feud engine.
// These components are intended for internal use within the project's
// test suites and are not part of the public API.
package testutils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/crowdfeud/go-feud/internal/domain"
)

// SampleQuestion returns a fixed survey question for tests.
func SampleQuestion() domain.Question {
	return domain.Question{
		ID:          "q-1",
		Text:        "Name something people forget to pack for vacation.",
		AuthorID:    "author-1",
		DateCreated: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// SampleAnswers returns n answer records for the sample question, without
// vote evidence. IDs are "a-0" through "a-{n-1}".
func SampleAnswers(n int) []domain.Answer {
	texts := []string{
		"Toothbrush", "Phone charger", "Sunscreen", "Passport",
		"Swimsuit", "Medication", "Socks", "Camera", "Umbrella", "Snacks",
	}
	answers := make([]domain.Answer, 0, n)
	for i := range n {
		text := fmt.Sprintf("Answer %d", i)
		if i < len(texts) {
			text = texts[i]
		}
		answers = append(answers, domain.Answer{
			ID:         fmt.Sprintf("a-%d", i),
			Text:       text,
			QuestionID: "q-1",
			AuthorID:   fmt.Sprintf("author-%d", i),
		})
	}
	return answers
}

// GenerateBallots creates voterCount random ballots over the given
// answers. The seed parameter controls randomization - use a fixed value
// for reproducible tests. Each voter upvotes a random non-empty subset and
// downvotes a random disjoint subset, so net scores vary but ballots stay
// internally consistent.
func GenerateBallots(answers []domain.Answer, voterCount int, seed int64) []domain.Ballot {
	rng := rand.New(rand.NewSource(seed))

	ballots := make([]domain.Ballot, 0, voterCount)
	for v := range voterCount {
		b := domain.Ballot{
			ID:         fmt.Sprintf("b-%d", v),
			QuestionID: answers[0].QuestionID,
			VoterID:    fmt.Sprintf("voter-%d", v),
		}
		for _, a := range answers {
			switch rng.Intn(3) {
			case 0:
				b.Upvotes = append(b.Upvotes, a.ID)
			case 1:
				b.Downvotes = append(b.Downvotes, a.ID)
			}
		}
		if len(b.Upvotes) == 0 {
			b.Upvotes = append(b.Upvotes, answers[rng.Intn(len(answers))].ID)
		}
		ballots = append(ballots, b)
	}
	return ballots
}

// ScoredBoard returns a ranked, normalized board for tests that exercise
// the game rather than the scorer: points descending, ids "a-0"... in
// rank order.
func ScoredBoard(points ...int) []domain.GameAnswer {
	board := make([]domain.GameAnswer, 0, len(points))
	for i, p := range points {
		board = append(board, domain.GameAnswer{
			ID:       fmt.Sprintf("a-%d", i),
			Text:     fmt.Sprintf("Answer %d", i),
			NetScore: p,
			Points:   p,
		})
	}
	return board
}
