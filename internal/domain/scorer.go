package domain

import (
	"fmt"
	"math"
	"sort"
)

// BoardSize is the maximum number of answers kept on a game board.
const BoardSize = 8

// VoteSource abstracts the two voting models that can feed a game board.
// InlineVotes carries vote evidence on each answer record; BallotVotes
// carries separate per-voter ballot records. Both produce the same
// GameAnswer shape so the game state machine never cares which model
// supplied the data.
type VoteSource interface {
	// Score converts the source's vote evidence into scored answers.
	// The result is ranked and percentage-normalized according to the
	// rules of the concrete variant.
	Score() ([]GameAnswer, error)
}

// InlineVotes scores answers from the upvote/downvote arrays embedded on
// each answer record. This is the legacy voting model: net scores are
// clamped to zero rather than excluded, every input answer is emitted,
// and ranking/truncation is left to FilterAndSort and TopN.
type InlineVotes struct {
	// Answers are the persisted answer records carrying inline votes.
	Answers []Answer
}

var _ VoteSource = InlineVotes{}

// Score computes percentage-normalized points for every input answer.
// Each answer's net score is clamped at zero, so a net-negative answer is
// included at zero points rather than dropped. When no answer has a
// positive net score, all points are zero.
func (v InlineVotes) Score() ([]GameAnswer, error) {
	totalNet := 0
	for _, a := range v.Answers {
		totalNet += clampedNet(a)
	}

	scored := make([]GameAnswer, 0, len(v.Answers))
	for _, a := range v.Answers {
		net := clampedNet(a)
		points := 0
		if totalNet > 0 {
			points = int(math.Round(float64(net) / float64(totalNet) * 100))
		}
		scored = append(scored, GameAnswer{
			ID:        a.ID,
			Text:      a.Text,
			AuthorID:  a.AuthorID,
			Upvotes:   len(a.Upvotes),
			Downvotes: len(a.Downvotes),
			NetScore:  net,
			Points:    points,
		})
	}
	return scored, nil
}

func clampedNet(a Answer) int {
	net := len(a.Upvotes) - len(a.Downvotes)
	if net < 0 {
		return 0
	}
	return net
}

// FilterAndSort drops answers with negative points and ranks the rest by
// points, highest first. The sort is stable so equal scores keep their
// encounter order. The negative-points filter is a safety check; it never
// fires on InlineVotes output because of clamping.
func FilterAndSort(answers []GameAnswer) []GameAnswer {
	kept := make([]GameAnswer, 0, len(answers))
	for _, a := range answers {
		if a.Points >= 0 {
			kept = append(kept, a)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Points > kept[j].Points
	})
	return kept
}

// TopN returns at most the first n answers of a ranked set.
func TopN(answers []GameAnswer, n int) []GameAnswer {
	if len(answers) <= n {
		return answers
	}
	return answers[:n]
}

// BallotVotes scores answers from separate ballot records, one per voter
// per question. This is the canonical voting model: answers without a
// positive net score are excluded, the kept set is truncated to BoardSize
// and renormalized so points sum to roughly 100.
type BallotVotes struct {
	// QuestionID is the question the ballots and answers must belong to.
	QuestionID string

	// Ballots are the per-voter vote records for the question.
	Ballots []Ballot

	// Answers are the answer records the ballots reference.
	Answers []Answer
}

var _ VoteSource = BallotVotes{}

// Score tallies ballots per answer, ranks the positively-scored answers,
// truncates to BoardSize, and renormalizes the kept set to 100 points.
// It returns a ValidationError if any ballot or answer references a
// different question; the caller must not proceed with mismatched data.
func (v BallotVotes) Score() ([]GameAnswer, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}

	type tally struct{ up, down int }
	tallies := make(map[string]tally, len(v.Answers))
	uniqueVoters := make(map[string]struct{}, len(v.Ballots))

	for _, b := range v.Ballots {
		uniqueVoters[b.VoterID] = struct{}{}
		for _, id := range b.Upvotes {
			t := tallies[id]
			t.up++
			tallies[id] = t
		}
		for _, id := range b.Downvotes {
			t := tallies[id]
			t.down++
			tallies[id] = t
		}
	}

	// Walk the answer records, not the tally map, so encounter order is
	// deterministic and ballot entries without a resolvable answer record
	// are dropped.
	kept := make([]GameAnswer, 0, len(v.Answers))
	for _, a := range v.Answers {
		t := tallies[a.ID]
		net := t.up - t.down
		if net <= 0 {
			continue
		}
		popularity := 0.0
		if len(uniqueVoters) > 0 {
			popularity = float64(net) / float64(len(uniqueVoters))
		}
		kept = append(kept, GameAnswer{
			ID:             a.ID,
			Text:           a.Text,
			AuthorID:       a.AuthorID,
			Upvotes:        t.up,
			Downvotes:      t.down,
			NetScore:       net,
			Popularity:     popularity,
			UniqueVoterNum: len(uniqueVoters),
		})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].NetScore > kept[j].NetScore
	})
	kept = TopN(kept, BoardSize)

	keptNet := 0
	for _, a := range kept {
		keptNet += a.NetScore
	}
	// keptNet can only be zero when the kept set is empty, in which case
	// the loop below never divides.
	for i := range kept {
		kept[i].Points = int(math.Round(float64(kept[i].NetScore) / float64(keptNet) * 100))
	}
	return kept, nil
}

func (v BallotVotes) validate() error {
	verr := NewValidationError("ballot votes")
	for _, b := range v.Ballots {
		if b.QuestionID != v.QuestionID {
			verr.AddError(fmt.Sprintf("ballot %s belongs to question %s, want %s", b.ID, b.QuestionID, v.QuestionID))
		}
	}
	for _, a := range v.Answers {
		if a.QuestionID != v.QuestionID {
			verr.AddError(fmt.Sprintf("answer %s belongs to question %s, want %s", a.ID, a.QuestionID, v.QuestionID))
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
