// Package domain contains pure, dependency-free domain models and logic
// for the feud engine: vote scoring, the game state machine, and the
// undoable change log.
package domain

import "time"

// Question is a crowd-sourced survey question whose answers are voted on
// and then played as a board in the live game.
type Question struct {
	// ID uniquely identifies this question.
	ID string `json:"id" validate:"required"`

	// Text is the survey prompt shown to voters and contestants.
	Text string `json:"text" validate:"required"`

	// AuthorID identifies the voter who submitted the question.
	AuthorID string `json:"authorId,omitempty"`

	// DateCreated records when the question was submitted.
	DateCreated time.Time `json:"dateCreated,omitzero"`
}

// Answer is a persisted crowd answer carrying its vote evidence inline.
// Voter ids appear in at most one of Upvotes/Downvotes per answer; that
// uniqueness is enforced by the persistence collaborator at write time,
// not by the scorer.
type Answer struct {
	// ID uniquely identifies this answer.
	ID string `json:"id" validate:"required"`

	// Text is the answer content shown on the board.
	Text string `json:"text" validate:"required"`

	// QuestionID references the question this answer belongs to.
	QuestionID string `json:"questionId" validate:"required"`

	// AuthorID identifies the voter who submitted the answer.
	AuthorID string `json:"authorId,omitempty"`

	// DateCreated records when the answer was submitted.
	DateCreated time.Time `json:"dateCreated,omitzero"`

	// Upvotes lists the voter ids that upvoted this answer.
	Upvotes []string `json:"upvotes"`

	// Downvotes lists the voter ids that downvoted this answer.
	Downvotes []string `json:"downvotes"`
}

// Ballot is one voter's complete up/down selections for all answers to a
// single question. One ballot exists per voter per question; uniqueness
// is enforced at write time by the persistence collaborator.
type Ballot struct {
	// ID uniquely identifies this ballot.
	ID string `json:"id" validate:"required"`

	// QuestionID references the question this ballot votes on.
	QuestionID string `json:"questionId" validate:"required"`

	// VoterID identifies the voter who cast this ballot.
	VoterID string `json:"voterId" validate:"required"`

	// DateCreated records when the ballot was cast.
	DateCreated time.Time `json:"dateCreated,omitzero"`

	// Upvotes lists the answer ids this voter upvoted.
	Upvotes []string `json:"upvotes"`

	// Downvotes lists the answer ids this voter downvoted.
	Downvotes []string `json:"downvotes"`
}

// GameAnswer is a scored, board-ready answer derived from vote evidence.
// The scorer ranks answers by net score and renormalizes the kept set so
// points sum to roughly 100, decoupling the moderator's point budget from
// the absolute number of voters a question attracted.
type GameAnswer struct {
	// ID uniquely identifies the underlying answer.
	ID string `json:"id"`

	// Text is the answer content shown on the board.
	Text string `json:"text"`

	// AuthorID identifies the original submitter, when known.
	AuthorID string `json:"authorId,omitempty"`

	// Upvotes is the tallied upvote count.
	Upvotes int `json:"upvotes"`

	// Downvotes is the tallied downvote count.
	Downvotes int `json:"downvotes"`

	// NetScore is upvotes minus downvotes, the raw ranking signal.
	NetScore int `json:"netScore"`

	// Points is the percentage-normalized score awarded when the answer
	// is revealed during a round.
	Points int `json:"points"`

	// Popularity is the net score scaled by the number of distinct voters,
	// clamped to [0, 1].
	Popularity float64 `json:"popularity"`

	// UniqueVoterNum is the number of distinct voters seen while tallying.
	// It is zero for the inline-vote scoring variant.
	UniqueVoterNum int `json:"uniqueVoterNum,omitempty"`

	// IsGuessed reports whether the answer has been revealed on the board.
	IsGuessed bool `json:"isGuessed"`
}

// Team is one of the two competing teams in a game session.
type Team struct {
	// Name is the team's display name.
	Name string `json:"name"`

	// Score is the team's accumulated, awarded score.
	Score int `json:"score"`
}
