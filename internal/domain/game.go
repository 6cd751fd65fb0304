package domain

// RoundType classifies a round of the game.
type RoundType string

// Round types, derived from the round number by a fixed schedule.
const (
	// RoundFaceOff is the round type where teams buzz in to answer first;
	// no strike or steal logic applies.
	RoundFaceOff RoundType = "face-off"

	// RoundFeud is the main round type where strikes accumulate and a
	// third strike triggers a steal opportunity for the opposing team.
	RoundFeud RoundType = "feud"

	// RoundConclusion is the terminal round type after the game ends.
	RoundConclusion RoundType = "conclusion"
)

// RoundPhase tracks progression within a round.
type RoundPhase string

// Round phases.
const (
	PhaseInGame     RoundPhase = "ingame"
	PhaseEnd        RoundPhase = "end"
	PhaseConclusion RoundPhase = "conclusion"
)

// NoActiveTeam is the ActiveTeamIndex sentinel meaning no team has buzzed
// in or been selected yet.
const NoActiveTeam = -1

// SnapshotSchemaVersion is the current layout version of persisted
// snapshots. Stores reject snapshots written under a different version
// instead of silently misparsing them.
const SnapshotSchemaVersion = 1

// Snapshot is the complete serialized game state persisted after every
// mutation. A single snapshot write is atomic; readers always see the
// most recent consistent state, never a partial one.
type Snapshot struct {
	SchemaVersion   int          `json:"schemaVersion"`
	Round           int          `json:"round"`
	Points          int          `json:"points"`
	PointMultiplier int          `json:"pointMultiplier"`
	RoundType       RoundType    `json:"roundType"`
	RoundPhase      RoundPhase   `json:"roundPhase"`
	RoundSteal      bool         `json:"roundSteal"`
	Teams           [2]Team      `json:"teams"`
	IsBuzzersActive bool         `json:"isBuzzersActive"`
	ActiveTeamIndex int          `json:"activeTeamIndex"`
	Strikes         int          `json:"strikes"`
	Question        *Question    `json:"question,omitempty"`
	Answers         []GameAnswer `json:"answers"`
}

// roundSchedule maps round numbers 1..7 to their type. Rounds past the
// schedule stay in conclusion.
func roundTypeFor(round int) RoundType {
	switch {
	case round >= 7:
		return RoundConclusion
	case round%2 == 0:
		return RoundFeud
	default:
		return RoundFaceOff
	}
}

// multiplierFor returns the point multiplier for a round: face-off rounds
// bank nothing, feud rounds 2, 4 and 6 multiply by 1, 2 and 3.
func multiplierFor(round int) int {
	if roundTypeFor(round) != RoundFeud {
		return 0
	}
	return round / 2
}

// Game is the central state machine driving a two-team buzzer competition
// over a scored answer board. It owns round, team, score, strike and
// reveal state, computes derived values, and publishes one event per
// mutation.
//
// Game is not safe for concurrent use; the owning session serializes
// access. The moderator process is the single writer by convention.
type Game struct {
	round           int
	points          int
	pointMultiplier int
	roundType       RoundType
	roundPhase      RoundPhase
	roundSteal      bool
	teams           [2]Team
	isBuzzersActive bool
	activeTeamIndex int
	strikes         int
	question        *Question
	answers         []GameAnswer

	publish Publisher

	// initialTeams restores team names on Reset.
	initialTeams [2]Team

	// strikeAutoAdvance flips the active team when a third strike lands,
	// in addition to setting the round-steal flag.
	strikeAutoAdvance bool
}

// GameOption configures a Game during construction.
type GameOption func(*Game)

// WithPublisher sets the event publisher the game notifies on every
// mutation. The default discards events.
func WithPublisher(p Publisher) GameOption {
	return func(g *Game) {
		if p != nil {
			g.publish = p
		}
	}
}

// WithTeamNames sets the initial team names.
func WithTeamNames(left, right string) GameOption {
	return func(g *Game) {
		g.initialTeams = [2]Team{{Name: left}, {Name: right}}
	}
}

// WithStrikeAutoAdvance makes a third strike flip the active team to the
// opponent, in addition to enabling the round steal.
func WithStrikeAutoAdvance(enabled bool) GameOption {
	return func(g *Game) { g.strikeAutoAdvance = enabled }
}

// NewGame creates a game in its initial state: round 1, face-off, buzzers
// armed, no active team, zero scores.
func NewGame(opts ...GameOption) *Game {
	g := &Game{
		publish:      NopPublisher,
		initialTeams: [2]Team{{Name: "Team A"}, {Name: "Team B"}},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.applyInitial()
	return g
}

func (g *Game) applyInitial() {
	g.round = 1
	g.points = 0
	g.roundType = roundTypeFor(1)
	g.pointMultiplier = multiplierFor(1)
	g.roundPhase = PhaseInGame
	g.roundSteal = false
	g.teams = g.initialTeams
	g.isBuzzersActive = true
	g.activeTeamIndex = NoActiveTeam
	g.strikes = 0
	g.question = nil
	g.answers = nil
}

// Snapshot returns a deep copy of the full game state, tagged with the
// current schema version.
func (g *Game) Snapshot() Snapshot {
	var q *Question
	if g.question != nil {
		qCopy := *g.question
		q = &qCopy
	}
	answers := make([]GameAnswer, len(g.answers))
	copy(answers, g.answers)
	return Snapshot{
		SchemaVersion:   SnapshotSchemaVersion,
		Round:           g.round,
		Points:          g.points,
		PointMultiplier: g.pointMultiplier,
		RoundType:       g.roundType,
		RoundPhase:      g.roundPhase,
		RoundSteal:      g.roundSteal,
		Teams:           g.teams,
		IsBuzzersActive: g.isBuzzersActive,
		ActiveTeamIndex: g.activeTeamIndex,
		Strikes:         g.strikes,
		Question:        q,
		Answers:         answers,
	}
}

// Hydrate replaces the game's state with a persisted snapshot. It returns
// a ValidationError when the snapshot was written under a different
// schema version.
func (g *Game) Hydrate(s Snapshot) error {
	if s.SchemaVersion != SnapshotSchemaVersion {
		verr := NewValidationError("snapshot")
		verr.AddError("unsupported schema version")
		return verr
	}
	g.round = s.Round
	g.points = s.Points
	g.pointMultiplier = s.PointMultiplier
	g.roundType = s.RoundType
	g.roundPhase = s.RoundPhase
	g.roundSteal = s.RoundSteal
	g.teams = s.Teams
	g.isBuzzersActive = s.IsBuzzersActive
	g.activeTeamIndex = s.ActiveTeamIndex
	g.strikes = s.Strikes
	g.question = s.Question
	g.answers = make([]GameAnswer, len(s.Answers))
	copy(g.answers, s.Answers)
	return nil
}

// Load installs a question and its scored answers, resetting round-scoped
// state. Loading during a face-off also clears the active team and re-arms
// the buzzers; during a feud the active team is preserved. Load is
// idempotent for identical arguments.
func (g *Game) Load(question Question, answers []GameAnswer) {
	g.points = 0
	g.strikes = 0
	g.roundSteal = false
	g.roundPhase = PhaseInGame
	qCopy := question
	g.question = &qCopy
	g.answers = make([]GameAnswer, len(answers))
	copy(g.answers, answers)

	if g.roundType == RoundFaceOff {
		g.activeTeamIndex = NoActiveTeam
		g.isBuzzersActive = true
	}

	g.publish.Publish(GameLoaded{State: g.Snapshot()})
}

// BuzzIn attempts to claim the active-team slot for a team. The first
// valid buzz wins; later buzzes find the slot taken and report false so
// the caller can log the lost race. Races are resolved purely by call
// ordering.
func (g *Game) BuzzIn(teamIndex int) bool {
	if teamIndex < 0 || teamIndex > 1 {
		return false
	}
	if g.activeTeamIndex != NoActiveTeam || !g.isBuzzersActive {
		return false
	}
	prev := g.activeTeamIndex
	g.activeTeamIndex = teamIndex
	g.isBuzzersActive = false
	g.publish.Publish(TeamActive{
		NextTeamIndex:   teamIndex,
		PrevTeamIndex:   prev,
		IsBuzzersActive: false,
	})
	return true
}

// SetActiveTeam is the moderator override for the active team; it applies
// without precondition. Pass NoActiveTeam to clear the slot and re-arm the
// buzzers. Indexes past the team array are ignored and report false.
func (g *Game) SetActiveTeam(teamIndex int) bool {
	if teamIndex > 1 {
		return false
	}
	if teamIndex < 0 {
		teamIndex = NoActiveTeam
	}
	prev := g.activeTeamIndex
	g.activeTeamIndex = teamIndex
	if teamIndex == NoActiveTeam {
		g.isBuzzersActive = true
	}
	g.publish.Publish(TeamActive{
		NextTeamIndex:   teamIndex,
		PrevTeamIndex:   prev,
		IsBuzzersActive: g.isBuzzersActive,
	})
	return true
}

// SetStrikes sets the strike count, capped at three. A third strike raises
// the round-steal flag; with strike auto-advance enabled it also flips the
// active team. It returns an InvalidStateError unless a team is active and
// the round is a feud.
func (g *Game) SetStrikes(n int) error {
	if g.activeTeamIndex == NoActiveTeam {
		return NewInvalidStateError("SetStrikes", ErrNoActiveTeam)
	}
	if g.roundType != RoundFeud {
		return NewInvalidStateError("SetStrikes", ErrWrongRoundType)
	}

	if n < 0 {
		n = 0
	}
	if n > 3 {
		n = 3
	}
	g.strikes = n
	g.roundSteal = n == 3

	if g.roundSteal && g.strikeAutoAdvance {
		g.nextActiveTeam()
	}

	g.publish.Publish(StrikesSet{Strikes: g.strikes, RoundSteal: g.roundSteal})
	return nil
}

func (g *Game) nextActiveTeam() {
	prev := g.activeTeamIndex
	next := (prev + 1) % len(g.teams)
	g.activeTeamIndex = next
	g.publish.Publish(TeamActive{
		NextTeamIndex:   next,
		PrevTeamIndex:   prev,
		IsBuzzersActive: g.isBuzzersActive,
	})
}

// SetGuessed reveals or hides an answer on the board and recomputes the
// round's accumulated points from scratch over all revealed answers. It
// returns a NotFoundError when the id is not on the board; that indicates
// a data desync and must not be masked.
func (g *Game) SetGuessed(answerID string, guessed bool) error {
	idx := -1
	for i := range g.answers {
		if g.answers[i].ID == answerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NewNotFoundError("answer", answerID, ErrAnswerNotFound)
	}

	prevPoints := g.points
	g.answers[idx].IsGuessed = guessed
	g.points = g.TotalPoints()

	g.publish.Publish(PointsUpdated{
		PrevPoints:    prevPoints,
		CurrentPoints: g.points,
		RoundPhase:    g.roundPhase,
		UpdatedAnswer: g.answers[idx],
	})
	return nil
}

// TotalPoints derives the round's not-yet-awarded score: the sum of points
// over revealed answers, or zero during a face-off or after the round
// ended. It recomputes from the answer set rather than trusting the
// cached mirror.
func (g *Game) TotalPoints() int {
	if g.roundType == RoundFaceOff || g.roundPhase == PhaseEnd {
		return 0
	}
	total := 0
	for _, a := range g.answers {
		if a.IsGuessed {
			total += a.Points
		}
	}
	return total
}

// SetRoundSteal sets the round-steal flag directly, without precondition.
func (g *Game) SetRoundSteal(steal bool) {
	g.roundSteal = steal
	g.publish.Publish(RoundStealSet{RoundSteal: steal})
}

// SetTeamName renames a team. An out-of-range index is a recoverable
// caller mistake: the call degrades to a no-op and reports false so the
// caller can log it.
func (g *Game) SetTeamName(teamIndex int, name string) bool {
	if teamIndex < 0 || teamIndex > 1 {
		return false
	}
	oldName := g.teams[teamIndex].Name
	g.teams[teamIndex].Name = name
	g.publish.Publish(TeamRenamed{
		TeamIndex: teamIndex,
		OldName:   oldName,
		NewName:   name,
	})
	return true
}

// UpdateTeam merges a partial update into a team. Out-of-range indexes
// degrade to a no-op, reporting false.
func (g *Game) UpdateTeam(teamIndex int, patch TeamPatch) bool {
	if teamIndex < 0 || teamIndex > 1 {
		return false
	}
	if patch.Name != nil {
		g.teams[teamIndex].Name = *patch.Name
	}
	if patch.Score != nil {
		g.teams[teamIndex].Score = *patch.Score
	}
	g.publish.Publish(TeamUpdated{Index: teamIndex, TeamUpdate: patch})
	return true
}

// NextRound advances to the following round, deriving the round type and
// point multiplier from the fixed schedule.
func (g *Game) NextRound() {
	g.setRound(g.round + 1)
}

// JumpToRound is the moderator override for the round number.
func (g *Game) JumpToRound(round int) {
	if round < 1 {
		round = 1
	}
	g.setRound(round)
}

func (g *Game) setRound(round int) {
	g.round = round
	g.roundType = roundTypeFor(round)
	g.pointMultiplier = multiplierFor(round)
	g.roundPhase = PhaseInGame
	g.publish.Publish(RoundAdvanced{
		Round:           g.round,
		RoundType:       g.roundType,
		PointMultiplier: g.pointMultiplier,
	})
}

// AwardPoints banks the round's accumulated points, multiplied by the
// round multiplier, to the winning team: the active team, or its opponent
// when the round was stolen. Outside a face-off it returns an
// InvalidStateError when no team is active. The round's points reset to
// zero afterwards.
func (g *Game) AwardPoints() error {
	if g.activeTeamIndex == NoActiveTeam {
		if g.roundType != RoundFaceOff {
			return NewInvalidStateError("AwardPoints", ErrNoActiveTeam)
		}
		// Face-off with no buzz resolved: nothing to bank.
		g.points = 0
		g.publish.Publish(PointsAwarded{State: g.Snapshot()})
		return nil
	}

	total := g.points * g.pointMultiplier
	winner := g.activeTeamIndex
	if g.roundSteal {
		winner = (winner + 1) % len(g.teams)
	}
	g.teams[winner].Score += total
	g.points = 0

	g.publish.Publish(PointsAwarded{State: g.Snapshot()})
	return nil
}

// EndRound closes the round and banks its points. After round six the game
// concludes. Failures from AwardPoints propagate unchanged.
func (g *Game) EndRound() error {
	g.roundPhase = PhaseEnd
	if err := g.AwardPoints(); err != nil {
		return err
	}
	if g.round == 6 {
		g.EndGame()
	}
	g.publish.Publish(RoundEnded{State: g.Snapshot()})
	return nil
}

// EndGame moves the game to its conclusion, ordering teams by score with
// the winner first.
func (g *Game) EndGame() {
	g.roundType = RoundConclusion
	g.roundPhase = PhaseConclusion
	if g.teams[1].Score > g.teams[0].Score {
		g.teams[0], g.teams[1] = g.teams[1], g.teams[0]
	}
	g.publish.Publish(GameWon{
		State:              g.Snapshot(),
		HighestScoringTeam: g.teams[0],
	})
}

// Reset restores the full initial state, discarding the loaded board and
// all scores. The caller is responsible for discarding any persisted
// snapshot alongside.
func (g *Game) Reset() {
	prev := g.Snapshot()
	g.applyInitial()
	g.publish.Publish(StateChanged{State: g.Snapshot(), PreviousState: prev})
}

// Accessors for derived and owned values.

// Round returns the current round number.
func (g *Game) Round() int { return g.round }

// Points returns the round's accumulated, not-yet-awarded points.
func (g *Game) Points() int { return g.points }

// PointMultiplier returns the current round's multiplier.
func (g *Game) PointMultiplier() int { return g.pointMultiplier }

// RoundType returns the current round type.
func (g *Game) RoundType() RoundType { return g.roundType }

// RoundPhase returns the current round phase.
func (g *Game) RoundPhase() RoundPhase { return g.roundPhase }

// RoundSteal reports whether the round-steal flag is raised.
func (g *Game) RoundSteal() bool { return g.roundSteal }

// Teams returns the two teams, index 0 left and index 1 right.
func (g *Game) Teams() [2]Team { return g.teams }

// IsBuzzersActive reports whether buzz-ins are currently accepted.
func (g *Game) IsBuzzersActive() bool { return g.isBuzzersActive }

// ActiveTeamIndex returns the active team, or NoActiveTeam.
func (g *Game) ActiveTeamIndex() int { return g.activeTeamIndex }

// Strikes returns the active team's strike count. It is only meaningful
// during a feud round.
func (g *Game) Strikes() int { return g.strikes }

// Question returns the loaded question, or nil before the first Load.
func (g *Game) Question() *Question {
	if g.question == nil {
		return nil
	}
	q := *g.question
	return &q
}

// Answers returns a copy of the board's answers.
func (g *Game) Answers() []GameAnswer {
	answers := make([]GameAnswer, len(g.answers))
	copy(answers, g.answers)
	return answers
}
