package domain

// EventKind names a change notification emitted by the game state machine.
// Kinds are stable strings so cross-process transports can route on them.
type EventKind string

// Event kinds emitted by the game, one per mutation class.
const (
	EventStateChanged  EventKind = "game:stateChanged"
	EventGameLoaded    EventKind = "game:load"
	EventTeamRename    EventKind = "game:teamRename"
	EventTeamUpdate    EventKind = "game:teamUpdate"
	EventStrikesSet    EventKind = "game:strikesSet"
	EventTeamActive    EventKind = "game:teamActive"
	EventUpdatePoints  EventKind = "game:updatePoints"
	EventRoundSteal    EventKind = "game:roundSteal"
	EventAwardPoints   EventKind = "game:awardPoints"
	EventNextRound     EventKind = "game:nextRound"
	EventEndRound      EventKind = "game:endRound"
	EventGameWinner    EventKind = "game:end"
	EventBuzzerPressed EventKind = "buzzer:pressed"
)

// Event is a tagged change notification. Every game mutation emits exactly
// one event describing what changed; subscribers switch on Kind and assert
// the concrete payload type.
type Event interface {
	Kind() EventKind
}

// Publisher receives every event the game emits. Implementations fan the
// event out to whatever transport the surrounding application uses; the
// domain only depends on this single-method contract.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a plain function to the Publisher interface.
type PublisherFunc func(Event)

// Publish implements Publisher by calling the wrapped function.
func (f PublisherFunc) Publish(e Event) { f(e) }

// NopPublisher discards all events. It is the default for games
// constructed without a transport.
var NopPublisher Publisher = PublisherFunc(func(Event) {})

// StateChanged is the generic catch-all notification carrying the full
// state before and after a mutation.
type StateChanged struct {
	State         Snapshot `json:"state"`
	PreviousState Snapshot `json:"previousState"`
}

// Kind implements Event.
func (StateChanged) Kind() EventKind { return EventStateChanged }

// GameLoaded announces a freshly loaded board.
type GameLoaded struct {
	State Snapshot `json:"state"`
}

// Kind implements Event.
func (GameLoaded) Kind() EventKind { return EventGameLoaded }

// TeamRenamed announces a team name change.
type TeamRenamed struct {
	TeamIndex int    `json:"teamIndex"`
	OldName   string `json:"oldName"`
	NewName   string `json:"newName"`
}

// Kind implements Event.
func (TeamRenamed) Kind() EventKind { return EventTeamRename }

// TeamPatch is a partial team update; nil fields are left unchanged.
type TeamPatch struct {
	Name  *string `json:"name,omitempty"`
	Score *int    `json:"score,omitempty"`
}

// TeamUpdated announces a partial team update.
type TeamUpdated struct {
	Index      int       `json:"index"`
	TeamUpdate TeamPatch `json:"teamUpdate"`
}

// Kind implements Event.
func (TeamUpdated) Kind() EventKind { return EventTeamUpdate }

// StrikesSet announces a strike count change and whether it triggered a
// round steal.
type StrikesSet struct {
	Strikes    int  `json:"strikes"`
	RoundSteal bool `json:"roundSteal"`
}

// Kind implements Event.
func (StrikesSet) Kind() EventKind { return EventStrikesSet }

// TeamActive announces an active-team change, whether from a buzz-in or a
// moderator override.
type TeamActive struct {
	NextTeamIndex   int  `json:"nextTeamIndex"`
	PrevTeamIndex   int  `json:"prevTeamIndex"`
	IsBuzzersActive bool `json:"isBuzzersActive"`
}

// Kind implements Event.
func (TeamActive) Kind() EventKind { return EventTeamActive }

// PointsUpdated announces a change to the round's accumulated points after
// an answer reveal or un-reveal.
type PointsUpdated struct {
	PrevPoints    int        `json:"prevPoints"`
	CurrentPoints int        `json:"currentPoints"`
	RoundPhase    RoundPhase `json:"roundPhase"`
	UpdatedAnswer GameAnswer `json:"updatedAnswer"`
}

// Kind implements Event.
func (PointsUpdated) Kind() EventKind { return EventUpdatePoints }

// RoundStealSet announces a direct change to the round-steal flag.
type RoundStealSet struct {
	RoundSteal bool `json:"roundSteal"`
}

// Kind implements Event.
func (RoundStealSet) Kind() EventKind { return EventRoundSteal }

// PointsAwarded announces that the round's points were banked to a team.
type PointsAwarded struct {
	State Snapshot `json:"state"`
}

// Kind implements Event.
func (PointsAwarded) Kind() EventKind { return EventAwardPoints }

// RoundAdvanced announces a round transition.
type RoundAdvanced struct {
	Round           int       `json:"round"`
	RoundType       RoundType `json:"roundType"`
	PointMultiplier int       `json:"pointMultiplier"`
}

// Kind implements Event.
func (RoundAdvanced) Kind() EventKind { return EventNextRound }

// RoundEnded carries the full state at the end of a round.
type RoundEnded struct {
	State Snapshot `json:"state"`
}

// Kind implements Event.
func (RoundEnded) Kind() EventKind { return EventEndRound }

// GameWon announces the conclusion of a game and its winner.
type GameWon struct {
	State              Snapshot `json:"state"`
	HighestScoringTeam Team     `json:"highestScoringTeam"`
}

// Kind implements Event.
func (GameWon) Kind() EventKind { return EventGameWinner }

// BuzzerPressed is a raw buzz message from a team buzzer surface. It is
// consumed, not produced, by the game; the transport delivers it to the
// moderator process which arbitrates via BuzzIn.
type BuzzerPressed struct {
	TeamIndex int   `json:"teamIndex"`
	Timestamp int64 `json:"timestamp"`
}

// Kind implements Event.
func (BuzzerPressed) Kind() EventKind { return EventBuzzerPressed }
