package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventRecorder captures every published event for assertions.
type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) Publish(e Event) { r.events = append(r.events, e) }

func (r *eventRecorder) kinds() []EventKind {
	kinds := make([]EventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind()
	}
	return kinds
}

func (r *eventRecorder) last() Event {
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

func board(points ...int) (Question, []GameAnswer) {
	q := Question{ID: "q-1", Text: "Name something found in a kitchen"}
	answers := make([]GameAnswer, len(points))
	for i, p := range points {
		answers[i] = GameAnswer{ID: string(rune('a' + i)), Text: "answer", Points: p}
	}
	return q, answers
}

func TestNewGame_InitialState(t *testing.T) {
	g := NewGame(WithTeamNames("Reds", "Blues"))

	assert.Equal(t, 1, g.Round())
	assert.Equal(t, RoundFaceOff, g.RoundType())
	assert.Equal(t, PhaseInGame, g.RoundPhase())
	assert.Equal(t, 0, g.PointMultiplier())
	assert.Equal(t, NoActiveTeam, g.ActiveTeamIndex())
	assert.True(t, g.IsBuzzersActive())
	assert.Equal(t, [2]Team{{Name: "Reds"}, {Name: "Blues"}}, g.Teams())
	assert.Nil(t, g.Question())
	assert.Empty(t, g.Answers())
}

// TestRoundSchedule verifies the fixed round-to-type and multiplier
// mapping over the whole game.
func TestRoundSchedule(t *testing.T) {
	tests := []struct {
		round      int
		wantType   RoundType
		wantFactor int
	}{
		{1, RoundFaceOff, 0},
		{2, RoundFeud, 1},
		{3, RoundFaceOff, 0},
		{4, RoundFeud, 2},
		{5, RoundFaceOff, 0},
		{6, RoundFeud, 3},
		{7, RoundConclusion, 0},
		{9, RoundConclusion, 0},
	}

	g := NewGame()
	for _, tt := range tests {
		g.JumpToRound(tt.round)
		assert.Equal(t, tt.wantType, g.RoundType(), "round %d", tt.round)
		assert.Equal(t, tt.wantFactor, g.PointMultiplier(), "round %d", tt.round)
	}
}

// TestGame_Load covers the reset semantics of installing a board,
// including the face-off-only clearing of the active team.
func TestGame_Load(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(g *Game)
		assert func(t *testing.T, g *Game)
	}{
		{
			name: "face-off load clears the active team and re-arms buzzers",
			setup: func(g *Game) {
				require.True(t, g.BuzzIn(1))
			},
			assert: func(t *testing.T, g *Game) {
				assert.Equal(t, NoActiveTeam, g.ActiveTeamIndex())
				assert.True(t, g.IsBuzzersActive())
			},
		},
		{
			name: "feud load preserves the active team",
			setup: func(g *Game) {
				g.JumpToRound(2)
				require.True(t, g.SetActiveTeam(0))
			},
			assert: func(t *testing.T, g *Game) {
				assert.Equal(t, 0, g.ActiveTeamIndex())
			},
		},
		{
			name: "load resets strikes, steal and phase",
			setup: func(g *Game) {
				g.JumpToRound(2)
				require.True(t, g.SetActiveTeam(0))
				require.NoError(t, g.SetStrikes(3))
				g.roundPhase = PhaseEnd
			},
			assert: func(t *testing.T, g *Game) {
				assert.Zero(t, g.Strikes())
				assert.False(t, g.RoundSteal())
				assert.Equal(t, PhaseInGame, g.RoundPhase())
				assert.Zero(t, g.Points())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGame()
			tt.setup(g)

			q, answers := board(40, 30, 20, 10)
			g.Load(q, answers)

			require.NotNil(t, g.Question())
			assert.Equal(t, q.ID, g.Question().ID)
			assert.Len(t, g.Answers(), 4)
			tt.assert(t, g)

			// Loading the same board again must land in the same state.
			before := g.Snapshot()
			g.Load(q, answers)
			assert.Equal(t, before, g.Snapshot(), "load must be idempotent for identical arguments.")
		})
	}
}

// TestGame_BuzzIn verifies that the first valid buzz wins the race.
func TestGame_BuzzIn(t *testing.T) {
	rec := &eventRecorder{}
	g := NewGame(WithPublisher(rec))

	assert.True(t, g.BuzzIn(1), "first buzz claims the slot.")
	assert.False(t, g.BuzzIn(0), "second buzz loses the race.")
	assert.Equal(t, 1, g.ActiveTeamIndex())
	assert.False(t, g.IsBuzzersActive())

	active, ok := rec.last().(TeamActive)
	require.True(t, ok)
	assert.Equal(t, 1, active.NextTeamIndex)
	assert.Equal(t, NoActiveTeam, active.PrevTeamIndex)

	assert.False(t, g.BuzzIn(2), "index out of range never buzzes.")
	assert.False(t, g.BuzzIn(-1))
}

func TestGame_SetActiveTeam(t *testing.T) {
	g := NewGame()
	require.True(t, g.BuzzIn(0))

	assert.True(t, g.SetActiveTeam(1), "the override applies without precondition.")
	assert.Equal(t, 1, g.ActiveTeamIndex())
	assert.False(t, g.IsBuzzersActive())

	assert.True(t, g.SetActiveTeam(NoActiveTeam))
	assert.Equal(t, NoActiveTeam, g.ActiveTeamIndex())
	assert.True(t, g.IsBuzzersActive(), "clearing the slot re-arms the buzzers.")

	assert.False(t, g.SetActiveTeam(2), "indexes past the team array are ignored.")
	assert.Equal(t, NoActiveTeam, g.ActiveTeamIndex())
}

// TestGame_SetStrikes covers preconditions, clamping and the third-strike
// steal transition.
func TestGame_SetStrikes(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(g *Game)
		strikes int
		wantErr error
		assert  func(t *testing.T, g *Game)
	}{
		{
			name:    "fails without an active team",
			setup:   func(g *Game) { g.JumpToRound(2) },
			strikes: 1,
			wantErr: ErrNoActiveTeam,
		},
		{
			name: "fails during a face-off",
			setup: func(g *Game) {
				require.True(t, g.BuzzIn(0))
			},
			strikes: 1,
			wantErr: ErrWrongRoundType,
		},
		{
			name: "two strikes do not raise the steal flag",
			setup: func(g *Game) {
				g.JumpToRound(2)
				require.True(t, g.SetActiveTeam(0))
			},
			strikes: 2,
			assert: func(t *testing.T, g *Game) {
				assert.Equal(t, 2, g.Strikes())
				assert.False(t, g.RoundSteal())
			},
		},
		{
			name: "third strike raises the steal flag",
			setup: func(g *Game) {
				g.JumpToRound(2)
				require.True(t, g.SetActiveTeam(0))
			},
			strikes: 3,
			assert: func(t *testing.T, g *Game) {
				assert.Equal(t, 3, g.Strikes())
				assert.True(t, g.RoundSteal())
				assert.Equal(t, 0, g.ActiveTeamIndex(), "without auto-advance the active team stays.")
			},
		},
		{
			name: "count clamps into the zero-to-three range",
			setup: func(g *Game) {
				g.JumpToRound(2)
				require.True(t, g.SetActiveTeam(0))
			},
			strikes: 7,
			assert: func(t *testing.T, g *Game) {
				assert.Equal(t, 3, g.Strikes())
				assert.True(t, g.RoundSteal())
			},
		},
		{
			name: "lowering the count drops the steal flag",
			setup: func(g *Game) {
				g.JumpToRound(2)
				require.True(t, g.SetActiveTeam(0))
				require.NoError(t, g.SetStrikes(3))
			},
			strikes: 1,
			assert: func(t *testing.T, g *Game) {
				assert.Equal(t, 1, g.Strikes())
				assert.False(t, g.RoundSteal())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGame()
			tt.setup(g)

			err := g.SetStrikes(tt.strikes)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				var serr *InvalidStateError
				assert.ErrorAs(t, err, &serr)
				return
			}
			require.NoError(t, err)
			tt.assert(t, g)
		})
	}
}

func TestGame_SetStrikes_AutoAdvance(t *testing.T) {
	rec := &eventRecorder{}
	g := NewGame(WithPublisher(rec), WithStrikeAutoAdvance(true))
	g.JumpToRound(2)
	require.True(t, g.SetActiveTeam(0))

	require.NoError(t, g.SetStrikes(3))

	assert.Equal(t, 1, g.ActiveTeamIndex(), "a third strike flips the active team.")
	assert.True(t, g.RoundSteal())
	assert.Contains(t, rec.kinds(), EventStrikesSet)
}

// TestGame_SetGuessed verifies reveal bookkeeping and the derived points
// invariant.
func TestGame_SetGuessed(t *testing.T) {
	g := NewGame()
	g.JumpToRound(2)
	q, answers := board(40, 30, 20)
	g.Load(q, answers)

	require.NoError(t, g.SetGuessed("a", true))
	assert.Equal(t, 40, g.Points())

	require.NoError(t, g.SetGuessed("b", true))
	assert.Equal(t, 70, g.Points())

	require.NoError(t, g.SetGuessed("a", false))
	assert.Equal(t, 30, g.Points(), "hiding an answer recomputes from scratch.")

	err := g.SetGuessed("zz", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAnswerNotFound)
	var nerr *NotFoundError
	assert.ErrorAs(t, err, &nerr)
	assert.Equal(t, 30, g.Points(), "a failed reveal must not disturb the points.")
}

func TestGame_TotalPoints(t *testing.T) {
	g := NewGame()
	q, answers := board(40, 30)
	answers[0].IsGuessed = true
	answers[1].IsGuessed = true

	g.Load(q, answers)
	assert.Zero(t, g.TotalPoints(), "face-off rounds never accumulate points.")

	g.JumpToRound(2)
	assert.Equal(t, 70, g.TotalPoints())

	g.roundPhase = PhaseEnd
	assert.Zero(t, g.TotalPoints(), "an ended round has banked its points.")
}

// TestGame_AwardPoints covers the normal award, the steal, the face-off
// no-op, and the missing-team precondition.
func TestGame_AwardPoints(t *testing.T) {
	setupFeud := func(g *Game) {
		g.JumpToRound(4) // multiplier 2
		q, answers := board(25, 15)
		g.Load(q, answers)
		require.True(t, g.SetActiveTeam(0))
		require.NoError(t, g.SetGuessed("a", true))
		require.NoError(t, g.SetGuessed("b", true))
		require.Equal(t, 40, g.Points())
	}

	t.Run("banks multiplied points to the active team", func(t *testing.T) {
		g := NewGame()
		g.UpdateTeam(0, TeamPatch{Score: intPtr(10)})
		g.UpdateTeam(1, TeamPatch{Score: intPtr(5)})
		setupFeud(g)

		require.NoError(t, g.AwardPoints())

		teams := g.Teams()
		assert.Equal(t, 90, teams[0].Score, "10 banked plus 40 points times 2.")
		assert.Equal(t, 5, teams[1].Score)
		assert.Zero(t, g.Points(), "awarding consumes the round's points.")
	})

	t.Run("a stolen round pays the opponent", func(t *testing.T) {
		g := NewGame()
		setupFeud(g)
		require.NoError(t, g.SetStrikes(3))

		require.NoError(t, g.AwardPoints())

		teams := g.Teams()
		assert.Zero(t, teams[0].Score)
		assert.Equal(t, 80, teams[1].Score)
	})

	t.Run("face-off with no buzz banks nothing", func(t *testing.T) {
		g := NewGame()
		require.NoError(t, g.AwardPoints())
		assert.Equal(t, [2]Team{{Name: "Team A"}, {Name: "Team B"}}, g.Teams())
	})

	t.Run("feud without an active team fails", func(t *testing.T) {
		g := NewGame()
		g.JumpToRound(2)

		err := g.AwardPoints()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoActiveTeam)
	})
}

func TestGame_EndRound(t *testing.T) {
	t.Run("closes the round and banks its points", func(t *testing.T) {
		rec := &eventRecorder{}
		g := NewGame(WithPublisher(rec))
		g.JumpToRound(2)
		q, answers := board(40)
		g.Load(q, answers)
		require.True(t, g.SetActiveTeam(1))
		require.NoError(t, g.SetGuessed("a", true))

		require.NoError(t, g.EndRound())

		assert.Equal(t, PhaseEnd, g.RoundPhase())
		assert.Equal(t, 40, g.Teams()[1].Score)
		assert.Contains(t, rec.kinds(), EventEndRound)
		assert.NotContains(t, rec.kinds(), EventGameWinner, "round two must not conclude the game.")
	})

	t.Run("round six ends the game", func(t *testing.T) {
		rec := &eventRecorder{}
		g := NewGame(WithPublisher(rec))
		g.JumpToRound(6)
		q, answers := board(40)
		g.Load(q, answers)
		require.True(t, g.SetActiveTeam(0))

		require.NoError(t, g.EndRound())

		assert.Equal(t, RoundConclusion, g.RoundType())
		assert.Equal(t, PhaseConclusion, g.RoundPhase())
		assert.Contains(t, rec.kinds(), EventGameWinner)
	})

	t.Run("propagates precondition failures", func(t *testing.T) {
		g := NewGame()
		g.JumpToRound(2)
		require.Error(t, g.EndRound())
	})
}

func TestGame_EndGame_OrdersTeamsByScore(t *testing.T) {
	rec := &eventRecorder{}
	g := NewGame(WithPublisher(rec), WithTeamNames("Reds", "Blues"))
	g.UpdateTeam(0, TeamPatch{Score: intPtr(50)})
	g.UpdateTeam(1, TeamPatch{Score: intPtr(120)})

	g.EndGame()

	teams := g.Teams()
	assert.Equal(t, "Blues", teams[0].Name, "the winner moves to the front.")
	assert.Equal(t, 120, teams[0].Score)

	won, ok := rec.last().(GameWon)
	require.True(t, ok)
	assert.Equal(t, "Blues", won.HighestScoringTeam.Name)
}

func TestGame_TeamOperations(t *testing.T) {
	g := NewGame()

	assert.True(t, g.SetTeamName(0, "Schmidts"))
	assert.Equal(t, "Schmidts", g.Teams()[0].Name)
	assert.False(t, g.SetTeamName(5, "nope"), "out-of-range renames degrade to a no-op.")

	name := "Merged"
	score := 42
	assert.True(t, g.UpdateTeam(1, TeamPatch{Name: &name, Score: &score}))
	assert.Equal(t, Team{Name: "Merged", Score: 42}, g.Teams()[1])

	assert.True(t, g.UpdateTeam(1, TeamPatch{Score: intPtr(77)}))
	assert.Equal(t, "Merged", g.Teams()[1].Name, "a nil field leaves the value alone.")
	assert.False(t, g.UpdateTeam(-1, TeamPatch{}))
}

func TestGame_SnapshotHydrate_RoundTrip(t *testing.T) {
	g := NewGame(WithTeamNames("Reds", "Blues"))
	g.JumpToRound(4)
	q, answers := board(40, 30)
	g.Load(q, answers)
	require.True(t, g.SetActiveTeam(1))
	require.NoError(t, g.SetGuessed("a", true))

	snap := g.Snapshot()
	assert.Equal(t, SnapshotSchemaVersion, snap.SchemaVersion)

	restored := NewGame()
	require.NoError(t, restored.Hydrate(snap))
	assert.Equal(t, snap, restored.Snapshot())

	t.Run("rejects a foreign schema version", func(t *testing.T) {
		bad := snap
		bad.SchemaVersion = 99
		err := NewGame().Hydrate(bad)
		require.Error(t, err)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestGame_Reset(t *testing.T) {
	rec := &eventRecorder{}
	g := NewGame(WithPublisher(rec), WithTeamNames("Reds", "Blues"))
	g.JumpToRound(4)
	q, answers := board(40)
	g.Load(q, answers)
	require.True(t, g.SetActiveTeam(0))
	g.UpdateTeam(0, TeamPatch{Score: intPtr(99)})

	g.Reset()

	assert.Equal(t, 1, g.Round())
	assert.Equal(t, [2]Team{{Name: "Reds"}, {Name: "Blues"}}, g.Teams(), "reset restores the configured names with zero scores.")
	assert.Nil(t, g.Question())
	assert.Equal(t, NoActiveTeam, g.ActiveTeamIndex())

	changed, ok := rec.last().(StateChanged)
	require.True(t, ok)
	assert.Equal(t, 4, changed.PreviousState.Round)
	assert.Equal(t, 1, changed.State.Round)
}

func intPtr(v int) *int { return &v }
