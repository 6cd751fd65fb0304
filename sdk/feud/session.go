// Package feud is the public facade of the feud engine. A Session owns
// one game state machine and wires it to a snapshot store, an event bus,
// a guess matcher and observability, so each display surface (moderator,
// board, buzzer) constructs its own session instead of sharing ambient
// global state.
package feud

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/crowdfeud/go-feud/infrastructure/match"
	"github.com/crowdfeud/go-feud/internal/application"
	"github.com/crowdfeud/go-feud/internal/domain"
	"github.com/crowdfeud/go-feud/internal/ports"
)

// Session is the moderator-facing handle on a running game. All mutators
// are serialized by an internal mutex, preserving the event-ordering
// semantics buzz-in arbitration depends on, and every mutation persists a
// fresh snapshot before returning (persist-on-write, last write wins).
type Session struct {
	mu sync.Mutex

	id      string
	game    *domain.Game
	cfg     *application.Config
	store   ports.SnapshotStore
	bus     ports.EventBus
	metrics ports.MetricsCollector
	matcher ports.GuessMatcher
	tracer  trace.Tracer
	logger  *slog.Logger
}

// Option configures a Session during construction.
type Option func(*Session)

// WithStore sets the snapshot store. The default keeps no snapshots.
func WithStore(store ports.SnapshotStore) Option {
	return func(s *Session) {
		if store != nil {
			s.store = store
		}
	}
}

// WithBus sets the event bus game notifications fan out to.
func WithBus(bus ports.EventBus) Option {
	return func(s *Session) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics ports.MetricsCollector) Option {
	return func(s *Session) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithMatcher overrides the guess matcher built from the configuration.
func WithMatcher(matcher ports.GuessMatcher) Option {
	return func(s *Session) {
		if matcher != nil {
			s.matcher = matcher
		}
	}
}

// WithLogger sets the logger for soft failures (lost buzz races, invalid
// team indexes). The default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a session from a validated configuration.
func NewSession(cfg *application.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = application.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		tracer: otel.Tracer("feud-session"),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.matcher == nil {
		m, err := match.NewFuzzyMatcher(match.Config{
			Algorithm:     cfg.Scoring.Match.Algorithm,
			Threshold:     cfg.Scoring.Match.Threshold,
			CaseSensitive: cfg.Scoring.Match.CaseSensitive,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build guess matcher: %w", err)
		}
		s.matcher = m
	}

	publisher := domain.PublisherFunc(func(e domain.Event) {
		if s.bus != nil {
			s.bus.Publish(e)
		}
		if s.metrics != nil {
			s.metrics.RecordCounter("feud_events_total", 1, map[string]string{
				"kind":    string(e.Kind()),
				"session": s.id,
			})
		}
	})

	s.game = domain.NewGame(
		domain.WithTeamNames(cfg.Game.TeamNames[0], cfg.Game.TeamNames[1]),
		domain.WithStrikeAutoAdvance(cfg.Game.StrikeAutoAdvance),
		domain.WithPublisher(publisher),
	)
	return s, nil
}

// ID returns the session's unique identifier, used as the metrics label.
func (s *Session) ID() string { return s.id }

// Hydrate replaces the game state with the persisted snapshot, if one
// exists. Display surfaces call it at startup, then follow the bus.
func (s *Session) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	snap, ok, err := s.store.Load(ctx, s.cfg.Storage.SnapshotKey)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if !ok {
		return nil
	}
	return s.game.Hydrate(snap)
}

// LoadBoard scores the vote evidence and installs the resulting board.
// The inline-vote variant is ranked and truncated here, matching its
// separate filter-sort-slice step; the ballot variant arrives already
// ranked. Either way the board is capped at the configured size.
func (s *Session) LoadBoard(ctx context.Context, question domain.Question, source domain.VoteSource) error {
	return s.mutate(ctx, "LoadBoard", func() error {
		_, span := s.tracer.Start(ctx, "Session.LoadBoard",
			trace.WithAttributes(
				attribute.String("question.id", question.ID),
				attribute.String("scoring.model", s.cfg.Scoring.Model),
			),
		)
		defer span.End()

		scored, err := source.Score()
		if err != nil {
			return err
		}
		if _, inline := source.(domain.InlineVotes); inline {
			scored = domain.FilterAndSort(scored)
		}
		scored = domain.TopN(scored, s.cfg.Scoring.BoardSize)
		span.SetAttributes(attribute.Int("board.answers", len(scored)))

		s.game.Load(question, scored)
		return nil
	})
}

// BuzzIn attempts to claim the active-team slot. A lost race is logged
// and reported as false, never an error.
func (s *Session) BuzzIn(ctx context.Context, teamIndex int) bool {
	won := false
	_ = s.mutate(ctx, "BuzzIn", func() error {
		won = s.game.BuzzIn(teamIndex)
		if !won {
			s.logger.Info("buzz ignored",
				"teamIndex", teamIndex,
				"activeTeamIndex", s.game.ActiveTeamIndex(),
				"isBuzzersActive", s.game.IsBuzzersActive(),
			)
		}
		return nil
	})
	return won
}

// ConsumeBuzzes feeds buzz messages from a transport (the websocket hub)
// into the game until the context is canceled or the channel closes.
func (s *Session) ConsumeBuzzes(ctx context.Context, buzzes <-chan domain.BuzzerPressed) {
	for {
		select {
		case <-ctx.Done():
			return
		case buzz, ok := <-buzzes:
			if !ok {
				return
			}
			s.BuzzIn(ctx, buzz.TeamIndex)
		}
	}
}

// SetActiveTeam is the moderator override for the active team.
func (s *Session) SetActiveTeam(ctx context.Context, teamIndex int) error {
	return s.mutate(ctx, "SetActiveTeam", func() error {
		if !s.game.SetActiveTeam(teamIndex) {
			s.logger.Error("invalid team index", "teamIndex", teamIndex)
		}
		return nil
	})
}

// SetStrikes sets the feud strike count; a third strike raises the
// round-steal flag.
func (s *Session) SetStrikes(ctx context.Context, n int) error {
	return s.mutate(ctx, "SetStrikes", func() error {
		return s.game.SetStrikes(n)
	})
}

// RevealAnswer reveals or hides a board answer by id.
func (s *Session) RevealAnswer(ctx context.Context, answerID string, guessed bool) error {
	return s.mutate(ctx, "RevealAnswer", func() error {
		return s.game.SetGuessed(answerID, guessed)
	})
}

// RevealGuess resolves a typed contestant guess against the unrevealed
// board answers and, on a sufficiently close match, reveals the winner.
// It reports the matched answer and whether anything matched; a miss is
// not an error.
func (s *Session) RevealGuess(ctx context.Context, guess string) (domain.GameAnswer, bool, error) {
	var (
		matched domain.GameAnswer
		ok      bool
	)
	err := s.mutate(ctx, "RevealGuess", func() error {
		answer, score, found := s.matcher.Match(guess, s.game.Answers())
		if !found {
			s.logger.Info("guess matched nothing", "guess", guess, "bestScore", score)
			return nil
		}
		matched = answer
		ok = true
		return s.game.SetGuessed(answer.ID, true)
	})
	return matched, ok, err
}

// SetRoundSteal sets the round-steal flag directly.
func (s *Session) SetRoundSteal(ctx context.Context, steal bool) error {
	return s.mutate(ctx, "SetRoundSteal", func() error {
		s.game.SetRoundSteal(steal)
		return nil
	})
}

// SetTeamName renames a team; an invalid index degrades to a logged no-op.
func (s *Session) SetTeamName(ctx context.Context, teamIndex int, name string) error {
	return s.mutate(ctx, "SetTeamName", func() error {
		if !s.game.SetTeamName(teamIndex, name) {
			s.logger.Error("invalid team index", "teamIndex", teamIndex)
		}
		return nil
	})
}

// UpdateTeam merges a partial team update; an invalid index degrades to a
// logged no-op.
func (s *Session) UpdateTeam(ctx context.Context, teamIndex int, patch domain.TeamPatch) error {
	return s.mutate(ctx, "UpdateTeam", func() error {
		if !s.game.UpdateTeam(teamIndex, patch) {
			s.logger.Error("invalid team index", "teamIndex", teamIndex)
		}
		return nil
	})
}

// NextRound advances to the next round of the schedule.
func (s *Session) NextRound(ctx context.Context) error {
	return s.mutate(ctx, "NextRound", func() error {
		s.game.NextRound()
		return nil
	})
}

// JumpToRound is the moderator override for the round number.
func (s *Session) JumpToRound(ctx context.Context, round int) error {
	return s.mutate(ctx, "JumpToRound", func() error {
		s.game.JumpToRound(round)
		return nil
	})
}

// AwardPoints banks the round's points to the winning team.
func (s *Session) AwardPoints(ctx context.Context) error {
	return s.mutate(ctx, "AwardPoints", func() error {
		return s.game.AwardPoints()
	})
}

// EndRound closes the round, banks its points, and after the final feud
// round concludes the game.
func (s *Session) EndRound(ctx context.Context) error {
	return s.mutate(ctx, "EndRound", func() error {
		return s.game.EndRound()
	})
}

// EndGame concludes the game immediately.
func (s *Session) EndGame(ctx context.Context) error {
	return s.mutate(ctx, "EndGame", func() error {
		s.game.EndGame()
		return nil
	})
}

// Reset discards the persisted snapshot and restores the initial state.
// Unlike other mutations it does not persist afterwards; the next
// mutation writes the first snapshot of the new game.
func (s *Session) Reset(ctx context.Context) error {
	return s.do(ctx, "Reset", false, func() error {
		if s.store != nil {
			if err := s.store.Delete(ctx, s.cfg.Storage.SnapshotKey); err != nil {
				return fmt.Errorf("failed to discard snapshot: %w", err)
			}
		}
		s.game.Reset()
		return nil
	})
}

// Snapshot returns a copy of the current game state.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// mutate serializes a mutation, persists the resulting snapshot, and
// records latency and outcome metrics. A callback error means the state
// is not guaranteed mutated; callers should re-fetch the snapshot before
// continuing if unsure.
func (s *Session) mutate(ctx context.Context, operation string, fn func() error) error {
	return s.do(ctx, operation, true, fn)
}

func (s *Session) do(ctx context.Context, operation string, persist bool, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	err := fn()
	if err == nil && persist && s.store != nil {
		if saveErr := s.store.Save(ctx, s.cfg.Storage.SnapshotKey, s.game.Snapshot()); saveErr != nil {
			err = fmt.Errorf("%s: snapshot persist failed: %w", operation, saveErr)
		}
	}

	if s.metrics != nil {
		labels := map[string]string{"session": s.id}
		s.metrics.RecordLatency(operation, time.Since(start), labels)
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordCounter(operation, 1, map[string]string{
			"session": s.id,
			"status":  status,
		})
		s.metrics.RecordGauge("round", float64(s.game.Round()), labels)
		teams := s.game.Teams()
		s.metrics.RecordGauge("team_0_score", float64(teams[0].Score), labels)
		s.metrics.RecordGauge("team_1_score", float64(teams[1].Score), labels)
	}
	return err
}
