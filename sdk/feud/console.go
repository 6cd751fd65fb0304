package feud

import (
	"context"
	"fmt"
	"strconv"

	"github.com/crowdfeud/go-feud/internal/domain"
)

// Console is the moderator's undoable command surface over a session.
// Edits are committed as changesets; Undo and Redo replay the change
// history against the game. The console owns the change log; mutating the
// session directly alongside console commits will desync the history from
// the game, so a moderator surface should pick one or the other.
type Console struct {
	session *Session
	log     *domain.ChangeLog
}

// NewConsole creates a console over the session, seeding the change log
// with a full changeset of the current moderator-editable state. Seeding
// keeps the initial state out of undo range: undo can walk back to game
// start but never past it. The seed is not replayed against the game;
// it describes state the session already holds, so construction leaves
// the session untouched.
func NewConsole(session *Session) *Console {
	c := &Console{session: session}
	c.log = domain.NewChangeLog(func(cs domain.Changeset) {
		c.apply(context.Background(), cs)
	})
	c.log.Seed(initialChangeset(session.Snapshot()))
	return c
}

// SetUndoListener registers the callback notified whenever undo
// availability changes.
func (c *Console) SetUndoListener(fn func(canUndo bool)) { c.log.SetUndoListener(fn) }

// SetRedoListener registers the callback notified whenever redo
// availability changes.
func (c *Console) SetRedoListener(fn func(canRedo bool)) { c.log.SetRedoListener(fn) }

// Commit applies a changeset to the game and records it in the history.
func (c *Console) Commit(changes domain.Changeset) { c.log.Commit(changes) }

// Undo reverts the latest committed changeset by replaying the remaining
// history against the game.
func (c *Console) Undo() { c.log.Undo() }

// Redo reapplies the most recently undone changeset.
func (c *Console) Redo() { c.log.Redo() }

// CanUndo reports whether anything beyond the seeded state can be undone.
func (c *Console) CanUndo() bool { return c.log.CanUndo() }

// CanRedo reports whether an undone changeset can be reapplied.
func (c *Console) CanRedo() bool { return c.log.CanRedo() }

// initialChangeset captures the moderator-editable slice of a snapshot as
// one full changeset.
func initialChangeset(s domain.Snapshot) domain.Changeset {
	cs := domain.Changeset{
		{Path: []string{"round"}, Value: s.Round},
		{Path: []string{"roundSteal"}, Value: s.RoundSteal},
		{Path: []string{"activeTeamIndex"}, Value: s.ActiveTeamIndex},
	}
	// Strikes only apply while a team is active in a feud round; seeding
	// them outside that window would just be rejected.
	if s.ActiveTeamIndex != domain.NoActiveTeam && s.RoundType == domain.RoundFeud {
		cs = append(cs, domain.Patch{Path: []string{"strikes"}, Value: s.Strikes})
	}
	for i, team := range s.Teams {
		idx := strconv.Itoa(i)
		cs = append(cs,
			domain.Patch{Path: []string{"teams", idx, "name"}, Value: team.Name},
			domain.Patch{Path: []string{"teams", idx, "score"}, Value: team.Score},
		)
	}
	return cs
}

// apply maps committed patches onto session operations. Patch values may
// arrive as json numbers, so ints are coerced. An unmappable path or
// value is logged and skipped; the rest of the changeset still applies,
// matching the console's forgiving handling of stale edits.
func (c *Console) apply(ctx context.Context, changes domain.Changeset) {
	for _, p := range changes {
		if err := c.applyPatch(ctx, p); err != nil {
			c.session.logger.Warn("changeset patch skipped",
				"path", p.Path, "error", err)
		}
	}
}

func (c *Console) applyPatch(ctx context.Context, p domain.Patch) error {
	switch {
	case len(p.Path) == 1 && p.Path[0] == "round":
		round, err := toInt(p.Value)
		if err != nil {
			return err
		}
		return c.session.JumpToRound(ctx, round)

	case len(p.Path) == 1 && p.Path[0] == "roundSteal":
		steal, ok := p.Value.(bool)
		if !ok {
			return fmt.Errorf("roundSteal wants a bool, got %T", p.Value)
		}
		return c.session.SetRoundSteal(ctx, steal)

	case len(p.Path) == 1 && p.Path[0] == "activeTeamIndex":
		team, err := toInt(p.Value)
		if err != nil {
			return err
		}
		return c.session.SetActiveTeam(ctx, team)

	case len(p.Path) == 1 && p.Path[0] == "strikes":
		n, err := toInt(p.Value)
		if err != nil {
			return err
		}
		return c.session.SetStrikes(ctx, n)

	case len(p.Path) == 3 && p.Path[0] == "teams":
		index, err := strconv.Atoi(p.Path[1])
		if err != nil {
			return fmt.Errorf("bad team index %q: %w", p.Path[1], err)
		}
		switch p.Path[2] {
		case "name":
			name, ok := p.Value.(string)
			if !ok {
				return fmt.Errorf("team name wants a string, got %T", p.Value)
			}
			return c.session.SetTeamName(ctx, index, name)
		case "score":
			score, err := toInt(p.Value)
			if err != nil {
				return err
			}
			return c.session.UpdateTeam(ctx, index, domain.TeamPatch{Score: &score})
		}
		return fmt.Errorf("unknown team field %q", p.Path[2])

	case len(p.Path) == 3 && p.Path[0] == "answers" && p.Path[2] == "isGuessed":
		guessed, ok := p.Value.(bool)
		if !ok {
			return fmt.Errorf("isGuessed wants a bool, got %T", p.Value)
		}
		return c.session.RevealAnswer(ctx, p.Path[1], guessed)
	}
	return fmt.Errorf("unknown path %v", p.Path)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("want a number, got %T", v)
}
