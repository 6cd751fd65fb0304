package domain

import "strings"

// Patch is a single path→value update. Paths are key arrays rather than
// dot-joined strings so segment values containing dots never parse
// ambiguously.
type Patch struct {
	// Path navigates the virtual state tree, e.g. ["teams", "0", "points"].
	Path []string `json:"path"`

	// Value is the new value at the path.
	Value any `json:"value"`
}

// Changeset is a batch of patches committed atomically to the change log.
type Changeset []Patch

// pathKey separator; an information separator that cannot appear in ids.
const pathKeySep = "\x1f"

func pathKey(path []string) string { return strings.Join(path, pathKeySep) }

// Get returns the value of the last patch in the changeset matching the
// path, and whether one exists.
func (c Changeset) Get(path ...string) (any, bool) {
	key := pathKey(path)
	for i := len(c) - 1; i >= 0; i-- {
		if pathKey(c[i].Path) == key {
			return c[i].Value, true
		}
	}
	return nil, false
}

// ChangeLog is a replay-based command log with undo/redo, layered under
// the moderator console. Committed changesets form an append-only
// history; consolidation replays the history to produce the current
// flattened state.
//
// Commit, Undo and Redo are the only mutators. Nothing may bypass them to
// mutate consolidated state, or replay correctness and undo/redo
// semantics are violated. Seed the log with an initial changeset writing
// every path before normal use, so undo availability tracks
// len(history) > 1.
//
// Seed installs that base changeset without publishing; the values
// describe state that already holds, so replaying them at construction
// would mutate it.
type ChangeLog struct {
	history []Changeset
	future  []Changeset

	publish      func(Changeset)
	undoListener func(canUndo bool)
	redoListener func(canRedo bool)
}

// NewChangeLog creates a change log that distributes effective changes
// through publish. On Commit and Redo the published changeset is exactly
// the delta; on Undo it is the full consolidated state so subscribers can
// re-render consistently.
func NewChangeLog(publish func(Changeset)) *ChangeLog {
	if publish == nil {
		publish = func(Changeset) {}
	}
	return &ChangeLog{
		publish:      publish,
		undoListener: func(bool) {},
		redoListener: func(bool) {},
	}
}

// SetUndoListener registers the callback notified whenever undo
// availability changes. Register listeners before any other use.
func (l *ChangeLog) SetUndoListener(fn func(canUndo bool)) {
	if fn != nil {
		l.undoListener = fn
	}
}

// SetRedoListener registers the callback notified whenever redo
// availability changes. Register listeners before any other use.
func (l *ChangeLog) SetRedoListener(fn func(canRedo bool)) {
	if fn != nil {
		l.redoListener = fn
	}
}

// Seed installs the initial full changeset as the base of the history
// without publishing it or notifying listeners. The log must still be
// empty; on a non-empty log Seed is a silent no-op so committed history
// is never rewritten.
func (l *ChangeLog) Seed(changes Changeset) {
	if len(l.history) > 0 {
		return
	}
	l.history = append(l.history, changes)
}

// Commit appends a changeset to the history and publishes it. Any pending
// redo future is discarded.
func (l *ChangeLog) Commit(changes Changeset) {
	l.future = nil
	l.history = append(l.history, changes)
	l.publish(changes)

	// Nothing can be redone since a new change was committed.
	l.redoListener(false)

	// Undo stays available while something beyond the initial state is
	// left to be undone.
	l.undoListener(len(l.history) > 1)
}

// Undo moves the latest changeset to the future stack and republishes the
// full consolidated state. It is a silent no-op when the history is empty.
func (l *ChangeLog) Undo() {
	if len(l.history) == 0 {
		return
	}
	last := l.history[len(l.history)-1]
	l.history = l.history[:len(l.history)-1]
	l.future = append(l.future, last)
	l.publish(l.Consolidated())

	l.redoListener(true)
	l.undoListener(len(l.history) > 1)
}

// Redo reapplies the most recently undone changeset and publishes it as a
// delta. It is a silent no-op when nothing was undone.
func (l *ChangeLog) Redo() {
	if len(l.future) == 0 {
		return
	}
	last := l.future[len(l.future)-1]
	l.future = l.future[:len(l.future)-1]
	l.history = append(l.history, last)
	l.publish(last)

	l.redoListener(len(l.future) > 0)
	l.undoListener(true)
}

// CanUndo reports whether anything beyond the initial state can be undone.
func (l *ChangeLog) CanUndo() bool { return len(l.history) > 1 }

// CanRedo reports whether an undone changeset can be reapplied.
func (l *ChangeLog) CanRedo() bool { return len(l.future) > 0 }

// Consolidated replays the history chronologically, letting newer patches
// overwrite older patches of the same path, and returns the flattened
// state ordered by first appearance. The replay is linear in total
// patches; histories are bounded by a single game session and replays
// are moderator-triggered, so this stays cheap.
func (l *ChangeLog) Consolidated() Changeset {
	values := make(map[string]any)
	order := make([]string, 0)
	paths := make(map[string][]string)

	for _, changes := range l.history {
		for _, p := range changes {
			key := pathKey(p.Path)
			if _, seen := values[key]; !seen {
				order = append(order, key)
				paths[key] = p.Path
			}
			values[key] = p.Value
		}
	}

	consolidated := make(Changeset, 0, len(order))
	for _, key := range order {
		consolidated = append(consolidated, Patch{Path: paths[key], Value: values[key]})
	}
	return consolidated
}
