// Package ports defines the interfaces that form the contract between the
// domain core and the infrastructure layer. These interfaces enable
// dependency inversion and make the system testable.
package ports

import (
	"context"
	"time"

	"github.com/crowdfeud/go-feud/internal/domain"
)

// SnapshotStore persists complete game snapshots. Every mutation writes a
// fresh snapshot (persist-on-write), so implementations must make a single
// Save call atomic: a reader loading concurrently sees either the previous
// or the new snapshot, never a partial one. Last write wins.
//
// Implementations back the configurable persistence strategy: an
// in-process map for per-tab session semantics, sqlite for durable
// single-host storage, redis when multiple display processes share one
// snapshot.
type SnapshotStore interface {
	// Save atomically replaces the snapshot stored under key.
	Save(ctx context.Context, key string, snapshot domain.Snapshot) error

	// Load returns the snapshot stored under key. The boolean reports
	// whether one existed; absence is not an error.
	Load(ctx context.Context, key string) (domain.Snapshot, bool, error)

	// Delete discards the snapshot stored under key. Deleting a missing
	// key is not an error.
	Delete(ctx context.Context, key string) error
}

// EventBus fans game events out to subscribers. The moderator process is
// the only publisher of game mutations; display surfaces subscribe
// read-only, so implementations never need write-write conflict handling.
type EventBus interface {
	// Publish delivers an event to all current subscribers of its kind.
	Publish(event domain.Event)

	// Subscribe registers a handler for the given kinds, or for every
	// kind when none are listed. The returned function removes the
	// subscription; it is safe to call more than once.
	Subscribe(handler func(domain.Event), kinds ...domain.EventKind) (unsubscribe func())
}

// GuessMatcher resolves a contestant's spoken answer, as typed by the
// moderator, to an answer on the board.
type GuessMatcher interface {
	// Match returns the best-matching answer for the guess and its
	// similarity in [0, 1]. The boolean reports whether any answer met
	// the matcher's threshold.
	Match(guess string, answers []domain.GameAnswer) (domain.GameAnswer, float64, bool)
}

// MetricsCollector collects operational metrics. Implementations should
// integrate with observability platforms like Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)
}
