package ports

import (
	"context"
	"time"

	"github.com/nglaser3/stochvol/internal/domain"
)

// SnapshotStore persists frozen session state so results can be
// reconstructed later without re-sampling. Implementations could use
// flat files, SQLite, or object storage; the round trip must be exact
// (same hits and total samples in, same volumes and uncertainties out).
type SnapshotStore interface {
	// Save persists the snapshot, replacing any previous snapshot with
	// the same session id.
	Save(ctx context.Context, snap domain.Snapshot) error

	// Load retrieves a snapshot by session id.
	// It returns domain.ErrSnapshotNotFound when no snapshot exists.
	Load(ctx context.Context, sessionID string) (domain.Snapshot, error)

	// Close releases the store's underlying resources. It is safe to
	// call more than once.
	Close() error
}

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations should integrate with observability
// platforms like Prometheus, OpenTelemetry, or custom monitoring
// solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like samples drawn, domain
	// hits, and convergence checks.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	// This is useful for tracking values like the current standard
	// deviation per domain.
	RecordGauge(metric string, value float64, labels map[string]string)
}

// ConvergenceObserver provides observability hooks around trigger
// evaluation. Implementations can add tracing, metrics, and logging
// without coupling observability concerns to the session loop.
type ConvergenceObserver interface {
	// PreCheck is called before trigger evaluation with the estimates
	// the controller will see.
	PreCheck(ctx context.Context, sessionID string, estimates []domain.VolumeEstimate)

	// PostCheck is called after trigger evaluation with the outcome and
	// elapsed wall-clock time of the check.
	PostCheck(ctx context.Context, sessionID string, estimates []domain.VolumeEstimate,
		satisfied bool, elapsed time.Duration)
}
