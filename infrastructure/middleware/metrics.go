package middleware

import (
	"context"
	"time"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

var _ ports.BatchClassifier = (*meteredClassifier)(nil)

// meteredClassifier records call counts and latency for the wrapped
// oracle, exposing how expensive classification actually is.
type meteredClassifier struct {
	next    ports.Classifier
	metrics ports.MetricsCollector
}

// MetricsMiddleware creates middleware that instruments classification
// calls through the given collector.
func MetricsMiddleware(metrics ports.MetricsCollector) Middleware {
	return func(next ports.Classifier) ports.Classifier {
		return &meteredClassifier{
			next:    next,
			metrics: metrics,
		}
	}
}

// Classify forwards the call and records its latency and outcome.
func (m *meteredClassifier) Classify(ctx context.Context, p domain.Point3) (domain.Classification, error) {
	start := time.Now()
	cl, err := m.next.Classify(ctx, p)
	m.record(1, time.Since(start), err)
	return cl, err
}

// ClassifyBatch forwards the batch and records aggregate latency.
func (m *meteredClassifier) ClassifyBatch(
	ctx context.Context,
	pts []domain.Point3,
	out []domain.Classification,
) error {
	start := time.Now()
	err := forwardBatch(ctx, m.next, pts, out)
	m.record(len(pts), time.Since(start), err)
	return err
}

func (m *meteredClassifier) record(points int, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	labels := map[string]string{"status": status}
	m.metrics.RecordCounter("classifications_total", float64(points), labels)
	m.metrics.RecordLatency("classify", elapsed, labels)
}
