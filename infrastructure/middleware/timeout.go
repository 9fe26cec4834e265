package middleware

import (
	"context"
	"time"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

var _ ports.BatchClassifier = (*timeoutClassifier)(nil)

// timeoutClassifier bounds the wall-clock time of oracle calls. A
// session wrapped this way can be aborted after a time budget without
// losing the counts of completed batches.
type timeoutClassifier struct {
	next    ports.Classifier
	timeout time.Duration
}

// TimeoutMiddleware creates middleware that enforces a deadline per
// classification call, or per batch on the batch path.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next ports.Classifier) ports.Classifier {
		return &timeoutClassifier{
			next:    next,
			timeout: timeout,
		}
	}
}

// Classify executes the call with a timeout context.
func (t *timeoutClassifier) Classify(ctx context.Context, p domain.Point3) (domain.Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Classify(ctx, p)
}

// ClassifyBatch executes the whole batch under a single deadline, so
// the per-call budget amortizes across the batch.
func (t *timeoutClassifier) ClassifyBatch(
	ctx context.Context,
	pts []domain.Point3,
	out []domain.Classification,
) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return forwardBatch(ctx, t.next, pts, out)
}
