package middleware

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

var _ ports.BatchClassifier = (*rateLimitedClassifier)(nil)

// rateLimitedClassifier paces oracle calls using a token bucket. This
// keeps an expensive external geometry engine from being overwhelmed by
// a wide worker fan-out.
type rateLimitedClassifier struct {
	next    ports.Classifier
	limiter *rate.Limiter
}

// RateLimitMiddleware creates middleware that enforces rate limiting
// using a token bucket algorithm. The limit parameter sets
// classifications per second, while burst allows temporary spikes above
// the sustained rate. Batch calls consume one token per point.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(next ports.Classifier) ports.Classifier {
		return &rateLimitedClassifier{
			next:    next,
			limiter: limiter,
		}
	}
}

// Classify waits for rate limit permission before forwarding the call.
func (r *rateLimitedClassifier) Classify(ctx context.Context, p domain.Point3) (domain.Classification, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.Classification{}, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Classify(ctx, p)
}

// ClassifyBatch reserves one token per point before forwarding the
// batch. Batches larger than the limiter's burst are paced in
// burst-sized waves rather than rejected.
func (r *rateLimitedClassifier) ClassifyBatch(
	ctx context.Context,
	pts []domain.Point3,
	out []domain.Classification,
) error {
	remaining := len(pts)
	for remaining > 0 {
		n := remaining
		if burst := r.limiter.Burst(); n > burst {
			n = burst
		}
		if err := r.limiter.WaitN(ctx, n); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
		remaining -= n
	}
	return forwardBatch(ctx, r.next, pts, out)
}
