// Package middleware provides cross-cutting concerns for calculation
// sessions. It implements the middleware/wrapper pattern around the
// classification oracle so pacing, timeouts, and observability stay out
// of the sampling loop.
package middleware

import (
	"context"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

// Middleware wraps a classifier with additional behavior.
type Middleware func(ports.Classifier) ports.Classifier

// Chain applies middlewares to base in order, so the first middleware
// in the list is the outermost wrapper.
func Chain(base ports.Classifier, mws ...Middleware) ports.Classifier {
	c := base
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}

// forwardBatch forwards a batch to the wrapped classifier, using its
// batch path when implemented and falling back to per-point calls.
// Wrappers that pace or meter whole batches call this after their own
// batch-level work.
func forwardBatch(
	ctx context.Context,
	next ports.Classifier,
	pts []domain.Point3,
	out []domain.Classification,
) error {
	if bc, ok := next.(ports.BatchClassifier); ok {
		return bc.ClassifyBatch(ctx, pts, out)
	}
	for i, p := range pts {
		cl, err := next.Classify(ctx, p)
		if err != nil {
			return err
		}
		out[i] = cl
	}
	return nil
}
