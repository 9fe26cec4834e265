// Package testutils provides deterministic classification oracles for
// exercising sessions without a real geometry engine.
package testutils

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

var (
	_ ports.Classifier = (*StaticClassifier)(nil)
	_ ports.Classifier = (*OutsideClassifier)(nil)
	_ ports.Classifier = (*FailingClassifier)(nil)
	_ ports.Classifier = (*CountingClassifier)(nil)
)

// StaticClassifier matches every point into a fixed domain, modeling a
// bounding box that lies entirely inside one region.
type StaticClassifier struct {
	ID domain.DomainID
}

// Classify always matches into ID.
func (s *StaticClassifier) Classify(_ context.Context, _ domain.Point3) (domain.Classification, error) {
	return domain.Classification{Domain: s.ID, Matched: true}, nil
}

// OutsideClassifier matches nothing, modeling a bounding box that
// misses every tracked domain.
type OutsideClassifier struct{}

// Classify never matches.
func (OutsideClassifier) Classify(_ context.Context, _ domain.Point3) (domain.Classification, error) {
	return domain.Classification{}, nil
}

// FailingClassifier delegates to Next until call number FailAt, then
// returns a synthetic oracle error. Call numbering starts at 1.
type FailingClassifier struct {
	Next   ports.Classifier
	FailAt int64

	calls atomic.Int64
}

// Classify fails exactly once the configured call count is reached.
func (f *FailingClassifier) Classify(ctx context.Context, p domain.Point3) (domain.Classification, error) {
	if f.calls.Add(1) >= f.FailAt {
		return domain.Classification{}, fmt.Errorf("synthetic oracle failure at call %d", f.FailAt)
	}
	return f.Next.Classify(ctx, p)
}

// CountingClassifier wraps another classifier and counts calls. An
// optional OnCall hook runs before each delegated call, letting tests
// cancel a context at an exact sample index.
type CountingClassifier struct {
	Next   ports.Classifier
	OnCall func(n int64)

	calls atomic.Int64
}

// Classify counts the call and delegates.
func (c *CountingClassifier) Classify(ctx context.Context, p domain.Point3) (domain.Classification, error) {
	n := c.calls.Add(1)
	if c.OnCall != nil {
		c.OnCall(n)
	}
	return c.Next.Classify(ctx, p)
}

// Calls returns the number of classifications performed so far.
func (c *CountingClassifier) Calls() int64 { return c.calls.Load() }
