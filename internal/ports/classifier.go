// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/nglaser3/stochvol/internal/domain"
)

// Classifier is the point-classification oracle supplied by the external
// geometry layer. Given a sampled point it reports which tracked domain
// (cell, material, or universe) contains the point, or that the point
// lies outside every tracked domain.
//
// Classification cost is unspecified and may be large; the session never
// assumes O(1) calls and prefers the batch path when available.
// Implementations must be safe for concurrent use: a session classifies
// points from multiple worker goroutines within a batch.
//
// A Classifier error is fatal for the session. A misbehaving oracle is a
// programming error, not a transient condition, so errors are propagated
// without retry.
type Classifier interface {
	// Classify returns the domain containing p. The returned
	// Classification has Matched set to false when p lies outside every
	// tracked domain; such points are discarded from domain tallies but
	// still count toward the total sample count.
	Classify(ctx context.Context, p domain.Point3) (domain.Classification, error)
}

// BatchClassifier is an optional extension of Classifier for oracles
// that amortize per-call overhead across many points. The session uses
// ClassifyBatch when the classifier implements it, and falls back to
// point-at-a-time Classify otherwise.
type BatchClassifier interface {
	Classifier

	// ClassifyBatch classifies pts[i] into out[i] for every i.
	// Both slices have the same length. On error the contents of out
	// are undefined and the session aborts.
	ClassifyBatch(ctx context.Context, pts []domain.Point3, out []domain.Classification) error
}
