package ports

import (
	"github.com/nglaser3/stochvol/internal/domain"
)

// PointSampler draws uniform random points inside a session's bounding
// box. Sampling must be reproducible: the same seed and the same
// (batch, worker) stream indices must always produce the same points,
// so deterministic test fixtures and cross-run comparisons hold.
type PointSampler interface {
	// Sample fills dst with points uniformly distributed inside the
	// sampler's bounding box, consuming pseudo-random state and nothing
	// else.
	Sample(dst []domain.Point3)

	// Fork derives an independent sampler for the given batch and chunk
	// indices. Forked streams are deterministic functions of the parent
	// seed and the indices, and never share state with the parent.
	// Sessions carve each batch into fixed-size chunks and fork one
	// stream per chunk, so the sampled points are a function of seed and
	// sample index alone, independent of how many goroutines consume the
	// chunks.
	Fork(batch, chunk uint64) PointSampler
}
