// Package sampler provides seeded pseudo-random point samplers for
// calculation sessions.
package sampler

import (
	"math/rand/v2"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

var _ ports.PointSampler = (*Uniform)(nil)

// Uniform draws points uniformly distributed inside an axis-aligned
// bounding box using a seeded PCG generator, one independent draw per
// axis. The same seed and sample index always yield the same point,
// which supports deterministic test fixtures and cross-run comparison.
//
// A Uniform sampler is not safe for concurrent use; sessions call Fork
// to derive one independent sub-stream per (batch, chunk) pair. Forked
// streams never share generator state with the parent, so concurrent
// consumers of distinct chunks draw the same points regardless of
// scheduling or degree of parallelism.
type Uniform struct {
	box    domain.BoundingBox
	extent domain.Point3
	seed   uint64
	rng    *rand.Rand
}

// NewUniform creates a seeded uniform sampler over box. The caller is
// responsible for validating the box; a session does so before any
// sampling starts.
func NewUniform(box domain.BoundingBox, seed uint64) *Uniform {
	return &Uniform{
		box:    box,
		extent: box.Extent(),
		seed:   seed,
		rng:    rand.New(rand.NewPCG(seed, 0)),
	}
}

// Sample fills dst with uniform points inside the sampler's box.
func (u *Uniform) Sample(dst []domain.Point3) {
	for i := range dst {
		dst[i] = domain.Point3{
			X: u.box.Lower.X + u.rng.Float64()*u.extent.X,
			Y: u.box.Lower.Y + u.rng.Float64()*u.extent.Y,
			Z: u.box.Lower.Z + u.rng.Float64()*u.extent.Z,
		}
	}
}

// Fork derives the deterministic sub-stream for the given batch and
// chunk indices. The stream identity folds both indices into the PCG
// sequence selector, so distinct (batch, chunk) pairs never collide
// for any chunk count below 2³².
func (u *Uniform) Fork(batch, chunk uint64) ports.PointSampler {
	return &Uniform{
		box:    u.box,
		extent: u.extent,
		seed:   u.seed,
		rng:    rand.New(rand.NewPCG(u.seed, batch<<32|chunk+1)),
	}
}
