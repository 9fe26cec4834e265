package domain

import (
	"fmt"
	"sort"
	"time"
)

// DomainCount is the persisted hit record for a single domain: the flat
// (domain_id, hits) pair that, together with the snapshot's total sample
// count and box volume, is sufficient to reconstruct a VolumeEstimate
// without re-sampling.
type DomainCount struct {
	Domain DomainID `json:"domain"`
	Hits   uint64   `json:"hits"`
}

// Snapshot is the frozen state of a finished (or aborted) calculation
// session. It carries everything needed to reconstruct identical
// volume and uncertainty values later: per-domain hit counts, the total
// sample count, and the bounding-box volume. Reload is exact because
// estimates are pure functions of these fields.
type Snapshot struct {
	// SessionID identifies the session that produced the snapshot.
	SessionID string `json:"session_id"`

	// BoxVolume is the sampling bounding-box volume in cm³.
	BoxVolume float64 `json:"box_volume"`

	// TotalSamples is the total number of points drawn, including points
	// outside every tracked domain.
	TotalSamples uint64 `json:"total_samples"`

	// Partial is set when the session stopped at its maximum sample
	// count before satisfying all triggers, or was cancelled mid-run.
	// Partial counts remain statistically valid; the flag lets callers
	// decide whether to trust the precision.
	Partial bool `json:"partial"`

	// Counts holds per-domain hit counts, sorted by domain id.
	Counts []DomainCount `json:"counts"`

	// CreatedAt records when the snapshot was taken.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks internal consistency: sorted unique domain ids and
// hit counts that do not exceed the total sample count.
func (s Snapshot) Validate() error {
	if s.SessionID == "" {
		return fmt.Errorf("%w: snapshot session id is empty", ErrInvalidConfiguration)
	}
	var hits uint64
	for i, c := range s.Counts {
		if i > 0 && c.Domain <= s.Counts[i-1].Domain {
			return fmt.Errorf("%w: snapshot counts not sorted by unique domain id", ErrInvalidConfiguration)
		}
		hits += c.Hits
	}
	if hits > s.TotalSamples {
		return fmt.Errorf("%w: snapshot hits %d exceed total samples %d",
			ErrInvalidConfiguration, hits, s.TotalSamples)
	}
	return nil
}

// Estimate reconstructs the VolumeEstimate for one domain.
// The second return value is false when the domain is not present.
func (s Snapshot) Estimate(id DomainID) (VolumeEstimate, bool) {
	i := sort.Search(len(s.Counts), func(i int) bool { return s.Counts[i].Domain >= id })
	if i == len(s.Counts) || s.Counts[i].Domain != id {
		return VolumeEstimate{}, false
	}
	return VolumeEstimate{
		Domain:       id,
		Hits:         s.Counts[i].Hits,
		TotalSamples: s.TotalSamples,
		BoxVolume:    s.BoxVolume,
	}, true
}

// Estimates reconstructs the estimates for every recorded domain,
// ordered by domain id.
func (s Snapshot) Estimates() []VolumeEstimate {
	out := make([]VolumeEstimate, len(s.Counts))
	for i, c := range s.Counts {
		out[i] = VolumeEstimate{
			Domain:       c.Domain,
			Hits:         c.Hits,
			TotalSamples: s.TotalSamples,
			BoxVolume:    s.BoxVolume,
		}
	}
	return out
}

// OutsideHits returns the number of sampled points that fell outside
// every tracked domain. Hit counts partition the total sample count by
// construction, so tracked hits plus outside hits equals TotalSamples
// exactly.
func (s Snapshot) OutsideHits() uint64 {
	var hits uint64
	for _, c := range s.Counts {
		hits += c.Hits
	}
	return s.TotalSamples - hits
}
