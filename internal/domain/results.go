package domain

import (
	"time"
)

// DomainResult is the finalized output for one tracked domain: the
// volume estimate plus any atom-count estimates derived from known
// material compositions.
type DomainResult struct {
	// Domain identifies the tracked domain.
	Domain DomainID `json:"domain"`

	// Estimate is the statistical volume estimate.
	Estimate VolumeEstimate `json:"estimate"`

	// Nuclides holds per-nuclide atom counts with propagated
	// uncertainty. Empty when no atom densities were supplied for the
	// domain's material.
	Nuclides []NuclideEstimate `json:"nuclides,omitempty"`
}

// Results is the final outcome of a calculation session, produced by
// the result aggregator once the session's counts are frozen. Results
// are read-only; they are never mutated after finalization.
type Results struct {
	// SessionID identifies the originating session.
	SessionID string `json:"session_id"`

	// BoxVolume is the sampling bounding-box volume in cm³.
	BoxVolume float64 `json:"box_volume"`

	// TotalSamples is the total number of points drawn.
	TotalSamples uint64 `json:"total_samples"`

	// Partial warns that the session stopped before satisfying every
	// attached trigger. Reaching the maximum sample count is not an
	// error; callers use this flag to decide whether to trust the
	// reported precision.
	Partial bool `json:"partial"`

	// Domains holds per-domain results ordered by domain id.
	Domains []DomainResult `json:"domains"`

	// Timestamp records when the results were finalized.
	Timestamp time.Time `json:"timestamp"`
}

// Domain returns the result for the given domain id.
// The second return value is false when the domain is not present.
func (r Results) Domain(id DomainID) (DomainResult, bool) {
	for _, d := range r.Domains {
		if d.Domain == id {
			return d, true
		}
	}
	return DomainResult{}, false
}
