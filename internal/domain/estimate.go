package domain

import (
	"math"
)

// VolumeEstimate is the statistical volume estimate for a single domain,
// derived from hit counts collected during sampling. All derived
// quantities are recomputed from the stored counts rather than mutated
// incrementally, so an estimate reconstructed from a persisted snapshot
// is bit-identical to the in-memory original.
//
// Volume formula: V_d = (hits_d / N) * V_box. The variance uses the
// binomial proportion variance Var(p_d) = p_d(1-p_d)/N, propagated to
// volume via Var(V_d) = V_box² * Var(p_d). These match standard
// Monte Carlo integration error formulas and use IEEE 754
// double-precision arithmetic throughout.
type VolumeEstimate struct {
	// Domain identifies which tracked domain this estimate covers.
	Domain DomainID `json:"domain"`

	// Hits is the number of sampled points classified into the domain.
	Hits uint64 `json:"hits"`

	// TotalSamples is the total number of points drawn by the session,
	// including points that fell outside every tracked domain.
	TotalSamples uint64 `json:"total_samples"`

	// BoxVolume is the volume of the sampling bounding box in cm³.
	BoxVolume float64 `json:"box_volume"`
}

// Fraction returns the estimated volume fraction p_d = hits / N.
// It returns 0 before any samples have been drawn.
func (e VolumeEstimate) Fraction() float64 {
	if e.TotalSamples == 0 {
		return 0
	}
	return float64(e.Hits) / float64(e.TotalSamples)
}

// Volume returns the estimated domain volume in cm³.
// A domain with zero hits reports volume 0, not NaN.
func (e VolumeEstimate) Volume() float64 {
	return e.Fraction() * e.BoxVolume
}

// Variance returns the variance of the volume estimate in cm⁶.
// The binomial formula remains valid at p_d == 0 and p_d == 1,
// yielding exactly zero in both cases.
func (e VolumeEstimate) Variance() float64 {
	if e.TotalSamples == 0 {
		return 0
	}
	p := e.Fraction()
	return e.BoxVolume * e.BoxVolume * p * (1 - p) / float64(e.TotalSamples)
}

// StdDev returns the standard deviation of the volume estimate in cm³.
func (e VolumeEstimate) StdDev() float64 {
	return math.Sqrt(e.Variance())
}

// RelativeError returns StdDev / Volume. When the estimated volume is
// zero the relative error is +Inf, so a relative-error trigger on a
// domain that has never been hit can never report false convergence.
func (e VolumeEstimate) RelativeError() float64 {
	v := e.Volume()
	if v == 0 {
		return math.Inf(1)
	}
	return e.StdDev() / v
}

// NuclideEstimate is a per-nuclide atom count derived from a
// VolumeEstimate and a known atom density. The uncertainty is the
// volume uncertainty scaled by the same density, since the density is
// treated as exact.
type NuclideEstimate struct {
	// Nuclide is the nuclide name, e.g. "U235".
	Nuclide string `json:"nuclide"`

	// Atoms is the estimated total atom count in the domain.
	Atoms float64 `json:"atoms"`

	// StdDev is the propagated uncertainty on Atoms.
	StdDev float64 `json:"std_dev"`
}

// AtomEstimate propagates a volume estimate through a known atom
// density (atoms/cm³) to a total atom count with uncertainty.
func AtomEstimate(e VolumeEstimate, nuclide string, density float64) NuclideEstimate {
	return NuclideEstimate{
		Nuclide: nuclide,
		Atoms:   e.Volume() * density,
		StdDev:  e.StdDev() * density,
	}
}
