// Package results finalizes frozen session counts into reportable
// volumes, atom counts, and formatted output, and persists snapshots so
// results can be reconstructed without re-sampling.
package results

import (
	"fmt"
	"io"
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nglaser3/stochvol/internal/domain"
)

// Aggregator converts frozen snapshots into final Results. When nuclide
// atom densities are attached, per-domain atom counts with propagated
// uncertainty are included. The aggregator is stateless apart from its
// configuration and safe for concurrent use.
type Aggregator struct {
	densities map[domain.DomainID]map[string]float64
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithDensities attaches per-domain nuclide atom densities in
// atoms/cm³, keyed by domain id then nuclide name.
func WithDensities(densities map[domain.DomainID]map[string]float64) Option {
	return func(a *Aggregator) { a.densities = densities }
}

// NewAggregator creates a result aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Finalize converts a snapshot into Results. The conversion is a pure
// function of the snapshot's counts, so finalizing a reloaded snapshot
// reproduces bit-identical volumes and uncertainties.
func (a *Aggregator) Finalize(snap domain.Snapshot) (domain.Results, error) {
	if err := snap.Validate(); err != nil {
		return domain.Results{}, fmt.Errorf("finalize: %w", err)
	}

	domains := make([]domain.DomainResult, 0, len(snap.Counts))
	for _, est := range snap.Estimates() {
		dr := domain.DomainResult{Domain: est.Domain, Estimate: est}

		if densities, ok := a.densities[est.Domain]; ok {
			nuclides := make([]string, 0, len(densities))
			for n := range densities {
				nuclides = append(nuclides, n)
			}
			sort.Strings(nuclides)
			for _, n := range nuclides {
				dr.Nuclides = append(dr.Nuclides, domain.AtomEstimate(est, n, densities[n]))
			}
		}
		domains = append(domains, dr)
	}

	return domain.Results{
		SessionID:    snap.SessionID,
		BoxVolume:    snap.BoxVolume,
		TotalSamples: snap.TotalSamples,
		Partial:      snap.Partial,
		Domains:      domains,
		Timestamp:    time.Now().UTC(),
	}, nil
}

// Report writes a human-readable summary of the results, with grouped
// sample counts and uncertainty-bearing values per domain.
func Report(w io.Writer, res domain.Results) error {
	p := message.NewPrinter(language.English)

	if _, err := p.Fprintf(w, "session %s: %d samples over %.6g cm³ bounding box\n",
		res.SessionID, res.TotalSamples, res.BoxVolume); err != nil {
		return err
	}
	if res.Partial {
		if _, err := fmt.Fprintln(w, "warning: partial results, precision targets were not reached"); err != nil {
			return err
		}
	}

	for _, d := range res.Domains {
		e := d.Estimate
		if _, err := p.Fprintf(w, "  domain %d: volume %.6g +/- %.3g cm³ (%d hits)\n",
			d.Domain, e.Volume(), e.StdDev(), e.Hits); err != nil {
			return err
		}
		for _, n := range d.Nuclides {
			if _, err := p.Fprintf(w, "    %s: %.5e +/- %.3e atoms\n",
				n.Nuclide, n.Atoms, n.StdDev); err != nil {
				return err
			}
		}
	}
	return nil
}
