package results

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nglaser3/stochvol/internal/domain"
)

func workedSnapshot() domain.Snapshot {
	// Worked example: box [(0,0,0),(2,2,2)] with domain A the unit
	// sub-box (p≈1/8) and domain B the remainder (p≈7/8).
	return domain.Snapshot{
		SessionID:    "worked-example",
		BoxVolume:    8.0,
		TotalSamples: 1_000_000,
		Counts: []domain.DomainCount{
			{Domain: 1, Hits: 125_203},
			{Domain: 2, Hits: 874_797},
		},
		CreatedAt: time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestAggregator_Finalize(t *testing.T) {
	res, err := NewAggregator().Finalize(workedSnapshot())
	require.NoError(t, err)

	require.Len(t, res.Domains, 2)
	assert.False(t, res.Partial)
	assert.Equal(t, uint64(1_000_000), res.TotalSamples)

	a, ok := res.Domain(1)
	require.True(t, ok)
	assert.InDelta(t, 1.0, a.Estimate.Volume(), 0.05)
	assert.InDelta(t, 0.00265, a.Estimate.StdDev(), 0.0005)

	b, ok := res.Domain(2)
	require.True(t, ok)
	assert.InDelta(t, 7.0, b.Estimate.Volume(), 0.1)

	// Hit counts partition the samples, so the volumes fill the box.
	assert.InDelta(t, 8.0, a.Estimate.Volume()+b.Estimate.Volume(), 1e-9)
}

func TestAggregator_FinalizeWithDensities(t *testing.T) {
	agg := NewAggregator(WithDensities(map[domain.DomainID]map[string]float64{
		1: {"U238": 2.2e22, "U235": 5.0e20},
	}))

	res, err := agg.Finalize(workedSnapshot())
	require.NoError(t, err)

	a, ok := res.Domain(1)
	require.True(t, ok)
	require.Len(t, a.Nuclides, 2)

	// Nuclides are reported in sorted order.
	assert.Equal(t, "U235", a.Nuclides[0].Nuclide)
	assert.Equal(t, "U238", a.Nuclides[1].Nuclide)

	v := a.Estimate.Volume()
	sd := a.Estimate.StdDev()
	assert.InDelta(t, v*5.0e20, a.Nuclides[0].Atoms, 1)
	assert.InDelta(t, sd*5.0e20, a.Nuclides[0].StdDev, 1)

	b, ok := res.Domain(2)
	require.True(t, ok)
	assert.Empty(t, b.Nuclides, "no densities supplied for domain 2")
}

func TestAggregator_FinalizeRejectsInvalidSnapshot(t *testing.T) {
	snap := workedSnapshot()
	snap.TotalSamples = 10 // hits exceed totals

	_, err := NewAggregator().Finalize(snap)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestAggregator_FinalizePropagatesPartial(t *testing.T) {
	snap := workedSnapshot()
	snap.Partial = true

	res, err := NewAggregator().Finalize(snap)
	require.NoError(t, err)
	assert.True(t, res.Partial)
}

func TestReport(t *testing.T) {
	agg := NewAggregator(WithDensities(map[domain.DomainID]map[string]float64{
		1: {"U235": 5.0e20},
	}))
	res, err := agg.Finalize(workedSnapshot())
	require.NoError(t, err)
	res.Partial = true

	var sb strings.Builder
	require.NoError(t, Report(&sb, res))
	out := sb.String()

	assert.Contains(t, out, "worked-example")
	assert.Contains(t, out, "1,000,000 samples")
	assert.Contains(t, out, "domain 1")
	assert.Contains(t, out, "domain 2")
	assert.Contains(t, out, "+/-")
	assert.Contains(t, out, "U235")
	assert.Contains(t, out, "warning: partial results")
}
