package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		SessionID:    "sess-1",
		BoxVolume:    8.0,
		TotalSamples: 100_000,
		Counts: []DomainCount{
			{Domain: 1, Hits: 12_500},
			{Domain: 2, Hits: 87_000},
		},
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSnapshot_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Snapshot)
		wantErr bool
	}{
		{
			name:   "valid snapshot",
			mutate: func(*Snapshot) {},
		},
		{
			name:    "empty session id",
			mutate:  func(s *Snapshot) { s.SessionID = "" },
			wantErr: true,
		},
		{
			name: "unsorted counts",
			mutate: func(s *Snapshot) {
				s.Counts[0], s.Counts[1] = s.Counts[1], s.Counts[0]
			},
			wantErr: true,
		},
		{
			name: "duplicate domain id",
			mutate: func(s *Snapshot) {
				s.Counts[1].Domain = s.Counts[0].Domain
			},
			wantErr: true,
		},
		{
			name:    "hits exceed total samples",
			mutate:  func(s *Snapshot) { s.TotalSamples = 10 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := sampleSnapshot()
			tt.mutate(&snap)
			err := snap.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSnapshot_Estimate(t *testing.T) {
	snap := sampleSnapshot()

	est, ok := snap.Estimate(1)
	require.True(t, ok)
	assert.Equal(t, uint64(12_500), est.Hits)
	assert.Equal(t, uint64(100_000), est.TotalSamples)
	assert.InDelta(t, 1.0, est.Volume(), 1e-12)

	_, ok = snap.Estimate(99)
	assert.False(t, ok)
}

func TestSnapshot_OutsideHits(t *testing.T) {
	snap := sampleSnapshot()
	// Hit counts partition the total sample count exactly.
	assert.Equal(t, uint64(500), snap.OutsideHits())
	assert.Equal(t, snap.TotalSamples,
		snap.Counts[0].Hits+snap.Counts[1].Hits+snap.OutsideHits())
}

func TestSnapshot_Estimates(t *testing.T) {
	snap := sampleSnapshot()
	ests := snap.Estimates()
	require.Len(t, ests, 2)
	assert.Equal(t, DomainID(1), ests[0].Domain)
	assert.Equal(t, DomainID(2), ests[1].Domain)
	for _, e := range ests {
		assert.Equal(t, snap.TotalSamples, e.TotalSamples)
		assert.Equal(t, snap.BoxVolume, e.BoxVolume)
	}
}
