package geometry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nglaser3/stochvol/internal/application"
	"github.com/nglaser3/stochvol/internal/domain"
)

func mustBox(t *testing.T, lower, upper domain.Point3) domain.BoundingBox {
	t.Helper()
	box, err := domain.NewBoundingBox(lower, upper)
	require.NoError(t, err)
	return box
}

func TestBox_Classify(t *testing.T) {
	b := NewBox(1, mustBox(t, domain.Point3{}, domain.Point3{X: 1, Y: 1, Z: 1}))
	ctx := context.Background()

	cl, err := b.Classify(ctx, domain.Point3{X: 0.5, Y: 0.5, Z: 0.5})
	require.NoError(t, err)
	assert.True(t, cl.Matched)
	assert.Equal(t, domain.DomainID(1), cl.Domain)

	cl, err = b.Classify(ctx, domain.Point3{X: 1.5, Y: 0.5, Z: 0.5})
	require.NoError(t, err)
	assert.False(t, cl.Matched)
}

func TestSphere_Classify(t *testing.T) {
	s := NewSphere(2, domain.Point3{X: 1, Y: 1, Z: 1}, 0.5)
	ctx := context.Background()

	tests := []struct {
		name    string
		point   domain.Point3
		matched bool
	}{
		{name: "center", point: domain.Point3{X: 1, Y: 1, Z: 1}, matched: true},
		{name: "on boundary", point: domain.Point3{X: 1.5, Y: 1, Z: 1}, matched: true},
		{name: "just outside", point: domain.Point3{X: 1.51, Y: 1, Z: 1}, matched: false},
		{name: "far away", point: domain.Point3{X: 9, Y: 9, Z: 9}, matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl, err := s.Classify(ctx, tt.point)
			require.NoError(t, err)
			assert.Equal(t, tt.matched, cl.Matched)
		})
	}
}

func TestComposite_FirstMatchWins(t *testing.T) {
	ctx := context.Background()
	inner := NewBox(1, mustBox(t, domain.Point3{}, domain.Point3{X: 1, Y: 1, Z: 1}))
	outer := NewBox(2, mustBox(t, domain.Point3{}, domain.Point3{X: 2, Y: 2, Z: 2}))

	c := NewComposite(inner, outer)

	// Point inside both regions resolves to the first member.
	cl, err := c.Classify(ctx, domain.Point3{X: 0.5, Y: 0.5, Z: 0.5})
	require.NoError(t, err)
	assert.Equal(t, domain.DomainID(1), cl.Domain)

	// Point only in the second region resolves to it.
	cl, err = c.Classify(ctx, domain.Point3{X: 1.5, Y: 1.5, Z: 1.5})
	require.NoError(t, err)
	assert.Equal(t, domain.DomainID(2), cl.Domain)

	// Point outside both is unmatched.
	cl, err = c.Classify(ctx, domain.Point3{X: 3, Y: 3, Z: 3})
	require.NoError(t, err)
	assert.False(t, cl.Matched)
}

func TestComposite_ClassifyBatch(t *testing.T) {
	ctx := context.Background()
	c := NewComposite(NewBox(1, mustBox(t, domain.Point3{}, domain.Point3{X: 1, Y: 1, Z: 1})))

	pts := []domain.Point3{
		{X: 0.5, Y: 0.5, Z: 0.5},
		{X: 2, Y: 2, Z: 2},
	}
	out := make([]domain.Classification, len(pts))
	require.NoError(t, c.ClassifyBatch(ctx, pts, out))

	assert.True(t, out[0].Matched)
	assert.False(t, out[1].Matched)
}

func TestComposite_ClassifyBatchHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewComposite(NewBox(1, mustBox(t, domain.Point3{}, domain.Point3{X: 1, Y: 1, Z: 1})))
	pts := make([]domain.Point3, 10)
	out := make([]domain.Classification, 10)

	assert.ErrorIs(t, c.ClassifyBatch(ctx, pts, out), context.Canceled)
}

func TestComplement_Classify(t *testing.T) {
	ctx := context.Background()
	region := mustBox(t, domain.Point3{}, domain.Point3{X: 2, Y: 2, Z: 2})
	inner := NewBox(1, mustBox(t, domain.Point3{}, domain.Point3{X: 1, Y: 1, Z: 1}))

	rest := NewComplement(2, region, inner)

	// Inside the excluded shape: not matched by the complement.
	cl, err := rest.Classify(ctx, domain.Point3{X: 0.5, Y: 0.5, Z: 0.5})
	require.NoError(t, err)
	assert.False(t, cl.Matched)

	// Inside the region, outside the excluded shape.
	cl, err = rest.Classify(ctx, domain.Point3{X: 1.5, Y: 1.5, Z: 1.5})
	require.NoError(t, err)
	assert.True(t, cl.Matched)
	assert.Equal(t, domain.DomainID(2), cl.Domain)

	// Outside the region entirely.
	cl, err = rest.Classify(ctx, domain.Point3{X: 5, Y: 5, Z: 5})
	require.NoError(t, err)
	assert.False(t, cl.Matched)
}

func TestFromConfig(t *testing.T) {
	box := mustBox(t, domain.Point3{}, domain.Point3{X: 2, Y: 2, Z: 2})
	cfgs := []application.DomainConfig{
		{
			ID: 1,
			Shape: application.ShapeConfig{
				Kind:  "box",
				Lower: [3]float64{0, 0, 0},
				Upper: [3]float64{1, 1, 1},
			},
		},
		{
			ID:    2,
			Shape: application.ShapeConfig{Kind: "complement"},
		},
	}

	c, err := FromConfig(cfgs, box)
	require.NoError(t, err)

	ctx := context.Background()
	cl, err := c.Classify(ctx, domain.Point3{X: 0.5, Y: 0.5, Z: 0.5})
	require.NoError(t, err)
	assert.Equal(t, domain.DomainID(1), cl.Domain)

	cl, err = c.Classify(ctx, domain.Point3{X: 1.5, Y: 0.5, Z: 0.5})
	require.NoError(t, err)
	assert.Equal(t, domain.DomainID(2), cl.Domain)
}

func TestFromConfig_Errors(t *testing.T) {
	box := mustBox(t, domain.Point3{}, domain.Point3{X: 2, Y: 2, Z: 2})

	tests := []struct {
		name string
		cfgs []application.DomainConfig
	}{
		{
			name: "inverted box shape",
			cfgs: []application.DomainConfig{{
				ID:    1,
				Shape: application.ShapeConfig{Kind: "box", Lower: [3]float64{1, 0, 0}, Upper: [3]float64{0, 1, 1}},
			}},
		},
		{
			name: "sphere without radius",
			cfgs: []application.DomainConfig{{
				ID:    1,
				Shape: application.ShapeConfig{Kind: "sphere"},
			}},
		},
		{
			name: "two complements",
			cfgs: []application.DomainConfig{
				{ID: 1, Shape: application.ShapeConfig{Kind: "complement"}},
				{ID: 2, Shape: application.ShapeConfig{Kind: "complement"}},
			},
		},
		{
			name: "unknown kind",
			cfgs: []application.DomainConfig{{
				ID:    1,
				Shape: application.ShapeConfig{Kind: "torus"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromConfig(tt.cfgs, box)
			assert.Error(t, err)
		})
	}
}
