// Package geometry provides synthetic point classifiers so calculations
// are runnable and testable without an external geometry engine. Each
// classifier implements the oracle contract consumed by sessions.
package geometry

import (
	"context"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

var (
	_ ports.Classifier = (*Box)(nil)
	_ ports.Classifier = (*Sphere)(nil)
)

// Box classifies points into a domain occupying an axis-aligned box.
type Box struct {
	id  domain.DomainID
	box domain.BoundingBox
}

// NewBox creates a box-shaped domain classifier.
func NewBox(id domain.DomainID, box domain.BoundingBox) *Box {
	return &Box{id: id, box: box}
}

// ID returns the domain the classifier matches into.
func (b *Box) ID() domain.DomainID { return b.id }

// Classify reports whether p lies inside the box.
func (b *Box) Classify(_ context.Context, p domain.Point3) (domain.Classification, error) {
	if b.box.Contains(p) {
		return domain.Classification{Domain: b.id, Matched: true}, nil
	}
	return domain.Classification{}, nil
}

// Sphere classifies points into a domain occupying a solid sphere.
type Sphere struct {
	id     domain.DomainID
	center domain.Point3
	r2     float64
}

// NewSphere creates a sphere-shaped domain classifier.
func NewSphere(id domain.DomainID, center domain.Point3, radius float64) *Sphere {
	return &Sphere{id: id, center: center, r2: radius * radius}
}

// ID returns the domain the classifier matches into.
func (s *Sphere) ID() domain.DomainID { return s.id }

// Classify reports whether p lies inside the sphere. Boundary points
// are inside; a measure-zero set either way for uniform sampling.
func (s *Sphere) Classify(_ context.Context, p domain.Point3) (domain.Classification, error) {
	dx := p.X - s.center.X
	dy := p.Y - s.center.Y
	dz := p.Z - s.center.Z
	if dx*dx+dy*dy+dz*dz <= s.r2 {
		return domain.Classification{Domain: s.id, Matched: true}, nil
	}
	return domain.Classification{}, nil
}
