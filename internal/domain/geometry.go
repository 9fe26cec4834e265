// Package domain contains pure, dependency-free domain models and types
// for the stochastic volume estimator.
package domain

import (
	"fmt"
)

// Point3 represents a position in 3D Cartesian space.
// Coordinates are in centimeters, matching the convention of the
// geometry layers this library is consumed by.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DomainID identifies a cell, material, or universe tracked by a
// calculation. The estimator treats identifiers as opaque; their
// semantics belong to the external geometry that owns them.
type DomainID int32

// BoundingBox is an axis-aligned box that defines the sampling universe
// for a calculation session. It is immutable once a session starts.
// Each Upper coordinate must be greater than or equal to the
// corresponding Lower coordinate.
type BoundingBox struct {
	Lower Point3 `json:"lower"`
	Upper Point3 `json:"upper"`
}

// NewBoundingBox constructs a BoundingBox from its lower-left and
// upper-right corners. It returns ErrInvalidConfiguration when any upper
// coordinate is below the corresponding lower coordinate, so invalid
// geometry fails before any sampling starts.
func NewBoundingBox(lower, upper Point3) (BoundingBox, error) {
	box := BoundingBox{Lower: lower, Upper: upper}
	if err := box.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return box, nil
}

// Validate checks the corner ordering invariant.
func (b BoundingBox) Validate() error {
	if b.Upper.X < b.Lower.X || b.Upper.Y < b.Lower.Y || b.Upper.Z < b.Lower.Z {
		return fmt.Errorf("%w: bounding box upper corner %v is below lower corner %v",
			ErrInvalidConfiguration, b.Upper, b.Lower)
	}
	return nil
}

// Volume returns the box volume in cm³. A degenerate box (any zero
// extent) has volume zero.
func (b BoundingBox) Volume() float64 {
	return (b.Upper.X - b.Lower.X) * (b.Upper.Y - b.Lower.Y) * (b.Upper.Z - b.Lower.Z)
}

// Contains reports whether p lies inside the box. Points on the lower
// faces are inside and points on the upper faces are outside, so
// adjacent boxes partition space without double counting.
func (b BoundingBox) Contains(p Point3) bool {
	return p.X >= b.Lower.X && p.X < b.Upper.X &&
		p.Y >= b.Lower.Y && p.Y < b.Upper.Y &&
		p.Z >= b.Lower.Z && p.Z < b.Upper.Z
}

// Extent returns the per-axis widths of the box.
func (b BoundingBox) Extent() Point3 {
	return Point3{
		X: b.Upper.X - b.Lower.X,
		Y: b.Upper.Y - b.Lower.Y,
		Z: b.Upper.Z - b.Lower.Z,
	}
}

// Classification is the outcome of classifying a single sampled point.
// Matched is false when the point lies outside every tracked domain;
// such points are not tallied against any domain but still count toward
// the total sample count so volume fractions remain consistent.
type Classification struct {
	// Domain is the identifier of the matched domain.
	// It is meaningful only when Matched is true.
	Domain DomainID

	// Matched reports whether the point fell inside a tracked domain.
	Matched bool
}
