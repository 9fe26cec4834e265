package geometry

import (
	"fmt"

	"github.com/nglaser3/stochvol/internal/application"
	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

// FromConfig builds a composite classifier from declared domain shapes.
// This is the boundary adapter for YAML configuration: shape kinds map
// to the synthetic classifiers in this package, and a complement shape
// matches everything inside box not claimed by the other domains.
func FromConfig(cfgs []application.DomainConfig, box domain.BoundingBox) (ports.Classifier, error) {
	shaped := make([]ports.Classifier, 0, len(cfgs))
	var complementID *domain.DomainID

	for _, dc := range cfgs {
		id := domain.DomainID(dc.ID)
		switch dc.Shape.Kind {
		case "box":
			inner, err := domain.NewBoundingBox(
				domain.Point3{X: dc.Shape.Lower[0], Y: dc.Shape.Lower[1], Z: dc.Shape.Lower[2]},
				domain.Point3{X: dc.Shape.Upper[0], Y: dc.Shape.Upper[1], Z: dc.Shape.Upper[2]},
			)
			if err != nil {
				return nil, fmt.Errorf("domain %d: %w", dc.ID, err)
			}
			shaped = append(shaped, NewBox(id, inner))
		case "sphere":
			if dc.Shape.Radius <= 0 {
				return nil, fmt.Errorf("%w: domain %d: sphere requires a positive radius",
					domain.ErrInvalidConfiguration, dc.ID)
			}
			center := domain.Point3{X: dc.Shape.Center[0], Y: dc.Shape.Center[1], Z: dc.Shape.Center[2]}
			shaped = append(shaped, NewSphere(id, center, dc.Shape.Radius))
		case "complement":
			if complementID != nil {
				return nil, fmt.Errorf("%w: at most one complement domain is allowed",
					domain.ErrInvalidConfiguration)
			}
			complementID = &id
		default:
			return nil, fmt.Errorf("%w: domain %d: unknown shape kind %q",
				domain.ErrInvalidConfiguration, dc.ID, dc.Shape.Kind)
		}
	}

	members := shaped
	if complementID != nil {
		members = append(members, NewComplement(*complementID, box, shaped...))
	}
	return NewComposite(members...), nil
}
