package geometry

import (
	"context"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

var (
	_ ports.BatchClassifier = (*Composite)(nil)
	_ ports.Classifier      = (*Complement)(nil)
)

// Composite chains member classifiers with first-match-wins semantics,
// mirroring how a cell lookup resolves overlapping regions by
// declaration order. A point matched by no member is outside every
// tracked domain.
type Composite struct {
	members []ports.Classifier
}

// NewComposite creates a first-match composite over members.
func NewComposite(members ...ports.Classifier) *Composite {
	return &Composite{members: members}
}

// Classify returns the first member's match, if any.
func (c *Composite) Classify(ctx context.Context, p domain.Point3) (domain.Classification, error) {
	for _, m := range c.members {
		cl, err := m.Classify(ctx, p)
		if err != nil {
			return domain.Classification{}, err
		}
		if cl.Matched {
			return cl, nil
		}
	}
	return domain.Classification{}, nil
}

// ClassifyBatch classifies pts[i] into out[i], honoring context
// cancellation between points so long batches abort promptly.
func (c *Composite) ClassifyBatch(
	ctx context.Context,
	pts []domain.Point3,
	out []domain.Classification,
) error {
	for i, p := range pts {
		if err := ctx.Err(); err != nil {
			return err
		}
		cl, err := c.Classify(ctx, p)
		if err != nil {
			return err
		}
		out[i] = cl
	}
	return nil
}

// Complement classifies points into a domain occupying everything
// inside a bounding region that no excluded classifier claims. It
// models "the rest of the box" domains, such as moderator surrounding
// a fuel region.
type Complement struct {
	id       domain.DomainID
	region   domain.BoundingBox
	excluded []ports.Classifier
}

// NewComplement creates a complement classifier over region, excluding
// the regions matched by excluded.
func NewComplement(id domain.DomainID, region domain.BoundingBox, excluded ...ports.Classifier) *Complement {
	return &Complement{id: id, region: region, excluded: excluded}
}

// ID returns the domain the classifier matches into.
func (c *Complement) ID() domain.DomainID { return c.id }

// Classify reports whether p lies in the region but in none of the
// excluded shapes.
func (c *Complement) Classify(ctx context.Context, p domain.Point3) (domain.Classification, error) {
	if !c.region.Contains(p) {
		return domain.Classification{}, nil
	}
	for _, e := range c.excluded {
		cl, err := e.Classify(ctx, p)
		if err != nil {
			return domain.Classification{}, err
		}
		if cl.Matched {
			return domain.Classification{}, nil
		}
	}
	return domain.Classification{Domain: c.id, Matched: true}, nil
}
