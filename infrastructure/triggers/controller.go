// Package triggers implements convergence control for calculation
// sessions: it decides, from the current volume estimates, whether a
// session has reached its target precision.
package triggers

import (
	"errors"
	"fmt"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

var _ ports.TriggerController = (*Controller)(nil)

// Common errors returned by trigger controller construction.
var (
	// ErrNoSpecs is returned when a controller is created without any
	// trigger specifications.
	ErrNoSpecs = errors.New("no trigger specifications provided")

	// ErrInvalidSpec is returned when a specification has an unknown
	// kind or a non-positive threshold.
	ErrInvalidSpec = errors.New("invalid trigger specification")
)

// Controller evaluates a set of per-domain trigger specifications with
// all-must-pass semantics: overall convergence requires every attached
// trigger to be satisfied simultaneously. The controller is immutable
// after creation and safe for concurrent use.
type Controller struct {
	specs []domain.TriggerSpec
}

// NewController creates a validated controller over specs. Specs must
// name a supported kind and carry a positive threshold; domain
// membership is validated by the session against its tracked set.
func NewController(specs ...domain.TriggerSpec) (*Controller, error) {
	if len(specs) == 0 {
		return nil, ErrNoSpecs
	}
	for i, spec := range specs {
		if !spec.Kind.Valid() {
			return nil, fmt.Errorf("%w: spec %d has unknown kind %q", ErrInvalidSpec, i, spec.Kind)
		}
		if spec.Threshold <= 0 {
			return nil, fmt.Errorf("%w: spec %d threshold %g must be positive",
				ErrInvalidSpec, i, spec.Threshold)
		}
	}

	owned := make([]domain.TriggerSpec, len(specs))
	copy(owned, specs)
	return &Controller{specs: owned}, nil
}

// Satisfied reports whether every attached trigger is met. A trigger
// whose domain is missing from the estimates is unsatisfied, so a
// session can never converge on a domain it is not tracking.
func (c *Controller) Satisfied(estimates map[domain.DomainID]domain.VolumeEstimate) bool {
	for _, spec := range c.specs {
		est, ok := estimates[spec.Domain]
		if !ok {
			return false
		}
		if !spec.Satisfied(est) {
			return false
		}
	}
	return true
}

// Specs returns a copy of the attached trigger specifications.
func (c *Controller) Specs() []domain.TriggerSpec {
	out := make([]domain.TriggerSpec, len(c.specs))
	copy(out, c.specs)
	return out
}
