package ports

import (
	"github.com/nglaser3/stochvol/internal/domain"
)

// TriggerController decides whether a session has reached its target
// precision. A controller may watch any number of domains; overall
// convergence requires every attached trigger to be satisfied.
type TriggerController interface {
	// Satisfied reports whether all attached triggers are met for the
	// current estimates. Estimates are keyed by domain id and cover
	// every domain tracked by the session.
	Satisfied(estimates map[domain.DomainID]domain.VolumeEstimate) bool

	// Specs returns the attached trigger specifications, used for
	// construction-time validation against the session's domain set and
	// for reporting.
	Specs() []domain.TriggerSpec
}
