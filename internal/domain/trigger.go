package domain

// TriggerKind selects the precision metric a trigger evaluates against
// its threshold.
type TriggerKind string

// Supported trigger kinds for convergence control.
const (
	// TriggerVariance is satisfied when Var(V_d) ≤ threshold.
	TriggerVariance TriggerKind = "variance"

	// TriggerStdDev is satisfied when sqrt(Var(V_d)) ≤ threshold.
	TriggerStdDev TriggerKind = "std_dev"

	// TriggerRelativeError is satisfied when sqrt(Var(V_d))/V_d ≤ threshold.
	// A domain with zero estimated volume has infinite relative error and
	// keeps sampling until the maximum sample count is reached.
	TriggerRelativeError TriggerKind = "rel_err"
)

// Valid reports whether k names a supported trigger kind.
func (k TriggerKind) Valid() bool {
	switch k {
	case TriggerVariance, TriggerStdDev, TriggerRelativeError:
		return true
	}
	return false
}

// TriggerSpec attaches a precision target to a single tracked domain.
// A session with triggers keeps sampling until every attached trigger
// is satisfied or the maximum sample count is reached.
type TriggerSpec struct {
	// Domain is the tracked domain the trigger watches.
	Domain DomainID `json:"domain"`

	// Kind selects the metric compared against Threshold.
	Kind TriggerKind `json:"kind"`

	// Threshold is the target precision. Units depend on Kind:
	// cm⁶ for variance, cm³ for standard deviation, and dimensionless
	// for relative error.
	Threshold float64 `json:"threshold"`
}

// Satisfied reports whether the estimate meets the trigger's precision
// target. An unknown kind is never satisfied, which keeps a
// misconfigured session from terminating early; construction-time
// validation should reject unknown kinds before this is reachable.
func (s TriggerSpec) Satisfied(e VolumeEstimate) bool {
	switch s.Kind {
	case TriggerVariance:
		return e.Variance() <= s.Threshold
	case TriggerStdDev:
		return e.StdDev() <= s.Threshold
	case TriggerRelativeError:
		// RelativeError returns +Inf for zero-volume domains, so this
		// comparison is false and never raises.
		return e.RelativeError() <= s.Threshold
	default:
		return false
	}
}
