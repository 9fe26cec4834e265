package domain

// Phase is the lifecycle state of a calculation session.
//
// Transitions:
//
//	Idle → Sampling           on start
//	Sampling → Checking       after a batch, when a check interval elapses
//	Checking → Sampling       triggers unsatisfied, below max samples
//	Checking → Converged      all triggers satisfied
//	Checking → MaxSamples     triggers unsatisfied at max samples (partial)
//	Sampling → Converged      no triggers attached, requested samples drawn
type Phase int32

const (
	// PhaseIdle means the session has been constructed but not started.
	PhaseIdle Phase = iota

	// PhaseSampling means the session is drawing and classifying batches.
	PhaseSampling

	// PhaseChecking means the session is evaluating attached triggers.
	PhaseChecking

	// PhaseConverged is terminal: every attached trigger was satisfied,
	// or the session had no triggers and drew all requested samples.
	PhaseConverged

	// PhaseMaxSamples is terminal: the maximum sample count was reached
	// before all triggers were satisfied. Results carry a partial flag
	// but the session did not fail.
	PhaseMaxSamples
)

// String returns a human-readable phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSampling:
		return "sampling"
	case PhaseChecking:
		return "checking"
	case PhaseConverged:
		return "converged"
	case PhaseMaxSamples:
		return "max_samples_reached"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends the session.
func (p Phase) Terminal() bool {
	return p == PhaseConverged || p == PhaseMaxSamples
}
