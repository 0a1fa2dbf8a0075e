package checkout

// SubmissionState drives the donation form: the submit control is enabled
// only while a new attempt may start.
type SubmissionState string

const (
	StateIdle            SubmissionState = "IDLE"
	StateCreatingOrder   SubmissionState = "CREATING_ORDER"
	StateAwaitingPayment SubmissionState = "AWAITING_PAYMENT"
	StateVerifying       SubmissionState = "VERIFYING"
	StateSucceeded       SubmissionState = "SUCCEEDED"
	StateFailed          SubmissionState = "FAILED"
)

// Resubmittable reports whether a new Submit may start from this state.
// SUCCEEDED is terminal for the session; a fresh donation needs a fresh session.
func (s SubmissionState) Resubmittable() bool {
	return s == StateIdle || s == StateFailed
}

// InFlight reports whether an attempt currently holds the guard.
func (s SubmissionState) InFlight() bool {
	return s == StateCreatingOrder || s == StateAwaitingPayment || s == StateVerifying
}
