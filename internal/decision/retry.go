package decision

import "time"

// RetryState is the per-run retry budget of the requester. It exists only
// for the duration of one RequestDirective call; exhaustion is a first-class
// outcome, not an error.
type RetryState struct {
	Attempt     int
	MaxAttempts int
	Delay       time.Duration
}

func NewRetryState(maxAttempts int, delay time.Duration) RetryState {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return RetryState{MaxAttempts: maxAttempts, Delay: delay}
}

// Next consumes one attempt. It returns false once the budget is spent.
func (r *RetryState) Next() bool {
	if r.Attempt >= r.MaxAttempts {
		return false
	}
	r.Attempt++
	return true
}

func (r *RetryState) Exhausted() bool {
	return r.Attempt >= r.MaxAttempts
}
