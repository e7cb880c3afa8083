package deployment

import (
	"errors"
	"fmt"
)

// MaxCreateAttempts caps how many times one invocation calls CreateDeployment.
const MaxCreateAttempts = 5

var (
	ErrInvalidTransition = errors.New("invalid launch state transition")
	ErrAttemptsExhausted = errors.New("create deployment attempts exhausted")
)

// =============================================================================
// Launch State
// =============================================================================

// LaunchState is a step of launching a deployment and waiting for it.
type LaunchState string

const (
	LaunchIdle           LaunchState = "idle"
	LaunchCreating       LaunchState = "creating"
	LaunchWaitingOnOther LaunchState = "waiting_on_other"
	LaunchCreated        LaunchState = "created"
	LaunchPolling        LaunchState = "polling"
	LaunchSucceeded      LaunchState = "succeeded"
	LaunchFailed         LaunchState = "failed"
	LaunchTimedOut       LaunchState = "timed_out"
	LaunchRejected       LaunchState = "rejected" // sequencing guard refused
	LaunchAborted        LaunchState = "aborted"  // retry cap reached
)

// validLaunchTransitions defines the allowed state transitions.
var validLaunchTransitions = map[LaunchState][]LaunchState{
	LaunchIdle:           {LaunchCreating, LaunchRejected, LaunchFailed},
	LaunchCreating:       {LaunchCreated, LaunchWaitingOnOther, LaunchAborted, LaunchFailed},
	LaunchWaitingOnOther: {LaunchCreating, LaunchRejected, LaunchAborted, LaunchFailed},
	LaunchCreated:        {LaunchPolling},
	LaunchPolling:        {LaunchSucceeded, LaunchFailed, LaunchTimedOut},
	LaunchSucceeded:      {},
	LaunchFailed:         {},
	LaunchTimedOut:       {},
	LaunchRejected:       {},
	LaunchAborted:        {},
}

// IsTerminal reports whether no further transition is possible.
func (s LaunchState) IsTerminal() bool {
	next, ok := validLaunchTransitions[s]
	return ok && len(next) == 0
}

// ValidateLaunchTransition checks if a state transition is valid.
func ValidateLaunchTransition(from, to LaunchState) error {
	allowed, exists := validLaunchTransitions[from]
	if !exists {
		return ErrInvalidTransition
	}

	for _, s := range allowed {
		if s == to {
			return nil
		}
	}

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// =============================================================================
// Launch Tracker
// =============================================================================

// LaunchTracker follows one launch through its states and counts create
// attempts, so the retry loop stays bounded.
type LaunchTracker struct {
	state       LaunchState
	attempts    int
	maxAttempts int
}

// NewLaunchTracker starts in LaunchIdle with the default attempt cap.
func NewLaunchTracker() *LaunchTracker {
	return &LaunchTracker{state: LaunchIdle, maxAttempts: MaxCreateAttempts}
}

// State returns the current state.
func (t *LaunchTracker) State() LaunchState {
	return t.state
}

// Attempts returns how many create calls have been started.
func (t *LaunchTracker) Attempts() int {
	return t.attempts
}

// HasAttemptsLeft reports whether another create call is allowed.
func (t *LaunchTracker) HasAttemptsLeft() bool {
	return t.attempts < t.maxAttempts
}

// BeginAttempt moves to LaunchCreating and counts the attempt. When the cap
// is reached it moves to LaunchAborted and returns ErrAttemptsExhausted.
func (t *LaunchTracker) BeginAttempt() error {
	if !t.HasAttemptsLeft() {
		if err := t.Transition(LaunchAborted); err != nil {
			return err
		}
		return ErrAttemptsExhausted
	}
	if err := t.Transition(LaunchCreating); err != nil {
		return err
	}
	t.attempts++
	return nil
}

// Transition moves to the next state if the move is allowed.
func (t *LaunchTracker) Transition(to LaunchState) error {
	if err := ValidateLaunchTransition(t.state, to); err != nil {
		return err
	}
	t.state = to
	return nil
}
