package promotion

import (
	"errors"
	"fmt"

	"github.com/artpar/promoter/internal/core/domain"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrInvalidTrigger      = errors.New("invalid trigger")
	ErrSequencingRejected  = errors.New("a newer run already deployed to this group")
	ErrConcurrencyExceeded = errors.New("too many concurrent deployments")
)

// TriggerError reports which trigger field is missing or malformed.
type TriggerError struct {
	Field   string
	Message string
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *TriggerError) Unwrap() error {
	return ErrInvalidTrigger
}

// SequencingError is returned when the group's last attempted deployment was
// stamped by a newer run than the current one.
type SequencingError struct {
	Group            domain.GroupIdentity
	LastDeploymentID string
	LastRunNumber    int64
	CurrentRunNumber int64
}

func (e *SequencingError) Error() string {
	return fmt.Sprintf("deployment group %s: last attempted deployment %s belongs to run %d, this is run %d",
		e.Group, e.LastDeploymentID, e.LastRunNumber, e.CurrentRunNumber)
}

func (e *SequencingError) Unwrap() error {
	return ErrSequencingRejected
}

// UnrecognizedConflictError is returned when CodeDeploy reports a deployment
// limit with a message no matcher understands. Message is kept verbatim so a
// new matcher can be written for it.
type UnrecognizedConflictError struct {
	Message string
	Err     error
}

func (e *UnrecognizedConflictError) Error() string {
	return fmt.Sprintf("unrecognized deployment limit message: %q", e.Message)
}

func (e *UnrecognizedConflictError) Unwrap() error {
	return e.Err
}

// DeploymentError ties a failed or timed out deployment to its id.
type DeploymentError struct {
	DeploymentID string
	Err          error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment %s: %v", e.DeploymentID, e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}
