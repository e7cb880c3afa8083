package domain

import "errors"

// =============================================================================
// Deployment Service Conditions
// =============================================================================

// Conditions a deployment service reports separately from generic failures.
// Callers branch on these with errors.Is.
var (
	ErrGroupNotFound           = errors.New("deployment group does not exist")
	ErrGroupAlreadyExists      = errors.New("deployment group already exists")
	ErrDeploymentLimitExceeded = errors.New("deployment group already has an active deployment")
	ErrDeploymentNotFound      = errors.New("deployment does not exist")
	ErrDeploymentFailed        = errors.New("deployment failed")
	ErrDeploymentTimedOut      = errors.New("timed out waiting for deployment")
	ErrUnhandled               = errors.New("unhandled exception")
)

// ServiceMessager is implemented by errors that carry the deployment
// service's own message text.
type ServiceMessager interface {
	ServiceMessage() string
}

// ServiceMessage returns the service message carried by err, or err.Error()
// when no error in the chain carries one.
func ServiceMessage(err error) string {
	var m ServiceMessager
	if errors.As(err, &m) {
		return m.ServiceMessage()
	}
	return err.Error()
}

// =============================================================================
// Remote State
// =============================================================================

// DeploymentStatus is the status CodeDeploy reports for a deployment.
type DeploymentStatus string

const (
	DeploymentCreated    DeploymentStatus = "Created"
	DeploymentQueued     DeploymentStatus = "Queued"
	DeploymentInProgress DeploymentStatus = "InProgress"
	DeploymentBaking     DeploymentStatus = "Baking"
	DeploymentSucceeded  DeploymentStatus = "Succeeded"
	DeploymentFailed     DeploymentStatus = "Failed"
	DeploymentStopped    DeploymentStatus = "Stopped"
	DeploymentReady      DeploymentStatus = "Ready"
)

// IsTerminal reports whether the deployment will not change status again.
func (s DeploymentStatus) IsTerminal() bool {
	switch s {
	case DeploymentSucceeded, DeploymentFailed, DeploymentStopped:
		return true
	}
	return false
}

// IsFailure reports whether the deployment ended without succeeding.
func (s DeploymentStatus) IsFailure() bool {
	return s == DeploymentFailed || s == DeploymentStopped
}

// DeploymentGroupInfo is the part of a deployment group this tool reads.
type DeploymentGroupInfo struct {
	Identity                  GroupIdentity
	LastAttemptedDeploymentID string // empty when the group never had a deployment
}

// DeploymentInfo is the part of a deployment this tool reads.
type DeploymentInfo struct {
	ID          string
	Description string
	Status      DeploymentStatus
}

// DeploymentRequest is everything needed to create one deployment attempt.
type DeploymentRequest struct {
	Identity    GroupIdentity
	Config      map[string]any // deploymentConfig from the profile
	Revision    Revision
	Description string
}
