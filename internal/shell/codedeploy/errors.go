package codedeploy

import (
	"errors"
	"fmt"

	smithy "github.com/aws/smithy-go"

	"github.com/artpar/promoter/internal/core/domain"
)

// =============================================================================
// Error Types
// =============================================================================

// CodeDeploy error codes this client classifies.
const (
	codeGroupDoesNotExist      = "DeploymentGroupDoesNotExistException"
	codeGroupAlreadyExists     = "DeploymentGroupAlreadyExistsException"
	codeDeploymentLimit        = "DeploymentLimitExceededException"
	codeDeploymentDoesNotExist = "DeploymentDoesNotExistException"
)

// ServiceError wraps a failed CodeDeploy call. Kind is one of the domain
// service conditions, so callers use errors.Is(err, domain.ErrGroupNotFound)
// and never look at CodeDeploy error codes themselves.
type ServiceError struct {
	Op      string // Operation that failed (e.g., "CreateDeployment")
	Code    string // CodeDeploy error code, empty for transport failures
	Message string // raw service message
	Kind    error
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ServiceError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// IsUnhandled reports whether the error is outside the classified conditions.
func (e *ServiceError) IsUnhandled() bool {
	return errors.Is(e.Kind, domain.ErrUnhandled)
}

// NewServiceError creates a new ServiceError.
func NewServiceError(op, code, message string, kind, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Kind:    kind,
		Err:     err,
	}
}

// classify maps an SDK error to a ServiceError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return NewServiceError(op, "", err.Error(), domain.ErrUnhandled, err)
	}

	kind := domain.ErrUnhandled
	switch apiErr.ErrorCode() {
	case codeGroupDoesNotExist:
		kind = domain.ErrGroupNotFound
	case codeGroupAlreadyExists:
		kind = domain.ErrGroupAlreadyExists
	case codeDeploymentLimit:
		kind = domain.ErrDeploymentLimitExceeded
	case codeDeploymentDoesNotExist:
		kind = domain.ErrDeploymentNotFound
	}

	return NewServiceError(op, apiErr.ErrorCode(), apiErr.ErrorMessage(), kind, err)
}

// ServiceMessage returns the raw message the service sent.
func (e *ServiceError) ServiceMessage() string {
	return e.Message
}

var _ domain.ServiceMessager = (*ServiceError)(nil)
