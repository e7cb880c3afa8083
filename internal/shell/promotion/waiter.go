package promotion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	coredeployment "github.com/artpar/promoter/internal/core/deployment"
	"github.com/artpar/promoter/internal/core/domain"
)

// DefaultCompletionWait bounds the wait for the created deployment.
const DefaultCompletionWait = 60 * time.Minute

// =============================================================================
// Completion Waiter
// =============================================================================

// CompletionWaiter waits for a created deployment to finish.
type CompletionWaiter struct {
	service DeploymentService
	maxWait time.Duration
	logger  *slog.Logger
}

// NewCompletionWaiter creates a new waiter.
func NewCompletionWaiter(service DeploymentService, maxWait time.Duration, logger *slog.Logger) *CompletionWaiter {
	if logger == nil {
		logger = slog.Default()
	}
	if maxWait <= 0 {
		maxWait = DefaultCompletionWait
	}
	return &CompletionWaiter{
		service: service,
		maxWait: maxWait,
		logger:  logger.With("component", "completion_waiter"),
	}
}

// Await returns nil once the deployment succeeded. A failed or timed out
// deployment is returned as a *DeploymentError. The deployment is never
// stopped or rolled back.
func (w *CompletionWaiter) Await(ctx context.Context, deploymentID string) error {
	w.logger.Info("waiting for deployment to finish", "deployment_id", deploymentID, "max_wait", w.maxWait)

	err := w.service.WaitUntilSuccessful(ctx, deploymentID, w.maxWait)
	if err == nil {
		w.logger.Info("deployment succeeded", "deployment_id", deploymentID)
		return nil
	}
	if errors.Is(err, domain.ErrDeploymentFailed) || errors.Is(err, domain.ErrDeploymentTimedOut) {
		return &DeploymentError{DeploymentID: deploymentID, Err: err}
	}
	return err
}

// awaitLaunch waits for a launch and records the final state on it.
func (w *CompletionWaiter) awaitLaunch(ctx context.Context, launch *Launch) error {
	_ = launch.tracker.Transition(coredeployment.LaunchPolling)

	err := w.Await(ctx, launch.DeploymentID)
	switch {
	case err == nil:
		_ = launch.tracker.Transition(coredeployment.LaunchSucceeded)
	case errors.Is(err, domain.ErrDeploymentTimedOut):
		_ = launch.tracker.Transition(coredeployment.LaunchTimedOut)
	default:
		_ = launch.tracker.Transition(coredeployment.LaunchFailed)
	}
	return err
}
