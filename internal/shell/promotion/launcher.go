package promotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coredeployment "github.com/artpar/promoter/internal/core/deployment"
	"github.com/artpar/promoter/internal/core/domain"
)

// DefaultConflictWait bounds the wait for another deployment to finish.
const DefaultConflictWait = 10 * time.Minute

// =============================================================================
// Deployment Launcher
// =============================================================================

// LaunchRequest describes the deployment to create.
type LaunchRequest struct {
	Identity    domain.GroupIdentity
	Config      map[string]any
	Revision    domain.Revision
	Description string
	RunNumber   *int64 // nil skips the sequencing guard
}

// Launch is a deployment created by the Launcher.
type Launch struct {
	DeploymentID string
	tracker      *coredeployment.LaunchTracker
}

// State returns where the launch is in its lifecycle.
func (l *Launch) State() coredeployment.LaunchState {
	return l.tracker.State()
}

// Attempts returns how many create calls were made.
func (l *Launch) Attempts() int {
	return l.tracker.Attempts()
}

// Launcher creates a deployment, waiting out deployments already running on
// the group.
type Launcher struct {
	service      DeploymentService
	guard        *SequencingGuard
	matchers     []coredeployment.ConflictMatcher
	conflictWait time.Duration
	logger       *slog.Logger
}

// NewLauncher creates a new launcher. Nil matchers use the default set.
func NewLauncher(service DeploymentService, guard *SequencingGuard, matchers []coredeployment.ConflictMatcher, conflictWait time.Duration, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	if matchers == nil {
		matchers = coredeployment.DefaultConflictMatchers()
	}
	if conflictWait <= 0 {
		conflictWait = DefaultConflictWait
	}
	return &Launcher{
		service:      service,
		guard:        guard,
		matchers:     matchers,
		conflictWait: conflictWait,
		logger:       logger.With("component", "launcher"),
	}
}

// Launch creates the deployment. The sequencing guard runs before every
// create call. When the group is busy, Launch waits for the active deployment
// and tries again, making at most coredeployment.MaxCreateAttempts calls.
func (l *Launcher) Launch(ctx context.Context, req LaunchRequest) (*Launch, error) {
	tracker := coredeployment.NewLaunchTracker()
	launch := &Launch{tracker: tracker}

	for {
		if err := l.guard.Check(ctx, req.Identity, req.RunNumber); err != nil {
			if errors.Is(err, ErrSequencingRejected) {
				_ = tracker.Transition(coredeployment.LaunchRejected)
			} else {
				_ = tracker.Transition(coredeployment.LaunchFailed)
			}
			return launch, err
		}

		if err := tracker.BeginAttempt(); err != nil {
			return launch, fmt.Errorf("%w: %v", ErrConcurrencyExceeded, err)
		}

		l.logger.Info("creating deployment",
			"deployment_group", req.Identity.String(),
			"commit_id", req.Revision.CommitID,
			"attempt", tracker.Attempts(),
		)

		id, err := l.service.CreateDeployment(ctx, domain.DeploymentRequest{
			Identity:    req.Identity,
			Config:      req.Config,
			Revision:    req.Revision,
			Description: req.Description,
		})
		if err == nil {
			_ = tracker.Transition(coredeployment.LaunchCreated)
			launch.DeploymentID = id
			l.logger.Info("created deployment", "deployment_id", id, "attempts", tracker.Attempts())
			return launch, nil
		}

		if !errors.Is(err, domain.ErrDeploymentLimitExceeded) {
			_ = tracker.Transition(coredeployment.LaunchFailed)
			return launch, err
		}

		message := domain.ServiceMessage(err)
		match, ok := coredeployment.ExtractConflictingDeployment(message, l.matchers)
		if !ok {
			_ = tracker.Transition(coredeployment.LaunchFailed)
			return launch, &UnrecognizedConflictError{Message: message, Err: err}
		}

		if !tracker.HasAttemptsLeft() {
			_ = tracker.Transition(coredeployment.LaunchAborted)
			return launch, fmt.Errorf("%w: group %s still busy with %s after %d attempts",
				ErrConcurrencyExceeded, req.Identity, match.DeploymentID, tracker.Attempts())
		}

		_ = tracker.Transition(coredeployment.LaunchWaitingOnOther)
		if err := l.waitForOther(ctx, match); err != nil {
			_ = tracker.Transition(coredeployment.LaunchFailed)
			return launch, err
		}
	}
}

// waitForOther blocks until the conflicting deployment finishes. Its outcome
// is only logged; a context error is returned.
func (l *Launcher) waitForOther(ctx context.Context, match coredeployment.ConflictMatch) error {
	l.logger.Info("waiting for active deployment to finish",
		"conflicting_deployment_id", match.DeploymentID,
		"matcher", match.Matcher,
		"max_wait", l.conflictWait,
	)

	err := l.service.WaitUntilSuccessful(ctx, match.DeploymentID, l.conflictWait)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		l.logger.Warn("active deployment did not succeed, retrying anyway",
			"conflicting_deployment_id", match.DeploymentID,
			"error", err,
		)
		return nil
	}
	l.logger.Info("active deployment finished", "conflicting_deployment_id", match.DeploymentID)
	return nil
}
