package promotion

import (
	"context"
	"log/slog"

	coredeployment "github.com/artpar/promoter/internal/core/deployment"
	"github.com/artpar/promoter/internal/core/domain"
)

// =============================================================================
// Sequencing Guard
// =============================================================================

// SequencingGuard stops an older pipeline run from deploying over a newer one.
//
// The check reads the group's last attempted deployment and the create call
// happens afterwards, so two runs starting at the same moment can both pass.
// The service's one-active-deployment limit narrows that window but does not
// close it.
type SequencingGuard struct {
	service DeploymentService
	logger  *slog.Logger
}

// NewSequencingGuard creates a new guard.
func NewSequencingGuard(service DeploymentService, logger *slog.Logger) *SequencingGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &SequencingGuard{
		service: service,
		logger:  logger.With("component", "sequencing_guard"),
	}
}

// Check returns a *SequencingError when the last attempted deployment of the
// group carries a run number greater than runNumber. A nil runNumber disables
// the check.
func (g *SequencingGuard) Check(ctx context.Context, id domain.GroupIdentity, runNumber *int64) error {
	if runNumber == nil {
		return nil
	}

	group, err := g.service.GetDeploymentGroup(ctx, id)
	if err != nil {
		return err
	}
	if group.LastAttemptedDeploymentID == "" {
		g.logger.Debug("no previous deployment", "deployment_group", id.String())
		return nil
	}

	last, err := g.service.GetDeployment(ctx, group.LastAttemptedDeploymentID)
	if err != nil {
		return err
	}

	check := coredeployment.CheckSequence(last.Description, *runNumber)
	if !check.Found {
		g.logger.Debug("previous deployment has no run number",
			"deployment_group", id.String(),
			"deployment_id", last.ID,
		)
		return nil
	}
	if !check.Allowed {
		return &SequencingError{
			Group:            id,
			LastDeploymentID: last.ID,
			LastRunNumber:    check.LastRunNumber,
			CurrentRunNumber: *runNumber,
		}
	}

	g.logger.Debug("sequencing check passed",
		"deployment_group", id.String(),
		"last_run_number", check.LastRunNumber,
		"run_number", *runNumber,
	)
	return nil
}
