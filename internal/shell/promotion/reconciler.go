package promotion

import (
	"context"
	"errors"
	"log/slog"

	"github.com/artpar/promoter/internal/core/domain"
)

// =============================================================================
// Group Reconciler
// =============================================================================

// Reconciler makes sure a deployment group exists with the profile's
// configuration. Running it twice with the same input leaves the group in the
// same state.
type Reconciler struct {
	service DeploymentService
	logger  *slog.Logger
}

// NewReconciler creates a new reconciler.
func NewReconciler(service DeploymentService, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		service: service,
		logger:  logger.With("component", "reconciler"),
	}
}

// Reconcile updates the group and creates it only when the update reports it
// does not exist. created is true when the group was created.
func (r *Reconciler) Reconcile(ctx context.Context, id domain.GroupIdentity, groupConfig map[string]any) (created bool, err error) {
	err = r.service.UpdateDeploymentGroup(ctx, id, groupConfig)
	if err == nil {
		r.logger.Info("updated deployment group", "deployment_group", id.String())
		return false, nil
	}
	if !errors.Is(err, domain.ErrGroupNotFound) {
		return false, err
	}

	r.logger.Info("deployment group not found, creating", "deployment_group", id.String())
	if err := r.service.CreateDeploymentGroup(ctx, id, groupConfig); err != nil {
		return false, err
	}
	r.logger.Info("created deployment group", "deployment_group", id.String())
	return true, nil
}

// Delete removes the group. A group that is already gone is not an error.
func (r *Reconciler) Delete(ctx context.Context, id domain.GroupIdentity) error {
	err := r.service.DeleteDeploymentGroup(ctx, id)
	if errors.Is(err, domain.ErrGroupNotFound) {
		r.logger.Info("deployment group does not exist, nothing to delete", "deployment_group", id.String())
		return nil
	}
	if err != nil {
		return err
	}
	r.logger.Info("deleted deployment group", "deployment_group", id.String())
	return nil
}
