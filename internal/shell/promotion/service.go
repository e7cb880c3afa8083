// Package promotion runs a promotion: it reconciles the deployment group,
// launches a deployment of the commit and waits for it to finish.
// This is part of the Imperative Shell - every step talks to the deployment
// service through the DeploymentService interface.
package promotion

import (
	"context"
	"time"

	"github.com/artpar/promoter/internal/core/domain"
)

// DeploymentService is the remote deployment service.
//
// Implementations classify failures so that errors.Is matches
// domain.ErrGroupNotFound, domain.ErrGroupAlreadyExists,
// domain.ErrDeploymentLimitExceeded and domain.ErrDeploymentNotFound.
// WaitUntilSuccessful wraps domain.ErrDeploymentFailed or
// domain.ErrDeploymentTimedOut when the deployment does not succeed in time.
type DeploymentService interface {
	UpdateDeploymentGroup(ctx context.Context, id domain.GroupIdentity, groupConfig map[string]any) error
	CreateDeploymentGroup(ctx context.Context, id domain.GroupIdentity, groupConfig map[string]any) error
	DeleteDeploymentGroup(ctx context.Context, id domain.GroupIdentity) error
	GetDeploymentGroup(ctx context.Context, id domain.GroupIdentity) (*domain.DeploymentGroupInfo, error)
	GetDeployment(ctx context.Context, deploymentID string) (*domain.DeploymentInfo, error)
	CreateDeployment(ctx context.Context, req domain.DeploymentRequest) (string, error)
	WaitUntilSuccessful(ctx context.Context, deploymentID string, maxWait time.Duration) error
}

// Journal records finished invocations.
type Journal interface {
	RecordPromotion(ctx context.Context, rec *domain.PromotionRecord) error
}
