package promotion

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/artpar/promoter/internal/core/domain"
	"github.com/artpar/promoter/internal/shell/codedeploy"
)

// =============================================================================
// Fake Deployment Service
// =============================================================================

// fakeService records every call in order and replays scripted errors.
type fakeService struct {
	mu    sync.Mutex
	calls []string

	updateErr error
	createErr error
	deleteErr error

	groups      map[string]*domain.DeploymentGroupInfo // keyed by group name
	groupErr    error
	deployments map[string]*domain.DeploymentInfo
	getErr      error

	// createDeploymentErrs is consumed one per CreateDeployment call; once it
	// runs out the call succeeds with nextDeploymentID.
	createDeploymentErrs []error
	nextDeploymentID     string
	deploymentRequests   []domain.DeploymentRequest

	// waitErrs maps deployment ids to the WaitUntilSuccessful result.
	waitErrs  map[string]error
	waitedFor []string
	maxWaits  []time.Duration

	// onWait runs after a wait, e.g. to simulate a newer run deploying meanwhile.
	onWait func(deploymentID string)
}

func newFakeService() *fakeService {
	return &fakeService{
		groups:           make(map[string]*domain.DeploymentGroupInfo),
		deployments:      make(map[string]*domain.DeploymentInfo),
		waitErrs:         make(map[string]error),
		nextDeploymentID: "d-NEW0001",
	}
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeService) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeService) UpdateDeploymentGroup(_ context.Context, _ domain.GroupIdentity, _ map[string]any) error {
	f.record("UpdateDeploymentGroup")
	return f.updateErr
}

func (f *fakeService) CreateDeploymentGroup(_ context.Context, id domain.GroupIdentity, _ map[string]any) error {
	f.record("CreateDeploymentGroup")
	if f.createErr != nil {
		return f.createErr
	}
	f.groups[id.GroupName] = &domain.DeploymentGroupInfo{Identity: id}
	return nil
}

func (f *fakeService) DeleteDeploymentGroup(_ context.Context, _ domain.GroupIdentity) error {
	f.record("DeleteDeploymentGroup")
	return f.deleteErr
}

func (f *fakeService) GetDeploymentGroup(_ context.Context, id domain.GroupIdentity) (*domain.DeploymentGroupInfo, error) {
	f.record("GetDeploymentGroup")
	if f.groupErr != nil {
		return nil, f.groupErr
	}
	if g, ok := f.groups[id.GroupName]; ok {
		copied := *g
		return &copied, nil
	}
	return &domain.DeploymentGroupInfo{Identity: id}, nil
}

func (f *fakeService) GetDeployment(_ context.Context, deploymentID string) (*domain.DeploymentInfo, error) {
	f.record("GetDeployment")
	if f.getErr != nil {
		return nil, f.getErr
	}
	if d, ok := f.deployments[deploymentID]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, codedeploy.NewServiceError("GetDeployment", "DeploymentDoesNotExistException",
		"no deployment "+deploymentID, domain.ErrDeploymentNotFound, nil)
}

func (f *fakeService) CreateDeployment(_ context.Context, req domain.DeploymentRequest) (string, error) {
	f.record("CreateDeployment")
	f.mu.Lock()
	f.deploymentRequests = append(f.deploymentRequests, req)
	var err error
	if len(f.createDeploymentErrs) > 0 {
		err = f.createDeploymentErrs[0]
		f.createDeploymentErrs = f.createDeploymentErrs[1:]
	}
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	return f.nextDeploymentID, nil
}

func (f *fakeService) WaitUntilSuccessful(_ context.Context, deploymentID string, maxWait time.Duration) error {
	f.record("WaitUntilSuccessful")
	f.mu.Lock()
	f.waitedFor = append(f.waitedFor, deploymentID)
	f.maxWaits = append(f.maxWaits, maxWait)
	err := f.waitErrs[deploymentID]
	onWait := f.onWait
	f.mu.Unlock()
	if onWait != nil {
		onWait(deploymentID)
	}
	return err
}

// setLastDeployment makes description the last attempted deployment of group.
func (f *fakeService) setLastDeployment(id domain.GroupIdentity, deploymentID, description string) {
	f.groups[id.GroupName] = &domain.DeploymentGroupInfo{Identity: id, LastAttemptedDeploymentID: deploymentID}
	f.deployments[deploymentID] = &domain.DeploymentInfo{ID: deploymentID, Description: description, Status: domain.DeploymentSucceeded}
}

// =============================================================================
// Error Helpers
// =============================================================================

func groupNotFound() error {
	return codedeploy.NewServiceError("UpdateDeploymentGroup", "DeploymentGroupDoesNotExistException",
		"No Deployment Group found", domain.ErrGroupNotFound, nil)
}

func limitExceeded(message string) error {
	return codedeploy.NewServiceError("CreateDeployment", "DeploymentLimitExceededException",
		message, domain.ErrDeploymentLimitExceeded, nil)
}

func unhandled(message string) error {
	return codedeploy.NewServiceError("CreateDeployment", "InvalidRoleException", message, domain.ErrUnhandled, nil)
}

func busyWith(deploymentID string) error {
	return limitExceeded("The Deployment Group 'feature--x' is already deploying deployment '" + deploymentID + "'.")
}

// =============================================================================
// Fake Journal
// =============================================================================

type fakeJournal struct {
	records []domain.PromotionRecord
	err     error
}

func (j *fakeJournal) RecordPromotion(_ context.Context, rec *domain.PromotionRecord) error {
	j.records = append(j.records, *rec)
	return j.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

var testGroup = domain.GroupIdentity{ApplicationName: "Hello-World", GroupName: "feature--x"}
