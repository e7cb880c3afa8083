package promotion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/artpar/promoter/internal/core/branchconfig"
	coredeployment "github.com/artpar/promoter/internal/core/deployment"
	"github.com/artpar/promoter/internal/core/domain"
	"github.com/artpar/promoter/internal/core/validation"
)

// =============================================================================
// Orchestrator - Runs a Promotion End to End
// =============================================================================

// Options configures an Orchestrator.
type Options struct {
	AppSpecPath       string
	ConflictWait      time.Duration
	CompletionWait    time.Duration
	DescriptionPrefix string
	Region            string // used for console links only
	Matchers          []coredeployment.ConflictMatcher
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		AppSpecPath:       branchconfig.DefaultPath,
		ConflictWait:      DefaultConflictWait,
		CompletionWait:    DefaultCompletionWait,
		DescriptionPrefix: coredeployment.DefaultDescriptionPrefix,
		Matchers:          coredeployment.DefaultConflictMatchers(),
	}
}

// Result is what a promotion produced. It is returned even when the promotion
// fails, so callers can report the group that was created before the failure.
type Result struct {
	GroupName    string
	GroupCreated bool
	DeploymentID string
	Outcome      domain.Outcome
}

// Orchestrator runs the promotion pipeline:
// resolve profile, derive group name, reconcile group, launch, wait.
type Orchestrator struct {
	opts       Options
	reconciler *Reconciler
	launcher   *Launcher
	waiter     *CompletionWaiter
	journal    Journal
	now        func() time.Time
	logger     *slog.Logger
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(service DeploymentService, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.AppSpecPath == "" {
		opts.AppSpecPath = branchconfig.DefaultPath
	}
	if opts.DescriptionPrefix == "" {
		opts.DescriptionPrefix = coredeployment.DefaultDescriptionPrefix
	}

	guard := NewSequencingGuard(service, logger)
	return &Orchestrator{
		opts:       opts,
		reconciler: NewReconciler(service, logger),
		launcher:   NewLauncher(service, guard, opts.Matchers, opts.ConflictWait, logger),
		waiter:     NewCompletionWaiter(service, opts.CompletionWait, logger),
		now:        time.Now,
		logger:     logger,
	}
}

// WithJournal records every invocation in j.
func (o *Orchestrator) WithJournal(j Journal) *Orchestrator {
	o.journal = j
	return o
}

// =============================================================================
// Deploy
// =============================================================================

// Deploy promotes the trigger's commit to the deployment group its branch
// resolves to. A branch without a profile, or with an empty one, is skipped
// with a nil error.
func (o *Orchestrator) Deploy(ctx context.Context, t domain.Trigger) (result *Result, err error) {
	result = &Result{}
	rec := domain.NewPromotionRecord(domain.CommandDeploy, t, o.now())
	defer func() { o.record(ctx, &rec, result, err) }()

	logger := o.logger.With("branch", t.BranchName, "commit_id", t.CommitID)

	if field, msg := validation.ValidateTrigger(t); field != "" {
		return result, &TriggerError{Field: field, Message: msg}
	}

	// 1. Resolve the branch to a deployment profile
	profile, err := o.resolve(t)
	if err != nil {
		if branchconfig.IsSkip(err) {
			logger.Info("no deployment for this branch, skipping", "lookup_key", t.LookupKey(), "reason", err)
			result.Outcome = domain.OutcomeSkipped
			return result, nil
		}
		return result, err
	}

	// 2. Derive the deployment group name
	id := coredeployment.GroupIdentityFor(t.ApplicationName, *profile, t)
	result.GroupName = id.GroupName
	logger = logger.With("deployment_group", id.String())
	logger.Info("resolved deployment profile", "profile", profile.Key)

	// 3. Make sure the group exists and is up to date
	created, err := o.reconciler.Reconcile(ctx, id, profile.GroupConfig)
	result.GroupCreated = created
	if err != nil {
		return result, err
	}

	// 4. Create the deployment
	var runNumber *int64
	if t.SequencingEnabled() {
		runNumber = t.RunNumber
	}
	launch, err := o.launcher.Launch(ctx, LaunchRequest{
		Identity:    id,
		Config:      profile.DeploymentConfig,
		Revision:    domain.GitHubRevision(t.CommitID, t.FullRepositoryName),
		Description: coredeployment.Description(o.opts.DescriptionPrefix, t.RunNumber),
		RunNumber:   runNumber,
	})
	if err != nil {
		return result, err
	}
	result.DeploymentID = launch.DeploymentID

	if o.opts.Region != "" {
		logger.Info("deployment started",
			"deployment_id", launch.DeploymentID,
			"url", coredeployment.ConsoleURL(launch.DeploymentID, o.opts.Region),
		)
	}

	// 5. Wait for it to finish
	if err := o.waiter.awaitLaunch(ctx, launch); err != nil {
		return result, err
	}

	result.Outcome = domain.OutcomeSucceeded
	return result, nil
}

// =============================================================================
// Delete Group
// =============================================================================

// DeleteGroup deletes the deployment group the trigger's branch resolves to.
func (o *Orchestrator) DeleteGroup(ctx context.Context, t domain.Trigger) (result *Result, err error) {
	result = &Result{}
	rec := domain.NewPromotionRecord(domain.CommandDeleteGroup, t, o.now())
	defer func() { o.record(ctx, &rec, result, err) }()

	if field, msg := validation.ValidateGroupTarget(t); field != "" {
		return result, &TriggerError{Field: field, Message: msg}
	}

	profile, err := o.resolve(t)
	if err != nil {
		if branchconfig.IsSkip(err) {
			o.logger.Info("no deployment group for this branch, skipping", "lookup_key", t.LookupKey(), "reason", err)
			result.Outcome = domain.OutcomeSkipped
			return result, nil
		}
		return result, err
	}

	id := coredeployment.GroupIdentityFor(t.ApplicationName, *profile, t)
	result.GroupName = id.GroupName

	if err := o.reconciler.Delete(ctx, id); err != nil {
		return result, err
	}
	result.Outcome = domain.OutcomeGroupDeleted
	return result, nil
}

func (o *Orchestrator) resolve(t domain.Trigger) (*domain.DeploymentProfile, error) {
	doc, err := branchconfig.Load(o.opts.AppSpecPath)
	if err != nil {
		return nil, err
	}
	return doc.Resolve(t.LookupKey())
}

// =============================================================================
// Journal
// =============================================================================

// record finishes rec and writes it to the journal. Journal failures are
// logged and never change the promotion's result.
func (o *Orchestrator) record(ctx context.Context, rec *domain.PromotionRecord, result *Result, err error) {
	if err != nil && result.Outcome == "" {
		result.Outcome = domain.OutcomeFailed
		if errors.Is(err, ErrSequencingRejected) {
			result.Outcome = domain.OutcomeRejected
		}
	}
	if o.journal == nil {
		return
	}

	rec.GroupName = result.GroupName
	rec.GroupCreated = result.GroupCreated
	rec.DeploymentID = result.DeploymentID
	rec.Outcome = result.Outcome
	if err != nil {
		rec.Message = err.Error()
	}
	rec.FinishedAt = o.now()

	if jErr := o.journal.RecordPromotion(context.WithoutCancel(ctx), rec); jErr != nil {
		o.logger.Warn("failed to record promotion", "promotion_id", rec.ID, "error", jErr)
	}
}
