// Package codedeploy implements the deployment service on AWS CodeDeploy.
// This is part of the Imperative Shell - handles I/O with the AWS API.
package codedeploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/codedeploy"
	"github.com/aws/aws-sdk-go-v2/service/codedeploy/types"

	"github.com/artpar/promoter/internal/core/domain"
)

// DefaultPollInterval is the minimum delay between deployment status checks.
const DefaultPollInterval = 15 * time.Second

// minPollsPerWait is how many polls a wait gets at least, whatever the interval.
const minPollsPerWait = 4

// Config holds CodeDeploy client configuration.
type Config struct {
	Region          string
	Profile         string // shared config profile
	AccessKeyID     string // static credentials; default chain when empty
	SecretAccessKey string
	SessionToken    string
	Endpoint        string // custom endpoint, e.g. a local emulator
	PollInterval    time.Duration
	MaxRetries      int // SDK retry attempts per call, 0 keeps the SDK default
}

// api is the subset of the CodeDeploy SDK client this package calls.
type api interface {
	UpdateDeploymentGroup(ctx context.Context, params *codedeploy.UpdateDeploymentGroupInput, optFns ...func(*codedeploy.Options)) (*codedeploy.UpdateDeploymentGroupOutput, error)
	CreateDeploymentGroup(ctx context.Context, params *codedeploy.CreateDeploymentGroupInput, optFns ...func(*codedeploy.Options)) (*codedeploy.CreateDeploymentGroupOutput, error)
	DeleteDeploymentGroup(ctx context.Context, params *codedeploy.DeleteDeploymentGroupInput, optFns ...func(*codedeploy.Options)) (*codedeploy.DeleteDeploymentGroupOutput, error)
	GetDeploymentGroup(ctx context.Context, params *codedeploy.GetDeploymentGroupInput, optFns ...func(*codedeploy.Options)) (*codedeploy.GetDeploymentGroupOutput, error)
	GetDeployment(ctx context.Context, params *codedeploy.GetDeploymentInput, optFns ...func(*codedeploy.Options)) (*codedeploy.GetDeploymentOutput, error)
	CreateDeployment(ctx context.Context, params *codedeploy.CreateDeploymentInput, optFns ...func(*codedeploy.Options)) (*codedeploy.CreateDeploymentOutput, error)
}

// Client talks to CodeDeploy in a single region.
type Client struct {
	api          api
	region       string
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewClient loads AWS configuration the way the SDK does by default
// (environment, shared config, instance role) with cfg applied on top.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	var optFns []func(*config.LoadOptions) error

	if cfg.Region != "" {
		optFns = append(optFns, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		optFns = append(optFns, config.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if awsCfg.Region == "" {
		return nil, errors.New("no AWS region configured")
	}

	var cdOptFns []func(*codedeploy.Options)
	if cfg.Endpoint != "" {
		cdOptFns = append(cdOptFns, func(o *codedeploy.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.MaxRetries > 0 {
		cdOptFns = append(cdOptFns, func(o *codedeploy.Options) {
			o.RetryMaxAttempts = cfg.MaxRetries
		})
	}

	return newClient(codedeploy.NewFromConfig(awsCfg, cdOptFns...), awsCfg.Region, cfg.PollInterval, logger), nil
}

func newClient(a api, region string, pollInterval time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Client{
		api:          a,
		region:       region,
		pollInterval: pollInterval,
		logger:       logger.With("service", "codedeploy", "region", region),
	}
}

// Region returns the region the client talks to.
func (c *Client) Region() string {
	return c.region
}

// =============================================================================
// Deployment Groups
// =============================================================================

// UpdateDeploymentGroup applies groupConfig to an existing group.
func (c *Client) UpdateDeploymentGroup(ctx context.Context, id domain.GroupIdentity, groupConfig map[string]any) error {
	var in codedeploy.UpdateDeploymentGroupInput
	if err := c.decode("UpdateDeploymentGroup", groupConfig, &in); err != nil {
		return err
	}
	in.ApplicationName = aws.String(id.ApplicationName)
	in.CurrentDeploymentGroupName = aws.String(id.GroupName)

	_, err := c.api.UpdateDeploymentGroup(ctx, &in)
	return classify("UpdateDeploymentGroup", err)
}

// CreateDeploymentGroup creates a group configured by groupConfig.
func (c *Client) CreateDeploymentGroup(ctx context.Context, id domain.GroupIdentity, groupConfig map[string]any) error {
	var in codedeploy.CreateDeploymentGroupInput
	if err := c.decode("CreateDeploymentGroup", groupConfig, &in); err != nil {
		return err
	}
	in.ApplicationName = aws.String(id.ApplicationName)
	in.DeploymentGroupName = aws.String(id.GroupName)

	_, err := c.api.CreateDeploymentGroup(ctx, &in)
	return classify("CreateDeploymentGroup", err)
}

// DeleteDeploymentGroup deletes a group.
func (c *Client) DeleteDeploymentGroup(ctx context.Context, id domain.GroupIdentity) error {
	out, err := c.api.DeleteDeploymentGroup(ctx, &codedeploy.DeleteDeploymentGroupInput{
		ApplicationName:     aws.String(id.ApplicationName),
		DeploymentGroupName: aws.String(id.GroupName),
	})
	if err != nil {
		return classify("DeleteDeploymentGroup", err)
	}
	if out != nil && len(out.HooksNotCleanedUp) > 0 {
		c.logger.Warn("lifecycle hooks not cleaned up",
			"deployment_group", id.String(),
			"hooks", len(out.HooksNotCleanedUp),
		)
	}
	return nil
}

// GetDeploymentGroup reads the group's last attempted deployment.
func (c *Client) GetDeploymentGroup(ctx context.Context, id domain.GroupIdentity) (*domain.DeploymentGroupInfo, error) {
	out, err := c.api.GetDeploymentGroup(ctx, &codedeploy.GetDeploymentGroupInput{
		ApplicationName:     aws.String(id.ApplicationName),
		DeploymentGroupName: aws.String(id.GroupName),
	})
	if err != nil {
		return nil, classify("GetDeploymentGroup", err)
	}

	info := &domain.DeploymentGroupInfo{Identity: id}
	if out.DeploymentGroupInfo != nil && out.DeploymentGroupInfo.LastAttemptedDeployment != nil {
		info.LastAttemptedDeploymentID = aws.ToString(out.DeploymentGroupInfo.LastAttemptedDeployment.DeploymentId)
	}
	return info, nil
}

// =============================================================================
// Deployments
// =============================================================================

// GetDeployment reads a deployment's description and status.
func (c *Client) GetDeployment(ctx context.Context, deploymentID string) (*domain.DeploymentInfo, error) {
	out, err := c.api.GetDeployment(ctx, &codedeploy.GetDeploymentInput{
		DeploymentId: aws.String(deploymentID),
	})
	if err != nil {
		return nil, classify("GetDeployment", err)
	}

	info := &domain.DeploymentInfo{ID: deploymentID}
	if out.DeploymentInfo != nil {
		info.Description = aws.ToString(out.DeploymentInfo.Description)
		info.Status = domain.DeploymentStatus(out.DeploymentInfo.Status)
	}
	return info, nil
}

// CreateDeployment starts a deployment of req.Revision and returns its id.
func (c *Client) CreateDeployment(ctx context.Context, req domain.DeploymentRequest) (string, error) {
	var in codedeploy.CreateDeploymentInput
	if err := c.decode("CreateDeployment", req.Config, &in); err != nil {
		return "", err
	}
	in.ApplicationName = aws.String(req.Identity.ApplicationName)
	in.DeploymentGroupName = aws.String(req.Identity.GroupName)
	in.Description = aws.String(req.Description)
	in.Revision = revisionLocation(req.Revision)

	out, err := c.api.CreateDeployment(ctx, &in)
	if err != nil {
		return "", classify("CreateDeployment", err)
	}
	return aws.ToString(out.DeploymentId), nil
}

func revisionLocation(r domain.Revision) *types.RevisionLocation {
	return &types.RevisionLocation{
		RevisionType: types.RevisionLocationType(r.Provider),
		GitHubLocation: &types.GitHubLocation{
			CommitId:   aws.String(r.CommitID),
			Repository: aws.String(r.Repository),
		},
	}
}

// pollDelay bounds the waiter's minimum delay. The waiter stops once the
// remaining time drops below its minimum delay, so a poll interval close to
// maxWait would end the wait after a single poll.
func pollDelay(interval, maxWait time.Duration) time.Duration {
	if limit := maxWait / minPollsPerWait; interval > limit {
		interval = limit
	}
	if interval <= 0 {
		interval = time.Millisecond
	}
	return interval
}

// WaitUntilSuccessful polls the deployment until it succeeds, fails, or
// maxWait elapses. Failures wrap domain.ErrDeploymentFailed, timeouts wrap
// domain.ErrDeploymentTimedOut.
func (c *Client) WaitUntilSuccessful(ctx context.Context, deploymentID string, maxWait time.Duration) error {
	if maxWait <= 0 {
		return fmt.Errorf("wait for deployment %s: max wait must be positive", deploymentID)
	}

	minDelay := pollDelay(c.pollInterval, maxWait)
	waiter := codedeploy.NewDeploymentSuccessfulWaiter(c.api, func(o *codedeploy.DeploymentSuccessfulWaiterOptions) {
		o.MinDelay = minDelay
		if o.MaxDelay < o.MinDelay {
			o.MaxDelay = o.MinDelay
		}
	})

	waitErr := waiter.Wait(ctx, &codedeploy.GetDeploymentInput{
		DeploymentId: aws.String(deploymentID),
	}, maxWait)
	if waitErr == nil {
		return nil
	}
	if ctx.Err() != nil {
		return NewServiceError("WaitUntilSuccessful", "", ctx.Err().Error(), domain.ErrUnhandled, ctx.Err())
	}

	// The waiter reports failure and timeout alike, so read the final status.
	info, err := c.GetDeployment(ctx, deploymentID)
	if err != nil {
		return err
	}

	c.logger.Debug("deployment wait ended",
		"deployment_id", deploymentID,
		"status", info.Status,
		"error", waitErr,
	)

	if info.Status.IsFailure() {
		return NewServiceError("WaitUntilSuccessful", "",
			fmt.Sprintf("deployment %s ended with status %s", deploymentID, info.Status),
			domain.ErrDeploymentFailed, waitErr)
	}
	if info.Status == domain.DeploymentSucceeded {
		return nil
	}
	return NewServiceError("WaitUntilSuccessful", "",
		fmt.Sprintf("deployment %s still %s after %s", deploymentID, info.Status, maxWait),
		domain.ErrDeploymentTimedOut, waitErr)
}

// decode applies a profile bag and logs keys the input has no field for.
func (c *Client) decode(op string, bag map[string]any, out any) error {
	unused, err := decodeInput(bag, out)
	if err != nil {
		return NewServiceError(op, "", err.Error(), domain.ErrUnhandled, err)
	}
	if len(unused) > 0 {
		c.logger.Warn("ignoring unknown configuration keys", "operation", op, "keys", unused)
	}
	return nil
}
