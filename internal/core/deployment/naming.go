package deployment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/artpar/promoter/internal/core/domain"
)

// =============================================================================
// Deployment Group Naming
// =============================================================================

// Placeholders substituted in a profile's deploymentGroupName template.
const (
	BranchPlaceholder      = "$BRANCH"
	PullRequestPlaceholder = "$PR_NUMBER"
)

var (
	unsafeBranchChars = regexp.MustCompile(`[^A-Za-z0-9/-]+`)
	slashRuns         = regexp.MustCompile(`/+`)
)

// SanitizeBranchName makes a branch name usable inside a deployment group name.
// Runs of characters outside [A-Za-z0-9/-] become a single "-", then runs of
// "/" become "--".
//
// Example:
//
//	SanitizeBranchName("feature/foo_bar") // returns "feature--foo-bar"
func SanitizeBranchName(branchName string) string {
	safe := unsafeBranchChars.ReplaceAllString(branchName, "-")
	return slashRuns.ReplaceAllString(safe, "--")
}

// DeploymentGroupName derives the deployment group name for a branch.
// Without a template the sanitized branch name is used as-is.
//
// Example:
//
//	p := domain.DeploymentProfile{GroupNameTemplate: "$BRANCH-pr$PR_NUMBER"}
//	DeploymentGroupName(p, "feature/login", "42") // returns "feature--login-pr42"
func DeploymentGroupName(profile domain.DeploymentProfile, branchName, pullRequest string) string {
	safeBranch := SanitizeBranchName(branchName)
	if !profile.HasGroupNameTemplate() {
		return safeBranch
	}

	name := strings.ReplaceAll(profile.GroupNameTemplate, BranchPlaceholder, safeBranch)
	return strings.ReplaceAll(name, PullRequestPlaceholder, pullRequest)
}

// GroupIdentityFor combines the application and the derived group name.
func GroupIdentityFor(applicationName string, profile domain.DeploymentProfile, t domain.Trigger) domain.GroupIdentity {
	return domain.GroupIdentity{
		ApplicationName: applicationName,
		GroupName:       DeploymentGroupName(profile, t.BranchName, t.PullRequest()),
	}
}

// ConsoleURL links to a deployment in the AWS console.
//
// Example:
//
//	ConsoleURL("d-ABC123", "eu-central-1")
//	// returns "https://console.aws.amazon.com/codesuite/codedeploy/deployments/d-ABC123?region=eu-central-1"
func ConsoleURL(deploymentID, region string) string {
	return fmt.Sprintf("https://console.aws.amazon.com/codesuite/codedeploy/deployments/%s?region=%s", deploymentID, region)
}
