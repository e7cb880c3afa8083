package domain

import "strconv"

// =============================================================================
// Deployment Profile
// =============================================================================

// DeploymentProfile is one resolved entry of appspec.yml -> branch_config.
// GroupConfig and DeploymentConfig are passed through to CodeDeploy as-is.
type DeploymentProfile struct {
	Key               string         // branch_config pattern that matched
	GroupNameTemplate string         // may contain $BRANCH and $PR_NUMBER
	GroupConfig       map[string]any // deploymentGroupConfig
	DeploymentConfig  map[string]any // deploymentConfig
}

// HasGroupNameTemplate reports whether the profile names its deployment group.
func (p DeploymentProfile) HasGroupNameTemplate() bool {
	return p.GroupNameTemplate != ""
}

// =============================================================================
// Deployment Group Identity
// =============================================================================

// GroupIdentity addresses a deployment group within a CodeDeploy application.
type GroupIdentity struct {
	ApplicationName string
	GroupName       string
}

func (g GroupIdentity) String() string {
	return g.ApplicationName + "/" + g.GroupName
}

// =============================================================================
// Revision
// =============================================================================

// RevisionProvider identifies where CodeDeploy fetches a revision from.
type RevisionProvider string

const (
	RevisionProviderGitHub RevisionProvider = "GitHub"
)

// Revision is the source-control revision a deployment installs.
type Revision struct {
	Provider   RevisionProvider
	CommitID   string
	Repository string // "owner/name"
}

// GitHubRevision returns a GitHub-hosted revision.
func GitHubRevision(commitID, repository string) Revision {
	return Revision{
		Provider:   RevisionProviderGitHub,
		CommitID:   commitID,
		Repository: repository,
	}
}

// FormatRunNumber renders an optional run number for logs.
func FormatRunNumber(runNumber *int64) string {
	if runNumber == nil {
		return ""
	}
	return strconv.FormatInt(*runNumber, 10)
}
