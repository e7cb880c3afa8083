package domain

import "strconv"

// =============================================================================
// Trigger
// =============================================================================

// Trigger describes one pipeline invocation: what to deploy and from where.
type Trigger struct {
	ApplicationName    string // CodeDeploy application
	FullRepositoryName string // "owner/name"
	BranchName         string
	PullRequestNumber  *int
	ConfigLookupName   string // overrides BranchName when matching branch_config
	CommitID           string
	RunNumber          *int64
	SkipSequenceCheck  bool
}

// LookupKey returns the string matched against branch_config entry names.
func (t Trigger) LookupKey() string {
	if t.ConfigLookupName != "" {
		return t.ConfigLookupName
	}
	return t.BranchName
}

// IsPullRequest reports whether the invocation was triggered by a pull request.
func (t Trigger) IsPullRequest() bool {
	return t.PullRequestNumber != nil
}

// PullRequest returns the pull request number as a string, or "" when absent.
func (t Trigger) PullRequest() string {
	if t.PullRequestNumber == nil {
		return ""
	}
	return strconv.Itoa(*t.PullRequestNumber)
}

// SequencingEnabled reports whether the run-number guard applies to this invocation.
func (t Trigger) SequencingEnabled() bool {
	return t.RunNumber != nil && !t.SkipSequenceCheck
}
