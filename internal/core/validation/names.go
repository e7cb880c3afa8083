package validation

import (
	"regexp"

	"github.com/artpar/promoter/internal/core/domain"
)

// =============================================================================
// Name Validation Functions
// =============================================================================

var (
	applicationNamePattern = regexp.MustCompile(`^[A-Za-z0-9._+=,@-]{1,100}$`)
	repositoryNamePattern  = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
)

// ConfirmationWord must be typed to start a manual deployment.
const ConfirmationWord = "yes"

// ValidateApplicationName checks a CodeDeploy application name.
//
// Example:
//
//	field, msg := ValidateApplicationName("Hello-World") // "", ""
func ValidateApplicationName(name string) (field, message string) {
	if name == "" {
		return "application", "application name is required"
	}
	if !applicationNamePattern.MatchString(name) {
		return "application", "invalid CodeDeploy application name"
	}
	return "", ""
}

// ValidateRepositoryName checks a full repository name like "octocat/example".
func ValidateRepositoryName(name string) (field, message string) {
	if name == "" {
		return "repository", "repository name is required"
	}
	if !repositoryNamePattern.MatchString(name) {
		return "repository", `invalid repository name, expected "owner/name"`
	}
	return "", ""
}

// ValidateConfirmation checks that the user explicitly agreed to deploy.
func ValidateConfirmation(answer string) (field, message string) {
	if answer != ConfirmationWord {
		return "confirm", `must respond "yes" to continue`
	}
	return "", ""
}

// ValidateGroupTarget checks the fields needed to name a deployment group.
// The lookup key falls back to the branch, so only the result is checked.
func ValidateGroupTarget(t domain.Trigger) (field, message string) {
	if f, m := ValidateApplicationName(t.ApplicationName); f != "" {
		return f, m
	}
	if t.BranchName == "" {
		return "branch", "branch name is required"
	}
	if t.LookupKey() == "" {
		return "config_name", "config lookup name is required"
	}
	return "", ""
}

// ValidateTrigger checks the fields every deployment needs.
func ValidateTrigger(t domain.Trigger) (field, message string) {
	if f, m := ValidateGroupTarget(t); f != "" {
		return f, m
	}
	if t.FullRepositoryName == "" {
		return "repository", "repository name is required"
	}
	if t.CommitID == "" {
		return "commit", "commit id is required"
	}
	return "", ""
}
