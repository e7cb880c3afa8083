package deployment

import "regexp"

// =============================================================================
// Conflicting Deployment Matchers
// =============================================================================

// ConflictMatcher recognizes one wording of CodeDeploy's
// DeploymentLimitExceededException message and extracts the id of the
// deployment that is already active. The wording is owned by the service and
// has changed between API versions, so matchers are kept as a list.
type ConflictMatcher struct {
	Name    string
	Pattern *regexp.Regexp // first submatch is the deployment id
}

// Match returns the conflicting deployment id, or false when the message has
// a different shape.
func (m ConflictMatcher) Match(message string) (string, bool) {
	sub := m.Pattern.FindStringSubmatch(message)
	if len(sub) < 2 || sub[1] == "" {
		return "", false
	}
	return sub[1], true
}

var (
	// "The deployment group my-group is already deploying deployment 'd-ABC123'."
	// Newer responses drop the second "deployment".
	AlreadyDeployingMatcher = ConflictMatcher{
		Name:    "already-deploying",
		Pattern: regexp.MustCompile(`is already deploying (?:deployment )?'(d-\w+)'`),
	}

	// "Deployment group my-group already has an active Deployment 'd-ABC123'"
	ActiveDeploymentMatcher = ConflictMatcher{
		Name:    "active-deployment",
		Pattern: regexp.MustCompile(`already has an active Deployment '(d-\w+)'`),
	}
)

// DefaultConflictMatchers returns the message shapes known to this version.
func DefaultConflictMatchers() []ConflictMatcher {
	return []ConflictMatcher{AlreadyDeployingMatcher, ActiveDeploymentMatcher}
}

// ConflictMatch is the result of a successful extraction.
type ConflictMatch struct {
	DeploymentID string
	Matcher      string
}

// ExtractConflictingDeployment tries each matcher in order. It reports false
// when no matcher recognizes the message.
func ExtractConflictingDeployment(message string, matchers []ConflictMatcher) (ConflictMatch, bool) {
	for _, m := range matchers {
		if id, ok := m.Match(message); ok {
			return ConflictMatch{DeploymentID: id, Matcher: m.Name}, true
		}
	}
	return ConflictMatch{}, false
}
