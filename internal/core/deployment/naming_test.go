package deployment

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artpar/promoter/internal/core/domain"
)

// =============================================================================
// SanitizeBranchName Tests
// =============================================================================

func TestSanitizeBranchName_Simple(t *testing.T) {
	assert.Equal(t, "main", SanitizeBranchName("main"))
}

func TestSanitizeBranchName_SlashAndUnderscore(t *testing.T) {
	assert.Equal(t, "feature--foo-bar", SanitizeBranchName("feature/foo_bar"))
}

func TestSanitizeBranchName_KeepsCase(t *testing.T) {
	assert.Equal(t, "Feature--ABC-123", SanitizeBranchName("Feature/ABC-123"))
}

func TestSanitizeBranchName_TableDriven(t *testing.T) {
	tests := []struct {
		name   string
		branch string
		want   string
	}{
		{"plain", "develop", "develop"},
		{"one slash", "feature/login", "feature--login"},
		{"repeated slashes", "feature//login", "feature--login"},
		{"every slash run", "a/b/c", "a--b--c"},
		{"run of specials", "fix/bug #12: crash!", "fix--bug-12-crash-"},
		{"dots", "release/1.2.3", "release--1-2-3"},
		{"unicode", "feature/über", "feature---ber"},
		{"hyphens kept", "my-branch", "my-branch"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeBranchName(tt.branch))
		})
	}
}

func TestSanitizeBranchName_OnlyLegalCharacters(t *testing.T) {
	legal := regexp.MustCompile(`^[A-Za-z0-9-]*$`)
	for _, branch := range []string{
		"feature/foo_bar",
		"users/jane.doe/experiment",
		"dependabot/npm_and_yarn/lodash-4.17.21",
		"hotfix/ß∂ƒ©",
		"a///b",
		"  spaced out  ",
	} {
		got := SanitizeBranchName(branch)
		assert.Regexp(t, legal, got, "branch %q", branch)
		assert.NotContains(t, got, "/")
	}
}

// =============================================================================
// DeploymentGroupName Tests
// =============================================================================

func TestDeploymentGroupName_NoTemplate(t *testing.T) {
	got := DeploymentGroupName(domain.DeploymentProfile{}, "feature/foo_bar", "7")
	assert.Equal(t, "feature--foo-bar", got)
}

func TestDeploymentGroupName_TableDriven(t *testing.T) {
	tests := []struct {
		name     string
		template string
		branch   string
		pr       string
		want     string
	}{
		{"fixed name", "production", "main", "", "production"},
		{"branch only", "app-$BRANCH", "feature/x", "", "app-feature--x"},
		{"branch and pr", "$BRANCH-pr$PR_NUMBER", "feature/x", "42", "feature--x-pr42"},
		{"missing pr", "preview-$PR_NUMBER", "feature/x", "", "preview-"},
		{"repeated placeholder", "$BRANCH-$BRANCH", "a/b", "", "a--b-a--b"},
		{"pr only", "pr-$PR_NUMBER", "whatever", "9", "pr-9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.DeploymentProfile{GroupNameTemplate: tt.template}
			assert.Equal(t, tt.want, DeploymentGroupName(p, tt.branch, tt.pr))
		})
	}
}

func TestGroupIdentityFor(t *testing.T) {
	pr := 17
	trig := domain.Trigger{BranchName: "feature/login", PullRequestNumber: &pr}
	p := domain.DeploymentProfile{GroupNameTemplate: "review-$PR_NUMBER"}

	got := GroupIdentityFor("Hello-World", p, trig)
	assert.Equal(t, "Hello-World", got.ApplicationName)
	assert.Equal(t, "review-17", got.GroupName)
	assert.Equal(t, "Hello-World/review-17", got.String())
}

func TestConsoleURL(t *testing.T) {
	got := ConsoleURL("d-ABC123", "eu-central-1")
	assert.Equal(t, "https://console.aws.amazon.com/codesuite/codedeploy/deployments/d-ABC123?region=eu-central-1", got)
}
