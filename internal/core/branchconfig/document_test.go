package branchconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAppSpec = `
version: 0.0
os: linux
branch_config:
  release:
    deploymentGroupName: production
    deploymentGroupConfig:
      serviceRoleArn: arn:aws:iam::123456789012:role/CodeDeploy
      ec2TagFilters:
        - Key: Environment
          Type: KEY_AND_VALUE
          Value: production
    deploymentConfig:
      autoRollbackConfiguration:
        enabled: true
        events:
          - DEPLOYMENT_FAILURE
  rel.*:
    deploymentGroupName: prerelease-$BRANCH
  staging:
  feature/.*:
    deploymentGroupName: $BRANCH-pr$PR_NUMBER
    deploymentGroupConfig:
      deploymentConfigName: CodeDeployDefault.AllAtOnce
`

// =============================================================================
// Parse Tests
// =============================================================================

func TestParse_KeepsDocumentOrder(t *testing.T) {
	doc, err := Parse([]byte(sampleAppSpec))
	require.NoError(t, err)

	require.Len(t, doc.Entries, 4)
	assert.Equal(t, "release", doc.Entries[0].Pattern)
	assert.Equal(t, "rel.*", doc.Entries[1].Pattern)
	assert.Equal(t, "staging", doc.Entries[2].Pattern)
	assert.Equal(t, "feature/.*", doc.Entries[3].Pattern)
}

func TestParse_DecodesProfile(t *testing.T) {
	doc, err := Parse([]byte(sampleAppSpec))
	require.NoError(t, err)

	p := doc.Entries[0].Profile
	assert.Equal(t, "release", p.Key)
	assert.Equal(t, "production", p.GroupNameTemplate)
	assert.Equal(t, "arn:aws:iam::123456789012:role/CodeDeploy", p.GroupConfig["serviceRoleArn"])

	filters, ok := p.GroupConfig["ec2TagFilters"].([]any)
	require.True(t, ok)
	require.Len(t, filters, 1)

	rollback, ok := p.DeploymentConfig["autoRollbackConfiguration"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, rollback["enabled"])
}

func TestParse_NullEntryIsEmpty(t *testing.T) {
	doc, err := Parse([]byte(sampleAppSpec))
	require.NoError(t, err)

	assert.True(t, doc.Entries[2].Empty)
	assert.False(t, doc.Entries[0].Empty)
}

func TestParse_ExplicitNullForms(t *testing.T) {
	for _, value := range []string{"", "~", "null"} {
		t.Run("value="+value, func(t *testing.T) {
			doc, err := Parse([]byte("branch_config:\n  staging: " + value + "\n"))
			require.NoError(t, err)
			require.Len(t, doc.Entries, 1)
			assert.True(t, doc.Entries[0].Empty)
		})
	}
}

func TestParse_EmptyMappingIsNotSkip(t *testing.T) {
	doc, err := Parse([]byte("branch_config:\n  main: {}\n"))
	require.NoError(t, err)

	require.Len(t, doc.Entries, 1)
	assert.False(t, doc.Entries[0].Empty)
	assert.Equal(t, "", doc.Entries[0].Profile.GroupNameTemplate)
}

func TestParse_MissingSectionHasNoEntries(t *testing.T) {
	doc, err := Parse([]byte("version: 0.0\nos: linux\n"))
	require.NoError(t, err)
	assert.Empty(t, doc.Entries)

	_, err = doc.Resolve("main")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty document", ""},
		{"invalid yaml", "branch_config: [unclosed"},
		{"top level list", "- a\n- b\n"},
		{"section is a list", "branch_config:\n  - main\n"},
		{"entry is a scalar", "branch_config:\n  main: production\n"},
		{"entry is a list", "branch_config:\n  main:\n    - a\n"},
		{"invalid pattern", "branch_config:\n  \"feature/(\":\n    deploymentGroupName: x\n"},
		{"group config not a mapping", "branch_config:\n  main:\n    deploymentGroupConfig: nope\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfigUnreadable)
			assert.False(t, IsSkip(err))
		})
	}
}

// =============================================================================
// Resolve Tests
// =============================================================================

func TestResolve_FirstMatchWins(t *testing.T) {
	doc, err := Parse([]byte(sampleAppSpec))
	require.NoError(t, err)

	p, err := doc.Resolve("release")
	require.NoError(t, err)
	assert.Equal(t, "release", p.Key)
	assert.Equal(t, "production", p.GroupNameTemplate)
}

func TestResolve_LaterPatternWhenEarlierDoesNotMatch(t *testing.T) {
	doc, err := Parse([]byte(sampleAppSpec))
	require.NoError(t, err)

	p, err := doc.Resolve("release-2024")
	require.NoError(t, err)
	assert.Equal(t, "rel.*", p.Key)
}

func TestResolve_CaseInsensitive(t *testing.T) {
	doc, err := Parse([]byte(sampleAppSpec))
	require.NoError(t, err)

	p, err := doc.Resolve("Feature/Login")
	require.NoError(t, err)
	assert.Equal(t, "feature/.*", p.Key)
}

func TestResolve_AnchoredAtBothEnds(t *testing.T) {
	doc, err := Parse([]byte("branch_config:\n  main:\n    deploymentGroupName: x\n  a|b:\n    deploymentGroupName: y\n"))
	require.NoError(t, err)

	_, err = doc.Resolve("mainline")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = doc.Resolve("not-main")
	assert.ErrorIs(t, err, ErrNotFound)

	// Alternation is grouped, so "ab" matches neither side.
	_, err = doc.Resolve("ab")
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := doc.Resolve("b")
	require.NoError(t, err)
	assert.Equal(t, "y", p.GroupNameTemplate)
}

func TestResolve_EmptyEntryIsSkip(t *testing.T) {
	doc, err := Parse([]byte(sampleAppSpec))
	require.NoError(t, err)

	p, err := doc.Resolve("staging")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrEmptyProfile)
	assert.True(t, IsSkip(err))
	assert.NotErrorIs(t, err, ErrConfigUnreadable)
}

func TestResolve_NoMatchIsSkip(t *testing.T) {
	doc, err := Parse([]byte(sampleAppSpec))
	require.NoError(t, err)

	p, err := doc.Resolve("hotfix/urgent")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsSkip(err))
}

func TestResolve_EmptyLookupKey(t *testing.T) {
	doc, err := Parse([]byte(sampleAppSpec))
	require.NoError(t, err)

	_, err = doc.Resolve("")
	assert.ErrorIs(t, err, ErrEmptyLookupKey)
	assert.False(t, IsSkip(err))
}

func TestResolve_ReturnsCopy(t *testing.T) {
	doc, err := Parse([]byte(sampleAppSpec))
	require.NoError(t, err)

	p, err := doc.Resolve("release")
	require.NoError(t, err)
	p.GroupNameTemplate = "changed"

	again, err := doc.Resolve("release")
	require.NoError(t, err)
	assert.Equal(t, "production", again.GroupNameTemplate)
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appspec.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleAppSpec), 0644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, doc.Entries, 4)
}

func TestLoad_MissingFileHasHint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appspec.yml")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigUnreadable)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, path, cfgErr.Path)
	assert.Contains(t, cfgErr.Hint, "actions/checkout")
	assert.Contains(t, err.Error(), "file not found")
}

func TestLoad_ParseErrorCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appspec.yml")
	require.NoError(t, os.WriteFile(path, []byte("branch_config: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, path, cfgErr.Path)
}
