package gitinfo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemote_TableDriven(t *testing.T) {
	tests := []struct {
		remote  string
		owner   string
		name    string
		wantErr bool
	}{
		{"git@github.com:octocat/Hello-World.git", "octocat", "Hello-World", false},
		{"https://github.com/octocat/Hello-World.git", "octocat", "Hello-World", false},
		{"https://github.com/octocat/Hello-World", "octocat", "Hello-World", false},
		{"ssh://git@github.com/octocat/hello.world.git", "octocat", "hello.world", false},
		{"git@gitlab.com:octocat/Hello-World.git", "", "", true},
		{"git@github.com:octocat.git", "", "", true},
		{"https://github.com/octocat/Hello-World/extra", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			repo, err := ParseRemote(tt.remote)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRemote)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, repo.Owner)
			assert.Equal(t, tt.name, repo.Name)
			assert.Equal(t, tt.owner+"/"+tt.name, repo.FullName())
		})
	}
}

// scriptedRunner answers git invocations from a map keyed by joined args.
func scriptedRunner(answers map[string]string) Runner {
	return func(_ context.Context, _ string, args ...string) (string, error) {
		key := strings.Join(args, " ")
		if out, ok := answers[key]; ok {
			return out, nil
		}
		return "", errors.New("fatal: not a git repository")
	}
}

func TestDiscover_Checkout(t *testing.T) {
	run := scriptedRunner(map[string]string{
		"rev-parse --abbrev-ref HEAD":  "feature/login",
		"rev-parse HEAD":               "ec26c3e57ca3a959ca5aad62de7213c562f8c821",
		"remote get-url --push origin": "git@github.com:octocat/Hello-World.git",
	})

	info, err := Discover(context.Background(), run, ".")
	require.NoError(t, err)
	assert.Equal(t, "feature/login", info.Branch)
	assert.Equal(t, "ec26c3e57ca3a959ca5aad62de7213c562f8c821", info.CommitID)
	assert.Equal(t, "octocat/Hello-World", info.Repository.FullName())
}

func TestDiscover_WithoutOrigin(t *testing.T) {
	run := scriptedRunner(map[string]string{
		"rev-parse --abbrev-ref HEAD": "main",
		"rev-parse HEAD":              "abc123",
	})

	info, err := Discover(context.Background(), run, ".")
	require.NoError(t, err)
	assert.Empty(t, info.RemoteURL)
	assert.Empty(t, info.Repository.FullName())
}

func TestDiscover_NotARepository(t *testing.T) {
	_, err := Discover(context.Background(), scriptedRunner(nil), ".")
	assert.ErrorIs(t, err, ErrNotRepository)
}
