// Package gitinfo discovers the branch, commit and GitHub repository of a
// local checkout.
package gitinfo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	giturls "github.com/whilp/git-urls"
)

var (
	ErrNotRepository = errors.New("not a git repository")
	ErrInvalidRemote = errors.New("remote is not a GitHub repository")
)

// Runner runs git with args and returns trimmed stdout.
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

// ExecRunner runs the git binary found in PATH.
func ExecRunner(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Info describes the checked out commit.
type Info struct {
	Branch     string
	CommitID   string
	RemoteURL  string // empty without an origin remote
	Repository Repository
}

// Repository is a GitHub repository parsed from a remote URL.
type Repository struct {
	Host  string
	Owner string
	Name  string
}

// FullName returns "owner/name", or "" when unknown.
func (r Repository) FullName() string {
	if r.Owner == "" || r.Name == "" {
		return ""
	}
	return r.Owner + "/" + r.Name
}

// Discover reads branch, commit and origin remote of the checkout in dir.
// A missing or unparseable origin leaves Repository empty.
func Discover(ctx context.Context, run Runner, dir string) (*Info, error) {
	if run == nil {
		run = ExecRunner
	}

	branch, err := run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	commit, err := run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepository, err)
	}

	info := &Info{Branch: branch, CommitID: commit}

	remote, err := run(ctx, dir, "remote", "get-url", "--push", "origin")
	if err != nil || remote == "" {
		return info, nil
	}
	info.RemoteURL = remote
	if repo, err := ParseRemote(remote); err == nil {
		info.Repository = repo
	}
	return info, nil
}

// ParseRemote extracts owner and name from an ssh, scp-like or https remote.
//
// Example:
//
//	ParseRemote("git@github.com:octocat/Hello-World.git")
//	// returns Repository{Host: "github.com", Owner: "octocat", Name: "Hello-World"}
func ParseRemote(remote string) (Repository, error) {
	u, err := giturls.Parse(remote)
	if err != nil {
		return Repository{}, fmt.Errorf("%w: %v", ErrInvalidRemote, err)
	}

	path := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("%w: %s", ErrInvalidRemote, remote)
	}
	if u.Host != "github.com" {
		return Repository{}, fmt.Errorf("%w: host %s", ErrInvalidRemote, u.Host)
	}

	return Repository{Host: u.Host, Owner: parts[0], Name: parts[1]}, nil
}
