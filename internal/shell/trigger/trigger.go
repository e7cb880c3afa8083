// Package trigger reads the GitHub Actions invocation: the event payload, the
// step inputs and the run number.
package trigger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/go-github/v28/github"

	"github.com/artpar/promoter/internal/core/domain"
)

// Step input names.
const (
	InputApplication       = "application"
	InputConfigName        = "config-name"
	InputSkipSequenceCheck = "skip-sequence-check"
)

var (
	ErrNoEventPayload = errors.New("GITHUB_EVENT_PATH is not set")
	ErrInvalidPayload = errors.New("invalid event payload")
	ErrInvalidInput   = errors.New("invalid step input")
)

// eventPayload holds the fields of push and pull_request events this tool
// reads. Only one of HeadCommit and PullRequest is set.
type eventPayload struct {
	Ref         string                  `json:"ref"`
	HeadCommit  *github.PushEventCommit `json:"head_commit"`
	PullRequest *github.PullRequest     `json:"pull_request"`
	Repository  *github.Repository      `json:"repository"`
}

// Getenv looks up an environment variable; os.Getenv in production.
type Getenv func(key string) string

// FromEnvironment builds the trigger for the running workflow.
func FromEnvironment(getenv Getenv) (domain.Trigger, error) {
	path := getenv("GITHUB_EVENT_PATH")
	if path == "" {
		return domain.Trigger{}, ErrNoEventPayload
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Trigger{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return FromPayload(data, getenv)
}

// FromPayload builds a trigger from event JSON, taking inputs and the run
// number from getenv.
func FromPayload(data []byte, getenv Getenv) (domain.Trigger, error) {
	var payload eventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.Trigger{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if payload.Repository == nil {
		return domain.Trigger{}, fmt.Errorf("%w: missing repository", ErrInvalidPayload)
	}

	var t domain.Trigger
	t.FullRepositoryName = payload.Repository.GetFullName()

	if pr := payload.PullRequest; pr != nil {
		t.CommitID = pr.GetHead().GetSHA()
		t.BranchName = pr.GetHead().GetRef()
		number := pr.GetNumber()
		t.PullRequestNumber = &number
	} else {
		t.BranchName = strings.TrimPrefix(payload.Ref, "refs/heads/")
		if payload.HeadCommit != nil && payload.HeadCommit.GetID() != "" {
			t.CommitID = payload.HeadCommit.GetID()
		} else {
			t.CommitID = getenv("GITHUB_SHA")
		}
	}

	t.ApplicationName = Input(getenv, InputApplication)
	if t.ApplicationName == "" {
		t.ApplicationName = payload.Repository.GetName()
	}
	t.ConfigLookupName = Input(getenv, InputConfigName)

	skip, err := BoolInput(getenv, InputSkipSequenceCheck)
	if err != nil {
		return domain.Trigger{}, err
	}
	t.SkipSequenceCheck = skip

	runNumber, err := RunNumber(getenv)
	if err != nil {
		return domain.Trigger{}, err
	}
	t.RunNumber = runNumber

	return t, nil
}

// =============================================================================
// Inputs
// =============================================================================

// Input returns a step input. The runner exposes input "config-name" as
// INPUT_CONFIG-NAME.
func Input(getenv Getenv, name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	return strings.TrimSpace(getenv(key))
}

// BoolInput parses a boolean step input. Empty means false; anything other
// than true/false in lower, title or upper case is an error.
func BoolInput(getenv Getenv, name string) (bool, error) {
	switch v := Input(getenv, name); v {
	case "":
		return false, nil
	case "true", "True", "TRUE":
		return true, nil
	case "false", "False", "FALSE":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s: %q is not one of true or false", ErrInvalidInput, name, v)
	}
}

// RunNumber reads the workflow run number. It returns nil when it is not set.
func RunNumber(getenv Getenv) (*int64, error) {
	raw := getenv("github_run_number")
	if raw == "" {
		raw = getenv("GITHUB_RUN_NUMBER")
	}
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: run number %q: %v", ErrInvalidInput, raw, err)
	}
	return &n, nil
}

// MapEnv adapts a map to Getenv.
func MapEnv(env map[string]string) Getenv {
	return func(key string) string { return env[key] }
}
