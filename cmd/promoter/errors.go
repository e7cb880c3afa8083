package main

import (
	"errors"
	"fmt"

	"github.com/artpar/promoter/internal/core/branchconfig"
	"github.com/artpar/promoter/internal/core/domain"
	"github.com/artpar/promoter/internal/shell/promotion"
	"github.com/artpar/promoter/internal/shell/trigger"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitConfigError = 2
)

// CommandError carries the exit code for a failed command.
type CommandError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// configErrors are failures the user fixes by changing input or setup.
var configErrors = []error{
	branchconfig.ErrConfigUnreadable,
	branchconfig.ErrEmptyLookupKey,
	promotion.ErrInvalidTrigger,
	trigger.ErrNoEventPayload,
	trigger.ErrInvalidPayload,
	trigger.ErrInvalidInput,
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode != 0 {
		return cmdErr.ExitCode
	}
	for _, target := range configErrors {
		if errors.Is(err, target) {
			return ExitConfigError
		}
	}
	return ExitFailure
}

// describe names the failure class for the final log line.
func describe(err error) string {
	switch {
	case errors.Is(err, promotion.ErrSequencingRejected):
		return "sequencing check rejected deployment"
	case errors.Is(err, promotion.ErrConcurrencyExceeded):
		return "gave up waiting for concurrent deployments"
	case errors.Is(err, domain.ErrDeploymentFailed):
		return "deployment failed"
	case errors.Is(err, domain.ErrDeploymentTimedOut):
		return "deployment timed out"
	case errors.Is(err, domain.ErrUnhandled):
		return "unhandled exception"
	case exitCode(err) == ExitConfigError:
		return "configuration error"
	}
	var unrecognized *promotion.UnrecognizedConflictError
	if errors.As(err, &unrecognized) {
		return "unrecognized conflict message"
	}
	return "command failed"
}

var (
	errWantedNoArgs = &CommandError{Op: "parse arguments", Err: errors.New("expected no (non-flag) arguments"), ExitCode: ExitConfigError}
	errAborted      = errors.New("aborted")
)
