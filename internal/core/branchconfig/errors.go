package branchconfig

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Skip conditions: the invocation ends without deploying and without failing.
	ErrNotFound     = errors.New("no matching branch_config entry")
	ErrEmptyProfile = errors.New("branch_config entry is empty")

	// Hard failures.
	ErrConfigUnreadable = errors.New("appspec.yml is unreadable")
	ErrEmptyLookupKey   = errors.New("lookup key is empty")
)

// ConfigError wraps errors with context about where loading or resolving failed.
type ConfigError struct {
	Path    string // file path, empty when parsing in-memory data
	Field   string // e.g. "branch_config.feature/.*"
	Message string
	Hint    string // remediation shown to the user
	Err     error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s (hint: %s)", msg, e.Hint)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// IsSkip reports whether err means "deploy nothing" rather than a failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmptyProfile)
}
