// Package outputs writes GitHub Actions step outputs.
package outputs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Output names set after a deployment.
const (
	DeploymentGroupCreated = "deploymentGroupCreated"
	DeploymentGroupName    = "deploymentGroupName"
	DeploymentID           = "deploymentId"
)

// Writer appends step outputs to the file named by GITHUB_OUTPUT. A Writer
// without a path only logs the outputs.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a writer for path, usually os.Getenv("GITHUB_OUTPUT").
func NewWriter(path string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{path: path, logger: logger}
}

// Enabled reports whether outputs reach the runner.
func (w *Writer) Enabled() bool {
	return w.path != ""
}

// Set writes one output using the heredoc form, so values may span lines.
func (w *Writer) Set(name, value string) error {
	if !w.Enabled() {
		w.logger.Debug("step output", "name", name, "value", value)
		return nil
	}

	delimiter := "ghadelimiter_" + uuid.New().String()
	if strings.Contains(name, delimiter) || strings.Contains(value, delimiter) {
		return fmt.Errorf("output %s: value contains the delimiter", name)
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter); err != nil {
		return fmt.Errorf("failed to write output %s: %w", name, err)
	}
	return nil
}

// SetAll writes outputs in the given order and stops at the first error.
func (w *Writer) SetAll(pairs ...[2]string) error {
	for _, p := range pairs {
		if err := w.Set(p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

// Flag renders a boolean the way the outputs are consumed in workflows.
func Flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
