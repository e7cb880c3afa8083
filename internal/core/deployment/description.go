package deployment

import (
	"fmt"
	"regexp"
	"strconv"
)

// =============================================================================
// Run Number Stamp
// =============================================================================

// DefaultDescriptionPrefix starts the description of deployments this tool creates.
const DefaultDescriptionPrefix = "Created by promoter"

var runNumberPattern = regexp.MustCompile(`run_number=(\d+)`)

// Description stamps the run number into a deployment description so later
// runs can read it back. Without a run number the description is empty.
//
// Example:
//
//	Description("Created by promoter", &n) // "Created by promoter (run_number=42)"
func Description(prefix string, runNumber *int64) string {
	if runNumber == nil {
		return ""
	}
	if prefix == "" {
		prefix = DefaultDescriptionPrefix
	}
	return fmt.Sprintf("%s (run_number=%d)", prefix, *runNumber)
}

// ExtractRunNumber reads the run number stamped into a deployment description.
// It reports false when the description carries none, for example when the
// deployment was created by another tool.
func ExtractRunNumber(description string) (int64, bool) {
	m := runNumberPattern.FindStringSubmatch(description)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
