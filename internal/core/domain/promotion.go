package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Promotion Outcome
// =============================================================================

// Outcome is how a single invocation ended.
type Outcome string

const (
	OutcomeSucceeded    Outcome = "succeeded"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeGroupDeleted Outcome = "group_deleted"
	OutcomeRejected     Outcome = "rejected"
	OutcomeFailed       Outcome = "failed"
)

// IsSuccess reports whether the invocation should exit with status zero.
func (o Outcome) IsSuccess() bool {
	return o == OutcomeSucceeded || o == OutcomeSkipped || o == OutcomeGroupDeleted
}

// Command names recorded in the journal.
const (
	CommandDeploy      = "deploy"
	CommandDeleteGroup = "delete-group"
)

// =============================================================================
// Promotion Record
// =============================================================================

// PromotionRecord is one journal entry describing an invocation.
type PromotionRecord struct {
	ID              string
	Command         string
	ApplicationName string
	GroupName       string
	BranchName      string
	CommitID        string
	RunNumber       *int64
	DeploymentID    string
	GroupCreated    bool
	Outcome         Outcome
	Message         string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// NewPromotionRecord starts a record for the given command and trigger.
func NewPromotionRecord(command string, t Trigger, now time.Time) PromotionRecord {
	return PromotionRecord{
		ID:              "prom_" + uuid.New().String()[:8],
		Command:         command,
		ApplicationName: t.ApplicationName,
		BranchName:      t.BranchName,
		CommitID:        t.CommitID,
		RunNumber:       t.RunNumber,
		StartedAt:       now,
	}
}

// Duration returns how long the invocation ran.
func (r PromotionRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
