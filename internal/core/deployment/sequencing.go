package deployment

// =============================================================================
// Sequencing Decision
// =============================================================================

// SequenceCheck is the outcome of comparing the current run number with the
// one stamped on the group's last attempted deployment.
type SequenceCheck struct {
	LastRunNumber int64
	Found         bool // last description carried a run number
	Allowed       bool
}

// CheckSequence decides whether run currentRunNumber may deploy after a
// deployment described by lastDescription. Only a strictly newer stamped run
// number blocks it; a missing stamp never does.
//
// Example:
//
//	CheckSequence("Created by promoter (run_number=41)", 40).Allowed // false
//	CheckSequence("Created by promoter (run_number=41)", 41).Allowed // true
//	CheckSequence("manual deployment", 40).Allowed                   // true
func CheckSequence(lastDescription string, currentRunNumber int64) SequenceCheck {
	last, found := ExtractRunNumber(lastDescription)
	if !found {
		return SequenceCheck{Allowed: true}
	}
	return SequenceCheck{
		LastRunNumber: last,
		Found:         true,
		Allowed:       last <= currentRunNumber,
	}
}
