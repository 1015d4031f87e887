package entities

import "time"

// CheckStatus is the outcome of evaluating a rule against a subject.
type CheckStatus string

const (
	CheckPass        CheckStatus = "pass"
	CheckFail        CheckStatus = "fail"
	CheckWarning     CheckStatus = "warning"
	CheckNeedsReview CheckStatus = "needs-review"
)

// IsValid reports whether s is one of the fixed check statuses.
func (s CheckStatus) IsValid() bool {
	switch s {
	case CheckPass, CheckFail, CheckWarning, CheckNeedsReview:
		return true
	default:
		return false
	}
}

// Check is one evaluation of a rule against a subject. Checks are append-only.
type Check struct {
	ID          string      `json:"id"`
	RuleID      string      `json:"rule_id"`
	RuleName    string      `json:"rule_name,omitempty"`
	SubjectID   string      `json:"subject_id"`
	SubjectName string      `json:"subject_name,omitempty"`
	Status      CheckStatus `json:"status"`
	Notes       string      `json:"notes,omitempty"`
	CheckedAt   time.Time   `json:"checked_at"`
}
