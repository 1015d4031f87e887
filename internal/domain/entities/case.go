package entities

import "time"

// CaseStatus is the lifecycle state of a case.
type CaseStatus string

const (
	CaseOpen        CaseStatus = "open"
	CaseUnderReview CaseStatus = "under-review"
	CaseResolved    CaseStatus = "resolved"
)

// IsValid reports whether s is a known case status.
func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseOpen, CaseUnderReview, CaseResolved:
		return true
	default:
		return false
	}
}

// IsPending reports whether a case in this status still needs work.
func (s CaseStatus) IsPending() bool {
	return s == CaseOpen || s == CaseUnderReview
}

// Priority orders cases and actions.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Case is a tracked investigation or remediation item tied to a subject.
// ResolvedAt is stamped when the case moves to resolved.
type Case struct {
	ID          string     `json:"id"`
	SubjectID   string     `json:"subject_id"`
	SubjectName string     `json:"subject_name,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      CaseStatus `json:"status"`
	Revision    int        `json:"revision"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// CaseComment is a note attached to a case.
type CaseComment struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
