package entities

import "time"

// Document is a compliance artifact uploaded for a subject.
type Document struct {
	ID          string     `json:"id"`
	SubjectID   string     `json:"subject_id"`
	SubjectName string     `json:"subject_name,omitempty"`
	Name        string     `json:"name"`
	Kind        string     `json:"kind,omitempty"`
	UploadedAt  time.Time  `json:"uploaded_at"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`

	// DaysUntilExpiry is derived on every read and never stored.
	// It is nil when the document has no usable expiry date.
	DaysUntilExpiry *int `json:"days_until_expiry,omitempty"`
}
