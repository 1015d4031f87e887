// Package parsers provides parsers for importing compliance records from various formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// Record kinds accepted by the CSV parser.
const (
	KindSubjects  = "subjects"
	KindRules     = "rules"
	KindChecks    = "checks"
	KindCases     = "cases"
	KindDocuments = "documents"
)

// Kinds lists the record kinds in import order.
var Kinds = []string{KindSubjects, KindRules, KindChecks, KindCases, KindDocuments}

// RawSubject is a subject parsed from an external source before validation.
type RawSubject struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	LineNum int    `json:"-"`
}

// RawRule is a rule parsed from an external source before validation.
type RawRule struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Enabled     *bool  `json:"enabled,omitempty"` // Pointer to distinguish false from unset
	LineNum     int    `json:"-"`
}

// RawCheck is a check result parsed from an external source before validation.
type RawCheck struct {
	ID        string `json:"id,omitempty"`
	RuleID    string `json:"rule_id"`
	SubjectID string `json:"subject_id"`
	Status    string `json:"status"`
	Notes     string `json:"notes,omitempty"`
	CheckedAt string `json:"checked_at,omitempty"`
	LineNum   int    `json:"-"`
}

// RawCase is a case parsed from an external source before validation.
type RawCase struct {
	ID          string `json:"id,omitempty"`
	SubjectID   string `json:"subject_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at,omitempty"`
	ResolvedAt  string `json:"resolved_at,omitempty"`
	LineNum     int    `json:"-"`
}

// RawDocument is a document parsed from an external source before validation.
type RawDocument struct {
	ID         string `json:"id,omitempty"`
	SubjectID  string `json:"subject_id"`
	Name       string `json:"name"`
	Kind       string `json:"kind,omitempty"`
	UploadedAt string `json:"uploaded_at,omitempty"`
	ExpiryDate string `json:"expiry_date,omitempty"`
	LineNum    int    `json:"-"`
}

// RawBundle holds every record parsed from one file.
type RawBundle struct {
	Subjects  []RawSubject  `json:"subjects"`
	Rules     []RawRule     `json:"rules"`
	Checks    []RawCheck    `json:"checks"`
	Cases     []RawCase     `json:"cases"`
	Documents []RawDocument `json:"documents"`
}

// Len returns the total number of records in the bundle.
func (b *RawBundle) Len() int {
	return len(b.Subjects) + len(b.Rules) + len(b.Checks) + len(b.Cases) + len(b.Documents)
}

// Parser defines the interface for parsing records from various formats.
type Parser interface {
	Parse(r io.Reader) (*RawBundle, error)
}

// IsKind reports whether kind names a record kind.
func IsKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv". CSV files hold a single record kind.
func ForFormat(format, kind string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		if !IsKind(kind) {
			return nil
		}
		return &CSVParser{Kind: kind}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename, kind string) Parser {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ForFormat(ext, kind)
}
