// Package ports defines interfaces for external service communication.
package ports

import (
	"context"
	"time"

	"github.com/ersonp/compliance-core/internal/domain/entities"
)

// ComplianceStore is the persistence store the engine reads snapshots from
// and sends its explicit writes to. No operation spans more than one entity.
type ComplianceStore interface {
	// ListRules returns every rule.
	ListRules(ctx context.Context) ([]entities.Rule, error)

	// ListRecentChecks returns up to limit checks, most recent first,
	// joined with rule and subject names.
	ListRecentChecks(ctx context.Context, limit int) ([]entities.Check, error)

	// ListCases returns every case joined with its subject name.
	ListCases(ctx context.Context) ([]entities.Case, error)

	// ListDocuments returns every document joined with its subject name.
	// DaysUntilExpiry is never populated by the store.
	ListDocuments(ctx context.Context) ([]entities.Document, error)

	// SetRuleEnabled writes a rule's enabled flag.
	SetRuleEnabled(ctx context.Context, ruleID string, enabled bool) error

	// UpdateCaseStatus writes a case status change guarded by revision.
	UpdateCaseStatus(ctx context.Context, update CaseStatusUpdate) error

	// InsertCaseComment appends a comment to a case.
	InsertCaseComment(ctx context.Context, comment *entities.CaseComment) error

	// ListCaseComments returns a case's comments, oldest first.
	ListCaseComments(ctx context.Context, caseID string) ([]entities.CaseComment, error)
}

// CaseStatusUpdate carries a single case status write.
// A nil ResolvedAt leaves the stored resolution timestamp unchanged.
type CaseStatusUpdate struct {
	CaseID           string
	Status           entities.CaseStatus
	ResolvedAt       *time.Time
	UpdatedAt        time.Time
	ExpectedRevision int
}

// RecordWriter seeds records into the store (used by import).
type RecordWriter interface {
	SaveSubject(ctx context.Context, subject *entities.Subject) error
	SaveRule(ctx context.Context, rule *entities.Rule) error
	SaveCheck(ctx context.Context, check *entities.Check) error
	SaveCase(ctx context.Context, c *entities.Case) error
	SaveDocument(ctx context.Context, doc *entities.Document) error

	// Exists reports whether a record of the given kind and ID is stored.
	Exists(ctx context.Context, kind, id string) (bool, error)
}

// SchemaManager prepares a store for use.
type SchemaManager interface {
	EnsureSchema(ctx context.Context) error
	Close() error
}
