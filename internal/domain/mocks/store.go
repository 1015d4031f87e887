// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
)

// Store is an in-memory mock of ports.ComplianceStore and ports.RecordWriter.
type Store struct {
	mu sync.Mutex

	Subjects  []entities.Subject
	Rules     []entities.Rule
	Checks    []entities.Check
	Cases     []entities.Case
	Documents []entities.Document
	Comments  []entities.CaseComment

	// Per-read errors
	RulesErr     error
	ChecksErr    error
	CasesErr     error
	DocumentsErr error
	CommentsErr  error

	// WriteErr fails every write operation.
	WriteErr error

	// CheckLimits records the limit passed to each ListRecentChecks call.
	CheckLimits []int
}

// NewStore creates an empty mock store.
func NewStore() *Store {
	return &Store{}
}

// ListRules returns a copy of the configured rules.
func (m *Store) ListRules(_ context.Context) ([]entities.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RulesErr != nil {
		return nil, m.RulesErr
	}
	return append([]entities.Rule(nil), m.Rules...), nil
}

// ListRecentChecks returns up to limit checks in stored order.
func (m *Store) ListRecentChecks(_ context.Context, limit int) ([]entities.Check, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckLimits = append(m.CheckLimits, limit)
	if m.ChecksErr != nil {
		return nil, m.ChecksErr
	}
	checks := m.Checks
	if limit > 0 && len(checks) > limit {
		checks = checks[:limit]
	}
	return append([]entities.Check(nil), checks...), nil
}

// ListCases returns a copy of the configured cases.
func (m *Store) ListCases(_ context.Context) ([]entities.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CasesErr != nil {
		return nil, m.CasesErr
	}
	return append([]entities.Case(nil), m.Cases...), nil
}

// ListDocuments returns a copy of the configured documents.
func (m *Store) ListDocuments(_ context.Context) ([]entities.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DocumentsErr != nil {
		return nil, m.DocumentsErr
	}
	docs := make([]entities.Document, len(m.Documents))
	copy(docs, m.Documents)
	for i := range docs {
		docs[i].DaysUntilExpiry = nil
	}
	return docs, nil
}

// SetRuleEnabled updates the enabled flag of a stored rule.
func (m *Store) SetRuleEnabled(_ context.Context, ruleID string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	for i := range m.Rules {
		if m.Rules[i].ID == ruleID {
			m.Rules[i].Enabled = enabled
			m.Rules[i].Revision++
			return nil
		}
	}
	return entities.ErrNotFound
}

// UpdateCaseStatus applies a status update with a revision check.
func (m *Store) UpdateCaseStatus(_ context.Context, update ports.CaseStatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	for i := range m.Cases {
		c := &m.Cases[i]
		if c.ID != update.CaseID {
			continue
		}
		if c.Revision != update.ExpectedRevision {
			return entities.ErrConflict
		}
		c.Status = update.Status
		c.UpdatedAt = update.UpdatedAt
		if update.ResolvedAt != nil {
			resolved := *update.ResolvedAt
			c.ResolvedAt = &resolved
		}
		c.Revision++
		return nil
	}
	return entities.ErrNotFound
}

// InsertCaseComment appends a comment.
func (m *Store) InsertCaseComment(_ context.Context, comment *entities.CaseComment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Comments = append(m.Comments, *comment)
	return nil
}

// ListCaseComments returns the comments of one case.
func (m *Store) ListCaseComments(_ context.Context, caseID string) ([]entities.CaseComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CommentsErr != nil {
		return nil, m.CommentsErr
	}
	var result []entities.CaseComment
	for _, c := range m.Comments {
		if c.CaseID == caseID {
			result = append(result, c)
		}
	}
	return result, nil
}

// Record writer methods.

// SaveSubject stores a subject.
func (m *Store) SaveSubject(_ context.Context, subject *entities.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Subjects = append(m.Subjects, *subject)
	return nil
}

// SaveRule stores a rule.
func (m *Store) SaveRule(_ context.Context, rule *entities.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Rules = append(m.Rules, *rule)
	return nil
}

// SaveCheck stores a check.
func (m *Store) SaveCheck(_ context.Context, check *entities.Check) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Checks = append(m.Checks, *check)
	return nil
}

// SaveCase stores a case.
func (m *Store) SaveCase(_ context.Context, c *entities.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Cases = append(m.Cases, *c)
	return nil
}

// SaveDocument stores a document.
func (m *Store) SaveDocument(_ context.Context, doc *entities.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Documents = append(m.Documents, *doc)
	return nil
}

// Exists reports whether a record with the given kind and ID is stored.
func (m *Store) Exists(_ context.Context, kind, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case "subject":
		for _, s := range m.Subjects {
			if s.ID == id {
				return true, nil
			}
		}
	case "rule":
		for _, r := range m.Rules {
			if r.ID == id {
				return true, nil
			}
		}
	case "check":
		for _, c := range m.Checks {
			if c.ID == id {
				return true, nil
			}
		}
	case "case":
		for _, c := range m.Cases {
			if c.ID == id {
				return true, nil
			}
		}
	case "document":
		for _, d := range m.Documents {
			if d.ID == id {
				return true, nil
			}
		}
	}
	return false, nil
}
