package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ersonp/compliance-core/internal/domain/entities"
)

// recordTables maps record kinds to their tables.
var recordTables = map[string]string{
	"subject":  "subjects",
	"rule":     "rules",
	"check":    "checks",
	"case":     "cases",
	"document": "documents",
}

// SaveSubject inserts a subject.
func (r *Repository) SaveSubject(ctx context.Context, subject *entities.Subject) error {
	query := `INSERT INTO subjects (id, name, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, subject.ID, subject.Name, subject.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("saving subject: %w", err)
	}
	return nil
}

// SaveRule inserts a rule.
func (r *Repository) SaveRule(ctx context.Context, rule *entities.Rule) error {
	query := `
		INSERT INTO rules (id, name, description, category, severity, enabled, revision, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.Name,
		rule.Description,
		string(rule.Category),
		string(rule.Severity),
		rule.Enabled,
		rule.Revision,
		rule.CreatedAt.UTC(),
		rule.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving rule: %w", err)
	}
	return nil
}

// SaveCheck inserts a check result.
func (r *Repository) SaveCheck(ctx context.Context, check *entities.Check) error {
	query := `
		INSERT INTO checks (id, rule_id, subject_id, status, notes, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		check.ID,
		check.RuleID,
		check.SubjectID,
		string(check.Status),
		check.Notes,
		check.CheckedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving check: %w", err)
	}
	return nil
}

// SaveCase inserts a case.
func (r *Repository) SaveCase(ctx context.Context, c *entities.Case) error {
	var resolvedAt any
	if c.ResolvedAt != nil {
		resolvedAt = c.ResolvedAt.UTC()
	}

	query := `
		INSERT INTO cases (id, subject_id, title, description, priority, status, revision, created_at, updated_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.SubjectID,
		c.Title,
		c.Description,
		string(c.Priority),
		string(c.Status),
		c.Revision,
		c.CreatedAt.UTC(),
		c.UpdatedAt.UTC(),
		resolvedAt,
	)
	if err != nil {
		return fmt.Errorf("saving case: %w", err)
	}
	return nil
}

// SaveDocument inserts a document. The expiry date is stored as RFC 3339 text.
func (r *Repository) SaveDocument(ctx context.Context, doc *entities.Document) error {
	var expiry any
	if doc.ExpiryDate != nil {
		expiry = doc.ExpiryDate.UTC().Format(time.RFC3339)
	}

	query := `
		INSERT INTO documents (id, subject_id, name, kind, uploaded_at, expiry_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.SubjectID,
		doc.Name,
		doc.Kind,
		doc.UploadedAt.UTC(),
		expiry,
	)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Exists reports whether a record of the given kind and ID is stored.
func (r *Repository) Exists(ctx context.Context, kind, id string) (bool, error) {
	table, ok := recordTables[kind]
	if !ok {
		return false, fmt.Errorf("unknown record kind %q", kind)
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = ?`, table)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return false, fmt.Errorf("checking %s existence: %w", kind, err)
	}
	return count > 0, nil
}
