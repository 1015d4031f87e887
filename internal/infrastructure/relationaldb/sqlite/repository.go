// Package sqlite provides a SQLite implementation of the compliance store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
	"github.com/ersonp/compliance-core/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// expiryLayouts are the accepted layouts for stored expiry dates.
var expiryLayouts = []string{time.RFC3339Nano, time.DateOnly}

// Repository implements ports.ComplianceStore and ports.RecordWriter using SQLite.
type Repository struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig, logger *zap.Logger) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Pragmas and :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:     db,
		path:   cfg.Path,
		logger: logger.Named("sqlite"),
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Clients that records pertain to
	CREATE TABLE IF NOT EXISTS subjects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Compliance rules (never physically deleted)
	CREATE TABLE IF NOT EXISTS rules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL CHECK (category IN ('identity-verification', 'documentation', 'suitability', 'trading', 'portfolio-risk')),
		severity TEXT NOT NULL CHECK (severity IN ('low', 'medium', 'high', 'critical')),
		enabled INTEGER NOT NULL DEFAULT 1,
		revision INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_rules_category ON rules(category);

	-- Check results (append-only)
	CREATE TABLE IF NOT EXISTS checks (
		id TEXT PRIMARY KEY,
		rule_id TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pass', 'fail', 'warning', 'needs-review')),
		notes TEXT NOT NULL DEFAULT '',
		checked_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at DESC);

	-- Investigation cases
	CREATE TABLE IF NOT EXISTS cases (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL CHECK (priority IN ('low', 'medium', 'high', 'critical')),
		status TEXT NOT NULL CHECK (status IN ('open', 'under-review', 'resolved')),
		revision INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		resolved_at TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_cases_created_at ON cases(created_at DESC);

	-- Case comments
	CREATE TABLE IF NOT EXISTS case_comments (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL REFERENCES cases(id),
		author TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_case_comments_case ON case_comments(case_id);

	-- Client documents; expiry_date is free text and parsed on read
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		uploaded_at TIMESTAMP NOT NULL,
		expiry_date TEXT
	);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// ListRules returns every rule ordered by name.
func (r *Repository) ListRules(ctx context.Context) ([]entities.Rule, error) {
	query := `
		SELECT id, name, description, category, severity, enabled, revision, created_at, updated_at
		FROM rules
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	result := []entities.Rule{}
	for rows.Next() {
		var rule entities.Rule
		var category, severity string
		if err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&rule.Description,
			&category,
			&severity,
			&rule.Enabled,
			&rule.Revision,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		rule.Category = entities.RuleCategory(category)
		rule.Severity = entities.Severity(severity)
		result = append(result, rule)
	}
	return result, rows.Err()
}

// ListRecentChecks returns up to limit checks, most recent first.
func (r *Repository) ListRecentChecks(ctx context.Context, limit int) ([]entities.Check, error) {
	query := `
		SELECT c.id, c.rule_id, COALESCE(r.name, ''), c.subject_id, COALESCE(s.name, ''),
			c.status, c.notes, c.checked_at
		FROM checks c
		LEFT JOIN rules r ON r.id = c.rule_id
		LEFT JOIN subjects s ON s.id = c.subject_id
		ORDER BY c.checked_at DESC, c.id ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying checks: %w", err)
	}
	defer rows.Close()

	result := make([]entities.Check, 0, limit)
	for rows.Next() {
		var check entities.Check
		var status string
		if err := rows.Scan(
			&check.ID,
			&check.RuleID,
			&check.RuleName,
			&check.SubjectID,
			&check.SubjectName,
			&status,
			&check.Notes,
			&check.CheckedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning check: %w", err)
		}
		check.Status = entities.CheckStatus(status)
		result = append(result, check)
	}
	return result, rows.Err()
}

// ListCases returns every case, newest first.
func (r *Repository) ListCases(ctx context.Context) ([]entities.Case, error) {
	query := `
		SELECT c.id, c.subject_id, COALESCE(s.name, ''), c.title, c.description, c.priority,
			c.status, c.revision, c.created_at, c.updated_at, c.resolved_at
		FROM cases c
		LEFT JOIN subjects s ON s.id = c.subject_id
		ORDER BY c.created_at DESC, c.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying cases: %w", err)
	}
	defer rows.Close()

	result := []entities.Case{}
	for rows.Next() {
		var c entities.Case
		var priority, status string
		var resolvedAt sql.NullTime
		if err := rows.Scan(
			&c.ID,
			&c.SubjectID,
			&c.SubjectName,
			&c.Title,
			&c.Description,
			&priority,
			&status,
			&c.Revision,
			&c.CreatedAt,
			&c.UpdatedAt,
			&resolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning case: %w", err)
		}
		c.Priority = entities.Priority(priority)
		c.Status = entities.CaseStatus(status)
		if resolvedAt.Valid {
			t := resolvedAt.Time
			c.ResolvedAt = &t
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// ListDocuments returns every document ordered by expiry, unknown expiry last.
// Unparseable expiry dates are logged and returned as absent.
func (r *Repository) ListDocuments(ctx context.Context) ([]entities.Document, error) {
	query := `
		SELECT d.id, d.subject_id, COALESCE(s.name, ''), d.name, d.kind, d.uploaded_at, d.expiry_date
		FROM documents d
		LEFT JOIN subjects s ON s.id = d.subject_id
		ORDER BY d.expiry_date IS NULL, d.expiry_date ASC, d.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	result := []entities.Document{}
	for rows.Next() {
		var doc entities.Document
		var expiry sql.NullString
		if err := rows.Scan(
			&doc.ID,
			&doc.SubjectID,
			&doc.SubjectName,
			&doc.Name,
			&doc.Kind,
			&doc.UploadedAt,
			&expiry,
		); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.ExpiryDate = r.parseExpiry(doc.ID, expiry)
		result = append(result, doc)
	}
	return result, rows.Err()
}

// parseExpiry converts a stored expiry value. Malformed values yield nil.
func (r *Repository) parseExpiry(docID string, raw sql.NullString) *time.Time {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return nil
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw.String)); err == nil {
			return &t
		}
	}
	r.logger.Warn("ignoring malformed document expiry date",
		zap.String("document_id", docID),
		zap.String("expiry_date", raw.String))
	return nil
}

// SetRuleEnabled writes a rule's enabled flag.
func (r *Repository) SetRuleEnabled(ctx context.Context, ruleID string, enabled bool) error {
	query := `
		UPDATE rules
		SET enabled = ?, revision = revision + 1, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, enabled, timeNow().UTC(), ruleID)
	if err != nil {
		return fmt.Errorf("updating rule: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rule update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("rule %s: %w", ruleID, entities.ErrNotFound)
	}
	return nil
}

// UpdateCaseStatus writes a status change when the stored revision matches
// the expected one. A nil ResolvedAt keeps the stored value.
func (r *Repository) UpdateCaseStatus(ctx context.Context, update ports.CaseStatusUpdate) error {
	var resolvedAt any
	if update.ResolvedAt != nil {
		resolvedAt = update.ResolvedAt.UTC()
	}

	query := `
		UPDATE cases
		SET status = ?, updated_at = ?, resolved_at = COALESCE(?, resolved_at), revision = revision + 1
		WHERE id = ? AND revision = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		string(update.Status),
		update.UpdatedAt.UTC(),
		resolvedAt,
		update.CaseID,
		update.ExpectedRevision,
	)
	if err != nil {
		return fmt.Errorf("updating case: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking case update: %w", err)
	}
	if rows > 0 {
		return nil
	}

	exists, err := r.Exists(ctx, "case", update.CaseID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("case %s: %w", update.CaseID, entities.ErrNotFound)
	}
	return fmt.Errorf("case %s at revision %d: %w", update.CaseID, update.ExpectedRevision, entities.ErrConflict)
}

// InsertCaseComment appends a comment to an existing case.
func (r *Repository) InsertCaseComment(ctx context.Context, comment *entities.CaseComment) error {
	query := `
		INSERT INTO case_comments (id, case_id, author, body, created_at)
		SELECT ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM cases WHERE id = ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.CaseID,
		comment.Author,
		comment.Body,
		comment.CreatedAt.UTC(),
		comment.CaseID,
	)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking comment insert: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("case %s: %w", comment.CaseID, entities.ErrNotFound)
	}
	return nil
}

// ListCaseComments returns a case's comments, oldest first.
func (r *Repository) ListCaseComments(ctx context.Context, caseID string) ([]entities.CaseComment, error) {
	query := `
		SELECT id, case_id, author, body, created_at
		FROM case_comments
		WHERE case_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	result := []entities.CaseComment{}
	for rows.Next() {
		var comment entities.CaseComment
		if err := rows.Scan(
			&comment.ID,
			&comment.CaseID,
			&comment.Author,
			&comment.Body,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
