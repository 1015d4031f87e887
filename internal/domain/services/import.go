package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
	"github.com/ersonp/compliance-core/internal/infrastructure/parsers"
)

// dateLayouts are the accepted layouts for imported timestamps.
var dateLayouts = []string{time.RFC3339, time.DateOnly}

// ParseDate parses an RFC 3339 timestamp or a YYYY-MM-DD date (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want RFC3339 or YYYY-MM-DD)", s)
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool // Validate without saving
}

// ImportError represents an error for a specific record during import.
type ImportError struct {
	Kind    string // Record kind (rules, checks, ...)
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s line %d: %s", e.Kind, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []ImportError
}

// pendingRecord is a validated record waiting to be saved.
type pendingRecord struct {
	kind string
	id   string
	save func(ctx context.Context) error
}

// ImportService seeds the store from parsed record bundles. Records whose
// ID already exists are skipped; checks are append-only and rules are never
// deleted, so nothing is overwritten.
type ImportService struct {
	writer ports.RecordWriter
	now    Clock
	logger *zap.Logger
}

// NewImportService creates a new import service.
func NewImportService(writer ports.RecordWriter, now Clock, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		writer: writer,
		now:    now.orDefault(),
		logger: logger.Named("import"),
	}
}

// Import validates and imports a raw bundle into the store.
func (s *ImportService) Import(ctx context.Context, bundle *parsers.RawBundle, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	records, validationErrors := s.validate(bundle)
	result.Errors = validationErrors

	if len(records) == 0 {
		return result, nil
	}

	if opts.DryRun {
		result.Imported = len(records)
		return result, nil
	}

	for i := range records {
		rec := &records[i]
		exists, err := s.writer.Exists(ctx, strings.TrimSuffix(rec.kind, "s"), rec.id)
		if err != nil {
			return nil, fmt.Errorf("checking existing %s %s: %w", rec.kind, rec.id, err)
		}
		if exists {
			result.Skipped++
			continue
		}
		if err := rec.save(ctx); err != nil {
			return nil, fmt.Errorf("saving %s %s: %w", rec.kind, rec.id, err)
		}
		result.Imported++
	}

	s.logger.Info("import finished",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("invalid", len(result.Errors)))

	return result, nil
}

// validate converts every raw record, collecting one error per invalid record.
func (s *ImportService) validate(bundle *parsers.RawBundle) ([]pendingRecord, []ImportError) {
	now := s.now()
	records := make([]pendingRecord, 0, bundle.Len())
	var errs []ImportError

	for i := range bundle.Subjects {
		subject, ierr := convertSubject(&bundle.Subjects[i], now)
		if ierr != nil {
			errs = append(errs, *ierr)
			continue
		}
		records = append(records, pendingRecord{kind: parsers.KindSubjects, id: subject.ID,
			save: func(ctx context.Context) error { return s.writer.SaveSubject(ctx, subject) }})
	}

	for i := range bundle.Rules {
		rule, ierr := convertRule(&bundle.Rules[i], now)
		if ierr != nil {
			errs = append(errs, *ierr)
			continue
		}
		records = append(records, pendingRecord{kind: parsers.KindRules, id: rule.ID,
			save: func(ctx context.Context) error { return s.writer.SaveRule(ctx, rule) }})
	}

	for i := range bundle.Checks {
		check, ierr := convertCheck(&bundle.Checks[i], now)
		if ierr != nil {
			errs = append(errs, *ierr)
			continue
		}
		records = append(records, pendingRecord{kind: parsers.KindChecks, id: check.ID,
			save: func(ctx context.Context) error { return s.writer.SaveCheck(ctx, check) }})
	}

	for i := range bundle.Cases {
		c, ierr := convertCase(&bundle.Cases[i], now)
		if ierr != nil {
			errs = append(errs, *ierr)
			continue
		}
		records = append(records, pendingRecord{kind: parsers.KindCases, id: c.ID,
			save: func(ctx context.Context) error { return s.writer.SaveCase(ctx, c) }})
	}

	for i := range bundle.Documents {
		doc, ierr := convertDocument(&bundle.Documents[i], now)
		if ierr != nil {
			errs = append(errs, *ierr)
			continue
		}
		records = append(records, pendingRecord{kind: parsers.KindDocuments, id: doc.ID,
			save: func(ctx context.Context) error { return s.writer.SaveDocument(ctx, doc) }})
	}

	return records, errs
}

func missingField(kind string, line int, field string) *ImportError {
	return &ImportError{Kind: kind, Line: line, Field: field, Message: "missing required field: " + field}
}

func invalidField(kind string, line int, field, value, valid string) *ImportError {
	return &ImportError{
		Kind:    kind,
		Line:    line,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("invalid %s %q (valid: %s)", field, value, valid),
	}
}

// optionalDate parses value when present, falling back to def.
func optionalDate(kind string, line int, field, value string, def time.Time) (time.Time, *ImportError) {
	if strings.TrimSpace(value) == "" {
		return def, nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return time.Time{}, &ImportError{Kind: kind, Line: line, Field: field, Value: value, Message: err.Error()}
	}
	return t, nil
}

func idOrNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.New().String()
}

func convertSubject(raw *parsers.RawSubject, now time.Time) (*entities.Subject, *ImportError) {
	const kind = parsers.KindSubjects
	if strings.TrimSpace(raw.Name) == "" {
		return nil, missingField(kind, raw.LineNum, "name")
	}
	return &entities.Subject{ID: idOrNew(raw.ID), Name: strings.TrimSpace(raw.Name), CreatedAt: now}, nil
}

func convertRule(raw *parsers.RawRule, now time.Time) (*entities.Rule, *ImportError) {
	const kind = parsers.KindRules
	if strings.TrimSpace(raw.Name) == "" {
		return nil, missingField(kind, raw.LineNum, "name")
	}
	category := entities.RuleCategory(raw.Category)
	if !category.IsValid() {
		return nil, invalidField(kind, raw.LineNum, "category", raw.Category,
			"identity-verification, documentation, suitability, trading, portfolio-risk")
	}
	severity := entities.Severity(raw.Severity)
	if !severity.IsValid() {
		return nil, invalidField(kind, raw.LineNum, "severity", raw.Severity, "low, medium, high, critical")
	}

	enabled := true
	if raw.Enabled != nil {
		enabled = *raw.Enabled
	}

	return &entities.Rule{
		ID:          idOrNew(raw.ID),
		Name:        strings.TrimSpace(raw.Name),
		Description: raw.Description,
		Category:    category,
		Severity:    severity,
		Enabled:     enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func convertCheck(raw *parsers.RawCheck, now time.Time) (*entities.Check, *ImportError) {
	const kind = parsers.KindChecks
	if raw.RuleID == "" {
		return nil, missingField(kind, raw.LineNum, "rule_id")
	}
	if raw.SubjectID == "" {
		return nil, missingField(kind, raw.LineNum, "subject_id")
	}
	status := entities.CheckStatus(raw.Status)
	if !status.IsValid() {
		return nil, invalidField(kind, raw.LineNum, "status", raw.Status, "pass, fail, warning, needs-review")
	}
	checkedAt, ierr := optionalDate(kind, raw.LineNum, "checked_at", raw.CheckedAt, now)
	if ierr != nil {
		return nil, ierr
	}

	return &entities.Check{
		ID:        idOrNew(raw.ID),
		RuleID:    raw.RuleID,
		SubjectID: raw.SubjectID,
		Status:    status,
		Notes:     raw.Notes,
		CheckedAt: checkedAt,
	}, nil
}

func convertCase(raw *parsers.RawCase, now time.Time) (*entities.Case, *ImportError) {
	const kind = parsers.KindCases
	if raw.SubjectID == "" {
		return nil, missingField(kind, raw.LineNum, "subject_id")
	}
	if strings.TrimSpace(raw.Title) == "" {
		return nil, missingField(kind, raw.LineNum, "title")
	}
	priority := entities.Priority(raw.Priority)
	if !priority.IsValid() {
		return nil, invalidField(kind, raw.LineNum, "priority", raw.Priority, "low, medium, high, critical")
	}
	status := entities.CaseStatus(raw.Status)
	if !status.IsValid() {
		return nil, invalidField(kind, raw.LineNum, "status", raw.Status, "open, under-review, resolved")
	}
	createdAt, ierr := optionalDate(kind, raw.LineNum, "created_at", raw.CreatedAt, now)
	if ierr != nil {
		return nil, ierr
	}

	c := &entities.Case{
		ID:          idOrNew(raw.ID),
		SubjectID:   raw.SubjectID,
		Title:       strings.TrimSpace(raw.Title),
		Description: raw.Description,
		Priority:    priority,
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	hasResolvedAt := strings.TrimSpace(raw.ResolvedAt) != ""
	switch {
	case status == entities.CaseResolved && !hasResolvedAt:
		return nil, &ImportError{Kind: kind, Line: raw.LineNum, Field: "resolved_at",
			Message: "resolved_at is required when status is resolved"}
	case status != entities.CaseResolved && hasResolvedAt:
		return nil, &ImportError{Kind: kind, Line: raw.LineNum, Field: "resolved_at", Value: raw.ResolvedAt,
			Message: fmt.Sprintf("resolved_at must be empty when status is %s", status)}
	case hasResolvedAt:
		resolvedAt, ierr := optionalDate(kind, raw.LineNum, "resolved_at", raw.ResolvedAt, time.Time{})
		if ierr != nil {
			return nil, ierr
		}
		c.ResolvedAt = &resolvedAt
	}
	return c, nil
}

func convertDocument(raw *parsers.RawDocument, now time.Time) (*entities.Document, *ImportError) {
	const kind = parsers.KindDocuments
	if raw.SubjectID == "" {
		return nil, missingField(kind, raw.LineNum, "subject_id")
	}
	if strings.TrimSpace(raw.Name) == "" {
		return nil, missingField(kind, raw.LineNum, "name")
	}
	uploadedAt, ierr := optionalDate(kind, raw.LineNum, "uploaded_at", raw.UploadedAt, now)
	if ierr != nil {
		return nil, ierr
	}

	doc := &entities.Document{
		ID:         idOrNew(raw.ID),
		SubjectID:  raw.SubjectID,
		Name:       strings.TrimSpace(raw.Name),
		Kind:       raw.Kind,
		UploadedAt: uploadedAt,
	}

	if raw.ExpiryDate != "" {
		expiry, ierr := optionalDate(kind, raw.LineNum, "expiry_date", raw.ExpiryDate, time.Time{})
		if ierr != nil {
			return nil, ierr
		}
		doc.ExpiryDate = &expiry
	}
	return doc, nil
}
