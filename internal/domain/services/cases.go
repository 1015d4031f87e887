package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
)

// caseTransitions lists the permitted status moves.
var caseTransitions = map[entities.CaseStatus][]entities.CaseStatus{
	entities.CaseOpen:        {entities.CaseUnderReview, entities.CaseResolved},
	entities.CaseUnderReview: {entities.CaseOpen, entities.CaseResolved},
	entities.CaseResolved:    {entities.CaseOpen, entities.CaseUnderReview},
}

// ValidateTransition checks a case status move against the transition table.
func ValidateTransition(from, to entities.CaseStatus) error {
	if !from.IsValid() {
		return fmt.Errorf("%w: %q", entities.ErrUnknownStatus, from)
	}
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", entities.ErrUnknownStatus, to)
	}
	for _, allowed := range caseTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", entities.ErrInvalidTransition, from, to)
}

// StatusUpdateOptions tunes a single case status change.
type StatusUpdateOptions struct {
	// ExpectedRevision overrides the revision of the locally held case.
	ExpectedRevision *int
}

// CaseService enacts the case status lifecycle and records comments.
type CaseService struct {
	store  ports.ComplianceStore
	now    Clock
	logger *zap.Logger
}

// NewCaseService creates a new CaseService.
func NewCaseService(store ports.ComplianceStore, now Clock, logger *zap.Logger) *CaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaseService{
		store:  store,
		now:    now.orDefault(),
		logger: logger.Named("cases"),
	}
}

// UpdateStatus moves a case to a new status. Moving to resolved stamps the
// resolution time; other moves leave any earlier stamp in place. On success
// it returns a copy of cases with the change applied; on any failure cases
// is returned as it was.
func (s *CaseService) UpdateStatus(ctx context.Context, cases []entities.Case, caseID string, to entities.CaseStatus, opts StatusUpdateOptions) ([]entities.Case, error) {
	idx := -1
	for i := range cases {
		if cases[i].ID == caseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return cases, fmt.Errorf("case %s: %w", caseID, entities.ErrNotFound)
	}

	current := cases[idx]
	if err := ValidateTransition(current.Status, to); err != nil {
		return cases, err
	}

	now := s.now()
	update := ports.CaseStatusUpdate{
		CaseID:           caseID,
		Status:           to,
		UpdatedAt:        now,
		ExpectedRevision: current.Revision,
	}
	if opts.ExpectedRevision != nil {
		update.ExpectedRevision = *opts.ExpectedRevision
	}
	if to == entities.CaseResolved {
		update.ResolvedAt = &now
	}

	if err := s.store.UpdateCaseStatus(ctx, update); err != nil {
		if errors.Is(err, entities.ErrConflict) {
			s.logger.Warn("case status write lost a revision race",
				zap.String("case_id", caseID),
				zap.Int("expected_revision", update.ExpectedRevision))
		}
		return cases, fmt.Errorf("updating case %s status: %w", caseID, err)
	}

	updated := make([]entities.Case, len(cases))
	copy(updated, cases)
	c := &updated[idx]
	c.Status = to
	c.UpdatedAt = now
	c.Revision = update.ExpectedRevision + 1
	if update.ResolvedAt != nil {
		resolved := *update.ResolvedAt
		c.ResolvedAt = &resolved
	}

	s.logger.Info("case status changed",
		zap.String("case_id", caseID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(to)))

	return updated, nil
}

// AddComment appends a comment to a case.
func (s *CaseService) AddComment(ctx context.Context, caseID, author, body string) (*entities.CaseComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("comment body is required")
	}
	if caseID == "" {
		return nil, errors.New("case id is required")
	}

	comment := &entities.CaseComment{
		ID:        uuid.New().String(),
		CaseID:    caseID,
		Author:    strings.TrimSpace(author),
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertCaseComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("inserting comment on case %s: %w", caseID, err)
	}
	return comment, nil
}

// Comments lists the comments of a case.
func (s *CaseService) Comments(ctx context.Context, caseID string) ([]entities.CaseComment, error) {
	comments, err := s.store.ListCaseComments(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("listing comments of case %s: %w", caseID, err)
	}
	return comments, nil
}
