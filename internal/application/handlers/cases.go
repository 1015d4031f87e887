package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/services"
)

// CaseHandler handles the case lifecycle.
type CaseHandler struct {
	service *services.ComplianceService
}

// NewCaseHandler creates a new case handler.
func NewCaseHandler(service *services.ComplianceService) *CaseHandler {
	return &CaseHandler{
		service: service,
	}
}

// CaseListOptions filters a case listing.
type CaseListOptions struct {
	Status      entities.CaseStatus // Empty lists every status
	PendingOnly bool
}

// List returns cases, newest first, filtered by opts.
func (h *CaseHandler) List(ctx context.Context, opts CaseListOptions) ([]entities.Case, []services.LoadError, error) {
	if opts.Status != "" && !opts.Status.IsValid() {
		return nil, nil, fmt.Errorf("%w: %q", entities.ErrUnknownStatus, opts.Status)
	}

	view := h.service.Load(ctx)
	cases := make([]entities.Case, 0, len(view.Cases))
	for i := range view.Cases {
		c := &view.Cases[i]
		if opts.Status != "" && c.Status != opts.Status {
			continue
		}
		if opts.PendingOnly && !c.Status.IsPending() {
			continue
		}
		cases = append(cases, *c)
	}
	return cases, view.LoadErrors, nil
}

// UpdateStatus moves a case to status. A non-nil revision must match the
// stored revision.
func (h *CaseHandler) UpdateStatus(ctx context.Context, caseID string, status string, revision *int) (*entities.Case, error) {
	target := entities.CaseStatus(strings.ToLower(strings.TrimSpace(status)))

	view, err := h.service.UpdateCaseStatus(ctx, caseID, target, services.StatusUpdateOptions{ExpectedRevision: revision})
	if err != nil {
		return nil, err
	}

	for i := range view.Cases {
		if view.Cases[i].ID == caseID {
			return &view.Cases[i], nil
		}
	}
	return nil, fmt.Errorf("case %s: %w", caseID, entities.ErrNotFound)
}

// Comment adds a comment to a case.
func (h *CaseHandler) Comment(ctx context.Context, caseID, author, body string) (*entities.CaseComment, error) {
	return h.service.AddCaseComment(ctx, caseID, author, body)
}

// Comments lists the comments of a case.
func (h *CaseHandler) Comments(ctx context.Context, caseID string) ([]entities.CaseComment, error) {
	return h.service.CaseComments(ctx, caseID)
}
