// Package handlers contains application use case handlers.
package handlers

import (
	"context"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/services"
)

// DashboardHandler serves the aggregated compliance views.
type DashboardHandler struct {
	service *services.ComplianceService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service *services.ComplianceService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// Report is a view together with its settled insights.
type Report struct {
	View     *services.View
	Insights services.InsightResult
}

// Handle loads the view and returns it at once; insights arrive on the
// channel when they settle.
func (h *DashboardHandler) Handle(ctx context.Context) (*services.View, <-chan services.InsightResult) {
	return h.service.LoadAsync(ctx)
}

// Report loads the view and waits for its insights.
func (h *DashboardHandler) Report(ctx context.Context) *Report {
	view := h.service.Load(ctx)
	return &Report{
		View:     view,
		Insights: h.service.Insights(ctx, view),
	}
}

// Documents returns every document with its days until expiry.
func (h *DashboardHandler) Documents(ctx context.Context) ([]entities.Document, []services.LoadError) {
	view := h.service.Load(ctx)
	return view.Documents, view.LoadErrors
}
