package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/compliance-core/internal/domain/services"
)

// RuleHandler handles rule listing and toggling.
type RuleHandler struct {
	service *services.ComplianceService
}

// NewRuleHandler creates a new rule handler.
func NewRuleHandler(service *services.ComplianceService) *RuleHandler {
	return &RuleHandler{
		service: service,
	}
}

// RuleListResult contains rules grouped by category.
type RuleListResult struct {
	Groups     []services.CategoryGroup
	LoadErrors []services.LoadError
}

// List loads and groups every rule.
func (h *RuleHandler) List(ctx context.Context) *RuleListResult {
	view := h.service.Load(ctx)
	return &RuleListResult{
		Groups:     view.RuleGroups,
		LoadErrors: view.LoadErrors,
	}
}

// Toggle enables or disables a rule and returns the regrouped rules.
func (h *RuleHandler) Toggle(ctx context.Context, ruleID string, enabled bool) ([]services.CategoryGroup, error) {
	view, err := h.service.ToggleRule(ctx, ruleID, enabled)
	if err != nil {
		return nil, fmt.Errorf("toggling rule: %w", err)
	}
	return view.RuleGroups, nil
}
