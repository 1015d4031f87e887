package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
)

// CategoryGroup is the rules of one category, most severe first.
type CategoryGroup struct {
	Category  entities.RuleCategory `json:"category"`
	Rules     []entities.Rule       `json:"rules"`
	Enabled   int                   `json:"enabled"`
	Collapsed bool                  `json:"collapsed"`
}

// RuleService groups rules by category and toggles them.
type RuleService struct {
	store  ports.ComplianceStore
	logger *zap.Logger

	// collapsed is display state only and is never persisted.
	collapsed   map[entities.RuleCategory]bool
	collapsedMu sync.RWMutex
}

// NewRuleService creates a new RuleService.
func NewRuleService(store ports.ComplianceStore, logger *zap.Logger) *RuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleService{
		store:     store,
		logger:    logger.Named("rules"),
		collapsed: make(map[entities.RuleCategory]bool),
	}
}

// Group returns one group per known category, in the fixed category order.
// Rules with an unknown category are dropped.
func (s *RuleService) Group(rules []entities.Rule) []CategoryGroup {
	byCategory := make(map[entities.RuleCategory][]entities.Rule, len(entities.RuleCategories))
	for i := range rules {
		byCategory[rules[i].Category] = append(byCategory[rules[i].Category], rules[i])
	}

	groups := make([]CategoryGroup, 0, len(entities.RuleCategories))
	for _, category := range entities.RuleCategories {
		members := byCategory[category]
		sort.SliceStable(members, func(i, j int) bool {
			ri, rj := members[i].Severity.Rank(), members[j].Severity.Rank()
			if ri != rj {
				return ri > rj
			}
			return members[i].Name < members[j].Name
		})

		enabled := 0
		for i := range members {
			if members[i].Enabled {
				enabled++
			}
		}

		groups = append(groups, CategoryGroup{
			Category:  category,
			Rules:     members,
			Enabled:   enabled,
			Collapsed: s.IsCollapsed(category),
		})
	}
	return groups
}

// Toggle writes a rule's enabled flag and, only on success, returns a copy
// of rules with the flag updated. On failure rules is returned unchanged.
func (s *RuleService) Toggle(ctx context.Context, rules []entities.Rule, ruleID string, enabled bool) ([]entities.Rule, error) {
	if err := s.store.SetRuleEnabled(ctx, ruleID, enabled); err != nil {
		return rules, fmt.Errorf("setting rule %s enabled=%t: %w", ruleID, enabled, err)
	}

	updated := make([]entities.Rule, len(rules))
	copy(updated, rules)
	for i := range updated {
		if updated[i].ID == ruleID {
			updated[i].Enabled = enabled
			updated[i].Revision++
		}
	}

	s.logger.Info("rule toggled", zap.String("rule_id", ruleID), zap.Bool("enabled", enabled))
	return updated, nil
}

// SetCollapsed records whether a category is collapsed in the view.
func (s *RuleService) SetCollapsed(category entities.RuleCategory, collapsed bool) {
	s.collapsedMu.Lock()
	defer s.collapsedMu.Unlock()
	if collapsed {
		s.collapsed[category] = true
		return
	}
	delete(s.collapsed, category)
}

// IsCollapsed reports whether a category is collapsed in the view.
func (s *RuleService) IsCollapsed(category entities.RuleCategory) bool {
	s.collapsedMu.RLock()
	defer s.collapsedMu.RUnlock()
	return s.collapsed[category]
}
