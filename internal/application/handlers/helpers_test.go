package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/mocks"
	"github.com/ersonp/compliance-core/internal/domain/services"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newService(store *mocks.Store, client *mocks.InsightClient) *services.ComplianceService {
	logger := zap.NewNop()
	insights := services.NewInsightService(nil, fixedClock, logger)
	if client != nil {
		insights = services.NewInsightService(client, fixedClock, logger)
	}
	return services.NewComplianceService(
		store,
		services.NewRuleService(store, logger),
		services.NewCaseService(store, fixedClock, logger),
		insights,
		logger,
		services.ComplianceOptions{Tenant: "acme", Now: fixedClock},
	)
}

func seededStore() *mocks.Store {
	expiry := testNow.Add(5 * 24 * time.Hour)
	store := mocks.NewStore()
	store.Rules = []entities.Rule{
		{ID: "r1", Name: "Passport on file", Category: entities.CategoryIdentityVerification, Severity: entities.SeverityCritical, Enabled: true},
		{ID: "r2", Name: "Annual review", Category: entities.CategoryDocumentation, Severity: entities.SeverityLow, Enabled: true},
	}
	store.Checks = []entities.Check{
		{ID: "k1", RuleID: "r1", Status: entities.CheckPass, CheckedAt: testNow},
		{ID: "k2", RuleID: "r1", Status: entities.CheckPass, CheckedAt: testNow},
		{ID: "k3", RuleID: "r2", Status: entities.CheckWarning, CheckedAt: testNow},
		{ID: "k4", RuleID: "r2", Status: entities.CheckNeedsReview, CheckedAt: testNow},
	}
	store.Cases = []entities.Case{
		{ID: "c1", Title: "Missing passport", Status: entities.CaseOpen, Priority: entities.PriorityHigh, CreatedAt: testNow, Revision: 1},
		{ID: "c2", Title: "Source of funds", Status: entities.CaseUnderReview, Priority: entities.PriorityMedium, CreatedAt: testNow, Revision: 3},
		{ID: "c3", Title: "Done", Status: entities.CaseResolved, Priority: entities.PriorityLow, CreatedAt: testNow, Revision: 2},
	}
	store.Documents = []entities.Document{
		{ID: "d1", Name: "Passport", ExpiryDate: &expiry},
		{ID: "d2", Name: "Engagement letter"},
	}
	return store
}
