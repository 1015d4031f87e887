package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/mocks"
	"github.com/ersonp/compliance-core/internal/domain/ports"
)

// riskySnapshot triggers all three heuristics.
func riskySnapshot() ports.Snapshot {
	checks := append(checksWith(entities.CheckFail, 5, testNow), checksWith(entities.CheckPass, 5, testNow)...)
	return ports.Snapshot{
		Checks:    checks,
		Documents: []entities.Document{expiringDoc("d1", 3), expiringDoc("d2", 20)},
		Cases: []entities.Case{
			{ID: "c1", Status: entities.CaseOpen, CreatedAt: testNow.Add(-45 * day)},
			{ID: "c2", Status: entities.CaseUnderReview, CreatedAt: testNow.Add(-45 * day)},
			{ID: "c3", Status: entities.CaseOpen, CreatedAt: testNow.Add(-2 * day)},
		},
	}
}

func TestInsightService_Generate_RemoteSuccess(t *testing.T) {
	client := &mocks.InsightClient{Insights: []entities.Insight{
		{ID: "remote-a", Type: entities.InsightRisk, Title: "A", Confidence: 50},
		{Type: entities.InsightAlert, Title: "B", Confidence: 100},
	}}
	service := NewInsightService(client, fixedClock, zap.NewNop())

	snap := riskySnapshot()
	result := service.Generate(context.Background(), snap)

	assert.Equal(t, entities.SourceRemote, result.Source)
	require.Len(t, result.Insights, 2)
	assert.Equal(t, "1", result.Insights[0].ID)
	assert.Equal(t, "A", result.Insights[0].Title)
	assert.Equal(t, "2", result.Insights[1].ID)

	require.Equal(t, 1, client.CallCount())
	assert.Equal(t, snap, client.Calls[0])
}

func TestInsightService_Generate_EmptyRemoteListIsSuccess(t *testing.T) {
	client := &mocks.InsightClient{Insights: []entities.Insight{}}
	service := NewInsightService(client, fixedClock, zap.NewNop())

	result := service.Generate(context.Background(), riskySnapshot())

	assert.Equal(t, entities.SourceRemote, result.Source)
	assert.Empty(t, result.Insights)
}

func TestInsightService_Generate_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		client ports.InsightClient
	}{
		{name: "transport error", client: &mocks.InsightClient{Err: errors.New("connection refused")}},
		{name: "unknown type", client: &mocks.InsightClient{Insights: []entities.Insight{
			{Type: "warning", Title: "A", Confidence: 50},
		}}},
		{name: "confidence out of range", client: &mocks.InsightClient{Insights: []entities.Insight{
			{Type: entities.InsightAlert, Title: "A", Confidence: 50},
			{Type: entities.InsightAlert, Title: "B", Confidence: 101},
		}}},
		{name: "empty title", client: &mocks.InsightClient{Insights: []entities.Insight{
			{Type: entities.InsightAlert, Confidence: 50},
		}}},
		{name: "no client", client: nil},
	}

	want := HeuristicInsights(riskySnapshot(), testNow)
	require.Len(t, want, 3)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewInsightService(tt.client, fixedClock, zap.NewNop())

			result := service.Generate(context.Background(), riskySnapshot())

			assert.Equal(t, entities.SourceHeuristic, result.Source)
			require.Len(t, result.Insights, 3)
			for i := range result.Insights {
				assert.Equal(t, want[i].Title, result.Insights[i].Title)
				assert.Equal(t, want[i].Confidence, result.Insights[i].Confidence)
			}
		})
	}
}

func TestInsightService_Generate_NoRetry(t *testing.T) {
	client := &mocks.InsightClient{Err: errors.New("timeout")}
	service := NewInsightService(client, fixedClock, zap.NewNop())

	service.Generate(context.Background(), riskySnapshot())

	assert.Equal(t, 1, client.CallCount())
}

func TestHeuristicInsights_AllTriggered(t *testing.T) {
	insights := HeuristicInsights(riskySnapshot(), testNow)

	require.Len(t, insights, 3)

	assert.Equal(t, entities.InsightAlert, insights[0].Type)
	assert.Equal(t, 85, insights[0].Confidence)
	assert.Equal(t, "Review failed checks", insights[0].Action)
	assert.Equal(t, "50% of the last 10 compliance checks failed.", insights[0].Description)

	assert.Equal(t, entities.InsightSuggestion, insights[1].Type)
	assert.Equal(t, 92, insights[1].Confidence)
	assert.Equal(t, "Request updated documents", insights[1].Action)
	assert.Equal(t, "1 documents expire within 7 days.", insights[1].Description)

	assert.Equal(t, entities.InsightRisk, insights[2].Type)
	assert.Equal(t, 78, insights[2].Confidence)
	assert.Equal(t, "Escalate aging cases", insights[2].Action)
	assert.Equal(t, "1 cases have been open for more than 30 days.", insights[2].Description)
}

func TestHeuristicInsights_NoneTriggered(t *testing.T) {
	snap := ports.Snapshot{
		Checks:    checksWith(entities.CheckPass, 10, testNow),
		Documents: []entities.Document{expiringDoc("d1", 8), {ID: "d2"}},
		Cases:     []entities.Case{{ID: "c1", Status: entities.CaseOpen, CreatedAt: testNow.Add(-29 * day)}},
	}

	assert.Empty(t, HeuristicInsights(snap, testNow))
}

func TestHeuristicInsights_FailureRateUsesMostRecentWindow(t *testing.T) {
	// 20 recent passes hide 10 older failures.
	checks := append(
		checksWith(entities.CheckFail, 10, testNow.Add(-10*day)),
		checksWith(entities.CheckPass, 20, testNow)...,
	)

	insights := HeuristicInsights(ports.Snapshot{Checks: checks}, testNow)

	assert.Empty(t, insights)
}

func TestHeuristicInsights_FailureRateAtThresholdNotTriggered(t *testing.T) {
	checks := append(checksWith(entities.CheckFail, 2, testNow), checksWith(entities.CheckPass, 8, testNow)...)

	insights := HeuristicInsights(ports.Snapshot{Checks: checks}, testNow)

	assert.Empty(t, insights)
}

func TestValidateInsight(t *testing.T) {
	valid := entities.Insight{Type: entities.InsightSuggestion, Title: "ok", Confidence: 0}
	require.NoError(t, ValidateInsight(&valid))

	invalid := entities.Insight{Type: entities.InsightSuggestion, Title: "ok", Confidence: -1}
	err := ValidateInsight(&invalid)
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrInvalidInsight)
}
