package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/mocks"
	"github.com/ersonp/compliance-core/internal/domain/services"
)

func TestDashboardHandler_Handle(t *testing.T) {
	client := &mocks.InsightClient{Insights: []entities.Insight{
		{Type: entities.InsightSuggestion, Title: "Refresh passport", Confidence: 70},
	}}
	handler := NewDashboardHandler(newService(seededStore(), client))

	view, ch := handler.Handle(context.Background())

	assert.Equal(t, 67, view.Stats.OverallScore)
	assert.Equal(t, 2, view.Stats.PendingCases)
	assert.Equal(t, 1, view.Stats.ExpiringDocs)
	require.Len(t, view.Actions, 4)

	result, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, entities.SourceRemote, result.Source)
	require.Len(t, result.Insights, 1)
	assert.Equal(t, "1", result.Insights[0].ID)

	_, ok = <-ch
	assert.False(t, ok, "channel should be closed after one result")
}

func TestDashboardHandler_Report(t *testing.T) {
	client := &mocks.InsightClient{Err: errors.New("timeout")}
	handler := NewDashboardHandler(newService(seededStore(), client))

	report := handler.Report(context.Background())

	assert.Equal(t, entities.SourceHeuristic, report.Insights.Source)
	assert.Equal(t, 1, client.CallCount())
	require.NotEmpty(t, report.Insights.Insights)
	assert.Equal(t, "Documents expiring soon", report.Insights.Insights[0].Title)
}

func TestDashboardHandler_Documents(t *testing.T) {
	store := seededStore()
	handler := NewDashboardHandler(newService(store, nil))

	docs, loadErrs := handler.Documents(context.Background())
	require.Len(t, docs, 2)
	require.NotNil(t, docs[0].DaysUntilExpiry)
	assert.Equal(t, 5, *docs[0].DaysUntilExpiry)
	assert.Nil(t, docs[1].DaysUntilExpiry)
	assert.Empty(t, loadErrs)

	store.DocumentsErr = errors.New("no such table")
	docs, loadErrs = handler.Documents(context.Background())
	assert.Empty(t, docs)
	require.Len(t, loadErrs, 1)
	assert.Equal(t, services.EntityDocuments, loadErrs[0].Entity)
}
