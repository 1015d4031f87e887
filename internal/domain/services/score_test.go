package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
)

func TestScoreOf(t *testing.T) {
	tests := []struct {
		name           string
		passed, failed int
		want           int
	}{
		{name: "no checks", want: 0},
		{name: "seventy percent", passed: 7, failed: 3, want: 70},
		{name: "all passed", passed: 4, want: 100},
		{name: "all failed", failed: 4, want: 0},
		{name: "rounds half up", passed: 1, failed: 7, want: 13},
		{name: "two thirds", passed: 2, failed: 1, want: 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreOf(tt.passed, tt.failed))
		})
	}
}

func TestCountChecks_WarningsFailAndNeedsReviewIgnored(t *testing.T) {
	checks := []entities.Check{
		{Status: entities.CheckPass},
		{Status: entities.CheckFail},
		{Status: entities.CheckWarning},
		{Status: entities.CheckNeedsReview},
	}

	passed, failed := CountChecks(checks)

	assert.Equal(t, 1, passed)
	assert.Equal(t, 2, failed)
}

func TestAggregateScore(t *testing.T) {
	checks := append(checksWith(entities.CheckPass, 7, testNow), checksWith(entities.CheckFail, 3, testNow)...)
	checks = append(checks, checksWith(entities.CheckNeedsReview, 5, testNow)...)

	snap := ports.Snapshot{
		Rules:  []entities.Rule{{ID: "r1"}, {ID: "r2"}},
		Checks: checks,
		Cases: []entities.Case{
			{ID: "c1", Status: entities.CaseOpen},
			{ID: "c2", Status: entities.CaseUnderReview},
			{ID: "c3", Status: entities.CaseResolved},
		},
		Documents: []entities.Document{
			{ID: "d1", DaysUntilExpiry: intPtr(0)},
			{ID: "d2", DaysUntilExpiry: intPtr(30)},
			{ID: "d3", DaysUntilExpiry: intPtr(31)},
			{ID: "d4", DaysUntilExpiry: intPtr(-2)},
			{ID: "d5"},
		},
	}

	stats := AggregateScore(snap, testNow)

	assert.Equal(t, entities.DashboardStats{
		OverallScore: 70,
		Trend:        0,
		TotalRules:   2,
		PassedChecks: 7,
		FailedChecks: 3,
		PendingCases: 2,
		ExpiringDocs: 2,
	}, stats)
}

func TestAggregateScore_Empty(t *testing.T) {
	stats := AggregateScore(ports.Snapshot{}, testNow)

	assert.Equal(t, entities.DashboardStats{}, stats)
}

func TestTrend(t *testing.T) {
	old := testNow.Add(-45 * day)
	recent := testNow.Add(-2 * day)

	tests := []struct {
		name   string
		checks []entities.Check
		want   int
	}{
		{
			name: "improving",
			checks: append(
				append(checksWith(entities.CheckPass, 9, recent), checksWith(entities.CheckFail, 1, recent)...),
				append(checksWith(entities.CheckPass, 1, old), checksWith(entities.CheckFail, 1, old)...)...,
			),
			want: 40,
		},
		{
			name: "declining",
			checks: append(
				checksWith(entities.CheckFail, 1, recent),
				checksWith(entities.CheckPass, 1, old)...,
			),
			want: -100,
		},
		{
			name:   "no older checks",
			checks: checksWith(entities.CheckPass, 3, recent),
			want:   0,
		},
		{
			name: "older checks only needs review",
			checks: append(
				checksWith(entities.CheckPass, 3, recent),
				checksWith(entities.CheckNeedsReview, 3, old)...,
			),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Trend(tt.checks, testNow))
		})
	}
}
