package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/compliance-core/internal/domain/entities"
)

func TestDaysUntilExpiry(t *testing.T) {
	tests := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{name: "exactly seven days", expiry: testNow.Add(7 * day), want: 7},
		{name: "partial day rounds up", expiry: testNow.Add(6*day + time.Hour), want: 7},
		{name: "one millisecond ahead", expiry: testNow.Add(time.Millisecond), want: 1},
		{name: "now", expiry: testNow, want: 0},
		{name: "expired yesterday", expiry: testNow.Add(-day), want: -1},
		{name: "expired partial day", expiry: testNow.Add(-36 * time.Hour), want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntilExpiry(tt.expiry, testNow))
		})
	}
}

func TestApplyExpiry_NoExpiryDate(t *testing.T) {
	doc := entities.Document{ID: "d1", DaysUntilExpiry: intPtr(12)}

	result := ApplyExpiry(doc, testNow)

	assert.Nil(t, result.DaysUntilExpiry)
}

func TestApplyExpiry_Idempotent(t *testing.T) {
	doc := entities.Document{ID: "d1", ExpiryDate: daysFromNow(7)}

	first := ApplyExpiry(doc, testNow)
	second := ApplyExpiry(first, testNow)

	require.NotNil(t, first.DaysUntilExpiry)
	assert.Equal(t, 7, *first.DaysUntilExpiry)
	assert.Equal(t, first, second)
}

func TestApplyExpiryAll_DoesNotMutateInput(t *testing.T) {
	docs := []entities.Document{
		{ID: "d1", ExpiryDate: daysFromNow(2)},
		{ID: "d2"},
	}

	result := ApplyExpiryAll(docs, testNow)

	require.Len(t, result, 2)
	assert.Nil(t, docs[0].DaysUntilExpiry)
	require.NotNil(t, result[0].DaysUntilExpiry)
	assert.Equal(t, 2, *result[0].DaysUntilExpiry)
	assert.Nil(t, result[1].DaysUntilExpiry)
}
