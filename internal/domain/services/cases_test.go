package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/mocks"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		from, to entities.CaseStatus
		wantErr  error
	}{
		{entities.CaseOpen, entities.CaseUnderReview, nil},
		{entities.CaseOpen, entities.CaseResolved, nil},
		{entities.CaseUnderReview, entities.CaseOpen, nil},
		{entities.CaseUnderReview, entities.CaseResolved, nil},
		{entities.CaseResolved, entities.CaseOpen, nil},
		{entities.CaseResolved, entities.CaseUnderReview, nil},
		{entities.CaseOpen, entities.CaseOpen, entities.ErrInvalidTransition},
		{entities.CaseResolved, entities.CaseResolved, entities.ErrInvalidTransition},
		{entities.CaseOpen, "closed", entities.ErrUnknownStatus},
		{"archived", entities.CaseOpen, entities.ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func newCaseFixture() (*mocks.Store, *CaseService, []entities.Case) {
	created := testNow.Add(-10 * day)
	cases := []entities.Case{
		{ID: "c1", Title: "KYC refresh", Status: entities.CaseOpen, CreatedAt: created, UpdatedAt: created, Revision: 2},
		{ID: "c2", Title: "Trade review", Status: entities.CaseUnderReview, CreatedAt: created, UpdatedAt: created},
	}
	store := mocks.NewStore()
	store.Cases = append([]entities.Case(nil), cases...)
	return store, NewCaseService(store, fixedClock, zap.NewNop()), cases
}

func TestCaseService_UpdateStatus_ResolveStampsTime(t *testing.T) {
	store, service, cases := newCaseFixture()

	updated, err := service.UpdateStatus(context.Background(), cases, "c1", entities.CaseResolved, StatusUpdateOptions{})

	require.NoError(t, err)
	c := updated[0]
	assert.Equal(t, entities.CaseResolved, c.Status)
	require.NotNil(t, c.ResolvedAt)
	assert.Equal(t, testNow, *c.ResolvedAt)
	assert.Equal(t, testNow, c.UpdatedAt)
	assert.Equal(t, 3, c.Revision)

	assert.Equal(t, entities.CaseOpen, cases[0].Status)
	assert.Equal(t, entities.CaseResolved, store.Cases[0].Status)
	assert.Equal(t, 3, store.Cases[0].Revision)
}

func TestCaseService_UpdateStatus_ReopenKeepsResolvedAt(t *testing.T) {
	store, _, cases := newCaseFixture()
	resolvedAt := testNow.Add(-day)
	cases[0].Status = entities.CaseResolved
	cases[0].ResolvedAt = &resolvedAt
	store.Cases[0] = cases[0]

	later := testNow.Add(time.Hour)
	service := NewCaseService(store, func() time.Time { return later }, zap.NewNop())

	updated, err := service.UpdateStatus(context.Background(), cases, "c1", entities.CaseOpen, StatusUpdateOptions{})

	require.NoError(t, err)
	assert.Equal(t, entities.CaseOpen, updated[0].Status)
	require.NotNil(t, updated[0].ResolvedAt)
	assert.Equal(t, resolvedAt, *updated[0].ResolvedAt)
	assert.Equal(t, later, updated[0].UpdatedAt)
	require.NotNil(t, store.Cases[0].ResolvedAt)
	assert.Equal(t, resolvedAt, *store.Cases[0].ResolvedAt)
}

func TestCaseService_UpdateStatus_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		caseID  string
		to      entities.CaseStatus
		wantErr error
	}{
		{name: "self transition", caseID: "c1", to: entities.CaseOpen, wantErr: entities.ErrInvalidTransition},
		{name: "unknown status", caseID: "c1", to: "escalated", wantErr: entities.ErrUnknownStatus},
		{name: "unknown case", caseID: "missing", to: entities.CaseResolved, wantErr: entities.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, service, cases := newCaseFixture()

			result, err := service.UpdateStatus(context.Background(), cases, tt.caseID, tt.to, StatusUpdateOptions{})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, cases, result)
			assert.Equal(t, cases, store.Cases)
		})
	}
}

func TestCaseService_UpdateStatus_StoreFailureKeepsList(t *testing.T) {
	store, service, cases := newCaseFixture()
	store.WriteErr = errors.New("database is locked")

	result, err := service.UpdateStatus(context.Background(), cases, "c2", entities.CaseResolved, StatusUpdateOptions{})

	require.Error(t, err)
	assert.Equal(t, cases, result)
	assert.Equal(t, entities.CaseUnderReview, result[1].Status)
	assert.Nil(t, result[1].ResolvedAt)
}

func TestCaseService_UpdateStatus_RevisionConflict(t *testing.T) {
	store, service, cases := newCaseFixture()
	// Another writer moved the stored case on.
	store.Cases[0].Revision = 5

	result, err := service.UpdateStatus(context.Background(), cases, "c1", entities.CaseUnderReview, StatusUpdateOptions{})

	assert.ErrorIs(t, err, entities.ErrConflict)
	assert.Equal(t, cases, result)
	assert.Equal(t, entities.CaseOpen, store.Cases[0].Status)
}

func TestCaseService_UpdateStatus_ExpectedRevisionOverride(t *testing.T) {
	store, service, cases := newCaseFixture()
	store.Cases[0].Revision = 5

	updated, err := service.UpdateStatus(context.Background(), cases, "c1", entities.CaseUnderReview,
		StatusUpdateOptions{ExpectedRevision: intPtr(5)})

	require.NoError(t, err)
	assert.Equal(t, 6, updated[0].Revision)
	assert.Equal(t, 6, store.Cases[0].Revision)
}

func TestCaseService_AddComment(t *testing.T) {
	store, service, _ := newCaseFixture()

	comment, err := service.AddComment(context.Background(), "c1", " analyst ", "  Called the client.  ")

	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, "c1", comment.CaseID)
	assert.Equal(t, "analyst", comment.Author)
	assert.Equal(t, "Called the client.", comment.Body)
	assert.Equal(t, testNow, comment.CreatedAt)

	comments, err := service.Comments(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, comment.ID, comments[0].ID)
	assert.Len(t, store.Comments, 1)
}

func TestCaseService_AddComment_Validation(t *testing.T) {
	_, service, _ := newCaseFixture()

	_, err := service.AddComment(context.Background(), "c1", "analyst", "   ")
	assert.Error(t, err)

	_, err = service.AddComment(context.Background(), "", "analyst", "body")
	assert.Error(t, err)
}

func TestCaseService_AddComment_StoreError(t *testing.T) {
	store, service, _ := newCaseFixture()
	store.WriteErr = errors.New("boom")

	comment, err := service.AddComment(context.Background(), "c1", "analyst", "body")

	require.Error(t, err)
	assert.Nil(t, comment)
}
