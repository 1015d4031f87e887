package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
	"github.com/ersonp/compliance-core/internal/infrastructure/config"
)

var (
	_ ports.ComplianceStore = (*Repository)(nil)
	_ ports.RecordWriter    = (*Repository)(nil)
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// setupTestRepo creates an in-memory SQLite repository for testing.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	return setupTestRepoWithLogger(t, zap.NewNop())
}

func setupTestRepoWithLogger(t *testing.T, logger *zap.Logger) *Repository {
	t.Helper()
	repo, err := NewRepository(config.SQLiteConfig{Path: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	err = repo.EnsureSchema(context.Background())
	require.NoError(t, err)

	return repo
}

// seed inserts one subject, two rules, three checks, two cases and three documents.
func seed(t *testing.T, repo *Repository) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.SaveSubject(ctx, &entities.Subject{ID: "s1", Name: "Ada Lovelace", CreatedAt: baseTime}))

	require.NoError(t, repo.SaveRule(ctx, &entities.Rule{
		ID: "r1", Name: "Passport on file", Category: entities.CategoryIdentityVerification,
		Severity: entities.SeverityHigh, Enabled: true, CreatedAt: baseTime, UpdatedAt: baseTime,
	}))
	require.NoError(t, repo.SaveRule(ctx, &entities.Rule{
		ID: "r2", Name: "Annual suitability", Category: entities.CategorySuitability,
		Severity: entities.SeverityLow, CreatedAt: baseTime, UpdatedAt: baseTime,
	}))

	for i, status := range []entities.CheckStatus{entities.CheckPass, entities.CheckFail, entities.CheckNeedsReview} {
		require.NoError(t, repo.SaveCheck(ctx, &entities.Check{
			ID:        "k" + string(rune('1'+i)),
			RuleID:    "r1",
			SubjectID: "s1",
			Status:    status,
			CheckedAt: baseTime.Add(time.Duration(i) * time.Hour),
		}))
	}

	require.NoError(t, repo.SaveCase(ctx, &entities.Case{
		ID: "c1", SubjectID: "s1", Title: "KYC refresh", Priority: entities.PriorityHigh,
		Status: entities.CaseOpen, CreatedAt: baseTime, UpdatedAt: baseTime,
	}))
	require.NoError(t, repo.SaveCase(ctx, &entities.Case{
		ID: "c2", SubjectID: "unknown", Title: "Orphan", Priority: entities.PriorityLow,
		Status: entities.CaseOpen, CreatedAt: baseTime.Add(-time.Hour), UpdatedAt: baseTime,
	}))

	expiry := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveDocument(ctx, &entities.Document{
		ID: "d1", SubjectID: "s1", Name: "Passport", Kind: "passport", UploadedAt: baseTime, ExpiryDate: &expiry,
	}))
	require.NoError(t, repo.SaveDocument(ctx, &entities.Document{
		ID: "d2", SubjectID: "s1", Name: "W-8BEN", UploadedAt: baseTime,
	}))
}

func TestNewRepository(t *testing.T) {
	t.Run("success with memory database", func(t *testing.T) {
		repo, err := NewRepository(config.SQLiteConfig{Path: ":memory:"}, nil)
		require.NoError(t, err)
		defer repo.Close()
		assert.NotNil(t, repo)
	})

	t.Run("creates parent directory", func(t *testing.T) {
		path := t.TempDir() + "/tenants/acme/compliance.db"
		repo, err := NewRepository(config.SQLiteConfig{Path: path}, nil)
		require.NoError(t, err)
		defer repo.Close()
		assert.Equal(t, path, repo.Path())
		require.NoError(t, repo.EnsureSchema(context.Background()))
	})

	t.Run("error with empty path", func(t *testing.T) {
		_, err := NewRepository(config.SQLiteConfig{Path: ""}, nil)
		require.Error(t, err)
	})
}

func TestRepository_EnsureSchema(t *testing.T) {
	repo := setupTestRepo(t)

	// Verify tables exist
	tables := []string{"subjects", "rules", "checks", "cases", "case_comments", "documents"}
	for _, table := range tables {
		var count int
		err := repo.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestRepository_EnsureSchema_Idempotent(t *testing.T) {
	repo := setupTestRepo(t)

	// Should not error when called again
	err := repo.EnsureSchema(context.Background())
	require.NoError(t, err)
}

func TestRepository_ListRules(t *testing.T) {
	repo := setupTestRepo(t)
	seed(t, repo)

	rules, err := repo.ListRules(context.Background())

	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "r2", rules[0].ID)
	assert.Equal(t, entities.CategorySuitability, rules[0].Category)
	assert.False(t, rules[0].Enabled)
	assert.Equal(t, "r1", rules[1].ID)
	assert.Equal(t, entities.SeverityHigh, rules[1].Severity)
	assert.True(t, rules[1].Enabled)
	assert.True(t, baseTime.Equal(rules[1].CreatedAt))
}

func TestRepository_ListRecentChecks(t *testing.T) {
	repo := setupTestRepo(t)
	seed(t, repo)
	ctx := context.Background()

	checks, err := repo.ListRecentChecks(ctx, 100)
	require.NoError(t, err)
	require.Len(t, checks, 3)

	assert.Equal(t, "k3", checks[0].ID)
	assert.Equal(t, entities.CheckNeedsReview, checks[0].Status)
	assert.Equal(t, "Passport on file", checks[0].RuleName)
	assert.Equal(t, "Ada Lovelace", checks[0].SubjectName)
	assert.Equal(t, "k1", checks[2].ID)

	limited, err := repo.ListRecentChecks(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "k3", limited[0].ID)
	assert.Equal(t, "k2", limited[1].ID)
}

func TestRepository_ListCases(t *testing.T) {
	repo := setupTestRepo(t)
	seed(t, repo)

	cases, err := repo.ListCases(context.Background())

	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "c1", cases[0].ID)
	assert.Equal(t, "Ada Lovelace", cases[0].SubjectName)
	assert.Equal(t, entities.PriorityHigh, cases[0].Priority)
	assert.Nil(t, cases[0].ResolvedAt)
	assert.Equal(t, "c2", cases[1].ID)
	assert.Empty(t, cases[1].SubjectName)
}

func TestRepository_ListDocuments(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := setupTestRepoWithLogger(t, zap.New(core))
	seed(t, repo)

	_, err := repo.db.Exec(`INSERT INTO documents (id, subject_id, name, uploaded_at, expiry_date) VALUES (?, ?, ?, ?, ?)`,
		"d3", "s1", "Utility bill", baseTime, "next tuesday")
	require.NoError(t, err)

	docs, err := repo.ListDocuments(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 3)

	byID := make(map[string]entities.Document)
	for _, d := range docs {
		byID[d.ID] = d
		assert.Nil(t, d.DaysUntilExpiry)
	}

	require.NotNil(t, byID["d1"].ExpiryDate)
	assert.True(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC).Equal(*byID["d1"].ExpiryDate))
	assert.Equal(t, "Ada Lovelace", byID["d1"].SubjectName)
	assert.Nil(t, byID["d2"].ExpiryDate)
	assert.Nil(t, byID["d3"].ExpiryDate)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "ignoring malformed document expiry date", entry.Message)
	assert.Equal(t, "d3", entry.ContextMap()["document_id"])
}

func TestRepository_SetRuleEnabled(t *testing.T) {
	repo := setupTestRepo(t)
	seed(t, repo)
	ctx := context.Background()

	t.Run("toggles and bumps revision", func(t *testing.T) {
		require.NoError(t, repo.SetRuleEnabled(ctx, "r2", true))

		rules, err := repo.ListRules(ctx)
		require.NoError(t, err)
		assert.True(t, rules[0].Enabled)
		assert.Equal(t, 1, rules[0].Revision)
	})

	t.Run("last write wins", func(t *testing.T) {
		require.NoError(t, repo.SetRuleEnabled(ctx, "r2", false))
		require.NoError(t, repo.SetRuleEnabled(ctx, "r2", true))

		rules, err := repo.ListRules(ctx)
		require.NoError(t, err)
		assert.True(t, rules[0].Enabled)
		assert.Equal(t, 3, rules[0].Revision)
	})

	t.Run("unknown rule", func(t *testing.T) {
		err := repo.SetRuleEnabled(ctx, "missing", true)
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestRepository_UpdateCaseStatus(t *testing.T) {
	repo := setupTestRepo(t)
	seed(t, repo)
	ctx := context.Background()
	resolvedAt := baseTime.Add(2 * time.Hour)

	t.Run("resolve stamps resolved_at", func(t *testing.T) {
		err := repo.UpdateCaseStatus(ctx, ports.CaseStatusUpdate{
			CaseID:           "c1",
			Status:           entities.CaseResolved,
			ResolvedAt:       &resolvedAt,
			UpdatedAt:        resolvedAt,
			ExpectedRevision: 0,
		})
		require.NoError(t, err)

		cases, err := repo.ListCases(ctx)
		require.NoError(t, err)
		assert.Equal(t, entities.CaseResolved, cases[0].Status)
		assert.Equal(t, 1, cases[0].Revision)
		require.NotNil(t, cases[0].ResolvedAt)
		assert.True(t, resolvedAt.Equal(*cases[0].ResolvedAt))
	})

	t.Run("reopen keeps resolved_at", func(t *testing.T) {
		err := repo.UpdateCaseStatus(ctx, ports.CaseStatusUpdate{
			CaseID:           "c1",
			Status:           entities.CaseOpen,
			UpdatedAt:        resolvedAt.Add(time.Hour),
			ExpectedRevision: 1,
		})
		require.NoError(t, err)

		cases, err := repo.ListCases(ctx)
		require.NoError(t, err)
		assert.Equal(t, entities.CaseOpen, cases[0].Status)
		require.NotNil(t, cases[0].ResolvedAt)
		assert.True(t, resolvedAt.Equal(*cases[0].ResolvedAt))
	})

	t.Run("stale revision conflicts", func(t *testing.T) {
		err := repo.UpdateCaseStatus(ctx, ports.CaseStatusUpdate{
			CaseID:           "c1",
			Status:           entities.CaseUnderReview,
			UpdatedAt:        baseTime,
			ExpectedRevision: 0,
		})
		assert.ErrorIs(t, err, entities.ErrConflict)
	})

	t.Run("unknown case", func(t *testing.T) {
		err := repo.UpdateCaseStatus(ctx, ports.CaseStatusUpdate{CaseID: "missing", Status: entities.CaseOpen})
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})

	t.Run("unknown status rejected by schema", func(t *testing.T) {
		err := repo.UpdateCaseStatus(ctx, ports.CaseStatusUpdate{CaseID: "c2", Status: "escalated"})
		assert.Error(t, err)
	})
}

func TestRepository_CaseComments(t *testing.T) {
	repo := setupTestRepo(t)
	seed(t, repo)
	ctx := context.Background()

	first := &entities.CaseComment{ID: "m1", CaseID: "c1", Author: "analyst", Body: "Requested passport", CreatedAt: baseTime}
	second := &entities.CaseComment{ID: "m2", CaseID: "c1", Body: "Received", CreatedAt: baseTime.Add(time.Hour)}
	require.NoError(t, repo.InsertCaseComment(ctx, second))
	require.NoError(t, repo.InsertCaseComment(ctx, first))

	comments, err := repo.ListCaseComments(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "m1", comments[0].ID)
	assert.Equal(t, "analyst", comments[0].Author)
	assert.Equal(t, "m2", comments[1].ID)

	none, err := repo.ListCaseComments(ctx, "c2")
	require.NoError(t, err)
	assert.Empty(t, none)

	err = repo.InsertCaseComment(ctx, &entities.CaseComment{ID: "m3", CaseID: "missing", Body: "x", CreatedAt: baseTime})
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRepository_SaveCheck_RejectsUnknownStatus(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.SaveCheck(context.Background(), &entities.Check{
		ID: "k1", RuleID: "r1", SubjectID: "s1", Status: "skipped", CheckedAt: baseTime,
	})

	assert.Error(t, err)
}

func TestRepository_Exists(t *testing.T) {
	repo := setupTestRepo(t)
	seed(t, repo)
	ctx := context.Background()

	tests := []struct {
		kind, id string
		want     bool
	}{
		{"subject", "s1", true},
		{"rule", "r2", true},
		{"check", "k1", true},
		{"case", "c2", true},
		{"document", "d1", true},
		{"document", "d9", false},
	}
	for _, tt := range tests {
		exists, err := repo.Exists(ctx, tt.kind, tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, exists, "%s %s", tt.kind, tt.id)
	}

	_, err := repo.Exists(ctx, "facts", "x")
	assert.Error(t, err)
}

func TestRepository_SaveDuplicateID(t *testing.T) {
	repo := setupTestRepo(t)
	seed(t, repo)

	err := repo.SaveSubject(context.Background(), &entities.Subject{ID: "s1", Name: "Duplicate", CreatedAt: baseTime})

	assert.Error(t, err)
}
