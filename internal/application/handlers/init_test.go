package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/compliance-core/internal/domain/ports"
	"github.com/ersonp/compliance-core/internal/infrastructure/config"
)

type fakeSchema struct {
	ensureErr   error
	ensureCalls int
	closed      bool
}

func (f *fakeSchema) EnsureSchema(context.Context) error {
	f.ensureCalls++
	return f.ensureErr
}

func (f *fakeSchema) Close() error {
	f.closed = true
	return nil
}

func openerFor(schema *fakeSchema, paths *[]string) StoreOpener {
	return func(path string) (ports.SchemaManager, error) {
		*paths = append(*paths, path)
		return schema, nil
	}
}

func TestInitHandler_Handle_Success(t *testing.T) {
	tmpDir := t.TempDir()
	schema := &fakeSchema{}
	var paths []string

	handler := NewInitHandler(openerFor(schema, &paths))
	result, err := handler.Handle(context.Background(), tmpDir, "")

	require.NoError(t, err)
	assert.Contains(t, result.ConfigPath, "config.yaml")
	assert.Equal(t, DefaultTenant, result.Tenant)
	assert.Equal(t, config.SQLitePathForTenant(tmpDir, DefaultTenant), result.DatabasePath)
	assert.Equal(t, []string{result.DatabasePath}, paths)
	assert.Equal(t, 1, schema.ensureCalls)
	assert.True(t, schema.closed)

	assert.True(t, config.Exists(tmpDir))
	tenants, err := config.LoadTenants(tmpDir)
	require.NoError(t, err)
	assert.True(t, tenants.Exists(DefaultTenant))
}

func TestInitHandler_Handle_NamedTenant(t *testing.T) {
	tmpDir := t.TempDir()

	result, err := NewInitHandler(nil).Handle(context.Background(), tmpDir, "Wealth Desk")

	require.NoError(t, err)
	assert.Equal(t, "Wealth Desk", result.Tenant)
	assert.Contains(t, result.DatabasePath, "wealth_desk")
}

func TestInitHandler_Handle_AlreadyInitialized(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, config.WriteDefault(tmpDir))

	_, err := NewInitHandler(nil).Handle(context.Background(), tmpDir, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}

func TestInitHandler_Handle_SchemaError(t *testing.T) {
	tmpDir := t.TempDir()
	schema := &fakeSchema{ensureErr: errors.New("disk I/O error")}
	var paths []string

	_, err := NewInitHandler(openerFor(schema, &paths)).Handle(context.Background(), tmpDir, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating schema")
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.True(t, schema.closed)
}
