package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTenants_MissingFile(t *testing.T) {
	cfg, err := LoadTenants(t.TempDir())

	require.NoError(t, err)
	assert.NotNil(t, cfg.Tenants)
	assert.Empty(t, cfg.Tenants)
}

func TestTenantsConfig_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	cfg := &TenantsConfig{}
	require.NoError(t, cfg.Register("acme", "Acme Wealth"))
	require.NoError(t, cfg.Register("globex", ""))
	require.NoError(t, cfg.Save(dir))

	loaded, err := LoadTenants(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "globex"}, loaded.Names())

	entry, err := loaded.Get("acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Wealth", entry.Description)
}

func TestTenantsConfig_Register(t *testing.T) {
	tests := []struct {
		name    string
		tenant  string
		wantErr string
	}{
		{name: "new tenant", tenant: "globex"},
		{name: "blank name", tenant: "  ", wantErr: "tenant name is required"},
		{name: "duplicate", tenant: "acme-bank", wantErr: `tenant "acme-bank" already exists`},
		{name: "same data directory", tenant: "Acme Bank", wantErr: `would share data directory "acme_bank" with tenant "acme-bank"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &TenantsConfig{}
			require.NoError(t, cfg.Register("acme-bank", ""))

			err := cfg.Register(tt.tenant, "")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, []string{"acme-bank"}, cfg.Names())
				return
			}
			require.NoError(t, err)
			assert.True(t, cfg.Exists(tt.tenant))
		})
	}
}

func TestTenantsConfig_Get(t *testing.T) {
	cfg := &TenantsConfig{}

	_, err := cfg.Get("acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tenants configured")

	require.NoError(t, cfg.Register("acme", ""))
	_, err = cfg.Get("initech")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tenant "initech" not found (available: acme)`)
}

func TestTenantsConfig_Unregister(t *testing.T) {
	cfg := &TenantsConfig{}
	require.NoError(t, cfg.Register("acme", ""))

	require.NoError(t, cfg.Unregister("acme"))
	assert.False(t, cfg.Exists("acme"))

	err := cfg.Unregister("acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tenants configured")

	var empty TenantsConfig
	assert.False(t, empty.Exists("acme"))
	assert.Error(t, empty.Unregister("acme"))
}

func TestTenantsConfig_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		tenants   []string
		requested string
		want      string
		wantErr   string
	}{
		{"explicit", []string{"acme", "globex"}, "globex", "globex", ""},
		{"unknown", []string{"acme"}, "globex", "", "compliance tenants create globex"},
		{"single default", []string{"acme"}, "", "acme", ""},
		{"none", nil, "", "", "no tenants configured"},
		{"ambiguous", []string{"acme", "globex"}, "", "", "tenant is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &TenantsConfig{}
			for _, n := range tt.tenants {
				require.NoError(t, cfg.Register(n, ""))
			}

			got, err := cfg.Resolve(tt.requested)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeTenantName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple lowercase",
			input:    "acme",
			expected: "acme",
		},
		{
			name:     "uppercase converted",
			input:    "AcmeBank",
			expected: "acmebank",
		},
		{
			name:     "spaces to underscores",
			input:    "acme bank",
			expected: "acme_bank",
		},
		{
			name:     "hyphens to underscores",
			input:    "acme-bank",
			expected: "acme_bank",
		},
		{
			name:     "special characters removed",
			input:    "acme@bank!",
			expected: "acmebank",
		},
		{
			name:     "consecutive underscores collapsed",
			input:    "acme--bank",
			expected: "acme_bank",
		},
		{
			name:     "leading trailing underscores trimmed",
			input:    "-acme-bank-",
			expected: "acme_bank",
		},
		{
			name:     "empty string returns default",
			input:    "",
			expected: "default",
		},
		{
			name:     "only special chars returns default",
			input:    "!!!",
			expected: "default",
		},
		{
			name:     "path traversal stripped",
			input:    "../../etc",
			expected: "etc",
		},
		{
			name:     "complex mixed input",
			input:    "Acme Wealth (EU Desk)",
			expected: "acme_wealth_eu_desk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeTenantName(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSQLitePathForTenant(t *testing.T) {
	result := SQLitePathForTenant("/srv/app", "Acme Bank")
	assert.Equal(t, "/srv/app/.compliance/tenants/acme_bank/compliance.db", result)
}

func TestDatabasePath_Override(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "/srv/app/.compliance/tenants/acme/compliance.db", cfg.DatabasePath("/srv/app", "acme"))

	cfg.SQLite.Path = "/data/shared.db"
	assert.Equal(t, "/data/shared.db", cfg.DatabasePath("/srv/app", "acme"))
}

func TestDatabasePath_ResolvedTenant(t *testing.T) {
	tenants := &TenantsConfig{}
	require.NoError(t, tenants.Register("Acme Bank", ""))

	tenant, err := tenants.Resolve("")
	require.NoError(t, err)

	cfg := Default()
	assert.Equal(t, "/srv/app/.compliance/tenants/acme_bank/compliance.db", cfg.DatabasePath("/srv/app", tenant))
}
