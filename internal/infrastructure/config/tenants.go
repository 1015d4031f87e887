package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Each tenant owns .compliance/tenants/<dir>/compliance.db, where <dir> is
// the sanitized tenant name. Two tenants may not share a directory.

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// TenantsConfig is the tenant registry stored in tenants.yaml.
type TenantsConfig struct {
	Tenants map[string]TenantEntry `yaml:"tenants,omitempty"`
}

// TenantEntry holds configuration for a specific tenant.
type TenantEntry struct {
	Description string `yaml:"description,omitempty"`
}

// LoadTenants loads the tenant registry from the .compliance directory.
// A missing file is an empty registry.
func LoadTenants(basePath string) (*TenantsConfig, error) {
	data, err := os.ReadFile(TenantsFilePath(basePath))
	if os.IsNotExist(err) {
		return &TenantsConfig{Tenants: make(map[string]TenantEntry)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tenants file: %w", err)
	}

	var cfg TenantsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing tenants file: %w", err)
	}
	if cfg.Tenants == nil {
		cfg.Tenants = make(map[string]TenantEntry)
	}

	return &cfg, nil
}

// Save writes the registry to the tenants file.
func (c *TenantsConfig) Save(basePath string) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling tenants config: %w", err)
	}

	if err := os.WriteFile(TenantsFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing tenants file: %w", err)
	}

	return nil
}

// Register adds a tenant. It fails when the name is taken or when the name
// sanitizes to the data directory of an existing tenant.
func (c *TenantsConfig) Register(name, description string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("tenant name is required")
	}
	if c.Exists(name) {
		return fmt.Errorf("tenant %q already exists", name)
	}

	dir := SanitizeTenantName(name)
	for _, other := range c.Names() {
		if SanitizeTenantName(other) == dir {
			return fmt.Errorf("tenant %q would share data directory %q with tenant %q", name, dir, other)
		}
	}

	if c.Tenants == nil {
		c.Tenants = make(map[string]TenantEntry)
	}
	c.Tenants[name] = TenantEntry{Description: description}
	return nil
}

// Unregister removes a registered tenant.
func (c *TenantsConfig) Unregister(name string) error {
	if _, err := c.Get(name); err != nil {
		return err
	}
	delete(c.Tenants, name)
	return nil
}

// Get returns the configuration for a specific tenant.
func (c *TenantsConfig) Get(name string) (*TenantEntry, error) {
	if len(c.Tenants) == 0 {
		return nil, errors.New("no tenants configured")
	}

	entry, ok := c.Tenants[name]
	if !ok {
		names := c.Names()
		if len(names) > 5 {
			names = append(names[:5], "...")
		}
		return nil, fmt.Errorf("tenant %q not found (available: %s)", name, strings.Join(names, ", "))
	}

	return &entry, nil
}

// Resolve picks the tenant a command operates on: the requested one if it
// is registered, otherwise the only registered tenant.
func (c *TenantsConfig) Resolve(requested string) (string, error) {
	if requested != "" {
		if !c.Exists(requested) {
			return "", fmt.Errorf("tenant %q not found (use 'compliance tenants create %s')", requested, requested)
		}
		return requested, nil
	}

	names := c.Names()
	switch len(names) {
	case 0:
		return "", errors.New("no tenants configured (run 'compliance init' first)")
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("tenant is required when several are configured (use --tenant, one of %v)", names)
	}
}

// Names returns the tenant names in sorted order.
func (c *TenantsConfig) Names() []string {
	names := make([]string, 0, len(c.Tenants))
	for name := range c.Tenants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exists checks if a tenant is registered.
func (c *TenantsConfig) Exists(name string) bool {
	_, ok := c.Tenants[name]
	return ok
}

// SanitizeTenantName converts a tenant name to a safe directory name.
func SanitizeTenantName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	name = reNonAlphanumeric.ReplaceAllString(name, "")
	name = reMultipleUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return "default"
	}
	return name
}

// TenantDir returns the data directory of a tenant.
func TenantDir(basePath, tenant string) string {
	return filepath.Join(basePath, DefaultConfigDir, "tenants", SanitizeTenantName(tenant))
}

// SQLitePathForTenant returns the SQLite database path for a tenant.
func SQLitePathForTenant(basePath, tenant string) string {
	return filepath.Join(TenantDir(basePath, tenant), DefaultDatabaseFile)
}

// DatabasePath returns the configured SQLite override, or the tenant's
// own database path.
func (c *Config) DatabasePath(basePath, tenant string) string {
	if c.SQLite.Path != "" {
		return c.SQLite.Path
	}
	return SQLitePathForTenant(basePath, tenant)
}
