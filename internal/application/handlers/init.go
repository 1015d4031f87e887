package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/compliance-core/internal/domain/ports"
	"github.com/ersonp/compliance-core/internal/infrastructure/config"
)

// DefaultTenant is the tenant created by init.
const DefaultTenant = "default"

// StoreOpener opens the store at a database path.
type StoreOpener func(path string) (ports.SchemaManager, error)

// InitHandler handles workspace initialization.
type InitHandler struct {
	open StoreOpener
}

// NewInitHandler creates a new init handler.
func NewInitHandler(open StoreOpener) *InitHandler {
	return &InitHandler{
		open: open,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath   string
	Tenant       string
	DatabasePath string
}

// Handle writes the default configuration, registers the first tenant and
// creates its database schema.
func (h *InitHandler) Handle(ctx context.Context, basePath, tenant string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("compliance already initialized in %s", basePath)
	}
	if tenant == "" {
		tenant = DefaultTenant
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	tenants, err := config.LoadTenants(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading tenants: %w", err)
	}
	if err := tenants.Register(tenant, "Created by init"); err != nil {
		return nil, err
	}
	if err := tenants.Save(basePath); err != nil {
		return nil, fmt.Errorf("saving tenants: %w", err)
	}

	dbPath := cfg.DatabasePath(basePath, tenant)
	if h.open != nil {
		store, err := h.open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &InitResult{
		ConfigPath:   config.ConfigFilePath(basePath),
		Tenant:       tenant,
		DatabasePath: dbPath,
	}, nil
}
