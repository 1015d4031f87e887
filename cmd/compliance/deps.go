package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/application/handlers"
	"github.com/ersonp/compliance-core/internal/domain/ports"
	"github.com/ersonp/compliance-core/internal/domain/services"
	"github.com/ersonp/compliance-core/internal/infrastructure/config"
	"github.com/ersonp/compliance-core/internal/infrastructure/llm"
	"github.com/ersonp/compliance-core/internal/infrastructure/llm/anthropic"
	"github.com/ersonp/compliance-core/internal/infrastructure/llm/openai"
	"github.com/ersonp/compliance-core/internal/infrastructure/logging"
	"github.com/ersonp/compliance-core/internal/infrastructure/metrics"
	"github.com/ersonp/compliance-core/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config           *config.Config
	Tenant           string
	Logger           *zap.Logger
	Metrics          *metrics.Collector
	DashboardHandler *handlers.DashboardHandler
	RuleHandler      *handlers.RuleHandler
	CaseHandler      *handlers.CaseHandler
}

// internalDeps holds all dependencies including low-level components.
// Used internally by helper functions.
type internalDeps struct {
	Deps
	repo       *sqlite.Repository
	compliance *services.ComplianceService
	rules      *services.RuleService
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
func withInternalDeps(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	tenants, err := config.LoadTenants(cwd)
	if err != nil {
		return fmt.Errorf("loading tenants: %w", err)
	}

	tenant, err := tenants.Resolve(globalTenant)
	if err != nil {
		return err
	}

	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: cfg.DatabasePath(cwd, tenant)}, logger)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	insightClient, err := newInsightClient(cfg.Insights)
	if err != nil {
		return fmt.Errorf("creating insight client: %w", err)
	}

	collector := metrics.NewCollector(nil)

	ruleService := services.NewRuleService(repo, logger)
	caseService := services.NewCaseService(repo, nil, logger)
	insightService := services.NewInsightService(insightClient, nil, logger)
	complianceService := services.NewComplianceService(repo, ruleService, caseService, insightService, logger,
		services.ComplianceOptions{
			Tenant:     tenant,
			CheckLimit: cfg.Engine.CheckLimit,
			Limits: services.ActionLimits{
				Documents: cfg.Engine.MaxDocumentActions,
				Cases:     cfg.Engine.MaxCaseActions,
			},
			Metrics: collector,
		})

	deps := &internalDeps{
		Deps: Deps{
			Config:           cfg,
			Tenant:           tenant,
			Logger:           logger,
			Metrics:          collector,
			DashboardHandler: handlers.NewDashboardHandler(complianceService),
			RuleHandler:      handlers.NewRuleHandler(complianceService),
			CaseHandler:      handlers.NewCaseHandler(complianceService),
		},
		repo:       repo,
		compliance: complianceService,
		rules:      ruleService,
	}

	return fn(deps)
}

// newInsightClient builds the configured remote client. It returns a nil
// interface for the none provider so the heuristics are used directly.
func newInsightClient(cfg config.InsightsConfig) (ports.InsightClient, error) {
	var client ports.InsightClient
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c, err := openai.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		client = c
	case config.ProviderAnthropic:
		c, err := anthropic.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		client = c
	default:
		return nil, nil
	}
	return llm.WithTimeout(client, cfg.Timeout), nil
}

// openStore opens a tenant database for schema management.
func openStore(logger *zap.Logger) handlers.StoreOpener {
	return func(path string) (ports.SchemaManager, error) {
		repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: path}, logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
}

// withImportHandler creates an ImportHandler and calls the provided function.
func withImportHandler(fn func(*handlers.ImportHandler) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		importService := services.NewImportService(d.repo, nil, d.Logger)
		return fn(handlers.NewImportHandler(importService))
	})
}
