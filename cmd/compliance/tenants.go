package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/application/handlers"
	"github.com/ersonp/compliance-core/internal/infrastructure/config"
)

// tenantManager handles tenant registration and per-tenant databases.
type tenantManager struct {
	basePath string
	open     handlers.StoreOpener
}

func newTenantManager(open handlers.StoreOpener) (*tenantManager, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	return &tenantManager{basePath: cwd, open: open}, nil
}

func newTenantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenants",
		Short: "Manage tenants",
		RunE:  runTenantsList,
	}

	cmd.AddCommand(
		newTenantsListCmd(),
		newTenantsCreateCmd(),
		newTenantsDeleteCmd(),
	)

	return cmd
}

func newTenantsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tenants",
		RunE:  runTenantsList,
	}
}

func runTenantsList(cmd *cobra.Command, args []string) error {
	m, err := newTenantManager(nil)
	if err != nil {
		return err
	}
	return m.list(os.Stdout)
}

func (m *tenantManager) list(w io.Writer) error {
	tenants, err := config.LoadTenants(m.basePath)
	if err != nil {
		return fmt.Errorf("loading tenants: %w", err)
	}

	names := tenants.Names()
	if len(names) == 0 {
		fmt.Fprintln(w, "No tenants configured.")
		fmt.Fprintln(w, "Use 'compliance tenants create NAME' to create a tenant.")
		return nil
	}

	fmt.Fprintf(w, "%-20s %s\n", "NAME", "DESCRIPTION")
	fmt.Fprintf(w, "%-20s %s\n", "----", "-----------")
	for _, name := range names {
		fmt.Fprintf(w, "%-20s %s\n", name, tenants.Tenants[name].Description)
	}

	return nil
}

func newTenantsCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newTenantManager(openStore(zap.NewNop()))
			if err != nil {
				return err
			}
			dbPath, err := m.create(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Printf("Created tenant %q with database %s\n", args[0], dbPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Tenant description")

	return cmd
}

// create registers a tenant, initializing the workspace first if needed,
// and creates the tenant's database schema.
func (m *tenantManager) create(ctx context.Context, name, description string) (string, error) {
	if !config.Exists(m.basePath) {
		if err := config.WriteDefault(m.basePath); err != nil {
			return "", fmt.Errorf("initializing config: %w", err)
		}
	}

	cfg, err := config.Load(m.basePath)
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}

	tenants, err := config.LoadTenants(m.basePath)
	if err != nil {
		return "", fmt.Errorf("loading tenants: %w", err)
	}
	if err := tenants.Register(name, description); err != nil {
		return "", err
	}
	if err := tenants.Save(m.basePath); err != nil {
		return "", err
	}

	dbPath := cfg.DatabasePath(m.basePath, name)
	if m.open == nil {
		return dbPath, nil
	}

	store, err := m.open(dbPath)
	if err != nil {
		return "", fmt.Errorf("opening tenant database: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return "", fmt.Errorf("creating schema: %w", err)
	}

	return dbPath, nil
}

func newTenantsDeleteCmd() *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a tenant",
		Long:  "Removes a tenant from tenants.yaml. With --purge its data directory is deleted as well.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newTenantManager(nil)
			if err != nil {
				return err
			}
			if err := m.delete(args[0], purge); err != nil {
				return err
			}
			fmt.Printf("Deleted tenant %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "Also delete the tenant's data directory")

	return cmd
}

func (m *tenantManager) delete(name string, purge bool) error {
	tenants, err := config.LoadTenants(m.basePath)
	if err != nil {
		return fmt.Errorf("loading tenants: %w", err)
	}
	if err := tenants.Unregister(name); err != nil {
		return err
	}
	if err := tenants.Save(m.basePath); err != nil {
		return err
	}

	if purge {
		if err := os.RemoveAll(config.TenantDir(m.basePath, name)); err != nil {
			return fmt.Errorf("removing tenant data: %w", err)
		}
	}

	return nil
}
