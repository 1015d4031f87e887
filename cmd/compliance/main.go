// Package main provides the entry point for the compliance CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version      = "0.1.0-dev"
	globalTenant string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "compliance",
		Short:   "Compliance monitoring and case lifecycle engine",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&globalTenant, "tenant", "t", "", "Tenant to operate on (default: the only configured tenant)")

	rootCmd.AddCommand(
		newInitCmd(),
		newDashboardCmd(),
		newRulesCmd(),
		newCasesCmd(),
		newDocumentsCmd(),
		newImportCmd(),
		newExportCmd(),
		newTenantsCmd(),
		newServeCmd(),
		newMonitorCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
