package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/application/handlers"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new compliance workspace",
		Long:  "Creates a .compliance directory with default configuration, registers the first tenant and creates its database.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	handler := handlers.NewInitHandler(openStore(zap.NewNop()))
	result, err := handler.Handle(cmd.Context(), cwd, globalTenant)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	fmt.Printf("Created tenant %q with database %s\n", result.Tenant, result.DatabasePath)
	fmt.Println("Compliance workspace initialized successfully!")

	return nil
}
