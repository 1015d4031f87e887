package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/compliance-core/internal/application/handlers"
	"github.com/ersonp/compliance-core/internal/infrastructure/parsers"
)

type importFlags struct {
	format string
	kind   string
	dryRun bool
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import records from JSON or CSV",
		Long: "Imports subjects, rules, checks, cases and documents. A JSON file holds a bundle of every kind; " +
			"a CSV file holds one kind, named with --kind. Records whose ID already exists are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().StringVarP(&flags.kind, "kind", "k", "", "Record kind for CSV files (subjects, rules, checks, cases, documents)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	if flags.kind != "" && !parsers.IsKind(flags.kind) {
		return fmt.Errorf("invalid --kind value %q (valid: %v)", flags.kind, parsers.Kinds)
	}

	ctx := cmd.Context()

	return withImportHandler(func(handler *handlers.ImportHandler) error {
		opts := handlers.ImportOptions{
			Format: flags.format,
			Kind:   flags.kind,
			DryRun: flags.dryRun,
		}

		fmt.Printf("Importing %s...\n", filePath)

		result, err := handler.Handle(ctx, filePath, opts)
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		if len(result.Errors) > 0 {
			fmt.Printf("\nValidation errors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e.Error())
			}
		}

		fmt.Println()
		if flags.dryRun {
			fmt.Printf("Dry run: %d records would be imported", result.Imported)
		} else {
			fmt.Printf("Imported: %d records", result.Imported)
		}

		if result.Skipped > 0 {
			fmt.Printf(", %d skipped (already exist)", result.Skipped)
		}

		if len(result.Errors) > 0 {
			fmt.Printf(", %d errors", len(result.Errors))
		}

		fmt.Println()

		return nil
	})
}
