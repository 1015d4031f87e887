package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/compliance-core/internal/domain/entities"
)

func newDocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Inspect client documents",
	}

	cmd.AddCommand(newDocumentsListCmd())

	return cmd
}

func newDocumentsListCmd() *cobra.Command {
	var expiring int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents with days until expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			within := -1
			if cmd.Flags().Changed("expiring") {
				within = expiring
			}
			return runDocumentsList(cmd, within)
		},
	}

	cmd.Flags().IntVarP(&expiring, "expiring", "e", DefaultExpiringWindow, "Only documents expiring within this many days")

	return cmd
}

func runDocumentsList(cmd *cobra.Command, within int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		docs, loadErrs := d.DashboardHandler.Documents(ctx)
		printLoadErrors(os.Stdout, loadErrs)
		printDocuments(os.Stdout, filterExpiring(docs, within))
		return nil
	})
}

// filterExpiring keeps documents expiring within the window, including
// already expired ones. A negative window keeps everything.
func filterExpiring(docs []entities.Document, within int) []entities.Document {
	if within < 0 {
		return docs
	}
	result := make([]entities.Document, 0, len(docs))
	for _, doc := range docs {
		if d := doc.DaysUntilExpiry; d != nil && *d <= within {
			result = append(result, doc)
		}
	}
	return result
}

func printDocuments(w io.Writer, docs []entities.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return
	}

	fmt.Fprintf(w, "%-24s %-20s %-10s %-8s %s\n", "SUBJECT", "DOCUMENT", "EXPIRES", "DAYS", "KIND")
	for _, doc := range docs {
		expires, days := "-", "-"
		if doc.ExpiryDate != nil {
			expires = doc.ExpiryDate.Format("2006-01-02")
		}
		if doc.DaysUntilExpiry != nil {
			days = fmt.Sprintf("%d", *doc.DaysUntilExpiry)
		}
		fmt.Fprintf(w, "%-24s %-20s %-10s %-8s %s\n",
			truncate(doc.SubjectName, 24), truncate(doc.Name, 20), expires, days, doc.Kind)
	}
}
