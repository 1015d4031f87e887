package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/services"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the compliance dashboard",
		Long:  "Shows the health score, the next actions and the insights for a tenant. Insights are printed when they arrive.",
		RunE:  runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		view, insights := d.DashboardHandler.Handle(ctx)

		printView(os.Stdout, view)

		fmt.Println("\nGenerating insights...")
		select {
		case result := <-insights:
			printInsights(os.Stdout, result)
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})
}

func printView(w io.Writer, view *services.View) {
	s := view.Stats
	fmt.Fprintf(w, "Tenant: %s\n\n", view.Tenant)
	fmt.Fprintf(w, "Compliance score: %d%% (%s)\n", s.OverallScore, formatTrend(s.Trend))
	fmt.Fprintf(w, "Rules: %d   Passed: %d   Failed: %d   Pending cases: %d   Expiring docs: %d\n",
		s.TotalRules, s.PassedChecks, s.FailedChecks, s.PendingCases, s.ExpiringDocs)

	printLoadErrors(w, view.LoadErrors)

	fmt.Fprintf(w, "\nNext actions (%d):\n", len(view.Actions))
	if len(view.Actions) == 0 {
		fmt.Fprintln(w, "  Nothing to do.")
	}
	for i, a := range view.Actions {
		due := ""
		if a.DueDate != nil {
			due = " due " + a.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "  %d. [%s] %s: %s%s\n", i+1, strings.ToUpper(string(a.Priority)), a.Kind, a.Title, due)
		if a.Description != "" {
			fmt.Fprintf(w, "     %s\n", a.Description)
		}
	}
}

func printInsights(w io.Writer, result services.InsightResult) {
	label := "AI"
	if result.Source == entities.SourceHeuristic {
		label = "heuristic"
	}
	fmt.Fprintf(w, "\nInsights (%s, %d):\n", label, len(result.Insights))
	if len(result.Insights) == 0 {
		fmt.Fprintln(w, "  No insights.")
	}
	for _, in := range result.Insights {
		fmt.Fprintf(w, "  %s. [%s] %s (%d%%)\n", in.ID, in.Type, in.Title, in.Confidence)
		if in.Description != "" {
			fmt.Fprintf(w, "     %s\n", in.Description)
		}
		if in.Action != "" {
			fmt.Fprintf(w, "     -> %s\n", in.Action)
		}
	}
}

func printLoadErrors(w io.Writer, loadErrs []services.LoadError) {
	if len(loadErrs) == 0 {
		return
	}
	fmt.Fprintf(w, "\nWarning: %d data sources failed to load:\n", len(loadErrs))
	for _, le := range loadErrs {
		fmt.Fprintf(w, "  %s: %v\n", le.Entity, le.Err)
	}
}

func formatTrend(trend int) string {
	switch {
	case trend > 0:
		return fmt.Sprintf("+%d pts", trend)
	case trend < 0:
		return fmt.Sprintf("%d pts", trend)
	default:
		return "flat"
	}
}
