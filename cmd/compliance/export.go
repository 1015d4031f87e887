package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/compliance-core/internal/application/handlers"
	"github.com/ersonp/compliance-core/internal/domain/services"
)

type exportFlags struct {
	format string
	output string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a compliance report",
		Long:  "Exports the dashboard stats, actions, insights, cases and documents to JSON or markdown.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		report := d.DashboardHandler.Report(ctx)
		return writeReport(report, flags)
	})
}

func writeReport(report *handlers.Report, flags exportFlags) (err error) {
	var w io.Writer

	if flags.output != "" {
		f, err := os.OpenFile(flags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	} else {
		w = os.Stdout
	}

	switch flags.format {
	case "json":
		err = formatJSON(w, report)
	case "markdown":
		err = formatMarkdown(w, report)
	default:
		err = fmt.Errorf("unknown format: %s", flags.format)
	}
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if flags.output != "" {
		fmt.Printf("Exported report for tenant %s to %s\n", report.View.Tenant, flags.output)
	}

	return nil
}

type exportLoadError struct {
	Entity string `json:"entity"`
	Error  string `json:"error"`
}

type exportReport struct {
	*services.View
	Insights      any               `json:"insights"`
	InsightSource string            `json:"insight_source"`
	LoadErrors    []exportLoadError `json:"load_errors,omitempty"`
}

func formatJSON(w io.Writer, report *handlers.Report) error {
	out := exportReport{
		View:          report.View,
		Insights:      report.Insights.Insights,
		InsightSource: string(report.Insights.Source),
	}
	for _, le := range report.View.LoadErrors {
		out.LoadErrors = append(out.LoadErrors, exportLoadError{Entity: le.Entity, Error: le.Err.Error()})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func formatMarkdown(w io.Writer, report *handlers.Report) error {
	view := report.View
	stats := view.Stats

	if _, err := fmt.Fprintf(w, "# Compliance Report: %s\n\nGenerated: %s\n\n",
		view.Tenant, view.GeneratedAt.Format("2006-01-02 15:04 MST")); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "## Summary\n\n| Score | Trend | Rules | Passed | Failed | Pending cases | Expiring docs |\n"+
		"|-------|-------|-------|--------|--------|---------------|---------------|\n"+
		"| %d | %s | %d | %d | %d | %d | %d |\n\n",
		stats.OverallScore, formatTrend(stats.Trend), stats.TotalRules,
		stats.PassedChecks, stats.FailedChecks, stats.PendingCases, stats.ExpiringDocs); err != nil {
		return err
	}

	if len(view.LoadErrors) > 0 {
		if _, err := fmt.Fprint(w, "## Load Errors\n\n"); err != nil {
			return err
		}
		for _, le := range view.LoadErrors {
			if _, err := fmt.Fprintf(w, "- %s: %s\n", le.Entity, escapeMarkdown(le.Err.Error())); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(w, "## Actions\n\n"); err != nil {
		return err
	}
	if len(view.Actions) == 0 {
		if _, err := fmt.Fprint(w, "No pending actions.\n\n"); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprint(w, "| Priority | Kind | Title | Due |\n|----------|------|-------|-----|\n"); err != nil {
			return err
		}
		for _, a := range view.Actions {
			due := "-"
			if a.DueDate != nil {
				due = a.DueDate.Format("2006-01-02")
			}
			if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s |\n", a.Priority, a.Kind, escapeMarkdown(a.Title), due); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "## Insights (%s)\n\n", report.Insights.Source); err != nil {
		return err
	}
	for _, in := range report.Insights.Insights {
		if _, err := fmt.Fprintf(w, "- **%s** [%s, %d%%]: %s\n", escapeMarkdown(in.Title), in.Type, in.Confidence,
			escapeMarkdown(in.Description)); err != nil {
			return err
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
