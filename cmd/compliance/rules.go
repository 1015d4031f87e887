package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/services"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List and toggle compliance rules",
	}

	cmd.AddCommand(
		newRulesListCmd(),
		newRulesToggleCmd(),
	)

	return cmd
}

func newRulesListCmd() *cobra.Command {
	var collapse []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesList(cmd, collapse)
		},
	}

	cmd.Flags().StringSliceVar(&collapse, "collapse", nil, "Categories to show as a summary line only")

	return cmd
}

func runRulesList(cmd *cobra.Command, collapse []string) error {
	for _, c := range collapse {
		if !entities.RuleCategory(c).IsValid() {
			return fmt.Errorf("invalid category %q, valid categories: %v", c, entities.RuleCategories)
		}
	}

	ctx := cmd.Context()

	return withInternalDeps(func(d *internalDeps) error {
		for _, c := range collapse {
			d.rules.SetCollapsed(entities.RuleCategory(c), true)
		}

		result := d.RuleHandler.List(ctx)
		printLoadErrors(os.Stdout, result.LoadErrors)
		printRuleGroups(os.Stdout, result.Groups)
		return nil
	})
}

func printRuleGroups(w io.Writer, groups []services.CategoryGroup) {
	for _, g := range groups {
		fmt.Fprintf(w, "%s (%d/%d enabled)\n", g.Category, g.Enabled, len(g.Rules))
		if g.Collapsed {
			continue
		}
		if len(g.Rules) == 0 {
			fmt.Fprintln(w, "  (no rules)")
		}
		for _, r := range g.Rules {
			state := "on "
			if !r.Enabled {
				state = "off"
			}
			fmt.Fprintf(w, "  [%s] %-10s %-36s %s\n", state, r.Severity, r.ID, r.Name)
		}
	}
}

func newRulesToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle RULE_ID true|false",
		Short: "Enable or disable a rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid enabled value %q (use true or false)", args[1])
			}
			return runRulesToggle(cmd, args[0], enabled)
		},
	}
}

func runRulesToggle(cmd *cobra.Command, ruleID string, enabled bool) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.RuleHandler.Toggle(ctx, ruleID, enabled); err != nil {
			return err
		}

		state := "enabled"
		if !enabled {
			state = "disabled"
		}
		fmt.Printf("Rule %s %s\n", ruleID, state)
		return nil
	})
}
