package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/compliance-core/internal/application/handlers"
	"github.com/ersonp/compliance-core/internal/domain/entities"
)

func newCasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Work compliance cases",
	}

	cmd.AddCommand(
		newCasesListCmd(),
		newCasesStatusCmd(),
		newCasesCommentCmd(),
		newCasesCommentsCmd(),
	)

	return cmd
}

func newCasesListCmd() *cobra.Command {
	var (
		status  string
		pending bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := handlers.CaseListOptions{
				Status:      entities.CaseStatus(status),
				PendingOnly: pending,
			}
			return runCasesList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (open, under-review, resolved)")
	cmd.Flags().BoolVarP(&pending, "pending", "p", false, "Only open and under-review cases")

	return cmd
}

func runCasesList(cmd *cobra.Command, opts handlers.CaseListOptions) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		cases, loadErrs, err := d.CaseHandler.List(ctx, opts)
		if err != nil {
			return err
		}

		printLoadErrors(os.Stdout, loadErrs)
		printCases(os.Stdout, cases)
		return nil
	})
}

func printCases(w io.Writer, cases []entities.Case) {
	if len(cases) == 0 {
		fmt.Fprintln(w, "No cases found.")
		return
	}

	fmt.Fprintf(w, "%-36s %-13s %-9s %-4s %-10s %s\n", "ID", "STATUS", "PRIORITY", "REV", "CREATED", "TITLE")
	for _, c := range cases {
		fmt.Fprintf(w, "%-36s %-13s %-9s %-4d %-10s %s\n",
			c.ID, c.Status, c.Priority, c.Revision, c.CreatedAt.Format("2006-01-02"), truncate(c.Title, MaxTitleWidth))
	}
}

func newCasesStatusCmd() *cobra.Command {
	var revision int

	cmd := &cobra.Command{
		Use:   "status CASE_ID STATUS",
		Short: "Move a case to a new status",
		Long:  "Moves a case to open, under-review or resolved. Pass --revision to fail if the case changed since you last looked.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var expected *int
			if cmd.Flags().Changed("revision") {
				expected = &revision
			}
			return runCasesStatus(cmd, args[0], args[1], expected)
		},
	}

	cmd.Flags().IntVar(&revision, "revision", 0, "Expected case revision")

	return cmd
}

func runCasesStatus(cmd *cobra.Command, caseID, status string, revision *int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		c, err := d.CaseHandler.UpdateStatus(ctx, caseID, status, revision)
		if err != nil {
			return err
		}

		fmt.Printf("Case %s is now %s (revision %d)\n", c.ID, c.Status, c.Revision)
		return nil
	})
}

func newCasesCommentCmd() *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   "comment CASE_ID BODY",
		Short: "Add a comment to a case",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCasesComment(cmd, args[0], args[1], author)
		},
	}

	cmd.Flags().StringVarP(&author, "author", "a", os.Getenv("USER"), "Comment author")

	return cmd
}

func runCasesComment(cmd *cobra.Command, caseID, body, author string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		comment, err := d.CaseHandler.Comment(ctx, caseID, author, body)
		if err != nil {
			return err
		}

		fmt.Printf("Added comment %s to case %s\n", comment.ID, caseID)
		return nil
	})
}

func newCasesCommentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comments CASE_ID",
		Short: "List the comments of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCasesComments(cmd, args[0])
		},
	}
}

func runCasesComments(cmd *cobra.Command, caseID string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		comments, err := d.CaseHandler.Comments(ctx, caseID)
		if err != nil {
			return err
		}

		if len(comments) == 0 {
			fmt.Println("No comments.")
			return nil
		}
		for _, c := range comments {
			fmt.Printf("%s  %s\n  %s\n", c.CreatedAt.Format("2006-01-02 15:04"), c.Author, c.Body)
		}
		return nil
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
