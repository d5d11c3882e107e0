package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sitewright/internal/config"
	"sitewright/internal/validate"
)

func validateCmd() *cobra.Command {
	var published bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run integrity checks over stored pages and components",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(published)
		},
	}
	cmd.Flags().BoolVar(&published, "published", false, "Validate published copies instead of drafts")
	return cmd
}

func runValidate(published bool) error {
	ctx := context.Background()

	cfg, err := config.Load("sitewright.yaml")
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	report, err := validate.Run(ctx, db, published)
	if err != nil {
		return err
	}

	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(os.Stdout, "Errors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		fmt.Fprintf(os.Stdout, "Warnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out *os.File, issues []validate.Issue) {
	for _, issue := range issues {
		location := issue.LayerID
		if issue.PageID != "" {
			location = fmt.Sprintf("%s [page %s]", issue.LayerID, issue.PageID)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
