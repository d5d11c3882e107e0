package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"sitewright/internal/config"
)

func inspectCmd() *cobra.Command {
	var (
		pageID    string
		slug      string
		locale    string
		published bool
		path      string
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Resolve a page and query the concrete tree with JSONPath",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageID == "" && slug == "" {
				return fmt.Errorf("one of --page or --slug is required")
			}
			return runInspect(pageID, slug, locale, published, path)
		},
	}
	cmd.Flags().StringVar(&pageID, "page", "", "Page id")
	cmd.Flags().StringVar(&slug, "slug", "", "Page slug")
	cmd.Flags().StringVar(&locale, "locale", "", "Locale id (defaults to the configured default)")
	cmd.Flags().BoolVar(&published, "published", false, "Inspect the published copy instead of the draft")
	cmd.Flags().StringVar(&path, "path", "$", "JSONPath selector over the resolved tree")
	return cmd
}

func runInspect(pageID, slug, locale string, published bool, path string) error {
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

	result, _, err := resolveForRender(ctx, cfg, db, pageID, slug, locale, published, nil)
	if err != nil {
		return err
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintf(os.Stderr, "warning: %s\n", d)
	}

	// Round-trip through JSON so the selector sees the wire shape, not the
	// internal structs.
	treeJSON, err := json.Marshal(result.Root)
	if err != nil {
		return fmt.Errorf("marshaling resolved tree: %w", err)
	}
	tree, err := oj.Parse(treeJSON)
	if err != nil {
		return fmt.Errorf("parsing resolved tree: %w", err)
	}

	x, err := jp.ParseString(path)
	if err != nil {
		return fmt.Errorf("invalid jsonpath %q: %w", path, err)
	}
	for _, match := range x.Get(tree) {
		fmt.Println(oj.JSON(match, 2))
	}
	return nil
}
