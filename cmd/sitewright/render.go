package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sitewright/internal/config"
	"sitewright/internal/render"
	"sitewright/internal/resolve"
	"sitewright/internal/store"
)

func renderCmd() *cobra.Command {
	var (
		pageID    string
		slug      string
		locale    string
		published bool
		output    string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Resolve a page and print its markup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageID == "" && slug == "" {
				return fmt.Errorf("one of --page or --slug is required")
			}
			return runRender(pageID, slug, locale, published, output)
		},
	}
	cmd.Flags().StringVar(&pageID, "page", "", "Page id")
	cmd.Flags().StringVar(&slug, "slug", "", "Page slug")
	cmd.Flags().StringVar(&locale, "locale", "", "Locale id (defaults to the configured default)")
	cmd.Flags().BoolVar(&published, "published", false, "Render the published copy instead of the draft")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write markup to a file instead of stdout")
	return cmd
}

func runRender(pageID, slug, locale string, published bool, output string) error {
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

	result, rc, err := resolveForRender(ctx, cfg, db, pageID, slug, locale, published, nil)
	if err != nil {
		return err
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintf(os.Stderr, "warning: %s\n", d)
	}

	markup := render.HTML(result.Root, rc)
	if output != "" {
		return os.WriteFile(output, []byte(markup), 0o644)
	}
	fmt.Println(markup)
	return nil
}

// resolveForRender fetches and resolves a page, then assembles the render
// context: the active locale, the page index internal links route through,
// and the pagination side channel.
func resolveForRender(ctx context.Context, cfg *config.Config, db store.Store, pageID, slug, locale string, published bool, pageNumbers map[string]int) (*resolve.Result, *render.Context, error) {
	var page *store.Page
	var err error
	if pageID != "" {
		page, err = db.GetPage(ctx, pageID, published)
	} else {
		page, err = db.GetPageBySlug(ctx, slug, published)
	}
	if err != nil {
		return nil, nil, err
	}

	if locale == "" {
		locale = cfg.Site.DefaultLocale
	}

	resolver := resolve.New(db, cfg.Location())
	result, err := resolver.ResolvePage(ctx, page, resolve.Options{
		LocaleID:            locale,
		Published:           published,
		PageNumbers:         pageNumbers,
		DefaultItemsPerPage: cfg.Site.ItemsPerPage,
	})
	if err != nil {
		return nil, nil, err
	}

	summaries, err := db.ListPages(ctx, published)
	if err != nil {
		return nil, nil, fmt.Errorf("listing pages for link resolution: %w", err)
	}
	pages := make(map[string]render.PageRef, len(summaries))
	for _, p := range summaries {
		pages[p.ID] = render.PageRef{ID: p.ID, Slug: p.Slug, LocaleSlugs: p.LocaleSlugs}
	}

	rc := &render.Context{
		LocaleID:   locale,
		Pages:      pages,
		Pagination: result.Pagination,
	}
	return result, rc, nil
}
