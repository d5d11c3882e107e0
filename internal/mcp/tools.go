package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"sitewright/internal/render"
	"sitewright/internal/resolve"
	"sitewright/internal/store"
)

type ListPagesInput struct {
	Published bool `json:"published,omitempty" jsonschema:"list published copies instead of drafts"`
}

type ResolvePageInput struct {
	PageID      string         `json:"page_id,omitempty" jsonschema:"page id; one of page_id or slug is required"`
	Slug        string         `json:"slug,omitempty" jsonschema:"page slug; one of page_id or slug is required"`
	Locale      string         `json:"locale,omitempty" jsonschema:"locale id for the translation overlay"`
	Published   bool           `json:"published,omitempty" jsonschema:"resolve the published copy instead of the draft"`
	PageNumbers map[string]int `json:"page_numbers,omitempty" jsonschema:"requested page per paginated loop layer id"`
}

type RenderPageInput struct {
	PageID      string         `json:"page_id,omitempty" jsonschema:"page id; one of page_id or slug is required"`
	Slug        string         `json:"slug,omitempty" jsonschema:"page slug; one of page_id or slug is required"`
	Locale      string         `json:"locale,omitempty" jsonschema:"locale id for the translation overlay"`
	Published   bool           `json:"published,omitempty" jsonschema:"render the published copy instead of the draft"`
	PageNumbers map[string]int `json:"page_numbers,omitempty" jsonschema:"requested page per paginated loop layer id"`
}

type RenderFragmentInput struct {
	PageID    string `json:"page_id,omitempty" jsonschema:"page id; one of page_id or slug is required"`
	Slug      string `json:"slug,omitempty" jsonschema:"page slug; one of page_id or slug is required"`
	Locale    string `json:"locale,omitempty" jsonschema:"locale id for the translation overlay"`
	Published bool   `json:"published,omitempty" jsonschema:"render the published copy instead of the draft"`
	LayerID   string `json:"layer_id" jsonschema:"resolved loop layer id to re-render"`
	Page      int    `json:"page,omitempty" jsonschema:"requested page number for that loop"`
}

type PageOutput struct {
	ID          string            `json:"id"`
	Slug        string            `json:"slug"`
	Title       string            `json:"title"`
	LocaleSlugs map[string]string `json:"locale_slugs,omitempty"`
}

type ListPagesOutput struct {
	Pages []PageOutput `json:"pages"`
}

type DiagnosticOutput struct {
	Code    string `json:"code"`
	LayerID string `json:"layer_id,omitempty"`
	Detail  string `json:"detail"`
}

type PaginationOutput struct {
	CurrentPage  int    `json:"current_page"`
	TotalPages   int    `json:"total_pages"`
	TotalItems   int    `json:"total_items"`
	ItemsPerPage int    `json:"items_per_page"`
	Mode         string `json:"mode"`
}

type ResolvePageOutput struct {
	Page        PageOutput                  `json:"page"`
	Tree        json.RawMessage             `json:"tree"`
	Pagination  map[string]PaginationOutput `json:"pagination,omitempty"`
	Diagnostics []DiagnosticOutput          `json:"diagnostics,omitempty"`
}

type RenderPageOutput struct {
	Page        PageOutput                  `json:"page"`
	HTML        string                      `json:"html"`
	Pagination  map[string]PaginationOutput `json:"pagination,omitempty"`
	Diagnostics []DiagnosticOutput          `json:"diagnostics,omitempty"`
}

type RenderFragmentOutput struct {
	LayerID     string             `json:"layer_id"`
	HTML        string             `json:"html"`
	Pagination  *PaginationOutput  `json:"pagination,omitempty"`
	Diagnostics []DiagnosticOutput `json:"diagnostics,omitempty"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_pages",
		Description: "List pages with their slugs and localized slugs",
	}, s.handleListPages)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "resolve_page",
		Description: "Resolve a page into its concrete layer tree with pagination metadata and diagnostics",
	}, s.handleResolvePage)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "render_page",
		Description: "Resolve and render a page to a static markup string",
	}, s.handleRenderPage)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "render_fragment",
		Description: "Re-render one paginated loop at a given page without returning the whole document",
	}, s.handleRenderFragment)
}

func (s *Server) handleListPages(ctx context.Context, req *sdk.CallToolRequest, input ListPagesInput) (*sdk.CallToolResult, ListPagesOutput, error) {
	pages, err := s.db.ListPages(ctx, input.Published)
	if err != nil {
		return nil, ListPagesOutput{}, err
	}
	output := make([]PageOutput, 0, len(pages))
	for _, p := range pages {
		output = append(output, PageOutput{
			ID:          p.ID,
			Slug:        p.Slug,
			Title:       p.Title,
			LocaleSlugs: p.LocaleSlugs,
		})
	}
	return nil, ListPagesOutput{Pages: output}, nil
}

func (s *Server) handleResolvePage(ctx context.Context, req *sdk.CallToolRequest, input ResolvePageInput) (*sdk.CallToolResult, ResolvePageOutput, error) {
	result, err := s.resolvePage(ctx, input.PageID, input.Slug, input.Locale, input.Published, input.PageNumbers)
	if err != nil {
		return nil, ResolvePageOutput{}, err
	}
	tree, err := json.Marshal(result.Root)
	if err != nil {
		return nil, ResolvePageOutput{}, fmt.Errorf("marshaling resolved tree: %w", err)
	}
	return nil, ResolvePageOutput{
		Page:        pageOutputFromStore(result.Page),
		Tree:        tree,
		Pagination:  paginationOutputs(result.Pagination),
		Diagnostics: diagnosticOutputs(result.Diagnostics),
	}, nil
}

func (s *Server) handleRenderPage(ctx context.Context, req *sdk.CallToolRequest, input RenderPageInput) (*sdk.CallToolResult, RenderPageOutput, error) {
	result, err := s.resolvePage(ctx, input.PageID, input.Slug, input.Locale, input.Published, input.PageNumbers)
	if err != nil {
		return nil, RenderPageOutput{}, err
	}
	rc, err := s.renderContext(ctx, result, input.Locale, input.Published)
	if err != nil {
		return nil, RenderPageOutput{}, err
	}
	return nil, RenderPageOutput{
		Page:        pageOutputFromStore(result.Page),
		HTML:        render.HTML(result.Root, rc),
		Pagination:  paginationOutputs(result.Pagination),
		Diagnostics: diagnosticOutputs(result.Diagnostics),
	}, nil
}

func (s *Server) handleRenderFragment(ctx context.Context, req *sdk.CallToolRequest, input RenderFragmentInput) (*sdk.CallToolResult, RenderFragmentOutput, error) {
	if input.LayerID == "" {
		return nil, RenderFragmentOutput{}, fmt.Errorf("layer_id is required")
	}
	pageNumbers := map[string]int{}
	if input.Page > 0 {
		pageNumbers[input.LayerID] = input.Page
	}
	result, err := s.resolvePage(ctx, input.PageID, input.Slug, input.Locale, input.Published, pageNumbers)
	if err != nil {
		return nil, RenderFragmentOutput{}, err
	}
	fragment := result.Root.FindByID(input.LayerID)
	if fragment == nil {
		return nil, RenderFragmentOutput{}, fmt.Errorf("layer %s not found in resolved tree", input.LayerID)
	}
	rc, err := s.renderContext(ctx, result, input.Locale, input.Published)
	if err != nil {
		return nil, RenderFragmentOutput{}, err
	}
	output := RenderFragmentOutput{
		LayerID:     input.LayerID,
		HTML:        render.HTML(fragment, rc),
		Diagnostics: diagnosticOutputs(result.Diagnostics),
	}
	if meta, ok := result.Pagination[input.LayerID]; ok {
		out := paginationOutput(meta)
		output.Pagination = &out
	}
	return nil, output, nil
}

func (s *Server) resolvePage(ctx context.Context, pageID, slug, locale string, published bool, pageNumbers map[string]int) (*resolve.Result, error) {
	var page *store.Page
	var err error
	switch {
	case pageID != "":
		page, err = s.db.GetPage(ctx, pageID, published)
	case slug != "":
		page, err = s.db.GetPageBySlug(ctx, slug, published)
	default:
		return nil, fmt.Errorf("one of page_id or slug is required")
	}
	if err != nil {
		return nil, err
	}
	if locale == "" {
		locale = s.cfg.Site.DefaultLocale
	}
	return s.resolver.ResolvePage(ctx, page, resolve.Options{
		LocaleID:            locale,
		Published:           published,
		PageNumbers:         pageNumbers,
		DefaultItemsPerPage: s.cfg.Site.ItemsPerPage,
	})
}

func (s *Server) renderContext(ctx context.Context, result *resolve.Result, locale string, published bool) (*render.Context, error) {
	if locale == "" {
		locale = s.cfg.Site.DefaultLocale
	}
	summaries, err := s.db.ListPages(ctx, published)
	if err != nil {
		return nil, fmt.Errorf("listing pages for link resolution: %w", err)
	}
	pages := make(map[string]render.PageRef, len(summaries))
	for _, p := range summaries {
		pages[p.ID] = render.PageRef{ID: p.ID, Slug: p.Slug, LocaleSlugs: p.LocaleSlugs}
	}
	return &render.Context{
		LocaleID:   locale,
		Pages:      pages,
		Pagination: result.Pagination,
	}, nil
}

func pageOutputFromStore(p *store.Page) PageOutput {
	if p == nil {
		return PageOutput{}
	}
	return PageOutput{ID: p.ID, Slug: p.Slug, Title: p.Title, LocaleSlugs: p.LocaleSlugs}
}

func paginationOutputs(metas map[string]*resolve.Pagination) map[string]PaginationOutput {
	if len(metas) == 0 {
		return nil
	}
	out := make(map[string]PaginationOutput, len(metas))
	for id, meta := range metas {
		out[id] = paginationOutput(meta)
	}
	return out
}

func paginationOutput(meta *resolve.Pagination) PaginationOutput {
	return PaginationOutput{
		CurrentPage:  meta.CurrentPage,
		TotalPages:   meta.TotalPages,
		TotalItems:   meta.TotalItems,
		ItemsPerPage: meta.ItemsPerPage,
		Mode:         string(meta.Mode),
	}
}

func diagnosticOutputs(diags []resolve.Diagnostic) []DiagnosticOutput {
	if len(diags) == 0 {
		return nil
	}
	out := make([]DiagnosticOutput, 0, len(diags))
	for _, d := range diags {
		out = append(out, DiagnosticOutput{
			Code:    string(d.Code),
			LayerID: d.LayerID,
			Detail:  d.Detail,
		})
	}
	return out
}
