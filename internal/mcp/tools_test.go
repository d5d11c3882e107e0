package mcp

import (
	"context"
	"strings"
	"testing"

	"sitewright/internal/config"
	"sitewright/internal/model"
	"sitewright/internal/store"
)

type mockStore struct {
	pages  map[string]*store.Page
	items  map[string][]store.Item
	fields map[string][]store.Field
}

func (m *mockStore) Close(ctx context.Context) error        { return nil }
func (m *mockStore) EnsureSchema(ctx context.Context) error { return nil }

func (m *mockStore) ListPages(ctx context.Context, published bool) ([]store.PageSummary, error) {
	var out []store.PageSummary
	for _, p := range m.pages {
		out = append(out, store.PageSummary{ID: p.ID, Slug: p.Slug, Title: p.Title, LocaleSlugs: p.LocaleSlugs})
	}
	return out, nil
}

func (m *mockStore) GetPage(ctx context.Context, id string, published bool) (*store.Page, error) {
	p, ok := m.pages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (m *mockStore) GetPageBySlug(ctx context.Context, slug string, published bool) (*store.Page, error) {
	for _, p := range m.pages {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) GetComponentsByIDs(ctx context.Context, ids []string, published bool) (map[string]*model.Component, error) {
	return map[string]*model.Component{}, nil
}

func (m *mockStore) GetItemsWithValues(ctx context.Context, collectionID string, published bool, f store.ItemFilters) ([]store.Item, error) {
	return m.items[collectionID], nil
}

func (m *mockStore) GetFieldsByCollectionID(ctx context.Context, collectionID string, published bool) ([]store.Field, error) {
	return m.fields[collectionID], nil
}

func (m *mockStore) GetAssetsByIDs(ctx context.Context, ids []string) (map[string]store.Asset, error) {
	return map[string]store.Asset{}, nil
}

func (m *mockStore) LoadTranslationsForLocale(ctx context.Context, localeID string) (*store.TranslationSet, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Project: "test",
		Version: 1,
		Site:    config.SiteConfig{DefaultLocale: "en", ItemsPerPage: 10},
	}
}

func testStore() *mockStore {
	return &mockStore{
		pages: map[string]*store.Page{
			"pg1": {ID: "pg1", Slug: "home", Title: "Home", Root: model.Fragment("root",
				&model.Layer{ID: "headline", Name: "text", Variables: map[string]model.Variable{
					"text": model.StaticText("Welcome"),
				}},
				&model.Layer{
					ID:         "loop",
					Name:       "box",
					Collection: &model.CollectionVariable{CollectionID: "posts", Pagination: &model.PaginationConfig{Mode: model.PaginationPages, ItemsPerPage: 2}},
				},
			)},
		},
		items: map[string][]store.Item{
			"posts": {
				{ID: "p1", CollectionID: "posts"},
				{ID: "p2", CollectionID: "posts"},
				{ID: "p3", CollectionID: "posts"},
			},
		},
	}
}

func TestHandleResolvePage_RequiresSelector(t *testing.T) {
	server := NewServer(testConfig(), testStore(), "test")

	_, _, err := server.handleResolvePage(context.Background(), nil, ResolvePageInput{})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestHandleListPages(t *testing.T) {
	server := NewServer(testConfig(), testStore(), "test")

	_, output, err := server.handleListPages(context.Background(), nil, ListPagesInput{})
	if err != nil {
		t.Fatalf("handleListPages: %v", err)
	}
	if len(output.Pages) != 1 || output.Pages[0].Slug != "home" {
		t.Errorf("pages = %+v", output.Pages)
	}
}

func TestHandleResolvePage(t *testing.T) {
	server := NewServer(testConfig(), testStore(), "test")

	_, output, err := server.handleResolvePage(context.Background(), nil, ResolvePageInput{Slug: "home"})
	if err != nil {
		t.Fatalf("handleResolvePage: %v", err)
	}
	if output.Page.ID != "pg1" {
		t.Errorf("page = %+v", output.Page)
	}
	if len(output.Tree) == 0 {
		t.Errorf("resolved tree missing")
	}
	meta, ok := output.Pagination["loop"]
	if !ok {
		t.Fatalf("pagination metadata missing: %+v", output.Pagination)
	}
	if meta.TotalItems != 3 || meta.TotalPages != 2 {
		t.Errorf("pagination = %+v", meta)
	}
}

func TestHandleRenderPage(t *testing.T) {
	server := NewServer(testConfig(), testStore(), "test")

	_, output, err := server.handleRenderPage(context.Background(), nil, RenderPageInput{PageID: "pg1"})
	if err != nil {
		t.Fatalf("handleRenderPage: %v", err)
	}
	if !strings.Contains(output.HTML, "Welcome") {
		t.Errorf("markup missing resolved text: %q", output.HTML)
	}
}

func TestHandleRenderFragment(t *testing.T) {
	server := NewServer(testConfig(), testStore(), "test")

	_, output, err := server.handleRenderFragment(context.Background(), nil, RenderFragmentInput{
		PageID:  "pg1",
		LayerID: "loop",
		Page:    2,
	})
	if err != nil {
		t.Fatalf("handleRenderFragment: %v", err)
	}
	if output.Pagination == nil || output.Pagination.CurrentPage != 2 {
		t.Errorf("pagination = %+v", output.Pagination)
	}
	if !strings.Contains(output.HTML, `data-collection-item-id="p3"`) {
		t.Errorf("fragment markup should contain the second page's clone: %q", output.HTML)
	}
}
