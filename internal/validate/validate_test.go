package validate

import (
	"context"
	"testing"

	"sitewright/internal/model"
	"sitewright/internal/store"
)

type mockStore struct {
	pages      map[string]*store.Page
	components map[string]*model.Component
}

func (m *mockStore) Close(ctx context.Context) error        { return nil }
func (m *mockStore) EnsureSchema(ctx context.Context) error { return nil }

func (m *mockStore) ListPages(ctx context.Context, published bool) ([]store.PageSummary, error) {
	var out []store.PageSummary
	for _, p := range m.pages {
		out = append(out, store.PageSummary{ID: p.ID, Slug: p.Slug})
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
	return nil, store.ErrNotFound
}

func (m *mockStore) GetComponentsByIDs(ctx context.Context, ids []string, published bool) (map[string]*model.Component, error) {
	out := make(map[string]*model.Component)
	for _, id := range ids {
		if c, ok := m.components[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *mockStore) GetItemsWithValues(ctx context.Context, collectionID string, published bool, f store.ItemFilters) ([]store.Item, error) {
	return nil, nil
}

func (m *mockStore) GetFieldsByCollectionID(ctx context.Context, collectionID string, published bool) ([]store.Field, error) {
	return nil, nil
}

func (m *mockStore) GetAssetsByIDs(ctx context.Context, ids []string) (map[string]store.Asset, error) {
	return map[string]store.Asset{}, nil
}

func (m *mockStore) LoadTranslationsForLocale(ctx context.Context, localeID string) (*store.TranslationSet, error) {
	return nil, nil
}

func issuesByCode(report *Report) map[string]int {
	out := make(map[string]int)
	for _, issue := range report.Issues {
		out[issue.Code]++
	}
	return out
}

func TestRunFlagsStructuralProblems(t *testing.T) {
	db := &mockStore{
		pages: map[string]*store.Page{
			"page1": {ID: "page1", Slug: "home", Root: model.Fragment("root",
				&model.Layer{ID: "dup", Name: "box"},
				&model.Layer{ID: "dup", Name: "box"},
				&model.Layer{ID: "inst", Name: "box", ComponentID: "ghost"},
				&model.Layer{
					ID:           "btn",
					Name:         "button",
					Interactions: []model.Interaction{{Trigger: "click", Action: "show", TargetID: "nowhere"}},
				},
			)},
		},
	}

	report, err := Run(context.Background(), db, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	codes := issuesByCode(report)
	if codes[codeDuplicateLayerID] != 1 {
		t.Errorf("duplicate id issues = %d, want 1", codes[codeDuplicateLayerID])
	}
	if codes[codeDanglingComponent] != 1 {
		t.Errorf("dangling component issues = %d, want 1", codes[codeDanglingComponent])
	}
	if codes[codeDanglingTarget] != 1 {
		t.Errorf("dangling target issues = %d, want 1", codes[codeDanglingTarget])
	}
	if report.Errors() != 2 {
		t.Errorf("Errors() = %d, want 2", report.Errors())
	}
}

func TestRunDetectsComponentCycles(t *testing.T) {
	db := &mockStore{
		pages: map[string]*store.Page{
			"page1": {ID: "page1", Slug: "home", Root: model.Fragment("root",
				&model.Layer{ID: "inst", Name: "box", ComponentID: "a"},
			)},
		},
		components: map[string]*model.Component{
			"a": {ID: "a", Root: &model.Layer{ID: "aroot", Name: "box", Children: []*model.Layer{
				{ID: "ainner", Name: "box", ComponentID: "b"},
			}}},
			"b": {ID: "b", Root: &model.Layer{ID: "broot", Name: "box", Children: []*model.Layer{
				{ID: "binner", Name: "box", ComponentID: "a"},
			}}},
		},
	}

	report, err := Run(context.Background(), db, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if issuesByCode(report)[codeComponentCycle] == 0 {
		t.Errorf("cycle not reported: %+v", report.Issues)
	}
}

func TestRunPassesCleanContent(t *testing.T) {
	db := &mockStore{
		pages: map[string]*store.Page{
			"page1": {ID: "page1", Slug: "home", Root: model.Fragment("root",
				&model.Layer{ID: "inst", Name: "box", ComponentID: "card"},
				&model.Layer{
					ID:           "btn",
					Name:         "button",
					Interactions: []model.Interaction{{Trigger: "click", Action: "show", TargetID: "inst"}},
				},
			)},
		},
		components: map[string]*model.Component{
			"card": {ID: "card", Root: &model.Layer{ID: "croot", Name: "box", Children: []*model.Layer{
				{ID: "ctext", Name: "text"},
			}}},
		},
	}

	report, err := Run(context.Background(), db, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Errorf("clean content reported issues: %+v", report.Issues)
	}
}
