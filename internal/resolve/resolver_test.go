package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"sitewright/internal/model"
	"sitewright/internal/store"
)

type mockStore struct {
	pages        map[string]*store.Page
	components   map[string]*model.Component
	items        map[string][]store.Item
	fields       map[string][]store.Field
	assets       map[string]store.Asset
	translations *store.TranslationSet

	itemErr error
}

func (m *mockStore) Close(ctx context.Context) error        { return nil }
func (m *mockStore) EnsureSchema(ctx context.Context) error { return nil }

func (m *mockStore) ListPages(ctx context.Context, published bool) ([]store.PageSummary, error) {
	var out []store.PageSummary
	for _, p := range m.pages {
		out = append(out, store.PageSummary{ID: p.ID, Slug: p.Slug, Title: p.Title})
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
	out := make(map[string]*model.Component)
	for _, id := range ids {
		if c, ok := m.components[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *mockStore) GetItemsWithValues(ctx context.Context, collectionID string, published bool, f store.ItemFilters) ([]store.Item, error) {
	if m.itemErr != nil {
		return nil, m.itemErr
	}
	items := m.items[collectionID]
	if len(f.ItemIDs) > 0 {
		want := make(map[string]struct{}, len(f.ItemIDs))
		for _, id := range f.ItemIDs {
			want[id] = struct{}{}
		}
		var out []store.Item
		for _, it := range items {
			if _, ok := want[it.ID]; ok {
				out = append(out, it)
			}
		}
		return out, nil
	}
	return items, nil
}

func (m *mockStore) GetFieldsByCollectionID(ctx context.Context, collectionID string, published bool) ([]store.Field, error) {
	return m.fields[collectionID], nil
}

func (m *mockStore) GetAssetsByIDs(ctx context.Context, ids []string) (map[string]store.Asset, error) {
	out := make(map[string]store.Asset)
	for _, id := range ids {
		if a, ok := m.assets[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (m *mockStore) LoadTranslationsForLocale(ctx context.Context, localeID string) (*store.TranslationSet, error) {
	return m.translations, nil
}

func fieldBinding(fieldID string, relationships ...string) model.Variable {
	return model.Variable{Type: model.VariableField, Field: &model.FieldRef{
		FieldID:       fieldID,
		Relationships: relationships,
	}}
}

func resolveRoot(t *testing.T, db store.Store, root *model.Layer, opts Options) *Result {
	t.Helper()
	page := &store.Page{ID: "page1", Slug: "home", Root: root}
	result, err := New(db, time.UTC).ResolvePage(context.Background(), page, opts)
	if err != nil {
		t.Fatalf("ResolvePage: %v", err)
	}
	return result
}

func TestComponentOverridePrecedence(t *testing.T) {
	def := model.StaticText("default")
	comp := &model.Component{
		ID:   "comp1",
		Name: "Card",
		Root: &model.Layer{ID: "croot", Name: "box", Children: []*model.Layer{{
			ID:   "ctext",
			Name: "text",
			Variables: map[string]model.Variable{
				"text": {Type: model.VariableStaticText, Text: "authored", ComponentVariableID: "var1"},
			},
		}}},
		Variables: []model.ComponentVariable{{ID: "var1", Name: "Title", Type: model.ComponentVarText, Default: &def}},
	}

	tests := []struct {
		name      string
		overrides map[string]model.Variable
		noDefault bool
		want      model.Variable
	}{
		{
			name:      "override wins",
			overrides: map[string]model.Variable{"var1": model.StaticText("override")},
			want:      model.StaticText("override"),
		},
		{
			name: "default applies without override",
			want: model.StaticText("default"),
		},
		{
			name:      "linked slot with neither is empty, not the authored literal",
			noDefault: true,
			want:      model.StaticText(""),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *comp
			if tt.noDefault {
				c.Variables = []model.ComponentVariable{{ID: "var1", Name: "Title", Type: model.ComponentVarText}}
			}
			db := &mockStore{components: map[string]*model.Component{"comp1": &c}}
			root := model.Fragment("root", &model.Layer{
				ID:                 "inst1",
				Name:               "box",
				ComponentID:        "comp1",
				ComponentOverrides: tt.overrides,
			})

			result := resolveRoot(t, db, root, Options{})

			text := result.Root.FindByID("inst1_ctext")
			if text == nil {
				t.Fatalf("expanded text layer not found; tree: %s", treeJSON(t, result.Root))
			}
			got, ok := text.Variable("text")
			if !ok {
				t.Fatalf("text slot missing")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resolved variable = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComponentNamespacingIsUniqueAndRewritesTargets(t *testing.T) {
	comp := &model.Component{
		ID: "comp1",
		Root: &model.Layer{ID: "croot", Name: "box", Children: []*model.Layer{
			{
				ID:           "trigger",
				Name:         "button",
				Interactions: []model.Interaction{{Trigger: "click", Action: "show", TargetID: "panel"}},
			},
			{ID: "panel", Name: "box"},
		}},
	}
	db := &mockStore{components: map[string]*model.Component{"comp1": comp}}
	root := model.Fragment("root",
		&model.Layer{ID: "instA", Name: "box", ComponentID: "comp1"},
		&model.Layer{ID: "instB", Name: "box", ComponentID: "comp1"},
	)

	result := resolveRoot(t, db, root, Options{})

	ids := map[string]int{}
	result.Root.Walk(func(n *model.Layer) bool {
		ids[n.ID]++
		return true
	})
	for id, count := range ids {
		if count > 1 {
			t.Errorf("id %s produced %d times", id, count)
		}
	}

	for _, inst := range []string{"instA", "instB"} {
		trigger := result.Root.FindByID(inst + "_trigger")
		if trigger == nil {
			t.Fatalf("%s_trigger not found", inst)
		}
		wantTarget := inst + "_panel"
		if got := trigger.Interactions[0].TargetID; got != wantTarget {
			t.Errorf("interaction target = %q, want %q", got, wantTarget)
		}
		if result.Root.FindByID(wantTarget) == nil {
			t.Errorf("rewritten target %s does not exist in the tree", wantTarget)
		}
	}
}

func TestComponentCycleStopsExpansion(t *testing.T) {
	comp := &model.Component{
		ID: "loop",
		Root: &model.Layer{ID: "croot", Name: "box", Children: []*model.Layer{
			{ID: "inner", Name: "box", ComponentID: "loop"},
		}},
	}
	db := &mockStore{components: map[string]*model.Component{"loop": comp}}
	root := model.Fragment("root", &model.Layer{ID: "inst", Name: "box", ComponentID: "loop"})

	result := resolveRoot(t, db, root, Options{})

	if !hasDiagnostic(result.Diagnostics, CycleDetected) {
		t.Errorf("expected a cycle diagnostic, got %v", result.Diagnostics)
	}
}

func TestMissingComponentDegradesLocally(t *testing.T) {
	db := &mockStore{}
	root := model.Fragment("root",
		&model.Layer{ID: "inst", Name: "box", ComponentID: "ghost"},
		&model.Layer{ID: "sibling", Name: "text", Variables: map[string]model.Variable{
			"text": model.StaticText("still here"),
		}},
	)

	result := resolveRoot(t, db, root, Options{})

	if !hasDiagnostic(result.Diagnostics, ReferenceMissing) {
		t.Fatalf("expected a reference diagnostic, got %v", result.Diagnostics)
	}
	if result.Root.FindByID("sibling") == nil {
		t.Errorf("sibling should survive a missing component")
	}
}

func postsStore(n int) *mockStore {
	items := make([]store.Item, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, store.Item{
			ID:           fmt.Sprintf("p%d", i),
			CollectionID: "posts",
			Slug:         fmt.Sprintf("post-%d", i),
			Values:       map[string]any{"title": fmt.Sprintf("Post %d", i)},
		})
	}
	return &mockStore{
		items:  map[string][]store.Item{"posts": items},
		fields: map[string][]store.Field{"posts": {{ID: "title", CollectionID: "posts", Type: store.FieldText}}},
	}
}

func loopLayer(pagination *model.PaginationConfig) *model.Layer {
	return &model.Layer{
		ID:         "loop",
		Name:       "box",
		Collection: &model.CollectionVariable{CollectionID: "posts", Pagination: pagination},
		Children: []*model.Layer{{
			ID:        "title",
			Name:      "text",
			Variables: map[string]model.Variable{"text": fieldBinding("title")},
		}},
	}
}

func TestCollectionPagination(t *testing.T) {
	db := postsStore(25)
	root := model.Fragment("root", loopLayer(&model.PaginationConfig{Mode: model.PaginationPages, ItemsPerPage: 10}))

	result := resolveRoot(t, db, root, Options{PageNumbers: map[string]int{"loop": 3}})

	fragment := result.Root.FindByID("loop")
	if fragment == nil || !fragment.IsFragment() {
		t.Fatalf("loop did not expand to a fragment: %s", treeJSON(t, result.Root))
	}
	if len(fragment.Children) != 5 {
		t.Fatalf("page 3 of 25 items with 10 per page should have 5 clones, got %d", len(fragment.Children))
	}
	if got, want := fragment.Children[0].ID, "loop__p21"; got != want {
		t.Errorf("first clone id = %q, want %q", got, want)
	}

	meta := result.Pagination["loop"]
	if meta == nil {
		t.Fatalf("pagination metadata missing")
	}
	want := &Pagination{CurrentPage: 3, TotalPages: 3, TotalItems: 25, ItemsPerPage: 10, Mode: model.PaginationPages}
	if !reflect.DeepEqual(meta, want) {
		t.Errorf("pagination = %+v, want %+v", meta, want)
	}

	title := fragment.Children[0].FindByID("title__p21")
	if title == nil {
		t.Fatalf("clone child not found")
	}
	if got, _ := title.Variable("text"); got.Text != "Post 21" {
		t.Errorf("resolved title = %q, want %q", got.Text, "Post 21")
	}
}

func TestLoadMoreRetainsTemplate(t *testing.T) {
	db := postsStore(12)
	root := model.Fragment("root", loopLayer(&model.PaginationConfig{Mode: model.PaginationLoadMore, ItemsPerPage: 10}))

	result := resolveRoot(t, db, root, Options{})

	meta := result.Pagination["loop"]
	if meta == nil {
		t.Fatalf("pagination metadata missing")
	}
	if meta.LayerTemplate == nil {
		t.Fatalf("load_more should retain the layer template")
	}
	if meta.LayerTemplate.Collection == nil {
		t.Errorf("retained template should keep its collection binding")
	}
}

func TestCollectionFetchFailureDegrades(t *testing.T) {
	db := postsStore(3)
	db.itemErr = errors.New("connection refused")
	root := model.Fragment("root",
		loopLayer(nil),
		&model.Layer{ID: "sibling", Name: "text", Variables: map[string]model.Variable{
			"text": model.StaticText("unaffected"),
		}},
	)

	result := resolveRoot(t, db, root, Options{})

	if !hasDiagnostic(result.Diagnostics, DataFetchFailure) {
		t.Fatalf("expected a fetch diagnostic, got %v", result.Diagnostics)
	}
	loop := result.Root.FindByID("loop")
	if loop == nil {
		t.Fatalf("degraded loop should remain in the tree")
	}
	if loop.IsFragment() {
		t.Errorf("failed loop must not expand")
	}
	if result.Root.FindByID("sibling") == nil {
		t.Errorf("sibling must survive a loop fetch failure")
	}
}

func TestRelationshipPathResolution(t *testing.T) {
	db := &mockStore{
		items: map[string][]store.Item{
			"books":   {{ID: "b1", CollectionID: "books", Values: map[string]any{"author": "a1"}}},
			"authors": {{ID: "a1", CollectionID: "authors", Values: map[string]any{"name": "Ada"}}},
		},
		fields: map[string][]store.Field{
			"books":   {{ID: "author", CollectionID: "books", Type: store.FieldReference, ReferencedCollectionID: "authors"}},
			"authors": {{ID: "name", CollectionID: "authors", Type: store.FieldText}},
		},
	}
	root := model.Fragment("root", &model.Layer{
		ID:         "loop",
		Name:       "box",
		Collection: &model.CollectionVariable{CollectionID: "books"},
		Children: []*model.Layer{{
			ID:        "byline",
			Name:      "text",
			Variables: map[string]model.Variable{"text": fieldBinding("author", "name")},
		}},
	})

	result := resolveRoot(t, db, root, Options{})

	byline := result.Root.FindByID("byline__b1")
	if byline == nil {
		t.Fatalf("clone not found: %s", treeJSON(t, result.Root))
	}
	if got, _ := byline.Variable("text"); got.Text != "Ada" {
		t.Errorf("resolved relationship value = %q, want %q", got.Text, "Ada")
	}
}

func TestReferenceCycleGuard(t *testing.T) {
	db := &mockStore{
		items: map[string][]store.Item{
			"nodes": {
				{ID: "n1", CollectionID: "nodes", Values: map[string]any{"next": "n2", "label": "one"}},
				{ID: "n2", CollectionID: "nodes", Values: map[string]any{"next": "n1", "label": "two"}},
			},
		},
		fields: map[string][]store.Field{
			"nodes": {
				{ID: "next", CollectionID: "nodes", Type: store.FieldReference, ReferencedCollectionID: "nodes"},
				{ID: "label", CollectionID: "nodes", Type: store.FieldText},
			},
		},
	}
	root := model.Fragment("root", &model.Layer{
		ID:         "loop",
		Name:       "box",
		Collection: &model.CollectionVariable{CollectionID: "nodes"},
		Children: []*model.Layer{{
			ID:        "label",
			Name:      "text",
			Variables: map[string]model.Variable{"text": fieldBinding("next", "label")},
		}},
	})

	done := make(chan *Result, 1)
	go func() {
		done <- resolveRoot(t, db, root, Options{})
	}()
	select {
	case result := <-done:
		label := result.Root.FindByID("label__n1")
		if label == nil {
			t.Fatalf("clone not found")
		}
		if got, _ := label.Variable("text"); got.Text != "two" {
			t.Errorf("one hop should still resolve, got %q", got.Text)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("resolution did not terminate on a reference cycle")
	}
}

func TestFieldSortIsNumericAware(t *testing.T) {
	db := &mockStore{
		items: map[string][]store.Item{
			"scores": {
				{ID: "s1", CollectionID: "scores", Values: map[string]any{"points": "9"}},
				{ID: "s2", CollectionID: "scores", Values: map[string]any{"points": "10"}},
				{ID: "s3", CollectionID: "scores", Values: map[string]any{"points": "2"}},
			},
		},
		fields: map[string][]store.Field{"scores": {{ID: "points", CollectionID: "scores", Type: store.FieldText}}},
	}
	root := model.Fragment("root", &model.Layer{
		ID:   "loop",
		Name: "box",
		Collection: &model.CollectionVariable{
			CollectionID: "scores",
			Sort:         &model.SortConfig{Mode: model.SortField, FieldID: "points"},
		},
	})

	result := resolveRoot(t, db, root, Options{})

	fragment := result.Root.FindByID("loop")
	if fragment == nil {
		t.Fatalf("loop fragment not found")
	}
	var got []string
	for _, c := range fragment.Children {
		got = append(got, c.ItemID)
	}
	// "10" sorts after "9" numerically even though "10" < "9" as text.
	want := []string{"s3", "s1", "s2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sorted order = %v, want %v", got, want)
	}
}

func TestMultiAssetSourceField(t *testing.T) {
	db := &mockStore{
		items: map[string][]store.Item{
			"galleries": {{ID: "g1", CollectionID: "galleries", Values: map[string]any{"photos": []any{"as1", "as2"}}}},
		},
		fields: map[string][]store.Field{
			"galleries": {{ID: "photos", CollectionID: "galleries", Type: store.FieldMultiAsset}},
		},
		assets: map[string]store.Asset{
			"as1": {ID: "as1", URL: "https://cdn.test/a.jpg", Alt: "first"},
			"as2": {ID: "as2", URL: "https://cdn.test/b.jpg", Alt: "second"},
		},
	}
	root := model.Fragment("root", &model.Layer{
		ID:         "outer",
		Name:       "box",
		Collection: &model.CollectionVariable{CollectionID: "galleries"},
		Children: []*model.Layer{{
			ID:         "inner",
			Name:       "box",
			Collection: &model.CollectionVariable{SourceFieldID: "photos"},
			Children: []*model.Layer{{
				ID:        "caption",
				Name:      "text",
				Variables: map[string]model.Variable{"text": fieldBinding("alt")},
			}},
		}},
	})

	result := resolveRoot(t, db, root, Options{})

	first := result.Root.FindByID("caption__as1__g1")
	if first == nil {
		t.Fatalf("virtual asset clone not found: %s", treeJSON(t, result.Root))
	}
	if got, _ := first.Variable("text"); got.Text != "first" {
		t.Errorf("virtual item alt = %q, want %q", got.Text, "first")
	}
}

func TestVisibilityItemCountPruning(t *testing.T) {
	emptyState := func() *model.Layer {
		return &model.Layer{
			ID:   "empty-state",
			Name: "box",
			Visibility: &model.ConditionGroup{Groups: [][]model.Condition{{
				{Kind: model.ConditionItemCount, Operator: model.OpHasNoItems, LayerID: "loop"},
			}}},
			Children: []*model.Layer{{ID: "empty-text", Name: "text"}},
		}
	}

	t.Run("kept when loop is empty", func(t *testing.T) {
		db := postsStore(0)
		result := resolveRoot(t, db, model.Fragment("root", loopLayer(nil), emptyState()), Options{})
		if result.Root.FindByID("empty-state") == nil {
			t.Errorf("empty state should be visible for an empty loop")
		}
	})

	t.Run("pruned with its subtree when loop has items", func(t *testing.T) {
		db := postsStore(3)
		result := resolveRoot(t, db, model.Fragment("root", loopLayer(nil), emptyState()), Options{})
		if result.Root.FindByID("empty-state") != nil {
			t.Errorf("empty state should be pruned when the loop has items")
		}
		if result.Root.FindByID("empty-text") != nil {
			t.Errorf("pruning must remove the entire subtree")
		}
	})
}

func TestVisibilityFieldConditionInsideLoop(t *testing.T) {
	db := &mockStore{
		items: map[string][]store.Item{
			"posts": {
				{ID: "p1", CollectionID: "posts", Values: map[string]any{"featured": true}},
				{ID: "p2", CollectionID: "posts", Values: map[string]any{"featured": false}},
			},
		},
		fields: map[string][]store.Field{"posts": {{ID: "featured", CollectionID: "posts", Type: store.FieldBoolean}}},
	}
	root := model.Fragment("root", &model.Layer{
		ID:         "loop",
		Name:       "box",
		Collection: &model.CollectionVariable{CollectionID: "posts"},
		Children: []*model.Layer{{
			ID:   "badge",
			Name: "text",
			Visibility: &model.ConditionGroup{Groups: [][]model.Condition{{
				{
					Kind:      model.ConditionField,
					Field:     &model.FieldRef{FieldID: "featured"},
					FieldType: model.FieldTypeBoolean,
					Operator:  model.OpIsTrue,
				},
			}}},
		}},
	})

	result := resolveRoot(t, db, root, Options{})

	if result.Root.FindByID("badge__p1") == nil {
		t.Errorf("badge should be visible for the featured item")
	}
	if result.Root.FindByID("badge__p2") != nil {
		t.Errorf("badge should be pruned for the non-featured item")
	}
}

func TestVisibilityFieldConditionInsideNestedLoop(t *testing.T) {
	db := &mockStore{
		items: map[string][]store.Item{
			"outers": {
				{ID: "o1", CollectionID: "outers"},
				{ID: "o2", CollectionID: "outers"},
			},
			"posts": {
				{ID: "p1", CollectionID: "posts", Values: map[string]any{"featured": true}},
				{ID: "p2", CollectionID: "posts", Values: map[string]any{"featured": false}},
			},
		},
		fields: map[string][]store.Field{"posts": {{ID: "featured", CollectionID: "posts", Type: store.FieldBoolean}}},
	}
	root := model.Fragment("root", &model.Layer{
		ID:         "outer",
		Name:       "box",
		Collection: &model.CollectionVariable{CollectionID: "outers"},
		Children: []*model.Layer{{
			ID:         "inner",
			Name:       "box",
			Collection: &model.CollectionVariable{CollectionID: "posts"},
			Children: []*model.Layer{{
				ID:   "badge",
				Name: "text",
				Visibility: &model.ConditionGroup{Groups: [][]model.Condition{{
					{
						Kind:      model.ConditionField,
						Field:     &model.FieldRef{FieldID: "featured"},
						FieldType: model.FieldTypeBoolean,
						Operator:  model.OpIsTrue,
					},
				}}},
			}},
		}},
	})

	result := resolveRoot(t, db, root, Options{})

	// The inner loop's clones are renamed again by the outer loop; their
	// conditions must still evaluate against the inner item's values.
	for _, outer := range []string{"o1", "o2"} {
		if result.Root.FindByID("badge__p1__"+outer) == nil {
			t.Errorf("badge for the featured inner item should be visible in outer clone %s: %s", outer, treeJSON(t, result.Root))
		}
		if result.Root.FindByID("badge__p2__"+outer) != nil {
			t.Errorf("badge for the non-featured inner item should be pruned in outer clone %s", outer)
		}
	}
}

func TestVisibilityItemCountInsideNestedLoop(t *testing.T) {
	build := func() *model.Layer {
		return model.Fragment("root", &model.Layer{
			ID:         "outer",
			Name:       "box",
			Collection: &model.CollectionVariable{CollectionID: "outers"},
			Children: []*model.Layer{
				{
					ID:         "inner",
					Name:       "box",
					Collection: &model.CollectionVariable{CollectionID: "posts"},
					Children:   []*model.Layer{{ID: "title", Name: "text"}},
				},
				{
					ID:   "empty-state",
					Name: "box",
					Visibility: &model.ConditionGroup{Groups: [][]model.Condition{{
						{Kind: model.ConditionItemCount, Operator: model.OpHasNoItems, LayerID: "inner"},
					}}},
				},
			},
		})
	}
	outerStore := func(posts int) *mockStore {
		db := postsStore(posts)
		db.items["outers"] = []store.Item{{ID: "o1", CollectionID: "outers"}}
		return db
	}

	t.Run("pruned when the nested loop has items", func(t *testing.T) {
		result := resolveRoot(t, outerStore(2), build(), Options{})
		if result.Root.FindByID("empty-state__o1") != nil {
			t.Errorf("empty state should be pruned when the nested loop has items: %s", treeJSON(t, result.Root))
		}
	})

	t.Run("kept when the nested loop is empty", func(t *testing.T) {
		result := resolveRoot(t, outerStore(0), build(), Options{})
		if result.Root.FindByID("empty-state__o1") == nil {
			t.Errorf("empty state should be visible for an empty nested loop: %s", treeJSON(t, result.Root))
		}
	})
}

func TestVisibilityExplicitScopeInsideLoop(t *testing.T) {
	db := &mockStore{
		items: map[string][]store.Item{
			"posts": {
				{ID: "p1", CollectionID: "posts", Values: map[string]any{"featured": true}},
				{ID: "p2", CollectionID: "posts", Values: map[string]any{"featured": false}},
			},
		},
		fields: map[string][]store.Field{"posts": {{ID: "featured", CollectionID: "posts", Type: store.FieldBoolean}}},
	}
	root := model.Fragment("root", &model.Layer{
		ID:         "loop",
		Name:       "box",
		Collection: &model.CollectionVariable{CollectionID: "posts"},
		Children: []*model.Layer{{
			ID:   "badge",
			Name: "text",
			Visibility: &model.ConditionGroup{Groups: [][]model.Condition{{
				{
					Kind:      model.ConditionField,
					Field:     &model.FieldRef{FieldID: "featured", CollectionLayerID: "loop"},
					FieldType: model.FieldTypeBoolean,
					Operator:  model.OpIsTrue,
				},
			}}},
		}},
	})

	result := resolveRoot(t, db, root, Options{})

	if result.Root.FindByID("badge__p1") == nil {
		t.Errorf("explicitly scoped condition should see the loop's own item: %s", treeJSON(t, result.Root))
	}
	if result.Root.FindByID("badge__p2") != nil {
		t.Errorf("explicitly scoped condition should prune the non-featured item")
	}
}

func TestNilRootResolvesEmpty(t *testing.T) {
	page := &store.Page{ID: "page1", Slug: "home"}

	result, err := New(&mockStore{}, time.UTC).ResolvePage(context.Background(), page, Options{})
	if err != nil {
		t.Fatalf("ResolvePage: %v", err)
	}
	if result.Root == nil || !result.Root.IsFragment() {
		t.Fatalf("a page without a root should resolve to an empty fragment, got %+v", result.Root)
	}
	if len(result.Root.Children) != 0 {
		t.Errorf("empty page resolved with children: %s", treeJSON(t, result.Root))
	}
}

func TestTranslationOverlayAndFallback(t *testing.T) {
	translations := store.NewTranslationSet("de",
		[]store.Translation{
			{LocaleID: "de", SourceType: store.SourcePage, SourceID: "page1", LayerID: "greeting", ContentKey: store.KeyText, Value: "Hallo", Complete: true},
			{LocaleID: "de", SourceType: store.SourcePage, SourceID: "page1", LayerID: "incomplete", ContentKey: store.KeyText, Value: "nie", Complete: false},
		},
		nil,
	)
	db := &mockStore{translations: translations}
	root := model.Fragment("root",
		&model.Layer{ID: "greeting", Name: "text", Variables: map[string]model.Variable{
			"text": model.StaticText("Hello"),
		}},
		&model.Layer{ID: "incomplete", Name: "text", Variables: map[string]model.Variable{
			"text": model.StaticText("Untranslated"),
		}},
		&model.Layer{ID: "rich", Name: "text", Variables: map[string]model.Variable{
			"text": {Type: model.VariableRichText, Doc: model.PlainDoc("Rich hello")},
		}},
	)

	result := resolveRoot(t, db, root, Options{LocaleID: "de"})

	if got, _ := result.Root.FindByID("greeting").Variable("text"); got.Text != "Hallo" {
		t.Errorf("translated text = %q, want %q", got.Text, "Hallo")
	}
	if got, _ := result.Root.FindByID("incomplete").Variable("text"); got.Text != "Untranslated" {
		t.Errorf("incomplete translation must fall back, got %q", got.Text)
	}
	if got, _ := result.Root.FindByID("rich").Variable("text"); got.Type != model.VariableRichText {
		t.Errorf("rich binding must stay rich through the overlay, got type %q", got.Type)
	}
}

func TestAssetBatchResolution(t *testing.T) {
	db := &mockStore{assets: map[string]store.Asset{
		"as1": {ID: "as1", URL: "https://cdn.test/hero.jpg", FileName: "hero.jpg", Alt: "stored alt", Width: 1200, Height: 800},
	}}
	root := model.Fragment("root",
		&model.Layer{ID: "hero", Name: "image", Variables: map[string]model.Variable{
			"image": model.AssetVariable("as1"),
		}},
		&model.Layer{ID: "broken", Name: "image", Variables: map[string]model.Variable{
			"image": model.AssetVariable("ghost"),
		}},
	)

	result := resolveRoot(t, db, root, Options{})

	got, _ := result.Root.FindByID("hero").Variable("image")
	if got.URL != "https://cdn.test/hero.jpg" || got.Width != 1200 || got.Alt != "stored alt" {
		t.Errorf("asset substitution incomplete: %+v", got)
	}
	if !hasDiagnostic(result.Diagnostics, ReferenceMissing) {
		t.Errorf("missing asset should be diagnosed, got %v", result.Diagnostics)
	}
}

func TestResolutionIsDeterministic(t *testing.T) {
	build := func() *model.Layer {
		loop := loopLayer(&model.PaginationConfig{Mode: model.PaginationPages, ItemsPerPage: 4})
		loop.Collection.Sort = &model.SortConfig{Mode: model.SortRandom}
		return model.Fragment("root", loop)
	}

	first := resolveRoot(t, postsStore(9), build(), Options{})
	second := resolveRoot(t, postsStore(9), build(), Options{})

	a := treeJSON(t, first.Root)
	b := treeJSON(t, second.Root)
	if a != b {
		t.Errorf("same input resolved to different trees:\n%s\n%s", a, b)
	}
}

func hasDiagnostic(diags []Diagnostic, code DiagnosticCode) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func treeJSON(t *testing.T, root *model.Layer) string {
	t.Helper()
	b, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("marshaling tree: %v", err)
	}
	return string(b)
}
