// Package resolve implements the layer resolution pipeline: the deterministic
// tree transformations that turn an authoring-time layer tree (unresolved
// bindings, component references, collection loops, locale placeholders) into
// a concrete tree ready for rendering. Passes run in order: component
// expansion, collection expansion (which re-invokes field resolution and
// recurses), translation overlay, batched asset resolution, visibility
// filtering. Every pass degrades locally on failure; nothing here writes
// stored state.
package resolve

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sitewright/internal/model"
	"sitewright/internal/store"
)

// Options configures one resolution pass.
type Options struct {
	// LocaleID selects the translation overlay; empty renders authored values.
	LocaleID string
	// Published reads published copies instead of drafts.
	Published bool
	// PageNumbers maps a resolved loop layer id to the requested page,
	// defaulting to 1.
	PageNumbers map[string]int
	// DefaultItemsPerPage applies when a pagination config omits a size.
	DefaultItemsPerPage int
}

// Result is the ephemeral outcome of one pass: the concrete tree, pagination
// metadata keyed by resolved loop layer id, and recorded degradations.
type Result struct {
	Page        *store.Page
	Root        *model.Layer
	Pagination  map[string]*Pagination
	Diagnostics []Diagnostic
}

// Resolver resolves pages against a repository. Safe for concurrent use; all
// per-pass state lives on an internal pass value.
type Resolver struct {
	store    store.Store
	location *time.Location
}

func New(st store.Store, location *time.Location) *Resolver {
	if location == nil {
		location = time.UTC
	}
	return &Resolver{store: st, location: location}
}

// ResolvePage runs the full pipeline over the page's authored tree. The input
// tree is not mutated. Partial failures degrade the affected subtree and are
// reported in Result.Diagnostics; the returned error is reserved for a
// cancelled context.
func (r *Resolver) ResolvePage(ctx context.Context, page *store.Page, opts Options) (*Result, error) {
	p := &pass{
		store:      r.store,
		location:   r.location,
		page:       page,
		opts:       opts,
		rec:        newRecorder(),
		fieldCache: make(map[string][]store.Field),
		itemCache:  make(map[string]cachedItem),
	}
	return p.run(ctx)
}

// cloneScope records, per clone shell, the loop context its descendants
// resolved under. The visibility filter replays these when it evaluates
// conditions over the materialized tree.
type cloneScope struct {
	loopLayerID string
	itemID      string
	values      map[string]any
	layerData   map[string]loopScope
}

type cachedItem struct {
	item store.Item
	ok   bool
}

type pass struct {
	store    store.Store
	location *time.Location
	page     *store.Page
	opts     Options

	translations *store.TranslationSet

	// rec is the root recorder; clone resolution folds renamed entries into
	// it so its keys match the final tree's ids.
	rec *recorder

	mu    sync.Mutex
	diags []Diagnostic

	fieldMu    sync.Mutex
	fieldCache map[string][]store.Field

	itemMu    sync.Mutex
	itemCache map[string]cachedItem
}

func (p *pass) run(ctx context.Context) (*Result, error) {
	// A page stored without a root renders as empty, not as a failure.
	if p.page.Root == nil {
		return &Result{
			Page:       p.page,
			Root:       model.Fragment(""),
			Pagination: p.rec.pagination,
		}, nil
	}

	if p.opts.LocaleID != "" {
		ts, err := p.store.LoadTranslationsForLocale(ctx, p.opts.LocaleID)
		if err != nil {
			p.diag(DataFetchFailure, "", fmt.Sprintf("loading translations for %s: %v", p.opts.LocaleID, err))
		} else {
			p.translations = ts
		}
	}

	tree := p.page.Root.Clone()
	tree = p.expandComponents(ctx, tree)
	tree = p.resolveLayer(ctx, tree, rootContext(p.rec))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.applyTranslations(tree)
	p.resolveAssets(ctx, tree)
	tree = p.filterVisibility(tree)

	return &Result{
		Page:        p.page,
		Root:        tree,
		Pagination:  p.rec.pagination,
		Diagnostics: p.diags,
	}, nil
}

func (p *pass) diag(code DiagnosticCode, layerID, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.diags = append(p.diags, Diagnostic{Code: code, LayerID: layerID, Detail: detail})
}

// fields returns a collection's schema through a per-pass memo, so repeated
// lookups across items cost one fetch per distinct collection.
func (p *pass) fields(ctx context.Context, collectionID string) ([]store.Field, error) {
	p.fieldMu.Lock()
	if cached, ok := p.fieldCache[collectionID]; ok {
		p.fieldMu.Unlock()
		return cached, nil
	}
	p.fieldMu.Unlock()

	fields, err := p.store.GetFieldsByCollectionID(ctx, collectionID, p.opts.Published)
	if err != nil {
		return nil, err
	}
	p.fieldMu.Lock()
	p.fieldCache[collectionID] = fields
	p.fieldMu.Unlock()
	return fields, nil
}

func (p *pass) fieldByID(ctx context.Context, collectionID, fieldID string) (store.Field, bool) {
	fields, err := p.fields(ctx, collectionID)
	if err != nil {
		return store.Field{}, false
	}
	for _, f := range fields {
		if f.ID == fieldID {
			return f, true
		}
	}
	return store.Field{}, false
}
