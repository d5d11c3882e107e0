package resolve

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strconv"
	"sync"

	"sitewright/internal/model"
	"sitewright/internal/store"
)

// resolveLayer resolves one subtree against the current loop context:
// collection-bound layers expand into per-item clones, everything else gets
// its field bindings injected and its children resolved in place. The input
// is pass-private and mutated freely.
func (p *pass) resolveLayer(ctx context.Context, layer *model.Layer, vc valueContext) *model.Layer {
	if layer == nil {
		return nil
	}
	if layer.Collection != nil {
		return p.expandCollection(ctx, layer, vc)
	}
	p.injectBindings(ctx, layer, vc)
	for i, child := range layer.Children {
		layer.Children[i] = p.resolveLayer(ctx, child, vc)
	}
	return layer
}

// injectBindings replaces the layer's field-backed variables with concrete
// values resolved from the current context.
func (p *pass) injectBindings(ctx context.Context, layer *model.Layer, vc valueContext) {
	for slot, v := range layer.Variables {
		switch v.Type {
		case model.VariableField:
			layer.SetVariable(slot, p.resolveFieldVariable(ctx, layer.ID, v, vc))
		case model.VariableDynamicText:
			var text string
			for _, seg := range v.Segments {
				if seg.Field != nil {
					text += p.resolveFieldText(seg.Field, vc)
				} else {
					text += seg.Text
				}
			}
			layer.SetVariable(slot, model.StaticText(text))
		case model.VariableRichText:
			if v.Doc != nil {
				layer.SetVariable(slot, model.Variable{
					Type:                model.VariableRichText,
					Doc:                 p.resolveDoc(ctx, v.Doc, vc),
					ComponentVariableID: v.ComponentVariableID,
				})
			}
		case model.VariableLink:
			if v.Link != nil && v.Link.Kind == model.LinkField {
				link := *v.Link
				link.URL = p.resolveFieldText(link.Field, vc)
				v.Link = &link
				layer.SetVariable(slot, v)
			}
		}
	}
}

// expandCollection materializes a collection-bound layer: it computes the
// ordered, filtered, paginated item set, clones the subtree once per item
// with that item's values injected, and wraps the clones in a transparent
// fragment. A failed data fetch degrades to the un-cloned children resolved
// against the parent context.
func (p *pass) expandCollection(ctx context.Context, layer *model.Layer, vc valueContext) *model.Layer {
	cv := layer.Collection
	items, collectionID, ok := p.collectItems(ctx, layer, cv, vc)
	if !ok {
		return p.degradeCollection(ctx, layer, vc)
	}

	values := make([]map[string]any, len(items))
	for i, it := range items {
		values[i] = p.buildItemValues(ctx, it)
	}

	// Filters run against each candidate item's own values; pagination totals
	// are computed on the filtered set.
	if !cv.Filters.IsZero() {
		kept := items[:0]
		keptValues := values[:0]
		for i, it := range items {
			vals := values[i]
			match := evalGroup(cv.Filters, func(ref *model.FieldRef) (any, bool) {
				v, found := vals[ref.Path()]
				return v, found
			}, nil)
			if match {
				kept = append(kept, it)
				keptValues = append(keptValues, vals)
			}
		}
		items, values = kept, keptValues
	}

	p.sortItems(ctx, layer, cv, collectionID, items, values)

	if cv.Offset > 0 || cv.Limit > 0 {
		items, values = window(items, values, cv.Offset, cv.Limit)
	}

	pageItems, pageValues := items, values
	if cv.Pagination != nil {
		perPage := cv.Pagination.ItemsPerPage
		if perPage <= 0 {
			perPage = p.opts.DefaultItemsPerPage
		}
		offset, limit, totalPages, currentPage := paginate(len(items), perPage, p.opts.PageNumbers[layer.ID])
		meta := &Pagination{
			CurrentPage:  currentPage,
			TotalPages:   totalPages,
			TotalItems:   len(items),
			ItemsPerPage: perPage,
			Mode:         cv.Pagination.Mode,
		}
		if cv.Pagination.Mode == model.PaginationLoadMore {
			meta.LayerTemplate = layer.Clone()
		}
		vc.rec.recordPagination(layer.ID, meta)
		pageItems, pageValues = window(items, values, offset, limit)
	}

	// Fan-out: sibling items resolve concurrently; each branch builds an
	// independent subtree and failures stay isolated to their clone.
	clones := make([]*model.Layer, len(pageItems))
	var wg sync.WaitGroup
	for i := range pageItems {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clones[i] = p.resolveItemClone(ctx, layer, pageItems[i], pageValues[i], collectionID, vc)
		}(i)
	}
	wg.Wait()

	children := make([]*model.Layer, 0, len(clones))
	for _, c := range clones {
		if c != nil {
			children = append(children, c)
		}
	}

	fragment := model.Fragment(layer.ID, children...)
	fragment.OriginalID = layer.OriginalID
	fragment.SourceComponentID = layer.SourceComponentID
	if layer.Visibility != nil {
		fragment.Visibility = layer.Visibility
	}
	vc.rec.recordClones(fragment.ID, len(children))
	return fragment
}

// degradeCollection is the failure policy for a loop whose data fetch failed:
// keep the layer with its children resolved against the parent context, as if
// it had no items to show.
func (p *pass) degradeCollection(ctx context.Context, layer *model.Layer, vc valueContext) *model.Layer {
	layer.Collection = nil
	p.injectBindings(ctx, layer, vc)
	for i, child := range layer.Children {
		layer.Children[i] = p.resolveLayer(ctx, child, vc)
	}
	vc.rec.recordClones(layer.ID, 0)
	return layer
}

func (p *pass) resolveItemClone(ctx context.Context, layer *model.Layer, item store.Item, values map[string]any, collectionID string, vc valueContext) *model.Layer {
	scope := loopScope{values: values, itemID: item.ID, collectionID: collectionID}
	itemCtx := vc.withItem(layer.ID, scope)
	itemCtx.rec = newRecorder()

	shell := layer.Clone()
	shell.Collection = nil // must not re-trigger expansion
	shell.Visibility = nil // the loop's own rule lives on the fragment
	shell.ItemID = item.ID
	p.injectBindings(ctx, shell, itemCtx)
	for i, child := range shell.Children {
		shell.Children[i] = p.resolveLayer(ctx, child, itemCtx)
	}

	renamed := namespaceSubtrees([]*model.Layer{shell}, func(id string) string {
		return itemScopedID(id, item.ID)
	})
	// State recorded under the subtree's old ids follows the rename, so the
	// visibility filter finds it under the ids the final tree holds.
	itemCtx.rec.rekey(renamed)
	vc.rec.fold(itemCtx.rec)
	vc.rec.recordScope(shell.ID, cloneScope{
		loopLayerID: layer.ID,
		itemID:      item.ID,
		values:      values,
		layerData:   rekeyLayerData(itemCtx.layerData, renamed),
	})
	return shell
}

// collectItems determines the loop's candidate item set in priority order:
// multi-asset source field, single-reference source field, multi-reference
// source field, then a direct query of the bound collection. The second
// return value is the collection the items belong to ("" for virtual
// asset-backed items). ok=false means the fetch failed and the loop should
// degrade.
func (p *pass) collectItems(ctx context.Context, layer *model.Layer, cv *model.CollectionVariable, vc valueContext) ([]store.Item, string, bool) {
	if cv.SourceFieldID != "" {
		field, found := p.fieldByID(ctx, vc.nearest.collectionID, cv.SourceFieldID)
		if !found {
			p.diag(ReferenceMissing, layer.ID, fmt.Sprintf("source field %s not found", cv.SourceFieldID))
			return nil, "", false
		}
		raw := vc.nearest.values[cv.SourceFieldID]
		switch field.Type {
		case store.FieldMultiAsset:
			items, ok := p.virtualAssetItems(ctx, layer, raw)
			return items, "", ok
		case store.FieldReference:
			id := asString(raw)
			if id == "" {
				return nil, field.ReferencedCollectionID, true
			}
			item, found := p.itemByID(ctx, field.ReferencedCollectionID, id)
			if !found {
				return nil, field.ReferencedCollectionID, true
			}
			return []store.Item{item}, field.ReferencedCollectionID, true
		case store.FieldMultiReference:
			ids := stringList(raw)
			if len(ids) == 0 {
				return nil, field.ReferencedCollectionID, true
			}
			fetched, err := p.store.GetItemsWithValues(ctx, field.ReferencedCollectionID, p.opts.Published, store.ItemFilters{ItemIDs: ids})
			if err != nil {
				p.diag(DataFetchFailure, layer.ID, fmt.Sprintf("fetching referenced items: %v", err))
				return nil, "", false
			}
			return orderByIDs(fetched, ids), field.ReferencedCollectionID, true
		default:
			p.diag(MalformedVariable, layer.ID, fmt.Sprintf("source field %s has non-reference type %s", cv.SourceFieldID, field.Type))
			return nil, "", false
		}
	}

	if cv.CollectionID == "" {
		p.diag(MalformedVariable, layer.ID, "collection binding without collection id")
		return nil, "", false
	}
	items, err := p.store.GetItemsWithValues(ctx, cv.CollectionID, p.opts.Published, store.ItemFilters{})
	if err != nil {
		p.diag(DataFetchFailure, layer.ID, fmt.Sprintf("fetching collection %s: %v", cv.CollectionID, err))
		return nil, "", false
	}
	return items, cv.CollectionID, true
}

// virtualAssetItems builds one pseudo item per asset id in a multi-asset
// field value, with item values derived from asset metadata.
func (p *pass) virtualAssetItems(ctx context.Context, layer *model.Layer, raw any) ([]store.Item, bool) {
	ids := stringList(raw)
	if len(ids) == 0 {
		return nil, true
	}
	assets, err := p.store.GetAssetsByIDs(ctx, ids)
	if err != nil {
		p.diag(DataFetchFailure, layer.ID, fmt.Sprintf("fetching assets: %v", err))
		return nil, false
	}
	var items []store.Item
	for _, id := range ids {
		asset, ok := assets[id]
		if !ok {
			p.diag(ReferenceMissing, layer.ID, fmt.Sprintf("asset %s not found", id))
			continue
		}
		items = append(items, store.Item{
			ID: asset.ID,
			Values: map[string]any{
				"url":       asset.URL,
				"alt":       asset.Alt,
				"file_name": asset.FileName,
				"width":     asset.Width,
				"height":    asset.Height,
			},
		})
	}
	return items, true
}

// itemByID fetches one item through a per-pass memo.
func (p *pass) itemByID(ctx context.Context, collectionID, itemID string) (store.Item, bool) {
	if collectionID == "" || itemID == "" {
		return store.Item{}, false
	}
	key := collectionID + "\x00" + itemID
	p.itemMu.Lock()
	if cached, ok := p.itemCache[key]; ok {
		p.itemMu.Unlock()
		return cached.item, cached.ok
	}
	p.itemMu.Unlock()

	items, err := p.store.GetItemsWithValues(ctx, collectionID, p.opts.Published, store.ItemFilters{ItemIDs: []string{itemID}})
	if err != nil {
		p.diag(DataFetchFailure, "", fmt.Sprintf("fetching item %s: %v", itemID, err))
		return store.Item{}, false
	}
	entry := cachedItem{}
	if len(items) > 0 {
		entry = cachedItem{item: items[0], ok: true}
	} else {
		p.diag(ReferenceMissing, "", fmt.Sprintf("item %s not found in collection %s", itemID, collectionID))
	}
	p.itemMu.Lock()
	p.itemCache[key] = entry
	p.itemMu.Unlock()
	return entry.item, entry.ok
}

// sortItems orders items and their value maps in lockstep. Field sorts use
// the schema's declared type when available; otherwise each comparison is
// numeric when both sides parse as numbers and lexicographic when not.
func (p *pass) sortItems(ctx context.Context, layer *model.Layer, cv *model.CollectionVariable, collectionID string, items []store.Item, values []map[string]any) {
	cfg := cv.Sort
	if cfg == nil || cfg.Mode == model.SortManual || cfg.Mode == model.SortNone || cfg.Mode == "" {
		return
	}
	switch cfg.Mode {
	case model.SortRandom:
		// Seeded by (page, layer) so the same input resolves to the same
		// order.
		h := fnv.New64a()
		h.Write([]byte(p.page.ID))
		h.Write([]byte{0})
		h.Write([]byte(layer.ID))
		rng := rand.New(rand.NewSource(int64(h.Sum64())))
		rng.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
			values[i], values[j] = values[j], values[i]
		})
	case model.SortField:
		if cfg.FieldID == "" {
			return
		}
		var fieldType store.FieldType
		if field, ok := p.fieldByID(ctx, collectionID, cfg.FieldID); ok {
			fieldType = field.Type
		}
		desc := cfg.Direction == model.SortDesc
		order := make([]int, len(items))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			less := compareFieldValues(values[order[a]][cfg.FieldID], values[order[b]][cfg.FieldID], fieldType) < 0
			if desc {
				return !less
			}
			return less
		})
		reorder(items, values, order)
	}
}

func compareFieldValues(a, b any, fieldType store.FieldType) int {
	switch fieldType {
	case store.FieldNumber:
		af, aok := asFloat(a)
		bf, bok := asFloat(b)
		if aok && bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	case store.FieldDate:
		at, aok := asTime(a)
		bt, bok := asTime(b)
		if aok && bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	default:
		as, bs := asString(a), asString(b)
		if af, err := strconv.ParseFloat(as, 64); err == nil {
			if bf, err := strconv.ParseFloat(bs, 64); err == nil {
				switch {
				case af < bf:
					return -1
				case af > bf:
					return 1
				default:
					return 0
				}
			}
		}
	}
	as, bs := asString(a), asString(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func reorder(items []store.Item, values []map[string]any, order []int) {
	sortedItems := make([]store.Item, len(items))
	sortedValues := make([]map[string]any, len(values))
	for i, idx := range order {
		sortedItems[i] = items[idx]
		sortedValues[i] = values[idx]
	}
	copy(items, sortedItems)
	copy(values, sortedValues)
}

func window(items []store.Item, values []map[string]any, offset, limit int) ([]store.Item, []map[string]any) {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil, nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end], values[offset:end]
}

func orderByIDs(items []store.Item, ids []string) []store.Item {
	byID := make(map[string]store.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	ordered := make([]store.Item, 0, len(items))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			ordered = append(ordered, it)
		}
	}
	return ordered
}

func stringList(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		var out []string
		for _, item := range v {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}
