package resolve

// loopScope is one ancestor loop's contribution to the value context: the
// current item's values (including dotted relationship-hop paths) and the
// collection they came from.
type loopScope struct {
	values       map[string]any
	itemID       string
	collectionID string
}

// valueContext is the immutable scope threaded through recursive resolution.
// It carries the nearest enclosing loop's scope plus a per-loop map so
// bindings scoped with collection_layer_id can target a named ancestor loop
// instead of the nearest one. Extending the context copies it; parent scopes
// are never mutated.
type valueContext struct {
	nearest   loopScope
	layerData map[string]loopScope // collection layer id -> that loop's scope

	// rec receives expansion byproducts (clone counts, scopes, pagination)
	// for the subtree resolving under this context.
	rec *recorder
}

func rootContext(rec *recorder) valueContext {
	return valueContext{rec: rec}
}

// withItem returns a child context scoped to one loop item. layerID is the
// loop layer's id at expansion time, which is what descendant
// collection_layer_id references resolve against.
func (vc valueContext) withItem(layerID string, scope loopScope) valueContext {
	child := valueContext{
		nearest:   scope,
		layerData: make(map[string]loopScope, len(vc.layerData)+1),
		rec:       vc.rec,
	}
	for k, v := range vc.layerData {
		child.layerData[k] = v
	}
	child.layerData[layerID] = scope
	return child
}

// scopeFor returns the loop scope a binding resolves against: the named
// ancestor loop when collectionLayerID is set, the nearest one otherwise.
func (vc valueContext) scopeFor(collectionLayerID string) (loopScope, bool) {
	if collectionLayerID != "" {
		scope, ok := vc.layerData[collectionLayerID]
		return scope, ok
	}
	return vc.nearest, vc.nearest.values != nil
}

// lookup resolves a dotted path, honoring an explicit ancestor-loop scope.
func (vc valueContext) lookup(path, collectionLayerID string) (any, bool) {
	if path == "" {
		return nil, false
	}
	scope, ok := vc.scopeFor(collectionLayerID)
	if !ok {
		return nil, false
	}
	v, ok := scope.values[path]
	return v, ok
}
