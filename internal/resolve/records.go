package resolve

import "sync"

// recorder accumulates the byproducts of collection expansion that later
// passes read back: clone counts and loop scopes for the visibility filter,
// pagination metadata for the side channel. Every item clone resolves into
// its own recorder; after the clone's subtree is renamed, the entries are
// re-keyed with the same mapping and folded into the enclosing recorder.
// Entries therefore always carry the ids the final tree holds, even when an
// outer loop renames an already-expanded inner loop, and sibling clones never
// write the same key concurrently.
type recorder struct {
	mu          sync.Mutex
	cloneCounts map[string]int
	cloneScopes map[string]cloneScope
	pagination  map[string]*Pagination
}

func newRecorder() *recorder {
	return &recorder{
		cloneCounts: make(map[string]int),
		cloneScopes: make(map[string]cloneScope),
		pagination:  make(map[string]*Pagination),
	}
}

func (r *recorder) recordClones(id string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cloneCounts[id] = count
}

func (r *recorder) recordScope(id string, scope cloneScope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cloneScopes[id] = scope
}

func (r *recorder) recordPagination(id string, meta *Pagination) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pagination[id] = meta
}

// rekey renames every entry the mapping covers, including the layer-data keys
// inside recorded scopes, which reference loop layers by id as well.
func (r *recorder) rekey(renamed map[string]string) {
	mapID := func(id string) string {
		if now, ok := renamed[id]; ok {
			return now
		}
		return id
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int, len(r.cloneCounts))
	for id, count := range r.cloneCounts {
		counts[mapID(id)] = count
	}
	r.cloneCounts = counts

	scopes := make(map[string]cloneScope, len(r.cloneScopes))
	for id, scope := range r.cloneScopes {
		scope.layerData = rekeyLayerData(scope.layerData, renamed)
		scopes[mapID(id)] = scope
	}
	r.cloneScopes = scopes

	pagination := make(map[string]*Pagination, len(r.pagination))
	for id, meta := range r.pagination {
		pagination[mapID(id)] = meta
	}
	r.pagination = pagination
}

// fold moves child's entries into r. Callers fold only after the child
// subtree's ids are final, so keys cannot collide across siblings.
func (r *recorder) fold(child *recorder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, count := range child.cloneCounts {
		r.cloneCounts[id] = count
	}
	for id, scope := range child.cloneScopes {
		r.cloneScopes[id] = scope
	}
	for id, meta := range child.pagination {
		r.pagination[id] = meta
	}
}

func rekeyLayerData(layerData map[string]loopScope, renamed map[string]string) map[string]loopScope {
	if len(layerData) == 0 {
		return layerData
	}
	out := make(map[string]loopScope, len(layerData))
	for id, scope := range layerData {
		if now, ok := renamed[id]; ok {
			id = now
		}
		out[id] = scope
	}
	return out
}
