// Package validate checks stored page and component trees for structural
// integrity the authoring tool should maintain but the resolver cannot assume:
// dangling component references, component instancing cycles, duplicate layer
// ids, and interaction or condition references to layers that do not exist.
package validate

import (
	"context"
	"fmt"

	"sitewright/internal/model"
	"sitewright/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDanglingComponent = "dangling_component_reference"
	codeComponentCycle    = "component_cycle"
	codeDuplicateLayerID  = "duplicate_layer_id"
	codeDanglingTarget    = "dangling_interaction_target"
	codeDanglingCondition = "dangling_condition_reference"
	codeEmptyFieldBinding = "empty_field_binding"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	PageID   string
	LayerID  string
}

type Report struct {
	Issues []Issue
}

func (r *Report) Errors() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Run validates every page tree and every component tree those pages
// reference, for one copy (draft or published).
func Run(ctx context.Context, db store.Store, published bool) (*Report, error) {
	if db == nil {
		return nil, fmt.Errorf("store is required")
	}

	issues := make([]Issue, 0)

	summaries, err := db.ListPages(ctx, published)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	components := make(map[string]*model.Component)
	for _, summary := range summaries {
		page, err := db.GetPage(ctx, summary.ID, published)
		if err != nil {
			return nil, fmt.Errorf("get page %s: %w", summary.ID, err)
		}
		if page.Root == nil {
			continue
		}
		if err := loadClosure(ctx, db, page.Root, published, components); err != nil {
			return nil, err
		}
		issues = append(issues, validateTree(page.ID, page.Root, components)...)
	}

	issues = append(issues, validateComponents(components)...)

	return &Report{Issues: issues}, nil
}

// loadClosure fetches every component reachable from root into components,
// leaving unknown ids absent so reference checks can flag them.
func loadClosure(ctx context.Context, db store.Store, root *model.Layer, published bool, components map[string]*model.Component) error {
	missing := make(map[string]struct{})
	pending := referencedComponents(root)
	for len(pending) > 0 {
		var fetch []string
		for _, id := range pending {
			if _, known := components[id]; known {
				continue
			}
			if _, failed := missing[id]; failed {
				continue
			}
			fetch = append(fetch, id)
		}
		if len(fetch) == 0 {
			break
		}
		fetched, err := db.GetComponentsByIDs(ctx, fetch, published)
		if err != nil {
			return fmt.Errorf("get components: %w", err)
		}
		pending = pending[:0]
		for _, id := range fetch {
			comp, ok := fetched[id]
			if !ok {
				missing[id] = struct{}{}
				continue
			}
			components[id] = comp
			if comp.Root != nil {
				pending = append(pending, referencedComponents(comp.Root)...)
			}
		}
	}
	return nil
}

func referencedComponents(root *model.Layer) []string {
	var ids []string
	seen := make(map[string]struct{})
	root.Walk(func(n *model.Layer) bool {
		if n.ComponentID != "" {
			if _, ok := seen[n.ComponentID]; !ok {
				seen[n.ComponentID] = struct{}{}
				ids = append(ids, n.ComponentID)
			}
		}
		return true
	})
	return ids
}

// validateComponents reports instancing cycles across component definitions.
func validateComponents(components map[string]*model.Component) []Issue {
	var issues []Issue
	for id, comp := range components {
		if comp.Root == nil {
			continue
		}
		if cycle := findCycle(id, components, map[string]bool{}); cycle != "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeComponentCycle,
				Message:  fmt.Sprintf("component %s participates in an instancing cycle through %s", id, cycle),
				LayerID:  comp.Root.ID,
			})
		}
		issues = append(issues, validateTree("", comp.Root, components)...)
	}
	return issues
}

// findCycle walks component references depth-first. visiting doubles as the
// recursion stack: true means on the current path, false means fully explored.
func findCycle(id string, components map[string]*model.Component, visiting map[string]bool) string {
	if onPath, seen := visiting[id]; seen {
		if onPath {
			return id
		}
		return ""
	}
	visiting[id] = true
	comp, ok := components[id]
	if ok && comp.Root != nil {
		for _, ref := range referencedComponents(comp.Root) {
			if cycle := findCycle(ref, components, visiting); cycle != "" {
				visiting[id] = false
				return cycle
			}
		}
	}
	visiting[id] = false
	return ""
}
