package resolve

import (
	"context"
	"fmt"

	"sitewright/internal/model"
)

// expandComponents replaces every component-instance node in the tree with a
// deep copy of the component's content, depth-first so components within
// components expand before their host. Missing components degrade to the
// un-expanded instance node; a component that would instance itself
// transitively stops expanding on that branch.
func (p *pass) expandComponents(ctx context.Context, root *model.Layer) *model.Layer {
	components, err := p.componentClosure(ctx, root)
	if err != nil {
		p.diag(DataFetchFailure, root.ID, fmt.Sprintf("fetching components: %v", err))
		return root
	}
	p.expandInstances(root, components, map[string]struct{}{})
	return root
}

// componentClosure batch-fetches every component the tree references,
// including components referenced from inside other components' trees.
func (p *pass) componentClosure(ctx context.Context, root *model.Layer) (map[string]*model.Component, error) {
	components := make(map[string]*model.Component)
	missing := make(map[string]struct{})
	pending := collectComponentIDs(root)

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
		fetched, err := p.store.GetComponentsByIDs(ctx, fetch, p.opts.Published)
		if err != nil {
			return nil, err
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
				pending = append(pending, collectComponentIDs(comp.Root)...)
			}
		}
	}
	return components, nil
}

func collectComponentIDs(root *model.Layer) []string {
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

// expandInstances walks the tree expanding instance nodes in place. path
// holds the component ids on the current expansion path for cycle detection.
func (p *pass) expandInstances(l *model.Layer, components map[string]*model.Component, path map[string]struct{}) {
	if l.ComponentID != "" {
		comp, ok := components[l.ComponentID]
		switch {
		case !ok:
			p.diag(ReferenceMissing, l.ID, fmt.Sprintf("component %s not found", l.ComponentID))
		case comp.Root == nil:
			p.diag(ReferenceMissing, l.ID, fmt.Sprintf("component %s has no content", l.ComponentID))
		default:
			if _, cycling := path[l.ComponentID]; cycling {
				p.diag(CycleDetected, l.ID, fmt.Sprintf("component %s instances itself", l.ComponentID))
			} else {
				p.expandInstance(l, comp, components, path)
				return
			}
		}
	}
	for _, c := range l.Children {
		p.expandInstances(c, components, path)
	}
}

func (p *pass) expandInstance(instance *model.Layer, comp *model.Component, components map[string]*model.Component, path map[string]struct{}) {
	children := make([]*model.Layer, len(comp.Root.Children))
	for i, c := range comp.Root.Children {
		children[i] = c.Clone()
	}

	// Nested instances first, so their slots are resolved against their own
	// component before this one's overrides apply.
	path[comp.ID] = struct{}{}
	for _, c := range children {
		p.expandInstances(c, components, path)
	}
	delete(path, comp.ID)

	for _, c := range children {
		c.Walk(func(n *model.Layer) bool {
			if n.SourceComponentID == "" {
				n.SourceComponentID = comp.ID
			}
			p.applyOverrides(n, instance, comp)
			return true
		})
	}

	namespaceSubtrees(children, func(id string) string {
		return componentScopedID(instance.ID, id)
	})

	instance.Children = children
	instance.SourceComponentID = comp.ID
	instance.ComponentID = ""
	instance.ComponentOverrides = nil
}

// applyOverrides resolves every slot linked to one of comp's variables:
// instance override, else definition default, else an empty value of the
// slot's category. A linked slot never falls through to the component's
// authored literal. Slots linked to some other component's variables are left
// for that component's own expansion pass.
func (p *pass) applyOverrides(n *model.Layer, instance *model.Layer, comp *model.Component) {
	for slot, v := range n.Variables {
		if !v.Linked() {
			continue
		}
		def := comp.Variable(v.ComponentVariableID)
		if def == nil {
			continue
		}
		n.Variables[slot] = effectiveValue(instance, def)
	}
}

func effectiveValue(instance *model.Layer, def *model.ComponentVariable) model.Variable {
	if override, ok := instance.ComponentOverrides[def.ID]; ok && !override.IsZero() {
		override.ComponentVariableID = ""
		return override
	}
	if def.Default != nil {
		value := *def.Default
		value.ComponentVariableID = ""
		return value
	}
	return emptyValue(def.Type)
}

// emptyValue is what a linked slot renders as when neither an override nor a
// default exists.
func emptyValue(t model.ComponentVariableType) model.Variable {
	switch t {
	case model.ComponentVarImage, model.ComponentVarIcon, model.ComponentVarAudio:
		return model.Variable{Type: model.VariableAsset}
	case model.ComponentVarVideo:
		return model.Variable{Type: model.VariableVideo}
	case model.ComponentVarLink:
		return model.Variable{Type: model.VariableLink}
	default:
		return model.StaticText("")
	}
}
