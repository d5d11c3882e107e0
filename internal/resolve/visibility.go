package resolve

import (
	"sitewright/internal/model"
)

// filterVisibility prunes every subtree whose visibility rule evaluates
// false, using only already-materialized data: clone counts recorded by the
// collection expander and the loop scopes recorded on clone shells. No I/O
// happens here. Descendants inherit the nearest enclosing loop's item values;
// bindings with an explicit collection_layer_id target that ancestor loop's
// recorded scope.
func (p *pass) filterVisibility(root *model.Layer) *model.Layer {
	filtered := p.filterNode(root, loopScope{}, nil)
	if filtered == nil {
		empty := model.Fragment(root.ID)
		empty.OriginalID = root.OriginalID
		return empty
	}
	return filtered
}

func (p *pass) filterNode(n *model.Layer, nearest loopScope, layerData map[string]loopScope) *model.Layer {
	if scope, ok := p.rec.cloneScopes[n.ID]; ok {
		nearest = loopScope{values: scope.values, itemID: scope.itemID}
		layerData = scope.layerData
	}

	if n.Settings != nil && n.Settings.Hidden {
		return nil
	}
	if !p.visible(n, nearest, layerData) {
		return nil
	}

	kept := n.Children[:0]
	for _, child := range n.Children {
		if filtered := p.filterNode(child, nearest, layerData); filtered != nil {
			kept = append(kept, filtered)
		}
	}
	n.Children = kept
	return n
}

func (p *pass) visible(n *model.Layer, nearest loopScope, layerData map[string]loopScope) bool {
	if n.Visibility.IsZero() {
		return true
	}
	lookup := func(ref *model.FieldRef) (any, bool) {
		scope := nearest
		if ref.CollectionLayerID != "" {
			s, ok := layerData[ref.CollectionLayerID]
			if !ok {
				return nil, false
			}
			scope = s
		}
		if scope.values == nil {
			return nil, false
		}
		v, ok := scope.values[ref.Path()]
		return v, ok
	}
	return evalGroup(n.Visibility, lookup, p.rec.cloneCounts)
}
