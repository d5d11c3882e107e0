package resolve

import (
	"sitewright/internal/model"
)

// Identity namespacing: every expansion renames the ids inside the produced
// subtree with a deterministic function of the original id and the expansion
// context, so ids stay globally unique and re-resolving the same input yields
// the same ids. References to layer ids inside the same subtree (interaction
// targets, anchor links, loop scopes, item-count conditions) are rewritten to
// the renamed ids; references pointing outside the subtree are left alone.

func componentScopedID(instanceID, originalID string) string {
	return instanceID + "_" + originalID
}

func itemScopedID(originalID, itemID string) string {
	return originalID + "__" + itemID
}

// namespaceSubtrees renames every node under roots (roots included) and
// rewrites internal references. It returns the applied old-id to new-id
// mapping so state recorded under the old ids can follow the rename.
func namespaceSubtrees(roots []*model.Layer, rename func(string) string) map[string]string {
	internal := make(map[string]string)
	for _, root := range roots {
		root.Walk(func(n *model.Layer) bool {
			internal[n.ID] = rename(n.ID)
			return true
		})
	}
	mapID := func(id string) string {
		if renamed, ok := internal[id]; ok {
			return renamed
		}
		return id
	}
	for _, root := range roots {
		root.Walk(func(n *model.Layer) bool {
			if n.OriginalID == "" {
				n.OriginalID = n.ID
			}
			n.ID = internal[n.ID]
			rewriteLayerRefs(n, mapID)
			return true
		})
	}
	return internal
}

func rewriteLayerRefs(n *model.Layer, mapID func(string) string) {
	for i := range n.Interactions {
		if t := n.Interactions[i].TargetID; t != "" {
			n.Interactions[i].TargetID = mapID(t)
		}
	}
	for slot, v := range n.Variables {
		if rewritten, changed := rewriteVariableRefs(v, mapID); changed {
			n.Variables[slot] = rewritten
		}
	}
	for slot, v := range n.ComponentOverrides {
		if rewritten, changed := rewriteVariableRefs(v, mapID); changed {
			n.ComponentOverrides[slot] = rewritten
		}
	}
	if n.Visibility != nil {
		rewriteConditionRefs(n.Visibility, mapID)
	}
	if n.Collection != nil && n.Collection.Filters != nil {
		rewriteConditionRefs(n.Collection.Filters, mapID)
	}
}

func rewriteConditionRefs(g *model.ConditionGroup, mapID func(string) string) {
	for gi := range g.Groups {
		for ci := range g.Groups[gi] {
			cond := &g.Groups[gi][ci]
			if cond.LayerID != "" {
				cond.LayerID = mapID(cond.LayerID)
			}
			if cond.Field != nil && cond.Field.CollectionLayerID != "" {
				ref := *cond.Field
				ref.CollectionLayerID = mapID(ref.CollectionLayerID)
				cond.Field = &ref
			}
		}
	}
}

// rewriteVariableRefs returns a copy of v with contained layer-id references
// renamed. Inner structures are copied before mutation because clones share
// them with their template.
func rewriteVariableRefs(v model.Variable, mapID func(string) string) (model.Variable, bool) {
	changed := false

	if v.Field != nil && v.Field.CollectionLayerID != "" {
		if renamed := mapID(v.Field.CollectionLayerID); renamed != v.Field.CollectionLayerID {
			ref := *v.Field
			ref.CollectionLayerID = renamed
			v.Field = &ref
			changed = true
		}
	}

	if v.Link != nil {
		link := *v.Link
		linkChanged := false
		if link.AnchorLayerID != "" {
			if renamed := mapID(link.AnchorLayerID); renamed != link.AnchorLayerID {
				link.AnchorLayerID = renamed
				linkChanged = true
			}
		}
		if link.Field != nil && link.Field.CollectionLayerID != "" {
			if renamed := mapID(link.Field.CollectionLayerID); renamed != link.Field.CollectionLayerID {
				ref := *link.Field
				ref.CollectionLayerID = renamed
				link.Field = &ref
				linkChanged = true
			}
		}
		if linkChanged {
			v.Link = &link
			changed = true
		}
	}

	if segments, segChanged := rewriteSegmentRefs(v.Segments, mapID); segChanged {
		v.Segments = segments
		changed = true
	}

	if v.Doc != nil {
		if doc, docChanged := rewriteDocRefs(v.Doc, mapID); docChanged {
			v.Doc = doc
			changed = true
		}
	}

	return v, changed
}

func rewriteSegmentRefs(segments []model.TextSegment, mapID func(string) string) ([]model.TextSegment, bool) {
	changed := false
	var out []model.TextSegment
	for i, seg := range segments {
		if seg.Field == nil || seg.Field.CollectionLayerID == "" {
			continue
		}
		renamed := mapID(seg.Field.CollectionLayerID)
		if renamed == seg.Field.CollectionLayerID {
			continue
		}
		if !changed {
			out = append([]model.TextSegment(nil), segments...)
			changed = true
		}
		ref := *seg.Field
		ref.CollectionLayerID = renamed
		out[i].Field = &ref
	}
	if changed {
		return out, true
	}
	return segments, false
}

func rewriteDocRefs(doc *model.RichText, mapID func(string) string) (*model.RichText, bool) {
	changed := false
	var visit func(nodes []model.RichNode)
	visit = func(nodes []model.RichNode) {
		for i := range nodes {
			if f := nodes[i].Field; f != nil && f.CollectionLayerID != "" {
				if renamed := mapID(f.CollectionLayerID); renamed != f.CollectionLayerID {
					ref := *f
					ref.CollectionLayerID = renamed
					nodes[i].Field = &ref
					changed = true
				}
			}
			visit(nodes[i].Children)
		}
	}
	clone := doc.Clone()
	visit(clone.Nodes)
	if changed {
		return clone, true
	}
	return doc, false
}
