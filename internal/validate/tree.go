package validate

import (
	"fmt"

	"sitewright/internal/model"
)

// validateTree runs the per-tree checks: duplicate ids, dangling component
// references, and interaction or condition references to layers missing from
// the same tree. pageID is empty for component trees.
func validateTree(pageID string, root *model.Layer, components map[string]*model.Component) []Issue {
	var issues []Issue

	ids := make(map[string]int)
	root.Walk(func(n *model.Layer) bool {
		ids[n.ID]++
		return true
	})
	for id, count := range ids {
		if count > 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateLayerID,
				Message:  fmt.Sprintf("layer id %s appears %d times", id, count),
				PageID:   pageID,
				LayerID:  id,
			})
		}
	}

	root.Walk(func(n *model.Layer) bool {
		if n.ComponentID != "" {
			if _, ok := components[n.ComponentID]; !ok {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeDanglingComponent,
					Message:  fmt.Sprintf("component %s not found", n.ComponentID),
					PageID:   pageID,
					LayerID:  n.ID,
				})
			}
		}
		for _, in := range n.Interactions {
			if in.TargetID == "" {
				continue
			}
			if _, ok := ids[in.TargetID]; !ok {
				issues = append(issues, Issue{
					Severity: SeverityWarn,
					Code:     codeDanglingTarget,
					Message:  fmt.Sprintf("interaction targets missing layer %s", in.TargetID),
					PageID:   pageID,
					LayerID:  n.ID,
				})
			}
		}
		issues = append(issues, validateConditions(pageID, n, ids)...)
		issues = append(issues, validateVariables(pageID, n)...)
		return true
	})

	return issues
}

// validateConditions flags visibility conditions pointing at layers outside
// the tree. Count conditions may legitimately reference a layer produced by a
// component expansion, so a missing id is a warning, not an error.
func validateConditions(pageID string, n *model.Layer, ids map[string]int) []Issue {
	if n.Visibility.IsZero() {
		return nil
	}
	var issues []Issue
	for _, group := range n.Visibility.Groups {
		for _, cond := range group {
			refs := []string{}
			if cond.LayerID != "" {
				refs = append(refs, cond.LayerID)
			}
			if cond.Field != nil && cond.Field.CollectionLayerID != "" {
				refs = append(refs, cond.Field.CollectionLayerID)
			}
			for _, ref := range refs {
				if _, ok := ids[ref]; !ok {
					issues = append(issues, Issue{
						Severity: SeverityWarn,
						Code:     codeDanglingCondition,
						Message:  fmt.Sprintf("visibility condition references missing layer %s", ref),
						PageID:   pageID,
						LayerID:  n.ID,
					})
				}
			}
		}
	}
	return issues
}

func validateVariables(pageID string, n *model.Layer) []Issue {
	var issues []Issue
	for slot, v := range n.Variables {
		if v.Type == model.VariableField && v.Field == nil {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeEmptyFieldBinding,
				Message:  fmt.Sprintf("field binding on slot %s has no field id", slot),
				PageID:   pageID,
				LayerID:  n.ID,
			})
		}
	}
	return issues
}
