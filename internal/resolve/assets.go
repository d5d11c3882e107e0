package resolve

import (
	"context"
	"fmt"

	"sitewright/internal/model"
)

// resolveAssets substitutes concrete URLs for every asset reference in the
// tree. One collecting walk gathers the ids, one bulk lookup resolves them,
// and a second walk substitutes. One round trip regardless of how many
// assets the tree references.
func (p *pass) resolveAssets(ctx context.Context, root *model.Layer) {
	seen := make(map[string]struct{})
	var ids []string
	collect := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	root.Walk(func(n *model.Layer) bool {
		for _, v := range n.Variables {
			if v.URL == "" {
				collect(v.AssetID)
			}
			if v.Link != nil && v.Link.Kind == model.LinkAsset && v.Link.URL == "" {
				collect(v.Link.AssetID)
			}
		}
		return true
	})
	if len(ids) == 0 {
		return
	}

	assets, err := p.store.GetAssetsByIDs(ctx, ids)
	if err != nil {
		p.diag(DataFetchFailure, "", fmt.Sprintf("fetching assets: %v", err))
		return
	}

	reported := make(map[string]struct{})
	missing := func(layerID, id string) {
		if _, ok := reported[id]; ok {
			return
		}
		reported[id] = struct{}{}
		p.diag(ReferenceMissing, layerID, fmt.Sprintf("asset %s not found", id))
	}

	root.Walk(func(n *model.Layer) bool {
		for slot, v := range n.Variables {
			changed := false
			if v.AssetID != "" && v.URL == "" {
				asset, ok := assets[v.AssetID]
				if !ok {
					missing(n.ID, v.AssetID)
				} else {
					v.URL = asset.URL
					v.FileName = asset.FileName
					v.Width = asset.Width
					v.Height = asset.Height
					if v.Alt == "" {
						v.Alt = asset.Alt
					}
					changed = true
				}
			}
			if v.Link != nil && v.Link.Kind == model.LinkAsset && v.Link.URL == "" && v.Link.AssetID != "" {
				asset, ok := assets[v.Link.AssetID]
				if !ok {
					missing(n.ID, v.Link.AssetID)
				} else {
					link := *v.Link
					link.URL = asset.URL
					v.Link = &link
					changed = true
				}
			}
			if changed {
				n.Variables[slot] = v
			}
		}
		return true
	})
}
