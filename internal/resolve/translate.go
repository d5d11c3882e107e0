package resolve

import (
	"sitewright/internal/model"
	"sitewright/internal/store"
)

// applyTranslations overlays complete locale translations on the resolved
// tree. The translation key scope is the owning page, or the originating
// component for component-produced layers; the layer key is the
// authoring-time id, which clones share. Substitution preserves the
// variable's structural type: a rich-text binding receives a rich-text
// wrapped translation. CMS field values are translated separately while item
// value maps are built.
func (p *pass) applyTranslations(root *model.Layer) {
	if p.translations == nil {
		return
	}
	root.Walk(func(n *model.Layer) bool {
		sourceType, sourceID := store.SourcePage, p.page.ID
		if n.SourceComponentID != "" {
			sourceType, sourceID = store.SourceComponent, n.SourceComponentID
		}
		layerID := n.OriginalID
		if layerID == "" {
			layerID = n.ID
		}

		if translated, ok := p.layerTranslation(sourceType, sourceID, layerID, store.KeyText); ok {
			if v, bound := n.Variable("text"); bound {
				if v.Type == model.VariableRichText {
					n.SetVariable("text", model.Variable{Type: model.VariableRichText, Doc: model.PlainDoc(translated)})
				} else {
					n.SetVariable("text", model.StaticText(translated))
				}
			}
		}

		p.translateMedia(n, "image", sourceType, sourceID, layerID, store.KeyImageSrc)
		p.translateMedia(n, "icon", sourceType, sourceID, layerID, store.KeyIconSrc)
		p.translateMedia(n, "audio", sourceType, sourceID, layerID, store.KeyAudioSrc)
		p.translateMedia(n, "video", sourceType, sourceID, layerID, store.KeyVideoSrc)

		if translated, ok := p.layerTranslation(sourceType, sourceID, layerID, store.KeyImageAlt); ok {
			if v, bound := n.Variable("image"); bound {
				v.Alt = translated
				n.SetVariable("image", v)
			}
		}
		if translated, ok := p.layerTranslation(sourceType, sourceID, layerID, store.KeyVideoPoster); ok {
			if v, bound := n.Variable("video"); bound {
				v.Poster = translated
				n.SetVariable("video", v)
			}
		}
		return true
	})
}

func (p *pass) layerTranslation(sourceType store.TranslationSourceType, sourceID, layerID string, key store.ContentKey) (string, bool) {
	return p.translations.Layer(sourceType, sourceID, layerID, key)
}

// translateMedia swaps a media slot's source for a locale-specific URL. The
// asset reference is cleared so the batch asset pass does not overwrite the
// translated source.
func (p *pass) translateMedia(n *model.Layer, slot string, sourceType store.TranslationSourceType, sourceID, layerID string, key store.ContentKey) {
	translated, ok := p.layerTranslation(sourceType, sourceID, layerID, key)
	if !ok {
		return
	}
	v, bound := n.Variable(slot)
	if !bound {
		return
	}
	v.URL = translated
	v.AssetID = ""
	n.SetVariable(slot, v)
}
