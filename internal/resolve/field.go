package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sitewright/internal/model"
	"sitewright/internal/store"
)

type hopKey struct {
	fieldID string
	itemID  string
}

// buildItemValues turns one item into the value map its loop's descendants
// resolve against: raw field values, CMS field translations for the active
// locale, timezone-normalized dates, and every reference-field hop
// pre-computed into dotted paths ("refFieldId.targetFieldId" -> value).
func (p *pass) buildItemValues(ctx context.Context, item store.Item) map[string]any {
	values := make(map[string]any, len(item.Values)+4)
	for k, v := range item.Values {
		values[k] = v
	}
	values["_id"] = item.ID
	values["_slug"] = item.Slug

	fields, err := p.fields(ctx, item.CollectionID)
	if err != nil {
		p.diag(DataFetchFailure, "", fmt.Sprintf("loading fields for collection %s: %v", item.CollectionID, err))
		return values
	}

	p.overlayItemTranslations(values, item.ID, fields)
	p.normalizeDates(values, fields)

	visited := map[hopKey]struct{}{}
	for _, f := range fields {
		if f.Type != store.FieldReference {
			continue
		}
		targetID := asString(values[f.ID])
		if targetID == "" {
			continue
		}
		p.hopInto(ctx, values, "", f, targetID, visited)
	}
	return values
}

func (p *pass) overlayItemTranslations(values map[string]any, itemID string, fields []store.Field) {
	if p.translations == nil {
		return
	}
	for _, f := range fields {
		if translated, ok := p.translations.ItemField(itemID, f.ID); ok {
			values[f.ID] = translated
		}
	}
}

func (p *pass) normalizeDates(values map[string]any, fields []store.Field) {
	for _, f := range fields {
		if f.Type != store.FieldDate {
			continue
		}
		if t, ok := asTime(values[f.ID]); ok {
			values[f.ID] = t.In(p.location)
		}
	}
}

// hopInto copies the referenced item's values into out under the hop-prefixed
// dotted path and recurses into the target's own reference fields. The
// visited set stops reference chains that revisit a (field, item) pair.
func (p *pass) hopInto(ctx context.Context, out map[string]any, prefix string, field store.Field, targetItemID string, visited map[hopKey]struct{}) {
	key := hopKey{field.ID, targetItemID}
	if _, seen := visited[key]; seen {
		p.diag(CycleDetected, "", fmt.Sprintf("reference chain revisits item %s via field %s", targetItemID, field.ID))
		return
	}
	visited[key] = struct{}{}

	target, ok := p.itemByID(ctx, field.ReferencedCollectionID, targetItemID)
	if !ok {
		return
	}

	targetFields, err := p.fields(ctx, field.ReferencedCollectionID)
	if err != nil {
		p.diag(DataFetchFailure, "", fmt.Sprintf("loading fields for collection %s: %v", field.ReferencedCollectionID, err))
		return
	}

	values := make(map[string]any, len(target.Values)+2)
	for k, v := range target.Values {
		values[k] = v
	}
	values["_id"] = target.ID
	values["_slug"] = target.Slug
	p.overlayItemTranslations(values, target.ID, targetFields)
	p.normalizeDates(values, targetFields)

	hopPrefix := prefix + field.ID + "."
	for k, v := range values {
		out[hopPrefix+k] = v
	}

	for _, tf := range targetFields {
		if tf.Type != store.FieldReference {
			continue
		}
		nextID := asString(values[tf.ID])
		if nextID == "" {
			continue
		}
		p.hopInto(ctx, out, hopPrefix, tf, nextID, visited)
	}
}

// terminalField follows a field reference's relationship chain through the
// schema and returns the field the path ends on.
func (p *pass) terminalField(ctx context.Context, collectionID string, ref *model.FieldRef) (store.Field, bool) {
	if collectionID == "" {
		return store.Field{}, false
	}
	field, ok := p.fieldByID(ctx, collectionID, ref.FieldID)
	if !ok {
		return store.Field{}, false
	}
	for _, rel := range ref.Relationships {
		if field.ReferencedCollectionID == "" {
			return store.Field{}, false
		}
		field, ok = p.fieldByID(ctx, field.ReferencedCollectionID, rel)
		if !ok {
			return store.Field{}, false
		}
	}
	return field, true
}

// resolveFieldVariable turns a field binding into a concrete variable:
// asset-typed fields become asset references, rich-text fields keep their
// document shape, everything else is stringified.
func (p *pass) resolveFieldVariable(ctx context.Context, layerID string, v model.Variable, vc valueContext) model.Variable {
	ref := v.Field
	if ref == nil || ref.FieldID == "" {
		p.diag(MalformedVariable, layerID, "field variable without a field reference")
		return model.StaticText("")
	}
	value, ok := vc.lookup(ref.Path(), ref.CollectionLayerID)
	if !ok {
		return model.StaticText("")
	}

	scope, _ := vc.scopeFor(ref.CollectionLayerID)
	if field, found := p.terminalField(ctx, scope.collectionID, ref); found {
		switch field.Type {
		case store.FieldAsset:
			return model.AssetVariable(asString(value))
		case store.FieldRichText:
			if doc := docFromValue(value); doc != nil {
				return model.Variable{Type: model.VariableRichText, Doc: p.resolveDoc(ctx, doc, vc)}
			}
			return model.StaticText("")
		}
	}

	// Virtual items (multi-asset loops) and unknown schemas stringify by
	// value shape.
	if doc := docFromValue(value); doc != nil {
		return model.Variable{Type: model.VariableRichText, Doc: p.resolveDoc(ctx, doc, vc)}
	}
	return model.StaticText(p.formatValue(value, ref.Format))
}

// resolveFieldText stringifies a field reference for inline contexts
// (dynamic-text segments, rich-text placeholders, link fields).
func (p *pass) resolveFieldText(ref *model.FieldRef, vc valueContext) string {
	if ref == nil || ref.FieldID == "" {
		return ""
	}
	value, ok := vc.lookup(ref.Path(), ref.CollectionLayerID)
	if !ok {
		return ""
	}
	return p.formatValue(value, ref.Format)
}

// resolveDoc resolves every inline field placeholder in a rich-text document:
// placeholders naming a rich-text field are spliced in place (their resolved
// nodes recursively resolved); all other types become a text run carrying the
// placeholder's marks.
func (p *pass) resolveDoc(ctx context.Context, doc *model.RichText, vc valueContext) *model.RichText {
	if doc == nil {
		return nil
	}
	return &model.RichText{Nodes: p.resolveRichNodes(ctx, doc.Nodes, vc)}
}

func (p *pass) resolveRichNodes(ctx context.Context, nodes []model.RichNode, vc valueContext) []model.RichNode {
	var out []model.RichNode
	for _, n := range nodes {
		if n.Type != model.RichFieldRun {
			n.Children = p.resolveRichNodes(ctx, n.Children, vc)
			out = append(out, n)
			continue
		}
		out = append(out, p.resolvePlaceholder(ctx, n, vc)...)
	}
	return out
}

func (p *pass) resolvePlaceholder(ctx context.Context, n model.RichNode, vc valueContext) []model.RichNode {
	if n.Field == nil {
		return nil
	}
	value, ok := vc.lookup(n.Field.Path(), n.Field.CollectionLayerID)
	if !ok {
		return nil
	}
	if inner := docFromValue(value); inner != nil {
		return p.resolveRichNodes(ctx, inner.Nodes, vc)
	}
	return []model.RichNode{{
		Type:  model.RichTextRun,
		Text:  p.formatValue(value, n.Field.Format),
		Marks: n.Marks,
	}}
}

// docFromValue recognizes a stored rich-text document value.
func docFromValue(value any) *model.RichText {
	switch v := value.(type) {
	case *model.RichText:
		return v
	case map[string]any:
		if _, ok := v["nodes"]; !ok {
			return nil
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var doc model.RichText
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil
		}
		return &doc
	default:
		return nil
	}
}

// formatValue stringifies a resolved scalar. Dates honor the configured
// timezone and the binding's named format preset.
func (p *pass) formatValue(value any, format string) string {
	if t, ok := value.(time.Time); ok {
		return formatTime(t.In(p.location), format)
	}
	return asString(value)
}

func formatTime(t time.Time, format string) string {
	switch format {
	case "date", "":
		return t.Format("Jan 2, 2006")
	case "datetime":
		return t.Format("Jan 2, 2006 3:04 PM")
	case "time":
		return t.Format("3:04 PM")
	case "iso":
		return t.Format(time.RFC3339)
	case "year":
		return t.Format("2006")
	default:
		return t.Format(format)
	}
}
