package model

import (
	"encoding/json"
)

// VariableType discriminates the tagged union every bindable property uses.
type VariableType string

const (
	VariableStaticText  VariableType = "static_text"
	VariableDynamicText VariableType = "dynamic_text"
	VariableRichText    VariableType = "dynamic_rich_text"
	VariableAsset       VariableType = "asset"
	VariableField       VariableType = "field"
	VariableVideo       VariableType = "video"
	VariableLink        VariableType = "link"
)

// FieldRef points at a collection field, optionally hopping across reference
// fields. Relationships are joined with the field id into a dotted lookup
// path. CollectionLayerID pins the lookup to a specific ancestor loop instead
// of the nearest enclosing one.
type FieldRef struct {
	FieldID           string   `json:"field_id"`
	Relationships     []string `json:"relationships,omitempty"`
	Format            string   `json:"format,omitempty"`
	CollectionLayerID string   `json:"collection_layer_id,omitempty"`
}

// Path returns the dotted lookup path for the reference.
func (f *FieldRef) Path() string {
	if f == nil || f.FieldID == "" {
		return ""
	}
	path := f.FieldID
	for _, rel := range f.Relationships {
		path += "." + rel
	}
	return path
}

// TextSegment is one run of a dynamic-text value: either a literal or an
// inline field placeholder.
type TextSegment struct {
	Text  string    `json:"text,omitempty"`
	Field *FieldRef `json:"field,omitempty"`
}

// LinkKind enumerates the sources an href can be built from.
type LinkKind string

const (
	LinkURL   LinkKind = "url"
	LinkEmail LinkKind = "email"
	LinkPhone LinkKind = "phone"
	LinkAsset LinkKind = "asset"
	LinkPage  LinkKind = "page"
	LinkField LinkKind = "field"
)

// Link is the payload of a link variable.
type Link struct {
	Kind          LinkKind  `json:"kind"`
	URL           string    `json:"url,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	PageID        string    `json:"page_id,omitempty"`
	AnchorLayerID string    `json:"anchor_layer_id,omitempty"`
	AssetID       string    `json:"asset_id,omitempty"`
	Field         *FieldRef `json:"field,omitempty"`
	NewTab        bool      `json:"new_tab,omitempty"`
}

// Variable is the tagged-union value bound to a layer slot (text, image,
// audio, video, icon, background, link, design color). Exactly the fields
// matching Type are meaningful; the rest stay zero. A variable whose wire
// shape cannot be decoded keeps its raw bytes and behaves as an absent value.
type Variable struct {
	Type VariableType

	Text     string        // static_text
	Segments []TextSegment // dynamic_text
	Doc      *RichText     // dynamic_rich_text
	AssetID  string        // asset
	Alt      string        // asset
	URL      string        // video, or a resolved asset URL
	Poster   string        // video
	Field    *FieldRef     // field
	Link     *Link         // link

	// ComponentVariableID links this slot to a component variable definition.
	// A linked slot takes its value from the instance override or the
	// definition default, never from the authored payload above.
	ComponentVariableID string

	// Resolution-time asset metadata filled in by the batch asset pass.
	// Never serialized.
	FileName string
	Width    int
	Height   int

	raw       json.RawMessage            // set when the wire shape was malformed
	extra     map[string]json.RawMessage // unknown top-level members
	dataExtra map[string]json.RawMessage // unknown data members
}

// IsZero reports whether the variable carries no value at all.
func (v Variable) IsZero() bool {
	return v.Type == "" && v.raw == nil && v.ComponentVariableID == ""
}

// Linked reports whether the slot is linked to a component variable.
func (v Variable) Linked() bool {
	return v.ComponentVariableID != ""
}

func (v *Variable) UnmarshalJSON(b []byte) error {
	*v = Variable{}
	obj, err := decodeObject(b)
	if err != nil {
		// Malformed variables are carried as-is and resolve to nothing.
		v.raw = append(json.RawMessage(nil), b...)
		return nil
	}
	obj.take("type", &v.Type)
	obj.take("component_variable_id", &v.ComponentVariableID)
	dataRaw, hasData := obj.takeRaw("data")
	v.extra = obj.rest()
	if !hasData {
		return nil
	}
	data, err := decodeObject(dataRaw)
	if err != nil {
		return nil
	}
	switch v.Type {
	case VariableStaticText:
		data.take("text", &v.Text)
	case VariableDynamicText:
		data.take("segments", &v.Segments)
	case VariableRichText:
		data.take("doc", &v.Doc)
	case VariableAsset:
		data.take("asset_id", &v.AssetID)
		data.take("alt", &v.Alt)
		data.take("url", &v.URL)
	case VariableField:
		ref := &FieldRef{}
		data.take("field_id", &ref.FieldID)
		data.take("relationships", &ref.Relationships)
		data.take("format", &ref.Format)
		data.take("collection_layer_id", &ref.CollectionLayerID)
		if ref.FieldID != "" {
			v.Field = ref
		}
	case VariableVideo:
		data.take("url", &v.URL)
		data.take("asset_id", &v.AssetID)
		data.take("poster", &v.Poster)
	case VariableLink:
		link := &Link{}
		data.take("kind", &link.Kind)
		data.take("url", &link.URL)
		data.take("email", &link.Email)
		data.take("phone", &link.Phone)
		data.take("page_id", &link.PageID)
		data.take("anchor_layer_id", &link.AnchorLayerID)
		data.take("asset_id", &link.AssetID)
		data.take("field", &link.Field)
		data.take("new_tab", &link.NewTab)
		if link.Kind != "" {
			v.Link = link
		}
	}
	v.dataExtra = data.rest()
	return nil
}

func (v Variable) MarshalJSON() ([]byte, error) {
	if v.raw != nil {
		return v.raw, nil
	}
	data := map[string]any{}
	switch v.Type {
	case VariableStaticText:
		data["text"] = v.Text
	case VariableDynamicText:
		if v.Segments != nil {
			data["segments"] = v.Segments
		}
	case VariableRichText:
		if v.Doc != nil {
			data["doc"] = v.Doc
		}
	case VariableAsset:
		setIf(data, "asset_id", v.AssetID)
		setIf(data, "alt", v.Alt)
		setIf(data, "url", v.URL)
	case VariableField:
		if v.Field != nil {
			data["field_id"] = v.Field.FieldID
			if len(v.Field.Relationships) > 0 {
				data["relationships"] = v.Field.Relationships
			}
			setIf(data, "format", v.Field.Format)
			setIf(data, "collection_layer_id", v.Field.CollectionLayerID)
		}
	case VariableVideo:
		setIf(data, "url", v.URL)
		setIf(data, "asset_id", v.AssetID)
		setIf(data, "poster", v.Poster)
	case VariableLink:
		if v.Link != nil {
			b, err := json.Marshal(v.Link)
			if err != nil {
				return nil, err
			}
			var m map[string]any
			if err := json.Unmarshal(b, &m); err != nil {
				return nil, err
			}
			data = m
		}
	}
	out := map[string]any{}
	if v.Type != "" {
		out["type"] = v.Type
	}
	if len(data) > 0 || len(v.dataExtra) > 0 || v.Type != "" {
		dataJSON, err := mergeObject(data, v.dataExtra)
		if err != nil {
			return nil, err
		}
		out["data"] = json.RawMessage(dataJSON)
	}
	setIf(out, "component_variable_id", v.ComponentVariableID)
	return mergeObject(out, v.extra)
}

// StaticText returns a static text variable, the shape overrides and
// translations collapse to.
func StaticText(text string) Variable {
	return Variable{Type: VariableStaticText, Text: text}
}

// AssetVariable returns an asset-reference variable.
func AssetVariable(assetID string) Variable {
	return Variable{Type: VariableAsset, AssetID: assetID}
}
