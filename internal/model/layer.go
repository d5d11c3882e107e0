package model

import (
	"encoding/json"
)

// FragmentName is the sentinel node name for a transparent wrapper: a
// fragment contributes its children to rendering without emitting a wrapper
// element of its own.
const FragmentName = "_fragment"

// Kind is the closed enumeration of node kinds the renderers dispatch on.
// Unknown names render as generic boxes rather than being dropped.
type Kind int

const (
	KindUnknown Kind = iota
	KindFragment
	KindBox
	KindText
	KindImage
	KindIcon
	KindVideo
	KindAudio
	KindButton
	KindEmbed
	KindPagination
	KindLocaleSelector
)

var kindNames = map[string]Kind{
	FragmentName:     KindFragment,
	"box":            KindBox,
	"text":           KindText,
	"image":          KindImage,
	"icon":           KindIcon,
	"video":          KindVideo,
	"audio":          KindAudio,
	"button":         KindButton,
	"embed":          KindEmbed,
	"pagination":     KindPagination,
	"localeSelector": KindLocaleSelector,
}

// Settings carries per-layer presentation options outside the binding slots.
type Settings struct {
	Tag        string            `json:"tag,omitempty"`
	Hidden     bool              `json:"hidden,omitempty"`
	Anchor     string            `json:"anchor,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func (s *Settings) clone() *Settings {
	if s == nil {
		return nil
	}
	out := *s
	if s.Attributes != nil {
		out.Attributes = make(map[string]string, len(s.Attributes))
		for k, v := range s.Attributes {
			out.Attributes[k] = v
		}
	}
	return &out
}

// Interaction wires a trigger on this layer to an action on a target layer.
// TargetID references a sibling by layer id and is rewritten on every
// expansion so it keeps pointing at the corresponding clone.
type Interaction struct {
	Trigger  string `json:"trigger"`
	Action   string `json:"action"`
	TargetID string `json:"target_id,omitempty"`
}

// Layer is a node in the authoring tree. Ownership is single-parent: no
// sharing, no cycles.
type Layer struct {
	ID        string
	Name      string
	Children  []*Layer
	Variables map[string]Variable
	Settings  *Settings

	// ComponentID makes this node a component instance; overrides are keyed
	// by component-variable id.
	ComponentID        string
	ComponentOverrides map[string]Variable

	Collection   *CollectionVariable
	Visibility   *ConditionGroup
	Interactions []Interaction

	// Resolution-time tags, never persisted. SourceComponentID is the
	// component a descendant was produced from (translation scope); ItemID is
	// the collection item a clone was produced for; OriginalID is the
	// authoring-time id before namespacing, used for translation-key lookups.
	SourceComponentID string `json:"-"`
	ItemID            string `json:"-"`
	OriginalID        string `json:"-"`

	extra map[string]json.RawMessage
}

// Kind maps the node name onto the closed kind enumeration.
func (l *Layer) Kind() Kind {
	if k, ok := kindNames[l.Name]; ok {
		return k
	}
	return KindUnknown
}

// IsFragment reports whether the node is a transparent wrapper.
func (l *Layer) IsFragment() bool {
	return l.Name == FragmentName
}

// Variable returns the variable bound to the given slot.
func (l *Layer) Variable(slot string) (Variable, bool) {
	v, ok := l.Variables[slot]
	return v, ok
}

// SetVariable binds a variable to a slot, allocating the map on first use.
func (l *Layer) SetVariable(slot string, v Variable) {
	if l.Variables == nil {
		l.Variables = make(map[string]Variable)
	}
	l.Variables[slot] = v
}

// Clone returns a deep copy of the subtree. Resolution-time tags and
// preserved unknown fields are carried over.
func (l *Layer) Clone() *Layer {
	if l == nil {
		return nil
	}
	out := *l
	out.Settings = l.Settings.clone()
	out.Collection = l.Collection.Clone()
	if l.Variables != nil {
		out.Variables = make(map[string]Variable, len(l.Variables))
		for k, v := range l.Variables {
			out.Variables[k] = v
		}
	}
	if l.ComponentOverrides != nil {
		out.ComponentOverrides = make(map[string]Variable, len(l.ComponentOverrides))
		for k, v := range l.ComponentOverrides {
			out.ComponentOverrides[k] = v
		}
	}
	out.Interactions = append([]Interaction(nil), l.Interactions...)
	if l.Visibility != nil {
		vis := ConditionGroup{Groups: make([][]Condition, len(l.Visibility.Groups))}
		for i, group := range l.Visibility.Groups {
			vis.Groups[i] = append([]Condition(nil), group...)
		}
		out.Visibility = &vis
	}
	if l.Children != nil {
		out.Children = make([]*Layer, len(l.Children))
		for i, c := range l.Children {
			out.Children[i] = c.Clone()
		}
	}
	return &out
}

// Walk visits the subtree pre-order. Returning false from fn skips the
// node's children.
func (l *Layer) Walk(fn func(*Layer) bool) {
	if l == nil {
		return
	}
	if !fn(l) {
		return
	}
	for _, c := range l.Children {
		c.Walk(fn)
	}
}

// FindByID returns the first node in the subtree with the given id.
func (l *Layer) FindByID(id string) *Layer {
	var found *Layer
	l.Walk(func(n *Layer) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

func (l *Layer) UnmarshalJSON(b []byte) error {
	*l = Layer{}
	obj, err := decodeObject(b)
	if err != nil {
		return err
	}
	obj.take("id", &l.ID)
	obj.take("name", &l.Name)
	obj.take("children", &l.Children)
	obj.take("variables", &l.Variables)
	obj.take("settings", &l.Settings)
	obj.take("componentId", &l.ComponentID)
	obj.take("componentOverrides", &l.ComponentOverrides)
	obj.take("collection", &l.Collection)
	obj.take("visibility", &l.Visibility)
	obj.take("interactions", &l.Interactions)
	l.extra = obj.rest()
	return nil
}

func (l Layer) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":   l.ID,
		"name": l.Name,
	}
	if len(l.Children) > 0 {
		out["children"] = l.Children
	}
	if len(l.Variables) > 0 {
		out["variables"] = l.Variables
	}
	if l.Settings != nil {
		out["settings"] = l.Settings
	}
	setIf(out, "componentId", l.ComponentID)
	if len(l.ComponentOverrides) > 0 {
		out["componentOverrides"] = l.ComponentOverrides
	}
	if l.Collection != nil {
		out["collection"] = l.Collection
	}
	if l.Visibility != nil && !l.Visibility.IsZero() {
		out["visibility"] = l.Visibility
	}
	if len(l.Interactions) > 0 {
		out["interactions"] = l.Interactions
	}
	return mergeObject(out, l.extra)
}

// Fragment wraps the given children in a transparent node carrying the id.
func Fragment(id string, children ...*Layer) *Layer {
	return &Layer{ID: id, Name: FragmentName, Children: children}
}
