package render

import (
	"strconv"

	"sitewright/internal/model"
)

// Node is one element of the rendered UI tree. A node with an empty Tag is a
// text leaf; Raw leaves hold pre-formed markup emitted without escaping.
type Node struct {
	Tag      string
	Attrs    []Attr
	Void     bool
	Text     string
	Raw      bool
	LayerID  string
	Events   []Event
	Children []*Node
}

// Event is interaction wiring carried on interactive-tree nodes. The markup
// renderer ignores events; hydration code attaches them client side.
type Event struct {
	Trigger  string
	Action   string
	TargetID string
}

// Tree renders the resolved layer tree into UI nodes. The page root is a
// fragment, so a slice comes back rather than a single node. Pagination
// metadata is not rendered here; it travels beside the tree in
// Context.Pagination for the pagination-control collaborator.
func Tree(root *model.Layer, rc *Context) []*Node {
	rc = withAnchors(root, rc)
	return layerNodes(root, rc)
}

func withAnchors(root *model.Layer, rc *Context) *Context {
	if rc == nil {
		rc = &Context{}
	}
	if rc.Anchors == nil {
		scoped := *rc
		scoped.Anchors = BuildAnchorIndex(root)
		rc = &scoped
	}
	return rc
}

// layerNodes renders one layer. Fragments are transparent: their children
// are returned in place with no wrapper element.
func layerNodes(l *model.Layer, rc *Context) []*Node {
	if l.IsFragment() {
		var out []*Node
		for _, c := range l.Children {
			out = append(out, layerNodes(c, rc)...)
		}
		return out
	}

	node := elementNode(l, rc)
	if node == nil {
		return nil
	}
	if link := linkWrap(l, node, rc); link != nil {
		return []*Node{link}
	}
	return []*Node{node}
}

func elementNode(l *model.Layer, rc *Context) *Node {
	tag := tagFor(l)
	node := &Node{
		Tag:     tag,
		Attrs:   buildAttrs(l),
		LayerID: l.ID,
		Events:  events(l),
	}

	switch l.Kind() {
	case model.KindText:
		node.Children = textContent(l, tag, rc)
	case model.KindImage:
		imageNode(node, l, "image")
	case model.KindIcon:
		imageNode(node, l, "icon")
	case model.KindVideo:
		videoNode(node, l)
	case model.KindAudio:
		audioNode(node, l)
	case model.KindButton:
		buttonNode(node, l, rc)
	case model.KindEmbed:
		embedNode(node, l)
	case model.KindPagination:
		paginationNode(node, l, rc)
	}

	if !node.Void {
		for _, c := range l.Children {
			node.Children = append(node.Children, layerNodes(c, rc)...)
		}
	}
	return node
}

// textContent renders the text slot: a rich document through the shared
// rich-text builder, plain values as a single text leaf.
func textContent(l *model.Layer, tag string, rc *Context) []*Node {
	v, ok := l.Variable("text")
	if !ok {
		return nil
	}
	if v.Doc != nil {
		return richTextNodes(v.Doc, restrictiveTags[tag], rc)
	}
	text := v.Text
	if text == "" && v.Doc == nil && len(v.Segments) > 0 {
		for _, seg := range v.Segments {
			text += seg.Text
		}
	}
	if text == "" {
		return nil
	}
	return []*Node{{Text: text}}
}

func imageNode(node *Node, l *model.Layer, slot string) {
	node.Void = true
	v, ok := l.Variable(slot)
	if !ok {
		return
	}
	setAttr(node, "src", v.URL)
	if srcset := buildSrcSet(v.URL, v.Width); srcset != "" {
		setAttr(node, "srcset", srcset)
		setAttr(node, "sizes", defaultSizes)
	}
	setAttr(node, "alt", v.Alt)
	if v.Width > 0 {
		setAttr(node, "width", strconv.Itoa(v.Width))
	}
	if v.Height > 0 {
		setAttr(node, "height", strconv.Itoa(v.Height))
	}
}

func videoNode(node *Node, l *model.Layer) {
	v, ok := l.Variable("video")
	if !ok {
		return
	}
	setAttr(node, "src", v.URL)
	setAttr(node, "poster", v.Poster)
	setBoolAttr(node, "controls")
}

func audioNode(node *Node, l *model.Layer) {
	v, ok := l.Variable("audio")
	if !ok {
		return
	}
	setAttr(node, "src", v.URL)
	setBoolAttr(node, "controls")
}

// buttonNode renders the label; a button carrying a link becomes an anchor
// element instead, handled by linkWrap replacing the tag.
func buttonNode(node *Node, l *model.Layer, rc *Context) {
	node.Children = textContent(l, node.Tag, rc)
}

// embedNode emits the authored markup verbatim.
func embedNode(node *Node, l *model.Layer) {
	v, ok := l.Variable("html")
	if !ok || v.Text == "" {
		return
	}
	node.Children = []*Node{{Text: v.Text, Raw: true}}
}

// paginationNode exposes the loop's current state as data attributes; the
// control affordances themselves come from the pagination collaborator, which
// reads the side channel keyed by the loop layer id in the target interaction.
func paginationNode(node *Node, l *model.Layer, rc *Context) {
	for _, in := range l.Interactions {
		meta, ok := rc.Pagination[in.TargetID]
		if !ok {
			continue
		}
		setAttr(node, "data-target-layer-id", in.TargetID)
		setAttr(node, "data-current-page", strconv.Itoa(meta.CurrentPage))
		setAttr(node, "data-total-pages", strconv.Itoa(meta.TotalPages))
		setAttr(node, "data-total-items", strconv.Itoa(meta.TotalItems))
		setAttr(node, "data-pagination-mode", string(meta.Mode))
		break
	}
}

// linkWrap applies the layer's link slot. A button hosts the href itself by
// becoming an anchor; any other element gets wrapped in one.
func linkWrap(l *model.Layer, node *Node, rc *Context) *Node {
	v, ok := l.Variable("link")
	if !ok || v.Link == nil {
		return nil
	}
	href := BuildHref(v.Link, rc)
	if href == "" {
		return nil
	}
	attrs := []Attr{{Name: "href", Value: href}}
	if v.Link.NewTab {
		attrs = append(attrs,
			Attr{Name: "target", Value: "_blank"},
			Attr{Name: "rel", Value: "noopener"},
		)
	}
	if l.Kind() == model.KindButton {
		node.Tag = "a"
		node.Attrs = append(node.Attrs, attrs...)
		return node
	}
	return &Node{Tag: "a", Attrs: attrs, Children: []*Node{node}}
}

func events(l *model.Layer) []Event {
	if len(l.Interactions) == 0 {
		return nil
	}
	out := make([]Event, len(l.Interactions))
	for i, in := range l.Interactions {
		out[i] = Event{Trigger: in.Trigger, Action: in.Action, TargetID: in.TargetID}
	}
	return out
}

func setAttr(node *Node, name, value string) {
	if value == "" {
		return
	}
	node.Attrs = append(node.Attrs, Attr{Name: name, Value: value})
}

func setBoolAttr(node *Node, name string) {
	node.Attrs = append(node.Attrs, Attr{Name: name})
}
