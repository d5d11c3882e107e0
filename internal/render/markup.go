package render

import (
	"strings"

	"sitewright/internal/model"
)

// HTML renders the resolved tree to a static markup string. The markup
// renderer is a serializer over the same node tree the interactive renderer
// produces, so the two cannot disagree on tags, attributes, hrefs, or
// rich-text structure. Events never reach the markup; hydration re-attaches
// them from the data-layer-id markers.
func HTML(root *model.Layer, rc *Context) string {
	rc = withAnchors(root, rc)
	var sb strings.Builder
	for _, n := range layerNodes(root, rc) {
		writeNode(&sb, n)
	}
	return sb.String()
}

// NodeHTML serializes an already-built node subtree.
func NodeHTML(n *Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node) {
	if n.Tag == "" {
		if n.Raw {
			sb.WriteString(n.Text)
		} else {
			sb.WriteString(escapeText(n.Text))
		}
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.Tag)
	for _, a := range n.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		if a.Value != "" {
			sb.WriteString(`="`)
			sb.WriteString(escapeAttr(a.Value))
			sb.WriteByte('"')
		}
	}
	if n.Void || voidTags[n.Tag] {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	sb.WriteString(escapeText(n.Text))
	for _, c := range n.Children {
		writeNode(sb, c)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}
