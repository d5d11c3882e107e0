package model

import "strings"

// RichText is a rich-text document: a sequence of block nodes.
type RichText struct {
	Nodes []RichNode `json:"nodes"`
}

type RichNodeType string

const (
	RichParagraph    RichNodeType = "paragraph"
	RichHeading      RichNodeType = "heading"
	RichBulletedList RichNodeType = "bulleted_list"
	RichNumberedList RichNodeType = "numbered_list"
	RichListItem     RichNodeType = "list_item"
	RichTextRun      RichNodeType = "text"
	RichFieldRun     RichNodeType = "field"
)

// RichNode is one node of a rich-text document. Block nodes carry Children;
// text runs carry Text and Marks; field runs are inline placeholders resolved
// against the enclosing loop's item values.
type RichNode struct {
	Type     RichNodeType `json:"type"`
	Text     string       `json:"text,omitempty"`
	Level    int          `json:"level,omitempty"`
	Marks    []Mark       `json:"marks,omitempty"`
	Field    *FieldRef    `json:"field,omitempty"`
	Children []RichNode   `json:"children,omitempty"`
}

type MarkType string

const (
	MarkBold      MarkType = "bold"
	MarkItalic    MarkType = "italic"
	MarkUnderline MarkType = "underline"
	MarkStrike    MarkType = "strike"
	MarkCode      MarkType = "code"
	MarkLink      MarkType = "link"
)

// Mark is an inline formatting annotation on a text run.
type Mark struct {
	Type MarkType `json:"type"`
	Href string   `json:"href,omitempty"`
}

// PlainDoc wraps plain text in a single-paragraph document. Translations for
// rich-text bindings go through this so the structural type is preserved.
func PlainDoc(text string) *RichText {
	return &RichText{Nodes: []RichNode{{
		Type:     RichParagraph,
		Children: []RichNode{{Type: RichTextRun, Text: text}},
	}}}
}

// Clone returns a deep copy of the document.
func (rt *RichText) Clone() *RichText {
	if rt == nil {
		return nil
	}
	return &RichText{Nodes: cloneRichNodes(rt.Nodes)}
}

func cloneRichNodes(nodes []RichNode) []RichNode {
	if nodes == nil {
		return nil
	}
	out := make([]RichNode, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Marks = append([]Mark(nil), n.Marks...)
		out[i].Children = cloneRichNodes(n.Children)
		if n.Field != nil {
			ref := *n.Field
			out[i].Field = &ref
		}
	}
	return out
}

// PlainText flattens the document to its text content, blocks separated by
// newlines.
func (rt *RichText) PlainText() string {
	if rt == nil {
		return ""
	}
	var blocks []string
	for _, n := range rt.Nodes {
		blocks = append(blocks, richNodeText(n))
	}
	return strings.Join(blocks, "\n")
}

func richNodeText(n RichNode) string {
	if n.Type == RichTextRun {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(richNodeText(c))
	}
	return sb.String()
}
