package render

import (
	"sitewright/internal/model"
)

// richTextNodes renders a rich-text document into render nodes. Both
// renderers go through this one builder; the markup renderer serializes the
// nodes it returns. In inline mode (the host tag cannot contain block
// content) block boundaries collapse to <br> separators and headings and
// lists flatten to their inline runs.
func richTextNodes(doc *model.RichText, inline bool, rc *Context) []*Node {
	if doc == nil {
		return nil
	}
	if inline {
		return inlineBlocks(doc.Nodes, rc)
	}
	var out []*Node
	for _, n := range doc.Nodes {
		if block := blockNode(n, rc); block != nil {
			out = append(out, block)
		}
	}
	return out
}

func blockNode(n model.RichNode, rc *Context) *Node {
	switch n.Type {
	case model.RichParagraph:
		return &Node{Tag: "p", Children: inlineRuns(n.Children, rc)}
	case model.RichHeading:
		return &Node{Tag: headingTag(n.Level), Children: inlineRuns(n.Children, rc)}
	case model.RichBulletedList:
		return &Node{Tag: "ul", Children: listItems(n.Children, rc)}
	case model.RichNumberedList:
		return &Node{Tag: "ol", Children: listItems(n.Children, rc)}
	case model.RichTextRun, model.RichFieldRun:
		// A bare run at block level renders as its own paragraph.
		return &Node{Tag: "p", Children: inlineRuns([]model.RichNode{n}, rc)}
	}
	return nil
}

func listItems(nodes []model.RichNode, rc *Context) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.Type == model.RichListItem {
			out = append(out, &Node{Tag: "li", Children: inlineRuns(n.Children, rc)})
			continue
		}
		if item := blockNode(n, rc); item != nil {
			out = append(out, &Node{Tag: "li", Children: []*Node{item}})
		}
	}
	return out
}

// inlineRuns renders text runs with their marks. Mark nesting order is fixed
// (link outermost, code innermost) so repeated renders are byte-identical.
func inlineRuns(nodes []model.RichNode, rc *Context) []*Node {
	var out []*Node
	for _, n := range nodes {
		switch n.Type {
		case model.RichTextRun:
			out = append(out, markedRun(n))
		case model.RichFieldRun:
			// Placeholders are resolved during field resolution; one that
			// survives to rendering has no value and emits nothing.
		default:
			out = append(out, inlineRuns(n.Children, rc)...)
		}
	}
	return out
}

func markedRun(n model.RichNode) *Node {
	node := &Node{Text: n.Text}
	for _, wrap := range []struct {
		mark model.MarkType
		tag  string
	}{
		{model.MarkCode, "code"},
		{model.MarkStrike, "s"},
		{model.MarkUnderline, "u"},
		{model.MarkItalic, "em"},
		{model.MarkBold, "strong"},
	} {
		if m := findMark(n.Marks, wrap.mark); m != nil {
			node = &Node{Tag: wrap.tag, Children: []*Node{node}}
		}
	}
	if m := findMark(n.Marks, model.MarkLink); m != nil {
		node = &Node{
			Tag:      "a",
			Attrs:    []Attr{{Name: "href", Value: m.Href}},
			Children: []*Node{node},
		}
	}
	return node
}

func findMark(marks []model.Mark, t model.MarkType) *model.Mark {
	for i := range marks {
		if marks[i].Type == t {
			return &marks[i]
		}
	}
	return nil
}

// inlineBlocks flattens block structure for restrictive host tags.
func inlineBlocks(nodes []model.RichNode, rc *Context) []*Node {
	var out []*Node
	first := true
	var flatten func(nodes []model.RichNode)
	flatten = func(nodes []model.RichNode) {
		for _, n := range nodes {
			switch n.Type {
			case model.RichTextRun:
				out = append(out, markedRun(n))
			case model.RichFieldRun:
			default:
				if !first {
					out = append(out, &Node{Tag: "br", Void: true})
				}
				first = false
				flatten(n.Children)
			}
		}
	}
	flatten(nodes)
	return out
}

func headingTag(level int) string {
	if level < 1 || level > 6 {
		level = 2
	}
	return [...]string{"h1", "h2", "h3", "h4", "h5", "h6"}[level-1]
}
