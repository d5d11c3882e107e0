// Package render turns concrete, fully-resolved layer trees into output: a
// static markup string or a live UI node tree. Both renderers consume the
// rule table in this file (tag selection, attribute mapping, void elements,
// href construction, srcset generation, rich-text rules) so the editor
// preview and published markup cannot drift apart.
package render

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"sitewright/internal/model"
	"sitewright/internal/resolve"
)

// PageRef is the routing shape href construction needs for internal links.
type PageRef struct {
	ID          string
	Slug        string
	LocaleSlugs map[string]string
}

func (p PageRef) SlugFor(localeID string) string {
	if slug, ok := p.LocaleSlugs[localeID]; ok && slug != "" {
		return slug
	}
	return p.Slug
}

// Context carries everything beyond the tree both renderers need: the active
// locale, a page index for internal hrefs, the id-to-anchor table built once
// per tree, and pagination metadata for loop controls.
type Context struct {
	LocaleID   string
	Pages      map[string]PageRef
	Anchors    map[string]string
	Pagination map[string]*resolve.Pagination
	EditMode   bool
}

// BuildAnchorIndex collects every layer anchor in one walk so in-page link
// suffixes resolve without re-scanning the tree per link.
func BuildAnchorIndex(root *model.Layer) map[string]string {
	anchors := make(map[string]string)
	root.Walk(func(n *model.Layer) bool {
		if n.Settings != nil && n.Settings.Anchor != "" {
			anchors[n.ID] = n.Settings.Anchor
		}
		return true
	})
	return anchors
}

// voidTags are elements that never take children or a closing tag.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// restrictiveTags cannot contain block content; rich text rendered into one
// of these uses inline elements only.
var restrictiveTags = map[string]bool{
	"p": true, "span": true, "a": true, "button": true, "label": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var defaultTags = map[model.Kind]string{
	model.KindBox:            "div",
	model.KindText:           "p",
	model.KindImage:          "img",
	model.KindIcon:           "img",
	model.KindVideo:          "video",
	model.KindAudio:          "audio",
	model.KindButton:         "button",
	model.KindEmbed:          "div",
	model.KindPagination:     "nav",
	model.KindLocaleSelector: "div",
	model.KindUnknown:        "div",
}

// attrNames maps internal attribute spellings onto markup-legal names.
var attrNames = map[string]string{
	"className":   "class",
	"htmlFor":     "for",
	"srcSet":      "srcset",
	"autoPlay":    "autoplay",
	"playsInline": "playsinline",
	"tabIndex":    "tabindex",
	"readOnly":    "readonly",
	"crossOrigin": "crossorigin",
	"spellCheck":  "spellcheck",
}

func attrName(internal string) string {
	if mapped, ok := attrNames[internal]; ok {
		return mapped
	}
	return strings.ToLower(internal)
}

// tagFor selects the element tag: the authored tag override when present,
// else the kind default. A paragraph whose rich-text content contains block
// nodes (headings, lists) is promoted to a div, since block content inside
// <p> is illegal markup.
func tagFor(l *model.Layer) string {
	tag := ""
	if l.Settings != nil && l.Settings.Tag != "" {
		tag = strings.ToLower(l.Settings.Tag)
	}
	if tag == "" {
		tag = defaultTags[l.Kind()]
	}
	if tag == "p" && hasBlockContent(l) {
		tag = "div"
	}
	return tag
}

func hasBlockContent(l *model.Layer) bool {
	v, ok := l.Variable("text")
	if !ok || v.Doc == nil {
		return false
	}
	for _, n := range v.Doc.Nodes {
		switch n.Type {
		case model.RichHeading, model.RichBulletedList, model.RichNumberedList:
			return true
		}
	}
	return false
}

// Attr is one rendered attribute; order is fixed by buildAttrs so output is
// byte-deterministic.
type Attr struct {
	Name  string
	Value string
}

// buildAttrs produces the shared attribute list for a layer: hydration
// markers first, then the anchor id, then authored custom attributes in
// sorted order.
func buildAttrs(l *model.Layer) []Attr {
	attrs := []Attr{{Name: "data-layer-id", Value: l.ID}}
	if l.ItemID != "" {
		attrs = append(attrs, Attr{Name: "data-collection-item-id", Value: l.ItemID})
	}
	if l.Settings != nil {
		if l.Settings.Anchor != "" {
			attrs = append(attrs, Attr{Name: "id", Value: l.Settings.Anchor})
		}
		if len(l.Settings.Attributes) > 0 {
			names := make([]string, 0, len(l.Settings.Attributes))
			for name := range l.Settings.Attributes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				attrs = append(attrs, Attr{Name: attrName(name), Value: l.Settings.Attributes[name]})
			}
		}
	}
	return attrs
}

// srcsetWidths are the candidate widths offered for responsive images.
var srcsetWidths = []int{480, 800, 1200, 1600, 2000}

// buildSrcSet generates width-described candidates, capped at the asset's
// intrinsic width when known.
func buildSrcSet(url string, intrinsicWidth int) string {
	if url == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	var parts []string
	for _, w := range srcsetWidths {
		if intrinsicWidth > 0 && w > intrinsicWidth {
			break
		}
		parts = append(parts, fmt.Sprintf("%s%sw=%d %dw", url, sep, w, w))
	}
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts, ", ")
}

const defaultSizes = "100vw"

func escapeText(s string) string {
	return html.EscapeString(s)
}

func escapeAttr(s string) string {
	return html.EscapeString(s)
}
