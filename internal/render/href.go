package render

import "sitewright/internal/model"

// BuildHref turns a link payload into a concrete href. Field and asset links
// are expected to carry their resolved URL already; internal page links route
// through the page index using the locale's slug and append the target
// layer's anchor when one exists.
func BuildHref(link *model.Link, rc *Context) string {
	if link == nil {
		return ""
	}
	switch link.Kind {
	case model.LinkURL:
		return link.URL
	case model.LinkEmail:
		if link.Email == "" {
			return ""
		}
		return "mailto:" + link.Email
	case model.LinkPhone:
		if link.Phone == "" {
			return ""
		}
		return "tel:" + link.Phone
	case model.LinkAsset, model.LinkField:
		return link.URL
	case model.LinkPage:
		return pageHref(link, rc)
	}
	return ""
}

func pageHref(link *model.Link, rc *Context) string {
	href := ""
	if link.PageID != "" {
		page, ok := rc.Pages[link.PageID]
		if !ok {
			return ""
		}
		slug := page.SlugFor(rc.LocaleID)
		if slug == "" || slug == "index" {
			href = "/"
		} else {
			href = "/" + slug
		}
	}
	if link.AnchorLayerID != "" {
		if anchor, ok := rc.Anchors[link.AnchorLayerID]; ok && anchor != "" {
			href += "#" + anchor
		}
	}
	return href
}
