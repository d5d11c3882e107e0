package store

import (
	"sitewright/internal/model"
)

// PageSummary is the listing shape for pages. LocaleSlugs rides along so
// internal link hrefs can localize without fetching each page.
type PageSummary struct {
	ID          string
	Slug        string
	Title       string
	LocaleSlugs map[string]string
}

// Page is an authored document: a root layer tree plus routing metadata.
// Draft and published copies share the same logical id; the published flag on
// reads selects which copy is returned.
type Page struct {
	ID          string
	Slug        string
	Title       string
	LocaleSlugs map[string]string // locale id -> localized slug
	Root        *model.Layer
}

// SlugFor returns the page slug for a locale, falling back to the default
// slug when no localized one exists.
func (p *Page) SlugFor(localeID string) string {
	if slug, ok := p.LocaleSlugs[localeID]; ok && slug != "" {
		return slug
	}
	return p.Slug
}

// Collection is a named, schema-typed data set whose items can drive a layer
// loop.
type Collection struct {
	ID   string
	Name string
	Slug string
}

// FieldType is the declared schema type of a collection field.
type FieldType string

const (
	FieldText           FieldType = "text"
	FieldRichText       FieldType = "rich_text"
	FieldNumber         FieldType = "number"
	FieldDate           FieldType = "date"
	FieldBoolean        FieldType = "boolean"
	FieldLink           FieldType = "link"
	FieldColor          FieldType = "color"
	FieldAsset          FieldType = "asset"
	FieldMultiAsset     FieldType = "multi_asset"
	FieldReference      FieldType = "reference"
	FieldMultiReference FieldType = "multi_reference"
)

// Field describes one column of a collection schema. Reference-typed fields
// carry the target collection id.
type Field struct {
	ID                     string
	CollectionID           string
	Key                    string
	Name                   string
	Type                   FieldType
	ReferencedCollectionID string
}

// Item is one row of a collection together with its field values, keyed by
// field id.
type Item struct {
	ID           string
	CollectionID string
	Slug         string
	Position     int
	Values       map[string]any
}

// Asset is a stored media file reference.
type Asset struct {
	ID          string
	URL         string
	FileName    string
	Alt         string
	ContentType string
	Width       int
	Height      int
}

// ItemFilters narrows an item query. A zero filter returns every item of the
// collection in stored order.
type ItemFilters struct {
	Limit   int
	Offset  int
	ItemIDs []string
}
