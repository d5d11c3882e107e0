package store

import (
	"context"
	"errors"

	"sitewright/internal/model"
)

// ErrNotFound is returned when a page lookup matches nothing. Bulk lookups do
// not return it; missing ids are simply absent from the result map.
var ErrNotFound = errors.New("not found")

// Store is the repository contract the resolution pipeline reads from. All
// methods are pure reads; the pipeline never writes stored state. The
// published flag selects the published copy of draft/published entity pairs.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	ListPages(ctx context.Context, published bool) ([]PageSummary, error)
	GetPage(ctx context.Context, id string, published bool) (*Page, error)
	GetPageBySlug(ctx context.Context, slug string, published bool) (*Page, error)

	GetComponentsByIDs(ctx context.Context, ids []string, published bool) (map[string]*model.Component, error)

	GetItemsWithValues(ctx context.Context, collectionID string, published bool, f ItemFilters) ([]Item, error)
	GetFieldsByCollectionID(ctx context.Context, collectionID string, published bool) ([]Field, error)

	GetAssetsByIDs(ctx context.Context, ids []string) (map[string]Asset, error)

	LoadTranslationsForLocale(ctx context.Context, localeID string) (*TranslationSet, error)
}
