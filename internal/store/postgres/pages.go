package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sitewright/internal/model"
	"sitewright/internal/store"
)

func (c *Client) ListPages(ctx context.Context, published bool) ([]store.PageSummary, error) {
	query := `
SELECT id, slug, title, locale_slugs
FROM pages
WHERE published = $1
ORDER BY slug
`
	rows, err := c.pool.Query(ctx, query, published)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	defer rows.Close()

	var pages []store.PageSummary
	for rows.Next() {
		var p store.PageSummary
		var localeSlugs []byte
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &localeSlugs); err != nil {
			return nil, fmt.Errorf("scanning page summary: %w", err)
		}
		if err := json.Unmarshal(localeSlugs, &p.LocaleSlugs); err != nil {
			return nil, fmt.Errorf("unmarshaling locale slugs: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (c *Client) GetPage(ctx context.Context, id string, published bool) (*store.Page, error) {
	query := `
SELECT id, slug, title, locale_slugs, root
FROM pages
WHERE id = $1 AND published = $2
`
	return c.scanPage(c.pool.QueryRow(ctx, query, id, published))
}

func (c *Client) GetPageBySlug(ctx context.Context, slug string, published bool) (*store.Page, error) {
	query := `
SELECT id, slug, title, locale_slugs, root
FROM pages
WHERE slug = $1 AND published = $2
`
	return c.scanPage(c.pool.QueryRow(ctx, query, slug, published))
}

func (c *Client) scanPage(row pgx.Row) (*store.Page, error) {
	var p store.Page
	var localeSlugs, root []byte
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &localeSlugs, &root); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("getting page: %w", err)
	}
	if err := json.Unmarshal(localeSlugs, &p.LocaleSlugs); err != nil {
		return nil, fmt.Errorf("unmarshaling locale slugs: %w", err)
	}
	if err := json.Unmarshal(root, &p.Root); err != nil {
		return nil, fmt.Errorf("unmarshaling page tree: %w", err)
	}
	return &p, nil
}

func (c *Client) GetComponentsByIDs(ctx context.Context, ids []string, published bool) (map[string]*model.Component, error) {
	if len(ids) == 0 {
		return map[string]*model.Component{}, nil
	}
	query := `
SELECT id, name, root, variables
FROM components
WHERE id = ANY($1) AND published = $2
`
	rows, err := c.pool.Query(ctx, query, ids, published)
	if err != nil {
		return nil, fmt.Errorf("getting components: %w", err)
	}
	defer rows.Close()

	components := make(map[string]*model.Component)
	for rows.Next() {
		var comp model.Component
		var root, variables []byte
		if err := rows.Scan(&comp.ID, &comp.Name, &root, &variables); err != nil {
			return nil, fmt.Errorf("scanning component: %w", err)
		}
		if err := json.Unmarshal(root, &comp.Root); err != nil {
			return nil, fmt.Errorf("unmarshaling component tree: %w", err)
		}
		if err := json.Unmarshal(variables, &comp.Variables); err != nil {
			return nil, fmt.Errorf("unmarshaling component variables: %w", err)
		}
		components[comp.ID] = &comp
	}
	return components, rows.Err()
}
