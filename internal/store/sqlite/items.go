package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"sitewright/internal/store"
)

func (c *Client) GetItemsWithValues(ctx context.Context, collectionID string, published bool, f store.ItemFilters) ([]store.Item, error) {
	query := `
	SELECT id, collection_id, slug, position, field_values
	FROM items
	WHERE collection_id = ? AND published = ?
	`
	args := []any{collectionID, published}
	if len(f.ItemIDs) > 0 {
		query += ` AND id IN (` + placeholders(len(f.ItemIDs)) + `)`
		for _, id := range f.ItemIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY position, id`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	} else if f.Offset > 0 {
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, f.Offset)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("getting items: %w", err)
	}
	defer rows.Close()

	var items []store.Item
	for rows.Next() {
		var it store.Item
		var values []byte
		if err := rows.Scan(&it.ID, &it.CollectionID, &it.Slug, &it.Position, &values); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		if err := json.Unmarshal(values, &it.Values); err != nil {
			return nil, fmt.Errorf("unmarshaling item values: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (c *Client) GetFieldsByCollectionID(ctx context.Context, collectionID string, published bool) ([]store.Field, error) {
	query := `
	SELECT id, collection_id, key, name, type, referenced_collection_id
	FROM fields
	WHERE collection_id = ? AND published = ?
	ORDER BY id
	`
	rows, err := c.db.QueryContext(ctx, query, collectionID, published)
	if err != nil {
		return nil, fmt.Errorf("getting fields: %w", err)
	}
	defer rows.Close()

	var fields []store.Field
	for rows.Next() {
		var fld store.Field
		if err := rows.Scan(&fld.ID, &fld.CollectionID, &fld.Key, &fld.Name, &fld.Type, &fld.ReferencedCollectionID); err != nil {
			return nil, fmt.Errorf("scanning field: %w", err)
		}
		fields = append(fields, fld)
	}
	return fields, rows.Err()
}

func (c *Client) GetAssetsByIDs(ctx context.Context, ids []string) (map[string]store.Asset, error) {
	if len(ids) == 0 {
		return map[string]store.Asset{}, nil
	}
	query := `
	SELECT id, url, file_name, alt, content_type, width, height
	FROM assets
	WHERE id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("getting assets: %w", err)
	}
	defer rows.Close()

	assets := make(map[string]store.Asset, len(ids))
	for rows.Next() {
		var a store.Asset
		if err := rows.Scan(&a.ID, &a.URL, &a.FileName, &a.Alt, &a.ContentType, &a.Width, &a.Height); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets[a.ID] = a
	}
	return assets, rows.Err()
}
