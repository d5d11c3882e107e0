package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"sitewright/internal/store"
)

func (c *Client) LoadTranslationsForLocale(ctx context.Context, localeID string) (*store.TranslationSet, error) {
	layerQuery := `
	SELECT locale_id, source_type, source_id, layer_id, content_key, value, complete
	FROM translations
	WHERE locale_id = ?
	`
	rows, err := c.db.QueryContext(ctx, layerQuery, localeID)
	if err != nil {
		return nil, fmt.Errorf("loading translations: %w", err)
	}
	defer rows.Close()

	var layers []store.Translation
	for rows.Next() {
		var t store.Translation
		if err := rows.Scan(&t.LocaleID, &t.SourceType, &t.SourceID, &t.LayerID, &t.ContentKey, &t.Value, &t.Complete); err != nil {
			return nil, fmt.Errorf("scanning translation: %w", err)
		}
		layers = append(layers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemQuery := `
	SELECT locale_id, item_id, field_id, value, complete
	FROM item_translations
	WHERE locale_id = ?
	`
	itemRows, err := c.db.QueryContext(ctx, itemQuery, localeID)
	if err != nil {
		return nil, fmt.Errorf("loading item translations: %w", err)
	}
	defer itemRows.Close()

	var items []store.ItemTranslation
	for itemRows.Next() {
		var t store.ItemTranslation
		var value []byte
		if err := itemRows.Scan(&t.LocaleID, &t.ItemID, &t.FieldID, &value, &t.Complete); err != nil {
			return nil, fmt.Errorf("scanning item translation: %w", err)
		}
		if len(value) > 0 {
			if err := json.Unmarshal(value, &t.Value); err != nil {
				return nil, fmt.Errorf("unmarshaling item translation value: %w", err)
			}
		}
		items = append(items, t)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	return store.NewTranslationSet(localeID, layers, items), nil
}
