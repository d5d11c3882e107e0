package sqlite

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS pages (
		id           TEXT NOT NULL,
		published    INTEGER NOT NULL DEFAULT 0,
		slug         TEXT NOT NULL,
		title        TEXT NOT NULL DEFAULT '',
		locale_slugs TEXT NOT NULL DEFAULT '{}',
		root         TEXT NOT NULL,
		PRIMARY KEY (id, published)
	);

	CREATE TABLE IF NOT EXISTS components (
		id        TEXT NOT NULL,
		published INTEGER NOT NULL DEFAULT 0,
		name      TEXT NOT NULL,
		root      TEXT NOT NULL,
		variables TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (id, published)
	);

	CREATE TABLE IF NOT EXISTS collections (
		id        TEXT NOT NULL,
		published INTEGER NOT NULL DEFAULT 0,
		name      TEXT NOT NULL,
		slug      TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (id, published)
	);

	CREATE TABLE IF NOT EXISTS fields (
		id                       TEXT NOT NULL,
		published                INTEGER NOT NULL DEFAULT 0,
		collection_id            TEXT NOT NULL,
		key                      TEXT NOT NULL,
		name                     TEXT NOT NULL DEFAULT '',
		type                     TEXT NOT NULL,
		referenced_collection_id TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (id, published)
	);

	CREATE TABLE IF NOT EXISTS items (
		id            TEXT NOT NULL,
		published     INTEGER NOT NULL DEFAULT 0,
		collection_id TEXT NOT NULL,
		slug          TEXT NOT NULL DEFAULT '',
		position      INTEGER NOT NULL DEFAULT 0,
		field_values  TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (id, published)
	);

	CREATE TABLE IF NOT EXISTS assets (
		id           TEXT PRIMARY KEY,
		url          TEXT NOT NULL,
		file_name    TEXT NOT NULL DEFAULT '',
		alt          TEXT NOT NULL DEFAULT '',
		content_type TEXT NOT NULL DEFAULT '',
		width        INTEGER NOT NULL DEFAULT 0,
		height       INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS translations (
		locale_id   TEXT NOT NULL,
		source_type TEXT NOT NULL,
		source_id   TEXT NOT NULL,
		layer_id    TEXT NOT NULL,
		content_key TEXT NOT NULL,
		value       TEXT NOT NULL DEFAULT '',
		complete    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (locale_id, source_type, source_id, layer_id, content_key)
	);

	CREATE TABLE IF NOT EXISTS item_translations (
		locale_id TEXT NOT NULL,
		item_id   TEXT NOT NULL,
		field_id  TEXT NOT NULL,
		value     TEXT,
		complete  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (locale_id, item_id, field_id)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_slug ON pages (slug, published);
	CREATE INDEX IF NOT EXISTS idx_fields_collection ON fields (collection_id, published);
	CREATE INDEX IF NOT EXISTS idx_items_collection ON items (collection_id, published, position);
	CREATE INDEX IF NOT EXISTS idx_translations_locale ON translations (locale_id);
	CREATE INDEX IF NOT EXISTS idx_item_translations_locale ON item_translations (locale_id);
	`

	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
