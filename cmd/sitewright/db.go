package main

import (
	"context"
	"fmt"

	"sitewright/internal/config"
	"sitewright/internal/store"
	"sitewright/internal/store/postgres"
	"sitewright/internal/store/sqlite"
)

func openDB(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return postgres.New(ctx, cfg.Database.DSN)
	case "sqlite":
		return sqlite.New(ctx, cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}
