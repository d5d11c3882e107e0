package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sitewright/internal/config"
)

func initCmd() *cobra.Command {
	var projectName string
	var driver string
	var schema bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new sitewright project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, driver, schema)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&driver, "driver", "sqlite", "Database driver (postgres or sqlite)")
	cmd.Flags().BoolVar(&schema, "ensure-schema", false, "Create the database schema after writing the config")
	return cmd
}

func runInit(projectName, driver string, ensureSchema bool) error {
	configPath := "sitewright.yaml"
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	var dsn string
	switch driver {
	case "sqlite":
		dsn = "sqlite://sitewright.db"
	case "postgres":
		dsn = "postgres://localhost:5432/sitewright"
	default:
		return fmt.Errorf("unsupported database driver: %s", driver)
	}

	contents := fmt.Sprintf(`project: %s
version: 1

database:
  driver: %s
  dsn: %s

site:
  timezone: UTC
  default_locale: en
  locales:
    - en
  items_per_page: 10
`, projectName, driver, dsn)
	if err := os.WriteFile(configPath, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	if !ensureSchema {
		return nil
	}

	ctx := context.Background()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)
	return db.EnsureSchema(ctx)
}
