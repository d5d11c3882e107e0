package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Site     SiteConfig     `yaml:"site"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres or sqlite
	DSN    string `yaml:"dsn"`
}

type SiteConfig struct {
	Timezone      string   `yaml:"timezone"`
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
	ItemsPerPage  int      `yaml:"items_per_page"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	case "":
		return fmt.Errorf("database driver is required")
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	if cfg.Site.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Site.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", cfg.Site.Timezone, err)
		}
	}
	if cfg.Site.ItemsPerPage < 0 {
		return fmt.Errorf("items_per_page must not be negative")
	}
	seen := make(map[string]struct{})
	for _, locale := range cfg.Site.Locales {
		key := strings.ToLower(locale)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("duplicate locale: %s", locale)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Location resolves the configured timezone, defaulting to UTC.
func (c *Config) Location() *time.Location {
	if c.Site.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
