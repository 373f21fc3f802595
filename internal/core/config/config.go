// Package config provides configuration management for menucore tools.
package config

import (
	"fmt"
	"time"
)

// CatalogConfig holds configuration shared by the menucore commands.
// The catalog is loaded either from a database (DatabaseURL) or from a
// YAML file (CatalogPath); exactly one source must be configured.
type CatalogConfig struct {
	DatabaseURL  string
	CatalogPath  string
	Timezone     string
	QueryTimeout time.Duration
}

// DefaultCatalogConfig returns configuration with default values.
func DefaultCatalogConfig() *CatalogConfig {
	return &CatalogConfig{
		DatabaseURL:  "sqlite://menucore.db",
		CatalogPath:  "",
		Timezone:     "UTC",
		QueryTimeout: 30 * time.Second,
	}
}

// Location resolves the configured timezone name.
func (c *CatalogConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
