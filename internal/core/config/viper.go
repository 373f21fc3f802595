package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*CatalogConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultCatalogConfig
	v.SetDefault("catalog.database_url", "sqlite://menucore.db")
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.timezone", "UTC")
	v.SetDefault("catalog.query_timeout", "30s")

	// Bind environment variables with MC_ prefix
	v.SetEnvPrefix("MC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &CatalogConfig{
		DatabaseURL:  v.GetString("catalog.database_url"),
		CatalogPath:  v.GetString("catalog.path"),
		Timezone:     v.GetString("catalog.timezone"),
		QueryTimeout: v.GetDuration("catalog.query_timeout"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks that a catalog source is configured and that
// timezone and timeout values are usable.
func validateConfig(cfg *CatalogConfig) error {
	if cfg.DatabaseURL == "" && cfg.CatalogPath == "" {
		return fmt.Errorf("either catalog.database_url or catalog.path must be set")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.QueryTimeout <= 0 {
		return fmt.Errorf("query_timeout must be positive, got %v", cfg.QueryTimeout)
	}
	return nil
}
