package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mealworks/menucore/internal/catalog"
	"github.com/mealworks/menucore/internal/core/config"
	"github.com/mealworks/menucore/internal/core/db"
)

var (
	configFile  string
	dbURL       string
	catalogPath string
)

var rootCmd = &cobra.Command{
	Use:   "menucore",
	Short: "Menucore storefront catalog engine",
	Long:  `Menucore evaluates configured products against a storefront catalog: naming, pricing, enablement, and order slot availability.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog YAML file, used instead of the database")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the effective configuration: flags override the
// config file and environment.
func loadConfig() (*config.CatalogConfig, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if catalogPath != "" {
		cfg.CatalogPath = catalogPath
	}
	return cfg, nil
}

// loadSnapshot assembles the catalog snapshot from the configured source.
// A YAML catalog path takes precedence over the database.
func loadSnapshot(cfg *config.CatalogConfig) (*catalog.Snapshot, error) {
	if cfg.CatalogPath != "" {
		return catalog.LoadFile(cfg.CatalogPath)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	queries, err := db.LoadQueries(conn)
	if err != nil {
		return nil, err
	}

	snap, err := db.LoadSnapshot(queries)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from database: %w", err)
	}
	return snap, nil
}
