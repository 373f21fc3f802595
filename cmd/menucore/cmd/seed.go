package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mealworks/menucore/internal/catalog"
	"github.com/mealworks/menucore/internal/core/db"
)

var seedCmd = &cobra.Command{
	Use:   "seed <catalog.yaml>",
	Short: "Load a YAML catalog into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		snap, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}

		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := db.MigrateUp(conn); err != nil {
			return err
		}

		queries, err := db.LoadQueries(conn)
		if err != nil {
			return err
		}

		if err := db.SaveSnapshot(queries, snap); err != nil {
			return err
		}

		fmt.Printf("seeded %d products, %d modifier types, %d fulfillments\n",
			len(snap.Products), len(snap.Modifiers), len(snap.Fulfillments))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
