package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configured catalog",
	Long:  `Validate loads the catalog from its configured source and runs the full set of integrity checks: ordinal uniqueness, reference integrity, base instance presence, and expression references.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(cfg)
		if err != nil {
			return err
		}

		instances := 0
		for _, entry := range snap.Products {
			instances += len(entry.Instances)
		}

		fmt.Printf("catalog OK: %d products, %d instances, %d modifier types, %d options, %d fulfillments, %d expressions\n",
			len(snap.Products), instances, len(snap.Modifiers), len(snap.Options),
			len(snap.Fulfillments), len(snap.Expressions))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
