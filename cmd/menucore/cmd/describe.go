package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mealworks/menucore/internal/catalog"
	"github.com/mealworks/menucore/internal/product"
	"github.com/mealworks/menucore/internal/types"
)

var (
	describeFulfillment string
	describeAt          string
)

// selectionFile is the YAML form of one configured product.
type selectionFile struct {
	Product   string                                    `yaml:"product"`
	Modifiers map[string][]catalog.PlacedOptionDocument `yaml:"modifiers"`
}

var describeCmd = &cobra.Command{
	Use:   "describe <selection.yaml>",
	Short: "Compute the metadata of one configured product",
	Long:  `Describe evaluates a product selection against the catalog and prints the derived metadata: display name, price, split state, and per-side capacity totals.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(cfg)
		if err != nil {
			return err
		}

		sel, err := readSelection(args[0])
		if err != nil {
			return err
		}

		at := time.Now()
		if describeAt != "" {
			at, err = time.Parse(time.RFC3339, describeAt)
			if err != nil {
				return fmt.Errorf("invalid --at time: %w", err)
			}
		}

		meta, err := product.GenerateMetadata(sel, snap, at.UnixMilli(), types.FulfillmentID(describeFulfillment))
		if err != nil {
			return err
		}

		fmt.Printf("name:        %s\n", meta.Name)
		fmt.Printf("short name:  %s\n", meta.ShortName)
		if meta.Description != "" {
			fmt.Printf("description: %s\n", meta.Description)
		}
		fmt.Printf("price:       %s\n", meta.Price.StringFixed(2))
		fmt.Printf("split:       %v\n", meta.IsSplit)
		fmt.Printf("incomplete:  %v\n", meta.Incomplete)
		fmt.Printf("bake:        left=%.2f right=%.2f\n", meta.BakeCount[0], meta.BakeCount[1])
		fmt.Printf("flavor:      left=%.2f right=%.2f\n", meta.FlavorCount[0], meta.FlavorCount[1])
		return nil
	},
}

// readSelection parses a selection file into the engine's configuration form.
func readSelection(path string) (*types.ProductConfiguration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection file: %w", err)
	}

	var file selectionFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse selection file: %w", err)
	}
	if file.Product == "" {
		return nil, fmt.Errorf("selection file missing product")
	}

	sel := &types.ProductConfiguration{
		ProductID: types.ProductID(file.Product),
		Modifiers: make(map[types.ModifierTypeID][]types.PlacedOption, len(file.Modifiers)),
	}
	for mtID, docs := range file.Modifiers {
		placed := make([]types.PlacedOption, 0, len(docs))
		for _, doc := range docs {
			placement, err := types.ParsePlacement(doc.Placement)
			if err != nil {
				return nil, err
			}
			qualifier := types.QualifierRegular
			if doc.Qualifier != "" {
				qualifier, err = types.ParseQualifier(doc.Qualifier)
				if err != nil {
					return nil, err
				}
			}
			placed = append(placed, types.PlacedOption{
				OptionID:  types.OptionID(doc.Option),
				Placement: placement,
				Qualifier: qualifier,
			})
		}
		sel.Modifiers[types.ModifierTypeID(mtID)] = placed
	}
	return sel, nil
}

func init() {
	describeCmd.Flags().StringVar(&describeFulfillment, "fulfillment", "", "fulfillment to evaluate against")
	describeCmd.Flags().StringVar(&describeAt, "at", "", "service time (RFC3339, default now)")
	rootCmd.AddCommand(describeCmd)
}
