package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealworks/menucore/internal/availability"
	"github.com/mealworks/menucore/internal/types"
)

var (
	slotsFulfillments []string
	slotsOrderSize    int
	slotsCartLead     int
)

var slotsCmd = &cobra.Command{
	Use:   "slots <date>",
	Short: "List available order slots for a date",
	Long:  `Slots computes the selectable order times for a date across the given fulfillments, honoring operating hours, blocked-off ranges, and lead times.`,
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

		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		date, err := time.ParseInLocation(types.DateKeyLayout, args[0], loc)
		if err != nil {
			return fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", args[0], err)
		}

		enabled := make([]types.FulfillmentID, 0, len(slotsFulfillments))
		for _, id := range slotsFulfillments {
			enabled = append(enabled, types.FulfillmentID(id))
		}
		if len(enabled) == 0 {
			for id := range snap.Fulfillments {
				enabled = append(enabled, id)
			}
		}

		info, err := availability.ComputeInfo(snap.Fulfillments, enabled, date, slotsOrderSize, slotsCartLead)
		if err != nil {
			return err
		}

		now := time.Now().In(loc)
		first := availability.FirstAvailableTime(info, date, now)
		if first == availability.Unavailable {
			fmt.Println("no slots available")
			return nil
		}

		fmt.Printf("first available: %s\n", formatMinutes(first))
		for _, slot := range availability.AllAvailableSlots(info, date, now) {
			state := ""
			if slot.Disabled {
				state = " (unavailable)"
			}
			fmt.Printf("  %s%s\n", formatMinutes(slot.Value), state)
		}
		return nil
	},
}

// formatMinutes renders minutes from midnight as HH:MM.
func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func init() {
	slotsCmd.Flags().StringSliceVar(&slotsFulfillments, "fulfillment", nil, "fulfillment ids to include (default all)")
	slotsCmd.Flags().IntVar(&slotsOrderSize, "order-size", 1, "number of units in the order")
	slotsCmd.Flags().IntVar(&slotsCartLead, "cart-lead", 0, "cart-level lead time in minutes")
	rootCmd.AddCommand(slotsCmd)
}
