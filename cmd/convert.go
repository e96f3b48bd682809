package cmd

import (
	"fmt"
	"strings"

	"github.com/blocktix/btx/internal/ui"
	"github.com/blocktix/btx/internal/units"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount> [unit]",
	Short: "Convert between ETH and wei",
	Long: `Convert between ETH and wei exactly.

Examples:
  btx convert 1.5 eth        # → wei
  btx convert 1500000000000000000 wei   # → ETH
  btx convert 0.1            # no unit: treated as ETH`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount := args[0]
		unit := "eth"
		if len(args) > 1 {
			unit = strings.ToLower(args[1])
		}

		switch unit {
		case "eth", "ether":
			wei, err := units.ParseEther(amount)
			if err != nil {
				return err
			}
			fmt.Println(ui.KeyValueBlock("Unit Conversion", [][2]string{
				{"Input", ui.Val(amount + " ETH")},
				{"Wei", ui.Val(wei.String() + " wei")},
			}))
		case "wei":
			wei, err := units.ParseWei(amount)
			if err != nil {
				return err
			}
			fmt.Println(ui.KeyValueBlock("Unit Conversion", [][2]string{
				{"Input", ui.Val(amount + " wei")},
				{"ETH", ui.Val(units.FormatEther(wei) + " ETH")},
			}))
		default:
			return fmt.Errorf("unknown unit %q — use eth or wei", unit)
		}
		return nil
	},
}
