package cmd

import (
	"fmt"

	"github.com/blocktix/btx/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit btx configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.KeyValueBlock("Configuration", [][2]string{
			{"Config dir", cfg.Dir()},
			{"RPC URL", cfg.RPCURL},
			{"Chain ID", fmt.Sprintf("%d", cfg.ChainID)},
			{"EventTicket", cfg.EventTicketAddress},
			{"TicketMarketplace", cfg.TicketMarketplaceAddress},
			{"Fundraising", cfg.FundraisingAddress},
			{"Mirror DB", cfg.MirrorDBPath},
			{"Default wallet", cfg.DefaultWalletKind},
		}))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value by its JSON key.

Keys: rpc_url, chain_id, event_ticket_address,
ticket_marketplace_address, fundraising_address, mirror_db_path,
default_wallet_kind`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(args[0] + " updated"))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
