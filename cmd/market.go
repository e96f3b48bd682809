package cmd

import (
	"fmt"

	"github.com/blocktix/btx/internal/ui"
	"github.com/spf13/cobra"
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Resell tickets on the marketplace",
}

var (
	offerAmount string
	offerDays   int
)

var marketListCmd = &cobra.Command{
	Use:   "list <token-id> <price-eth>",
	Short: "List a ticket for sale",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if _, err := a.connectOrRestore(cmd.Context()); err != nil {
			return err
		}

		sp := ui.NewSpinner("Listing ticket…")
		sp.Start()
		_, err = a.market.ListTicket(cmd.Context(), args[0], args[1])
		sp.Stop()
		return err
	},
}

var marketBuyCmd = &cobra.Command{
	Use:   "buy <token-id>",
	Short: "Buy a listed ticket at its asking price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if _, err := a.connectOrRestore(cmd.Context()); err != nil {
			return err
		}

		sp := ui.NewSpinner("Buying ticket…")
		sp.Start()
		_, err = a.market.BuyTicket(cmd.Context(), args[0])
		sp.Stop()
		return err
	},
}

var marketOfferCmd = &cobra.Command{
	Use:   "offer <token-id>",
	Short: "Place an offer on a listed ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if _, err := a.connectOrRestore(cmd.Context()); err != nil {
			return err
		}

		sp := ui.NewSpinner("Placing offer…")
		sp.Start()
		_, err = a.market.MakeOffer(cmd.Context(), args[0], offerAmount, offerDays)
		sp.Stop()
		return err
	},
}

var marketCancelCmd = &cobra.Command{
	Use:   "cancel <token-id>",
	Short: "Cancel a listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if _, err := a.connectOrRestore(cmd.Context()); err != nil {
			return err
		}

		_, err = a.market.CancelListing(cmd.Context(), args[0])
		return err
	},
}

var marketListingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Show active listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		listings, err := a.market.ActiveListings(cmd.Context())
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			fmt.Println(ui.Meta("no active listings"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "LISTING", Width: 8},
			{Title: "TOKEN", Width: 8},
			{Title: "SELLER", Width: 44},
			{Title: "PRICE (ETH)", Width: 14},
			{Title: "LISTED", Width: 18},
		})
		for _, l := range listings {
			t.AddRow(ui.Row{l.ListingID, l.TokenID, l.Seller, l.PriceEther,
				l.ListedAt.Format(eventTimeLayout)})
		}
		fmt.Print(t.Render())
		return nil
	},
}

var marketOffersCmd = &cobra.Command{
	Use:   "offers <token-id>",
	Short: "Show offers on a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		offers, err := a.market.ActiveOffers(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(offers) == 0 {
			fmt.Println(ui.Meta("no offers"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "BUYER", Width: 44},
			{Title: "AMOUNT (ETH)", Width: 14},
			{Title: "EXPIRES", Width: 18},
			{Title: "ACTIVE", Width: 6},
		})
		for _, o := range offers {
			t.AddRow(ui.Row{o.Buyer, o.PriceEther,
				o.Expires.Format(eventTimeLayout), fmt.Sprintf("%t", o.Active)})
		}
		fmt.Print(t.Render())
		return nil
	},
}

func init() {
	marketOfferCmd.Flags().StringVar(&offerAmount, "amount", "", "offer amount in ETH")
	marketOfferCmd.Flags().IntVar(&offerDays, "expire-days", 7, "offer validity in days")
	marketOfferCmd.MarkFlagRequired("amount") //nolint:errcheck

	marketCmd.AddCommand(marketListCmd, marketBuyCmd, marketOfferCmd,
		marketCancelCmd, marketListingsCmd, marketOffersCmd)
}
