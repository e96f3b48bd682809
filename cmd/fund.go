package cmd

import (
	"fmt"
	"time"

	"github.com/blocktix/btx/internal/funding"
	"github.com/blocktix/btx/internal/ui"
	"github.com/spf13/cobra"
)

var fundCmd = &cobra.Command{
	Use:   "fund",
	Short: "Run and support fundraising campaigns",
}

var (
	campTitle    string
	campDesc     string
	campGoal     string
	campStart    string
	campEnd      string
	campCategory string

	donateMessage   string
	donateAnonymous bool
)

var fundCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign on chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.ParseInLocation(eventTimeLayout, campStart, time.Local)
		if err != nil {
			return fmt.Errorf("bad --start (want %q): %w", eventTimeLayout, err)
		}
		end, err := time.ParseInLocation(eventTimeLayout, campEnd, time.Local)
		if err != nil {
			return fmt.Errorf("bad --end (want %q): %w", eventTimeLayout, err)
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if _, err := a.connectOrRestore(cmd.Context()); err != nil {
			return err
		}

		sp := ui.NewSpinner("Creating campaign…")
		sp.Start()
		_, err = a.campaigns.CreateCampaign(cmd.Context(), funding.CreateCampaignParams{
			Title:       campTitle,
			Description: campDesc,
			GoalEth:     campGoal,
			Start:       start,
			End:         end,
			Category:    campCategory,
		})
		sp.Stop()
		return err
	},
}

var fundDonateCmd = &cobra.Command{
	Use:   "donate <campaign-id> <amount-eth>",
	Short: "Donate to a campaign",
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

		sp := ui.NewSpinner("Sending donation…")
		sp.Start()
		_, err = a.campaigns.Donate(cmd.Context(), args[0], args[1], donateMessage, donateAnonymous)
		sp.Stop()
		return err
	},
}

var fundWithdrawCmd = &cobra.Command{
	Use:   "withdraw <campaign-id>",
	Short: "Withdraw a finished campaign's funds",
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

		_, err = a.campaigns.WithdrawFunds(cmd.Context(), args[0])
		return err
	},
}

var fundShowCmd = &cobra.Command{
	Use:   "show <campaign-id>",
	Short: "Show one campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		cp, err := a.campaigns.Campaign(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock(cp.Title, [][2]string{
			{"ID", cp.ID},
			{"Description", cp.Description},
			{"Goal", cp.GoalEther + " ETH"},
			{"Raised", cp.RaisedEther + " ETH"},
			{"Start", cp.Start.Format(eventTimeLayout)},
			{"End", cp.End.Format(eventTimeLayout)},
			{"Creator", ui.Addr(cp.Creator)},
			{"Category", cp.Category},
			{"Active", fmt.Sprintf("%t", cp.Active)},
			{"Withdrawn", fmt.Sprintf("%t", cp.FundsWithdrawn)},
		}))
		return nil
	},
}

var fundMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List campaigns created by the connected wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		sess, err := a.connectOrRestore(cmd.Context())
		if err != nil {
			return err
		}

		campaigns, err := a.campaigns.CampaignsByCreator(cmd.Context(), sess.Address)
		if err != nil {
			return err
		}
		t := ui.NewTable([]ui.Column{
			{Title: "ID", Width: 8},
			{Title: "TITLE", Width: 26},
			{Title: "GOAL (ETH)", Width: 12},
			{Title: "RAISED (ETH)", Width: 12},
			{Title: "ACTIVE", Width: 6},
		})
		for _, cp := range campaigns {
			t.AddRow(ui.Row{cp.ID, cp.Title, cp.GoalEther, cp.RaisedEther,
				fmt.Sprintf("%t", cp.Active)})
		}
		fmt.Print(t.Render())
		return nil
	},
}

var fundDonationsCmd = &cobra.Command{
	Use:   "donations <campaign-id>",
	Short: "List a campaign's donations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		donations, err := a.campaigns.Donations(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(donations) == 0 {
			fmt.Println(ui.Meta("no donations yet"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "DONOR", Width: 44},
			{Title: "AMOUNT (ETH)", Width: 14},
			{Title: "WHEN", Width: 18},
			{Title: "MESSAGE", Width: 30},
		})
		for _, d := range donations {
			donor := d.Donor
			if d.Anonymous {
				donor = "(anonymous)"
			}
			t.AddRow(ui.Row{donor, d.AmountEther, d.At.Format(eventTimeLayout), d.Message})
		}
		fmt.Print(t.Render())
		return nil
	},
}

var fundCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the total campaign count",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		n, err := a.campaigns.CampaignCount(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(ui.Val(fmt.Sprintf("%d", n)))
		return nil
	},
}

func init() {
	fundCreateCmd.Flags().StringVar(&campTitle, "title", "", "campaign title")
	fundCreateCmd.Flags().StringVar(&campDesc, "desc", "", "campaign description")
	fundCreateCmd.Flags().StringVar(&campGoal, "goal", "", "goal in ETH")
	fundCreateCmd.Flags().StringVar(&campStart, "start", "", `start time ("2006-01-02 15:04")`)
	fundCreateCmd.Flags().StringVar(&campEnd, "end", "", `end time ("2006-01-02 15:04")`)
	fundCreateCmd.Flags().StringVar(&campCategory, "category", "", "campaign category (mirror only)")
	fundCreateCmd.MarkFlagRequired("title") //nolint:errcheck
	fundCreateCmd.MarkFlagRequired("goal")  //nolint:errcheck
	fundCreateCmd.MarkFlagRequired("start") //nolint:errcheck
	fundCreateCmd.MarkFlagRequired("end")   //nolint:errcheck

	fundDonateCmd.Flags().StringVar(&donateMessage, "message", "", "donation message")
	fundDonateCmd.Flags().BoolVar(&donateAnonymous, "anonymous", false, "hide donor address in listings")

	fundCmd.AddCommand(fundCreateCmd, fundDonateCmd, fundWithdrawCmd,
		fundShowCmd, fundMineCmd, fundDonationsCmd, fundCountCmd)
}
