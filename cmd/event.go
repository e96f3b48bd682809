package cmd

import (
	"fmt"
	"time"

	"github.com/blocktix/btx/internal/ticketing"
	"github.com/blocktix/btx/internal/ui"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Create and browse ticketed events",
}

var (
	eventName     string
	eventDesc     string
	eventStart    string
	eventEnd      string
	eventCategory string
	eventBanner   string
	eventFeatured bool

	typeName   string
	typeDesc   string
	typePrice  string
	typeSupply uint64
)

const eventTimeLayout = "2006-01-02 15:04"

var eventCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an event on chain",
	Long: `Create an event. Times use the "2006-01-02 15:04" layout in local
time. Category, banner, and featured flag are stored in the local
metadata mirror only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.ParseInLocation(eventTimeLayout, eventStart, time.Local)
		if err != nil {
			return fmt.Errorf("bad --start (want %q): %w", eventTimeLayout, err)
		}
		end, err := time.ParseInLocation(eventTimeLayout, eventEnd, time.Local)
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

		sp := ui.NewSpinner("Creating event…")
		sp.Start()
		id, err := a.tickets.CreateEvent(cmd.Context(), ticketing.CreateEventParams{
			Name:        eventName,
			Description: eventDesc,
			Start:       start,
			End:         end,
			Category:    eventCategory,
			BannerURL:   eventBanner,
			Featured:    eventFeatured,
		})
		sp.Stop()
		if err != nil {
			return err
		}
		if id == "" {
			return nil
		}
		return nil
	},
}

var eventTicketTypeCmd = &cobra.Command{
	Use:   "ticket-type <event-id>",
	Short: "Add a ticket type to an event",
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

		sp := ui.NewSpinner("Creating ticket type…")
		sp.Start()
		_, err = a.tickets.CreateTicketType(cmd.Context(), args[0], typeName, typeDesc, typePrice, typeSupply)
		sp.Stop()
		return err
	},
}

var eventBuyCmd = &cobra.Command{
	Use:   "buy <ticket-type-id>",
	Short: "Buy a ticket of the given type",
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
		_, err = a.tickets.PurchaseTicket(cmd.Context(), args[0])
		sp.Stop()
		return err
	},
}

var eventShowCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show one event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		ev, err := a.tickets.Event(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock(ev.Name, [][2]string{
			{"ID", ev.ID},
			{"Description", ev.Description},
			{"Start", ev.Start.Format(eventTimeLayout)},
			{"End", ev.End.Format(eventTimeLayout)},
			{"Creator", ui.Addr(ev.Creator)},
			{"Category", ev.Category},
			{"Active", fmt.Sprintf("%t", ev.Active)},
		}))
		return nil
	},
}

var eventMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List events created by the connected wallet",
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

		events, err := a.tickets.EventsByCreator(cmd.Context(), sess.Address)
		if err != nil {
			return err
		}
		printEvents(events)
		return nil
	},
}

var eventTypesCmd = &cobra.Command{
	Use:   "types <event-id>",
	Short: "List an event's ticket types",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		types, err := a.tickets.TicketTypesByEvent(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		t := ui.NewTable([]ui.Column{
			{Title: "ID", Width: 8},
			{Title: "NAME", Width: 22},
			{Title: "PRICE (ETH)", Width: 14},
			{Title: "SOLD", Width: 8},
			{Title: "SUPPLY", Width: 8},
		})
		for _, tt := range types {
			t.AddRow(ui.Row{tt.ID, tt.Name, tt.PriceEther,
				fmt.Sprintf("%d", tt.Sold), fmt.Sprintf("%d", tt.Supply)})
		}
		fmt.Print(t.Render())
		return nil
	},
}

var eventTicketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "List tickets owned by the connected wallet",
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

		tickets, err := a.tickets.TicketsByOwner(cmd.Context(), sess.Address)
		if err != nil {
			return err
		}
		t := ui.NewTable([]ui.Column{
			{Title: "TOKEN", Width: 8},
			{Title: "EVENT", Width: 8},
			{Title: "TYPE", Width: 8},
			{Title: "USED", Width: 6},
			{Title: "PURCHASED", Width: 18},
			{Title: "URI", Width: 40},
		})
		for _, tk := range tickets {
			t.AddRow(ui.Row{tk.TokenID, tk.EventID, tk.TicketTypeID,
				fmt.Sprintf("%t", tk.Used), tk.PurchasedAt.Format(eventTimeLayout), tk.TokenURI})
		}
		fmt.Print(t.Render())
		return nil
	},
}

func printEvents(events []ticketing.Event) {
	t := ui.NewTable([]ui.Column{
		{Title: "ID", Width: 8},
		{Title: "NAME", Width: 26},
		{Title: "START", Width: 18},
		{Title: "CATEGORY", Width: 14},
		{Title: "ACTIVE", Width: 6},
	})
	for _, ev := range events {
		t.AddRow(ui.Row{ev.ID, ev.Name, ev.Start.Format(eventTimeLayout), ev.Category,
			fmt.Sprintf("%t", ev.Active)})
	}
	fmt.Print(t.Render())
}

func init() {
	eventCreateCmd.Flags().StringVar(&eventName, "name", "", "event name")
	eventCreateCmd.Flags().StringVar(&eventDesc, "desc", "", "event description")
	eventCreateCmd.Flags().StringVar(&eventStart, "start", "", `start time ("2006-01-02 15:04")`)
	eventCreateCmd.Flags().StringVar(&eventEnd, "end", "", `end time ("2006-01-02 15:04")`)
	eventCreateCmd.Flags().StringVar(&eventCategory, "category", "", "event category (mirror only)")
	eventCreateCmd.Flags().StringVar(&eventBanner, "banner", "", "banner image URL (mirror only)")
	eventCreateCmd.Flags().BoolVar(&eventFeatured, "featured", false, "mark as featured (mirror only)")
	eventCreateCmd.MarkFlagRequired("name")  //nolint:errcheck
	eventCreateCmd.MarkFlagRequired("start") //nolint:errcheck
	eventCreateCmd.MarkFlagRequired("end")   //nolint:errcheck

	eventTicketTypeCmd.Flags().StringVar(&typeName, "name", "", "ticket type name")
	eventTicketTypeCmd.Flags().StringVar(&typeDesc, "desc", "", "ticket type description")
	eventTicketTypeCmd.Flags().StringVar(&typePrice, "price", "0", "price in ETH")
	eventTicketTypeCmd.Flags().Uint64Var(&typeSupply, "supply", 0, "ticket supply")
	eventTicketTypeCmd.MarkFlagRequired("name")   //nolint:errcheck
	eventTicketTypeCmd.MarkFlagRequired("supply") //nolint:errcheck

	eventCmd.AddCommand(eventCreateCmd, eventTicketTypeCmd, eventBuyCmd,
		eventShowCmd, eventMineCmd, eventTypesCmd, eventTicketsCmd)
}
