package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/blocktix/btx/internal/mirror"
	"github.com/blocktix/btx/internal/ui"
	"github.com/spf13/cobra"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Inspect the local metadata mirror",
}

var (
	mirrorCategory string
	mirrorCreator  string
	mirrorFeatured bool
	mirrorUpcoming bool
	mirrorLimit    int
)

var mirrorGetCmd = &cobra.Command{
	Use:       "get <collection> <id>",
	Short:     "Fetch one mirrored document",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{mirror.CollectionEvents, mirror.CollectionCampaigns, mirror.CollectionTickets},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if a.store == nil {
			return fmt.Errorf("mirror database unavailable")
		}

		doc, err := a.store.ReadByID(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if doc == nil {
			fmt.Println(ui.Meta("not mirrored"))
			return nil
		}
		return printDoc(*doc)
	},
}

var mirrorQueryCmd = &cobra.Command{
	Use:       "query <collection>",
	Short:     "Query mirrored documents",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{mirror.CollectionEvents, mirror.CollectionCampaigns, mirror.CollectionTickets},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if a.store == nil {
			return fmt.Errorf("mirror database unavailable")
		}

		docs, err := a.store.Query(cmd.Context(), args[0], mirror.Filters{
			Category:      mirrorCategory,
			Creator:       mirrorCreator,
			Featured:      mirrorFeatured,
			PublishedOnly: true,
			Upcoming:      mirrorUpcoming,
			Limit:         mirrorLimit,
		})
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println(ui.Meta("no documents"))
			return nil
		}
		for _, doc := range docs {
			if err := printDoc(doc); err != nil {
				return err
			}
		}
		return nil
	},
}

func printDoc(doc mirror.Document) error {
	data, err := json.MarshalIndent(doc.Data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(ui.Accent(doc.Collection + "/" + doc.ID))
	fmt.Println(string(data))
	return nil
}

func init() {
	mirrorQueryCmd.Flags().StringVar(&mirrorCategory, "category", "", "filter by category")
	mirrorQueryCmd.Flags().StringVar(&mirrorCreator, "creator", "", "filter by creator address")
	mirrorQueryCmd.Flags().BoolVar(&mirrorFeatured, "featured", false, "featured only")
	mirrorQueryCmd.Flags().BoolVar(&mirrorUpcoming, "upcoming", false, "future start dates only")
	mirrorQueryCmd.Flags().IntVar(&mirrorLimit, "limit", 20, "max documents")

	mirrorCmd.AddCommand(mirrorGetCmd, mirrorQueryCmd)
}
