package cmd

import (
	"fmt"

	"github.com/blocktix/btx/internal/config"
	"github.com/blocktix/btx/internal/session"
	"github.com/blocktix/btx/internal/ui"
	"github.com/blocktix/btx/internal/wallet"
	"github.com/spf13/cobra"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets and the active session",
}

var walletKindFlag string

var walletImportCmd = &cobra.Command{
	Use:   "import <name> <private-key>",
	Short: "Import a private key into the OS keychain",
	Long: `Import a hex private key. The key is stored in the OS keychain
(file-backed fallback on headless Linux); only a reference to it is
written to wallets.json.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, hexKey := args[0], args[1]

		ks := wallet.DefaultKeystore()
		signer, err := wallet.ImportKey(name, hexKey, ks)
		if err != nil {
			return fmt.Errorf("importing key: %w", err)
		}

		wf, err := cfg.LoadWallets()
		if err != nil {
			return err
		}
		err = wf.Add(config.WalletEntry{
			Name:    name,
			Address: signer.Address(),
			KeyRef:  signer.KeyRef(),
			Kind:    walletKindFlag,
		})
		if err != nil {
			return err
		}
		if err := cfg.SaveWallets(wf); err != nil {
			return fmt.Errorf("saving wallet registry: %w", err)
		}

		fmt.Println(ui.Success("Wallet imported"))
		fmt.Println(ui.KeyValueBlock("", [][2]string{
			{"Name", name},
			{"Address", ui.Addr(signer.Address())},
			{"Kind", walletKindFlag},
		}))
		return nil
	},
}

var walletConnectCmd = &cobra.Command{
	Use:   "connect [kind]",
	Short: "Connect a wallet session",
	Long: `Connect a wallet. With no kind, the cached choice is reused when
present; otherwise the interactive picker opens (single registered
kind connects directly).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		var sess session.Session
		if len(args) == 1 {
			sess, err = a.session.Connect(cmd.Context(), session.WalletKind(args[0]))
		} else {
			sess, err = a.connectOrRestore(cmd.Context())
		}
		if err != nil {
			return err
		}

		fmt.Println(ui.Success("Wallet connected"))
		fmt.Println(ui.KeyValueBlock("", [][2]string{
			{"Address", ui.Addr(sess.Address)},
			{"Chain", fmt.Sprintf("%d", sess.ChainID)},
			{"Kind", string(sess.Kind)},
		}))
		return nil
	},
}

var walletDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect and forget the cached wallet choice",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		// Establish the cached session first so there is something to
		// disconnect; a failure here just means we are already out.
		if _, err := a.session.Restore(cmd.Context()); err == nil {
			a.session.Disconnect()
		} else {
			session.NewFileCache("").Clear() //nolint:errcheck
		}
		fmt.Println(ui.Success("Wallet disconnected"))
		return nil
	},
}

var walletStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		sess, err := a.session.Restore(cmd.Context())
		if err != nil {
			fmt.Println(ui.Meta("disconnected"))
			return nil
		}
		fmt.Println(ui.KeyValueBlock("Session", [][2]string{
			{"State", a.session.State().String()},
			{"Address", ui.Addr(sess.Address)},
			{"Chain", fmt.Sprintf("%d", sess.ChainID)},
			{"Kind", string(sess.Kind)},
		}))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		wf, err := cfg.LoadWallets()
		if err != nil {
			return err
		}
		if len(wf.Wallets) == 0 {
			fmt.Println(ui.Meta("no wallets imported — run: btx wallet import <name> <key>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "NAME", Width: 16},
			{Title: "ADDRESS", Width: 44},
			{Title: "KIND", Width: 14},
		})
		for _, w := range wf.Wallets {
			t.AddRow(ui.Row{w.Name, w.Address, w.Kind})
		}
		fmt.Print(t.Render())
		return nil
	},
}

func init() {
	walletImportCmd.Flags().StringVar(&walletKindFlag, "kind", string(session.KindMetaMask), "wallet kind (metamask, coinbase, walletconnect, phantom)")
	walletCmd.AddCommand(walletImportCmd, walletConnectCmd, walletDisconnectCmd, walletStatusCmd, walletListCmd)
}
