package cmd

import (
	"context"

	"github.com/blocktix/btx/internal/chain"
	"github.com/blocktix/btx/internal/contract"
	"github.com/blocktix/btx/internal/funding"
	"github.com/blocktix/btx/internal/market"
	"github.com/blocktix/btx/internal/mirror"
	"github.com/blocktix/btx/internal/session"
	"github.com/blocktix/btx/internal/ticketing"
	"github.com/blocktix/btx/internal/ui"
	"github.com/blocktix/btx/internal/wallet"
	"go.uber.org/zap"
)

// app bundles the wired components every command needs. Built fresh
// per invocation; the CLI is short-lived.
type app struct {
	evm     *chain.EVMClient
	keys    wallet.Store
	session *session.Manager
	factory *contract.Factory
	store   *mirror.Store // nil when the mirror db cannot be opened
	notify  ui.Notifier

	tickets   *ticketing.Client
	market    *market.Client
	campaigns *funding.Client
}

// newApp wires the application from the loaded config. Imported
// wallets become connectable providers; the wallet chooser is the
// interactive picker.
func newApp(ctx context.Context) (*app, error) {
	a := &app{
		evm:    chain.NewEVMClient(cfg.RPCURL),
		keys:   wallet.DefaultKeystore(),
		notify: ui.Toast{},
	}

	a.session = session.NewManager(
		session.WithChooser(chooseWallet),
	)
	if err := a.registerWallets(); err != nil {
		return nil, err
	}

	addrs := map[contract.Name]string{}
	for name, addr := range cfg.Addresses() {
		addrs[contract.Name(name)] = addr
	}
	a.factory = contract.NewFactory(addrs)

	store, err := mirror.Open(ctx, cfg.MirrorDBPath)
	if err != nil {
		// Metadata enrichment degrades; chain operations still work.
		zap.L().Warn("mirror unavailable", zap.Error(err))
	} else {
		a.store = store
	}

	a.tickets = ticketing.NewClient(a.session, a.factory, a.evm, a.store, a.notify)
	a.market = market.NewClient(a.session, a.factory, a.evm, a.notify)
	a.campaigns = funding.NewClient(a.session, a.factory, a.evm, a.store, a.notify)
	return a, nil
}

func (a *app) registerWallets() error {
	wf, err := cfg.LoadWallets()
	if err != nil {
		return err
	}
	for _, w := range wf.Wallets {
		kind := session.WalletKind(w.Kind)
		if kind == "" {
			kind = session.KindUnknown
		}
		a.session.RegisterProvider(kind,
			session.LocalFactory(kind, w.Address, w.KeyRef, a.keys, a.evm))
	}
	return nil
}

// connectOrRestore reuses the cached wallet choice when present,
// otherwise runs a fresh connect (which may open the picker).
func (a *app) connectOrRestore(ctx context.Context) (session.Session, error) {
	sess, err := a.session.Restore(ctx)
	if err == nil {
		return sess, nil
	}
	kind := session.WalletKind(cfg.DefaultWalletKind)
	return a.session.Connect(ctx, kind)
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}

func chooseWallet(kinds []session.WalletKind) (session.WalletKind, error) {
	labels := make([]string, 0, len(kinds))
	for _, k := range kinds {
		labels = append(labels, string(k))
	}
	chosen, err := ui.PickWalletKind(labels)
	if err != nil {
		return session.KindUnknown, err
	}
	if chosen == "" {
		return session.KindUnknown, nil
	}
	return session.WalletKind(chosen), nil
}
