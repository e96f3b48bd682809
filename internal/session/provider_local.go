package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/blocktix/btx/internal/chain"
	"github.com/blocktix/btx/internal/wallet"
)

// LocalProvider is a wallet provider backed by a locally-held key and
// a direct RPC connection. It stands in for an injected browser
// provider: the key custody is local, everything else is forwarded to
// the node. It emits no spontaneous notifications — a local key never
// changes accounts underneath us — but keeps the handler plumbing so
// the Manager treats it like any other provider.
type LocalProvider struct {
	kind   WalletKind
	signer *wallet.Signer
	client *chain.EVMClient

	mu       sync.Mutex
	handlers map[string][]func(payload string)
	closed   bool
}

// NewLocalProvider creates a provider for a signer over the given RPC client.
func NewLocalProvider(kind WalletKind, signer *wallet.Signer, client *chain.EVMClient) *LocalProvider {
	return &LocalProvider{
		kind:     kind,
		signer:   signer,
		client:   client,
		handlers: make(map[string][]func(payload string)),
	}
}

// LocalFactory returns a ProviderFactory that opens a LocalProvider
// for the key stored under keyRef, or ErrProviderUnavailable when the
// keystore has no such key.
func LocalFactory(kind WalletKind, address, keyRef string, ks wallet.Store, client *chain.EVMClient) ProviderFactory {
	return func(ctx context.Context) (Provider, error) {
		if _, err := ks.Retrieve(keyRef); err != nil {
			return nil, fmt.Errorf("%w: no key for %s", ErrProviderUnavailable, kind)
		}
		return NewLocalProvider(kind, wallet.NewSigner(address, keyRef, ks), client), nil
	}
}

func (p *LocalProvider) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("provider closed")
	}
	p.mu.Unlock()

	switch method {
	case "eth_accounts", "eth_requestAccounts":
		return json.Marshal([]string{p.signer.Address()})
	default:
		return p.client.RawRequest(ctx, method, params...)
	}
}

func (p *LocalProvider) On(event string, handler func(payload string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[event] = append(p.handlers[event], handler)
}

// Signer returns the provider's transaction signer.
func (p *LocalProvider) Signer() *wallet.Signer { return p.signer }

// Close marks the provider closed. Idempotent.
func (p *LocalProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
