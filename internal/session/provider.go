package session

import (
	"context"
	"encoding/json"

	"github.com/blocktix/btx/internal/wallet"
)

// Provider event names, matching the EIP-1193 notification names the
// platform's wallet providers emit.
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
	EventDisconnect      = "disconnect"
)

// Provider is a connected wallet endpoint: a request pipe plus event
// notifications. Only the session Manager may register listeners on a
// provider; every other component observes the Manager instead.
type Provider interface {
	// Request performs a wallet RPC method (eth_accounts, eth_chainId, ...).
	Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
	// On registers a handler for one of the Event* notifications.
	// The payload is event-specific (new address, new chain id hex).
	On(event string, handler func(payload string))
	// Close releases the provider connection.
	Close() error
}

// Signing is implemented by providers that can produce signed
// transactions for their account.
type Signing interface {
	Signer() *wallet.Signer
}

// ProviderFactory opens a provider for one wallet kind. It should
// return ErrProviderUnavailable when that wallet is not installed or
// reachable and ErrUserRejected when the user declines the prompt.
type ProviderFactory func(ctx context.Context) (Provider, error)
