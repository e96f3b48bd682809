// Package session owns the wallet connection lifecycle. A single
// Manager mediates between wallet providers and everything else:
// other components read the session and re-derive contract handles
// when it changes, but never touch the provider directly.
package session

import "errors"

// WalletKind identifies which wallet family a provider belongs to.
type WalletKind string

// Supported wallet kinds.
const (
	KindMetaMask      WalletKind = "metamask"
	KindCoinbase      WalletKind = "coinbase"
	KindWalletConnect WalletKind = "walletconnect"
	KindPhantom       WalletKind = "phantom"
	KindUnknown       WalletKind = "unknown"
)

// Errors.
var (
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	ErrUserRejected        = errors.New("connection rejected by user")
	ErrNetwork             = errors.New("network error")
	ErrNotConnected        = errors.New("wallet not connected")
)

// State is the connection state of the session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Session is a snapshot of the current wallet connection. The zero
// value is the empty (disconnected) session.
type Session struct {
	Address string
	ChainID int64
	Kind    WalletKind
	// Epoch increments on every change that invalidates derived state
	// (reconnect, chain change). Contract handles bound under an older
	// epoch must be re-derived.
	Epoch uint64
}

// Connected reports whether the snapshot carries an active address.
func (s Session) Connected() bool {
	return s.Address != ""
}
