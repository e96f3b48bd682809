package contract

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/blocktix/btx/internal/chain"
	"github.com/blocktix/btx/internal/wallet"
)

// Name identifies one of the platform contracts.
type Name string

// Platform contracts.
const (
	EventTicket       Name = "EventTicket"
	TicketMarketplace Name = "TicketMarketplace"
	Fundraising       Name = "Fundraising"
)

// Errors.
var (
	ErrUnknownContract = errors.New("unknown contract")
	ErrNoBindingTarget = errors.New("no binding target")
)

// Target is what a handle binds to: a read connection plus an
// optional signer. A nil signer produces a read-only handle.
type Target struct {
	Client  *chain.EVMClient
	Signer  *wallet.Signer
	ChainID int64
}

// Factory produces contract handles from a static address table.
// Deterministic: same name and target always yield the same handle.
// It never caches — callers re-Bind when the session changes.
type Factory struct {
	addresses map[Name]string
}

// NewFactory creates a factory over the deployment's address table.
func NewFactory(addresses map[Name]string) *Factory {
	return &Factory{addresses: addresses}
}

// Bind returns a handle for name bound to target.
func (f *Factory) Bind(name Name, target *Target) (*Handle, error) {
	addr, ok := f.addresses[name]
	if !ok || addr == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContract, name)
	}
	abi := BuiltinABI(name)
	if abi == nil {
		return nil, fmt.Errorf("%w: %s has no ABI", ErrUnknownContract, name)
	}
	if target == nil || target.Client == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoBindingTarget, name)
	}

	return &Handle{
		Name:    name,
		Address: addr,
		abi:     abi,
		client:  target.Client,
		signer:  target.Signer,
		chainID: big.NewInt(target.ChainID),
	}, nil
}
