package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/blocktix/btx/internal/wallet"
	"go.uber.org/zap"
)

// Chooser picks a wallet kind when Connect is called without one.
// Returning KindUnknown with a nil error means the user cancelled.
type Chooser func(kinds []WalletKind) (WalletKind, error)

// Manager owns the wallet session. State transitions:
//
//	Disconnected -> Connecting -> Connected   (Connect)
//	Connecting   -> Disconnected              (Connect failure)
//	Connected    -> Disconnected              (Disconnect, provider disconnect)
//
// An accountsChanged notification updates the address in place; a
// chainChanged notification bumps the epoch and fires invalidation
// hooks so derived contract handles are rebuilt.
type Manager struct {
	mu        sync.Mutex
	state     State
	provider  Provider
	session   Session
	lastErr   error
	factories map[WalletKind]ProviderFactory
	chooser   Chooser
	cache     CacheStore
	hooks     []func()
	log       *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithCacheStore sets the provider-choice cache backend.
func WithCacheStore(c CacheStore) Option {
	return func(m *Manager) { m.cache = c }
}

// WithChooser sets the chooser used when Connect gets no kind.
func WithChooser(c Chooser) Option {
	return func(m *Manager) { m.chooser = c }
}

// WithLogger sets the logger. Defaults to zap.L().
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates an empty, disconnected session manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		factories: make(map[WalletKind]ProviderFactory),
		cache:     NewFileCache(""),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = zap.L()
	}
	return m
}

// RegisterProvider makes a wallet kind connectable.
func (m *Manager) RegisterProvider(kind WalletKind, f ProviderFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[kind] = f
}

// Kinds returns the registered wallet kinds.
func (m *Manager) Kinds() []WalletKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]WalletKind, 0, len(m.factories))
	for k := range m.factories {
		kinds = append(kinds, k)
	}
	return kinds
}

// Connect establishes a session with the given wallet kind. An empty
// kind defers the choice to the configured chooser (falling back to
// the cached choice, then to the single registered kind).
func (m *Manager) Connect(ctx context.Context, kind WalletKind) (Session, error) {
	m.mu.Lock()
	if m.state == StateConnecting {
		m.mu.Unlock()
		return Session{}, fmt.Errorf("connect already in progress")
	}
	if m.state == StateConnected {
		m.disconnectLocked()
	}
	m.state = StateConnecting
	m.lastErr = nil
	m.mu.Unlock()

	sess, err := m.connect(ctx, kind)
	if err != nil {
		m.mu.Lock()
		m.state = StateDisconnected
		m.lastErr = err
		m.mu.Unlock()
		return Session{}, err
	}
	return sess, nil
}

func (m *Manager) connect(ctx context.Context, kind WalletKind) (Session, error) {
	if kind == "" {
		chosen, err := m.chooseKind()
		if err != nil {
			return Session{}, err
		}
		kind = chosen
	}

	m.mu.Lock()
	factory, ok := m.factories[kind]
	m.mu.Unlock()
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrProviderUnavailable, kind)
	}

	provider, err := factory(ctx)
	if err != nil {
		return Session{}, err
	}

	address, chainID, err := m.identify(ctx, provider)
	if err != nil {
		provider.Close() //nolint:errcheck
		return Session{}, err
	}

	m.mu.Lock()
	m.provider = provider
	m.state = StateConnected
	m.session = Session{
		Address: address,
		ChainID: chainID,
		Kind:    kind,
		Epoch:   m.session.Epoch + 1,
	}
	sess := m.session
	m.mu.Unlock()

	// Single-owner rule: only the Manager listens on the provider.
	provider.On(EventAccountsChanged, m.onAccountsChanged)
	provider.On(EventChainChanged, m.onChainChanged)
	provider.On(EventDisconnect, func(string) { m.Disconnect() })

	if err := m.cache.Put(kind); err != nil {
		m.log.Warn("caching wallet choice failed", zap.Error(err))
	}

	m.log.Info("wallet connected",
		zap.String("kind", string(kind)),
		zap.String("address", address),
		zap.Int64("chain_id", chainID))
	return sess, nil
}

func (m *Manager) chooseKind() (WalletKind, error) {
	if cached, ok := m.cache.Get(); ok {
		m.mu.Lock()
		_, registered := m.factories[cached]
		m.mu.Unlock()
		if registered {
			return cached, nil
		}
	}

	kinds := m.Kinds()
	if len(kinds) == 0 {
		return "", fmt.Errorf("%w: no wallet providers registered", ErrProviderUnavailable)
	}
	if len(kinds) == 1 || m.chooser == nil {
		return kinds[0], nil
	}

	chosen, err := m.chooser(kinds)
	if err != nil {
		return "", err
	}
	if chosen == "" || chosen == KindUnknown {
		return "", ErrUserRejected
	}
	return chosen, nil
}

func (m *Manager) identify(ctx context.Context, p Provider) (string, int64, error) {
	raw, err := p.Request(ctx, "eth_accounts")
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil || len(accounts) == 0 {
		return "", 0, fmt.Errorf("%w: provider returned no accounts", ErrProviderUnavailable)
	}

	raw, err = p.Request(ctx, "eth_chainId")
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	var chainHex string
	if err := json.Unmarshal(raw, &chainHex); err != nil {
		return "", 0, fmt.Errorf("%w: bad chain id", ErrNetwork)
	}
	chainID, err := parseChainID(chainHex)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	return accounts[0], chainID, nil
}

// Restore reconnects using the cached provider choice, if any.
// Returns ErrNotConnected when there is nothing to restore.
func (m *Manager) Restore(ctx context.Context) (Session, error) {
	kind, ok := m.cache.Get()
	if !ok {
		return Session{}, ErrNotConnected
	}
	return m.Connect(ctx, kind)
}

// Disconnect clears the cached provider choice and resets the session
// to empty. Calling it while already disconnected is a no-op.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateDisconnected {
		return
	}
	m.disconnectLocked()
}

func (m *Manager) disconnectLocked() {
	if m.provider != nil {
		if err := m.provider.Close(); err != nil {
			m.log.Warn("closing provider failed", zap.Error(err))
		}
		m.provider = nil
	}
	if err := m.cache.Clear(); err != nil {
		m.log.Warn("clearing wallet cache failed", zap.Error(err))
	}
	epoch := m.session.Epoch + 1
	m.session = Session{Epoch: epoch}
	m.state = StateDisconnected
	m.lastErr = nil
	m.log.Info("wallet disconnected")
}

// Session returns a snapshot of the current session.
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// State returns the connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastError returns the most recent connect failure, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Signer returns the active provider's transaction signer, or nil
// when disconnected or connected through a read-only provider.
func (m *Manager) Signer() *wallet.Signer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected {
		return nil
	}
	if s, ok := m.provider.(Signing); ok {
		return s.Signer()
	}
	return nil
}

// OnInvalidate registers a hook fired whenever derived state (contract
// handles bound to the old chain or signer) must be rebuilt.
func (m *Manager) OnInvalidate(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, f)
}

// --- provider notifications ---

func (m *Manager) onAccountsChanged(payload string) {
	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return
	}
	if payload == "" {
		// All accounts revoked: treat like a provider disconnect.
		m.disconnectLocked()
		m.mu.Unlock()
		return
	}
	m.session.Address = payload
	m.mu.Unlock()
	m.log.Info("account changed", zap.String("address", payload))
}

func (m *Manager) onChainChanged(payload string) {
	chainID, err := parseChainID(payload)
	if err != nil {
		m.log.Warn("unparseable chainChanged payload", zap.String("payload", payload))
		return
	}

	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return
	}
	m.session.ChainID = chainID
	// Contract addresses are chain-specific: continuing with handles
	// bound to the old chain risks sending to the wrong network.
	m.session.Epoch++
	hooks := make([]func(), len(m.hooks))
	copy(hooks, m.hooks)
	m.mu.Unlock()

	m.log.Info("chain changed", zap.Int64("chain_id", chainID))
	for _, h := range hooks {
		h()
	}
}

func parseChainID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		var n int64
		_, err := fmt.Sscanf(strings.ToLower(s), "0x%x", &n)
		return n, err
	}
	var n int64
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
