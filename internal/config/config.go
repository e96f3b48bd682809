// Package config holds the btx configuration: RPC endpoint, chain id,
// deployed contract addresses, and local paths. Config lives as JSON
// in ~/.btx and can be overridden per-field with BTX_* environment
// variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	defaultRPCURL  = "http://localhost:8545"
	defaultChainID = 31337

	configFile = "config.json"
)

// Config is the persisted btx configuration.
type Config struct {
	RPCURL  string `json:"rpc_url"`
	ChainID int64  `json:"chain_id"`

	// Deployed contract addresses for the configured chain.
	EventTicketAddress       string `json:"event_ticket_address"`
	TicketMarketplaceAddress string `json:"ticket_marketplace_address"`
	FundraisingAddress       string `json:"fundraising_address"`

	MirrorDBPath      string `json:"mirror_db_path"`
	DefaultWalletKind string `json:"default_wallet_kind,omitempty"`

	configDir string
}

// Load reads config from dir (or creates defaults). dir defaults to
// ~/.btx. Environment overrides are applied after the file.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".btx")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		cfg.configDir = dir
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// Addresses returns the contract address table keyed by contract name.
func (c *Config) Addresses() map[string]string {
	return map[string]string{
		"EventTicket":       c.EventTicketAddress,
		"TicketMarketplace": c.TicketMarketplaceAddress,
		"Fundraising":       c.FundraisingAddress,
	}
}

// Set assigns a config field by its JSON key. Unknown keys error.
func (c *Config) Set(key, value string) error {
	switch key {
	case "rpc_url":
		c.RPCURL = value
	case "chain_id":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("chain_id must be an integer: %w", err)
		}
		c.ChainID = n
	case "event_ticket_address":
		c.EventTicketAddress = value
	case "ticket_marketplace_address":
		c.TicketMarketplaceAddress = value
	case "fundraising_address":
		c.FundraisingAddress = value
	case "mirror_db_path":
		c.MirrorDBPath = value
	case "default_wallet_kind":
		c.DefaultWalletKind = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		RPCURL:       defaultRPCURL,
		ChainID:      defaultChainID,
		MirrorDBPath: filepath.Join(dir, "mirror.db"),
		configDir:    dir,
	}
}

func (c *Config) applyEnv() {
	c.RPCURL = getEnvString("BTX_RPC_URL", c.RPCURL)
	c.ChainID = getEnvInt64("BTX_CHAIN_ID", c.ChainID)
	c.EventTicketAddress = getEnvString("BTX_EVENT_TICKET_ADDRESS", c.EventTicketAddress)
	c.TicketMarketplaceAddress = getEnvString("BTX_TICKET_MARKETPLACE_ADDRESS", c.TicketMarketplaceAddress)
	c.FundraisingAddress = getEnvString("BTX_FUNDRAISING_ADDRESS", c.FundraisingAddress)
	c.MirrorDBPath = getEnvString("BTX_MIRROR_DB_PATH", c.MirrorDBPath)
	c.DefaultWalletKind = getEnvString("BTX_WALLET_KIND", c.DefaultWalletKind)
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}
