package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const walletsFile = "wallets.json"

// WalletEntry is one imported wallet. The private key never appears
// here: KeyRef points into the OS keychain.
type WalletEntry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	KeyRef  string `json:"key_ref"`
	Kind    string `json:"kind"`
}

// WalletsFile is the persisted wallet registry.
type WalletsFile struct {
	Wallets []WalletEntry `json:"wallets"`
}

// Find returns the wallet with the given name, or nil.
func (w *WalletsFile) Find(name string) *WalletEntry {
	for i := range w.Wallets {
		if w.Wallets[i].Name == name {
			return &w.Wallets[i]
		}
	}
	return nil
}

// Add appends a wallet entry, rejecting duplicate names.
func (w *WalletsFile) Add(e WalletEntry) error {
	if w.Find(e.Name) != nil {
		return fmt.Errorf("wallet %q already exists", e.Name)
	}
	w.Wallets = append(w.Wallets, e)
	return nil
}

// LoadWallets reads wallets.json. A missing file yields an empty registry.
func (c *Config) LoadWallets() (*WalletsFile, error) {
	return loadJSON[WalletsFile](filepath.Join(c.configDir, walletsFile))
}

// SaveWallets writes wallets.json.
func (c *Config) SaveWallets(wf *WalletsFile) error {
	return saveJSON(filepath.Join(c.configDir, walletsFile), wf)
}

func loadJSON[T any](path string) (*T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &zero, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return &v, nil
}

func saveJSON[T any](path string, v *T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
