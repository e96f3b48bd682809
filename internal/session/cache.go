package session

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// CacheStore persists the user's last wallet choice so the CLI can
// reconnect without prompting.
type CacheStore interface {
	Get() (WalletKind, bool)
	Put(kind WalletKind) error
	Clear() error
}

// FileCache stores the cached wallet choice in a per-user JSON file.
//
//	macOS:   ~/Library/Caches/btx/wallet.json
//	Linux:   ~/.cache/btx/wallet.json
//	Windows: %LocalAppData%\btx\wallet.json
type FileCache struct {
	path string
}

// NewFileCache creates a file-backed cache. An empty path uses the
// default per-user location.
func NewFileCache(path string) *FileCache {
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		path = filepath.Join(dir, "btx", "wallet.json")
	}
	return &FileCache{path: path}
}

type cachedChoice struct {
	Kind WalletKind `json:"kind"`
}

func (c *FileCache) Get() (WalletKind, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return "", false
	}
	var cc cachedChoice
	if err := json.Unmarshal(data, &cc); err != nil || cc.Kind == "" {
		return "", false
	}
	return cc.Kind, true
}

func (c *FileCache) Put(kind WalletKind) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(cachedChoice{Kind: kind})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o600)
}

func (c *FileCache) Clear() error {
	err := os.Remove(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryCache is an in-memory CacheStore for tests.
type MemoryCache struct {
	kind WalletKind
	set  bool
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

func (c *MemoryCache) Get() (WalletKind, bool) { return c.kind, c.set }

func (c *MemoryCache) Put(kind WalletKind) error {
	c.kind, c.set = kind, true
	return nil
}

func (c *MemoryCache) Clear() error {
	c.kind, c.set = "", false
	return nil
}
