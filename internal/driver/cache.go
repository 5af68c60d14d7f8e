package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"parsetrace/internal/trace"
)

// Current schema version - increment when cachePayload changes
const cacheSchemaVersion uint16 = 1

// Key identifies a cached outcome: grammar name, tracing strategy and
// content hash.
type Key [sha256.Size]byte

// CacheKey derives the cache key of a file parsed with grammar. The strategy
// is part of the key since it decides which hints a summary carries.
func CacheKey(grammar string, strategy trace.Strategy, contentHash [32]byte) Key {
	h := sha256.New()
	h.Write([]byte(grammar))
	h.Write([]byte{0})
	h.Write([]byte(strategy.String()))
	h.Write([]byte{0})
	h.Write(contentHash[:])
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// ResultCache stores check summaries on disk keyed by Key, so unchanged
// inputs are not parsed again. A nil cache stores nothing.
// Thread-safe for concurrent access.
type ResultCache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema  uint16
	Summary Summary
}

// OpenResultCache opens the cache under the user cache directory.
func OpenResultCache(app string) (*ResultCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewResultCache(filepath.Join(base, app))
}

// NewResultCache opens a cache rooted at dir, creating it if needed.
func NewResultCache(dir string) (*ResultCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ResultCache{dir: dir}, nil
}

func (c *ResultCache) pathFor(key Key) string {
	return filepath.Join(c.dir, "results", hex.EncodeToString(key[:])+".mp")
}

// Put writes the summary for key, replacing any previous entry atomically.
func (c *ResultCache) Put(key Key, sum Summary) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = fmt.Errorf("failed to remove temp file: %w", rmErr)
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(&cachePayload{Schema: cacheSchemaVersion, Summary: sum}); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the summary for key. Entries written with another schema
// version count as missing.
func (c *ResultCache) Get(key Key) (Summary, bool, error) {
	if c == nil {
		return Summary{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Summary{}, false, nil
		}
		return Summary{}, false, err
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return Summary{}, false, err
	}
	if payload.Schema != cacheSchemaVersion {
		return Summary{}, false, nil
	}
	return payload.Summary, true, nil
}

// DropAll invalidates the cache.
func (c *ResultCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
