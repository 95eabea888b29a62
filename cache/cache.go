// Package cache provides a small persistent key-value cache for recognition
// results, backed by Badger.
package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// defaultTTL keeps entries around for a month; recognition results for
// identical ink never change, the TTL only bounds disk growth.
const defaultTTL = 30 * 24 * time.Hour

// Cache is a Badger-backed byte store.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// New opens (or creates) a cache at path.
func New(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithIndexCacheSize(16 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{db: db, ttl: defaultTTL}, nil
}

// Get returns the value for key, if present.
func (c *Cache) Get(key []byte) ([]byte, bool) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			slog.Warn("read cache entry", "error", err)
		}
		return nil, false
	}
	return out, true
}

// Put stores value under key with the cache TTL.
func (c *Cache) Put(key, value []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, value).WithTTL(c.ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
