package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"github.com/loomrun/loom/pkg/logging"
	"github.com/loomrun/loom/pkg/node"
)

// Cache implements node.Cache against one workflow's bbolt bucket. Failures
// to read or write the underlying database degrade to a cache miss rather
// than failing the node invocation — a corrupt or locked cache file should
// never be why a workflow execution fails.
type Cache struct {
	bolt   *bolt.DB
	bucket []byte
	log    *logging.Logger
}

var defaultLogger = logging.New(logging.DefaultConfig())

// Get implements node.Cache.
func (c *Cache) Get(key node.CacheKey) (node.CacheEntry, bool) {
	hashed, err := hashKey(key)
	if err != nil {
		c.logger().WithError(err).Warn("cache: hashing lookup key failed, treating as a miss")
		return node.CacheEntry{}, false
	}

	var entry node.CacheEntry
	found := false
	err = c.bolt.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return nil
		}
		data := b.Get(hashed)
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		c.logger().WithError(err).Warn("cache: reading entry failed, treating as a miss")
		return node.CacheEntry{}, false
	}
	return entry, found
}

// Put implements node.Cache.
func (c *Cache) Put(key node.CacheKey, entry node.CacheEntry) {
	hashed, err := hashKey(key)
	if err != nil {
		c.logger().WithError(err).Warn("cache: hashing store key failed, entry dropped")
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger().WithError(err).Warn("cache: marshaling entry failed, entry dropped")
		return
	}

	err = c.bolt.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return nil
		}
		return b.Put(hashed, data)
	})
	if err != nil {
		c.logger().WithError(err).Warn("cache: writing entry failed")
	}
}

func (c *Cache) logger() *logging.Logger {
	if c.log != nil {
		return c.log
	}
	return defaultLogger
}

// hashKey canonically encodes key (encoding/json sorts map keys, and struct
// field order is fixed, so the same logical key always hashes the same way
// per spec.md §8's determinism invariant) and returns its sha256 digest.
func hashKey(key node.CacheKey) ([]byte, error) {
	data, err := json.Marshal(key)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	return sum[:], nil
}

// Key returns the hex-encoded cache key for key, exposed for diagnostics
// (e.g. a CLI --show-cache-key flag) without requiring callers to depend on
// the hashing scheme themselves.
func Key(key node.CacheKey) (string, error) {
	hashed, err := hashKey(key)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hashed), nil
}
