package cache

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DefaultPath is the workspace-local cache location (Open Question 3 in
// this repository's design notes: no network/shared-cache tier exists).
const DefaultPath = ".loom/cache.db"

// DB wraps a bbolt database holding one bucket per workflow name, grounded
// on the evalgo example's db/bolt/bolt.go wrapper (Open/bucket-per-concern/
// JSON value shape).
type DB struct {
	bolt *bolt.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*DB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("cache: opening %q: %w", path, err)
	}
	return &DB{bolt: db}, nil
}

// Close releases the underlying database file.
func (d *DB) Close() error {
	return d.bolt.Close()
}

// Scope returns a Cache bound to one workflow's bucket, creating it if
// necessary.
func (d *DB) Scope(workflowName string) (*Cache, error) {
	bucket := []byte(bucketName(workflowName))
	err := d.bolt.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("cache: creating bucket for workflow %q: %w", workflowName, err)
	}
	return &Cache{bolt: d.bolt, bucket: bucket}, nil
}

func bucketName(workflowName string) string {
	if workflowName == "" {
		return "__unnamed__"
	}
	return workflowName
}
