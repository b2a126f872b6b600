package discovery

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("discovery")

const indexKey = "index"

// Store persists one Index snapshot in the same bbolt file the Iteration
// Cache (C9) uses, under its own bucket — grounded on the same evalgo
// db/bolt wrapper pkg/cache builds on: one bucket per concern, JSON-encoded
// values, rebuilt wholesale rather than updated incrementally (spec.md
// §4.13: "offline-built, point-in-time index", not live-updated).
type Store struct {
	bolt *bolt.DB
}

// NewStore wraps an already-open bbolt database (typically the same one
// returned by cache.Open) with the discovery bucket, creating it if
// necessary.
func NewStore(db *bolt.DB) (*Store, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: creating bucket: %w", err)
	}
	return &Store{bolt: db}, nil
}

// Save overwrites the persisted index with candidates.
func (s *Store) Save(candidates []Candidate) error {
	data, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("discovery: encoding index: %w", err)
	}
	return s.bolt.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(indexKey), data)
	})
}

// Load returns the last-saved index, or ok=false if none has been saved
// yet.
func (s *Store) Load() ([]Candidate, bool, error) {
	var candidates []Candidate
	found := false
	err := s.bolt.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketName).Get([]byte(indexKey))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &candidates)
	})
	if err != nil {
		return nil, false, fmt.Errorf("discovery: reading index: %w", err)
	}
	return candidates, found, nil
}
