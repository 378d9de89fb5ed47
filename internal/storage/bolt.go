// Package storage provides the generic bbolt-backed key/value bucket used
// to back every durable store in the node (accounts, mempool, chain). Each
// write is a single bbolt transaction, so it is all-or-nothing from the
// reader's perspective — there is no separate write-temp-then-rename step
// because bbolt already gives transactional durability on commit.
package storage

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"
)

// Store wraps a single bbolt database file holding one or more buckets.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bbolt database at path and ensures
// every named bucket exists.
func Open(path string, buckets ...string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(b)); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put CBOR-encodes value and stores it under key in bucket.
func (s *Store) Put(bucket, key string, value interface{}) error {
	data, err := cbor.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", bucket, key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), data)
	})
}

// Get CBOR-decodes the value stored under key in bucket into out. Returns
// ok=false if the key is absent.
func (s *Store) Get(bucket, key string, out interface{}) (ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if data == nil {
			return nil
		}
		ok = true
		return cbor.Unmarshal(data, out)
	})
	return ok, err
}

// Delete removes key from bucket. No-op if absent.
func (s *Store) Delete(bucket, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Delete([]byte(key))
	})
}

// ForEach calls fn with the raw CBOR-encoded value for every key in bucket,
// in bbolt's sorted-byte-order iteration.
func (s *Store) ForEach(bucket string, fn func(key, value []byte) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).ForEach(fn)
	})
}

// Update runs fn inside a single writable bbolt transaction, giving callers
// an atomic multi-key mutation (used for mempool drain-then-clear).
func (s *Store) Update(fn func(tx *bolt.Tx) error) error {
	return s.db.Update(fn)
}

// View runs fn inside a single read-only bbolt transaction.
func (s *Store) View(fn func(tx *bolt.Tx) error) error {
	return s.db.View(fn)
}

// Marshal CBOR-encodes value; exported so callers building raw bbolt
// transactions via Update/View can still use the store's codec.
func Marshal(value interface{}) ([]byte, error) {
	return cbor.Marshal(value)
}

// Unmarshal CBOR-decodes data into out.
func Unmarshal(data []byte, out interface{}) error {
	return cbor.Unmarshal(data, out)
}
