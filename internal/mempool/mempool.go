// Package mempool implements the durable FIFO queue of pending transaction
// requests (C3). drain_all is the only read path and is a single atomic
// bbolt transaction: on crash either both the drain and the clear happen,
// or neither does.
package mempool

import (
	bolt "go.etcd.io/bbolt"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/nodeerr"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/storage"
)

const (
	bucketQueue = "mempool"
	keyQueue    = "queue"
)

// Request is a pending transaction submitted by the CLI, consumed exactly
// once by the proposer's drain.
type Request struct {
	From  string `cbor:"from"`
	To    string `cbor:"to"`
	Value uint64 `cbor:"value"`
	PK    string `cbor:"pk"`
}

// Mempool is the durable FIFO request queue.
type Mempool struct {
	db *storage.Store
}

// Open opens (creating if absent) the mempool store at path.
func Open(path string) (*Mempool, error) {
	db, err := storage.Open(path, bucketQueue)
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.IO, "open mempool store", err)
	}
	return &Mempool{db: db}, nil
}

// Close closes the underlying database file.
func (m *Mempool) Close() error {
	return m.db.Close()
}

// Enqueue appends a transaction request to the tail of the queue.
func (m *Mempool) Enqueue(from, to string, value uint64, pk string) error {
	req := Request{From: from, To: to, Value: value, PK: pk}

	err := m.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketQueue))

		var queue []Request
		if raw := bucket.Get([]byte(keyQueue)); raw != nil {
			if err := storage.Unmarshal(raw, &queue); err != nil {
				return err
			}
		}
		queue = append(queue, req)

		data, err := storage.Marshal(queue)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(keyQueue), data)
	})
	if err != nil {
		return nodeerr.Wrap(nodeerr.IO, "enqueue transaction request", err)
	}
	return nil
}

// DrainAll returns the current contents of the queue and atomically resets
// it to empty — the only way the mempool is read.
func (m *Mempool) DrainAll() ([]Request, error) {
	var queue []Request

	err := m.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketQueue))

		if raw := bucket.Get([]byte(keyQueue)); raw != nil {
			if err := storage.Unmarshal(raw, &queue); err != nil {
				return err
			}
		}

		empty, err := storage.Marshal([]Request{})
		if err != nil {
			return err
		}
		return bucket.Put([]byte(keyQueue), empty)
	})
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.IO, "drain mempool", err)
	}
	return queue, nil
}
