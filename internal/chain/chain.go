package chain

import (
	"strconv"

	bolt "go.etcd.io/bbolt"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/nodeerr"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/storage"
)

const (
	bucketBlocks = "blocks"
	bucketMeta   = "chain_meta"
	keyHeight    = "height"
)

// Chain is the durable, append-only sequence of committed blocks. Each
// Commit is a single bbolt transaction: the block and the new height are
// written together, or neither is.
type Chain struct {
	db *storage.Store
}

// Open opens (creating if absent) the chain store at path.
func Open(path string) (*Chain, error) {
	db, err := storage.Open(path, bucketBlocks, bucketMeta)
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.IO, "open chain store", err)
	}
	return &Chain{db: db}, nil
}

// Close closes the underlying database file.
func (c *Chain) Close() error {
	return c.db.Close()
}

// InitChain seeds an empty chain with the genesis block. It is a no-op if
// the chain already has a block at height 0.
func (c *Chain) InitChain(genesis Block) error {
	_, err := c.Last()
	if err == nil {
		return nil
	}
	if !nodeerr.Is(err, nodeerr.NotFound) {
		return err
	}
	return c.commitRaw(genesis)
}

// Commit appends block to the chain after checking the linkage invariant:
// block.Header.Number must be last.Header.Number+1 and
// block.Header.ParentHash must equal Hash(last).
func (c *Chain) Commit(block Block) error {
	last, err := c.Last()
	if err != nil {
		return err
	}

	if block.Header.Number != last.Header.Number+1 {
		return nodeerr.New(nodeerr.Validation, "block number is not parent+1")
	}

	lastHash, err := Hash(last)
	if err != nil {
		return err
	}
	if block.Header.ParentHash != lastHash {
		return nodeerr.New(nodeerr.Validation, "parent_hash does not match last block's hash")
	}

	return c.commitRaw(block)
}

func (c *Chain) commitRaw(block Block) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		blocks := tx.Bucket([]byte(bucketBlocks))
		meta := tx.Bucket([]byte(bucketMeta))

		data, err := storage.Marshal(block)
		if err != nil {
			return err
		}
		if err := blocks.Put(heightKey(block.Header.Number), data); err != nil {
			return err
		}

		heightData, err := storage.Marshal(block.Header.Number)
		if err != nil {
			return err
		}
		return meta.Put([]byte(keyHeight), heightData)
	})
	if err != nil {
		return nodeerr.Wrap(nodeerr.IO, "commit block", err)
	}
	return nil
}

// Last returns the most recently committed block, or a NotFound error if
// the chain is empty.
func (c *Chain) Last() (Block, error) {
	var height uint64
	found, err := c.db.Get(bucketMeta, keyHeight, &height)
	if err != nil {
		return Block{}, nodeerr.Wrap(nodeerr.IO, "read chain height", err)
	}
	if !found {
		return Block{}, nodeerr.New(nodeerr.NotFound, "chain has no blocks")
	}
	return c.At(height)
}

// At returns the committed block at the given height.
func (c *Chain) At(number uint64) (Block, error) {
	var block Block
	found, err := c.db.Get(bucketBlocks, string(heightKey(number)), &block)
	if err != nil {
		return Block{}, nodeerr.Wrap(nodeerr.IO, "read block", err)
	}
	if !found {
		return Block{}, nodeerr.New(nodeerr.NotFound, "no block at that height")
	}
	return block, nil
}

// LastN returns up to n most recently committed blocks, oldest first.
func (c *Chain) LastN(n int) ([]Block, error) {
	last, err := c.Last()
	if err != nil {
		if nodeerr.Is(err, nodeerr.NotFound) {
			return nil, nil
		}
		return nil, err
	}

	start := int64(last.Header.Number) - int64(n) + 1
	if start < 0 {
		start = 0
	}

	blocks := make([]Block, 0, n)
	for i := uint64(start); i <= last.Header.Number; i++ {
		b, err := c.At(i)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func heightKey(number uint64) []byte {
	return []byte(strconv.FormatUint(number, 10))
}
