// Package chain implements the block/header model and the durable chain
// (C5): genesis, propose, commit, and last-N query, plus the header hash
// that peers compare to agree on chain linkage.
package chain

import (
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"strconv"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/hashing"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/nodeerr"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/tx"
)

// MINERS is the fixed round-robin miner set: the first five Anvil-style
// deterministic test accounts.
var MINERS = [5]string{
	"0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
	"0x70997970c51812dc3a010c7d01b50e0d17dc79c8",
	"0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc",
	"0x90f79bf6eb2c4f870365e785982e1f101e93b906",
	"0x15d34aaf54267db7d7c367839aaf71a00a2c6a65",
}

// GenesisParentHash is the fixed zero parent hash used only by genesis.
const GenesisParentHash = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Header is a block's metadata. Number is strictly monotonic per chain;
// Timestamp is non-decreasing across the committed chain.
//
// Difficulty/TotalDifficulty are carried over from the original
// implementation as cosmetic, node-local fields — they participate in no
// consensus invariant and are intentionally excluded from Hash's input set.
type Header struct {
	ParentHash       string   `cbor:"parent_hash" json:"parent_hash"`
	Miner            string   `cbor:"miner" json:"miner"`
	StateRoot        string   `cbor:"state_root" json:"state_root"`
	TransactionsRoot string   `cbor:"transactions_root" json:"transactions_root"`
	Number           uint64   `cbor:"number" json:"number"`
	Timestamp        uint64   `cbor:"timestamp" json:"timestamp"`
	ExtraData        []string `cbor:"extra_data" json:"extra_data"`
	Difficulty       uint64   `cbor:"difficulty" json:"difficulty"`
	TotalDifficulty  uint64   `cbor:"total_difficulty" json:"total_difficulty"`
}

// Block is an immutable (once committed) header plus its ordered txs.
type Block struct {
	Header Header           `cbor:"header" json:"header"`
	Txs    []tx.Transaction `cbor:"txs" json:"txs"`
}

// Clock supplies the current time as Unix seconds, injected so tests don't
// depend on wall-clock time.
type Clock func() uint64

// Hash computes "0x" + keccak(parent_hash || miner || state_root ||
// transactions_root || dec(number) || dec(timestamp) || json(extra_data) ||
// json(txs)). json is Go's compact encoding/json form (UTF-8, no
// whitespace, arrays in struct-declaration order) — the canonical form
// every peer in this implementation MUST agree on.
func Hash(b Block) (string, error) {
	extraJSON, err := json.Marshal(b.Header.ExtraData)
	if err != nil {
		return "", nodeerr.Wrap(nodeerr.IO, "encode extra_data", err)
	}
	txsJSON, err := json.Marshal(b.Txs)
	if err != nil {
		return "", nodeerr.Wrap(nodeerr.IO, "encode txs", err)
	}

	digest := hashing.Keccak(
		[]byte(b.Header.ParentHash),
		[]byte(b.Header.Miner),
		[]byte(b.Header.StateRoot),
		[]byte(b.Header.TransactionsRoot),
		[]byte(strconv.FormatUint(b.Header.Number, 10)),
		[]byte(strconv.FormatUint(b.Header.Timestamp, 10)),
		extraJSON,
		txsJSON,
	)
	return "0x" + hex.EncodeToString(digest[:]), nil
}

// StateRootSource supplies the current ledger state root, consulted when
// building a header.
type StateRootSource interface {
	StateRoot() (string, error)
}

// Genesis mines the fixed genesis block: number 0, zero parent hash,
// MINERS[0], empty txs.
func Genesis(ledgerStore StateRootSource, clock Clock) (Block, error) {
	stateRoot, err := ledgerStore.StateRoot()
	if err != nil {
		return Block{}, err
	}

	difficulty := uint64(rand.Intn(256))

	header := Header{
		ParentHash:       GenesisParentHash,
		Miner:            MINERS[0],
		StateRoot:        stateRoot,
		TransactionsRoot: tx.TransactionsRoot(nil),
		Difficulty:       difficulty,
		TotalDifficulty:  difficulty,
		Number:           0,
		Timestamp:        clock(),
		ExtraData:        []string{},
	}

	return Block{Header: header, Txs: []tx.Transaction{}}, nil
}

// Propose builds the next block on top of parent with the given txs. The
// miner for a round is MINERS[parent.Header.Number % len(MINERS)] — the
// round-robin index is keyed off the parent's height, matching the original
// implementation's mining loop.
func Propose(ledgerStore StateRootSource, clock Clock, parent Block, txs []tx.Transaction) (Block, error) {
	parentHash, err := Hash(parent)
	if err != nil {
		return Block{}, err
	}
	stateRoot, err := ledgerStore.StateRoot()
	if err != nil {
		return Block{}, err
	}

	difficulty := uint64(rand.Intn(256))

	header := Header{
		ParentHash:       parentHash,
		Miner:            MINERS[parent.Header.Number%uint64(len(MINERS))],
		StateRoot:        stateRoot,
		TransactionsRoot: tx.TransactionsRoot(txs),
		Difficulty:       difficulty,
		TotalDifficulty:  parent.Header.TotalDifficulty + difficulty,
		Number:           parent.Header.Number + 1,
		Timestamp:        clock(),
		ExtraData:        []string{},
	}

	if txs == nil {
		txs = []tx.Transaction{}
	}
	return Block{Header: header, Txs: txs}, nil
}
