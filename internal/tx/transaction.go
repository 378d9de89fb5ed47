// Package tx implements the signed transfer record (C4): building a
// Transaction from a request by consulting the ledger for the sender's
// current nonce, computing its hash, and the (non-standard) Merkle root
// over a list of transactions.
package tx

import (
	"encoding/hex"
	"strconv"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/hashing"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/ledger"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/nodeerr"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/txsign"
)

// Transaction is an immutable signed transfer record.
type Transaction struct {
	Sender   string `cbor:"sender" json:"sender"`
	Receiver string `cbor:"receiver" json:"receiver"`
	Value    uint64 `cbor:"value" json:"value"`
	Nonce    uint64 `cbor:"nonce" json:"nonce"`
	V        string `cbor:"v" json:"v"`
	R        string `cbor:"r" json:"r"`
	S        string `cbor:"s" json:"s"`
}

// NonceSource supplies a sender's current nonce. *ledger.Store satisfies
// this; it is narrowed to an interface so tests can fake the ledger.
type NonceSource interface {
	Get(address string) (ledger.Account, error)
}

// Build constructs and signs a Transaction for a transfer from "from" to
// "to". The nonce is read from the ledger at signing time; the caller's
// from/to are preserved verbatim in the result.
func Build(ledgerStore NonceSource, from, to string, value uint64, pk string) (Transaction, error) {
	sender, err := ledgerStore.Get(from)
	if err != nil {
		return Transaction{}, err
	}

	nonce := sender.Nonce
	preimage := signingHash(nonce, to, value, from)

	sig, err := txsign.Sign(pk, preimage)
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{
		Sender:   from,
		Receiver: to,
		Value:    value,
		Nonce:    nonce,
		V:        sig.V,
		R:        sig.R,
		S:        sig.S,
	}, nil
}

// signingHash hashes the legacy-style transaction tuple (nonce, to, value,
// from) that gets signed to produce (v, r, s).
func signingHash(nonce uint64, to string, value uint64, from string) [32]byte {
	return hashing.Keccak(
		[]byte(strconv.FormatUint(nonce, 10)),
		[]byte(to),
		[]byte(strconv.FormatUint(value, 10)),
		[]byte(from),
	)
}

// Hash returns the transaction's own hash:
// keccak(sender || receiver || dec(value) || dec(nonce) || v || r || s).
func Hash(t Transaction) [32]byte {
	return hashing.Keccak(
		[]byte(t.Sender),
		[]byte(t.Receiver),
		[]byte(strconv.FormatUint(t.Value, 10)),
		[]byte(strconv.FormatUint(t.Nonce, 10)),
		[]byte(t.V),
		[]byte(t.R),
		[]byte(t.S),
	)
}

// HashHex returns Hash as lowercase hex with no "0x" prefix.
func HashHex(t Transaction) string {
	h := Hash(t)
	return hex.EncodeToString(h[:])
}

// TransactionsRoot computes "0x" + the non-standard Merkle root over each
// transaction's hash-hex string, in order. Empty list hashes to keccak("").
func TransactionsRoot(txs []Transaction) string {
	leaves := make([]string, len(txs))
	for i, t := range txs {
		leaves[i] = HashHex(t)
	}
	return "0x" + hashing.MerkleRoot(leaves)
}

// Encode produces the canonical recursive length-prefixed (RLP) encoding of
// a transaction, which MUST round-trip byte-exact across peers.
func Encode(t Transaction) ([]byte, error) {
	data, err := rlp.EncodeToBytes(&t)
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.Decode, "encode transaction", err)
	}
	return data, nil
}

// Decode decodes the canonical RLP encoding of a transaction.
func Decode(data []byte) (Transaction, error) {
	var t Transaction
	if err := rlp.DecodeBytes(data, &t); err != nil {
		return Transaction{}, nodeerr.Wrap(nodeerr.Decode, "decode transaction", err)
	}
	return t, nil
}
