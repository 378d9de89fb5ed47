package testutil

import (
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/chain"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/ledger"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/tx"
)

// SampleAccount returns a funded account for testing.
func SampleAccount(address string, balance, nonce uint64) ledger.Account {
	return ledger.Account{Address: address, Balance: balance, Nonce: nonce}
}

// SampleTransaction returns a Transaction with fixed, non-zero signature
// components — not a genuine signature, but enough to exercise hashing,
// encoding, and Merkle-root code that doesn't verify signatures itself.
func SampleTransaction(sender, receiver string, value, nonce uint64) tx.Transaction {
	return tx.Transaction{
		Sender:   sender,
		Receiver: receiver,
		Value:    value,
		Nonce:    nonce,
		V:        "27",
		R:        "12345",
		S:        "67890",
	}
}

type fixedStateRoot string

func (f fixedStateRoot) StateRoot() (string, error) { return string(f), nil }

// SampleClock returns a fixed Unix timestamp, so block hashes built in tests
// are reproducible.
func SampleClock() uint64 { return 1700000000 }

// SampleChain builds a chain.Chain with count blocks committed on top of
// genesis, each carrying no transactions.
func SampleChain(path string, count int) (*chain.Chain, error) {
	c, err := chain.Open(path)
	if err != nil {
		return nil, err
	}

	genesis, err := chain.Genesis(fixedStateRoot("0xroot"), SampleClock)
	if err != nil {
		return nil, err
	}
	if err := c.InitChain(genesis); err != nil {
		return nil, err
	}

	block := genesis
	for i := 0; i < count; i++ {
		next, err := chain.Propose(fixedStateRoot("0xroot"), SampleClock, block, nil)
		if err != nil {
			return nil, err
		}
		if err := c.Commit(next); err != nil {
			return nil, err
		}
		block = next
	}

	return c, nil
}
