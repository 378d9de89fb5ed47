package chain

import (
	"testing"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/tx"
)

type fakeStateRoot string

func (f fakeStateRoot) StateRoot() (string, error) { return string(f), nil }

func fixedClock() uint64 { return 1700000000 }

func TestGenesisFields(t *testing.T) {
	g, err := Genesis(fakeStateRoot("0xroot"), fixedClock)
	if err != nil {
		t.Fatalf("Genesis: %v", err)
	}

	if g.Header.Number != 0 {
		t.Errorf("Number = %d, want 0", g.Header.Number)
	}
	if g.Header.ParentHash != GenesisParentHash {
		t.Errorf("ParentHash = %s, want %s", g.Header.ParentHash, GenesisParentHash)
	}
	if g.Header.Miner != MINERS[0] {
		t.Errorf("Miner = %s, want %s", g.Header.Miner, MINERS[0])
	}
	if len(g.Txs) != 0 {
		t.Errorf("Txs = %+v, want empty", g.Txs)
	}
}

func TestHashDeterministic(t *testing.T) {
	g, _ := Genesis(fakeStateRoot("0xroot"), fixedClock)

	h1, err := Hash(g)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := Hash(g)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 != h2 {
		t.Error("Hash is not deterministic")
	}
}

func TestProposeLinksToParent(t *testing.T) {
	genesis, _ := Genesis(fakeStateRoot("0xroot"), fixedClock)
	parentHash, err := Hash(genesis)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	txn := tx.Transaction{Sender: "0x1", Receiver: "0x2", Value: 5, Nonce: 0, V: "27", R: "1", S: "2"}
	block, err := Propose(fakeStateRoot("0xroot2"), fixedClock, genesis, []tx.Transaction{txn})
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}

	if block.Header.Number != 1 {
		t.Errorf("Number = %d, want 1", block.Header.Number)
	}
	if block.Header.ParentHash != parentHash {
		t.Errorf("ParentHash = %s, want %s", block.Header.ParentHash, parentHash)
	}
	if block.Header.Miner != MINERS[0] {
		t.Errorf("Miner = %s, want %s", block.Header.Miner, MINERS[0])
	}
	if len(block.Txs) != 1 {
		t.Fatalf("Txs = %+v, want 1 entry", block.Txs)
	}
}

func TestProposeMinerRoundRobinWraps(t *testing.T) {
	genesis, _ := Genesis(fakeStateRoot("0xroot"), fixedClock)
	block := genesis
	for i := 0; i < len(MINERS)+1; i++ {
		next, err := Propose(fakeStateRoot("0xroot"), fixedClock, block, nil)
		if err != nil {
			t.Fatalf("Propose: %v", err)
		}
		block = next
	}

	if block.Header.Miner != MINERS[0] {
		t.Errorf("after a full round, miner = %s, want wrap to %s", block.Header.Miner, MINERS[0])
	}
}

func TestHashChangesWithTxs(t *testing.T) {
	genesis, _ := Genesis(fakeStateRoot("0xroot"), fixedClock)

	empty, err := Propose(fakeStateRoot("0xroot"), fixedClock, genesis, nil)
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	txn := tx.Transaction{Sender: "0x1", Receiver: "0x2", Value: 5, Nonce: 0, V: "27", R: "1", S: "2"}
	withTx, err := Propose(fakeStateRoot("0xroot"), fixedClock, genesis, []tx.Transaction{txn})
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}

	h1, _ := Hash(empty)
	h2, _ := Hash(withTx)
	if h1 == h2 {
		t.Error("blocks with different txs should hash differently")
	}
}
