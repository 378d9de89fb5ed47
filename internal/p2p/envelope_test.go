package p2p

import (
	"testing"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/chain"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/tx"
)

func TestEncodeDecodeEmptyEnvelope(t *testing.T) {
	data, err := EncodeEmpty(KindPing, 42)
	if err != nil {
		t.Fatalf("EncodeEmpty: %v", err)
	}

	e, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if e.ID != KindPing || e.Random != 42 {
		t.Errorf("decoded envelope = %+v, want id=Ping random=42", e)
	}
}

func TestEncodeDecodeTransaction(t *testing.T) {
	txn := tx.Transaction{Sender: "0x1", Receiver: "0x2", Value: 5, Nonce: 0, V: "27", R: "1", S: "2"}

	data, err := EncodeTransaction(txn, 7)
	if err != nil {
		t.Fatalf("EncodeTransaction: %v", err)
	}

	e, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if e.ID != KindNewTransaction {
		t.Fatalf("id = %v, want NewTransaction", e.ID)
	}

	decoded, err := DecodeTransaction(e)
	if err != nil {
		t.Fatalf("DecodeTransaction: %v", err)
	}
	if decoded != txn {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, txn)
	}
}

func TestEncodeDecodeBlock(t *testing.T) {
	block := chain.Block{
		Header: chain.Header{
			ParentHash: chain.GenesisParentHash,
			Miner:      chain.MINERS[0],
			Number:     0,
			ExtraData:  []string{},
		},
		Txs: []tx.Transaction{},
	}

	data, err := EncodeBlock(block, 3)
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}

	e, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if e.ID != KindNewBlock {
		t.Fatalf("id = %v, want NewBlock", e.ID)
	}
	decoded, err := DecodeBlock(e)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if decoded.Header.Number != block.Header.Number || decoded.Header.Miner != block.Header.Miner {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, block)
	}
}

func TestEncodeDecodeVote(t *testing.T) {
	vote := VoteOnBlock{BlockNumber: 5, Vote: VoteYes}

	data, err := EncodeVote(vote, 9)
	if err != nil {
		t.Fatalf("EncodeVote: %v", err)
	}

	e, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if e.ID != KindVote {
		t.Fatalf("id = %v, want Vote", e.ID)
	}
	decoded, err := DecodeVote(e)
	if err != nil {
		t.Fatalf("DecodeVote: %v", err)
	}
	if decoded != vote {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, vote)
	}
}

func TestEncodeLatestBlockResponseEchoesWant(t *testing.T) {
	data, err := EncodeLatestBlockResponse(KindGetLatestBlock, 10, 1)
	if err != nil {
		t.Fatalf("EncodeLatestBlockResponse: %v", err)
	}

	e, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if e.ID != KindLatestBlockResponse {
		t.Fatalf("id = %v, want LatestBlockResponse", e.ID)
	}
	if e.Want == nil || *e.Want != KindGetLatestBlock {
		t.Fatalf("Want = %v, want GetLatestBlock", e.Want)
	}

	height, err := DecodeLatestBlockResponse(e)
	if err != nil {
		t.Fatalf("DecodeLatestBlockResponse: %v", err)
	}
	if height != 10 {
		t.Errorf("height = %d, want 10", height)
	}
}
