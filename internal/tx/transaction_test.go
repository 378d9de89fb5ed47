package tx

import (
	"testing"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/ledger"
)

// fakeLedger is a minimal NonceSource for tests that don't need a real store.
type fakeLedger map[string]ledger.Account

func (f fakeLedger) Get(address string) (ledger.Account, error) {
	acc, ok := f[address]
	if !ok {
		return ledger.Account{}, &notFoundErr{address}
	}
	return acc, nil
}

type notFoundErr struct{ addr string }

func (e *notFoundErr) Error() string { return "account not found: " + e.addr }

const testPK = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestBuildUsesSenderNonce(t *testing.T) {
	l := fakeLedger{
		"0xsender": ledger.Account{Address: "0xsender", Balance: 1000, Nonce: 5},
	}

	txn, err := Build(l, "0xsender", "0xreceiver", 100, testPK)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if txn.Nonce != 5 {
		t.Errorf("Nonce = %d, want 5", txn.Nonce)
	}
	if txn.Sender != "0xsender" || txn.Receiver != "0xreceiver" || txn.Value != 100 {
		t.Errorf("from/to/value not preserved verbatim: %+v", txn)
	}
	if txn.V == "" || txn.R == "" || txn.S == "" {
		t.Error("signature components should be populated")
	}
}

func TestHashDeterministic(t *testing.T) {
	txn := Transaction{Sender: "0x1", Receiver: "0x2", Value: 10, Nonce: 1, V: "27", R: "1", S: "2"}

	h1 := Hash(txn)
	h2 := Hash(txn)
	if h1 != h2 {
		t.Error("Hash is not deterministic")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := Transaction{
		Sender: "0xsender", Receiver: "0xreceiver",
		Value: 42, Nonce: 7, V: "27", R: "123", S: "456",
	}

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if decoded != original {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestTransactionsRootEmpty(t *testing.T) {
	root := TransactionsRoot(nil)
	const want = "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if root != want {
		t.Errorf("TransactionsRoot(nil) = %s, want %s", root, want)
	}
}

func TestTransactionsRootSingleEqualsDuplicatedPair(t *testing.T) {
	txn := Transaction{Sender: "0x1", Receiver: "0x2", Value: 1, Nonce: 1, V: "27", R: "1", S: "2"}

	single := TransactionsRoot([]Transaction{txn})
	pair := TransactionsRoot([]Transaction{txn, txn})

	if single != pair {
		t.Errorf("TransactionsRoot([t]) = %s, want equal to TransactionsRoot([t,t]) = %s", single, pair)
	}
}
