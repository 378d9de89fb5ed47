package hashing

import "testing"

func TestEmptyHash(t *testing.T) {
	const want = "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if EmptyHash != want {
		t.Errorf("EmptyHash = %s, want %s", EmptyHash, want)
	}
}

func TestMerkleRootEmpty(t *testing.T) {
	if got := MerkleRoot(nil); got != EmptyHash {
		t.Errorf("MerkleRoot(nil) = %s, want %s", got, EmptyHash)
	}
	if got := MerkleRoot([]string{}); got != EmptyHash {
		t.Errorf("MerkleRoot([]) = %s, want %s", got, EmptyHash)
	}
}

func TestMerkleRootSingleLeafDuplicatesLast(t *testing.T) {
	leaf := KeccakHex([]byte("tx-1"))

	single := MerkleRoot([]string{leaf})
	pair := MerkleRoot([]string{leaf, leaf})

	if single != pair {
		t.Errorf("MerkleRoot([leaf]) = %s, want it to equal MerkleRoot([leaf, leaf]) = %s", single, pair)
	}

	want := KeccakHex([]byte(leaf), []byte(leaf))
	if single != want {
		t.Errorf("MerkleRoot([leaf]) = %s, want %s", single, want)
	}
}

func TestMerkleRootFourLeavesDeterministic(t *testing.T) {
	leaves := []string{
		KeccakHex([]byte("a")),
		KeccakHex([]byte("b")),
		KeccakHex([]byte("c")),
		KeccakHex([]byte("d")),
	}

	l1 := KeccakHex([]byte(leaves[0]), []byte(leaves[1]))
	l2 := KeccakHex([]byte(leaves[2]), []byte(leaves[3]))
	want := KeccakHex([]byte(l1), []byte(l2))

	if got := MerkleRoot(leaves); got != want {
		t.Errorf("MerkleRoot(4 leaves) = %s, want %s", got, want)
	}
}

func TestMerkleRootOddCountDuplicatesLastNode(t *testing.T) {
	leaves := []string{
		KeccakHex([]byte("a")),
		KeccakHex([]byte("b")),
		KeccakHex([]byte("c")),
	}

	withDup := MerkleRoot([]string{leaves[0], leaves[1], leaves[2], leaves[2]})
	got := MerkleRoot(leaves)

	if got != withDup {
		t.Errorf("odd-count MerkleRoot = %s, want %s (explicit duplicate)", got, withDup)
	}
}

func TestKeccakDeterministic(t *testing.T) {
	a := Keccak([]byte("hello"))
	b := Keccak([]byte("hello"))
	if a != b {
		t.Error("Keccak is not deterministic across calls")
	}
}
