// Package hashing implements the Keccak-256 primitives and the
// non-standard Merkle root used throughout the chain: every hash in the
// system is a Keccak-256 digest, and leaves are combined as their ASCII
// hex representation rather than their decoded bytes.
package hashing

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
)

// Keccak hashes the concatenation of data and returns the 32-byte digest.
func Keccak(data ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], crypto.Keccak256(data...))
	return out
}

// KeccakHex hashes the concatenation of data and returns lowercase hex,
// with no "0x" prefix — callers prepend it where the data model calls for it.
func KeccakHex(data ...[]byte) string {
	h := Keccak(data...)
	return hex.EncodeToString(h[:])
}

// EmptyHash is keccak(""), the root/hash used whenever a leaf set is empty.
var EmptyHash = KeccakHex()

// MerkleRoot computes the non-standard Merkle root over an ordered list of
// hex-string leaves. Each level hashes the UTF-8 bytes of the leaves' hex
// strings concatenated — NOT their decoded bytes — so peers who "optimize"
// to byte-decoded hashing will diverge. An odd node count at any level is
// fixed by duplicating the last node before pairing.
//
// An empty leaf set returns keccak(""), matching EmptyHash.
func MerkleRoot(leaves []string) string {
	if len(leaves) == 0 {
		return EmptyHash
	}

	level := make([]string, len(leaves))
	copy(level, leaves)

	for {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}

		next := make([]string, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			parent := KeccakHex([]byte(level[i]), []byte(level[i+1]))
			next = append(next, parent)
		}

		level = next
		if len(level) == 1 {
			return level[0]
		}
	}
}
