// Package txsign wraps the ECDSA-over-secp256k1 signing primitive used to
// produce a transaction's (v, r, s). Per the spec, the signing library
// itself is an opaque external collaborator — this package exists only to
// adapt go-ethereum's crypto package to the node's decimal-string signature
// representation, not to implement ECDSA.
package txsign

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/nodeerr"
)

// legacyRecoveryOffset is the classic Ethereum v offset (27/28) applied to
// the 0/1 recovery id that crypto.Sign returns, matching "legacy-style"
// transaction signing.
const legacyRecoveryOffset = 27

// Signature holds the three ECDSA components as decimal strings, matching
// the wire/storage representation used by Transaction.
type Signature struct {
	V string
	R string
	S string
}

// Sign signs messageHash with the secp256k1 private key given as hex
// (with or without a "0x" prefix), returning the legacy-style (v, r, s).
func Sign(pkHex string, messageHash [32]byte) (Signature, error) {
	pkHex = strings.TrimPrefix(pkHex, "0x")

	privKey, err := crypto.HexToECDSA(pkHex)
	if err != nil {
		return Signature{}, nodeerr.Wrap(nodeerr.Signing, "invalid private key", err)
	}

	sig, err := crypto.Sign(messageHash[:], privKey)
	if err != nil {
		return Signature{}, nodeerr.Wrap(nodeerr.Signing, "sign transaction", err)
	}
	if len(sig) != 65 {
		return Signature{}, nodeerr.New(nodeerr.Signing, "unexpected signature length")
	}

	r := new(big.Int).SetBytes(sig[0:32])
	s := new(big.Int).SetBytes(sig[32:64])
	v := uint64(sig[64]) + legacyRecoveryOffset

	return Signature{
		V: strconv.FormatUint(v, 10),
		R: r.String(),
		S: s.String(),
	}, nil
}
