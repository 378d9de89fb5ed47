package p2p

import (
	"encoding/json"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/chain"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/nodeerr"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/tx"
)

// TopicName is the single GossipSub topic every node subscribes to.
const TopicName = "Rustic Chain of Blocks"

// MessageKind identifies the payload carried by an Envelope's Data field.
type MessageKind uint64

const (
	KindPing MessageKind = iota
	KindPong
	KindAddress
	KindAddressResponse
	KindNewTransaction
	KindNewBlock
	KindGetBlocks
	KindBlocks
	KindGetLatestBlock
	KindLatestBlockResponse
	KindVote
)

// Envelope is the outer frame every gossiped message is wrapped in. ID is
// the message kind tag itself (0-10, see the Kind constants above), not a
// sequence number — Want echoes the ID of a request being answered, so
// replies can be matched without a separate correlation ID scheme. Random
// decorrelates otherwise identical messages so GossipSub's message-ID
// dedup doesn't collapse them.
type Envelope struct {
	ID     MessageKind  `json:"id"`
	Want   *MessageKind `json:"want,omitempty"`
	Data   []byte       `json:"data,omitempty"`
	Random uint64       `json:"random"`
}

// VoteOnBlock is a peer's yes/no judgment on a proposed block, keyed by
// block number so late or duplicate votes can be attributed correctly.
type VoteOnBlock struct {
	BlockNumber uint64 `json:"block_number"`
	Vote        string `json:"vote"`
}

const (
	VoteYes = "YES"
	VoteNo  = "NO"
)

// EncodeEnvelope JSON-encodes an Envelope for publication on the wire.
func EncodeEnvelope(e Envelope) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.Decode, "encode envelope", err)
	}
	return data, nil
}

// DecodeEnvelope parses an Envelope received from a peer.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return Envelope{}, nodeerr.Wrap(nodeerr.Decode, "decode envelope", err)
	}
	return e, nil
}

// newEnvelope builds an Envelope carrying an RLP/JSON-encoded payload under
// the given kind, with a fresh random nonce supplied by the caller (the
// node runtime owns randomness so envelope encoding stays deterministic
// and testable).
func newEnvelope(kind MessageKind, data []byte, random uint64) Envelope {
	return Envelope{ID: kind, Data: data, Random: random}
}

// EncodeTransaction wraps a signed transaction as a NewTransaction envelope.
func EncodeTransaction(t tx.Transaction, random uint64) ([]byte, error) {
	payload, err := tx.Encode(t)
	if err != nil {
		return nil, err
	}
	return EncodeEnvelope(newEnvelope(KindNewTransaction, payload, random))
}

// DecodeTransaction unwraps a NewTransaction envelope's payload.
func DecodeTransaction(e Envelope) (tx.Transaction, error) {
	return tx.Decode(e.Data)
}

// EncodeBlock wraps a proposed block as a NewBlock envelope.
func EncodeBlock(b chain.Block, random uint64) ([]byte, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.Decode, "encode block", err)
	}
	return EncodeEnvelope(newEnvelope(KindNewBlock, payload, random))
}

// DecodeBlock unwraps a NewBlock envelope's payload.
func DecodeBlock(e Envelope) (chain.Block, error) {
	var b chain.Block
	if err := json.Unmarshal(e.Data, &b); err != nil {
		return chain.Block{}, nodeerr.Wrap(nodeerr.Decode, "decode block", err)
	}
	return b, nil
}

// EncodeBlocks wraps a batch of blocks as a Blocks reply envelope, echoing
// want so the requester can match it to its GetBlocks call.
func EncodeBlocks(want MessageKind, blocks []chain.Block, random uint64) ([]byte, error) {
	payload, err := json.Marshal(blocks)
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.Decode, "encode blocks", err)
	}
	e := newEnvelope(KindBlocks, payload, random)
	e.Want = &want
	return EncodeEnvelope(e)
}

// DecodeBlocks unwraps a Blocks envelope's payload.
func DecodeBlocks(e Envelope) ([]chain.Block, error) {
	var blocks []chain.Block
	if err := json.Unmarshal(e.Data, &blocks); err != nil {
		return nil, nodeerr.Wrap(nodeerr.Decode, "decode blocks", err)
	}
	return blocks, nil
}

// EncodeVote wraps a vote on a proposed block as a Vote envelope.
func EncodeVote(v VoteOnBlock, random uint64) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.Decode, "encode vote", err)
	}
	return EncodeEnvelope(newEnvelope(KindVote, payload, random))
}

// DecodeVote unwraps a Vote envelope's payload.
func DecodeVote(e Envelope) (VoteOnBlock, error) {
	var v VoteOnBlock
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return VoteOnBlock{}, nodeerr.Wrap(nodeerr.Decode, "decode vote", err)
	}
	return v, nil
}

// EncodeEmpty builds a bare envelope for kinds that carry no payload
// (Ping, Pong, Address, GetLatestBlock).
func EncodeEmpty(kind MessageKind, random uint64) ([]byte, error) {
	return EncodeEnvelope(newEnvelope(kind, nil, random))
}

// EncodeLatestBlockResponse wraps a chain height reply, echoing want.
func EncodeLatestBlockResponse(want MessageKind, height uint64, random uint64) ([]byte, error) {
	payload, err := json.Marshal(height)
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.Decode, "encode latest block response", err)
	}
	e := newEnvelope(KindLatestBlockResponse, payload, random)
	e.Want = &want
	return EncodeEnvelope(e)
}

// DecodeLatestBlockResponse unwraps a LatestBlockResponse envelope's payload.
func DecodeLatestBlockResponse(e Envelope) (uint64, error) {
	var height uint64
	if err := json.Unmarshal(e.Data, &height); err != nil {
		return 0, nodeerr.Wrap(nodeerr.Decode, "decode latest block response", err)
	}
	return height, nil
}
