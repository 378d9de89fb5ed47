package node

import (
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/p2p"
)

// Event types for the runtime's single-threaded event loop.

// TickEvent fires every tick interval and drives the propose/finalize
// state machine forward.
type TickEvent struct{}

// PeerConnectedEvent signals that a new peer joined the network.
type PeerConnectedEvent struct {
	Peer peer.ID
}

// EnvelopeEvent signals that an envelope was received from the gossip
// network.
type EnvelopeEvent struct {
	Envelope p2p.Envelope
}
