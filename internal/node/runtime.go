// Package node implements the node runtime (C7): the cooperative,
// single-threaded event loop that multiplexes the tick timer, gossip
// traffic, and peer-discovery events, and drives the two-phase
// propose/finalize block state machine.
package node

import (
	"context"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"go.uber.org/zap"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/chain"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/ledger"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/mempool"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/metrics"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/p2p"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/tx"
)

// TickInterval is the fixed cadence of the propose/finalize state machine.
const TickInterval = 5 * time.Second

// BlockValidator vets a proposed block before this node votes yes on it.
// The default AcceptAll always approves — this is the extension point a
// future consensus rule (e.g. a minimum-fee policy) would hook into.
type BlockValidator interface {
	Validate(b chain.Block) bool
}

// AcceptAll is the default BlockValidator: every syntactically valid
// proposal gets a yes vote.
type AcceptAll struct{}

// Validate always returns true.
func (AcceptAll) Validate(chain.Block) bool { return true }

// RandomSource supplies the envelope's decorrelation nonce. Runtime takes
// this as a func so tests can make envelope encoding deterministic.
type RandomSource func() uint64

// Network is the subset of *p2p.Node the runtime depends on, narrowed to
// an interface so tests can drive the event loop without a real libp2p
// host.
type Network interface {
	Broadcast(data []byte) error
	PeerCount() int
	Incoming() <-chan p2p.Envelope
	PeerConnected() <-chan peer.ID
}

// Runtime ties the ledger, mempool, chain, and P2P node together into the
// propose/finalize loop.
type Runtime struct {
	ledgerStore *ledger.Store
	mempool     *mempool.Mempool
	chainStore  *chain.Chain
	p2pNode     Network
	logger      *zap.Logger
	clock       chain.Clock
	validator   BlockValidator
	nextRandom  RandomSource

	proposed      bool
	proposedBlock *chain.Block
	yesVotes      int
}

// Config collects Runtime's dependencies.
type Config struct {
	LedgerStore *ledger.Store
	Mempool     *mempool.Mempool
	ChainStore  *chain.Chain
	P2PNode     Network
	Logger      *zap.Logger
	Clock       chain.Clock
	Validator   BlockValidator
	NextRandom  RandomSource
}

// New constructs a Runtime. Validator defaults to AcceptAll if nil.
func New(cfg Config) *Runtime {
	validator := cfg.Validator
	if validator == nil {
		validator = AcceptAll{}
	}
	return &Runtime{
		ledgerStore: cfg.LedgerStore,
		mempool:     cfg.Mempool,
		chainStore:  cfg.ChainStore,
		p2pNode:     cfg.P2PNode,
		logger:      cfg.Logger,
		clock:       cfg.Clock,
		validator:   validator,
		nextRandom:  cfg.NextRandom,
	}
}

// Run blocks, multiplexing the tick timer and inbound P2P events, until ctx
// is canceled.
func (r *Runtime) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			r.onTick()

		case peerID := <-r.p2pNode.PeerConnected():
			r.onPeerConnected(peerID)

		case envelope := <-r.p2pNode.Incoming():
			r.onEnvelope(envelope)
		}
	}
}

// onTick alternates between the propose phase and the finalize phase on
// successive ticks.
func (r *Runtime) onTick() {
	if !r.proposed {
		r.propose()
		r.proposed = true
	} else {
		r.finalize()
		r.proposed = false
	}
	metrics.PeersConnected.Set(float64(r.p2pNode.PeerCount()))
}

// propose drains the mempool, signs each request into a transaction,
// broadcasts them, then proposes and broadcasts a block built on top of the
// current chain tip. If a proposal from this node or a peer is already
// awaiting finalization, propose is skipped for this round.
func (r *Runtime) propose() {
	if r.proposedBlock != nil {
		return
	}

	requests, err := r.mempool.DrainAll()
	if err != nil {
		r.logger.Error("drain mempool", zap.Error(err))
		return
	}

	txs := make([]tx.Transaction, 0, len(requests))
	for _, req := range requests {
		txn, err := tx.Build(r.ledgerStore, req.From, req.To, req.Value, req.PK)
		if err != nil {
			r.logger.Warn("dropping transaction request", zap.String("from", req.From), zap.Error(err))
			continue
		}
		txs = append(txs, txn)

		data, err := p2p.EncodeTransaction(txn, r.nextRandom())
		if err != nil {
			r.logger.Error("encode transaction envelope", zap.Error(err))
			continue
		}
		if err := r.p2pNode.Broadcast(data); err != nil {
			r.logger.Warn("broadcast transaction", zap.Error(err))
		}
		metrics.TransactionsSubmitted.Inc()
	}

	last, err := r.chainStore.Last()
	if err != nil {
		r.logger.Error("read chain tip", zap.Error(err))
		return
	}

	block, err := chain.Propose(r.ledgerStore, r.clock, last, txs)
	if err != nil {
		r.logger.Error("propose block", zap.Error(err))
		return
	}
	if !r.validator.Validate(block) {
		r.logger.Warn("locally built block failed validation", zap.Uint64("number", block.Header.Number))
		return
	}

	r.proposedBlock = &block
	r.yesVotes = 0

	data, err := p2p.EncodeBlock(block, r.nextRandom())
	if err != nil {
		r.logger.Error("encode block envelope", zap.Error(err))
		return
	}
	if err := r.p2pNode.Broadcast(data); err != nil {
		r.logger.Warn("broadcast block", zap.Error(err))
	}
	metrics.BlocksProposed.Inc()
}

// finalize checks whether the block awaiting votes has reached majority —
// strictly more than half of connected peers, excluding this node's own
// (uncast) vote — and commits it if so.
func (r *Runtime) finalize() {
	if r.proposedBlock == nil {
		return
	}
	block := *r.proposedBlock
	r.proposedBlock = nil

	peers := r.p2pNode.PeerCount()
	if r.yesVotes <= peers/2 {
		r.logger.Info("block rejected by majority vote",
			zap.Uint64("number", block.Header.Number),
			zap.Int("yes_votes", r.yesVotes),
			zap.Int("peers", peers),
		)
		metrics.BlockFinalizations.WithLabelValues("rejected").Inc()
		r.yesVotes = 0
		return
	}

	if err := r.chainStore.Commit(block); err != nil {
		r.logger.Error("commit block", zap.Error(err))
		metrics.BlockFinalizations.WithLabelValues("error").Inc()
		r.yesVotes = 0
		return
	}

	r.logger.Info("block committed", zap.Uint64("number", block.Header.Number), zap.Int("txs", len(block.Txs)))
	metrics.BlockFinalizations.WithLabelValues("committed").Inc()
	metrics.BlocksCommitted.Inc()
	metrics.ChainHeight.Set(float64(block.Header.Number))
	r.yesVotes = 0
}

// onPeerConnected greets a newly connected peer with a Ping, prompting a
// Pong and an implicit liveness check of the gossip path.
func (r *Runtime) onPeerConnected(p peer.ID) {
	data, err := p2p.EncodeEmpty(p2p.KindPing, r.nextRandom())
	if err != nil {
		r.logger.Error("encode ping", zap.Error(err))
		return
	}
	if err := r.p2pNode.Broadcast(data); err != nil {
		r.logger.Warn("broadcast ping", zap.Error(err))
	}
	r.logger.Info("peer connected", zap.String("peer", p.String()))
}

// onEnvelope dispatches an inbound envelope by message kind. The kind tag
// travels in the envelope's ID field, not a separate code field.
func (r *Runtime) onEnvelope(e p2p.Envelope) {
	switch e.ID {
	case p2p.KindPing:
		r.reply(e, p2p.KindPong)

	case p2p.KindPong:
		// liveness only, no action required

	case p2p.KindAddress:
		r.reply(e, p2p.KindAddressResponse)

	case p2p.KindAddressResponse:
		// peer discovery is handled by the DHT/mDNS layer, not gossip

	case p2p.KindNewTransaction:
		// observed only: not relayed and no state change (ledger balances are
		// applied by the tx CLI at submission, never by the runtime)

	case p2p.KindNewBlock:
		r.onNewBlock(e)

	case p2p.KindGetBlocks:
		r.onGetBlocks(e)

	case p2p.KindBlocks:
		// bulk sync replies are ignored; the runtime has no catch-up routine

	case p2p.KindGetLatestBlock:
		r.onGetLatestBlock(e)

	case p2p.KindLatestBlockResponse:
		// height replies are ignored; the runtime has no catch-up routine

	case p2p.KindVote:
		r.onVote(e)

	default:
		r.logger.Debug("unknown message kind", zap.Uint64("id", uint64(e.ID)))
	}
}

// onNewBlock validates a peer's proposal against the local chain tip and
// casts a vote. If this node has no block of its own awaiting finalization,
// it adopts the peer's proposal as the one it is voting on.
func (r *Runtime) onNewBlock(e p2p.Envelope) {
	block, err := p2p.DecodeBlock(e)
	if err != nil {
		r.logger.Debug("invalid block envelope", zap.Error(err))
		return
	}

	last, err := r.chainStore.Last()
	if err != nil {
		r.logger.Error("read chain tip", zap.Error(err))
		return
	}

	vote := p2p.VoteOnBlock{BlockNumber: block.Header.Number, Vote: p2p.VoteNo}
	if r.validBlock(block, last) {
		vote.Vote = p2p.VoteYes
		if r.proposedBlock == nil {
			r.proposedBlock = &block
			r.yesVotes = 0
		}
	}

	data, err := p2p.EncodeVote(vote, r.nextRandom())
	if err != nil {
		r.logger.Error("encode vote", zap.Error(err))
		return
	}
	if err := r.p2pNode.Broadcast(data); err != nil {
		r.logger.Warn("broadcast vote", zap.Error(err))
	}
}

func (r *Runtime) validBlock(block, last chain.Block) bool {
	if block.Header.Number != last.Header.Number+1 {
		return false
	}
	lastHash, err := chain.Hash(last)
	if err != nil {
		return false
	}
	if block.Header.ParentHash != lastHash {
		return false
	}
	return r.validator.Validate(block)
}

// onVote tallies a peer's vote toward the block currently awaiting
// finalization. Votes for any other block number are stale and ignored.
func (r *Runtime) onVote(e p2p.Envelope) {
	vote, err := p2p.DecodeVote(e)
	if err != nil {
		r.logger.Debug("invalid vote envelope", zap.Error(err))
		return
	}
	if r.proposedBlock == nil || vote.BlockNumber != r.proposedBlock.Header.Number {
		return
	}
	if vote.Vote == p2p.VoteYes {
		r.yesVotes++
		metrics.PendingVotes.Set(float64(r.yesVotes))
	}
}

// onGetBlocks replies with the most-recently committed blocks, at most 64 of
// them. The request's envelope is not read: every GetBlocks gets the same
// reply, whatever count the requester wanted.
func (r *Runtime) onGetBlocks(e p2p.Envelope) {
	const maxBlocksPerReply = 64
	blocks, err := r.chainStore.LastN(maxBlocksPerReply)
	if err != nil {
		r.logger.Error("read blocks for sync reply", zap.Error(err))
		return
	}

	data, err := p2p.EncodeBlocks(p2p.KindGetBlocks, blocks, r.nextRandom())
	if err != nil {
		r.logger.Error("encode blocks reply", zap.Error(err))
		return
	}
	if err := r.p2pNode.Broadcast(data); err != nil {
		r.logger.Warn("broadcast blocks reply", zap.Error(err))
	}
}

// onGetLatestBlock replies with the local chain height.
func (r *Runtime) onGetLatestBlock(e p2p.Envelope) {
	last, err := r.chainStore.Last()
	if err != nil {
		r.logger.Error("read chain tip", zap.Error(err))
		return
	}

	data, err := p2p.EncodeLatestBlockResponse(p2p.KindGetLatestBlock, last.Header.Number, r.nextRandom())
	if err != nil {
		r.logger.Error("encode latest block response", zap.Error(err))
		return
	}
	if err := r.p2pNode.Broadcast(data); err != nil {
		r.logger.Warn("broadcast latest block response", zap.Error(err))
	}
}

// reply broadcasts a bare envelope of the given kind. It carries no payload
// and no Want; nothing from the triggering message is echoed.
func (r *Runtime) reply(trigger p2p.Envelope, kind p2p.MessageKind) {
	data, err := p2p.EncodeEmpty(kind, r.nextRandom())
	if err != nil {
		r.logger.Error("encode reply", zap.Error(err))
		return
	}
	if err := r.p2pNode.Broadcast(data); err != nil {
		r.logger.Warn("broadcast reply", zap.Error(err))
	}
	_ = trigger
}
