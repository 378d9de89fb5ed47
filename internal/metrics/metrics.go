package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChainHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rustic_chain",
		Name:      "height",
		Help:      "Height of the last committed block.",
	})

	PeersConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rustic_chain",
		Name:      "peers_connected",
		Help:      "Number of connected P2P peers.",
	})

	MempoolSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rustic_chain",
		Name:      "mempool_size",
		Help:      "Number of transaction requests currently queued.",
	})

	PendingVotes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rustic_chain",
		Name:      "pending_votes",
		Help:      "Yes votes tallied so far for the block awaiting finalization.",
	})

	BlocksProposed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rustic_chain",
		Name:      "blocks_proposed_total",
		Help:      "Total blocks this node has proposed.",
	})

	BlocksCommitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rustic_chain",
		Name:      "blocks_committed_total",
		Help:      "Total blocks committed to the local chain.",
	})

	BlockFinalizations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rustic_chain",
		Name:      "block_finalizations_total",
		Help:      "Finalize-phase outcomes by result.",
	}, []string{"result"})

	TransactionsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rustic_chain",
		Name:      "transactions_submitted_total",
		Help:      "Total signed transactions built and broadcast.",
	})

	UptimeSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rustic_chain",
		Name:      "uptime_seconds",
		Help:      "Node uptime in seconds.",
	})
)

func init() {
	prometheus.MustRegister(
		ChainHeight,
		PeersConnected,
		MempoolSize,
		PendingVotes,
		BlocksProposed,
		BlocksCommitted,
		BlockFinalizations,
		TransactionsSubmitted,
		UptimeSeconds,
	)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
