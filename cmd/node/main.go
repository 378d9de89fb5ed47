// Command node runs a full Rustic Chain of Blocks node: ledger, mempool,
// and chain stores, the libp2p gossip network, the propose/finalize
// runtime, and a Prometheus /metrics endpoint.
package main

import (
	"context"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/chain"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/ledger"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/mempool"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/metrics"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/node"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/p2p"
)

func main() {
	listenPort := flag.Int("port", 4001, "libp2p listen port")
	dataDir := flag.String("data-dir", "./data", "directory for the ledger, mempool, chain, and identity files")
	metricsAddr := flag.String("metrics-addr", ":9100", "address to serve Prometheus metrics on")
	enableMDNS := flag.Bool("mdns", true, "enable LAN peer discovery via mDNS")
	flag.Parse()
	bootnodes := flag.Args()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(*listenPort, *dataDir, *metricsAddr, *enableMDNS, bootnodes, logger); err != nil {
		logger.Fatal("node exited", zap.Error(err))
	}
}

func run(listenPort int, dataDir, metricsAddr string, enableMDNS bool, bootnodes []string, logger *zap.Logger) error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return err
	}

	ledgerStore, err := ledger.Open(dataDir + "/ledger.db")
	if err != nil {
		return err
	}
	defer ledgerStore.Close()

	mempoolStore, err := mempool.Open(dataDir + "/mempool.db")
	if err != nil {
		return err
	}
	defer mempoolStore.Close()

	chainStore, err := chain.Open(dataDir + "/chain.db")
	if err != nil {
		return err
	}
	defer chainStore.Close()

	clock := func() uint64 { return uint64(time.Now().Unix()) }
	genesis, err := chain.Genesis(ledgerStore, clock)
	if err != nil {
		return err
	}
	if err := chainStore.InitChain(genesis); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p2pNode, err := p2p.NewNode(ctx, listenPort, dataDir, logger)
	if err != nil {
		return err
	}
	defer p2pNode.Close()

	if err := p2pNode.StartDiscovery(ctx, enableMDNS, bootnodes); err != nil {
		return err
	}

	runtime := node.New(node.Config{
		LedgerStore: ledgerStore,
		Mempool:     mempoolStore,
		ChainStore:  chainStore,
		P2PNode:     p2pNode,
		Logger:      logger,
		Clock:       clock,
		NextRandom:  func() uint64 { return rand.Uint64() },
	})

	go serveMetrics(metricsAddr, logger)

	logger.Info("node starting", zap.Int("port", listenPort), zap.String("data_dir", dataDir))
	return runtime.Run(ctx)
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}
