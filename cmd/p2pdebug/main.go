// Command p2pdebug is a minimal interactive ping/pong probe for the gossip
// network: it joins the "P2P" debug topic (distinct from the node's real
// "Rustic Chain of Blocks" topic) and echoes a Hello response to every
// request it sees, so an operator can confirm two nodes can reach each
// other over GossipSub without running the full chain runtime.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"

	"go.uber.org/zap"
)

const debugTopicName = "P2P"

type messageType string

const (
	typeRequest  messageType = "request"
	typeResponse messageType = "response"
)

type debugMessage struct {
	ID      uint64      `json:"id"`
	Data    string      `json:"data,omitempty"`
	MsgType messageType `json:"msgtype"`
}

type mdnsNotifee struct {
	host host.Host
}

func (n *mdnsNotifee) HandlePeerFound(pi peer.AddrInfo) {
	if pi.ID == n.host.ID() {
		return
	}
	_ = n.host.Connect(context.Background(), pi)
}

func main() {
	listenPort := flag.Int("port", 0, "libp2p listen port (0 picks a random free port)")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if err := run(*listenPort, logger); err != nil {
		logger.Fatal("p2pdebug exited", zap.Error(err))
	}
}

func run(listenPort int, logger *zap.Logger) error {
	ctx := context.Background()

	h, err := libp2p.New(libp2p.ListenAddrStrings(fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", listenPort)))
	if err != nil {
		return err
	}
	defer h.Close()

	mdnsService := mdns.NewMdnsService(h, "rustic-chain-of-blocks-debug.local", &mdnsNotifee{host: h})
	if err := mdnsService.Start(); err != nil {
		logger.Warn("mDNS setup failed", zap.Error(err))
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		return err
	}
	topic, err := ps.Join(debugTopicName)
	if err != nil {
		return err
	}
	sub, err := topic.Subscribe()
	if err != nil {
		return err
	}

	fmt.Println("p2pdebug node is live! peer id:", h.ID().String())

	go readLoop(ctx, sub, h.ID(), topic, logger)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			fmt.Println("enter a numeric message id")
			continue
		}

		msg := debugMessage{ID: id, MsgType: typeRequest}
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if err := topic.Publish(ctx, data); err != nil {
			logger.Warn("publish failed", zap.Error(err))
			continue
		}
		fmt.Println("sent request", id)
	}

	return scanner.Err()
}

func readLoop(ctx context.Context, sub *pubsub.Subscription, self peer.ID, topic *pubsub.Topic, logger *zap.Logger) {
	for {
		raw, err := sub.Next(ctx)
		if err != nil {
			return
		}
		if raw.GetFrom() == self {
			continue
		}

		var msg debugMessage
		if err := json.Unmarshal(raw.Data, &msg); err != nil {
			logger.Debug("invalid debug message", zap.Error(err))
			continue
		}

		if msg.MsgType == typeResponse {
			fmt.Printf("received response %d from %s: %q\n", msg.ID, raw.GetFrom(), msg.Data)
			continue
		}

		fmt.Printf("received request %d from %s\n", msg.ID, raw.GetFrom())
		reply := debugMessage{ID: msg.ID, Data: "Hello", MsgType: typeResponse}
		data, err := json.Marshal(reply)
		if err != nil {
			continue
		}
		if err := topic.Publish(ctx, data); err != nil {
			logger.Warn("publish reply failed", zap.Error(err))
		}
	}
}
