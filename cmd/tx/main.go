// Command tx is an interactive CLI that submits a transfer request to a
// running node's mempool: it prompts for sender, receiver, value, and the
// sender's private key, applies the balance change to the local ledger
// view immediately, and enqueues the request (with the private key, unsigned)
// for the node's next proposal round, where the node signs it.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/ledger"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/mempool"
)

func main() {
	dataDir := flag.String("data-dir", "./data", "directory shared with the running node")
	flag.Parse()

	if err := run(*dataDir, os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dataDir string, in *os.File) error {
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

	scanner := bufio.NewScanner(in)

	from := prompt(scanner, "Your address: ")
	to := prompt(scanner, "Receiver address: ")
	value, err := strconv.ParseUint(prompt(scanner, "Value: "), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	pk := prompt(scanner, "Your private key: ")

	sender, err := ledgerStore.Get(from)
	if err != nil {
		return err
	}

	if sender.Balance < value {
		fmt.Println("insufficient funds")
		os.Exit(1)
	}

	if err := ledgerStore.ApplyTransfer(from, to, value); err != nil {
		return err
	}

	if err := mempoolStore.Enqueue(from, to, value, pk); err != nil {
		return err
	}

	fmt.Println("transaction added to the mempool")
	return nil
}

func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	scanner.Scan()
	return strings.TrimSpace(scanner.Text())
}
