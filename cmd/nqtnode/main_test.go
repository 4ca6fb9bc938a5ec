package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/yourusername/nqtcoin/config"
	"github.com/yourusername/nqtcoin/keys"
)

func testNode(t *testing.T) *node {
	t.Helper()

	cfg := config.Default()
	cfg.Consensus.Difficulty = 1
	cfg.Crypto.Scheme = keys.Ed25519

	log := logrus.New()
	log.SetOutput(io.Discard)

	n, err := newNode(cfg, zap.NewNop(), log)
	if err != nil {
		t.Fatalf("newNode() failed: %v", err)
	}
	return n
}

func TestRunDemo(t *testing.T) {
	n := testNode(t)

	if err := n.runDemo(context.Background(), 2); err != nil {
		t.Fatalf("runDemo() failed: %v", err)
	}

	if h := n.bc.Height(); h != 7 {
		t.Errorf("Height() = %d, want 7", h)
	}
	tests := []struct {
		wallet *Wallet
		want   int64
	}{
		{n.miner, 30},
		{n.alice, 35},
		{n.bob, 20},
		{n.holder, n.cfg.Consensus.GenesisSupply - 25},
	}
	for _, tt := range tests {
		if got := tt.wallet.Balance(n.bc); got != tt.want {
			t.Errorf("%s balance = %d, want %d", tt.wallet.Name, got, tt.want)
		}
	}
	if !n.bc.IsValid() {
		t.Errorf("chain invalid: %v", n.bc.Validate())
	}
	if n.stats.BlocksFound != 6 {
		t.Errorf("BlocksFound = %d, want 6", n.stats.BlocksFound)
	}
}

func TestReport(t *testing.T) {
	n := testNode(t)
	if err := n.runDemo(context.Background(), 0); err != nil {
		t.Fatalf("runDemo() failed: %v", err)
	}

	var buf bytes.Buffer
	if err := n.report(&buf); err != nil {
		t.Fatalf("report() failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Blockchain valid? Yes", "Chain dump", "Mining: 4 blocks"} {
		if !strings.Contains(out, want) {
			t.Errorf("report is missing %q:\n%s", want, out)
		}
	}
}

func TestRunDemoCancelled(t *testing.T) {
	n := testNode(t)
	n.cfg.Mining.Timeout = 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Difficulty 1 can succeed before the first context check, so only
	// make sure the ledger is never left half updated
	n.runDemo(ctx, 0)
	if !n.bc.IsValid() {
		t.Errorf("chain invalid after cancelled run: %v", n.bc.Validate())
	}
}
