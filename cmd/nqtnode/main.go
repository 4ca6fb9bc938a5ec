package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/yourusername/nqtcoin/blockchain"
	"github.com/yourusername/nqtcoin/config"
	"github.com/yourusername/nqtcoin/logging"
)

var (
	configPath  = flag.String("config", "", "Path to a YAML configuration file")
	printConfig = flag.Bool("print-config", false, "Print the effective configuration and exit")
	extraBlocks = flag.Int("blocks", 0, "Number of extra empty blocks to mine after the demo")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	if *printConfig {
		if err := config.Write(os.Stdout, cfg); err != nil {
			log.WithError(err).Fatal("Failed to print configuration")
		}
		return
	}

	zl, err := logging.New(cfg.Log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create ledger logger")
	}
	defer zl.Sync()

	// Handle shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	node, err := newNode(cfg, zl, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to start node")
	}
	if err := node.runDemo(ctx, *extraBlocks); err != nil {
		log.WithError(err).Fatal("Demo run failed")
	}
	if err := node.report(os.Stdout); err != nil {
		log.WithError(err).Fatal("Failed to print report")
	}
}

// node ties the ledger to the demo wallets and the mining statistics
type node struct {
	cfg    *config.Config
	bc     *blockchain.Blockchain
	stats  *MiningStats
	log    *logrus.Logger
	holder *Wallet
	miner  *Wallet
	alice  *Wallet
	bob    *Wallet
}

func newNode(cfg *config.Config, zl *zap.Logger, log *logrus.Logger) (*node, error) {
	suite, err := cfg.Suite()
	if err != nil {
		return nil, err
	}
	mint, err := cfg.MintKey(suite.Scheme)
	if err != nil {
		return nil, err
	}

	n := &node{cfg: cfg, log: log}

	var holder string
	if cfg.Crypto.HolderPassphrase != "" {
		kp, err := cfg.HolderKey(suite.Scheme)
		if err != nil {
			return nil, err
		}
		n.holder = WalletFromKey("holder", kp)
		holder = kp.Address()
	}

	n.bc, err = blockchain.NewBlockchain(cfg.Params(holder), suite, mint,
		blockchain.WithLogger(zl),
		blockchain.WithMineOptions(cfg.MineOptions()),
	)
	if err != nil {
		return nil, err
	}
	n.stats = NewMiningStats(n.bc.Difficulty())

	for _, w := range []struct {
		name string
		dst  **Wallet
	}{{"miner", &n.miner}, {"alice", &n.alice}, {"bob", &n.bob}} {
		wallet, err := NewWallet(w.name, suite.Scheme)
		if err != nil {
			return nil, err
		}
		*w.dst = wallet
	}

	log.WithFields(logrus.Fields{
		"network": blockchain.NetworkName,
		"scheme":  suite.Scheme.Name(),
		"hash":    suite.Hasher.Name(),
		"genesis": n.bc.GetLatestBlock().Hash,
	}).Info("Ledger ready")
	return n, nil
}

// mine mines the pending transactions to the miner wallet and records the
// result
func (n *node) mine(ctx context.Context) (*blockchain.Block, error) {
	if n.cfg.Mining.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.Mining.Timeout)
		defer cancel()
	}

	difficulty := n.bc.Difficulty()
	start := time.Now()
	block, err := n.bc.MinePendingTransactions(ctx, n.miner.Address)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	n.stats.AddBlock(block, n.miner.Name, difficulty, elapsed)
	if n.stats.RecordDifficulty(block.Index, n.bc.Difficulty()) {
		n.log.WithFields(logrus.Fields{
			"height":     block.Index,
			"difficulty": n.bc.Difficulty(),
		}).Info("Difficulty changed")
	}

	n.log.WithFields(logrus.Fields{
		"index":   block.Index,
		"nonce":   block.Nonce,
		"txs":     len(block.Transactions),
		"elapsed": elapsed.Round(time.Millisecond),
	}).Info("Block mined")
	return block, nil
}

func (n *node) send(from, to *Wallet, amount int64) error {
	if _, err := from.Send(n.bc, to.Address, amount); err != nil {
		return fmt.Errorf("%s -> %s: %w", from.Name, to.Name, err)
	}
	n.log.WithFields(logrus.Fields{
		"from":   from.Name,
		"to":     to.Name,
		"amount": amount,
	}).Info("Transaction submitted")
	return nil
}

// runDemo mines a first block to the miner, then pays alice and bob from
// the mined reward, mining after each transfer
func (n *node) runDemo(ctx context.Context, extra int) error {
	if _, err := n.mine(ctx); err != nil {
		return err
	}

	if err := n.send(n.miner, n.alice, 10); err != nil {
		return err
	}
	if n.holder != nil {
		if err := n.send(n.holder, n.alice, 25); err != nil {
			return err
		}
	}
	if _, err := n.mine(ctx); err != nil {
		return err
	}

	if err := n.send(n.miner, n.bob, 5); err != nil {
		return err
	}
	if _, err := n.mine(ctx); err != nil {
		return err
	}

	// A second spend of the full balance must wait for the first to confirm
	balance := n.miner.Balance(n.bc)
	if err := n.send(n.miner, n.bob, balance); err != nil {
		return err
	}
	if err := n.send(n.miner, n.alice, 1); err != nil {
		n.log.WithError(err).Warn("Double spend rejected")
	}
	if _, err := n.mine(ctx); err != nil {
		return err
	}

	for i := 0; i < extra; i++ {
		if _, err := n.mine(ctx); err != nil {
			return err
		}
	}
	return nil
}

// report prints balances, chain validity, mining statistics and the chain
func (n *node) report(w io.Writer) error {
	fmt.Fprintf(w, "\nBalances (%s)\n", blockchain.CoinSymbol)
	for _, wallet := range []*Wallet{n.holder, n.miner, n.alice, n.bob} {
		if wallet == nil {
			continue
		}
		fmt.Fprintf(w, "  %-7s %d\n", wallet.Name, wallet.Balance(n.bc))
	}

	if err := n.bc.Validate(); err != nil {
		fmt.Fprintf(w, "\nBlockchain valid? No (%v)\n", err)
	} else {
		fmt.Fprintln(w, "\nBlockchain valid? Yes")
	}

	s := n.stats.GetStats()
	fmt.Fprintf(w, "\nMining: %d blocks, %d nonces, %.0f H/s, difficulty %v\n",
		s["blocks_found"], s["total_nonces"], s["hashrate"], s["difficulty_history"])

	chain := n.bc.Chain()
	table, err := renderChain(chain)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nChain dump\n%s\n", table)

	txs, err := renderTransactions(chain[len(chain)-1])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Latest block transactions\n%s\n", txs)
	return nil
}
