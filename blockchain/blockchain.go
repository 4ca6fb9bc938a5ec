package blockchain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/nqtcoin/keys"
)

// ValidationError describes the first defect found while walking the chain
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("block %d: %s", e.Index, e.Reason)
}

// Blockchain is the ledger: it owns the chain, the mempool of admitted
// transactions, the current difficulty and the mint identity
type Blockchain struct {
	mu         sync.RWMutex
	params     Params
	suite      *Suite
	mint       keys.KeyPair
	blocks     []*Block
	mempool    []*Transaction
	difficulty int
	mineOpts   MineOptions
	log        *zap.Logger
}

// Option configures a Blockchain
type Option func(*Blockchain)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(bc *Blockchain) {
		if l != nil {
			bc.log = l
		}
	}
}

// WithMineOptions bounds the proof-of-work search of every mined block
func WithMineOptions(opts MineOptions) Option {
	return func(bc *Blockchain) {
		bc.mineOpts = opts
	}
}

// NewBlockchain creates a new blockchain with its genesis block
func NewBlockchain(params Params, suite *Suite, mint keys.KeyPair, opts ...Option) (*Blockchain, error) {
	if suite == nil || suite.Hasher == nil || suite.Scheme == nil {
		return nil, ErrNoSuite
	}
	if mint == nil {
		return nil, fmt.Errorf("%w: mint key pair is required", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Difficulty > 2*suite.Hasher.Size() {
		return nil, fmt.Errorf("%w: difficulty %d exceeds the %s digest", ErrInvalidParams, params.Difficulty, suite.Hasher.Name())
	}

	bc := &Blockchain{
		params:     params,
		suite:      suite,
		mint:       mint,
		mempool:    make([]*Transaction, 0),
		difficulty: params.Difficulty,
		mineOpts:   DefaultMineOptions(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(bc)
	}

	genesis, err := createGenesisBlock(suite, params, mint)
	if err != nil {
		return nil, err
	}
	bc.blocks = append(bc.blocks, genesis)

	bc.log.Info("blockchain initialized",
		zap.String("genesis", genesis.Hash),
		zap.String("mint", mint.Address()),
		zap.String("scheme", suite.Scheme.Name()),
		zap.String("hash", suite.Hasher.Name()),
		zap.Int("difficulty", bc.difficulty),
	)
	return bc, nil
}

// CreateGenesisBlock recomputes the genesis block from the parameters and
// the mint identity. It is the reference chain[0] is checked against.
func (bc *Blockchain) CreateGenesisBlock() (*Block, error) {
	return createGenesisBlock(bc.suite, bc.params, bc.mint)
}

// GetBalance returns the balance of address by replaying every block
func (bc *Blockchain) GetBalance(address string) int64 {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.balanceOf(address)
}

func (bc *Blockchain) balanceOf(address string) int64 {
	var balance int64
	for _, block := range bc.blocks {
		balance += block.BalanceContribution(address)
	}
	return balance
}

// pendingFrom sums the amounts already pending from a wallet
func (bc *Blockchain) pendingFrom(address string) int64 {
	var total int64
	for _, tx := range bc.mempool {
		if tx.Source.Kind == SourceWallet && tx.Source.Address == address {
			total += tx.Amount
		}
	}
	return total
}

// AddTransaction adds a transaction to the mempool
func (bc *Blockchain) AddTransaction(tx *Transaction) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if err := bc.addTransaction(tx); err != nil {
		bc.log.Info("transaction rejected", zap.Error(err))
		return err
	}
	return nil
}

func (bc *Blockchain) addTransaction(tx *Transaction) error {
	if tx == nil {
		return fmt.Errorf("%w: nil transaction", ErrInvalidSignature)
	}

	// The pool keeps its own copy, checked against the ledger suite, so
	// later edits by the caller cannot reach a sealed block
	tx = tx.clone(bc.suite)

	// 1. Signature
	ok, err := tx.verifyWith(bc.suite)
	if err != nil {
		return fmt.Errorf("reject transaction: %w", err)
	}
	if !ok {
		return fmt.Errorf("reject transaction from %s: %w", short(tx.Source.Address), ErrInvalidSignature)
	}

	mintAddress := bc.mint.Address()
	switch tx.Source.Kind {
	case SourceUnsigned:
		// Legacy records may sit in a chain but are never admitted
		return fmt.Errorf("reject unsourced transaction: %w", ErrMissingSignature)

	case SourceMint:
		// 2. Mint issuance is limited to exactly the mining reward
		if tx.Source.Address != mintAddress {
			return fmt.Errorf("%w: unknown mint identity %s", ErrInvalidAddress, short(tx.Source.Address))
		}
		if tx.Amount != bc.params.MiningReward {
			return fmt.Errorf("%w: got %d, reward is %d", ErrInvalidRewardAmount, tx.Amount, bc.params.MiningReward)
		}

	case SourceWallet:
		if tx.Source.Address == mintAddress {
			if tx.Amount != bc.params.MiningReward {
				return fmt.Errorf("%w: got %d, reward is %d", ErrInvalidRewardAmount, tx.Amount, bc.params.MiningReward)
			}
			return fmt.Errorf("%w: mint identity must issue with a mint source", ErrInvalidAddress)
		}

		// 3. Funds, including what is already waiting in the mempool
		balance := bc.balanceOf(tx.Source.Address)
		if balance < tx.Amount {
			return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance, short(tx.Source.Address), balance, tx.Amount)
		}
		pending := bc.pendingFrom(tx.Source.Address)
		if pending+tx.Amount > balance {
			return fmt.Errorf("%w: %d pending plus %d exceeds balance %d", ErrPendingOverCommit, pending, tx.Amount, balance)
		}

	default:
		return fmt.Errorf("%w: unknown source kind %s", ErrInvalidAddress, tx.Source.Kind)
	}

	// 4. Admit
	bc.mempool = append(bc.mempool, tx)
	bc.log.Debug("transaction admitted",
		zap.String("id", tx.ID()),
		zap.Stringer("source", tx.Source),
		zap.String("dest", short(tx.Dest)),
		zap.Int64("amount", tx.Amount),
		zap.Int("pending", len(bc.mempool)),
	)
	return nil
}

// MinePendingTransactions pays the mining reward to rewardAddress, seals all
// pending transactions into a new block and appends it to the chain. The
// ledger stays locked for the whole search, so admissions wait for it. If
// mining fails the reward is withdrawn and the mempool is left unchanged.
func (bc *Blockchain) MinePendingTransactions(ctx context.Context, rewardAddress string) (*Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	reward, err := NewTransaction(bc.suite, MintSource(bc.mint.Address()), rewardAddress, bc.params.MiningReward)
	if err != nil {
		return nil, fmt.Errorf("create reward: %w", err)
	}
	if err := reward.Sign(bc.mint); err != nil {
		return nil, fmt.Errorf("sign reward: %w", err)
	}
	if err := bc.addTransaction(reward); err != nil {
		return nil, fmt.Errorf("admit reward: %w", err)
	}

	prev := bc.blocks[len(bc.blocks)-1]
	block, err := NewBlock(bc.suite.Hasher, int64(len(bc.blocks)), bc.suite.Now(), bc.mempool, prev.Hash)
	if err != nil {
		bc.withdrawLast()
		return nil, err
	}

	start := time.Now()
	if err := block.Mine(ctx, bc.difficulty, bc.mineOpts); err != nil {
		bc.withdrawLast()
		bc.log.Warn("mining aborted",
			zap.Int64("index", block.Index),
			zap.Uint64("nonce", block.Nonce),
			zap.Error(err),
		)
		return nil, fmt.Errorf("mine block %d: %w", block.Index, err)
	}

	bc.blocks = append(bc.blocks, block)
	bc.mempool = make([]*Transaction, 0)

	bc.log.Info("block mined",
		zap.Int64("index", block.Index),
		zap.String("hash", block.Hash),
		zap.Uint64("nonce", block.Nonce),
		zap.Int("transactions", len(block.Transactions)),
		zap.Int("difficulty", bc.difficulty),
		zap.Duration("elapsed", time.Since(start)),
	)

	if isAdjustmentHeight(block.Index, bc.params.AdjustmentInterval) {
		bc.updateDifficulty()
	}

	return block, nil
}

// withdrawLast drops the most recently admitted transaction
func (bc *Blockchain) withdrawLast() {
	if len(bc.mempool) > 0 {
		bc.mempool = bc.mempool[:len(bc.mempool)-1]
	}
}

// UpdateDifficulty compares the time between the last two blocks with the
// target block time and moves the difficulty by one step
func (bc *Blockchain) UpdateDifficulty() {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.updateDifficulty()
}

func (bc *Blockchain) updateDifficulty() {
	if len(bc.blocks) <= 1 {
		return
	}

	last := bc.blocks[len(bc.blocks)-1]
	prev := bc.blocks[len(bc.blocks)-2]
	elapsed := time.Duration(last.Timestamp-prev.Timestamp) * time.Millisecond

	next := retarget(bc.difficulty, bc.params.MinimumDifficulty, bc.maxDifficulty(), elapsed, bc.params.BlockTime)
	if next != bc.difficulty {
		bc.log.Info("difficulty adjusted",
			zap.Int("from", bc.difficulty),
			zap.Int("to", next),
			zap.Duration("block_time", elapsed),
			zap.Duration("target", bc.params.BlockTime),
		)
	}
	bc.difficulty = next
}

// maxDifficulty is the longest zero prefix a hex digest of the suite hasher
// can have
func (bc *Blockchain) maxDifficulty() int {
	return 2 * bc.suite.Hasher.Size()
}

// IsValid reports whether the whole chain is intact. It does not say which
// block failed; use Validate for that.
func (bc *Blockchain) IsValid() bool {
	return bc.Validate() == nil
}

// Validate walks the chain and returns the first defect as a
// *ValidationError
func (bc *Blockchain) Validate() error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if len(bc.blocks) == 0 {
		return &ValidationError{Index: 0, Reason: "chain is empty"}
	}

	genesis, err := bc.CreateGenesisBlock()
	if err != nil {
		return &ValidationError{Index: 0, Reason: err.Error()}
	}
	if !sameGenesis(bc.blocks[0], genesis, bc.suite) {
		return &ValidationError{Index: 0, Reason: "genesis block does not match"}
	}

	for i := 1; i < len(bc.blocks); i++ {
		current := bc.blocks[i]
		previous := bc.blocks[i-1]

		if current.PreviousHash != previous.Hash {
			return &ValidationError{Index: i, Reason: "previous hash does not link"}
		}
		if current.Index <= previous.Index {
			return &ValidationError{Index: i, Reason: fmt.Sprintf("index %d does not follow %d", current.Index, previous.Index)}
		}
		if !current.validWith(bc.suite) {
			return &ValidationError{Index: i, Reason: "block contents were altered or carry a bad signature"}
		}
	}

	return nil
}

// IsValidationError reports whether err came from Validate
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Chain returns a copy of the block list
func (bc *Blockchain) Chain() []*Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	out := make([]*Block, len(bc.blocks))
	copy(out, bc.blocks)
	return out
}

// PendingTransactions returns copies of the pooled transactions
func (bc *Blockchain) PendingTransactions() []*Transaction {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	out := make([]*Transaction, len(bc.mempool))
	for i, tx := range bc.mempool {
		out[i] = tx.clone(bc.suite)
	}
	return out
}

// GetLatestBlock returns the most recent block in the chain
func (bc *Blockchain) GetLatestBlock() *Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.blocks[len(bc.blocks)-1]
}

// Height returns the number of blocks including genesis
func (bc *Blockchain) Height() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.blocks)
}

// Difficulty returns the current mining difficulty
func (bc *Blockchain) Difficulty() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.difficulty
}

func (bc *Blockchain) MiningReward() int64 { return bc.params.MiningReward }

// MintAddress returns the public address of the mint identity. The mint key
// itself is never exposed.
func (bc *Blockchain) MintAddress() string { return bc.mint.Address() }

func (bc *Blockchain) Suite() *Suite { return bc.suite }

// short abbreviates long hex addresses for logs and errors
func short(address string) string {
	if len(address) <= 16 {
		return address
	}
	return address[:16]
}
