package blockchain

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/yourusername/nqtcoin/digest"
)

// Block represents a block in the blockchain
type Block struct {
	Index        int64          `json:"index"`
	Timestamp    int64          `json:"timestamp"`
	Transactions []*Transaction `json:"transactions"`
	Nonce        uint64         `json:"nonce"`
	PreviousHash string         `json:"previous_hash,omitempty"`
	Hash         string         `json:"hash"`

	hasher digest.Hasher
}

// MineOptions bounds the proof-of-work search
type MineOptions struct {
	// CheckEvery is how many nonces are tried between context checks.
	// Zero disables cancellation.
	CheckEvery uint64
	// MaxIterations caps the number of nonces tried. Zero means no cap.
	MaxIterations uint64
}

// DefaultMineOptions checks for cancellation every 4096 nonces and never
// gives up on its own
func DefaultMineOptions() MineOptions {
	return MineOptions{CheckEvery: 4096}
}

// NewBlock creates a new block with the given parameters and computes its
// initial hash with a zero nonce. The transaction slice is copied.
func NewBlock(hasher digest.Hasher, index int64, timestamp int64, transactions []*Transaction, previousHash string) (*Block, error) {
	if hasher == nil {
		return nil, ErrNoSuite
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	if len(transactions) == 0 {
		return nil, ErrEmptyBlock
	}
	if index != 0 && previousHash == "" {
		return nil, fmt.Errorf("%w: block %d", ErrMissingPreviousHash, index)
	}

	txs := make([]*Transaction, len(transactions))
	copy(txs, transactions)

	b := &Block{
		Index:        index,
		Timestamp:    timestamp,
		Transactions: txs,
		PreviousHash: previousHash,
		hasher:       hasher,
	}
	b.Hash = b.ComputeHash()
	return b, nil
}

// headerPrefix encodes everything the hash commits to except the nonce
func (b *Block) headerPrefix() []byte {
	buf := new(bytes.Buffer)

	binary.Write(buf, binary.LittleEndian, b.Index)
	writeString(buf, b.PreviousHash)
	binary.Write(buf, binary.LittleEndian, b.Timestamp)

	binary.Write(buf, binary.LittleEndian, uint32(len(b.Transactions)))
	for _, tx := range b.Transactions {
		tx.encode(buf)
	}

	return buf.Bytes()
}

func hashWithNonce(hasher digest.Hasher, prefix []byte, nonce uint64) string {
	data := make([]byte, len(prefix)+8)
	copy(data, prefix)
	binary.LittleEndian.PutUint64(data[len(prefix):], nonce)
	return hex.EncodeToString(hasher.Sum(data))
}

// ComputeHash calculates the hash from the current field values. It never
// consults the cached Hash field.
func (b *Block) ComputeHash() string {
	return hashWithNonce(b.hasher, b.headerPrefix(), b.Nonce)
}

// MeetsDifficulty reports whether the stored hash starts with difficulty
// hex zeros
func (b *Block) MeetsDifficulty(difficulty int) bool {
	if difficulty < 0 || difficulty > len(b.Hash) {
		return false
	}
	return strings.HasPrefix(b.Hash, strings.Repeat("0", difficulty))
}

// Mine performs proof-of-work on the block by incrementing the nonce until
// the hash has difficulty leading hex zeros. The search is deterministic for
// a given block state. On cancellation or when the iteration cap is hit the
// block keeps the last nonce it tried.
func (b *Block) Mine(ctx context.Context, difficulty int, opts MineOptions) error {
	if difficulty < 0 || difficulty > 2*b.hasher.Size() {
		return fmt.Errorf("%w: %d", ErrInvalidDifficulty, difficulty)
	}

	prefix := b.headerPrefix()
	var tried uint64
	for !b.MeetsDifficulty(difficulty) {
		if opts.MaxIterations > 0 && tried >= opts.MaxIterations {
			return fmt.Errorf("%w: %d nonces at difficulty %d", ErrIterationLimit, tried, difficulty)
		}
		if opts.CheckEvery > 0 && tried%opts.CheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrMiningCancelled, err)
			}
		}

		b.Nonce++
		b.Hash = hashWithNonce(b.hasher, prefix, b.Nonce)
		tried++
	}

	return nil
}

// BalanceContribution sums the effect of this block's transactions on address
func (b *Block) BalanceContribution(address string) int64 {
	var balance int64
	for _, tx := range b.Transactions {
		balance += tx.BalanceContribution(address)
	}
	return balance
}

// IsValid checks every transaction signature and that the stored hash
// matches the current contents. It does not re-check proof-of-work.
func (b *Block) IsValid() bool {
	if b.hasher == nil || len(b.Transactions) == 0 {
		return false
	}
	for _, tx := range b.Transactions {
		if ok, err := tx.IsValid(); err != nil || !ok {
			return false
		}
	}
	return b.Hash == b.ComputeHash()
}

// validWith is IsValid with every signature and the block hash checked
// against suite, ignoring whatever suite the contents were built with
func (b *Block) validWith(suite *Suite) bool {
	if suite == nil || suite.Hasher == nil || len(b.Transactions) == 0 {
		return false
	}
	for _, tx := range b.Transactions {
		if tx == nil {
			return false
		}
		if ok, err := tx.verifyWith(suite); err != nil || !ok {
			return false
		}
	}
	return b.Hash == hashWithNonce(suite.Hasher, b.headerPrefix(), b.Nonce)
}
