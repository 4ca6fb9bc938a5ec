package blockchain

import "errors"

// Construction and admission errors. They are returned wrapped with context,
// so callers should match them with errors.Is.
var (
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrKeyMismatch         = errors.New("key pair does not match the source address")
	ErrMissingSignature    = errors.New("transaction is not signed")
	ErrInvalidSignature    = errors.New("invalid transaction signature")
	ErrInvalidIndex        = errors.New("block index must not be negative")
	ErrEmptyBlock          = errors.New("block has no transactions")
	ErrMissingPreviousHash = errors.New("block is missing its previous hash")
	ErrInvalidRewardAmount = errors.New("mint transaction amount differs from the mining reward")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPendingOverCommit   = errors.New("pending transactions exceed the source balance")
)

// Mining and setup errors
var (
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrMiningCancelled   = errors.New("mining cancelled")
	ErrIterationLimit    = errors.New("nonce iteration limit reached")
	ErrInvalidParams     = errors.New("invalid consensus parameters")
	ErrNoSuite           = errors.New("no crypto suite attached")
)
