package blockchain

import (
	"time"

	"github.com/yourusername/nqtcoin/digest"
	"github.com/yourusername/nqtcoin/keys"
)

// Suite bundles the hash function, the signature scheme and the clock that
// transactions, blocks and the ledger are built with. It is passed
// explicitly; there is no package level default.
type Suite struct {
	Hasher digest.Hasher
	Scheme keys.Scheme

	// Clock stamps new transactions and blocks. Nil means time.Now.
	Clock func() time.Time
}

// NewSuite creates a suite that reads the wall clock
func NewSuite(hasher digest.Hasher, scheme keys.Scheme) *Suite {
	return &Suite{Hasher: hasher, Scheme: scheme}
}

// Now returns the current suite time in Unix milliseconds
func (s *Suite) Now() int64 {
	if s.Clock == nil {
		return time.Now().UnixMilli()
	}
	return s.Clock().UnixMilli()
}
