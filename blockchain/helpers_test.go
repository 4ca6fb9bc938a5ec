package blockchain

import (
	"bytes"
	"testing"
	"time"

	"github.com/yourusername/nqtcoin/digest"
	"github.com/yourusername/nqtcoin/keys"
)

// fakeClock returns a settable instant so block and transaction
// timestamps are reproducible
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(GenesisTimestamp).Add(24 * time.Hour)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testSuite(clock *fakeClock) *Suite {
	s := NewSuite(digest.Default(), keys.Default())
	s.Clock = clock.Now
	return s
}

func seedKey(t *testing.T, scheme keys.Scheme, b byte) keys.KeyPair {
	t.Helper()
	kp, err := scheme.KeyFromSeed(bytes.Repeat([]byte{b}, keys.SeedSize))
	if err != nil {
		t.Fatalf("KeyFromSeed(%#x) failed: %v", b, err)
	}
	return kp
}

type fixture struct {
	bc     *Blockchain
	suite  *Suite
	clock  *fakeClock
	mint   keys.KeyPair
	holder keys.KeyPair
	params Params
}

// newFixture creates a low difficulty ledger whose genesis supply belongs
// to holder
func newFixture(t *testing.T, tweak func(*Params), opts ...Option) *fixture {
	t.Helper()

	clock := newFakeClock()
	suite := testSuite(clock)
	mint := seedKey(t, suite.Scheme, 0x01)
	holder := seedKey(t, suite.Scheme, 0x02)

	params := DefaultParams()
	params.Difficulty = 1
	params.MinimumDifficulty = 1
	params.AdjustmentInterval = 1000
	params.GenesisSupply = 100
	params.GenesisHolder = holder.Address()
	if tweak != nil {
		tweak(&params)
	}

	bc, err := NewBlockchain(params, suite, mint, opts...)
	if err != nil {
		t.Fatalf("NewBlockchain() failed: %v", err)
	}
	return &fixture{bc: bc, suite: suite, clock: clock, mint: mint, holder: holder, params: params}
}

// transfer builds a transaction from kp to dest signed by kp
func (f *fixture) transfer(t *testing.T, kp keys.KeyPair, dest string, amount int64) *Transaction {
	t.Helper()
	tx, err := NewTransaction(f.suite, WalletSource(kp.Address()), dest, amount)
	if err != nil {
		t.Fatalf("NewTransaction() failed: %v", err)
	}
	if err := tx.Sign(kp); err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	return tx
}
