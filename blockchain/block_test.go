package blockchain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yourusername/nqtcoin/digest"
)

func signedBlockTxs(t *testing.T, suite *Suite) []*Transaction {
	t.Helper()
	alice := seedKey(t, suite.Scheme, 0x0a)
	bob := seedKey(t, suite.Scheme, 0x0b)

	var txs []*Transaction
	for _, amount := range []int64{3, 4} {
		tx, err := NewTransaction(suite, WalletSource(alice.Address()), bob.Address(), amount)
		if err != nil {
			t.Fatalf("NewTransaction() failed: %v", err)
		}
		if err := tx.Sign(alice); err != nil {
			t.Fatalf("Sign() failed: %v", err)
		}
		txs = append(txs, tx)
	}
	return txs
}

func TestNewBlock(t *testing.T) {
	suite := testSuite(newFakeClock())
	txs := signedBlockTxs(t, suite)

	tests := []struct {
		name     string
		index    int64
		txs      []*Transaction
		prevHash string
		wantErr  error
	}{
		{"genesis without previous hash", 0, txs, "", nil},
		{"regular block", 3, txs, "abcd", nil},
		{"negative index", -1, txs, "abcd", ErrInvalidIndex},
		{"no transactions", 1, nil, "abcd", ErrEmptyBlock},
		{"missing previous hash", 1, txs, "", ErrMissingPreviousHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBlock(suite.Hasher, tt.index, 42, tt.txs, tt.prevHash)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewBlock() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBlock() unexpected error = %v", err)
			}
			if b.Nonce != 0 {
				t.Errorf("Nonce = %d, want 0", b.Nonce)
			}
			if b.Hash != b.ComputeHash() {
				t.Error("initial hash does not match the fields")
			}
			if !b.IsValid() {
				t.Error("fresh block should be valid")
			}
		})
	}
}

func TestNewBlockCopiesTransactions(t *testing.T) {
	suite := testSuite(newFakeClock())
	txs := signedBlockTxs(t, suite)

	b, _ := NewBlock(suite.Hasher, 1, 42, txs, "abcd")
	txs[0] = txs[1]
	if b.Transactions[0] == b.Transactions[1] {
		t.Fatal("block shares its transaction slice with the caller")
	}
}

func TestMine(t *testing.T) {
	suite := testSuite(newFakeClock())

	for _, difficulty := range []int{0, 1, 2, 3} {
		b, _ := NewBlock(suite.Hasher, 1, 42, signedBlockTxs(t, suite), "abcd")
		if err := b.Mine(context.Background(), difficulty, DefaultMineOptions()); err != nil {
			t.Fatalf("Mine(%d) failed: %v", difficulty, err)
		}
		if !strings.HasPrefix(b.Hash, strings.Repeat("0", difficulty)) {
			t.Errorf("Mine(%d) hash %s lacks the zero prefix", difficulty, b.Hash)
		}
		if b.Hash != b.ComputeHash() {
			t.Errorf("Mine(%d) stored hash does not match the recomputed hash", difficulty)
		}
		if !b.MeetsDifficulty(difficulty) {
			t.Errorf("MeetsDifficulty(%d) = false after mining", difficulty)
		}
	}
}

func TestMineIsDeterministic(t *testing.T) {
	suite := testSuite(newFakeClock())
	txs := signedBlockTxs(t, suite)

	a, _ := NewBlock(suite.Hasher, 1, 42, txs, "abcd")
	b, _ := NewBlock(suite.Hasher, 1, 42, txs, "abcd")
	a.Mine(context.Background(), 2, DefaultMineOptions())
	b.Mine(context.Background(), 2, DefaultMineOptions())

	if a.Nonce != b.Nonce || a.Hash != b.Hash {
		t.Fatalf("same block mined to %d/%s and %d/%s", a.Nonce, a.Hash, b.Nonce, b.Hash)
	}
}

func TestMineStopsEarly(t *testing.T) {
	suite := testSuite(newFakeClock())

	t.Run("cancelled context", func(t *testing.T) {
		b, _ := NewBlock(suite.Hasher, 1, 42, signedBlockTxs(t, suite), "abcd")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := b.Mine(ctx, 64, MineOptions{CheckEvery: 16})
		if !errors.Is(err, ErrMiningCancelled) || !errors.Is(err, context.Canceled) {
			t.Fatalf("Mine() error = %v, want ErrMiningCancelled wrapping context.Canceled", err)
		}
	})

	t.Run("iteration cap", func(t *testing.T) {
		b, _ := NewBlock(suite.Hasher, 1, 42, signedBlockTxs(t, suite), "abcd")
		err := b.Mine(context.Background(), 64, MineOptions{MaxIterations: 100})
		if !errors.Is(err, ErrIterationLimit) {
			t.Fatalf("Mine() error = %v, want ErrIterationLimit", err)
		}
		if b.Nonce != 100 {
			t.Errorf("Nonce = %d, want 100", b.Nonce)
		}
		if b.Hash != b.ComputeHash() {
			t.Error("hash is stale after an aborted search")
		}
	})

	t.Run("invalid difficulty", func(t *testing.T) {
		b, _ := NewBlock(suite.Hasher, 1, 42, signedBlockTxs(t, suite), "abcd")
		for _, d := range []int{-1, 65} {
			if err := b.Mine(context.Background(), d, DefaultMineOptions()); !errors.Is(err, ErrInvalidDifficulty) {
				t.Errorf("Mine(%d) error = %v, want ErrInvalidDifficulty", d, err)
			}
		}
	})
}

func TestBlockIsValidDetectsTampering(t *testing.T) {
	suite := testSuite(newFakeClock())

	seal := func(t *testing.T) *Block {
		b, _ := NewBlock(suite.Hasher, 1, 42, signedBlockTxs(t, suite), "abcd")
		if err := b.Mine(context.Background(), 1, DefaultMineOptions()); err != nil {
			t.Fatalf("Mine() failed: %v", err)
		}
		if !b.IsValid() {
			t.Fatal("sealed block should be valid")
		}
		return b
	}

	t.Run("amount changed", func(t *testing.T) {
		b := seal(t)
		b.Transactions[0].Amount = 1000
		if b.IsValid() {
			t.Error("IsValid() = true after changing an amount")
		}
	})

	t.Run("transaction swapped for another validly signed one", func(t *testing.T) {
		b := seal(t)
		other := signedBlockTxs(t, suite)
		other[0].Amount = 1
		other[0].Sign(seedKey(t, suite.Scheme, 0x0a))
		b.Transactions[0] = other[0]
		if b.IsValid() {
			t.Error("IsValid() = true after swapping a transaction")
		}
	})

	t.Run("nonce changed", func(t *testing.T) {
		b := seal(t)
		b.Nonce++
		if b.IsValid() {
			t.Error("IsValid() = true with a stale hash")
		}
	})

	t.Run("unsigned transaction", func(t *testing.T) {
		tx, _ := NewTransaction(suite, WalletSource(seedKey(t, suite.Scheme, 0x0a).Address()), "bob", 1)
		b, _ := NewBlock(suite.Hasher, 1, 42, []*Transaction{tx}, "abcd")
		if b.IsValid() {
			t.Error("IsValid() = true with a missing signature")
		}
	})
}

func TestBlockHashDependsOnHasher(t *testing.T) {
	suite := testSuite(newFakeClock())
	txs := signedBlockTxs(t, suite)

	sha3, err := digest.Lookup(digest.SHA3_256)
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	a, _ := NewBlock(suite.Hasher, 1, 42, txs, "abcd")
	b, _ := NewBlock(sha3, 1, 42, txs, "abcd")
	if a.Hash == b.Hash {
		t.Fatal("different hash functions produced the same block hash")
	}
}

func TestBlockBalanceContribution(t *testing.T) {
	suite := testSuite(newFakeClock())
	txs := signedBlockTxs(t, suite)
	alice := txs[0].Source.Address
	bob := txs[0].Dest

	b, _ := NewBlock(suite.Hasher, 1, 42, txs, "abcd")
	if got := b.BalanceContribution(alice); got != -7 {
		t.Errorf("BalanceContribution(alice) = %d, want -7", got)
	}
	if got := b.BalanceContribution(bob); got != 7 {
		t.Errorf("BalanceContribution(bob) = %d, want 7", got)
	}
}
