package blockchain

import (
	"fmt"

	"github.com/yourusername/nqtcoin/keys"
)

// createGenesisBlock builds the genesis block: a single mint signed issuance
// of the genesis supply to the genesis holder. Everything is stamped with the
// fixed genesis timestamp and the block is not mined, so the result only
// depends on the parameters and the mint identity.
func createGenesisBlock(suite *Suite, params Params, mint keys.KeyPair) (*Block, error) {
	coinbase, err := newTransactionAt(suite, MintSource(mint.Address()), params.GenesisHolder, params.GenesisSupply, params.GenesisTimestamp)
	if err != nil {
		return nil, fmt.Errorf("genesis coinbase: %w", err)
	}
	if err := coinbase.Sign(mint); err != nil {
		return nil, fmt.Errorf("sign genesis coinbase: %w", err)
	}

	return NewBlock(suite.Hasher, 0, params.GenesisTimestamp, []*Transaction{coinbase}, "")
}

// sameGenesis reports whether got is structurally identical to the reference
// genesis block want. Signatures are compared by verification with suite
// rather than by bytes because some schemes sign with fresh randomness.
func sameGenesis(got, want *Block, suite *Suite) bool {
	if got.Index != want.Index ||
		got.Timestamp != want.Timestamp ||
		got.PreviousHash != want.PreviousHash ||
		got.Nonce != want.Nonce ||
		len(got.Transactions) != len(want.Transactions) {
		return false
	}

	for i, tx := range got.Transactions {
		ref := want.Transactions[i]
		if tx == nil {
			return false
		}
		if tx.Source != ref.Source ||
			tx.Dest != ref.Dest ||
			tx.Amount != ref.Amount ||
			tx.Timestamp != ref.Timestamp {
			return false
		}
	}

	return got.validWith(suite)
}
