package blockchain

import (
	"fmt"
	"time"
)

const (
	// NetworkName is the name of the cryptocurrency
	NetworkName = "NqtCoin"

	// CoinSymbol is the symbol of the cryptocurrency
	CoinSymbol = "NQT"

	// GenesisTimestamp is the fixed creation time of the genesis block
	// (2022-01-01 00:00:00 UTC, in milliseconds)
	GenesisTimestamp int64 = 1640995200000
)

// Params contains the consensus parameters of a ledger
type Params struct {
	// Difficulty is the initial number of leading hex zeros a block hash needs
	Difficulty int
	// MinimumDifficulty is the floor for difficulty adjustments
	MinimumDifficulty int
	// MiningReward is paid by the mint to whoever mines a block
	MiningReward int64
	// AdjustmentInterval is the number of blocks between difficulty adjustments
	AdjustmentInterval int64
	// BlockTime is the target time between blocks
	BlockTime time.Duration

	// GenesisSupply is issued to GenesisHolder in the genesis block
	GenesisSupply int64
	GenesisHolder string
	// GenesisTimestamp stamps the genesis block and its transaction
	GenesisTimestamp int64
}

// DefaultParams returns the default consensus parameters. GenesisHolder is
// left empty and must be set by the caller.
func DefaultParams() Params {
	return Params{
		Difficulty:         4,
		MinimumDifficulty:  1,
		MiningReward:       10,
		AdjustmentInterval: 10,
		BlockTime:          10 * time.Second,
		GenesisSupply:      1000000,
		GenesisTimestamp:   GenesisTimestamp,
	}
}

// Validate checks the parameters for consistency
func (p Params) Validate() error {
	switch {
	case p.MinimumDifficulty < 0:
		return fmt.Errorf("%w: minimum difficulty %d is negative", ErrInvalidParams, p.MinimumDifficulty)
	case p.Difficulty < p.MinimumDifficulty:
		return fmt.Errorf("%w: difficulty %d is below the minimum %d", ErrInvalidParams, p.Difficulty, p.MinimumDifficulty)
	case p.MiningReward <= 0:
		return fmt.Errorf("%w: mining reward must be positive", ErrInvalidParams)
	case p.AdjustmentInterval <= 0:
		return fmt.Errorf("%w: adjustment interval must be positive", ErrInvalidParams)
	case p.BlockTime <= 0:
		return fmt.Errorf("%w: block time must be positive", ErrInvalidParams)
	case p.GenesisSupply <= 0:
		return fmt.Errorf("%w: genesis supply must be positive", ErrInvalidParams)
	case p.GenesisHolder == "":
		return fmt.Errorf("%w: genesis holder is not set", ErrInvalidParams)
	}
	return nil
}
