// Package config loads node settings from defaults, an optional YAML file
// and NQT_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/nqtcoin/blockchain"
	"github.com/yourusername/nqtcoin/digest"
	"github.com/yourusername/nqtcoin/keys"
)

// EnvPrefix is prepended to every environment override, so
// consensus.difficulty is read from NQT_CONSENSUS_DIFFICULTY
const EnvPrefix = "NQT"

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete node configuration
type Config struct {
	Consensus ConsensusConfig `mapstructure:"consensus" yaml:"consensus"`
	Crypto    CryptoConfig    `mapstructure:"crypto" yaml:"crypto"`
	Mining    MiningConfig    `mapstructure:"mining" yaml:"mining"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// ConsensusConfig mirrors blockchain.Params
type ConsensusConfig struct {
	Difficulty         int           `mapstructure:"difficulty" yaml:"difficulty"`
	MinimumDifficulty  int           `mapstructure:"minimum_difficulty" yaml:"minimum_difficulty"`
	MiningReward       int64         `mapstructure:"mining_reward" yaml:"mining_reward"`
	AdjustmentInterval int64         `mapstructure:"adjustment_interval" yaml:"adjustment_interval"`
	BlockTime          time.Duration `mapstructure:"block_time" yaml:"block_time"`
	GenesisSupply      int64         `mapstructure:"genesis_supply" yaml:"genesis_supply"`
	// GenesisHolder overrides the address derived from
	// crypto.holder_passphrase
	GenesisHolder    string `mapstructure:"genesis_holder" yaml:"genesis_holder"`
	GenesisTimestamp int64  `mapstructure:"genesis_timestamp" yaml:"genesis_timestamp"`
}

// CryptoConfig selects the suite and the passphrases the mint and the
// genesis holder keys are derived from
type CryptoConfig struct {
	Scheme           string `mapstructure:"scheme" yaml:"scheme"`
	Hash             string `mapstructure:"hash" yaml:"hash"`
	MintPassphrase   string `mapstructure:"mint_passphrase" yaml:"mint_passphrase"`
	MintSalt         string `mapstructure:"mint_salt" yaml:"mint_salt"`
	HolderPassphrase string `mapstructure:"holder_passphrase" yaml:"holder_passphrase"`
}

// MiningConfig bounds each proof-of-work search
type MiningConfig struct {
	CheckEvery    uint64        `mapstructure:"check_every" yaml:"check_every"`
	MaxIterations uint64        `mapstructure:"max_iterations" yaml:"max_iterations"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type LogConfig struct {
	Level    string `mapstructure:"level" yaml:"level"`
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
}

// Default returns the built-in configuration
func Default() *Config {
	params := blockchain.DefaultParams()
	mine := blockchain.DefaultMineOptions()

	return &Config{
		Consensus: ConsensusConfig{
			Difficulty:         params.Difficulty,
			MinimumDifficulty:  params.MinimumDifficulty,
			MiningReward:       params.MiningReward,
			AdjustmentInterval: params.AdjustmentInterval,
			BlockTime:          params.BlockTime,
			GenesisSupply:      params.GenesisSupply,
			GenesisTimestamp:   params.GenesisTimestamp,
		},
		Crypto: CryptoConfig{
			Scheme:           keys.Secp256k1,
			Hash:             digest.SHA256,
			MintPassphrase:   "nqtcoin mint",
			MintSalt:         "nqtcoin-genesis",
			HolderPassphrase: "nqtcoin genesis holder",
		},
		Mining: MiningConfig{
			CheckEvery: mine.CheckEvery,
			Timeout:    time.Minute,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("consensus.difficulty", cfg.Consensus.Difficulty)
	v.SetDefault("consensus.minimum_difficulty", cfg.Consensus.MinimumDifficulty)
	v.SetDefault("consensus.mining_reward", cfg.Consensus.MiningReward)
	v.SetDefault("consensus.adjustment_interval", cfg.Consensus.AdjustmentInterval)
	v.SetDefault("consensus.block_time", cfg.Consensus.BlockTime)
	v.SetDefault("consensus.genesis_supply", cfg.Consensus.GenesisSupply)
	v.SetDefault("consensus.genesis_holder", cfg.Consensus.GenesisHolder)
	v.SetDefault("consensus.genesis_timestamp", cfg.Consensus.GenesisTimestamp)

	v.SetDefault("crypto.scheme", cfg.Crypto.Scheme)
	v.SetDefault("crypto.hash", cfg.Crypto.Hash)
	v.SetDefault("crypto.mint_passphrase", cfg.Crypto.MintPassphrase)
	v.SetDefault("crypto.mint_salt", cfg.Crypto.MintSalt)
	v.SetDefault("crypto.holder_passphrase", cfg.Crypto.HolderPassphrase)

	v.SetDefault("mining.check_every", cfg.Mining.CheckEvery)
	v.SetDefault("mining.max_iterations", cfg.Mining.MaxIterations)
	v.SetDefault("mining.timeout", cfg.Mining.Timeout)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.encoding", cfg.Log.Encoding)
}

// Load reads the configuration. An empty path skips the file and uses only
// defaults and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write encodes cfg as YAML
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// Validate checks the settings that can be checked before any key exists
func (c *Config) Validate() error {
	if _, err := keys.Lookup(c.Crypto.Scheme); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := digest.Lookup(c.Crypto.Hash); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Crypto.MintPassphrase == "" {
		return fmt.Errorf("%w: crypto.mint_passphrase is empty", ErrInvalidConfig)
	}
	if len(c.Crypto.MintSalt) < 8 {
		return fmt.Errorf("%w: crypto.mint_salt must be at least 8 bytes", ErrInvalidConfig)
	}
	if c.Consensus.GenesisHolder == "" && c.Crypto.HolderPassphrase == "" {
		return fmt.Errorf("%w: set consensus.genesis_holder or crypto.holder_passphrase", ErrInvalidConfig)
	}
	if c.Mining.Timeout < 0 {
		return fmt.Errorf("%w: mining.timeout is negative", ErrInvalidConfig)
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.encoding %q", ErrInvalidConfig, c.Log.Encoding)
	}

	// Genesis holder is filled in later, so check with a placeholder
	params := c.Params("placeholder")
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Params converts the consensus section. holder is used when
// consensus.genesis_holder is empty.
func (c *Config) Params(holder string) blockchain.Params {
	if c.Consensus.GenesisHolder != "" {
		holder = c.Consensus.GenesisHolder
	}
	return blockchain.Params{
		Difficulty:         c.Consensus.Difficulty,
		MinimumDifficulty:  c.Consensus.MinimumDifficulty,
		MiningReward:       c.Consensus.MiningReward,
		AdjustmentInterval: c.Consensus.AdjustmentInterval,
		BlockTime:          c.Consensus.BlockTime,
		GenesisSupply:      c.Consensus.GenesisSupply,
		GenesisHolder:      holder,
		GenesisTimestamp:   c.Consensus.GenesisTimestamp,
	}
}

// Suite resolves the configured hash function and signature scheme
func (c *Config) Suite() (*blockchain.Suite, error) {
	scheme, err := keys.Lookup(c.Crypto.Scheme)
	if err != nil {
		return nil, err
	}
	hasher, err := digest.Lookup(c.Crypto.Hash)
	if err != nil {
		return nil, err
	}
	return blockchain.NewSuite(hasher, scheme), nil
}

// MineOptions converts the mining section
func (c *Config) MineOptions() blockchain.MineOptions {
	return blockchain.MineOptions{
		CheckEvery:    c.Mining.CheckEvery,
		MaxIterations: c.Mining.MaxIterations,
	}
}

// MintKey derives the mint identity from its passphrase
func (c *Config) MintKey(scheme keys.Scheme) (keys.KeyPair, error) {
	kp, err := keys.FromPassphrase(scheme, c.Crypto.MintPassphrase, c.Crypto.MintSalt)
	if err != nil {
		return nil, fmt.Errorf("derive mint key: %w", err)
	}
	return kp, nil
}

// HolderKey derives the genesis holder identity. It fails when no holder
// passphrase is configured.
func (c *Config) HolderKey(scheme keys.Scheme) (keys.KeyPair, error) {
	kp, err := keys.FromPassphrase(scheme, c.Crypto.HolderPassphrase, c.Crypto.MintSalt)
	if err != nil {
		return nil, fmt.Errorf("derive genesis holder key: %w", err)
	}
	return kp, nil
}
