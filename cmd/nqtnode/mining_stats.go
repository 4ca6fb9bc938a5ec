package main

import (
	"sync"
	"time"

	"github.com/yourusername/nqtcoin/blockchain"
)

// BlockEntry represents a block mined by this node
type BlockEntry struct {
	Timestamp  time.Time
	Height     int64
	Hash       string
	Miner      string
	Nonces     uint64
	Difficulty int
	Elapsed    time.Duration
}

// DifficultyEntry tracks difficulty changes
type DifficultyEntry struct {
	Timestamp  time.Time
	Height     int64
	Difficulty int
}

// MiningStats tracks the proof-of-work done by the driver
type MiningStats struct {
	mu           sync.RWMutex
	BlocksFound  int64
	TotalNonces  uint64
	TotalTime    time.Duration
	BlockHistory []BlockEntry
	Difficulties []DifficultyEntry
}

// NewMiningStats creates a new statistics tracker starting at difficulty
func NewMiningStats(difficulty int) *MiningStats {
	return &MiningStats{
		BlockHistory: make([]BlockEntry, 0, 16),
		Difficulties: []DifficultyEntry{{Timestamp: time.Now(), Difficulty: difficulty}},
	}
}

// AddBlock records a mined block. The nonce search starts at zero, so the
// final nonce is the number of hashes tried.
func (ms *MiningStats) AddBlock(block *blockchain.Block, miner string, difficulty int, elapsed time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.BlocksFound++
	ms.TotalNonces += block.Nonce
	ms.TotalTime += elapsed

	ms.BlockHistory = append(ms.BlockHistory, BlockEntry{
		Timestamp:  time.UnixMilli(block.Timestamp),
		Height:     block.Index,
		Hash:       block.Hash,
		Miner:      miner,
		Nonces:     block.Nonce,
		Difficulty: difficulty,
		Elapsed:    elapsed,
	})
}

// RecordDifficulty appends an entry when difficulty differs from the last
// one seen. It reports whether anything changed.
func (ms *MiningStats) RecordDifficulty(height int64, difficulty int) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if n := len(ms.Difficulties); n > 0 && ms.Difficulties[n-1].Difficulty == difficulty {
		return false
	}
	ms.Difficulties = append(ms.Difficulties, DifficultyEntry{
		Timestamp:  time.Now(),
		Height:     height,
		Difficulty: difficulty,
	})
	return true
}

// Hashrate returns the average hashes per second over all mined blocks
func (ms *MiningStats) Hashrate() float64 {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.hashrate()
}

// hashrate expects ms.mu to be held
func (ms *MiningStats) hashrate() float64 {
	if ms.TotalTime <= 0 {
		return 0
	}
	return float64(ms.TotalNonces) / ms.TotalTime.Seconds()
}

// GetStats returns current statistics
func (ms *MiningStats) GetStats() map[string]interface{} {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	history := make([]int, 0, len(ms.Difficulties))
	for _, d := range ms.Difficulties {
		history = append(history, d.Difficulty)
	}

	return map[string]interface{}{
		"blocks_found":       ms.BlocksFound,
		"total_nonces":       ms.TotalNonces,
		"total_time":         ms.TotalTime,
		"hashrate":           ms.hashrate(),
		"difficulty_history": history,
	}
}
