// Package block provides the block type, the genesis block, and the proof
// of work mining that produces new blocks.
package block

import (
	"context"
	"strings"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/hasher"
)

// MineRate is the default target time between two blocks.
const MineRate = time.Second

// EventHandler defines a function that is called when events occur while
// mining a block.
type EventHandler func(v string, args ...any)

// =============================================================================

// Block represents a unit of data linked to its predecessor by hash.
type Block struct {
	Timestamp  int64   `json:"timestamp"`  // Milliseconds since epoch the block was mined.
	LastHash   string  `json:"lastHash"`   // Hash of the previous block in the chain.
	Hash       string  `json:"hash"`       // Hash of this block's own content.
	Data       Payload `json:"data"`       // Data stored in the block.
	Nonce      uint64  `json:"nonce"`      // Value identified to solve the hash solution.
	Difficulty uint    `json:"difficulty"` // Number of leading 0's needed in the hash.
}

// Genesis returns the fixed first block of every chain.
func Genesis() Block {
	return Block{
		Timestamp:  1,
		LastHash:   "-----",
		Hash:       "hash-one",
		Data:       Payload("[]"),
		Nonce:      0,
		Difficulty: 3,
	}
}

// ComputeHash returns the hash for the block's content. The Hash field
// itself is not part of the calculation.
func (b Block) ComputeHash() string {
	return hasher.Hash(b.Timestamp, b.LastHash, b.Data, b.Nonce, b.Difficulty)
}

// IsSolved reports if the block's hash has the number of leading zeros its
// difficulty demands.
func (b Block) IsSolved() bool {
	return isHashSolved(b.Difficulty, b.Hash)
}

// Equal reports if every field of the two blocks match.
func (b Block) Equal(other Block) bool {
	return b.Timestamp == other.Timestamp &&
		b.LastHash == other.LastHash &&
		b.Hash == other.Hash &&
		b.Data.Equal(other.Data) &&
		b.Nonce == other.Nonce &&
		b.Difficulty == other.Difficulty
}

// Clone returns a copy of the block that shares no memory with the original.
func (b Block) Clone() Block {
	if b.Data != nil {
		b.Data = append(Payload(nil), b.Data...)
	}

	return b
}

// =============================================================================

// Miner performs the proof of work for new blocks.
type Miner struct {
	MineRate  time.Duration    // Target time between blocks, MineRate when zero.
	Now       func() time.Time // Clock used for timestamps, time.Now when nil.
	EvHandler EventHandler     // Optional progress reporting.
}

// Mine constructs a new block on top of lastBlock using the default miner.
func Mine(ctx context.Context, lastBlock Block, data Payload) (Block, error) {
	return Miner{}.Mine(ctx, lastBlock, data)
}

// Mine constructs a new block on top of lastBlock and performs the work to
// find a nonce that solves the proof of work puzzle. The timestamp, and with
// it the difficulty, is taken again on every attempt so the time spent mining
// is reflected in the block. The search only stops early when the context
// is cancelled.
func (m Miner) Mine(ctx context.Context, lastBlock Block, data Payload) (Block, error) {
	ev := m.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	mineRate := m.MineRate
	if mineRate <= 0 {
		mineRate = MineRate
	}

	now := m.Now
	if now == nil {
		now = time.Now
	}

	ev("block: Mine: MINING: started: lastHash[%s]", lastBlock.Hash)

	nb := Block{
		LastHash: lastBlock.Hash,
		Data:     data,
	}

	for {
		if ctx.Err() != nil {
			ev("block: Mine: MINING: CANCELLED: attempts[%d]", nb.Nonce)
			return Block{}, ctx.Err()
		}

		nb.Nonce++
		nb.Timestamp = now().UnixMilli()
		nb.Difficulty = AdjustDifficulty(lastBlock, nb.Timestamp, mineRate)
		nb.Hash = nb.ComputeHash()

		if nb.Nonce%1_000_000 == 0 {
			ev("block: Mine: MINING: attempts[%d]", nb.Nonce)
		}

		if nb.IsSolved() {
			ev("block: Mine: MINING: SOLVED: difficulty[%d]: attempts[%d]: hash[%s]", nb.Difficulty, nb.Nonce, nb.Hash)
			return nb, nil
		}
	}
}

// =============================================================================

// isHashSolved checks the hash to make sure it complies with the POW rules.
// We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint, hash string) bool {
	return strings.HasPrefix(hash, strings.Repeat("0", int(difficulty)))
}
