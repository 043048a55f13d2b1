package chain

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
)

// Validate walks the candidate blocks and returns an error describing the
// first rule that is broken. The blocks are never modified.
//
// Besides the genesis, last hash, difficulty jump, and hash rules, Validate
// also requires every hash to meet its block's difficulty
// (ErrInsufficientWork). That rule goes beyond the linkage checks: it
// rejects chains whose hashes are consistent but were never mined. Honestly
// mined chains always pass it.
func Validate(blocks []block.Block) error {
	if len(blocks) == 0 {
		return ErrEmptyChain
	}

	if !blocks[0].Equal(block.Genesis()) {
		return ErrGenesisMismatch
	}

	for i := 1; i < len(blocks); i++ {
		prev, cur := blocks[i-1], blocks[i]

		if cur.LastHash != prev.Hash {
			return fmt.Errorf("blk[%d]: %w: got %s, exp %s", i, ErrLastHashMismatch, cur.LastHash, prev.Hash)
		}

		if absDiff(prev.Difficulty, cur.Difficulty) > 1 {
			return fmt.Errorf("blk[%d]: %w: parent %d, block %d", i, ErrDifficultyJump, prev.Difficulty, cur.Difficulty)
		}

		if hash := cur.ComputeHash(); hash != cur.Hash {
			return fmt.Errorf("blk[%d]: %w: got %s, exp %s", i, ErrHashMismatch, cur.Hash, hash)
		}

		if !cur.IsSolved() {
			return fmt.Errorf("blk[%d]: %w: difficulty %d, hash %s", i, ErrInsufficientWork, cur.Difficulty, cur.Hash)
		}
	}

	return nil
}

// IsValid reports if the candidate blocks form a valid chain.
func IsValid(blocks []block.Block) bool {
	return Validate(blocks) == nil
}

func absDiff(a, b uint) uint {
	if a > b {
		return a - b
	}
	return b - a
}
