// Package chain maintains an ordered sequence of blocks that starts with the
// genesis block, and the rules for replacing it with a longer valid chain.
package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
)

// EventHandler defines a function that is called when events occur in the
// processing of the chain.
type EventHandler func(v string, args ...any)

// Option represents a functional option for constructing a chain.
type Option func(c *Chain)

// WithMiner sets the miner used to append new blocks.
func WithMiner(miner block.Miner) Option {
	return func(c *Chain) {
		c.miner = miner
	}
}

// Commit is called with the blocks being added while the chain is locked. If
// it returns an error the chain is left unchanged.
type Commit func(num uint64, blocks []block.Block) error

// =============================================================================

// Chain is the single owner of a sequence of blocks. Append and Replace are
// the only writers and are safe for concurrent use.
type Chain struct {
	mu        sync.RWMutex
	blocks    []block.Block
	miner     block.Miner
	evHandler EventHandler
}

// New constructs a chain holding only the genesis block.
func New(evHandler EventHandler, opts ...Option) *Chain {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	c := Chain{
		blocks:    []block.Block{block.Genesis()},
		evHandler: ev,
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.miner.EvHandler == nil {
		c.miner.EvHandler = block.EventHandler(ev)
	}

	return &c
}

// Append mines a new block with the specified data on top of the current
// tip and adds it to the chain. Mining happens without holding the lock so
// readers are not blocked. If the tip moved while mining, the block is mined
// again against the new tip. An error is only returned when the context is
// cancelled.
func (c *Chain) Append(ctx context.Context, data block.Payload) (block.Block, error) {
	return c.AppendWith(ctx, data, nil)
}

// AppendWith is like Append but the new block is only added once commit
// succeeds. An error from commit is returned and the chain keeps its tip.
func (c *Chain) AppendWith(ctx context.Context, data block.Payload, commit Commit) (block.Block, error) {
	for {
		tip := c.Tip()

		nb, err := c.miner.Mine(ctx, tip, data)
		if err != nil {
			return block.Block{}, err
		}

		num, ok, err := c.appendIfTip(tip, nb, commit)
		if err != nil {
			c.evHandler("chain: Append: blk[%d]: commit failed: %s", num, err)
			return block.Block{}, err
		}

		if ok {
			c.evHandler("chain: Append: blk[%d]: hash[%s]", num, nb.Hash)
			return nb, nil
		}

		c.evHandler("chain: Append: tip changed while mining, mining again")
	}
}

// Replace adopts the candidate blocks when they form a longer valid chain.
// The existing chain is left untouched when the candidate is rejected and
// the returned error says why: ErrChainTooShort or ErrChainInvalid.
func (c *Chain) Replace(candidate []block.Block) error {
	return c.ReplaceWith(candidate, nil)
}

// ReplaceWith is like Replace but the candidate is only adopted once commit
// succeeds. Commit receives the whole candidate starting at number 0.
func (c *Chain) ReplaceWith(candidate []block.Block, commit Commit) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(candidate) <= len(c.blocks) {
		c.evHandler("chain: Replace: REJECTED: %s: got %d, have %d", ErrChainTooShort, len(candidate), len(c.blocks))
		return fmt.Errorf("%w: got %d, have %d", ErrChainTooShort, len(candidate), len(c.blocks))
	}

	if err := Validate(candidate); err != nil {
		c.evHandler("chain: Replace: REJECTED: %s: %s", ErrChainInvalid, err)
		return fmt.Errorf("%w: %w", ErrChainInvalid, err)
	}

	blocks := cloneBlocks(candidate)

	if commit != nil {
		if err := commit(0, blocks); err != nil {
			c.evHandler("chain: Replace: commit failed: %s", err)
			return err
		}
	}

	c.evHandler("chain: Replace: replacing chain: from len[%d]: to len[%d]", len(c.blocks), len(candidate))
	c.blocks = blocks

	return nil
}

// At returns the block at the specified position.
func (c *Chain) At(num int) (block.Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if num < 0 || num >= len(c.blocks) {
		return block.Block{}, false
	}

	return c.blocks[num].Clone(), true
}

// Blocks returns a copy of the blocks in the chain.
func (c *Chain) Blocks() []block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return cloneBlocks(c.blocks)
}

// Tip returns the last block in the chain.
func (c *Chain) Tip() block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[len(c.blocks)-1].Clone()
}

// Len returns the number of blocks in the chain.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// Validate validates the blocks currently held by the chain.
func (c *Chain) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Validate(c.blocks)
}

// =============================================================================

// appendIfTip adds the block only if tip is still the last block and the
// commit succeeds. It returns the position of the new block.
func (c *Chain) appendIfTip(tip block.Block, nb block.Block, commit Commit) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.blocks[len(c.blocks)-1].Equal(tip) {
		return 0, false, nil
	}

	num := len(c.blocks)
	if commit != nil {
		if err := commit(uint64(num), []block.Block{nb.Clone()}); err != nil {
			return num, false, err
		}
	}

	c.blocks = append(c.blocks, nb.Clone())
	return num, true, nil
}

func cloneBlocks(blocks []block.Block) []block.Block {
	out := make([]block.Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}

	return out
}
