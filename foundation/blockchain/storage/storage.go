// Package storage defines the behavior required to persist the blocks of a
// chain and provides helpers to read and write a whole chain.
package storage

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
)

// Set of errors shared by the storage engines.
var (
	ErrOutOfOrder   = errors.New("block is out of order")
	ErrNotFound     = errors.New("block does not exist")
	ErrEndOfChain   = errors.New("end of chain")
	ErrUnknownStore = errors.New("unknown storage engine")
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blocks of a chain.
// Blocks are addressed by their position, genesis being number 0.
type Storage interface {
	Write(num uint64, b block.Block) error
	GetBlock(num uint64) (block.Block, error)
	ForEach() Iterator
	Reset() error
	Close() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (block.Block, error)
	Done() bool
}

// =============================================================================

// ReadAll reads every block from storage in order.
func ReadAll(strg Storage) ([]block.Block, error) {
	var blocks []block.Block

	iter := strg.ForEach()
	for b, err := iter.Next(); !iter.Done(); b, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}

	return blocks, nil
}

// WriteAll clears the storage and writes the specified blocks in order.
func WriteAll(strg Storage, blocks []block.Block) error {
	if err := strg.Reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	for i, b := range blocks {
		if err := strg.Write(uint64(i), b); err != nil {
			return fmt.Errorf("write blk[%d]: %w", i, err)
		}
	}

	return nil
}
