// Package disk implements the ability to read and write blocks to disk,
// one JSON file per block.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage"
)

// Disk represents the serialization implementation for reading and storing
// blocks in their own separate files on disk. This implements the
// storage.Storage interface.
type Disk struct {
	mu     sync.RWMutex
	dbPath string
	count  uint64
}

// New constructs a Disk value for use, counting the blocks that are
// already on disk.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	d := Disk{dbPath: dbPath}
	for {
		_, err := os.Stat(d.getPath(d.count))
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, err
		}
		d.count++
	}

	return &d, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified block and stores it on disk in a file labeled
// with the block number.
func (d *Disk) Write(num uint64, b block.Block) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if num != d.count {
		return fmt.Errorf("%w: got %d, exp %d", storage.ErrOutOfOrder, num, d.count)
	}

	// Marshal the block for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}

	// Create a new file for this block and name it based on the block number.
	if err := os.WriteFile(d.getPath(num), data, 0600); err != nil {
		return err
	}
	d.count++

	return nil
}

// GetBlock searches the blockchain on disk to locate and return the
// contents of the specified block by number.
func (d *Disk) GetBlock(num uint64) (block.Block, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	// Open the block file for the specified number.
	f, err := os.Open(d.getPath(num))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return block.Block{}, storage.ErrNotFound
		}
		return block.Block{}, err
	}
	defer f.Close()

	// Decode the contents of the block.
	var b block.Block
	if err := json.NewDecoder(f).Decode(&b); err != nil {
		return block.Block{}, err
	}

	return b, nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 0.
func (d *Disk) ForEach() storage.Iterator {
	return &diskIterator{disk: d}
}

// Reset will clear out the blockchain on disk.
func (d *Disk) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for num := uint64(0); num < d.count; num++ {
		if err := os.Remove(d.getPath(num)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	d.count = 0

	return nil
}

// getPath forms the path to the specified block.
func (d *Disk) getPath(blockNum uint64) string {
	name := strconv.FormatUint(blockNum, 10)
	return filepath.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// diskIterator represents the iteration implementation for walking
// through and reading blocks on disk. This implements the storage
// Iterator interface.
type diskIterator struct {
	disk    *Disk  // Access to the disk storage API.
	current uint64 // Current block number being iterated over.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from disk.
func (di *diskIterator) Next() (block.Block, error) {
	if di.eoc {
		return block.Block{}, storage.ErrEndOfChain
	}

	b, err := di.disk.GetBlock(di.current)
	if errors.Is(err, storage.ErrNotFound) {
		di.eoc = true
		return block.Block{}, storage.ErrEndOfChain
	}
	di.current++

	return b, err
}

// Done returns the end of chain value.
func (di *diskIterator) Done() bool {
	return di.eoc
}
