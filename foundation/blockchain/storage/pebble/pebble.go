// Package pebble implements the ability to read and write blocks to a
// Pebble key value store keyed by block number.
package pebble

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// Key prefixes simulating column families.
var (
	prefixBlocks    = []byte("blk:")
	prefixBlocksEnd = []byte("blk;")
)

// Pebble represents the serialization implementation for reading and
// storing blocks in a Pebble database. This implements the storage.Storage
// interface.
type Pebble struct {
	mu    sync.RWMutex
	db    *pebble.DB
	count uint64
}

// New opens or creates the database at the specified path.
func New(dbPath string) (*Pebble, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, errors.Wrap(err, "create database directory")
	}

	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open pebble %q", dbPath)
	}

	p := Pebble{db: db}

	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: prefixBlocks,
		UpperBound: prefixBlocksEnd,
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "new iterator")
	}
	for iter.First(); iter.Valid(); iter.Next() {
		p.count++
	}
	if err := iter.Close(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "count blocks")
	}

	return &p, nil
}

// Close releases the database.
func (p *Pebble) Close() error {
	return p.db.Close()
}

// Write takes the specified block and stores it under its number.
func (p *Pebble) Write(num uint64, b block.Block) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if num != p.count {
		return errors.Wrapf(storage.ErrOutOfOrder, "got %d, exp %d", num, p.count)
	}

	data, err := json.Marshal(b)
	if err != nil {
		return errors.Wrapf(err, "marshal blk[%d]", num)
	}

	if err := p.db.Set(key(num), data, pebble.Sync); err != nil {
		return errors.Wrapf(err, "set blk[%d]", num)
	}
	p.count++

	return nil
}

// GetBlock locates and returns the contents of the specified block by number.
func (p *Pebble) GetBlock(num uint64) (block.Block, error) {
	value, closer, err := p.db.Get(key(num))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return block.Block{}, storage.ErrNotFound
		}
		return block.Block{}, errors.Wrapf(err, "get blk[%d]", num)
	}
	defer closer.Close()

	// The value is only valid until the closer is called and Unmarshal
	// copies what it keeps.
	var b block.Block
	if err := json.Unmarshal(value, &b); err != nil {
		return block.Block{}, errors.Wrapf(err, "unmarshal blk[%d]", num)
	}

	return b, nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 0.
func (p *Pebble) ForEach() storage.Iterator {
	return &pebbleIterator{db: p}
}

// Reset deletes every block from the database.
func (p *Pebble) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.db.DeleteRange(prefixBlocks, prefixBlocksEnd, pebble.Sync); err != nil {
		return errors.Wrap(err, "delete blocks")
	}
	p.count = 0

	return nil
}

// key returns the database key for a block number. Big endian keeps the
// keys sorted in block order.
func key(num uint64) []byte {
	k := make([]byte, len(prefixBlocks)+8)
	copy(k, prefixBlocks)
	binary.BigEndian.PutUint64(k[len(prefixBlocks):], num)
	return k
}

// =============================================================================

// pebbleIterator walks the blocks in number order. This implements the
// storage Iterator interface.
type pebbleIterator struct {
	db      *Pebble
	current uint64
	eoc     bool
}

// Next retrieves the next block from the database.
func (pi *pebbleIterator) Next() (block.Block, error) {
	if pi.eoc {
		return block.Block{}, storage.ErrEndOfChain
	}

	b, err := pi.db.GetBlock(pi.current)
	if errors.Is(err, storage.ErrNotFound) {
		pi.eoc = true
		return block.Block{}, storage.ErrEndOfChain
	}
	pi.current++

	return b, err
}

// Done returns the end of chain value.
func (pi *pebbleIterator) Done() bool {
	return pi.eoc
}
