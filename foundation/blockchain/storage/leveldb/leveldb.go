// Package leveldb implements the ability to read and write blocks to a
// LevelDB database keyed by block number.
package leveldb

import (
	"encoding/binary"
	"encoding/json"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage"
	"github.com/cockroachdb/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// prefix separates the block keys from anything else kept in the database.
var prefix = []byte("blk:")

// LevelDB represents the serialization implementation for reading and
// storing blocks in a LevelDB database. This implements the storage.Storage
// interface.
type LevelDB struct {
	mu    sync.RWMutex
	db    *leveldb.DB
	count uint64
}

// New opens or creates the database at the specified path.
func New(dbPath string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb %q", dbPath)
	}

	ldb := LevelDB{db: db}

	iter := db.NewIterator(util.BytesPrefix(prefix), nil)
	for iter.Next() {
		ldb.count++
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "count blocks")
	}

	return &ldb, nil
}

// Close releases the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Write takes the specified block and stores it under its number.
func (l *LevelDB) Write(num uint64, b block.Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if num != l.count {
		return errors.Wrapf(storage.ErrOutOfOrder, "got %d, exp %d", num, l.count)
	}

	data, err := json.Marshal(b)
	if err != nil {
		return errors.Wrapf(err, "marshal blk[%d]", num)
	}

	if err := l.db.Put(key(num), data, &opt.WriteOptions{Sync: true}); err != nil {
		return errors.Wrapf(err, "put blk[%d]", num)
	}
	l.count++

	return nil
}

// GetBlock locates and returns the contents of the specified block by number.
func (l *LevelDB) GetBlock(num uint64) (block.Block, error) {
	data, err := l.db.Get(key(num), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return block.Block{}, storage.ErrNotFound
		}
		return block.Block{}, errors.Wrapf(err, "get blk[%d]", num)
	}

	var b block.Block
	if err := json.Unmarshal(data, &b); err != nil {
		return block.Block{}, errors.Wrapf(err, "unmarshal blk[%d]", num)
	}

	return b, nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 0.
func (l *LevelDB) ForEach() storage.Iterator {
	return &levelIterator{db: l}
}

// Reset deletes every block from the database.
func (l *LevelDB) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var batch leveldb.Batch
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return errors.Wrap(err, "iterate blocks")
	}

	if err := l.db.Write(&batch, &opt.WriteOptions{Sync: true}); err != nil {
		return errors.Wrap(err, "delete blocks")
	}
	l.count = 0

	return nil
}

// key returns the database key for a block number. Big endian keeps the
// keys sorted in block order.
func key(num uint64) []byte {
	k := make([]byte, len(prefix)+8)
	copy(k, prefix)
	binary.BigEndian.PutUint64(k[len(prefix):], num)
	return k
}

// =============================================================================

// levelIterator walks the blocks in number order. This implements the
// storage Iterator interface.
type levelIterator struct {
	db      *LevelDB
	current uint64
	eoc     bool
}

// Next retrieves the next block from the database.
func (li *levelIterator) Next() (block.Block, error) {
	if li.eoc {
		return block.Block{}, storage.ErrEndOfChain
	}

	b, err := li.db.GetBlock(li.current)
	if errors.Is(err, storage.ErrNotFound) {
		li.eoc = true
		return block.Block{}, storage.ErrEndOfChain
	}
	li.current++

	return b, err
}

// Done returns the end of chain value.
func (li *levelIterator) Done() bool {
	return li.eoc
}
