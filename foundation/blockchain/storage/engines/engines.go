// Package engines binds the engine names a node can be configured with to
// the storage implementations.
package engines

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/storage"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/leveldb"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/pebble"
)

// Openers is the set of storage engines available.
var Openers = storage.Openers{
	storage.EngineMemory:  func(string) (storage.Storage, error) { return memory.New() },
	storage.EngineDisk:    func(path string) (storage.Storage, error) { return disk.New(path) },
	storage.EngineLevelDB: func(path string) (storage.Storage, error) { return leveldb.New(path) },
	storage.EnginePebble:  func(path string) (storage.Storage, error) { return pebble.New(path) },
}

// Open constructs the named storage engine at the specified path.
func Open(engine string, path string) (storage.Storage, error) {
	return Openers.Open(engine, path)
}
