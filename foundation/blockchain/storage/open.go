package storage

import "fmt"

// Engine names supported by the node configuration.
const (
	EngineMemory  = "memory"
	EngineDisk    = "disk"
	EngineLevelDB = "leveldb"
	EnginePebble  = "pebble"
)

// Opener constructs a storage engine for the specified path.
type Opener func(path string) (Storage, error)

// Openers maps engine names to their constructors. The engines package
// holds the full set so this package does not depend on every engine.
type Openers map[string]Opener

// Open constructs the named storage engine.
func (o Openers) Open(engine string, path string) (Storage, error) {
	open, exists := o[engine]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, engine)
	}

	return open(path)
}
