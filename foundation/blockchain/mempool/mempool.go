// Package mempool maintains the data waiting to be mined into blocks.
package mempool

import (
	"sync"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/google/uuid"
)

// Entry represents data submitted for mining.
type Entry struct {
	ID       string        `json:"id"`
	Data     block.Payload `json:"data"`
	Received time.Time     `json:"received"`
}

// Mempool represents a first in, first out queue of data waiting to be
// mined, keyed by entry id.
type Mempool struct {
	mu    sync.RWMutex
	order []string
	pool  map[string]Entry
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]Entry),
	}
}

// Count returns the current number of entries in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.order)
}

// Upsert adds the data to the end of the queue and returns the new entry.
func (mp *Mempool) Upsert(data block.Payload) Entry {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	e := Entry{
		ID:       uuid.NewString(),
		Data:     data,
		Received: time.Now().UTC(),
	}

	mp.pool[e.ID] = e
	mp.order = append(mp.order, e.ID)

	return e
}

// Next returns the oldest entry without removing it. The entry is removed
// with Delete once it has been mined.
func (mp *Mempool) Next() (Entry, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if len(mp.order) == 0 {
		return Entry{}, false
	}

	return mp.pool[mp.order[0]], true
}

// Delete removes an entry from the mempool.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.pool[id]; !exists {
		return
	}

	delete(mp.pool, id)
	for i, oid := range mp.order {
		if oid == id {
			mp.order = append(mp.order[:i], mp.order[i+1:]...)
			break
		}
	}
}

// Copy returns the entries in the order they will be mined.
func (mp *Mempool) Copy() []Entry {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	entries := make([]Entry, len(mp.order))
	for i, id := range mp.order {
		entries[i] = mp.pool[id]
	}

	return entries
}
