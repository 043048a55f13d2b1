// Package state is the core API for the node and implements the business
// rules for mining, persisting, and replacing the chain.
package state

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
	"github.com/ardanlabs/powchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage"
)

// EventHandler defines a function that is called when events
// occur in the processing of the chain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and peer synchronization.
type Worker interface {
	Shutdown()
	Sync()
	SignalStartMining()
	SignalCancelMining() (done func())
	SignalShareChain()
}

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	Host       string
	Storage    storage.Storage
	KnownPeers *peer.Set
	Miner      block.Miner
	EvHandler  EventHandler
}

// State manages the chain, its storage, and the data waiting to be mined.
type State struct {
	mu sync.Mutex

	host      string
	evHandler EventHandler
	client    http.Client

	knownPeers *peer.Set
	storage    storage.Storage
	mempool    *mempool.Mempool
	chain      *chain.Chain

	Worker Worker
}

// New constructs the node state, loading and validating any chain already
// held by the storage.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewSet()
	}

	miner := cfg.Miner
	if miner.EvHandler == nil {
		miner.EvHandler = block.EventHandler(ev)
	}

	s := State{
		host:       cfg.Host,
		evHandler:  ev,
		client:     http.Client{Timeout: 10 * time.Second},
		knownPeers: knownPeers,
		storage:    cfg.Storage,
		mempool:    mempool.New(),
		chain:      chain.New(chain.EventHandler(ev), chain.WithMiner(miner)),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &s, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {

	// Make sure the database is properly closed.
	defer func() {
		s.storage.Close()
	}()

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// load reads the persisted chain. An empty storage is seeded with the
// genesis block, otherwise the stored chain must be valid to be adopted.
func (s *State) load() error {
	blocks, err := storage.ReadAll(s.storage)
	if err != nil {
		return fmt.Errorf("reading stored chain: %w", err)
	}

	s.evHandler("state: load: stored blocks[%d]", len(blocks))

	if len(blocks) == 0 {
		if err := s.storage.Write(0, block.Genesis()); err != nil {
			return fmt.Errorf("writing genesis: %w", err)
		}
		return nil
	}

	if err := chain.Validate(blocks); err != nil {
		return fmt.Errorf("stored chain is invalid: %w", err)
	}

	if len(blocks) > 1 {
		if err := s.chain.Replace(blocks); err != nil {
			return fmt.Errorf("adopting stored chain: %w", err)
		}
	}

	return nil
}
