package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/ardanlabs/powchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage"
)

// ErrNoData is returned when a block is requested to be mined and there is
// no data waiting in the mempool.
var ErrNoData = errors.New("no data in mempool")

// =============================================================================

// SubmitData adds the data to the mempool and signals the worker to mine it.
func (s *State) SubmitData(data block.Payload) mempool.Entry {
	e := s.mempool.Upsert(data)
	s.evHandler("state: SubmitData: entry[%s]: data[%s]", e.ID, e.Data)

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return e
}

// MineNewBlock mines the oldest data in the mempool into a new block and
// writes it to storage. Mining can be cancelled through the context.
func (s *State) MineNewBlock(ctx context.Context) (block.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: check mempool count")

	e, ok := s.mempool.Next()
	if !ok {
		return block.Block{}, ErrNoData
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: perform POW: entry[%s]", e.ID)

	// The block only joins the chain once it is in storage, so a failed
	// write leaves both at the same length.
	var num uint64
	write := func(n uint64, blocks []block.Block) error {
		num = n
		if err := s.storage.Write(n, blocks[0]); err != nil {
			return fmt.Errorf("writing blk[%d]: %w", n, err)
		}
		return nil
	}

	nb, err := s.chain.AppendWith(ctx, e.Data, write)
	if err != nil {
		return block.Block{}, err
	}

	s.mempool.Delete(e.ID)

	s.evHandler("state: MineNewBlock: MINING: blk[%d]: hash[%s]", num, nb.Hash)

	return nb, nil
}

// ReplaceChain adopts the candidate chain when it is longer and valid and
// rewrites storage to match. Any mining in progress is cancelled first so
// the replacement does not wait on the proof of work.
func (s *State) ReplaceChain(candidate []block.Block) error {
	s.evHandler("state: ReplaceChain: started: len[%d]", len(candidate))
	defer s.evHandler("state: ReplaceChain: completed")

	// If a mining operation is running it needs to stop immediately. The G
	// running it will not start another until done is called.
	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		defer func() {
			s.evHandler("state: ReplaceChain: signal mining to continue")
			done()
		}()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Storage is rewritten before the chain is swapped. If the rewrite fails
	// the current chain is put back so storage matches memory again.
	current := s.chain.Blocks()
	write := func(_ uint64, blocks []block.Block) error {
		err := storage.WriteAll(s.storage, blocks)
		if err == nil {
			return nil
		}

		if rerr := storage.WriteAll(s.storage, current); rerr != nil {
			s.evHandler("state: ReplaceChain: ERROR: restoring storage: %s", rerr)
			return fmt.Errorf("writing replaced chain: %w: restoring: %w", err, rerr)
		}

		return fmt.Errorf("writing replaced chain: %w", err)
	}

	return s.chain.ReplaceWith(candidate, write)
}
