package state_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

// fastMiner keeps the difficulty at its floor so mining is quick.
func fastMiner() block.Miner {
	var mu sync.Mutex
	now := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	return block.Miner{
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()

			now = now.Add(2 * block.MineRate)
			return now
		},
	}
}

func newState(t *testing.T, strg storage.Storage) *state.State {
	s, err := state.New(state.Config{
		Host:    "localhost:9080",
		Storage: strg,
		Miner:   fastMiner(),
		EvHandler: func(v string, args ...any) {
			t.Logf(v, args...)
		},
	})
	ifErrFailNow(t, err)

	return s
}

func mine(t *testing.T, s *state.State, data ...string) {
	for _, d := range data {
		s.SubmitData(block.MustPayload(d))
		_, err := s.MineNewBlock(context.Background())
		ifErrFailNow(t, err)
	}
}

// =============================================================================

func Test_MineAndReload(t *testing.T) {
	strg, err := memory.New()
	ifErrFailNow(t, err)

	t.Log("Given the need to mine blocks and keep them in storage.")
	{
		s := newState(t, strg)

		if _, err := s.MineNewBlock(context.Background()); !errors.Is(err, state.ErrNoData) {
			t.Fatalf("\t%s\tShould not mine without data: got %v", failed, err)
		}
		t.Logf("\t%s\tShould not mine without data.", success)

		mine(t, s, "Bears", "bees", "honey")

		if s.RetrieveChainLength() != 4 {
			t.Fatalf("\t%s\tShould have 4 blocks: got %d", failed, s.RetrieveChainLength())
		}
		t.Logf("\t%s\tShould have 4 blocks.", success)

		if s.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould remove mined data from the mempool: got %d", failed, s.QueryMempoolLength())
		}
		t.Logf("\t%s\tShould remove mined data from the mempool.", success)

		stored, err := storage.ReadAll(strg)
		ifErrFailNow(t, err)
		if len(stored) != 4 {
			t.Fatalf("\t%s\tShould persist every block: got %d", failed, len(stored))
		}
		t.Logf("\t%s\tShould persist every block.", success)

		reloaded := newState(t, strg)
		if !reloaded.RetrieveLatestBlock().Equal(s.RetrieveLatestBlock()) {
			t.Fatalf("\t%s\tShould load the same chain from storage.", failed)
		}
		t.Logf("\t%s\tShould load the same chain from storage.", success)
	}
}

func Test_LoadInvalid(t *testing.T) {
	strg, err := memory.New()
	ifErrFailNow(t, err)

	bad := block.Genesis()
	bad.Hash = "tampered"
	ifErrFailNow(t, strg.Write(0, bad))

	_, err = state.New(state.Config{Storage: strg})
	if !errors.Is(err, chain.ErrGenesisMismatch) {
		t.Fatalf("Should refuse to load an invalid stored chain: got %v", err)
	}
}

func Test_ReplaceChain(t *testing.T) {
	t.Log("Given the need to replace the node's chain.")
	{
		strgA, err := memory.New()
		ifErrFailNow(t, err)
		a := newState(t, strgA)
		mine(t, a, "mine")

		strgB, err := memory.New()
		ifErrFailNow(t, err)
		b := newState(t, strgB)
		mine(t, b, "Bears", "bees", "honey")

		if err := b.ReplaceChain(a.RetrieveBlocks()); !errors.Is(err, chain.ErrChainTooShort) {
			t.Fatalf("\t%s\tShould reject a shorter chain: got %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a shorter chain.", success)

		if err := a.ReplaceChain(b.RetrieveBlocks()); err != nil {
			t.Fatalf("\t%s\tShould adopt a longer valid chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould adopt a longer valid chain.", success)

		stored, err := storage.ReadAll(strgA)
		ifErrFailNow(t, err)
		if len(stored) != 4 || !stored[3].Equal(b.RetrieveLatestBlock()) {
			t.Fatalf("\t%s\tShould rewrite storage with the new chain: got %d blocks", failed, len(stored))
		}
		t.Logf("\t%s\tShould rewrite storage with the new chain.", success)

		mine(t, a, "more")
		if err := a.ValidateChain(); err != nil {
			t.Fatalf("\t%s\tShould keep mining on the adopted chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould keep mining on the adopted chain.", success)
	}
}

// failingStorage fails the next writes it is told to fail.
type failingStorage struct {
	*memory.Memory
	mu    sync.Mutex
	fails int
}

func (fs *failingStorage) failNext(n int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.fails = n
}

func (fs *failingStorage) Write(num uint64, b block.Block) error {
	fs.mu.Lock()
	fail := fs.fails > 0
	if fail {
		fs.fails--
	}
	fs.mu.Unlock()

	if fail {
		return errors.New("disk full")
	}

	return fs.Memory.Write(num, b)
}

func Test_MineWriteFailure(t *testing.T) {
	mem, err := memory.New()
	ifErrFailNow(t, err)
	strg := &failingStorage{Memory: mem}

	t.Log("Given the need to keep the chain and storage in step when a write fails.")
	{
		s := newState(t, strg)
		s.SubmitData(block.MustPayload("Bears"))

		strg.failNext(1)
		if _, err := s.MineNewBlock(context.Background()); err == nil {
			t.Fatalf("\t%s\tShould report the failed write.", failed)
		}
		t.Logf("\t%s\tShould report the failed write.", success)

		if s.RetrieveChainLength() != 1 {
			t.Fatalf("\t%s\tShould not add the unwritten block to the chain: got %d", failed, s.RetrieveChainLength())
		}
		t.Logf("\t%s\tShould not add the unwritten block to the chain.", success)

		if s.QueryMempoolLength() != 1 {
			t.Fatalf("\t%s\tShould keep the data in the mempool: got %d", failed, s.QueryMempoolLength())
		}
		t.Logf("\t%s\tShould keep the data in the mempool.", success)

		for i := 0; i < 3; i++ {
			s.SubmitData(block.MustPayload(fmt.Sprintf("retry %d", i)))
		}
		for i := 0; i < 4; i++ {
			if _, err := s.MineNewBlock(context.Background()); err != nil {
				t.Fatalf("\t%s\tShould mine once storage recovers: %v", failed, err)
			}
		}
		t.Logf("\t%s\tShould mine once storage recovers.", success)

		stored, err := storage.ReadAll(strg)
		ifErrFailNow(t, err)
		if len(stored) != 5 || s.RetrieveChainLength() != 5 || s.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould hold the same blocks in memory and storage: stored %d, chain %d, pool %d", failed, len(stored), s.RetrieveChainLength(), s.QueryMempoolLength())
		}
		if !stored[4].Equal(s.RetrieveLatestBlock()) {
			t.Fatalf("\t%s\tShould hold the same blocks in memory and storage.", failed)
		}
		t.Logf("\t%s\tShould hold the same blocks in memory and storage.", success)
	}
}

func Test_ReplaceWriteFailure(t *testing.T) {
	t.Log("Given the need to keep the current chain when a replacement can't be written.")
	{
		longer, err := memory.New()
		ifErrFailNow(t, err)
		src := newState(t, longer)
		mine(t, src, "Bears", "bees", "honey")

		mem, err := memory.New()
		ifErrFailNow(t, err)
		strg := &failingStorage{Memory: mem}
		s := newState(t, strg)
		mine(t, s, "mine")
		current := s.RetrieveBlocks()

		strg.failNext(1)
		if err := s.ReplaceChain(src.RetrieveBlocks()); err == nil {
			t.Fatalf("\t%s\tShould report the failed write.", failed)
		}
		t.Logf("\t%s\tShould report the failed write.", success)

		if s.RetrieveChainLength() != 2 || !s.RetrieveLatestBlock().Equal(current[1]) {
			t.Fatalf("\t%s\tShould keep the current chain: got %d blocks", failed, s.RetrieveChainLength())
		}
		t.Logf("\t%s\tShould keep the current chain.", success)

		stored, err := storage.ReadAll(strg)
		ifErrFailNow(t, err)
		if len(stored) != 2 || !stored[1].Equal(current[1]) {
			t.Fatalf("\t%s\tShould restore storage to the current chain: got %d blocks", failed, len(stored))
		}
		t.Logf("\t%s\tShould restore storage to the current chain.", success)

		if err := s.ReplaceChain(src.RetrieveBlocks()); err != nil {
			t.Fatalf("\t%s\tShould adopt the chain once storage recovers: %v", failed, err)
		}
		t.Logf("\t%s\tShould adopt the chain once storage recovers.", success)
	}
}

func Test_NetRequestPeerChain(t *testing.T) {
	strgA, err := memory.New()
	ifErrFailNow(t, err)
	peerState := newState(t, strgA)
	mine(t, peerState, "Bears", "bees")

	h := func(w http.ResponseWriter, r *http.Request) {
		var v any
		switch r.URL.Path {
		case "/v1/node/status":
			v = peerState.RetrieveStatus()
		case "/v1/node/blocks":
			v = peerState.RetrieveBlocks()
		default:
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(v)
	}
	srv := httptest.NewServer(http.HandlerFunc(h))
	defer srv.Close()

	pr := peer.New(strings.TrimPrefix(srv.URL, "http://"))

	strgB, err := memory.New()
	ifErrFailNow(t, err)
	s := newState(t, strgB)
	s.AddKnownPeer(pr)

	ps, err := s.NetRequestPeerStatus(pr)
	ifErrFailNow(t, err)
	if ps.Length != 3 {
		t.Fatalf("Should get the peer's chain length: got %d", ps.Length)
	}

	blocks, err := s.NetRequestPeerChain(pr)
	ifErrFailNow(t, err)

	if err := s.ReplaceChain(blocks); err != nil {
		t.Fatalf("Should adopt the chain received from the peer: %v", err)
	}

	if s.RetrieveLatestBlock().Hash != ps.LatestBlockHash {
		t.Fatalf("Should hold the peer's latest block.")
	}
}
