package chain_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// fastMiner returns a miner whose clock jumps past the mine rate on every
// reading so the difficulty settles at 1 and the tests stay quick.
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

func newChain(t *testing.T, data ...string) *chain.Chain {
	c := chain.New(nil, chain.WithMiner(fastMiner()))

	for _, d := range data {
		if _, err := c.Append(context.Background(), block.MustPayload(d)); err != nil {
			t.Fatalf("Should be able to append %q: %v", d, err)
		}
	}

	return c
}

func equalBlocks(a, b []block.Block) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}

	return true
}

// =============================================================================

func Test_Append(t *testing.T) {
	t.Log("Given the need to add a block to a new chain.")
	{
		var events []string
		ev := func(v string, args ...any) {
			events = append(events, fmt.Sprintf(v, args...))
		}

		c := chain.New(ev)

		if c.Len() != 1 || !c.Tip().Equal(block.Genesis()) {
			t.Fatalf("\t%s\tShould start with the genesis block.", failed)
		}
		t.Logf("\t%s\tShould start with the genesis block.", success)

		data := block.MustPayload("foo bar")
		if _, err := c.Append(context.Background(), data); err != nil {
			t.Fatalf("\t%s\tShould be able to append a block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to append a block.", success)

		blocks := c.Blocks()
		if len(blocks) != 2 {
			t.Fatalf("\t%s\tShould have 2 blocks: got %d", failed, len(blocks))
		}
		t.Logf("\t%s\tShould have 2 blocks.", success)

		last := blocks[len(blocks)-1]
		if !last.Data.Equal(data) {
			t.Fatalf("\t%s\tShould store the data in the last block: got %s", failed, last.Data)
		}
		t.Logf("\t%s\tShould store the data in the last block.", success)

		if last.LastHash != block.Genesis().Hash {
			t.Fatalf("\t%s\tShould link the last block to genesis: got %s", failed, last.LastHash)
		}
		t.Logf("\t%s\tShould link the last block to genesis.", success)

		if !chain.IsValid(blocks) {
			t.Fatalf("\t%s\tShould be a valid chain: %v", failed, chain.Validate(blocks))
		}
		t.Logf("\t%s\tShould be a valid chain.", success)

		if len(events) == 0 {
			t.Fatalf("\t%s\tShould report events through the handler.", failed)
		}
		t.Logf("\t%s\tShould report events through the handler.", success)
	}
}

func Test_AppendConcurrent(t *testing.T) {
	c := newChain(t)

	const g = 4

	var wg sync.WaitGroup
	wg.Add(g)

	for i := 0; i < g; i++ {
		go func(i int) {
			defer wg.Done()
			if _, err := c.Append(context.Background(), block.MustPayload(i)); err != nil {
				t.Errorf("Should be able to append concurrently: %v", err)
			}
		}(i)
	}

	wg.Wait()

	if c.Len() != g+1 {
		t.Fatalf("Should grow by exactly one block per append: got %d, exp %d", c.Len(), g+1)
	}

	if err := c.Validate(); err != nil {
		t.Fatalf("Should keep a valid chain under concurrent appends: %v", err)
	}
}

func Test_Validate(t *testing.T) {
	type table struct {
		name   string
		tamper func(blocks []block.Block)
		err    error
	}

	tt := []table{
		{
			name:   "untouched",
			tamper: func(blocks []block.Block) {},
		},
		{
			name:   "fake-genesis",
			tamper: func(blocks []block.Block) { blocks[0] = block.Block{Data: block.MustPayload("fake-genesis")} },
			err:    chain.ErrGenesisMismatch,
		},
		{
			name:   "genesis-nonce",
			tamper: func(blocks []block.Block) { blocks[0].Nonce = 1 },
			err:    chain.ErrGenesisMismatch,
		},
		{
			name:   "last-hash",
			tamper: func(blocks []block.Block) { blocks[2].LastHash = "broken-lastHash" },
			err:    chain.ErrLastHashMismatch,
		},
		{
			name:   "data",
			tamper: func(blocks []block.Block) { blocks[2].Data = block.MustPayload("some-bad-and-evil-data") },
			err:    chain.ErrHashMismatch,
		},
		{
			name:   "hash",
			tamper: func(blocks []block.Block) { blocks[3].Hash = "some-fake-hash" },
			err:    chain.ErrHashMismatch,
		},
		{
			name:   "difficulty-jump",
			tamper: func(blocks []block.Block) { blocks[2].Difficulty += 5 },
			err:    chain.ErrDifficultyJump,
		},
		{
			name:   "difficulty-small",
			tamper: func(blocks []block.Block) { blocks[3].Difficulty++ },
			err:    chain.ErrHashMismatch,
		},
		{
			name: "no-work",
			tamper: func(blocks []block.Block) {
				blocks[3].Difficulty = blocks[2].Difficulty
				for blocks[3].Nonce = 0; ; blocks[3].Nonce++ {
					blocks[3].Hash = blocks[3].ComputeHash()
					if !blocks[3].IsSolved() {
						return
					}
				}
			},
			err: chain.ErrInsufficientWork,
		},
	}

	t.Log("Given the need to validate a chain of blocks.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling the %s chain.", testID, tst.name)
			{
				f := func(t *testing.T) {
					c := newChain(t, "Bears", "bees", "honey")

					blocks := c.Blocks()
					tst.tamper(blocks)

					err := chain.Validate(blocks)
					switch {
					case tst.err == nil && err != nil:
						t.Fatalf("\t%s\tTest %d:\tShould be a valid chain: %v", failed, testID, err)

					case tst.err != nil && !errors.Is(err, tst.err):
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.err)
						t.Fatalf("\t%s\tTest %d:\tShould reject the chain.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the expected validation result.", success, testID)

					if chain.IsValid(blocks) != (tst.err == nil) {
						t.Fatalf("\t%s\tTest %d:\tShould agree with Validate.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould agree with Validate.", success, testID)

					if err := c.Validate(); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould not change the chain when a copy is tampered: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould not change the chain when a copy is tampered.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_ValidateEmpty(t *testing.T) {
	if err := chain.Validate(nil); !errors.Is(err, chain.ErrEmptyChain) {
		t.Fatalf("Should reject an empty chain: got %v", err)
	}
}

func Test_ValidateMinedWithDefaultMiner(t *testing.T) {
	c := chain.New(nil)

	for _, d := range []string{"Bears", "bees", "honey"} {
		if _, err := c.Append(context.Background(), block.MustPayload(d)); err != nil {
			t.Fatalf("Should be able to append %q: %v", d, err)
		}
	}

	blocks := c.Blocks()
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Difficulty < 1 {
			t.Fatalf("Should never drop the difficulty below 1: blk[%d]", i)
		}
	}

	if err := chain.Validate(blocks); err != nil {
		t.Fatalf("Should be a valid chain: %v", err)
	}
}

func Test_Replace(t *testing.T) {
	type table struct {
		name      string
		candidate func(t *testing.T) []block.Block
		err       error
	}

	tt := []table{
		{
			name: "not-longer",
			candidate: func(t *testing.T) []block.Block {
				blocks := newChain(t).Blocks()
				blocks[0] = block.Block{Data: block.MustPayload("new chain")}
				return blocks
			},
			err: chain.ErrChainTooShort,
		},
		{
			name: "same-length",
			candidate: func(t *testing.T) []block.Block {
				return newChain(t, "other").Blocks()
			},
			err: chain.ErrChainTooShort,
		},
		{
			name: "longer-invalid",
			candidate: func(t *testing.T) []block.Block {
				blocks := newChain(t, "Bears", "bees", "honey").Blocks()
				blocks[2].Hash = "some-fake-hash"
				return blocks
			},
			err: chain.ErrChainInvalid,
		},
		{
			name: "longer-bad-genesis",
			candidate: func(t *testing.T) []block.Block {
				blocks := newChain(t, "Bears", "bees", "honey").Blocks()
				blocks[0].Hash = "hash-two"
				return blocks
			},
			err: chain.ErrGenesisMismatch,
		},
		{
			name: "longer-valid",
			candidate: func(t *testing.T) []block.Block {
				return newChain(t, "Bears", "bees", "honey").Blocks()
			},
		},
	}

	t.Log("Given the need to replace a chain with a candidate chain.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling the %s candidate.", testID, tst.name)
			{
				f := func(t *testing.T) {
					c := newChain(t, "mine")
					original := c.Blocks()
					candidate := tst.candidate(t)

					err := c.Replace(candidate)

					if tst.err != nil {
						if !errors.Is(err, tst.err) {
							t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
							t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.err)
							t.Fatalf("\t%s\tTest %d:\tShould reject the candidate.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould reject the candidate.", success, testID)

						if !equalBlocks(c.Blocks(), original) {
							t.Fatalf("\t%s\tTest %d:\tShould leave the chain unchanged.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould leave the chain unchanged.", success, testID)
						return
					}

					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould replace the chain: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould replace the chain.", success, testID)

					if !equalBlocks(c.Blocks(), candidate) {
						t.Fatalf("\t%s\tTest %d:\tShould hold the candidate blocks.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould hold the candidate blocks.", success, testID)

					candidate[1].Data = block.MustPayload("changed after replace")
					if err := c.Validate(); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould not share memory with the candidate: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould not share memory with the candidate.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_AppendCancel(t *testing.T) {
	miner := block.Miner{
		MineRate: time.Hour,
	}
	c := chain.New(nil, chain.WithMiner(miner))

	// Difficulty rises by one per block with an hour long mine rate. Mine up
	// to a difficulty that can't be solved in the time allowed.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	for {
		if _, err := c.Append(ctx, block.MustPayload("x")); err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("Should only fail on cancellation: got %v", err)
			}
			break
		}
	}

	if err := c.Validate(); err != nil {
		t.Fatalf("Should leave a valid chain behind after cancellation: %v", err)
	}
}
