// Package storagetest provides a conformance test every storage engine runs.
package storagetest

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// Blocks returns a fixed set of blocks to store. Only their values matter
// to storage, they are not a valid chain.
func Blocks() []block.Block {
	return []block.Block{
		block.Genesis(),
		{Timestamp: 1000, LastHash: "hash-one", Hash: "00ab", Data: block.MustPayload("Bears"), Nonce: 7, Difficulty: 2},
		{Timestamp: 2000, LastHash: "00ab", Hash: "0cd1", Data: block.MustPayload([]string{"bees", "honey"}), Nonce: 9, Difficulty: 1},
		{Timestamp: 3000, LastHash: "0cd1", Hash: "0ef2", Data: block.MustPayload(map[string]any{"a": 1.5, "b": "c"}), Nonce: 11, Difficulty: 1},
	}
}

// Run exercises the storage.Storage behavior against the specified engine.
// The reopen function must return a new value over the same data.
func Run(t *testing.T, strg storage.Storage, reopen func() storage.Storage) {
	blocks := Blocks()

	t.Log("Given the need to store and read back blocks.")
	{
		for i, b := range blocks {
			if err := strg.Write(uint64(i), b); err != nil {
				t.Fatalf("\t%s\tShould be able to write blk[%d]: %v", failed, i, err)
			}
		}
		t.Logf("\t%s\tShould be able to write the blocks.", success)

		if err := strg.Write(uint64(len(blocks)+1), blocks[1]); !errors.Is(err, storage.ErrOutOfOrder) {
			t.Fatalf("\t%s\tShould reject a block out of order: got %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block out of order.", success)

		b, err := strg.GetBlock(2)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to get blk[2]: %v", failed, err)
		}
		if !b.Equal(blocks[2]) {
			t.Logf("\t%s\tgot: %+v", failed, b)
			t.Logf("\t%s\texp: %+v", failed, blocks[2])
			t.Fatalf("\t%s\tShould get back the exact block.", failed)
		}
		t.Logf("\t%s\tShould get back the exact block.", success)

		if _, err := strg.GetBlock(uint64(len(blocks))); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("\t%s\tShould not find a missing block: got %v", failed, err)
		}
		t.Logf("\t%s\tShould not find a missing block.", success)

		if reopen != nil {
			if err := strg.Close(); err != nil {
				t.Fatalf("\t%s\tShould be able to close the storage: %v", failed, err)
			}
			strg = reopen()
			t.Logf("\t%s\tShould be able to reopen the storage.", success)
		}

		got, err := storage.ReadAll(strg)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read all blocks: %v", failed, err)
		}
		if !equal(got, blocks) {
			t.Fatalf("\t%s\tShould read back every block in order: got %d blocks", failed, len(got))
		}
		t.Logf("\t%s\tShould read back every block in order.", success)

		if err := storage.WriteAll(strg, blocks[:2]); err != nil {
			t.Fatalf("\t%s\tShould be able to rewrite the blocks: %v", failed, err)
		}
		got, err = storage.ReadAll(strg)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read all blocks: %v", failed, err)
		}
		if !equal(got, blocks[:2]) {
			t.Fatalf("\t%s\tShould only hold the rewritten blocks: got %d blocks", failed, len(got))
		}
		t.Logf("\t%s\tShould only hold the rewritten blocks.", success)

		if err := strg.Write(2, blocks[2]); err != nil {
			t.Fatalf("\t%s\tShould be able to append after a rewrite: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to append after a rewrite.", success)

		if err := strg.Close(); err != nil {
			t.Fatalf("\t%s\tShould be able to close the storage: %v", failed, err)
		}
	}
}

func equal(a, b []block.Block) bool {
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
