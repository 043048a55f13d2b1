package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
)

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

func testChain(t *testing.T) []block.Block {
	nb, err := fastMiner().Mine(context.Background(), block.Genesis(), block.MustPayload("foo"))
	if err != nil {
		t.Fatalf("Should be able to mine a block: %v", err)
	}

	return []block.Block{block.Genesis(), nb}
}

func execute(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

// =============================================================================

func Test_Blocks(t *testing.T) {
	blocks := testChain(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(blocks)
	}))
	defer srv.Close()

	out, err := execute(t, "blocks", "--url", srv.URL, "--output", "yaml")
	if err != nil {
		t.Fatalf("Should be able to print the blocks: %v", err)
	}

	for _, exp := range []string{"hash: hash-one", "data: foo", "difficulty: 3"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("Should print %q in yaml: got\n%s", exp, out)
		}
	}
}

func Test_Mine(t *testing.T) {
	var got struct {
		Data json.RawMessage `json:"data"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"id":"1","status":"data added to mempool","queued":1}`))
	}))
	defer srv.Close()

	type table struct {
		name string
		args []string
		exp  string
	}

	tt := []table{
		{name: "text", args: []string{"foo", "bar"}, exp: `"foo bar"`},
		{name: "json", args: []string{`{"to": "bob"}`}, exp: `{"to":"bob"}`},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			args := append([]string{"mine", "--url", srv.URL, "--output", "json"}, tst.args...)
			if _, err := execute(t, args...); err != nil {
				t.Fatalf("Should be able to submit data: %v", err)
			}

			if string(got.Data) != tst.exp {
				t.Fatalf("Should send the data as %s: got %s", tst.exp, got.Data)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_VerifyFile(t *testing.T) {
	blocks := testChain(t)

	good := filepath.Join(t.TempDir(), "good.json")
	data, _ := json.MarshalIndent(blocks, "", "  ")
	if err := os.WriteFile(good, data, 0644); err != nil {
		t.Fatal(err)
	}

	blocks[1].Data = block.MustPayload("bar")
	bad := filepath.Join(t.TempDir(), "bad.json")
	data, _ = json.Marshal(blocks)
	if err := os.WriteFile(bad, data, 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "verify", "--output", "json", "--file", good)
	if err != nil {
		t.Fatalf("Should accept a valid chain: %v: %s", err, out)
	}

	out, err = execute(t, "verify", "--output", "json", "--file", bad)
	if err == nil {
		t.Fatalf("Should reject a tampered chain: %s", out)
	}
	if !strings.Contains(out, "hash does not match") {
		t.Fatalf("Should report why the chain is invalid: got\n%s", out)
	}
}
