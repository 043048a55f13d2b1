package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/engines"
	"github.com/spf13/cobra"
)

var (
	file     string
	dbEngine string
	dbPath   string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate a chain locally.",
	Long: `Validate a chain locally. The chain is read from a JSON file, from a
node's storage, or fetched from the node when neither is specified.`,
	RunE: verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&file, "file", "f", "", "Path to a JSON file holding the chain.")
	verifyCmd.Flags().StringVar(&dbEngine, "engine", "", "Storage engine of a stopped node: disk, leveldb or pebble.")
	verifyCmd.Flags().StringVar(&dbPath, "path", "zblock/blocks", "Storage path of a stopped node.")
}

func verifyRun(cmd *cobra.Command, args []string) error {
	blocks, err := loadChain()
	if err != nil {
		return err
	}

	result := struct {
		Valid  bool   `json:"valid"`
		Length int    `json:"length"`
		Error  string `json:"error,omitempty"`
	}{
		Valid:  true,
		Length: len(blocks),
	}

	if err := chain.Validate(blocks); err != nil {
		result.Valid = false
		result.Error = err.Error()
	}

	if err := render(cmd.OutOrStdout(), result); err != nil {
		return err
	}

	if !result.Valid {
		return fmt.Errorf("chain is not valid")
	}

	return nil
}

func loadChain() ([]block.Block, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}

		var blocks []block.Block
		if err := json.Unmarshal(data, &blocks); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", file, err)
		}
		return blocks, nil

	case dbEngine != "":
		strg, err := engines.Open(dbEngine, dbPath)
		if err != nil {
			return nil, err
		}
		defer strg.Close()

		return storage.ReadAll(strg)
	}

	var blocks []block.Block
	if err := send(http.MethodGet, "/v1/blocks", nil, &blocks); err != nil {
		return nil, err
	}

	return blocks, nil
}
