package cmd

import (
	"net/http"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/spf13/cobra"
)

var latest bool

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Print the chain held by the node.",
	RunE:  blocksRun,
}

func init() {
	rootCmd.AddCommand(blocksCmd)
	blocksCmd.Flags().BoolVarP(&latest, "latest", "l", false, "Only print the latest block.")
}

func blocksRun(cmd *cobra.Command, args []string) error {
	if latest {
		var blk block.Block
		if err := send(http.MethodGet, "/v1/blocks/latest", nil, &blk); err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), blk)
	}

	var blocks []block.Block
	if err := send(http.MethodGet, "/v1/blocks", nil, &blocks); err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), blocks)
}
