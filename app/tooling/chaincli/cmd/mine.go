package cmd

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine <data>",
	Short: "Submit data to be mined into a block.",
	Long: `Submit data to be mined into a block. The data is sent as is when it is
valid JSON, otherwise it is sent as a JSON string.`,
	Args: cobra.MinimumNArgs(1),
	RunE: mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
}

func mineRun(cmd *cobra.Command, args []string) error {
	data, err := toPayload(strings.Join(args, " "))
	if err != nil {
		return err
	}

	req := struct {
		Data block.Payload `json:"data"`
	}{
		Data: data,
	}

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Queued int    `json:"queued"`
	}
	if err := send(http.MethodPost, "/v1/mine", req, &resp); err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), resp)
}

// toPayload treats the argument as JSON when it parses as JSON.
func toPayload(arg string) (block.Payload, error) {
	if json.Valid([]byte(arg)) {
		var p block.Payload
		if err := p.UnmarshalJSON([]byte(arg)); err != nil {
			return nil, err
		}
		return p, nil
	}

	return block.NewPayload(arg)
}
