package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the chain length, validity, and mempool of the node.",
	RunE:  statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) error {
	var validation struct {
		Valid  bool   `json:"valid"`
		Length int    `json:"length"`
		Error  string `json:"error,omitempty"`
	}
	if err := send(http.MethodGet, "/v1/chain/validate", nil, &validation); err != nil {
		return err
	}

	var mempool []struct {
		ID string `json:"id"`
	}
	if err := send(http.MethodGet, "/v1/mempool", nil, &mempool); err != nil {
		return err
	}

	status := struct {
		Length  int    `json:"length"`
		Valid   bool   `json:"valid"`
		Error   string `json:"error,omitempty"`
		Pending int    `json:"pending"`
	}{
		Length:  validation.Length,
		Valid:   validation.Valid,
		Error:   validation.Error,
		Pending: len(mempool),
	}

	return render(cmd.OutOrStdout(), status)
}
