package public

import "github.com/ardanlabs/powchain/foundation/blockchain/block"

// mineRequest is the data a client submits to be mined into a block.
type mineRequest struct {
	Data block.Payload `json:"data" validate:"required"`
}

type mineResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Queued int    `json:"queued"`
}

type validation struct {
	Valid  bool   `json:"valid"`
	Length int    `json:"length"`
	Error  string `json:"error,omitempty"`
}
