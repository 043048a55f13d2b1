package state

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/block"
	"github.com/ardanlabs/powchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns the genesis block.
func (s *State) RetrieveGenesis() block.Block {
	return block.Genesis()
}

// RetrieveBlocks returns a copy of the chain.
func (s *State) RetrieveBlocks() []block.Block {
	return s.chain.Blocks()
}

// RetrieveBlock returns the block at the specified position, genesis being
// number 0.
func (s *State) RetrieveBlock(num int) (block.Block, bool) {
	return s.chain.At(num)
}

// RetrieveLatestBlock returns a copy of the current latest block.
func (s *State) RetrieveLatestBlock() block.Block {
	return s.chain.Tip()
}

// RetrieveChainLength returns the number of blocks in the chain.
func (s *State) RetrieveChainLength() int {
	return s.chain.Len()
}

// RetrieveMempool returns a copy of the mempool in mining order.
func (s *State) RetrieveMempool() []mempool.Entry {
	return s.mempool.Copy()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// ValidateChain re-validates the chain the node holds.
func (s *State) ValidateChain() error {
	return s.chain.Validate()
}

// RetrieveStatus returns the status reported to other nodes.
func (s *State) RetrieveStatus() peer.Status {
	return peer.Status{
		LatestBlockHash: s.chain.Tip().Hash,
		Length:          s.chain.Len(),
		KnownPeers:      s.knownPeers.Copy(""),
	}
}

// =============================================================================

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// AddKnownPeer provides the ability to add a new peer to the known peer
// list. The node's own host is never added.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	if pr.Match(s.host) {
		return false
	}

	return s.knownPeers.Add(pr)
}

// RemoveKnownPeer provides the ability to remove a peer from the known
// peer list.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}
