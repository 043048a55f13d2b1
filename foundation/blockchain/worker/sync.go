package worker

import "github.com/ardanlabs/powchain/foundation/blockchain/peer"

// maxPeerFailures is the number of syncs in a row a peer can fail to answer
// before it is dropped from the known peers. A dropped peer is added back
// when it announces itself again.
const maxPeerFailures = 3

// Sync updates the peer list and adopts the chain of any peer that holds a
// longer one. The chain replacement rules decide if the peer's chain is
// valid enough to be adopted.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: sync: requestPeerStatus: %s: ERROR: %s", pr.Host, err)
			w.peerFailed(pr)
			continue
		}
		w.peerAnswered(pr)

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)

		// Let the peer know this node is available to chat.
		if err := w.state.NetRequestAddPeer(pr); err != nil {
			w.evHandler("worker: sync: requestAddPeer: %s: ERROR: %s", pr.Host, err)
		}

		// If this peer has a longer chain, try to adopt it.
		if peerStatus.Length > w.state.RetrieveChainLength() {
			w.evHandler("worker: sync: requestPeerChain: %s: length[%d]", pr.Host, peerStatus.Length)

			blocks, err := w.state.NetRequestPeerChain(pr)
			if err != nil {
				w.evHandler("worker: sync: requestPeerChain: %s: ERROR: %s", pr.Host, err)
				continue
			}

			if err := w.state.ReplaceChain(blocks); err != nil {
				w.evHandler("worker: sync: replaceChain: %s: REJECTED: %s", pr.Host, err)
			}
		}
	}
}

// peerFailed records a failed sync with the peer and drops the peer once it
// has failed too many times in a row.
func (w *Worker) peerFailed(pr peer.Peer) {
	w.failuresMu.Lock()
	defer w.failuresMu.Unlock()

	w.failures[pr]++
	if w.failures[pr] < maxPeerFailures {
		return
	}

	delete(w.failures, pr)
	w.state.RemoveKnownPeer(pr)
	w.evHandler("worker: sync: removed peer-node %s: failures[%d]", pr, maxPeerFailures)
}

// peerAnswered clears the failures recorded for the peer.
func (w *Worker) peerAnswered(pr peer.Peer) {
	w.failuresMu.Lock()
	defer w.failuresMu.Unlock()

	delete(w.failures, pr)
}
