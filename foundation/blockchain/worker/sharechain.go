package worker

// shareChainOperations handles sending the chain to peers after a block
// is mined.
func (w *Worker) shareChainOperations() {
	w.evHandler("worker: shareChainOperations: G started")
	defer w.evHandler("worker: shareChainOperations: G completed")

	for {
		select {
		case <-w.shareChain:
			if !w.isShutdown() {
				if err := w.state.NetSendChainToPeers(); err != nil {
					w.evHandler("worker: shareChainOperations: WARNING: %s", err)
				}
			}
		case <-w.shut:
			w.evHandler("worker: shareChainOperations: received shut signal")
			return
		}
	}
}
