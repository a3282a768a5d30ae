package worker

import (
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// shareBlockOperations handles sharing newly mined blocks.
func (w *Worker) shareBlockOperations() {
	w.evHandler("worker: shareBlockOperations: G started")
	defer w.evHandler("worker: shareBlockOperations: G completed")

	for {
		select {
		case block := <-w.blockSharing:
			if !w.isShutdown() {
				w.runShareBlockOperation(block)
			}
		case <-w.shut:
			w.evHandler("worker: shareBlockOperations: received shut signal")
			return
		}
	}
}

// runShareBlockOperation sends a newly mined block to the known peers.
func (w *Worker) runShareBlockOperation(block database.Block) {
	w.evHandler("worker: runShareBlockOperation: started: blk[%d]", block.Index)
	defer w.evHandler("worker: runShareBlockOperation: completed: blk[%d]", block.Index)

	w.state.NetSendBlockToPeers(w.ctx, block)
}
