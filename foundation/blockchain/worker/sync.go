package worker

// syncOperations handles running consensus on a timer or when signaled.
func (w *Worker) syncOperations() {
	w.evHandler("worker: syncOperations: G started")
	defer w.evHandler("worker: syncOperations: G completed")

	for {
		select {
		case <-w.tick():
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.startSync:
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.shut:
			w.evHandler("worker: syncOperations: received shut signal")
			return
		}
	}
}

// Sync runs consensus with the known peers so this node catches up with
// the longest valid chain.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	replaced, err := w.state.Resolve(w.ctx)
	if err != nil {
		w.evHandler("worker: sync: resolve: ERROR: %s", err)
		return
	}

	w.evHandler("worker: sync: replaced[%t]: length[%d]", replaced, w.state.RetrieveChainLength())
}
