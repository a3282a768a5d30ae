// Package worker implements block sharing and chain syncing for the
// blockchain.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
)

// maxBlockShareRequests represents the max number of pending block share
// requests that can be outstanding before share requests are dropped. If the
// channel does become full, peers will catch up on the next consensus.
const maxBlockShareRequests = 100

// =============================================================================

// Worker manages the background workflows for the node.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	ticker       *time.Ticker
	shut         chan struct{}
	startSync    chan bool
	blockSharing chan database.Block
	evHandler    state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes. A zero sync interval turns off
// the periodic sync, a sync can still be signaled.
func Run(st *state.State, syncInterval time.Duration, evHandler state.EventHandler) {
	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		state:        st,
		ctx:          ctx,
		cancel:       cancel,
		shut:         make(chan struct{}),
		startSync:    make(chan bool, 1),
		blockSharing: make(chan database.Block, maxBlockShareRequests),
		evHandler:    evHandler,
	}

	if syncInterval > 0 {
		w.ticker = time.NewTicker(syncInterval)
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.syncOperations,
		w.shareBlockOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	if w.ticker != nil {
		w.evHandler("worker: shutdown: stop ticker")
		w.ticker.Stop()
	}

	w.evHandler("worker: shutdown: cancel network calls")
	w.cancel()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalShareBlock queues a block to be sent to the known peers. If
// maxBlockShareRequests signals exist in the channel, the block won't be sent.
func (w *Worker) SignalShareBlock(block database.Block) {
	select {
	case w.blockSharing <- block:
		w.evHandler("worker: SignalShareBlock: share block signaled: blk[%d]", block.Index)
	default:
		w.evHandler("worker: SignalShareBlock: queue full, block[%d] won't be shared.", block.Index)
	}
}

// SignalSync starts a consensus round. If there is already a signal pending
// in the channel, just return since a sync will run.
func (w *Worker) SignalSync() {
	select {
	case w.startSync <- true:
	default:
	}
	w.evHandler("worker: SignalSync: sync signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}

// tick returns the ticker channel or nil when periodic sync is off. A nil
// channel blocks forever inside a select.
func (w *Worker) tick() <-chan time.Time {
	if w.ticker == nil {
		return nil
	}
	return w.ticker.C
}
