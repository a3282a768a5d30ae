// Package mempool maintains the pending transactions waiting to be sealed
// into the next block.
package mempool

import (
	"sync"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// Mempool represents the ordered set of transactions that have been submitted
// but not yet mined. Transactions are kept in arrival order.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Transaction
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the pool and returns the new count.
func (mp *Mempool) Add(tx database.Transaction) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns a copy of the transactions in arrival order.
func (mp *Mempool) Copy() []database.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Transaction, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}

// Flush removes and returns every transaction in the pool as a single
// operation. A transaction added concurrently is either in the returned
// set or stays in the pool, never lost.
func (mp *Mempool) Flush() []database.Transaction {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.pool
	mp.pool = nil

	if trans == nil {
		trans = []database.Transaction{}
	}

	return trans
}

// Restore puts transactions back at the front of the pool. This is used when
// a flushed set could not be sealed into a block.
func (mp *Mempool) Restore(trans []database.Transaction) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	pool := make([]database.Transaction, 0, len(trans)+len(mp.pool))
	pool = append(pool, trans...)
	pool = append(pool, mp.pool...)
	mp.pool = pool
}
