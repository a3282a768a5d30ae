package state

import (
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// QueueTransaction adds the transaction to the pending pool. The returned
// index is the block the transaction is expected to land in. It is advisory
// only since a concurrent mine or a chain replacement can move it.
func (s *State) QueueTransaction(tx database.Transaction) (uint64, error) {
	latest, err := s.db.LatestBlock()
	if err != nil {
		return 0, err
	}

	n := s.mempool.Add(tx)
	s.evHandler("state: QueueTransaction: from[%s]: to[%s]: amount[%v]: pending[%d]", tx.Sender, tx.Recipient, tx.Amount, n)

	return latest.Index + 1, nil
}
