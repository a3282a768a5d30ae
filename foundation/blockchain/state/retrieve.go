package state

import (
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/peer"
)

// RetrieveNodeID returns the identity credited for blocks mined without a
// miner id.
func (s *State) RetrieveNodeID() string {
	return s.nodeID
}

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveDifficulty returns the proof of work difficulty.
func (s *State) RetrieveDifficulty() uint {
	return s.db.Difficulty()
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() (database.Block, error) {
	return s.db.LatestBlock()
}

// RetrieveChain returns a copy of the full chain.
func (s *State) RetrieveChain() []database.Block {
	return s.db.Copy()
}

// RetrieveChainLength returns the number of blocks in the chain.
func (s *State) RetrieveChainLength() int {
	return s.db.Length()
}

// RetrieveMempool returns a copy of the pending transactions.
func (s *State) RetrieveMempool() []database.Transaction {
	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// IsChainValid reports whether the local chain passes validation.
func (s *State) IsChainValid() bool {
	return database.IsChainValid(s.db.Copy(), s.db.Difficulty())
}
