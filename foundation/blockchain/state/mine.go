package state

import (
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/pow"
)

// MineBlock seals the pending transactions into a new block using the proof
// found by a miner. The proof must solve the latest block. The reward goes to
// the miner id when provided, otherwise to this node. Nothing changes when
// the proof is rejected.
func (s *State) MineBlock(proof uint64, minerID string) (database.Block, error) {
	s.evHandler("state: MineBlock: started: proof[%d]", proof)
	defer s.evHandler("state: MineBlock: completed")

	// Reading the tip, checking the proof and writing the block must happen
	// as one unit or two miners could both extend the same tip.
	s.mu.Lock()
	defer s.mu.Unlock()

	prevBlock, err := s.db.LatestBlock()
	if err != nil {
		return database.Block{}, err
	}

	if !pow.IsValid(prevBlock.Canonical(), proof, s.db.Difficulty()) {
		s.evHandler("state: MineBlock: rejected: proof[%d]: blk[%d]", proof, prevBlock.Index)
		return database.Block{}, database.ErrInvalidProof
	}

	recipient := minerID
	if recipient == "" {
		recipient = s.nodeID
	}

	pending := s.mempool.Flush()

	trans := make([]database.Transaction, 0, len(pending)+1)
	trans = append(trans, pending...)
	trans = append(trans, database.NewRewardTx(recipient, s.miningReward))

	block := database.NewBlock(prevBlock, proof, trans)

	if err := s.db.Write(block); err != nil {
		s.mempool.Restore(pending)
		return database.Block{}, err
	}

	s.evHandler("viewer: block: mined: blk[%d]: hash[%s]: trans[%d]: miner[%s]", block.Index, block.Hash(), len(block.Transactions), recipient)

	if s.Worker != nil {
		s.Worker.SignalShareBlock(block)
	}

	return block, nil
}
