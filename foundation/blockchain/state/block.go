package state

import (
	"errors"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// ProcessProposedBlock takes a block received from a peer, validates it and
// if that passes, adds the block to the local blockchain.
//
// A block more than one ahead of the tip means this node is behind and
// database.ErrChainForked is returned so the caller can run consensus. A block
// at or behind the tip returns ErrStaleBlock.
func (s *State) ProcessProposedBlock(block database.Block, fromAddress string) error {
	s.evHandler("state: ProcessProposedBlock: started: from[%s]: blk[%d]: prevHash[%s]", fromAddress, block.Index, block.PreviousHash)
	defer s.evHandler("state: ProcessProposedBlock: completed: blk[%d]", block.Index)

	if !s.IsRegisteredPeer(fromAddress) {
		return ErrUnregisteredPeer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.db.LatestBlock()
	if err != nil {
		return err
	}

	switch {
	case block.Index <= latest.Index:
		s.evHandler("state: ProcessProposedBlock: stale: blk[%d]: tip[%d]", block.Index, latest.Index)
		return ErrStaleBlock

	case block.Index > latest.Index+1:
		s.evHandler("state: ProcessProposedBlock: behind: blk[%d]: tip[%d]", block.Index, latest.Index)
		return database.ErrChainForked
	}

	if err := database.ValidateNextBlock(latest, block, s.db.Difficulty()); err != nil {
		s.evHandler("state: ProcessProposedBlock: rejected: %s", err)
		return err
	}

	if block.Transactions == nil {
		block.Transactions = []database.Transaction{}
	}

	if err := s.db.Write(block); err != nil {
		return err
	}

	s.evHandler("viewer: block: accepted: blk[%d]: hash[%s]: from[%s]: miner[%s]", block.Index, block.Hash(), fromAddress, rewardRecipient(block))

	return nil
}

// rewardRecipient returns who was paid for mining the block. Blocks are
// only checked for their link and proof so a block may carry no reward.
func rewardRecipient(block database.Block) string {
	for _, tx := range block.Transactions {
		if tx.IsReward() {
			return tx.Recipient
		}
	}

	return "none"
}

// IsRejection reports whether the error from ProcessProposedBlock means
// the block was refused rather than the node failing.
func IsRejection(err error) bool {
	var cie *database.ChainIntegrityError
	return errors.As(err, &cie) || errors.Is(err, ErrStaleBlock)
}
