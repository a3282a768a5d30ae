package database

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/blockledger/foundation/blockchain/pow"
)

// Set of errors identifying why a block can't follow its parent.
var (
	ErrBadIndex        = errors.New("block is not the next index")
	ErrBadPreviousHash = errors.New("previous hash doesn't match parent block")
	ErrBadProof        = errors.New("proof doesn't solve the parent block")
	ErrGenesisMismatch = errors.New("first block is not the genesis block")
)

// ErrInvalidProof is returned when a submitted proof doesn't solve the
// puzzle for the latest block.
var ErrInvalidProof = errors.New("invalid proof")

// ErrEmptyChain is returned when a chain has no blocks at all.
var ErrEmptyChain = errors.New("chain is empty")

// ErrChainForked is returned when a peer announces a block two or more blocks
// ahead of ours. This node is behind and needs to run consensus.
var ErrChainForked = errors.New("blockchain forked, start consensus")

// ChainIntegrityError identifies the block that broke a chain.
type ChainIntegrityError struct {
	Index uint64
	Err   error
}

// Error implements the error interface.
func (cie *ChainIntegrityError) Error() string {
	return fmt.Sprintf("block %d: %s", cie.Index, cie.Err)
}

// Unwrap provides access to the reason.
func (cie *ChainIntegrityError) Unwrap() error {
	return cie.Err
}

// =============================================================================

// ValidateNextBlock checks the block can be appended after the previous block.
func ValidateNextBlock(prevBlock Block, block Block, difficulty uint) error {
	if block.Index != prevBlock.Index+1 {
		return &ChainIntegrityError{Index: block.Index, Err: ErrBadIndex}
	}

	if block.PreviousHash != prevBlock.Hash() {
		return &ChainIntegrityError{Index: block.Index, Err: ErrBadPreviousHash}
	}

	if !pow.IsValid(prevBlock.Canonical(), block.Proof, difficulty) {
		return &ChainIntegrityError{Index: block.Index, Err: ErrBadProof}
	}

	return nil
}

// ValidateChain walks the chain checking every block against its parent. A
// chain holding only the genesis block is valid.
func ValidateChain(chain []Block, difficulty uint) error {
	if len(chain) == 0 {
		return ErrEmptyChain
	}

	if chain[0].Hash() != Genesis().Hash() {
		return &ChainIntegrityError{Index: chain[0].Index, Err: ErrGenesisMismatch}
	}

	for i := 1; i < len(chain); i++ {
		if err := ValidateNextBlock(chain[i-1], chain[i], difficulty); err != nil {
			return err
		}
	}

	return nil
}

// IsChainValid reports whether the chain passes validation.
func IsChainValid(chain []Block, difficulty uint) bool {
	return ValidateChain(chain, difficulty) == nil
}
