// Package database handles all the lower level support for maintaining the
// blockchain in memory, backed by a serializer that may keep a copy on disk.
package database

import (
	"errors"
	"fmt"
	"sync"
)

// Serializer interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Serializer interface {
	Write(block Block) error
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// =============================================================================

// Database manages the chain of blocks for the node.
type Database struct {
	mu         sync.RWMutex
	difficulty uint
	chain      []Block
	serializer Serializer
}

// New constructs a new database. Blocks already held by the serializer are
// loaded and validated, otherwise the genesis block starts the chain.
func New(serializer Serializer, difficulty uint, evHandler func(v string, args ...any)) (*Database, error) {
	db := Database{
		difficulty: difficulty,
		serializer: serializer,
	}

	iter := serializer.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		evHandler("database: New: loaded: blk[%d]", block.Index)
		db.chain = append(db.chain, block)
	}

	if len(db.chain) == 0 {
		evHandler("database: New: writing genesis block")

		genesis := Genesis()
		if err := serializer.Write(genesis); err != nil {
			return nil, fmt.Errorf("writing genesis: %w", err)
		}
		db.chain = append(db.chain, genesis)

		return &db, nil
	}

	if err := ValidateChain(db.chain, difficulty); err != nil {
		return nil, fmt.Errorf("validating stored chain: %w", err)
	}

	return &db, nil
}

// Close closes the serializer.
func (db *Database) Close() error {
	return db.serializer.Close()
}

// Difficulty returns the proof of work difficulty the chain is validated with.
func (db *Database) Difficulty() uint {
	return db.difficulty
}

// LatestBlock returns the tip of the chain.
func (db *Database) LatestBlock() (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if len(db.chain) == 0 {
		return Block{}, ErrEmptyChain
	}

	return db.chain[len(db.chain)-1], nil
}

// Length returns the number of blocks in the chain.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.chain)
}

// Copy returns a copy of the chain.
func (db *Database) Copy() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	chain := make([]Block, len(db.chain))
	copy(chain, db.chain)

	return chain
}

// Write appends the block to the chain. The caller is responsible for having
// validated the block against the latest block.
func (db *Database) Write(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(db.chain) > 0 && block.Index != db.chain[len(db.chain)-1].Index+1 {
		return &ChainIntegrityError{Index: block.Index, Err: ErrBadIndex}
	}

	if err := db.serializer.Write(block); err != nil {
		return err
	}

	db.chain = append(db.chain, block)

	return nil
}

// Replace swaps the current chain for the specified chain. The chain is
// validated first and the current chain is left in place on any failure.
func (db *Database) Replace(chain []Block) error {
	if err := ValidateChain(chain, db.difficulty); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.serializer.Reset(); err != nil {
		return fmt.Errorf("reset storage: %w", err)
	}

	for _, block := range chain {
		if err := db.serializer.Write(block); err != nil {

			// Storage now holds a partial chain. Put back what memory holds
			// so a restart doesn't load the broken copy.
			rerr := db.restore()
			return errors.Join(fmt.Errorf("write blk[%d]: %w", block.Index, err), rerr)
		}
	}

	db.chain = make([]Block, len(chain))
	copy(db.chain, chain)

	return nil
}

// restore rewrites storage with the in memory chain.
func (db *Database) restore() error {
	if err := db.serializer.Reset(); err != nil {
		return err
	}

	for _, block := range db.chain {
		if err := db.serializer.Write(block); err != nil {
			return err
		}
	}

	return nil
}
