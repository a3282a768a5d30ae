// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"sync"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/blockledger/foundation/blockchain/peer"
)

// Defaults applied when the configuration leaves a value unset.
const (
	DefaultMiningReward  = 1
	DefaultPeerTimeout   = 5 * time.Second
	DefaultMaxPeerFanOut = 8
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for block sharing and chain syncing.
type Worker interface {
	Shutdown()
	SignalShareBlock(block database.Block)
	SignalSync()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	NodeID        string
	Host          string
	Storage       database.Serializer
	Difficulty    uint
	MiningReward  float64
	KnownPeers    *peer.PeerSet
	PeerTimeout   time.Duration
	MaxPeerFanOut int
	EvHandler     EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.Mutex

	nodeID        string
	host          string
	miningReward  float64
	peerTimeout   time.Duration
	maxPeerFanOut int
	evHandler     EventHandler

	knownPeers *peer.PeerSet
	mempool    *mempool.Mempool
	db         *database.Database

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Access the storage for the blockchain, loading any blocks already
	// persisted or starting a new chain from genesis.
	db, err := database.New(cfg.Storage, cfg.Difficulty, ev)
	if err != nil {
		return nil, err
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	miningReward := cfg.MiningReward
	if miningReward <= 0 {
		miningReward = DefaultMiningReward
	}

	peerTimeout := cfg.PeerTimeout
	if peerTimeout <= 0 {
		peerTimeout = DefaultPeerTimeout
	}

	maxPeerFanOut := cfg.MaxPeerFanOut
	if maxPeerFanOut <= 0 {
		maxPeerFanOut = DefaultMaxPeerFanOut
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		nodeID:        cfg.NodeID,
		host:          cfg.Host,
		miningReward:  miningReward,
		peerTimeout:   peerTimeout,
		maxPeerFanOut: maxPeerFanOut,
		evHandler:     ev,

		knownPeers: knownPeers,
		mempool:    mempool.New(),
		db:         db,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	// Make sure the database file is properly closed.
	return s.db.Close()
}
