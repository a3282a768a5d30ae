package state

import (
	"context"
	"sync"

	"github.com/ardanlabs/blockledger/foundation/blockchain/client"
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/peer"
)

// peerChain is the chain reported by a peer.
type peerChain struct {
	peer  peer.Peer
	chain []database.Block
	err   error
}

// NetSendBlockToPeers takes the new mined block and sends it to all known
// peers. A peer that can't be reached is reported and skipped.
func (s *State) NetSendBlockToPeers(ctx context.Context, block database.Block) {
	s.evHandler("state: NetSendBlockToPeers: started: blk[%d]", block.Index)
	defer s.evHandler("state: NetSendBlockToPeers: completed: blk[%d]", block.Index)

	s.fanOut(ctx, s.RetrieveKnownPeers(), func(ctx context.Context, _ int, pr peer.Peer) {
		msg, err := client.New(pr.Host, s.peerTimeout).ProposeBlock(ctx, block, s.host)
		if err != nil {
			s.evHandler("state: NetSendBlockToPeers: WARNING: %s", &PeerUnreachableError{Host: pr.Host, Err: err})
			return
		}

		s.evHandler("state: NetSendBlockToPeers: sent to peer[%s]: %s", pr, msg)
	})
}

// netRequestPeerChains asks every peer for its full chain. The results are
// returned in the order of the peers provided.
func (s *State) netRequestPeerChains(ctx context.Context, peers []peer.Peer) []peerChain {
	s.evHandler("state: netRequestPeerChains: started: peers[%d]", len(peers))
	defer s.evHandler("state: netRequestPeerChains: completed")

	results := make([]peerChain, len(peers))
	for i, pr := range peers {
		results[i].peer = pr
	}

	s.fanOut(ctx, peers, func(ctx context.Context, i int, pr peer.Peer) {
		chain, err := client.New(pr.Host, s.peerTimeout).Chain(ctx)
		if err != nil {
			results[i].err = &PeerUnreachableError{Host: pr.Host, Err: err}
			return
		}

		results[i].chain = chain
	})

	return results
}

// fanOut runs the function once for every peer with no more than
// maxPeerFanOut calls in flight. Each call gets its own timeout.
func (s *State) fanOut(ctx context.Context, peers []peer.Peer, fn func(ctx context.Context, i int, pr peer.Peer)) {
	sem := make(chan struct{}, s.maxPeerFanOut)

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for i, pr := range peers {
		sem <- struct{}{}

		go func(i int, pr peer.Peer) {
			defer func() {
				<-sem
				wg.Done()
			}()

			ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
			defer cancel()

			fn(ctx, i, pr)
		}(i, pr)
	}

	wg.Wait()
}
