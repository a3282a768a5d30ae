package state

import (
	"context"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// Resolve performs consensus with the known peers. The longest chain that
// passes validation wins and replaces the local chain only when it is
// strictly longer than the local chain at the moment of the swap. It reports
// whether the local chain was replaced.
//
// Peers are trusted for nothing but the chains they return, and every chain
// is validated before it is considered. This is not resistant to a peer
// willing to do the work to build a longer valid chain.
func (s *State) Resolve(ctx context.Context) (bool, error) {
	s.evHandler("state: Resolve: started")
	defer s.evHandler("state: Resolve: completed")

	// Peer i/o happens without holding the state lock.
	best := s.db.Copy()
	var bestHost string

	for _, pc := range s.netRequestPeerChains(ctx, s.RetrieveKnownPeers()) {
		if pc.err != nil {
			s.evHandler("state: Resolve: WARNING: %s", pc.err)
			continue
		}

		if err := database.ValidateChain(pc.chain, s.db.Difficulty()); err != nil {
			s.evHandler("state: Resolve: peer[%s]: length[%d]: discarded: %s", pc.peer, len(pc.chain), err)
			continue
		}

		if len(pc.chain) > len(best) {
			best = pc.chain
			bestHost = pc.peer.Host
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The local chain may have grown while peers were queried.
	if bestHost == "" || len(best) <= s.db.Length() {
		s.evHandler("viewer: consensus: local chain is authoritative: length[%d]", s.db.Length())
		return false, nil
	}

	if err := s.db.Replace(best); err != nil {
		return false, err
	}

	s.evHandler("viewer: consensus: chain replaced: peer[%s]: length[%d]", bestHost, len(best))

	return true, nil
}
