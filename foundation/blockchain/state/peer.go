package state

import (
	"github.com/ardanlabs/blockledger/foundation/blockchain/peer"
)

// RegisterPeer adds the address to the set of known peers. Registering the
// same peer twice is not an error. It reports whether the peer is new.
func (s *State) RegisterPeer(address string) (bool, error) {
	pr, err := peer.New(address)
	if err != nil {
		return false, err
	}

	if pr.Match(s.host) {
		return false, nil
	}

	added := s.knownPeers.Add(pr)
	if added {
		s.evHandler("state: RegisterPeer: adding peer-node %s", pr)
	}

	return added, nil
}

// IsRegisteredPeer reports whether the address belongs to a known peer.
func (s *State) IsRegisteredPeer(address string) bool {
	pr, err := peer.New(address)
	if err != nil {
		return false
	}

	return s.knownPeers.Contains(pr)
}
