// Package peer maintains the peer related information such as the set
// of know peers.
package peer

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidAddress is returned when an address has no host to reach.
var ErrInvalidAddress = errors.New("invalid peer address")

// Peer represents information about a Node in the network.
type Peer struct {
	Host string
}

// New constructs a new peer value from an address in any of the forms
// "http://host:port/path", "host:port" or "host".
func New(address string) (Peer, error) {
	host, err := Normalize(address)
	if err != nil {
		return Peer{}, err
	}

	return Peer{Host: host}, nil
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// String implements the Stringer interface.
func (p Peer) String() string {
	return p.Host
}

// Normalize strips the scheme and path from an address leaving the
// host:port form used to identify a peer.
func Normalize(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", ErrInvalidAddress
	}

	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	if u.Hostname() == "" {
		return "", ErrInvalidAddress
	}

	return u.Host, nil
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new node to the set. It reports false if the peer was
// already known.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[peer]
	if !exists {
		ps.set[peer] = struct{}{}
		return true
	}

	return false
}

// Contains reports whether the peer is in the set.
func (ps *PeerSet) Contains(peer Peer) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	_, exists := ps.set[peer]
	return exists
}

// Len returns the number of known peers.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns a list of the known peers sorted by host, excluding the
// specified host.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool { return peers[i].Host < peers[j].Host })

	return peers
}
