package state

import (
	"errors"
	"fmt"
)

// ErrStaleBlock is returned when a proposed block is at or behind the tip.
var ErrStaleBlock = errors.New("block is stale")

// ErrUnregisteredPeer is returned when a block is proposed by a node that
// is not a known peer.
var ErrUnregisteredPeer = errors.New("unregistered peer")

// PeerUnreachableError is used when a peer could not be reached or didn't
// answer with something usable.
type PeerUnreachableError struct {
	Host string
	Err  error
}

// Error implements the error interface.
func (pue *PeerUnreachableError) Error() string {
	return fmt.Sprintf("peer[%s] unreachable: %s", pue.Host, pue.Err)
}

// Unwrap provides access to the network error.
func (pue *PeerUnreachableError) Unwrap() error {
	return pue.Err
}
