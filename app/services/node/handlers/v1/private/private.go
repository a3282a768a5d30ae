// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/peer"
	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
	"github.com/ardanlabs/blockledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// ProposeBlock takes a block received from a peer, validates it and
// if that passes, adds the block to the local blockchain. A block from a
// peer that is further ahead starts consensus.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	const (
		accepted     = "Block Accepted"
		consensus    = "Consensus Performed"
		rejected     = "Block Rejected"
		unregistered = "Unregistered Node"
		missing      = "Missing Values"
	)

	var p proposal
	if err := web.Decode(r, &p); err != nil || p.Block == nil || p.Node == nil {
		return web.Respond(ctx, w, missing, http.StatusBadRequest)
	}

	if !h.State.IsRegisteredPeer(*p.Node) {
		return web.Respond(ctx, w, unregistered, http.StatusBadRequest)
	}

	if p.Block.Index == 0 || p.Block.PreviousHash == "" {
		return web.Respond(ctx, w, missing, http.StatusBadRequest)
	}

	h.Log.Infow("propose block", "traceid", web.GetTraceID(ctx), "node", *p.Node, "index", p.Block.Index)

	err := h.State.ProcessProposedBlock(*p.Block, *p.Node)
	switch {
	case err == nil:
		return web.Respond(ctx, w, accepted, http.StatusOK)

	case errors.Is(err, state.ErrUnregisteredPeer):
		return web.Respond(ctx, w, unregistered, http.StatusBadRequest)

	case errors.Is(err, database.ErrChainForked):
		if _, err := h.State.Resolve(ctx); err != nil {
			return err
		}
		return web.Respond(ctx, w, consensus, http.StatusOK)

	case state.IsRejection(err):
		h.Log.Infow("propose block", "traceid", web.GetTraceID(ctx), "status", "rejected", "reason", err)
		return web.Respond(ctx, w, rejected, http.StatusBadRequest)
	}

	return err
}

// RegisterNodes adds the provided addresses to the known peers.
func (h Handlers) RegisterNodes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	const invalid = "Error: Please supply a valid list of nodes"

	var reg registration
	if err := web.Decode(r, &reg); err != nil || reg.Nodes == nil {
		return web.Respond(ctx, w, invalid, http.StatusBadRequest)
	}

	// Check every address before registering any so a bad list changes nothing.
	for _, address := range reg.Nodes {
		if _, err := peer.Normalize(address); err != nil {
			return web.Respond(ctx, w, invalid, http.StatusBadRequest)
		}
	}

	for _, address := range reg.Nodes {
		if _, err := h.State.RegisterPeer(address); err != nil {
			return err
		}
	}

	resp := registered{
		Message:    "New nodes have been added",
		TotalNodes: h.knownHosts(),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// KnownPeers returns the hosts of the known peers.
func (h Handlers) KnownPeers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, peers{Nodes: h.knownHosts()}, http.StatusOK)
}

// Resolve runs consensus with the known peers on demand.
func (h Handlers) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	replaced, err := h.State.Resolve(ctx)
	if err != nil {
		return err
	}

	resp := resolved{
		Message: "Our chain is authoritative",
		Chain:   h.State.RetrieveChain(),
	}
	if replaced {
		resp.Message = "Our chain was replaced"
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

func (h Handlers) knownHosts() []string {
	known := h.State.RetrieveKnownPeers()

	hosts := make([]string, len(known))
	for i, pr := range known {
		hosts[i] = pr.Host
	}

	return hosts
}
