// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/blockledger/business/sys/validate"
	"github.com/ardanlabs/blockledger/business/web/errs"
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
	"github.com/ardanlabs/blockledger/foundation/events"
	"github.com/ardanlabs/blockledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// LastBlock returns the tip of the chain.
func (h Handlers) LastBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.RetrieveLatestBlock()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, lastBlock{LastBlock: block}, http.StatusOK)
}

// Chain returns the full chain.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.RetrieveChain()

	return web.Respond(ctx, w, chain{Chain: blocks, Length: len(blocks)}, http.StatusOK)
}

// ValidChain reports whether the local chain passes validation.
func (h Handlers) ValidChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, validity{Validity: h.State.IsChainValid()}, http.StatusOK)
}

// Mine takes a proof found by a miner and forges the next block with it.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	rejected := message{Message: "New proof rejected"}

	var req mineRequest
	if err := web.Decode(r, &req); err != nil || req.Proof == nil {
		return web.Respond(ctx, w, rejected, http.StatusBadRequest)
	}

	h.Log.Infow("mine", "traceid", web.GetTraceID(ctx), "proof", *req.Proof, "id", req.ID)

	block, err := h.State.MineBlock(*req.Proof, req.ID)
	if err != nil {
		if errors.Is(err, database.ErrInvalidProof) {
			return web.Respond(ctx, w, rejected, http.StatusBadRequest)
		}
		return err
	}

	resp := forged{
		Message:      "New Block Forged",
		Index:        block.Index,
		Transactions: block.Transactions,
		Proof:        block.Proof,
		PreviousHash: block.PreviousHash,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the pending pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nt NewTransaction
	if err := web.Decode(r, &nt); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(nt); err != nil {
		return fmt.Errorf("validating data: %w", err)
	}

	tx := toTransaction(nt)

	h.Log.Infow("add tran", "traceid", web.GetTraceID(ctx), "sender", tx.Sender, "recipient", tx.Recipient, "amount", tx.Amount)

	index, err := h.State.QueueTransaction(tx)
	if err != nil {
		return err
	}

	resp := message{
		Message: fmt.Sprintf("Transaction will be added to Block %d", index),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}
