// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/blockledger/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/blockledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
	"github.com/ardanlabs/blockledger/foundation/events"
	"github.com/ardanlabs/blockledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes. The ledger routes are
// served at the root since miners and peers address them without a version.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, "", "/last-block", pbl.LastBlock)
	app.Handle(http.MethodGet, "", "/chain", pbl.Chain)
	app.Handle(http.MethodGet, "", "/valid-chain", pbl.ValidChain)
	app.Handle(http.MethodPost, "", "/mine", pbl.Mine)
	app.Handle(http.MethodPost, "", "/transactions/new", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/events", pbl.Events)
}

// PrivateRoutes binds all the version 1 node to node routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodPost, "", "/block/new", prv.ProposeBlock)
	app.Handle(http.MethodPost, "", "/nodes/register", prv.RegisterNodes)
	app.Handle(http.MethodGet, "", "/nodes", prv.KnownPeers)
	app.Handle(http.MethodPost, "", "/nodes/resolve", prv.Resolve)
}
