package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/blockledger/app/services/node/handlers"
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/peer"
	"github.com/ardanlabs/blockledger/foundation/blockchain/pow"
	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
	"github.com/ardanlabs/blockledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/blockledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/blockledger/foundation/blockchain/worker"
	"github.com/ardanlabs/blockledger/foundation/events"
	"github.com/ardanlabs/blockledger/foundation/logger"
	"github.com/ardanlabs/conf/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:60s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			APIHost         string        `conf:"default:0.0.0.0:5000"`
		}
		State struct {
			Host          string        `conf:"default:localhost:5000"`
			DBPath        string        `conf:"help:folder for block files or empty to keep the chain in memory"`
			Difficulty    uint          `conf:"default:3"`
			MiningReward  float64       `conf:"default:1"`
			KnownPeers    []string      `conf:"help:peers to register at startup"`
			SyncInterval  time.Duration `conf:"default:0s,help:consensus interval where 0 turns it off"`
			PeerTimeout   time.Duration `conf:"default:5s"`
			MaxPeerFanOut int           `conf:"default:8"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "proof of work ledger node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	if cfg.State.Difficulty == 0 || cfg.State.Difficulty > pow.MaxDifficulty {
		return fmt.Errorf("difficulty[%d]: %w", cfg.State.Difficulty, pow.ErrInvalidDifficulty)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Blockchain Support

	// The node identity is credited for blocks mined without a miner id. It
	// lives as long as the process.
	nodeID := strings.ReplaceAll(uuid.NewString(), "-", "")
	log.Infow("startup", "status", "node identity", "nodeid", nodeID)

	// A peer set is a collection of known nodes in the network so blocks
	// can be shared.
	peerSet := peer.NewPeerSet()
	for _, address := range cfg.State.KnownPeers {
		pr, err := peer.New(address)
		if err != nil {
			return fmt.Errorf("known peer %q: %w", address, err)
		}
		peerSet.Add(pr)
	}

	// The chain lives in memory unless a folder is configured.
	var storage database.Serializer
	switch cfg.State.DBPath {
	case "":
		storage, err = memory.New()
	default:
		storage, err = disk.New(cfg.State.DBPath)
	}
	if err != nil {
		return fmt.Errorf("constructing storage: %w", err)
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. The viewer messages are sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		const websocketPrefix = "viewer:"

		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		if strings.HasPrefix(s, websocketPrefix) {
			evts.Send(s)
		}
	}

	// The state value represents the blockchain node and manages the blockchain
	// database and provides an API for application support.
	state, err := state.New(state.Config{
		NodeID:        nodeID,
		Host:          cfg.State.Host,
		Storage:       storage,
		Difficulty:    cfg.State.Difficulty,
		MiningReward:  cfg.State.MiningReward,
		KnownPeers:    peerSet,
		PeerTimeout:   cfg.State.PeerTimeout,
		MaxPeerFanOut: cfg.State.MaxPeerFanOut,
		EvHandler:     ev,
	})
	if err != nil {
		return err
	}
	defer state.Shutdown()

	// The worker package implements block sharing and consensus syncing. The
	// worker will register itself with the state.
	worker.Run(state, cfg.State.SyncInterval, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, state)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start API Service

	log.Infow("startup", "status", "initializing V1 API support")

	// Construct the mux for the API calls.
	apiMux := handlers.APIMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    state,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown API started")
		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
