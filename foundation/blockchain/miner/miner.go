// Package miner implements the mining client loop. It pulls the tip from a
// node, searches for the proof and submits it for the node to forge a block.
package miner

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/client"
	"github.com/ardanlabs/blockledger/foundation/blockchain/pow"
	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
)

// EventHandler defines a function that is called when events
// occur in the mining loop.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start mining.
type Config struct {
	Client     *client.Client
	Difficulty uint
	Workers    int
	MinerID    string
	BackOff    *backoff.ExponentialBackOff
	EvHandler  EventHandler
}

// Stats reports what a mining run achieved.
type Stats struct {
	Mined    int
	Rejected int
	Failures int
	Elapsed  time.Duration
}

// Miner runs rounds of proof searching against a single node.
type Miner struct {
	client     *client.Client
	difficulty uint
	workers    int
	minerID    string
	backOff    *backoff.ExponentialBackOff
	evHandler  EventHandler
}

// New constructs a miner.
func New(cfg Config) *Miner {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	bo := cfg.BackOff
	if bo == nil {
		bo = backoff.NewExponentialBackOff()
	}

	// Mining never gives up on its own, only a shutdown ends it.
	bo.MaxElapsedTime = 0

	difficulty := cfg.Difficulty
	if difficulty == 0 {
		difficulty = pow.DefaultDifficulty
	}

	return &Miner{
		client:     cfg.Client,
		difficulty: difficulty,
		workers:    cfg.Workers,
		minerID:    cfg.MinerID,
		backOff:    bo,
		evHandler:  ev,
	}
}

// Run mines until the context is cancelled. Any failure ends the round, it
// is reported and the next round starts from a fresh tip. Network failures
// back off before trying again.
func (m *Miner) Run(ctx context.Context) Stats {
	m.evHandler("miner: run: started: node[%s]: difficulty[%d]", m.client.BaseURL(), m.difficulty)

	var stats Stats
	start := time.Now()
	m.backOff.Reset()

	for ctx.Err() == nil {
		res, err := m.MineOnce(ctx)

		switch {
		case err == nil:
			stats.Mined++
			m.backOff.Reset()
			m.evHandler("miner: run: %s: blk[%d]: total mined[%d]", res.Message, res.Index, stats.Mined)

		case ctx.Err() != nil:
			// Shutdown.

		case errors.Is(err, client.ErrProofRejected):
			stats.Rejected++
			m.evHandler("miner: run: proof rejected, the tip moved")

		default:
			stats.Failures++
			wait := m.backOff.NextBackOff()
			m.evHandler("miner: run: ERROR: %s: retry in %s", err, wait)

			select {
			case <-ctx.Done():
			case <-time.After(wait):
			}
		}
	}

	stats.Elapsed = time.Since(start)
	m.evHandler("miner: run: completed: mined[%d]: elapsed[%s]", stats.Mined, stats.Elapsed)

	return stats
}

// MineOnce runs a single round against the current tip.
func (m *Miner) MineOnce(ctx context.Context) (client.MineResult, error) {
	tip, err := m.client.LastBlock(ctx)
	if err != nil {
		return client.MineResult{}, err
	}

	m.evHandler("miner: round: tip[%d]: searching", tip.Index)

	var proof uint64
	switch {
	case m.workers > 1:
		proof, err = pow.SearchParallel(ctx, tip.Canonical(), m.difficulty, m.workers)
	default:
		proof, err = pow.Search(ctx, tip.Canonical(), m.difficulty)
	}
	if err != nil {
		return client.MineResult{}, err
	}

	m.evHandler("miner: round: tip[%d]: proof[%d]: submitting", tip.Index, proof)

	return m.client.Mine(ctx, proof, m.minerID)
}

// =============================================================================

// LoadID reads the miner identity from the file, creating the file with a
// new identity when it doesn't exist.
func LoadID(path string) (string, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}

	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := os.WriteFile(path, []byte(id), 0600); err != nil {
		return "", err
	}

	return id, nil
}
