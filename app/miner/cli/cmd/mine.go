package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ardanlabs/blockledger/foundation/blockchain/miner"
	"github.com/ardanlabs/blockledger/foundation/blockchain/pow"
	"github.com/ardanlabs/blockledger/foundation/logger"
	"github.com/spf13/cobra"
)

var (
	difficulty uint
	workers    int
	idFile     string
)

// mineCmd represents the mine command
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine blocks until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mine()
	},
}

func mine() error {
	log, err := logger.New("MINER")
	if err != nil {
		return err
	}
	defer log.Sync()

	id, err := miner.LoadID(idFile)
	if err != nil {
		return fmt.Errorf("loading miner id: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := miner.New(miner.Config{
		Client:     newClient(),
		Difficulty: difficulty,
		Workers:    workers,
		MinerID:    id,
		EvHandler:  log.Infof,
	})

	log.Infow("mining has started", "node", nodeURL, "id", id, "difficulty", difficulty, "workers", workers)

	stats := m.Run(ctx)

	log.Infow("mining has ended", "mined", stats.Mined, "rejected", stats.Rejected, "failures", stats.Failures, "elapsed", stats.Elapsed)
	fmt.Fprintf(os.Stdout, "Total Coins Mined: %d\nElapsed time: %.1f seconds\n", stats.Mined, stats.Elapsed.Seconds())

	return nil
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().UintVarP(&difficulty, "difficulty", "d", pow.DefaultDifficulty, "Leading zero hex characters the proof hash needs.")
	mineCmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "Goroutines searching for a proof.")
	mineCmd.Flags().StringVarP(&idFile, "id-file", "i", "my_id", "File holding the miner identity.")
}
