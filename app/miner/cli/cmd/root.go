// Package cmd contains the miner app
package cmd

import (
	"os"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/client"
	"github.com/spf13/cobra"
)

var (
	nodeURL string
	timeout time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "node", "n", "http://localhost:5000", "Url of the node.")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "Timeout for each call to the node.")
}

var rootCmd = &cobra.Command{
	Use:   "miner",
	Short: "Mining client for the ledger nodes",
}

// Execute runs the command selected on the command line.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.New(nodeURL, timeout)
}
