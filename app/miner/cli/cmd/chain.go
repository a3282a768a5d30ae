package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// chainCmd represents the chain command
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Show the chain held by the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		clt := newClient()

		chain, err := clt.Chain(ctx)
		if err != nil {
			return err
		}

		valid, err := clt.ValidChain(ctx)
		if err != nil {
			return err
		}

		for _, block := range chain {
			fmt.Fprintf(cmd.OutOrStdout(), "blk[%d]: hash[%s]: prev[%s]: proof[%d]: trans[%d]\n", block.Index, block.Hash(), block.PreviousHash, block.Proof, len(block.Transactions))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "length[%d]: valid[%t]\n", len(chain), valid)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)
}
