package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// peersCmd represents the peers command
var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Manage the peers of a node",
}

// peersAddCmd represents the peers add command
var peersAddCmd = &cobra.Command{
	Use:   "add address...",
	Short: "Register peers with the node",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes, err := newClient().RegisterNodes(context.Background(), args)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "New nodes have been added")
		for _, node := range nodes {
			fmt.Fprintln(cmd.OutOrStdout(), node)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(peersCmd)
	peersCmd.AddCommand(peersAddCmd)
}
