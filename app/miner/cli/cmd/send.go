package cmd

import (
	"context"
	"fmt"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var (
	sender    string
	recipient string
	amount    float64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		tx := database.Transaction{
			Amount:    amount,
			Recipient: recipient,
			Sender:    sender,
		}

		msg, err := newClient().SubmitTransaction(context.Background(), tx)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sender, "from", "f", "", "Sender of the transaction.")
	sendCmd.Flags().StringVarP(&recipient, "to", "r", "", "Recipient of the transaction.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Amount to send.")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}
