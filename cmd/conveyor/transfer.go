package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/calvora/conveyor/internal/workflow/transfer"
)

func newTransferCmd(configPath *string) *cobra.Command {
	var input transfer.Input
	var steps bool

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Run a transfer workflow once and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			run := a.transfers.Run
			if steps {
				run = a.transfers.RunSteps
			}
			result := run(cmd.Context(), input)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&input.FromAccountID, "from", "", "source account id")
	cmd.Flags().StringVar(&input.ToAccountID, "to", "", "target account id")
	cmd.Flags().Float64Var(&input.Amount, "amount", 0, "amount to transfer")
	cmd.Flags().BoolVar(&steps, "steps", false, "run as two independently retried steps instead of one atomic activity")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
